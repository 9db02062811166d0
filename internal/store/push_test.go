package store

import (
	"testing"
	"time"

	"github.com/pawhaven/pawhaven/internal/model"
)

func TestPushSubscriptionUpsert(t *testing.T) {
	db := testDB(t)
	user := seedUser(t, db)
	ps := NewPushStore(db)

	sub, err := ps.CreateSubscription(user.ID, "https://push.example/abc", "p256dh-1", "auth-1", "Pixel")
	if err != nil {
		t.Fatalf("create subscription: %v", err)
	}

	// Same endpoint again with fresh keys: updated, not duplicated.
	again, err := ps.CreateSubscription(user.ID, "https://push.example/abc", "p256dh-2", "auth-2", "Pixel")
	if err != nil {
		t.Fatalf("re-create subscription: %v", err)
	}
	if again.ID != sub.ID {
		t.Errorf("upsert created a new row: %d != %d", again.ID, sub.ID)
	}
	if again.P256dhKey != "p256dh-2" {
		t.Errorf("p256dh = %q, want refreshed key", again.P256dhKey)
	}

	subs, _ := ps.ListByUser(user.ID)
	if len(subs) != 1 {
		t.Errorf("expected 1 subscription, got %d", len(subs))
	}
}

func TestPushPreferences(t *testing.T) {
	db := testDB(t)
	user := seedUser(t, db)
	ps := NewPushStore(db)

	// Default is enabled when no row exists.
	enabled, err := ps.IsPreferenceEnabled(user.ID, model.NotifTypeReminderDue)
	if err != nil {
		t.Fatalf("preference: %v", err)
	}
	if !enabled {
		t.Error("preference should default to enabled")
	}

	if err := ps.SetPreference(user.ID, model.NotifTypeReminderDue, false); err != nil {
		t.Fatalf("set preference: %v", err)
	}
	enabled, _ = ps.IsPreferenceEnabled(user.ID, model.NotifTypeReminderDue)
	if enabled {
		t.Error("preference should be disabled")
	}
}

func TestSentLog(t *testing.T) {
	db := testDB(t)
	ps := NewPushStore(db)

	sent, err := ps.WasSent(model.NotifTypeReminderDue, "reminder-1-2024-01-05")
	if err != nil {
		t.Fatalf("was sent: %v", err)
	}
	if sent {
		t.Error("nothing recorded yet")
	}

	if err := ps.RecordSent(model.NotifTypeReminderDue, "reminder-1-2024-01-05"); err != nil {
		t.Fatalf("record sent: %v", err)
	}
	// Recording twice is a no-op.
	if err := ps.RecordSent(model.NotifTypeReminderDue, "reminder-1-2024-01-05"); err != nil {
		t.Fatalf("re-record sent: %v", err)
	}

	sent, _ = ps.WasSent(model.NotifTypeReminderDue, "reminder-1-2024-01-05")
	if !sent {
		t.Error("notification should be recorded as sent")
	}

	if err := ps.CleanupSent(time.Now().UTC().Add(time.Hour)); err != nil {
		t.Fatalf("cleanup: %v", err)
	}
	sent, _ = ps.WasSent(model.NotifTypeReminderDue, "reminder-1-2024-01-05")
	if sent {
		t.Error("sent log should be empty after cleanup")
	}
}
