package store

import (
	"testing"
)

func TestSessionCreateAndLookup(t *testing.T) {
	db := testDB(t)
	user := seedUser(t, db)
	ss := NewSessionStore(db)

	sess, err := ss.Create(user.ID)
	if err != nil {
		t.Fatalf("create session: %v", err)
	}
	if len(sess.Token) != 64 {
		t.Errorf("token length = %d, want 64 hex chars", len(sess.Token))
	}

	got, err := ss.GetByToken(sess.Token)
	if err != nil {
		t.Fatalf("get by token: %v", err)
	}
	if got == nil || got.UserID != user.ID {
		t.Fatalf("got = %+v, want session for user %d", got, user.ID)
	}
}

func TestSessionGetByTokenUnknown(t *testing.T) {
	db := testDB(t)
	ss := NewSessionStore(db)

	got, err := ss.GetByToken("nope")
	if err != nil {
		t.Fatalf("get by token: %v", err)
	}
	if got != nil {
		t.Error("expected nil for unknown token")
	}
}

func TestSessionDelete(t *testing.T) {
	db := testDB(t)
	user := seedUser(t, db)
	ss := NewSessionStore(db)

	sess, _ := ss.Create(user.ID)
	if err := ss.Delete(sess.ID); err != nil {
		t.Fatalf("delete session: %v", err)
	}
	got, _ := ss.GetByToken(sess.Token)
	if got != nil {
		t.Error("expected nil after delete")
	}
}

func TestSessionDeleteExpired(t *testing.T) {
	db := testDB(t)
	user := seedUser(t, db)
	ss := NewSessionStore(db)

	sess, _ := ss.Create(user.ID)
	if _, err := db.Exec(`UPDATE sessions SET expires_at = datetime('now', '-1 day') WHERE id = ?`, sess.ID); err != nil {
		t.Fatalf("expire session: %v", err)
	}

	count, err := ss.DeleteExpired()
	if err != nil {
		t.Fatalf("delete expired: %v", err)
	}
	if count != 1 {
		t.Errorf("deleted %d sessions, want 1", count)
	}
}
