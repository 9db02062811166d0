package handler

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/pawhaven/pawhaven/internal/auth"
	"github.com/pawhaven/pawhaven/internal/database"
	"github.com/pawhaven/pawhaven/internal/model"
	"github.com/pawhaven/pawhaven/internal/store"
	"github.com/pawhaven/pawhaven/internal/websocket"
)

func setupReminderHandler(t *testing.T) (*ReminderHandler, *store.ReminderStore, *model.User, *model.Pet) {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		t.Fatalf("enable foreign keys: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	u, err := store.NewUserStore(db).Create("maya@example.com", "Maya", "x", model.RoleUser)
	if err != nil {
		t.Fatalf("seed user: %v", err)
	}
	p, err := store.NewPetStore(db).Create(model.Pet{
		Name:    "Biscuit",
		Species: "dog",
		Status:  model.PetAvailable,
	})
	if err != nil {
		t.Fatalf("seed pet: %v", err)
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	rs := store.NewReminderStore(db)
	h := NewReminderHandler(rs, store.NewPetStore(db), websocket.NewHub(logger), logger)
	return h, rs, u, p
}

func seedDailyReminder(t *testing.T, rs *store.ReminderStore, userID, petID int64) *model.Reminder {
	t.Helper()
	rem, err := rs.Create(model.Reminder{
		UserID:    userID,
		PetID:     petID,
		Title:     "Morning pills",
		Type:      model.TypeMedication,
		Frequency: model.FreqDaily,
		StartDate: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		TimeOfDay: "08:00",
		Enabled:   true,
		Priority:  model.PriorityMedium,
	})
	if err != nil {
		t.Fatalf("seed reminder: %v", err)
	}
	return rem
}

func doUpdate(t *testing.T, h *ReminderHandler, userID, remID int64, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest("PUT", "/api/reminders/"+strconv.FormatInt(remID, 10), strings.NewReader(body))
	req.SetPathValue("id", strconv.FormatInt(remID, 10))
	ctx := auth.WithAuth(context.Background(), auth.AuthContext{UserID: userID, Role: model.RoleUser})
	rec := httptest.NewRecorder()
	h.Update(rec, req.WithContext(ctx))
	return rec
}

func TestUpdateRejectsOrphanedCompletions(t *testing.T) {
	h, rs, u, p := setupReminderHandler(t)
	rem := seedDailyReminder(t, rs, u.ID, p.ID)

	// Jan 5 is a daily occurrence but not a weekly one from Jan 1.
	if err := rs.MarkCompleted(rem.ID, time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC)); err != nil {
		t.Fatalf("mark completed: %v", err)
	}

	body := `{"pet_id":` + strconv.FormatInt(p.ID, 10) + `,"title":"Morning pills","type":"medication","frequency":"weekly","start_date":"2024-01-01","time_of_day":"08:00"}`
	rec := doUpdate(t, h, u.ID, rem.ID, body)

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want %d; body %s", rec.Code, http.StatusUnprocessableEntity, rec.Body.String())
	}

	// The stored reminder must be unchanged.
	stored, err := rs.GetByID(rem.ID)
	if err != nil {
		t.Fatalf("get reminder: %v", err)
	}
	if stored.Frequency != model.FreqDaily {
		t.Errorf("frequency = %q, want %q", stored.Frequency, model.FreqDaily)
	}
	if len(stored.CompletedDates) != 1 || stored.CompletedDates[0] != "2024-01-05" {
		t.Errorf("completed dates = %v, want [2024-01-05]", stored.CompletedDates)
	}
}

func TestUpdateKeepsValidCompletions(t *testing.T) {
	h, rs, u, p := setupReminderHandler(t)
	rem := seedDailyReminder(t, rs, u.ID, p.ID)

	if err := rs.MarkCompleted(rem.ID, time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC)); err != nil {
		t.Fatalf("mark completed: %v", err)
	}

	body := `{"pet_id":` + strconv.FormatInt(p.ID, 10) + `,"title":"Evening pills","type":"medication","frequency":"daily","start_date":"2024-01-01","time_of_day":"18:00"}`
	rec := doUpdate(t, h, u.ID, rem.ID, body)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d; body %s", rec.Code, http.StatusOK, rec.Body.String())
	}

	var got model.Reminder
	if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if got.Title != "Evening pills" {
		t.Errorf("title = %q, want %q", got.Title, "Evening pills")
	}
	if len(got.CompletedDates) != 1 || got.CompletedDates[0] != "2024-01-05" {
		t.Errorf("completed dates = %v, want [2024-01-05]", got.CompletedDates)
	}
}
