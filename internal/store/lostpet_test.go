package store

import (
	"testing"
	"time"

	"github.com/pawhaven/pawhaven/internal/model"
)

func seedReport(t *testing.T, s *LostPetStore, userID int64, name string, lastSeen time.Time) *model.LostPetReport {
	t.Helper()
	r, err := s.Create(model.LostPetReport{
		UserID:           userID,
		PetName:          name,
		Species:          "dog",
		LastSeenLocation: "Riverside Park",
		LastSeenAt:       lastSeen,
	})
	if err != nil {
		t.Fatalf("seed report: %v", err)
	}
	return r
}

func TestLostPetCreateAndGet(t *testing.T) {
	db := testDB(t)
	u := seedUser(t, db)
	s := NewLostPetStore(db)

	lastSeen := time.Date(2026, 3, 10, 17, 30, 0, 0, time.UTC)
	created := seedReport(t, s, u.ID, "Biscuit", lastSeen)

	got, err := s.GetByID(created.ID)
	if err != nil {
		t.Fatalf("get report: %v", err)
	}
	if got == nil {
		t.Fatal("expected report")
	}
	if got.PetName != "Biscuit" {
		t.Errorf("pet name = %q, want Biscuit", got.PetName)
	}
	if !got.LastSeenAt.Equal(lastSeen) {
		t.Errorf("last seen = %v, want %v", got.LastSeenAt, lastSeen)
	}
	if got.Resolved() {
		t.Error("new report should not be resolved")
	}
}

func TestLostPetListOpenFirst(t *testing.T) {
	db := testDB(t)
	u := seedUser(t, db)
	s := NewLostPetStore(db)

	older := seedReport(t, s, u.ID, "Mochi", time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC))
	newer := seedReport(t, s, u.ID, "Pepper", time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC))

	if _, err := s.Resolve(newer.ID, time.Date(2026, 3, 5, 12, 0, 0, 0, time.UTC)); err != nil {
		t.Fatalf("resolve: %v", err)
	}

	reports, err := s.List()
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(reports) != 2 {
		t.Fatalf("expected 2 reports, got %d", len(reports))
	}
	if reports[0].ID != older.ID {
		t.Errorf("first report = %d, want open report %d", reports[0].ID, older.ID)
	}
	if !reports[1].Resolved() {
		t.Error("resolved report should come last")
	}
}

func TestLostPetResolve(t *testing.T) {
	db := testDB(t)
	u := seedUser(t, db)
	s := NewLostPetStore(db)

	r := seedReport(t, s, u.ID, "Biscuit", time.Date(2026, 3, 10, 17, 30, 0, 0, time.UTC))

	at := time.Date(2026, 3, 12, 8, 0, 0, 0, time.UTC)
	resolved, err := s.Resolve(r.ID, at)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if !resolved.Resolved() {
		t.Fatal("expected resolved report")
	}
	if !resolved.ResolvedAt.Equal(at) {
		t.Errorf("resolved at = %v, want %v", resolved.ResolvedAt, at)
	}
}

func TestLostPetDelete(t *testing.T) {
	db := testDB(t)
	u := seedUser(t, db)
	s := NewLostPetStore(db)

	r := seedReport(t, s, u.ID, "Biscuit", time.Date(2026, 3, 10, 17, 30, 0, 0, time.UTC))

	if err := s.Delete(r.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}

	got, err := s.GetByID(r.ID)
	if err != nil {
		t.Fatalf("get after delete: %v", err)
	}
	if got != nil {
		t.Error("expected nil after delete")
	}
}
