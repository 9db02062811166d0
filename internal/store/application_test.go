package store

import (
	"testing"

	"github.com/pawhaven/pawhaven/internal/model"
)

func TestApplicationLifecycle(t *testing.T) {
	db := testDB(t)
	user := seedUser(t, db)
	pet := seedPet(t, db)
	as := NewApplicationStore(db)

	app, err := as.Create(pet.ID, user.ID, "We have a fenced yard and two kids who adore beagles.")
	if err != nil {
		t.Fatalf("create application: %v", err)
	}
	if app.Status != model.ApplicationPending {
		t.Errorf("status = %q, want pending", app.Status)
	}
	if app.Reference == "" {
		t.Error("application should get a reference code")
	}

	pending, err := as.HasPendingForPet(pet.ID, user.ID)
	if err != nil {
		t.Fatalf("has pending: %v", err)
	}
	if !pending {
		t.Error("expected a pending application")
	}

	approved, err := as.SetStatus(app.ID, model.ApplicationApproved)
	if err != nil {
		t.Fatalf("approve: %v", err)
	}
	if approved.Status != model.ApplicationApproved {
		t.Errorf("status = %q, want approved", approved.Status)
	}

	pending, _ = as.HasPendingForPet(pet.ID, user.ID)
	if pending {
		t.Error("approved application should no longer count as pending")
	}
}

func TestApplicationReferencesAreUnique(t *testing.T) {
	db := testDB(t)
	user := seedUser(t, db)
	pet := seedPet(t, db)
	as := NewApplicationStore(db)

	a, _ := as.Create(pet.ID, user.ID, "first")
	b, _ := as.Create(pet.ID, user.ID, "second")
	if a.Reference == b.Reference {
		t.Error("two applications share a reference code")
	}
}

func TestApplicationListPendingOrder(t *testing.T) {
	db := testDB(t)
	user := seedUser(t, db)
	pet := seedPet(t, db)
	as := NewApplicationStore(db)

	first, _ := as.Create(pet.ID, user.ID, "first")
	second, _ := as.Create(pet.ID, user.ID, "second")
	as.SetStatus(second.ID, model.ApplicationRejected)

	pending, err := as.ListPending()
	if err != nil {
		t.Fatalf("list pending: %v", err)
	}
	if len(pending) != 1 || pending[0].ID != first.ID {
		t.Errorf("pending = %+v, want only the first application", pending)
	}
}
