package store

import (
	"testing"

	"github.com/pawhaven/pawhaven/internal/model"
)

func TestPetCRUD(t *testing.T) {
	db := testDB(t)
	ps := NewPetStore(db)

	pet, err := ps.Create(model.Pet{
		Name:      "Clementine",
		Species:   "cat",
		Breed:     "tabby",
		Sex:       "female",
		AgeMonths: 18,
		Status:    model.PetAvailable,
	})
	if err != nil {
		t.Fatalf("create pet: %v", err)
	}
	if pet.Name != "Clementine" {
		t.Errorf("name = %q, want %q", pet.Name, "Clementine")
	}
	if pet.Status != model.PetAvailable {
		t.Errorf("status = %q, want available", pet.Status)
	}

	pet.Description = "Sweet senior cat, loves windowsills"
	updated, err := ps.Update(*pet)
	if err != nil {
		t.Fatalf("update pet: %v", err)
	}
	if updated.Description == "" {
		t.Error("description not persisted")
	}

	if err := ps.Delete(pet.ID); err != nil {
		t.Fatalf("delete pet: %v", err)
	}
	got, err := ps.GetByID(pet.ID)
	if err != nil {
		t.Fatalf("get deleted pet: %v", err)
	}
	if got != nil {
		t.Error("expected nil for deleted pet")
	}
}

func TestPetListByStatus(t *testing.T) {
	db := testDB(t)
	ps := NewPetStore(db)

	a, _ := ps.Create(model.Pet{Name: "A", Species: "dog", Status: model.PetAvailable})
	ps.Create(model.Pet{Name: "B", Species: "dog", Status: model.PetAdopted})

	available, err := ps.List(model.PetAvailable)
	if err != nil {
		t.Fatalf("list available: %v", err)
	}
	if len(available) != 1 || available[0].ID != a.ID {
		t.Errorf("available = %+v, want just pet A", available)
	}

	all, err := ps.List("")
	if err != nil {
		t.Fatalf("list all: %v", err)
	}
	if len(all) != 2 {
		t.Errorf("expected 2 pets, got %d", len(all))
	}
}

func TestPetSetStatus(t *testing.T) {
	db := testDB(t)
	ps := NewPetStore(db)

	pet, _ := ps.Create(model.Pet{Name: "Momo", Species: "rabbit", Status: model.PetAvailable})
	if err := ps.SetStatus(pet.ID, model.PetAdopted); err != nil {
		t.Fatalf("set status: %v", err)
	}
	got, _ := ps.GetByID(pet.ID)
	if got.Status != model.PetAdopted {
		t.Errorf("status = %q, want adopted", got.Status)
	}
}
