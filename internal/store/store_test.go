package store

import (
	"database/sql"
	"testing"

	"github.com/pawhaven/pawhaven/internal/database"
	"github.com/pawhaven/pawhaven/internal/model"
)

func testDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		t.Fatalf("enable foreign keys: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func seedUser(t *testing.T, db *sql.DB) *model.User {
	t.Helper()
	u, err := NewUserStore(db).Create("maya@example.com", "Maya", "x", model.RoleUser)
	if err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return u
}

func seedPet(t *testing.T, db *sql.DB) *model.Pet {
	t.Helper()
	p, err := NewPetStore(db).Create(model.Pet{
		Name:    "Biscuit",
		Species: "dog",
		Breed:   "beagle",
		Status:  model.PetAvailable,
	})
	if err != nil {
		t.Fatalf("seed pet: %v", err)
	}
	return p
}
