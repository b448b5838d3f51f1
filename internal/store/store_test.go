package store

import (
	"database/sql"
	"testing"

	"github.com/soluo/mental-load/internal/database"
	"github.com/soluo/mental-load/internal/model"
)

func setupTestDB(t *testing.T) *sql.DB {
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

// seedHousehold creates a user, a household and its first member.
func seedHousehold(t *testing.T, db *sql.DB) (*model.User, *model.Household, *model.Member) {
	t.Helper()
	users := NewUserStore(db)
	households := NewHouseholdStore(db)
	members := NewMemberStore(db)

	user, err := users.Create("claire@example.com", "Claire", "x")
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	household, err := households.Create("Maison", user.ID)
	if err != nil {
		t.Fatalf("create household: %v", err)
	}
	member, err := members.Create(household.ID, &user.ID, "Claire", model.RoleAdult, nil, "blue")
	if err != nil {
		t.Fatalf("create member: %v", err)
	}
	return user, household, member
}
