package model

import "time"

type Role string

const (
	RoleAdult Role = "adult"
	RoleChild Role = "child"
)

// Palette is the set of colors assignable to household members. A new
// member gets a random color not yet used in the household; once all
// eight are taken the full palette is drawn from again.
var Palette = []string{
	"orange",
	"blue",
	"pink",
	"green",
	"purple",
	"red",
	"yellow",
	"indigo",
}

// Member is a person in a household. UserID is nil for placeholder
// profiles that are not linked to a login account.
type Member struct {
	ID          int64     `json:"id"`
	HouseholdID int64     `json:"household_id"`
	UserID      *int64    `json:"user_id"`
	FirstName   string    `json:"first_name"`
	Role        Role      `json:"role"`
	Email       *string   `json:"email,omitempty"`
	Color       string    `json:"color"`
	JoinedAt    time.Time `json:"joined_at"`
}
