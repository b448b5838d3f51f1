package model

import "time"

// PushSubscription is a web push endpoint registered by a member's browser.
type PushSubscription struct {
	ID          int64     `json:"id"`
	MemberID    int64     `json:"member_id"`
	HouseholdID int64     `json:"household_id"`
	Endpoint    string    `json:"endpoint"`
	P256dhKey   string    `json:"-"`
	AuthKey     string    `json:"-"`
	DeviceName  string    `json:"device_name"`
	CreatedAt   time.Time `json:"created_at"`
}
