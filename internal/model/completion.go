package model

import "time"

// TaskCompletion records one member finishing one task. ForDate is the
// start-of-day bucket the completion counts toward. Only the member who
// created a completion may edit it.
type TaskCompletion struct {
	ID          int64     `json:"id"`
	TaskID      int64     `json:"task_id"`
	HouseholdID int64     `json:"household_id"`
	CompletedBy int64     `json:"completed_by"`
	CompletedAt time.Time `json:"completed_at"`
	ForDate     time.Time `json:"for_date"`
	Duration    *int      `json:"duration,omitempty"`
	Notes       *string   `json:"notes,omitempty"`
	WasLate     bool      `json:"was_late"`
	DaysLate    *int      `json:"days_late,omitempty"`
}
