package model

import "time"

type TaskType string

const (
	// TaskFlexible is a recurring chore with no fixed due date; it resets
	// every day and can be completed any number of times.
	TaskFlexible TaskType = "flexible"
	// TaskOneTime is a chore with an optional due date, completed at most
	// once until reopened.
	TaskOneTime TaskType = "one-time"
)

// Task is a household chore. DueDate and ShowBeforeDays are only
// meaningful for one-time tasks, as is AssignedTo. Deleting a task sets
// IsActive to false; rows are never removed.
type Task struct {
	ID                int64      `json:"id"`
	HouseholdID       int64      `json:"household_id"`
	Title             string     `json:"title"`
	Description       string     `json:"description,omitempty"`
	Type              TaskType   `json:"type"`
	DueDate           *time.Time `json:"due_date,omitempty"`
	ShowBeforeDays    *int       `json:"show_before_days,omitempty"`
	IsActive          bool       `json:"is_active"`
	IsCompleted       bool       `json:"is_completed"`
	CompletedAt       *time.Time `json:"completed_at,omitempty"`
	EstimatedDuration *int       `json:"estimated_duration,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
	CreatedBy         int64      `json:"created_by"`
	AssignedTo        *int64     `json:"assigned_to,omitempty"`
}
