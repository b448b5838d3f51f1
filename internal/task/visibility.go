package task

import (
	"math"
	"time"

	"github.com/soluo/mental-load/internal/model"
)

// DefaultShowBeforeDays is how many days before its due date a one-time
// task enters the dashboard when the task does not set its own window.
const DefaultShowBeforeDays = 7

const day = 24 * time.Hour

// StartOfDay returns midnight of t's calendar day in t's location.
func StartOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// EndOfDay returns 23:59:59.999 of t's calendar day in t's location.
func EndOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, int(999*time.Millisecond), t.Location())
}

// IsVisibleToday decides whether a task shows up on the dashboard.
// Flexible tasks show until completed once today. One-time tasks show
// from showBeforeDays before their due date, and stay visible past the
// due date until completed; a one-time task without a due date is
// always visible.
func IsVisibleToday(t model.Task, completedToday bool, now time.Time) bool {
	if !t.IsActive {
		return false
	}

	if t.Type == model.TaskFlexible {
		return !completedToday
	}

	// One-time
	if t.IsCompleted {
		return false
	}
	if t.DueDate == nil {
		return true
	}

	showBefore := DefaultShowBeforeDays
	if t.ShowBeforeDays != nil {
		showBefore = *t.ShowBeforeDays
	}

	// Negative when past due, so overdue tasks always pass.
	daysToDue := ceilDays(t.DueDate.Sub(now))
	return daysToDue <= showBefore
}

// IsOverdue reports whether a one-time task's due date has passed
// without the task being completed.
func IsOverdue(t model.Task, now time.Time) bool {
	if t.Type != model.TaskOneTime {
		return false
	}
	if t.IsCompleted {
		return false
	}
	if t.DueDate == nil {
		return false
	}
	return now.After(*t.DueDate)
}

// DaysSinceLastCompletion returns whole days elapsed since the last
// completion, or nil if the task has never been completed.
func DaysSinceLastCompletion(last *time.Time, now time.Time) *int {
	if last == nil {
		return nil
	}
	days := int(math.Floor(now.Sub(*last).Hours() / 24))
	return &days
}

// Lateness is the outcome of completing a task relative to its due date.
// DaysLate is only set when WasLate is true.
type Lateness struct {
	WasLate  bool `json:"was_late"`
	DaysLate *int `json:"days_late,omitempty"`
}

// ComputeLateness evaluates a completion against the task's due date.
// Only one-time tasks with a due date can be late.
func ComputeLateness(t model.Task, completedAt time.Time) Lateness {
	if t.Type != model.TaskOneTime {
		return Lateness{}
	}
	if t.DueDate == nil {
		return Lateness{}
	}

	if !completedAt.After(*t.DueDate) {
		return Lateness{}
	}

	daysLate := ceilDays(completedAt.Sub(*t.DueDate))
	return Lateness{WasLate: true, DaysLate: &daysLate}
}

func ceilDays(d time.Duration) int {
	return int(math.Ceil(float64(d) / float64(day)))
}
