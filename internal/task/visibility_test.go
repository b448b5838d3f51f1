package task

import (
	"testing"
	"time"

	"github.com/soluo/mental-load/internal/model"
)

var now = time.Date(2026, 3, 10, 14, 30, 0, 0, time.UTC)

func flexibleTask() model.Task {
	return model.Task{ID: 1, Title: "Vider le lave-vaisselle", Type: model.TaskFlexible, IsActive: true}
}

func oneTimeTask(due *time.Time) model.Task {
	return model.Task{ID: 2, Title: "Prendre rendez-vous dentiste", Type: model.TaskOneTime, IsActive: true, DueDate: due}
}

func TestStartAndEndOfDay(t *testing.T) {
	start := StartOfDay(now)
	want := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	if !start.Equal(want) {
		t.Errorf("StartOfDay = %v, want %v", start, want)
	}

	end := EndOfDay(now)
	if end.Hour() != 23 || end.Minute() != 59 || end.Second() != 59 {
		t.Errorf("EndOfDay = %v, want 23:59:59", end)
	}
	if !end.After(start) {
		t.Error("EndOfDay should be after StartOfDay")
	}
}

func TestFlexibleVisibility(t *testing.T) {
	ft := flexibleTask()

	if !IsVisibleToday(ft, false, now) {
		t.Error("flexible task not completed today should be visible")
	}
	if IsVisibleToday(ft, true, now) {
		t.Error("flexible task completed today should be hidden")
	}
}

func TestInactiveNeverVisible(t *testing.T) {
	ft := flexibleTask()
	ft.IsActive = false

	if IsVisibleToday(ft, false, now) {
		t.Error("inactive task should never be visible")
	}
}

func TestOneTimeVisibilityWindow(t *testing.T) {
	// Due in 10 days with the default 7-day window: not yet visible.
	far := now.Add(10 * 24 * time.Hour)
	if IsVisibleToday(oneTimeTask(&far), false, now) {
		t.Error("task due in 10 days should not be visible yet")
	}

	// Due in 5 days: inside the window.
	soon := now.Add(5 * 24 * time.Hour)
	if !IsVisibleToday(oneTimeTask(&soon), false, now) {
		t.Error("task due in 5 days should be visible")
	}
}

func TestOneTimeCustomWindow(t *testing.T) {
	due := now.Add(10 * 24 * time.Hour)
	tk := oneTimeTask(&due)
	window := 14
	tk.ShowBeforeDays = &window

	if !IsVisibleToday(tk, false, now) {
		t.Error("task due in 10 days with a 14-day window should be visible")
	}
}

func TestOneTimePastDueStaysVisible(t *testing.T) {
	due := now.Add(-24 * time.Hour)
	tk := oneTimeTask(&due)

	if !IsVisibleToday(tk, false, now) {
		t.Error("past-due task should stay visible")
	}

	// Even with a zero-day window.
	window := 0
	tk.ShowBeforeDays = &window
	if !IsVisibleToday(tk, false, now) {
		t.Error("past-due task should stay visible regardless of window")
	}
}

func TestOneTimeCompletedHidden(t *testing.T) {
	due := now.Add(2 * 24 * time.Hour)
	tk := oneTimeTask(&due)
	tk.IsCompleted = true

	if IsVisibleToday(tk, false, now) {
		t.Error("completed one-time task should be hidden")
	}
}

func TestOneTimeNoDueDateAlwaysVisible(t *testing.T) {
	if !IsVisibleToday(oneTimeTask(nil), false, now) {
		t.Error("one-time task without a due date should always be visible")
	}
}

func TestIsOverdue(t *testing.T) {
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)

	if !IsOverdue(oneTimeTask(&past), now) {
		t.Error("one-time task with past due date should be overdue")
	}
	if IsOverdue(oneTimeTask(&future), now) {
		t.Error("task due in the future is not overdue")
	}
	if IsOverdue(oneTimeTask(nil), now) {
		t.Error("task without a due date is never overdue")
	}

	done := oneTimeTask(&past)
	done.IsCompleted = true
	if IsOverdue(done, now) {
		t.Error("completed task is not overdue")
	}

	ft := flexibleTask()
	if IsOverdue(ft, now) {
		t.Error("flexible tasks are never overdue")
	}
}

func TestDaysSinceLastCompletion(t *testing.T) {
	if got := DaysSinceLastCompletion(nil, now); got != nil {
		t.Errorf("no prior completion should yield nil, got %d", *got)
	}

	last := now.Add(-50 * time.Hour) // just over 2 days
	got := DaysSinceLastCompletion(&last, now)
	if got == nil || *got != 2 {
		t.Errorf("days since = %v, want 2", got)
	}

	sameDay := now.Add(-3 * time.Hour)
	got = DaysSinceLastCompletion(&sameDay, now)
	if got == nil || *got != 0 {
		t.Errorf("days since = %v, want 0", got)
	}
}

func TestComputeLatenessLate(t *testing.T) {
	due := time.Date(2026, 3, 8, 18, 0, 0, 0, time.UTC)
	tk := oneTimeTask(&due)

	l := ComputeLateness(tk, due.Add(2*24*time.Hour))
	if !l.WasLate {
		t.Fatal("completion 2 days after due date should be late")
	}
	if l.DaysLate == nil || *l.DaysLate != 2 {
		t.Errorf("days late = %v, want 2", l.DaysLate)
	}

	// One hour late still rounds up to a full day.
	l = ComputeLateness(tk, due.Add(time.Hour))
	if l.DaysLate == nil || *l.DaysLate != 1 {
		t.Errorf("days late = %v, want 1", l.DaysLate)
	}
}

func TestComputeLatenessOnTime(t *testing.T) {
	due := time.Date(2026, 3, 8, 18, 0, 0, 0, time.UTC)
	tk := oneTimeTask(&due)

	l := ComputeLateness(tk, due.Add(-time.Hour))
	if l.WasLate {
		t.Error("completion before due date should not be late")
	}
	if l.DaysLate != nil {
		t.Errorf("days late should be absent, got %d", *l.DaysLate)
	}
}

func TestComputeLatenessNotApplicable(t *testing.T) {
	if ComputeLateness(flexibleTask(), now).WasLate {
		t.Error("flexible tasks cannot be late")
	}
	if ComputeLateness(oneTimeTask(nil), now).WasLate {
		t.Error("one-time task without a due date cannot be late")
	}
}
