package stats

import (
	"testing"
	"time"

	"github.com/soluo/mental-load/internal/model"
)

var now = time.Date(2026, 3, 10, 18, 0, 0, 0, time.UTC)

func completion(taskID, memberID int64, at time.Time, minutes int) model.TaskCompletion {
	c := model.TaskCompletion{TaskID: taskID, CompletedBy: memberID, CompletedAt: at}
	if minutes > 0 {
		c.Duration = &minutes
	}
	return c
}

func TestMemberStatsEmpty(t *testing.T) {
	s := ComputeMemberStats(nil, nil, time.UTC)

	if s.TotalTasks != 0 || s.TotalDuration != 0 {
		t.Errorf("empty stats should be zero, got %+v", s)
	}
	if s.AverageDuration != 0 {
		t.Errorf("average duration with no completions should be 0, got %f", s.AverageDuration)
	}
	if len(s.MostActiveHours) != 0 {
		t.Errorf("no completions should yield no active hours, got %v", s.MostActiveHours)
	}
}

func TestMemberStatsAggregation(t *testing.T) {
	types := map[int64]model.TaskType{
		1: model.TaskFlexible,
		2: model.TaskOneTime,
	}
	completions := []model.TaskCompletion{
		completion(1, 10, now.Add(-2*time.Hour), 15),
		completion(1, 10, now.Add(-26*time.Hour), 25),
		completion(2, 10, now.Add(-3*time.Hour), 0), // no duration
	}

	s := ComputeMemberStats(completions, types, time.UTC)

	if s.TotalTasks != 3 {
		t.Errorf("total tasks = %d, want 3", s.TotalTasks)
	}
	if s.TotalDuration != 40 {
		t.Errorf("total duration = %d, want 40 (missing duration counts as 0)", s.TotalDuration)
	}
	if want := 40.0 / 3.0; s.AverageDuration != want {
		t.Errorf("average duration = %f, want %f", s.AverageDuration, want)
	}
	if s.UniqueTasksCompleted != 2 {
		t.Errorf("unique tasks = %d, want 2", s.UniqueTasksCompleted)
	}
	if s.TasksByType[model.TaskFlexible] != 2 || s.TasksByType[model.TaskOneTime] != 1 {
		t.Errorf("tasks by type = %v", s.TasksByType)
	}
	if len(s.CompletionsOverTime) != 3 {
		t.Errorf("completions over time has %d entries, want 3", len(s.CompletionsOverTime))
	}
}

func TestMemberStatsHourHistogram(t *testing.T) {
	at := func(hour int) time.Time {
		return time.Date(2026, 3, 10, hour, 30, 0, 0, time.UTC)
	}
	completions := []model.TaskCompletion{
		completion(1, 10, at(9), 0),
		completion(1, 10, at(9), 0),
		completion(1, 10, at(9), 0),
		completion(1, 10, at(14), 0),
		completion(1, 10, at(14), 0),
		completion(1, 10, at(20), 0),
	}

	s := ComputeMemberStats(completions, nil, time.UTC)

	if s.HourDistribution[9] != 3 || s.HourDistribution[14] != 2 || s.HourDistribution[20] != 1 {
		t.Errorf("hour distribution = %v", s.HourDistribution)
	}
	if len(s.MostActiveHours) != 3 {
		t.Fatalf("most active hours has %d entries, want 3", len(s.MostActiveHours))
	}
	if s.MostActiveHours[0].Hour != 9 || s.MostActiveHours[1].Hour != 14 || s.MostActiveHours[2].Hour != 20 {
		t.Errorf("most active hours = %v, want [9 14 20]", s.MostActiveHours)
	}
}

func TestMemberStatsTopHoursDropsZeroes(t *testing.T) {
	completions := []model.TaskCompletion{
		completion(1, 10, time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC), 0),
	}

	s := ComputeMemberStats(completions, nil, time.UTC)
	if len(s.MostActiveHours) != 1 {
		t.Errorf("only non-zero hours should be reported, got %v", s.MostActiveHours)
	}
}

func TestDailyActivityDenseWeek(t *testing.T) {
	members := []model.Member{
		{ID: 1, FirstName: "Alice", Color: "blue"},
		{ID: 2, FirstName: "Benoît", Color: "green"},
	}

	// Property 7: no completions at all still yields 7 zero days per member.
	activity := ComputeDailyActivity(members, nil, now)

	if len(activity) != 2 {
		t.Fatalf("activity has %d members, want 2", len(activity))
	}
	for _, a := range activity {
		if len(a.DailyStats) != 7 {
			t.Fatalf("member %d has %d days, want 7", a.MemberID, len(a.DailyStats))
		}
		for _, d := range a.DailyStats {
			if d.Minutes != 0 || d.TaskCount != 0 {
				t.Errorf("expected zero-filled entry, got %+v", d)
			}
		}
		// Oldest to newest, today last.
		last := a.DailyStats[6].Date
		if last.Day() != now.Day() {
			t.Errorf("last entry should be today, got %v", last)
		}
		if !a.DailyStats[0].Date.Before(last) {
			t.Error("entries should run oldest to newest")
		}
	}
}

func TestDailyActivityAggregation(t *testing.T) {
	members := []model.Member{{ID: 1, FirstName: "Alice", Color: "blue"}}
	completions := []model.TaskCompletion{
		completion(1, 1, now.Add(-time.Hour), 30),
		completion(2, 1, now.Add(-2*time.Hour), 10),
		completion(1, 1, now.AddDate(0, 0, -2), 45),
	}

	activity := ComputeDailyActivity(members, completions, now)
	days := activity[0].DailyStats

	today := days[6]
	if today.Minutes != 40 || today.TaskCount != 2 {
		t.Errorf("today = %+v, want 40 minutes over 2 tasks", today)
	}
	twoDaysAgo := days[4]
	if twoDaysAgo.Minutes != 45 || twoDaysAgo.TaskCount != 1 {
		t.Errorf("two days ago = %+v, want 45 minutes over 1 task", twoDaysAgo)
	}
}

func TestDailyActivityFrenchDayLetters(t *testing.T) {
	members := []model.Member{{ID: 1}}
	// 2026-03-10 is a Tuesday ("M" for mardi).
	activity := ComputeDailyActivity(members, nil, now)
	if got := activity[0].DailyStats[6].Day; got != "M" {
		t.Errorf("day letter for Tuesday = %q, want \"M\"", got)
	}
	// Six days earlier is a Wednesday ("M" for mercredi), first entry.
	if got := activity[0].DailyStats[0].Day; got != "M" {
		t.Errorf("day letter for Wednesday = %q, want \"M\"", got)
	}
}

func TestWeeklyReport(t *testing.T) {
	completions := []model.TaskCompletion{
		completion(1, 10, now, 10),
		completion(1, 11, now, 20),
		completion(2, 10, now, 5),
		completion(1, 10, now, 10),
		completion(3, 12, now, 0),
	}

	r := ComputeWeeklyReport(completions)

	if r.TotalCompletions != 5 {
		t.Errorf("total completions = %d, want 5", r.TotalCompletions)
	}
	if r.DailyAverage != 1 {
		t.Errorf("daily average = %d, want round(5/7)=1", r.DailyAverage)
	}

	// Member 10 leads with 3 completions and 25 minutes.
	if r.MemberStats[0].MemberID != 10 || r.MemberStats[0].TasksCompleted != 3 || r.MemberStats[0].TotalDuration != 25 {
		t.Errorf("leading member = %+v", r.MemberStats[0])
	}

	// Task 1 is the most completed.
	if r.MostCompletedTasks[0].TaskID != 1 || r.MostCompletedTasks[0].CompletionCount != 3 {
		t.Errorf("most completed = %+v", r.MostCompletedTasks[0])
	}

	// Least list runs ascending, so the rarest task comes first.
	if r.LeastCompletedTasks[0].CompletionCount > r.LeastCompletedTasks[len(r.LeastCompletedTasks)-1].CompletionCount {
		t.Errorf("least completed should be ascending: %v", r.LeastCompletedTasks)
	}
}

func TestWeeklyReportEmpty(t *testing.T) {
	r := ComputeWeeklyReport(nil)
	if r.TotalCompletions != 0 || r.DailyAverage != 0 {
		t.Errorf("empty report should be zero, got %+v", r)
	}
	if len(r.MemberStats) != 0 || len(r.MostCompletedTasks) != 0 || len(r.LeastCompletedTasks) != 0 {
		t.Error("empty report should have empty lists")
	}
}

func TestDailyStats(t *testing.T) {
	completions := []model.TaskCompletion{
		completion(1, 10, now, 0),
		completion(2, 11, now, 0),
		completion(3, 10, now, 0),
	}

	s := ComputeDailyStats(completions)
	if s.TotalTasksToday != 3 {
		t.Errorf("total today = %d, want 3", s.TotalTasksToday)
	}
	if len(s.StatsByMember) != 2 {
		t.Fatalf("stats by member has %d entries, want 2", len(s.StatsByMember))
	}
	if s.StatsByMember[0].MemberID != 10 || s.StatsByMember[0].TasksCompleted != 2 {
		t.Errorf("member 10 entry = %+v", s.StatsByMember[0])
	}
}
