// Package stats aggregates completion history into the numbers the
// review screens show. Everything here is a pure derivation over rows
// already fetched from the store.
package stats

import (
	"math"
	"sort"
	"time"

	"github.com/soluo/mental-load/internal/model"
)

// Single-letter French day names, indexed by time.Weekday (Sunday first).
var dayLetters = [7]string{"D", "L", "M", "M", "J", "V", "S"}

type HourCount struct {
	Hour  int `json:"hour"`
	Count int `json:"count"`
}

type TimeEntry struct {
	Date     time.Time `json:"date"`
	Duration *int      `json:"duration,omitempty"`
}

// MemberStats summarizes one member's completions over a period.
type MemberStats struct {
	TotalTasks           int                    `json:"totalTasks"`
	TotalDuration        int                    `json:"totalDuration"`
	AverageDuration      float64                `json:"averageDuration"`
	UniqueTasksCompleted int                    `json:"uniqueTasksCompleted"`
	TasksByType          map[model.TaskType]int `json:"tasksByType"`
	HourDistribution     [24]int                `json:"hourDistribution"`
	MostActiveHours      []HourCount            `json:"mostActiveHours"`
	CompletionsOverTime  []TimeEntry            `json:"completionsOverTime"`
}

// ComputeMemberStats aggregates the given completions. typeByTask maps
// task id to task type; completions whose task no longer resolves are
// still counted in the totals, just not in the per-type breakdown.
// Hour buckets use loc, the caller's display timezone.
func ComputeMemberStats(completions []model.TaskCompletion, typeByTask map[int64]model.TaskType, loc *time.Location) MemberStats {
	s := MemberStats{
		TasksByType:         map[model.TaskType]int{},
		MostActiveHours:     []HourCount{},
		CompletionsOverTime: []TimeEntry{},
	}

	taskIDs := map[int64]struct{}{}
	for _, c := range completions {
		s.TotalTasks++
		if c.Duration != nil {
			s.TotalDuration += *c.Duration
		}
		taskIDs[c.TaskID] = struct{}{}
		if tt, ok := typeByTask[c.TaskID]; ok {
			s.TasksByType[tt]++
		}
		s.HourDistribution[c.CompletedAt.In(loc).Hour()]++
		s.CompletionsOverTime = append(s.CompletionsOverTime, TimeEntry{Date: c.CompletedAt, Duration: c.Duration})
	}

	s.UniqueTasksCompleted = len(taskIDs)
	if s.TotalTasks > 0 {
		s.AverageDuration = float64(s.TotalDuration) / float64(s.TotalTasks)
	}
	s.MostActiveHours = topHours(s.HourDistribution, 3)
	return s
}

// topHours returns the n busiest hours, count descending, hour index
// ascending on ties, with zero-count hours dropped after the cut.
func topHours(dist [24]int, n int) []HourCount {
	hours := make([]HourCount, 24)
	for h, count := range dist {
		hours[h] = HourCount{Hour: h, Count: count}
	}
	sort.SliceStable(hours, func(i, j int) bool {
		return hours[i].Count > hours[j].Count
	})

	top := []HourCount{}
	for _, hc := range hours[:n] {
		if hc.Count > 0 {
			top = append(top, hc)
		}
	}
	return top
}

type DayStat struct {
	Day       string    `json:"day"`
	Date      time.Time `json:"date"`
	Minutes   int       `json:"minutes"`
	TaskCount int       `json:"taskCount"`
}

// MemberDailyActivity is one member's trailing-week activity, one entry
// per calendar day, oldest first.
type MemberDailyActivity struct {
	MemberID   int64     `json:"memberId"`
	FirstName  string    `json:"firstName"`
	Color      string    `json:"color"`
	DailyStats []DayStat `json:"dailyStats"`
}

// ComputeDailyActivity builds a dense 7-day series for every member,
// including members with no completions at all. Days are calendar days
// in now's location, ending today.
func ComputeDailyActivity(members []model.Member, completions []model.TaskCompletion, now time.Time) []MemberDailyActivity {
	loc := now.Location()

	type tally struct {
		minutes   int
		taskCount int
	}
	perMemberDay := map[int64]map[string]*tally{}
	for _, m := range members {
		perMemberDay[m.ID] = map[string]*tally{}
	}

	for _, c := range completions {
		days, ok := perMemberDay[c.CompletedBy]
		if !ok {
			// Completion by a member removed since; skip rather than fail.
			continue
		}
		key := c.CompletedAt.In(loc).Format("2006-01-02")
		t := days[key]
		if t == nil {
			t = &tally{}
			days[key] = t
		}
		if c.Duration != nil {
			t.minutes += *c.Duration
		}
		t.taskCount++
	}

	result := make([]MemberDailyActivity, 0, len(members))
	for _, m := range members {
		activity := MemberDailyActivity{
			MemberID:   m.ID,
			FirstName:  m.FirstName,
			Color:      m.Color,
			DailyStats: make([]DayStat, 0, 7),
		}
		for i := 6; i >= 0; i-- {
			date := now.AddDate(0, 0, -i)
			key := date.Format("2006-01-02")
			stat := DayStat{
				Day:  dayLetters[date.Weekday()],
				Date: date,
			}
			if t := perMemberDay[m.ID][key]; t != nil {
				stat.Minutes = t.minutes
				stat.TaskCount = t.taskCount
			}
			activity.DailyStats = append(activity.DailyStats, stat)
		}
		result = append(result, activity)
	}
	return result
}

type MemberWeekly struct {
	MemberID       int64 `json:"memberId"`
	TasksCompleted int   `json:"tasksCompleted"`
	TotalDuration  int   `json:"totalDuration"`
}

type TaskFrequency struct {
	TaskID          int64 `json:"taskId"`
	CompletionCount int   `json:"completionCount"`
}

// WeeklyReport summarizes a household's trailing 7 days.
type WeeklyReport struct {
	TotalCompletions    int             `json:"totalCompletions"`
	MemberStats         []MemberWeekly  `json:"memberStats"`
	MostCompletedTasks  []TaskFrequency `json:"mostCompletedTasks"`
	LeastCompletedTasks []TaskFrequency `json:"leastCompletedTasks"`
	DailyAverage        int             `json:"dailyAverage"`
}

// ComputeWeeklyReport aggregates one week of completions. Member order
// is completion count descending; the most/least lists are the top and
// bottom five tasks by frequency, the least list ascending.
func ComputeWeeklyReport(completions []model.TaskCompletion) WeeklyReport {
	report := WeeklyReport{
		TotalCompletions:    len(completions),
		MemberStats:         []MemberWeekly{},
		MostCompletedTasks:  []TaskFrequency{},
		LeastCompletedTasks: []TaskFrequency{},
		DailyAverage:        int(math.Round(float64(len(completions)) / 7)),
	}

	// Tally in first-seen order so ties stay deterministic.
	memberIndex := map[int64]int{}
	for _, c := range completions {
		i, ok := memberIndex[c.CompletedBy]
		if !ok {
			i = len(report.MemberStats)
			memberIndex[c.CompletedBy] = i
			report.MemberStats = append(report.MemberStats, MemberWeekly{MemberID: c.CompletedBy})
		}
		report.MemberStats[i].TasksCompleted++
		if c.Duration != nil {
			report.MemberStats[i].TotalDuration += *c.Duration
		}
	}
	sort.SliceStable(report.MemberStats, func(i, j int) bool {
		return report.MemberStats[i].TasksCompleted > report.MemberStats[j].TasksCompleted
	})

	taskIndex := map[int64]int{}
	var frequencies []TaskFrequency
	for _, c := range completions {
		i, ok := taskIndex[c.TaskID]
		if !ok {
			i = len(frequencies)
			taskIndex[c.TaskID] = i
			frequencies = append(frequencies, TaskFrequency{TaskID: c.TaskID})
		}
		frequencies[i].CompletionCount++
	}
	sort.SliceStable(frequencies, func(i, j int) bool {
		return frequencies[i].CompletionCount > frequencies[j].CompletionCount
	})

	top := len(frequencies)
	if top > 5 {
		top = 5
	}
	report.MostCompletedTasks = append(report.MostCompletedTasks, frequencies[:top]...)

	bottom := len(frequencies) - 5
	if bottom < 0 {
		bottom = 0
	}
	least := frequencies[bottom:]
	for i := len(least) - 1; i >= 0; i-- {
		report.LeastCompletedTasks = append(report.LeastCompletedTasks, least[i])
	}

	return report
}

// DailyStatEntry is one member's completion count for today.
type DailyStatEntry struct {
	MemberID       int64 `json:"memberId"`
	TasksCompleted int   `json:"tasksCompleted"`
}

// DailyStats is the dashboard's "who did what today" summary.
type DailyStats struct {
	TotalTasksToday int              `json:"totalTasksToday"`
	StatsByMember   []DailyStatEntry `json:"statsByMember"`
}

// ComputeDailyStats counts today's completions per member, in
// first-seen order.
func ComputeDailyStats(completions []model.TaskCompletion) DailyStats {
	stats := DailyStats{
		TotalTasksToday: len(completions),
		StatsByMember:   []DailyStatEntry{},
	}
	index := map[int64]int{}
	for _, c := range completions {
		i, ok := index[c.CompletedBy]
		if !ok {
			i = len(stats.StatsByMember)
			index[c.CompletedBy] = i
			stats.StatsByMember = append(stats.StatsByMember, DailyStatEntry{MemberID: c.CompletedBy})
		}
		stats.StatsByMember[i].TasksCompleted++
	}
	return stats
}
