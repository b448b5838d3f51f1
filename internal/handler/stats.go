package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/soluo/mental-load/internal/apperr"
	"github.com/soluo/mental-load/internal/auth"
	"github.com/soluo/mental-load/internal/model"
	"github.com/soluo/mental-load/internal/stats"
	"github.com/soluo/mental-load/internal/store"
	"github.com/soluo/mental-load/internal/task"
)

type StatsHandler struct {
	completions *store.CompletionStore
	members     *store.MemberStore
	tasks       *store.TaskStore
	logger      *slog.Logger
}

func NewStatsHandler(completions *store.CompletionStore, members *store.MemberStore, tasks *store.TaskStore, logger *slog.Logger) *StatsHandler {
	return &StatsHandler{completions: completions, members: members, tasks: tasks, logger: logger}
}

// MemberStats handles GET /api/members/{id}/stats?start=&end=
// Bounds are RFC 3339 timestamps; both or neither must be given.
func (h *StatsHandler) MemberStats(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, h.logger, apperr.Validation("invalid member id"))
		return
	}
	member, err := h.members.GetByID(id)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	if member == nil {
		writeError(w, h.logger, apperr.NotFound("member not found"))
		return
	}
	if member.HouseholdID != auth.HouseholdID(r.Context()) {
		writeError(w, h.logger, apperr.NotAuthorized("not a member of this household"))
		return
	}

	startParam := r.URL.Query().Get("start")
	endParam := r.URL.Query().Get("end")

	var completions []model.TaskCompletion
	switch {
	case startParam == "" && endParam == "":
		completions, err = h.completions.ListByMember(member.ID)
	case startParam != "" && endParam != "":
		var start, end time.Time
		start, err = time.Parse(time.RFC3339, startParam)
		if err != nil {
			writeError(w, h.logger, apperr.Validation("invalid start timestamp"))
			return
		}
		end, err = time.Parse(time.RFC3339, endParam)
		if err != nil {
			writeError(w, h.logger, apperr.Validation("invalid end timestamp"))
			return
		}
		completions, err = h.completions.ListByMemberRange(member.ID, start, end)
	default:
		writeError(w, h.logger, apperr.Validation("start and end must be given together"))
		return
	}
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	typeByTask, err := h.taskTypes(completions)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, stats.ComputeMemberStats(completions, typeByTask, time.Local))
}

// DailyActivity handles GET /api/households/{id}/activity/daily
func (h *StatsHandler) DailyActivity(w http.ResponseWriter, r *http.Request) {
	householdID, err := h.requireHousehold(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	now := time.Now()
	members, err := h.members.ListByHousehold(householdID)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	since := task.StartOfDay(now).AddDate(0, 0, -6)
	completions, err := h.completions.ListByHouseholdSince(householdID, since)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, stats.ComputeDailyActivity(members, completions, now))
}

type weeklyMemberStat struct {
	stats.MemberWeekly
	FirstName string `json:"firstName"`
}

type weeklyTaskStat struct {
	stats.TaskFrequency
	Title string `json:"title"`
}

type weeklyReportResponse struct {
	TotalCompletions    int                `json:"totalCompletions"`
	MemberStats         []weeklyMemberStat `json:"memberStats"`
	MostCompletedTasks  []weeklyTaskStat   `json:"mostCompletedTasks"`
	LeastCompletedTasks []weeklyTaskStat   `json:"leastCompletedTasks"`
	DailyAverage        int                `json:"dailyAverage"`
}

// WeeklyReport handles GET /api/households/{id}/report/weekly
func (h *StatsHandler) WeeklyReport(w http.ResponseWriter, r *http.Request) {
	householdID, err := h.requireHousehold(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	now := time.Now()
	completions, err := h.completions.ListByHouseholdSince(householdID, now.AddDate(0, 0, -7))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	report := stats.ComputeWeeklyReport(completions)

	nameByMember, err := h.memberNames(householdID)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	resp := weeklyReportResponse{
		TotalCompletions:    report.TotalCompletions,
		MemberStats:         []weeklyMemberStat{},
		MostCompletedTasks:  []weeklyTaskStat{},
		LeastCompletedTasks: []weeklyTaskStat{},
		DailyAverage:        report.DailyAverage,
	}
	for _, ms := range report.MemberStats {
		name := nameByMember[ms.MemberID]
		if name == "" {
			name = unknownMemberLabel
		}
		resp.MemberStats = append(resp.MemberStats, weeklyMemberStat{MemberWeekly: ms, FirstName: name})
	}
	for _, tf := range report.MostCompletedTasks {
		ts, err := h.taskStat(tf)
		if err != nil {
			writeError(w, h.logger, err)
			return
		}
		resp.MostCompletedTasks = append(resp.MostCompletedTasks, ts)
	}
	for _, tf := range report.LeastCompletedTasks {
		ts, err := h.taskStat(tf)
		if err != nil {
			writeError(w, h.logger, err)
			return
		}
		resp.LeastCompletedTasks = append(resp.LeastCompletedTasks, ts)
	}

	writeJSON(w, http.StatusOK, resp)
}

type dailyStatEntry struct {
	stats.DailyStatEntry
	FirstName string `json:"firstName"`
}

type dailyStatsResponse struct {
	TotalTasksToday int              `json:"totalTasksToday"`
	StatsByMember   []dailyStatEntry `json:"statsByMember"`
}

// DailyStats handles GET /api/households/{id}/stats/daily: today's
// completion counts per member.
func (h *StatsHandler) DailyStats(w http.ResponseWriter, r *http.Request) {
	householdID, err := h.requireHousehold(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	now := time.Now()
	completions, err := h.completions.ListByHouseholdSince(householdID, task.StartOfDay(now))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	daily := stats.ComputeDailyStats(completions)
	nameByMember, err := h.memberNames(householdID)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	resp := dailyStatsResponse{
		TotalTasksToday: daily.TotalTasksToday,
		StatsByMember:   []dailyStatEntry{},
	}
	for _, e := range daily.StatsByMember {
		name := nameByMember[e.MemberID]
		if name == "" {
			name = unknownMemberLabel
		}
		resp.StatsByMember = append(resp.StatsByMember, dailyStatEntry{DailyStatEntry: e, FirstName: name})
	}

	writeJSON(w, http.StatusOK, resp)
}

// taskTypes resolves the type of every task referenced by the given
// completions. Deleted tasks still resolve; their rows are kept.
func (h *StatsHandler) taskTypes(completions []model.TaskCompletion) (map[int64]model.TaskType, error) {
	types := map[int64]model.TaskType{}
	for _, c := range completions {
		if _, ok := types[c.TaskID]; ok {
			continue
		}
		t, err := h.tasks.GetByID(c.TaskID)
		if err != nil {
			return nil, err
		}
		if t != nil {
			types[c.TaskID] = t.Type
		}
	}
	return types, nil
}

func (h *StatsHandler) taskStat(tf stats.TaskFrequency) (weeklyTaskStat, error) {
	ts := weeklyTaskStat{TaskFrequency: tf, Title: deletedTaskLabel}
	t, err := h.tasks.GetByID(tf.TaskID)
	if err != nil {
		return ts, err
	}
	if t != nil {
		ts.Title = t.Title
	}
	return ts, nil
}

func (h *StatsHandler) memberNames(householdID int64) (map[int64]string, error) {
	members, err := h.members.ListByHousehold(householdID)
	if err != nil {
		return nil, err
	}
	names := map[int64]string{}
	for _, m := range members {
		names[m.ID] = m.FirstName
	}
	return names, nil
}

func (h *StatsHandler) requireHousehold(r *http.Request) (int64, error) {
	householdID, err := parseIDParam(r)
	if err != nil {
		return 0, apperr.Validation("invalid household id")
	}
	if auth.HouseholdID(r.Context()) != householdID {
		return 0, apperr.NotAuthorized("not a member of this household")
	}
	return householdID, nil
}
