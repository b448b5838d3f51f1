package handler

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/soluo/mental-load/internal/apperr"
	"github.com/soluo/mental-load/internal/auth"
	"github.com/soluo/mental-load/internal/metrics"
	"github.com/soluo/mental-load/internal/model"
	"github.com/soluo/mental-load/internal/store"
	"github.com/soluo/mental-load/internal/task"
	"github.com/soluo/mental-load/internal/websocket"
)

type TaskHandler struct {
	tasks       *store.TaskStore
	completions *store.CompletionStore
	members     *store.MemberStore
	hub         *websocket.Hub
	metrics     *metrics.Metrics
	logger      *slog.Logger
}

func NewTaskHandler(tasks *store.TaskStore, completions *store.CompletionStore, members *store.MemberStore, hub *websocket.Hub, m *metrics.Metrics, logger *slog.Logger) *TaskHandler {
	return &TaskHandler{
		tasks:       tasks,
		completions: completions,
		members:     members,
		hub:         hub,
		metrics:     m,
		logger:      logger,
	}
}

type createTaskRequest struct {
	Title             string         `json:"title"`
	Description       string         `json:"description"`
	Type              model.TaskType `json:"type"`
	DueDate           *time.Time     `json:"due_date"`
	ShowBeforeDays    *int           `json:"show_before_days"`
	EstimatedDuration *int           `json:"estimated_duration"`
}

// Create handles POST /api/tasks
func (h *TaskHandler) Create(w http.ResponseWriter, r *http.Request) {
	ac, _ := auth.FromContext(r.Context())
	if ac.MemberID == 0 {
		writeError(w, h.logger, apperr.NotAuthorized("no household membership"))
		return
	}

	var req createTaskRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}
	if strings.TrimSpace(req.Title) == "" {
		writeError(w, h.logger, apperr.Validation("title is required"))
		return
	}
	if req.Type != model.TaskFlexible && req.Type != model.TaskOneTime {
		writeError(w, h.logger, apperr.Validation("type must be flexible or one-time"))
		return
	}
	if req.Type == model.TaskFlexible {
		// Scheduling fields only apply to one-time tasks.
		req.DueDate = nil
		req.ShowBeforeDays = nil
	}
	if req.ShowBeforeDays != nil && *req.ShowBeforeDays < 0 {
		writeError(w, h.logger, apperr.Validation("show_before_days cannot be negative"))
		return
	}

	created, err := h.tasks.Create(store.CreateTaskParams{
		HouseholdID:       ac.HouseholdID,
		Title:             strings.TrimSpace(req.Title),
		Description:       req.Description,
		Type:              req.Type,
		DueDate:           req.DueDate,
		ShowBeforeDays:    req.ShowBeforeDays,
		EstimatedDuration: req.EstimatedDuration,
		CreatedBy:         ac.MemberID,
	})
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	h.hub.Broadcast(ac.HouseholdID, websocket.NewMessage("task", "created", created.ID, nil))
	writeJSON(w, http.StatusCreated, created)
}

type updateTaskRequest struct {
	Title          *string    `json:"title"`
	Description    *string    `json:"description"`
	DueDate        *time.Time `json:"due_date"`
	ShowBeforeDays *int       `json:"show_before_days"`
}

// Update handles PUT /api/tasks/{id}
func (h *TaskHandler) Update(w http.ResponseWriter, r *http.Request) {
	t, err := h.loadHouseholdTask(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	var req updateTaskRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}
	if req.Title != nil && strings.TrimSpace(*req.Title) == "" {
		writeError(w, h.logger, apperr.Validation("title cannot be empty"))
		return
	}
	if t.Type == model.TaskFlexible && (req.DueDate != nil || req.ShowBeforeDays != nil) {
		writeError(w, h.logger, apperr.Validation("flexible tasks have no schedule"))
		return
	}

	updated, err := h.tasks.Update(t.ID, req.Title, req.Description, req.DueDate, req.ShowBeforeDays)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	h.hub.Broadcast(t.HouseholdID, websocket.NewMessage("task", "updated", t.ID, nil))
	writeJSON(w, http.StatusOK, updated)
}

// Delete handles DELETE /api/tasks/{id}. Soft delete; completion
// history stays intact.
func (h *TaskHandler) Delete(w http.ResponseWriter, r *http.Request) {
	t, err := h.loadHouseholdTask(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	if err := h.tasks.SoftDelete(t.ID); err != nil {
		writeError(w, h.logger, err)
		return
	}

	h.hub.Broadcast(t.HouseholdID, websocket.NewMessage("task", "deleted", t.ID, nil))
	w.WriteHeader(http.StatusNoContent)
}

type assignTaskRequest struct {
	MemberID int64 `json:"member_id"`
}

// Assign handles POST /api/tasks/{id}/assign. Only one-time tasks carry
// an assignee.
func (h *TaskHandler) Assign(w http.ResponseWriter, r *http.Request) {
	t, err := h.loadHouseholdTask(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	if t.Type != model.TaskOneTime {
		writeError(w, h.logger, apperr.Validation("only one-time tasks can be assigned"))
		return
	}

	var req assignTaskRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}
	member, err := h.members.GetByID(req.MemberID)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	if member == nil || member.HouseholdID != t.HouseholdID {
		writeError(w, h.logger, apperr.NotFound("member not found"))
		return
	}

	updated, err := h.tasks.Assign(t.ID, member.ID)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	h.hub.Broadcast(t.HouseholdID, websocket.NewMessage("task", "assigned", t.ID, map[string]any{"member_id": member.ID}))
	writeJSON(w, http.StatusOK, updated)
}

type completeTaskRequest struct {
	MemberID *int64  `json:"member_id"`
	Duration *int    `json:"duration"`
	Notes    *string `json:"notes"`
}

// Complete handles POST /api/tasks/{id}/complete. The completion can be
// recorded on behalf of another member of the household, for profiles
// without their own account.
func (h *TaskHandler) Complete(w http.ResponseWriter, r *http.Request) {
	t, err := h.loadHouseholdTask(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	var req completeTaskRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}

	ac, _ := auth.FromContext(r.Context())
	completedBy := ac.MemberID
	if req.MemberID != nil {
		member, err := h.members.GetByID(*req.MemberID)
		if err != nil {
			writeError(w, h.logger, err)
			return
		}
		if member == nil || member.HouseholdID != t.HouseholdID {
			writeError(w, h.logger, apperr.NotFound("member not found"))
			return
		}
		completedBy = member.ID
	}

	if t.Type == model.TaskOneTime && t.IsCompleted {
		writeError(w, h.logger, apperr.InvariantViolation("task already completed"))
		return
	}

	now := time.Now()
	lateness := task.ComputeLateness(*t, now)

	completion, err := h.completions.Create(store.CreateCompletionParams{
		TaskID:      t.ID,
		HouseholdID: t.HouseholdID,
		CompletedBy: completedBy,
		CompletedAt: now,
		ForDate:     task.StartOfDay(now),
		Duration:    req.Duration,
		Notes:       req.Notes,
		WasLate:     lateness.WasLate,
		DaysLate:    lateness.DaysLate,
	})
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	if t.Type == model.TaskOneTime {
		if err := h.tasks.MarkCompleted(t.ID, now); err != nil {
			writeError(w, h.logger, err)
			return
		}
	}

	completionsThisWeek, err := h.completions.CountByTaskSince(t.ID, now.AddDate(0, 0, -7))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	h.metrics.TasksCompleted.Inc()
	h.hub.Broadcast(t.HouseholdID, websocket.NewMessage("task", "completed", t.ID, map[string]any{"member_id": completedBy}))
	writeJSON(w, http.StatusCreated, map[string]any{
		"completion":          completion,
		"completionsThisWeek": completionsThisWeek,
	})
}

// Uncomplete handles POST /api/tasks/{id}/uncomplete. Only a completion
// recorded today can be undone.
func (h *TaskHandler) Uncomplete(w http.ResponseWriter, r *http.Request) {
	t, err := h.loadHouseholdTask(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	now := time.Now()
	completion, err := h.completions.FirstForTaskSince(t.ID, task.StartOfDay(now))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	if completion == nil {
		writeError(w, h.logger, apperr.NotFound("no completion recorded today"))
		return
	}

	if err := h.completions.Delete(completion.ID); err != nil {
		writeError(w, h.logger, err)
		return
	}
	if t.Type == model.TaskOneTime {
		if err := h.tasks.MarkNotCompleted(t.ID); err != nil {
			writeError(w, h.logger, err)
			return
		}
	}

	h.hub.Broadcast(t.HouseholdID, websocket.NewMessage("task", "uncompleted", t.ID, nil))
	w.WriteHeader(http.StatusNoContent)
}

// recentWindow is how many completions back the availability view looks
// when counting per-task completions.
const recentWindow = 100

type availableTask struct {
	model.Task
	IsOverdue               bool       `json:"isOverdue"`
	CompletionCount         int        `json:"completionCount"`
	LastCompletedAt         *time.Time `json:"lastCompletedAt,omitempty"`
	LastCompletedBy         *string    `json:"lastCompletedBy,omitempty"`
	DaysSinceLastCompletion *int       `json:"daysSinceLastCompletion,omitempty"`
}

// Available handles GET /api/households/{id}/tasks/available: the
// dashboard list, visibility-filtered and enriched with history.
func (h *TaskHandler) Available(w http.ResponseWriter, r *http.Request) {
	householdID, err := h.requireHousehold(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	now := time.Now()
	tasks, err := h.tasks.ListActiveByHousehold(householdID)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	todays, err := h.completions.ListByHouseholdSince(householdID, task.StartOfDay(now))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	completedToday := map[int64]bool{}
	for _, c := range todays {
		completedToday[c.TaskID] = true
	}

	recent, err := h.completions.ListRecentByHousehold(householdID, recentWindow)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	counts := map[int64]int{}
	for _, c := range recent {
		counts[c.TaskID]++
	}

	members, err := h.members.ListByHousehold(householdID)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	nameByMember := map[int64]string{}
	for _, m := range members {
		nameByMember[m.ID] = m.FirstName
	}

	result := []availableTask{}
	for _, t := range tasks {
		if !task.IsVisibleToday(t, completedToday[t.ID], now) {
			continue
		}

		at := availableTask{
			Task:            t,
			IsOverdue:       task.IsOverdue(t, now),
			CompletionCount: counts[t.ID],
		}
		last, err := h.completions.LastForTask(t.ID)
		if err != nil {
			writeError(w, h.logger, err)
			return
		}
		if last != nil {
			completedAt := last.CompletedAt
			at.LastCompletedAt = &completedAt
			if name, ok := nameByMember[last.CompletedBy]; ok {
				at.LastCompletedBy = &name
			}
			at.DaysSinceLastCompletion = task.DaysSinceLastCompletion(&completedAt, now)
		}
		result = append(result, at)
	}

	writeJSON(w, http.StatusOK, result)
}

// Picker handles GET /api/households/{id}/tasks/picker?member=N: the
// "pick something to do" buckets for one member.
func (h *TaskHandler) Picker(w http.ResponseWriter, r *http.Request) {
	householdID, err := h.requireHousehold(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	memberID, err := strconv.ParseInt(r.URL.Query().Get("member"), 10, 64)
	if err != nil {
		writeError(w, h.logger, apperr.Validation("member query parameter is required"))
		return
	}
	member, err := h.members.GetByID(memberID)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	if member == nil || member.HouseholdID != householdID {
		writeError(w, h.logger, apperr.NotFound("member not found"))
		return
	}

	now := time.Now()
	tasks, err := h.tasks.ListActiveByHousehold(householdID)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	todays, err := h.completions.ListByMemberRange(member.ID, task.StartOfDay(now), now)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	completedToday := map[int64]bool{}
	for _, c := range todays {
		completedToday[c.TaskID] = true
	}

	history, err := h.completions.ListByMember(member.ID)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	counts := map[int64]int{}
	for _, c := range history {
		counts[c.TaskID]++
	}

	writeJSON(w, http.StatusOK, task.CategorizeForPicker(tasks, completedToday, counts, now))
}

type taskHistoryEntry struct {
	model.TaskCompletion
	MemberName string `json:"memberName"`
}

// History handles GET /api/tasks/{id}/history?limit=10. Rows keep a
// placeholder name when the completing member has since been removed.
func (h *TaskHandler) History(w http.ResponseWriter, r *http.Request) {
	t, err := h.loadHouseholdTask(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	limit := 10
	if v := r.URL.Query().Get("limit"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed < 1 {
			writeError(w, h.logger, apperr.Validation("invalid limit"))
			return
		}
		limit = parsed
	}

	completions, err := h.completions.ListByTask(t.ID, limit)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	names := map[int64]string{}
	result := []taskHistoryEntry{}
	for _, c := range completions {
		name, ok := names[c.CompletedBy]
		if !ok {
			name = unknownMemberLabel
			m, err := h.members.GetByID(c.CompletedBy)
			if err != nil {
				writeError(w, h.logger, err)
				return
			}
			if m != nil {
				name = m.FirstName
			}
			names[c.CompletedBy] = name
		}
		result = append(result, taskHistoryEntry{TaskCompletion: c, MemberName: name})
	}
	writeJSON(w, http.StatusOK, result)
}

// loadHouseholdTask resolves the {id} path task and checks it belongs
// to the caller's household. Soft-deleted tasks read as missing.
func (h *TaskHandler) loadHouseholdTask(r *http.Request) (*model.Task, error) {
	id, err := parseIDParam(r)
	if err != nil {
		return nil, apperr.Validation("invalid task id")
	}
	t, err := h.tasks.GetByID(id)
	if err != nil {
		return nil, err
	}
	if t == nil || !t.IsActive {
		return nil, apperr.NotFound("task not found")
	}
	if t.HouseholdID != auth.HouseholdID(r.Context()) {
		return nil, apperr.NotAuthorized("not a member of this household")
	}
	return t, nil
}

// requireHousehold checks the {id} path household against the caller's
// membership.
func (h *TaskHandler) requireHousehold(r *http.Request) (int64, error) {
	householdID, err := parseIDParam(r)
	if err != nil {
		return 0, apperr.Validation("invalid household id")
	}
	if auth.HouseholdID(r.Context()) != householdID {
		return 0, apperr.NotAuthorized("not a member of this household")
	}
	return householdID, nil
}
