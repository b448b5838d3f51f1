package handler

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/soluo/mental-load/internal/apperr"
	"github.com/soluo/mental-load/internal/auth"
	"github.com/soluo/mental-load/internal/model"
	"github.com/soluo/mental-load/internal/store"
	"github.com/soluo/mental-load/internal/websocket"
)

// Display fallbacks for history rows whose task or member is gone.
const (
	deletedTaskLabel   = "Tâche supprimée"
	unknownMemberLabel = "Membre inconnu"
)

type CompletionHandler struct {
	completions *store.CompletionStore
	tasks       *store.TaskStore
	members     *store.MemberStore
	hub         *websocket.Hub
	logger      *slog.Logger
}

func NewCompletionHandler(completions *store.CompletionStore, tasks *store.TaskStore, members *store.MemberStore, hub *websocket.Hub, logger *slog.Logger) *CompletionHandler {
	return &CompletionHandler{
		completions: completions,
		tasks:       tasks,
		members:     members,
		hub:         hub,
		logger:      logger,
	}
}

type enrichedCompletion struct {
	model.TaskCompletion
	TaskTitle  string `json:"taskTitle"`
	MemberName string `json:"memberName"`
}

// Recent handles GET /api/households/{id}/completions/recent?limit=10
func (h *CompletionHandler) Recent(w http.ResponseWriter, r *http.Request) {
	householdID, err := parseIDParam(r)
	if err != nil {
		writeError(w, h.logger, apperr.Validation("invalid household id"))
		return
	}
	if auth.HouseholdID(r.Context()) != householdID {
		writeError(w, h.logger, apperr.NotAuthorized("not a member of this household"))
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

	completions, err := h.completions.ListRecentByHousehold(householdID, limit)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	result := []enrichedCompletion{}
	for _, c := range completions {
		ec, err := h.enrich(c)
		if err != nil {
			writeError(w, h.logger, err)
			return
		}
		result = append(result, ec)
	}
	writeJSON(w, http.StatusOK, result)
}

// Get handles GET /api/completions/{id}
func (h *CompletionHandler) Get(w http.ResponseWriter, r *http.Request) {
	completion, err := h.loadHouseholdCompletion(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	ec, err := h.enrich(*completion)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, ec)
}

type updateCompletionRequest struct {
	Duration *int    `json:"duration"`
	Notes    *string `json:"notes"`
}

// Update handles PUT /api/completions/{id}. Only the member who
// recorded the completion may edit it, and only through their own
// linked account.
func (h *CompletionHandler) Update(w http.ResponseWriter, r *http.Request) {
	completion, err := h.loadHouseholdCompletion(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	owner, err := h.members.GetByID(completion.CompletedBy)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	userID := auth.UserID(r.Context())
	if owner == nil || owner.UserID == nil || *owner.UserID != userID {
		writeError(w, h.logger, apperr.NotAuthorized("only the member who recorded a completion can edit it"))
		return
	}

	var req updateCompletionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}

	updated, err := h.completions.UpdateDetails(completion.ID, req.Duration, req.Notes)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	h.hub.Broadcast(completion.HouseholdID, websocket.NewMessage("completion", "updated", completion.ID, nil))
	writeJSON(w, http.StatusOK, updated)
}

func (h *CompletionHandler) enrich(c model.TaskCompletion) (enrichedCompletion, error) {
	ec := enrichedCompletion{
		TaskCompletion: c,
		TaskTitle:      deletedTaskLabel,
		MemberName:     unknownMemberLabel,
	}
	t, err := h.tasks.GetByID(c.TaskID)
	if err != nil {
		return ec, err
	}
	if t != nil {
		ec.TaskTitle = t.Title
	}
	m, err := h.members.GetByID(c.CompletedBy)
	if err != nil {
		return ec, err
	}
	if m != nil {
		ec.MemberName = m.FirstName
	}
	return ec, nil
}

func (h *CompletionHandler) loadHouseholdCompletion(r *http.Request) (*model.TaskCompletion, error) {
	id, err := parseIDParam(r)
	if err != nil {
		return nil, apperr.Validation("invalid completion id")
	}
	completion, err := h.completions.GetByID(id)
	if err != nil {
		return nil, err
	}
	if completion == nil {
		return nil, apperr.NotFound("completion not found")
	}
	if completion.HouseholdID != auth.HouseholdID(r.Context()) {
		return nil, apperr.NotAuthorized("not a member of this household")
	}
	return completion, nil
}
