package handler

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/soluo/mental-load/internal/apperr"
	"github.com/soluo/mental-load/internal/auth"
	"github.com/soluo/mental-load/internal/model"
	"github.com/soluo/mental-load/internal/store"
	"github.com/soluo/mental-load/internal/websocket"
)

type HouseholdHandler struct {
	households *store.HouseholdStore
	members    *store.MemberStore
	hub        *websocket.Hub
	logger     *slog.Logger
}

func NewHouseholdHandler(households *store.HouseholdStore, members *store.MemberStore, hub *websocket.Hub, logger *slog.Logger) *HouseholdHandler {
	return &HouseholdHandler{households: households, members: members, hub: hub, logger: logger}
}

type createHouseholdRequest struct {
	Name      string `json:"name"`
	FirstName string `json:"first_name"`
}

// Create handles POST /api/households
func (h *HouseholdHandler) Create(w http.ResponseWriter, r *http.Request) {
	ac, _ := auth.FromContext(r.Context())
	if ac.HouseholdID != 0 {
		writeError(w, h.logger, apperr.InvariantViolation("already a member of a household"))
		return
	}

	var req createHouseholdRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		writeError(w, h.logger, apperr.Validation("household name is required"))
		return
	}
	firstName := strings.TrimSpace(req.FirstName)
	if firstName == "" {
		writeError(w, h.logger, apperr.Validation("first_name is required"))
		return
	}

	household, err := h.households.Create(req.Name, ac.UserID)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	color, err := h.pickColor(household.ID)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	email := ac.Email
	member, err := h.members.Create(household.ID, &ac.UserID, firstName, model.RoleAdult, &email, color)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	h.logger.Info("household created", "household_id", household.ID, "member_id", member.ID)
	writeJSON(w, http.StatusCreated, map[string]any{
		"household": household,
		"member":    member,
	})
}

type joinHouseholdRequest struct {
	FirstName string     `json:"first_name"`
	Role      model.Role `json:"role"`
}

// Join handles POST /api/households/{id}/join
func (h *HouseholdHandler) Join(w http.ResponseWriter, r *http.Request) {
	ac, _ := auth.FromContext(r.Context())
	if ac.HouseholdID != 0 {
		writeError(w, h.logger, apperr.InvariantViolation("already a member of a household"))
		return
	}

	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, h.logger, apperr.Validation("invalid household id"))
		return
	}
	household, err := h.households.GetByID(id)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	if household == nil {
		writeError(w, h.logger, apperr.NotFound("household not found"))
		return
	}

	var req joinHouseholdRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}
	firstName := strings.TrimSpace(req.FirstName)
	if firstName == "" {
		writeError(w, h.logger, apperr.Validation("first_name is required"))
		return
	}
	role := req.Role
	if role == "" {
		role = model.RoleAdult
	}
	if role != model.RoleAdult && role != model.RoleChild {
		writeError(w, h.logger, apperr.Validation("role must be adult or child"))
		return
	}

	color, err := h.pickColor(household.ID)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	email := ac.Email
	member, err := h.members.Create(household.ID, &ac.UserID, firstName, role, &email, color)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	h.hub.Broadcast(household.ID, websocket.NewMessage("member", "added", member.ID, nil))
	writeJSON(w, http.StatusCreated, member)
}

type currentHouseholdResponse struct {
	model.Household
	Members []model.Member `json:"members"`
}

// Current handles GET /api/household. Returns null when the caller has
// not joined a household yet; otherwise the household with its member
// list.
func (h *HouseholdHandler) Current(w http.ResponseWriter, r *http.Request) {
	ac, _ := auth.FromContext(r.Context())
	if ac.HouseholdID == 0 {
		writeJSON(w, http.StatusOK, nil)
		return
	}
	household, err := h.households.GetByID(ac.HouseholdID)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	if household == nil {
		writeJSON(w, http.StatusOK, nil)
		return
	}
	members, err := h.members.ListByHousehold(household.ID)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	if members == nil {
		members = []model.Member{}
	}
	writeJSON(w, http.StatusOK, currentHouseholdResponse{
		Household: *household,
		Members:   members,
	})
}

// Leave handles POST /api/household/leave
func (h *HouseholdHandler) Leave(w http.ResponseWriter, r *http.Request) {
	ac, _ := auth.FromContext(r.Context())
	if ac.MemberID == 0 {
		writeError(w, h.logger, apperr.NotFound("no household membership"))
		return
	}

	count, err := h.members.CountByHousehold(ac.HouseholdID)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	if count <= 1 {
		writeError(w, h.logger, apperr.InvariantViolation("cannot leave as the last member of a household"))
		return
	}

	if err := h.members.Delete(ac.MemberID); err != nil {
		writeError(w, h.logger, err)
		return
	}
	h.hub.Broadcast(ac.HouseholdID, websocket.NewMessage("member", "removed", ac.MemberID, nil))
	w.WriteHeader(http.StatusNoContent)
}

func (h *HouseholdHandler) pickColor(householdID int64) (string, error) {
	used, err := h.members.UsedColors(householdID)
	if err != nil {
		return "", err
	}
	return pickColor(used), nil
}
