package handler

import (
	"log/slog"
	"math/rand/v2"
	"net/http"
	"strings"

	"github.com/soluo/mental-load/internal/apperr"
	"github.com/soluo/mental-load/internal/auth"
	"github.com/soluo/mental-load/internal/model"
	"github.com/soluo/mental-load/internal/store"
	"github.com/soluo/mental-load/internal/websocket"
)

type MemberHandler struct {
	members *store.MemberStore
	hub     *websocket.Hub
	logger  *slog.Logger
}

func NewMemberHandler(members *store.MemberStore, hub *websocket.Hub, logger *slog.Logger) *MemberHandler {
	return &MemberHandler{members: members, hub: hub, logger: logger}
}

// pickColor draws a random color not yet used in the household; once
// every palette color is taken it draws from the full palette again.
func pickColor(used []string) string {
	usedSet := map[string]bool{}
	for _, c := range used {
		usedSet[c] = true
	}
	available := []string{}
	for _, c := range model.Palette {
		if !usedSet[c] {
			available = append(available, c)
		}
	}
	if len(available) == 0 {
		available = model.Palette
	}
	return available[rand.IntN(len(available))]
}

// List handles GET /api/households/{id}/members
func (h *MemberHandler) List(w http.ResponseWriter, r *http.Request) {
	householdID, err := parseIDParam(r)
	if err != nil {
		writeError(w, h.logger, apperr.Validation("invalid household id"))
		return
	}
	if auth.HouseholdID(r.Context()) != householdID {
		writeError(w, h.logger, apperr.NotAuthorized("not a member of this household"))
		return
	}

	members, err := h.members.ListByHousehold(householdID)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	if members == nil {
		members = []model.Member{}
	}
	writeJSON(w, http.StatusOK, members)
}

type addMemberRequest struct {
	FirstName string     `json:"first_name"`
	Role      model.Role `json:"role"`
	Email     *string    `json:"email"`
}

// Add handles POST /api/households/{id}/members. The new member is a
// placeholder profile with no linked login account.
func (h *MemberHandler) Add(w http.ResponseWriter, r *http.Request) {
	householdID, err := parseIDParam(r)
	if err != nil {
		writeError(w, h.logger, apperr.Validation("invalid household id"))
		return
	}
	if auth.HouseholdID(r.Context()) != householdID {
		writeError(w, h.logger, apperr.NotAuthorized("not a member of this household"))
		return
	}

	var req addMemberRequest
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

	used, err := h.members.UsedColors(householdID)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	member, err := h.members.Create(householdID, nil, firstName, role, req.Email, pickColor(used))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	h.hub.Broadcast(householdID, websocket.NewMessage("member", "added", member.ID, nil))
	writeJSON(w, http.StatusCreated, member)
}

type updateMemberRequest struct {
	FirstName *string     `json:"first_name"`
	Role      *model.Role `json:"role"`
	Email     *string     `json:"email"`
}

// Update handles PUT /api/members/{id}. Absent fields keep their value.
func (h *MemberHandler) Update(w http.ResponseWriter, r *http.Request) {
	member, err := h.loadHouseholdMember(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	var req updateMemberRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}
	if req.FirstName != nil && strings.TrimSpace(*req.FirstName) == "" {
		writeError(w, h.logger, apperr.Validation("first_name cannot be empty"))
		return
	}
	if req.Role != nil && *req.Role != model.RoleAdult && *req.Role != model.RoleChild {
		writeError(w, h.logger, apperr.Validation("role must be adult or child"))
		return
	}

	updated, err := h.members.Update(member.ID, req.FirstName, req.Role, req.Email)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	h.hub.Broadcast(member.HouseholdID, websocket.NewMessage("member", "updated", member.ID, nil))
	writeJSON(w, http.StatusOK, updated)
}

// Remove handles DELETE /api/members/{id}. A household always keeps at
// least one member.
func (h *MemberHandler) Remove(w http.ResponseWriter, r *http.Request) {
	member, err := h.loadHouseholdMember(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	count, err := h.members.CountByHousehold(member.HouseholdID)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	if count <= 1 {
		writeError(w, h.logger, apperr.InvariantViolation("cannot remove the last member of a household"))
		return
	}

	if err := h.members.Delete(member.ID); err != nil {
		writeError(w, h.logger, err)
		return
	}

	h.hub.Broadcast(member.HouseholdID, websocket.NewMessage("member", "removed", member.ID, nil))
	w.WriteHeader(http.StatusNoContent)
}

// loadHouseholdMember resolves the {id} path member and checks it
// belongs to the caller's household.
func (h *MemberHandler) loadHouseholdMember(r *http.Request) (*model.Member, error) {
	id, err := parseIDParam(r)
	if err != nil {
		return nil, apperr.Validation("invalid member id")
	}
	member, err := h.members.GetByID(id)
	if err != nil {
		return nil, err
	}
	if member == nil {
		return nil, apperr.NotFound("member not found")
	}
	if member.HouseholdID != auth.HouseholdID(r.Context()) {
		return nil, apperr.NotAuthorized("not a member of this household")
	}
	return member, nil
}
