package handler

import (
	"log/slog"
	"net/http"

	"github.com/soluo/mental-load/internal/apperr"
	"github.com/soluo/mental-load/internal/auth"
	"github.com/soluo/mental-load/internal/push"
	"github.com/soluo/mental-load/internal/store"
)

type PushHandler struct {
	pushStore *store.PushStore
	service   *push.Service
	logger    *slog.Logger
}

func NewPushHandler(ps *store.PushStore, svc *push.Service, logger *slog.Logger) *PushHandler {
	return &PushHandler{pushStore: ps, service: svc, logger: logger}
}

type subscribeRequest struct {
	Endpoint   string `json:"endpoint"`
	P256dh     string `json:"p256dh"`
	Auth       string `json:"auth"`
	DeviceName string `json:"device_name"`
}

// Subscribe handles POST /api/push/subscribe
func (h *PushHandler) Subscribe(w http.ResponseWriter, r *http.Request) {
	ac, _ := auth.FromContext(r.Context())
	if ac.MemberID == 0 {
		writeError(w, h.logger, apperr.NotAuthorized("no household membership"))
		return
	}

	var req subscribeRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}
	if req.Endpoint == "" || req.P256dh == "" || req.Auth == "" {
		writeError(w, h.logger, apperr.Validation("endpoint, p256dh, and auth are required"))
		return
	}

	sub, err := h.pushStore.CreateSubscription(ac.MemberID, ac.HouseholdID, req.Endpoint, req.P256dh, req.Auth, req.DeviceName)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusCreated, sub)
}

// Unsubscribe handles DELETE /api/push/subscriptions/{id}
func (h *PushHandler) Unsubscribe(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, h.logger, apperr.Validation("invalid subscription id"))
		return
	}

	sub, err := h.pushStore.GetByID(id)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	if sub == nil {
		writeError(w, h.logger, apperr.NotFound("subscription not found"))
		return
	}
	if sub.HouseholdID != auth.HouseholdID(r.Context()) {
		writeError(w, h.logger, apperr.NotAuthorized("not a member of this household"))
		return
	}

	if err := h.pushStore.Delete(sub.ID); err != nil {
		writeError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// VAPIDKey handles GET /api/push/vapid-key
func (h *PushHandler) VAPIDKey(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"public_key": h.service.VAPIDPublicKey()})
}
