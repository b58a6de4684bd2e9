package server

import (
	"net/http"

	"github.com/mmynk/splitr/internal/service"
)

type SettlementHandler struct {
	svc *service.SettlementService
}

func NewSettlementHandler(svc *service.SettlementService) *SettlementHandler {
	return &SettlementHandler{svc: svc}
}

func (h *SettlementHandler) CreateSettlement(w http.ResponseWriter, r *http.Request) {
	var req service.CreateSettlementRequest
	if !decodeBody(w, r, &req) {
		return
	}
	settlement, err := h.svc.CreateSettlement(r.Context(), &req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, settlement)
}

// GetSettlementContext resolves the scope from query parameters: exactly
// one of ?user=<id> or ?group=<id> must be present.
func (h *SettlementHandler) GetSettlementContext(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("user")
	groupID := r.URL.Query().Get("group")

	var scope service.SettlementScope
	switch {
	case userID != "" && groupID == "":
		scope = service.UserScope{UserID: userID}
	case groupID != "" && userID == "":
		scope = service.GroupScope{GroupID: groupID}
	default:
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "exactly one of user or group query parameter required"})
		return
	}

	result, err := h.svc.GetSettlementContext(r.Context(), scope)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}
