package server

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/mmynk/splitr/internal/service"
)

type GroupHandler struct {
	svc *service.GroupService
}

func NewGroupHandler(svc *service.GroupService) *GroupHandler { return &GroupHandler{svc: svc} }

func (h *GroupHandler) CreateGroup(w http.ResponseWriter, r *http.Request) {
	var req service.CreateGroupRequest
	if !decodeBody(w, r, &req) {
		return
	}
	group, err := h.svc.CreateGroup(r.Context(), &req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, group)
}

func (h *GroupHandler) GetGroupBalances(w http.ResponseWriter, r *http.Request) {
	groupID := mux.Vars(r)["groupId"]
	result, err := h.svc.GetGroupBalances(r.Context(), groupID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *GroupHandler) ListContacts(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.ListContacts(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}
