package server

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/mmynk/splitr/internal/service"
)

type ExpenseHandler struct {
	svc *service.ExpenseService
}

func NewExpenseHandler(svc *service.ExpenseService) *ExpenseHandler {
	return &ExpenseHandler{svc: svc}
}

func (h *ExpenseHandler) CreateExpense(w http.ResponseWriter, r *http.Request) {
	var req service.CreateExpenseRequest
	if !decodeBody(w, r, &req) {
		return
	}
	expense, err := h.svc.CreateExpense(r.Context(), &req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, expense)
}

func (h *ExpenseHandler) PreviewSplits(w http.ResponseWriter, r *http.Request) {
	var req service.PreviewSplitsRequest
	if !decodeBody(w, r, &req) {
		return
	}
	splits, err := h.svc.PreviewSplits(r.Context(), &req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, splits)
}

func (h *ExpenseHandler) DeleteExpense(w http.ResponseWriter, r *http.Request) {
	expenseID := mux.Vars(r)["expenseId"]
	if err := h.svc.DeleteExpense(r.Context(), expenseID); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *ExpenseHandler) GetPairBalance(w http.ResponseWriter, r *http.Request) {
	otherUserID := mux.Vars(r)["userId"]
	result, err := h.svc.GetPairBalance(r.Context(), otherUserID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}
