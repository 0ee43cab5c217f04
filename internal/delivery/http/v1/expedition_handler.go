package v1

import (
	"net/http"

	"agence-dashboard/internal/domain"
	"agence-dashboard/internal/usecase"
	"agence-dashboard/pkg/utils"
)

type ExpeditionHandler struct {
	usecase *usecase.ExpeditionUsecase
}

func NewExpeditionHandler(usecase *usecase.ExpeditionUsecase) *ExpeditionHandler {
	return &ExpeditionHandler{usecase: usecase}
}

func (h *ExpeditionHandler) Simulate(w http.ResponseWriter, r *http.Request) {
	sess, ok := sessionFrom(w, r)
	if !ok {
		return
	}

	var req domain.ExpeditionRequest
	if err := decodeBody(r, &req); err != nil {
		writeOperationError(w, r, err, nil)
		return
	}

	quote, err := h.usecase.Simulate(r.Context(), sess, req)
	if err != nil {
		writeOperationError(w, r, err, nil)
		return
	}
	utils.WriteSuccess(w, http.StatusOK, quote, nil)
}

func (h *ExpeditionHandler) Create(w http.ResponseWriter, r *http.Request) {
	sess, ok := sessionFrom(w, r)
	if !ok {
		return
	}

	var req domain.ExpeditionRequest
	if err := decodeBody(r, &req); err != nil {
		writeOperationError(w, r, err, nil)
		return
	}

	exp, err := h.usecase.Create(r.Context(), sess, req)
	if err != nil {
		writeOperationError(w, r, err, nil)
		return
	}
	utils.WriteSuccess(w, http.StatusCreated, exp, nil)
}

func (h *ExpeditionHandler) List(w http.ResponseWriter, r *http.Request) {
	sess, ok := sessionFrom(w, r)
	if !ok {
		return
	}

	list, err := h.usecase.List(r.Context(), sess)
	if err != nil {
		writeOperationError(w, r, err, nil)
		return
	}
	utils.WriteSuccess(w, http.StatusOK, list, nil)
}
