package handlers

import (
	"net/http"

	"wetmill-backend/internal/models"
	"wetmill-backend/internal/services"
	"wetmill-backend/pkg/utils"

	"github.com/gorilla/mux"
)

type BaggingOffHandler struct {
	Service *services.BaggingOffService
}

func NewBaggingOffHandler(s *services.BaggingOffService) *BaggingOffHandler {
	return &BaggingOffHandler{Service: s}
}

// Record handles POST /api/bagging-off
func (h *BaggingOffHandler) Record(w http.ResponseWriter, r *http.Request) {
	var req models.BaggingOffRequest
	if !utils.Decode(w, r, &req) {
		return
	}
	b, err := h.Service.Record(r.Context(), callerOf(r), &req)
	if err != nil {
		utils.Error(w, r, err)
		return
	}
	utils.JSON(w, http.StatusCreated, b)
}

func (h *BaggingOffHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathInt(w, r, "id")
	if !ok {
		return
	}
	var req models.UpdateBaggingOffRequest
	if !utils.Decode(w, r, &req) {
		return
	}
	b, err := h.Service.Update(r.Context(), callerOf(r), id, &req)
	if err != nil {
		utils.Error(w, r, err)
		return
	}
	utils.JSON(w, http.StatusOK, b)
}

func (h *BaggingOffHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathInt(w, r, "id")
	if !ok {
		return
	}
	if err := h.Service.Delete(r.Context(), callerOf(r), id); err != nil {
		utils.Error(w, r, err)
		return
	}
	utils.JSON(w, http.StatusOK, map[string]string{"message": "Bagging-off deleted"})
}

func (h *BaggingOffHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathInt(w, r, "id")
	if !ok {
		return
	}
	b, err := h.Service.Get(r.Context(), callerOf(r), id)
	if err != nil {
		utils.Error(w, r, err)
		return
	}
	utils.JSON(w, http.StatusOK, b)
}

func (h *BaggingOffHandler) ListByBatch(w http.ResponseWriter, r *http.Request) {
	rows, err := h.Service.ListByBatch(r.Context(), mux.Vars(r)["batchNo"])
	if err != nil {
		utils.Error(w, r, err)
		return
	}
	if rows == nil {
		rows = []*models.BaggingOff{}
	}
	utils.JSON(w, http.StatusOK, rows)
}

func (h *BaggingOffHandler) ListByStation(w http.ResponseWriter, r *http.Request) {
	id, ok := pathInt(w, r, "stationId")
	if !ok {
		return
	}
	res, err := h.Service.ListByStation(r.Context(), callerOf(r), id, pageOf(r))
	if err != nil {
		utils.Error(w, r, err)
		return
	}
	utils.JSON(w, http.StatusOK, res)
}
