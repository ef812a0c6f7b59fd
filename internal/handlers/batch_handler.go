package handlers

import (
	"net/http"

	"wetmill-backend/internal/models"
	"wetmill-backend/internal/services"
	"wetmill-backend/pkg/utils"
)

// BatchHandler serves the station worklists.
type BatchHandler struct {
	Service *services.BatchService
}

func NewBatchHandler(s *services.BatchService) *BatchHandler {
	return &BatchHandler{Service: s}
}

// PendingGradeA handles GET /api/batches/station/{stationId}/pending-grade-a
func (h *BatchHandler) PendingGradeA(w http.ResponseWriter, r *http.Request) {
	id, ok := pathInt(w, r, "stationId")
	if !ok {
		return
	}
	rows, err := h.Service.PendingGradeA(r.Context(), callerOf(r), id)
	if err != nil {
		utils.Error(w, r, err)
		return
	}
	if rows == nil {
		rows = []*models.BaggingOff{}
	}
	utils.JSON(w, http.StatusOK, rows)
}

// HighGradeTransfers handles GET /api/batches/station/{stationId}/high-grade-transfers
func (h *BatchHandler) HighGradeTransfers(w http.ResponseWriter, r *http.Request) {
	id, ok := pathInt(w, r, "stationId")
	if !ok {
		return
	}
	rows, err := h.Service.HighGradeTransfers(r.Context(), callerOf(r), id)
	if err != nil {
		utils.Error(w, r, err)
		return
	}
	if rows == nil {
		rows = []*models.TransferredByBaggingOff{}
	}
	utils.JSON(w, http.StatusOK, rows)
}
