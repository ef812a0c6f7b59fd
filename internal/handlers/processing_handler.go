package handlers

import (
	"net/http"

	"wetmill-backend/internal/models"
	"wetmill-backend/internal/services"
	"wetmill-backend/pkg/utils"

	"github.com/gorilla/mux"
)

type ProcessingHandler struct {
	Service *services.ProcessingService
}

func NewProcessingHandler(s *services.ProcessingService) *ProcessingHandler {
	return &ProcessingHandler{Service: s}
}

// Start handles POST /api/processing
func (h *ProcessingHandler) Start(w http.ResponseWriter, r *http.Request) {
	var req models.StartProcessingRequest
	if !utils.Decode(w, r, &req) {
		return
	}
	p, err := h.Service.Start(r.Context(), callerOf(r), &req)
	if err != nil {
		utils.Error(w, r, err)
		return
	}
	utils.JSON(w, http.StatusCreated, p)
}

func (h *ProcessingHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathInt(w, r, "id")
	if !ok {
		return
	}
	p, err := h.Service.Get(r.Context(), id)
	if err != nil {
		utils.Error(w, r, err)
		return
	}
	utils.JSON(w, http.StatusOK, p)
}

func (h *ProcessingHandler) GetByBatch(w http.ResponseWriter, r *http.Request) {
	p, err := h.Service.GetByBatch(r.Context(), mux.Vars(r)["batchNo"])
	if err != nil {
		utils.Error(w, r, err)
		return
	}
	utils.JSON(w, http.StatusOK, p)
}

func (h *ProcessingHandler) ListByStation(w http.ResponseWriter, r *http.Request) {
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
