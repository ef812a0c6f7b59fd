package handlers

import (
	"net/http"

	"wetmill-backend/internal/models"
	"wetmill-backend/internal/services"
	"wetmill-backend/pkg/utils"
)

type QualityHandler struct {
	Service *services.QualityService
}

func NewQualityHandler(s *services.QualityService) *QualityHandler {
	return &QualityHandler{Service: s}
}

// InitialTest handles POST /api/quality/initial-test
func (h *QualityHandler) InitialTest(w http.ResponseWriter, r *http.Request) {
	var req models.InitialTestRequest
	if !utils.Decode(w, r, &req) {
		return
	}
	rows, err := h.Service.SubmitInitialTest(r.Context(), callerOf(r), &req)
	if err != nil {
		utils.Error(w, r, err)
		return
	}
	utils.JSON(w, http.StatusCreated, rows)
}

// TestResult handles PUT /api/quality/test-result
func (h *QualityHandler) TestResult(w http.ResponseWriter, r *http.Request) {
	var req models.TestResultRequest
	if !utils.Decode(w, r, &req) {
		return
	}
	rows, err := h.Service.SubmitTestResult(r.Context(), callerOf(r), &req)
	if err != nil {
		utils.Error(w, r, err)
		return
	}
	utils.JSON(w, http.StatusOK, rows)
}

func (h *QualityHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathInt(w, r, "id")
	if !ok {
		return
	}
	q, err := h.Service.Get(r.Context(), callerOf(r), id)
	if err != nil {
		utils.Error(w, r, err)
		return
	}
	utils.JSON(w, http.StatusOK, q)
}

func (h *QualityHandler) List(w http.ResponseWriter, r *http.Request) {
	res, err := h.Service.List(r.Context(), callerOf(r), pageOf(r))
	if err != nil {
		utils.Error(w, r, err)
		return
	}
	utils.JSON(w, http.StatusOK, res)
}

func (h *QualityHandler) ListByStation(w http.ResponseWriter, r *http.Request) {
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

// CreateForAll handles POST /api/quality/backfill/all
func (h *QualityHandler) CreateForAll(w http.ResponseWriter, r *http.Request) {
	res, err := h.Service.CreateForAllBaggingOff(r.Context(), callerOf(r))
	if err != nil {
		utils.Error(w, r, err)
		return
	}
	utils.JSON(w, http.StatusOK, res)
}

// CreateMissing handles POST /api/quality/backfill/missing
func (h *QualityHandler) CreateMissing(w http.ResponseWriter, r *http.Request) {
	res, err := h.Service.CreateMissing(r.Context(), callerOf(r))
	if err != nil {
		utils.Error(w, r, err)
		return
	}
	utils.JSON(w, http.StatusOK, res)
}
