package handlers

import (
	"net/http"

	"wetmill-backend/internal/models"
	"wetmill-backend/internal/services"
	"wetmill-backend/pkg/utils"

	"github.com/gorilla/mux"
)

type DeliveryHandler struct {
	Service *services.DeliveryService
}

func NewDeliveryHandler(s *services.DeliveryService) *DeliveryHandler {
	return &DeliveryHandler{Service: s}
}

// TestResult handles PUT /api/quality-delivery/test-result
func (h *DeliveryHandler) TestResult(w http.ResponseWriter, r *http.Request) {
	var req models.DeliveryTestRequest
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

func (h *DeliveryHandler) List(w http.ResponseWriter, r *http.Request) {
	res, err := h.Service.List(r.Context(), callerOf(r), pageOf(r))
	if err != nil {
		utils.Error(w, r, err)
		return
	}
	utils.JSON(w, http.StatusOK, res)
}

func (h *DeliveryHandler) TruckLoads(w http.ResponseWriter, r *http.Request) {
	loads, err := h.Service.TruckLoads(r.Context(), callerOf(r))
	if err != nil {
		utils.Error(w, r, err)
		return
	}
	utils.JSON(w, http.StatusOK, loads)
}

func (h *DeliveryHandler) ByTransportGroup(w http.ResponseWriter, r *http.Request) {
	rows, err := h.Service.ByTransportGroup(r.Context(), callerOf(r), mux.Vars(r)["groupId"])
	if err != nil {
		utils.Error(w, r, err)
		return
	}
	if rows == nil {
		rows = []*models.QualityDelivery{}
	}
	utils.JSON(w, http.StatusOK, rows)
}

// CreateForHighGrade handles POST /api/quality-delivery/backfill/all
func (h *DeliveryHandler) CreateForHighGrade(w http.ResponseWriter, r *http.Request) {
	res, err := h.Service.CreateForHighGradeTransfers(r.Context(), callerOf(r))
	if err != nil {
		utils.Error(w, r, err)
		return
	}
	utils.JSON(w, http.StatusOK, res)
}

// CreateMissing handles POST /api/quality-delivery/backfill/missing
func (h *DeliveryHandler) CreateMissing(w http.ResponseWriter, r *http.Request) {
	res, err := h.Service.CreateMissing(r.Context(), callerOf(r))
	if err != nil {
		utils.Error(w, r, err)
		return
	}
	utils.JSON(w, http.StatusOK, res)
}
