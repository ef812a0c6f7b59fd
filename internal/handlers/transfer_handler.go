package handlers

import (
	"net/http"

	"wetmill-backend/internal/models"
	"wetmill-backend/internal/services"
	"wetmill-backend/pkg/utils"

	"github.com/gorilla/mux"
)

type TransferHandler struct {
	Service *services.TransferService
	Reports *services.ReportService
}

func NewTransferHandler(s *services.TransferService, reports *services.ReportService) *TransferHandler {
	return &TransferHandler{Service: s, Reports: reports}
}

// Create handles POST /api/transfers. A single transfer answers with the
// created row; a grouped one with the whole truck load.
func (h *TransferHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req models.TransferRequest
	if !utils.Decode(w, r, &req) {
		return
	}
	res, err := h.Service.Create(r.Context(), callerOf(r), &req)
	if err != nil {
		utils.Error(w, r, err)
		return
	}
	if !req.IsGroupedTransfer && len(res.Transfers) == 1 {
		utils.JSON(w, http.StatusCreated, res.Transfers[0])
		return
	}
	utils.JSON(w, http.StatusCreated, res)
}

func (h *TransferHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathInt(w, r, "id")
	if !ok {
		return
	}
	t, err := h.Service.Get(r.Context(), id)
	if err != nil {
		utils.Error(w, r, err)
		return
	}
	utils.JSON(w, http.StatusOK, t)
}

func (h *TransferHandler) List(w http.ResponseWriter, r *http.Request) {
	res, err := h.Service.List(r.Context(), pageOf(r))
	if err != nil {
		utils.Error(w, r, err)
		return
	}
	utils.JSON(w, http.StatusOK, res)
}

func (h *TransferHandler) ListByBatch(w http.ResponseWriter, r *http.Request) {
	rows, err := h.Service.ListByBatch(r.Context(), mux.Vars(r)["batchNo"])
	writeTransfers(w, r, rows, err)
}

// ListByStation handles GET /api/transfers/station/{stationId}?startDate=&endDate=
func (h *TransferHandler) ListByStation(w http.ResponseWriter, r *http.Request) {
	id, ok := pathInt(w, r, "stationId")
	if !ok {
		return
	}
	q := r.URL.Query()
	rows, err := h.Service.ListByStation(r.Context(), callerOf(r), id, q.Get("startDate"), q.Get("endDate"))
	writeTransfers(w, r, rows, err)
}

func (h *TransferHandler) ListByBaggingOff(w http.ResponseWriter, r *http.Request) {
	id, ok := pathInt(w, r, "baggingOffId")
	if !ok {
		return
	}
	rows, err := h.Service.ListByBaggingOff(r.Context(), id)
	writeTransfers(w, r, rows, err)
}

func (h *TransferHandler) ListByGradeGroup(w http.ResponseWriter, r *http.Request) {
	rows, err := h.Service.ListByGradeGroup(r.Context(), mux.Vars(r)["gradeGroup"])
	writeTransfers(w, r, rows, err)
}

// DeliveryNote handles GET /api/transfers/{id}/delivery-note
func (h *TransferHandler) DeliveryNote(w http.ResponseWriter, r *http.Request) {
	id, ok := pathInt(w, r, "id")
	if !ok {
		return
	}
	pdf, err := h.Reports.DeliveryNote(r.Context(), callerOf(r), id)
	if err != nil {
		utils.Error(w, r, err)
		return
	}
	download(w, "application/pdf", "delivery_note_"+mux.Vars(r)["id"]+"_"+today()+".pdf", pdf)
}

func writeTransfers(w http.ResponseWriter, r *http.Request, rows []*models.Transfer, err error) {
	if err != nil {
		utils.Error(w, r, err)
		return
	}
	if rows == nil {
		rows = []*models.Transfer{}
	}
	utils.JSON(w, http.StatusOK, rows)
}
