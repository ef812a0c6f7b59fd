package handlers

import (
	"net/http"

	"wetmill-backend/internal/models"
	"wetmill-backend/internal/services"
	"wetmill-backend/pkg/utils"

	"github.com/gorilla/mux"
)

type WetTransferHandler struct {
	Service *services.WetTransferService
}

func NewWetTransferHandler(s *services.WetTransferService) *WetTransferHandler {
	return &WetTransferHandler{Service: s}
}

func (h *WetTransferHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req models.CreateWetTransferRequest
	if !utils.Decode(w, r, &req) {
		return
	}
	wt, err := h.Service.Create(r.Context(), callerOf(r), &req)
	if err != nil {
		utils.Error(w, r, err)
		return
	}
	utils.JSON(w, http.StatusCreated, wt)
}

func (h *WetTransferHandler) Receive(w http.ResponseWriter, r *http.Request) {
	id, ok := pathInt(w, r, "id")
	if !ok {
		return
	}
	var req models.ReceiveWetTransferRequest
	if !utils.Decode(w, r, &req) {
		return
	}
	wt, err := h.Service.Receive(r.Context(), callerOf(r), id, &req)
	if err != nil {
		utils.Error(w, r, err)
		return
	}
	utils.JSON(w, http.StatusOK, wt)
}

func (h *WetTransferHandler) Reject(w http.ResponseWriter, r *http.Request) {
	id, ok := pathInt(w, r, "id")
	if !ok {
		return
	}
	var req models.RejectWetTransferRequest
	if !utils.Decode(w, r, &req) {
		return
	}
	wt, err := h.Service.Reject(r.Context(), callerOf(r), id, &req)
	if err != nil {
		utils.Error(w, r, err)
		return
	}
	utils.JSON(w, http.StatusOK, wt)
}

func (h *WetTransferHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathInt(w, r, "id")
	if !ok {
		return
	}
	if err := h.Service.Delete(r.Context(), callerOf(r), id); err != nil {
		utils.Error(w, r, err)
		return
	}
	utils.JSON(w, http.StatusOK, map[string]string{"message": "Wet transfer deleted"})
}

func (h *WetTransferHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathInt(w, r, "id")
	if !ok {
		return
	}
	wt, err := h.Service.Get(r.Context(), id)
	if err != nil {
		utils.Error(w, r, err)
		return
	}
	utils.JSON(w, http.StatusOK, wt)
}

func (h *WetTransferHandler) ListByBatch(w http.ResponseWriter, r *http.Request) {
	rows, err := h.Service.ListByBatch(r.Context(), mux.Vars(r)["batchNo"])
	writeWetTransfers(w, r, rows, err)
}

func (h *WetTransferHandler) ListBySource(w http.ResponseWriter, r *http.Request) {
	id, ok := pathInt(w, r, "stationId")
	if !ok {
		return
	}
	rows, err := h.Service.ListBySource(r.Context(), callerOf(r), id)
	writeWetTransfers(w, r, rows, err)
}

func (h *WetTransferHandler) ListByDestination(w http.ResponseWriter, r *http.Request) {
	id, ok := pathInt(w, r, "stationId")
	if !ok {
		return
	}
	rows, err := h.Service.ListByDestination(r.Context(), callerOf(r), id)
	writeWetTransfers(w, r, rows, err)
}

func (h *WetTransferHandler) Summary(w http.ResponseWriter, r *http.Request) {
	id, ok := pathInt(w, r, "stationId")
	if !ok {
		return
	}
	sum, err := h.Service.Summary(r.Context(), callerOf(r), id)
	if err != nil {
		utils.Error(w, r, err)
		return
	}
	utils.JSON(w, http.StatusOK, sum)
}

func writeWetTransfers(w http.ResponseWriter, r *http.Request, rows []*models.WetTransfer, err error) {
	if err != nil {
		utils.Error(w, r, err)
		return
	}
	if rows == nil {
		rows = []*models.WetTransfer{}
	}
	utils.JSON(w, http.StatusOK, rows)
}
