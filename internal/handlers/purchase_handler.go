package handlers

import (
	"net/http"
	"strconv"

	"wetmill-backend/internal/models"
	"wetmill-backend/internal/services"
	"wetmill-backend/pkg/utils"
)

type PurchaseHandler struct {
	Service *services.PurchaseService
}

func NewPurchaseHandler(s *services.PurchaseService) *PurchaseHandler {
	return &PurchaseHandler{Service: s}
}

// Create handles POST /api/purchases
func (h *PurchaseHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req models.CreatePurchaseRequest
	if !utils.Decode(w, r, &req) {
		return
	}
	p, err := h.Service.Create(r.Context(), callerOf(r), &req)
	if err != nil {
		utils.Error(w, r, err)
		return
	}
	utils.JSON(w, http.StatusCreated, p)
}

// Check handles GET /api/purchases/check?cwsId=&grade=&date=
func (h *PurchaseHandler) Check(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	stationID, _ := strconv.Atoi(q.Get("cwsId"))
	batchNo, err := h.Service.CheckPurchase(r.Context(), stationID, q.Get("grade"), q.Get("date"))
	if err != nil {
		utils.Error(w, r, err)
		return
	}
	utils.JSON(w, http.StatusOK, map[string]interface{}{"canAccept": true, "batchNo": batchNo})
}

func (h *PurchaseHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathInt(w, r, "id")
	if !ok {
		return
	}
	p, err := h.Service.Get(r.Context(), callerOf(r), id)
	if err != nil {
		utils.Error(w, r, err)
		return
	}
	utils.JSON(w, http.StatusOK, p)
}

func (h *PurchaseHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathInt(w, r, "id")
	if !ok {
		return
	}
	var req models.UpdatePurchaseRequest
	if !utils.Decode(w, r, &req) {
		return
	}
	p, err := h.Service.Update(r.Context(), callerOf(r), id, &req)
	if err != nil {
		utils.Error(w, r, err)
		return
	}
	utils.JSON(w, http.StatusOK, p)
}

func (h *PurchaseHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathInt(w, r, "id")
	if !ok {
		return
	}
	if err := h.Service.Delete(r.Context(), callerOf(r), id); err != nil {
		utils.Error(w, r, err)
		return
	}
	utils.JSON(w, http.StatusOK, map[string]string{"message": "Purchase deleted"})
}

func (h *PurchaseHandler) ListByStation(w http.ResponseWriter, r *http.Request) {
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
