package handlers

import (
	"net/http"

	"wetmill-backend/internal/models"
	"wetmill-backend/internal/services"
	"wetmill-backend/pkg/utils"
)

type SampleStorageHandler struct {
	Service *services.SampleStorageService
}

func NewSampleStorageHandler(s *services.SampleStorageService) *SampleStorageHandler {
	return &SampleStorageHandler{Service: s}
}

func (h *SampleStorageHandler) List(w http.ResponseWriter, r *http.Request) {
	rows, err := h.Service.List(r.Context())
	if err != nil {
		utils.Error(w, r, err)
		return
	}
	if rows == nil {
		rows = []*models.SampleStorage{}
	}
	utils.JSON(w, http.StatusOK, rows)
}

func (h *SampleStorageHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathInt(w, r, "id")
	if !ok {
		return
	}
	s, err := h.Service.Get(r.Context(), id)
	if err != nil {
		utils.Error(w, r, err)
		return
	}
	utils.JSON(w, http.StatusOK, s)
}

func (h *SampleStorageHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req models.SampleStorageRequest
	if !utils.Decode(w, r, &req) {
		return
	}
	s, err := h.Service.Create(r.Context(), callerOf(r), &req)
	if err != nil {
		utils.Error(w, r, err)
		return
	}
	utils.JSON(w, http.StatusCreated, s)
}

func (h *SampleStorageHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathInt(w, r, "id")
	if !ok {
		return
	}
	var req models.SampleStorageRequest
	if !utils.Decode(w, r, &req) {
		return
	}
	s, err := h.Service.Update(r.Context(), callerOf(r), id, &req)
	if err != nil {
		utils.Error(w, r, err)
		return
	}
	utils.JSON(w, http.StatusOK, s)
}

func (h *SampleStorageHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathInt(w, r, "id")
	if !ok {
		return
	}
	if err := h.Service.Delete(r.Context(), callerOf(r), id); err != nil {
		utils.Error(w, r, err)
		return
	}
	utils.JSON(w, http.StatusOK, map[string]string{"message": "Sample storage deleted"})
}
