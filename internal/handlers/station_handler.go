package handlers

import (
	"net/http"

	"wetmill-backend/internal/services"
	"wetmill-backend/pkg/utils"
)

type StationHandler struct {
	Service *services.StationService
}

func NewStationHandler(s *services.StationService) *StationHandler {
	return &StationHandler{Service: s}
}

func (h *StationHandler) List(w http.ResponseWriter, r *http.Request) {
	stations, err := h.Service.List(r.Context())
	if err != nil {
		utils.Error(w, r, err)
		return
	}
	utils.JSON(w, http.StatusOK, stations)
}

func (h *StationHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathInt(w, r, "id")
	if !ok {
		return
	}
	station, err := h.Service.Get(r.Context(), id)
	if err != nil {
		utils.Error(w, r, err)
		return
	}
	utils.JSON(w, http.StatusOK, station)
}

func (h *StationHandler) SiteCollections(w http.ResponseWriter, r *http.Request) {
	id, ok := pathInt(w, r, "id")
	if !ok {
		return
	}
	sites, err := h.Service.ListSiteCollections(r.Context(), id)
	if err != nil {
		utils.Error(w, r, err)
		return
	}
	utils.JSON(w, http.StatusOK, sites)
}
