package handlers

import (
	"net/http"

	"wetmill-backend/internal/services"
	"wetmill-backend/pkg/utils"

	"github.com/gorilla/mux"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type ReportHandler struct {
	Service *services.ReportService
}

func NewReportHandler(s *services.ReportService) *ReportHandler {
	return &ReportHandler{Service: s}
}

func (h *ReportHandler) Yield(w http.ResponseWriter, r *http.Request) {
	report, err := h.Service.Yield(r.Context(), callerOf(r))
	if err != nil {
		utils.Error(w, r, err)
		return
	}
	utils.JSON(w, http.StatusOK, report)
}

func (h *ReportHandler) Stock(w http.ResponseWriter, r *http.Request) {
	report, err := h.Service.Stock(r.Context(), callerOf(r))
	if err != nil {
		utils.Error(w, r, err)
		return
	}
	utils.JSON(w, http.StatusOK, report)
}

func (h *ReportHandler) Delivery(w http.ResponseWriter, r *http.Request) {
	report, err := h.Service.Delivery(r.Context(), callerOf(r))
	if err != nil {
		utils.Error(w, r, err)
		return
	}
	utils.JSON(w, http.StatusOK, report)
}

// YieldExport handles GET /api/reports/yield/export
func (h *ReportHandler) YieldExport(w http.ResponseWriter, r *http.Request) {
	data, err := h.Service.YieldWorkbook(r.Context(), callerOf(r))
	if err != nil {
		utils.Error(w, r, err)
		return
	}
	download(w, xlsxContentType, "yield_report_"+today()+".xlsx", data)
}

// Archive handles POST /api/reports/{name}/archive
func (h *ReportHandler) Archive(w http.ResponseWriter, r *http.Request) {
	receipt, err := h.Service.Archive(r.Context(), callerOf(r), mux.Vars(r)["name"])
	if err != nil {
		utils.Error(w, r, err)
		return
	}
	utils.JSON(w, http.StatusCreated, receipt)
}
