package http

import (
	"net/http"

	"membership-portal-backend/internal/service"
)

type ReportHandler struct {
	reportSvc service.ReportService
}

func NewReportHandler(reportSvc service.ReportService) *ReportHandler {
	return &ReportHandler{reportSvc: reportSvc}
}

func (h *ReportHandler) RevenueReport(w http.ResponseWriter, r *http.Request) {
	report, err := h.reportSvc.RevenueReport(r.Context(), ActorFromContext(r.Context()))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (h *ReportHandler) ActivityReport(w http.ResponseWriter, r *http.Request) {
	start, err := queryDate(r, "startDate")
	if err != nil {
		writeError(w, r, err)
		return
	}
	end, err := queryDate(r, "endDate")
	if err != nil {
		writeError(w, r, err)
		return
	}
	report, err := h.reportSvc.ActivityReport(r.Context(), ActorFromContext(r.Context()), start, end)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// Dashboard is the member landing summary, not an admin report
func (h *ReportHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	dashboard, err := h.reportSvc.Dashboard(r.Context(), ActorFromContext(r.Context()))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, dashboard)
}
