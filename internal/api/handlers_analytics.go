package api

import (
	"fmt"
	"net/http"
	"strings"

	"finlog/pkg/analytics"
)

func (h *handler) getAnalytics(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	spec, err := h.core.PeriodSpec(query.Get("period"), query.Get("start"), query.Get("end"))
	if err != nil {
		writeErrorResponse(w, http.StatusBadRequest, err)
		return
	}
	result, err := h.core.Analytics(r.Context(), ownerFrom(r), spec)
	if err != nil {
		writeErrorResponse(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *handler) getDashboard(w http.ResponseWriter, r *http.Request) {
	year := parseInt(r.URL.Query().Get("year"))
	result, err := h.core.Dashboard(r.Context(), ownerFrom(r), year)
	if err != nil {
		writeErrorResponse(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *handler) getHeatmap(w http.ResponseWriter, r *http.Request) {
	year := parseInt(r.URL.Query().Get("year"))
	result, err := h.core.Heatmap(r.Context(), ownerFrom(r), year)
	if err != nil {
		writeErrorResponse(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *handler) getReport(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	report, err := h.core.Report(r.Context(), ownerFrom(r), query.Get("start"), query.Get("end"), query.Get("title"))
	if err != nil {
		writeErrorResponse(w, http.StatusInternalServerError, err)
		return
	}
	if !strings.EqualFold(query.Get("format"), "csv") {
		writeJSON(w, http.StatusOK, report)
		return
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", reportFilename(report)))
	w.WriteHeader(http.StatusOK)
	if err := report.WriteCSV(w); err != nil {
		h.logger.Error("write report csv failed", "err", err)
	}
}

func reportFilename(report *analytics.Report) string {
	return fmt.Sprintf("finlog-%s-%s.csv", analytics.DateKey(report.Start), analytics.DateKey(report.End))
}
