package handlers

import (
	"net/http"
	"strconv"

	"github.com/officesports/matchday/services"
)

type ReportHandler struct {
	reportService services.ReportService
}

func NewReportHandler(reportService services.ReportService) *ReportHandler {
	return &ReportHandler{reportService: reportService}
}

// DashboardHandler returns the landing-page snapshot: upcoming matches and
// recent winners.
func (h *ReportHandler) DashboardHandler(w http.ResponseWriter, r *http.Request) {
	dashboard, err := h.reportService.Dashboard(r.Context())
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"dashboard": dashboard}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *ReportHandler) UpcomingMatchesHandler(w http.ResponseWriter, r *http.Request) {
	matches, err := h.reportService.UpcomingMatches(r.Context(), limitParam(r, 50))
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"matches": matches, "count": len(matches)}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *ReportHandler) RecentWinnersHandler(w http.ResponseWriter, r *http.Request) {
	matches, err := h.reportService.RecentWinners(r.Context(), limitParam(r, 20))
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"winners": matches, "count": len(matches)}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func limitParam(r *http.Request, fallback int) int {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return fallback
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit < 1 {
		return fallback
	}
	return limit
}
