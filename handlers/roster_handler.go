package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/officesports/matchday/repositories"
	"github.com/officesports/matchday/services"
)

const maxImportSize = 10 << 20 // 10MB

type RosterHandler struct {
	rosterService services.RosterService
}

func NewRosterHandler(rosterService services.RosterService) *RosterHandler {
	return &RosterHandler{rosterService: rosterService}
}

// ImportHandler ingests an xlsx roster. The multipart form carries the
// workbook under "file", an optional column mapping JSON under "mapping"
// and an optional default game under "game". Rows that fail validation are
// reported back without aborting the batch.
func (h *RosterHandler) ImportHandler(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxImportSize); err != nil {
		badRequestResponse(w, r, fmt.Errorf("failed to parse multipart form: %w", err))
		return
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		badRequestResponse(w, r, fmt.Errorf("missing workbook file: %w", err))
		return
	}
	defer file.Close()

	mapping := services.ColumnMapping{
		EmpID:        "emp_id",
		Name:         "name",
		Email:        "email",
		Category:     "category",
		Location:     "location",
		SubLocation:  "sub_location",
		Game:         "game",
		Slot:         "slot",
		PartnerEmpID: "partner_emp_id",
		Gender:       "gender",
	}
	if raw := r.FormValue("mapping"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &mapping); err != nil {
			badRequestResponse(w, r, fmt.Errorf("invalid column mapping: %w", err))
			return
		}
	}

	result, err := h.rosterService.Import(r.Context(), file, mapping, r.FormValue("game"))
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"import": result}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// ExportFixturesHandler produces the schedule workbook. With upload=true the
// file goes to object storage and the response carries its public URL;
// otherwise the workbook streams back directly.
func (h *RosterHandler) ExportFixturesHandler(w http.ResponseWriter, r *http.Request) {
	upload := r.URL.Query().Get("upload") == "true"

	result, data, err := h.rosterService.ExportFixtures(r.Context(), optionalQuery(r, "category"), upload)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	writeExport(w, r, result, data, upload)
}

func (h *RosterHandler) ExportParticipantsHandler(w http.ResponseWriter, r *http.Request) {
	upload := r.URL.Query().Get("upload") == "true"
	filter := repositories.ParticipantFilter{
		Category: optionalQuery(r, "category"),
		Game:     optionalQuery(r, "game"),
	}

	result, data, err := h.rosterService.ExportParticipants(r.Context(), filter, upload)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	writeExport(w, r, result, data, upload)
}

func writeExport(w http.ResponseWriter, r *http.Request, result *services.ExportResult, data []byte, uploaded bool) {
	if uploaded {
		if err := writeJSON(w, http.StatusOK, jsonResponse{"export": result}, nil); err != nil {
			serverErrorResponse(w, r, err)
		}
		return
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", result.Filename))
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}
