package handlers

import (
	"net/http"
	"time"

	"github.com/officesports/matchday/services"
)

type FixtureHandler struct {
	fixtureService services.FixtureService
	emailService   services.EmailService
}

func NewFixtureHandler(fixtureService services.FixtureService, emailService services.EmailService) *FixtureHandler {
	return &FixtureHandler{fixtureService: fixtureService, emailService: emailService}
}

// GenerateFixturesHandler runs one scheduling pass for a category: pairs the
// present roster, lays the pairings onto generated time slots and persists
// the fixtures and matches in a single transaction.
func (h *FixtureHandler) GenerateFixturesHandler(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Category        string    `json:"category"`
		Game            string    `json:"game"`
		SlotTag         *string   `json:"slot"`
		Location        *string   `json:"location"`
		RoundNumber     int       `json:"round_number"`
		Start           time.Time `json:"start"`
		End             time.Time `json:"end"`
		IntervalMinutes int       `json:"interval_minutes"`
		MatchesPerSlot  int       `json:"matches_per_slot"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	result, err := h.fixtureService.Generate(r.Context(), services.GenerateFixturesInput{
		Category:        input.Category,
		Game:            input.Game,
		SlotTag:         input.SlotTag,
		Location:        input.Location,
		RoundNumber:     input.RoundNumber,
		Start:           input.Start,
		End:             input.End,
		IntervalMinutes: input.IntervalMinutes,
		MatchesPerSlot:  input.MatchesPerSlot,
	})
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	response := jsonResponse{
		"fixtures":  result.Fixtures,
		"matches":   result.Matches,
		"scheduled": result.Scheduled,
		"dropped":   result.Dropped,
		"unpaired":  result.Unpaired,
	}
	if err := writeJSON(w, http.StatusCreated, response, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *FixtureHandler) ListFixturesHandler(w http.ResponseWriter, r *http.Request) {
	fixtures, err := h.fixtureService.List(r.Context(), optionalQuery(r, "category"))
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"fixtures": fixtures, "count": len(fixtures)}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *FixtureHandler) GetFixtureHandler(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "fixtureID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	fixture, err := h.fixtureService.GetByID(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"fixture": fixture}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// UpdateFixtureHandler patches a fixture's schedule fields. Only supplied
// keys are written; participant references never change through this route.
func (h *FixtureHandler) UpdateFixtureHandler(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "fixtureID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input struct {
		TimeSlot    *string `json:"time_slot"`
		RoundNumber *int    `json:"round_number"`
		CourtNumber *int    `json:"court_number"`
		Location    *string `json:"location"`
		Status      *string `json:"status"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	fields := map[string]interface{}{}
	if input.TimeSlot != nil {
		fields["time_slot"] = *input.TimeSlot
	}
	if input.RoundNumber != nil {
		fields["round_number"] = *input.RoundNumber
	}
	if input.CourtNumber != nil {
		fields["court_number"] = *input.CourtNumber
	}
	if input.Location != nil {
		fields["location"] = *input.Location
	}
	if input.Status != nil {
		fields["status"] = *input.Status
	}

	if err := h.fixtureService.Update(r.Context(), id, fields); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	fixture, err := h.fixtureService.GetByID(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"fixture": fixture}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *FixtureHandler) DeleteFixtureHandler(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "fixtureID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := h.fixtureService.Delete(r.Context(), id); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// SendFixtureEmailsHandler notifies one fixture's participants of their
// schedule. With draft=true the message is prepared but not delivered.
func (h *FixtureHandler) SendFixtureEmailsHandler(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "fixtureID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	draftOnly := r.URL.Query().Get("draft") == "true"

	if err := h.emailService.SendFixtureEmails(r.Context(), id, draftOnly); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"sent": !draftOnly, "fixture_id": id}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// SendCategoryEmailsHandler batches notifications for every fixture in a
// category that has not been emailed yet.
func (h *FixtureHandler) SendCategoryEmailsHandler(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Category string `json:"category"`
		Draft    bool   `json:"draft"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if input.Category == "" {
		mapServiceErrorToHTTP(w, r, services.ErrInvalidCategory)
		return
	}

	results, err := h.emailService.SendCategoryEmails(r.Context(), input.Category, input.Draft)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"results": results, "count": len(results)}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
