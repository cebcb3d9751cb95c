package handlers

import (
	"net/http"

	"github.com/officesports/matchday/models"
	"github.com/officesports/matchday/services"
)

type MatchHandler struct {
	matchService services.MatchService
}

func NewMatchHandler(matchService services.MatchService) *MatchHandler {
	return &MatchHandler{matchService: matchService}
}

func (h *MatchHandler) ListMatchesHandler(w http.ResponseWriter, r *http.Request) {
	var status *models.MatchStatus
	if raw := r.URL.Query().Get("status"); raw != "" {
		s := models.MatchStatus(raw)
		status = &s
	}

	matches, err := h.matchService.List(r.Context(), optionalQuery(r, "category"), status)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"matches": matches, "count": len(matches)}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *MatchHandler) GetMatchHandler(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "matchID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	match, err := h.matchService.GetByID(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"match": match}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// RecordResultHandler completes a match. Singles results carry winner_id,
// doubles results carry winner_team; supplying both or neither is rejected.
func (h *MatchHandler) RecordResultHandler(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "matchID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input struct {
		WinnerID        *int   `json:"winner_id"`
		WinnerTeam      *int   `json:"winner_team"`
		AdvancementType string `json:"advancement_type"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	match, err := h.matchService.RecordResult(r.Context(), id, services.RecordResultInput{
		WinnerID:        input.WinnerID,
		WinnerTeam:      input.WinnerTeam,
		AdvancementType: input.AdvancementType,
	})
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"match": match}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// ResetResultHandler reverts a completed match back to scheduled, clearing
// the winner and completion timestamp.
func (h *MatchHandler) ResetResultHandler(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "matchID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	match, err := h.matchService.ResetResult(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"match": match}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *MatchHandler) UpdateTrackerHandler(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "matchID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input struct {
		RoundNumber     *int                `json:"round_number"`
		Status          *models.MatchStatus `json:"status"`
		WinnerID        *int                `json:"winner_id"`
		AdvancementType *string             `json:"advancement_type"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	match, err := h.matchService.UpdateTracker(r.Context(), id, services.TrackerUpdate{
		RoundNumber:     input.RoundNumber,
		Status:          input.Status,
		WinnerID:        input.WinnerID,
		AdvancementType: input.AdvancementType,
	})
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"match": match}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// UpdateDetailsHandler patches participant references and schedule fields.
// Its main use is filling side B of a match created half-paired.
func (h *MatchHandler) UpdateDetailsHandler(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "matchID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input struct {
		Player1ID      *int                `json:"player1_id"`
		Player2ID      *int                `json:"player2_id"`
		Team1Player1ID *int                `json:"team1_player1_id"`
		Team1Player2ID *int                `json:"team1_player2_id"`
		Team2Player1ID *int                `json:"team2_player1_id"`
		Team2Player2ID *int                `json:"team2_player2_id"`
		Status         *models.MatchStatus `json:"status"`
		RoundNumber    *int                `json:"round_number"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	match, err := h.matchService.UpdateDetails(r.Context(), id, services.DetailsUpdate{
		Player1ID:      input.Player1ID,
		Player2ID:      input.Player2ID,
		Team1Player1ID: input.Team1Player1ID,
		Team1Player2ID: input.Team1Player2ID,
		Team2Player1ID: input.Team2Player1ID,
		Team2Player2ID: input.Team2Player2ID,
		Status:         input.Status,
		RoundNumber:    input.RoundNumber,
	})
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"match": match}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *MatchHandler) DeleteMatchHandler(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "matchID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := h.matchService.Delete(r.Context(), id); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
