package handlers

import (
	"net/http"

	"github.com/officesports/matchday/repositories"
	"github.com/officesports/matchday/services"
)

type ParticipantHandler struct {
	participantService services.ParticipantService
}

func NewParticipantHandler(participantService services.ParticipantService) *ParticipantHandler {
	return &ParticipantHandler{participantService: participantService}
}

func (h *ParticipantHandler) CreateParticipantHandler(w http.ResponseWriter, r *http.Request) {
	var input struct {
		EmpID        string  `json:"emp_id"`
		Name         string  `json:"name"`
		Email        *string `json:"email"`
		Location     *string `json:"location"`
		SubLocation  *string `json:"sub_location"`
		Game         string  `json:"game"`
		Category     string  `json:"category"`
		Slot         *string `json:"slot"`
		PartnerEmpID *string `json:"partner_emp_id"`
		Gender       *string `json:"gender"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	participant, err := h.participantService.Create(r.Context(), services.CreateParticipantInput{
		EmpID:        input.EmpID,
		Name:         input.Name,
		Email:        input.Email,
		Location:     input.Location,
		SubLocation:  input.SubLocation,
		Game:         input.Game,
		Category:     input.Category,
		Slot:         input.Slot,
		PartnerEmpID: input.PartnerEmpID,
		Gender:       input.Gender,
	})
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"participant": participant}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *ParticipantHandler) ListParticipantsHandler(w http.ResponseWriter, r *http.Request) {
	filter := repositories.ParticipantFilter{
		Category: optionalQuery(r, "category"),
		Game:     optionalQuery(r, "game"),
		Search:   optionalQuery(r, "search"),
	}

	participants, err := h.participantService.List(r.Context(), filter)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"participants": participants, "count": len(participants)}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *ParticipantHandler) GetParticipantHandler(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "participantID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	participant, err := h.participantService.GetByID(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"participant": participant}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// SetPresentHandler toggles the check-in flag. Marking a participant present
// stamps present_at; clearing the flag clears the timestamp.
func (h *ParticipantHandler) SetPresentHandler(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "participantID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input struct {
		Present bool `json:"present"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	participant, err := h.participantService.SetPresent(r.Context(), id, input.Present)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"participant": participant}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *ParticipantHandler) DeleteParticipantHandler(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "participantID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := h.participantService.Delete(r.Context(), id); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ResetAllHandler wipes the registry along with its fixtures and matches.
func (h *ParticipantHandler) ResetAllHandler(w http.ResponseWriter, r *http.Request) {
	deleted, err := h.participantService.ResetAll(r.Context())
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"deleted": deleted}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func optionalQuery(r *http.Request, key string) *string {
	if v := r.URL.Query().Get(key); v != "" {
		return &v
	}
	return nil
}
