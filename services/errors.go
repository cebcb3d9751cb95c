package services

import "errors"

// Shared errors used across services and the HTTP error mapping.
var (
	ErrNotFound = errors.New("requested resource not found")

	// Validation and business rules
	ErrValidationFailed     = errors.New("validation failed")
	ErrInvalidTimeRange     = errors.New("invalid time range: start must be before end")
	ErrInvalidCategory      = errors.New("category is required")
	ErrUnknownCategory      = errors.New("no participants found for category")
	ErrInvalidRoundNumber   = errors.New("round number must be positive")
	ErrWinnerRequired       = errors.New("either winner_id or winner_team must be provided")
	ErrWinnerAmbiguous      = errors.New("winner_id and winner_team cannot both be set")
	ErrWinnerNotInMatch     = errors.New("winner does not reference a participant of this match")
	ErrWinnerTeamOutOfRange = errors.New("winner_team must be 1 or 2")
	ErrMatchNotCompleted    = errors.New("match is not completed")
	ErrEmptyUpdate          = errors.New("no fields supplied for update")

	// Conflicts
	ErrParticipantDuplicate = errors.New("participant with this employee id already exists")

	// Entity lookups
	ErrParticipantNotFound = errors.New("participant not found")
	ErrFixtureNotFound     = errors.New("fixture not found")
	ErrMatchNotFound       = errors.New("match not found")

	// Auth
	ErrInvalidCredentials = errors.New("invalid login or password")
)
