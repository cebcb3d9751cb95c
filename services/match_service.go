package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/officesports/matchday/models"
	"github.com/officesports/matchday/repositories"
)

// RecordResultInput resolves a match. Exactly one of WinnerID / WinnerTeam
// must be set; the singles/doubles shape is dictated by the match's category.
type RecordResultInput struct {
	WinnerID        *int
	WinnerTeam      *int
	AdvancementType string
}

// TrackerUpdate is the partial patch surface of the match tracker: only
// supplied fields are written.
type TrackerUpdate struct {
	RoundNumber     *int
	Status          *models.MatchStatus
	WinnerID        *int
	AdvancementType *string
}

// DetailsUpdate patches participant references (the pairing-completion step
// that fills side B after fixture generation), status and round.
type DetailsUpdate struct {
	Player1ID      *int
	Player2ID      *int
	Team1Player1ID *int
	Team1Player2ID *int
	Team2Player1ID *int
	Team2Player2ID *int
	Status         *models.MatchStatus
	RoundNumber    *int
}

type MatchService interface {
	GetByID(ctx context.Context, id int) (*models.Match, error)
	List(ctx context.Context, category *string, status *models.MatchStatus) ([]*models.Match, error)
	RecordResult(ctx context.Context, matchID int, input RecordResultInput) (*models.Match, error)
	ResetResult(ctx context.Context, matchID int) (*models.Match, error)
	UpdateTracker(ctx context.Context, matchID int, update TrackerUpdate) (*models.Match, error)
	UpdateDetails(ctx context.Context, matchID int, update DetailsUpdate) (*models.Match, error)
	Delete(ctx context.Context, matchID int) error
}

type matchService struct {
	matchRepo repositories.MatchRepository
	events    EventPublisher
	logger    *slog.Logger
}

func NewMatchService(matchRepo repositories.MatchRepository, events EventPublisher, logger *slog.Logger) MatchService {
	return &matchService{matchRepo: matchRepo, events: events, logger: logger}
}

func (s *matchService) GetByID(ctx context.Context, id int) (*models.Match, error) {
	match, err := s.matchRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrMatchNotFound) {
			return nil, ErrMatchNotFound
		}
		return nil, err
	}
	return match, nil
}

func (s *matchService) List(ctx context.Context, category *string, status *models.MatchStatus) ([]*models.Match, error) {
	return s.matchRepo.List(ctx, category, status)
}

// RecordResult transitions scheduled -> completed. The winner must reference
// one of the match's own participants; a singles category takes winner_id, a
// doubles category takes winner_team 1 or 2. Recording is idempotent for a
// completed match in the sense that it simply overwrites the winner fields.
func (s *matchService) RecordResult(ctx context.Context, matchID int, input RecordResultInput) (*models.Match, error) {
	if input.WinnerID != nil && input.WinnerTeam != nil {
		return nil, ErrWinnerAmbiguous
	}
	if input.WinnerID == nil && input.WinnerTeam == nil {
		return nil, ErrWinnerRequired
	}

	match, err := s.GetByID(ctx, matchID)
	if err != nil {
		return nil, err
	}

	if match.IsSingles() {
		if input.WinnerID == nil {
			return nil, fmt.Errorf("%w: singles category %q needs winner_id", ErrValidationFailed, match.Category)
		}
		if !match.HasParticipant(*input.WinnerID) {
			return nil, ErrWinnerNotInMatch
		}
	} else {
		if input.WinnerTeam == nil {
			return nil, fmt.Errorf("%w: doubles category %q needs winner_team", ErrValidationFailed, match.Category)
		}
		if *input.WinnerTeam != 1 && *input.WinnerTeam != 2 {
			return nil, ErrWinnerTeamOutOfRange
		}
	}

	advancement := input.AdvancementType
	if advancement == "" {
		advancement = "normal"
	}

	if err := s.matchRepo.CompleteWithWinner(ctx, matchID, input.WinnerID, input.WinnerTeam, advancement); err != nil {
		if errors.Is(err, repositories.ErrMatchNotFound) {
			return nil, ErrMatchNotFound
		}
		return nil, err
	}

	updated, err := s.GetByID(ctx, matchID)
	if err != nil {
		return nil, err
	}

	s.logger.Info("match completed",
		slog.Int("match_id", matchID),
		slog.String("category", match.Category),
		slog.String("advancement", advancement),
	)
	if s.events != nil {
		s.events.Publish(match.Category, "MATCH_COMPLETED", updated)
	}
	return updated, nil
}

// ResetResult transitions completed -> scheduled, clearing winner fields and
// the completion timestamp.
func (s *matchService) ResetResult(ctx context.Context, matchID int) (*models.Match, error) {
	match, err := s.GetByID(ctx, matchID)
	if err != nil {
		return nil, err
	}
	if match.Status != models.MatchStatusCompleted {
		return nil, ErrMatchNotCompleted
	}

	if err := s.matchRepo.ResetResult(ctx, matchID); err != nil {
		if errors.Is(err, repositories.ErrMatchNotFound) {
			return nil, ErrMatchNotFound
		}
		return nil, err
	}
	return s.GetByID(ctx, matchID)
}

func (s *matchService) UpdateTracker(ctx context.Context, matchID int, update TrackerUpdate) (*models.Match, error) {
	if update.RoundNumber == nil && update.Status == nil && update.WinnerID == nil && update.AdvancementType == nil {
		return nil, ErrEmptyUpdate
	}
	if update.RoundNumber != nil && *update.RoundNumber <= 0 {
		return nil, ErrInvalidRoundNumber
	}

	match, err := s.GetByID(ctx, matchID)
	if err != nil {
		return nil, err
	}
	if update.WinnerID != nil && !match.HasParticipant(*update.WinnerID) {
		return nil, ErrWinnerNotInMatch
	}

	patch := repositories.MatchPatch{
		RoundNumber:     update.RoundNumber,
		Status:          update.Status,
		WinnerID:        update.WinnerID,
		AdvancementType: update.AdvancementType,
	}
	if err := s.matchRepo.Patch(ctx, matchID, patch); err != nil {
		if errors.Is(err, repositories.ErrMatchNotFound) {
			return nil, ErrMatchNotFound
		}
		return nil, err
	}
	return s.GetByID(ctx, matchID)
}

func (s *matchService) UpdateDetails(ctx context.Context, matchID int, update DetailsUpdate) (*models.Match, error) {
	patch := repositories.MatchPatch{
		Player1ID:      update.Player1ID,
		Player2ID:      update.Player2ID,
		Team1Player1ID: update.Team1Player1ID,
		Team1Player2ID: update.Team1Player2ID,
		Team2Player1ID: update.Team2Player1ID,
		Team2Player2ID: update.Team2Player2ID,
		Status:         update.Status,
		RoundNumber:    update.RoundNumber,
	}
	if patch == (repositories.MatchPatch{}) {
		return nil, ErrEmptyUpdate
	}

	if _, err := s.GetByID(ctx, matchID); err != nil {
		return nil, err
	}
	if err := s.matchRepo.Patch(ctx, matchID, patch); err != nil {
		if errors.Is(err, repositories.ErrMatchNotFound) {
			return nil, ErrMatchNotFound
		}
		return nil, err
	}
	return s.GetByID(ctx, matchID)
}

func (s *matchService) Delete(ctx context.Context, matchID int) error {
	err := s.matchRepo.Delete(ctx, matchID)
	if errors.Is(err, repositories.ErrMatchNotFound) {
		return ErrMatchNotFound
	}
	return err
}
