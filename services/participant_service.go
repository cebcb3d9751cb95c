package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/officesports/matchday/models"
	"github.com/officesports/matchday/repositories"
)

type CreateParticipantInput struct {
	EmpID        string
	Name         string
	Email        *string
	Location     *string
	SubLocation  *string
	Game         string
	Category     string
	Slot         *string
	PartnerEmpID *string
	Gender       *string
}

type ParticipantService interface {
	Create(ctx context.Context, input CreateParticipantInput) (*models.Participant, error)
	GetByID(ctx context.Context, id int) (*models.Participant, error)
	List(ctx context.Context, filter repositories.ParticipantFilter) ([]*models.Participant, error)
	SetPresent(ctx context.Context, id int, present bool) (*models.Participant, error)
	EnsurePartner(ctx context.Context, input CreateParticipantInput) (bool, error)
	Delete(ctx context.Context, id int) error
	ResetAll(ctx context.Context) (int, error)
}

type participantService struct {
	repo        repositories.ParticipantRepository
	fixtureRepo repositories.FixtureRepository
	matchRepo   repositories.MatchRepository
	logger      *slog.Logger
}

func NewParticipantService(
	repo repositories.ParticipantRepository,
	fixtureRepo repositories.FixtureRepository,
	matchRepo repositories.MatchRepository,
	logger *slog.Logger,
) ParticipantService {
	return &participantService{repo: repo, fixtureRepo: fixtureRepo, matchRepo: matchRepo, logger: logger}
}

func (s *participantService) Create(ctx context.Context, input CreateParticipantInput) (*models.Participant, error) {
	if err := validateParticipantInput(input); err != nil {
		return nil, err
	}

	participant := &models.Participant{
		EmpID:        strings.TrimSpace(input.EmpID),
		Name:         strings.TrimSpace(input.Name),
		Email:        input.Email,
		Location:     input.Location,
		SubLocation:  input.SubLocation,
		Game:         input.Game,
		Category:     input.Category,
		Slot:         input.Slot,
		PartnerEmpID: input.PartnerEmpID,
		Gender:       input.Gender,
	}

	if err := s.repo.Create(ctx, participant); err != nil {
		if errors.Is(err, repositories.ErrParticipantDuplicate) {
			return nil, fmt.Errorf("%w: %s", ErrParticipantDuplicate, participant.EmpID)
		}
		return nil, err
	}
	return participant, nil
}

func validateParticipantInput(input CreateParticipantInput) error {
	if strings.TrimSpace(input.EmpID) == "" {
		return fmt.Errorf("%w: emp_id is required", ErrValidationFailed)
	}
	if strings.TrimSpace(input.Name) == "" {
		return fmt.Errorf("%w: name is required", ErrValidationFailed)
	}
	if input.Category == "" {
		return ErrInvalidCategory
	}
	return nil
}

func (s *participantService) GetByID(ctx context.Context, id int) (*models.Participant, error) {
	participant, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrParticipantNotFound) {
			return nil, ErrParticipantNotFound
		}
		return nil, err
	}
	return participant, nil
}

func (s *participantService) List(ctx context.Context, filter repositories.ParticipantFilter) ([]*models.Participant, error) {
	return s.repo.List(ctx, filter)
}

// SetPresent toggles the desk registration flag. Marking present stamps the
// present_at timestamp, unmarking clears it; repeated calls with the same
// value are harmless.
func (s *participantService) SetPresent(ctx context.Context, id int, present bool) (*models.Participant, error) {
	if err := s.repo.SetPresent(ctx, id, present); err != nil {
		if errors.Is(err, repositories.ErrParticipantNotFound) {
			return nil, ErrParticipantNotFound
		}
		return nil, err
	}
	return s.GetByID(ctx, id)
}

// EnsurePartner guarantees a declared doubles partner exists and points back
// before pairing runs. If the partner is missing a placeholder row is
// created (named after the employee id, with a derived email) with its
// back-link stamped; if the partner exists without any partner reference the
// reverse link is stamped in place. Returns whether a placeholder was
// created.
func (s *participantService) EnsurePartner(ctx context.Context, input CreateParticipantInput) (bool, error) {
	if input.PartnerEmpID == nil || *input.PartnerEmpID == "" {
		return false, nil
	}
	partnerEmpID := *input.PartnerEmpID

	backLink := strings.TrimSpace(input.EmpID)

	partner, err := s.repo.GetByEmpID(ctx, partnerEmpID)
	if err == nil {
		// An existing partner without a declared partner of their own is
		// a one-way link; stamp the reverse reference so the pair is
		// mutual when pairing runs. A partner already linked elsewhere is
		// left alone.
		if partner.PartnerEmpID == nil {
			if err := s.repo.SetPartner(ctx, partner.EmpID, &backLink); err != nil {
				return false, err
			}
			s.logger.Info("repaired one-way partner link",
				slog.String("emp_id", partner.EmpID),
				slog.String("partner_emp_id", backLink),
			)
		}
		return false, nil
	}
	if !errors.Is(err, repositories.ErrParticipantNotFound) {
		return false, err
	}

	name := "Player-" + partnerEmpID
	email := fmt.Sprintf("player%s@example.com", partnerEmpID)

	placeholder := &models.Participant{
		EmpID:        partnerEmpID,
		Name:         name,
		Email:        &email,
		Game:         input.Game,
		Category:     input.Category,
		Slot:         input.Slot,
		PartnerEmpID: &backLink,
		Gender:       input.Gender,
	}
	if err := s.repo.Create(ctx, placeholder); err != nil {
		if errors.Is(err, repositories.ErrParticipantDuplicate) {
			// Raced with another insert; the partner exists now.
			return false, nil
		}
		return false, err
	}

	s.logger.Info("created placeholder partner",
		slog.String("emp_id", partnerEmpID),
		slog.String("category", input.Category),
	)
	return true, nil
}

func (s *participantService) Delete(ctx context.Context, id int) error {
	err := s.repo.Delete(ctx, id)
	if errors.Is(err, repositories.ErrParticipantNotFound) {
		return ErrParticipantNotFound
	}
	return err
}

// ResetAll wipes the registry along with every fixture and match derived
// from it. Admin-only bulk reset used between tournaments; returns the
// number of participants removed.
func (s *participantService) ResetAll(ctx context.Context) (int, error) {
	matches, err := s.matchRepo.DeleteAll(ctx)
	if err != nil {
		return 0, err
	}
	fixtures, err := s.fixtureRepo.DeleteAll(ctx)
	if err != nil {
		return 0, err
	}
	count, err := s.repo.DeleteAll(ctx)
	if err != nil {
		return 0, err
	}
	s.logger.Warn("tournament registry reset",
		slog.Int("participants", count),
		slog.Int("fixtures", fixtures),
		slog.Int("matches", matches),
	)
	return count, nil
}
