package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/officesports/matchday/models"
	"github.com/officesports/matchday/repositories"
	"github.com/officesports/matchday/scheduling"
)

// EventPublisher pushes schedule events to connected clients. Satisfied by
// the live websocket hub; rooms are keyed by category.
type EventPublisher interface {
	Publish(room string, eventType string, payload interface{})
}

type GenerateFixturesInput struct {
	Category        string
	Game            string
	SlotTag         *string
	Location        *string
	RoundNumber     int
	Start           time.Time
	End             time.Time
	IntervalMinutes int
	MatchesPerSlot  int
}

// GenerateFixturesResult reports one generation run. Unpaired lists the
// participants that could not form a pairing unit (odd singles player,
// half-linked doubles players) so the caller can surface a warning.
type GenerateFixturesResult struct {
	Fixtures  []*models.Fixture
	Matches   []*models.Match
	Scheduled int
	Dropped   int
	Unpaired  []string
}

type FixtureService interface {
	Generate(ctx context.Context, input GenerateFixturesInput) (*GenerateFixturesResult, error)
	GetByID(ctx context.Context, id int) (*models.Fixture, error)
	List(ctx context.Context, category *string) ([]*models.Fixture, error)
	Update(ctx context.Context, id int, fields map[string]interface{}) error
	Delete(ctx context.Context, id int) error
}

type fixtureService struct {
	tx              repositories.TxRunner
	fixtureRepo     repositories.FixtureRepository
	matchRepo       repositories.MatchRepository
	participantRepo repositories.ParticipantRepository
	events          EventPublisher
	logger          *slog.Logger
}

func NewFixtureService(
	tx repositories.TxRunner,
	fixtureRepo repositories.FixtureRepository,
	matchRepo repositories.MatchRepository,
	participantRepo repositories.ParticipantRepository,
	events EventPublisher,
	logger *slog.Logger,
) FixtureService {
	return &fixtureService{
		tx:              tx,
		fixtureRepo:     fixtureRepo,
		matchRepo:       matchRepo,
		participantRepo: participantRepo,
		events:          events,
		logger:          logger,
	}
}

// Generate runs the whole pipeline for one category and round: load the
// roster, pair it, synthesize slots, assign courts, then persist every
// fixture row and its companion match inside a single transaction so a crash
// cannot leave a fixture without its match or vice versa.
func (s *fixtureService) Generate(ctx context.Context, input GenerateFixturesInput) (*GenerateFixturesResult, error) {
	if input.Category == "" {
		return nil, ErrInvalidCategory
	}
	if input.RoundNumber <= 0 {
		return nil, ErrInvalidRoundNumber
	}
	if !input.Start.Before(input.End) {
		return nil, ErrInvalidTimeRange
	}

	participants, err := s.participantRepo.List(ctx, repositories.ParticipantFilter{
		Category: &input.Category,
		Game:     &input.Game,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load roster for %s: %w", input.Category, err)
	}
	if len(participants) == 0 {
		return nil, fmt.Errorf("%w: %s (%s)", ErrUnknownCategory, input.Category, input.Game)
	}

	roster := make([]models.Participant, 0, len(participants))
	for _, p := range participants {
		roster = append(roster, *p)
	}

	params := scheduling.AssignParams{
		Category:    input.Category,
		Game:        input.Game,
		SlotTag:     input.SlotTag,
		Location:    input.Location,
		RoundNumber: input.RoundNumber,
	}

	// Reject before any slot or row is produced. Over-demand from a large
	// roster is not rejected here: the assigner schedules what fits and
	// reports the rest as dropped.
	if err := scheduling.CheckTimeBudget(input.Start, input.End, input.IntervalMinutes, input.MatchesPerSlot); err != nil {
		return nil, err
	}

	var (
		assignment    scheduling.Assignment
		unpaired      []models.Participant
		buildFixtures func(slots []scheduling.Slot)
	)

	if scheduling.IsDoublesCategory(input.Category) {
		teams, excluded := scheduling.PairTeams(roster)
		unpaired = excluded
		buildFixtures = func(slots []scheduling.Slot) {
			assignment = scheduling.AssignTeams(teams, slots, params)
		}
	} else {
		pairs, odd := scheduling.PairSingles(roster)
		unpaired = odd
		buildFixtures = func(slots []scheduling.Slot) {
			assignment = scheduling.AssignSingles(pairs, slots, params)
		}
	}

	slots, err := scheduling.GenerateSlots(input.Start, input.End, input.IntervalMinutes, input.MatchesPerSlot)
	if err != nil {
		return nil, err
	}
	buildFixtures(slots)

	result := &GenerateFixturesResult{
		Scheduled: assignment.Scheduled,
		Dropped:   assignment.Dropped,
	}
	for _, p := range unpaired {
		result.Unpaired = append(result.Unpaired, p.EmpID)
	}

	if assignment.Scheduled == 0 {
		return result, nil
	}

	err = s.tx.RunInTx(ctx, func(exec repositories.SQLExecutor) error {
		for i := range assignment.Fixtures {
			f := assignment.Fixtures[i]
			if err := s.fixtureRepo.Create(ctx, exec, &f); err != nil {
				return err
			}
			result.Fixtures = append(result.Fixtures, &f)
		}
		for i := range assignment.Matches {
			m := assignment.Matches[i]
			if err := s.matchRepo.Create(ctx, exec, &m); err != nil {
				return err
			}
			result.Matches = append(result.Matches, &m)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to persist generated fixtures: %w", err)
	}

	s.logger.Info("fixtures generated",
		slog.String("category", input.Category),
		slog.Int("round", input.RoundNumber),
		slog.Int("scheduled", result.Scheduled),
		slog.Int("dropped", result.Dropped),
		slog.Int("unpaired", len(result.Unpaired)),
	)

	if s.events != nil {
		s.events.Publish(input.Category, "FIXTURES_GENERATED", map[string]interface{}{
			"category":  input.Category,
			"round":     input.RoundNumber,
			"scheduled": result.Scheduled,
		})
	}

	return result, nil
}

func (s *fixtureService) GetByID(ctx context.Context, id int) (*models.Fixture, error) {
	fixture, err := s.fixtureRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrFixtureNotFound) {
			return nil, ErrFixtureNotFound
		}
		return nil, err
	}
	return fixture, nil
}

func (s *fixtureService) List(ctx context.Context, category *string) ([]*models.Fixture, error) {
	return s.fixtureRepo.List(ctx, category)
}

func (s *fixtureService) Update(ctx context.Context, id int, fields map[string]interface{}) error {
	if len(fields) == 0 {
		return ErrEmptyUpdate
	}
	err := s.fixtureRepo.Update(ctx, id, fields)
	if errors.Is(err, repositories.ErrFixtureNotFound) {
		return ErrFixtureNotFound
	}
	return err
}

func (s *fixtureService) Delete(ctx context.Context, id int) error {
	err := s.fixtureRepo.Delete(ctx, id)
	if errors.Is(err, repositories.ErrFixtureNotFound) {
		return ErrFixtureNotFound
	}
	return err
}
