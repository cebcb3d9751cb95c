package services

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/officesports/matchday/models"
	"github.com/officesports/matchday/repositories"
	"github.com/officesports/matchday/scheduling"
)

func generationWindow(t *testing.T) (time.Time, time.Time) {
	t.Helper()
	day := time.Date(2026, time.March, 14, 0, 0, 0, 0, time.UTC)
	return day.Add(11 * time.Hour), day.Add(13 * time.Hour)
}

func singlesRosterRepo(n int) *fakeParticipantRepository {
	participants := make([]*models.Participant, 0, n)
	for i := 1; i <= n; i++ {
		participants = append(participants, &models.Participant{
			ID:       i,
			EmpID:    fmt.Sprintf("E%03d", i),
			Name:     "Player",
			Game:     "Badminton",
			Category: "Mens Singles",
		})
	}
	return newFakeParticipantRepository(participants...)
}

func TestGenerateInputValidation(t *testing.T) {
	start, end := generationWindow(t)
	svc := NewFixtureService(nil, nil, nil, newFakeParticipantRepository(), nil, discardLogger())
	ctx := context.Background()

	_, err := svc.Generate(ctx, GenerateFixturesInput{
		Game: "Badminton", RoundNumber: 1, Start: start, End: end, IntervalMinutes: 20, MatchesPerSlot: 2,
	})
	assert.ErrorIs(t, err, ErrInvalidCategory)

	_, err = svc.Generate(ctx, GenerateFixturesInput{
		Category: "Mens Singles", Game: "Badminton", Start: start, End: end, IntervalMinutes: 20, MatchesPerSlot: 2,
	})
	assert.ErrorIs(t, err, ErrInvalidRoundNumber)

	_, err = svc.Generate(ctx, GenerateFixturesInput{
		Category: "Mens Singles", Game: "Badminton", RoundNumber: 1, Start: end, End: start, IntervalMinutes: 20, MatchesPerSlot: 2,
	})
	assert.ErrorIs(t, err, ErrInvalidTimeRange)

	// Nobody registered for the category.
	_, err = svc.Generate(ctx, GenerateFixturesInput{
		Category: "Mens Singles", Game: "Badminton", RoundNumber: 1, Start: start, End: end, IntervalMinutes: 20, MatchesPerSlot: 2,
	})
	assert.ErrorIs(t, err, ErrUnknownCategory)
}

func TestGenerateRejectsOversizedSlotDemand(t *testing.T) {
	// 15 matches per slot at 20 minutes each would need a 300 minute
	// window; the 2 hour window is rejected regardless of roster size.
	repo := singlesRosterRepo(2)
	svc := NewFixtureService(nil, nil, nil, repo, nil, discardLogger())
	start, end := generationWindow(t)

	_, err := svc.Generate(context.Background(), GenerateFixturesInput{
		Category:        "Mens Singles",
		Game:            "Badminton",
		RoundNumber:     1,
		Start:           start,
		End:             end,
		IntervalMinutes: 20,
		MatchesPerSlot:  15,
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, scheduling.ErrInsufficientTime)
}

func TestGeneratePersistsFixturesAndMatchesTogether(t *testing.T) {
	fixtureRepo := &capturingFixtureRepo{}
	matchRepo := &capturingMatchRepo{fakeMatchRepository: newFakeMatchRepository()}
	tx := &fakeTxRunner{}
	svc := NewFixtureService(tx, fixtureRepo, matchRepo, singlesRosterRepo(4), nil, discardLogger())
	start, end := generationWindow(t)

	result, err := svc.Generate(context.Background(), GenerateFixturesInput{
		Category:        "Mens Singles",
		Game:            "Badminton",
		RoundNumber:     1,
		Start:           start,
		End:             end,
		IntervalMinutes: 20,
		MatchesPerSlot:  2,
	})
	require.NoError(t, err)

	// Two pairs: one match apiece, with a per-side fixture row for each
	// player, all written through the same transaction.
	assert.Equal(t, 2, result.Scheduled)
	assert.Zero(t, result.Dropped)
	require.Len(t, result.Matches, 2)
	require.Len(t, result.Fixtures, 4)
	assert.Equal(t, 1, tx.runs)
	assert.True(t, tx.committed)
	assert.False(t, tx.rolledBack)
	assert.Len(t, fixtureRepo.created, 4)
	assert.Len(t, matchRepo.created, 2)

	for _, m := range result.Matches {
		require.NotNil(t, m.Player1ID)
		assert.Nil(t, m.Player2ID)
		assert.Equal(t, models.MatchStatusScheduled, m.Status)
	}
	// The two side rows of a match share slot and court.
	assert.Equal(t, result.Fixtures[0].TimeSlot, result.Fixtures[1].TimeSlot)
	assert.Equal(t, result.Fixtures[0].CourtNumber, result.Fixtures[1].CourtNumber)
}

func TestGenerateSchedulesOverflowAsDropped(t *testing.T) {
	// 30 players form 15 pairs but the window only holds 12 slot entries
	// (6 windows x 2 per window); the overflow is dropped, not rejected.
	fixtureRepo := &capturingFixtureRepo{}
	matchRepo := &capturingMatchRepo{fakeMatchRepository: newFakeMatchRepository()}
	tx := &fakeTxRunner{}
	svc := NewFixtureService(tx, fixtureRepo, matchRepo, singlesRosterRepo(30), nil, discardLogger())
	start, end := generationWindow(t)

	result, err := svc.Generate(context.Background(), GenerateFixturesInput{
		Category:        "Mens Singles",
		Game:            "Badminton",
		RoundNumber:     1,
		Start:           start,
		End:             end,
		IntervalMinutes: 20,
		MatchesPerSlot:  2,
	})
	require.NoError(t, err)
	assert.Equal(t, 12, result.Scheduled)
	assert.Equal(t, 3, result.Dropped)
	assert.Len(t, result.Matches, 12)
	assert.Len(t, result.Fixtures, 24)
	assert.True(t, tx.committed)
}

func TestGenerateRollsBackWhenPersistFails(t *testing.T) {
	fixtureRepo := &capturingFixtureRepo{}
	matchRepo := &failingMatchRepo{fakeMatchRepository: newFakeMatchRepository()}
	tx := &fakeTxRunner{}
	svc := NewFixtureService(tx, fixtureRepo, matchRepo, singlesRosterRepo(4), nil, discardLogger())
	start, end := generationWindow(t)

	_, err := svc.Generate(context.Background(), GenerateFixturesInput{
		Category:        "Mens Singles",
		Game:            "Badminton",
		RoundNumber:     1,
		Start:           start,
		End:             end,
		IntervalMinutes: 20,
		MatchesPerSlot:  2,
	})
	require.Error(t, err)
	assert.True(t, tx.rolledBack)
	assert.False(t, tx.committed)
}

func TestGenerateReportsUnpairedWithoutScheduling(t *testing.T) {
	// A single registrant cannot form a pair; the run succeeds but
	// schedules nothing and names the leftover player.
	repo := newFakeParticipantRepository(&models.Participant{
		ID: 1, EmpID: "E001", Name: "Asha", Game: "Badminton", Category: "Mens Singles",
	})
	svc := NewFixtureService(nil, nil, nil, repo, nil, discardLogger())
	start, end := generationWindow(t)

	result, err := svc.Generate(context.Background(), GenerateFixturesInput{
		Category:        "Mens Singles",
		Game:            "Badminton",
		RoundNumber:     1,
		Start:           start,
		End:             end,
		IntervalMinutes: 20,
		MatchesPerSlot:  2,
	})
	require.NoError(t, err)
	assert.Zero(t, result.Scheduled)
	assert.Empty(t, result.Fixtures)
	assert.Empty(t, result.Matches)
	assert.Equal(t, []string{"E001"}, result.Unpaired)
}

func TestListAndGetMapRepoErrors(t *testing.T) {
	svc := NewFixtureService(nil, notFoundFixtureRepo{}, nil, nil, nil, discardLogger())

	_, err := svc.GetByID(context.Background(), 99)
	assert.ErrorIs(t, err, ErrFixtureNotFound)

	err = svc.Update(context.Background(), 99, map[string]interface{}{"court_number": 2})
	assert.ErrorIs(t, err, ErrFixtureNotFound)

	err = svc.Delete(context.Background(), 99)
	assert.ErrorIs(t, err, ErrFixtureNotFound)
}

// notFoundFixtureRepo answers every lookup with ErrFixtureNotFound.
type notFoundFixtureRepo struct{}

func (notFoundFixtureRepo) Create(ctx context.Context, exec repositories.SQLExecutor, f *models.Fixture) error {
	return nil
}

func (notFoundFixtureRepo) GetByID(ctx context.Context, id int) (*models.Fixture, error) {
	return nil, repositories.ErrFixtureNotFound
}

func (notFoundFixtureRepo) List(ctx context.Context, category *string) ([]*models.Fixture, error) {
	return nil, nil
}

func (notFoundFixtureRepo) ListUnsent(ctx context.Context, category string) ([]*models.Fixture, error) {
	return nil, nil
}

func (notFoundFixtureRepo) GetSide(ctx context.Context, id int) (*repositories.FixtureSide, error) {
	return nil, repositories.ErrFixtureNotFound
}

func (notFoundFixtureRepo) MarkEmailsSent(ctx context.Context, id int) error {
	return repositories.ErrFixtureNotFound
}

func (notFoundFixtureRepo) Update(ctx context.Context, id int, fields map[string]interface{}) error {
	return repositories.ErrFixtureNotFound
}

func (notFoundFixtureRepo) Delete(ctx context.Context, id int) error {
	return repositories.ErrFixtureNotFound
}

func (notFoundFixtureRepo) DeleteAll(ctx context.Context) (int, error) {
	return 0, nil
}

// fakeTxRunner stands in for the SQL transaction seam: fn errors roll back,
// success commits.
type fakeTxRunner struct {
	runs       int
	committed  bool
	rolledBack bool
}

func (r *fakeTxRunner) RunInTx(ctx context.Context, fn func(exec repositories.SQLExecutor) error) error {
	r.runs++
	if err := fn(nil); err != nil {
		r.rolledBack = true
		return err
	}
	r.committed = true
	return nil
}

// capturingFixtureRepo records created fixtures and assigns ids in insert
// order.
type capturingFixtureRepo struct {
	notFoundFixtureRepo
	created []*models.Fixture
}

func (r *capturingFixtureRepo) Create(ctx context.Context, exec repositories.SQLExecutor, f *models.Fixture) error {
	f.ID = len(r.created) + 1
	r.created = append(r.created, f)
	return nil
}

func (r *capturingFixtureRepo) DeleteAll(ctx context.Context) (int, error) {
	n := len(r.created)
	r.created = nil
	return n, nil
}

type capturingMatchRepo struct {
	*fakeMatchRepository
	created []*models.Match
}

func (r *capturingMatchRepo) Create(ctx context.Context, exec repositories.SQLExecutor, m *models.Match) error {
	m.ID = len(r.created) + 1
	r.created = append(r.created, m)
	return r.fakeMatchRepository.Create(ctx, exec, m)
}

// failingMatchRepo refuses every insert, forcing the generation transaction
// to abort.
type failingMatchRepo struct {
	*fakeMatchRepository
}

func (r *failingMatchRepo) Create(ctx context.Context, exec repositories.SQLExecutor, m *models.Match) error {
	return errMatchInsert
}

var errMatchInsert = fmt.Errorf("match insert failed")
