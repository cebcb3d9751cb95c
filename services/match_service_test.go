package services

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/officesports/matchday/models"
	"github.com/officesports/matchday/repositories"
)

// fakeMatchRepository keeps matches in memory and mirrors the write
// semantics of the Postgres repository, including the completed_at
// stamping rules on status changes.
type fakeMatchRepository struct {
	matches map[int]*models.Match
}

func newFakeMatchRepository(matches ...*models.Match) *fakeMatchRepository {
	repo := &fakeMatchRepository{matches: make(map[int]*models.Match)}
	for _, m := range matches {
		copied := *m
		repo.matches[m.ID] = &copied
	}
	return repo
}

func (r *fakeMatchRepository) Create(ctx context.Context, exec repositories.SQLExecutor, m *models.Match) error {
	copied := *m
	r.matches[m.ID] = &copied
	return nil
}

func (r *fakeMatchRepository) GetByID(ctx context.Context, id int) (*models.Match, error) {
	m, ok := r.matches[id]
	if !ok {
		return nil, repositories.ErrMatchNotFound
	}
	copied := *m
	return &copied, nil
}

func (r *fakeMatchRepository) List(ctx context.Context, category *string, status *models.MatchStatus) ([]*models.Match, error) {
	var out []*models.Match
	for _, m := range r.matches {
		if category != nil && m.Category != *category {
			continue
		}
		if status != nil && m.Status != *status {
			continue
		}
		copied := *m
		out = append(out, &copied)
	}
	return out, nil
}

func (r *fakeMatchRepository) CompleteWithWinner(ctx context.Context, id int, winnerID, winnerTeam *int, advancementType string) error {
	m, ok := r.matches[id]
	if !ok {
		return repositories.ErrMatchNotFound
	}
	m.Status = models.MatchStatusCompleted
	m.WinnerID = winnerID
	m.WinnerTeam = winnerTeam
	m.AdvancementType = advancementType
	now := time.Now()
	m.CompletedAt = &now
	m.UpdatedAt = &now
	return nil
}

func (r *fakeMatchRepository) ResetResult(ctx context.Context, id int) error {
	m, ok := r.matches[id]
	if !ok {
		return repositories.ErrMatchNotFound
	}
	m.Status = models.MatchStatusScheduled
	m.WinnerID = nil
	m.WinnerTeam = nil
	m.CompletedAt = nil
	now := time.Now()
	m.UpdatedAt = &now
	return nil
}

func (r *fakeMatchRepository) Patch(ctx context.Context, id int, patch repositories.MatchPatch) error {
	m, ok := r.matches[id]
	if !ok {
		return repositories.ErrMatchNotFound
	}
	if patch.RoundNumber != nil {
		m.RoundNumber = *patch.RoundNumber
	}
	if patch.Status != nil {
		m.Status = *patch.Status
		switch *patch.Status {
		case models.MatchStatusCompleted:
			now := time.Now()
			m.CompletedAt = &now
		case models.MatchStatusScheduled:
			m.CompletedAt = nil
		}
	}
	if patch.WinnerID != nil {
		m.WinnerID = patch.WinnerID
	}
	if patch.WinnerTeam != nil {
		m.WinnerTeam = patch.WinnerTeam
	}
	if patch.AdvancementType != nil {
		m.AdvancementType = *patch.AdvancementType
	}
	if patch.Player1ID != nil {
		m.Player1ID = patch.Player1ID
	}
	if patch.Player2ID != nil {
		m.Player2ID = patch.Player2ID
	}
	if patch.Team1Player1ID != nil {
		m.Team1Player1ID = patch.Team1Player1ID
	}
	if patch.Team1Player2ID != nil {
		m.Team1Player2ID = patch.Team1Player2ID
	}
	if patch.Team2Player1ID != nil {
		m.Team2Player1ID = patch.Team2Player1ID
	}
	if patch.Team2Player2ID != nil {
		m.Team2Player2ID = patch.Team2Player2ID
	}
	now := time.Now()
	m.UpdatedAt = &now
	return nil
}

func (r *fakeMatchRepository) RecentWinners(ctx context.Context, limit int) ([]*models.Match, error) {
	status := models.MatchStatusCompleted
	return r.List(ctx, nil, &status)
}

func (r *fakeMatchRepository) Upcoming(ctx context.Context, limit int) ([]*models.Match, error) {
	status := models.MatchStatusScheduled
	return r.List(ctx, nil, &status)
}

func (r *fakeMatchRepository) Delete(ctx context.Context, id int) error {
	if _, ok := r.matches[id]; !ok {
		return repositories.ErrMatchNotFound
	}
	delete(r.matches, id)
	return nil
}

func (r *fakeMatchRepository) DeleteAll(ctx context.Context) (int, error) {
	n := len(r.matches)
	r.matches = make(map[int]*models.Match)
	return n, nil
}

type recordedEvent struct {
	Room string
	Type string
}

type fakeEventPublisher struct {
	events []recordedEvent
}

func (p *fakeEventPublisher) Publish(room, eventType string, payload interface{}) {
	p.events = append(p.events, recordedEvent{Room: room, Type: eventType})
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func intPtr(v int) *int { return &v }

func singlesMatch(id int, p1, p2 int) *models.Match {
	return &models.Match{
		ID:              id,
		Category:        "Mens Singles",
		RoundNumber:     1,
		Player1ID:       intPtr(p1),
		Player2ID:       intPtr(p2),
		Status:          models.MatchStatusScheduled,
		AdvancementType: "normal",
		CreatedAt:       time.Now(),
	}
}

func doublesMatch(id int) *models.Match {
	return &models.Match{
		ID:              id,
		Category:        "Mixed Doubles",
		RoundNumber:     1,
		Team1Player1ID:  intPtr(10),
		Team1Player2ID:  intPtr(11),
		Team2Player1ID:  intPtr(12),
		Team2Player2ID:  intPtr(13),
		Status:          models.MatchStatusScheduled,
		AdvancementType: "normal",
		CreatedAt:       time.Now(),
	}
}

func TestRecordResultSingles(t *testing.T) {
	repo := newFakeMatchRepository(singlesMatch(1, 101, 102))
	events := &fakeEventPublisher{}
	svc := NewMatchService(repo, events, discardLogger())

	match, err := svc.RecordResult(context.Background(), 1, RecordResultInput{WinnerID: intPtr(102)})
	require.NoError(t, err)

	assert.Equal(t, models.MatchStatusCompleted, match.Status)
	require.NotNil(t, match.WinnerID)
	assert.Equal(t, 102, *match.WinnerID)
	assert.Equal(t, "normal", match.AdvancementType)
	assert.NotNil(t, match.CompletedAt)

	require.Len(t, events.events, 1)
	assert.Equal(t, "Mens Singles", events.events[0].Room)
	assert.Equal(t, "MATCH_COMPLETED", events.events[0].Type)
}

func TestRecordResultSinglesRejectsOutsider(t *testing.T) {
	repo := newFakeMatchRepository(singlesMatch(1, 101, 102))
	svc := NewMatchService(repo, nil, discardLogger())

	_, err := svc.RecordResult(context.Background(), 1, RecordResultInput{WinnerID: intPtr(999)})
	assert.ErrorIs(t, err, ErrWinnerNotInMatch)

	// The match must be untouched after a rejected result.
	match, err := svc.GetByID(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, models.MatchStatusScheduled, match.Status)
	assert.Nil(t, match.WinnerID)
}

func TestRecordResultDoubles(t *testing.T) {
	repo := newFakeMatchRepository(doublesMatch(2))
	svc := NewMatchService(repo, nil, discardLogger())

	match, err := svc.RecordResult(context.Background(), 2, RecordResultInput{WinnerTeam: intPtr(2), AdvancementType: "walkover"})
	require.NoError(t, err)

	require.NotNil(t, match.WinnerTeam)
	assert.Equal(t, 2, *match.WinnerTeam)
	assert.Equal(t, "walkover", match.AdvancementType)
	assert.Equal(t, models.MatchStatusCompleted, match.Status)
}

func TestRecordResultWinnerValidation(t *testing.T) {
	repo := newFakeMatchRepository(singlesMatch(1, 101, 102), doublesMatch(2))
	svc := NewMatchService(repo, nil, discardLogger())
	ctx := context.Background()

	_, err := svc.RecordResult(ctx, 1, RecordResultInput{})
	assert.ErrorIs(t, err, ErrWinnerRequired)

	_, err = svc.RecordResult(ctx, 1, RecordResultInput{WinnerID: intPtr(101), WinnerTeam: intPtr(1)})
	assert.ErrorIs(t, err, ErrWinnerAmbiguous)

	// Wrong shape for the category.
	_, err = svc.RecordResult(ctx, 1, RecordResultInput{WinnerTeam: intPtr(1)})
	assert.ErrorIs(t, err, ErrValidationFailed)

	_, err = svc.RecordResult(ctx, 2, RecordResultInput{WinnerID: intPtr(10)})
	assert.ErrorIs(t, err, ErrValidationFailed)

	_, err = svc.RecordResult(ctx, 2, RecordResultInput{WinnerTeam: intPtr(3)})
	assert.ErrorIs(t, err, ErrWinnerTeamOutOfRange)

	_, err = svc.RecordResult(ctx, 404, RecordResultInput{WinnerID: intPtr(1)})
	assert.ErrorIs(t, err, ErrMatchNotFound)
}

func TestResetResult(t *testing.T) {
	repo := newFakeMatchRepository(singlesMatch(1, 101, 102))
	svc := NewMatchService(repo, nil, discardLogger())
	ctx := context.Background()

	// Resetting a scheduled match is rejected.
	_, err := svc.ResetResult(ctx, 1)
	assert.ErrorIs(t, err, ErrMatchNotCompleted)

	_, err = svc.RecordResult(ctx, 1, RecordResultInput{WinnerID: intPtr(101)})
	require.NoError(t, err)

	match, err := svc.ResetResult(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, models.MatchStatusScheduled, match.Status)
	assert.Nil(t, match.WinnerID)
	assert.Nil(t, match.WinnerTeam)
	assert.Nil(t, match.CompletedAt)
}

func TestUpdateTrackerPartialPatch(t *testing.T) {
	repo := newFakeMatchRepository(singlesMatch(1, 101, 102))
	svc := NewMatchService(repo, nil, discardLogger())
	ctx := context.Background()

	_, err := svc.UpdateTracker(ctx, 1, TrackerUpdate{})
	assert.ErrorIs(t, err, ErrEmptyUpdate)

	_, err = svc.UpdateTracker(ctx, 1, TrackerUpdate{RoundNumber: intPtr(0)})
	assert.ErrorIs(t, err, ErrInvalidRoundNumber)

	_, err = svc.UpdateTracker(ctx, 1, TrackerUpdate{WinnerID: intPtr(999)})
	assert.ErrorIs(t, err, ErrWinnerNotInMatch)

	match, err := svc.UpdateTracker(ctx, 1, TrackerUpdate{RoundNumber: intPtr(2)})
	require.NoError(t, err)
	assert.Equal(t, 2, match.RoundNumber)
	// Untouched fields survive the patch.
	assert.Equal(t, models.MatchStatusScheduled, match.Status)
	require.NotNil(t, match.Player1ID)
	assert.Equal(t, 101, *match.Player1ID)
}

func TestUpdateTrackerStatusStampsCompletedAt(t *testing.T) {
	repo := newFakeMatchRepository(singlesMatch(1, 101, 102))
	svc := NewMatchService(repo, nil, discardLogger())
	ctx := context.Background()

	completed := models.MatchStatusCompleted
	match, err := svc.UpdateTracker(ctx, 1, TrackerUpdate{Status: &completed})
	require.NoError(t, err)
	assert.NotNil(t, match.CompletedAt)

	scheduled := models.MatchStatusScheduled
	match, err = svc.UpdateTracker(ctx, 1, TrackerUpdate{Status: &scheduled})
	require.NoError(t, err)
	assert.Nil(t, match.CompletedAt)
}

func TestUpdateDetailsFillsSideB(t *testing.T) {
	// A match fresh out of fixture generation has only side A resolved.
	half := &models.Match{
		ID:              7,
		Category:        "Womens Singles",
		RoundNumber:     1,
		Player1ID:       intPtr(201),
		Status:          models.MatchStatusScheduled,
		AdvancementType: "normal",
		CreatedAt:       time.Now(),
	}
	repo := newFakeMatchRepository(half)
	svc := NewMatchService(repo, nil, discardLogger())
	ctx := context.Background()

	_, err := svc.UpdateDetails(ctx, 7, DetailsUpdate{})
	assert.ErrorIs(t, err, ErrEmptyUpdate)

	match, err := svc.UpdateDetails(ctx, 7, DetailsUpdate{Player2ID: intPtr(202)})
	require.NoError(t, err)
	require.NotNil(t, match.Player2ID)
	assert.Equal(t, 202, *match.Player2ID)
	require.NotNil(t, match.Player1ID)
	assert.Equal(t, 201, *match.Player1ID)
}

func TestMatchCodeFormat(t *testing.T) {
	assert.Equal(t, "MS-R1-007", models.MatchCodeFor(7, "Mens Singles", 1))
	assert.Equal(t, "MD-R3-042", models.MatchCodeFor(42, "Mixed Doubles", 3))
	assert.Equal(t, "WS-R2-123", models.MatchCodeFor(123, "Womens Singles", 2))
}
