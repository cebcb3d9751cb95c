package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/officesports/matchday/models"
	"github.com/officesports/matchday/repositories"
)

type fakeParticipantRepository struct {
	participants map[int]*models.Participant
	nextID       int
}

func newFakeParticipantRepository(participants ...*models.Participant) *fakeParticipantRepository {
	repo := &fakeParticipantRepository{participants: make(map[int]*models.Participant), nextID: 1}
	for _, p := range participants {
		copied := *p
		repo.participants[p.ID] = &copied
		if p.ID >= repo.nextID {
			repo.nextID = p.ID + 1
		}
	}
	return repo
}

func (r *fakeParticipantRepository) Create(ctx context.Context, p *models.Participant) error {
	for _, existing := range r.participants {
		if existing.EmpID == p.EmpID {
			return repositories.ErrParticipantDuplicate
		}
	}
	p.ID = r.nextID
	p.CreatedAt = time.Now()
	r.nextID++
	copied := *p
	r.participants[p.ID] = &copied
	return nil
}

func (r *fakeParticipantRepository) GetByID(ctx context.Context, id int) (*models.Participant, error) {
	p, ok := r.participants[id]
	if !ok {
		return nil, repositories.ErrParticipantNotFound
	}
	copied := *p
	return &copied, nil
}

func (r *fakeParticipantRepository) GetByEmpID(ctx context.Context, empID string) (*models.Participant, error) {
	for _, p := range r.participants {
		if p.EmpID == empID {
			copied := *p
			return &copied, nil
		}
	}
	return nil, repositories.ErrParticipantNotFound
}

func (r *fakeParticipantRepository) List(ctx context.Context, filter repositories.ParticipantFilter) ([]*models.Participant, error) {
	var out []*models.Participant
	for _, p := range r.participants {
		if filter.Category != nil && p.Category != *filter.Category {
			continue
		}
		if filter.Game != nil && p.Game != *filter.Game {
			continue
		}
		copied := *p
		out = append(out, &copied)
	}
	return out, nil
}

func (r *fakeParticipantRepository) SetPresent(ctx context.Context, id int, present bool) error {
	p, ok := r.participants[id]
	if !ok {
		return repositories.ErrParticipantNotFound
	}
	p.Present = present
	if present {
		now := time.Now()
		p.PresentAt = &now
	} else {
		p.PresentAt = nil
	}
	return nil
}

func (r *fakeParticipantRepository) SetPartner(ctx context.Context, empID string, partnerEmpID *string) error {
	for _, p := range r.participants {
		if p.EmpID == empID {
			p.PartnerEmpID = partnerEmpID
			return nil
		}
	}
	return repositories.ErrParticipantNotFound
}

func (r *fakeParticipantRepository) Delete(ctx context.Context, id int) error {
	if _, ok := r.participants[id]; !ok {
		return repositories.ErrParticipantNotFound
	}
	delete(r.participants, id)
	return nil
}

func (r *fakeParticipantRepository) DeleteAll(ctx context.Context) (int, error) {
	n := len(r.participants)
	r.participants = make(map[int]*models.Participant)
	return n, nil
}

func strPtr(s string) *string { return &s }

func TestCreateParticipantValidation(t *testing.T) {
	repo := newFakeParticipantRepository()
	svc := NewParticipantService(repo, notFoundFixtureRepo{}, newFakeMatchRepository(), discardLogger())
	ctx := context.Background()

	_, err := svc.Create(ctx, CreateParticipantInput{Name: "No EmpID", Game: "Badminton", Category: "Mens Singles"})
	assert.ErrorIs(t, err, ErrValidationFailed)

	_, err = svc.Create(ctx, CreateParticipantInput{EmpID: "E100", Game: "Badminton", Category: "Mens Singles"})
	assert.ErrorIs(t, err, ErrValidationFailed)

	p, err := svc.Create(ctx, CreateParticipantInput{EmpID: "E100", Name: "Asha", Game: "Badminton", Category: "Mens Singles"})
	require.NoError(t, err)
	assert.Equal(t, "E100", p.EmpID)
	assert.False(t, p.Present)

	_, err = svc.Create(ctx, CreateParticipantInput{EmpID: "E100", Name: "Asha Again", Game: "Badminton", Category: "Mens Singles"})
	assert.ErrorIs(t, err, ErrParticipantDuplicate)
}

func TestSetPresentToggle(t *testing.T) {
	repo := newFakeParticipantRepository(&models.Participant{ID: 1, EmpID: "E100", Name: "Asha", Game: "Badminton", Category: "Mens Singles"})
	svc := NewParticipantService(repo, notFoundFixtureRepo{}, newFakeMatchRepository(), discardLogger())
	ctx := context.Background()

	p, err := svc.SetPresent(ctx, 1, true)
	require.NoError(t, err)
	assert.True(t, p.Present)
	assert.NotNil(t, p.PresentAt)

	// Marking present twice keeps the flag and timestamp set.
	p, err = svc.SetPresent(ctx, 1, true)
	require.NoError(t, err)
	assert.True(t, p.Present)
	assert.NotNil(t, p.PresentAt)

	p, err = svc.SetPresent(ctx, 1, false)
	require.NoError(t, err)
	assert.False(t, p.Present)
	assert.Nil(t, p.PresentAt)

	_, err = svc.SetPresent(ctx, 42, true)
	assert.ErrorIs(t, err, ErrParticipantNotFound)
}

func TestEnsurePartnerCreatesPlaceholder(t *testing.T) {
	repo := newFakeParticipantRepository()
	svc := NewParticipantService(repo, notFoundFixtureRepo{}, newFakeMatchRepository(), discardLogger())
	ctx := context.Background()

	created, err := svc.EnsurePartner(ctx, CreateParticipantInput{
		EmpID:        "E100",
		Name:         "Asha",
		Game:         "Badminton",
		Category:     "Mixed Doubles",
		PartnerEmpID: strPtr("E200"),
	})
	require.NoError(t, err)
	assert.True(t, created)

	partner, err := repo.GetByEmpID(ctx, "E200")
	require.NoError(t, err)
	assert.Equal(t, "Player-E200", partner.Name)
	require.NotNil(t, partner.Email)
	assert.Equal(t, "playerE200@example.com", *partner.Email)
	assert.Equal(t, "Mixed Doubles", partner.Category)
	// The back-link makes the pair mutual so pairing will accept it.
	require.NotNil(t, partner.PartnerEmpID)
	assert.Equal(t, "E100", *partner.PartnerEmpID)
}

func TestEnsurePartnerSkipsExisting(t *testing.T) {
	repo := newFakeParticipantRepository(&models.Participant{ID: 5, EmpID: "E200", Name: "Ben", Game: "Badminton", Category: "Mixed Doubles"})
	svc := NewParticipantService(repo, notFoundFixtureRepo{}, newFakeMatchRepository(), discardLogger())

	created, err := svc.EnsurePartner(context.Background(), CreateParticipantInput{
		EmpID:        "E100",
		Game:         "Badminton",
		Category:     "Mixed Doubles",
		PartnerEmpID: strPtr("E200"),
	})
	require.NoError(t, err)
	assert.False(t, created)

	// Ben never declared a partner of his own, so the one-way link from
	// E100 gets repaired into a mutual pair.
	ben, err := repo.GetByEmpID(context.Background(), "E200")
	require.NoError(t, err)
	require.NotNil(t, ben.PartnerEmpID)
	assert.Equal(t, "E100", *ben.PartnerEmpID)

	// No declared partner means nothing to do.
	created, err = svc.EnsurePartner(context.Background(), CreateParticipantInput{EmpID: "E100"})
	require.NoError(t, err)
	assert.False(t, created)
}

func TestEnsurePartnerLeavesLinkedPartnerAlone(t *testing.T) {
	repo := newFakeParticipantRepository(&models.Participant{ID: 5, EmpID: "E200", Name: "Ben", Game: "Badminton", Category: "Mixed Doubles", PartnerEmpID: strPtr("E300")})
	svc := NewParticipantService(repo, notFoundFixtureRepo{}, newFakeMatchRepository(), discardLogger())

	created, err := svc.EnsurePartner(context.Background(), CreateParticipantInput{
		EmpID:        "E100",
		Game:         "Badminton",
		Category:     "Mixed Doubles",
		PartnerEmpID: strPtr("E200"),
	})
	require.NoError(t, err)
	assert.False(t, created)

	// Ben already points at E300; the stale claim from E100 must not
	// overwrite his link.
	ben, err := repo.GetByEmpID(context.Background(), "E200")
	require.NoError(t, err)
	require.NotNil(t, ben.PartnerEmpID)
	assert.Equal(t, "E300", *ben.PartnerEmpID)
}

func TestResetAll(t *testing.T) {
	repo := newFakeParticipantRepository(
		&models.Participant{ID: 1, EmpID: "E100", Name: "Asha", Game: "Badminton", Category: "Mens Singles"},
		&models.Participant{ID: 2, EmpID: "E200", Name: "Ben", Game: "Badminton", Category: "Mens Singles"},
	)
	fixtureRepo := &capturingFixtureRepo{created: []*models.Fixture{
		{ID: 1, Category: "Mens Singles", TimeSlot: "11:00am-11:20am"},
		{ID: 2, Category: "Mens Singles", TimeSlot: "11:00am-11:20am"},
	}}
	matchRepo := newFakeMatchRepository(&models.Match{ID: 1, Category: "Mens Singles", Status: models.MatchStatusScheduled})
	svc := NewParticipantService(repo, fixtureRepo, matchRepo, discardLogger())

	deleted, err := svc.ResetAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, deleted)

	remaining, err := svc.List(context.Background(), repositories.ParticipantFilter{})
	require.NoError(t, err)
	assert.Empty(t, remaining)

	// A registry reset wipes everything derived from it as well.
	assert.Empty(t, fixtureRepo.created)
	matches, err := matchRepo.List(context.Background(), nil, nil)
	require.NoError(t, err)
	assert.Empty(t, matches)
}
