package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/officesports/matchday/models"
)

var ErrFixtureNotFound = errors.New("fixture not found")

// FixtureSide is the notification payload for one per-side fixture row: the
// recipients and display names of the participants the row belongs to.
type FixtureSide struct {
	FixtureID   int
	Category    string
	TimeSlot    string
	CourtNumber int
	Location    *string
	IsDoubles   bool
	Emails      []string
	Names       []string
}

type FixtureRepository interface {
	Create(ctx context.Context, exec SQLExecutor, f *models.Fixture) error
	GetByID(ctx context.Context, id int) (*models.Fixture, error)
	List(ctx context.Context, category *string) ([]*models.Fixture, error)
	ListUnsent(ctx context.Context, category string) ([]*models.Fixture, error)
	GetSide(ctx context.Context, id int) (*FixtureSide, error)
	MarkEmailsSent(ctx context.Context, id int) error
	Update(ctx context.Context, id int, fields map[string]interface{}) error
	Delete(ctx context.Context, id int) error
	DeleteAll(ctx context.Context) (int, error)
}

type postgresFixtureRepository struct {
	db *sql.DB
}

func NewPostgresFixtureRepository(db *sql.DB) FixtureRepository {
	return &postgresFixtureRepository{db: db}
}

func (r *postgresFixtureRepository) Create(ctx context.Context, exec SQLExecutor, f *models.Fixture) error {
	query := `
		INSERT INTO fixtures
			(category, time_slot, round_number, court_number, location, game, slot,
			 player1_id, player2_id, team1_player1_id, team1_player2_id,
			 team2_player1_id, team2_player2_id, status, emails_sent)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		RETURNING id, created_at`

	err := exec.QueryRowContext(ctx, query,
		f.Category,
		f.TimeSlot,
		f.RoundNumber,
		f.CourtNumber,
		f.Location,
		f.Game,
		f.Slot,
		f.Player1ID,
		f.Player2ID,
		f.Team1Player1ID,
		f.Team1Player2ID,
		f.Team2Player1ID,
		f.Team2Player2ID,
		f.Status,
		f.EmailsSent,
	).Scan(&f.ID, &f.CreatedAt)

	if err != nil {
		return fmt.Errorf("failed to create fixture: %w", err)
	}
	return nil
}

const fixtureSelect = `
	SELECT f.id, f.category, f.time_slot, f.round_number, f.court_number, f.location,
	       f.game, f.slot, f.player1_id, f.player2_id,
	       f.team1_player1_id, f.team1_player2_id, f.team2_player1_id, f.team2_player2_id,
	       f.status, f.emails_sent, f.created_at,
	       p1.name, p1.emp_id, t1p1.name, t1p2.name
	FROM fixtures f
	LEFT JOIN participants p1 ON f.player1_id = p1.id
	LEFT JOIN participants t1p1 ON f.team1_player1_id = t1p1.id
	LEFT JOIN participants t1p2 ON f.team1_player2_id = t1p2.id`

func (r *postgresFixtureRepository) scanFixture(rowScanner interface {
	Scan(dest ...interface{}) error
}, f *models.Fixture) error {
	return rowScanner.Scan(
		&f.ID,
		&f.Category,
		&f.TimeSlot,
		&f.RoundNumber,
		&f.CourtNumber,
		&f.Location,
		&f.Game,
		&f.Slot,
		&f.Player1ID,
		&f.Player2ID,
		&f.Team1Player1ID,
		&f.Team1Player2ID,
		&f.Team2Player1ID,
		&f.Team2Player2ID,
		&f.Status,
		&f.EmailsSent,
		&f.CreatedAt,
		&f.Player1Name,
		&f.Player1EmpID,
		&f.Team1Player1Name,
		&f.Team1Player2Name,
	)
}

func (r *postgresFixtureRepository) GetByID(ctx context.Context, id int) (*models.Fixture, error) {
	f := &models.Fixture{}
	row := r.db.QueryRowContext(ctx, fixtureSelect+` WHERE f.id = $1`, id)
	if err := r.scanFixture(row, f); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrFixtureNotFound
		}
		return nil, fmt.Errorf("failed to scan fixture by id %d: %w", id, err)
	}
	return f, nil
}

func (r *postgresFixtureRepository) List(ctx context.Context, category *string) ([]*models.Fixture, error) {
	query := fixtureSelect
	args := []interface{}{}
	if category != nil {
		query += ` WHERE f.category = $1`
		args = append(args, *category)
	}
	query += ` ORDER BY f.time_slot ASC, f.court_number ASC, f.id ASC`
	return r.queryFixtures(ctx, query, args...)
}

func (r *postgresFixtureRepository) ListUnsent(ctx context.Context, category string) ([]*models.Fixture, error) {
	query := fixtureSelect + ` WHERE f.category = $1 AND f.emails_sent = FALSE ORDER BY f.id ASC`
	return r.queryFixtures(ctx, query, category)
}

func (r *postgresFixtureRepository) queryFixtures(ctx context.Context, query string, args ...interface{}) ([]*models.Fixture, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query fixtures: %w", err)
	}
	defer rows.Close()

	fixtures := make([]*models.Fixture, 0)
	for rows.Next() {
		var f models.Fixture
		if scanErr := r.scanFixture(rows, &f); scanErr != nil {
			return nil, fmt.Errorf("failed to scan fixture row: %w", scanErr)
		}
		fixtures = append(fixtures, &f)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during fixture rows iteration: %w", err)
	}
	return fixtures, nil
}

// GetSide resolves the recipient emails and display names for one per-side
// fixture row: the single player for a singles row, both team members for a
// doubles row.
func (r *postgresFixtureRepository) GetSide(ctx context.Context, id int) (*FixtureSide, error) {
	query := `
		SELECT f.id, f.category, f.time_slot, f.court_number, f.location, f.player1_id,
		       p1.name, p1.email, t1p1.name, t1p1.email, t1p2.name, t1p2.email
		FROM fixtures f
		LEFT JOIN participants p1 ON f.player1_id = p1.id
		LEFT JOIN participants t1p1 ON f.team1_player1_id = t1p1.id
		LEFT JOIN participants t1p2 ON f.team1_player2_id = t1p2.id
		WHERE f.id = $1`

	var (
		side                                    FixtureSide
		player1ID                               *int
		p1Name, p1Email                         *string
		t1p1Name, t1p1Email, t1p2Name, t1p2Email *string
	)

	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&side.FixtureID,
		&side.Category,
		&side.TimeSlot,
		&side.CourtNumber,
		&side.Location,
		&player1ID,
		&p1Name,
		&p1Email,
		&t1p1Name,
		&t1p1Email,
		&t1p2Name,
		&t1p2Email,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrFixtureNotFound
		}
		return nil, fmt.Errorf("failed to resolve fixture %d side: %w", id, err)
	}

	side.IsDoubles = player1ID == nil
	appendContact := func(name, email *string) {
		if name != nil {
			side.Names = append(side.Names, *name)
		}
		if email != nil && *email != "" {
			side.Emails = append(side.Emails, *email)
		}
	}
	if side.IsDoubles {
		appendContact(t1p1Name, t1p1Email)
		appendContact(t1p2Name, t1p2Email)
	} else {
		appendContact(p1Name, p1Email)
	}
	return &side, nil
}

func (r *postgresFixtureRepository) MarkEmailsSent(ctx context.Context, id int) error {
	result, err := r.db.ExecContext(ctx, `UPDATE fixtures SET emails_sent = TRUE WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to mark fixture %d emails sent: %w", id, err)
	}
	return checkAffectedRows(result, ErrFixtureNotFound)
}

// Update patches only the supplied columns. Column names are restricted to a
// fixed allow list since they end up in the query text.
func (r *postgresFixtureRepository) Update(ctx context.Context, id int, fields map[string]interface{}) error {
	allowed := map[string]bool{
		"time_slot": true, "round_number": true, "court_number": true,
		"location": true, "status": true, "emails_sent": true,
	}

	var setParts []string
	var args []interface{}
	placeholder := 1

	for _, column := range []string{"time_slot", "round_number", "court_number", "location", "status", "emails_sent"} {
		value, ok := fields[column]
		if !ok {
			continue
		}
		setParts = append(setParts, fmt.Sprintf("%s = $%d", column, placeholder))
		args = append(args, value)
		placeholder++
	}
	for column := range fields {
		if !allowed[column] {
			return fmt.Errorf("fixture update: unknown column %q", column)
		}
	}
	if len(setParts) == 0 {
		return nil
	}

	query := fmt.Sprintf("UPDATE fixtures SET %s WHERE id = $%d", strings.Join(setParts, ", "), placeholder)
	args = append(args, id)

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update fixture %d: %w", id, err)
	}
	return checkAffectedRows(result, ErrFixtureNotFound)
}

func (r *postgresFixtureRepository) Delete(ctx context.Context, id int) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM fixtures WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete fixture %d: %w", id, err)
	}
	return checkAffectedRows(result, ErrFixtureNotFound)
}

func (r *postgresFixtureRepository) DeleteAll(ctx context.Context) (int, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM fixtures`)
	if err != nil {
		return 0, fmt.Errorf("failed to delete fixtures: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to check affected rows: %w", err)
	}
	return int(rowsAffected), nil
}
