package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/officesports/matchday/models"
)

var ErrMatchNotFound = errors.New("match not found")

// MatchPatch is a partial update: only non-nil fields are written. Status
// transitions manage completed_at themselves, setting completed stamps it
// and setting scheduled clears it.
type MatchPatch struct {
	RoundNumber     *int
	Status          *models.MatchStatus
	WinnerID        *int
	WinnerTeam      *int
	AdvancementType *string
	Player1ID       *int
	Player2ID       *int
	Team1Player1ID  *int
	Team1Player2ID  *int
	Team2Player1ID  *int
	Team2Player2ID  *int
}

type MatchRepository interface {
	Create(ctx context.Context, exec SQLExecutor, m *models.Match) error
	GetByID(ctx context.Context, id int) (*models.Match, error)
	List(ctx context.Context, category *string, status *models.MatchStatus) ([]*models.Match, error)
	CompleteWithWinner(ctx context.Context, id int, winnerID, winnerTeam *int, advancementType string) error
	ResetResult(ctx context.Context, id int) error
	Patch(ctx context.Context, id int, patch MatchPatch) error
	RecentWinners(ctx context.Context, limit int) ([]*models.Match, error)
	Upcoming(ctx context.Context, limit int) ([]*models.Match, error)
	Delete(ctx context.Context, id int) error
	DeleteAll(ctx context.Context) (int, error)
}

type postgresMatchRepository struct {
	db *sql.DB
}

func NewPostgresMatchRepository(db *sql.DB) MatchRepository {
	return &postgresMatchRepository{db: db}
}

// Create inserts the match and stamps its immutable match_code in the same
// statement batch. The code needs the generated id, so the insert runs first
// and the code is written back right after.
func (r *postgresMatchRepository) Create(ctx context.Context, exec SQLExecutor, m *models.Match) error {
	query := `
		INSERT INTO matches
			(category, round_number, player1_id, player2_id,
			 team1_player1_id, team1_player2_id, team2_player1_id, team2_player2_id,
			 status, advancement_type)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, created_at`

	err := exec.QueryRowContext(ctx, query,
		m.Category,
		m.RoundNumber,
		m.Player1ID,
		m.Player2ID,
		m.Team1Player1ID,
		m.Team1Player2ID,
		m.Team2Player1ID,
		m.Team2Player2ID,
		m.Status,
		m.AdvancementType,
	).Scan(&m.ID, &m.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create match: %w", err)
	}

	code := models.MatchCodeFor(m.ID, m.Category, m.RoundNumber)
	if _, err := exec.ExecContext(ctx, `UPDATE matches SET match_code = $1 WHERE id = $2`, code, m.ID); err != nil {
		return fmt.Errorf("failed to stamp match code for match %d: %w", m.ID, err)
	}
	m.MatchCode = &code
	return nil
}

const matchSelect = `
	SELECT m.id, m.category, m.round_number, m.match_code,
	       m.player1_id, m.player2_id,
	       m.team1_player1_id, m.team1_player2_id, m.team2_player1_id, m.team2_player2_id,
	       m.status, m.winner_id, m.winner_team, m.advancement_type,
	       m.created_at, m.completed_at, m.updated_at,
	       p1.name, p2.name, w.name
	FROM matches m
	LEFT JOIN participants p1 ON m.player1_id = p1.id
	LEFT JOIN participants p2 ON m.player2_id = p2.id
	LEFT JOIN participants w ON m.winner_id = w.id`

func (r *postgresMatchRepository) scanMatch(rowScanner interface {
	Scan(dest ...interface{}) error
}, m *models.Match) error {
	return rowScanner.Scan(
		&m.ID,
		&m.Category,
		&m.RoundNumber,
		&m.MatchCode,
		&m.Player1ID,
		&m.Player2ID,
		&m.Team1Player1ID,
		&m.Team1Player2ID,
		&m.Team2Player1ID,
		&m.Team2Player2ID,
		&m.Status,
		&m.WinnerID,
		&m.WinnerTeam,
		&m.AdvancementType,
		&m.CreatedAt,
		&m.CompletedAt,
		&m.UpdatedAt,
		&m.Player1Name,
		&m.Player2Name,
		&m.WinnerName,
	)
}

func (r *postgresMatchRepository) GetByID(ctx context.Context, id int) (*models.Match, error) {
	m := &models.Match{}
	row := r.db.QueryRowContext(ctx, matchSelect+` WHERE m.id = $1`, id)
	if err := r.scanMatch(row, m); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMatchNotFound
		}
		return nil, fmt.Errorf("failed to scan match by id %d: %w", id, err)
	}
	return m, nil
}

func (r *postgresMatchRepository) List(ctx context.Context, category *string, status *models.MatchStatus) ([]*models.Match, error) {
	var queryBuilder strings.Builder
	queryBuilder.WriteString(matchSelect)
	queryBuilder.WriteString(" WHERE 1=1")

	args := make([]interface{}, 0, 2)
	placeholder := 1

	if category != nil {
		queryBuilder.WriteString(" AND m.category = $" + strconv.Itoa(placeholder))
		args = append(args, *category)
		placeholder++
	}
	if status != nil {
		queryBuilder.WriteString(" AND m.status = $" + strconv.Itoa(placeholder))
		args = append(args, *status)
	}
	queryBuilder.WriteString(" ORDER BY m.round_number ASC, m.id ASC")

	return r.queryMatches(ctx, queryBuilder.String(), args...)
}

func (r *postgresMatchRepository) queryMatches(ctx context.Context, query string, args ...interface{}) ([]*models.Match, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query matches: %w", err)
	}
	defer rows.Close()

	matches := make([]*models.Match, 0)
	for rows.Next() {
		var m models.Match
		if scanErr := r.scanMatch(rows, &m); scanErr != nil {
			return nil, fmt.Errorf("failed to scan match row: %w", scanErr)
		}
		matches = append(matches, &m)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during match rows iteration: %w", err)
	}
	return matches, nil
}

func (r *postgresMatchRepository) CompleteWithWinner(ctx context.Context, id int, winnerID, winnerTeam *int, advancementType string) error {
	query := `
		UPDATE matches
		SET status = 'completed', winner_id = $1, winner_team = $2,
		    advancement_type = $3, completed_at = NOW(), updated_at = NOW()
		WHERE id = $4`

	result, err := r.db.ExecContext(ctx, query, winnerID, winnerTeam, advancementType, id)
	if err != nil {
		return fmt.Errorf("failed to complete match %d: %w", id, err)
	}
	return checkAffectedRows(result, ErrMatchNotFound)
}

func (r *postgresMatchRepository) ResetResult(ctx context.Context, id int) error {
	query := `
		UPDATE matches
		SET status = 'scheduled', winner_id = NULL, winner_team = NULL,
		    completed_at = NULL, updated_at = NOW()
		WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to reset match %d: %w", id, err)
	}
	return checkAffectedRows(result, ErrMatchNotFound)
}

// Patch writes only the supplied fields. A status change to completed without
// an explicit completion time auto-stamps completed_at; a change back to
// scheduled clears it.
func (r *postgresMatchRepository) Patch(ctx context.Context, id int, patch MatchPatch) error {
	var setParts []string
	var args []interface{}
	placeholder := 1

	add := func(column string, value interface{}) {
		setParts = append(setParts, fmt.Sprintf("%s = $%d", column, placeholder))
		args = append(args, value)
		placeholder++
	}

	if patch.RoundNumber != nil {
		add("round_number", *patch.RoundNumber)
	}
	if patch.Status != nil {
		add("status", *patch.Status)
		switch *patch.Status {
		case models.MatchStatusCompleted:
			setParts = append(setParts, "completed_at = NOW()")
		case models.MatchStatusScheduled:
			setParts = append(setParts, "completed_at = NULL")
		}
	}
	if patch.WinnerID != nil {
		add("winner_id", *patch.WinnerID)
	}
	if patch.WinnerTeam != nil {
		add("winner_team", *patch.WinnerTeam)
	}
	if patch.AdvancementType != nil {
		add("advancement_type", *patch.AdvancementType)
	}
	if patch.Player1ID != nil {
		add("player1_id", *patch.Player1ID)
	}
	if patch.Player2ID != nil {
		add("player2_id", *patch.Player2ID)
	}
	if patch.Team1Player1ID != nil {
		add("team1_player1_id", *patch.Team1Player1ID)
	}
	if patch.Team1Player2ID != nil {
		add("team1_player2_id", *patch.Team1Player2ID)
	}
	if patch.Team2Player1ID != nil {
		add("team2_player1_id", *patch.Team2Player1ID)
	}
	if patch.Team2Player2ID != nil {
		add("team2_player2_id", *patch.Team2Player2ID)
	}

	if len(setParts) == 0 {
		return nil
	}
	setParts = append(setParts, "updated_at = NOW()")

	query := fmt.Sprintf("UPDATE matches SET %s WHERE id = $%d", strings.Join(setParts, ", "), placeholder)
	args = append(args, id)

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to patch match %d: %w", id, err)
	}
	return checkAffectedRows(result, ErrMatchNotFound)
}

func (r *postgresMatchRepository) RecentWinners(ctx context.Context, limit int) ([]*models.Match, error) {
	query := matchSelect + ` WHERE m.status = 'completed' ORDER BY m.completed_at DESC, m.id DESC LIMIT $1`
	return r.queryMatches(ctx, query, limit)
}

func (r *postgresMatchRepository) Upcoming(ctx context.Context, limit int) ([]*models.Match, error) {
	query := matchSelect + ` WHERE m.status = 'scheduled' ORDER BY m.round_number ASC, m.id ASC LIMIT $1`
	return r.queryMatches(ctx, query, limit)
}

func (r *postgresMatchRepository) Delete(ctx context.Context, id int) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM matches WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete match %d: %w", id, err)
	}
	return checkAffectedRows(result, ErrMatchNotFound)
}

func (r *postgresMatchRepository) DeleteAll(ctx context.Context) (int, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM matches`)
	if err != nil {
		return 0, fmt.Errorf("failed to delete matches: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to check affected rows: %w", err)
	}
	return int(rowsAffected), nil
}
