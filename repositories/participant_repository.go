package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/lib/pq"

	"github.com/officesports/matchday/models"
)

var (
	ErrParticipantNotFound  = errors.New("participant not found")
	ErrParticipantDuplicate = errors.New("participant with this employee id already exists")
)

// ParticipantFilter narrows List results. Nil fields are not applied. Search
// matches emp_id, name, email and category case-insensitively.
type ParticipantFilter struct {
	Category *string
	Game     *string
	Search   *string
}

type ParticipantRepository interface {
	Create(ctx context.Context, p *models.Participant) error
	GetByID(ctx context.Context, id int) (*models.Participant, error)
	GetByEmpID(ctx context.Context, empID string) (*models.Participant, error)
	List(ctx context.Context, filter ParticipantFilter) ([]*models.Participant, error)
	SetPresent(ctx context.Context, id int, present bool) error
	SetPartner(ctx context.Context, empID string, partnerEmpID *string) error
	Delete(ctx context.Context, id int) error
	DeleteAll(ctx context.Context) (int, error)
}

type postgresParticipantRepository struct {
	db *sql.DB
}

func NewPostgresParticipantRepository(db *sql.DB) ParticipantRepository {
	return &postgresParticipantRepository{db: db}
}

const participantColumns = `id, emp_id, name, email, location, sub_location, game, category, slot, partner_emp_id, gender, present, present_at, created_at`

func (r *postgresParticipantRepository) Create(ctx context.Context, p *models.Participant) error {
	query := `
		INSERT INTO participants
			(emp_id, name, email, location, sub_location, game, category, slot, partner_emp_id, gender)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, present, created_at`

	err := r.db.QueryRowContext(ctx, query,
		p.EmpID,
		p.Name,
		p.Email,
		p.Location,
		p.SubLocation,
		p.Game,
		p.Category,
		p.Slot,
		p.PartnerEmpID,
		p.Gender,
	).Scan(&p.ID, &p.Present, &p.CreatedAt)

	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			// participants_emp_id_key
			return ErrParticipantDuplicate
		}
		return fmt.Errorf("failed to create participant: %w", err)
	}
	return nil
}

func (r *postgresParticipantRepository) scanParticipant(rowScanner interface {
	Scan(dest ...interface{}) error
}, p *models.Participant) error {
	return rowScanner.Scan(
		&p.ID,
		&p.EmpID,
		&p.Name,
		&p.Email,
		&p.Location,
		&p.SubLocation,
		&p.Game,
		&p.Category,
		&p.Slot,
		&p.PartnerEmpID,
		&p.Gender,
		&p.Present,
		&p.PresentAt,
		&p.CreatedAt,
	)
}

func (r *postgresParticipantRepository) findOne(ctx context.Context, query string, args ...interface{}) (*models.Participant, error) {
	p := &models.Participant{}
	row := r.db.QueryRowContext(ctx, query, args...)
	if err := r.scanParticipant(row, p); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrParticipantNotFound
		}
		return nil, fmt.Errorf("failed to find participant: %w", err)
	}
	return p, nil
}

func (r *postgresParticipantRepository) GetByID(ctx context.Context, id int) (*models.Participant, error) {
	query := `SELECT ` + participantColumns + ` FROM participants WHERE id = $1`
	return r.findOne(ctx, query, id)
}

func (r *postgresParticipantRepository) GetByEmpID(ctx context.Context, empID string) (*models.Participant, error) {
	query := `SELECT ` + participantColumns + ` FROM participants WHERE emp_id = $1`
	return r.findOne(ctx, query, empID)
}

func (r *postgresParticipantRepository) List(ctx context.Context, filter ParticipantFilter) ([]*models.Participant, error) {
	var queryBuilder strings.Builder
	queryBuilder.WriteString(`SELECT ` + participantColumns + ` FROM participants WHERE 1=1`)

	args := make([]interface{}, 0, 3)
	placeholder := 1

	if filter.Category != nil {
		queryBuilder.WriteString(fmt.Sprintf(" AND category = $%d", placeholder))
		args = append(args, *filter.Category)
		placeholder++
	}
	if filter.Game != nil {
		queryBuilder.WriteString(fmt.Sprintf(" AND game = $%d", placeholder))
		args = append(args, *filter.Game)
		placeholder++
	}
	if filter.Search != nil {
		queryBuilder.WriteString(fmt.Sprintf(
			" AND (emp_id ILIKE $%d OR name ILIKE $%d OR email ILIKE $%d OR category ILIKE $%d)",
			placeholder, placeholder, placeholder, placeholder))
		args = append(args, "%"+*filter.Search+"%")
		placeholder++
	}

	// Stable order so pairing runs on the same roster are reproducible.
	queryBuilder.WriteString(" ORDER BY created_at ASC, id ASC")

	rows, err := r.db.QueryContext(ctx, queryBuilder.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list participants: %w", err)
	}
	defer rows.Close()

	participants := make([]*models.Participant, 0)
	for rows.Next() {
		var p models.Participant
		if scanErr := r.scanParticipant(rows, &p); scanErr != nil {
			return nil, fmt.Errorf("failed to scan participant row: %w", scanErr)
		}
		participants = append(participants, &p)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during participant rows iteration: %w", err)
	}
	return participants, nil
}

// SetPresent toggles the desk registration flag. Marking present stamps the
// timestamp; unmarking clears it. Repeating the same value just refreshes or
// re-clears the timestamp.
func (r *postgresParticipantRepository) SetPresent(ctx context.Context, id int, present bool) error {
	var query string
	if present {
		query = `UPDATE participants SET present = TRUE, present_at = NOW() WHERE id = $1`
	} else {
		query = `UPDATE participants SET present = FALSE, present_at = NULL WHERE id = $1`
	}

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to update participant presence: %w", err)
	}
	return checkAffectedRows(result, ErrParticipantNotFound)
}

func (r *postgresParticipantRepository) SetPartner(ctx context.Context, empID string, partnerEmpID *string) error {
	query := `UPDATE participants SET partner_emp_id = $1 WHERE emp_id = $2`
	result, err := r.db.ExecContext(ctx, query, partnerEmpID, empID)
	if err != nil {
		return fmt.Errorf("failed to update participant partner: %w", err)
	}
	return checkAffectedRows(result, ErrParticipantNotFound)
}

func (r *postgresParticipantRepository) Delete(ctx context.Context, id int) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM participants WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete participant: %w", err)
	}
	return checkAffectedRows(result, ErrParticipantNotFound)
}

func (r *postgresParticipantRepository) DeleteAll(ctx context.Context) (int, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM participants`)
	if err != nil {
		return 0, fmt.Errorf("failed to delete participants: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to check affected rows: %w", err)
	}
	return int(rowsAffected), nil
}
