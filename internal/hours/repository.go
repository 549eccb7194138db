package hours

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/volunteer-bridge/backend/internal/apperr"
	"github.com/volunteer-bridge/backend/internal/models"
)

const hourColumns = `h.id, h.volunteer_id, h.opportunity_id, h.start_time, h.end_time, h.hours_volunteered::float8,
	h.verified, h.verified_by, COALESCE(h.notes, ''), h.created_at`

// Repository handles volunteer-hour persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a volunteer-hour repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func (r *Repository) Create(ctx context.Context, h *models.VolunteerHour) error {
	const q = `INSERT INTO volunteer_hours (volunteer_id, opportunity_id, start_time, end_time, hours_volunteered, notes)
		VALUES ($1, $2, $3, $4, $5, NULLIF($6, ''))
		RETURNING id, created_at`
	return r.pool.QueryRow(ctx, q, h.VolunteerID, h.OpportunityID, h.StartTime, h.EndTime, h.HoursVolunteered, h.Notes).
		Scan(&h.ID, &h.CreatedAt)
}

func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*models.VolunteerHour, error) {
	return scanHour(r.pool.QueryRow(ctx, `SELECT `+hourColumns+` FROM volunteer_hours h WHERE h.id = $1`, id))
}

func (r *Repository) ListByVolunteer(ctx context.Context, volunteerID uuid.UUID) ([]models.VolunteerHour, error) {
	return r.list(ctx, `SELECT `+hourColumns+` FROM volunteer_hours h
		WHERE h.volunteer_id = $1 ORDER BY h.start_time DESC`, volunteerID)
}

// ListByOrganization returns hours logged against any opportunity the organization owns.
func (r *Repository) ListByOrganization(ctx context.Context, orgID uuid.UUID) ([]models.VolunteerHour, error) {
	return r.list(ctx, `SELECT `+hourColumns+` FROM volunteer_hours h
		JOIN opportunities o ON o.id = h.opportunity_id
		WHERE o.organization_id = $1 ORDER BY h.start_time DESC`, orgID)
}

func (r *Repository) ListByOpportunity(ctx context.Context, opportunityID uuid.UUID) ([]models.VolunteerHour, error) {
	return r.list(ctx, `SELECT `+hourColumns+` FROM volunteer_hours h
		WHERE h.opportunity_id = $1 ORDER BY h.start_time ASC, h.id ASC`, opportunityID)
}

// SetVerified sets the verification flag. verifiedBy is cleared when unverifying.
func (r *Repository) SetVerified(ctx context.Context, id uuid.UUID, verified bool, verifiedBy *uuid.UUID) (*models.VolunteerHour, error) {
	const q = `UPDATE volunteer_hours h SET verified = $2, verified_by = $3 WHERE h.id = $1
		RETURNING ` + hourColumns
	return scanHour(r.pool.QueryRow(ctx, q, id, verified, verifiedBy))
}

func (r *Repository) list(ctx context.Context, q string, args ...any) ([]models.VolunteerHour, error) {
	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	list := make([]models.VolunteerHour, 0)
	for rows.Next() {
		h, err := scanHour(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, *h)
	}
	return list, rows.Err()
}

func scanHour(row pgx.Row) (*models.VolunteerHour, error) {
	var h models.VolunteerHour
	err := row.Scan(&h.ID, &h.VolunteerID, &h.OpportunityID, &h.StartTime, &h.EndTime, &h.HoursVolunteered,
		&h.Verified, &h.VerifiedBy, &h.Notes, &h.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("volunteer hours")
		}
		return nil, err
	}
	return &h, nil
}

var _ Store = (*Repository)(nil)
