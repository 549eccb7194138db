package applications

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/volunteer-bridge/backend/internal/apperr"
	"github.com/volunteer-bridge/backend/internal/models"
)

const applicationColumns = `a.id, a.volunteer_id, a.opportunity_id, a.status, COALESCE(a.message, ''), a.created_at, a.updated_at`

// Repository handles application persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates an application repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Create inserts an application. A second application for the same pair is a conflict.
func (r *Repository) Create(ctx context.Context, a *models.Application) error {
	const q = `INSERT INTO applications (volunteer_id, opportunity_id, status, message)
		VALUES ($1, $2, $3, NULLIF($4, ''))
		RETURNING id, created_at, updated_at`
	err := r.pool.QueryRow(ctx, q, a.VolunteerID, a.OpportunityID, a.Status, a.Message).
		Scan(&a.ID, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return apperr.Conflict("already applied to this opportunity")
		}
		return err
	}
	return nil
}

func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*models.Application, error) {
	return scanApplication(r.pool.QueryRow(ctx, `SELECT `+applicationColumns+` FROM applications a WHERE a.id = $1`, id))
}

func (r *Repository) ListByOpportunity(ctx context.Context, opportunityID uuid.UUID) ([]models.Application, error) {
	return r.list(ctx, `SELECT `+applicationColumns+` FROM applications a
		WHERE a.opportunity_id = $1 ORDER BY a.created_at ASC`, opportunityID)
}

func (r *Repository) ListByVolunteer(ctx context.Context, volunteerID uuid.UUID) ([]models.Application, error) {
	return r.list(ctx, `SELECT `+applicationColumns+` FROM applications a
		WHERE a.volunteer_id = $1 ORDER BY a.created_at DESC`, volunteerID)
}

// ListByOrganization returns applications to any opportunity the organization owns.
func (r *Repository) ListByOrganization(ctx context.Context, orgID uuid.UUID) ([]models.Application, error) {
	return r.list(ctx, `SELECT `+applicationColumns+` FROM applications a
		JOIN opportunities o ON o.id = a.opportunity_id
		WHERE o.organization_id = $1 ORDER BY a.created_at DESC`, orgID)
}

func (r *Repository) UpdateStatus(ctx context.Context, id uuid.UUID, status models.ApplicationStatus) (*models.Application, error) {
	const q = `UPDATE applications a SET status = $2, updated_at = NOW() WHERE a.id = $1
		RETURNING ` + applicationColumns
	return scanApplication(r.pool.QueryRow(ctx, q, id, status))
}

func (r *Repository) list(ctx context.Context, q string, args ...any) ([]models.Application, error) {
	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	list := make([]models.Application, 0)
	for rows.Next() {
		a, err := scanApplication(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, *a)
	}
	return list, rows.Err()
}

func scanApplication(row pgx.Row) (*models.Application, error) {
	var a models.Application
	err := row.Scan(&a.ID, &a.VolunteerID, &a.OpportunityID, &a.Status, &a.Message, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("application")
		}
		return nil, err
	}
	return &a, nil
}

var _ Store = (*Repository)(nil)
