package opportunities

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/volunteer-bridge/backend/internal/apperr"
	"github.com/volunteer-bridge/backend/internal/models"
)

const opportunityColumns = `id, organization_id, title, description, required_skills, category, start_date, end_date,
	location, status, max_volunteers, created_at, updated_at`

// Repository handles opportunity persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates an opportunity repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func (r *Repository) Create(ctx context.Context, o *models.Opportunity) error {
	const q = `INSERT INTO opportunities (organization_id, title, description, required_skills, category, start_date, end_date, location, status, max_volunteers)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, q, o.OrganizationID, o.Title, o.Description, o.RequiredSkills, o.Category,
		o.StartDate, o.EndDate, o.Location, o.Status, o.MaxVolunteers).Scan(&o.ID, &o.CreatedAt, &o.UpdatedAt)
}

func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*models.Opportunity, error) {
	return scanOpportunity(r.pool.QueryRow(ctx, `SELECT `+opportunityColumns+` FROM opportunities WHERE id = $1`, id))
}

// List returns opportunities, optionally filtered by status, soonest first.
func (r *Repository) List(ctx context.Context, status models.OpportunityStatus) ([]models.Opportunity, error) {
	if status == "" {
		return r.list(ctx, `SELECT `+opportunityColumns+` FROM opportunities ORDER BY start_date ASC, id ASC`)
	}
	return r.list(ctx, `SELECT `+opportunityColumns+` FROM opportunities WHERE status = $1 ORDER BY start_date ASC, id ASC`, status)
}

func (r *Repository) ListByOrganization(ctx context.Context, orgID uuid.UUID) ([]models.Opportunity, error) {
	return r.list(ctx, `SELECT `+opportunityColumns+` FROM opportunities WHERE organization_id = $1 ORDER BY created_at DESC`, orgID)
}

func (r *Repository) Update(ctx context.Context, o *models.Opportunity) error {
	const q = `UPDATE opportunities SET title = $2, description = $3, required_skills = $4, category = $5,
		start_date = $6, end_date = $7, location = $8, status = $9, max_volunteers = $10, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at`
	err := r.pool.QueryRow(ctx, q, o.ID, o.Title, o.Description, o.RequiredSkills, o.Category,
		o.StartDate, o.EndDate, o.Location, o.Status, o.MaxVolunteers).Scan(&o.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return apperr.NotFound("opportunity")
	}
	return err
}

func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM opportunities WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("opportunity")
	}
	return nil
}

func (r *Repository) list(ctx context.Context, q string, args ...any) ([]models.Opportunity, error) {
	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	list := make([]models.Opportunity, 0)
	for rows.Next() {
		o, err := scanOpportunity(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, *o)
	}
	return list, rows.Err()
}

func scanOpportunity(row pgx.Row) (*models.Opportunity, error) {
	var o models.Opportunity
	err := row.Scan(&o.ID, &o.OrganizationID, &o.Title, &o.Description, &o.RequiredSkills, &o.Category,
		&o.StartDate, &o.EndDate, &o.Location, &o.Status, &o.MaxVolunteers, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("opportunity")
		}
		return nil, err
	}
	return &o, nil
}

var _ Store = (*Repository)(nil)
