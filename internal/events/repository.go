package events

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/volunteer-bridge/backend/internal/apperr"
	"github.com/volunteer-bridge/backend/internal/models"
)

const eventColumns = `id, created_by, opportunity_id, title, description, location, start_time, end_time,
	max_attendees, waitlist_enabled, created_at, updated_at`

// Repository handles event persistence. Edits go through the attendance store's locked transaction.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates an event repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func (r *Repository) Create(ctx context.Context, ev *models.Event) error {
	const q = `INSERT INTO events (created_by, opportunity_id, title, description, location, start_time, end_time, max_attendees, waitlist_enabled)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, q, ev.CreatedBy, ev.OpportunityID, ev.Title, ev.Description, ev.Location,
		ev.StartTime, ev.EndTime, ev.MaxAttendees, ev.WaitlistEnabled).Scan(&ev.ID, &ev.CreatedAt, &ev.UpdatedAt)
}

func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*models.Event, error) {
	return scanEvent(r.pool.QueryRow(ctx, `SELECT `+eventColumns+` FROM events WHERE id = $1`, id))
}

// List returns all events, soonest first.
func (r *Repository) List(ctx context.Context) ([]models.Event, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+eventColumns+` FROM events ORDER BY start_time ASC, id ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	list := make([]models.Event, 0)
	for rows.Next() {
		ev, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, *ev)
	}
	return list, rows.Err()
}

func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM events WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("event")
	}
	return nil
}

func scanEvent(row pgx.Row) (*models.Event, error) {
	var ev models.Event
	err := row.Scan(&ev.ID, &ev.CreatedBy, &ev.OpportunityID, &ev.Title, &ev.Description, &ev.Location,
		&ev.StartTime, &ev.EndTime, &ev.MaxAttendees, &ev.WaitlistEnabled, &ev.CreatedAt, &ev.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("event")
		}
		return nil, err
	}
	return &ev, nil
}

var _ Store = (*Repository)(nil)
