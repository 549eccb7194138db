package attendance

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/volunteer-bridge/backend/internal/apperr"
	"github.com/volunteer-bridge/backend/internal/models"
)

const (
	eventColumns = `id, created_by, opportunity_id, title, description, location, start_time, end_time, max_attendees, waitlist_enabled, created_at, updated_at`
	rsvpColumns  = `id, event_id, user_id, status, created_at, updated_at`
)

// Repository is the PostgreSQL Store. Admission locks the event row with SELECT ... FOR UPDATE.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates an attendance repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func (r *Repository) WithEventLock(ctx context.Context, eventID uuid.UUID, fn func(tx EventTx) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	ev, err := scanEvent(tx.QueryRow(ctx, `SELECT `+eventColumns+` FROM events WHERE id = $1 FOR UPDATE`, eventID))
	if err != nil {
		return err
	}
	if err := fn(&pgEventTx{tx: tx, event: ev}); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

func (r *Repository) GetEvent(ctx context.Context, eventID uuid.UUID) (*models.Event, error) {
	return scanEvent(r.pool.QueryRow(ctx, `SELECT `+eventColumns+` FROM events WHERE id = $1`, eventID))
}

func (r *Repository) ListByEvent(ctx context.Context, eventID uuid.UUID) ([]models.RSVP, error) {
	return r.list(ctx, `SELECT `+rsvpColumns+` FROM rsvps WHERE event_id = $1 ORDER BY created_at ASC`, eventID)
}

func (r *Repository) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.RSVP, error) {
	return r.list(ctx, `SELECT `+rsvpColumns+` FROM rsvps WHERE user_id = $1 ORDER BY created_at DESC`, userID)
}

func (r *Repository) list(ctx context.Context, q string, arg uuid.UUID) ([]models.RSVP, error) {
	rows, err := r.pool.Query(ctx, q, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	list := make([]models.RSVP, 0)
	for rows.Next() {
		var rv models.RSVP
		if err := rows.Scan(&rv.ID, &rv.EventID, &rv.UserID, &rv.Status, &rv.CreatedAt, &rv.UpdatedAt); err != nil {
			return nil, err
		}
		list = append(list, rv)
	}
	return list, rows.Err()
}

type pgEventTx struct {
	tx    pgx.Tx
	event *models.Event
}

func (t *pgEventTx) Event() *models.Event { return t.event }

func (t *pgEventTx) GetRSVP(ctx context.Context, userID uuid.UUID) (*models.RSVP, error) {
	rv, err := scanRSVP(t.tx.QueryRow(ctx, `SELECT `+rsvpColumns+` FROM rsvps WHERE event_id = $1 AND user_id = $2`, t.event.ID, userID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return rv, err
}

func (t *pgEventTx) CountAttending(ctx context.Context) (int, error) {
	var n int
	err := t.tx.QueryRow(ctx, `SELECT COUNT(*) FROM rsvps WHERE event_id = $1 AND status = $2`, t.event.ID, models.RSVPAttending).Scan(&n)
	return n, err
}

func (t *pgEventTx) InsertRSVP(ctx context.Context, userID uuid.UUID, status models.RSVPStatus) (*models.RSVP, error) {
	const q = `INSERT INTO rsvps (id, event_id, user_id, status)
		VALUES (gen_random_uuid(), $1, $2, $3)
		RETURNING ` + rsvpColumns
	rv, err := scanRSVP(t.tx.QueryRow(ctx, q, t.event.ID, userID, status))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, apperr.ErrDuplicateRSVP
		}
		return nil, err
	}
	return rv, nil
}

func (t *pgEventTx) SetStatus(ctx context.Context, rsvp *models.RSVP, status models.RSVPStatus) error {
	const q = `UPDATE rsvps SET status = $1, updated_at = NOW() WHERE id = $2 RETURNING updated_at`
	if err := t.tx.QueryRow(ctx, q, status, rsvp.ID).Scan(&rsvp.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperr.NotFound("rsvp")
		}
		return err
	}
	rsvp.Status = status
	return nil
}

func (t *pgEventTx) OldestWaitlisted(ctx context.Context) (*models.RSVP, error) {
	const q = `SELECT ` + rsvpColumns + ` FROM rsvps WHERE event_id = $1 AND status = $2 ORDER BY created_at ASC, id ASC LIMIT 1`
	rv, err := scanRSVP(t.tx.QueryRow(ctx, q, t.event.ID, models.RSVPWaitlisted))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return rv, err
}

func (t *pgEventTx) UpdateEvent(ctx context.Context, ev *models.Event) error {
	const q = `UPDATE events SET opportunity_id = $2, title = $3, description = $4, location = $5,
		start_time = $6, end_time = $7, max_attendees = $8, waitlist_enabled = $9, updated_at = NOW()
		WHERE id = $1
		RETURNING ` + eventColumns
	updated, err := scanEvent(t.tx.QueryRow(ctx, q, t.event.ID, ev.OpportunityID, ev.Title, ev.Description, ev.Location,
		ev.StartTime, ev.EndTime, ev.MaxAttendees, ev.WaitlistEnabled))
	if err != nil {
		return err
	}
	*ev = *updated
	t.event = updated
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

func scanRSVP(row pgx.Row) (*models.RSVP, error) {
	var rv models.RSVP
	if err := row.Scan(&rv.ID, &rv.EventID, &rv.UserID, &rv.Status, &rv.CreatedAt, &rv.UpdatedAt); err != nil {
		return nil, err
	}
	return &rv, nil
}

var _ Store = (*Repository)(nil)
