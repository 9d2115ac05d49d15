package calendar

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository persists calendar events in Postgres.
type Repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const eventColumns = `id, title, description, event_type, start_date, end_date, created_by, created_at`

func (r *Repository) Create(ctx context.Context, ev *Event) error {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO calendar_events (title, description, event_type, start_date, end_date, created_by)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at
	`, ev.Title, ev.Description, ev.Type, ev.StartDate, ev.EndDate, ev.CreatedBy)
	return row.Scan(&ev.ID, &ev.CreatedAt)
}

func (r *Repository) Get(ctx context.Context, id int64) (*Event, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+eventColumns+` FROM calendar_events WHERE id = $1`, id)
	ev, err := scanEvent(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return ev, nil
}

func (r *Repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM calendar_events WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// ListByMonth returns events overlapping the given month, ordered by start.
func (r *Repository) ListByMonth(ctx context.Context, year int, month time.Month) ([]Event, error) {
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	last := first.AddDate(0, 1, -1)
	rows, err := r.pool.Query(ctx, `
		SELECT `+eventColumns+`
		FROM calendar_events
		WHERE start_date <= $2 AND end_date >= $1
		ORDER BY start_date ASC, id ASC
	`, first, last)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Event
	for rows.Next() {
		ev, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *ev)
	}
	return out, rows.Err()
}

// HolidayOn reports whether a public or optional holiday spans the given day.
func (r *Repository) HolidayOn(ctx context.Context, day time.Time) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM calendar_events
			WHERE event_type IN ('public_holiday', 'optional_holiday') AND start_date <= $1 AND end_date >= $1
		)
	`, day).Scan(&exists)
	return exists, err
}

func scanEvent(row pgx.Row) (*Event, error) {
	var ev Event
	err := row.Scan(
		&ev.ID,
		&ev.Title,
		&ev.Description,
		&ev.Type,
		&ev.StartDate,
		&ev.EndDate,
		&ev.CreatedBy,
		&ev.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &ev, nil
}
