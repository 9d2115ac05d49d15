package attendance

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository persists attendance records in Postgres.
type Repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const recordColumns = `id, user_id, att_date, status, check_in, check_out`

// FindOrCreate returns the record for the user/day pair, creating an unmarked
// one when missing. Concurrent callers converge on the same row.
func (r *Repository) FindOrCreate(ctx context.Context, userID int64, day time.Time) (*Record, error) {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO attendance_records (user_id, att_date, status)
		VALUES ($1, $2, 'unmarked')
		ON CONFLICT (user_id, att_date) DO NOTHING
	`, userID, day)
	if err != nil {
		return nil, err
	}
	return r.find(ctx, userID, day)
}

func (r *Repository) find(ctx context.Context, userID int64, day time.Time) (*Record, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+recordColumns+`
		FROM attendance_records
		WHERE user_id = $1 AND att_date = $2
	`, userID, day)
	rec, err := scanRecord(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return rec, nil
}

// Get returns the record for the user/day pair.
func (r *Repository) Get(ctx context.Context, userID int64, day time.Time) (*Record, error) {
	return r.find(ctx, userID, day)
}

// SetCheckIn marks the record present with the check-in time. It reports
// false when the record already has a check-in.
func (r *Repository) SetCheckIn(ctx context.Context, id int64, at time.Time) (bool, error) {
	tag, err := r.pool.Exec(ctx, `
		UPDATE attendance_records
		SET status = 'present', check_in = $2
		WHERE id = $1 AND check_in IS NULL
	`, id, at)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

// SetCheckOut stamps the check-out time on a checked-in record. It reports
// false when there is no open check-in.
func (r *Repository) SetCheckOut(ctx context.Context, id int64, at time.Time) (bool, error) {
	tag, err := r.pool.Exec(ctx, `
		UPDATE attendance_records
		SET check_out = $2
		WHERE id = $1 AND check_in IS NOT NULL AND check_out IS NULL
	`, id, at)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

// Finalize settles an unmarked record into the given terminal status. It
// reports false when the record was no longer unmarked, which keeps reruns
// of the nightly job idempotent.
func (r *Repository) Finalize(ctx context.Context, userID int64, day time.Time, status Status) (bool, error) {
	tag, err := r.pool.Exec(ctx, `
		INSERT INTO attendance_records (user_id, att_date, status)
		VALUES ($1, $2, 'unmarked')
		ON CONFLICT (user_id, att_date) DO NOTHING
	`, userID, day)
	if err != nil {
		return false, err
	}
	_ = tag
	tag, err = r.pool.Exec(ctx, `
		UPDATE attendance_records
		SET status = $3
		WHERE user_id = $1 AND att_date = $2 AND status = 'unmarked'
	`, userID, day, status)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

// ListForUser returns the user's records inside the inclusive date range,
// newest first.
func (r *Repository) ListForUser(ctx context.Context, userID int64, from, to time.Time) ([]Record, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+recordColumns+`
		FROM attendance_records
		WHERE user_id = $1 AND att_date BETWEEN $2 AND $3
		ORDER BY att_date DESC
	`, userID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *rec)
	}
	return out, rows.Err()
}

func scanRecord(row pgx.Row) (*Record, error) {
	var rec Record
	err := row.Scan(&rec.ID, &rec.UserID, &rec.Date, &rec.Status, &rec.CheckIn, &rec.CheckOut)
	if err != nil {
		return nil, err
	}
	return &rec, nil
}
