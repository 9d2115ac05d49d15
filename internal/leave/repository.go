package leave

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository persists leave requests in Postgres.
type Repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const requestColumns = `id, user_id, leave_type, start_date, end_date, reason, status, decided_by, decision_reason, created_at, decided_at`

func (r *Repository) Create(ctx context.Context, req *Request) error {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO leave_requests (user_id, leave_type, start_date, end_date, reason, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at
	`, req.UserID, req.Type, req.StartDate, req.EndDate, req.Reason, req.Status)
	return row.Scan(&req.ID, &req.CreatedAt)
}

func (r *Repository) Get(ctx context.Context, id int64) (*Request, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+requestColumns+` FROM leave_requests WHERE id = $1`, id)
	req, err := scanRequest(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return req, nil
}

// Decide flips a pending request to a terminal status. It reports false when
// the request was not pending anymore (or never existed); the caller decides
// which of the two it was.
func (r *Repository) Decide(ctx context.Context, id int64, status Status, decidedBy int64, reason string) (bool, error) {
	tag, err := r.pool.Exec(ctx, `
		UPDATE leave_requests
		SET status = $2, decided_by = $3, decision_reason = $4, decided_at = now()
		WHERE id = $1 AND status = 'pending'
	`, id, status, decidedBy, reason)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (r *Repository) ListByUser(ctx context.Context, userID int64) ([]Request, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+requestColumns+`
		FROM leave_requests
		WHERE user_id = $1
		ORDER BY created_at DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectRequests(rows)
}

func (r *Repository) ListByStatus(ctx context.Context, status Status) ([]Request, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+requestColumns+`
		FROM leave_requests
		WHERE status = $1
		ORDER BY created_at ASC
	`, status)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectRequests(rows)
}

// UsersOnApprovedLeave returns the set of user IDs with an approved leave
// spanning the given day.
func (r *Repository) UsersOnApprovedLeave(ctx context.Context, day time.Time) (map[int64]struct{}, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT DISTINCT user_id
		FROM leave_requests
		WHERE status = 'approved' AND start_date <= $1 AND end_date >= $1
	`, day)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[int64]struct{})
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out[id] = struct{}{}
	}
	return out, rows.Err()
}

func collectRequests(rows pgx.Rows) ([]Request, error) {
	var out []Request
	for rows.Next() {
		req, err := scanRequest(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *req)
	}
	return out, rows.Err()
}

func scanRequest(row pgx.Row) (*Request, error) {
	var req Request
	err := row.Scan(
		&req.ID,
		&req.UserID,
		&req.Type,
		&req.StartDate,
		&req.EndDate,
		&req.Reason,
		&req.Status,
		&req.DecidedBy,
		&req.DecisionReason,
		&req.CreatedAt,
		&req.DecidedAt,
	)
	if err != nil {
		return nil, err
	}
	return &req, nil
}
