package users

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository provides PostgreSQL backed persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const userColumns = `u.id, u.email, u.name, u.role_id, r.name, r.is_active, u.sub_role_id,
u.permissions, u.custom_permissions, u.is_active, u.created_at, u.updated_at`

// GetUser fetches a user joined with its role state.
func (r *Repository) GetUser(ctx context.Context, id int64) (User, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+userColumns+`
FROM users u JOIN roles r ON r.id = u.role_id WHERE u.id = $1`, id)
	user, err := scanUser(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return User{}, ErrNotFound
		}
		return User{}, err
	}
	return user, nil
}

// ListUsers returns all users.
func (r *Repository) ListUsers(ctx context.Context) ([]User, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+userColumns+`
FROM users u JOIN roles r ON r.id = u.role_id ORDER BY u.id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, user)
	}
	return list, rows.Err()
}

// ListActiveIDs returns IDs of all active users.
func (r *Repository) ListActiveIDs(ctx context.Context) ([]int64, error) {
	rows, err := r.pool.Query(ctx, `SELECT id FROM users WHERE is_active ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// ListIDsByRole returns IDs of users holding the role.
func (r *Repository) ListIDsByRole(ctx context.Context, roleID int64) ([]int64, error) {
	return r.listIDs(ctx, `SELECT id FROM users WHERE role_id = $1 ORDER BY id`, roleID)
}

// ListIDsBySubRole returns IDs of users holding the sub-role.
func (r *Repository) ListIDsBySubRole(ctx context.Context, subRoleID int64) ([]int64, error) {
	return r.listIDs(ctx, `SELECT id FROM users WHERE sub_role_id = $1 ORDER BY id`, subRoleID)
}

// SetAssignment stores the role/sub-role references and the recomputed
// effective permission set in one write.
func (r *Repository) SetAssignment(ctx context.Context, userID, roleID int64, subRoleID *int64, permissions []string) error {
	cmd, err := r.pool.Exec(ctx, `UPDATE users
SET role_id = $2, sub_role_id = $3, permissions = $4, updated_at = NOW()
WHERE id = $1`, userID, roleID, subRoleID, permissions)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// SetActive toggles the user's active flag.
func (r *Repository) SetActive(ctx context.Context, userID int64, active bool) error {
	cmd, err := r.pool.Exec(ctx, `UPDATE users SET is_active = $2, updated_at = NOW() WHERE id = $1`, userID, active)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *Repository) listIDs(ctx context.Context, query string, arg any) ([]int64, error) {
	rows, err := r.pool.Query(ctx, query, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (User, error) {
	var u User
	err := row.Scan(&u.ID, &u.Email, &u.Name, &u.RoleID, &u.RoleName, &u.RoleActive, &u.SubRoleID,
		&u.Permissions, &u.CustomPermissions, &u.IsActive, &u.CreatedAt, &u.UpdatedAt)
	return u, err
}
