package roles

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mahesh42646/SkylithAdmin-sub001/internal/platform/db"
)

// Repository provides PostgreSQL backed persistence. Role names are unique
// case-insensitively via a unique index on lower(name).
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// CreateRole inserts a new role.
func (r *Repository) CreateRole(ctx context.Context, name, displayName string, permissions []string) (Role, error) {
	row := r.pool.QueryRow(ctx, `INSERT INTO roles (name, display_name, default_permissions, is_active, created_at, updated_at)
VALUES ($1, $2, $3, TRUE, NOW(), NOW())
RETURNING id, name, display_name, default_permissions, is_active, created_at, updated_at`, name, displayName, permissions)
	role, err := scanRole(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return Role{}, ErrDuplicateRole
		}
		return Role{}, err
	}
	return role, nil
}

// GetRole fetches a role with its sub-roles in stored order.
func (r *Repository) GetRole(ctx context.Context, id int64) (Role, error) {
	row := r.pool.QueryRow(ctx, `SELECT id, name, display_name, default_permissions, is_active, created_at, updated_at
FROM roles WHERE id = $1`, id)
	role, err := scanRole(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Role{}, ErrNotFound
		}
		return Role{}, err
	}
	role.SubRoles, err = r.listSubRoles(ctx, id)
	if err != nil {
		return Role{}, err
	}
	return role, nil
}

// GetRoleByName fetches a role by exact stored name.
func (r *Repository) GetRoleByName(ctx context.Context, name string) (Role, error) {
	row := r.pool.QueryRow(ctx, `SELECT id, name, display_name, default_permissions, is_active, created_at, updated_at
FROM roles WHERE lower(name) = lower($1)`, name)
	role, err := scanRole(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Role{}, ErrNotFound
		}
		return Role{}, err
	}
	role.SubRoles, err = r.listSubRoles(ctx, role.ID)
	if err != nil {
		return Role{}, err
	}
	return role, nil
}

// ListRoles returns all roles with their sub-roles.
func (r *Repository) ListRoles(ctx context.Context) ([]Role, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, name, display_name, default_permissions, is_active, created_at, updated_at
FROM roles ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []Role
	for rows.Next() {
		role, err := scanRole(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, role)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i := range list {
		subRoles, err := r.listSubRoles(ctx, list[i].ID)
		if err != nil {
			return nil, err
		}
		list[i].SubRoles = subRoles
	}
	return list, nil
}

// AddSubRole appends a sub-role at the end of the parent's sequence.
func (r *Repository) AddSubRole(ctx context.Context, roleID int64, name, description string, permissions []string) (SubRole, error) {
	row := r.pool.QueryRow(ctx, `INSERT INTO sub_roles (role_id, name, description, permissions, position, created_at)
VALUES ($1, $2, $3, $4, COALESCE((SELECT MAX(position) + 1 FROM sub_roles WHERE role_id = $1), 0), NOW())
RETURNING id, role_id, name, description, permissions, position, created_at`, roleID, name, description, permissions)
	var sr SubRole
	if err := row.Scan(&sr.ID, &sr.RoleID, &sr.Name, &sr.Description, &sr.Permissions, &sr.Position, &sr.CreatedAt); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return SubRole{}, ErrNotFound
		}
		return SubRole{}, err
	}
	return sr, nil
}

// DeleteSubRole removes a sub-role under the given parent and closes the
// position gap it leaves among its siblings.
func (r *Repository) DeleteSubRole(ctx context.Context, roleID, subRoleID int64) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		var position int
		err := tx.QueryRow(ctx, `DELETE FROM sub_roles WHERE id = $1 AND role_id = $2 RETURNING position`, subRoleID, roleID).Scan(&position)
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrSubRoleNotFound
		}
		if err != nil {
			return err
		}
		_, err = tx.Exec(ctx, `UPDATE sub_roles SET position = position - 1 WHERE role_id = $1 AND position > $2`, roleID, position)
		return err
	})
}

// DeactivateRole flips is_active off without deleting.
func (r *Repository) DeactivateRole(ctx context.Context, id int64) error {
	cmd, err := r.pool.Exec(ctx, `UPDATE roles SET is_active = FALSE, updated_at = NOW() WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *Repository) listSubRoles(ctx context.Context, roleID int64) ([]SubRole, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, role_id, name, description, permissions, position, created_at
FROM sub_roles WHERE role_id = $1 ORDER BY position, id`, roleID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []SubRole
	for rows.Next() {
		var sr SubRole
		if err := rows.Scan(&sr.ID, &sr.RoleID, &sr.Name, &sr.Description, &sr.Permissions, &sr.Position, &sr.CreatedAt); err != nil {
			return nil, err
		}
		list = append(list, sr)
	}
	return list, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRole(row rowScanner) (Role, error) {
	var role Role
	err := row.Scan(&role.ID, &role.Name, &role.DisplayName, &role.DefaultPermissions, &role.IsActive, &role.CreatedAt, &role.UpdatedAt)
	return role, err
}
