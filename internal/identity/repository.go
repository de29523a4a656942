// AngelaMos | 2026
// repository.go

package identity

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/carterperez-dev/debtbook/internal/core"
)

type Repository interface {
	CreateWithRole(ctx context.Context, user *User) error
	GetByID(ctx context.Context, id string) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	RoleOf(ctx context.Context, userID string) (Role, error)
	UpdateRole(ctx context.Context, userID string, role Role) error
	UpdatePassword(ctx context.Context, id, passwordHash string) error
	SoftDelete(ctx context.Context, id string) error
	List(ctx context.Context, params ListUsersParams) ([]User, int, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
}

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

// CreateWithRole inserts the user row and its role row in one transaction.
// No identity may exist without a role, so the two inserts commit together
// or not at all.
func (r *repository) CreateWithRole(ctx context.Context, user *User) error {
	if !user.Role.Valid() {
		user.Role = RoleViewer
	}

	err := core.InTx(ctx, r.db, func(tx *sqlx.Tx) error {
		query := `
			INSERT INTO users (id, email, password_hash, name)
			VALUES ($1, $2, $3, $4)
			RETURNING created_at, updated_at`

		err := tx.GetContext(ctx, user, query,
			user.ID,
			user.Email,
			user.PasswordHash,
			user.Name,
		)
		if err != nil {
			if core.IsDuplicateKeyError(err) {
				return fmt.Errorf("create user: %w", core.ErrDuplicateKey)
			}
			return fmt.Errorf("create user: %w", core.ClassifyStoreError(err))
		}

		_, err = tx.ExecContext(ctx,
			`INSERT INTO roles (user_id, role) VALUES ($1, $2)`,
			user.ID,
			user.Role,
		)
		if err != nil {
			return fmt.Errorf("assign role: %w", core.ClassifyStoreError(err))
		}

		return nil
	})
	if err != nil {
		return err
	}

	return nil
}

func (r *repository) GetByID(ctx context.Context, id string) (*User, error) {
	query := `
		SELECT u.id, u.email, u.password_hash, u.name,
		       COALESCE(r.role, 'viewer') AS role,
		       u.created_at, u.updated_at, u.deleted_at
		FROM users u
		LEFT JOIN roles r ON r.user_id = u.id
		WHERE u.id = $1 AND u.deleted_at IS NULL`

	var user User
	err := r.db.GetContext(ctx, &user, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get user: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", core.ClassifyStoreError(err))
	}

	return &user, nil
}

func (r *repository) GetByEmail(
	ctx context.Context,
	email string,
) (*User, error) {
	query := `
		SELECT u.id, u.email, u.password_hash, u.name,
		       COALESCE(r.role, 'viewer') AS role,
		       u.created_at, u.updated_at, u.deleted_at
		FROM users u
		LEFT JOIN roles r ON r.user_id = u.id
		WHERE u.email = $1 AND u.deleted_at IS NULL`

	var user User
	err := r.db.GetContext(ctx, &user, query, email)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get user by email: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf(
			"get user by email: %w",
			core.ClassifyStoreError(err),
		)
	}

	return &user, nil
}

// RoleOf resolves a user id to its role. A missing row resolves to viewer
// rather than an error: fail closed, least privilege.
func (r *repository) RoleOf(ctx context.Context, userID string) (Role, error) {
	query := `SELECT role FROM roles WHERE user_id = $1`

	var raw string
	err := r.db.GetContext(ctx, &raw, query, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return RoleViewer, nil
	}
	if err != nil {
		return RoleViewer, fmt.Errorf(
			"resolve role: %w",
			core.ClassifyStoreError(err),
		)
	}

	return ParseRole(raw), nil
}

func (r *repository) UpdateRole(
	ctx context.Context,
	userID string,
	role Role,
) error {
	query := `
		INSERT INTO roles (user_id, role)
		VALUES ($1, $2)
		ON CONFLICT (user_id) DO UPDATE SET role = EXCLUDED.role`

	result, err := r.db.ExecContext(ctx, query, userID, role)
	if err != nil {
		if core.IsForeignKeyError(err) {
			return fmt.Errorf("update role: %w", core.ErrNotFound)
		}
		return fmt.Errorf("update role: %w", core.ClassifyStoreError(err))
	}

	if _, err := result.RowsAffected(); err != nil {
		return fmt.Errorf("update role: %w", err)
	}

	return nil
}

func (r *repository) UpdatePassword(
	ctx context.Context,
	id, passwordHash string,
) error {
	query := `
		UPDATE users
		SET password_hash = $2, updated_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL`

	result, err := r.db.ExecContext(ctx, query, id, passwordHash)
	if err != nil {
		return fmt.Errorf("update password: %w", core.ClassifyStoreError(err))
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update password: %w", err)
	}

	if rows == 0 {
		return fmt.Errorf("update password: %w", core.ErrNotFound)
	}

	return nil
}

func (r *repository) SoftDelete(ctx context.Context, id string) error {
	query := `
		UPDATE users
		SET deleted_at = NOW(), updated_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete user: %w", core.ClassifyStoreError(err))
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}

	if rows == 0 {
		return fmt.Errorf("delete user: %w", core.ErrNotFound)
	}

	return nil
}

func (r *repository) List(
	ctx context.Context,
	params ListUsersParams,
) ([]User, int, error) {
	params.Normalize()

	var conditions []string
	var args []any
	argIdx := 1

	conditions = append(conditions, "u.deleted_at IS NULL")

	if params.Search != "" {
		conditions = append(conditions, fmt.Sprintf(
			"(u.email ILIKE $%d OR u.name ILIKE $%d)", argIdx, argIdx))
		args = append(args, "%"+escapeLike(params.Search)+"%")
		argIdx++
	}

	if params.Role != "" {
		conditions = append(conditions, fmt.Sprintf("r.role = $%d", argIdx))
		args = append(args, params.Role)
		argIdx++
	}

	whereClause := strings.Join(conditions, " AND ")

	countQuery := fmt.Sprintf(`
		SELECT COUNT(*)
		FROM users u
		LEFT JOIN roles r ON r.user_id = u.id
		WHERE %s`, whereClause)

	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count users: %w", core.ClassifyStoreError(err))
	}

	query := fmt.Sprintf(`
		SELECT u.id, u.email, u.password_hash, u.name,
		       COALESCE(r.role, 'viewer') AS role,
		       u.created_at, u.updated_at, u.deleted_at
		FROM users u
		LEFT JOIN roles r ON r.user_id = u.id
		WHERE %s
		ORDER BY u.created_at DESC
		LIMIT $%d OFFSET $%d`,
		whereClause, argIdx, argIdx+1)

	args = append(args, params.PageSize, params.Offset())

	var users []User
	if err := r.db.SelectContext(ctx, &users, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list users: %w", core.ClassifyStoreError(err))
	}

	return users, total, nil
}

func (r *repository) ExistsByEmail(
	ctx context.Context,
	email string,
) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM users WHERE email = $1 AND deleted_at IS NULL)`

	var exists bool
	if err := r.db.GetContext(ctx, &exists, query, email); err != nil {
		return false, fmt.Errorf(
			"check email exists: %w",
			core.ClassifyStoreError(err),
		)
	}

	return exists, nil
}

func escapeLike(s string) string {
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, "%", "\\%")
	s = strings.ReplaceAll(s, "_", "\\_")
	return s
}
