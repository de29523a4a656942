// AngelaMos | 2026
// service.go

package identity

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/carterperez-dev/debtbook/internal/auth"
	"github.com/carterperez-dev/debtbook/internal/core"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// RoleOf resolves the caller's current role. Resolution failures degrade to
// viewer instead of failing the caller's session: a read-only ledger view is
// always safe to serve.
func (s *Service) RoleOf(ctx context.Context, userID string) Role {
	if userID == "" {
		return RoleViewer
	}

	role, err := s.repo.RoleOf(ctx, userID)
	if err != nil {
		slog.Warn("role resolution failed, defaulting to viewer",
			"user_id", userID,
			"error", err,
		)
		return RoleViewer
	}

	return role
}

func (s *Service) GetByID(
	ctx context.Context,
	id string,
) (*auth.UserInfo, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	return toUserInfo(user), nil
}

func (s *Service) GetByEmail(
	ctx context.Context,
	email string,
) (*auth.UserInfo, error) {
	user, err := s.repo.GetByEmail(ctx, strings.ToLower(email))
	if err != nil {
		return nil, err
	}

	return toUserInfo(user), nil
}

// Create provisions a new identity. Every new identity starts as viewer;
// the role row is written in the same transaction as the user row.
func (s *Service) Create(
	ctx context.Context,
	email, passwordHash, name string,
) (*auth.UserInfo, error) {
	user := &User{
		ID:           uuid.New().String(),
		Email:        strings.ToLower(email),
		PasswordHash: passwordHash,
		Name:         name,
		Role:         RoleViewer,
	}

	if err := s.repo.CreateWithRole(ctx, user); err != nil {
		return nil, err
	}

	return toUserInfo(user), nil
}

func (s *Service) UpdatePassword(
	ctx context.Context,
	userID, passwordHash string,
) error {
	return s.repo.UpdatePassword(ctx, userID, passwordHash)
}

func (s *Service) GetUser(ctx context.Context, id string) (*User, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) UpdateUserRole(
	ctx context.Context,
	requesterID, targetID, role string,
) (*User, error) {
	parsed := Role(role)
	if !parsed.Valid() {
		return nil, fmt.Errorf(
			"update role: invalid role %q: %w",
			role,
			core.ErrInvalidInput,
		)
	}

	// Admins cannot change their own role; that path locks the last admin
	// out of role management.
	if requesterID == targetID {
		return nil, fmt.Errorf("update role: %w", core.ErrForbidden)
	}

	user, err := s.repo.GetByID(ctx, targetID)
	if err != nil {
		return nil, err
	}

	if err := s.repo.UpdateRole(ctx, targetID, parsed); err != nil {
		return nil, err
	}

	user.Role = parsed
	return user, nil
}

func (s *Service) DeleteUser(
	ctx context.Context,
	requesterID, targetID string,
) error {
	if requesterID != targetID {
		target, err := s.repo.GetByID(ctx, targetID)
		if err != nil {
			return err
		}

		if target.IsAdmin() {
			return fmt.Errorf("cannot delete admin users: %w", core.ErrForbidden)
		}
	}

	return s.repo.SoftDelete(ctx, targetID)
}

func (s *Service) ListUsers(
	ctx context.Context,
	params ListUsersParams,
) ([]User, int, error) {
	return s.repo.List(ctx, params)
}

func (s *Service) EmailExists(
	ctx context.Context,
	email string,
) (bool, error) {
	return s.repo.ExistsByEmail(ctx, email)
}

func toUserInfo(u *User) *auth.UserInfo {
	return &auth.UserInfo{
		ID:           u.ID,
		Email:        u.Email,
		Name:         u.Name,
		PasswordHash: u.PasswordHash,
		Role:         string(u.Role),
	}
}

var _ auth.UserProvider = (*Service)(nil)
