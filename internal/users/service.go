// Package users provides admin-only user administration: listing accounts,
// changing roles and deleting users. Every mutation passes through the admin
// server guard before persistence.
package users

import (
	"context"
	"fmt"

	"github.com/atelier-cms/atelier/internal/domain"
)

// SessionRevoker invalidates a user's refresh tokens after a role change,
// so a demotion does not outlive the old session.
type SessionRevoker interface {
	RevokeSessions(ctx context.Context, userID string) error
}

// Service implements user administration business logic.
type Service struct {
	repo     Repository
	sessions SessionRevoker
}

// NewService creates a new user administration service.
func NewService(repo Repository, sessions SessionRevoker) *Service {
	return &Service{repo: repo, sessions: sessions}
}

// List returns all accounts.
func (s *Service) List(ctx context.Context) ([]domain.User, error) {
	return s.repo.List(ctx)
}

// GetByID returns one account.
func (s *Service) GetByID(ctx context.Context, id string) (*domain.User, error) {
	return s.repo.GetByID(ctx, id)
}

// ChangeRole assigns a role to a user. The acting admin cannot change their
// own role, and the last admin cannot be demoted.
func (s *Service) ChangeRole(ctx context.Context, actorID, userID string, role domain.Role) (*domain.User, error) {
	if !role.IsValid() {
		return nil, ErrInvalidRole
	}
	if actorID == userID {
		return nil, ErrOwnAccount
	}

	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if user.Role == domain.RoleAdmin && role != domain.RoleAdmin {
		admins, err := s.repo.CountByRole(ctx, domain.RoleAdmin)
		if err != nil {
			return nil, fmt.Errorf("count admins: %w", err)
		}
		if admins <= 1 {
			return nil, ErrLastAdmin
		}
	}

	updated, err := s.repo.UpdateRole(ctx, userID, role)
	if err != nil {
		return nil, err
	}

	if err := s.sessions.RevokeSessions(ctx, userID); err != nil {
		return nil, err
	}

	return updated, nil
}

// Delete removes an account. Self-deletion and removing the last admin are
// rejected.
func (s *Service) Delete(ctx context.Context, actorID, userID string) error {
	if actorID == userID {
		return ErrOwnAccount
	}

	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return err
	}

	if user.Role == domain.RoleAdmin {
		admins, err := s.repo.CountByRole(ctx, domain.RoleAdmin)
		if err != nil {
			return fmt.Errorf("count admins: %w", err)
		}
		if admins <= 1 {
			return ErrLastAdmin
		}
	}

	return s.repo.Delete(ctx, userID)
}
