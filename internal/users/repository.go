package users

import (
	"context"

	"github.com/atelier-cms/atelier/internal/domain"
)

// Repository defines the interface for user administration data operations.
type Repository interface {
	List(ctx context.Context) ([]domain.User, error)
	GetByID(ctx context.Context, id string) (*domain.User, error)
	UpdateRole(ctx context.Context, id string, role domain.Role) (*domain.User, error)
	Delete(ctx context.Context, id string) error
	CountByRole(ctx context.Context, role domain.Role) (int, error)
}
