package projects

import (
	"context"

	"github.com/atelier-cms/atelier/internal/domain"
)

// Repository defines the interface for project data operations.
type Repository interface {
	Create(ctx context.Context, project *domain.Project) error
	GetByID(ctx context.Context, id string) (*domain.Project, error)
	GetBySlug(ctx context.Context, slug string) (*domain.Project, error)
	List(ctx context.Context, filter Filter) ([]domain.Project, error)
	Update(ctx context.Context, project *domain.Project) error
	Delete(ctx context.Context, id string) error

	SetActive(ctx context.Context, id string, active bool) error
	CountAll(ctx context.Context) (int, error)
	// UpdatePositions atomically assigns positions following the given ID
	// order.
	UpdatePositions(ctx context.Context, orderedIDs []string) error
}

// Filter represents filter criteria for listing projects.
type Filter struct {
	// ActiveOnly restricts results to published projects (the public view).
	ActiveOnly bool
}
