// Package projects provides HTTP handlers and business logic for managing
// the showcase entries rendered on the public site.
package projects

import (
	"context"
	"fmt"

	"github.com/atelier-cms/atelier/internal/domain"
)

// Service implements project business logic.
type Service struct {
	repo Repository
}

// NewService creates a new project service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// CreateInput holds data for creating a project.
type CreateInput struct {
	Title       string
	Slug        string // optional; derived from title when empty
	Description string
	ImageURL    string
	Link        *string
	Active      bool
}

// UpdateInput holds data for updating a project.
type UpdateInput struct {
	Title       string
	Slug        string
	Description string
	ImageURL    string
	Link        *string
	Active      bool
	Position    int
}

// Create creates a new project. New projects are appended at the end of the
// display order.
func (s *Service) Create(ctx context.Context, input CreateInput) (*domain.Project, error) {
	slug := input.Slug
	if slug == "" {
		slug = slugify(input.Title)
	}
	if slug == "" {
		return nil, ErrInvalidSlug
	}

	count, err := s.repo.CountAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("count projects: %w", err)
	}

	project := &domain.Project{
		Title:       input.Title,
		Slug:        slug,
		Description: input.Description,
		ImageURL:    input.ImageURL,
		Link:        input.Link,
		Active:      input.Active,
		Position:    count,
	}

	if err := s.repo.Create(ctx, project); err != nil {
		return nil, err
	}

	return project, nil
}

// GetBySlug returns a project by slug regardless of active state.
func (s *Service) GetBySlug(ctx context.Context, slug string) (*domain.Project, error) {
	return s.repo.GetBySlug(ctx, slug)
}

// GetActiveBySlug returns a published project by slug; inactive projects
// read as not found on the public surface.
func (s *Service) GetActiveBySlug(ctx context.Context, slug string) (*domain.Project, error) {
	project, err := s.repo.GetBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	if !project.Active {
		return nil, ErrProjectNotFound
	}
	return project, nil
}

// List returns projects ordered by position.
func (s *Service) List(ctx context.Context, filter Filter) ([]domain.Project, error) {
	return s.repo.List(ctx, filter)
}

// Update replaces a project's fields.
func (s *Service) Update(ctx context.Context, id string, input UpdateInput) (*domain.Project, error) {
	project, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	slug := input.Slug
	if slug == "" {
		slug = slugify(input.Title)
	}
	if slug == "" {
		return nil, ErrInvalidSlug
	}

	project.Title = input.Title
	project.Slug = slug
	project.Description = input.Description
	project.ImageURL = input.ImageURL
	project.Link = input.Link
	project.Active = input.Active
	project.Position = input.Position

	if err := s.repo.Update(ctx, project); err != nil {
		return nil, err
	}

	return project, nil
}

// SetActive publishes or unpublishes a project.
func (s *Service) SetActive(ctx context.Context, id string, active bool) error {
	return s.repo.SetActive(ctx, id, active)
}

// Delete removes a project permanently.
func (s *Service) Delete(ctx context.Context, id string) error {
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}

// Reorder rewrites display positions to follow orderedIDs, which must name
// every project exactly once.
func (s *Service) Reorder(ctx context.Context, orderedIDs []string) error {
	count, err := s.repo.CountAll(ctx)
	if err != nil {
		return fmt.Errorf("count projects: %w", err)
	}
	if len(orderedIDs) != count {
		return ErrInvalidOrder
	}

	seen := make(map[string]struct{}, len(orderedIDs))
	for _, id := range orderedIDs {
		if _, dup := seen[id]; dup {
			return ErrInvalidOrder
		}
		seen[id] = struct{}{}
	}

	return s.repo.UpdatePositions(ctx, orderedIDs)
}
