// Package postgres provides the PostgreSQL implementation of the project
// repository.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/atelier-cms/atelier/internal/domain"
	"github.com/atelier-cms/atelier/internal/projects"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository implements the projects.Repository interface using PostgreSQL.
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository creates a new PostgreSQL repository.
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

const projectColumns = `id, title, slug, description, image_url, link, active, position, created_at, updated_at`

// Create inserts a new project.
func (r *Repository) Create(ctx context.Context, project *domain.Project) error {
	query := `
		INSERT INTO projects (title, slug, description, image_url, link, active, position)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at
	`
	err := r.db.QueryRow(ctx, query,
		project.Title,
		project.Slug,
		project.Description,
		project.ImageURL,
		project.Link,
		project.Active,
		project.Position,
	).Scan(&project.ID, &project.CreatedAt, &project.UpdatedAt)

	if err != nil {
		if isUniqueViolation(err) {
			return projects.ErrSlugExists
		}
		return fmt.Errorf("create project: %w", err)
	}
	return nil
}

// GetByID retrieves a project by ID.
func (r *Repository) GetByID(ctx context.Context, id string) (*domain.Project, error) {
	return r.get(ctx, "id", id)
}

// GetBySlug retrieves a project by slug.
func (r *Repository) GetBySlug(ctx context.Context, slug string) (*domain.Project, error) {
	return r.get(ctx, "slug", slug)
}

func (r *Repository) get(ctx context.Context, column, value string) (*domain.Project, error) {
	query := fmt.Sprintf(`SELECT %s FROM projects WHERE %s = $1`, projectColumns, column)

	var p domain.Project
	err := r.db.QueryRow(ctx, query, value).Scan(
		&p.ID,
		&p.Title,
		&p.Slug,
		&p.Description,
		&p.ImageURL,
		&p.Link,
		&p.Active,
		&p.Position,
		&p.CreatedAt,
		&p.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, projects.ErrProjectNotFound
		}
		return nil, fmt.Errorf("get project by %s: %w", column, err)
	}

	return &p, nil
}

// List retrieves projects ordered by position then title.
func (r *Repository) List(ctx context.Context, filter projects.Filter) ([]domain.Project, error) {
	query := fmt.Sprintf(`SELECT %s FROM projects`, projectColumns)
	if filter.ActiveOnly {
		query += ` WHERE active`
	}
	query += ` ORDER BY position, title`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	defer rows.Close()

	list := make([]domain.Project, 0)
	for rows.Next() {
		var p domain.Project
		err := rows.Scan(
			&p.ID,
			&p.Title,
			&p.Slug,
			&p.Description,
			&p.ImageURL,
			&p.Link,
			&p.Active,
			&p.Position,
			&p.CreatedAt,
			&p.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan project: %w", err)
		}
		list = append(list, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate projects: %w", err)
	}

	return list, nil
}

// Update updates an existing project.
func (r *Repository) Update(ctx context.Context, project *domain.Project) error {
	query := `
		UPDATE projects
		SET title = $2, slug = $3, description = $4, image_url = $5, link = $6,
		    active = $7, position = $8, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at
	`
	err := r.db.QueryRow(ctx, query,
		project.ID,
		project.Title,
		project.Slug,
		project.Description,
		project.ImageURL,
		project.Link,
		project.Active,
		project.Position,
	).Scan(&project.UpdatedAt)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return projects.ErrProjectNotFound
		}
		if isUniqueViolation(err) {
			return projects.ErrSlugExists
		}
		return fmt.Errorf("update project: %w", err)
	}
	return nil
}

// Delete removes a project.
func (r *Repository) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM projects WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete project: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return projects.ErrProjectNotFound
	}
	return nil
}

// SetActive toggles the published flag.
func (r *Repository) SetActive(ctx context.Context, id string, active bool) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE projects SET active = $2, updated_at = NOW() WHERE id = $1`, id, active)
	if err != nil {
		return fmt.Errorf("set project active: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return projects.ErrProjectNotFound
	}
	return nil
}

// CountAll returns the total number of projects.
func (r *Repository) CountAll(ctx context.Context) (int, error) {
	var count int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM projects`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count projects: %w", err)
	}
	return count, nil
}

// UpdatePositions rewrites positions in a single transaction so a failed
// reorder leaves the previous order intact.
func (r *Repository) UpdatePositions(ctx context.Context, orderedIDs []string) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if err := tx.Rollback(ctx); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
			slog.Error("failed to rollback transaction", "error", err)
		}
	}()

	for position, id := range orderedIDs {
		tag, err := tx.Exec(ctx,
			`UPDATE projects SET position = $2, updated_at = NOW() WHERE id = $1`, id, position)
		if err != nil {
			return fmt.Errorf("update position: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return projects.ErrProjectNotFound
		}
	}

	return tx.Commit(ctx)
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
