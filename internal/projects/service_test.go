package projects

import (
	"context"
	"testing"

	"github.com/atelier-cms/atelier/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockRepository implements Repository for testing.
type mockRepository struct {
	projects  []*domain.Project
	nextID    int
	positions []string // last UpdatePositions call
}

func newMockRepository() *mockRepository {
	return &mockRepository{}
}

func (m *mockRepository) Create(_ context.Context, project *domain.Project) error {
	for _, p := range m.projects {
		if p.Slug == project.Slug {
			return ErrSlugExists
		}
	}
	m.nextID++
	project.ID = "p" + string(rune('0'+m.nextID))
	m.projects = append(m.projects, project)
	return nil
}

func (m *mockRepository) GetByID(_ context.Context, id string) (*domain.Project, error) {
	for _, p := range m.projects {
		if p.ID == id {
			return p, nil
		}
	}
	return nil, ErrProjectNotFound
}

func (m *mockRepository) GetBySlug(_ context.Context, slug string) (*domain.Project, error) {
	for _, p := range m.projects {
		if p.Slug == slug {
			return p, nil
		}
	}
	return nil, ErrProjectNotFound
}

func (m *mockRepository) List(_ context.Context, filter Filter) ([]domain.Project, error) {
	out := make([]domain.Project, 0)
	for _, p := range m.projects {
		if filter.ActiveOnly && !p.Active {
			continue
		}
		out = append(out, *p)
	}
	return out, nil
}

func (m *mockRepository) Update(_ context.Context, project *domain.Project) error {
	for i, p := range m.projects {
		if p.ID == project.ID {
			m.projects[i] = project
			return nil
		}
	}
	return ErrProjectNotFound
}

func (m *mockRepository) Delete(_ context.Context, id string) error {
	for i, p := range m.projects {
		if p.ID == id {
			m.projects = append(m.projects[:i], m.projects[i+1:]...)
			return nil
		}
	}
	return ErrProjectNotFound
}

func (m *mockRepository) SetActive(_ context.Context, id string, active bool) error {
	for _, p := range m.projects {
		if p.ID == id {
			p.Active = active
			return nil
		}
	}
	return ErrProjectNotFound
}

func (m *mockRepository) CountAll(_ context.Context) (int, error) {
	return len(m.projects), nil
}

func (m *mockRepository) UpdatePositions(_ context.Context, orderedIDs []string) error {
	m.positions = orderedIDs
	return nil
}

func TestCreate_DerivesSlugAndAppendsPosition(t *testing.T) {
	repo := newMockRepository()
	service := NewService(repo)

	first, err := service.Create(context.Background(), CreateInput{Title: "Test Project"})
	require.NoError(t, err)
	assert.Equal(t, "test-project", first.Slug)
	assert.Equal(t, 0, first.Position)

	second, err := service.Create(context.Background(), CreateInput{Title: "Another One"})
	require.NoError(t, err)
	assert.Equal(t, 1, second.Position)
}

func TestCreate_ExplicitSlugWins(t *testing.T) {
	repo := newMockRepository()
	service := NewService(repo)

	project, err := service.Create(context.Background(), CreateInput{
		Title: "Some Title",
		Slug:  "custom-slug",
	})
	require.NoError(t, err)
	assert.Equal(t, "custom-slug", project.Slug)
}

func TestCreate_TitleWithoutSlugCharacters(t *testing.T) {
	repo := newMockRepository()
	service := NewService(repo)

	_, err := service.Create(context.Background(), CreateInput{Title: "!!!"})
	assert.ErrorIs(t, err, ErrInvalidSlug)
}

func TestCreate_DuplicateSlug(t *testing.T) {
	repo := newMockRepository()
	service := NewService(repo)

	_, err := service.Create(context.Background(), CreateInput{Title: "Twice"})
	require.NoError(t, err)

	_, err = service.Create(context.Background(), CreateInput{Title: "Twice"})
	assert.ErrorIs(t, err, ErrSlugExists)
}

func TestSlugify(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Hello World", "hello-world"},
		{"  Spaced   Out  ", "spaced-out"},
		{"Crème Brûlée", "creme-brulee"},
		{"UPPER-case_with 123", "upper-case-with-123"},
		{"---", ""},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, slugify(tt.in), tt.in)
	}
}

func TestGetActiveBySlug_HidesInactive(t *testing.T) {
	repo := newMockRepository()
	service := NewService(repo)

	project, err := service.Create(context.Background(), CreateInput{Title: "Draft"})
	require.NoError(t, err)

	_, err = service.GetActiveBySlug(context.Background(), project.Slug)
	assert.ErrorIs(t, err, ErrProjectNotFound)

	require.NoError(t, service.SetActive(context.Background(), project.ID, true))

	got, err := service.GetActiveBySlug(context.Background(), project.Slug)
	require.NoError(t, err)
	assert.True(t, got.Active)
}

func TestList_ActiveOnlyFilter(t *testing.T) {
	repo := newMockRepository()
	service := NewService(repo)

	_, err := service.Create(context.Background(), CreateInput{Title: "Published", Active: true})
	require.NoError(t, err)
	_, err = service.Create(context.Background(), CreateInput{Title: "Draft"})
	require.NoError(t, err)

	all, err := service.List(context.Background(), Filter{})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	active, err := service.List(context.Background(), Filter{ActiveOnly: true})
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, "published", active[0].Slug)
}

func TestReorder_RejectsIncompleteList(t *testing.T) {
	repo := newMockRepository()
	service := NewService(repo)

	a, err := service.Create(context.Background(), CreateInput{Title: "A"})
	require.NoError(t, err)
	_, err = service.Create(context.Background(), CreateInput{Title: "B"})
	require.NoError(t, err)

	err = service.Reorder(context.Background(), []string{a.ID})
	assert.ErrorIs(t, err, ErrInvalidOrder)

	err = service.Reorder(context.Background(), []string{a.ID, a.ID})
	assert.ErrorIs(t, err, ErrInvalidOrder)
	assert.Nil(t, repo.positions, "no partial reorder may reach the repository")
}

func TestReorder_PassesOrderThrough(t *testing.T) {
	repo := newMockRepository()
	service := NewService(repo)

	a, err := service.Create(context.Background(), CreateInput{Title: "A"})
	require.NoError(t, err)
	b, err := service.Create(context.Background(), CreateInput{Title: "B"})
	require.NoError(t, err)

	require.NoError(t, service.Reorder(context.Background(), []string{b.ID, a.ID}))
	assert.Equal(t, []string{b.ID, a.ID}, repo.positions)
}

func TestDelete_UnknownProject(t *testing.T) {
	repo := newMockRepository()
	service := NewService(repo)

	err := service.Delete(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrProjectNotFound)
}
