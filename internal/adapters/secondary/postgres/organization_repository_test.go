package postgres

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lorrc/helpdesk-portal/internal/core/domain"
	apperrors "github.com/lorrc/helpdesk-portal/internal/core/errors"
)

func TestDepartmentRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewDepartmentRepository(testPool)
	dept := seedDepartment(t, ctx)

	found, err := repo.GetByID(ctx, dept.ID)
	require.NoError(t, err)
	assert.Equal(t, dept.Name, found.Name)

	t.Run("names are unique regardless of case", func(t *testing.T) {
		dup, err := domain.NewDepartment(strings.ToUpper(dept.Name))
		require.NoError(t, err)
		_, err = repo.Create(ctx, dup)
		assert.ErrorIs(t, err, apperrors.ErrDepartmentExists)
	})

	t.Run("not found", func(t *testing.T) {
		_, err := repo.GetByID(ctx, uuid.New())
		assert.ErrorIs(t, err, apperrors.ErrDepartmentNotFound)
	})

	t.Run("list", func(t *testing.T) {
		depts, err := repo.List(ctx)
		require.NoError(t, err)
		ids := make([]uuid.UUID, 0, len(depts))
		for _, d := range depts {
			ids = append(ids, d.ID)
		}
		assert.Contains(t, ids, dept.ID)
	})
}

func TestBuildingRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewBuildingRepository(testPool)
	a := seedBuilding(t, ctx, 3)
	b := seedBuilding(t, ctx, 5)

	found, err := repo.GetByIDs(ctx, []uuid.UUID{a.ID, b.ID, uuid.New()})
	require.NoError(t, err)
	require.Len(t, found, 2)
	assert.Equal(t, 3, found[a.ID].Floors)
	assert.Equal(t, 5, found[b.ID].Floors)

	empty, err := repo.GetByIDs(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, empty)

	all, err := repo.List(ctx)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, len(all), 2)
}
