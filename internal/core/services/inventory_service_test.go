package services_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/lorrc/helpdesk-portal/internal/core/domain"
	apperrors "github.com/lorrc/helpdesk-portal/internal/core/errors"
	"github.com/lorrc/helpdesk-portal/internal/core/mocks"
	"github.com/lorrc/helpdesk-portal/internal/core/ports"
	"github.com/lorrc/helpdesk-portal/internal/core/services"
)

func TestInventoryService_CreateAsset(t *testing.T) {
	ctx := context.Background()
	dept := uuid.New()
	admin := &domain.User{ID: uuid.New(), Role: domain.RoleDepartmentAdmin, DepartmentID: &dept, IsActive: true}

	t.Run("admin registers asset in own department", func(t *testing.T) {
		assets := mocks.NewMockAssetRepository()
		users := mocks.NewMockUserRepository()
		buildings := mocks.NewMockBuildingRepository()
		svc := services.NewInventoryService(assets, users, buildings)
		building := &domain.Building{ID: uuid.New(), Name: "Main", Floors: 3}

		users.On("GetByID", ctx, admin.ID).Return(admin, nil)
		buildings.On("GetByIDs", ctx, []uuid.UUID{building.ID}).
			Return(map[uuid.UUID]*domain.Building{building.ID: building}, nil)
		assets.On("Create", ctx, mock.MatchedBy(func(a *domain.Asset) bool {
			return a.DepartmentID == dept && a.Tag == "LAP-001" && a.Status == domain.AssetInUse && a.Location.BuildingName == "Main"
		})).Return(&domain.Asset{ID: uuid.New(), Tag: "LAP-001"}, nil)

		asset, err := svc.CreateAsset(ctx, ports.CreateAssetParams{
			ActorID:  admin.ID,
			Name:     "Laptop",
			Tag:      "lap-001",
			Category: "laptop",
			Location: &ports.TicketLocationInput{BuildingID: building.ID, Floor: 2},
		})
		require.NoError(t, err)
		assert.Equal(t, "LAP-001", asset.Tag)
		assets.AssertExpectations(t)
	})

	t.Run("employee is forbidden", func(t *testing.T) {
		assets := mocks.NewMockAssetRepository()
		users := mocks.NewMockUserRepository()
		svc := services.NewInventoryService(assets, users, mocks.NewMockBuildingRepository())
		emp := &domain.User{ID: uuid.New(), Role: domain.RoleEmployee, DepartmentID: &dept, IsActive: true}
		users.On("GetByID", ctx, emp.ID).Return(emp, nil)

		_, err := svc.CreateAsset(ctx, ports.CreateAssetParams{ActorID: emp.ID, Name: "Laptop", Tag: "LAP-002"})
		assert.ErrorIs(t, err, apperrors.ErrForbidden)
	})
}

func TestInventoryService_ListAssets(t *testing.T) {
	ctx := context.Background()
	dept := uuid.New()

	t.Run("admin is scoped to department", func(t *testing.T) {
		assets := mocks.NewMockAssetRepository()
		users := mocks.NewMockUserRepository()
		svc := services.NewInventoryService(assets, users, mocks.NewMockBuildingRepository())
		admin := &domain.User{ID: uuid.New(), Role: domain.RoleDepartmentAdmin, DepartmentID: &dept, IsActive: true}
		users.On("GetByID", ctx, admin.ID).Return(admin, nil)
		assets.On("List", ctx, ports.ListAssetsRepoParams{DepartmentID: &dept, Limit: 20}).Return([]*domain.Asset{}, nil)

		_, err := svc.ListAssets(ctx, ports.ListAssetsParams{ViewerID: admin.ID})
		require.NoError(t, err)
		assets.AssertExpectations(t)
	})

	t.Run("super admin lists everything", func(t *testing.T) {
		assets := mocks.NewMockAssetRepository()
		users := mocks.NewMockUserRepository()
		svc := services.NewInventoryService(assets, users, mocks.NewMockBuildingRepository())
		super := &domain.User{ID: uuid.New(), Role: domain.RoleSuperAdmin, IsActive: true}
		users.On("GetByID", ctx, super.ID).Return(super, nil)
		assets.On("List", ctx, ports.ListAssetsRepoParams{Limit: 50}).Return([]*domain.Asset{}, nil)

		_, err := svc.ListAssets(ctx, ports.ListAssetsParams{ViewerID: super.ID, Limit: 50})
		require.NoError(t, err)
		assets.AssertExpectations(t)
	})
}

func TestInventoryService_UpdateAssetStatus(t *testing.T) {
	ctx := context.Background()
	dept := uuid.New()
	admin := &domain.User{ID: uuid.New(), Role: domain.RoleDepartmentAdmin, DepartmentID: &dept, IsActive: true}

	t.Run("moves to repair", func(t *testing.T) {
		assets := mocks.NewMockAssetRepository()
		users := mocks.NewMockUserRepository()
		svc := services.NewInventoryService(assets, users, mocks.NewMockBuildingRepository())
		asset := &domain.Asset{ID: uuid.New(), DepartmentID: dept, Status: domain.AssetInUse}
		users.On("GetByID", ctx, admin.ID).Return(admin, nil)
		assets.On("GetByID", ctx, asset.ID).Return(asset, nil)
		assets.On("UpdateStatus", ctx, asset).Return(nil)

		updated, err := svc.UpdateAssetStatus(ctx, admin.ID, asset.ID, domain.AssetInRepair)
		require.NoError(t, err)
		assert.Equal(t, domain.AssetInRepair, updated.Status)
	})

	t.Run("retired is final", func(t *testing.T) {
		assets := mocks.NewMockAssetRepository()
		users := mocks.NewMockUserRepository()
		svc := services.NewInventoryService(assets, users, mocks.NewMockBuildingRepository())
		asset := &domain.Asset{ID: uuid.New(), DepartmentID: dept, Status: domain.AssetRetired}
		users.On("GetByID", ctx, admin.ID).Return(admin, nil)
		assets.On("GetByID", ctx, asset.ID).Return(asset, nil)

		_, err := svc.UpdateAssetStatus(ctx, admin.ID, asset.ID, domain.AssetInUse)
		assert.ErrorIs(t, err, apperrors.ErrInvalidAssetState)
		assets.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything)
	})

	t.Run("other department", func(t *testing.T) {
		assets := mocks.NewMockAssetRepository()
		users := mocks.NewMockUserRepository()
		svc := services.NewInventoryService(assets, users, mocks.NewMockBuildingRepository())
		asset := &domain.Asset{ID: uuid.New(), DepartmentID: uuid.New(), Status: domain.AssetInUse}
		users.On("GetByID", ctx, admin.ID).Return(admin, nil)
		assets.On("GetByID", ctx, asset.ID).Return(asset, nil)

		_, err := svc.UpdateAssetStatus(ctx, admin.ID, asset.ID, domain.AssetRetired)
		assert.ErrorIs(t, err, apperrors.ErrForbidden)
	})
}
