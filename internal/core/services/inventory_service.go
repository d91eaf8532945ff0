package services

import (
	"context"

	"github.com/google/uuid"

	"github.com/lorrc/helpdesk-portal/internal/core/domain"
	apperrors "github.com/lorrc/helpdesk-portal/internal/core/errors"
	"github.com/lorrc/helpdesk-portal/internal/core/ports"
)

// InventoryService implements departmental asset tracking.
type InventoryService struct {
	assetRepo    ports.AssetRepository
	userRepo     ports.UserRepository
	buildingRepo ports.BuildingRepository
}

var _ ports.InventoryService = (*InventoryService)(nil)

func NewInventoryService(
	assetRepo ports.AssetRepository,
	userRepo ports.UserRepository,
	buildingRepo ports.BuildingRepository,
) ports.InventoryService {
	return &InventoryService{
		assetRepo:    assetRepo,
		userRepo:     userRepo,
		buildingRepo: buildingRepo,
	}
}

// CreateAsset registers an asset in the actor's department.
func (s *InventoryService) CreateAsset(ctx context.Context, params ports.CreateAssetParams) (*domain.Asset, error) {
	actor, err := s.assetManager(ctx, params.ActorID)
	if err != nil {
		return nil, err
	}

	var location *domain.TicketLocation
	if params.Location != nil {
		buildings, err := s.buildingRepo.GetByIDs(ctx, []uuid.UUID{params.Location.BuildingID})
		if err != nil {
			return nil, err
		}
		building, ok := buildings[params.Location.BuildingID]
		if !ok {
			return nil, apperrors.ErrBuildingNotFound
		}
		if !building.HasFloor(params.Location.Floor) {
			return nil, apperrors.ErrInvalidLocation
		}
		location = &domain.TicketLocation{
			BuildingID:   building.ID,
			BuildingName: building.Name,
			Floor:        params.Location.Floor,
			Lab:          params.Location.Lab,
		}
	}

	asset, err := domain.NewAsset(domain.AssetParams{
		DepartmentID: *actor.DepartmentID,
		Name:         params.Name,
		Tag:          params.Tag,
		Category:     params.Category,
		Location:     location,
	})
	if err != nil {
		return nil, err
	}
	return s.assetRepo.Create(ctx, asset)
}

// ListAssets lists the viewer's department assets, or every asset for a
// super admin.
func (s *InventoryService) ListAssets(ctx context.Context, params ports.ListAssetsParams) ([]*domain.Asset, error) {
	viewer, err := s.userRepo.GetByID(ctx, params.ViewerID)
	if err != nil {
		return nil, err
	}
	if params.Status != nil && !params.Status.IsValid() {
		return nil, apperrors.ErrInvalidAssetState
	}

	limit, offset := clampPage(params.Limit, params.Offset)
	repoParams := ports.ListAssetsRepoParams{
		Status: params.Status,
		Limit:  limit,
		Offset: offset,
	}

	switch {
	case viewer.IsActive && viewer.Role.Has(domain.PermAssetsReadAll):
	case viewer.IsActive && viewer.Role.Has(domain.PermAssetsManage) && viewer.HasDepartment():
		repoParams.DepartmentID = viewer.DepartmentID
	default:
		return nil, apperrors.ErrForbidden
	}

	return s.assetRepo.List(ctx, repoParams)
}

// UpdateAssetStatus moves an asset of the actor's department to a new status.
func (s *InventoryService) UpdateAssetStatus(ctx context.Context, actorID, assetID uuid.UUID, status domain.AssetStatus) (*domain.Asset, error) {
	actor, err := s.assetManager(ctx, actorID)
	if err != nil {
		return nil, err
	}

	asset, err := s.assetRepo.GetByID(ctx, assetID)
	if err != nil {
		return nil, err
	}
	if !actor.BelongsTo(asset.DepartmentID) {
		return nil, apperrors.ErrForbidden
	}

	if err := asset.SetStatus(status); err != nil {
		return nil, err
	}
	if err := s.assetRepo.UpdateStatus(ctx, asset); err != nil {
		return nil, err
	}
	return asset, nil
}

func (s *InventoryService) assetManager(ctx context.Context, actorID uuid.UUID) (*domain.User, error) {
	actor, err := s.userRepo.GetByID(ctx, actorID)
	if err != nil {
		return nil, err
	}
	if !actor.IsActive || !actor.Role.Has(domain.PermAssetsManage) || !actor.HasDepartment() {
		return nil, apperrors.ErrForbidden
	}
	return actor, nil
}
