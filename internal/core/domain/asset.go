package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/lorrc/helpdesk-portal/internal/core/errors"
)

const (
	MaxAssetNameLength     = 255
	MaxAssetTagLength      = 64
	MaxAssetCategoryLength = 64
)

// AssetStatus is the lifecycle state of an inventory item.
type AssetStatus string

const (
	AssetInUse    AssetStatus = "in_use"
	AssetInRepair AssetStatus = "in_repair"
	AssetRetired  AssetStatus = "retired"
)

// IsValid checks if the asset status is a known value.
func (s AssetStatus) IsValid() bool {
	switch s {
	case AssetInUse, AssetInRepair, AssetRetired:
		return true
	}
	return false
}

// Asset is a piece of equipment tracked by a department.
type Asset struct {
	ID           uuid.UUID
	DepartmentID uuid.UUID
	Name         string
	Tag          string
	Category     string
	Status       AssetStatus
	Location     *TicketLocation
	CreatedAt    time.Time
	UpdatedAt    *time.Time
}

// AssetParams holds parameters for registering an asset.
type AssetParams struct {
	DepartmentID uuid.UUID
	Name         string
	Tag          string
	Category     string
	Location     *TicketLocation
}

// NewAsset validates the parameters and builds an in-use asset.
func NewAsset(params AssetParams) (*Asset, error) {
	errs := apperrors.NewValidationErrors()

	name := strings.TrimSpace(params.Name)
	tag := strings.ToUpper(strings.TrimSpace(params.Tag))

	if params.DepartmentID == uuid.Nil {
		errs.Add("departmentId", "Department is required")
	}
	if name == "" {
		errs.Add("name", "Name is required")
	} else if len(name) > MaxAssetNameLength {
		errs.Add("name", "Name must be 255 characters or less")
	}
	if tag == "" {
		errs.Add("tag", "Asset tag is required")
	} else if len(tag) > MaxAssetTagLength {
		errs.Add("tag", "Asset tag must be 64 characters or less")
	}
	if len(params.Category) > MaxAssetCategoryLength {
		errs.Add("category", "Category must be 64 characters or less")
	}
	if params.Location != nil && params.Location.BuildingID == uuid.Nil {
		errs.Add("buildingId", "Building is required when a location is given")
	}
	if errs.HasErrors() {
		return nil, errs
	}

	return &Asset{
		ID:           uuid.New(),
		DepartmentID: params.DepartmentID,
		Name:         name,
		Tag:          tag,
		Category:     strings.TrimSpace(params.Category),
		Status:       AssetInUse,
		Location:     params.Location,
		CreatedAt:    time.Now().UTC(),
	}, nil
}

// SetStatus moves the asset to a new status. Retired assets stay retired.
func (a *Asset) SetStatus(status AssetStatus) error {
	if !status.IsValid() {
		return apperrors.ErrInvalidAssetState
	}
	if a.Status == AssetRetired && status != AssetRetired {
		return apperrors.ErrInvalidAssetState
	}
	a.Status = status
	now := time.Now().UTC()
	a.UpdatedAt = &now
	return nil
}
