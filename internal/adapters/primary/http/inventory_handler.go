package http

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/lorrc/helpdesk-portal/internal/adapters/primary/validation"
	"github.com/lorrc/helpdesk-portal/internal/core/domain"
	"github.com/lorrc/helpdesk-portal/internal/core/ports"
)

const maxAssetsPerPage = 100

// InventoryHandler handles department asset tracking.
type InventoryHandler struct {
	inventoryService ports.InventoryService
	errorHandler     *ErrorHandler
	logger           *slog.Logger
}

// NewInventoryHandler creates a new inventory handler.
func NewInventoryHandler(
	inventoryService ports.InventoryService,
	errorHandler *ErrorHandler,
	logger *slog.Logger,
) *InventoryHandler {
	return &InventoryHandler{
		inventoryService: inventoryService,
		errorHandler:     errorHandler,
		logger:           logger.With("handler", "inventory"),
	}
}

// RegisterRoutes registers asset routes relative to /assets.
func (h *InventoryHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.HandleListAssets)
	r.Post("/", h.HandleCreateAsset)
	r.Patch("/{assetID}/status", h.HandleUpdateAssetStatus)
}

// CreateAssetRequest is the body of POST /assets.
type CreateAssetRequest struct {
	Name     string         `json:"name" validate:"required,max=255"`
	Tag      string         `json:"tag" validate:"required,max=64"`
	Category string         `json:"category" validate:"max=64"`
	Location *LocationInput `json:"location"`
}

// UpdateAssetStatusRequest is the body of PATCH /assets/{assetID}/status.
type UpdateAssetStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=in_use in_repair retired"`
}

// AssetDTO is the JSON shape of an asset.
type AssetDTO struct {
	ID           string       `json:"id"`
	DepartmentID string       `json:"departmentId"`
	Name         string       `json:"name"`
	Tag          string       `json:"tag"`
	Category     string       `json:"category,omitempty"`
	Status       string       `json:"status"`
	Location     *LocationDTO `json:"location,omitempty"`
	CreatedAt    string       `json:"createdAt"`
	UpdatedAt    *string      `json:"updatedAt,omitempty"`
}

func toAssetDTO(asset *domain.Asset) AssetDTO {
	return AssetDTO{
		ID:           asset.ID.String(),
		DepartmentID: asset.DepartmentID.String(),
		Name:         asset.Name,
		Tag:          asset.Tag,
		Category:     asset.Category,
		Status:       string(asset.Status),
		Location:     toLocationDTO(asset.Location),
		CreatedAt:    asset.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:    formatTime(asset.UpdatedAt),
	}
}

// HandleListAssets handles GET /assets
func (h *InventoryHandler) HandleListAssets(w http.ResponseWriter, r *http.Request) {
	claims, ok := getClaims(w, r, h.errorHandler)
	if !ok {
		return
	}

	pagination := validation.ParsePagination(r, maxAssetsPerPage)

	var status *domain.AssetStatus
	if raw := validation.ParseStringQueryParam(r, "status"); raw != nil {
		s := domain.AssetStatus(*raw)
		if !s.IsValid() {
			h.errorHandler.Handle(w, r, validation.Var("status", *raw,
				"oneof="+strings.Join([]string{string(domain.AssetInUse), string(domain.AssetInRepair), string(domain.AssetRetired)}, " ")))
			return
		}
		status = &s
	}

	assets, err := h.inventoryService.ListAssets(r.Context(), ports.ListAssetsParams{
		ViewerID: claims.UserID,
		Status:   status,
		Limit:    pagination.Limit + 1,
		Offset:   pagination.Offset,
	})
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	dtos := make([]AssetDTO, 0, len(assets))
	for _, asset := range assets {
		dtos = append(dtos, toAssetDTO(asset))
	}
	WritePaginatedSimple(w, dtos, pagination.Limit, pagination.Offset)
}

// HandleCreateAsset handles POST /assets
func (h *InventoryHandler) HandleCreateAsset(w http.ResponseWriter, r *http.Request) {
	claims, ok := getClaims(w, r, h.errorHandler)
	if !ok {
		return
	}

	req, err := validation.DecodeAndValidate[CreateAssetRequest](r)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	asset, err := h.inventoryService.CreateAsset(r.Context(), ports.CreateAssetParams{
		ActorID:  claims.UserID,
		Name:     req.Name,
		Tag:      req.Tag,
		Category: req.Category,
		Location: req.Location.toPort(),
	})
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	h.logger.InfoContext(r.Context(), "asset registered", "asset_id", asset.ID, "tag", asset.Tag)
	WriteCreated(w, toAssetDTO(asset))
}

// HandleUpdateAssetStatus handles PATCH /assets/{assetID}/status
func (h *InventoryHandler) HandleUpdateAssetStatus(w http.ResponseWriter, r *http.Request) {
	claims, ok := getClaims(w, r, h.errorHandler)
	if !ok {
		return
	}

	assetID, err := parseUUIDParam(r, "assetID")
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	req, err := validation.DecodeAndValidate[UpdateAssetStatusRequest](r)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	asset, err := h.inventoryService.UpdateAssetStatus(r.Context(), claims.UserID, assetID, domain.AssetStatus(req.Status))
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	WriteSuccess(w, toAssetDTO(asset))
}
