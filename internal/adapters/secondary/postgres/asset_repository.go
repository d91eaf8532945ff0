package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lorrc/helpdesk-portal/internal/core/domain"
	apperrors "github.com/lorrc/helpdesk-portal/internal/core/errors"
	"github.com/lorrc/helpdesk-portal/internal/core/ports"
	"github.com/lorrc/helpdesk-portal/internal/core/utils"
)

// AssetRepository persists departmental inventory.
type AssetRepository struct {
	pool *pgxpool.Pool
}

var _ ports.AssetRepository = (*AssetRepository)(nil)

func NewAssetRepository(pool *pgxpool.Pool) ports.AssetRepository {
	return &AssetRepository{pool: pool}
}

const assetSelect = `
SELECT a.id, a.department_id, a.name, a.tag, a.category, a.status,
       a.building_id, b.name, a.floor, a.lab, a.created_at, a.updated_at
FROM assets a
LEFT JOIN buildings b ON b.id = a.building_id`

func scanAsset(row pgx.CollectableRow) (*domain.Asset, error) {
	var (
		a            domain.Asset
		category     pgtype.Text
		status       string
		buildingID   pgtype.UUID
		buildingName pgtype.Text
		floor        pgtype.Int4
		lab          pgtype.Text
		updatedAt    pgtype.Timestamptz
	)
	err := row.Scan(&a.ID, &a.DepartmentID, &a.Name, &a.Tag, &category, &status,
		&buildingID, &buildingName, &floor, &lab, &a.CreatedAt, &updatedAt)
	if err != nil {
		return nil, err
	}

	a.Category = utils.FromString(category)
	a.Status = domain.AssetStatus(status)
	a.UpdatedAt = utils.FromNullTime(updatedAt)
	if buildingID.Valid {
		a.Location = &domain.TicketLocation{
			BuildingID:   utils.FromUUID(buildingID),
			BuildingName: utils.FromString(buildingName),
			Floor:        int(floor.Int32),
			Lab:          utils.FromString(lab),
		}
	}
	return &a, nil
}

func (r *AssetRepository) Create(ctx context.Context, asset *domain.Asset) (*domain.Asset, error) {
	const query = `
INSERT INTO assets (id, department_id, name, tag, category, status, building_id, floor, lab, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	var (
		building pgtype.UUID
		floor    pgtype.Int4
		lab      pgtype.Text
	)
	if asset.Location != nil {
		building = utils.ToUUID(asset.Location.BuildingID)
		floor = pgtype.Int4{Int32: int32(asset.Location.Floor), Valid: true}
		lab = utils.ToString(asset.Location.Lab)
	}

	_, err := GetDBTX(ctx, r.pool).Exec(ctx, query,
		asset.ID, asset.DepartmentID, asset.Name, asset.Tag, utils.ToString(asset.Category),
		string(asset.Status), building, floor, lab, asset.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, apperrors.ErrAssetTagExists
		}
		return nil, err
	}
	return r.GetByID(ctx, asset.ID)
}

func (r *AssetRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Asset, error) {
	rows, err := GetDBTX(ctx, r.pool).Query(ctx, assetSelect+` WHERE a.id = $1`, id)
	if err != nil {
		return nil, err
	}
	asset, err := pgx.CollectExactlyOneRow(rows, scanAsset)
	if err != nil {
		return nil, notFound(err, apperrors.ErrAssetNotFound)
	}
	return asset, nil
}

func (r *AssetRepository) UpdateStatus(ctx context.Context, asset *domain.Asset) error {
	tag, err := GetDBTX(ctx, r.pool).Exec(ctx,
		`UPDATE assets SET status = $2, updated_at = $3 WHERE id = $1`,
		asset.ID, string(asset.Status), utils.ToNullTime(asset.UpdatedAt))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrAssetNotFound
	}
	return nil
}

func (r *AssetRepository) List(ctx context.Context, params ports.ListAssetsRepoParams) ([]*domain.Asset, error) {
	var (
		conds []string
		args  []interface{}
	)
	if params.DepartmentID != nil {
		args = append(args, *params.DepartmentID)
		conds = append(conds, fmt.Sprintf("a.department_id = $%d", len(args)))
	}
	if params.Status != nil {
		args = append(args, string(*params.Status))
		conds = append(conds, fmt.Sprintf("a.status = $%d", len(args)))
	}

	query := assetSelect
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	args = append(args, params.Limit, params.Offset)
	query += fmt.Sprintf(" ORDER BY a.created_at DESC, a.tag LIMIT $%d OFFSET $%d", len(args)-1, len(args))

	rows, err := GetDBTX(ctx, r.pool).Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, scanAsset)
}
