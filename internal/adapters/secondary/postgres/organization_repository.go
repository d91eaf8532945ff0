package postgres

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lorrc/helpdesk-portal/internal/core/domain"
	apperrors "github.com/lorrc/helpdesk-portal/internal/core/errors"
	"github.com/lorrc/helpdesk-portal/internal/core/ports"
)

// DepartmentRepository persists departments.
type DepartmentRepository struct {
	pool *pgxpool.Pool
}

var _ ports.DepartmentRepository = (*DepartmentRepository)(nil)

func NewDepartmentRepository(pool *pgxpool.Pool) ports.DepartmentRepository {
	return &DepartmentRepository{pool: pool}
}

func (r *DepartmentRepository) Create(ctx context.Context, dept *domain.Department) (*domain.Department, error) {
	const query = `
INSERT INTO departments (id, name, created_at)
VALUES ($1, $2, $3)
RETURNING id, name, created_at`

	var created domain.Department
	err := GetDBTX(ctx, r.pool).QueryRow(ctx, query, dept.ID, dept.Name, dept.CreatedAt).
		Scan(&created.ID, &created.Name, &created.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, apperrors.ErrDepartmentExists
		}
		return nil, err
	}
	return &created, nil
}

func (r *DepartmentRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Department, error) {
	var dept domain.Department
	err := GetDBTX(ctx, r.pool).QueryRow(ctx,
		`SELECT id, name, created_at FROM departments WHERE id = $1`, id).
		Scan(&dept.ID, &dept.Name, &dept.CreatedAt)
	if err != nil {
		return nil, notFound(err, apperrors.ErrDepartmentNotFound)
	}
	return &dept, nil
}

func (r *DepartmentRepository) List(ctx context.Context) ([]*domain.Department, error) {
	rows, err := GetDBTX(ctx, r.pool).Query(ctx,
		`SELECT id, name, created_at FROM departments ORDER BY name`)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (*domain.Department, error) {
		var dept domain.Department
		err := row.Scan(&dept.ID, &dept.Name, &dept.CreatedAt)
		return &dept, err
	})
}

// BuildingRepository persists buildings.
type BuildingRepository struct {
	pool *pgxpool.Pool
}

var _ ports.BuildingRepository = (*BuildingRepository)(nil)

func NewBuildingRepository(pool *pgxpool.Pool) ports.BuildingRepository {
	return &BuildingRepository{pool: pool}
}

func scanBuilding(row pgx.CollectableRow) (*domain.Building, error) {
	var b domain.Building
	err := row.Scan(&b.ID, &b.Name, &b.Floors, &b.CreatedAt)
	return &b, err
}

func (r *BuildingRepository) Create(ctx context.Context, building *domain.Building) (*domain.Building, error) {
	const query = `
INSERT INTO buildings (id, name, floors, created_at)
VALUES ($1, $2, $3, $4)
RETURNING id, name, floors, created_at`

	rows, err := GetDBTX(ctx, r.pool).Query(ctx, query,
		building.ID, building.Name, building.Floors, building.CreatedAt)
	if err != nil {
		return nil, err
	}
	return pgx.CollectExactlyOneRow(rows, scanBuilding)
}

func (r *BuildingRepository) GetByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*domain.Building, error) {
	result := make(map[uuid.UUID]*domain.Building, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	rows, err := GetDBTX(ctx, r.pool).Query(ctx,
		`SELECT id, name, floors, created_at FROM buildings WHERE id = ANY($1::uuid[])`, uuidStrings(ids))
	if err != nil {
		return nil, err
	}
	buildings, err := pgx.CollectRows(rows, scanBuilding)
	if err != nil {
		return nil, err
	}
	for _, b := range buildings {
		result[b.ID] = b
	}
	return result, nil
}

func (r *BuildingRepository) List(ctx context.Context) ([]*domain.Building, error) {
	rows, err := GetDBTX(ctx, r.pool).Query(ctx,
		`SELECT id, name, floors, created_at FROM buildings ORDER BY name`)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, scanBuilding)
}

func uuidStrings(ids []uuid.UUID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = id.String()
	}
	return out
}
