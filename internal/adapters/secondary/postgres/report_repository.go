package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lorrc/helpdesk-portal/internal/core/domain"
	"github.com/lorrc/helpdesk-portal/internal/core/ports"
	"github.com/lorrc/helpdesk-portal/internal/core/utils"
)

type ReportRepository struct {
	pool *pgxpool.Pool
	tx   *TransactionManager
}

var _ ports.ReportRepository = (*ReportRepository)(nil)

func NewReportRepository(pool *pgxpool.Pool) ports.ReportRepository {
	return &ReportRepository{pool: pool, tx: NewTransactionManager(pool)}
}

// GetTicketReport gathers every section of the report from one snapshot.
// A nil departmentID spans all departments.
func (r *ReportRepository) GetTicketReport(ctx context.Context, departmentID *uuid.UUID, days int) (*domain.TicketReport, error) {
	if days <= 0 {
		days = 30
	}
	report := &domain.TicketReport{DepartmentID: departmentID, Days: days}
	dept := utils.ToNullUUID(departmentID)

	err := r.tx.WithReadOnlyTransaction(ctx, func(ctx context.Context) error {
		var err error
		if report.StatusCounts, err = r.fetchStatusCounts(ctx, dept, days); err != nil {
			return err
		}
		if report.Departments, err = r.fetchDepartments(ctx, dept, days); err != nil {
			return err
		}
		if report.Volume, err = r.fetchVolume(ctx, dept, days); err != nil {
			return err
		}
		report.MTTRHours, err = r.fetchMTTRHours(ctx, dept, days)
		return err
	})
	if err != nil {
		return nil, err
	}
	return report, nil
}

const reportWindow = `
  ($1::uuid IS NULL OR t.to_department_id = $1)
  AND t.created_at >= date_trunc('day', NOW()) - ($2::int - 1) * interval '1 day'`

func (r *ReportRepository) fetchStatusCounts(ctx context.Context, dept pgtype.UUID, days int) ([]domain.StatusCount, error) {
	query := `
SELECT t.status, COUNT(*)
FROM tickets t
WHERE` + reportWindow + `
GROUP BY t.status`

	rows, err := GetDBTX(ctx, r.pool).Query(ctx, query, dept, days)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[domain.TicketStatus]int64, len(domain.AllStatuses))
	for rows.Next() {
		var (
			status string
			count  int64
		)
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		counts[domain.TicketStatus(status)] = count
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	result := make([]domain.StatusCount, 0, len(domain.AllStatuses))
	for _, status := range domain.AllStatuses {
		result = append(result, domain.StatusCount{Status: status, Count: counts[status]})
	}
	return result, nil
}

func (r *ReportRepository) fetchDepartments(ctx context.Context, dept pgtype.UUID, days int) ([]domain.DepartmentCount, error) {
	query := `
SELECT d.id, d.name, COUNT(*)
FROM tickets t
JOIN departments d ON d.id = t.to_department_id
WHERE` + reportWindow + `
GROUP BY d.id, d.name
ORDER BY COUNT(*) DESC, d.name`

	rows, err := GetDBTX(ctx, r.pool).Query(ctx, query, dept, days)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]domain.DepartmentCount, 0)
	for rows.Next() {
		var item domain.DepartmentCount
		if err := rows.Scan(&item.DepartmentID, &item.DepartmentName, &item.Count); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func (r *ReportRepository) fetchVolume(ctx context.Context, dept pgtype.UUID, days int) ([]domain.VolumePoint, error) {
	const query = `
WITH days AS (
  SELECT generate_series(
    date_trunc('day', NOW()) - ($2::int - 1) * interval '1 day',
    date_trunc('day', NOW()),
    interval '1 day'
  ) AS day
),
created AS (
  SELECT date_trunc('day', t.created_at) AS day, COUNT(*) AS created_count
  FROM tickets t
  WHERE ($1::uuid IS NULL OR t.to_department_id = $1)
    AND t.created_at >= date_trunc('day', NOW()) - ($2::int - 1) * interval '1 day'
  GROUP BY 1
),
resolved AS (
  SELECT date_trunc('day', t.resolved_at) AS day, COUNT(*) AS resolved_count
  FROM tickets t
  WHERE ($1::uuid IS NULL OR t.to_department_id = $1)
    AND t.resolved_at IS NOT NULL
    AND t.resolved_at >= date_trunc('day', NOW()) - ($2::int - 1) * interval '1 day'
  GROUP BY 1
)
SELECT d.day,
       COALESCE(c.created_count, 0) AS created_count,
       COALESCE(r.resolved_count, 0) AS resolved_count
FROM days d
LEFT JOIN created c ON c.day = d.day
LEFT JOIN resolved r ON r.day = d.day
ORDER BY d.day
`

	rows, err := GetDBTX(ctx, r.pool).Query(ctx, query, dept, days)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	points := make([]domain.VolumePoint, 0, days)
	for rows.Next() {
		var (
			day           time.Time
			createdCount  int64
			resolvedCount int64
		)
		if err := rows.Scan(&day, &createdCount, &resolvedCount); err != nil {
			return nil, err
		}
		points = append(points, domain.VolumePoint{
			Day:           day,
			CreatedCount:  createdCount,
			ResolvedCount: resolvedCount,
		})
	}
	return points, rows.Err()
}

func (r *ReportRepository) fetchMTTRHours(ctx context.Context, dept pgtype.UUID, days int) (float64, error) {
	query := `
SELECT AVG(EXTRACT(EPOCH FROM (t.resolved_at - t.created_at)))
FROM tickets t
WHERE` + reportWindow + `
  AND t.resolved_at IS NOT NULL`

	var avgSeconds pgtype.Float8
	if err := GetDBTX(ctx, r.pool).QueryRow(ctx, query, dept, days).Scan(&avgSeconds); err != nil {
		return 0, err
	}
	if !avgSeconds.Valid {
		return 0, nil
	}
	return avgSeconds.Float64 / 3600, nil
}
