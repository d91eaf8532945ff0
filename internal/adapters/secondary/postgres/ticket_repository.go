package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lorrc/helpdesk-portal/internal/core/domain"
	apperrors "github.com/lorrc/helpdesk-portal/internal/core/errors"
	"github.com/lorrc/helpdesk-portal/internal/core/ports"
	"github.com/lorrc/helpdesk-portal/internal/core/utils"
)

// TicketRepository is the secondary adapter for ticket persistence.
type TicketRepository struct {
	pool *pgxpool.Pool
}

// Ensure TicketRepository implements the ports.TicketRepository interface.
var _ ports.TicketRepository = (*TicketRepository)(nil)

// NewTicketRepository creates a new ticket repository.
func NewTicketRepository(pool *pgxpool.Pool) ports.TicketRepository {
	return &TicketRepository{pool: pool}
}

const ticketSelect = `
SELECT t.id, t.code, t.title, t.description, t.priority, t.status,
       t.from_department_id, fd.name, t.to_department_id, td.name,
       t.requester_id, ru.full_name, ru.email, ru.phone, ru.department_id, rd.name,
       t.assigned_to, au.full_name,
       t.building_id, b.name, t.floor, t.lab,
       t.attachment, t.viewed_at, t.created_at, t.updated_at, t.resolved_at
FROM tickets t
JOIN departments td ON td.id = t.to_department_id
LEFT JOIN departments fd ON fd.id = t.from_department_id
JOIN users ru ON ru.id = t.requester_id
LEFT JOIN departments rd ON rd.id = ru.department_id
LEFT JOIN users au ON au.id = t.assigned_to
LEFT JOIN buildings b ON b.id = t.building_id`

// scanTicket converts a joined ticket row to a core domain model.
func scanTicket(row pgx.Row) (*domain.Ticket, error) {
	var (
		t              domain.Ticket
		code           pgtype.Text
		description    pgtype.Text
		priority       pgtype.Text
		status         string
		fromDept       pgtype.UUID
		fromDeptName   pgtype.Text
		requesterPhone pgtype.Text
		requesterDept  pgtype.UUID
		requesterDName pgtype.Text
		assignedTo     pgtype.UUID
		assignedName   pgtype.Text
		buildingID     pgtype.UUID
		buildingName   pgtype.Text
		floor          pgtype.Int4
		lab            pgtype.Text
		attachment     pgtype.Text
		viewedAt       pgtype.Timestamptz
		updatedAt      pgtype.Timestamptz
		resolvedAt     pgtype.Timestamptz
	)

	err := row.Scan(
		&t.ID, &code, &t.Title, &description, &priority, &status,
		&fromDept, &fromDeptName, &t.ToDepartmentID, &t.ToDepartmentName,
		&t.Requester.ID, &t.Requester.FullName, &t.Requester.Email, &requesterPhone, &requesterDept, &requesterDName,
		&assignedTo, &assignedName,
		&buildingID, &buildingName, &floor, &lab,
		&attachment, &viewedAt, &t.CreatedAt, &updatedAt, &resolvedAt,
	)
	if err != nil {
		return nil, err
	}

	t.Code = utils.FromString(code)
	t.Description = utils.FromString(description)
	t.Priority = domain.TicketPriority(utils.FromString(priority))
	t.Status = domain.TicketStatus(status)
	t.FromDepartmentID = utils.FromUUID(fromDept)
	t.FromDepartmentName = utils.FromString(fromDeptName)
	t.Requester.Phone = utils.FromString(requesterPhone)
	t.Requester.DepartmentID = utils.FromNullUUID(requesterDept)
	t.Requester.DepartmentName = utils.FromString(requesterDName)
	t.AssignedTo = utils.FromNullUUID(assignedTo)
	t.AssignedToName = utils.FromString(assignedName)
	t.Attachment = utils.FromString(attachment)
	t.ViewedAt = utils.FromNullTime(viewedAt)
	t.UpdatedAt = utils.FromNullTime(updatedAt)
	t.ResolvedAt = utils.FromNullTime(resolvedAt)

	if buildingID.Valid {
		t.Location = &domain.TicketLocation{
			BuildingID:   utils.FromUUID(buildingID),
			BuildingName: utils.FromString(buildingName),
			Floor:        int(floor.Int32),
			Lab:          utils.FromString(lab),
		}
	}
	return &t, nil
}

// Create persists a new ticket entity and assigns its code.
func (r *TicketRepository) Create(ctx context.Context, ticket *domain.Ticket) (*domain.Ticket, error) {
	const insert = `
INSERT INTO tickets (title, description, priority, status, from_department_id, to_department_id,
                     requester_id, building_id, floor, lab, attachment, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
RETURNING id, created_at`

	var (
		building pgtype.UUID
		floor    pgtype.Int4
		lab      pgtype.Text
	)
	if ticket.Location != nil {
		building = utils.ToUUID(ticket.Location.BuildingID)
		floor = pgtype.Int4{Int32: int32(ticket.Location.Floor), Valid: true}
		lab = utils.ToString(ticket.Location.Lab)
	}
	createdAt := ticket.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	db := GetDBTX(ctx, r.pool)
	var (
		id      int64
		created time.Time
	)
	err := db.QueryRow(ctx, insert,
		ticket.Title,
		utils.ToString(ticket.Description),
		utils.ToString(string(ticket.Priority)),
		string(ticket.Status),
		utils.ToUUID(ticket.FromDepartmentID),
		ticket.ToDepartmentID,
		ticket.Requester.ID,
		building, floor, lab,
		utils.ToString(ticket.Attachment),
		createdAt,
	).Scan(&id, &created)
	if err != nil {
		if isForeignKeyViolation(err) {
			return nil, apperrors.ErrDepartmentNotFound
		}
		return nil, err
	}

	if _, err := db.Exec(ctx, `UPDATE tickets SET code = $2 WHERE id = $1`,
		id, domain.FormatTicketCode(id, created)); err != nil {
		return nil, err
	}
	return r.GetByID(ctx, id)
}

// GetByID retrieves a single ticket by its ID.
func (r *TicketRepository) GetByID(ctx context.Context, id int64) (*domain.Ticket, error) {
	row := GetDBTX(ctx, r.pool).QueryRow(ctx, ticketSelect+` WHERE t.id = $1`, id)
	ticket, err := scanTicket(row)
	if err != nil {
		return nil, notFound(err, apperrors.ErrTicketNotFound)
	}
	return ticket, nil
}

// GetForUpdate retrieves a ticket and locks its row until the surrounding
// transaction ends.
func (r *TicketRepository) GetForUpdate(ctx context.Context, id int64) (*domain.Ticket, error) {
	row := GetDBTX(ctx, r.pool).QueryRow(ctx, ticketSelect+` WHERE t.id = $1 FOR UPDATE OF t`, id)
	ticket, err := scanTicket(row)
	if err != nil {
		return nil, notFound(err, apperrors.ErrTicketNotFound)
	}
	return ticket, nil
}

// Update persists the mutable fields of an existing ticket entity.
func (r *TicketRepository) Update(ctx context.Context, ticket *domain.Ticket) (*domain.Ticket, error) {
	const query = `
UPDATE tickets
SET description = $2, priority = $3, status = $4, assigned_to = $5,
    updated_at = $6, resolved_at = $7
WHERE id = $1`

	tag, err := GetDBTX(ctx, r.pool).Exec(ctx, query,
		ticket.ID,
		utils.ToString(ticket.Description),
		utils.ToString(string(ticket.Priority)),
		string(ticket.Status),
		utils.ToNullUUID(ticket.AssignedTo),
		utils.ToNullTime(ticket.UpdatedAt),
		utils.ToNullTime(ticket.ResolvedAt),
	)
	if err != nil {
		return nil, err
	}
	if tag.RowsAffected() == 0 {
		return nil, apperrors.ErrTicketNotFound
	}
	return r.GetByID(ctx, ticket.ID)
}

// MarkViewed stores the first view time. Later views keep the original.
func (r *TicketRepository) MarkViewed(ctx context.Context, id int64, at time.Time) error {
	_, err := GetDBTX(ctx, r.pool).Exec(ctx,
		`UPDATE tickets SET viewed_at = $2 WHERE id = $1 AND viewed_at IS NULL`, id, at)
	return err
}

// List retrieves tickets in the given scope, newest first.
func (r *TicketRepository) List(ctx context.Context, params ports.ListTicketsRepoParams) ([]*domain.Ticket, error) {
	where, args := ticketFilter(params)
	args = append(args, params.Limit, params.Offset)

	query := fmt.Sprintf("%s%s ORDER BY t.created_at DESC, t.id DESC LIMIT $%d OFFSET $%d",
		ticketSelect, where, len(args)-1, len(args))

	rows, err := GetDBTX(ctx, r.pool).Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tickets := make([]*domain.Ticket, 0)
	for rows.Next() {
		ticket, err := scanTicket(rows)
		if err != nil {
			return nil, err
		}
		tickets = append(tickets, ticket)
	}
	return tickets, rows.Err()
}

// ticketFilter renders the WHERE clause of a listing. Location scoping
// mirrors AdminLocation.Covers: tickets without a location stay visible,
// and an assignment without labs covers the whole floor.
func ticketFilter(params ports.ListTicketsRepoParams) (string, []interface{}) {
	var (
		conds []string
		args  []interface{}
	)
	arg := func(v interface{}) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if params.Scope.ToDepartmentID != nil {
		conds = append(conds, "t.to_department_id = "+arg(*params.Scope.ToDepartmentID))
	}
	if params.Scope.RequesterID != nil {
		conds = append(conds, "t.requester_id = "+arg(*params.Scope.RequesterID))
	}
	if params.Status != nil {
		conds = append(conds, "t.status = "+arg(string(*params.Status)))
	}

	var covers []string
	for _, loc := range params.Scope.Locations {
		if !loc.IsDefined() {
			continue
		}
		labs := make([]string, 0, len(loc.Labs))
		for _, lab := range loc.Labs {
			labs = append(labs, strings.ToLower(lab))
		}
		building, floor, labsParam := arg(loc.BuildingID), arg(*loc.Floor), arg(labs)
		covers = append(covers, fmt.Sprintf(
			"(t.building_id = %s AND t.floor = %s AND (cardinality(%s::text[]) = 0 OR COALESCE(t.lab, '') = '' OR LOWER(t.lab) = ANY(%s::text[])))",
			building, floor, labsParam, labsParam,
		))
	}
	if len(covers) > 0 {
		conds = append(conds, "(t.building_id IS NULL OR "+strings.Join(covers, " OR ")+")")
	}

	if len(conds) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}
