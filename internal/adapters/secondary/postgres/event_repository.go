package postgres

import (
	"context"
	"encoding/json"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lorrc/helpdesk-portal/internal/core/domain"
	"github.com/lorrc/helpdesk-portal/internal/core/ports"
	"github.com/lorrc/helpdesk-portal/internal/core/utils"
)

// TicketEventRepository is the outbox of emitted ticket events. Rows are
// written in the same transaction as the mutation they describe.
type TicketEventRepository struct {
	pool *pgxpool.Pool
}

var _ ports.TicketEventRepository = (*TicketEventRepository)(nil)

// NewTicketEventRepository creates a new ticket event repository.
func NewTicketEventRepository(pool *pgxpool.Pool) ports.TicketEventRepository {
	return &TicketEventRepository{pool: pool}
}

const eventColumns = `id, version, ticket_id, type, payload, actor_id, created_at`

func scanEvent(row pgx.CollectableRow) (*domain.Event, error) {
	var (
		evt     domain.Event
		evtType string
		payload []byte
		actorID pgtype.UUID
	)
	if err := row.Scan(&evt.ID, &evt.Version, &evt.TicketID, &evtType, &payload, &actorID, &evt.CreatedAt); err != nil {
		return nil, err
	}
	evt.Type = domain.EventType(evtType)
	evt.Payload = json.RawMessage(payload)
	evt.ActorID = utils.FromNullUUID(actorID)
	return &evt, nil
}

// Create persists a new ticket event.
func (r *TicketEventRepository) Create(ctx context.Context, event *domain.Event) (*domain.Event, error) {
	query := `
INSERT INTO ticket_events (version, ticket_id, type, payload, actor_id, created_at)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING ` + eventColumns

	rows, err := GetDBTX(ctx, r.pool).Query(ctx, query,
		event.Version,
		event.TicketID,
		string(event.Type),
		[]byte(event.Payload),
		utils.ToNullUUID(event.ActorID),
		event.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return pgx.CollectExactlyOneRow(rows, scanEvent)
}

// ListByTicketID retrieves events for a ticket after a cursor.
func (r *TicketEventRepository) ListByTicketID(ctx context.Context, ticketID int64, afterID int64, limit int) ([]*domain.Event, error) {
	query := `SELECT ` + eventColumns + `
FROM ticket_events
WHERE ticket_id = $1 AND id > $2
ORDER BY id
LIMIT $3`

	rows, err := GetDBTX(ctx, r.pool).Query(ctx, query, ticketID, afterID, limit)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, scanEvent)
}
