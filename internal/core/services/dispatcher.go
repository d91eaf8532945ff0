package services

import (
	"log/slog"

	"github.com/lorrc/helpdesk-portal/internal/core/domain"
	"github.com/lorrc/helpdesk-portal/internal/core/ports"
)

// Dispatcher routes committed events to rooms using the same key scheme
// sessions subscribe with.
type Dispatcher struct {
	broadcaster ports.EventBroadcaster
	logger      *slog.Logger
}

var _ ports.EventDispatcher = (*Dispatcher)(nil)

// NewDispatcher creates an event dispatcher over the broadcaster.
func NewDispatcher(broadcaster ports.EventBroadcaster, logger *slog.Logger) ports.EventDispatcher {
	return &Dispatcher{
		broadcaster: broadcaster,
		logger:      logger.With("component", "dispatcher"),
	}
}

// Dispatch fills event.Rooms and hands the event to the broadcaster.
// Delivery failures are logged; the mutation has already committed.
func (d *Dispatcher) Dispatch(ticket *domain.Ticket, event *domain.Event) {
	if ticket == nil || event == nil {
		return
	}

	event.Rooms = EventRooms(ticket, event)
	if len(event.Rooms) == 0 {
		return
	}

	if err := d.broadcaster.Broadcast(*event); err != nil {
		d.logger.Warn("event broadcast failed",
			"event_type", event.Type,
			"ticket_id", event.TicketID,
			"error", err,
		)
	}
}

// EventRooms computes the rooms an event fans out to.
//
//	new-ticket, ticket-revoked, ticket-updated  department and location rooms
//	status-update                               those plus the requester
//	new-comment                                 requester comments reach the department,
//	                                            admin replies reach the requester
func EventRooms(ticket *domain.Ticket, event *domain.Event) []string {
	switch event.Type {
	case domain.EventNewTicket, domain.EventTicketRevoked, domain.EventTicketUpdated:
		return domain.TicketRooms(ticket)
	case domain.EventStatusUpdate:
		return append(domain.TicketRooms(ticket), domain.UserRoom(ticket.Requester.ID))
	case domain.EventNewComment:
		if event.ActorID != nil && ticket.IsRequestedBy(*event.ActorID) {
			return domain.TicketRooms(ticket)
		}
		return []string{domain.UserRoom(ticket.Requester.ID)}
	}
	return nil
}
