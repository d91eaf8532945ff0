package client

import (
	"context"
	"log/slog"
	"slices"
	"sync"

	"github.com/google/uuid"

	"github.com/lorrc/helpdesk-portal/internal/client/notifications"
	"github.com/lorrc/helpdesk-portal/internal/core/domain"
)

// Alerter surfaces a new notification to the user, for example a bell and
// a toast line. Errors are logged and otherwise ignored.
type Alerter interface {
	Alert(n notifications.Notification) error
}

// AlerterFunc adapts a function to Alerter.
type AlerterFunc func(n notifications.Notification) error

func (f AlerterFunc) Alert(n notifications.Notification) error { return f(n) }

// Receiver validates frames from the realtime channel and records each
// event in the notification store.
type Receiver struct {
	store   *notifications.Store
	alerter Alerter
	logger  *slog.Logger

	mu        sync.RWMutex
	locations []domain.AdminLocation
}

// NewReceiver creates a receiver. alerter may be nil.
func NewReceiver(store *notifications.Store, alerter Alerter, logger *slog.Logger) *Receiver {
	return &Receiver{
		store:   store,
		alerter: alerter,
		logger:  logger.With("component", "receiver"),
	}
}

// SetLocations limits new-ticket notifications to the given assignments.
// Rooms only narrow delivery to building and floor, so labs are filtered
// here. An empty list accepts every ticket.
func (r *Receiver) SetLocations(locations []domain.AdminLocation) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.locations = slices.Clone(locations)
}

// inScope reports whether a decoded event concerns one of the assigned
// locations. Tickets without a location are always in scope.
func (r *Receiver) inScope(payload domain.EventPayload) bool {
	p, ok := payload.(*domain.NewTicketPayload)
	if !ok || p.Location == nil {
		return true
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	if len(r.locations) == 0 {
		return true
	}
	building, err := uuid.Parse(p.Location.BuildingID)
	if err != nil {
		return false
	}
	loc := domain.TicketLocation{BuildingID: building, Floor: p.Location.Floor, Lab: p.Location.Lab}
	for _, assigned := range r.locations {
		if assigned.Covers(loc) {
			return true
		}
	}
	return false
}

// Handle processes one frame. Malformed events are logged and dropped; it
// never returns an error so one bad frame cannot end the session.
func (r *Receiver) Handle(ctx context.Context, frame []byte) {
	evt, payload, err := domain.DecodeEvent(frame)
	if err != nil {
		r.logger.WarnContext(ctx, "dropping malformed event", "error", err, "size", len(frame))
		return
	}
	if !r.inScope(payload) {
		r.logger.DebugContext(ctx, "ignoring ticket outside assigned locations", "event_id", evt.ID, "ticket_id", evt.TicketID)
		return
	}

	n, err := r.store.Add(ctx, notifications.FromEvent(evt, payload))
	if err != nil {
		r.logger.WarnContext(ctx, "notification not persisted", "event_id", evt.ID, "error", err)
	}

	if r.alerter == nil {
		return
	}
	if err := r.alerter.Alert(n); err != nil {
		r.logger.DebugContext(ctx, "alert failed", "error", err)
	}
}
