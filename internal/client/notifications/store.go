// Package notifications keeps the client-side list of notifications raised
// by realtime ticket events.
package notifications

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/lorrc/helpdesk-portal/internal/core/domain"
	"github.com/lorrc/helpdesk-portal/internal/core/ports"
)

const (
	// Namespace is the KV namespace holding the persisted list.
	Namespace = "notifications"

	// Capacity bounds the list; the oldest entries are evicted first.
	Capacity = 50
)

// Notification is the client-local projection of a ticket event.
type Notification struct {
	ID        string           `json:"id"`
	Type      domain.EventType `json:"type"`
	Title     string           `json:"title"`
	Message   string           `json:"message"`
	TicketID  *int64           `json:"ticketId,omitempty"`
	Read      bool             `json:"read"`
	Timestamp time.Time        `json:"timestamp"`
}

// FromEvent builds an unread notification for a decoded event.
func FromEvent(evt *domain.Event, payload domain.EventPayload) Notification {
	n := Notification{
		Type:      evt.Type,
		Title:     evt.Type.Title(),
		Message:   payload.Summary(),
		Timestamp: evt.CreatedAt,
	}
	if evt.TicketID > 0 {
		id := evt.TicketID
		n.TicketID = &id
	}
	return n
}

// Store is an ordered, capacity-bound notification list, newest first.
// Every mutation writes the whole list to the KV store. The unread count is
// always derived from the list so it cannot drift from it.
type Store struct {
	mu     sync.Mutex
	kv     ports.KVStore
	items  []Notification
	unread int
	now    func() time.Time
	newID  func() string
	logger *slog.Logger
}

// Open rehydrates the store from kv. A corrupt persisted list is logged and
// discarded rather than failing the session.
func Open(ctx context.Context, kv ports.KVStore, logger *slog.Logger) (*Store, error) {
	s := &Store{
		kv:     kv,
		items:  make([]Notification, 0, Capacity),
		now:    time.Now,
		newID:  newID,
		logger: logger.With("component", "notification_store"),
	}

	data, ok, err := kv.Get(ctx, Namespace)
	if err != nil {
		return nil, fmt.Errorf("load notifications: %w", err)
	}
	if !ok {
		return s, nil
	}

	var items []Notification
	if err := json.Unmarshal(data, &items); err != nil {
		s.logger.Warn("discarding unreadable notification list", "error", err)
		return s, nil
	}
	if len(items) > Capacity {
		items = items[:Capacity]
	}
	s.items = append(s.items, items...)
	s.recount()
	return s, nil
}

// newID returns a time-ordered identifier.
func newID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

// Add prepends n as unread and evicts beyond Capacity. ID and Timestamp
// are filled in when empty.
func (s *Store) Add(ctx context.Context, n Notification) (Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if n.ID == "" {
		n.ID = s.newID()
	}
	if n.Timestamp.IsZero() {
		n.Timestamp = s.now().UTC()
	}
	n.Read = false

	items := make([]Notification, 0, Capacity)
	items = append(items, n)
	items = append(items, s.items...)
	if len(items) > Capacity {
		items = items[:Capacity]
	}
	s.items = items
	s.recount()

	return n, s.persist(ctx)
}

// MarkRead marks one entry read. Unknown or already-read ids are a no-op.
func (s *Store) MarkRead(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.items {
		if s.items[i].ID != id {
			continue
		}
		if s.items[i].Read {
			return nil
		}
		s.items[i].Read = true
		s.recount()
		return s.persist(ctx)
	}
	return nil
}

// MarkAllRead marks every entry read.
func (s *Store) MarkAllRead(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.items {
		s.items[i].Read = true
	}
	s.unread = 0
	return s.persist(ctx)
}

// Remove deletes one entry. Unknown ids are a no-op.
func (s *Store) Remove(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.items {
		if s.items[i].ID == id {
			s.items = append(s.items[:i], s.items[i+1:]...)
			s.recount()
			return s.persist(ctx)
		}
	}
	return nil
}

// ClearAll empties the list.
func (s *Store) ClearAll(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.items = s.items[:0]
	s.unread = 0
	return s.persist(ctx)
}

// List returns a copy of the entries, newest first.
func (s *Store) List() []Notification {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Notification, len(s.items))
	copy(out, s.items)
	return out
}

// UnreadCount returns the number of unread entries.
func (s *Store) UnreadCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.unread
}

func (s *Store) recount() {
	unread := 0
	for _, n := range s.items {
		if !n.Read {
			unread++
		}
	}
	s.unread = unread
}

// persist writes the full list. The in-memory state is kept even when the
// write fails; the next successful mutation overwrites the stale copy.
func (s *Store) persist(ctx context.Context) error {
	data, err := json.Marshal(s.items)
	if err != nil {
		return fmt.Errorf("encode notifications: %w", err)
	}
	if err := s.kv.Set(ctx, Namespace, data); err != nil {
		return fmt.Errorf("persist notifications: %w", err)
	}
	return nil
}
