package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/lorrc/helpdesk-portal/internal/core/errors"
)

// EventSchemaVersion is the wire schema version of Event.
const EventSchemaVersion = 1

// EventType defines the type of real-time event.
type EventType string

const (
	EventNewTicket     EventType = "new-ticket"
	EventNewComment    EventType = "new-comment"
	EventTicketRevoked EventType = "ticket-revoked"
	EventStatusUpdate  EventType = "status-update"
	EventTicketUpdated EventType = "ticket-updated"
)

// AllEventTypes lists the closed event taxonomy.
var AllEventTypes = []EventType{
	EventNewTicket,
	EventNewComment,
	EventTicketRevoked,
	EventStatusUpdate,
	EventTicketUpdated,
}

// IsValid checks if the event type belongs to the taxonomy.
func (t EventType) IsValid() bool {
	switch t {
	case EventNewTicket, EventNewComment, EventTicketRevoked, EventStatusUpdate, EventTicketUpdated:
		return true
	}
	return false
}

// Title is the notification title shown to the client for the event type.
func (t EventType) Title() string {
	switch t {
	case EventNewTicket:
		return "New Ticket Raised"
	case EventNewComment:
		return "New Comment"
	case EventTicketRevoked:
		return "Ticket Revoked"
	case EventStatusUpdate:
		return "Status Updated"
	case EventTicketUpdated:
		return "Ticket Updated"
	}
	return ""
}

// EventPayload is implemented by the per-type payload structs.
type EventPayload interface {
	EventType() EventType
	Validate() error
	// Summary renders the one-line notification text.
	Summary() string
}

// Event is the envelope persisted in the outbox and sent over WebSocket.
type Event struct {
	ID        int64           `json:"id"`
	Version   int             `json:"version"`
	Type      EventType       `json:"type"`
	TicketID  int64           `json:"ticketId"`
	Payload   json.RawMessage `json:"payload"`
	ActorID   *uuid.UUID      `json:"actorId,omitempty"`
	CreatedAt time.Time       `json:"createdAt"`

	// Rooms is the fan-out target computed by the dispatcher. It never
	// leaves the server.
	Rooms []string `json:"-"`
}

// NewEvent validates the payload and wraps it in a versioned envelope.
func NewEvent(ticketID int64, actorID *uuid.UUID, payload EventPayload) (*Event, error) {
	if err := payload.Validate(); err != nil {
		return nil, err
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal %s payload: %w", payload.EventType(), err)
	}

	return &Event{
		Version:   EventSchemaVersion,
		Type:      payload.EventType(),
		TicketID:  ticketID,
		Payload:   data,
		ActorID:   actorID,
		CreatedAt: time.Now().UTC(),
	}, nil
}

// DecodeEvent parses and validates an event received from the wire. Any
// error wraps apperrors.ErrMalformedEvent.
func DecodeEvent(data []byte) (*Event, EventPayload, error) {
	var evt Event
	if err := json.Unmarshal(data, &evt); err != nil {
		return nil, nil, fmt.Errorf("%w: %v", apperrors.ErrMalformedEvent, err)
	}

	payload, err := evt.DecodePayload()
	if err != nil {
		return nil, nil, err
	}
	return &evt, payload, nil
}

// DecodePayload validates the envelope and decodes the typed payload.
func (e *Event) DecodePayload() (EventPayload, error) {
	if e.Version != EventSchemaVersion {
		return nil, fmt.Errorf("%w: %w %d", apperrors.ErrMalformedEvent, apperrors.ErrUnsupportedEventVersion, e.Version)
	}

	var payload EventPayload
	switch e.Type {
	case EventNewTicket:
		payload = &NewTicketPayload{}
	case EventNewComment:
		payload = &NewCommentPayload{}
	case EventTicketRevoked:
		payload = &TicketRevokedPayload{}
	case EventStatusUpdate:
		payload = &StatusUpdatePayload{}
	case EventTicketUpdated:
		payload = &TicketUpdatedPayload{}
	default:
		return nil, fmt.Errorf("%w: %w %q", apperrors.ErrMalformedEvent, apperrors.ErrUnknownEventType, e.Type)
	}

	if len(e.Payload) == 0 {
		return nil, fmt.Errorf("%w: missing payload", apperrors.ErrMalformedEvent)
	}

	dec := json.NewDecoder(bytes.NewReader(e.Payload))
	dec.DisallowUnknownFields()
	if err := dec.Decode(payload); err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrMalformedEvent, err)
	}
	if err := payload.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrMalformedEvent, err)
	}
	return payload, nil
}
