package domain

import (
	"fmt"
	"time"

	apperrors "github.com/lorrc/helpdesk-portal/internal/core/errors"
)

// PayloadLocation is the wire form of a ticket location.
type PayloadLocation struct {
	BuildingID string `json:"buildingId"`
	Floor      int    `json:"floor"`
	Lab        string `json:"lab,omitempty"`
}

// NewTicketPayload announces a freshly raised ticket.
type NewTicketPayload struct {
	TicketID int64            `json:"ticketId"`
	Code     string           `json:"code,omitempty"`
	Title    string           `json:"title"`
	Priority TicketPriority   `json:"priority"`
	From     string           `json:"from"`
	RaisedAt time.Time        `json:"raisedAt"`
	Location *PayloadLocation `json:"location,omitempty"`
}

func (p *NewTicketPayload) EventType() EventType { return EventNewTicket }

func (p *NewTicketPayload) Validate() error {
	errs := requireTicket(p.TicketID, p.Title)
	if p.Priority != PriorityNone && !p.Priority.IsValid() {
		errs.Add("priority", "invalid priority")
	}
	if p.From == "" {
		errs.Add("from", "required")
	}
	if p.RaisedAt.IsZero() {
		errs.Add("raisedAt", "required")
	}
	return errsOrNil(errs)
}

func (p *NewTicketPayload) Summary() string {
	return fmt.Sprintf("%s raised %q", p.From, p.Title)
}

// NewCommentPayload announces a comment. EmployeeName is set only when the
// requester wrote the comment.
type NewCommentPayload struct {
	TicketID     int64  `json:"ticketId"`
	Title        string `json:"title"`
	EmployeeName string `json:"employeeName,omitempty"`
	ByAdmin      bool   `json:"byAdmin"`
}

func (p *NewCommentPayload) EventType() EventType { return EventNewComment }

func (p *NewCommentPayload) Validate() error {
	return errsOrNil(requireTicket(p.TicketID, p.Title))
}

func (p *NewCommentPayload) Summary() string {
	if p.ByAdmin {
		return fmt.Sprintf("An admin replied on %q", p.Title)
	}
	if p.EmployeeName != "" {
		return fmt.Sprintf("%s commented on %q", p.EmployeeName, p.Title)
	}
	return fmt.Sprintf("New comment on %q", p.Title)
}

// TicketRevokedPayload announces a requester cancelling a ticket.
type TicketRevokedPayload struct {
	TicketID int64  `json:"ticketId"`
	Title    string `json:"title"`
	Message  string `json:"message,omitempty"`
}

func (p *TicketRevokedPayload) EventType() EventType { return EventTicketRevoked }

func (p *TicketRevokedPayload) Validate() error {
	return errsOrNil(requireTicket(p.TicketID, p.Title))
}

func (p *TicketRevokedPayload) Summary() string {
	if p.Message != "" {
		return p.Message
	}
	return fmt.Sprintf("%q was revoked by the requester", p.Title)
}

// StatusUpdatePayload announces a status transition.
type StatusUpdatePayload struct {
	TicketID int64        `json:"ticketId"`
	Title    string       `json:"title"`
	Status   TicketStatus `json:"status"`
}

func (p *StatusUpdatePayload) EventType() EventType { return EventStatusUpdate }

func (p *StatusUpdatePayload) Validate() error {
	errs := requireTicket(p.TicketID, p.Title)
	if !p.Status.IsValid() {
		errs.Add("status", "invalid status")
	}
	return errsOrNil(errs)
}

func (p *StatusUpdatePayload) Summary() string {
	return fmt.Sprintf("%q is now %s", p.Title, p.Status)
}

// TicketUpdatedPayload announces an edit of ticket details.
type TicketUpdatedPayload struct {
	TicketID int64  `json:"ticketId"`
	Title    string `json:"title"`
}

func (p *TicketUpdatedPayload) EventType() EventType { return EventTicketUpdated }

func (p *TicketUpdatedPayload) Validate() error {
	return errsOrNil(requireTicket(p.TicketID, p.Title))
}

func (p *TicketUpdatedPayload) Summary() string {
	return fmt.Sprintf("%q was updated", p.Title)
}

func requireTicket(ticketID int64, title string) *apperrors.ValidationErrors {
	errs := apperrors.NewValidationErrors()
	if ticketID <= 0 {
		errs.Add("ticketId", "required")
	}
	if title == "" {
		errs.Add("title", "required")
	}
	return errs
}

func errsOrNil(errs *apperrors.ValidationErrors) error {
	if errs.HasErrors() {
		return errs
	}
	return nil
}
