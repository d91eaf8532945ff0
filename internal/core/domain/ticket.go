package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/lorrc/helpdesk-portal/internal/core/errors"
)

// Validation constants
const (
	MaxTitleLength       = 255
	MaxDescriptionLength = 10000
	MaxLabLength         = 64
)

// TicketStatus represents the possible states of a ticket.
type TicketStatus string

const (
	StatusPending    TicketStatus = "pending"
	StatusInProgress TicketStatus = "in_progress"
	StatusResolved   TicketStatus = "resolved"
	StatusRevoked    TicketStatus = "revoked"
)

// AllStatuses lists every ticket status in lifecycle order.
var AllStatuses = []TicketStatus{StatusPending, StatusInProgress, StatusResolved, StatusRevoked}

// IsValid checks if the status is a known value.
func (s TicketStatus) IsValid() bool {
	switch s {
	case StatusPending, StatusInProgress, StatusResolved, StatusRevoked:
		return true
	}
	return false
}

// IsTerminal reports whether no further status mutation is possible.
func (s TicketStatus) IsTerminal() bool {
	return s == StatusResolved || s == StatusRevoked
}

// TicketPriority represents the urgency of a ticket. Priority is optional.
type TicketPriority string

const (
	PriorityNone   TicketPriority = ""
	PriorityLow    TicketPriority = "low"
	PriorityMedium TicketPriority = "medium"
	PriorityHigh   TicketPriority = "high"
)

// IsValid checks if the priority is a known, non-empty value.
func (p TicketPriority) IsValid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

// TicketLocation pins a ticket to a building floor and, optionally, a lab.
type TicketLocation struct {
	BuildingID   uuid.UUID
	BuildingName string
	Floor        int
	Lab          string
}

// Ticket is the core domain entity.
type Ticket struct {
	ID                 int64
	Code               string
	Title              string
	Description        string
	Priority           TicketPriority
	Status             TicketStatus
	FromDepartmentID   uuid.UUID
	FromDepartmentName string
	ToDepartmentID     uuid.UUID
	ToDepartmentName   string
	Requester          UserInfo
	AssignedTo         *uuid.UUID
	AssignedToName     string
	Location           *TicketLocation
	Attachment         string
	ViewedAt           *time.Time
	CreatedAt          time.Time
	UpdatedAt          *time.Time
	ResolvedAt         *time.Time
}

// TicketParams holds parameters for creating a new ticket
type TicketParams struct {
	Title            string
	Description      string
	Priority         TicketPriority
	Requester        UserInfo
	FromDepartmentID uuid.UUID
	ToDepartmentID   uuid.UUID
	Location         *TicketLocation
	Attachment       string
}

// Validate validates ticket creation parameters
func (p *TicketParams) Validate() error {
	errs := apperrors.NewValidationErrors()

	if p.Title == "" {
		errs.Add("title", "Title is required")
	} else if len(p.Title) > MaxTitleLength {
		errs.Add("title", "Title must be 255 characters or less")
	}

	if len(p.Description) > MaxDescriptionLength {
		errs.Add("description", "Description must be 10000 characters or less")
	}

	if p.Priority != PriorityNone && !p.Priority.IsValid() {
		errs.Add("priority", "Priority must be low, medium, or high")
	}

	if p.Requester.ID == uuid.Nil {
		errs.Add("requesterId", "Requester ID is required")
	}

	if p.ToDepartmentID == uuid.Nil {
		errs.Add("toDepartmentId", "Target department is required")
	}

	if p.Location != nil {
		if p.Location.BuildingID == uuid.Nil {
			errs.Add("buildingId", "Building is required when a location is given")
		}
		if p.Location.Floor < 0 {
			errs.Add("floor", "Floor cannot be negative")
		}
		if len(p.Location.Lab) > MaxLabLength {
			errs.Add("lab", "Lab must be 64 characters or less")
		}
	}

	if p.Attachment != "" && !IsSafeAttachmentName(p.Attachment) {
		errs.Add("attachment", "Invalid attachment name")
	}

	if errs.HasErrors() {
		return errs
	}
	return nil
}

// NewTicket is a factory function to create a valid new ticket.
// Every ticket starts out pending.
func NewTicket(params TicketParams) (*Ticket, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}

	fromDepartment := params.FromDepartmentID
	if fromDepartment == uuid.Nil && params.Requester.DepartmentID != nil {
		fromDepartment = *params.Requester.DepartmentID
	}

	return &Ticket{
		Title:            params.Title,
		Description:      params.Description,
		Priority:         params.Priority,
		Status:           StatusPending,
		FromDepartmentID: fromDepartment,
		ToDepartmentID:   params.ToDepartmentID,
		Requester:        params.Requester,
		Location:         params.Location,
		Attachment:       params.Attachment,
		CreatedAt:        time.Now().UTC(),
	}, nil
}

// FormatTicketCode builds the human-readable ticket code, e.g. TKT-2026-00042.
func FormatTicketCode(id int64, createdAt time.Time) string {
	return fmt.Sprintf("TKT-%d-%05d", createdAt.Year(), id)
}

// Claim moves a pending ticket to in_progress and binds it to the admin.
func (t *Ticket) Claim(adminID uuid.UUID) error {
	if t.Status != StatusPending {
		return apperrors.ErrInvalidStatusTransition
	}
	t.Status = StatusInProgress
	t.AssignedTo = &adminID
	t.touch()
	return nil
}

// Unclaim returns an in_progress ticket to the pending queue.
func (t *Ticket) Unclaim() error {
	if t.Status != StatusInProgress {
		return apperrors.ErrInvalidStatusTransition
	}
	t.Status = StatusPending
	t.AssignedTo = nil
	t.AssignedToName = ""
	t.touch()
	return nil
}

// Resolve closes an in_progress ticket.
func (t *Ticket) Resolve() error {
	if t.Status != StatusInProgress {
		return apperrors.ErrInvalidStatusTransition
	}
	t.Status = StatusResolved
	t.touch()
	t.ResolvedAt = t.UpdatedAt
	return nil
}

// Revoke cancels a ticket on behalf of its requester.
func (t *Ticket) Revoke() error {
	if t.Status != StatusPending && t.Status != StatusInProgress {
		return apperrors.ErrInvalidStatusTransition
	}
	t.Status = StatusRevoked
	t.touch()
	return nil
}

// CanAcceptComment reports whether the ticket still takes comments.
// Resolved tickets accept closing remarks; revoked tickets are frozen.
func (t *Ticket) CanAcceptComment() error {
	if t.Status == StatusRevoked {
		return apperrors.ErrTicketRevoked
	}
	return nil
}

// EditDetails changes the requester-editable fields of a pending ticket.
func (t *Ticket) EditDetails(description *string, priority *TicketPriority) error {
	if t.Status != StatusPending {
		return apperrors.ErrTicketNotEditable
	}

	errs := apperrors.NewValidationErrors()
	if description != nil && len(*description) > MaxDescriptionLength {
		errs.Add("description", "Description must be 10000 characters or less")
	}
	if priority != nil && *priority != PriorityNone && !priority.IsValid() {
		errs.Add("priority", "Priority must be low, medium, or high")
	}
	if errs.HasErrors() {
		return errs
	}

	if description != nil {
		t.Description = *description
	}
	if priority != nil {
		t.Priority = *priority
	}
	t.touch()
	return nil
}

// MarkViewed records the first time an admin opened the ticket.
func (t *Ticket) MarkViewed(at time.Time) bool {
	if t.ViewedAt != nil {
		return false
	}
	viewed := at.UTC()
	t.ViewedAt = &viewed
	return true
}

// IsRequestedBy checks if the given user raised the ticket
func (t *Ticket) IsRequestedBy(userID uuid.UUID) bool {
	return t.Requester.ID == userID
}

// IsAssignedTo checks if the ticket is claimed by the given admin
func (t *Ticket) IsAssignedTo(userID uuid.UUID) bool {
	return t.AssignedTo != nil && *t.AssignedTo == userID
}

func (t *Ticket) touch() {
	now := time.Now().UTC()
	t.UpdatedAt = &now
}
