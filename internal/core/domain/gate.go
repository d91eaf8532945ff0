package domain

import (
	"fmt"

	"github.com/google/uuid"

	apperrors "github.com/lorrc/helpdesk-portal/internal/core/errors"
)

// Action is a ticket mutation requested by an actor.
type Action string

const (
	ActionClaim        Action = "claim"
	ActionUnclaim      Action = "unclaim"
	ActionChangeStatus Action = "change-status"
	ActionAddComment   Action = "add-comment"
	ActionRevoke       Action = "revoke"
)

// DenyReason explains why the gate refused an action.
type DenyReason string

const (
	ReasonNone              DenyReason = ""
	ReasonNotAssigned       DenyReason = "NotAssigned"
	ReasonAlreadyClaimed    DenyReason = "AlreadyClaimed"
	ReasonTerminalState     DenyReason = "TerminalState"
	ReasonNotRequester      DenyReason = "NotRequester"
	ReasonUnsupportedAction DenyReason = "UnsupportedAction"
)

// GateInput is everything the gate needs to decide. It deliberately holds
// no reference to the ticket so the decision stays a pure function.
type GateInput struct {
	Status      TicketStatus
	AssignedTo  *uuid.UUID
	RequesterID uuid.UUID
	Actor       uuid.UUID
	Action      Action
}

// GateInputFor builds the gate input for an actor acting on a ticket.
func GateInputFor(t *Ticket, actor uuid.UUID, action Action) GateInput {
	return GateInput{
		Status:      t.Status,
		AssignedTo:  t.AssignedTo,
		RequesterID: t.Requester.ID,
		Actor:       actor,
		Action:      action,
	}
}

// Decision is the gate's verdict.
type Decision struct {
	Allowed bool
	Reason  DenyReason
}

func allow() Decision {
	return Decision{Allowed: true}
}

func deny(reason DenyReason) Decision {
	return Decision{Reason: reason}
}

// Err converts a denial into a *DenialError. Allowed decisions return nil.
func (d Decision) Err(action Action) error {
	if d.Allowed {
		return nil
	}
	return &DenialError{Action: action, Reason: d.Reason}
}

// Authorize decides whether the actor may perform the action.
//
//	claim          status = pending
//	change-status  status = in_progress and actor = assigned_to
//	unclaim        status = in_progress and actor = assigned_to
//	add-comment    status != revoked and, when in_progress, actor is assigned_to or requester
//	revoke         status is pending or in_progress and actor = requester
func Authorize(in GateInput) Decision {
	assigned := in.AssignedTo != nil && *in.AssignedTo == in.Actor
	requester := in.RequesterID != uuid.Nil && in.RequesterID == in.Actor

	switch in.Action {
	case ActionClaim:
		switch in.Status {
		case StatusPending:
			return allow()
		case StatusInProgress:
			return deny(ReasonAlreadyClaimed)
		default:
			return deny(ReasonTerminalState)
		}

	case ActionChangeStatus, ActionUnclaim:
		if in.Status.IsTerminal() {
			return deny(ReasonTerminalState)
		}
		if in.Status != StatusInProgress || !assigned {
			return deny(ReasonNotAssigned)
		}
		return allow()

	case ActionAddComment:
		switch in.Status {
		case StatusRevoked:
			return deny(ReasonTerminalState)
		case StatusInProgress:
			if assigned || requester {
				return allow()
			}
			return deny(ReasonNotAssigned)
		case StatusPending, StatusResolved:
			return allow()
		default:
			return deny(ReasonTerminalState)
		}

	case ActionRevoke:
		if in.Status.IsTerminal() {
			return deny(ReasonTerminalState)
		}
		if !requester {
			return deny(ReasonNotRequester)
		}
		return allow()
	}

	return deny(ReasonUnsupportedAction)
}

// DenialError reports a gate refusal. It matches apperrors.ErrForbidden
// under errors.Is.
type DenialError struct {
	Action Action
	Reason DenyReason
}

func (e *DenialError) Error() string {
	return fmt.Sprintf("%s denied: %s", e.Action, e.Reason)
}

func (e *DenialError) Unwrap() error {
	return apperrors.ErrForbidden
}

// Message is the human-readable form shown to the caller.
func (e *DenialError) Message() string {
	switch e.Reason {
	case ReasonNotAssigned:
		return "Only the admin who claimed this ticket can do that"
	case ReasonAlreadyClaimed:
		return "This ticket has already been claimed"
	case ReasonTerminalState:
		return "This ticket is closed and can no longer be changed"
	case ReasonNotRequester:
		return "Only the requester can revoke this ticket"
	default:
		return "This action is not allowed"
	}
}
