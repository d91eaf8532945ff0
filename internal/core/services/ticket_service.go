package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/lorrc/helpdesk-portal/internal/core/domain"
	apperrors "github.com/lorrc/helpdesk-portal/internal/core/errors"
	"github.com/lorrc/helpdesk-portal/internal/core/ports"
)

// TicketService implements business logic for ticket management
type TicketService struct {
	ticketRepo   ports.TicketRepository
	eventRepo    ports.TicketEventRepository
	userRepo     ports.UserRepository
	deptRepo     ports.DepartmentRepository
	buildingRepo ports.BuildingRepository
	authzSvc     ports.AuthorizationService
	txManager    ports.TransactionManager
	dispatcher   ports.EventDispatcher
	notifier     ports.Notifier
	wg           sync.WaitGroup
}

var _ ports.TicketService = (*TicketService)(nil)

// TicketServiceDeps groups the collaborators of the ticket service.
type TicketServiceDeps struct {
	TicketRepo   ports.TicketRepository
	EventRepo    ports.TicketEventRepository
	UserRepo     ports.UserRepository
	DeptRepo     ports.DepartmentRepository
	BuildingRepo ports.BuildingRepository
	AuthzSvc     ports.AuthorizationService
	TxManager    ports.TransactionManager
	Dispatcher   ports.EventDispatcher
	Notifier     ports.Notifier
}

// NewTicketService creates a new ticket service
func NewTicketService(deps TicketServiceDeps) ports.TicketService {
	return &TicketService{
		ticketRepo:   deps.TicketRepo,
		eventRepo:    deps.EventRepo,
		userRepo:     deps.UserRepo,
		deptRepo:     deps.DeptRepo,
		buildingRepo: deps.BuildingRepo,
		authzSvc:     deps.AuthzSvc,
		txManager:    deps.TxManager,
		dispatcher:   deps.Dispatcher,
		notifier:     deps.Notifier,
	}
}

// CreateTicket handles the use case for submitting a new ticket
func (s *TicketService) CreateTicket(ctx context.Context, params ports.CreateTicketParams) (*domain.Ticket, error) {
	// 1. Authorization Check
	canCreate, err := s.authzSvc.Can(ctx, params.ActorID, domain.PermTicketsCreate)
	if err != nil {
		return nil, err
	}
	if !canCreate {
		return nil, apperrors.ErrForbidden
	}

	requester, err := s.userRepo.GetByID(ctx, params.ActorID)
	if err != nil {
		return nil, err
	}

	toDept, err := s.deptRepo.GetByID(ctx, params.ToDepartmentID)
	if err != nil {
		return nil, err
	}

	location, err := s.resolveLocation(ctx, params.Location)
	if err != nil {
		return nil, err
	}

	// 2. Create domain entity with validation
	ticket, err := domain.NewTicket(domain.TicketParams{
		Title:          params.Title,
		Description:    params.Description,
		Priority:       params.Priority,
		Requester:      requester.Info(),
		ToDepartmentID: toDept.ID,
		Location:       location,
		Attachment:     params.Attachment,
	})
	if err != nil {
		return nil, err
	}

	// 3. Persist the ticket and its event atomically
	var (
		created *domain.Ticket
		event   *domain.Event
	)
	err = s.txManager.WithTransaction(ctx, func(ctx context.Context) error {
		created, err = s.ticketRepo.Create(ctx, ticket)
		if err != nil {
			return err
		}
		created.ToDepartmentName = toDept.Name

		from := requester.DepartmentName
		if from == "" {
			from = requester.FullName
		}
		payload := &domain.NewTicketPayload{
			TicketID: created.ID,
			Code:     created.Code,
			Title:    created.Title,
			Priority: created.Priority,
			From:     from,
			RaisedAt: created.CreatedAt,
			Location: payloadLocation(created.Location),
		}
		event, err = s.recordEvent(ctx, created.ID, params.ActorID, payload)
		return err
	})
	if err != nil {
		return nil, err
	}

	// 4. Fan out after commit
	s.dispatcher.Dispatch(created, event)
	return created, nil
}

// GetTicket retrieves a specific ticket with authorization
func (s *TicketService) GetTicket(ctx context.Context, ticketID int64, viewerID uuid.UUID) (*domain.Ticket, error) {
	viewer, err := s.userRepo.GetByID(ctx, viewerID)
	if err != nil {
		return nil, err
	}

	ticket, err := s.ticketRepo.GetByID(ctx, ticketID)
	if err != nil {
		return nil, err
	}

	if !canViewTicket(viewer, ticket) {
		return nil, apperrors.ErrForbidden
	}
	return ticket, nil
}

// ListTickets retrieves tickets based on the viewer's role
func (s *TicketService) ListTickets(ctx context.Context, params ports.ListTicketsParams) ([]*domain.Ticket, error) {
	viewer, err := s.userRepo.GetByID(ctx, params.ViewerID)
	if err != nil {
		return nil, err
	}

	scope, ok := ticketScopeFor(viewer)
	if !ok {
		return nil, apperrors.ErrForbidden
	}
	if params.Status != nil && !params.Status.IsValid() {
		return nil, apperrors.ErrInvalidStatus
	}

	limit, offset := clampPage(params.Limit, params.Offset)
	return s.ticketRepo.List(ctx, ports.ListTicketsRepoParams{
		Scope:  scope,
		Status: params.Status,
		Limit:  limit,
		Offset: offset,
	})
}

// MarkViewed records that a responsible admin opened the ticket.
func (s *TicketService) MarkViewed(ctx context.Context, params ports.TicketActionParams) error {
	actor, err := s.userRepo.GetByID(ctx, params.ActorID)
	if err != nil {
		return err
	}

	ticket, err := s.ticketRepo.GetByID(ctx, params.TicketID)
	if err != nil {
		return err
	}
	if !canWorkTicket(actor, ticket) {
		return apperrors.ErrForbidden
	}

	now := time.Now().UTC()
	if !ticket.MarkViewed(now) {
		return nil
	}
	return s.ticketRepo.MarkViewed(ctx, ticket.ID, now)
}

// Claim moves a pending ticket into the actor's hands.
func (s *TicketService) Claim(ctx context.Context, params ports.TicketActionParams) (*domain.Ticket, error) {
	return s.mutate(ctx, params.TicketID, params.ActorID, s.gate(domain.ActionClaim),
		func(t *domain.Ticket, actor *domain.User) (domain.EventPayload, error) {
			if err := t.Claim(actor.ID); err != nil {
				return nil, err
			}
			t.AssignedToName = actor.FullName
			return statusPayload(t), nil
		})
}

// Unclaim releases a claimed ticket back to the department queue.
func (s *TicketService) Unclaim(ctx context.Context, params ports.TicketActionParams) (*domain.Ticket, error) {
	return s.mutate(ctx, params.TicketID, params.ActorID, s.gate(domain.ActionUnclaim),
		func(t *domain.Ticket, _ *domain.User) (domain.EventPayload, error) {
			if err := t.Unclaim(); err != nil {
				return nil, err
			}
			return statusPayload(t), nil
		})
}

// Resolve closes a ticket on behalf of its assignee.
func (s *TicketService) Resolve(ctx context.Context, params ports.TicketActionParams) (*domain.Ticket, error) {
	return s.mutate(ctx, params.TicketID, params.ActorID, s.gate(domain.ActionChangeStatus),
		func(t *domain.Ticket, _ *domain.User) (domain.EventPayload, error) {
			if err := t.Resolve(); err != nil {
				return nil, err
			}
			return statusPayload(t), nil
		})
}

// Revoke cancels a ticket on behalf of its requester.
func (s *TicketService) Revoke(ctx context.Context, params ports.RevokeTicketParams) (*domain.Ticket, error) {
	return s.mutate(ctx, params.TicketID, params.ActorID, s.gate(domain.ActionRevoke),
		func(t *domain.Ticket, _ *domain.User) (domain.EventPayload, error) {
			if err := t.Revoke(); err != nil {
				return nil, err
			}
			return &domain.TicketRevokedPayload{
				TicketID: t.ID,
				Title:    t.Title,
				Message:  params.Reason,
			}, nil
		})
}

// UpdateStatus maps a requested target status onto the matching transition.
func (s *TicketService) UpdateStatus(ctx context.Context, params ports.UpdateStatusParams) (*domain.Ticket, error) {
	action := ports.TicketActionParams{TicketID: params.TicketID, ActorID: params.ActorID}

	switch params.Status {
	case domain.StatusInProgress:
		return s.Claim(ctx, action)
	case domain.StatusPending:
		return s.Unclaim(ctx, action)
	case domain.StatusResolved:
		return s.Resolve(ctx, action)
	case domain.StatusRevoked:
		return s.Revoke(ctx, ports.RevokeTicketParams{TicketID: params.TicketID, ActorID: params.ActorID})
	}
	return nil, apperrors.ErrInvalidStatus
}

// UpdateDetails lets the requester edit a ticket that nobody has claimed.
func (s *TicketService) UpdateDetails(ctx context.Context, params ports.UpdateTicketParams) (*domain.Ticket, error) {
	requesterOnly := func(t *domain.Ticket, actor *domain.User) error {
		if !t.IsRequestedBy(actor.ID) {
			return apperrors.ErrForbidden
		}
		return nil
	}

	return s.mutate(ctx, params.TicketID, params.ActorID, requesterOnly,
		func(t *domain.Ticket, _ *domain.User) (domain.EventPayload, error) {
			if err := t.EditDetails(params.Description, params.Priority); err != nil {
				return nil, err
			}
			return &domain.TicketUpdatedPayload{TicketID: t.ID, Title: t.Title}, nil
		})
}

type (
	ticketGuard    func(t *domain.Ticket, actor *domain.User) error
	ticketMutation func(t *domain.Ticket, actor *domain.User) (domain.EventPayload, error)
)

// gate combines visibility with the pure authorization gate. Work actions
// additionally require the actor to own the department queue.
func (s *TicketService) gate(action domain.Action) ticketGuard {
	return func(t *domain.Ticket, actor *domain.User) error {
		if !canViewTicket(actor, t) {
			return apperrors.ErrForbidden
		}
		switch action {
		case domain.ActionClaim, domain.ActionUnclaim, domain.ActionChangeStatus:
			if !canWorkTicket(actor, t) {
				return apperrors.ErrForbidden
			}
		}
		return domain.Authorize(domain.GateInputFor(t, actor.ID, action)).Err(action)
	}
}

// mutate locks the ticket, checks the guard, applies the change and writes
// the resulting event in one transaction. The event is dispatched only
// after commit, so a failed mutation never emits anything.
func (s *TicketService) mutate(ctx context.Context, ticketID int64, actorID uuid.UUID, guard ticketGuard, apply ticketMutation) (*domain.Ticket, error) {
	actor, err := s.userRepo.GetByID(ctx, actorID)
	if err != nil {
		return nil, err
	}

	var (
		updated *domain.Ticket
		event   *domain.Event
	)
	err = s.txManager.WithTransaction(ctx, func(ctx context.Context) error {
		ticket, err := s.ticketRepo.GetForUpdate(ctx, ticketID)
		if err != nil {
			return err
		}
		if err := guard(ticket, actor); err != nil {
			return err
		}

		payload, err := apply(ticket, actor)
		if err != nil {
			return err
		}

		updated, err = s.ticketRepo.Update(ctx, ticket)
		if err != nil {
			return err
		}

		event, err = s.recordEvent(ctx, updated.ID, actorID, payload)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.dispatcher.Dispatch(updated, event)
	if event.Type == domain.EventStatusUpdate && !updated.IsRequestedBy(actorID) {
		s.notifyStatusUpdate(updated)
	}
	return updated, nil
}

func (s *TicketService) recordEvent(ctx context.Context, ticketID int64, actorID uuid.UUID, payload domain.EventPayload) (*domain.Event, error) {
	event, err := domain.NewEvent(ticketID, &actorID, payload)
	if err != nil {
		return nil, err
	}
	return s.eventRepo.Create(ctx, event)
}

func (s *TicketService) resolveLocation(ctx context.Context, in *ports.TicketLocationInput) (*domain.TicketLocation, error) {
	if in == nil {
		return nil, nil
	}

	buildings, err := s.buildingRepo.GetByIDs(ctx, []uuid.UUID{in.BuildingID})
	if err != nil {
		return nil, err
	}
	building, ok := buildings[in.BuildingID]
	if !ok {
		return nil, apperrors.ErrBuildingNotFound
	}
	if !building.HasFloor(in.Floor) {
		return nil, apperrors.ErrInvalidLocation
	}

	return &domain.TicketLocation{
		BuildingID:   building.ID,
		BuildingName: building.Name,
		Floor:        in.Floor,
		Lab:          in.Lab,
	}, nil
}

// notifyStatusUpdate sends email notification for status changes
func (s *TicketService) notifyStatusUpdate(ticket *domain.Ticket) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		// Use background context since the HTTP request may be done
		ctx := context.Background()

		s.notifier.Notify(ctx, ports.NotificationParams{
			RecipientUserID: ticket.Requester.ID,
			RecipientEmail:  ticket.Requester.Email,
			Subject:         fmt.Sprintf("Your ticket status has been updated: %s", ticket.Code),
			Message:         fmt.Sprintf("The status of your ticket '%s' was changed to %s.", ticket.Title, ticket.Status),
			TicketID:        ticket.ID,
		})
	}()
}

func (s *TicketService) Shutdown() {
	s.wg.Wait()
}

func statusPayload(t *domain.Ticket) domain.EventPayload {
	return &domain.StatusUpdatePayload{
		TicketID: t.ID,
		Title:    t.Title,
		Status:   t.Status,
	}
}

func payloadLocation(loc *domain.TicketLocation) *domain.PayloadLocation {
	if loc == nil {
		return nil
	}
	return &domain.PayloadLocation{
		BuildingID: loc.BuildingID.String(),
		Floor:      loc.Floor,
		Lab:        loc.Lab,
	}
}
