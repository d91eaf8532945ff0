package services

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/lorrc/helpdesk-portal/internal/core/domain"
	apperrors "github.com/lorrc/helpdesk-portal/internal/core/errors"
	"github.com/lorrc/helpdesk-portal/internal/core/ports"
)

// CommentService implements the business logic for comments.
type CommentService struct {
	commentRepo ports.CommentRepository
	ticketRepo  ports.TicketRepository
	eventRepo   ports.TicketEventRepository
	userRepo    ports.UserRepository
	ticketSvc   ports.TicketService
	txManager   ports.TransactionManager
	dispatcher  ports.EventDispatcher
	notifier    ports.Notifier
	wg          sync.WaitGroup
}

// Ensure implementation matches the interface.
var _ ports.CommentService = (*CommentService)(nil)

// CommentServiceDeps groups the collaborators of the comment service.
type CommentServiceDeps struct {
	CommentRepo ports.CommentRepository
	TicketRepo  ports.TicketRepository
	EventRepo   ports.TicketEventRepository
	UserRepo    ports.UserRepository
	TicketSvc   ports.TicketService
	TxManager   ports.TransactionManager
	Dispatcher  ports.EventDispatcher
	Notifier    ports.Notifier
}

// NewCommentService creates a new service for comment logic.
func NewCommentService(deps CommentServiceDeps) ports.CommentService {
	return &CommentService{
		commentRepo: deps.CommentRepo,
		ticketRepo:  deps.TicketRepo,
		eventRepo:   deps.EventRepo,
		userRepo:    deps.UserRepo,
		ticketSvc:   deps.TicketSvc,
		txManager:   deps.TxManager,
		dispatcher:  deps.Dispatcher,
		notifier:    deps.Notifier,
	}
}

// CreateComment adds a comment to a ticket and emits new-comment in the
// same transaction.
func (s *CommentService) CreateComment(ctx context.Context, params ports.CreateCommentParams) (*domain.Comment, error) {
	actor, err := s.userRepo.GetByID(ctx, params.ActorID)
	if err != nil {
		return nil, err
	}
	if !actor.Role.Has(domain.PermCommentsCreate) {
		return nil, apperrors.ErrForbidden
	}

	var (
		ticket  *domain.Ticket
		created *domain.Comment
		event   *domain.Event
	)
	err = s.txManager.WithTransaction(ctx, func(ctx context.Context) error {
		ticket, err = s.ticketRepo.GetForUpdate(ctx, params.TicketID)
		if err != nil {
			return err
		}
		if !canViewTicket(actor, ticket) {
			return apperrors.ErrForbidden
		}
		if err := ticket.CanAcceptComment(); err != nil {
			return err
		}
		if err := domain.Authorize(domain.GateInputFor(ticket, actor.ID, domain.ActionAddComment)).Err(domain.ActionAddComment); err != nil {
			return err
		}

		role := commentAuthorRole(ticket, actor.ID)
		byRequester := role == domain.AuthorRequester

		comment, err := domain.NewComment(domain.CommentParams{
			TicketID:   ticket.ID,
			AuthorID:   actor.ID,
			AuthorName: actor.FullName,
			AuthorRole: role,
			Body:       params.Body,
			Attachment: params.Attachment,
		})
		if err != nil {
			return err
		}

		created, err = s.commentRepo.Create(ctx, comment)
		if err != nil {
			return err
		}

		payload := &domain.NewCommentPayload{
			TicketID: ticket.ID,
			Title:    ticket.Title,
			ByAdmin:  !byRequester,
		}
		if byRequester {
			payload.EmployeeName = actor.FullName
		}

		evt, err := domain.NewEvent(ticket.ID, &actor.ID, payload)
		if err != nil {
			return err
		}
		event, err = s.eventRepo.Create(ctx, evt)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.dispatcher.Dispatch(ticket, event)

	// Email the requester about admin replies.
	if !ticket.IsRequestedBy(actor.ID) {
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.notifier.Notify(context.Background(), ports.NotificationParams{
				RecipientUserID: ticket.Requester.ID,
				RecipientEmail:  ticket.Requester.Email,
				Subject:         fmt.Sprintf("A new comment was added to your ticket: %s", ticket.Code),
				Message:         fmt.Sprintf("A new comment has been added to your ticket '%s'.", ticket.Title),
				TicketID:        ticket.ID,
			})
		}()
	}

	return created, nil
}

// Shutdown waits for pending reply emails.
func (s *CommentService) Shutdown() {
	s.wg.Wait()
}

// GetCommentsForTicket retrieves all comments for a specific ticket.
func (s *CommentService) GetCommentsForTicket(ctx context.Context, params ports.GetCommentsParams) ([]*domain.Comment, error) {
	// GetTicket already enforces visibility.
	if _, err := s.ticketSvc.GetTicket(ctx, params.TicketID, params.ActorID); err != nil {
		return nil, err
	}
	return s.commentRepo.ListByTicketID(ctx, params.TicketID)
}

func commentAuthorRole(ticket *domain.Ticket, authorID uuid.UUID) domain.AuthorRole {
	if ticket.IsRequestedBy(authorID) {
		return domain.AuthorRequester
	}
	return domain.AuthorAdmin
}
