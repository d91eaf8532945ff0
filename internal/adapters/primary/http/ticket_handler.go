package http

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/lorrc/helpdesk-portal/internal/adapters/primary/validation"
	"github.com/lorrc/helpdesk-portal/internal/core/domain"
	"github.com/lorrc/helpdesk-portal/internal/core/ports"
	"github.com/lorrc/helpdesk-portal/internal/infrastructure/logging"
)

const (
	maxTicketsPerPage  = 100
	defaultEventsLimit = 50
	maxEventsLimit     = 200
)

// TicketHandler handles HTTP requests for tickets
type TicketHandler struct {
	ticketService  ports.TicketService
	commentService ports.CommentService
	eventService   ports.EventService
	commentHandler *CommentHandler
	errorHandler   *ErrorHandler
	logger         *slog.Logger
}

// NewTicketHandler creates a new ticket handler
func NewTicketHandler(
	ticketService ports.TicketService,
	commentService ports.CommentService,
	eventService ports.EventService,
	commentHandler *CommentHandler,
	errorHandler *ErrorHandler,
	logger *slog.Logger,
) *TicketHandler {
	return &TicketHandler{
		ticketService:  ticketService,
		commentService: commentService,
		eventService:   eventService,
		commentHandler: commentHandler,
		errorHandler:   errorHandler,
		logger:         logger.With("handler", "ticket"),
	}
}

// RegisterRoutes sets up the routing for all ticket endpoints.
func (h *TicketHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.HandleListTickets)
	r.Post("/", h.HandleCreateTicket)

	r.Route("/{ticketID}", func(r chi.Router) {
		r.Use(tagTicket)
		r.Get("/", h.HandleGetTicket)
		r.Patch("/", h.HandleUpdateTicket)
		r.Post("/viewed", h.HandleMarkViewed)
		r.Patch("/status", h.HandleUpdateTicketStatus)
		r.Post("/claim", h.HandleClaim)
		r.Post("/unclaim", h.HandleUnclaim)
		r.Post("/resolve", h.HandleResolve)
		r.Post("/revoke", h.HandleRevoke)
		r.Get("/events", h.HandleListTicketEvents)

		if h.commentHandler != nil {
			r.Route("/comments", h.commentHandler.RegisterRoutes)
		}
	})
}

// tagTicket adds the path's ticket id to the request's log context.
// Invalid ids are left for the handlers to reject.
func tagTicket(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if id, err := strconv.ParseInt(chi.URLParam(r, "ticketID"), 10, 64); err == nil {
			r = r.WithContext(logging.WithTicketID(r.Context(), id))
		}
		next.ServeHTTP(w, r)
	})
}

// --- Request DTOs ---

// CreateTicketRequest defines the expected JSON body for creating a ticket
type CreateTicketRequest struct {
	Title          string         `json:"title" validate:"required,max=255"`
	Description    string         `json:"description" validate:"max=10000"`
	Priority       string         `json:"priority" validate:"omitempty,oneof=low medium high"`
	ToDepartmentID string         `json:"toDepartmentId" validate:"required,uuid"`
	Location       *LocationInput `json:"location"`
	Attachment     string         `json:"attachment" validate:"max=255"`
}

// UpdateTicketRequest defines the requester-editable fields.
type UpdateTicketRequest struct {
	Description *string `json:"description" validate:"omitempty,max=10000"`
	Priority    *string `json:"priority" validate:"omitempty,oneof=low medium high"`
}

// UpdateStatusRequest carries either a status change or a comment.
type UpdateStatusRequest struct {
	Status     string `json:"status" validate:"omitempty,oneof=pending in_progress resolved revoked"`
	Comment    string `json:"comment" validate:"max=5000"`
	Attachment string `json:"attachment" validate:"max=255"`
}

// RevokeTicketRequest optionally explains a revocation.
type RevokeTicketRequest struct {
	Reason string `json:"reason" validate:"max=1000"`
}

// --- Handlers ---

// HandleListTickets handles GET /tickets
func (h *TicketHandler) HandleListTickets(w http.ResponseWriter, r *http.Request) {
	claims, ok := getClaims(w, r, h.errorHandler)
	if !ok {
		return
	}

	pagination := validation.ParsePagination(r, maxTicketsPerPage)

	status, err := parseStatusFilter(r)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	tickets, err := h.ticketService.ListTickets(r.Context(), ports.ListTicketsParams{
		ViewerID: claims.UserID,
		Status:   status,
		Limit:    pagination.Limit + 1,
		Offset:   pagination.Offset,
	})
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	WritePaginatedSimple(w, toTicketDTOs(tickets), pagination.Limit, pagination.Offset)
}

// HandleCreateTicket handles POST /tickets
func (h *TicketHandler) HandleCreateTicket(w http.ResponseWriter, r *http.Request) {
	claims, ok := getClaims(w, r, h.errorHandler)
	if !ok {
		return
	}

	req, err := validation.DecodeAndValidate[CreateTicketRequest](r)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	ticket, err := h.ticketService.CreateTicket(r.Context(), ports.CreateTicketParams{
		ActorID:        claims.UserID,
		Title:          req.Title,
		Description:    req.Description,
		Priority:       domain.TicketPriority(req.Priority),
		ToDepartmentID: uuid.MustParse(req.ToDepartmentID),
		Location:       req.Location.toPort(),
		Attachment:     req.Attachment,
	})
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	h.logger.InfoContext(r.Context(), "ticket created", "ticket_id", ticket.ID, "code", ticket.Code)
	WriteCreated(w, toTicketDTO(ticket))
}

// HandleGetTicket handles GET /tickets/{ticketID}
func (h *TicketHandler) HandleGetTicket(w http.ResponseWriter, r *http.Request) {
	claims, ok := getClaims(w, r, h.errorHandler)
	if !ok {
		return
	}

	ticketID, err := parseInt64Param(r, "ticketID")
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	ticket, err := h.ticketService.GetTicket(r.Context(), ticketID, claims.UserID)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	WriteSuccess(w, toTicketDTO(ticket))
}

// HandleUpdateTicket handles PATCH /tickets/{ticketID}
func (h *TicketHandler) HandleUpdateTicket(w http.ResponseWriter, r *http.Request) {
	claims, ok := getClaims(w, r, h.errorHandler)
	if !ok {
		return
	}

	ticketID, err := parseInt64Param(r, "ticketID")
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	req, err := validation.DecodeAndValidate[UpdateTicketRequest](r)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	var priority *domain.TicketPriority
	if req.Priority != nil {
		p := domain.TicketPriority(*req.Priority)
		priority = &p
	}

	ticket, err := h.ticketService.UpdateDetails(r.Context(), ports.UpdateTicketParams{
		TicketID:    ticketID,
		ActorID:     claims.UserID,
		Description: req.Description,
		Priority:    priority,
	})
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	WriteSuccess(w, toTicketDTO(ticket))
}

// HandleMarkViewed handles POST /tickets/{ticketID}/viewed
func (h *TicketHandler) HandleMarkViewed(w http.ResponseWriter, r *http.Request) {
	claims, ok := getClaims(w, r, h.errorHandler)
	if !ok {
		return
	}

	ticketID, err := parseInt64Param(r, "ticketID")
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	if err := h.ticketService.MarkViewed(r.Context(), ports.TicketActionParams{TicketID: ticketID, ActorID: claims.UserID}); err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	WriteNoContent(w)
}

// HandleUpdateTicketStatus handles PATCH /tickets/{ticketID}/status. A body
// without a status is treated as a comment.
func (h *TicketHandler) HandleUpdateTicketStatus(w http.ResponseWriter, r *http.Request) {
	claims, ok := getClaims(w, r, h.errorHandler)
	if !ok {
		return
	}

	ticketID, err := parseInt64Param(r, "ticketID")
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	req, err := validation.DecodeAndValidate[UpdateStatusRequest](r)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	if req.Status == "" {
		if req.Comment == "" && req.Attachment == "" {
			h.errorHandler.Handle(w, r, validation.Invalid("status", "Either a status or a comment is required"))
			return
		}
		comment, err := h.commentService.CreateComment(r.Context(), ports.CreateCommentParams{
			TicketID:   ticketID,
			ActorID:    claims.UserID,
			Body:       req.Comment,
			Attachment: req.Attachment,
		})
		if err != nil {
			h.errorHandler.Handle(w, r, err)
			return
		}
		WriteCreated(w, toCommentDTO(comment))
		return
	}

	ticket, err := h.ticketService.UpdateStatus(r.Context(), ports.UpdateStatusParams{
		TicketID: ticketID,
		Status:   domain.TicketStatus(req.Status),
		ActorID:  claims.UserID,
	})
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	h.logger.InfoContext(r.Context(), "ticket status updated", "new_status", req.Status)
	WriteSuccess(w, toTicketDTO(ticket))
}

type ticketAction func(*TicketHandler, *http.Request, ports.TicketActionParams) (*domain.Ticket, error)

func (h *TicketHandler) handleAction(name string, action ticketAction) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := getClaims(w, r, h.errorHandler)
		if !ok {
			return
		}

		ticketID, err := parseInt64Param(r, "ticketID")
		if err != nil {
			h.errorHandler.Handle(w, r, err)
			return
		}

		ticket, err := action(h, r, ports.TicketActionParams{TicketID: ticketID, ActorID: claims.UserID})
		if err != nil {
			h.errorHandler.Handle(w, r, err)
			return
		}

		h.logger.InfoContext(r.Context(), "ticket "+name, "status", ticket.Status)
		WriteSuccess(w, toTicketDTO(ticket))
	}
}

// HandleClaim handles POST /tickets/{ticketID}/claim
func (h *TicketHandler) HandleClaim(w http.ResponseWriter, r *http.Request) {
	h.handleAction("claimed", func(h *TicketHandler, r *http.Request, p ports.TicketActionParams) (*domain.Ticket, error) {
		return h.ticketService.Claim(r.Context(), p)
	})(w, r)
}

// HandleUnclaim handles POST /tickets/{ticketID}/unclaim
func (h *TicketHandler) HandleUnclaim(w http.ResponseWriter, r *http.Request) {
	h.handleAction("unclaimed", func(h *TicketHandler, r *http.Request, p ports.TicketActionParams) (*domain.Ticket, error) {
		return h.ticketService.Unclaim(r.Context(), p)
	})(w, r)
}

// HandleResolve handles POST /tickets/{ticketID}/resolve
func (h *TicketHandler) HandleResolve(w http.ResponseWriter, r *http.Request) {
	h.handleAction("resolved", func(h *TicketHandler, r *http.Request, p ports.TicketActionParams) (*domain.Ticket, error) {
		return h.ticketService.Resolve(r.Context(), p)
	})(w, r)
}

// HandleRevoke handles POST /tickets/{ticketID}/revoke. The body is optional.
func (h *TicketHandler) HandleRevoke(w http.ResponseWriter, r *http.Request) {
	claims, ok := getClaims(w, r, h.errorHandler)
	if !ok {
		return
	}

	ticketID, err := parseInt64Param(r, "ticketID")
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	var reason string
	if r.ContentLength > 0 {
		req, err := validation.DecodeAndValidate[RevokeTicketRequest](r)
		if err != nil {
			h.errorHandler.Handle(w, r, err)
			return
		}
		reason = req.Reason
	}

	ticket, err := h.ticketService.Revoke(r.Context(), ports.RevokeTicketParams{
		TicketID: ticketID,
		ActorID:  claims.UserID,
		Reason:   reason,
	})
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	h.logger.InfoContext(r.Context(), "ticket revoked")
	WriteSuccess(w, toTicketDTO(ticket))
}

// TicketEventsResponse defines the JSON response for ticket events.
type TicketEventsResponse struct {
	Events     []*domain.Event `json:"events"`
	NextCursor *int64          `json:"nextCursor,omitempty"`
}

// HandleListTicketEvents handles GET /tickets/{ticketID}/events
func (h *TicketHandler) HandleListTicketEvents(w http.ResponseWriter, r *http.Request) {
	claims, ok := getClaims(w, r, h.errorHandler)
	if !ok {
		return
	}

	ticketID, err := parseInt64Param(r, "ticketID")
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	afterID, limit, err := parseEventQuery(r)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	events, err := h.eventService.ListTicketEvents(r.Context(), ports.ListTicketEventsParams{
		TicketID: ticketID,
		ViewerID: claims.UserID,
		AfterID:  afterID,
		Limit:    limit,
	})
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}
	if events == nil {
		events = []*domain.Event{}
	}

	var nextCursor *int64
	if len(events) == limit {
		cursor := events[len(events)-1].ID
		nextCursor = &cursor
	}

	WriteSuccess(w, TicketEventsResponse{Events: events, NextCursor: nextCursor})
}

// --- Helper functions ---

func parseStatusFilter(r *http.Request) (*domain.TicketStatus, error) {
	raw := validation.ParseStringQueryParam(r, "status")
	if raw == nil {
		return nil, nil
	}

	allowed := make([]string, 0, len(domain.AllStatuses))
	for _, s := range domain.AllStatuses {
		allowed = append(allowed, string(s))
	}
	if err := validation.Var("status", *raw, "oneof="+strings.Join(allowed, " ")); err != nil {
		return nil, err
	}

	status := domain.TicketStatus(*raw)
	return &status, nil
}

func parseEventQuery(r *http.Request) (int64, int, error) {
	var afterID int64
	if raw := r.URL.Query().Get("after"); raw != "" {
		parsed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || parsed < 0 {
			return 0, 0, validation.Invalid("after", "Must be a non-negative integer")
		}
		afterID = parsed
	}

	limit := validation.ParseIntQueryParam(r, "limit", defaultEventsLimit)
	if limit == 0 {
		limit = defaultEventsLimit
	}
	if err := validation.Var("limit", limit, "lte="+strconv.Itoa(maxEventsLimit)); err != nil {
		return 0, 0, err
	}
	return afterID, limit, nil
}
