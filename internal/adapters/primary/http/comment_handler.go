package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/lorrc/helpdesk-portal/internal/adapters/primary/validation"
	"github.com/lorrc/helpdesk-portal/internal/core/ports"
)

// CommentHandler handles HTTP requests for comments.
type CommentHandler struct {
	commentService ports.CommentService
	errorHandler   *ErrorHandler
	logger         *slog.Logger
}

// NewCommentHandler creates a new CommentHandler.
func NewCommentHandler(
	commentService ports.CommentService,
	errorHandler *ErrorHandler,
	logger *slog.Logger,
) *CommentHandler {
	return &CommentHandler{
		commentService: commentService,
		errorHandler:   errorHandler,
		logger:         logger.With("handler", "comment"),
	}
}

// RegisterRoutes registers the comment-specific endpoints.
// These routes are relative to /api/v1/tickets/{ticketID}/comments
func (h *CommentHandler) RegisterRoutes(r chi.Router) {
	r.Post("/", h.HandleCreateComment)
	r.Get("/", h.HandleListComments)
}

// CreateCommentRequest defines the expected JSON body for creating a comment.
// A comment may carry only an attachment.
type CreateCommentRequest struct {
	Body       string `json:"body" validate:"required_without=Attachment,max=5000"`
	Attachment string `json:"attachment" validate:"max=255"`
}

// HandleCreateComment handles requests to create a new comment.
func (h *CommentHandler) HandleCreateComment(w http.ResponseWriter, r *http.Request) {
	claims, ok := getClaims(w, r, h.errorHandler)
	if !ok {
		return
	}

	ticketID, err := parseInt64Param(r, "ticketID")
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	req, err := validation.DecodeAndValidate[CreateCommentRequest](r)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	comment, err := h.commentService.CreateComment(r.Context(), ports.CreateCommentParams{
		TicketID:   ticketID,
		ActorID:    claims.UserID,
		Body:       req.Body,
		Attachment: req.Attachment,
	})
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	h.logger.InfoContext(r.Context(), "comment created", "comment_id", comment.ID)

	WriteCreated(w, toCommentDTO(comment))
}

// HandleListComments handles requests to list comments for a ticket.
func (h *CommentHandler) HandleListComments(w http.ResponseWriter, r *http.Request) {
	claims, ok := getClaims(w, r, h.errorHandler)
	if !ok {
		return
	}

	ticketID, err := parseInt64Param(r, "ticketID")
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	comments, err := h.commentService.GetCommentsForTicket(r.Context(), ports.GetCommentsParams{
		TicketID: ticketID,
		ActorID:  claims.UserID,
	})
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	WriteSuccess(w, toCommentDTOs(comments))
}
