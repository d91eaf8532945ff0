package http

import (
	"log/slog"
	"mime"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/lorrc/helpdesk-portal/internal/core/ports"
)

// AttachmentHandler streams stored attachments to authenticated users.
type AttachmentHandler struct {
	attachmentService ports.AttachmentService
	errorHandler      *ErrorHandler
	logger            *slog.Logger
}

// NewAttachmentHandler creates a new attachment handler.
func NewAttachmentHandler(
	attachmentService ports.AttachmentService,
	errorHandler *ErrorHandler,
	logger *slog.Logger,
) *AttachmentHandler {
	return &AttachmentHandler{
		attachmentService: attachmentService,
		errorHandler:      errorHandler,
		logger:            logger.With("handler", "attachment"),
	}
}

// RegisterRoutes registers attachment routes.
func (h *AttachmentHandler) RegisterRoutes(r chi.Router) {
	r.Get("/{filename}", h.HandleDownload)
}

// HandleDownload handles GET /attachments/{filename}
func (h *AttachmentHandler) HandleDownload(w http.ResponseWriter, r *http.Request) {
	claims, ok := getClaims(w, r, h.errorHandler)
	if !ok {
		return
	}

	attachment, err := h.attachmentService.Open(r.Context(), claims.UserID, chi.URLParam(r, "filename"))
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}
	defer attachment.Body.Close()

	if attachment.ContentType != "" {
		w.Header().Set("Content-Type", attachment.ContentType)
	}
	w.Header().Set("Content-Disposition", mime.FormatMediaType("inline", map[string]string{"filename": attachment.Name}))
	w.Header().Set("X-Content-Type-Options", "nosniff")

	http.ServeContent(w, r, attachment.Name, attachment.ModTime, attachment.Body)
}
