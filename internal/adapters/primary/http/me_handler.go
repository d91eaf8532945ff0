package http

import (
	"log/slog"
	"net/http"
	"sort"

	"github.com/go-chi/chi/v5"

	"github.com/lorrc/helpdesk-portal/internal/adapters/primary/validation"
	"github.com/lorrc/helpdesk-portal/internal/core/ports"
)

// PermissionsResponse defines the JSON response for user permissions.
type PermissionsResponse struct {
	Permissions []string `json:"permissions"`
}

// ChangePasswordRequest defines the body of a password change.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword" validate:"required,min=8,max=128"`
}

// MeHandler handles HTTP requests for the authenticated user.
type MeHandler struct {
	authService  ports.AuthService
	authzService ports.AuthorizationService
	errorHandler *ErrorHandler
	logger       *slog.Logger
}

// NewMeHandler creates a new MeHandler.
func NewMeHandler(
	authService ports.AuthService,
	authzService ports.AuthorizationService,
	errorHandler *ErrorHandler,
	logger *slog.Logger,
) *MeHandler {
	return &MeHandler{
		authService:  authService,
		authzService: authzService,
		errorHandler: errorHandler,
		logger:       logger.With("handler", "me"),
	}
}

// RegisterRoutes registers the /me routes.
func (h *MeHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.HandleProfile)
	r.Get("/permissions", h.HandlePermissions)
	r.Post("/password", h.HandleChangePassword)
}

// HandleProfile handles GET /me.
func (h *MeHandler) HandleProfile(w http.ResponseWriter, r *http.Request) {
	claims, ok := getClaims(w, r, h.errorHandler)
	if !ok {
		return
	}

	user, err := h.authService.GetUser(r.Context(), claims.UserID)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	WriteSuccess(w, toUserDTO(user))
}

// HandlePermissions handles GET /me/permissions.
func (h *MeHandler) HandlePermissions(w http.ResponseWriter, r *http.Request) {
	claims, ok := getClaims(w, r, h.errorHandler)
	if !ok {
		return
	}

	permissions, err := h.authzService.GetPermissions(r.Context(), claims.UserID)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	if permissions == nil {
		permissions = []string{}
	}

	sort.Strings(permissions)

	WriteSuccess(w, PermissionsResponse{Permissions: permissions})
}

// HandleChangePassword handles POST /me/password.
func (h *MeHandler) HandleChangePassword(w http.ResponseWriter, r *http.Request) {
	claims, ok := getClaims(w, r, h.errorHandler)
	if !ok {
		return
	}

	req, err := validation.DecodeAndValidate[ChangePasswordRequest](r)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	if err := h.authService.ChangePassword(r.Context(), claims.UserID, req.CurrentPassword, req.NewPassword); err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	h.logger.InfoContext(r.Context(), "password changed")
	WriteMessage(w, "Password updated")
}
