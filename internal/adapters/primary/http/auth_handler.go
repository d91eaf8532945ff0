package http

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	mw "github.com/lorrc/helpdesk-portal/internal/adapters/primary/http/middleware"
	"github.com/lorrc/helpdesk-portal/internal/adapters/primary/validation"
	"github.com/lorrc/helpdesk-portal/internal/auth"
	"github.com/lorrc/helpdesk-portal/internal/core/domain"
	apperrors "github.com/lorrc/helpdesk-portal/internal/core/errors"
	"github.com/lorrc/helpdesk-portal/internal/core/ports"
)

// AuthHandler serves the public sign-in endpoints.
type AuthHandler struct {
	authService  ports.AuthService
	tokens       *auth.TokenManager
	otpLimiter   *mw.RateLimitByKey
	errorHandler *ErrorHandler
	logger       *slog.Logger
}

// NewAuthHandler creates a new AuthHandler. otpLimiter throttles OTP
// resends per address and may be nil.
func NewAuthHandler(
	authService ports.AuthService,
	tokens *auth.TokenManager,
	otpLimiter *mw.RateLimitByKey,
	errorHandler *ErrorHandler,
	logger *slog.Logger,
) *AuthHandler {
	return &AuthHandler{
		authService:  authService,
		tokens:       tokens,
		otpLimiter:   otpLimiter,
		errorHandler: errorHandler,
		logger:       logger.With("handler", "auth"),
	}
}

// RegisterRoutes registers the /auth routes.
func (h *AuthHandler) RegisterRoutes(r chi.Router) {
	r.Post("/login", h.HandleLogin)
	r.Post("/first-login", h.HandleCompleteFirstLogin)
	r.Post("/resend-otp", h.HandleResendOTP)
}

// LoginRequest defines the expected JSON body for signing in.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// CompleteFirstLoginRequest defines the body of the first-login exchange.
type CompleteFirstLoginRequest struct {
	Email       string `json:"email" validate:"required,email"`
	OTP         string `json:"otp" validate:"required,numeric,min=4,max=10"`
	NewPassword string `json:"newPassword" validate:"required,min=8,max=128"`
}

// ResendOTPRequest defines the body of an OTP resend.
type ResendOTPRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// SessionResponse is returned once a session token has been issued.
type SessionResponse struct {
	Token     string  `json:"token"`
	ExpiresIn int64   `json:"expiresIn"`
	User      UserDTO `json:"user"`
}

// FirstLoginResponse tells the client an OTP exchange is required.
type FirstLoginResponse struct {
	RequiresPasswordChange bool   `json:"requiresPasswordChange"`
	Email                  string `json:"email"`
}

// HandleLogin handles POST /auth/login
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	req, err := validation.DecodeAndValidate[LoginRequest](r)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	result, err := h.authService.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	if result.RequiresPasswordChange {
		h.logger.InfoContext(r.Context(), "first login pending", "user_id", result.User.ID)
		WriteJSON(w, http.StatusOK, Envelope{
			Success: true,
			Message: "A one-time password has been sent to your email",
			Data: FirstLoginResponse{
				RequiresPasswordChange: true,
				Email:                  result.User.Email,
			},
		})
		return
	}

	h.writeSession(w, r, result.User)
}

// HandleCompleteFirstLogin handles POST /auth/first-login
func (h *AuthHandler) HandleCompleteFirstLogin(w http.ResponseWriter, r *http.Request) {
	req, err := validation.DecodeAndValidate[CompleteFirstLoginRequest](r)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	user, err := h.authService.CompleteFirstLogin(r.Context(), req.Email, req.OTP, req.NewPassword)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	h.logger.InfoContext(r.Context(), "first login completed", "user_id", user.ID)
	h.writeSession(w, r, user)
}

// HandleResendOTP handles POST /auth/resend-otp
func (h *AuthHandler) HandleResendOTP(w http.ResponseWriter, r *http.Request) {
	req, err := validation.DecodeAndValidate[ResendOTPRequest](r)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	if h.otpLimiter != nil && !h.otpLimiter.Allow(strings.ToLower(strings.TrimSpace(req.Email))) {
		h.errorHandler.Handle(w, r, apperrors.NewRateLimitError())
		return
	}

	if err := h.authService.ResendOTP(r.Context(), req.Email); err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	WriteMessage(w, "If the account is awaiting its first login, a new one-time password has been sent")
}

func (h *AuthHandler) writeSession(w http.ResponseWriter, r *http.Request, user *domain.User) {
	token, err := h.tokens.GenerateToken(user)
	if err != nil {
		h.errorHandler.Handle(w, r, apperrors.NewInternalError(err))
		return
	}

	WriteSuccess(w, SessionResponse{
		Token:     token,
		ExpiresIn: int64(h.tokens.TTL().Seconds()),
		User:      toUserDTO(user),
	})
}
