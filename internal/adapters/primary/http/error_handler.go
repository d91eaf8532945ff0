package http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	mw "github.com/lorrc/helpdesk-portal/internal/adapters/primary/http/middleware"
	"github.com/lorrc/helpdesk-portal/internal/core/domain"
	apperrors "github.com/lorrc/helpdesk-portal/internal/core/errors"
)

// GetRequestID retrieves the request ID from context
func GetRequestID(ctx context.Context) string {
	return mw.GetRequestID(ctx)
}

// ErrorResponse is the JSON error envelope.
type ErrorResponse struct {
	Success bool                   `json:"success"`
	Message string                 `json:"message"`
	Code    string                 `json:"code"`
	Reason  string                 `json:"reason,omitempty"`
	Fields  map[string][]string    `json:"fields,omitempty"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// ErrorHandler provides centralized error handling with logging
type ErrorHandler struct {
	logger *slog.Logger
}

// NewErrorHandler creates a new error handler with the given logger
func NewErrorHandler(logger *slog.Logger) *ErrorHandler {
	return &ErrorHandler{logger: logger}
}

// Handle processes an error and writes the appropriate HTTP response
func (h *ErrorHandler) Handle(w http.ResponseWriter, r *http.Request, err error) {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		h.logError(r, appErr.StatusCode, err)
		WriteJSON(w, appErr.StatusCode, ErrorResponse{
			Message: appErr.Message,
			Code:    appErr.Code,
			Details: appErr.Details,
		})
		return
	}

	var validationErrs *apperrors.ValidationErrors
	if errors.As(err, &validationErrs) {
		h.logError(r, http.StatusUnprocessableEntity, err)
		WriteJSON(w, http.StatusUnprocessableEntity, ErrorResponse{
			Message: "Validation failed",
			Code:    "VALIDATION_ERROR",
			Fields:  validationErrs.Errors,
		})
		return
	}

	// Gate denials carry the reason code for clients.
	var denial *domain.DenialError
	if errors.As(err, &denial) {
		h.logError(r, http.StatusForbidden, err)
		WriteJSON(w, http.StatusForbidden, ErrorResponse{
			Message: denial.Message(),
			Code:    "FORBIDDEN",
			Reason:  string(denial.Reason),
		})
		return
	}

	statusCode, response := h.mapDomainError(err)
	h.logError(r, statusCode, err)
	WriteJSON(w, statusCode, response)
}

type errorMapping struct {
	target  error
	status  int
	code    string
	message string
}

// domainErrors is checked in order; the first match wins.
var domainErrors = []errorMapping{
	// Authentication & Authorization
	{apperrors.ErrInvalidCredentials, http.StatusUnauthorized, "INVALID_CREDENTIALS", "Invalid credentials"},
	{apperrors.ErrUnauthorized, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required"},
	{apperrors.ErrInvalidOTP, http.StatusUnauthorized, "INVALID_OTP", "Invalid or expired one-time password"},
	{apperrors.ErrFirstLoginRequired, http.StatusForbidden, "FIRST_LOGIN_REQUIRED", "Password change required before first login"},
	{apperrors.ErrNotFirstLogin, http.StatusConflict, "NOT_FIRST_LOGIN", "First login has already been completed"},
	{apperrors.ErrNotNetworkEngineer, http.StatusBadRequest, "NOT_NETWORK_ENGINEER", "Locations can only be set for network engineers"},
	{apperrors.ErrForbidden, http.StatusForbidden, "FORBIDDEN", "You do not have permission to perform this action"},

	// Not Found errors
	{apperrors.ErrUserNotFound, http.StatusNotFound, "USER_NOT_FOUND", "User not found"},
	{apperrors.ErrTicketNotFound, http.StatusNotFound, "TICKET_NOT_FOUND", "Ticket not found"},
	{apperrors.ErrDepartmentNotFound, http.StatusNotFound, "DEPARTMENT_NOT_FOUND", "Department not found"},
	{apperrors.ErrBuildingNotFound, http.StatusNotFound, "BUILDING_NOT_FOUND", "Building not found"},
	{apperrors.ErrAssetNotFound, http.StatusNotFound, "ASSET_NOT_FOUND", "Asset not found"},
	{apperrors.ErrAttachmentNotFound, http.StatusNotFound, "ATTACHMENT_NOT_FOUND", "Attachment not found"},
	{apperrors.ErrNotFound, http.StatusNotFound, "NOT_FOUND", "Resource not found"},

	// Conflict errors
	{apperrors.ErrUserExists, http.StatusConflict, "USER_EXISTS", "A user with this email already exists"},
	{apperrors.ErrDepartmentExists, http.StatusConflict, "DEPARTMENT_EXISTS", "A department with this name already exists"},
	{apperrors.ErrAssetTagExists, http.StatusConflict, "ASSET_TAG_EXISTS", "An asset with this tag already exists"},
	{apperrors.ErrConflict, http.StatusConflict, "CONFLICT", "Resource conflict"},

	// Business rule violations
	{apperrors.ErrInvalidStatusTransition, http.StatusConflict, "INVALID_STATUS_TRANSITION", "Invalid status transition"},
	{apperrors.ErrTicketRevoked, http.StatusConflict, "TICKET_REVOKED", "This ticket has been revoked"},
	{apperrors.ErrTicketNotEditable, http.StatusConflict, "TICKET_NOT_EDITABLE", "Ticket can only be edited while pending"},

	// Rate limiting
	{apperrors.ErrRateLimited, http.StatusTooManyRequests, "RATE_LIMITED", "Too many requests. Please try again later."},
}

// badRequestErrors are domain validation failures echoed back verbatim.
var badRequestErrors = []error{
	apperrors.ErrTitleRequired,
	apperrors.ErrTitleTooLong,
	apperrors.ErrDescriptionTooLong,
	apperrors.ErrInvalidPriority,
	apperrors.ErrInvalidStatus,
	apperrors.ErrCommentBodyRequired,
	apperrors.ErrCommentBodyTooLong,
	apperrors.ErrEmailRequired,
	apperrors.ErrEmailInvalid,
	apperrors.ErrPasswordTooWeak,
	apperrors.ErrPasswordRequired,
	apperrors.ErrFullNameRequired,
	apperrors.ErrFullNameTooLong,
	apperrors.ErrDepartmentRequired,
	apperrors.ErrInvalidLocation,
	apperrors.ErrInvalidAttachmentRef,
	apperrors.ErrInvalidAssetState,
	apperrors.ErrBadRequest,
}

// mapDomainError converts domain errors to HTTP status codes and responses
func (h *ErrorHandler) mapDomainError(err error) (int, ErrorResponse) {
	for _, m := range domainErrors {
		if errors.Is(err, m.target) {
			return m.status, ErrorResponse{Message: m.message, Code: m.code}
		}
	}

	for _, target := range badRequestErrors {
		if errors.Is(err, target) {
			return http.StatusBadRequest, ErrorResponse{Message: target.Error(), Code: "VALIDATION_ERROR"}
		}
	}

	return http.StatusInternalServerError, ErrorResponse{
		Message: "An unexpected error occurred",
		Code:    "INTERNAL_ERROR",
	}
}

// logError logs the error with appropriate context
func (h *ErrorHandler) logError(r *http.Request, statusCode int, err error) {
	logAttrs := []any{
		"method", r.Method,
		"path", r.URL.Path,
		"status_code", statusCode,
		"error", err.Error(),
	}

	ctx := r.Context()
	switch {
	case statusCode >= 500:
		h.logger.ErrorContext(ctx, "server error", logAttrs...)
	case statusCode >= 400:
		h.logger.WarnContext(ctx, "client error", logAttrs...)
	default:
		h.logger.InfoContext(ctx, "request error", logAttrs...)
	}
}

// unauthorized writes the 401 envelope for handlers reached without claims.
func (h *ErrorHandler) unauthorized(w http.ResponseWriter, r *http.Request) {
	h.Handle(w, r, apperrors.NewUnauthorizedError("Not authorized"))
}
