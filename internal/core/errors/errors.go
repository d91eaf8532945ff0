package errors

import (
	"errors"
	"fmt"
)

// Domain errors - these represent business rule violations
var (
	// Authentication
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrForbidden          = errors.New("action forbidden")
	ErrInvalidOTP         = errors.New("invalid or expired one-time password")
	ErrFirstLoginRequired = errors.New("password change required before first login")
	ErrNotFirstLogin      = errors.New("first login already completed")

	// Users
	ErrUserNotFound       = errors.New("user not found")
	ErrUserExists         = errors.New("user already exists")
	ErrEmailRequired      = errors.New("email is required")
	ErrEmailInvalid       = errors.New("email format is invalid")
	ErrPasswordTooWeak    = errors.New("password does not meet security requirements")
	ErrPasswordRequired   = errors.New("password is required")
	ErrFullNameRequired   = errors.New("full name is required")
	ErrFullNameTooLong    = errors.New("full name exceeds maximum length")
	ErrNotNetworkEngineer = errors.New("locations can only be set for network engineers")

	// Organisation
	ErrDepartmentRequired = errors.New("department is required")
	ErrDepartmentNotFound = errors.New("department not found")
	ErrDepartmentExists   = errors.New("department already exists")
	ErrBuildingNotFound   = errors.New("building not found")
	ErrInvalidLocation    = errors.New("invalid location")

	// Tickets
	ErrTicketNotFound          = errors.New("ticket not found")
	ErrTitleRequired           = errors.New("title is required")
	ErrTitleTooLong            = errors.New("title exceeds maximum length of 255 characters")
	ErrDescriptionTooLong      = errors.New("description exceeds maximum length")
	ErrInvalidPriority         = errors.New("invalid ticket priority")
	ErrInvalidStatus           = errors.New("invalid ticket status")
	ErrInvalidStatusTransition = errors.New("invalid status transition")
	ErrTicketRevoked           = errors.New("ticket has been revoked")
	ErrTicketNotEditable       = errors.New("ticket can only be edited while pending")

	// Comments and attachments
	ErrCommentBodyRequired  = errors.New("comment body is required")
	ErrCommentBodyTooLong   = errors.New("comment body exceeds maximum length")
	ErrAttachmentNotFound   = errors.New("attachment not found")
	ErrInvalidAttachmentRef = errors.New("invalid attachment name")

	// Inventory
	ErrAssetNotFound     = errors.New("asset not found")
	ErrAssetTagExists    = errors.New("asset tag already exists")
	ErrInvalidAssetState = errors.New("invalid asset status")

	// Events
	ErrMalformedEvent          = errors.New("malformed event")
	ErrUnknownEventType        = errors.New("unknown event type")
	ErrUnsupportedEventVersion = errors.New("unsupported event schema version")

	// Generic
	ErrNotFound    = errors.New("resource not found")
	ErrBadRequest  = errors.New("bad request")
	ErrConflict    = errors.New("resource conflict")
	ErrRateLimited = errors.New("rate limit exceeded")
)

// AppError wraps errors with additional context for HTTP responses
type AppError struct {
	Err        error  // The underlying error
	Message    string // User-friendly message
	Code       string // Machine-readable error code
	StatusCode int    // HTTP status code
	Details    map[string]interface{}
}

func (e *AppError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return e.Err.Error()
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Error constructors for common cases
func NewBadRequestError(err error, message string) *AppError {
	return &AppError{
		Err:        err,
		Message:    message,
		Code:       "BAD_REQUEST",
		StatusCode: 400,
	}
}

func NewUnauthorizedError(message string) *AppError {
	return &AppError{
		Err:        ErrUnauthorized,
		Message:    message,
		Code:       "UNAUTHORIZED",
		StatusCode: 401,
	}
}

func NewRateLimitError() *AppError {
	return &AppError{
		Err:        ErrRateLimited,
		Message:    "Too many requests. Please try again later.",
		Code:       "RATE_LIMITED",
		StatusCode: 429,
	}
}

func NewInternalError(err error) *AppError {
	return &AppError{
		Err:        err,
		Message:    "An unexpected error occurred",
		Code:       "INTERNAL_ERROR",
		StatusCode: 500,
	}
}

// ValidationErrors holds multiple field validation errors
type ValidationErrors struct {
	Errors map[string][]string `json:"errors"`
}

func NewValidationErrors() *ValidationErrors {
	return &ValidationErrors{
		Errors: make(map[string][]string),
	}
}

func (v *ValidationErrors) Add(field, message string) {
	v.Errors[field] = append(v.Errors[field], message)
}

func (v *ValidationErrors) HasErrors() bool {
	return len(v.Errors) > 0
}

func (v *ValidationErrors) Error() string {
	return fmt.Sprintf("validation failed: %d field(s) have errors", len(v.Errors))
}
