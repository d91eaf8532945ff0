package ports

import (
	"context"

	"github.com/google/uuid"

	"github.com/lorrc/helpdesk-portal/internal/core/domain"
)

// LoginResult is the outcome of a password check. When
// RequiresPasswordChange is set an OTP has been sent and no session may be
// issued yet.
type LoginResult struct {
	User                   *domain.User
	RequiresPasswordChange bool
}

// AuthService defines the port for authentication business logic.
type AuthService interface {
	Login(ctx context.Context, email, password string) (*LoginResult, error)
	CompleteFirstLogin(ctx context.Context, email, otp, newPassword string) (*domain.User, error)
	ResendOTP(ctx context.Context, email string) error
	ChangePassword(ctx context.Context, userID uuid.UUID, currentPassword, newPassword string) error
	GetUser(ctx context.Context, userID uuid.UUID) (*domain.User, error)
	EnsureSuperAdmin(ctx context.Context, fullName, email, password string) error
}

// AuthorizationService defines the port for checking user permissions.
type AuthorizationService interface {
	Can(ctx context.Context, userID uuid.UUID, permission string) (bool, error)
	GetPermissions(ctx context.Context, userID uuid.UUID) ([]string, error)
}

// CreateAdminParams defines the input for creating a department admin.
type CreateAdminParams struct {
	ActorID           uuid.UUID
	FullName          string
	Email             string
	Phone             string
	DepartmentID      uuid.UUID
	IsNetworkEngineer bool
	Locations         []domain.AdminLocation
}

// CreateEmployeeParams defines the input for creating an employee.
type CreateEmployeeParams struct {
	ActorID      uuid.UUID
	FullName     string
	Email        string
	Phone        string
	DepartmentID uuid.UUID
}

// OrganizationService defines the super-admin operations on departments,
// buildings and accounts.
type OrganizationService interface {
	CreateDepartment(ctx context.Context, actorID uuid.UUID, name string) (*domain.Department, error)
	ListDepartments(ctx context.Context) ([]*domain.Department, error)
	CreateBuilding(ctx context.Context, actorID uuid.UUID, name string, floors int) (*domain.Building, error)
	ListBuildings(ctx context.Context) ([]*domain.Building, error)
	CreateDepartmentAdmin(ctx context.Context, params CreateAdminParams) (*domain.User, error)
	CreateEmployee(ctx context.Context, params CreateEmployeeParams) (*domain.User, error)
	ListDepartmentUsers(ctx context.Context, actorID, departmentID uuid.UUID, role domain.Role) ([]*domain.User, error)
	UpdateAdminLocations(ctx context.Context, actorID, adminID uuid.UUID, locations []domain.AdminLocation) (*domain.User, error)
	UpdateUserStatus(ctx context.Context, actorID, userID uuid.UUID, isActive bool) error
	ResetUserPassword(ctx context.Context, actorID, userID uuid.UUID) error
}

// TicketLocationInput is the caller-supplied location of a new ticket.
type TicketLocationInput struct {
	BuildingID uuid.UUID
	Floor      int
	Lab        string
}

// CreateTicketParams defines the required input for creating a new ticket.
type CreateTicketParams struct {
	ActorID        uuid.UUID
	Title          string
	Description    string
	Priority       domain.TicketPriority
	ToDepartmentID uuid.UUID
	Location       *TicketLocationInput
	Attachment     string
}

// TicketActionParams identifies an actor acting on a ticket.
type TicketActionParams struct {
	TicketID int64
	ActorID  uuid.UUID
}

// RevokeTicketParams defines the input for revoking a ticket.
type RevokeTicketParams struct {
	TicketID int64
	ActorID  uuid.UUID
	Reason   string
}

// UpdateStatusParams defines the input for changing a ticket's status.
type UpdateStatusParams struct {
	TicketID int64
	Status   domain.TicketStatus
	ActorID  uuid.UUID
}

// UpdateTicketParams defines the requester-editable fields of a ticket.
type UpdateTicketParams struct {
	TicketID    int64
	ActorID     uuid.UUID
	Description *string
	Priority    *domain.TicketPriority
}

// CreateCommentParams defines the input for creating a comment.
type CreateCommentParams struct {
	TicketID   int64
	ActorID    uuid.UUID
	Body       string
	Attachment string
}

// GetCommentsParams defines the input for retrieving comments.
type GetCommentsParams struct {
	TicketID int64
	ActorID  uuid.UUID
}

// ListTicketsParams defines the input for listing tickets.
type ListTicketsParams struct {
	ViewerID uuid.UUID
	Status   *domain.TicketStatus
	Limit    int
	Offset   int
}

// ListTicketEventsParams defines the input for listing ticket events.
type ListTicketEventsParams struct {
	TicketID int64
	ViewerID uuid.UUID
	AfterID  int64
	Limit    int
}

// NotificationParams defines the input for sending a notification. Either
// the user id or the email address identifies the recipient.
type NotificationParams struct {
	RecipientUserID uuid.UUID
	RecipientEmail  string
	Subject         string
	Message         string
	TicketID        int64
}

// TicketService defines the core business operations for managing tickets.
type TicketService interface {
	CreateTicket(ctx context.Context, params CreateTicketParams) (*domain.Ticket, error)
	GetTicket(ctx context.Context, ticketID int64, viewerID uuid.UUID) (*domain.Ticket, error)
	ListTickets(ctx context.Context, params ListTicketsParams) ([]*domain.Ticket, error)
	MarkViewed(ctx context.Context, params TicketActionParams) error
	Claim(ctx context.Context, params TicketActionParams) (*domain.Ticket, error)
	Unclaim(ctx context.Context, params TicketActionParams) (*domain.Ticket, error)
	Resolve(ctx context.Context, params TicketActionParams) (*domain.Ticket, error)
	Revoke(ctx context.Context, params RevokeTicketParams) (*domain.Ticket, error)
	UpdateStatus(ctx context.Context, params UpdateStatusParams) (*domain.Ticket, error)
	UpdateDetails(ctx context.Context, params UpdateTicketParams) (*domain.Ticket, error)
	Shutdown()
}

// CommentService defines the port for comment-related business logic.
type CommentService interface {
	CreateComment(ctx context.Context, params CreateCommentParams) (*domain.Comment, error)
	GetCommentsForTicket(ctx context.Context, params GetCommentsParams) ([]*domain.Comment, error)
	Shutdown()
}

// EventService defines the port for ticket event queries.
type EventService interface {
	ListTicketEvents(ctx context.Context, params ListTicketEventsParams) ([]*domain.Event, error)
}

// RealtimeService resolves the rooms a connecting session joins.
type RealtimeService interface {
	Rooms(ctx context.Context, userID uuid.UUID) ([]string, error)
}

// AttachmentService serves stored attachments to authenticated users.
type AttachmentService interface {
	Open(ctx context.Context, actorID uuid.UUID, name string) (Attachment, error)
}

// CreateAssetParams defines the input for registering an asset.
type CreateAssetParams struct {
	ActorID  uuid.UUID
	Name     string
	Tag      string
	Category string
	Location *TicketLocationInput
}

// ListAssetsParams defines the input for listing assets.
type ListAssetsParams struct {
	ViewerID uuid.UUID
	Status   *domain.AssetStatus
	Limit    int
	Offset   int
}

// InventoryService defines the asset tracking operations.
type InventoryService interface {
	CreateAsset(ctx context.Context, params CreateAssetParams) (*domain.Asset, error)
	ListAssets(ctx context.Context, params ListAssetsParams) ([]*domain.Asset, error)
	UpdateAssetStatus(ctx context.Context, actorID, assetID uuid.UUID, status domain.AssetStatus) (*domain.Asset, error)
}

// ReportService defines ticket reporting operations.
type ReportService interface {
	GetTicketReport(ctx context.Context, actorID uuid.UUID, days int) (*domain.TicketReport, error)
	ExportTickets(ctx context.Context, actorID uuid.UUID, status *domain.TicketStatus) ([]*domain.Ticket, error)
}

// Notifier defines the port for sending asynchronous notifications.
type Notifier interface {
	Notify(ctx context.Context, params NotificationParams)
}

// EventBroadcaster pushes an event to every session joined to one of
// event.Rooms.
type EventBroadcaster interface {
	Broadcast(event domain.Event) error
}

// EventDispatcher routes committed domain events to their rooms.
type EventDispatcher interface {
	Dispatch(ticket *domain.Ticket, event *domain.Event)
}
