package ports

import (
	"context"
	"io"
	"time"

	"github.com/google/uuid"

	"github.com/lorrc/helpdesk-portal/internal/core/domain"
)

// UserRepository persists users and their network-engineer locations.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	ListByDepartment(ctx context.Context, departmentID uuid.UUID, role domain.Role) ([]*domain.User, error)
	UpdatePassword(ctx context.Context, id uuid.UUID, hashedPassword string, isFirstLogin bool) error
	UpdateLocations(ctx context.Context, id uuid.UUID, locations []domain.AdminLocation) error
	SetActive(ctx context.Context, id uuid.UUID, isActive bool) error
	UpdateLastActive(ctx context.Context, id uuid.UUID, at time.Time) error
	ExistsByRole(ctx context.Context, role domain.Role) (bool, error)
}

// DepartmentRepository persists departments.
type DepartmentRepository interface {
	Create(ctx context.Context, dept *domain.Department) (*domain.Department, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Department, error)
	List(ctx context.Context) ([]*domain.Department, error)
}

// BuildingRepository persists buildings.
type BuildingRepository interface {
	Create(ctx context.Context, building *domain.Building) (*domain.Building, error)
	GetByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*domain.Building, error)
	List(ctx context.Context) ([]*domain.Building, error)
}

// TicketScope narrows a ticket listing. Zero values mean no restriction.
type TicketScope struct {
	ToDepartmentID *uuid.UUID
	RequesterID    *uuid.UUID
	Locations      []domain.AdminLocation
}

// ListTicketsRepoParams is the repository-level form of a ticket listing.
type ListTicketsRepoParams struct {
	Scope  TicketScope
	Status *domain.TicketStatus
	Limit  int
	Offset int
}

// TicketRepository persists tickets.
type TicketRepository interface {
	Create(ctx context.Context, ticket *domain.Ticket) (*domain.Ticket, error)
	GetByID(ctx context.Context, id int64) (*domain.Ticket, error)
	// GetForUpdate locks the ticket row for the surrounding transaction.
	GetForUpdate(ctx context.Context, id int64) (*domain.Ticket, error)
	Update(ctx context.Context, ticket *domain.Ticket) (*domain.Ticket, error)
	MarkViewed(ctx context.Context, id int64, at time.Time) error
	List(ctx context.Context, params ListTicketsRepoParams) ([]*domain.Ticket, error)
}

// CommentRepository persists ticket comments.
type CommentRepository interface {
	Create(ctx context.Context, comment *domain.Comment) (*domain.Comment, error)
	ListByTicketID(ctx context.Context, ticketID int64) ([]*domain.Comment, error)
}

// TicketEventRepository is the outbox of emitted domain events.
type TicketEventRepository interface {
	Create(ctx context.Context, event *domain.Event) (*domain.Event, error)
	ListByTicketID(ctx context.Context, ticketID int64, afterID int64, limit int) ([]*domain.Event, error)
}

// ListAssetsRepoParams filters an asset listing.
type ListAssetsRepoParams struct {
	DepartmentID *uuid.UUID
	Status       *domain.AssetStatus
	Limit        int
	Offset       int
}

// AssetRepository persists inventory assets.
type AssetRepository interface {
	Create(ctx context.Context, asset *domain.Asset) (*domain.Asset, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Asset, error)
	UpdateStatus(ctx context.Context, asset *domain.Asset) error
	List(ctx context.Context, params ListAssetsRepoParams) ([]*domain.Asset, error)
}

// ReportRepository computes ticket statistics.
type ReportRepository interface {
	GetTicketReport(ctx context.Context, departmentID *uuid.UUID, days int) (*domain.TicketReport, error)
}

// OTPStore keeps one-time passwords with an expiry.
type OTPStore interface {
	Save(ctx context.Context, email, code string, ttl time.Duration) error
	// Consume deletes and returns the stored code. It returns
	// apperrors.ErrInvalidOTP when nothing is stored.
	Consume(ctx context.Context, email string) (string, error)
}

// AttachmentStore reads stored attachment files.
type AttachmentStore interface {
	Open(ctx context.Context, name string) (Attachment, error)
}

// Attachment is an open attachment stream.
type Attachment struct {
	Name        string
	ContentType string
	Size        int64
	ModTime     time.Time
	Body        io.ReadSeekCloser
}

// TransactionManager defines the port for running atomic operations.
type TransactionManager interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// KVStore is a namespaced document store used by client sessions. Each
// namespace holds one serialized value, overwritten in full.
type KVStore interface {
	Get(ctx context.Context, namespace string) ([]byte, bool, error)
	Set(ctx context.Context, namespace string, value []byte) error
	Delete(ctx context.Context, namespace string) error
}
