package http

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	mw "github.com/lorrc/helpdesk-portal/internal/adapters/primary/http/middleware"
	"github.com/lorrc/helpdesk-portal/internal/adapters/primary/validation"
	"github.com/lorrc/helpdesk-portal/internal/auth"
	"github.com/lorrc/helpdesk-portal/internal/core/domain"
	"github.com/lorrc/helpdesk-portal/internal/core/ports"
)

// LocationDTO is a building/floor/lab triple.
type LocationDTO struct {
	BuildingID   string `json:"buildingId"`
	BuildingName string `json:"buildingName,omitempty"`
	Floor        int    `json:"floor"`
	Lab          string `json:"lab,omitempty"`
}

// LocationInput is the request form of a location.
type LocationInput struct {
	BuildingID string `json:"buildingId" validate:"required,uuid"`
	Floor      int    `json:"floor" validate:"gte=0"`
	Lab        string `json:"lab" validate:"max=64"`
}

func (in *LocationInput) toPort() *ports.TicketLocationInput {
	if in == nil {
		return nil
	}
	return &ports.TicketLocationInput{
		BuildingID: uuid.MustParse(in.BuildingID),
		Floor:      in.Floor,
		Lab:        in.Lab,
	}
}

func toLocationDTO(loc *domain.TicketLocation) *LocationDTO {
	if loc == nil {
		return nil
	}
	return &LocationDTO{
		BuildingID:   loc.BuildingID.String(),
		BuildingName: loc.BuildingName,
		Floor:        loc.Floor,
		Lab:          loc.Lab,
	}
}

// UserInfoDTO is the compact user shown on tickets.
type UserInfoDTO struct {
	ID             string `json:"id"`
	FullName       string `json:"fullName"`
	Email          string `json:"email"`
	Phone          string `json:"phone,omitempty"`
	DepartmentName string `json:"departmentName,omitempty"`
}

// TicketDTO defines the JSON response for tickets.
type TicketDTO struct {
	ID                 int64        `json:"id"`
	Code               string       `json:"code"`
	Title              string       `json:"title"`
	Description        string       `json:"description"`
	Priority           string       `json:"priority,omitempty"`
	Status             string       `json:"status"`
	FromDepartmentName string       `json:"fromDepartment,omitempty"`
	ToDepartmentID     string       `json:"toDepartmentId"`
	ToDepartmentName   string       `json:"toDepartment"`
	Requester          UserInfoDTO  `json:"requester"`
	AssignedTo         *string      `json:"assignedTo"`
	AssignedToName     string       `json:"assignedToName,omitempty"`
	Location           *LocationDTO `json:"location,omitempty"`
	Attachment         string       `json:"attachment,omitempty"`
	ViewedAt           *string      `json:"viewedAt"`
	CreatedAt          string       `json:"createdAt"`
	UpdatedAt          *string      `json:"updatedAt"`
	ResolvedAt         *string      `json:"resolvedAt"`
}

func formatTime(t *time.Time) *string {
	if t == nil {
		return nil
	}
	value := t.UTC().Format(time.RFC3339)
	return &value
}

func formatUUID(id *uuid.UUID) *string {
	if id == nil {
		return nil
	}
	value := id.String()
	return &value
}

func toTicketDTO(ticket *domain.Ticket) TicketDTO {
	return TicketDTO{
		ID:                 ticket.ID,
		Code:               ticket.Code,
		Title:              ticket.Title,
		Description:        ticket.Description,
		Priority:           string(ticket.Priority),
		Status:             string(ticket.Status),
		FromDepartmentName: ticket.FromDepartmentName,
		ToDepartmentID:     ticket.ToDepartmentID.String(),
		ToDepartmentName:   ticket.ToDepartmentName,
		Requester: UserInfoDTO{
			ID:             ticket.Requester.ID.String(),
			FullName:       ticket.Requester.FullName,
			Email:          ticket.Requester.Email,
			Phone:          ticket.Requester.Phone,
			DepartmentName: ticket.Requester.DepartmentName,
		},
		AssignedTo:     formatUUID(ticket.AssignedTo),
		AssignedToName: ticket.AssignedToName,
		Location:       toLocationDTO(ticket.Location),
		Attachment:     ticket.Attachment,
		ViewedAt:       formatTime(ticket.ViewedAt),
		CreatedAt:      ticket.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:      formatTime(ticket.UpdatedAt),
		ResolvedAt:     formatTime(ticket.ResolvedAt),
	}
}

func toTicketDTOs(tickets []*domain.Ticket) []TicketDTO {
	response := make([]TicketDTO, 0, len(tickets))
	for _, ticket := range tickets {
		response = append(response, toTicketDTO(ticket))
	}
	return response
}

// CommentDTO defines the JSON response for comments.
type CommentDTO struct {
	ID         int64  `json:"id"`
	TicketID   int64  `json:"ticketId"`
	AuthorID   string `json:"authorId"`
	AuthorName string `json:"authorName"`
	AuthorRole string `json:"authorRole"`
	Body       string `json:"body"`
	Attachment string `json:"attachment,omitempty"`
	CreatedAt  string `json:"createdAt"`
}

func toCommentDTO(comment *domain.Comment) CommentDTO {
	return CommentDTO{
		ID:         comment.ID,
		TicketID:   comment.TicketID,
		AuthorID:   comment.AuthorID.String(),
		AuthorName: comment.AuthorName,
		AuthorRole: string(comment.AuthorRole),
		Body:       comment.Body,
		Attachment: comment.Attachment,
		CreatedAt:  comment.CreatedAt.UTC().Format(time.RFC3339),
	}
}

func toCommentDTOs(comments []*domain.Comment) []CommentDTO {
	response := make([]CommentDTO, 0, len(comments))
	for _, comment := range comments {
		response = append(response, toCommentDTO(comment))
	}
	return response
}

// AdminLocationDTO is a network engineer's building/floor assignment.
type AdminLocationDTO struct {
	BuildingID string   `json:"buildingId" validate:"required,uuid"`
	Floor      *int     `json:"floor" validate:"required,gte=0"`
	Labs       []string `json:"labs" validate:"omitempty,dive,max=64"`
}

func (d AdminLocationDTO) toDomain() domain.AdminLocation {
	labs := d.Labs
	if labs == nil {
		labs = []string{}
	}
	return domain.AdminLocation{
		BuildingID: uuid.MustParse(d.BuildingID),
		Floor:      d.Floor,
		Labs:       labs,
	}
}

func toAdminLocations(in []AdminLocationDTO) []domain.AdminLocation {
	out := make([]domain.AdminLocation, 0, len(in))
	for _, loc := range in {
		out = append(out, loc.toDomain())
	}
	return out
}

// UserDTO defines the JSON response for an account.
type UserDTO struct {
	ID                string             `json:"id"`
	FullName          string             `json:"fullName"`
	Email             string             `json:"email"`
	Phone             string             `json:"phone,omitempty"`
	Role              string             `json:"role"`
	DepartmentID      *string            `json:"departmentId"`
	DepartmentName    string             `json:"departmentName,omitempty"`
	IsFirstLogin      bool               `json:"isFirstLogin"`
	IsNetworkEngineer bool               `json:"isNetworkEngineer"`
	Locations         []AdminLocationDTO `json:"locations"`
	IsActive          bool               `json:"isActive"`
	CreatedAt         string             `json:"createdAt"`
	LastActiveAt      *string            `json:"lastActiveAt"`
}

func toUserDTO(user *domain.User) UserDTO {
	locations := make([]AdminLocationDTO, 0, len(user.Locations))
	for _, loc := range user.Locations {
		locations = append(locations, AdminLocationDTO{
			BuildingID: loc.BuildingID.String(),
			Floor:      loc.Floor,
			Labs:       loc.Labs,
		})
	}

	return UserDTO{
		ID:                user.ID.String(),
		FullName:          user.FullName,
		Email:             user.Email,
		Phone:             user.Phone,
		Role:              string(user.Role),
		DepartmentID:      formatUUID(user.DepartmentID),
		DepartmentName:    user.DepartmentName,
		IsFirstLogin:      user.IsFirstLogin,
		IsNetworkEngineer: user.IsNetworkEngineer,
		Locations:         locations,
		IsActive:          user.IsActive,
		CreatedAt:         user.CreatedAt.UTC().Format(time.RFC3339),
		LastActiveAt:      formatTime(user.LastActiveAt),
	}
}

// getClaims extracts the caller's claims, writing a 401 when absent.
func getClaims(w http.ResponseWriter, r *http.Request, eh *ErrorHandler) (*auth.Claims, bool) {
	claims, ok := mw.GetClaims(r.Context())
	if !ok {
		eh.unauthorized(w, r)
		return nil, false
	}
	return claims, true
}

// parseUUIDParam reads a UUID URL parameter.
func parseUUIDParam(r *http.Request, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil {
		return uuid.Nil, validation.Invalid(name, "Must be a valid UUID")
	}
	return id, nil
}

// parseInt64Param reads a positive integer URL parameter.
func parseInt64Param(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		return 0, validation.Invalid(name, "Must be a positive integer")
	}
	return id, nil
}
