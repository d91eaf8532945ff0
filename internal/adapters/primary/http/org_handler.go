package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/lorrc/helpdesk-portal/internal/adapters/primary/validation"
	"github.com/lorrc/helpdesk-portal/internal/core/domain"
	"github.com/lorrc/helpdesk-portal/internal/core/ports"
)

// OrgHandler serves department, building and account management.
type OrgHandler struct {
	orgService   ports.OrganizationService
	errorHandler *ErrorHandler
	logger       *slog.Logger
}

func NewOrgHandler(orgService ports.OrganizationService, errorHandler *ErrorHandler, logger *slog.Logger) *OrgHandler {
	return &OrgHandler{
		orgService:   orgService,
		errorHandler: errorHandler,
		logger:       logger.With("handler", "org"),
	}
}

func (h *OrgHandler) RegisterRoutes(r chi.Router) {
	r.Route("/departments", func(r chi.Router) {
		r.Get("/", h.HandleListDepartments)
		r.Post("/", h.HandleCreateDepartment)
		r.Get("/{departmentID}/users", h.HandleListDepartmentUsers)
	})

	r.Route("/buildings", func(r chi.Router) {
		r.Get("/", h.HandleListBuildings)
		r.Post("/", h.HandleCreateBuilding)
	})

	r.Post("/admins", h.HandleCreateAdmin)
	r.Put("/admins/{userID}/locations", h.HandleUpdateAdminLocations)
	r.Post("/employees", h.HandleCreateEmployee)

	r.Route("/users/{userID}", func(r chi.Router) {
		r.Patch("/status", h.HandleUpdateUserStatus)
		r.Post("/reset-password", h.HandleResetPassword)
	})
}

type CreateDepartmentRequest struct {
	Name string `json:"name" validate:"required,max=100"`
}

type CreateBuildingRequest struct {
	Name   string `json:"name" validate:"required,max=100"`
	Floors int    `json:"floors" validate:"required,min=1,max=200"`
}

type CreateAdminRequest struct {
	FullName          string             `json:"fullName" validate:"required,max=255"`
	Email             string             `json:"email" validate:"required,email"`
	Phone             string             `json:"phone" validate:"max=32"`
	DepartmentID      string             `json:"departmentId" validate:"required,uuid"`
	IsNetworkEngineer bool               `json:"isNetworkEngineer"`
	Locations         []AdminLocationDTO `json:"locations" validate:"omitempty,dive"`
}

type CreateEmployeeRequest struct {
	FullName     string `json:"fullName" validate:"required,max=255"`
	Email        string `json:"email" validate:"required,email"`
	Phone        string `json:"phone" validate:"max=32"`
	DepartmentID string `json:"departmentId" validate:"required,uuid"`
}

type UpdateLocationsRequest struct {
	Locations []AdminLocationDTO `json:"locations" validate:"dive"`
}

type UpdateUserStatusRequest struct {
	IsActive *bool `json:"isActive" validate:"required"`
}

type DepartmentDTO struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	CreatedAt string `json:"createdAt"`
}

type BuildingDTO struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Floors    int    `json:"floors"`
	CreatedAt string `json:"createdAt"`
}

func toDepartmentDTO(d *domain.Department) DepartmentDTO {
	return DepartmentDTO{ID: d.ID.String(), Name: d.Name, CreatedAt: d.CreatedAt.UTC().Format(time.RFC3339)}
}

func toBuildingDTO(b *domain.Building) BuildingDTO {
	return BuildingDTO{ID: b.ID.String(), Name: b.Name, Floors: b.Floors, CreatedAt: b.CreatedAt.UTC().Format(time.RFC3339)}
}

// HandleListDepartments handles GET /org/departments
func (h *OrgHandler) HandleListDepartments(w http.ResponseWriter, r *http.Request) {
	depts, err := h.orgService.ListDepartments(r.Context())
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	response := make([]DepartmentDTO, 0, len(depts))
	for _, d := range depts {
		response = append(response, toDepartmentDTO(d))
	}
	WriteSuccess(w, response)
}

// HandleCreateDepartment handles POST /org/departments
func (h *OrgHandler) HandleCreateDepartment(w http.ResponseWriter, r *http.Request) {
	claims, ok := getClaims(w, r, h.errorHandler)
	if !ok {
		return
	}

	req, err := validation.DecodeAndValidate[CreateDepartmentRequest](r)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	dept, err := h.orgService.CreateDepartment(r.Context(), claims.UserID, req.Name)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	h.logger.InfoContext(r.Context(), "department created", "department_id", dept.ID)
	WriteCreated(w, toDepartmentDTO(dept))
}

// HandleListDepartmentUsers handles GET /org/departments/{departmentID}/users
func (h *OrgHandler) HandleListDepartmentUsers(w http.ResponseWriter, r *http.Request) {
	claims, ok := getClaims(w, r, h.errorHandler)
	if !ok {
		return
	}

	deptID, err := parseUUIDParam(r, "departmentID")
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	role := r.URL.Query().Get("role")
	if err := validation.Var("role", role,
		"omitempty,oneof="+string(domain.RoleDepartmentAdmin)+" "+string(domain.RoleEmployee)); err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	users, err := h.orgService.ListDepartmentUsers(r.Context(), claims.UserID, deptID, domain.Role(role))
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	response := make([]UserDTO, 0, len(users))
	for _, u := range users {
		response = append(response, toUserDTO(u))
	}
	WriteSuccess(w, response)
}

// HandleListBuildings handles GET /org/buildings
func (h *OrgHandler) HandleListBuildings(w http.ResponseWriter, r *http.Request) {
	buildings, err := h.orgService.ListBuildings(r.Context())
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	response := make([]BuildingDTO, 0, len(buildings))
	for _, b := range buildings {
		response = append(response, toBuildingDTO(b))
	}
	WriteSuccess(w, response)
}

// HandleCreateBuilding handles POST /org/buildings
func (h *OrgHandler) HandleCreateBuilding(w http.ResponseWriter, r *http.Request) {
	claims, ok := getClaims(w, r, h.errorHandler)
	if !ok {
		return
	}

	req, err := validation.DecodeAndValidate[CreateBuildingRequest](r)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	building, err := h.orgService.CreateBuilding(r.Context(), claims.UserID, req.Name, req.Floors)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	WriteCreated(w, toBuildingDTO(building))
}

// HandleCreateAdmin handles POST /org/admins
func (h *OrgHandler) HandleCreateAdmin(w http.ResponseWriter, r *http.Request) {
	claims, ok := getClaims(w, r, h.errorHandler)
	if !ok {
		return
	}

	req, err := validation.DecodeAndValidate[CreateAdminRequest](r)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	user, err := h.orgService.CreateDepartmentAdmin(r.Context(), ports.CreateAdminParams{
		ActorID:           claims.UserID,
		FullName:          req.FullName,
		Email:             req.Email,
		Phone:             req.Phone,
		DepartmentID:      uuid.MustParse(req.DepartmentID),
		IsNetworkEngineer: req.IsNetworkEngineer,
		Locations:         toAdminLocations(req.Locations),
	})
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	h.logger.InfoContext(r.Context(), "department admin created", "new_user_id", user.ID)
	WriteCreated(w, toUserDTO(user))
}

// HandleCreateEmployee handles POST /org/employees
func (h *OrgHandler) HandleCreateEmployee(w http.ResponseWriter, r *http.Request) {
	claims, ok := getClaims(w, r, h.errorHandler)
	if !ok {
		return
	}

	req, err := validation.DecodeAndValidate[CreateEmployeeRequest](r)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	user, err := h.orgService.CreateEmployee(r.Context(), ports.CreateEmployeeParams{
		ActorID:      claims.UserID,
		FullName:     req.FullName,
		Email:        req.Email,
		Phone:        req.Phone,
		DepartmentID: uuid.MustParse(req.DepartmentID),
	})
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	h.logger.InfoContext(r.Context(), "employee created", "new_user_id", user.ID)
	WriteCreated(w, toUserDTO(user))
}

// HandleUpdateAdminLocations handles PUT /org/admins/{userID}/locations
func (h *OrgHandler) HandleUpdateAdminLocations(w http.ResponseWriter, r *http.Request) {
	claims, ok := getClaims(w, r, h.errorHandler)
	if !ok {
		return
	}

	adminID, err := parseUUIDParam(r, "userID")
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	req, err := validation.DecodeAndValidate[UpdateLocationsRequest](r)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	user, err := h.orgService.UpdateAdminLocations(r.Context(), claims.UserID, adminID, toAdminLocations(req.Locations))
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	WriteSuccess(w, toUserDTO(user))
}

// HandleUpdateUserStatus handles PATCH /org/users/{userID}/status
func (h *OrgHandler) HandleUpdateUserStatus(w http.ResponseWriter, r *http.Request) {
	claims, ok := getClaims(w, r, h.errorHandler)
	if !ok {
		return
	}

	userID, err := parseUUIDParam(r, "userID")
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	req, err := validation.DecodeAndValidate[UpdateUserStatusRequest](r)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	if err := h.orgService.UpdateUserStatus(r.Context(), claims.UserID, userID, *req.IsActive); err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	WriteNoContent(w)
}

// HandleResetPassword handles POST /org/users/{userID}/reset-password. The
// temporary password is mailed to the user, never returned.
func (h *OrgHandler) HandleResetPassword(w http.ResponseWriter, r *http.Request) {
	claims, ok := getClaims(w, r, h.errorHandler)
	if !ok {
		return
	}

	userID, err := parseUUIDParam(r, "userID")
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	if err := h.orgService.ResetUserPassword(r.Context(), claims.UserID, userID); err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	WriteMessage(w, "A temporary password has been sent to the user")
}
