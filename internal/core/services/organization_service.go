package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/lorrc/helpdesk-portal/internal/core/domain"
	apperrors "github.com/lorrc/helpdesk-portal/internal/core/errors"
	"github.com/lorrc/helpdesk-portal/internal/core/ports"
)

// OrganizationService implements the super-admin portal operations.
type OrganizationService struct {
	userRepo     ports.UserRepository
	deptRepo     ports.DepartmentRepository
	buildingRepo ports.BuildingRepository
	authzSvc     ports.AuthorizationService
	notifier     ports.Notifier
}

var _ ports.OrganizationService = (*OrganizationService)(nil)

func NewOrganizationService(
	userRepo ports.UserRepository,
	deptRepo ports.DepartmentRepository,
	buildingRepo ports.BuildingRepository,
	authzSvc ports.AuthorizationService,
	notifier ports.Notifier,
) ports.OrganizationService {
	return &OrganizationService{
		userRepo:     userRepo,
		deptRepo:     deptRepo,
		buildingRepo: buildingRepo,
		authzSvc:     authzSvc,
		notifier:     notifier,
	}
}

func (s *OrganizationService) CreateDepartment(ctx context.Context, actorID uuid.UUID, name string) (*domain.Department, error) {
	if err := s.requireSuperAdmin(ctx, actorID); err != nil {
		return nil, err
	}

	dept, err := domain.NewDepartment(name)
	if err != nil {
		return nil, err
	}
	return s.deptRepo.Create(ctx, dept)
}

func (s *OrganizationService) ListDepartments(ctx context.Context) ([]*domain.Department, error) {
	return s.deptRepo.List(ctx)
}

func (s *OrganizationService) CreateBuilding(ctx context.Context, actorID uuid.UUID, name string, floors int) (*domain.Building, error) {
	if err := s.requireSuperAdmin(ctx, actorID); err != nil {
		return nil, err
	}

	building, err := domain.NewBuilding(name, floors)
	if err != nil {
		return nil, err
	}
	return s.buildingRepo.Create(ctx, building)
}

func (s *OrganizationService) ListBuildings(ctx context.Context) ([]*domain.Building, error) {
	return s.buildingRepo.List(ctx)
}

// CreateDepartmentAdmin creates an admin with a temporary password that
// must be replaced on first login.
func (s *OrganizationService) CreateDepartmentAdmin(ctx context.Context, params ports.CreateAdminParams) (*domain.User, error) {
	if err := s.requireSuperAdmin(ctx, params.ActorID); err != nil {
		return nil, err
	}
	if params.IsNetworkEngineer {
		if err := s.validateLocations(ctx, params.Locations); err != nil {
			return nil, err
		}
	}

	return s.createAccount(ctx, domain.UserParams{
		FullName:          params.FullName,
		Email:             params.Email,
		Phone:             params.Phone,
		Role:              domain.RoleDepartmentAdmin,
		DepartmentID:      &params.DepartmentID,
		IsNetworkEngineer: params.IsNetworkEngineer,
		Locations:         params.Locations,
	})
}

// CreateEmployee creates an employee account with a temporary password.
func (s *OrganizationService) CreateEmployee(ctx context.Context, params ports.CreateEmployeeParams) (*domain.User, error) {
	if err := s.requireSuperAdmin(ctx, params.ActorID); err != nil {
		return nil, err
	}

	return s.createAccount(ctx, domain.UserParams{
		FullName:     params.FullName,
		Email:        params.Email,
		Phone:        params.Phone,
		Role:         domain.RoleEmployee,
		DepartmentID: &params.DepartmentID,
	})
}

// ListDepartmentUsers lists a department's accounts of one role. Department
// admins may list their own department only.
func (s *OrganizationService) ListDepartmentUsers(ctx context.Context, actorID, departmentID uuid.UUID, role domain.Role) ([]*domain.User, error) {
	actor, err := s.userRepo.GetByID(ctx, actorID)
	if err != nil {
		return nil, err
	}
	switch actor.Role {
	case domain.RoleSuperAdmin:
	case domain.RoleDepartmentAdmin:
		if !actor.BelongsTo(departmentID) {
			return nil, apperrors.ErrForbidden
		}
	default:
		return nil, apperrors.ErrForbidden
	}

	if !role.IsValid() {
		return nil, apperrors.NewBadRequestError(apperrors.ErrBadRequest, "Unknown role")
	}
	return s.userRepo.ListByDepartment(ctx, departmentID, role)
}

// UpdateAdminLocations replaces the location assignments of a network
// engineer.
func (s *OrganizationService) UpdateAdminLocations(ctx context.Context, actorID, adminID uuid.UUID, locations []domain.AdminLocation) (*domain.User, error) {
	if err := s.requireSuperAdmin(ctx, actorID); err != nil {
		return nil, err
	}

	admin, err := s.userRepo.GetByID(ctx, adminID)
	if err != nil {
		return nil, err
	}
	if admin.Role != domain.RoleDepartmentAdmin || !admin.IsNetworkEngineer {
		return nil, apperrors.ErrNotNetworkEngineer
	}
	if err := s.validateLocations(ctx, locations); err != nil {
		return nil, err
	}

	if err := s.userRepo.UpdateLocations(ctx, adminID, locations); err != nil {
		return nil, err
	}
	admin.Locations = locations
	return admin, nil
}

func (s *OrganizationService) UpdateUserStatus(ctx context.Context, actorID, userID uuid.UUID, isActive bool) error {
	if err := s.requireSuperAdmin(ctx, actorID); err != nil {
		return err
	}
	if userID == actorID && !isActive {
		return apperrors.ErrForbidden
	}

	if _, err := s.userRepo.GetByID(ctx, userID); err != nil {
		return err
	}
	return s.userRepo.SetActive(ctx, userID, isActive)
}

// ResetUserPassword issues a new temporary password and puts the account
// back into the first-login flow.
func (s *OrganizationService) ResetUserPassword(ctx context.Context, actorID, userID uuid.UUID) error {
	if err := s.requireSuperAdmin(ctx, actorID); err != nil {
		return err
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return err
	}

	temporaryPassword, err := generateTemporaryPassword(temporaryPasswordLength)
	if err != nil {
		return err
	}
	hashedPassword, err := domain.HashPassword(temporaryPassword)
	if err != nil {
		return err
	}
	if err := s.userRepo.UpdatePassword(ctx, userID, hashedPassword, true); err != nil {
		return err
	}

	s.sendTemporaryPassword(ctx, user, temporaryPassword)
	return nil
}

func (s *OrganizationService) createAccount(ctx context.Context, params domain.UserParams) (*domain.User, error) {
	if params.DepartmentID == nil || *params.DepartmentID == uuid.Nil {
		return nil, apperrors.ErrDepartmentRequired
	}
	dept, err := s.deptRepo.GetByID(ctx, *params.DepartmentID)
	if err != nil {
		return nil, err
	}

	_, err = s.userRepo.GetByEmail(ctx, normalizeEmail(params.Email))
	if err == nil {
		return nil, apperrors.ErrUserExists
	}
	if !errors.Is(err, apperrors.ErrUserNotFound) {
		return nil, err
	}

	temporaryPassword, err := generateTemporaryPassword(temporaryPasswordLength)
	if err != nil {
		return nil, err
	}
	params.Password = temporaryPassword
	params.IsFirstLogin = true

	user, err := domain.NewUser(params)
	if err != nil {
		return nil, err
	}

	created, err := s.userRepo.Create(ctx, user)
	if err != nil {
		return nil, err
	}
	created.DepartmentName = dept.Name

	s.sendTemporaryPassword(ctx, created, temporaryPassword)
	return created, nil
}

func (s *OrganizationService) sendTemporaryPassword(ctx context.Context, user *domain.User, password string) {
	s.notifier.Notify(ctx, ports.NotificationParams{
		RecipientUserID: user.ID,
		RecipientEmail:  user.Email,
		Subject:         "Your helpdesk account",
		Message: fmt.Sprintf("Sign in with %s and the temporary password %s. You will be asked to choose a new password.",
			user.Email, password),
	})
}

func (s *OrganizationService) validateLocations(ctx context.Context, locations []domain.AdminLocation) error {
	if len(locations) == 0 {
		return nil
	}

	ids := make([]uuid.UUID, 0, len(locations))
	for _, loc := range locations {
		ids = append(ids, loc.BuildingID)
	}
	buildings, err := s.buildingRepo.GetByIDs(ctx, ids)
	if err != nil {
		return err
	}
	return domain.ValidateLocations(locations, buildings)
}

func (s *OrganizationService) requireSuperAdmin(ctx context.Context, actorID uuid.UUID) error {
	allowed, err := s.authzSvc.Can(ctx, actorID, domain.PermOrgManage)
	if err != nil {
		return err
	}
	if !allowed {
		return apperrors.ErrForbidden
	}
	return nil
}
