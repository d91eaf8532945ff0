package services

import (
	"context"
	"errors"

	"github.com/google/uuid"

	apperrors "github.com/lorrc/helpdesk-portal/internal/core/errors"
	"github.com/lorrc/helpdesk-portal/internal/core/ports"
)

// AuthorizationService implements role-based permission checks.
type AuthorizationService struct {
	userRepo ports.UserRepository
}

// Ensure implementation matches the interface.
var _ ports.AuthorizationService = (*AuthorizationService)(nil)

// NewAuthorizationService creates a new service for authorization logic.
func NewAuthorizationService(userRepo ports.UserRepository) ports.AuthorizationService {
	return &AuthorizationService{
		userRepo: userRepo,
	}
}

// Can checks if a user has a specific permission.
func (s *AuthorizationService) Can(ctx context.Context, userID uuid.UUID, permission string) (bool, error) {
	userPermissions, err := s.GetPermissions(ctx, userID)
	if err != nil {
		// If there's an error fetching permissions (e.g., db down), deny access.
		return false, err
	}

	for _, p := range userPermissions {
		if p == permission {
			return true, nil
		}
	}
	return false, nil
}

// GetPermissions returns all permissions for a user. Inactive and unknown
// users hold none.
func (s *AuthorizationService) GetPermissions(ctx context.Context, userID uuid.UUID) ([]string, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrUserNotFound) {
			return []string{}, nil
		}
		return nil, err
	}

	if !user.IsActive {
		return []string{}, nil
	}
	return user.Role.Permissions(), nil
}
