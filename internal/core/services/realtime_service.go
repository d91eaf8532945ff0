package services

import (
	"context"

	"github.com/google/uuid"

	"github.com/lorrc/helpdesk-portal/internal/core/domain"
	apperrors "github.com/lorrc/helpdesk-portal/internal/core/errors"
	"github.com/lorrc/helpdesk-portal/internal/core/ports"
)

// RealtimeService computes push subscriptions for connecting sessions.
type RealtimeService struct {
	userRepo ports.UserRepository
}

var _ ports.RealtimeService = (*RealtimeService)(nil)

func NewRealtimeService(userRepo ports.UserRepository) ports.RealtimeService {
	return &RealtimeService{userRepo: userRepo}
}

// Rooms returns the full room set for the user, recomputed on every
// connect. Department admins get their department and location rooms;
// everyone gets a private room for events about their own tickets.
func (s *RealtimeService) Rooms(ctx context.Context, userID uuid.UUID) ([]string, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !user.IsActive {
		return nil, apperrors.ErrForbidden
	}

	var rooms []string
	if user.Role.Has(domain.PermRealtime) {
		rooms = domain.ResolveRooms(user)
	}
	return append(rooms, domain.UserRoom(user.ID)), nil
}
