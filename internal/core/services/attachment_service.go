package services

import (
	"context"

	"github.com/google/uuid"

	"github.com/lorrc/helpdesk-portal/internal/core/domain"
	apperrors "github.com/lorrc/helpdesk-portal/internal/core/errors"
	"github.com/lorrc/helpdesk-portal/internal/core/ports"
)

// AttachmentService serves files referenced by tickets and comments.
type AttachmentService struct {
	store    ports.AttachmentStore
	userRepo ports.UserRepository
}

var _ ports.AttachmentService = (*AttachmentService)(nil)

func NewAttachmentService(store ports.AttachmentStore, userRepo ports.UserRepository) ports.AttachmentService {
	return &AttachmentService{store: store, userRepo: userRepo}
}

// Open returns a stream for the named attachment.
func (s *AttachmentService) Open(ctx context.Context, actorID uuid.UUID, name string) (ports.Attachment, error) {
	if !domain.IsSafeAttachmentName(name) {
		return ports.Attachment{}, apperrors.ErrInvalidAttachmentRef
	}

	actor, err := s.userRepo.GetByID(ctx, actorID)
	if err != nil {
		return ports.Attachment{}, err
	}
	if !actor.IsActive {
		return ports.Attachment{}, apperrors.ErrForbidden
	}

	return s.store.Open(ctx, name)
}
