package email

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/lorrc/helpdesk-portal/internal/core/ports"
)

// MockSMTPNotifier is a secondary adapter that logs mails instead of
// sending them. It implements the ports.Notifier interface.
type MockSMTPNotifier struct {
	userRepo ports.UserRepository
	logger   *slog.Logger
}

var _ ports.Notifier = (*MockSMTPNotifier)(nil)

// NewMockSMTPNotifier creates a new mock notifier. The repository resolves
// recipients given by user id only.
func NewMockSMTPNotifier(userRepo ports.UserRepository, logger *slog.Logger) ports.Notifier {
	return &MockSMTPNotifier{
		userRepo: userRepo,
		logger:   logger.With("component", "email_notifier"),
	}
}

// Notify logs the mail. Bodies carry one-time passwords, so they are only
// written at debug level.
func (n *MockSMTPNotifier) Notify(ctx context.Context, params ports.NotificationParams) {
	// The request context may already be cancelled when this runs async.
	notifyCtx := context.WithoutCancel(ctx)

	name, address := "", params.RecipientEmail
	if address == "" {
		if params.RecipientUserID == uuid.Nil {
			n.logger.Error("notification without recipient", "subject", params.Subject)
			return
		}
		user, err := n.userRepo.GetByID(notifyCtx, params.RecipientUserID)
		if err != nil {
			n.logger.Error("failed to get user for notification",
				"user_id", params.RecipientUserID,
				"error", err,
			)
			return
		}
		name, address = user.FullName, user.Email
	}

	attrs := []any{
		"to_name", name,
		"to_email", address,
		"subject", params.Subject,
	}
	if params.TicketID != 0 {
		attrs = append(attrs, "ticket_id", params.TicketID)
	}
	n.logger.Info("mock email sent", attrs...)
	n.logger.Debug("mock email body", "to_email", address, "body", params.Message)
}
