package redis

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"

	apperrors "github.com/lorrc/helpdesk-portal/internal/core/errors"
	"github.com/lorrc/helpdesk-portal/internal/core/ports"
)

const otpKeyPrefix = "helpdesk:otp:"

// OTPStore keeps first-login one-time passwords as expiring keys.
type OTPStore struct {
	client *Client
}

var _ ports.OTPStore = (*OTPStore)(nil)

func NewOTPStore(client *Client) ports.OTPStore {
	return &OTPStore{client: client}
}

func otpKey(email string) string {
	return otpKeyPrefix + strings.ToLower(strings.TrimSpace(email))
}

// Save replaces any code already pending for the email.
func (s *OTPStore) Save(ctx context.Context, email, code string, ttl time.Duration) error {
	if err := s.client.rdb.Set(ctx, otpKey(email), code, ttl).Err(); err != nil {
		return fmt.Errorf("store otp: %w", err)
	}
	return nil
}

// Consume reads and deletes the pending code in one round trip, so a code
// can be used once.
func (s *OTPStore) Consume(ctx context.Context, email string) (string, error) {
	code, err := s.client.rdb.GetDel(ctx, otpKey(email)).Result()
	if errors.Is(err, goredis.Nil) {
		return "", apperrors.ErrInvalidOTP
	}
	if err != nil {
		return "", fmt.Errorf("consume otp: %w", err)
	}
	return code, nil
}
