// Package memory holds process-local adapters used when Redis is disabled.
package memory

import (
	"context"
	"strings"
	"sync"
	"time"

	apperrors "github.com/lorrc/helpdesk-portal/internal/core/errors"
	"github.com/lorrc/helpdesk-portal/internal/core/ports"
)

type otpEntry struct {
	code      string
	expiresAt time.Time
}

// OTPStore keeps one-time passwords in a map. Codes are lost on restart.
type OTPStore struct {
	mu      sync.Mutex
	entries map[string]otpEntry
	now     func() time.Time
}

var _ ports.OTPStore = (*OTPStore)(nil)

func NewOTPStore() *OTPStore {
	return &OTPStore{
		entries: make(map[string]otpEntry),
		now:     time.Now,
	}
}

func (s *OTPStore) Save(_ context.Context, email, code string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sweep()
	s.entries[normalize(email)] = otpEntry{code: code, expiresAt: s.now().Add(ttl)}
	return nil
}

func (s *OTPStore) Consume(_ context.Context, email string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := normalize(email)
	entry, ok := s.entries[key]
	delete(s.entries, key)
	if !ok || !s.now().Before(entry.expiresAt) {
		return "", apperrors.ErrInvalidOTP
	}
	return entry.code, nil
}

// sweep drops expired entries. Callers hold mu.
func (s *OTPStore) sweep() {
	now := s.now()
	for key, entry := range s.entries {
		if !now.Before(entry.expiresAt) {
			delete(s.entries, key)
		}
	}
}

func normalize(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
