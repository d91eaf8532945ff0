package memory

import (
	"context"
	"sync"

	"github.com/lorrc/helpdesk-portal/internal/core/ports"
)

// KVStore keeps namespaces in a map. Values are lost when the process exits.
type KVStore struct {
	mu     sync.RWMutex
	values map[string][]byte
}

var _ ports.KVStore = (*KVStore)(nil)

func NewKVStore() *KVStore {
	return &KVStore{values: make(map[string][]byte)}
}

func (s *KVStore) Get(_ context.Context, namespace string) ([]byte, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	value, ok := s.values[namespace]
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), value...), true, nil
}

func (s *KVStore) Set(_ context.Context, namespace string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.values[namespace] = append([]byte(nil), value...)
	return nil
}

func (s *KVStore) Delete(_ context.Context, namespace string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.values, namespace)
	return nil
}
