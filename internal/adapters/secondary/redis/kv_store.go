package redis

import (
	"context"
	"errors"
	"fmt"

	goredis "github.com/redis/go-redis/v9"

	"github.com/lorrc/helpdesk-portal/internal/core/ports"
)

// KVStore is a namespaced string store backed by Redis. Each namespace
// holds one JSON document, written in full on every change.
type KVStore struct {
	client *Client
	prefix string
}

var _ ports.KVStore = (*KVStore)(nil)

// NewKVStore creates a store whose keys live under prefix, for example a
// per-user prefix on the client side.
func NewKVStore(client *Client, prefix string) *KVStore {
	return &KVStore{client: client, prefix: prefix}
}

func (s *KVStore) key(namespace string) string {
	return s.prefix + ":" + namespace
}

// Get returns the stored value and whether the namespace exists.
func (s *KVStore) Get(ctx context.Context, namespace string) ([]byte, bool, error) {
	value, err := s.client.rdb.Get(ctx, s.key(namespace)).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("read %s: %w", namespace, err)
	}
	return value, true, nil
}

// Set overwrites the namespace. Last writer wins.
func (s *KVStore) Set(ctx context.Context, namespace string, value []byte) error {
	if err := s.client.rdb.Set(ctx, s.key(namespace), value, 0).Err(); err != nil {
		return fmt.Errorf("write %s: %w", namespace, err)
	}
	return nil
}

// Delete removes the namespace.
func (s *KVStore) Delete(ctx context.Context, namespace string) error {
	if err := s.client.rdb.Del(ctx, s.key(namespace)).Err(); err != nil {
		return fmt.Errorf("delete %s: %w", namespace, err)
	}
	return nil
}
