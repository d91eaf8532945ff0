package client

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"

	"github.com/google/uuid"

	"github.com/lorrc/helpdesk-portal/internal/core/domain"
	"github.com/lorrc/helpdesk-portal/internal/core/ports"
)

// SessionNamespace is the KV namespace holding the signed-in identity.
const SessionNamespace = "session"

// Identity is the credential and department context of a signed-in admin.
// Locations is set for network engineers only. A change in any field
// requires a fresh connection.
type Identity struct {
	UserID       uuid.UUID              `json:"userId"`
	DepartmentID *uuid.UUID             `json:"departmentId,omitempty"`
	Token        string                 `json:"token"`
	Locations    []domain.AdminLocation `json:"locations,omitempty"`
}

// Equal reports whether two identities describe the same session context.
func (i *Identity) Equal(other *Identity) bool {
	if i == nil || other == nil {
		return i == other
	}
	if i.UserID != other.UserID || i.Token != other.Token {
		return false
	}
	switch {
	case i.DepartmentID == nil && other.DepartmentID == nil:
	case i.DepartmentID == nil || other.DepartmentID == nil:
		return false
	case *i.DepartmentID != *other.DepartmentID:
		return false
	}
	return slices.EqualFunc(i.Locations, other.Locations, sameLocation)
}

func sameLocation(a, b domain.AdminLocation) bool {
	if a.BuildingID != b.BuildingID || !slices.Equal(a.Labs, b.Labs) {
		return false
	}
	if a.Floor == nil || b.Floor == nil {
		return a.Floor == b.Floor
	}
	return *a.Floor == *b.Floor
}

// LoadIdentity reads the persisted identity. ok is false when none is stored.
func LoadIdentity(ctx context.Context, kv ports.KVStore) (*Identity, bool, error) {
	data, ok, err := kv.Get(ctx, SessionNamespace)
	if err != nil || !ok {
		return nil, false, err
	}

	var id Identity
	if err := json.Unmarshal(data, &id); err != nil {
		return nil, false, fmt.Errorf("decode session: %w", err)
	}
	if id.Token == "" || id.UserID == uuid.Nil {
		return nil, false, nil
	}
	return &id, true, nil
}

// SaveIdentity persists the identity for the next start.
func SaveIdentity(ctx context.Context, kv ports.KVStore, id *Identity) error {
	data, err := json.Marshal(id)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	return kv.Set(ctx, SessionNamespace, data)
}

// ClearIdentity removes the persisted identity.
func ClearIdentity(ctx context.Context, kv ports.KVStore) error {
	return kv.Delete(ctx, SessionNamespace)
}
