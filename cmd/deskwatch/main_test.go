package main

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lorrc/helpdesk-portal/internal/adapters/secondary/memory"
	"github.com/lorrc/helpdesk-portal/internal/client"
	"github.com/lorrc/helpdesk-portal/internal/client/notifications"
)

func TestParseFlags_Defaults(t *testing.T) {
	opts, err := parseFlags(nil)
	require.NoError(t, err)

	assert.Equal(t, "ws://localhost:8080/api/v1/ws", opts.server)
	assert.Equal(t, "deskwatch", opts.prefix)
	assert.False(t, opts.memoryStore)
}

func TestIdentityFromFlags(t *testing.T) {
	user := uuid.New()
	dept := uuid.New()

	t.Run("no token", func(t *testing.T) {
		id, err := identityFromFlags(&options{userID: user.String()})
		require.NoError(t, err)
		assert.Nil(t, id)
	})

	t.Run("full identity", func(t *testing.T) {
		opts, err := parseFlags([]string{"-t", "tok", "--user-id", user.String(), "--department-id", dept.String()})
		require.NoError(t, err)

		id, err := identityFromFlags(opts)
		require.NoError(t, err)
		require.NotNil(t, id)
		assert.Equal(t, user, id.UserID)
		require.NotNil(t, id.DepartmentID)
		assert.Equal(t, dept, *id.DepartmentID)
		assert.Equal(t, "tok", id.Token)
	})

	t.Run("locations", func(t *testing.T) {
		building := uuid.New()
		opts, err := parseFlags([]string{"-t", "tok", "--user-id", user.String(),
			"--location", building.String() + ":2:L1, L2", "--location", building.String() + ":3"})
		require.NoError(t, err)

		id, err := identityFromFlags(opts)
		require.NoError(t, err)
		require.Len(t, id.Locations, 2)
		assert.Equal(t, building, id.Locations[0].BuildingID)
		assert.Equal(t, 2, *id.Locations[0].Floor)
		assert.Equal(t, []string{"L1", "L2"}, id.Locations[0].Labs)
		assert.Equal(t, 3, *id.Locations[1].Floor)
		assert.Empty(t, id.Locations[1].Labs)
	})

	t.Run("bad location", func(t *testing.T) {
		_, err := identityFromFlags(&options{token: "tok", userID: user.String(), locations: []string{"nowhere"}})
		assert.ErrorContains(t, err, "--location")
	})

	t.Run("bad user id", func(t *testing.T) {
		_, err := identityFromFlags(&options{token: "tok", userID: "nope"})
		assert.ErrorContains(t, err, "--user-id")
	})
}

func TestToast(t *testing.T) {
	ticket := int64(12)
	n := notifications.Notification{
		Title:     "New Ticket",
		Message:   "Printer jammed",
		TicketID:  &ticket,
		Timestamp: time.Now(),
	}

	var quiet bytes.Buffer
	require.NoError(t, toast(&quiet, false).Alert(n))
	assert.Contains(t, quiet.String(), "New Ticket #12: Printer jammed")
	assert.NotContains(t, quiet.String(), "\a")

	var loud bytes.Buffer
	require.NoError(t, toast(&loud, true).Alert(n))
	assert.True(t, bytes.HasPrefix(loud.Bytes(), []byte("\a")))
}

func seededStore(t *testing.T) *notifications.Store {
	t.Helper()
	ctx := context.Background()
	store, err := notifications.Open(ctx, memory.NewKVStore(), slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	for _, title := range []string{"first", "second", "third"} {
		_, err := store.Add(ctx, notifications.Notification{Title: title, Message: title, Timestamp: time.Now()})
		require.NoError(t, err)
	}
	return store
}

func TestManage(t *testing.T) {
	ctx := context.Background()

	t.Run("no maintenance flags", func(t *testing.T) {
		store := seededStore(t)
		handled, err := manage(ctx, &options{}, store)
		require.NoError(t, err)
		assert.False(t, handled)
		assert.Equal(t, 3, store.UnreadCount())
	})

	t.Run("mark read and remove", func(t *testing.T) {
		store := seededStore(t)
		items := store.List()
		handled, err := manage(ctx, &options{markRead: []string{items[0].ID}, remove: []string{items[2].ID}}, store)
		require.NoError(t, err)
		assert.True(t, handled)
		require.Len(t, store.List(), 2)
		assert.True(t, store.List()[0].Read)
		assert.Equal(t, 1, store.UnreadCount())
	})

	t.Run("mark all read", func(t *testing.T) {
		store := seededStore(t)
		handled, err := manage(ctx, &options{markAllRead: true}, store)
		require.NoError(t, err)
		assert.True(t, handled)
		assert.Len(t, store.List(), 3)
		assert.Zero(t, store.UnreadCount())
	})

	t.Run("clear", func(t *testing.T) {
		store := seededStore(t)
		handled, err := manage(ctx, &options{clear: true}, store)
		require.NoError(t, err)
		assert.True(t, handled)
		assert.Empty(t, store.List())
	})
}

func TestMaintain(t *testing.T) {
	ctx := context.Background()

	t.Run("logout forgets the session", func(t *testing.T) {
		kv := memory.NewKVStore()
		require.NoError(t, client.SaveIdentity(ctx, kv, &client.Identity{UserID: uuid.New(), Token: "tok"}))

		var out bytes.Buffer
		done, err := maintain(ctx, &options{logout: true}, kv, seededStore(t), &out)
		require.NoError(t, err)
		assert.True(t, done)

		_, ok, err := client.LoadIdentity(ctx, kv)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("mark all read prints the list", func(t *testing.T) {
		var out bytes.Buffer
		done, err := maintain(ctx, &options{markAllRead: true}, memory.NewKVStore(), seededStore(t), &out)
		require.NoError(t, err)
		assert.True(t, done)
		assert.Contains(t, out.String(), "0 unread")
		assert.Contains(t, out.String(), "third")
	})

	t.Run("nothing requested", func(t *testing.T) {
		var out bytes.Buffer
		done, err := maintain(ctx, &options{}, memory.NewKVStore(), seededStore(t), &out)
		require.NoError(t, err)
		assert.False(t, done)
		assert.Empty(t, out.String())
	})
}
