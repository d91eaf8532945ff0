package notifications

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lorrc/helpdesk-portal/internal/adapters/secondary/memory"
	"github.com/lorrc/helpdesk-portal/internal/core/domain"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func openStore(t *testing.T, kv *memory.KVStore) *Store {
	t.Helper()
	s, err := Open(context.Background(), kv, testLogger())
	require.NoError(t, err)

	seq := 0
	s.newID = func() string {
		seq++
		return fmt.Sprintf("n-%03d", seq)
	}
	return s
}

func note(title string) Notification {
	return Notification{Type: domain.EventStatusUpdate, Title: title, Message: title}
}

func persisted(t *testing.T, kv *memory.KVStore) []Notification {
	t.Helper()
	data, ok, err := kv.Get(context.Background(), Namespace)
	require.NoError(t, err)
	require.True(t, ok)
	var items []Notification
	require.NoError(t, json.Unmarshal(data, &items))
	return items
}

func TestStore_AddPrependsAndCountsUnread(t *testing.T) {
	ctx := context.Background()
	kv := memory.NewKVStore()
	s := openStore(t, kv)

	first, err := s.Add(ctx, note("first"))
	require.NoError(t, err)
	_, err = s.Add(ctx, note("second"))
	require.NoError(t, err)

	list := s.List()
	require.Len(t, list, 2)
	assert.Equal(t, "second", list[0].Title)
	assert.Equal(t, first.ID, list[1].ID)
	assert.False(t, first.Timestamp.IsZero())
	assert.Equal(t, 2, s.UnreadCount())
	assert.Len(t, persisted(t, kv), 2)
}

func TestStore_RapidRepeatsAreNotCoalesced(t *testing.T) {
	ctx := context.Background()
	s := openStore(t, memory.NewKVStore())

	for i := 0; i < 3; i++ {
		_, err := s.Add(ctx, note("same ticket"))
		require.NoError(t, err)
	}

	assert.Len(t, s.List(), 3)
	assert.Equal(t, 3, s.UnreadCount())
}

func TestStore_CapacityKeepsMostRecent(t *testing.T) {
	ctx := context.Background()
	kv := memory.NewKVStore()
	s := openStore(t, kv)

	for i := 1; i <= Capacity+10; i++ {
		_, err := s.Add(ctx, note(fmt.Sprintf("t%d", i)))
		require.NoError(t, err)
	}

	list := s.List()
	require.Len(t, list, Capacity)
	assert.Equal(t, fmt.Sprintf("t%d", Capacity+10), list[0].Title)
	assert.Equal(t, "t11", list[Capacity-1].Title)
	assert.Equal(t, Capacity, s.UnreadCount())
	assert.Len(t, persisted(t, kv), Capacity)
}

func TestStore_MarkReadIsIdempotent(t *testing.T) {
	ctx := context.Background()
	s := openStore(t, memory.NewKVStore())

	a, err := s.Add(ctx, note("a"))
	require.NoError(t, err)
	_, err = s.Add(ctx, note("b"))
	require.NoError(t, err)

	require.NoError(t, s.MarkRead(ctx, a.ID))
	assert.Equal(t, 1, s.UnreadCount())

	require.NoError(t, s.MarkRead(ctx, a.ID))
	assert.Equal(t, 1, s.UnreadCount())

	require.NoError(t, s.MarkRead(ctx, "missing"))
	assert.Equal(t, 1, s.UnreadCount())
}

func TestStore_RemoveAndClear(t *testing.T) {
	ctx := context.Background()
	kv := memory.NewKVStore()
	s := openStore(t, kv)

	a, _ := s.Add(ctx, note("a"))
	b, _ := s.Add(ctx, note("b"))
	require.NoError(t, s.MarkRead(ctx, b.ID))

	require.NoError(t, s.Remove(ctx, b.ID))
	assert.Equal(t, 1, s.UnreadCount(), "removing a read entry keeps the count")

	require.NoError(t, s.Remove(ctx, a.ID))
	assert.Equal(t, 0, s.UnreadCount())
	assert.Empty(t, s.List())

	_, _ = s.Add(ctx, note("c"))
	require.NoError(t, s.MarkAllRead(ctx))
	assert.Equal(t, 0, s.UnreadCount())
	assert.True(t, persisted(t, kv)[0].Read)

	require.NoError(t, s.ClearAll(ctx))
	assert.Empty(t, s.List())
	assert.Empty(t, persisted(t, kv))
}

func TestStore_UnreadNeverNegative(t *testing.T) {
	ctx := context.Background()
	s := openStore(t, memory.NewKVStore())
	rng := rand.New(rand.NewSource(42))

	var ids []string
	for step := 0; step < 500; step++ {
		switch op := rng.Intn(5); {
		case op == 0 || len(ids) == 0:
			n, err := s.Add(ctx, note("x"))
			require.NoError(t, err)
			ids = append(ids, n.ID)
		case op == 1:
			require.NoError(t, s.MarkRead(ctx, ids[rng.Intn(len(ids))]))
		case op == 2:
			require.NoError(t, s.Remove(ctx, ids[rng.Intn(len(ids))]))
		case op == 3:
			require.NoError(t, s.MarkAllRead(ctx))
		default:
			require.NoError(t, s.MarkRead(ctx, "unknown"))
		}

		unread := 0
		for _, n := range s.List() {
			if !n.Read {
				unread++
			}
		}
		require.GreaterOrEqual(t, s.UnreadCount(), 0)
		require.Equal(t, unread, s.UnreadCount())
		require.LessOrEqual(t, len(s.List()), Capacity)
	}
}

func TestOpen_RehydratesAndDerivesUnread(t *testing.T) {
	ctx := context.Background()
	kv := memory.NewKVStore()

	items := []Notification{
		{ID: "3", Type: domain.EventNewComment, Title: "New Comment", Read: false, Timestamp: time.Now()},
		{ID: "2", Type: domain.EventNewTicket, Title: "New Ticket Raised", Read: true, Timestamp: time.Now()},
		{ID: "1", Type: domain.EventNewTicket, Title: "New Ticket Raised", Read: false, Timestamp: time.Now()},
	}
	data, err := json.Marshal(items)
	require.NoError(t, err)
	require.NoError(t, kv.Set(ctx, Namespace, data))

	s, err := Open(ctx, kv, testLogger())
	require.NoError(t, err)

	assert.Len(t, s.List(), 3)
	assert.Equal(t, 2, s.UnreadCount())
	assert.Equal(t, "3", s.List()[0].ID)
}

func TestOpen_DiscardsCorruptList(t *testing.T) {
	ctx := context.Background()
	kv := memory.NewKVStore()
	require.NoError(t, kv.Set(ctx, Namespace, []byte("{not json")))

	s, err := Open(ctx, kv, testLogger())
	require.NoError(t, err)

	assert.Empty(t, s.List())
	assert.Equal(t, 0, s.UnreadCount())
}

type failingKV struct {
	*memory.KVStore
}

func (failingKV) Set(context.Context, string, []byte) error {
	return errors.New("disk full")
}

func TestStore_PersistFailureKeepsMemoryState(t *testing.T) {
	ctx := context.Background()
	s, err := Open(ctx, failingKV{memory.NewKVStore()}, testLogger())
	require.NoError(t, err)

	_, err = s.Add(ctx, note("a"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
	assert.Len(t, s.List(), 1)
	assert.Equal(t, 1, s.UnreadCount())
}

func TestFromEvent(t *testing.T) {
	payload := &domain.StatusUpdatePayload{TicketID: 12, Title: "VPN down", Status: domain.StatusResolved}
	evt, err := domain.NewEvent(12, nil, payload)
	require.NoError(t, err)

	n := FromEvent(evt, payload)

	assert.Equal(t, domain.EventStatusUpdate, n.Type)
	assert.Equal(t, "Status Updated", n.Title)
	assert.Equal(t, `"VPN down" is now resolved`, n.Message)
	require.NotNil(t, n.TicketID)
	assert.Equal(t, int64(12), *n.TicketID)
}
