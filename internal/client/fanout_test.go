package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	wsAdapter "github.com/lorrc/helpdesk-portal/internal/adapters/primary/websocket"
	"github.com/lorrc/helpdesk-portal/internal/core/domain"
	"github.com/lorrc/helpdesk-portal/internal/core/services"
)

// TestFanout_StatusUpdateReachesDepartmentOnly runs the server hub against
// two live sessions: one admin of the ticket's department and one outsider.
func TestFanout_StatusUpdateReachesDepartmentOnly(t *testing.T) {
	hub := wsAdapter.NewHub(testLogger())
	go hub.Run()
	t.Cleanup(hub.Stop)

	itDept, financeDept := uuid.New(), uuid.New()
	admins := map[string]*domain.User{
		"tok-it":      {ID: uuid.New(), DepartmentID: &itDept, DepartmentName: "IT"},
		"tok-finance": {ID: uuid.New(), DepartmentID: &financeDept, DepartmentName: "Finance"},
	}

	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		admin, ok := admins[r.URL.Query().Get("token")]
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		c := wsAdapter.NewClient(hub, conn, admin.ID, domain.ResolveRooms(admin), testLogger())
		hub.Register <- c
		go c.WritePump()
		go c.ReadPump()
	}))
	t.Cleanup(srv.Close)
	endpoint := "ws" + strings.TrimPrefix(srv.URL, "http")

	ctx := context.Background()
	sessions := make(map[string]*sessionFixture, len(admins))
	for token, admin := range admins {
		f := newSessionFixture(t, endpoint)
		require.NoError(t, f.session.SetIdentity(ctx, &Identity{
			UserID:       admin.ID,
			DepartmentID: admin.DepartmentID,
			Token:        token,
		}))
		sessions[token] = f
	}
	require.Eventually(t, func() bool { return hub.GetClientCount() == 2 }, 2*time.Second, 10*time.Millisecond)

	ticket := &domain.Ticket{
		ID:               5,
		Title:            "Projector broken",
		Status:           domain.StatusInProgress,
		ToDepartmentID:   itDept,
		ToDepartmentName: "IT",
		Requester:        domain.UserInfo{ID: uuid.New()},
	}
	evt, err := domain.NewEvent(ticket.ID, nil, &domain.StatusUpdatePayload{
		TicketID: ticket.ID,
		Title:    ticket.Title,
		Status:   ticket.Status,
	})
	require.NoError(t, err)
	evt.Rooms = services.EventRooms(ticket, evt)
	require.NoError(t, hub.Broadcast(*evt))

	it := sessions["tok-it"]
	require.Eventually(t, func() bool { return it.alertCount() == 1 }, 2*time.Second, 10*time.Millisecond)
	list := it.store.List()
	require.Len(t, list, 1)
	assert.Equal(t, domain.EventStatusUpdate, list[0].Type)
	assert.Equal(t, "Status Updated", list[0].Title)
	require.NotNil(t, list[0].TicketID)
	assert.Equal(t, int64(5), *list[0].TicketID)

	finance := sessions["tok-finance"]
	assert.Never(t, func() bool { return finance.alertCount() > 0 }, 100*time.Millisecond, 10*time.Millisecond)
	assert.Empty(t, finance.store.List())
}
