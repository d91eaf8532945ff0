package services_test

import (
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/lorrc/helpdesk-portal/internal/core/domain"
	"github.com/lorrc/helpdesk-portal/internal/core/mocks"
	"github.com/lorrc/helpdesk-portal/internal/core/services"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func dispatchTicket() *domain.Ticket {
	requester := uuid.New()
	return &domain.Ticket{
		ID:               3,
		Title:            "No network",
		Status:           domain.StatusPending,
		ToDepartmentID:   uuid.MustParse("11111111-1111-1111-1111-111111111111"),
		ToDepartmentName: "Networking",
		Requester:        domain.UserInfo{ID: requester},
		Location: &domain.TicketLocation{
			BuildingID: uuid.MustParse("22222222-2222-2222-2222-222222222222"),
			Floor:      2,
			Lab:        "Lab A",
		},
	}
}

func mustEvent(t *testing.T, ticket *domain.Ticket, actor uuid.UUID, payload domain.EventPayload) *domain.Event {
	t.Helper()
	evt, err := domain.NewEvent(ticket.ID, &actor, payload)
	require.NoError(t, err)
	return evt
}

func TestEventRooms(t *testing.T) {
	ticket := dispatchTicket()
	admin := uuid.New()
	queue := []string{
		"11111111-1111-1111-1111-111111111111",
		"department-networking",
		"network-22222222-2222-2222-2222-222222222222-2",
	}
	requesterRoom := domain.UserRoom(ticket.Requester.ID)

	tests := []struct {
		name     string
		event    *domain.Event
		expected []string
	}{
		{
			name:     "new ticket reaches the queue",
			event:    mustEvent(t, ticket, ticket.Requester.ID, &domain.NewTicketPayload{TicketID: 3, Code: "TKT-2026-00003", Title: "No network", From: "Finance", RaisedAt: time.Now()}),
			expected: queue,
		},
		{
			name:     "revocation reaches the queue",
			event:    mustEvent(t, ticket, ticket.Requester.ID, &domain.TicketRevokedPayload{TicketID: 3, Title: "No network"}),
			expected: queue,
		},
		{
			name:     "edit reaches the queue",
			event:    mustEvent(t, ticket, ticket.Requester.ID, &domain.TicketUpdatedPayload{TicketID: 3, Title: "No network"}),
			expected: queue,
		},
		{
			name:     "status update also reaches the requester",
			event:    mustEvent(t, ticket, admin, &domain.StatusUpdatePayload{TicketID: 3, Title: "No network", Status: domain.StatusInProgress}),
			expected: append(append([]string{}, queue...), requesterRoom),
		},
		{
			name:     "requester comment reaches the queue",
			event:    mustEvent(t, ticket, ticket.Requester.ID, &domain.NewCommentPayload{TicketID: 3, Title: "No network", EmployeeName: "Jane"}),
			expected: queue,
		},
		{
			name:     "admin reply reaches only the requester",
			event:    mustEvent(t, ticket, admin, &domain.NewCommentPayload{TicketID: 3, Title: "No network", ByAdmin: true}),
			expected: []string{requesterRoom},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, services.EventRooms(ticket, tt.event))
		})
	}
}

func TestDispatcher_Dispatch(t *testing.T) {
	ticket := dispatchTicket()

	t.Run("broadcasts with rooms", func(t *testing.T) {
		broadcaster := mocks.NewMockEventBroadcaster()
		dispatcher := services.NewDispatcher(broadcaster, discardLogger())
		evt := mustEvent(t, ticket, ticket.Requester.ID, &domain.TicketRevokedPayload{TicketID: 3, Title: "No network"})

		broadcaster.On("Broadcast", mock.MatchedBy(func(e domain.Event) bool {
			return e.Type == domain.EventTicketRevoked && len(e.Rooms) == 3
		})).Return(nil)

		dispatcher.Dispatch(ticket, evt)
		broadcaster.AssertExpectations(t)
	})

	t.Run("broadcast failure is swallowed", func(t *testing.T) {
		broadcaster := mocks.NewMockEventBroadcaster()
		dispatcher := services.NewDispatcher(broadcaster, discardLogger())
		evt := mustEvent(t, ticket, ticket.Requester.ID, &domain.TicketRevokedPayload{TicketID: 3, Title: "No network"})
		broadcaster.On("Broadcast", mock.Anything).Return(errors.New("hub closed"))

		assert.NotPanics(t, func() { dispatcher.Dispatch(ticket, evt) })
	})

	t.Run("nil event is ignored", func(t *testing.T) {
		broadcaster := mocks.NewMockEventBroadcaster()
		dispatcher := services.NewDispatcher(broadcaster, discardLogger())

		dispatcher.Dispatch(ticket, nil)
		broadcaster.AssertNotCalled(t, "Broadcast", mock.Anything)
	})
}
