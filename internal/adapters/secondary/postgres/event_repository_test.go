package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lorrc/helpdesk-portal/internal/core/domain"
)

func TestTicketEventRepository(t *testing.T) {
	ctx := context.Background()
	dept := seedDepartment(t, ctx)
	requester := seedUser(t, ctx, domain.RoleEmployee, dept)
	ticket := seedTicket(t, ctx, requester, dept, nil)
	repo := NewTicketEventRepository(testPool)

	payloads := []domain.EventPayload{
		&domain.NewTicketPayload{
			TicketID: ticket.ID,
			Title:    ticket.Title,
			From:     requester.FullName,
			RaisedAt: time.Now(),
		},
		&domain.TicketRevokedPayload{TicketID: ticket.ID, Title: ticket.Title},
	}

	stored := make([]*domain.Event, 0, len(payloads))
	for _, payload := range payloads {
		evt, err := domain.NewEvent(ticket.ID, &requester.ID, payload)
		require.NoError(t, err)
		created, err := repo.Create(ctx, evt)
		require.NoError(t, err)
		assert.NotZero(t, created.ID)
		assert.Equal(t, domain.EventSchemaVersion, created.Version)
		stored = append(stored, created)
	}

	all, err := repo.ListByTicketID(ctx, ticket.ID, 0, 10)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, domain.EventNewTicket, all[0].Type)
	assert.Equal(t, domain.EventTicketRevoked, all[1].Type)
	require.NotNil(t, all[1].ActorID)
	assert.Equal(t, requester.ID, *all[1].ActorID)

	payload, err := all[0].DecodePayload()
	require.NoError(t, err)
	assert.Equal(t, requester.FullName, payload.(*domain.NewTicketPayload).From)

	after, err := repo.ListByTicketID(ctx, ticket.ID, stored[0].ID, 10)
	require.NoError(t, err)
	require.Len(t, after, 1)
	assert.Equal(t, stored[1].ID, after[0].ID)
}
