package postgres

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/lorrc/helpdesk-portal/internal/core/domain"
)

func requirePool(t *testing.T) {
	t.Helper()
	require.NotNil(t, testPool, "testPool is nil. TestMain may not have run.")
}

func seedDepartment(t *testing.T, ctx context.Context) *domain.Department {
	t.Helper()
	requirePool(t)

	dept, err := domain.NewDepartment("Dept " + uuid.NewString()[:8])
	require.NoError(t, err)
	created, err := NewDepartmentRepository(testPool).Create(ctx, dept)
	require.NoError(t, err)
	return created
}

func seedBuilding(t *testing.T, ctx context.Context, floors int) *domain.Building {
	t.Helper()
	requirePool(t)

	building, err := domain.NewBuilding("Block "+uuid.NewString()[:8], floors)
	require.NoError(t, err)
	created, err := NewBuildingRepository(testPool).Create(ctx, building)
	require.NoError(t, err)
	return created
}

func seedUser(t *testing.T, ctx context.Context, role domain.Role, dept *domain.Department) *domain.User {
	t.Helper()
	requirePool(t)

	user := &domain.User{
		ID:             uuid.New(),
		FullName:       "User " + uuid.NewString()[:8],
		Email:          uuid.NewString() + "@example.com",
		HashedPassword: "hashedpassword",
		Role:           role,
		IsActive:       true,
	}
	if dept != nil {
		user.DepartmentID = &dept.ID
	}
	created, err := NewUserRepository(testPool).Create(ctx, user)
	require.NoError(t, err)
	return created
}

func seedTicket(t *testing.T, ctx context.Context, requester *domain.User, to *domain.Department, loc *domain.TicketLocation) *domain.Ticket {
	t.Helper()

	ticket, err := domain.NewTicket(domain.TicketParams{
		Title:          "Printer on fire",
		Description:    "Smoke from tray 2",
		Priority:       domain.PriorityHigh,
		Requester:      requester.Info(),
		ToDepartmentID: to.ID,
		Location:       loc,
	})
	require.NoError(t, err)
	created, err := NewTicketRepository(testPool).Create(ctx, ticket)
	require.NoError(t, err)
	return created
}
