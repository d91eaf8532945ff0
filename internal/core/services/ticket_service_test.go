package services_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/lorrc/helpdesk-portal/internal/core/domain"
	apperrors "github.com/lorrc/helpdesk-portal/internal/core/errors"
	"github.com/lorrc/helpdesk-portal/internal/core/mocks"
	"github.com/lorrc/helpdesk-portal/internal/core/ports"
	"github.com/lorrc/helpdesk-portal/internal/core/services"
)

type ticketFixture struct {
	tickets    *mocks.MockTicketRepository
	events     *mocks.MockTicketEventRepository
	users      *mocks.MockUserRepository
	depts      *mocks.MockDepartmentRepository
	buildings  *mocks.MockBuildingRepository
	authz      *mocks.MockAuthorizationService
	tx         *mocks.TransactionManager
	dispatcher *mocks.MockEventDispatcher
	notifier   *mocks.MockNotifier
	svc        ports.TicketService

	dept      *domain.Department
	adminA    *domain.User
	adminB    *domain.User
	requester *domain.User
}

func newTicketFixture(t *testing.T) *ticketFixture {
	t.Helper()

	dept := &domain.Department{ID: uuid.New(), Name: "IT"}
	otherDept := uuid.New()

	f := &ticketFixture{
		tickets:    mocks.NewMockTicketRepository(),
		events:     mocks.NewMockTicketEventRepository(),
		users:      mocks.NewMockUserRepository(),
		depts:      mocks.NewMockDepartmentRepository(),
		buildings:  mocks.NewMockBuildingRepository(),
		authz:      mocks.NewMockAuthorizationService(),
		tx:         mocks.NewTransactionManager(),
		dispatcher: mocks.NewMockEventDispatcher(),
		notifier:   mocks.NewMockNotifier(),
		dept:       dept,
		adminA:     &domain.User{ID: uuid.New(), FullName: "Admin A", Role: domain.RoleDepartmentAdmin, DepartmentID: &dept.ID, DepartmentName: "IT", IsActive: true},
		adminB:     &domain.User{ID: uuid.New(), FullName: "Admin B", Role: domain.RoleDepartmentAdmin, DepartmentID: &dept.ID, DepartmentName: "IT", IsActive: true},
		requester:  &domain.User{ID: uuid.New(), FullName: "Jane Employee", Email: "jane@example.com", Role: domain.RoleEmployee, DepartmentID: &otherDept, DepartmentName: "Finance", IsActive: true},
	}

	f.svc = services.NewTicketService(services.TicketServiceDeps{
		TicketRepo:   f.tickets,
		EventRepo:    f.events,
		UserRepo:     f.users,
		DeptRepo:     f.depts,
		BuildingRepo: f.buildings,
		AuthzSvc:     f.authz,
		TxManager:    f.tx,
		Dispatcher:   f.dispatcher,
		Notifier:     f.notifier,
	})

	for _, u := range []*domain.User{f.adminA, f.adminB, f.requester} {
		f.users.On("GetByID", mock.Anything, u.ID).Return(u, nil).Maybe()
	}
	f.notifier.On("Notify", mock.Anything, mock.Anything).Return().Maybe()
	return f
}

func (f *ticketFixture) pendingTicket() *domain.Ticket {
	return &domain.Ticket{
		ID:               7,
		Code:             "TKT-2026-00007",
		Title:            "Projector broken",
		Status:           domain.StatusPending,
		ToDepartmentID:   f.dept.ID,
		ToDepartmentName: f.dept.Name,
		Requester:        f.requester.Info(),
		CreatedAt:        time.Now().UTC(),
	}
}

// expectMutations wires a ticket that is read, updated and evented in place.
func (f *ticketFixture) expectMutations(ticket *domain.Ticket) *[]*domain.Event {
	recorded := &[]*domain.Event{}
	stored := &domain.Event{}
	f.tickets.On("GetForUpdate", mock.Anything, ticket.ID).Return(ticket, nil)
	f.tickets.On("Update", mock.Anything, ticket).Return(ticket, nil)
	f.events.On("Create", mock.Anything, mock.AnythingOfType("*domain.Event")).
		Run(func(args mock.Arguments) {
			evt := args.Get(1).(*domain.Event)
			*recorded = append(*recorded, evt)
			*stored = *evt
			stored.ID = int64(len(*recorded))
		}).
		Return(stored, nil)
	f.dispatcher.On("Dispatch", ticket, mock.AnythingOfType("*domain.Event")).Return()
	return recorded
}

func assertDenied(t *testing.T, err error, reason domain.DenyReason) {
	t.Helper()
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrForbidden)
	var denial *domain.DenialError
	if assert.True(t, errors.As(err, &denial), "expected a gate denial, got %v", err) {
		assert.Equal(t, reason, denial.Reason)
	}
}

func TestTicketService_CreateTicket(t *testing.T) {
	ctx := context.Background()

	t.Run("success emits new-ticket", func(t *testing.T) {
		f := newTicketFixture(t)

		f.authz.On("Can", ctx, f.requester.ID, domain.PermTicketsCreate).Return(true, nil)
		f.depts.On("GetByID", ctx, f.dept.ID).Return(f.dept, nil)
		f.tickets.On("Create", ctx, mock.AnythingOfType("*domain.Ticket")).
			Return(func() *domain.Ticket {
				tk := f.pendingTicket()
				tk.ID = 42
				tk.ToDepartmentName = ""
				return tk
			}(), nil)
		f.events.On("Create", ctx, mock.MatchedBy(func(e *domain.Event) bool {
			return e.Type == domain.EventNewTicket && e.TicketID == 42
		})).Return(&domain.Event{ID: 1, Type: domain.EventNewTicket, TicketID: 42}, nil)
		f.dispatcher.On("Dispatch", mock.MatchedBy(func(tk *domain.Ticket) bool {
			return tk.ID == 42 && tk.ToDepartmentName == "IT"
		}), mock.AnythingOfType("*domain.Event")).Return()

		ticket, err := f.svc.CreateTicket(ctx, ports.CreateTicketParams{
			ActorID:        f.requester.ID,
			Title:          "Projector broken",
			Priority:       domain.PriorityHigh,
			ToDepartmentID: f.dept.ID,
		})

		require.NoError(t, err)
		assert.Equal(t, int64(42), ticket.ID)
		assert.Equal(t, 1, f.tx.Calls)
		f.tickets.AssertExpectations(t)
		f.events.AssertExpectations(t)
		f.dispatcher.AssertExpectations(t)
	})

	t.Run("forbidden when no permission", func(t *testing.T) {
		f := newTicketFixture(t)
		f.authz.On("Can", ctx, f.adminA.ID, domain.PermTicketsCreate).Return(false, nil)

		ticket, err := f.svc.CreateTicket(ctx, ports.CreateTicketParams{ActorID: f.adminA.ID, Title: "x", ToDepartmentID: f.dept.ID})

		assert.Nil(t, ticket)
		assert.ErrorIs(t, err, apperrors.ErrForbidden)
		f.tickets.AssertNotCalled(t, "Create")
	})

	t.Run("validation error for empty title", func(t *testing.T) {
		f := newTicketFixture(t)
		f.authz.On("Can", ctx, f.requester.ID, domain.PermTicketsCreate).Return(true, nil)
		f.depts.On("GetByID", ctx, f.dept.ID).Return(f.dept, nil)

		ticket, err := f.svc.CreateTicket(ctx, ports.CreateTicketParams{ActorID: f.requester.ID, ToDepartmentID: f.dept.ID})

		assert.Nil(t, ticket)
		var validationErr *apperrors.ValidationErrors
		assert.ErrorAs(t, err, &validationErr)
		f.tickets.AssertNotCalled(t, "Create")
		assert.Equal(t, 0, f.tx.Calls)
	})

	t.Run("unknown building", func(t *testing.T) {
		f := newTicketFixture(t)
		building := uuid.New()
		f.authz.On("Can", ctx, f.requester.ID, domain.PermTicketsCreate).Return(true, nil)
		f.depts.On("GetByID", ctx, f.dept.ID).Return(f.dept, nil)
		f.buildings.On("GetByIDs", ctx, []uuid.UUID{building}).Return(map[uuid.UUID]*domain.Building{}, nil)

		_, err := f.svc.CreateTicket(ctx, ports.CreateTicketParams{
			ActorID:        f.requester.ID,
			Title:          "Switch down",
			ToDepartmentID: f.dept.ID,
			Location:       &ports.TicketLocationInput{BuildingID: building, Floor: 1},
		})
		assert.ErrorIs(t, err, apperrors.ErrBuildingNotFound)
	})

	t.Run("floor outside building", func(t *testing.T) {
		f := newTicketFixture(t)
		building := &domain.Building{ID: uuid.New(), Name: "Main", Floors: 2}
		f.authz.On("Can", ctx, f.requester.ID, domain.PermTicketsCreate).Return(true, nil)
		f.depts.On("GetByID", ctx, f.dept.ID).Return(f.dept, nil)
		f.buildings.On("GetByIDs", ctx, []uuid.UUID{building.ID}).
			Return(map[uuid.UUID]*domain.Building{building.ID: building}, nil)

		_, err := f.svc.CreateTicket(ctx, ports.CreateTicketParams{
			ActorID:        f.requester.ID,
			Title:          "Switch down",
			ToDepartmentID: f.dept.ID,
			Location:       &ports.TicketLocationInput{BuildingID: building.ID, Floor: 5},
		})
		assert.ErrorIs(t, err, apperrors.ErrInvalidLocation)
	})
}

func TestTicketService_ClaimAndResolveScenario(t *testing.T) {
	ctx := context.Background()
	f := newTicketFixture(t)
	ticket := f.pendingTicket()
	recorded := f.expectMutations(ticket)

	claimed, err := f.svc.Claim(ctx, ports.TicketActionParams{TicketID: ticket.ID, ActorID: f.adminA.ID})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusInProgress, claimed.Status)
	assert.True(t, claimed.IsAssignedTo(f.adminA.ID))
	assert.Equal(t, "Admin A", claimed.AssignedToName)

	_, err = f.svc.Resolve(ctx, ports.TicketActionParams{TicketID: ticket.ID, ActorID: f.adminB.ID})
	assertDenied(t, err, domain.ReasonNotAssigned)
	assert.Equal(t, domain.StatusInProgress, ticket.Status)

	resolved, err := f.svc.Resolve(ctx, ports.TicketActionParams{TicketID: ticket.ID, ActorID: f.adminA.ID})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusResolved, resolved.Status)

	for _, actor := range []*domain.User{f.adminA, f.adminB} {
		_, err = f.svc.UpdateStatus(ctx, ports.UpdateStatusParams{TicketID: ticket.ID, ActorID: actor.ID, Status: domain.StatusPending})
		assertDenied(t, err, domain.ReasonTerminalState)
	}

	f.svc.Shutdown()

	require.Len(t, *recorded, 2)
	for _, evt := range *recorded {
		assert.Equal(t, domain.EventStatusUpdate, evt.Type)
		assert.Equal(t, domain.EventSchemaVersion, evt.Version)
	}
	payload, err := (*recorded)[1].DecodePayload()
	require.NoError(t, err)
	assert.Equal(t, domain.StatusResolved, payload.(*domain.StatusUpdatePayload).Status)

	f.dispatcher.AssertNumberOfCalls(t, "Dispatch", 2)
	f.tickets.AssertNumberOfCalls(t, "Update", 2)
}

func TestTicketService_RevokeScenario(t *testing.T) {
	ctx := context.Background()
	f := newTicketFixture(t)
	ticket := f.pendingTicket()
	ticket.Status = domain.StatusInProgress
	ticket.AssignedTo = &f.adminA.ID
	recorded := f.expectMutations(ticket)

	revoked, err := f.svc.Revoke(ctx, ports.RevokeTicketParams{TicketID: ticket.ID, ActorID: f.requester.ID, Reason: "Fixed it myself"})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusRevoked, revoked.Status)

	require.Len(t, *recorded, 1)
	assert.Equal(t, domain.EventTicketRevoked, (*recorded)[0].Type)
	payload, err := (*recorded)[0].DecodePayload()
	require.NoError(t, err)
	assert.Equal(t, "Fixed it myself", payload.(*domain.TicketRevokedPayload).Message)

	_, err = f.svc.Claim(ctx, ports.TicketActionParams{TicketID: ticket.ID, ActorID: f.adminB.ID})
	assertDenied(t, err, domain.ReasonTerminalState)

	f.dispatcher.AssertNumberOfCalls(t, "Dispatch", 1)
	f.notifier.AssertNotCalled(t, "Notify", mock.Anything, mock.Anything)
}

func TestTicketService_RevokeRequiresRequester(t *testing.T) {
	ctx := context.Background()
	f := newTicketFixture(t)
	ticket := f.pendingTicket()
	f.tickets.On("GetForUpdate", mock.Anything, ticket.ID).Return(ticket, nil)

	_, err := f.svc.Revoke(ctx, ports.RevokeTicketParams{TicketID: ticket.ID, ActorID: f.adminA.ID})

	assertDenied(t, err, domain.ReasonNotRequester)
	f.tickets.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestTicketService_RequesterCannotClaim(t *testing.T) {
	ctx := context.Background()
	f := newTicketFixture(t)
	ticket := f.pendingTicket()
	f.tickets.On("GetForUpdate", mock.Anything, ticket.ID).Return(ticket, nil)

	_, err := f.svc.Claim(ctx, ports.TicketActionParams{TicketID: ticket.ID, ActorID: f.requester.ID})

	assert.ErrorIs(t, err, apperrors.ErrForbidden)
	assert.Equal(t, domain.StatusPending, ticket.Status)
}

func TestTicketService_FailedWriteEmitsNothing(t *testing.T) {
	ctx := context.Background()
	f := newTicketFixture(t)
	ticket := f.pendingTicket()
	dbErr := errors.New("connection reset")

	f.tickets.On("GetForUpdate", mock.Anything, ticket.ID).Return(ticket, nil)
	f.tickets.On("Update", mock.Anything, ticket).Return(nil, dbErr)

	_, err := f.svc.Claim(ctx, ports.TicketActionParams{TicketID: ticket.ID, ActorID: f.adminA.ID})

	assert.ErrorIs(t, err, dbErr)
	f.events.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	f.dispatcher.AssertNotCalled(t, "Dispatch", mock.Anything, mock.Anything)
}

func TestTicketService_UpdateStatus(t *testing.T) {
	ctx := context.Background()

	t.Run("unknown status", func(t *testing.T) {
		f := newTicketFixture(t)
		_, err := f.svc.UpdateStatus(ctx, ports.UpdateStatusParams{TicketID: 1, ActorID: f.adminA.ID, Status: "closed"})
		assert.ErrorIs(t, err, apperrors.ErrInvalidStatus)
	})

	t.Run("in_progress claims", func(t *testing.T) {
		f := newTicketFixture(t)
		ticket := f.pendingTicket()
		f.expectMutations(ticket)

		updated, err := f.svc.UpdateStatus(ctx, ports.UpdateStatusParams{TicketID: ticket.ID, ActorID: f.adminA.ID, Status: domain.StatusInProgress})
		require.NoError(t, err)
		assert.True(t, updated.IsAssignedTo(f.adminA.ID))
		f.svc.Shutdown()
	})

	t.Run("pending unclaims", func(t *testing.T) {
		f := newTicketFixture(t)
		ticket := f.pendingTicket()
		ticket.Status = domain.StatusInProgress
		ticket.AssignedTo = &f.adminA.ID
		f.expectMutations(ticket)

		updated, err := f.svc.UpdateStatus(ctx, ports.UpdateStatusParams{TicketID: ticket.ID, ActorID: f.adminA.ID, Status: domain.StatusPending})
		require.NoError(t, err)
		assert.Equal(t, domain.StatusPending, updated.Status)
		assert.Nil(t, updated.AssignedTo)
		f.svc.Shutdown()
	})
}

func TestTicketService_UpdateDetails(t *testing.T) {
	ctx := context.Background()
	desc := "Now it smokes"

	t.Run("requester edits pending ticket", func(t *testing.T) {
		f := newTicketFixture(t)
		ticket := f.pendingTicket()
		recorded := f.expectMutations(ticket)

		updated, err := f.svc.UpdateDetails(ctx, ports.UpdateTicketParams{TicketID: ticket.ID, ActorID: f.requester.ID, Description: &desc})
		require.NoError(t, err)
		assert.Equal(t, desc, updated.Description)
		require.Len(t, *recorded, 1)
		assert.Equal(t, domain.EventTicketUpdated, (*recorded)[0].Type)
	})

	t.Run("admin cannot edit", func(t *testing.T) {
		f := newTicketFixture(t)
		ticket := f.pendingTicket()
		f.tickets.On("GetForUpdate", mock.Anything, ticket.ID).Return(ticket, nil)

		_, err := f.svc.UpdateDetails(ctx, ports.UpdateTicketParams{TicketID: ticket.ID, ActorID: f.adminA.ID, Description: &desc})
		assert.ErrorIs(t, err, apperrors.ErrForbidden)
	})

	t.Run("claimed ticket is frozen", func(t *testing.T) {
		f := newTicketFixture(t)
		ticket := f.pendingTicket()
		ticket.Status = domain.StatusInProgress
		f.tickets.On("GetForUpdate", mock.Anything, ticket.ID).Return(ticket, nil)

		_, err := f.svc.UpdateDetails(ctx, ports.UpdateTicketParams{TicketID: ticket.ID, ActorID: f.requester.ID, Description: &desc})
		assert.ErrorIs(t, err, apperrors.ErrTicketNotEditable)
	})
}

func TestTicketService_GetTicket(t *testing.T) {
	ctx := context.Background()

	t.Run("requester can access own ticket", func(t *testing.T) {
		f := newTicketFixture(t)
		ticket := f.pendingTicket()
		f.tickets.On("GetByID", ctx, ticket.ID).Return(ticket, nil)

		got, err := f.svc.GetTicket(ctx, ticket.ID, f.requester.ID)
		require.NoError(t, err)
		assert.Equal(t, ticket, got)
	})

	t.Run("admin of another department is forbidden", func(t *testing.T) {
		f := newTicketFixture(t)
		ticket := f.pendingTicket()
		otherDept := uuid.New()
		outsider := &domain.User{ID: uuid.New(), Role: domain.RoleDepartmentAdmin, DepartmentID: &otherDept, IsActive: true}
		f.users.On("GetByID", ctx, outsider.ID).Return(outsider, nil)
		f.tickets.On("GetByID", ctx, ticket.ID).Return(ticket, nil)

		_, err := f.svc.GetTicket(ctx, ticket.ID, outsider.ID)
		assert.ErrorIs(t, err, apperrors.ErrForbidden)
	})

	t.Run("super admin sees everything", func(t *testing.T) {
		f := newTicketFixture(t)
		ticket := f.pendingTicket()
		super := &domain.User{ID: uuid.New(), Role: domain.RoleSuperAdmin, IsActive: true}
		f.users.On("GetByID", ctx, super.ID).Return(super, nil)
		f.tickets.On("GetByID", ctx, ticket.ID).Return(ticket, nil)

		_, err := f.svc.GetTicket(ctx, ticket.ID, super.ID)
		assert.NoError(t, err)
	})

	t.Run("not found", func(t *testing.T) {
		f := newTicketFixture(t)
		f.tickets.On("GetByID", ctx, int64(99)).Return(nil, apperrors.ErrTicketNotFound)

		_, err := f.svc.GetTicket(ctx, 99, f.adminA.ID)
		assert.ErrorIs(t, err, apperrors.ErrTicketNotFound)
	})
}

func TestTicketService_ListTickets(t *testing.T) {
	ctx := context.Background()

	t.Run("employee sees own tickets", func(t *testing.T) {
		f := newTicketFixture(t)
		f.tickets.On("List", ctx, mock.MatchedBy(func(p ports.ListTicketsRepoParams) bool {
			return p.Scope.RequesterID != nil && *p.Scope.RequesterID == f.requester.ID && p.Limit == 20
		})).Return([]*domain.Ticket{}, nil)

		_, err := f.svc.ListTickets(ctx, ports.ListTicketsParams{ViewerID: f.requester.ID})
		require.NoError(t, err)
		f.tickets.AssertExpectations(t)
	})

	t.Run("network engineer is scoped to locations", func(t *testing.T) {
		f := newTicketFixture(t)
		floor := 1
		engineer := &domain.User{
			ID:                uuid.New(),
			Role:              domain.RoleDepartmentAdmin,
			DepartmentID:      &f.dept.ID,
			IsNetworkEngineer: true,
			Locations:         []domain.AdminLocation{{BuildingID: uuid.New(), Floor: &floor}},
			IsActive:          true,
		}
		f.users.On("GetByID", ctx, engineer.ID).Return(engineer, nil)
		f.tickets.On("List", ctx, mock.MatchedBy(func(p ports.ListTicketsRepoParams) bool {
			return *p.Scope.ToDepartmentID == f.dept.ID && len(p.Scope.Locations) == 1 && p.Limit == 100
		})).Return([]*domain.Ticket{}, nil)

		_, err := f.svc.ListTickets(ctx, ports.ListTicketsParams{ViewerID: engineer.ID, Limit: 500})
		require.NoError(t, err)
		f.tickets.AssertExpectations(t)
	})

	t.Run("invalid status filter", func(t *testing.T) {
		f := newTicketFixture(t)
		bad := domain.TicketStatus("closed")
		_, err := f.svc.ListTickets(ctx, ports.ListTicketsParams{ViewerID: f.adminA.ID, Status: &bad})
		assert.ErrorIs(t, err, apperrors.ErrInvalidStatus)
	})
}

func TestTicketService_MarkViewed(t *testing.T) {
	ctx := context.Background()

	t.Run("first view is recorded", func(t *testing.T) {
		f := newTicketFixture(t)
		ticket := f.pendingTicket()
		f.tickets.On("GetByID", ctx, ticket.ID).Return(ticket, nil)
		f.tickets.On("MarkViewed", ctx, ticket.ID, mock.AnythingOfType("time.Time")).Return(nil)

		require.NoError(t, f.svc.MarkViewed(ctx, ports.TicketActionParams{TicketID: ticket.ID, ActorID: f.adminA.ID}))
		f.tickets.AssertExpectations(t)
	})

	t.Run("repeat view is a no-op", func(t *testing.T) {
		f := newTicketFixture(t)
		ticket := f.pendingTicket()
		seen := time.Now()
		ticket.ViewedAt = &seen
		f.tickets.On("GetByID", ctx, ticket.ID).Return(ticket, nil)

		require.NoError(t, f.svc.MarkViewed(ctx, ports.TicketActionParams{TicketID: ticket.ID, ActorID: f.adminA.ID}))
		f.tickets.AssertNotCalled(t, "MarkViewed", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("requester cannot mark viewed", func(t *testing.T) {
		f := newTicketFixture(t)
		ticket := f.pendingTicket()
		f.tickets.On("GetByID", ctx, ticket.ID).Return(ticket, nil)

		err := f.svc.MarkViewed(ctx, ports.TicketActionParams{TicketID: ticket.ID, ActorID: f.requester.ID})
		assert.ErrorIs(t, err, apperrors.ErrForbidden)
	})
}
