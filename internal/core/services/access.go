package services

import (
	"github.com/lorrc/helpdesk-portal/internal/core/domain"
	"github.com/lorrc/helpdesk-portal/internal/core/ports"
)

// canViewTicket decides read access: super admins see everything, admins
// see their department's queue, employees see what they raised.
func canViewTicket(actor *domain.User, ticket *domain.Ticket) bool {
	if actor == nil || !actor.IsActive {
		return false
	}
	switch actor.Role {
	case domain.RoleSuperAdmin:
		return true
	case domain.RoleDepartmentAdmin:
		return canWorkTicket(actor, ticket)
	case domain.RoleEmployee:
		return ticket.IsRequestedBy(actor.ID)
	}
	return false
}

// canWorkTicket reports whether the admin is responsible for the ticket's
// queue. Network engineers are further limited to their locations.
func canWorkTicket(actor *domain.User, ticket *domain.Ticket) bool {
	if actor == nil || !actor.IsActive || actor.Role != domain.RoleDepartmentAdmin {
		return false
	}
	if !actor.BelongsTo(ticket.ToDepartmentID) {
		return false
	}
	if !actor.IsNetworkEngineer || ticket.Location == nil || len(actor.Locations) == 0 {
		return true
	}
	for _, loc := range actor.Locations {
		if loc.Covers(*ticket.Location) {
			return true
		}
	}
	return false
}

// ticketScopeFor returns the listing scope of the viewer, or false when the
// viewer may not list tickets at all.
func ticketScopeFor(viewer *domain.User) (ports.TicketScope, bool) {
	if viewer == nil || !viewer.IsActive {
		return ports.TicketScope{}, false
	}
	switch viewer.Role {
	case domain.RoleSuperAdmin:
		return ports.TicketScope{}, true
	case domain.RoleDepartmentAdmin:
		if !viewer.HasDepartment() {
			return ports.TicketScope{}, false
		}
		scope := ports.TicketScope{ToDepartmentID: viewer.DepartmentID}
		if viewer.IsNetworkEngineer {
			scope.Locations = viewer.Locations
		}
		return scope, true
	case domain.RoleEmployee:
		id := viewer.ID
		return ports.TicketScope{RequesterID: &id}, true
	}
	return ports.TicketScope{}, false
}

func clampPage(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
