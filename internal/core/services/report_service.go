package services

import (
	"context"

	"github.com/google/uuid"

	"github.com/lorrc/helpdesk-portal/internal/core/domain"
	apperrors "github.com/lorrc/helpdesk-portal/internal/core/errors"
	"github.com/lorrc/helpdesk-portal/internal/core/ports"
)

const (
	defaultReportDays = 30
	maxReportDays     = 365
	maxExportRows     = 10000
)

// ReportService builds ticket statistics and exports.
type ReportService struct {
	reportRepo ports.ReportRepository
	ticketRepo ports.TicketRepository
	userRepo   ports.UserRepository
}

var _ ports.ReportService = (*ReportService)(nil)

func NewReportService(
	reportRepo ports.ReportRepository,
	ticketRepo ports.TicketRepository,
	userRepo ports.UserRepository,
) ports.ReportService {
	return &ReportService{
		reportRepo: reportRepo,
		ticketRepo: ticketRepo,
		userRepo:   userRepo,
	}
}

// GetTicketReport returns statistics over the last days. Department admins
// only see their own department.
func (s *ReportService) GetTicketReport(ctx context.Context, actorID uuid.UUID, days int) (*domain.TicketReport, error) {
	deptID, err := s.reportScope(ctx, actorID)
	if err != nil {
		return nil, err
	}

	if days <= 0 {
		days = defaultReportDays
	}
	if days > maxReportDays {
		days = maxReportDays
	}

	return s.reportRepo.GetTicketReport(ctx, deptID, days)
}

// ExportTickets returns every ticket in the actor's report scope.
func (s *ReportService) ExportTickets(ctx context.Context, actorID uuid.UUID, status *domain.TicketStatus) ([]*domain.Ticket, error) {
	deptID, err := s.reportScope(ctx, actorID)
	if err != nil {
		return nil, err
	}
	if status != nil && !status.IsValid() {
		return nil, apperrors.ErrInvalidStatus
	}

	return s.ticketRepo.List(ctx, ports.ListTicketsRepoParams{
		Scope:  ports.TicketScope{ToDepartmentID: deptID},
		Status: status,
		Limit:  maxExportRows,
	})
}

func (s *ReportService) reportScope(ctx context.Context, actorID uuid.UUID) (*uuid.UUID, error) {
	actor, err := s.userRepo.GetByID(ctx, actorID)
	if err != nil {
		return nil, err
	}
	if !actor.IsActive || !actor.Role.Has(domain.PermReportsView) {
		return nil, apperrors.ErrForbidden
	}
	if actor.Role == domain.RoleSuperAdmin {
		return nil, nil
	}
	if !actor.HasDepartment() {
		return nil, apperrors.ErrForbidden
	}
	return actor.DepartmentID, nil
}
