package http

import (
	"encoding/csv"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/lorrc/helpdesk-portal/internal/adapters/primary/validation"
	"github.com/lorrc/helpdesk-portal/internal/core/domain"
	"github.com/lorrc/helpdesk-portal/internal/core/ports"
)

const defaultReportDays = 30

// ReportHandler serves ticket statistics and exports.
type ReportHandler struct {
	reportService ports.ReportService
	errorHandler  *ErrorHandler
	logger        *slog.Logger
}

// NewReportHandler creates a new report handler.
func NewReportHandler(
	reportService ports.ReportService,
	errorHandler *ErrorHandler,
	logger *slog.Logger,
) *ReportHandler {
	return &ReportHandler{
		reportService: reportService,
		errorHandler:  errorHandler,
		logger:        logger.With("handler", "report"),
	}
}

// RegisterRoutes registers report routes relative to /reports.
func (h *ReportHandler) RegisterRoutes(r chi.Router) {
	r.Get("/tickets", h.HandleTicketReport)
	r.Get("/tickets.csv", h.HandleExportTickets)
}

// StatusCountDTO is one bucket of the status breakdown.
type StatusCountDTO struct {
	Status string `json:"status"`
	Count  int64  `json:"count"`
}

// DepartmentCountDTO is the ticket count of one department.
type DepartmentCountDTO struct {
	DepartmentID   string `json:"departmentId"`
	DepartmentName string `json:"departmentName"`
	Count          int64  `json:"count"`
}

// VolumePointDTO is the created/resolved count of one day.
type VolumePointDTO struct {
	Day      string `json:"day"`
	Created  int64  `json:"created"`
	Resolved int64  `json:"resolved"`
}

// TicketReportDTO is the JSON shape of a ticket report.
type TicketReportDTO struct {
	DepartmentID *string              `json:"departmentId"`
	Days         int                  `json:"days"`
	StatusCounts []StatusCountDTO     `json:"statusCounts"`
	Departments  []DepartmentCountDTO `json:"departments"`
	Volume       []VolumePointDTO     `json:"volume"`
	MTTRHours    float64              `json:"mttrHours"`
}

func toTicketReportDTO(report *domain.TicketReport) TicketReportDTO {
	dto := TicketReportDTO{
		DepartmentID: formatUUID(report.DepartmentID),
		Days:         report.Days,
		StatusCounts: make([]StatusCountDTO, 0, len(report.StatusCounts)),
		Departments:  make([]DepartmentCountDTO, 0, len(report.Departments)),
		Volume:       make([]VolumePointDTO, 0, len(report.Volume)),
		MTTRHours:    report.MTTRHours,
	}
	for _, sc := range report.StatusCounts {
		dto.StatusCounts = append(dto.StatusCounts, StatusCountDTO{Status: string(sc.Status), Count: sc.Count})
	}
	for _, dc := range report.Departments {
		dto.Departments = append(dto.Departments, DepartmentCountDTO{
			DepartmentID:   dc.DepartmentID.String(),
			DepartmentName: dc.DepartmentName,
			Count:          dc.Count,
		})
	}
	for _, vp := range report.Volume {
		dto.Volume = append(dto.Volume, VolumePointDTO{
			Day:      vp.Day.UTC().Format(time.DateOnly),
			Created:  vp.CreatedCount,
			Resolved: vp.ResolvedCount,
		})
	}
	return dto
}

// HandleTicketReport handles GET /reports/tickets
func (h *ReportHandler) HandleTicketReport(w http.ResponseWriter, r *http.Request) {
	claims, ok := getClaims(w, r, h.errorHandler)
	if !ok {
		return
	}

	days := validation.ParseIntQueryParam(r, "days", defaultReportDays)

	report, err := h.reportService.GetTicketReport(r.Context(), claims.UserID, days)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	WriteSuccess(w, toTicketReportDTO(report))
}

var exportHeader = []string{
	"code", "title", "status", "priority", "to_department", "requester", "requester_email",
	"assigned_to", "building", "floor", "lab", "created_at", "resolved_at",
}

// HandleExportTickets handles GET /reports/tickets.csv
func (h *ReportHandler) HandleExportTickets(w http.ResponseWriter, r *http.Request) {
	claims, ok := getClaims(w, r, h.errorHandler)
	if !ok {
		return
	}

	status, err := parseStatusFilter(r)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	tickets, err := h.reportService.ExportTickets(r.Context(), claims.UserID, status)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	filename := fmt.Sprintf("tickets-%s.csv", time.Now().UTC().Format("20060102"))
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	w.WriteHeader(http.StatusOK)

	cw := csv.NewWriter(w)
	_ = cw.Write(exportHeader)
	for _, t := range tickets {
		_ = cw.Write(exportRow(t))
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		h.logger.ErrorContext(r.Context(), "failed to write ticket export", "error", err)
	}
}

func exportRow(t *domain.Ticket) []string {
	var building, floor, lab string
	if t.Location != nil {
		building = t.Location.BuildingName
		floor = strconv.Itoa(t.Location.Floor)
		lab = t.Location.Lab
	}
	var resolvedAt string
	if t.ResolvedAt != nil {
		resolvedAt = t.ResolvedAt.UTC().Format(time.RFC3339)
	}
	return []string{
		t.Code,
		t.Title,
		string(t.Status),
		string(t.Priority),
		t.ToDepartmentName,
		t.Requester.FullName,
		t.Requester.Email,
		t.AssignedToName,
		building,
		floor,
		lab,
		t.CreatedAt.UTC().Format(time.RFC3339),
		resolvedAt,
	}
}
