package domain

import (
	"time"

	"github.com/google/uuid"
)

type StatusCount struct {
	Status TicketStatus
	Count  int64
}

type DepartmentCount struct {
	DepartmentID   uuid.UUID
	DepartmentName string
	Count          int64
}

type VolumePoint struct {
	Day           time.Time
	CreatedCount  int64
	ResolvedCount int64
}

// TicketReport summarises ticket activity over a window of days. A nil
// DepartmentID means the report spans every department.
type TicketReport struct {
	DepartmentID *uuid.UUID
	Days         int
	StatusCounts []StatusCount
	Departments  []DepartmentCount
	Volume       []VolumePoint
	MTTRHours    float64
}
