package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/lorrc/helpdesk-portal/internal/core/errors"
)

const (
	MaxDepartmentNameLength = 100
	MaxBuildingNameLength   = 100
	MaxBuildingFloors       = 200
)

// Department groups admins, employees and the tickets routed to them.
type Department struct {
	ID        uuid.UUID
	Name      string
	CreatedAt time.Time
}

// NewDepartment validates the name and builds a department.
func NewDepartment(name string) (*Department, error) {
	name = strings.TrimSpace(name)
	errs := apperrors.NewValidationErrors()
	if name == "" {
		errs.Add("name", "Department name is required")
	} else if len(name) > MaxDepartmentNameLength {
		errs.Add("name", "Department name must be 100 characters or less")
	}
	if errs.HasErrors() {
		return nil, errs
	}

	return &Department{
		ID:        uuid.New(),
		Name:      name,
		CreatedAt: time.Now().UTC(),
	}, nil
}

// Building is a physical site with numbered floors starting at zero.
type Building struct {
	ID        uuid.UUID
	Name      string
	Floors    int
	CreatedAt time.Time
}

// NewBuilding validates and builds a building.
func NewBuilding(name string, floors int) (*Building, error) {
	name = strings.TrimSpace(name)
	errs := apperrors.NewValidationErrors()
	if name == "" {
		errs.Add("name", "Building name is required")
	} else if len(name) > MaxBuildingNameLength {
		errs.Add("name", "Building name must be 100 characters or less")
	}
	if floors < 1 || floors > MaxBuildingFloors {
		errs.Add("floors", "Floors must be between 1 and 200")
	}
	if errs.HasErrors() {
		return nil, errs
	}

	return &Building{
		ID:        uuid.New(),
		Name:      name,
		Floors:    floors,
		CreatedAt: time.Now().UTC(),
	}, nil
}

// HasFloor reports whether the floor number exists in the building.
func (b *Building) HasFloor(floor int) bool {
	return floor >= 0 && floor < b.Floors
}

// AdminLocation is one building/floor assignment of a network engineer.
// A zero BuildingID or nil Floor marks an incomplete entry that does not
// scope any room subscription.
type AdminLocation struct {
	BuildingID uuid.UUID `json:"building"`
	Floor      *int      `json:"floor"`
	Labs       []string  `json:"labs"`
}

// IsDefined reports whether both building and floor are set.
func (l AdminLocation) IsDefined() bool {
	return l.BuildingID != uuid.Nil && l.Floor != nil
}

// Covers reports whether a ticket location falls inside this assignment.
// An empty lab list covers every lab on the floor.
func (l AdminLocation) Covers(loc TicketLocation) bool {
	if !l.IsDefined() || l.BuildingID != loc.BuildingID || *l.Floor != loc.Floor {
		return false
	}
	if len(l.Labs) == 0 || loc.Lab == "" {
		return true
	}
	for _, lab := range l.Labs {
		if strings.EqualFold(lab, loc.Lab) {
			return true
		}
	}
	return false
}

// ValidateLocations checks every assignment against the known buildings.
func ValidateLocations(locations []AdminLocation, buildings map[uuid.UUID]*Building) error {
	errs := apperrors.NewValidationErrors()
	for _, loc := range locations {
		b, ok := buildings[loc.BuildingID]
		if !ok {
			errs.Add("locations", "Unknown building "+loc.BuildingID.String())
			continue
		}
		if loc.Floor == nil || !b.HasFloor(*loc.Floor) {
			errs.Add("locations", "Invalid floor for building "+b.Name)
		}
		for _, lab := range loc.Labs {
			if strings.TrimSpace(lab) == "" || len(lab) > MaxLabLength {
				errs.Add("locations", "Invalid lab name")
				break
			}
		}
	}
	if errs.HasErrors() {
		return errs
	}
	return nil
}
