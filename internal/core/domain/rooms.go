package domain

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Room key prefixes. A department is reachable under two keys, its id and
// its lower-cased name, because emitters historically used both.
const (
	departmentNamePrefix = "department-"
	networkPrefix        = "network-"
	userPrefix           = "user-"
)

// DepartmentRoom is the id-keyed room of a department.
func DepartmentRoom(departmentID uuid.UUID) string {
	return departmentID.String()
}

// DepartmentNameRoom is the name-keyed room of a department.
func DepartmentNameRoom(name string) string {
	return departmentNamePrefix + strings.ToLower(strings.TrimSpace(name))
}

// NetworkRoom is the room of network engineers assigned to a building floor.
func NetworkRoom(buildingID uuid.UUID, floor int) string {
	return fmt.Sprintf("%s%s-%d", networkPrefix, buildingID, floor)
}

// UserRoom is the private room of a single user.
func UserRoom(userID uuid.UUID) string {
	return userPrefix + userID.String()
}

// ResolveRooms computes the rooms an admin session subscribes to, in order:
// department id, department name, then one network room per distinct
// building and floor. Labs never produce rooms. A user without a department
// gets no rooms at all.
func ResolveRooms(u *User) []string {
	if u == nil || !u.HasDepartment() {
		return nil
	}

	rooms := newRoomSet()
	rooms.add(DepartmentRoom(*u.DepartmentID))
	if u.DepartmentName != "" {
		rooms.add(DepartmentNameRoom(u.DepartmentName))
	}

	if u.IsNetworkEngineer {
		for _, loc := range u.Locations {
			if !loc.IsDefined() {
				continue
			}
			rooms.add(NetworkRoom(loc.BuildingID, *loc.Floor))
		}
	}

	return rooms.keys
}

// TicketRooms is the inverse of ResolveRooms: every room whose subscribers
// are responsible for the ticket.
func TicketRooms(t *Ticket) []string {
	rooms := newRoomSet()
	if t.ToDepartmentID != uuid.Nil {
		rooms.add(DepartmentRoom(t.ToDepartmentID))
	}
	if t.ToDepartmentName != "" {
		rooms.add(DepartmentNameRoom(t.ToDepartmentName))
	}
	if t.Location != nil && t.Location.BuildingID != uuid.Nil {
		rooms.add(NetworkRoom(t.Location.BuildingID, t.Location.Floor))
	}
	return rooms.keys
}

type roomSet struct {
	seen map[string]struct{}
	keys []string
}

func newRoomSet() *roomSet {
	return &roomSet{seen: make(map[string]struct{})}
}

func (s *roomSet) add(key string) {
	if _, ok := s.seen[key]; ok {
		return
	}
	s.seen[key] = struct{}{}
	s.keys = append(s.keys, key)
}
