package domain

import "github.com/google/uuid"

// UserInfo is a lightweight projection for displaying user details, used
// for ticket requesters and comment authors.
type UserInfo struct {
	ID             uuid.UUID
	FullName       string
	Email          string
	Phone          string
	DepartmentID   *uuid.UUID
	DepartmentName string
}
