package domain

import (
	"net/mail"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	apperrors "github.com/lorrc/helpdesk-portal/internal/core/errors"
)

// Password validation constants
const (
	MinPasswordLength = 8
	MaxPasswordLength = 128
	MaxFullNameLength = 255
	MaxEmailLength    = 255
	MaxPhoneLength    = 32
)

// PasswordRequirements defines what a valid password needs
type PasswordRequirements struct {
	MinLength        int
	RequireUppercase bool
	RequireLowercase bool
	RequireNumber    bool
	RequireSpecial   bool
}

// DefaultPasswordRequirements returns the default password requirements
func DefaultPasswordRequirements() PasswordRequirements {
	return PasswordRequirements{
		MinLength:        MinPasswordLength,
		RequireUppercase: true,
		RequireLowercase: true,
		RequireNumber:    true,
		RequireSpecial:   false, // Optional for now
	}
}

// User is an authenticated principal of the portal. Department admins and
// employees belong to exactly one department; super admins to none.
type User struct {
	ID                uuid.UUID
	FullName          string
	Email             string
	Phone             string
	HashedPassword    string
	Role              Role
	DepartmentID      *uuid.UUID
	DepartmentName    string
	IsFirstLogin      bool
	IsNetworkEngineer bool
	Locations         []AdminLocation
	IsActive          bool
	CreatedAt         time.Time
	LastActiveAt      *time.Time
}

// UserParams holds parameters for creating a user account.
type UserParams struct {
	FullName          string
	Email             string
	Phone             string
	Password          string
	Role              Role
	DepartmentID      *uuid.UUID
	IsNetworkEngineer bool
	Locations         []AdminLocation
	IsFirstLogin      bool
}

// Validate validates user creation parameters
func (p *UserParams) Validate() error {
	errs := apperrors.NewValidationErrors()

	if p.FullName == "" {
		errs.Add("fullName", "Full name is required")
	} else if len(p.FullName) > MaxFullNameLength {
		errs.Add("fullName", "Full name must be 255 characters or less")
	}

	if p.Email == "" {
		errs.Add("email", "Email is required")
	} else if len(p.Email) > MaxEmailLength {
		errs.Add("email", "Email must be 255 characters or less")
	} else if !isValidEmail(p.Email) {
		errs.Add("email", "Invalid email format")
	}

	if len(p.Phone) > MaxPhoneLength {
		errs.Add("phone", "Phone must be 32 characters or less")
	}

	if !p.Role.IsValid() {
		errs.Add("role", "Unknown role")
	} else if p.Role != RoleSuperAdmin && (p.DepartmentID == nil || *p.DepartmentID == uuid.Nil) {
		errs.Add("departmentId", "Department is required")
	}

	if p.IsNetworkEngineer && p.Role != RoleDepartmentAdmin {
		errs.Add("isNetworkEngineer", "Only department admins can be network engineers")
	}
	if !p.IsNetworkEngineer && len(p.Locations) > 0 {
		errs.Add("locations", "Locations can only be set for network engineers")
	}

	for _, msg := range ValidatePassword(p.Password) {
		errs.Add("password", msg)
	}

	if errs.HasErrors() {
		return errs
	}
	return nil
}

// ValidatePassword checks if a password meets security requirements
// Returns a slice of error messages (empty if valid)
func ValidatePassword(password string) []string {
	var errors []string
	requirements := DefaultPasswordRequirements()

	if len(password) < requirements.MinLength {
		errors = append(errors, "Password must be at least 8 characters long")
	}

	if len(password) > MaxPasswordLength {
		errors = append(errors, "Password must be 128 characters or less")
	}

	var (
		hasUpper   bool
		hasLower   bool
		hasNumber  bool
		hasSpecial bool
	)

	for _, char := range password {
		switch {
		case unicode.IsUpper(char):
			hasUpper = true
		case unicode.IsLower(char):
			hasLower = true
		case unicode.IsNumber(char):
			hasNumber = true
		case unicode.IsPunct(char) || unicode.IsSymbol(char):
			hasSpecial = true
		}
	}

	if requirements.RequireUppercase && !hasUpper {
		errors = append(errors, "Password must contain at least one uppercase letter")
	}
	if requirements.RequireLowercase && !hasLower {
		errors = append(errors, "Password must contain at least one lowercase letter")
	}
	if requirements.RequireNumber && !hasNumber {
		errors = append(errors, "Password must contain at least one number")
	}
	if requirements.RequireSpecial && !hasSpecial {
		errors = append(errors, "Password must contain at least one special character")
	}

	return errors
}

// isValidEmail validates email format
func isValidEmail(email string) bool {
	_, err := mail.ParseAddress(email)
	return err == nil
}

// CheckPassword verifies if the provided password matches the stored hash
func (u *User) CheckPassword(password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(u.HashedPassword), []byte(password))
	return err == nil
}

// HashPassword hashes a password using bcrypt
func HashPassword(password string) (string, error) {
	// Validate password first
	if errs := ValidatePassword(password); len(errs) > 0 {
		return "", apperrors.ErrPasswordTooWeak
	}

	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(bytes), nil
}

// NewUser creates a new user with validated parameters
func NewUser(params UserParams) (*User, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}

	hashedPassword, err := HashPassword(params.Password)
	if err != nil {
		return nil, err
	}

	return &User{
		ID:                uuid.New(),
		FullName:          params.FullName,
		Email:             strings.ToLower(strings.TrimSpace(params.Email)),
		Phone:             params.Phone,
		HashedPassword:    hashedPassword,
		Role:              params.Role,
		DepartmentID:      params.DepartmentID,
		IsFirstLogin:      params.IsFirstLogin,
		IsNetworkEngineer: params.IsNetworkEngineer,
		Locations:         params.Locations,
		IsActive:          true,
		CreatedAt:         time.Now().UTC(),
	}, nil
}

// SetPassword replaces the password hash and ends the first-login state.
func (u *User) SetPassword(password string) error {
	hashed, err := HashPassword(password)
	if err != nil {
		return err
	}
	u.HashedPassword = hashed
	u.IsFirstLogin = false
	return nil
}

// HasDepartment reports whether the user is attached to a department.
func (u *User) HasDepartment() bool {
	return u.DepartmentID != nil && *u.DepartmentID != uuid.Nil
}

// BelongsTo reports whether the user is a member of the given department.
func (u *User) BelongsTo(departmentID uuid.UUID) bool {
	return u.HasDepartment() && *u.DepartmentID == departmentID
}

// Info projects the user into its display form.
func (u *User) Info() UserInfo {
	return UserInfo{
		ID:             u.ID,
		FullName:       u.FullName,
		Email:          u.Email,
		Phone:          u.Phone,
		DepartmentID:   u.DepartmentID,
		DepartmentName: u.DepartmentName,
	}
}
