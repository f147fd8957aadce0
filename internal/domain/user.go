package domain

import "time"

// UserRole controls what a caller may do with tickets.
type UserRole string

const (
	UserRoleCustomer   UserRole = "Customer"
	UserRoleTechnician UserRole = "Technician"
	UserRoleManager    UserRole = "Manager"
)

// User is the domain model for people who open or work tickets.
type User struct {
	ID        string
	FullName  string
	Email     string
	Role      UserRole
	CreatedAt time.Time
	UpdatedAt time.Time
}
