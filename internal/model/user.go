package model

import "time"

// Role enumerates the account types known to the system.  Roles are
// carried as a typed value (never a bare integer) and switched on in
// the notification layer to pick the right template.
type Role string

const (
	RoleCustomer  Role = "CUSTOMER"
	RoleOrganizer Role = "ORGANIZER"
)

// Valid reports whether the role is one of the known values.
func (r Role) Valid() bool {
	return r == RoleCustomer || r == RoleOrganizer
}

// User is an account that can organize events or book tickets.
//
// Fields:
//  ID           – primary key identifier.
//  Email        – unique login email.
//  PasswordHash – bcrypt hash of the password.
//  FullName     – display name used on tickets and emails.
//  Role         – CUSTOMER or ORGANIZER.
type User struct {
	ID           uint64    // users.id
	Email        string    // users.email
	PasswordHash string    // users.password_hash
	FullName     string    // users.full_name
	Role         Role      // users.role
	CreatedAt    time.Time // users.created_at
	UpdatedAt    time.Time // users.updated_at
}

// Venue is the location an event takes place at.  The booking engine
// only ever reads venues to decorate confirmations and ticket PDFs.
//
// Fields:
//  ID      – primary key identifier.
//  Name    – venue display name.
//  Address – street address printed on tickets.
//  City    – city the venue is in.
type Venue struct {
	ID        uint64    // venues.id
	Name      string    // venues.name
	Address   string    // venues.address
	City      string    // venues.city
	CreatedAt time.Time // venues.created_at
}
