package domain

import "time"

// User is an authenticated account: org staff, vendor staff or technician.
type User struct {
	ID             int64
	Email          string
	Name           string
	PasswordHash   string
	Role           Role
	Permissions    []Permission
	OrganizationID *int64
	VendorID       *int64
	Active         bool
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Actor derives the authorization view of the account.
func (u *User) Actor() Actor {
	return Actor{
		ID:             u.ID,
		Role:           u.Role,
		Permissions:    u.Permissions,
		OrganizationID: u.OrganizationID,
		VendorID:       u.VendorID,
	}
}
