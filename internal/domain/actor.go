package domain

// Role enumerates the actor roles recognized by the platform.
type Role string

const (
	RoleOrgUser          Role = "ORG_USER"
	RoleOrgAdmin         Role = "ORG_ADMIN"
	RoleOrgSubadmin      Role = "ORG_SUBADMIN"
	RoleMaintenanceAdmin Role = "MAINTENANCE_ADMIN"
	RoleTechnician       Role = "TECHNICIAN"
	RoleSystem           Role = "SYSTEM"
)

// Permission is a fine-grained capability granted to subadmin accounts.
type Permission string

const (
	PermissionAcceptTicket  Permission = "accept_ticket"
	PermissionManageBilling Permission = "manage_billing"
)

// Actor identifies who is attempting an operation. OrganizationID is set for
// org-side roles, VendorID for vendor-side roles.
type Actor struct {
	ID             int64
	Role           Role
	Permissions    []Permission
	OrganizationID *int64
	VendorID       *int64
}

// Has reports whether the actor holds the given permission.
func (a Actor) Has(p Permission) bool {
	for _, held := range a.Permissions {
		if held == p {
			return true
		}
	}
	return false
}

// SystemActor is used for transitions driven by the service itself, such as
// billing-state advances when an invoice is sent or paid.
func SystemActor() Actor {
	return Actor{Role: RoleSystem}
}
