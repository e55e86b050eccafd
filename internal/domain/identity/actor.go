package identity

import "github.com/google/uuid"

// Role is the coarse authorization role of a user.
// The surrounding application manages users and sessions; the engines only
// ever see the resolved actor.
type Role string

const (
	// RoleAdmin is the owner/admin role: metadata edits, price changes,
	// balance overrides and deletions at any stage.
	RoleAdmin Role = "ADMIN"
	// RoleOperator covers warehouse and delivery staff: product-line edits
	// only during the stage matching their responsibility.
	RoleOperator Role = "OPERATOR"
)

// IsValid checks if the role is known
func (r Role) IsValid() bool {
	switch r {
	case RoleAdmin, RoleOperator:
		return true
	}
	return false
}

// Actor is the identity performing an operation. It is passed explicitly
// into every engine call; there is no ambient current-user context.
type Actor struct {
	ID          uuid.UUID
	Name        string
	Role        Role
	Permissions []string
}

// IsAdmin returns true for the owner/admin role
func (a Actor) IsAdmin() bool {
	return a.Role == RoleAdmin
}

// HasPermission checks the fine-grained permission list
func (a Actor) HasPermission(perm string) bool {
	for _, p := range a.Permissions {
		if p == perm {
			return true
		}
	}
	return false
}
