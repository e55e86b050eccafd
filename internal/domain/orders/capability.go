package orders

import (
	"github.com/reparto/backend/internal/domain/identity"
)

// Capability is what an actor may do to an order at its current stage
type Capability int

const (
	// Deny allows nothing
	Deny Capability = iota
	// AllowMetadata allows payment method and observation edits
	AllowMetadata
	// AllowProducts allows product-line edits (quantities, checks, add/remove)
	AllowProducts
	// AllowAll allows both, plus price edits
	AllowAll
)

// String returns a readable label for logging
func (c Capability) String() string {
	switch c {
	case AllowMetadata:
		return "metadata"
	case AllowProducts:
		return "products"
	case AllowAll:
		return "all"
	}
	return "deny"
}

// Relation is the actor's relation to the order, the third key of the
// capability table. Self-control is rejected through it: the operator who
// assembled an order gets no capability while that order awaits control.
type Relation int

const (
	RelationNone Relation = iota
	RelationAssembler
)

// RelationOf resolves the actor's relation to the order
func RelationOf(o *Order, actor identity.Actor) Relation {
	if o.AssemblerID != nil && *o.AssemblerID == actor.ID {
		return RelationAssembler
	}
	return RelationNone
}

// operatorStages maps the stages in which an operator may edit product
// lines to whether the assembler relation is disqualifying there.
var operatorStages = map[OrderStatus]struct{ rejectAssembler bool }{
	StatusEnArmado:   {rejectAssembler: false}, // assembling
	StatusArmado:     {rejectAssembler: true},  // quality control
	StatusEnTransito: {rejectAssembler: false}, // returns handling
}

// CapabilityFor is the single permission predicate for order edits, keyed by
// (status, role, relation). It replaces scattered boolean checks at call
// sites.
func CapabilityFor(status OrderStatus, role identity.Role, relation Relation) Capability {
	switch role {
	case identity.RoleAdmin:
		if status.IsTerminal() {
			// Terminal orders are frozen except for deletion (CanDelete).
			return Deny
		}
		return AllowAll
	case identity.RoleOperator:
		stage, ok := operatorStages[status]
		if !ok {
			return Deny
		}
		if stage.rejectAssembler && relation == RelationAssembler {
			return Deny
		}
		return AllowProducts
	}
	return Deny
}

// CanEditProducts reports whether the actor may mutate the order's lines
func CanEditProducts(o *Order, actor identity.Actor) bool {
	c := CapabilityFor(o.Status, actor.Role, RelationOf(o, actor))
	return c == AllowProducts || c == AllowAll
}

// CanEditMetadata reports whether the actor may edit payment method and
// observations
func CanEditMetadata(o *Order, actor identity.Actor) bool {
	c := CapabilityFor(o.Status, actor.Role, RelationOf(o, actor))
	return c == AllowMetadata || c == AllowAll
}

// CanEditPrices reports whether the actor may change unit prices
func CanEditPrices(o *Order, actor identity.Actor) bool {
	return CapabilityFor(o.Status, actor.Role, RelationOf(o, actor)) == AllowAll
}

// CanDelete reports whether the actor may delete the order. Owner/admin may
// do so at any stage, terminal included.
func CanDelete(actor identity.Actor) bool {
	return actor.IsAdmin()
}

// CanAdvance reports whether the actor may execute the next stage
// transition. Admins may always advance; operators only out of the stages
// they are responsible for, and never into controlling their own assembly
// (enforced again inside Advance).
func CanAdvance(o *Order, actor identity.Actor) bool {
	if o.Status.IsTerminal() {
		return false
	}
	if actor.IsAdmin() {
		return true
	}
	return CapabilityFor(o.Status, actor.Role, RelationOf(o, actor)) == AllowProducts
}
