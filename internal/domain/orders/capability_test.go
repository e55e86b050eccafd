package orders

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reparto/backend/internal/domain/identity"
)

func TestCapabilityFor(t *testing.T) {
	tests := []struct {
		name     string
		status   OrderStatus
		role     identity.Role
		relation Relation
		want     Capability
	}{
		{"admin edits anywhere before terminal", StatusFacturado, identity.RoleAdmin, RelationNone, AllowAll},
		{"admin even during control of own assembly", StatusArmado, identity.RoleAdmin, RelationAssembler, AllowAll},
		{"admin denied in terminal state", StatusPagado, identity.RoleAdmin, RelationNone, Deny},
		{"operator assembles", StatusEnArmado, identity.RoleOperator, RelationNone, AllowProducts},
		{"operator assembles own order", StatusEnArmado, identity.RoleOperator, RelationAssembler, AllowProducts},
		{"operator controls someone else's assembly", StatusArmado, identity.RoleOperator, RelationNone, AllowProducts},
		{"operator cannot control own assembly", StatusArmado, identity.RoleOperator, RelationAssembler, Deny},
		{"operator handles returns in transit", StatusEnTransito, identity.RoleOperator, RelationNone, AllowProducts},
		{"assembler relation does not matter in transit", StatusEnTransito, identity.RoleOperator, RelationAssembler, AllowProducts},
		{"operator denied at invoicing", StatusArmadoControlado, identity.RoleOperator, RelationNone, Deny},
		{"operator denied at invoice control", StatusFacturado, identity.RoleOperator, RelationNone, Deny},
		{"operator denied after delivery", StatusEntregado, identity.RoleOperator, RelationNone, Deny},
		{"operator denied in terminal state", StatusPagado, identity.RoleOperator, RelationNone, Deny},
		{"unknown role denied", StatusEnArmado, identity.Role("GUEST"), RelationNone, Deny},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CapabilityFor(tt.status, tt.role, tt.relation))
		})
	}
}

func TestRelationOf(t *testing.T) {
	assembler := testActor("ana", identity.RoleOperator)
	other := testActor("bruno", identity.RoleOperator)

	order := newTestOrder(t)
	require.NoError(t, order.Advance(assembler, ""))

	assert.Equal(t, RelationAssembler, RelationOf(order, assembler))
	assert.Equal(t, RelationNone, RelationOf(order, other))
}

func TestCapabilityHelpers(t *testing.T) {
	admin := testActor("root", identity.RoleAdmin)
	assembler := testActor("ana", identity.RoleOperator)
	other := testActor("bruno", identity.RoleOperator)

	t.Run("price edits are admin-only", func(t *testing.T) {
		order := newTestOrder(t)
		assert.True(t, CanEditPrices(order, admin))
		assert.False(t, CanEditPrices(order, assembler))
	})

	t.Run("product edits follow the stage table", func(t *testing.T) {
		order := newTestOrder(t)
		assert.True(t, CanEditProducts(order, other))

		require.NoError(t, order.Advance(assembler, ""))
		assert.True(t, CanEditProducts(order, other))
		assert.False(t, CanEditProducts(order, assembler), "assembler must not touch the order during control")
	})

	t.Run("metadata edits are admin-only", func(t *testing.T) {
		order := newTestOrder(t)
		assert.True(t, CanEditMetadata(order, admin))
		assert.False(t, CanEditMetadata(order, other))
	})

	t.Run("deletion is admin-only at any stage", func(t *testing.T) {
		assert.True(t, CanDelete(admin))
		assert.False(t, CanDelete(other))
	})

	t.Run("advance gating", func(t *testing.T) {
		order := newTestOrder(t)
		assert.True(t, CanAdvance(order, other))
		assert.True(t, CanAdvance(order, admin))

		order.Status = StatusFacturado
		assert.False(t, CanAdvance(order, other))
		assert.True(t, CanAdvance(order, admin))

		order.Status = StatusPagado
		assert.False(t, CanAdvance(order, admin))
	})
}

func TestCapability_String(t *testing.T) {
	assert.Equal(t, "deny", Deny.String())
	assert.Equal(t, "metadata", AllowMetadata.String())
	assert.Equal(t, "products", AllowProducts.String())
	assert.Equal(t, "all", AllowAll.String())
}
