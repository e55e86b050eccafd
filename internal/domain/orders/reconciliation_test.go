package orders

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reparto/backend/internal/domain/identity"
)

func intPtr(v int) *int { return &v }

func TestReconcileLine(t *testing.T) {
	tests := []struct {
		name     string
		line     ProductLine
		status   OrderStatus
		missing  int
		returned int
	}{
		{
			name:    "pre-dispatch shortage",
			line:    ProductLine{Code: "A1", OriginalQuantity: 10, Quantity: 6},
			status:  StatusArmado,
			missing: 4,
		},
		{
			name:   "pre-dispatch fully assembled",
			line:   ProductLine{Code: "A1", OriginalQuantity: 10, Quantity: 10},
			status: StatusFacturaControlada,
		},
		{
			name:   "pre-dispatch over-assembled is not a shortage",
			line:   ProductLine{Code: "A1", OriginalQuantity: 10, Quantity: 12},
			status: StatusArmado,
		},
		{
			name:     "post-dispatch shortage and return",
			line:     ProductLine{Code: "A1", OriginalQuantity: 10, Quantity: 4, ShippedQuantity: intPtr(6)},
			status:   StatusEntregado,
			missing:  4,
			returned: 2,
		},
		{
			name:    "post-dispatch no returns",
			line:    ProductLine{Code: "A1", OriginalQuantity: 10, Quantity: 6, ShippedQuantity: intPtr(6)},
			status:  StatusEnTransito,
			missing: 4,
		},
		{
			name:   "post-dispatch everything kept",
			line:   ProductLine{Code: "A1", OriginalQuantity: 8, Quantity: 8, ShippedQuantity: intPtr(8)},
			status: StatusPagado,
		},
		{
			name:    "post-dispatch missing snapshot falls back to quantity",
			line:    ProductLine{Code: "A1", OriginalQuantity: 10, Quantity: 7},
			status:  StatusEnTransito,
			missing: 3,
		},
		{
			name:   "post-dispatch shipped above requested is not negative",
			line:   ProductLine{Code: "A1", OriginalQuantity: 5, Quantity: 7, ShippedQuantity: intPtr(7)},
			status: StatusEntregado,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := ReconcileLine(tt.line, tt.status)
			assert.Equal(t, tt.missing, rec.Missing, "missing")
			assert.Equal(t, tt.returned, rec.Returned, "returned")
			assert.Equal(t, tt.missing > 0, rec.IsShortage())
			assert.Equal(t, tt.returned > 0, rec.IsReturn())
		})
	}
}

func TestReconcileLine_FiguresNeverOverlap(t *testing.T) {
	// Missing counts units that never shipped, returned counts units that
	// shipped and came back; together they never exceed the requested amount.
	line := ProductLine{Code: "A1", OriginalQuantity: 10, Quantity: 4, ShippedQuantity: intPtr(6)}
	rec := ReconcileLine(line, StatusEntregado)
	assert.LessOrEqual(t, rec.Missing+rec.Returned, line.OriginalQuantity)
	assert.Equal(t, line.OriginalQuantity, rec.Missing+rec.Returned+line.Quantity)
}

func TestReconcileOrder(t *testing.T) {
	actor := identity.Actor{Name: "ana", Role: identity.RoleOperator}

	t.Run("order lifecycle worked example", func(t *testing.T) {
		// Requested 10, assembled 6, shipped 6, client kept 4.
		order := newTestOrder(t)
		require.NoError(t, order.AddProduct(actor, NewProductInput{
			Code: "A100", Name: "Yerba 1kg", UnitPrice: decimal.NewFromInt(150), Quantity: 10,
		}))
		order.ApplyQuantityChange(actor, "A100", 6)

		other := testActor("bruno", identity.RoleOperator)
		self := testActor("ana", identity.RoleOperator)
		require.NoError(t, order.Advance(self, ""))
		require.NoError(t, order.Advance(other, ""))
		require.NoError(t, order.Advance(other, ""))
		require.NoError(t, order.Advance(other, ""))
		require.NoError(t, order.Advance(other, ""))
		require.Equal(t, StatusEnTransito, order.Status)

		order.ApplyQuantityChange(actor, "A100", 4)

		rec := ReconcileOrder(order)
		require.Len(t, rec.Lines, 1)
		assert.Equal(t, 4, rec.Lines[0].Missing)
		assert.Equal(t, 2, rec.Lines[0].Returned)
		assert.True(t, rec.HasShortages())
		assert.True(t, rec.HasReturns())

		// 10 requested at $150 vs 4 billed.
		assert.True(t, rec.OriginalInvoiceTotal.Equal(decimal.NewFromInt(1500)))
		assert.True(t, rec.RefundTotal.Equal(decimal.NewFromInt(900)))
	})

	t.Run("clean order has no figures", func(t *testing.T) {
		order := newTestOrder(t)
		require.NoError(t, order.AddProduct(actor, NewProductInput{
			Code: "A100", UnitPrice: decimal.NewFromInt(150), Quantity: 10,
		}))

		rec := ReconcileOrder(order)
		assert.False(t, rec.HasShortages())
		assert.False(t, rec.HasReturns())
		assert.True(t, rec.RefundTotal.IsZero())
	})
}
