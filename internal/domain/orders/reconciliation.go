package orders

import (
	"github.com/shopspring/decimal"
)

// LineReconciliation is the derived shortage/return view of a product line.
//
// Before dispatch, "missing" is what the warehouse could not assemble.
// After dispatch, "missing" is requested quantity that never shipped, while
// "returned" is shipped quantity the client did not keep. The two figures
// never count the same units.
type LineReconciliation struct {
	Code     string
	Missing  int
	Returned int
}

// IsShortage reports whether any requested quantity went unfulfilled
func (r LineReconciliation) IsShortage() bool {
	return r.Missing > 0
}

// IsReturn reports whether any shipped quantity came back
func (r LineReconciliation) IsReturn() bool {
	return r.Returned > 0
}

// ReconcileLine derives the shortage and return quantities of one line
// given the order's workflow stage
func ReconcileLine(line ProductLine, status OrderStatus) LineReconciliation {
	rec := LineReconciliation{Code: line.Code}

	if status.PostShipping() {
		shipped := line.Quantity
		if line.ShippedQuantity != nil {
			shipped = *line.ShippedQuantity
		}
		rec.Missing = clampNonNegative(line.OriginalQuantity - shipped)
		if line.ShippedQuantity != nil {
			rec.Returned = clampNonNegative(*line.ShippedQuantity - line.Quantity)
		}
		return rec
	}

	rec.Missing = clampNonNegative(line.OriginalQuantity - line.Quantity)
	return rec
}

// OrderReconciliation aggregates the per-line figures plus the order-level
// refund view
type OrderReconciliation struct {
	Lines []LineReconciliation

	// OriginalInvoiceTotal is what the order would have been worth had every
	// requested unit been billed at the current unit prices.
	OriginalInvoiceTotal decimal.Decimal
	// RefundTotal is the revenue lost to quantity reductions across the
	// order's lifetime, shortages and returns alike.
	RefundTotal decimal.Decimal
}

// HasShortages reports whether any line is short
func (r OrderReconciliation) HasShortages() bool {
	for _, line := range r.Lines {
		if line.IsShortage() {
			return true
		}
	}
	return false
}

// HasReturns reports whether any line has returned units
func (r OrderReconciliation) HasReturns() bool {
	for _, line := range r.Lines {
		if line.IsReturn() {
			return true
		}
	}
	return false
}

// ReconcileOrder derives the full shortage/return view of an order
func ReconcileOrder(o *Order) OrderReconciliation {
	rec := OrderReconciliation{
		Lines: make([]LineReconciliation, 0, len(o.Products)),
	}

	original := decimal.Zero
	for _, line := range o.Products {
		rec.Lines = append(rec.Lines, ReconcileLine(line, o.Status))
		original = original.Add(line.UnitPrice.Mul(decimal.NewFromInt(int64(line.OriginalQuantity))))
	}

	rec.OriginalInvoiceTotal = original
	rec.RefundTotal = original.Sub(o.Total)
	return rec
}

func clampNonNegative(v int) int {
	if v < 0 {
		return 0
	}
	return v
}
