package trips

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/reparto/backend/internal/domain/shared/valueobject"
)

// PaymentStatus classifies how much of a client's debt was covered on the
// trip. Derived only, never set directly by callers.
type PaymentStatus string

const (
	PaymentPending PaymentStatus = "PENDING"
	PaymentPartial PaymentStatus = "PARTIAL"
	PaymentPaid    PaymentStatus = "PAID"
)

// DefaultPaymentTolerance absorbs one currency unit of rounding noise when
// deciding whether a client is fully paid. The legacy system hard-coded it;
// deployments can override it through configuration.
var DefaultPaymentTolerance = decimal.NewFromInt(1)

// ClassifyPayment derives the payment status from total debt and total paid
// using the given tolerance
func ClassifyPayment(totalDebt, totalPaid, tolerance decimal.Decimal) PaymentStatus {
	if totalPaid.GreaterThan(totalDebt.Sub(tolerance)) {
		return PaymentPaid
	}
	if totalPaid.IsPositive() {
		return PaymentPartial
	}
	return PaymentPending
}

// Client is one stop of a trip: the client's carried debt, today's invoice,
// and what the driver actually collected.
type Client struct {
	ID     uuid.UUID
	TripID uuid.UUID `gorm:"index"`

	Name    string
	Address string

	// PreviousBalance is debt carried from before this trip
	PreviousBalance decimal.Decimal
	// CurrentInvoiceAmount is today's invoice, sourced from the originating
	// order, never hand-entered outside the admin override path
	CurrentInvoiceAmount decimal.Decimal

	PaymentCash      decimal.Decimal
	PaymentTransfer  decimal.Decimal
	TransferExpected bool

	// Status is a pure function of debt vs paid; recomputed on every edit
	Status PaymentStatus

	CreatedAt time.Time
	UpdatedAt time.Time
}

// TotalDebt is carried debt plus today's invoice
func (c *Client) TotalDebt() decimal.Decimal {
	return c.PreviousBalance.Add(c.CurrentInvoiceAmount)
}

// TotalPaid is cash plus transfers received
func (c *Client) TotalPaid() decimal.Decimal {
	return c.PaymentCash.Add(c.PaymentTransfer)
}

// Remaining is what the client still owes after this trip
func (c *Client) Remaining() decimal.Decimal {
	return c.TotalDebt().Sub(c.TotalPaid())
}

// reclassify recomputes the derived status
func (c *Client) reclassify(tolerance decimal.Decimal) {
	c.Status = ClassifyPayment(c.TotalDebt(), c.TotalPaid(), tolerance)
	c.UpdatedAt = time.Now()
}

// Totals is the trip-level reconciliation summary
type Totals struct {
	// ExpectedTotal is the sum of every client's total debt
	ExpectedTotal valueobject.Money
	// CollectedCash / CollectedTransfer are what actually came in
	CollectedCash     valueobject.Money
	CollectedTransfer valueobject.Money
	// TotalCollected is cash plus transfers
	TotalCollected valueobject.Money
	// TotalExpenses is the sum of trip expenses
	TotalExpenses valueobject.Money
	// CashToRender is the net cash the driver must physically hand over.
	// Transfers arrive digitally and never pass through the driver's hands.
	CashToRender valueobject.Money
}
