package trips

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ExpenseType categorizes what the driver spent money on during the route
type ExpenseType string

const (
	ExpenseFuel    ExpenseType = "fuel"
	ExpenseToll    ExpenseType = "toll"
	ExpensePerDiem ExpenseType = "per_diem"
	ExpenseOther   ExpenseType = "other"
)

// IsValid checks if the expense type is known
func (t ExpenseType) IsValid() bool {
	switch t {
	case ExpenseFuel, ExpenseToll, ExpensePerDiem, ExpenseOther:
		return true
	}
	return false
}

// Expense is money the driver paid out of collected cash during the trip.
// Editable only while the owning trip is not closed.
type Expense struct {
	ID     uuid.UUID
	TripID uuid.UUID `gorm:"index"`

	Type      ExpenseType
	Amount    decimal.Decimal
	Note      string
	Timestamp time.Time
}
