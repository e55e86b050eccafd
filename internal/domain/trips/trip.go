package trips

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/reparto/backend/internal/domain/audit"
	"github.com/reparto/backend/internal/domain/identity"
	"github.com/reparto/backend/internal/domain/shared"
	"github.com/reparto/backend/internal/domain/shared/valueobject"
)

// TripStatus is the lifecycle state of a delivery route
type TripStatus string

const (
	StatusPlanning   TripStatus = "PLANNING"
	StatusInProgress TripStatus = "IN_PROGRESS"
	StatusClosed     TripStatus = "CLOSED"
)

// IsValid checks if the status is known
func (s TripStatus) IsValid() bool {
	switch s {
	case StatusPlanning, StatusInProgress, StatusClosed:
		return true
	}
	return false
}

// Trip is the aggregate root for a driver's single-day delivery and
// collection route. Clients and expenses are mutated throughout the day;
// closing the trip freezes them until an explicit reopen.
type Trip struct {
	shared.BaseAggregateRoot
	DisplayID  string
	Name       string
	Status     TripStatus
	DriverName string
	Date       time.Time
	Route      string

	Clients  []Client  `gorm:"foreignKey:TripID"`
	Expenses []Expense `gorm:"foreignKey:TripID"`

	History []audit.Entry `gorm:"foreignKey:AggregateID;references:ID"`

	// tolerance used for payment classification; zero value falls back to
	// DefaultPaymentTolerance
	tolerance decimal.Decimal `gorm:"-"`
}

// NewTrip creates a trip in PLANNING
func NewTrip(displayID, name, driverName, route string, date time.Time, actor identity.Actor) (*Trip, error) {
	if name == "" {
		return nil, shared.NewDomainError("INVALID_TRIP_NAME", "Trip name cannot be empty")
	}

	trip := &Trip{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		DisplayID:         displayID,
		Name:              name,
		Status:            StatusPlanning,
		DriverName:        driverName,
		Date:              date,
		Route:             route,
		Clients:           make([]Client, 0),
		Expenses:          make([]Expense, 0),
	}

	trip.appendHistory(actor, audit.ActionCreated, string(StatusPlanning), "")
	trip.AddDomainEvent(NewTripCreatedEvent(trip))

	return trip, nil
}

// SetPaymentTolerance overrides the rounding tolerance used when
// classifying client payments
func (t *Trip) SetPaymentTolerance(tolerance decimal.Decimal) {
	t.tolerance = tolerance
}

// PaymentTolerance returns the effective classification tolerance
func (t *Trip) PaymentTolerance() decimal.Decimal {
	if t.tolerance.IsZero() {
		return DefaultPaymentTolerance
	}
	return t.tolerance
}

// IsClosed reports whether client/expense edits are frozen
func (t *Trip) IsClosed() bool {
	return t.Status == StatusClosed
}

// Start moves a planned trip onto the road
func (t *Trip) Start(actor identity.Actor) error {
	if t.Status != StatusPlanning {
		return shared.ErrInvalidState
	}
	t.Status = StatusInProgress
	t.UpdatedAt = time.Now()
	t.appendHistory(actor, audit.ActionAdvanced, string(StatusInProgress), "")
	return nil
}

// Close reconciles the trip and freezes client and expense edits
func (t *Trip) Close(actor identity.Actor) error {
	if t.Status == StatusClosed {
		return shared.ErrTripClosed
	}
	t.Status = StatusClosed
	t.UpdatedAt = time.Now()
	t.appendHistory(actor, audit.ActionClosed, string(StatusClosed), "")
	t.AddDomainEvent(NewTripClosedEvent(t))
	return nil
}

// Reopen reverses a close. Gated by the same authorization rule as closing.
func (t *Trip) Reopen(actor identity.Actor) error {
	if t.Status != StatusClosed {
		return shared.ErrInvalidState
	}
	t.Status = StatusInProgress
	t.UpdatedAt = time.Now()
	t.appendHistory(actor, audit.ActionReopened, string(StatusInProgress), "")
	t.AddDomainEvent(NewTripReopenedEvent(t))
	return nil
}

// NewClientInput carries the fields needed to add a stop to a trip
type NewClientInput struct {
	Name                 string
	Address              string
	PreviousBalance      decimal.Decimal
	CurrentInvoiceAmount decimal.Decimal
	TransferExpected     bool
}

// AddClient adds a stop to the route. The invoice amount is sourced from
// the originating order when importing; manual entry is the operator's
// planning path.
func (t *Trip) AddClient(actor identity.Actor, input NewClientInput) (*Client, error) {
	if t.IsClosed() {
		return nil, shared.ErrTripClosed
	}
	if input.Name == "" {
		return nil, shared.NewDomainError("INVALID_CLIENT_NAME", "Client name cannot be empty")
	}

	now := time.Now()
	client := Client{
		ID:                   uuid.New(),
		TripID:               t.ID,
		Name:                 input.Name,
		Address:              input.Address,
		PreviousBalance:      input.PreviousBalance,
		CurrentInvoiceAmount: input.CurrentInvoiceAmount,
		PaymentCash:          decimal.Zero,
		PaymentTransfer:      decimal.Zero,
		TransferExpected:     input.TransferExpected,
		CreatedAt:            now,
		UpdatedAt:            now,
	}
	client.reclassify(t.PaymentTolerance())

	t.Clients = append(t.Clients, client)
	t.UpdatedAt = now
	return &t.Clients[len(t.Clients)-1], nil
}

// RemoveClient drops a stop from the route
func (t *Trip) RemoveClient(actor identity.Actor, clientID uuid.UUID) error {
	if t.IsClosed() {
		return shared.ErrTripClosed
	}
	for idx, c := range t.Clients {
		if c.ID == clientID {
			t.Clients = append(t.Clients[:idx], t.Clients[idx+1:]...)
			t.UpdatedAt = time.Now()
			return nil
		}
	}
	return shared.NewDomainError("CLIENT_NOT_FOUND", "Client not found in trip")
}

// RegisterPayment records what the driver collected at a stop and
// reclassifies the client's payment status
func (t *Trip) RegisterPayment(actor identity.Actor, clientID uuid.UUID, cash, transfer decimal.Decimal, transferExpected bool) error {
	if t.IsClosed() {
		return shared.ErrTripClosed
	}
	if cash.IsNegative() || transfer.IsNegative() {
		return shared.NewDomainError("INVALID_PAYMENT", "Payment amounts cannot be negative")
	}

	client := t.findClient(clientID)
	if client == nil {
		return shared.NewDomainError("CLIENT_NOT_FOUND", "Client not found in trip")
	}

	client.PaymentCash = cash
	client.PaymentTransfer = transfer
	client.TransferExpected = transferExpected
	client.reclassify(t.PaymentTolerance())
	t.UpdatedAt = time.Now()
	t.appendHistory(actor, audit.ActionPaymentRegistered, "",
		fmt.Sprintf("%s: cash %s, transfer %s", client.Name, cash.String(), transfer.String()))
	return nil
}

// OverrideBalances is the owner/admin path for correcting a client's
// carried debt or invoice amount. Status is reclassified from the edited
// values. Nil arguments leave the corresponding field untouched.
func (t *Trip) OverrideBalances(actor identity.Actor, clientID uuid.UUID, previousBalance, invoiceAmount *decimal.Decimal) error {
	if t.IsClosed() {
		return shared.ErrTripClosed
	}

	client := t.findClient(clientID)
	if client == nil {
		return shared.NewDomainError("CLIENT_NOT_FOUND", "Client not found in trip")
	}

	if previousBalance != nil {
		client.PreviousBalance = *previousBalance
	}
	if invoiceAmount != nil {
		client.CurrentInvoiceAmount = *invoiceAmount
	}
	client.reclassify(t.PaymentTolerance())
	t.UpdatedAt = time.Now()
	t.appendHistory(actor, audit.ActionBalanceOverridden, "", client.Name)
	return nil
}

// AddExpense records money the driver paid out during the route
func (t *Trip) AddExpense(actor identity.Actor, expenseType ExpenseType, amount decimal.Decimal, note string) (*Expense, error) {
	if t.IsClosed() {
		return nil, shared.ErrTripClosed
	}
	if !expenseType.IsValid() {
		return nil, shared.NewDomainError("INVALID_EXPENSE_TYPE", "Unknown expense type")
	}
	if amount.IsNegative() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Expense amount cannot be negative")
	}

	expense := Expense{
		ID:        uuid.New(),
		TripID:    t.ID,
		Type:      expenseType,
		Amount:    amount,
		Note:      note,
		Timestamp: time.Now(),
	}
	t.Expenses = append(t.Expenses, expense)
	t.UpdatedAt = time.Now()
	t.appendHistory(actor, audit.ActionExpenseRecorded, "",
		fmt.Sprintf("%s %s", expenseType, amount.String()))
	return &t.Expenses[len(t.Expenses)-1], nil
}

// UpdateExpense edits a recorded expense
func (t *Trip) UpdateExpense(actor identity.Actor, expenseID uuid.UUID, expenseType ExpenseType, amount decimal.Decimal, note string) error {
	if t.IsClosed() {
		return shared.ErrTripClosed
	}
	if !expenseType.IsValid() {
		return shared.NewDomainError("INVALID_EXPENSE_TYPE", "Unknown expense type")
	}
	if amount.IsNegative() {
		return shared.NewDomainError("INVALID_AMOUNT", "Expense amount cannot be negative")
	}

	for idx := range t.Expenses {
		if t.Expenses[idx].ID == expenseID {
			t.Expenses[idx].Type = expenseType
			t.Expenses[idx].Amount = amount
			t.Expenses[idx].Note = note
			t.UpdatedAt = time.Now()
			t.appendHistory(actor, audit.ActionExpenseRecorded, "", "edited")
			return nil
		}
	}
	return shared.NewDomainError("EXPENSE_NOT_FOUND", "Expense not found in trip")
}

// RemoveExpense deletes a recorded expense
func (t *Trip) RemoveExpense(actor identity.Actor, expenseID uuid.UUID) error {
	if t.IsClosed() {
		return shared.ErrTripClosed
	}
	for idx, e := range t.Expenses {
		if e.ID == expenseID {
			t.Expenses = append(t.Expenses[:idx], t.Expenses[idx+1:]...)
			t.UpdatedAt = time.Now()
			return nil
		}
	}
	return shared.NewDomainError("EXPENSE_NOT_FOUND", "Expense not found in trip")
}

// Totals computes the trip-level reconciliation summary
func (t *Trip) Totals() Totals {
	expected := decimal.Zero
	cash := decimal.Zero
	transfer := decimal.Zero
	expenses := decimal.Zero

	for idx := range t.Clients {
		expected = expected.Add(t.Clients[idx].TotalDebt())
		cash = cash.Add(t.Clients[idx].PaymentCash)
		transfer = transfer.Add(t.Clients[idx].PaymentTransfer)
	}
	for idx := range t.Expenses {
		expenses = expenses.Add(t.Expenses[idx].Amount)
	}

	return Totals{
		ExpectedTotal:     valueobject.NewMoneyARS(expected),
		CollectedCash:     valueobject.NewMoneyARS(cash),
		CollectedTransfer: valueobject.NewMoneyARS(transfer),
		TotalCollected:    valueobject.NewMoneyARS(cash.Add(transfer)),
		TotalExpenses:     valueobject.NewMoneyARS(expenses),
		CashToRender:      valueobject.NewMoneyARS(cash.Sub(expenses)),
	}
}

// ClientCount returns the number of stops
func (t *Trip) ClientCount() int {
	return len(t.Clients)
}

// GetClient returns the stop with the given ID, or nil
func (t *Trip) GetClient(clientID uuid.UUID) *Client {
	return t.findClient(clientID)
}

func (t *Trip) findClient(clientID uuid.UUID) *Client {
	for idx := range t.Clients {
		if t.Clients[idx].ID == clientID {
			return &t.Clients[idx]
		}
	}
	return nil
}

func (t *Trip) appendHistory(actor identity.Actor, action audit.Action, newState, details string) {
	t.History = audit.Append(t.History,
		audit.NewEntry(audit.AggregateTrip, t.ID, actor, action, newState, details))
}
