package orders

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/reparto/backend/internal/domain/audit"
	"github.com/reparto/backend/internal/domain/identity"
	"github.com/reparto/backend/internal/domain/shared"
)

// ProductLine is one product row of an order. Uniqueness key within the
// order is Code; the slice order is display order only.
type ProductLine struct {
	ID      uuid.UUID
	OrderID uuid.UUID `gorm:"index"`
	Code    string
	Name    string

	UnitPrice decimal.Decimal

	// OriginalQuantity is what the client asked for - the denominator for
	// shortage accounting.
	OriginalQuantity int
	// Quantity is the working figure: intended to assemble before dispatch,
	// what the client is charged for after it.
	Quantity int
	// ShippedQuantity is snapshotted exactly once, when the order enters
	// EN_TRANSITO, and never altered afterwards.
	ShippedQuantity *int

	Subtotal  decimal.Decimal
	IsChecked bool

	CreatedAt time.Time
	UpdatedAt time.Time
}

// recalculate refreshes the line subtotal from quantity and unit price
func (l *ProductLine) recalculate() {
	l.Subtotal = l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
	l.UpdatedAt = time.Now()
}

// NewProductInput carries the fields needed to add a line to an order
type NewProductInput struct {
	Code      string
	Name      string
	UnitPrice decimal.Decimal
	Quantity  int
}

// Order is the aggregate root for a wholesale distribution order, from
// assembly through delivery and payment.
type Order struct {
	shared.BaseAggregateRoot
	DisplayID  string
	ClientName string
	Zone       string

	Status   OrderStatus
	Products []ProductLine `gorm:"foreignKey:OrderID"`
	Total    decimal.Decimal

	Observations  string
	PaymentMethod PaymentMethod

	// Stage actors, assigned exactly once each by the corresponding advance.
	AssemblerID    *uuid.UUID
	AssemblerName  string
	ControllerID   *uuid.UUID
	ControllerName string
	InvoicerName   string

	History []audit.Entry `gorm:"foreignKey:AggregateID;references:ID"`
}

// NewOrder creates an order in EN_ARMADO with an empty product list
func NewOrder(displayID, clientName, zone string, actor identity.Actor) (*Order, error) {
	if clientName == "" {
		return nil, shared.NewDomainError("INVALID_CLIENT_NAME", "Client name cannot be empty")
	}

	order := &Order{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		DisplayID:         displayID,
		ClientName:        clientName,
		Zone:              zone,
		Status:            StatusEnArmado,
		Products:          make([]ProductLine, 0),
		Total:             decimal.Zero,
		PaymentMethod:     PaymentPending,
	}

	order.appendHistory(actor, audit.ActionCreated, string(StatusEnArmado), "")
	order.AddDomainEvent(NewOrderCreatedEvent(order))

	return order, nil
}

// Advance moves the order to the next workflow state. Only the table-defined
// transition is possible; the terminal state is a rejected no-op. Entering
// EN_TRANSITO snapshots every line's shipped quantity.
func (o *Order) Advance(actor identity.Actor, note string) error {
	next, ok := o.Status.Next()
	if !ok {
		return shared.ErrTerminalState
	}

	switch next {
	case StatusArmado:
		if o.AssemblerID == nil {
			id := actor.ID
			o.AssemblerID = &id
			o.AssemblerName = actor.Name
		}
	case StatusArmadoControlado:
		if o.AssemblerID != nil && *o.AssemblerID == actor.ID {
			return shared.ErrSelfControl
		}
		if o.ControllerID == nil {
			id := actor.ID
			o.ControllerID = &id
			o.ControllerName = actor.Name
		}
	case StatusFacturado:
		if o.InvoicerName == "" {
			o.InvoicerName = actor.Name
		}
	case StatusEnTransito:
		for idx := range o.Products {
			if o.Products[idx].ShippedQuantity == nil {
				shipped := o.Products[idx].Quantity
				o.Products[idx].ShippedQuantity = &shipped
			}
		}
	}

	o.Status = next
	o.UpdatedAt = time.Now()
	o.appendHistory(actor, audit.ActionAdvanced, string(next), note)
	o.AddDomainEvent(NewOrderAdvancedEvent(o, next))

	return nil
}

// ApplyQuantityChange sets the working quantity of the line matching code.
// Negative input clamps at zero; an absent code is a silent no-op. Returns
// whether anything changed.
func (o *Order) ApplyQuantityChange(actor identity.Actor, code string, newQuantity int) bool {
	line := o.findLine(code)
	if line == nil {
		return false
	}
	if newQuantity < 0 {
		newQuantity = 0
	}
	if line.Quantity == newQuantity {
		return false
	}

	old := line.Quantity
	line.Quantity = newQuantity
	line.recalculate()
	o.recalculateTotal()
	o.appendHistory(actor, audit.ActionQuantityEdited, "",
		fmt.Sprintf("%s: %d -> %d", code, old, newQuantity))
	return true
}

// ToggleProductCheck flips the quality-control flag of the line matching
// code. The toggle itself is stage-agnostic; callers gate it to pre-dispatch
// stages through the capability table.
func (o *Order) ToggleProductCheck(actor identity.Actor, code string) bool {
	line := o.findLine(code)
	if line == nil {
		return false
	}
	line.IsChecked = !line.IsChecked
	line.UpdatedAt = time.Now()
	o.UpdatedAt = time.Now()
	o.appendHistory(actor, audit.ActionCheckToggled, "", code)
	return true
}

// AddProduct appends a new line, or, when the code is already present,
// accumulates into the existing line: adding the same item twice during
// assembly must not duplicate rows.
func (o *Order) AddProduct(actor identity.Actor, input NewProductInput) error {
	if input.Code == "" {
		return shared.NewDomainError("INVALID_PRODUCT_CODE", "Product code cannot be empty")
	}
	if input.Quantity < 0 {
		return shared.NewDomainError("INVALID_QUANTITY", "Quantity cannot be negative")
	}
	if input.UnitPrice.IsNegative() {
		return shared.NewDomainError("INVALID_PRICE", "Unit price cannot be negative")
	}

	if line := o.findLine(input.Code); line != nil {
		line.Quantity += input.Quantity
		line.OriginalQuantity += input.Quantity
		line.recalculate()
	} else {
		now := time.Now()
		o.Products = append(o.Products, ProductLine{
			ID:               uuid.New(),
			OrderID:          o.ID,
			Code:             input.Code,
			Name:             input.Name,
			UnitPrice:        input.UnitPrice,
			OriginalQuantity: input.Quantity,
			Quantity:         input.Quantity,
			Subtotal:         input.UnitPrice.Mul(decimal.NewFromInt(int64(input.Quantity))),
			CreatedAt:        now,
			UpdatedAt:        now,
		})
	}

	o.recalculateTotal()
	o.appendHistory(actor, audit.ActionProductAdded, "",
		fmt.Sprintf("%s x%d", input.Code, input.Quantity))
	return nil
}

// RemoveProduct deletes the line matching code entirely
func (o *Order) RemoveProduct(actor identity.Actor, code string) error {
	for idx, line := range o.Products {
		if line.Code == code {
			o.Products = append(o.Products[:idx], o.Products[idx+1:]...)
			o.recalculateTotal()
			o.appendHistory(actor, audit.ActionProductRemoved, "", code)
			return nil
		}
	}
	return shared.NewDomainError("PRODUCT_NOT_FOUND", "Product not found in order")
}

// UpdateProductPrice sets the unit price of the line matching code and
// recomputes its subtotal and the order total
func (o *Order) UpdateProductPrice(actor identity.Actor, code string, newPrice decimal.Decimal) error {
	if newPrice.IsNegative() {
		return shared.NewDomainError("INVALID_PRICE", "Unit price cannot be negative")
	}
	line := o.findLine(code)
	if line == nil {
		return shared.NewDomainError("PRODUCT_NOT_FOUND", "Product not found in order")
	}

	old := line.UnitPrice
	line.UnitPrice = newPrice
	line.recalculate()
	o.recalculateTotal()
	o.appendHistory(actor, audit.ActionPriceEdited, "",
		fmt.Sprintf("%s: %s -> %s", code, old.String(), newPrice.String()))
	return nil
}

// UpdateObservations replaces the free-text note. Immutable once the order
// reaches its terminal state.
func (o *Order) UpdateObservations(actor identity.Actor, text string) error {
	if o.Status.IsTerminal() {
		return shared.ErrTerminalState
	}
	o.Observations = text
	o.UpdatedAt = time.Now()
	o.appendHistory(actor, audit.ActionMetadataEdited, "", "observations")
	return nil
}

// UpdatePaymentMethod assigns how the client settles. This is a metadata
// update, not a workflow advance.
func (o *Order) UpdatePaymentMethod(actor identity.Actor, method PaymentMethod) error {
	if !method.IsValid() {
		return shared.NewDomainError("INVALID_PAYMENT_METHOD", "Unknown payment method")
	}
	o.PaymentMethod = method
	o.UpdatedAt = time.Now()
	o.appendHistory(actor, audit.ActionMetadataEdited, "", "payment method: "+string(method))
	return nil
}

// ProductCount returns the number of product lines
func (o *Order) ProductCount() int {
	return len(o.Products)
}

// GetProduct returns the line matching code, or nil
func (o *Order) GetProduct(code string) *ProductLine {
	return o.findLine(code)
}

// InUseBy reports the advisory "in use" indicator: the name of a different
// actor already holding the current stage's slot. Informational only, it
// never blocks an edit.
func (o *Order) InUseBy(actor identity.Actor) string {
	switch o.Status {
	case StatusEnArmado:
		if o.AssemblerID != nil && *o.AssemblerID != actor.ID {
			return o.AssemblerName
		}
	case StatusArmado:
		if o.ControllerID != nil && *o.ControllerID != actor.ID {
			return o.ControllerName
		}
	}
	return ""
}

func (o *Order) findLine(code string) *ProductLine {
	for idx := range o.Products {
		if o.Products[idx].Code == code {
			return &o.Products[idx]
		}
	}
	return nil
}

// recalculateTotal keeps the invariant total == sum of line subtotals
func (o *Order) recalculateTotal() {
	total := decimal.Zero
	for _, line := range o.Products {
		total = total.Add(line.Subtotal)
	}
	o.Total = total
	o.UpdatedAt = time.Now()
}

func (o *Order) appendHistory(actor identity.Actor, action audit.Action, newState, details string) {
	o.History = audit.Append(o.History,
		audit.NewEntry(audit.AggregateOrder, o.ID, actor, action, newState, details))
}
