package orders

// OrderStatus represents the workflow stage of a distribution order.
// The wire labels are Spanish and must stay exactly as the rest of the
// system (store rows, mobile clients) expects them.
type OrderStatus string

const (
	StatusEnArmado          OrderStatus = "EN_ARMADO"
	StatusArmado            OrderStatus = "ARMADO"
	StatusArmadoControlado  OrderStatus = "ARMADO_CONTROLADO"
	StatusFacturado         OrderStatus = "FACTURADO"
	StatusFacturaControlada OrderStatus = "FACTURA_CONTROLADA"
	StatusEnTransito        OrderStatus = "EN_TRANSITO"
	StatusEntregado         OrderStatus = "ENTREGADO"
	StatusPagado            OrderStatus = "PAGADO"
)

// nextStatus is the forward-only transition table. There is no skipping and
// no user-facing reverse transition.
var nextStatus = map[OrderStatus]OrderStatus{
	StatusEnArmado:          StatusArmado,
	StatusArmado:            StatusArmadoControlado,
	StatusArmadoControlado:  StatusFacturado,
	StatusFacturado:         StatusFacturaControlada,
	StatusFacturaControlada: StatusEnTransito,
	StatusEnTransito:        StatusEntregado,
	StatusEntregado:         StatusPagado,
}

// IsValid checks if the status is a known workflow state
func (s OrderStatus) IsValid() bool {
	if s == StatusPagado {
		return true
	}
	_, ok := nextStatus[s]
	return ok
}

// String returns the wire label
func (s OrderStatus) String() string {
	return string(s)
}

// Next returns the following workflow state, or false for the terminal state
func (s OrderStatus) Next() (OrderStatus, bool) {
	next, ok := nextStatus[s]
	return next, ok
}

// CanTransitionTo checks if the status can transition to the target status
func (s OrderStatus) CanTransitionTo(target OrderStatus) bool {
	next, ok := nextStatus[s]
	return ok && next == target
}

// IsTerminal returns true for the final workflow state
func (s OrderStatus) IsTerminal() bool {
	return s == StatusPagado
}

// PostShipping returns true once the goods have left the warehouse.
// Quantity reductions before this point are shortages; after it they are
// returns.
func (s OrderStatus) PostShipping() bool {
	switch s {
	case StatusEnTransito, StatusEntregado, StatusPagado:
		return true
	}
	return false
}

// PaymentMethod is how the client settles the order. Labels are fixed.
type PaymentMethod string

const (
	PaymentPending  PaymentMethod = "Pendiente"
	PaymentCash     PaymentMethod = "Efectivo"
	PaymentTransfer PaymentMethod = "Transferencia"
	PaymentCheck    PaymentMethod = "Cheque"
	PaymentAccount  PaymentMethod = "Cta Cte"
)

// IsValid checks if the payment method is a known value
func (m PaymentMethod) IsValid() bool {
	switch m {
	case PaymentPending, PaymentCash, PaymentTransfer, PaymentCheck, PaymentAccount:
		return true
	}
	return false
}
