package trips

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	appOrders "github.com/reparto/backend/internal/application/orders"
	"github.com/reparto/backend/internal/domain/shared/valueobject"
	"github.com/reparto/backend/internal/domain/trips"
)

// ==================== Request DTOs ====================

// CreateTripRequest represents a request to plan a trip
type CreateTripRequest struct {
	Name       string    `json:"name" binding:"required,min=1,max=200"`
	DriverName string    `json:"driver_name" binding:"max=100"`
	Route      string    `json:"route" binding:"max=200"`
	Date       time.Time `json:"date"`
}

// AddClientRequest represents a manually entered stop
type AddClientRequest struct {
	Name                 string          `json:"name" binding:"required,min=1,max=200"`
	Address              string          `json:"address" binding:"max=300"`
	PreviousBalance      decimal.Decimal `json:"previous_balance"`
	CurrentInvoiceAmount decimal.Decimal `json:"current_invoice_amount"`
	TransferExpected     bool            `json:"transfer_expected"`
}

// ImportClientsRequest imports stops from delivery-ready orders. The invoice
// amount is taken from each order's current total.
type ImportClientsRequest struct {
	OrderIDs []uuid.UUID `json:"order_ids" binding:"required,min=1"`
}

// RegisterPaymentRequest records what the driver collected at a stop
type RegisterPaymentRequest struct {
	Cash             decimal.Decimal `json:"cash"`
	Transfer         decimal.Decimal `json:"transfer"`
	TransferExpected bool            `json:"transfer_expected"`
}

// OverrideBalancesRequest is the admin path for correcting a client's
// figures. Nil fields are left untouched.
type OverrideBalancesRequest struct {
	PreviousBalance      *decimal.Decimal `json:"previous_balance"`
	CurrentInvoiceAmount *decimal.Decimal `json:"current_invoice_amount"`
}

// ExpenseRequest records or edits a driver expense
type ExpenseRequest struct {
	Type   string          `json:"type" binding:"required"`
	Amount decimal.Decimal `json:"amount" binding:"required"`
	Note   string          `json:"note" binding:"max=300"`
}

// TripListFilter represents filter options for the trip list
type TripListFilter struct {
	Search   string     `form:"search"`
	Status   *string    `form:"status"`
	Driver   *string    `form:"driver"`
	DateFrom *time.Time `form:"date_from"`
	DateTo   *time.Time `form:"date_to"`
	Page     int        `form:"page" binding:"min=0"`
	PageSize int        `form:"page_size" binding:"min=0,max=100"`
	OrderBy  string     `form:"order_by"`
	OrderDir string     `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// ==================== Response DTOs ====================

// ClientResponse represents one stop in API responses
type ClientResponse struct {
	ID                   uuid.UUID       `json:"id"`
	Name                 string          `json:"name"`
	Address              string          `json:"address"`
	PreviousBalance      decimal.Decimal `json:"previous_balance"`
	CurrentInvoiceAmount decimal.Decimal `json:"current_invoice_amount"`
	PaymentCash          decimal.Decimal `json:"payment_cash"`
	PaymentTransfer      decimal.Decimal `json:"payment_transfer"`
	TransferExpected     bool            `json:"transfer_expected"`
	TotalDebt            decimal.Decimal `json:"total_debt"`
	TotalPaid            decimal.Decimal `json:"total_paid"`
	Remaining            decimal.Decimal `json:"remaining"`
	Status               string          `json:"status"`
}

// ExpenseResponse represents one expense in API responses
type ExpenseResponse struct {
	ID        uuid.UUID       `json:"id"`
	Type      string          `json:"type"`
	Amount    decimal.Decimal `json:"amount"`
	Note      string          `json:"note,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
}

// TotalsResponse represents the trip-level reconciliation summary. Each
// figure carries its currency so clients never have to assume one.
type TotalsResponse struct {
	ExpectedTotal     valueobject.Money `json:"expected_total"`
	CollectedCash     valueobject.Money `json:"collected_cash"`
	CollectedTransfer valueobject.Money `json:"collected_transfer"`
	TotalCollected    valueobject.Money `json:"total_collected"`
	TotalExpenses     valueobject.Money `json:"total_expenses"`
	CashToRender      valueobject.Money `json:"cash_to_render"`
}

// TripResponse represents a full trip in API responses
type TripResponse struct {
	ID         uuid.UUID         `json:"id"`
	DisplayID  string            `json:"display_id"`
	Name       string            `json:"name"`
	Status     string            `json:"status"`
	DriverName string            `json:"driver_name"`
	Date       time.Time         `json:"date"`
	Route      string            `json:"route"`
	Clients    []ClientResponse  `json:"clients"`
	Expenses   []ExpenseResponse `json:"expenses"`
	Totals     TotalsResponse    `json:"totals"`
	History    []appOrders.HistoryEntryResponse `json:"history"`
	CreatedAt  time.Time         `json:"created_at"`
	UpdatedAt  time.Time         `json:"updated_at"`
	Version    int               `json:"version"`
}

// TripListItemResponse represents a trip in list responses (less detail)
type TripListItemResponse struct {
	ID          uuid.UUID `json:"id"`
	DisplayID   string    `json:"display_id"`
	Name        string    `json:"name"`
	Status      string    `json:"status"`
	DriverName  string    `json:"driver_name"`
	Date        time.Time `json:"date"`
	ClientCount int       `json:"client_count"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ==================== Mappers ====================

// ToClientResponse converts a domain client to a response DTO
func ToClientResponse(c *trips.Client) ClientResponse {
	return ClientResponse{
		ID:                   c.ID,
		Name:                 c.Name,
		Address:              c.Address,
		PreviousBalance:      c.PreviousBalance,
		CurrentInvoiceAmount: c.CurrentInvoiceAmount,
		PaymentCash:          c.PaymentCash,
		PaymentTransfer:      c.PaymentTransfer,
		TransferExpected:     c.TransferExpected,
		TotalDebt:            c.TotalDebt(),
		TotalPaid:            c.TotalPaid(),
		Remaining:            c.Remaining(),
		Status:               string(c.Status),
	}
}

// ToTotalsResponse converts trip totals to a response DTO
func ToTotalsResponse(t trips.Totals) TotalsResponse {
	return TotalsResponse{
		ExpectedTotal:     t.ExpectedTotal,
		CollectedCash:     t.CollectedCash,
		CollectedTransfer: t.CollectedTransfer,
		TotalCollected:    t.TotalCollected,
		TotalExpenses:     t.TotalExpenses,
		CashToRender:      t.CashToRender,
	}
}

// ToTripResponse converts a domain trip to a response DTO
func ToTripResponse(t *trips.Trip) TripResponse {
	clients := make([]ClientResponse, 0, len(t.Clients))
	for idx := range t.Clients {
		clients = append(clients, ToClientResponse(&t.Clients[idx]))
	}

	expenses := make([]ExpenseResponse, 0, len(t.Expenses))
	for _, e := range t.Expenses {
		expenses = append(expenses, ExpenseResponse{
			ID:        e.ID,
			Type:      string(e.Type),
			Amount:    e.Amount,
			Note:      e.Note,
			Timestamp: e.Timestamp,
		})
	}

	return TripResponse{
		ID:         t.ID,
		DisplayID:  t.DisplayID,
		Name:       t.Name,
		Status:     string(t.Status),
		DriverName: t.DriverName,
		Date:       t.Date,
		Route:      t.Route,
		Clients:    clients,
		Expenses:   expenses,
		Totals:     ToTotalsResponse(t.Totals()),
		History:    appOrders.ToHistoryResponses(t.History),
		CreatedAt:  t.CreatedAt,
		UpdatedAt:  t.UpdatedAt,
		Version:    t.Version,
	}
}

// ToTripListItemResponses converts a list of trips
func ToTripListItemResponses(list []trips.Trip) []TripListItemResponse {
	responses := make([]TripListItemResponse, 0, len(list))
	for idx := range list {
		t := &list[idx]
		responses = append(responses, TripListItemResponse{
			ID:          t.ID,
			DisplayID:   t.DisplayID,
			Name:        t.Name,
			Status:      string(t.Status),
			DriverName:  t.DriverName,
			Date:        t.Date,
			ClientCount: t.ClientCount(),
			CreatedAt:   t.CreatedAt,
			UpdatedAt:   t.UpdatedAt,
		})
	}
	return responses
}
