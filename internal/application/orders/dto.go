package orders

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/reparto/backend/internal/domain/audit"
	"github.com/reparto/backend/internal/domain/orders"
)

// ==================== Request DTOs ====================

// CreateOrderRequest represents a request to create an order
type CreateOrderRequest struct {
	ClientName string                  `json:"client_name" binding:"required,min=1,max=200"`
	Zone       string                  `json:"zone" binding:"max=100"`
	Products   []CreateProductLineInput `json:"products"`
}

// CreateProductLineInput represents a product line in the create request
type CreateProductLineInput struct {
	Code      string          `json:"code" binding:"required,min=1,max=50"`
	Name      string          `json:"name" binding:"max=200"`
	UnitPrice decimal.Decimal `json:"unit_price" binding:"required"`
	Quantity  int             `json:"quantity" binding:"required,min=0"`
}

// AddProductRequest represents a request to add a product line to an order
type AddProductRequest struct {
	Code      string          `json:"code" binding:"required,min=1,max=50"`
	Name      string          `json:"name" binding:"max=200"`
	UnitPrice decimal.Decimal `json:"unit_price" binding:"required"`
	Quantity  int             `json:"quantity" binding:"required,min=0"`
}

// UpdateQuantityRequest represents a quantity edit on one product line
type UpdateQuantityRequest struct {
	Quantity int `json:"quantity"`
}

// UpdatePriceRequest represents a unit price edit on one product line
type UpdatePriceRequest struct {
	UnitPrice decimal.Decimal `json:"unit_price" binding:"required"`
}

// AdvanceOrderRequest represents a request to move the order one stage forward
type AdvanceOrderRequest struct {
	Note string `json:"note" binding:"max=500"`
}

// UpdateMetadataRequest represents payment method and observation edits.
// Nil fields are left untouched.
type UpdateMetadataRequest struct {
	Observations  *string `json:"observations"`
	PaymentMethod *string `json:"payment_method"`
}

// OrderListFilter represents filter options for the order list
type OrderListFilter struct {
	Search   string     `form:"search"`
	Status   *string    `form:"status"`
	Zone     *string    `form:"zone"`
	DateFrom *time.Time `form:"date_from"`
	DateTo   *time.Time `form:"date_to"`
	Page     int        `form:"page" binding:"min=0"`
	PageSize int        `form:"page_size" binding:"min=0,max=100"`
	OrderBy  string     `form:"order_by"`
	OrderDir string     `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// ==================== Response DTOs ====================

// ProductLineResponse represents a product line in API responses
type ProductLineResponse struct {
	ID               uuid.UUID       `json:"id"`
	Code             string          `json:"code"`
	Name             string          `json:"name"`
	UnitPrice        decimal.Decimal `json:"unit_price"`
	OriginalQuantity int             `json:"original_quantity"`
	Quantity         int             `json:"quantity"`
	ShippedQuantity  *int            `json:"shipped_quantity,omitempty"`
	Subtotal         decimal.Decimal `json:"subtotal"`
	IsChecked        bool            `json:"is_checked"`
	Missing          int             `json:"missing"`
	Returned         int             `json:"returned"`
}

// HistoryEntryResponse represents one audit trail line
type HistoryEntryResponse struct {
	Timestamp time.Time `json:"timestamp"`
	UserName  string    `json:"user_name"`
	Action    string    `json:"action"`
	NewState  string    `json:"new_state,omitempty"`
	Details   string    `json:"details,omitempty"`
}

// OrderResponse represents a full order in API responses
type OrderResponse struct {
	ID             uuid.UUID             `json:"id"`
	DisplayID      string                `json:"display_id"`
	ClientName     string                `json:"client_name"`
	Zone           string                `json:"zone"`
	Status         string                `json:"status"`
	Products       []ProductLineResponse `json:"products"`
	Total          decimal.Decimal       `json:"total"`
	Observations   string                `json:"observations"`
	PaymentMethod  string                `json:"payment_method"`
	AssemblerName  string                `json:"assembler_name,omitempty"`
	ControllerName string                `json:"controller_name,omitempty"`
	InvoicerName   string                `json:"invoicer_name,omitempty"`
	InUseBy        string                `json:"in_use_by,omitempty"`
	HasShortages   bool                  `json:"has_shortages"`
	HasReturns     bool                  `json:"has_returns"`
	RefundTotal    decimal.Decimal       `json:"refund_total"`
	History        []HistoryEntryResponse `json:"history"`
	CreatedAt      time.Time             `json:"created_at"`
	UpdatedAt      time.Time             `json:"updated_at"`
	Version        int                   `json:"version"`
}

// OrderListItemResponse represents an order in list responses (less detail)
type OrderListItemResponse struct {
	ID            uuid.UUID       `json:"id"`
	DisplayID     string          `json:"display_id"`
	ClientName    string          `json:"client_name"`
	Zone          string          `json:"zone"`
	Status        string          `json:"status"`
	ProductCount  int             `json:"product_count"`
	Total         decimal.Decimal `json:"total"`
	PaymentMethod string          `json:"payment_method"`
	HasShortages  bool            `json:"has_shortages"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// ReconciliationResponse represents the derived shortage/return view
type ReconciliationResponse struct {
	Lines                []LineReconciliationResponse `json:"lines"`
	OriginalInvoiceTotal decimal.Decimal              `json:"original_invoice_total"`
	RefundTotal          decimal.Decimal              `json:"refund_total"`
	HasShortages         bool                         `json:"has_shortages"`
	HasReturns           bool                         `json:"has_returns"`
}

// LineReconciliationResponse represents one line's shortage/return figures
type LineReconciliationResponse struct {
	Code     string `json:"code"`
	Missing  int    `json:"missing"`
	Returned int    `json:"returned"`
}

// ==================== Mappers ====================

// ToOrderResponse converts a domain order to a response DTO. The actor is
// needed for the advisory in-use indicator; pass the zero Actor to omit it.
func ToOrderResponse(o *orders.Order, inUseBy string) OrderResponse {
	rec := orders.ReconcileOrder(o)

	products := make([]ProductLineResponse, 0, len(o.Products))
	for idx, line := range o.Products {
		products = append(products, ProductLineResponse{
			ID:               line.ID,
			Code:             line.Code,
			Name:             line.Name,
			UnitPrice:        line.UnitPrice,
			OriginalQuantity: line.OriginalQuantity,
			Quantity:         line.Quantity,
			ShippedQuantity:  line.ShippedQuantity,
			Subtotal:         line.Subtotal,
			IsChecked:        line.IsChecked,
			Missing:          rec.Lines[idx].Missing,
			Returned:         rec.Lines[idx].Returned,
		})
	}

	return OrderResponse{
		ID:             o.ID,
		DisplayID:      o.DisplayID,
		ClientName:     o.ClientName,
		Zone:           o.Zone,
		Status:         string(o.Status),
		Products:       products,
		Total:          o.Total,
		Observations:   o.Observations,
		PaymentMethod:  string(o.PaymentMethod),
		AssemblerName:  o.AssemblerName,
		ControllerName: o.ControllerName,
		InvoicerName:   o.InvoicerName,
		InUseBy:        inUseBy,
		HasShortages:   rec.HasShortages(),
		HasReturns:     rec.HasReturns(),
		RefundTotal:    rec.RefundTotal,
		History:        ToHistoryResponses(o.History),
		CreatedAt:      o.CreatedAt,
		UpdatedAt:      o.UpdatedAt,
		Version:        o.Version,
	}
}

// ToOrderListItemResponse converts an order to a list item DTO
func ToOrderListItemResponse(o *orders.Order) OrderListItemResponse {
	rec := orders.ReconcileOrder(o)
	return OrderListItemResponse{
		ID:            o.ID,
		DisplayID:     o.DisplayID,
		ClientName:    o.ClientName,
		Zone:          o.Zone,
		Status:        string(o.Status),
		ProductCount:  o.ProductCount(),
		Total:         o.Total,
		PaymentMethod: string(o.PaymentMethod),
		HasShortages:  rec.HasShortages(),
		CreatedAt:     o.CreatedAt,
		UpdatedAt:     o.UpdatedAt,
	}
}

// ToOrderListItemResponses converts a list of orders
func ToOrderListItemResponses(list []orders.Order) []OrderListItemResponse {
	responses := make([]OrderListItemResponse, 0, len(list))
	for idx := range list {
		responses = append(responses, ToOrderListItemResponse(&list[idx]))
	}
	return responses
}

// ToReconciliationResponse converts the derived view to a DTO
func ToReconciliationResponse(rec orders.OrderReconciliation) ReconciliationResponse {
	lines := make([]LineReconciliationResponse, 0, len(rec.Lines))
	for _, line := range rec.Lines {
		lines = append(lines, LineReconciliationResponse{
			Code:     line.Code,
			Missing:  line.Missing,
			Returned: line.Returned,
		})
	}
	return ReconciliationResponse{
		Lines:                lines,
		OriginalInvoiceTotal: rec.OriginalInvoiceTotal,
		RefundTotal:          rec.RefundTotal,
		HasShortages:         rec.HasShortages(),
		HasReturns:           rec.HasReturns(),
	}
}

// ToHistoryResponses converts an audit trail
func ToHistoryResponses(trail []audit.Entry) []HistoryEntryResponse {
	responses := make([]HistoryEntryResponse, 0, len(trail))
	for _, entry := range trail {
		responses = append(responses, HistoryEntryResponse{
			Timestamp: entry.Timestamp,
			UserName:  entry.UserName,
			Action:    string(entry.Action),
			NewState:  entry.NewState,
			Details:   entry.Details,
		})
	}
	return responses
}
