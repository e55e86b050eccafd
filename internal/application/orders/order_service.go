package orders

import (
	"context"

	"github.com/google/uuid"

	"github.com/reparto/backend/internal/domain/identity"
	"github.com/reparto/backend/internal/domain/orders"
	"github.com/reparto/backend/internal/domain/shared"
)

// Service handles order lifecycle operations. Every mutation takes the
// acting user explicitly; authorization runs through the capability table
// before the domain mutator is invoked.
type Service struct {
	orderRepo      orders.Repository
	eventPublisher shared.EventPublisher
	allowedZones   []string
}

// NewService creates a new order Service
func NewService(orderRepo orders.Repository) *Service {
	return &Service{
		orderRepo: orderRepo,
	}
}

// SetEventPublisher sets the event publisher for cross-context integration
func (s *Service) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// SetAllowedZones restricts the zones accepted on order creation. An empty
// list accepts any zone.
func (s *Service) SetAllowedZones(zones []string) {
	s.allowedZones = zones
}

func (s *Service) validateZone(zone string) error {
	if zone == "" || len(s.allowedZones) == 0 {
		return nil
	}
	for _, z := range s.allowedZones {
		if z == zone {
			return nil
		}
	}
	return shared.NewDomainError("INVALID_INPUT", "Unknown delivery zone: "+zone)
}

// Create creates a new order in EN_ARMADO, optionally pre-loaded with
// product lines
func (s *Service) Create(ctx context.Context, actor identity.Actor, req CreateOrderRequest) (*OrderResponse, error) {
	if err := s.validateZone(req.Zone); err != nil {
		return nil, err
	}

	displayID, err := s.orderRepo.NextDisplayID(ctx)
	if err != nil {
		return nil, err
	}

	order, err := orders.NewOrder(displayID, req.ClientName, req.Zone, actor)
	if err != nil {
		return nil, err
	}

	for _, p := range req.Products {
		if err := order.AddProduct(actor, orders.NewProductInput{
			Code:      p.Code,
			Name:      p.Name,
			UnitPrice: p.UnitPrice,
			Quantity:  p.Quantity,
		}); err != nil {
			return nil, err
		}
	}

	if err := s.orderRepo.Save(ctx, order); err != nil {
		return nil, err
	}
	s.publishEvents(ctx, order)

	response := ToOrderResponse(order, "")
	return &response, nil
}

// GetByID retrieves an order with its derived reconciliation figures and
// the advisory in-use indicator for the requesting actor
func (s *Service) GetByID(ctx context.Context, actor identity.Actor, orderID uuid.UUID) (*OrderResponse, error) {
	order, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	response := ToOrderResponse(order, order.InUseBy(actor))
	return &response, nil
}

// List retrieves orders with filtering and pagination
func (s *Service) List(ctx context.Context, filter OrderListFilter) (*shared.Paginated[OrderListItemResponse], error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}
	if filter.OrderBy == "" {
		filter.OrderBy = "created_at"
	}
	if filter.OrderDir == "" {
		filter.OrderDir = "desc"
	}

	domainFilter := shared.Filter{
		Page:     filter.Page,
		PageSize: filter.PageSize,
		OrderBy:  filter.OrderBy,
		OrderDir: filter.OrderDir,
		Search:   filter.Search,
		Filters:  make(map[string]interface{}),
	}
	if filter.Status != nil {
		domainFilter.Filters["status"] = *filter.Status
	}
	if filter.Zone != nil {
		domainFilter.Filters["zone"] = *filter.Zone
	}
	if filter.DateFrom != nil {
		domainFilter.Filters["date_from"] = *filter.DateFrom
	}
	if filter.DateTo != nil {
		domainFilter.Filters["date_to"] = *filter.DateTo
	}

	list, err := s.orderRepo.FindAll(ctx, domainFilter)
	if err != nil {
		return nil, err
	}
	total, err := s.orderRepo.Count(ctx, domainFilter)
	if err != nil {
		return nil, err
	}

	result := shared.NewPaginated(ToOrderListItemResponses(list), total, filter.Page, filter.PageSize)
	return &result, nil
}

// Advance moves the order one workflow stage forward
func (s *Service) Advance(ctx context.Context, actor identity.Actor, orderID uuid.UUID, req AdvanceOrderRequest) (*OrderResponse, error) {
	order, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if !orders.CanAdvance(order, actor) {
		return nil, shared.ErrForbidden
	}
	if err := order.Advance(actor, req.Note); err != nil {
		return nil, err
	}

	if err := s.orderRepo.Save(ctx, order); err != nil {
		return nil, err
	}
	s.publishEvents(ctx, order)

	response := ToOrderResponse(order, "")
	return &response, nil
}

// AddProduct adds a product line, accumulating into an existing line when
// the code is already present
func (s *Service) AddProduct(ctx context.Context, actor identity.Actor, orderID uuid.UUID, req AddProductRequest) (*OrderResponse, error) {
	return s.mutateProducts(ctx, actor, orderID, func(order *orders.Order) error {
		return order.AddProduct(actor, orders.NewProductInput{
			Code:      req.Code,
			Name:      req.Name,
			UnitPrice: req.UnitPrice,
			Quantity:  req.Quantity,
		})
	})
}

// RemoveProduct removes a product line
func (s *Service) RemoveProduct(ctx context.Context, actor identity.Actor, orderID uuid.UUID, code string) (*OrderResponse, error) {
	return s.mutateProducts(ctx, actor, orderID, func(order *orders.Order) error {
		return order.RemoveProduct(actor, code)
	})
}

// UpdateQuantity sets the working quantity of one product line
func (s *Service) UpdateQuantity(ctx context.Context, actor identity.Actor, orderID uuid.UUID, code string, req UpdateQuantityRequest) (*OrderResponse, error) {
	return s.mutateProducts(ctx, actor, orderID, func(order *orders.Order) error {
		order.ApplyQuantityChange(actor, code, req.Quantity)
		return nil
	})
}

// ToggleCheck flips the quality-control flag of one product line
func (s *Service) ToggleCheck(ctx context.Context, actor identity.Actor, orderID uuid.UUID, code string) (*OrderResponse, error) {
	return s.mutateProducts(ctx, actor, orderID, func(order *orders.Order) error {
		order.ToggleProductCheck(actor, code)
		return nil
	})
}

// UpdatePrice sets the unit price of one product line. Admin only.
func (s *Service) UpdatePrice(ctx context.Context, actor identity.Actor, orderID uuid.UUID, code string, req UpdatePriceRequest) (*OrderResponse, error) {
	order, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if !orders.CanEditPrices(order, actor) {
		return nil, shared.ErrForbidden
	}
	if err := order.UpdateProductPrice(actor, code, req.UnitPrice); err != nil {
		return nil, err
	}

	if err := s.orderRepo.Save(ctx, order); err != nil {
		return nil, err
	}

	response := ToOrderResponse(order, "")
	return &response, nil
}

// UpdateMetadata edits observations and payment method. Admin only.
func (s *Service) UpdateMetadata(ctx context.Context, actor identity.Actor, orderID uuid.UUID, req UpdateMetadataRequest) (*OrderResponse, error) {
	order, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if !orders.CanEditMetadata(order, actor) {
		return nil, shared.ErrForbidden
	}
	if req.Observations != nil {
		if err := order.UpdateObservations(actor, *req.Observations); err != nil {
			return nil, err
		}
	}
	if req.PaymentMethod != nil {
		if err := order.UpdatePaymentMethod(actor, orders.PaymentMethod(*req.PaymentMethod)); err != nil {
			return nil, err
		}
	}

	if err := s.orderRepo.Save(ctx, order); err != nil {
		return nil, err
	}

	response := ToOrderResponse(order, "")
	return &response, nil
}

// Reconcile returns the derived shortage/return view of an order
func (s *Service) Reconcile(ctx context.Context, orderID uuid.UUID) (*ReconciliationResponse, error) {
	order, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	response := ToReconciliationResponse(orders.ReconcileOrder(order))
	return &response, nil
}

// Delete removes an order at any stage, terminal included. Admin only.
func (s *Service) Delete(ctx context.Context, actor identity.Actor, orderID uuid.UUID) error {
	if !orders.CanDelete(actor) {
		return shared.ErrForbidden
	}

	order, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return err
	}

	if err := s.orderRepo.Delete(ctx, orderID); err != nil {
		return err
	}

	order.AddDomainEvent(orders.NewOrderDeletedEvent(order))
	s.publishEvents(ctx, order)
	return nil
}

// mutateProducts is the shared load-authorize-mutate-save path for
// product-line edits
func (s *Service) mutateProducts(ctx context.Context, actor identity.Actor, orderID uuid.UUID, mutate func(*orders.Order) error) (*OrderResponse, error) {
	order, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if !orders.CanEditProducts(order, actor) {
		return nil, shared.ErrForbidden
	}
	if err := mutate(order); err != nil {
		return nil, err
	}

	if err := s.orderRepo.Save(ctx, order); err != nil {
		return nil, err
	}

	response := ToOrderResponse(order, order.InUseBy(actor))
	return &response, nil
}

func (s *Service) publishEvents(ctx context.Context, order *orders.Order) {
	if s.eventPublisher == nil {
		return
	}
	for _, event := range order.GetDomainEvents() {
		// Event handling is async; a failed publish must not fail the
		// operation.
		_ = s.eventPublisher.Publish(ctx, event)
	}
	order.ClearDomainEvents()
}
