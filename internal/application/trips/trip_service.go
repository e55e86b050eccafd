package trips

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/reparto/backend/internal/domain/identity"
	"github.com/reparto/backend/internal/domain/orders"
	"github.com/reparto/backend/internal/domain/shared"
	"github.com/reparto/backend/internal/domain/trips"
)

// Service handles trip lifecycle and collection operations
type Service struct {
	tripRepo       trips.Repository
	orderRepo      orders.Repository
	eventPublisher shared.EventPublisher

	// paymentTolerance applied to every loaded trip; zero falls back to
	// the domain default
	paymentTolerance decimal.Decimal
}

// NewService creates a new trip Service. The order repository feeds the
// client import path.
func NewService(tripRepo trips.Repository, orderRepo orders.Repository) *Service {
	return &Service{
		tripRepo:  tripRepo,
		orderRepo: orderRepo,
	}
}

// SetEventPublisher sets the event publisher for cross-context integration
func (s *Service) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// SetPaymentTolerance overrides the payment classification tolerance for
// every trip this service touches
func (s *Service) SetPaymentTolerance(tolerance decimal.Decimal) {
	s.paymentTolerance = tolerance
}

// Create plans a new trip
func (s *Service) Create(ctx context.Context, actor identity.Actor, req CreateTripRequest) (*TripResponse, error) {
	displayID, err := s.tripRepo.NextDisplayID(ctx)
	if err != nil {
		return nil, err
	}

	trip, err := trips.NewTrip(displayID, req.Name, req.DriverName, req.Route, req.Date, actor)
	if err != nil {
		return nil, err
	}
	s.applyTolerance(trip)

	if err := s.tripRepo.Save(ctx, trip); err != nil {
		return nil, err
	}
	s.publishEvents(ctx, trip)

	response := ToTripResponse(trip)
	return &response, nil
}

// GetByID retrieves a trip with its clients, expenses and totals
func (s *Service) GetByID(ctx context.Context, tripID uuid.UUID) (*TripResponse, error) {
	trip, err := s.loadTrip(ctx, tripID)
	if err != nil {
		return nil, err
	}
	response := ToTripResponse(trip)
	return &response, nil
}

// List retrieves trips with filtering and pagination
func (s *Service) List(ctx context.Context, filter TripListFilter) (*shared.Paginated[TripListItemResponse], error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}
	if filter.OrderBy == "" {
		filter.OrderBy = "date"
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
	if filter.Driver != nil {
		domainFilter.Filters["driver"] = *filter.Driver
	}
	if filter.DateFrom != nil {
		domainFilter.Filters["date_from"] = *filter.DateFrom
	}
	if filter.DateTo != nil {
		domainFilter.Filters["date_to"] = *filter.DateTo
	}

	list, err := s.tripRepo.FindAll(ctx, domainFilter)
	if err != nil {
		return nil, err
	}
	total, err := s.tripRepo.Count(ctx, domainFilter)
	if err != nil {
		return nil, err
	}

	result := shared.NewPaginated(ToTripListItemResponses(list), total, filter.Page, filter.PageSize)
	return &result, nil
}

// Start moves a planned trip onto the road
func (s *Service) Start(ctx context.Context, actor identity.Actor, tripID uuid.UUID) (*TripResponse, error) {
	return s.mutate(ctx, tripID, func(trip *trips.Trip) error {
		return trip.Start(actor)
	})
}

// Close reconciles the trip and freezes client and expense edits.
// Admin only, same as reopening.
func (s *Service) Close(ctx context.Context, actor identity.Actor, tripID uuid.UUID) (*TripResponse, error) {
	if !actor.IsAdmin() {
		return nil, shared.ErrForbidden
	}
	return s.mutate(ctx, tripID, func(trip *trips.Trip) error {
		return trip.Close(actor)
	})
}

// Reopen reverses a close. Admin only.
func (s *Service) Reopen(ctx context.Context, actor identity.Actor, tripID uuid.UUID) (*TripResponse, error) {
	if !actor.IsAdmin() {
		return nil, shared.ErrForbidden
	}
	return s.mutate(ctx, tripID, func(trip *trips.Trip) error {
		return trip.Reopen(actor)
	})
}

// AddClient adds a manually entered stop
func (s *Service) AddClient(ctx context.Context, actor identity.Actor, tripID uuid.UUID, req AddClientRequest) (*TripResponse, error) {
	return s.mutate(ctx, tripID, func(trip *trips.Trip) error {
		_, err := trip.AddClient(actor, trips.NewClientInput{
			Name:                 req.Name,
			Address:              req.Address,
			PreviousBalance:      req.PreviousBalance,
			CurrentInvoiceAmount: req.CurrentInvoiceAmount,
			TransferExpected:     req.TransferExpected,
		})
		return err
	})
}

// ImportClients adds stops sourced from delivery-ready orders: the client
// name and invoice amount come from the order itself. Orders that have not
// passed invoice control yet are rejected.
func (s *Service) ImportClients(ctx context.Context, actor identity.Actor, tripID uuid.UUID, req ImportClientsRequest) (*TripResponse, error) {
	return s.mutate(ctx, tripID, func(trip *trips.Trip) error {
		for _, orderID := range req.OrderIDs {
			order, err := s.orderRepo.FindByID(ctx, orderID)
			if err != nil {
				return err
			}
			if order.Status != orders.StatusFacturaControlada && order.Status != orders.StatusEnTransito {
				return shared.NewDomainError("ORDER_NOT_DELIVERABLE",
					"Order "+order.DisplayID+" has not passed invoice control")
			}
			if _, err := trip.AddClient(actor, trips.NewClientInput{
				Name:                 order.ClientName,
				Address:              order.Zone,
				CurrentInvoiceAmount: order.Total,
			}); err != nil {
				return err
			}
		}
		return nil
	})
}

// RemoveClient drops a stop from the route
func (s *Service) RemoveClient(ctx context.Context, actor identity.Actor, tripID, clientID uuid.UUID) (*TripResponse, error) {
	return s.mutate(ctx, tripID, func(trip *trips.Trip) error {
		return trip.RemoveClient(actor, clientID)
	})
}

// RegisterPayment records what the driver collected at a stop
func (s *Service) RegisterPayment(ctx context.Context, actor identity.Actor, tripID, clientID uuid.UUID, req RegisterPaymentRequest) (*TripResponse, error) {
	return s.mutate(ctx, tripID, func(trip *trips.Trip) error {
		return trip.RegisterPayment(actor, clientID, req.Cash, req.Transfer, req.TransferExpected)
	})
}

// OverrideBalances corrects a client's carried debt or invoice amount.
// Admin only.
func (s *Service) OverrideBalances(ctx context.Context, actor identity.Actor, tripID, clientID uuid.UUID, req OverrideBalancesRequest) (*TripResponse, error) {
	if !actor.IsAdmin() {
		return nil, shared.ErrForbidden
	}
	return s.mutate(ctx, tripID, func(trip *trips.Trip) error {
		return trip.OverrideBalances(actor, clientID, req.PreviousBalance, req.CurrentInvoiceAmount)
	})
}

// AddExpense records a driver expense
func (s *Service) AddExpense(ctx context.Context, actor identity.Actor, tripID uuid.UUID, req ExpenseRequest) (*TripResponse, error) {
	return s.mutate(ctx, tripID, func(trip *trips.Trip) error {
		_, err := trip.AddExpense(actor, trips.ExpenseType(req.Type), req.Amount, req.Note)
		return err
	})
}

// UpdateExpense edits a recorded expense
func (s *Service) UpdateExpense(ctx context.Context, actor identity.Actor, tripID, expenseID uuid.UUID, req ExpenseRequest) (*TripResponse, error) {
	return s.mutate(ctx, tripID, func(trip *trips.Trip) error {
		return trip.UpdateExpense(actor, expenseID, trips.ExpenseType(req.Type), req.Amount, req.Note)
	})
}

// RemoveExpense deletes a recorded expense
func (s *Service) RemoveExpense(ctx context.Context, actor identity.Actor, tripID, expenseID uuid.UUID) (*TripResponse, error) {
	return s.mutate(ctx, tripID, func(trip *trips.Trip) error {
		return trip.RemoveExpense(actor, expenseID)
	})
}

// Totals returns the trip-level reconciliation summary alone
func (s *Service) Totals(ctx context.Context, tripID uuid.UUID) (*TotalsResponse, error) {
	trip, err := s.loadTrip(ctx, tripID)
	if err != nil {
		return nil, err
	}
	response := ToTotalsResponse(trip.Totals())
	return &response, nil
}

// Delete removes a trip. Admin only.
func (s *Service) Delete(ctx context.Context, actor identity.Actor, tripID uuid.UUID) error {
	if !actor.IsAdmin() {
		return shared.ErrForbidden
	}
	if _, err := s.loadTrip(ctx, tripID); err != nil {
		return err
	}
	return s.tripRepo.Delete(ctx, tripID)
}

// mutate is the shared load-mutate-save path for trip edits
func (s *Service) mutate(ctx context.Context, tripID uuid.UUID, fn func(*trips.Trip) error) (*TripResponse, error) {
	trip, err := s.loadTrip(ctx, tripID)
	if err != nil {
		return nil, err
	}

	if err := fn(trip); err != nil {
		return nil, err
	}

	if err := s.tripRepo.Save(ctx, trip); err != nil {
		return nil, err
	}
	s.publishEvents(ctx, trip)

	response := ToTripResponse(trip)
	return &response, nil
}

func (s *Service) loadTrip(ctx context.Context, tripID uuid.UUID) (*trips.Trip, error) {
	trip, err := s.tripRepo.FindByID(ctx, tripID)
	if err != nil {
		return nil, err
	}
	s.applyTolerance(trip)
	return trip, nil
}

func (s *Service) applyTolerance(trip *trips.Trip) {
	if !s.paymentTolerance.IsZero() {
		trip.SetPaymentTolerance(s.paymentTolerance)
	}
}

func (s *Service) publishEvents(ctx context.Context, trip *trips.Trip) {
	if s.eventPublisher == nil {
		return
	}
	for _, event := range trip.GetDomainEvents() {
		// Event handling is async; a failed publish must not fail the
		// operation.
		_ = s.eventPublisher.Publish(ctx, event)
	}
	trip.ClearDomainEvents()
}
