package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appTrips "github.com/reparto/backend/internal/application/trips"
	"github.com/reparto/backend/internal/domain/identity"
	"github.com/reparto/backend/internal/domain/orders"
	"github.com/reparto/backend/internal/domain/shared"
	"github.com/reparto/backend/internal/domain/shared/valueobject"
	"github.com/reparto/backend/internal/domain/trips"
	"github.com/reparto/backend/internal/interfaces/http/router"
)

// stubTripRepository holds trips in a map, enough to drive the real
// service through HTTP
type stubTripRepository struct {
	store map[uuid.UUID]*trips.Trip
	next  int
}

func newStubTripRepository() *stubTripRepository {
	return &stubTripRepository{store: make(map[uuid.UUID]*trips.Trip), next: 1}
}

func (r *stubTripRepository) FindByID(ctx context.Context, id uuid.UUID) (*trips.Trip, error) {
	trip, ok := r.store[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return trip, nil
}

func (r *stubTripRepository) FindAll(ctx context.Context, filter shared.Filter) ([]trips.Trip, error) {
	list := make([]trips.Trip, 0, len(r.store))
	for _, t := range r.store {
		list = append(list, *t)
	}
	return list, nil
}

func (r *stubTripRepository) Save(ctx context.Context, trip *trips.Trip) error {
	r.store[trip.ID] = trip
	return nil
}

func (r *stubTripRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if _, ok := r.store[id]; !ok {
		return shared.ErrNotFound
	}
	delete(r.store, id)
	return nil
}

func (r *stubTripRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	return int64(len(r.store)), nil
}

func (r *stubTripRepository) NextDisplayID(ctx context.Context) (string, error) {
	id := r.next
	r.next++
	return fmt.Sprintf("V-%05d", id), nil
}

func newTripTestServer(t *testing.T, tripRepo *stubTripRepository, orderRepo *stubOrderRepository, actor identity.Actor) *gin.Engine {
	t.Helper()

	engine := gin.New()
	engine.Use(actorMiddleware(actor))

	service := appTrips.NewService(tripRepo, orderRepo)
	router.NewRouter(engine).Register(NewTripHandler(service)).Setup()
	return engine
}

func seedTrip(t *testing.T, repo *stubTripRepository, actor identity.Actor) *trips.Trip {
	t.Helper()

	trip, err := trips.NewTrip("V-00001", "Reparto Norte", "Diego", "Ruta 9",
		time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC), actor)
	require.NoError(t, err)
	repo.store[trip.ID] = trip
	return trip
}

func seedStartedTripWithClient(t *testing.T, repo *stubTripRepository, actor identity.Actor) (*trips.Trip, *trips.Client) {
	t.Helper()

	trip := seedTrip(t, repo, actor)
	require.NoError(t, trip.Start(actor))
	client, err := trip.AddClient(actor, trips.NewClientInput{
		Name:                 "Kiosco Luna",
		Address:              "Mitre 450",
		PreviousBalance:      decimal.NewFromInt(200),
		CurrentInvoiceAmount: decimal.NewFromInt(1000),
	})
	require.NoError(t, err)
	return trip, client
}

func TestTripHandler_Create(t *testing.T) {
	admin := identity.Actor{ID: uuid.New(), Name: "marta", Role: identity.RoleAdmin}
	server := newTripTestServer(t, newStubTripRepository(), newStubOrderRepository(), admin)

	body := `{"name": "Reparto Norte", "driver_name": "Diego", "route": "Ruta 9", "date": "2026-03-14T00:00:00Z"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/trips", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	server.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Contains(t, rec.Body.String(), `"display_id":"V-00001"`)
	assert.Contains(t, rec.Body.String(), `"status":"PLANNING"`)
}

func TestTripHandler_Lifecycle(t *testing.T) {
	admin := identity.Actor{ID: uuid.New(), Name: "marta", Role: identity.RoleAdmin}

	t.Run("start moves the trip onto the road", func(t *testing.T) {
		repo := newStubTripRepository()
		trip := seedTrip(t, repo, admin)
		server := newTripTestServer(t, repo, newStubOrderRepository(), admin)

		req := httptest.NewRequest(http.MethodPost, "/api/v1/trips/"+trip.ID.String()+"/start", nil)
		rec := httptest.NewRecorder()
		server.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"status":"IN_PROGRESS"`)
	})

	t.Run("close requires admin", func(t *testing.T) {
		operator := identity.Actor{ID: uuid.New(), Name: "ana", Role: identity.RoleOperator}
		repo := newStubTripRepository()
		trip := seedTrip(t, repo, operator)
		require.NoError(t, trip.Start(operator))
		server := newTripTestServer(t, repo, newStubOrderRepository(), operator)

		req := httptest.NewRequest(http.MethodPost, "/api/v1/trips/"+trip.ID.String()+"/close", nil)
		rec := httptest.NewRecorder()
		server.ServeHTTP(rec, req)

		require.Equal(t, http.StatusForbidden, rec.Code)
		assert.Contains(t, rec.Body.String(), "FORBIDDEN")
	})

	t.Run("closed trip rejects payment edits", func(t *testing.T) {
		repo := newStubTripRepository()
		trip, client := seedStartedTripWithClient(t, repo, admin)
		require.NoError(t, trip.Close(admin))
		server := newTripTestServer(t, repo, newStubOrderRepository(), admin)

		url := "/api/v1/trips/" + trip.ID.String() + "/clients/" + client.ID.String() + "/payment"
		req := httptest.NewRequest(http.MethodPost, url, strings.NewReader(`{"cash": "500"}`))
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()
		server.ServeHTTP(rec, req)

		require.Equal(t, http.StatusConflict, rec.Code)
		assert.Contains(t, rec.Body.String(), "TRIP_CLOSED")
	})
}

func TestTripHandler_RegisterPayment(t *testing.T) {
	admin := identity.Actor{ID: uuid.New(), Name: "marta", Role: identity.RoleAdmin}
	repo := newStubTripRepository()
	trip, client := seedStartedTripWithClient(t, repo, admin)
	server := newTripTestServer(t, repo, newStubOrderRepository(), admin)

	// Debt is 1200; 1199.50 in cash lands within the rounding tolerance.
	url := "/api/v1/trips/" + trip.ID.String() + "/clients/" + client.ID.String() + "/payment"
	req := httptest.NewRequest(http.MethodPost, url, strings.NewReader(`{"cash": "1199.50"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	server.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"PAID"`)
}

func TestTripHandler_ImportClients(t *testing.T) {
	admin := identity.Actor{ID: uuid.New(), Name: "marta", Role: identity.RoleAdmin}

	newDeliverableOrder := func(t *testing.T, orderRepo *stubOrderRepository) *orders.Order {
		t.Helper()
		order, err := orders.NewOrder("R-00007", "Almacén San Martín", "Norte", admin)
		require.NoError(t, err)
		require.NoError(t, order.AddProduct(admin, orders.NewProductInput{
			Code: "A100", Name: "Yerba 1kg", UnitPrice: decimal.NewFromInt(150), Quantity: 10,
		}))
		order.Status = orders.StatusFacturaControlada
		orderRepo.store[order.ID] = order
		return order
	}

	t.Run("copies name and invoice amount from the order", func(t *testing.T) {
		tripRepo := newStubTripRepository()
		orderRepo := newStubOrderRepository()
		trip := seedTrip(t, tripRepo, admin)
		order := newDeliverableOrder(t, orderRepo)
		server := newTripTestServer(t, tripRepo, orderRepo, admin)

		body := `{"order_ids": ["` + order.ID.String() + `"]}`
		req := httptest.NewRequest(http.MethodPost, "/api/v1/trips/"+trip.ID.String()+"/clients/import", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()

		server.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"name":"Almacén San Martín"`)
		assert.Contains(t, rec.Body.String(), `"current_invoice_amount":"1500"`)
	})

	t.Run("rejects an order still in assembly", func(t *testing.T) {
		tripRepo := newStubTripRepository()
		orderRepo := newStubOrderRepository()
		trip := seedTrip(t, tripRepo, admin)
		order := newDeliverableOrder(t, orderRepo)
		order.Status = orders.StatusEnArmado
		server := newTripTestServer(t, tripRepo, orderRepo, admin)

		body := `{"order_ids": ["` + order.ID.String() + `"]}`
		req := httptest.NewRequest(http.MethodPost, "/api/v1/trips/"+trip.ID.String()+"/clients/import", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()

		server.ServeHTTP(rec, req)

		require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
		assert.Contains(t, rec.Body.String(), "ORDER_NOT_DELIVERABLE")
	})
}

func TestTripHandler_Totals(t *testing.T) {
	admin := identity.Actor{ID: uuid.New(), Name: "marta", Role: identity.RoleAdmin}
	repo := newStubTripRepository()
	trip, client := seedStartedTripWithClient(t, repo, admin)
	require.NoError(t, trip.RegisterPayment(admin, client.ID, decimal.NewFromInt(800), decimal.NewFromInt(200), false))
	_, err := trip.AddExpense(admin, trips.ExpenseFuel, decimal.NewFromInt(150), "YPF Ruta 9")
	require.NoError(t, err)
	server := newTripTestServer(t, repo, newStubOrderRepository(), admin)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/trips/"+trip.ID.String()+"/totals", nil)
	rec := httptest.NewRecorder()

	server.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var envelope struct {
		Data appTrips.TotalsResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.True(t, envelope.Data.ExpectedTotal.Equals(valueobject.NewMoneyARS(decimal.NewFromInt(1200))))
	assert.True(t, envelope.Data.CollectedCash.Equals(valueobject.NewMoneyARS(decimal.NewFromInt(800))))
	assert.True(t, envelope.Data.CollectedTransfer.Equals(valueobject.NewMoneyARS(decimal.NewFromInt(200))))
	assert.True(t, envelope.Data.TotalExpenses.Equals(valueobject.NewMoneyARS(decimal.NewFromInt(150))))
	assert.True(t, envelope.Data.CashToRender.Equals(valueobject.NewMoneyARS(decimal.NewFromInt(650))))
}
