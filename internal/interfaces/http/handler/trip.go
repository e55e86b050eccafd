package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	appTrips "github.com/reparto/backend/internal/application/trips"
	"github.com/reparto/backend/internal/domain/identity"
)

// TripHandler handles the delivery trip endpoints
type TripHandler struct {
	BaseHandler
	tripService *appTrips.Service
}

// NewTripHandler creates a new TripHandler
func NewTripHandler(tripService *appTrips.Service) *TripHandler {
	return &TripHandler{tripService: tripService}
}

// Create handles POST /trips
func (h *TripHandler) Create(c *gin.Context) {
	actor, ok := getActor(c)
	if !ok {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var req appTrips.CreateTripRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	trip, err := h.tripService.Create(c.Request.Context(), actor, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, trip)
}

// Get handles GET /trips/:id
func (h *TripHandler) Get(c *gin.Context) {
	tripID, err := parseID(c)
	if err != nil {
		h.BadRequest(c, "Invalid trip ID")
		return
	}

	trip, err := h.tripService.GetByID(c.Request.Context(), tripID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, trip)
}

// List handles GET /trips
func (h *TripHandler) List(c *gin.Context) {
	var filter appTrips.TripListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	result, err := h.tripService.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, result.Items, result.Total, result.Page, result.PageSize)
}

// Start handles POST /trips/:id/start
func (h *TripHandler) Start(c *gin.Context) {
	h.lifecycle(c, h.tripService.Start)
}

// Close handles POST /trips/:id/close
func (h *TripHandler) Close(c *gin.Context) {
	h.lifecycle(c, h.tripService.Close)
}

// Reopen handles POST /trips/:id/reopen
func (h *TripHandler) Reopen(c *gin.Context) {
	h.lifecycle(c, h.tripService.Reopen)
}

// AddClient handles POST /trips/:id/clients
func (h *TripHandler) AddClient(c *gin.Context) {
	actor, ok := getActor(c)
	if !ok {
		h.Unauthorized(c, "Authentication required")
		return
	}

	tripID, err := parseID(c)
	if err != nil {
		h.BadRequest(c, "Invalid trip ID")
		return
	}

	var req appTrips.AddClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	trip, err := h.tripService.AddClient(c.Request.Context(), actor, tripID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, trip)
}

// ImportClients handles POST /trips/:id/clients/import
func (h *TripHandler) ImportClients(c *gin.Context) {
	actor, ok := getActor(c)
	if !ok {
		h.Unauthorized(c, "Authentication required")
		return
	}

	tripID, err := parseID(c)
	if err != nil {
		h.BadRequest(c, "Invalid trip ID")
		return
	}

	var req appTrips.ImportClientsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	trip, err := h.tripService.ImportClients(c.Request.Context(), actor, tripID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, trip)
}

// RemoveClient handles DELETE /trips/:id/clients/:clientId
func (h *TripHandler) RemoveClient(c *gin.Context) {
	actor, ok := getActor(c)
	if !ok {
		h.Unauthorized(c, "Authentication required")
		return
	}

	tripID, clientID, err := parseTripAndChildID(c, "clientId")
	if err != nil {
		h.BadRequest(c, "Invalid ID")
		return
	}

	trip, err := h.tripService.RemoveClient(c.Request.Context(), actor, tripID, clientID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, trip)
}

// RegisterPayment handles POST /trips/:id/clients/:clientId/payment
func (h *TripHandler) RegisterPayment(c *gin.Context) {
	actor, ok := getActor(c)
	if !ok {
		h.Unauthorized(c, "Authentication required")
		return
	}

	tripID, clientID, err := parseTripAndChildID(c, "clientId")
	if err != nil {
		h.BadRequest(c, "Invalid ID")
		return
	}

	var req appTrips.RegisterPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	trip, err := h.tripService.RegisterPayment(c.Request.Context(), actor, tripID, clientID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, trip)
}

// OverrideBalances handles PUT /trips/:id/clients/:clientId/balances
func (h *TripHandler) OverrideBalances(c *gin.Context) {
	actor, ok := getActor(c)
	if !ok {
		h.Unauthorized(c, "Authentication required")
		return
	}

	tripID, clientID, err := parseTripAndChildID(c, "clientId")
	if err != nil {
		h.BadRequest(c, "Invalid ID")
		return
	}

	var req appTrips.OverrideBalancesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	trip, err := h.tripService.OverrideBalances(c.Request.Context(), actor, tripID, clientID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, trip)
}

// AddExpense handles POST /trips/:id/expenses
func (h *TripHandler) AddExpense(c *gin.Context) {
	actor, ok := getActor(c)
	if !ok {
		h.Unauthorized(c, "Authentication required")
		return
	}

	tripID, err := parseID(c)
	if err != nil {
		h.BadRequest(c, "Invalid trip ID")
		return
	}

	var req appTrips.ExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	trip, err := h.tripService.AddExpense(c.Request.Context(), actor, tripID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, trip)
}

// UpdateExpense handles PUT /trips/:id/expenses/:expenseId
func (h *TripHandler) UpdateExpense(c *gin.Context) {
	actor, ok := getActor(c)
	if !ok {
		h.Unauthorized(c, "Authentication required")
		return
	}

	tripID, expenseID, err := parseTripAndChildID(c, "expenseId")
	if err != nil {
		h.BadRequest(c, "Invalid ID")
		return
	}

	var req appTrips.ExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	trip, err := h.tripService.UpdateExpense(c.Request.Context(), actor, tripID, expenseID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, trip)
}

// RemoveExpense handles DELETE /trips/:id/expenses/:expenseId
func (h *TripHandler) RemoveExpense(c *gin.Context) {
	actor, ok := getActor(c)
	if !ok {
		h.Unauthorized(c, "Authentication required")
		return
	}

	tripID, expenseID, err := parseTripAndChildID(c, "expenseId")
	if err != nil {
		h.BadRequest(c, "Invalid ID")
		return
	}

	trip, err := h.tripService.RemoveExpense(c.Request.Context(), actor, tripID, expenseID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, trip)
}

// Totals handles GET /trips/:id/totals
func (h *TripHandler) Totals(c *gin.Context) {
	tripID, err := parseID(c)
	if err != nil {
		h.BadRequest(c, "Invalid trip ID")
		return
	}

	totals, err := h.tripService.Totals(c.Request.Context(), tripID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, totals)
}

// Delete handles DELETE /trips/:id
func (h *TripHandler) Delete(c *gin.Context) {
	actor, ok := getActor(c)
	if !ok {
		h.Unauthorized(c, "Authentication required")
		return
	}

	tripID, err := parseID(c)
	if err != nil {
		h.BadRequest(c, "Invalid trip ID")
		return
	}

	if err := h.tripService.Delete(c.Request.Context(), actor, tripID); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

type lifecycleFunc func(ctx context.Context, actor identity.Actor, tripID uuid.UUID) (*appTrips.TripResponse, error)

// lifecycle factors the shared shape of start/close/reopen
func (h *TripHandler) lifecycle(c *gin.Context, op lifecycleFunc) {
	actor, ok := getActor(c)
	if !ok {
		h.Unauthorized(c, "Authentication required")
		return
	}

	tripID, err := parseID(c)
	if err != nil {
		h.BadRequest(c, "Invalid trip ID")
		return
	}

	trip, err := op(c.Request.Context(), actor, tripID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, trip)
}

func parseTripAndChildID(c *gin.Context, childParam string) (uuid.UUID, uuid.UUID, error) {
	tripID, err := parseID(c)
	if err != nil {
		return uuid.Nil, uuid.Nil, err
	}
	childID, err := uuid.Parse(c.Param(childParam))
	if err != nil {
		return uuid.Nil, uuid.Nil, err
	}
	return tripID, childID, nil
}
