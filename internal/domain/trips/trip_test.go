package trips

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reparto/backend/internal/domain/audit"
	"github.com/reparto/backend/internal/domain/identity"
	"github.com/reparto/backend/internal/domain/shared"
	"github.com/reparto/backend/internal/domain/shared/valueobject"
)

func testActor(name string, role identity.Role) identity.Actor {
	return identity.Actor{ID: uuid.New(), Name: name, Role: role}
}

func ars(amount int64) valueobject.Money {
	return valueobject.NewMoneyARS(decimal.NewFromInt(amount))
}

func newTestTrip(t *testing.T) *Trip {
	t.Helper()
	trip, err := NewTrip("V-0001", "Reparto Norte", "carlos", "Ruta 9",
		time.Date(2024, 11, 18, 0, 0, 0, 0, time.UTC), testActor("root", identity.RoleAdmin))
	require.NoError(t, err)
	return trip
}

func TestNewTrip(t *testing.T) {
	t.Run("starts in PLANNING", func(t *testing.T) {
		trip := newTestTrip(t)
		assert.Equal(t, StatusPlanning, trip.Status)
		assert.False(t, trip.IsClosed())
		assert.Empty(t, trip.Clients)
		assert.Empty(t, trip.Expenses)
		require.Len(t, trip.History, 1)
		assert.Equal(t, audit.ActionCreated, trip.History[0].Action)
	})

	t.Run("empty name rejected", func(t *testing.T) {
		_, err := NewTrip("V-0002", "", "carlos", "", time.Now(), testActor("root", identity.RoleAdmin))
		assert.Error(t, err)
	})
}

func TestTrip_Lifecycle(t *testing.T) {
	admin := testActor("root", identity.RoleAdmin)

	t.Run("start moves planning onto the road", func(t *testing.T) {
		trip := newTestTrip(t)
		require.NoError(t, trip.Start(admin))
		assert.Equal(t, StatusInProgress, trip.Status)
		assert.ErrorIs(t, trip.Start(admin), shared.ErrInvalidState)
	})

	t.Run("close freezes the trip from any open state", func(t *testing.T) {
		trip := newTestTrip(t)
		require.NoError(t, trip.Close(admin))
		assert.True(t, trip.IsClosed())
		assert.ErrorIs(t, trip.Close(admin), shared.ErrTripClosed)
	})

	t.Run("reopen reverses a close", func(t *testing.T) {
		trip := newTestTrip(t)
		require.NoError(t, trip.Close(admin))
		require.NoError(t, trip.Reopen(admin))
		assert.Equal(t, StatusInProgress, trip.Status)

		last := trip.History[len(trip.History)-1]
		assert.Equal(t, audit.ActionReopened, last.Action)
	})

	t.Run("reopen of an open trip rejected", func(t *testing.T) {
		trip := newTestTrip(t)
		assert.ErrorIs(t, trip.Reopen(admin), shared.ErrInvalidState)
	})
}

func TestTrip_AddClient(t *testing.T) {
	admin := testActor("root", identity.RoleAdmin)

	t.Run("added client is classified immediately", func(t *testing.T) {
		trip := newTestTrip(t)
		client, err := trip.AddClient(admin, NewClientInput{
			Name:                 "Kiosco Luna",
			PreviousBalance:      decimal.NewFromInt(200),
			CurrentInvoiceAmount: decimal.NewFromInt(1300),
		})
		require.NoError(t, err)
		assert.Equal(t, PaymentPending, client.Status)
		assert.Equal(t, 1, trip.ClientCount())
	})

	t.Run("zero-debt client starts as paid", func(t *testing.T) {
		trip := newTestTrip(t)
		client, err := trip.AddClient(admin, NewClientInput{Name: "Kiosco Luna"})
		require.NoError(t, err)
		assert.Equal(t, PaymentPaid, client.Status)
	})

	t.Run("empty name rejected", func(t *testing.T) {
		trip := newTestTrip(t)
		_, err := trip.AddClient(admin, NewClientInput{})
		assert.Error(t, err)
	})

	t.Run("closed trip rejects new clients", func(t *testing.T) {
		trip := newTestTrip(t)
		require.NoError(t, trip.Close(admin))
		_, err := trip.AddClient(admin, NewClientInput{Name: "Kiosco Luna"})
		assert.ErrorIs(t, err, shared.ErrTripClosed)
	})
}

func TestTrip_RegisterPayment(t *testing.T) {
	admin := testActor("root", identity.RoleAdmin)

	setup := func(t *testing.T) (*Trip, uuid.UUID) {
		trip := newTestTrip(t)
		client, err := trip.AddClient(admin, NewClientInput{
			Name:                 "Kiosco Luna",
			PreviousBalance:      decimal.NewFromInt(500),
			CurrentInvoiceAmount: decimal.NewFromInt(1000),
		})
		require.NoError(t, err)
		return trip, client.ID
	}

	t.Run("payment reclassifies the client", func(t *testing.T) {
		trip, clientID := setup(t)
		require.NoError(t, trip.RegisterPayment(admin, clientID, decimal.NewFromInt(1000), decimal.NewFromInt(500), false))
		assert.Equal(t, PaymentPaid, trip.GetClient(clientID).Status)
	})

	t.Run("partial cash only", func(t *testing.T) {
		trip, clientID := setup(t)
		require.NoError(t, trip.RegisterPayment(admin, clientID, decimal.NewFromInt(300), decimal.Zero, true))
		client := trip.GetClient(clientID)
		assert.Equal(t, PaymentPartial, client.Status)
		assert.True(t, client.TransferExpected)
		assert.True(t, client.Remaining().Equal(decimal.NewFromInt(1200)))
	})

	t.Run("within tolerance counts as paid", func(t *testing.T) {
		trip, clientID := setup(t)
		require.NoError(t, trip.RegisterPayment(admin, clientID, decimal.RequireFromString("1499.50"), decimal.Zero, false))
		assert.Equal(t, PaymentPaid, trip.GetClient(clientID).Status)
	})

	t.Run("one full unit short stays partial", func(t *testing.T) {
		trip, clientID := setup(t)
		require.NoError(t, trip.RegisterPayment(admin, clientID, decimal.NewFromInt(1499), decimal.Zero, false))
		assert.Equal(t, PaymentPartial, trip.GetClient(clientID).Status)
	})

	t.Run("negative amounts rejected", func(t *testing.T) {
		trip, clientID := setup(t)
		err := trip.RegisterPayment(admin, clientID, decimal.NewFromInt(-1), decimal.Zero, false)
		assert.Error(t, err)
	})

	t.Run("unknown client rejected", func(t *testing.T) {
		trip, _ := setup(t)
		err := trip.RegisterPayment(admin, uuid.New(), decimal.NewFromInt(100), decimal.Zero, false)
		assert.Error(t, err)
	})

	t.Run("closed trip rejects payments", func(t *testing.T) {
		trip, clientID := setup(t)
		require.NoError(t, trip.Close(admin))
		err := trip.RegisterPayment(admin, clientID, decimal.NewFromInt(100), decimal.Zero, false)
		assert.ErrorIs(t, err, shared.ErrTripClosed)
	})

	t.Run("payment lands in history", func(t *testing.T) {
		trip, clientID := setup(t)
		require.NoError(t, trip.RegisterPayment(admin, clientID, decimal.NewFromInt(100), decimal.NewFromInt(50), false))
		last := trip.History[len(trip.History)-1]
		assert.Equal(t, audit.ActionPaymentRegistered, last.Action)
		assert.Contains(t, last.Details, "Kiosco Luna")
	})
}

func TestTrip_OverrideBalances(t *testing.T) {
	admin := testActor("root", identity.RoleAdmin)

	trip := newTestTrip(t)
	client, err := trip.AddClient(admin, NewClientInput{
		Name:                 "Kiosco Luna",
		CurrentInvoiceAmount: decimal.NewFromInt(1000),
	})
	require.NoError(t, err)
	require.NoError(t, trip.RegisterPayment(admin, client.ID, decimal.NewFromInt(1000), decimal.Zero, false))
	require.Equal(t, PaymentPaid, trip.GetClient(client.ID).Status)

	t.Run("raising the carried debt reclassifies", func(t *testing.T) {
		prev := decimal.NewFromInt(500)
		require.NoError(t, trip.OverrideBalances(admin, client.ID, &prev, nil))

		got := trip.GetClient(client.ID)
		assert.True(t, got.PreviousBalance.Equal(prev))
		assert.True(t, got.CurrentInvoiceAmount.Equal(decimal.NewFromInt(1000)), "nil argument left untouched")
		assert.Equal(t, PaymentPartial, got.Status)
	})

	t.Run("override is audited", func(t *testing.T) {
		last := trip.History[len(trip.History)-1]
		assert.Equal(t, audit.ActionBalanceOverridden, last.Action)
	})
}

func TestTrip_Expenses(t *testing.T) {
	admin := testActor("root", identity.RoleAdmin)

	t.Run("add, update, remove", func(t *testing.T) {
		trip := newTestTrip(t)
		expense, err := trip.AddExpense(admin, ExpenseFuel, decimal.NewFromInt(300), "YPF")
		require.NoError(t, err)
		require.Len(t, trip.Expenses, 1)

		require.NoError(t, trip.UpdateExpense(admin, expense.ID, ExpenseToll, decimal.NewFromInt(150), ""))
		assert.Equal(t, ExpenseToll, trip.Expenses[0].Type)
		assert.True(t, trip.Expenses[0].Amount.Equal(decimal.NewFromInt(150)))

		require.NoError(t, trip.RemoveExpense(admin, expense.ID))
		assert.Empty(t, trip.Expenses)
	})

	t.Run("invalid type and negative amount rejected", func(t *testing.T) {
		trip := newTestTrip(t)
		_, err := trip.AddExpense(admin, ExpenseType("taxi"), decimal.NewFromInt(10), "")
		assert.Error(t, err)
		_, err = trip.AddExpense(admin, ExpenseFuel, decimal.NewFromInt(-10), "")
		assert.Error(t, err)
	})

	t.Run("closed trip freezes expenses", func(t *testing.T) {
		trip := newTestTrip(t)
		expense, err := trip.AddExpense(admin, ExpenseFuel, decimal.NewFromInt(300), "")
		require.NoError(t, err)
		require.NoError(t, trip.Close(admin))

		_, err = trip.AddExpense(admin, ExpenseToll, decimal.NewFromInt(50), "")
		assert.ErrorIs(t, err, shared.ErrTripClosed)
		assert.ErrorIs(t, trip.UpdateExpense(admin, expense.ID, ExpenseFuel, decimal.NewFromInt(1), ""), shared.ErrTripClosed)
		assert.ErrorIs(t, trip.RemoveExpense(admin, expense.ID), shared.ErrTripClosed)
	})
}

func TestTrip_Totals(t *testing.T) {
	admin := testActor("root", identity.RoleAdmin)

	trip := newTestTrip(t)
	luna, err := trip.AddClient(admin, NewClientInput{
		Name:                 "Kiosco Luna",
		PreviousBalance:      decimal.NewFromInt(500),
		CurrentInvoiceAmount: decimal.NewFromInt(1000),
	})
	require.NoError(t, err)
	sol, err := trip.AddClient(admin, NewClientInput{
		Name:                 "Despensa Sol",
		CurrentInvoiceAmount: decimal.NewFromInt(2000),
	})
	require.NoError(t, err)

	require.NoError(t, trip.RegisterPayment(admin, luna.ID, decimal.NewFromInt(1000), decimal.NewFromInt(500), false))
	require.NoError(t, trip.RegisterPayment(admin, sol.ID, decimal.NewFromInt(800), decimal.NewFromInt(1200), false))
	_, err = trip.AddExpense(admin, ExpenseFuel, decimal.NewFromInt(300), "")
	require.NoError(t, err)
	_, err = trip.AddExpense(admin, ExpenseToll, decimal.NewFromInt(200), "")
	require.NoError(t, err)

	totals := trip.Totals()
	assert.True(t, totals.ExpectedTotal.Equals(ars(3500)))
	assert.True(t, totals.CollectedCash.Equals(ars(1800)))
	assert.True(t, totals.CollectedTransfer.Equals(ars(1700)))
	assert.True(t, totals.TotalCollected.Equals(ars(3500)))
	assert.True(t, totals.TotalExpenses.Equals(ars(500)))

	// Transfers never pass through the driver's hands: cash to render is
	// collected cash minus expenses, independent of transfer volume.
	assert.True(t, totals.CashToRender.Equals(ars(1300)))
}

func TestTrip_PaymentTolerance(t *testing.T) {
	trip := newTestTrip(t)
	assert.True(t, trip.PaymentTolerance().Equal(DefaultPaymentTolerance))

	trip.SetPaymentTolerance(decimal.NewFromInt(10))
	assert.True(t, trip.PaymentTolerance().Equal(decimal.NewFromInt(10)))
}

func TestTrip_RemoveClient(t *testing.T) {
	admin := testActor("root", identity.RoleAdmin)

	trip := newTestTrip(t)
	client, err := trip.AddClient(admin, NewClientInput{Name: "Kiosco Luna"})
	require.NoError(t, err)

	require.NoError(t, trip.RemoveClient(admin, client.ID))
	assert.Equal(t, 0, trip.ClientCount())
	assert.Error(t, trip.RemoveClient(admin, client.ID))
}
