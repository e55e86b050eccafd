package persistence

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/reparto/backend/internal/domain/audit"
	"github.com/reparto/backend/internal/domain/identity"
	"github.com/reparto/backend/internal/domain/orders"
)

// newSQLiteOrderRepository backs the repository with a real in-memory
// database so save-then-load exercises the actual SQL round trip instead
// of mocked result sets.
func newSQLiteOrderRepository(t *testing.T) *GormOrderRepository {
	gormDB, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	sqlDB, err := gormDB.DB()
	require.NoError(t, err)
	// A second pool connection would see its own empty :memory: database.
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, gormDB.AutoMigrate(&orders.Order{}, &orders.ProductLine{}, &audit.Entry{}))

	return NewGormOrderRepository(gormDB)
}

func historyActions(order *orders.Order) []audit.Action {
	actions := make([]audit.Action, len(order.History))
	for i, entry := range order.History {
		actions[i] = entry.Action
	}
	return actions
}

func TestGormOrderRepository_RoundTrip(t *testing.T) {
	ana := identity.Actor{ID: uuid.New(), Name: "ana", Role: identity.RoleOperator}
	bruno := identity.Actor{ID: uuid.New(), Name: "bruno", Role: identity.RoleOperator}

	t.Run("reloaded order matches what was saved", func(t *testing.T) {
		repo := newSQLiteOrderRepository(t)
		ctx := context.Background()

		order, err := orders.NewOrder("R-00001", "Almacén San Martín", "Norte", ana)
		require.NoError(t, err)
		require.NoError(t, order.AddProduct(ana, orders.NewProductInput{
			Code: "A100", Name: "Yerba 1kg", UnitPrice: decimal.NewFromInt(150), Quantity: 10,
		}))
		require.NoError(t, order.AddProduct(ana, orders.NewProductInput{
			Code: "B200", Name: "Harina 000", UnitPrice: decimal.RequireFromString("82.50"), Quantity: 4,
		}))
		order.ApplyQuantityChange(ana, "A100", 8)
		require.NoError(t, order.Advance(ana, ""))
		require.NoError(t, order.Advance(bruno, "control sin faltantes"))

		require.NoError(t, repo.Save(ctx, order))

		loaded, err := repo.FindByID(ctx, order.ID)
		require.NoError(t, err)

		assert.Equal(t, "R-00001", loaded.DisplayID)
		assert.Equal(t, "Almacén San Martín", loaded.ClientName)
		assert.Equal(t, orders.StatusArmadoControlado, loaded.Status)
		assert.True(t, loaded.Total.Equal(decimal.RequireFromString("1530")),
			"total was %s", loaded.Total)

		require.Len(t, loaded.Products, 2)
		yerba := loaded.GetProduct("A100")
		require.NotNil(t, yerba)
		assert.Equal(t, 8, yerba.Quantity)
		assert.Equal(t, 10, yerba.OriginalQuantity)
		assert.True(t, yerba.Subtotal.Equal(decimal.NewFromInt(1200)))
		harina := loaded.GetProduct("B200")
		require.NotNil(t, harina)
		assert.True(t, harina.UnitPrice.Equal(decimal.RequireFromString("82.50")))

		assert.Equal(t, []audit.Action{
			audit.ActionCreated,
			audit.ActionProductAdded,
			audit.ActionProductAdded,
			audit.ActionQuantityEdited,
			audit.ActionAdvanced,
			audit.ActionAdvanced,
		}, historyActions(loaded))
		assert.Equal(t, "ana", loaded.History[4].UserName)
		assert.Equal(t, string(orders.StatusArmado), loaded.History[4].NewState)
		assert.Equal(t, "bruno", loaded.History[5].UserName)
		assert.Equal(t, string(orders.StatusArmadoControlado), loaded.History[5].NewState)
	})

	t.Run("resaving appends history without duplicating it and rewrites lines", func(t *testing.T) {
		repo := newSQLiteOrderRepository(t)
		ctx := context.Background()

		order, err := orders.NewOrder("R-00002", "Kiosco Luna", "Sur", ana)
		require.NoError(t, err)
		require.NoError(t, order.AddProduct(ana, orders.NewProductInput{
			Code: "A100", Name: "Yerba 1kg", UnitPrice: decimal.NewFromInt(150), Quantity: 2,
		}))
		require.NoError(t, order.AddProduct(ana, orders.NewProductInput{
			Code: "C300", Name: "Azúcar 1kg", UnitPrice: decimal.NewFromInt(90), Quantity: 5,
		}))
		require.NoError(t, repo.Save(ctx, order))

		loaded, err := repo.FindByID(ctx, order.ID)
		require.NoError(t, err)
		require.NoError(t, loaded.RemoveProduct(ana, "C300"))
		require.NoError(t, loaded.Advance(ana, ""))
		require.NoError(t, repo.Save(ctx, loaded))

		reloaded, err := repo.FindByID(ctx, order.ID)
		require.NoError(t, err)

		require.Len(t, reloaded.Products, 1)
		assert.Equal(t, "A100", reloaded.Products[0].Code)
		assert.True(t, reloaded.Total.Equal(decimal.NewFromInt(300)))
		assert.Equal(t, orders.StatusArmado, reloaded.Status)

		assert.Equal(t, []audit.Action{
			audit.ActionCreated,
			audit.ActionProductAdded,
			audit.ActionProductAdded,
			audit.ActionProductRemoved,
			audit.ActionAdvanced,
		}, historyActions(reloaded))
	})
}
