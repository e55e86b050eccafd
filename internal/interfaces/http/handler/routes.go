package handler

import "github.com/gin-gonic/gin"

// RegisterRoutes mounts the order lifecycle endpoints
func (h *OrderHandler) RegisterRoutes(rg *gin.RouterGroup) {
	orders := rg.Group("/orders")
	{
		orders.POST("", h.Create)
		orders.GET("", h.List)
		orders.GET("/:id", h.Get)
		orders.PATCH("/:id", h.UpdateMetadata)
		orders.DELETE("/:id", h.Delete)

		orders.POST("/:id/advance", h.Advance)
		orders.GET("/:id/reconciliation", h.Reconcile)

		orders.POST("/:id/products", h.AddProduct)
		orders.DELETE("/:id/products/:code", h.RemoveProduct)
		orders.PUT("/:id/products/:code/quantity", h.UpdateQuantity)
		orders.PUT("/:id/products/:code/price", h.UpdatePrice)
		orders.POST("/:id/products/:code/check", h.ToggleCheck)
	}
}

// RegisterRoutes mounts the delivery trip endpoints
func (h *TripHandler) RegisterRoutes(rg *gin.RouterGroup) {
	trips := rg.Group("/trips")
	{
		trips.POST("", h.Create)
		trips.GET("", h.List)
		trips.GET("/:id", h.Get)
		trips.DELETE("/:id", h.Delete)

		trips.POST("/:id/start", h.Start)
		trips.POST("/:id/close", h.Close)
		trips.POST("/:id/reopen", h.Reopen)
		trips.GET("/:id/totals", h.Totals)

		trips.POST("/:id/clients", h.AddClient)
		trips.POST("/:id/clients/import", h.ImportClients)
		trips.DELETE("/:id/clients/:clientId", h.RemoveClient)
		trips.POST("/:id/clients/:clientId/payment", h.RegisterPayment)
		trips.PUT("/:id/clients/:clientId/balances", h.OverrideBalances)

		trips.POST("/:id/expenses", h.AddExpense)
		trips.PUT("/:id/expenses/:expenseId", h.UpdateExpense)
		trips.DELETE("/:id/expenses/:expenseId", h.RemoveExpense)
	}
}

// RegisterRoutes mounts the health and system info endpoints
func (h *SystemHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/health", h.Health)
	rg.GET("/system/info", h.GetSystemInfo)
}
