package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/tu-usuario/stock-engine/internal/application/inventory"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	Coordinator *inventory.Coordinator
	Query       *inventory.QueryUseCase
	Rebuild     *inventory.RebuildUseCase
	JWTSecret   string
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))

	inv := protected.Group("/inventory")
	inventoryHandler := NewInventoryHandler(deps.Coordinator)
	inv.Post("/inbound", inventoryHandler.Inbound)
	inv.Post("/outbound", inventoryHandler.Outbound)
	inv.Post("/transfers", inventoryHandler.Transfer)
	inv.Post("/adjustments", inventoryHandler.Adjustment)

	stockHandler := NewStockHandler(deps.Query, deps.Rebuild)
	inv.Get("/movements", stockHandler.History)
	inv.Get("/movements/:id", stockHandler.GetMovement)
	inv.Get("/stock/:sku", stockHandler.ListLevels)
	// /verify antes que /:location para que Fiber no lo capture como ubicación
	inv.Get("/stock/:sku/verify", stockHandler.Verify)
	inv.Get("/stock/:sku/:location", stockHandler.GetQuantity)
	inv.Post("/stock/:sku/rebuild", stockHandler.Rebuild)
}
