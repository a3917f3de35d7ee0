package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Inventario-componentes/internal/application/inventory"
	"github.com/jhoicas/Inventario-componentes/internal/application/usecase"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	StockOps    *inventory.StockOperationsUseCase
	StockQuery  *inventory.ComponentStockUseCase
	ComponentUC *usecase.ComponentUseCase
	LocationUC  *usecase.LocationUseCase
	JWTSecret   string
}

// Router registra las rutas de la API. Todo /api requiere Bearer Token.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api", AuthMiddleware(deps.JWTSecret))

	stockHandler := NewStockHandler(deps.StockOps, deps.StockQuery)
	stock := api.Group("/stock")
	stock.Post("/add", stockHandler.Add)
	stock.Post("/remove", stockHandler.Remove)
	stock.Post("/move", stockHandler.Move)

	componentHandler := NewComponentHandler(deps.ComponentUC)
	components := api.Group("/components")
	components.Post("/", componentHandler.Create)
	components.Get("/", componentHandler.List)
	components.Get("/:id", componentHandler.GetByID)
	components.Get("/:id/stock", stockHandler.GetStock)
	components.Get("/:id/transactions", stockHandler.ListTransactions)
	components.Get("/:id/audit", stockHandler.Audit)
	components.Put("/:id/locations/:location_id/reorder", stockHandler.UpdateReorder)

	locationHandler := NewLocationHandler(deps.LocationUC)
	locations := api.Group("/locations")
	locations.Post("/", locationHandler.Create)
	locations.Get("/", locationHandler.List)
	locations.Get("/:id", locationHandler.GetByID)
}
