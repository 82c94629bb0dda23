package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/adega-api/internal/application/inventory"
	"github.com/jhoicas/adega-api/internal/application/sales"
	"github.com/jhoicas/adega-api/internal/application/usecase"
)

// RouterDeps dependencias para el router. Queue puede ser nil cuando Redis
// está deshabilitado: los errores transitorios se devuelven directo al
// cliente en vez de encolarse.
type RouterDeps struct {
	ProductUC   *usecase.ProductUseCase
	LifecycleUC *usecase.LifecycleUseCase
	MovementUC  *inventory.RegisterMovementUseCase
	StockQuery  *inventory.StockQueryUseCase
	TransferUC  *inventory.TransferUseCase
	CheckoutUC  *sales.CheckoutUseCase
	Queue       inventory.ReplayQueue
	JWTSecret   string
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))

	// Products (protegido)
	products := protected.Group("/products")
	productHandler := NewProductHandler(deps.ProductUC, deps.LifecycleUC)
	products.Post("/", productHandler.Create)
	products.Get("/", productHandler.List)
	products.Get("/deleted", productHandler.ListDeleted)
	products.Get("/barcode/:code", productHandler.GetByBarcode)
	products.Get("/:id", productHandler.GetByID)
	products.Put("/:id", productHandler.Update)
	products.Delete("/:id", RequireRole("admin"), productHandler.SoftDelete)
	products.Post("/:id/restore", RequireRole("admin"), productHandler.Restore)
	products.Get("/:id/usage", productHandler.GetUsage)

	// Inventory movements y stock (protegido)
	invGroup := protected.Group("/inventory")
	inventoryHandler := NewInventoryHandler(deps.MovementUC, deps.StockQuery, deps.Queue)
	invGroup.Post("/movements", inventoryHandler.RegisterMovement)
	invGroup.Get("/movements", inventoryHandler.ListMovements)
	invGroup.Post("/stock-absolute", inventoryHandler.SetStockAbsolute)
	invGroup.Get("/stock/:id", inventoryHandler.GetStock)
	invGroup.Get("/stock/:id/stores", inventoryHandler.GetStockedStores)

	// Transfers entre tiendas (protegido)
	transfers := protected.Group("/transfers")
	transferHandler := NewTransferHandler(deps.TransferUC)
	transfers.Post("/", transferHandler.Create)
	transfers.Get("/", transferHandler.ListRecent)
	transfers.Get("/product/:id", transferHandler.ListByProduct)

	// Sales (protegido)
	salesGroup := protected.Group("/sales")
	saleHandler := NewSaleHandler(deps.CheckoutUC)
	salesGroup.Post("/", saleHandler.Create)
}
