package http

import (
	nethttp "net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/jhoicas/Manufactura-api/internal/application/inventory"
	"github.com/jhoicas/Manufactura-api/internal/application/order"
	"github.com/jhoicas/Manufactura-api/internal/application/production"
	"github.com/jhoicas/Manufactura-api/internal/application/purchase"
	"github.com/jhoicas/Manufactura-api/internal/application/usecase"
	"github.com/jhoicas/Manufactura-api/pkg/jwt"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	Catalog        *usecase.CatalogUseCase
	Stock          *inventory.StockUseCase
	Replenishment  *inventory.ReplenishmentUseCase
	Production     *production.UseCase
	Orders         *order.UseCase
	Purchases      *purchase.UseCase
	JWTSecret      string
	MetricsHandler nethttp.Handler // nil desactiva /metrics
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})
	if deps.MetricsHandler != nil {
		app.Get("/metrics", adaptor.HTTPHandler(deps.MetricsHandler))
	}

	api := app.Group("/api", AuthMiddleware(deps.JWTSecret))

	anyRole := RequireRole(jwt.RoleAdmin, jwt.RoleSupervisor, jwt.RoleBodeguero, jwt.RoleVendedor)
	approvers := RequireRole(jwt.RoleAdmin, jwt.RoleSupervisor)
	warehouse := RequireRole(jwt.RoleAdmin, jwt.RoleSupervisor, jwt.RoleBodeguero)
	sales := RequireRole(jwt.RoleAdmin, jwt.RoleSupervisor, jwt.RoleVendedor)

	// Catálogo
	catalog := NewCatalogHandler(deps.Catalog)
	products := api.Group("/products")
	products.Get("/", anyRole, catalog.ListProducts)
	products.Get("/:id", anyRole, catalog.GetProduct)
	products.Get("/:id/bom", anyRole, catalog.ListBOM)
	products.Post("/", approvers, catalog.CreateProduct)
	products.Post("/:id/bom", approvers, catalog.AddBOMLine)

	rawMaterials := api.Group("/raw-materials")
	rawMaterials.Get("/", anyRole, catalog.ListRawMaterials)
	rawMaterials.Get("/:id", anyRole, catalog.GetRawMaterial)
	rawMaterials.Post("/", approvers, catalog.CreateRawMaterial)

	// Inventario
	inv := NewInventoryHandler(deps.Stock, deps.Replenishment)
	rawMaterials.Post("/:id/stock", warehouse, inv.AddStock)
	invGroup := api.Group("/inventory")
	invGroup.Post("/adjustments", warehouse, inv.Adjust)
	invGroup.Get("/replenishment", anyRole, inv.GetReplenishmentList)
	invGroup.Get("/ledger/verify", approvers, inv.VerifyLedger)
	invGroup.Get("/:kind/:id/movements", anyRole, inv.History)

	// Producción
	prod := NewProductionHandler(deps.Production)
	plans := api.Group("/production-plans")
	plans.Post("/", warehouse, prod.Create)
	plans.Get("/:id", anyRole, prod.Get)
	plans.Get("/:id/requirements", anyRole, prod.Requirements)
	plans.Post("/:id/approve", approvers, prod.Approve)
	plans.Post("/:id/start", warehouse, prod.Start)
	plans.Post("/:id/complete", warehouse, prod.Complete)
	plans.Post("/:id/cancel", approvers, prod.Cancel)

	// Pedidos
	ord := NewOrderHandler(deps.Orders)
	orders := api.Group("/orders")
	orders.Post("/", sales, ord.Create)
	orders.Get("/:id", anyRole, ord.Get)
	orders.Patch("/:id/status", sales, ord.UpdateStatus)
	orders.Post("/:id/confirm", sales, ord.Confirm)
	orders.Post("/:id/cancel", sales, ord.Cancel)
	orders.Post("/:id/sale", sales, ord.ConvertToSale)

	// Compras
	pur := NewPurchaseHandler(deps.Purchases)
	purchases := api.Group("/purchases")
	purchases.Post("/", warehouse, pur.Create)
	purchases.Get("/:id", anyRole, pur.Get)
	purchases.Post("/:id/approve", approvers, pur.Approve)
	purchases.Post("/:id/receive", warehouse, pur.Receive)
	purchases.Post("/:id/cancel", approvers, pur.Cancel)
}
