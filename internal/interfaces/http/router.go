package http

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/Jair-Kell-Of-Monkeys/pos-system/internal/application/inventory"
	"github.com/Jair-Kell-Of-Monkeys/pos-system/internal/application/ports"
	"github.com/Jair-Kell-Of-Monkeys/pos-system/internal/application/query"
	"github.com/Jair-Kell-Of-Monkeys/pos-system/internal/application/report"
	"github.com/Jair-Kell-Of-Monkeys/pos-system/internal/application/sales"
	"github.com/Jair-Kell-Of-Monkeys/pos-system/internal/application/usecase"
	"github.com/Jair-Kell-Of-Monkeys/pos-system/internal/domain/entity"
)

// AppConfig configuración de fiber compartida por el binario y los tests.
// Immutable copia los valores de Params/Query/Body: los handlers los persisten
// en movimientos y bitácora, y fasthttp reutiliza su buffer en la siguiente petición.
func AppConfig(name string) fiber.Config {
	return fiber.Config{
		AppName:      name,
		Immutable:    true,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	}
}

// RouterDeps dependencias para el router.
type RouterDeps struct {
	CreateSale       *sales.CreateSaleUseCase
	CancelSale       *sales.CancelSaleUseCase
	RegisterMovement *inventory.RegisterMovementUseCase
	ProductUC        *usecase.ProductUseCase
	UserUC           *usecase.UserUseCase
	Reports          *report.Generator
	Query            *query.Service
	Clock            ports.Clock
	JWTSecret        string
}

// Router registra las rutas de la API. Todo /api requiere Bearer Token.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api", AuthMiddleware(deps.JWTSecret))
	adminOnly := RequireRole(entity.RoleAdmin)
	anyRole := RequireRole(entity.RoleAdmin, entity.RoleEmpleado)

	// Sales
	saleHandler := NewSaleHandler(deps.CreateSale, deps.CancelSale, deps.Query)
	salesGroup := api.Group("/sales", anyRole)
	salesGroup.Post("/", saleHandler.Create)
	salesGroup.Get("/", saleHandler.List)
	salesGroup.Get("/:id", saleHandler.GetByID)
	// La autorización de la cancelación la decide el caso de uso (permitted = rol admin).
	salesGroup.Post("/:id/cancel", saleHandler.Cancel)

	// Products + stock
	productHandler := NewProductHandler(deps.ProductUC)
	inventoryHandler := NewInventoryHandler(deps.RegisterMovement, deps.Query)
	products := api.Group("/products", anyRole)
	products.Get("/", productHandler.List)
	products.Post("/", adminOnly, productHandler.Create)
	products.Get("/:id", productHandler.GetByID)
	products.Put("/:id", adminOnly, productHandler.Update)
	products.Delete("/:id", adminOnly, productHandler.Delete)
	products.Get("/:id/stock", inventoryHandler.Stock)
	products.Get("/:id/movements", inventoryHandler.Movements)
	products.Post("/:id/adjust-stock", adminOnly, inventoryHandler.AdjustStock)

	// Inventory movements
	invGroup := api.Group("/inventory", anyRole)
	invGroup.Get("/movements", inventoryHandler.Movements)
	invGroup.Post("/movements", adminOnly, inventoryHandler.RegisterMovement)

	// Activity log
	activityHandler := NewActivityHandler(deps.Query)
	api.Get("/activity-logs", adminOnly, activityHandler.List)

	// Reports
	reportHandler := NewReportHandler(deps.Reports, deps.Query)
	reports := api.Group("/reports", anyRole)
	reports.Get("/", reportHandler.List)
	reports.Get("/:id", reportHandler.GetByID)
	reports.Post("/:type", adminOnly, reportHandler.Generate)

	// Dashboard
	dashboardHandler := NewDashboardHandler(deps.Reports, deps.Clock)
	api.Get("/dashboard", anyRole, dashboardHandler.GetSummary)
	api.Get("/dashboard/sales-by-period", anyRole, dashboardHandler.SalesByPeriod)

	// Users
	userHandler := NewUserHandler(deps.UserUC)
	users := api.Group("/users", adminOnly)
	users.Post("/", userHandler.Create)
	users.Get("/:id", userHandler.GetByID)
	users.Delete("/:id", userHandler.Delete)
}
