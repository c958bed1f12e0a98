package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/TiendaOps-api/internal/application/auth"
	"github.com/jhoicas/TiendaOps-api/internal/application/inventory"
	"github.com/jhoicas/TiendaOps-api/internal/application/purchasing"
	"github.com/jhoicas/TiendaOps-api/internal/application/returns"
	"github.com/jhoicas/TiendaOps-api/internal/application/sales"
	"github.com/jhoicas/TiendaOps-api/internal/application/usecase"
	"github.com/jhoicas/TiendaOps-api/internal/domain/entity"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	AuthUC      *auth.AuthUseCase
	UserUC      *usecase.UserUseCase
	ProductUC   *usecase.ProductUseCase
	AdjustUC    *inventory.AdjustStockUseCase
	HistoryUC   *inventory.StockHistoryUseCase
	LowStockUC  *inventory.LowStockUseCase
	PurchaseUC  *purchasing.UseCase
	ReturnUC    *returns.UseCase
	SaleUC      *sales.UseCase
	JWTSecret   string
	RateLimiter Limiter // nil desactiva el límite
}

// Router registra las rutas de la API.
// Roles: admin administra todo; bodeguero opera stock (ajustes, órdenes de
// compra); cajero registra ventas y solicita devoluciones. La revisión de
// devoluciones y la gestión de usuarios son solo de admin.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	// Auth (público)
	authGroup := api.Group("/auth")
	authHandler := NewAuthHandler(deps.AuthUC)
	authGroup.Post("/register", authHandler.Register)
	authGroup.Post("/login", authHandler.Login)

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))
	rateLimited := RateLimitMiddleware(deps.RateLimiter)

	// Users (solo admin)
	users := protected.Group("/users", RequireRole(entity.RoleAdmin))
	userHandler := NewUserHandler(deps.AuthUC, deps.UserUC)
	users.Post("/", userHandler.Create)
	users.Get("/", userHandler.List)
	users.Delete("/:id", userHandler.Delete)

	// Products (lectura para todos; escritura admin y bodeguero)
	products := protected.Group("/products")
	productHandler := NewProductHandler(deps.ProductUC)
	products.Get("/", productHandler.List)
	products.Get("/:id", productHandler.GetByID)
	products.Post("/", RequireRole(entity.RoleAdmin, entity.RoleBodeguero), productHandler.Create)
	products.Put("/:id", RequireRole(entity.RoleAdmin, entity.RoleBodeguero), productHandler.Update)

	// Inventory (ajustes: admin y bodeguero; lecturas para todos)
	invGroup := protected.Group("/inventory")
	inventoryHandler := NewInventoryHandler(deps.AdjustUC, deps.HistoryUC, deps.LowStockUC)
	invGroup.Post("/adjustments", RequireRole(entity.RoleAdmin, entity.RoleBodeguero), rateLimited, inventoryHandler.AdjustStock)
	invGroup.Get("/history/:productId", inventoryHandler.GetHistory)
	invGroup.Get("/low-stock", inventoryHandler.GetLowStock)

	// Purchase orders (admin y bodeguero)
	pos := protected.Group("/purchase-orders", RequireRole(entity.RoleAdmin, entity.RoleBodeguero))
	purchaseHandler := NewPurchaseHandler(deps.PurchaseUC)
	pos.Post("/", purchaseHandler.Create)
	pos.Get("/", purchaseHandler.List)
	pos.Get("/:id", purchaseHandler.GetByID)
	pos.Post("/:id/order", purchaseHandler.MarkOrdered)
	pos.Post("/:id/receive", purchaseHandler.Receive)
	pos.Post("/:id/restock", rateLimited, purchaseHandler.Restock)

	// Returns (crear: cajero y admin; revisar: solo admin)
	rets := protected.Group("/returns")
	returnHandler := NewReturnHandler(deps.ReturnUC)
	rets.Post("/", RequireRole(entity.RoleAdmin, entity.RoleCajero), returnHandler.Create)
	rets.Get("/", returnHandler.List)
	rets.Get("/:id", returnHandler.GetByID)
	rets.Post("/:id/approve", RequireRole(entity.RoleAdmin), rateLimited, returnHandler.Approve)
	rets.Post("/:id/reject", RequireRole(entity.RoleAdmin), returnHandler.Reject)
	rets.Post("/:id/revert", RequireRole(entity.RoleAdmin), rateLimited, returnHandler.Revert)

	// Sales (cajero y admin)
	salesGroup := protected.Group("/sales", RequireRole(entity.RoleAdmin, entity.RoleCajero))
	saleHandler := NewSaleHandler(deps.SaleUC)
	salesGroup.Post("/", rateLimited, saleHandler.Create)
	salesGroup.Get("/:id", saleHandler.GetByID)
}
