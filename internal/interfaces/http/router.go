package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/stockmaster-api/internal/application/inventory"
	"github.com/jhoicas/stockmaster-api/internal/application/purchasing"
	"github.com/jhoicas/stockmaster-api/internal/application/sales"
	"github.com/jhoicas/stockmaster-api/internal/application/usecase"
	"github.com/jhoicas/stockmaster-api/internal/domain/entity"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	ProductUC  *usecase.ProductUseCase
	ReportUC   *usecase.ReportUseCase
	Ledger     *inventory.LedgerUseCase
	SupplierUC *purchasing.SupplierUseCase
	OrderUC    *purchasing.PurchaseOrderUseCase
	CheckoutUC *sales.CheckoutUseCase
	JWTSecret  string
}

// Router registra las rutas de la API. Todas requieren Bearer Token.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api", AuthMiddleware(deps.JWTSecret))

	adminOnly := RequireRole(entity.RoleAdmin)
	anyOperator := RequireRole(entity.RoleAdmin, entity.RoleCajero)

	// Products
	products := api.Group("/products")
	productHandler := NewProductHandler(deps.ProductUC)
	products.Get("/", anyOperator, productHandler.List)
	products.Get("/code/:code", anyOperator, productHandler.GetByCode)
	products.Get("/:id", anyOperator, productHandler.GetByID)
	products.Post("/", adminOnly, productHandler.Create)
	products.Put("/:id", adminOnly, productHandler.Update)
	products.Delete("/:id", adminOnly, productHandler.Delete)

	// Inventory (kardex)
	inv := api.Group("/inventory", adminOnly)
	inventoryHandler := NewInventoryHandler(deps.Ledger)
	inv.Post("/movements", inventoryHandler.RecordMovement)
	inv.Delete("/movements/:id", inventoryHandler.VoidMovement)
	inv.Get("/products/:id/movements", inventoryHandler.ListByProduct)
	inv.Get("/reconcile", inventoryHandler.Reconcile)
	inv.Post("/returns", inventoryHandler.RecordReturn)

	// Reports
	reports := api.Group("/reports", adminOnly)
	reportHandler := NewReportHandler(deps.ReportUC)
	reports.Get("/stock", reportHandler.Stock)
	reports.Get("/low-stock", reportHandler.LowStock)
	reports.Get("/inventory-value", reportHandler.InventoryValue)

	// Suppliers & purchase orders
	purchasingHandler := NewPurchasingHandler(deps.SupplierUC, deps.OrderUC)
	suppliers := api.Group("/suppliers", adminOnly)
	suppliers.Post("/", purchasingHandler.CreateSupplier)
	suppliers.Get("/", purchasingHandler.ListSuppliers)
	suppliers.Get("/:id", purchasingHandler.GetSupplier)
	suppliers.Put("/:id", purchasingHandler.UpdateSupplier)
	suppliers.Delete("/:id", purchasingHandler.DeleteSupplier)
	suppliers.Get("/:id/purchase-orders", purchasingHandler.ListSupplierOrders)

	orders := api.Group("/purchase-orders", adminOnly)
	orders.Post("/", purchasingHandler.CreateOrder)
	orders.Get("/:id", purchasingHandler.GetOrder)
	orders.Post("/:id/receive", purchasingHandler.ReceiveOrder)
	orders.Post("/:id/cancel", purchasingHandler.CancelOrder)

	// Sales
	salesGroup := api.Group("/sales", anyOperator)
	saleHandler := NewSaleHandler(deps.CheckoutUC)
	salesGroup.Post("/", saleHandler.Checkout)
	salesGroup.Get("/", saleHandler.List)
	salesGroup.Get("/:id", saleHandler.Get)
	salesGroup.Get("/:id/invoice.pdf", saleHandler.InvoicePDF)
	salesGroup.Post("/:id/invoice/send", saleHandler.ResendInvoice)
}
