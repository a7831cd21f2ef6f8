package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/i4rcu/magazam-inventory-system/controllers"
	"github.com/i4rcu/magazam-inventory-system/middlewares"
)

// Register wires all HTTP routes.
func Register(app *fiber.App) {
	api := app.Group("/api")

	// Public auth endpoints
	api.Post("/registration", controllers.Register)
	api.Post("/login", controllers.Login)
	api.Post("/logout", controllers.Logout)

	// Protected endpoints (JWT auth)
	protected := api.Group("")
	protected.Use(middlewares.IsAuthenticatedHeader())

	// Idempotency guard FIRST (not tied to request TX)
	protected.Use(middlewares.Idempotency())

	// Then per-request transaction (commits/rolls back around the handler)
	protected.Use(middlewares.Tx())

	// Customers
	protected.Post("/customer", controllers.CreateCustomer)
	protected.Get("/customers", controllers.GetCustomers)
	protected.Get("/customer/:id", controllers.GetCustomer)
	protected.Put("/customer/:id", controllers.UpdateCustomer)
	protected.Delete("/customer/:id", controllers.DeleteCustomer)

	// Stock
	protected.Post("/stock", controllers.CreateStockItem)
	protected.Get("/stock", controllers.GetStockItems)
	protected.Get("/stock/:id", controllers.GetStockItem)
	protected.Put("/stock/:id", controllers.UpdateStockItem)
	protected.Patch("/stock/:id/quantity", controllers.AdjustStockQuantity)
	protected.Delete("/stock/:id", controllers.DeleteStockItem)

	// Invoices (lifecycle operations adjust stock and customer balance)
	protected.Post("/invoice", controllers.CreateInvoice)
	protected.Get("/invoices", controllers.GetInvoices)
	protected.Get("/invoice/:id", controllers.GetInvoice)
	protected.Put("/invoice/:id", controllers.UpdateInvoice)
	protected.Patch("/invoice/:id/status", controllers.UpdateInvoiceStatus)
	protected.Delete("/invoice/:id", controllers.DeleteInvoice)
}
