package main

import (
	"heroshop/internal/core/auth"
	couponhandler "heroshop/internal/features/coupons/handler"
	orderhandler "heroshop/internal/features/orders/handler"
	producthandler "heroshop/internal/features/products/handler"

	"github.com/gofiber/fiber/v2"
)

type handlers struct {
	coupons  *couponhandler.CouponHandler
	products *producthandler.ProductHandler
	orders   *orderhandler.OrderHandler
}

func registerRoutes(app *fiber.App, tokens *auth.TokenManager, h handlers) {
	protect := tokens.Protect()
	admin := auth.AdminOnly()

	api := app.Group("/api")

	products := api.Group("/products")
	products.Get("/", h.products.List)
	products.Get("/:id", h.products.Get)
	products.Post("/", protect, admin, h.products.Create)
	products.Put("/:id", protect, admin, h.products.Update)

	coupons := api.Group("/coupons", protect)
	coupons.Post("/verify", h.coupons.Verify)
	coupons.Get("/", admin, h.coupons.List)
	coupons.Post("/", admin, h.coupons.Create)
	coupons.Get("/:code", admin, h.coupons.Get)
	coupons.Put("/:code", admin, h.coupons.Update)
	coupons.Delete("/:code", admin, h.coupons.Delete)

	orders := api.Group("/orders", protect)
	orders.Post("/", h.orders.PlaceOrder)
	orders.Get("/mine", h.orders.ListMine)
	orders.Get("/", admin, h.orders.ListAll)
	orders.Get("/:id", h.orders.GetOrder)
	orders.Put("/:id/pay", h.orders.MarkPaid)
	orders.Put("/:id/status", admin, h.orders.UpdateStatus)
}
