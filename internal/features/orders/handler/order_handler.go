package handler

import (
	"errors"
	"net/http"
	"strings"

	"heroshop/internal/core/auth"
	"heroshop/internal/core/logger"
	"heroshop/internal/core/pagination"
	"heroshop/internal/core/server"
	coupondomain "heroshop/internal/features/coupons/domain"
	"heroshop/internal/features/orders/domain"
	"heroshop/internal/features/orders/ports"
	productdomain "heroshop/internal/features/products/domain"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// IdempotencyHeader carries the client's retry key for order placement.
const IdempotencyHeader = "Idempotency-Key"

// OrderHandler handles HTTP requests related to orders.
type OrderHandler struct {
	// service is the OrderService instance.
	service ports.OrderService
}

// NewOrderHandler creates a new instance of OrderHandler.
func NewOrderHandler(s ports.OrderService) *OrderHandler {
	return &OrderHandler{
		service: s,
	}
}

// PlaceOrderRequest is the checkout body. Prices are computed server side.
type PlaceOrderRequest struct {
	OrderItems      []domain.CartItem      `json:"order_items"`
	ShippingAddress domain.ShippingAddress `json:"shipping_address"`
	PaymentMethod   string                 `json:"payment_method"`
	CouponCode      string                 `json:"coupon_code,omitempty"`
}

// StatusRequest is the body for an admin status change.
type StatusRequest struct {
	Status domain.OrderStatus `json:"status" example:"Shipped"`
}

// PlaceOrder handles POST /api/orders.
// @Summary Place an order
// @Description Checks stock, applies the coupon, computes totals and stores the order atomically.
// @Description Sending the same Idempotency-Key again returns the original order with status 200.
// @Tags Orders
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param Idempotency-Key header string false "Retry key"
// @Param order body PlaceOrderRequest true "Checkout"
// @Success 201 {object} domain.Order
// @Success 200 {object} domain.Order
// @Failure 400 {object} server.ErrorResponse
// @Failure 404 {object} server.ErrorResponse
// @Failure 409 {object} server.ErrorResponse
// @Failure 422 {object} server.ErrorResponse
// @Router /api/orders [post]
func (h *OrderHandler) PlaceOrder(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFrom(c)
	if !ok {
		return server.Fail(c, http.StatusUnauthorized, "", "authentication required")
	}

	var req PlaceOrderRequest
	if err := c.BodyParser(&req); err != nil {
		return server.Fail(c, http.StatusBadRequest, "invalid_body", "invalid request body")
	}

	checkout := domain.Checkout{
		UserID:          principal.UserID,
		Items:           req.OrderItems,
		ShippingAddress: req.ShippingAddress,
		PaymentMethod:   req.PaymentMethod,
		CouponCode:      req.CouponCode,
	}

	order, replayed, err := h.service.PlaceOrder(c.UserContext(), checkout, strings.TrimSpace(c.Get(IdempotencyHeader)))
	if err != nil {
		return respondError(c, err)
	}

	if replayed {
		return c.Status(http.StatusOK).JSON(order)
	}
	return c.Status(http.StatusCreated).JSON(order)
}

// ListMine handles GET /api/orders/mine.
// @Summary List my orders
// @Tags Orders
// @Produce json
// @Security BearerAuth
// @Success 200 {array} domain.Order
// @Router /api/orders/mine [get]
func (h *OrderHandler) ListMine(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFrom(c)
	if !ok {
		return server.Fail(c, http.StatusUnauthorized, "", "authentication required")
	}

	orders, err := h.service.ListMine(c.UserContext(), principal)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(http.StatusOK).JSON(orders)
}

// GetOrder handles GET /api/orders/:id.
// @Summary Get Order by ID
// @Description Shoppers can read their own orders. Admins can read any order.
// @Tags Orders
// @Produce json
// @Security BearerAuth
// @Param id path string true "Order ID"
// @Success 200 {object} domain.Order
// @Failure 403 {object} server.ErrorResponse
// @Failure 404 {object} server.ErrorResponse
// @Router /api/orders/{id} [get]
func (h *OrderHandler) GetOrder(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFrom(c)
	if !ok {
		return server.Fail(c, http.StatusUnauthorized, "", "authentication required")
	}

	order, err := h.service.Get(c.UserContext(), c.Params("id"), principal)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(http.StatusOK).JSON(order)
}

// ListAll handles GET /api/orders.
// @Summary List all orders
// @Tags Orders
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number"
// @Param limit query int false "Page size"
// @Success 200 {object} pagination.Result[domain.Order]
// @Failure 403 {object} server.ErrorResponse
// @Router /api/orders [get]
func (h *OrderHandler) ListAll(c *fiber.Ctx) error {
	result, err := h.service.ListAll(c.UserContext(), pagination.Parse(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(http.StatusOK).JSON(result)
}

// MarkPaid handles PUT /api/orders/:id/pay.
// @Summary Confirm payment
// @Tags Orders
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Order ID"
// @Param payment body domain.PaymentResult true "Payment provider result"
// @Success 200 {object} domain.Order
// @Failure 404 {object} server.ErrorResponse
// @Failure 409 {object} server.ErrorResponse
// @Router /api/orders/{id}/pay [put]
func (h *OrderHandler) MarkPaid(c *fiber.Ctx) error {
	var result domain.PaymentResult
	if err := c.BodyParser(&result); err != nil {
		return server.Fail(c, http.StatusBadRequest, "invalid_body", "invalid request body")
	}

	order, err := h.service.MarkPaid(c.UserContext(), c.Params("id"), result)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(http.StatusOK).JSON(order)
}

// UpdateStatus handles PUT /api/orders/:id/status.
// @Summary Change order status
// @Tags Orders
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Order ID"
// @Param status body StatusRequest true "New status"
// @Success 200 {object} domain.Order
// @Failure 400 {object} server.ErrorResponse
// @Failure 404 {object} server.ErrorResponse
// @Failure 409 {object} server.ErrorResponse
// @Router /api/orders/{id}/status [put]
func (h *OrderHandler) UpdateStatus(c *fiber.Ctx) error {
	var req StatusRequest
	if err := c.BodyParser(&req); err != nil {
		return server.Fail(c, http.StatusBadRequest, "invalid_body", "invalid request body")
	}

	order, err := h.service.UpdateStatus(c.UserContext(), c.Params("id"), req.Status)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(http.StatusOK).JSON(order)
}

func respondError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, domain.ErrInvalidOrder):
		return server.Fail(c, http.StatusBadRequest, "invalid_order", err.Error())
	case errors.Is(err, domain.ErrOrderNotFound):
		return server.Fail(c, http.StatusNotFound, "order_not_found", err.Error())
	case errors.Is(err, domain.ErrForbidden):
		return server.Fail(c, http.StatusForbidden, "forbidden", err.Error())
	case errors.Is(err, domain.ErrRequestInProgress):
		return server.Fail(c, http.StatusConflict, "request_in_progress", err.Error())
	case errors.Is(err, domain.ErrAlreadyPaid):
		return server.Fail(c, http.StatusConflict, "already_paid", err.Error())
	case errors.Is(err, domain.ErrInvalidStatusTransition):
		return server.Fail(c, http.StatusConflict, "invalid_status_transition", err.Error())
	case errors.Is(err, productdomain.ErrProductNotFound):
		return server.Fail(c, http.StatusNotFound, "product_not_found", err.Error())
	case errors.Is(err, productdomain.ErrOutOfStock):
		return server.Fail(c, http.StatusUnprocessableEntity, "out_of_stock", err.Error())
	case errors.Is(err, coupondomain.ErrCouponNotFound):
		return server.Fail(c, http.StatusNotFound, "coupon_not_found", err.Error())
	case errors.Is(err, coupondomain.ErrCouponExpiredOrInactive):
		return server.Fail(c, http.StatusUnprocessableEntity, "coupon_expired_or_inactive", err.Error())
	case errors.Is(err, coupondomain.ErrMinimumPurchaseNotMet):
		return server.Fail(c, http.StatusUnprocessableEntity, "minimum_purchase_not_met", err.Error())
	}

	logger.Get().Error("Order request failed",
		zap.String("ray_id", server.RayID(c)),
		zap.String("path", c.Path()),
		zap.Error(err),
	)
	return server.Fail(c, http.StatusInternalServerError, "", "internal server error")
}
