package handler

import (
	"errors"
	"net/http"
	"time"

	"heroshop/internal/core/logger"
	"heroshop/internal/core/server"
	"heroshop/internal/features/coupons/domain"
	"heroshop/internal/features/coupons/ports"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// CouponHandler handles HTTP requests for coupons.
type CouponHandler struct {
	service ports.CouponService
}

// NewCouponHandler creates a new CouponHandler.
func NewCouponHandler(service ports.CouponService) *CouponHandler {
	return &CouponHandler{
		service: service,
	}
}

// CouponRequest is the body for creating or editing a coupon.
type CouponRequest struct {
	Code            string              `json:"code"`
	DiscountType    domain.DiscountType `json:"discount_type"`
	DiscountAmount  decimal.Decimal     `json:"discount_amount" swaggertype:"string" example:"10"`
	MinimumPurchase decimal.Decimal     `json:"minimum_purchase" swaggertype:"string" example:"50"`
	StartDate       time.Time           `json:"start_date"`
	EndDate         time.Time           `json:"end_date"`
	UsageLimit      *int                `json:"usage_limit"`
	IsActive        *bool               `json:"is_active"` // defaults to true
}

func (r CouponRequest) toDomain() *domain.Coupon {
	active := true
	if r.IsActive != nil {
		active = *r.IsActive
	}
	return &domain.Coupon{
		Code:            r.Code,
		DiscountType:    r.DiscountType,
		DiscountAmount:  r.DiscountAmount,
		MinimumPurchase: r.MinimumPurchase,
		StartDate:       r.StartDate.UTC(),
		EndDate:         r.EndDate.UTC(),
		UsageLimit:      r.UsageLimit,
		IsActive:        active,
	}
}

// VerifyRequest is the body for previewing a coupon against a cart amount.
type VerifyRequest struct {
	Code   string          `json:"code"`
	Amount decimal.Decimal `json:"amount" swaggertype:"string" example:"100.00"`
}

// Verify handles POST /api/coupons/verify.
// @Summary Verify a coupon
// @Description Checks whether a code is redeemable for the given amount and previews the discount. Does not consume the coupon.
// @Tags Coupons
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body VerifyRequest true "Code and cart amount"
// @Success 200 {object} domain.Verification
// @Failure 400 {object} server.ErrorResponse
// @Failure 404 {object} server.ErrorResponse
// @Failure 422 {object} server.ErrorResponse
// @Router /api/coupons/verify [post]
func (h *CouponHandler) Verify(c *fiber.Ctx) error {
	var req VerifyRequest
	if err := c.BodyParser(&req); err != nil {
		return server.Fail(c, http.StatusBadRequest, "invalid_body", "invalid request body")
	}
	if domain.NormalizeCode(req.Code) == "" {
		return server.Fail(c, http.StatusBadRequest, "invalid_body", "code is required")
	}
	if req.Amount.IsNegative() {
		return server.Fail(c, http.StatusBadRequest, "invalid_body", "amount must not be negative")
	}

	result, err := h.service.Verify(c.UserContext(), req.Code, req.Amount)
	if err != nil {
		return RespondError(c, err)
	}

	return c.Status(http.StatusOK).JSON(result)
}

// List handles GET /api/coupons.
// @Summary List coupons
// @Tags Coupons
// @Produce json
// @Security BearerAuth
// @Success 200 {array} domain.Coupon
// @Failure 500 {object} server.ErrorResponse
// @Router /api/coupons [get]
func (h *CouponHandler) List(c *fiber.Ctx) error {
	coupons, err := h.service.List(c.UserContext())
	if err != nil {
		return RespondError(c, err)
	}
	return c.Status(http.StatusOK).JSON(coupons)
}

// Get handles GET /api/coupons/:code.
// @Summary Get a coupon
// @Tags Coupons
// @Produce json
// @Security BearerAuth
// @Param code path string true "Coupon code"
// @Success 200 {object} domain.Coupon
// @Failure 404 {object} server.ErrorResponse
// @Router /api/coupons/{code} [get]
func (h *CouponHandler) Get(c *fiber.Ctx) error {
	coupon, err := h.service.Get(c.UserContext(), c.Params("code"))
	if err != nil {
		return RespondError(c, err)
	}
	return c.Status(http.StatusOK).JSON(coupon)
}

// Create handles POST /api/coupons.
// @Summary Create a coupon
// @Tags Coupons
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param coupon body CouponRequest true "Coupon"
// @Success 201 {object} domain.Coupon
// @Failure 400 {object} server.ErrorResponse
// @Failure 409 {object} server.ErrorResponse
// @Router /api/coupons [post]
func (h *CouponHandler) Create(c *fiber.Ctx) error {
	var req CouponRequest
	if err := c.BodyParser(&req); err != nil {
		return server.Fail(c, http.StatusBadRequest, "invalid_body", "invalid request body")
	}

	coupon, err := h.service.Create(c.UserContext(), req.toDomain())
	if err != nil {
		return RespondError(c, err)
	}
	return c.Status(http.StatusCreated).JSON(coupon)
}

// Update handles PUT /api/coupons/:code.
// @Summary Update a coupon
// @Tags Coupons
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param code path string true "Coupon code"
// @Param coupon body CouponRequest true "Coupon"
// @Success 200 {object} domain.Coupon
// @Failure 400 {object} server.ErrorResponse
// @Failure 404 {object} server.ErrorResponse
// @Router /api/coupons/{code} [put]
func (h *CouponHandler) Update(c *fiber.Ctx) error {
	var req CouponRequest
	if err := c.BodyParser(&req); err != nil {
		return server.Fail(c, http.StatusBadRequest, "invalid_body", "invalid request body")
	}

	coupon, err := h.service.Update(c.UserContext(), c.Params("code"), req.toDomain())
	if err != nil {
		return RespondError(c, err)
	}
	return c.Status(http.StatusOK).JSON(coupon)
}

// Delete handles DELETE /api/coupons/:code.
// @Summary Delete a coupon
// @Tags Coupons
// @Security BearerAuth
// @Param code path string true "Coupon code"
// @Success 204
// @Failure 404 {object} server.ErrorResponse
// @Router /api/coupons/{code} [delete]
func (h *CouponHandler) Delete(c *fiber.Ctx) error {
	if err := h.service.Delete(c.UserContext(), c.Params("code")); err != nil {
		return RespondError(c, err)
	}
	return c.SendStatus(http.StatusNoContent)
}

// RespondError maps coupon failures to declined responses. Anything unrecognized is logged and
// reported as an internal error.
func RespondError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, domain.ErrCouponNotFound):
		return server.Fail(c, http.StatusNotFound, "coupon_not_found", err.Error())
	case errors.Is(err, domain.ErrCouponExpiredOrInactive):
		return server.Fail(c, http.StatusUnprocessableEntity, "coupon_expired_or_inactive", err.Error())
	case errors.Is(err, domain.ErrMinimumPurchaseNotMet):
		return server.Fail(c, http.StatusUnprocessableEntity, "minimum_purchase_not_met", err.Error())
	case errors.Is(err, domain.ErrInvalidCoupon):
		return server.Fail(c, http.StatusBadRequest, "invalid_coupon", err.Error())
	case errors.Is(err, domain.ErrCouponExists):
		return server.Fail(c, http.StatusConflict, "coupon_exists", err.Error())
	}

	logger.Get().Error("Coupon request failed",
		zap.String("ray_id", server.RayID(c)),
		zap.String("path", c.Path()),
		zap.Error(err))
	return server.Fail(c, http.StatusInternalServerError, "", "internal server error")
}
