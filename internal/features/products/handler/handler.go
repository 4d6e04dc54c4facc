package handler

import (
	"errors"
	"net/http"

	"heroshop/internal/core/logger"
	"heroshop/internal/core/pagination"
	"heroshop/internal/core/server"
	"heroshop/internal/features/products/domain"
	"heroshop/internal/features/products/ports"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// ProductHandler handles HTTP requests for the catalog.
type ProductHandler struct {
	service ports.ProductService
}

// NewProductHandler creates a new ProductHandler.
func NewProductHandler(service ports.ProductService) *ProductHandler {
	return &ProductHandler{
		service: service,
	}
}

// ProductRequest is the body for creating or editing a product.
type ProductRequest struct {
	Name          string          `json:"name"`
	Description   string          `json:"description"`
	Category      string          `json:"category"`
	Price         decimal.Decimal `json:"price" swaggertype:"string" example:"25.00"`
	DiscountPrice decimal.Decimal `json:"discount_price" swaggertype:"string" example:"19.99"`
	Stock         int             `json:"stock"`
	Sizes         []string        `json:"sizes"`
	Colors        []string        `json:"colors"`
}

func (r ProductRequest) toDomain() *domain.Product {
	return &domain.Product{
		Name:          r.Name,
		Description:   r.Description,
		Category:      r.Category,
		Price:         r.Price,
		DiscountPrice: r.DiscountPrice,
		Stock:         r.Stock,
		Sizes:         r.Sizes,
		Colors:        r.Colors,
	}
}

// List handles GET /api/products.
// @Summary List products
// @Tags Products
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Page size" default(20)
// @Success 200 {object} pagination.Result[domain.Product]
// @Failure 500 {object} server.ErrorResponse
// @Router /api/products [get]
func (h *ProductHandler) List(c *fiber.Ctx) error {
	result, err := h.service.List(c.UserContext(), pagination.Parse(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(http.StatusOK).JSON(result)
}

// Get handles GET /api/products/:id.
// @Summary Get a product
// @Tags Products
// @Produce json
// @Param id path string true "Product ID"
// @Success 200 {object} domain.Product
// @Failure 404 {object} server.ErrorResponse
// @Router /api/products/{id} [get]
func (h *ProductHandler) Get(c *fiber.Ctx) error {
	product, err := h.service.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(http.StatusOK).JSON(product)
}

// Create handles POST /api/products.
// @Summary Create a product
// @Tags Products
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param product body ProductRequest true "Product"
// @Success 201 {object} domain.Product
// @Failure 400 {object} server.ErrorResponse
// @Router /api/products [post]
func (h *ProductHandler) Create(c *fiber.Ctx) error {
	var req ProductRequest
	if err := c.BodyParser(&req); err != nil {
		return server.Fail(c, http.StatusBadRequest, "invalid_body", "invalid request body")
	}

	product, err := h.service.Create(c.UserContext(), req.toDomain())
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(http.StatusCreated).JSON(product)
}

// Update handles PUT /api/products/:id.
// @Summary Update a product
// @Tags Products
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Product ID"
// @Param product body ProductRequest true "Product"
// @Success 200 {object} domain.Product
// @Failure 400 {object} server.ErrorResponse
// @Failure 404 {object} server.ErrorResponse
// @Router /api/products/{id} [put]
func (h *ProductHandler) Update(c *fiber.Ctx) error {
	var req ProductRequest
	if err := c.BodyParser(&req); err != nil {
		return server.Fail(c, http.StatusBadRequest, "invalid_body", "invalid request body")
	}

	product, err := h.service.Update(c.UserContext(), c.Params("id"), req.toDomain())
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(http.StatusOK).JSON(product)
}

func respondError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, domain.ErrProductNotFound):
		return server.Fail(c, http.StatusNotFound, "product_not_found", err.Error())
	case errors.Is(err, domain.ErrInvalidProduct):
		return server.Fail(c, http.StatusBadRequest, "invalid_product", err.Error())
	}

	logger.Get().Error("Product request failed",
		zap.String("ray_id", server.RayID(c)),
		zap.String("path", c.Path()),
		zap.Error(err))
	return server.Fail(c, http.StatusInternalServerError, "", "internal server error")
}
