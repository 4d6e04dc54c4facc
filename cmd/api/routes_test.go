package main

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"heroshop/internal/core/auth"
	"heroshop/internal/core/server"
	couponhandler "heroshop/internal/features/coupons/handler"
	orderhandler "heroshop/internal/features/orders/handler"
	producthandler "heroshop/internal/features/products/handler"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestRegisterRoutes_AccessControl verifies that token and admin checks run before any handler.
func TestRegisterRoutes_AccessControl(t *testing.T) {
	tokens, err := auth.NewTokenManager("route-test-secret")
	require.NoError(t, err)

	app := fiber.New(fiber.Config{ErrorHandler: server.ErrorHandler})
	registerRoutes(app, tokens, handlers{
		coupons:  couponhandler.NewCouponHandler(nil),
		products: producthandler.NewProductHandler(nil),
		orders:   orderhandler.NewOrderHandler(nil),
	})

	shopperToken, err := tokens.IssueToken("u1", false, time.Hour)
	require.NoError(t, err)

	tests := []struct {
		name       string
		method     string
		target     string
		token      string
		wantStatus int
	}{
		{"checkout without token", http.MethodPost, "/api/orders", "", http.StatusUnauthorized},
		{"verify without token", http.MethodPost, "/api/coupons/verify", "", http.StatusUnauthorized},
		{"my orders with bad token", http.MethodGet, "/api/orders/mine", "not-a-jwt", http.StatusUnauthorized},
		{"coupon admin as shopper", http.MethodPost, "/api/coupons", shopperToken, http.StatusForbidden},
		{"all orders as shopper", http.MethodGet, "/api/orders", shopperToken, http.StatusForbidden},
		{"status change as shopper", http.MethodPut, "/api/orders/o-1/status", shopperToken, http.StatusForbidden},
		{"product create as shopper", http.MethodPost, "/api/products", shopperToken, http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.target, nil)
			if tt.token != "" {
				req.Header.Set("Authorization", "Bearer "+tt.token)
			}

			resp, err := app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, tt.wantStatus, resp.StatusCode)
		})
	}
}
