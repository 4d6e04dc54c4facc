package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"heroshop/internal/core/auth"
	"heroshop/internal/core/clock"
	"heroshop/internal/core/logger"
	"heroshop/internal/core/pagination"
	coupondomain "heroshop/internal/features/coupons/domain"
	"heroshop/internal/features/orders/domain"
	"heroshop/internal/features/orders/ports"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Dependencies are the collaborators an OrderService needs.
type Dependencies struct {
	Orders   ports.OrderRepository
	Products ports.ProductStore
	Coupons  ports.CouponStore
	Tx       ports.Transactor
	// Idempotency is optional; without it idempotency keys are ignored.
	Idempotency ports.IdempotencyStore
	Pricing     domain.PricingPolicy
	Clock       clock.Clock
}

// OrderService handles checkout and the order lifecycle.
type OrderService struct {
	orders      ports.OrderRepository
	products    ports.ProductStore
	coupons     ports.CouponStore
	tx          ports.Transactor
	idempotency ports.IdempotencyStore
	pricing     domain.PricingPolicy
	clock       clock.Clock
	log         *zap.Logger
}

// NewOrderService creates a new instance of OrderService.
func NewOrderService(deps Dependencies) *OrderService {
	return &OrderService{
		orders:      deps.Orders,
		products:    deps.Products,
		coupons:     deps.Coupons,
		tx:          deps.Tx,
		idempotency: deps.Idempotency,
		pricing:     deps.Pricing,
		clock:       deps.Clock,
		log:         logger.Named("orders"),
	}
}

// PlaceOrder assembles an order, guarding the whole checkout with the idempotency key when one is given.
func (s *OrderService) PlaceOrder(ctx context.Context, checkout domain.Checkout, idempotencyKey string) (*domain.Order, bool, error) {
	if idempotencyKey == "" || s.idempotency == nil {
		order, err := s.AssembleOrder(ctx, checkout)
		return order, false, err
	}

	key := checkout.UserID + ":" + idempotencyKey
	existingID, reserved, err := s.idempotency.Reserve(ctx, key)
	if err != nil {
		return nil, false, err
	}
	if !reserved {
		order, err := s.orders.FindByID(ctx, existingID)
		if err != nil {
			return nil, false, fmt.Errorf("service: failed to load replayed order: %w", err)
		}
		if order == nil {
			return nil, false, fmt.Errorf("service: idempotency key points at missing order %s: %w", existingID, domain.ErrOrderNotFound)
		}
		s.log.Info("Replayed order for idempotency key", zap.String("order_id", order.ID))
		return order, true, nil
	}

	order, err := s.AssembleOrder(ctx, checkout)
	if err != nil {
		if releaseErr := s.idempotency.Release(ctx, key); releaseErr != nil {
			s.log.Warn("Failed to release idempotency key", zap.Error(releaseErr))
		}
		return nil, false, err
	}

	if err := s.idempotency.Complete(ctx, key, order.ID); err != nil {
		s.log.Warn("Failed to record idempotency key", zap.String("order_id", order.ID), zap.Error(err))
	}
	return order, false, nil
}

// AssembleOrder prices the cart on the server and applies every effect of checkout in one transaction:
// coupon redemption, stock decrements and the order insert commit together or not at all.
func (s *OrderService) AssembleOrder(ctx context.Context, checkout domain.Checkout) (*domain.Order, error) {
	if err := checkout.Validate(); err != nil {
		return nil, err
	}

	now := s.clock.Now()
	var order *domain.Order

	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		products, err := CheckStock(ctx, checkout.Items, s.products)
		if err != nil {
			return err
		}

		items := make([]domain.OrderItem, len(checkout.Items))
		itemsPrice := decimal.Zero
		for i, line := range checkout.Items {
			items[i] = domain.OrderItem{
				ProductID: line.ProductID,
				Name:      products[i].Name,
				Quantity:  line.Quantity,
				UnitPrice: products[i].UnitPrice(),
				Size:      line.Size,
				Color:     line.Color,
			}
			itemsPrice = itemsPrice.Add(items[i].LineTotal())
		}

		code := coupondomain.NormalizeCode(checkout.CouponCode)
		discount := decimal.Zero
		if code != "" {
			discount, err = s.discountFor(ctx, code, itemsPrice, now)
			if err != nil {
				return err
			}
		}

		totals := s.pricing.Quote(itemsPrice, discount)

		if code != "" {
			if err := s.coupons.Redeem(ctx, code, now); err != nil {
				return err
			}
		}

		for _, line := range checkout.Items {
			if _, err := s.products.DecrementStock(ctx, line.ProductID, line.Quantity); err != nil {
				return err
			}
		}

		order = &domain.Order{
			ID:              uuid.NewString(),
			UserID:          checkout.UserID,
			Items:           items,
			ShippingAddress: checkout.ShippingAddress,
			PaymentMethod:   checkout.PaymentMethod,
			CouponCode:      code,
			Status:          domain.OrderStatusProcessing,
			CreatedAt:       now,
			UpdatedAt:       now,
		}
		totals.Apply(order)

		if err := s.orders.Create(ctx, order); err != nil {
			return fmt.Errorf("service: failed to create order: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("Order placed",
		zap.String("order_id", order.ID),
		zap.String("user_id", order.UserID),
		zap.String("coupon", order.CouponCode),
		zap.String("total", order.TotalPrice.StringFixed(2)))
	return order, nil
}

func (s *OrderService) discountFor(ctx context.Context, code string, itemsPrice decimal.Decimal, now time.Time) (decimal.Decimal, error) {
	coupon, err := s.coupons.FindByCode(ctx, code)
	if err != nil {
		return decimal.Zero, fmt.Errorf("service: failed to load coupon: %w", err)
	}
	if coupon == nil {
		return decimal.Zero, &coupondomain.CouponError{Code: code, Err: coupondomain.ErrCouponNotFound}
	}

	discount, err := coupon.Apply(itemsPrice, now)
	if errors.Is(err, coupondomain.ErrInvalidCouponUsage) {
		s.log.Error("Discount calculator called with unmet preconditions", zap.String("code", code), zap.Error(err))
	}
	return discount, err
}

// Get returns an order to its owner or to an administrator.
func (s *OrderService) Get(ctx context.Context, id string, principal *auth.Principal) (*domain.Order, error) {
	order, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !principal.IsAdmin && order.UserID != principal.UserID {
		return nil, domain.ErrForbidden
	}
	return order, nil
}

// ListMine returns the caller's orders.
func (s *OrderService) ListMine(ctx context.Context, principal *auth.Principal) ([]domain.Order, error) {
	orders, err := s.orders.ListByUser(ctx, principal.UserID)
	if err != nil {
		return nil, fmt.Errorf("service: failed to list orders: %w", err)
	}
	return orders, nil
}

// ListAll returns one page of every order.
func (s *OrderService) ListAll(ctx context.Context, page pagination.Page) (*pagination.Result[domain.Order], error) {
	orders, total, err := s.orders.List(ctx, page)
	if err != nil {
		return nil, fmt.Errorf("service: failed to list orders: %w", err)
	}
	return &pagination.Result[domain.Order]{
		Items: orders,
		Total: total,
		Page:  page.Page,
		Limit: page.Limit,
	}, nil
}

// MarkPaid records the payment confirmation. The store re-checks the unpaid state so concurrent
// confirmations cannot both succeed.
func (s *OrderService) MarkPaid(ctx context.Context, id string, result domain.PaymentResult) (*domain.Order, error) {
	order, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := order.MarkPaid(result, s.clock.Now()); err != nil {
		return nil, err
	}
	if err := s.orders.SavePayment(ctx, order); err != nil {
		return nil, err
	}

	s.log.Info("Order paid", zap.String("order_id", order.ID), zap.String("payment_id", result.ID))
	return order, nil
}

// UpdateStatus moves the order through its lifecycle. Cancelling does not restock.
func (s *OrderService) UpdateStatus(ctx context.Context, id string, status domain.OrderStatus) (*domain.Order, error) {
	if !status.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", domain.ErrInvalidOrder, status)
	}

	order, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	from := order.Status
	if err := order.TransitionTo(status, s.clock.Now()); err != nil {
		return nil, err
	}
	if err := s.orders.SaveStatus(ctx, order, from); err != nil {
		return nil, err
	}

	s.log.Info("Order status changed", zap.String("order_id", order.ID), zap.String("status", string(status)))
	return order, nil
}

func (s *OrderService) load(ctx context.Context, id string) (*domain.Order, error) {
	order, err := s.orders.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("service: failed to get order: %w", err)
	}
	if order == nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrOrderNotFound, id)
	}
	return order, nil
}
