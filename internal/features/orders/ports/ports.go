package ports

import (
	"context"
	"time"

	"heroshop/internal/core/auth"
	"heroshop/internal/core/pagination"
	coupondomain "heroshop/internal/features/coupons/domain"
	"heroshop/internal/features/orders/domain"
	productdomain "heroshop/internal/features/products/domain"
)

// OrderService defines the primary port for order operations.
type OrderService interface {
	// PlaceOrder assembles and stores an order. A non-empty idempotency key makes retries safe;
	// replayed reports whether the order came from an earlier request with the same key.
	PlaceOrder(ctx context.Context, checkout domain.Checkout, idempotencyKey string) (order *domain.Order, replayed bool, err error)
	Get(ctx context.Context, id string, principal *auth.Principal) (*domain.Order, error)
	ListMine(ctx context.Context, principal *auth.Principal) ([]domain.Order, error)
	ListAll(ctx context.Context, page pagination.Page) (*pagination.Result[domain.Order], error)
	MarkPaid(ctx context.Context, id string, result domain.PaymentResult) (*domain.Order, error)
	UpdateStatus(ctx context.Context, id string, status domain.OrderStatus) (*domain.Order, error)
}

// OrderRepository defines the secondary port for order storage.
type OrderRepository interface {
	Create(ctx context.Context, order *domain.Order) error
	// FindByID returns nil without error when the order does not exist.
	FindByID(ctx context.Context, id string) (*domain.Order, error)
	ListByUser(ctx context.Context, userID string) ([]domain.Order, error)
	List(ctx context.Context, page pagination.Page) ([]domain.Order, int64, error)
	// SavePayment stores the payment fields only while the stored order is unpaid and not cancelled.
	SavePayment(ctx context.Context, order *domain.Order) error
	// SaveStatus stores the status fields only while the stored status is still from.
	SaveStatus(ctx context.Context, order *domain.Order, from domain.OrderStatus) error
}

// ProductLookup is the read capability the stock gate needs.
type ProductLookup interface {
	// FindByID returns nil without error when the product does not exist.
	FindByID(ctx context.Context, id string) (*productdomain.Product, error)
}

// ProductStore is the part of the catalog an order touches.
type ProductStore interface {
	ProductLookup
	DecrementStock(ctx context.Context, id string, qty int) (*productdomain.Product, error)
}

// CouponStore is the part of the coupon store an order touches.
type CouponStore interface {
	FindByCode(ctx context.Context, code string) (*coupondomain.Coupon, error)
	Redeem(ctx context.Context, code string, now time.Time) error
}

// Transactor runs fn so that all repository calls made with the context it receives commit or abort together.
type Transactor interface {
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// IdempotencyStore remembers which order an idempotency key produced.
type IdempotencyStore interface {
	// Reserve claims key for a new request. When the key already finished it returns the order id
	// it produced and reserved=false. A key held by an unfinished request yields domain.ErrRequestInProgress.
	Reserve(ctx context.Context, key string) (orderID string, reserved bool, err error)
	// Complete binds a reserved key to the order it produced.
	Complete(ctx context.Context, key, orderID string) error
	// Release frees a reserved key after a failed request so it can be retried.
	Release(ctx context.Context, key string) error
}
