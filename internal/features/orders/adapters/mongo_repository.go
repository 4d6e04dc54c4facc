package adapters

import (
	"context"
	"errors"
	"fmt"
	"time"

	"heroshop/internal/core/database"
	"heroshop/internal/core/pagination"
	"heroshop/internal/features/orders/domain"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type orderItemDocument struct {
	ProductID string               `bson:"product_id"`
	Name      string               `bson:"name"`
	Quantity  int                  `bson:"quantity"`
	UnitPrice primitive.Decimal128 `bson:"unit_price"`
	Size      string               `bson:"size,omitempty"`
	Color     string               `bson:"color,omitempty"`
}

type orderDocument struct {
	ID              string                 `bson:"_id"`
	UserID          string                 `bson:"user_id"`
	Items           []orderItemDocument    `bson:"order_items"`
	ShippingAddress domain.ShippingAddress `bson:"shipping_address"`
	PaymentMethod   string                 `bson:"payment_method"`
	ItemsPrice      primitive.Decimal128   `bson:"items_price"`
	ShippingPrice   primitive.Decimal128   `bson:"shipping_price"`
	TaxPrice        primitive.Decimal128   `bson:"tax_price"`
	DiscountPrice   primitive.Decimal128   `bson:"discount_price"`
	TotalPrice      primitive.Decimal128   `bson:"total_price"`
	CouponCode      string                 `bson:"coupon_code,omitempty"`
	IsPaid          bool                   `bson:"is_paid"`
	PaidAt          *time.Time             `bson:"paid_at,omitempty"`
	PaymentResult   *domain.PaymentResult  `bson:"payment_result,omitempty"`
	Status          string                 `bson:"status"`
	IsDelivered     bool                   `bson:"is_delivered"`
	DeliveredAt     *time.Time             `bson:"delivered_at,omitempty"`
	CreatedAt       time.Time              `bson:"created_at"`
	UpdatedAt       time.Time              `bson:"updated_at"`
}

func toDocument(o *domain.Order) (*orderDocument, error) {
	items := make([]orderItemDocument, len(o.Items))
	for i, item := range o.Items {
		price, err := database.ToDecimal128(item.UnitPrice)
		if err != nil {
			return nil, err
		}
		items[i] = orderItemDocument{
			ProductID: item.ProductID,
			Name:      item.Name,
			Quantity:  item.Quantity,
			UnitPrice: price,
			Size:      item.Size,
			Color:     item.Color,
		}
	}

	doc := &orderDocument{
		ID:              o.ID,
		UserID:          o.UserID,
		Items:           items,
		ShippingAddress: o.ShippingAddress,
		PaymentMethod:   o.PaymentMethod,
		CouponCode:      o.CouponCode,
		IsPaid:          o.IsPaid,
		PaidAt:          o.PaidAt,
		PaymentResult:   o.PaymentResult,
		Status:          string(o.Status),
		IsDelivered:     o.IsDelivered,
		DeliveredAt:     o.DeliveredAt,
		CreatedAt:       o.CreatedAt,
		UpdatedAt:       o.UpdatedAt,
	}

	var err error
	if doc.ItemsPrice, err = database.ToDecimal128(o.ItemsPrice); err != nil {
		return nil, err
	}
	if doc.ShippingPrice, err = database.ToDecimal128(o.ShippingPrice); err != nil {
		return nil, err
	}
	if doc.TaxPrice, err = database.ToDecimal128(o.TaxPrice); err != nil {
		return nil, err
	}
	if doc.DiscountPrice, err = database.ToDecimal128(o.DiscountPrice); err != nil {
		return nil, err
	}
	if doc.TotalPrice, err = database.ToDecimal128(o.TotalPrice); err != nil {
		return nil, err
	}
	return doc, nil
}

func (d *orderDocument) toDomain() (*domain.Order, error) {
	items := make([]domain.OrderItem, len(d.Items))
	for i, item := range d.Items {
		price, err := database.FromDecimal128(item.UnitPrice)
		if err != nil {
			return nil, err
		}
		items[i] = domain.OrderItem{
			ProductID: item.ProductID,
			Name:      item.Name,
			Quantity:  item.Quantity,
			UnitPrice: price,
			Size:      item.Size,
			Color:     item.Color,
		}
	}

	o := &domain.Order{
		ID:              d.ID,
		UserID:          d.UserID,
		Items:           items,
		ShippingAddress: d.ShippingAddress,
		PaymentMethod:   d.PaymentMethod,
		CouponCode:      d.CouponCode,
		IsPaid:          d.IsPaid,
		PaidAt:          utcPtr(d.PaidAt),
		PaymentResult:   d.PaymentResult,
		Status:          domain.OrderStatus(d.Status),
		IsDelivered:     d.IsDelivered,
		DeliveredAt:     utcPtr(d.DeliveredAt),
		CreatedAt:       d.CreatedAt.UTC(),
		UpdatedAt:       d.UpdatedAt.UTC(),
	}

	var err error
	if o.ItemsPrice, err = database.FromDecimal128(d.ItemsPrice); err != nil {
		return nil, err
	}
	if o.ShippingPrice, err = database.FromDecimal128(d.ShippingPrice); err != nil {
		return nil, err
	}
	if o.TaxPrice, err = database.FromDecimal128(d.TaxPrice); err != nil {
		return nil, err
	}
	if o.DiscountPrice, err = database.FromDecimal128(d.DiscountPrice); err != nil {
		return nil, err
	}
	if o.TotalPrice, err = database.FromDecimal128(d.TotalPrice); err != nil {
		return nil, err
	}
	return o, nil
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}

// MongoOrderRepository implements ports.OrderRepository on a MongoDB collection.
type MongoOrderRepository struct {
	coll *mongo.Collection
}

// NewMongoOrderRepository creates a repository over the given collection.
func NewMongoOrderRepository(coll *mongo.Collection) *MongoOrderRepository {
	return &MongoOrderRepository{coll: coll}
}

// EnsureIndexes creates the index backing the per-user order history.
func (r *MongoOrderRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: -1}},
		Options: options.Index().SetName("user_created"),
	})
	if err != nil {
		return fmt.Errorf("failed to create order indexes: %w", err)
	}
	return nil
}

// Create inserts a new order.
func (r *MongoOrderRepository) Create(ctx context.Context, order *domain.Order) error {
	doc, err := toDocument(order)
	if err != nil {
		return err
	}
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("failed to insert order %s: %w", order.ID, err)
	}
	return nil
}

// FindByID returns the order, or nil if none exists.
func (r *MongoOrderRepository) FindByID(ctx context.Context, id string) (*domain.Order, error) {
	var doc orderDocument
	err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find order %s: %w", id, err)
	}
	return doc.toDomain()
}

// ListByUser returns a user's orders, newest first.
func (r *MongoOrderRepository) ListByUser(ctx context.Context, userID string) ([]domain.Order, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	return r.find(ctx, bson.M{"user_id": userID}, opts)
}

// List returns one page of all orders with the total count.
func (r *MongoOrderRepository) List(ctx context.Context, page pagination.Page) ([]domain.Order, int64, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetSkip(int64(page.Offset)).
		SetLimit(int64(page.Limit))

	orders, err := r.find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, 0, err
	}

	total, err := r.coll.CountDocuments(ctx, bson.M{})
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count orders: %w", err)
	}
	return orders, total, nil
}

// SavePayment sets the payment fields in one conditional update, so a second confirmation or a
// concurrent cancellation cannot be overwritten.
func (r *MongoOrderRepository) SavePayment(ctx context.Context, order *domain.Order) error {
	filter := bson.M{
		"_id":     order.ID,
		"is_paid": false,
		"status":  bson.M{"$ne": string(domain.OrderStatusCancelled)},
	}
	update := bson.M{"$set": bson.M{
		"is_paid":        true,
		"paid_at":        order.PaidAt,
		"payment_result": order.PaymentResult,
		"updated_at":     order.UpdatedAt,
	}}

	res, err := r.coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to save payment for order %s: %w", order.ID, err)
	}
	if res.MatchedCount > 0 {
		return nil
	}

	current, err := r.FindByID(ctx, order.ID)
	if err != nil {
		return err
	}
	switch {
	case current == nil:
		return fmt.Errorf("%w: %s", domain.ErrOrderNotFound, order.ID)
	case current.IsPaid:
		return domain.ErrAlreadyPaid
	default:
		return fmt.Errorf("%w: cannot pay a %s order", domain.ErrInvalidStatusTransition, current.Status)
	}
}

// SaveStatus sets the status fields only if the stored status is still from. A concurrent change
// makes the update miss and surfaces as an invalid transition.
func (r *MongoOrderRepository) SaveStatus(ctx context.Context, order *domain.Order, from domain.OrderStatus) error {
	set := bson.M{
		"status":     string(order.Status),
		"updated_at": order.UpdatedAt,
	}
	if order.IsDelivered {
		set["is_delivered"] = true
		set["delivered_at"] = order.DeliveredAt
	}

	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": order.ID, "status": string(from)}, bson.M{"$set": set})
	if err != nil {
		return fmt.Errorf("failed to save status for order %s: %w", order.ID, err)
	}
	if res.MatchedCount > 0 {
		return nil
	}

	current, err := r.FindByID(ctx, order.ID)
	if err != nil {
		return err
	}
	if current == nil {
		return fmt.Errorf("%w: %s", domain.ErrOrderNotFound, order.ID)
	}
	return fmt.Errorf("%w: %s to %s", domain.ErrInvalidStatusTransition, current.Status, order.Status)
}

func (r *MongoOrderRepository) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]domain.Order, error) {
	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []orderDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode orders: %w", err)
	}

	orders := make([]domain.Order, 0, len(docs))
	for i := range docs {
		o, err := docs[i].toDomain()
		if err != nil {
			return nil, err
		}
		orders = append(orders, *o)
	}
	return orders, nil
}
