package adapters

import (
	"context"
	"errors"
	"fmt"
	"time"

	"heroshop/internal/core/database"
	"heroshop/internal/features/coupons/domain"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// couponDocument is the stored shape of a coupon. Money is kept as Decimal128.
type couponDocument struct {
	ID              primitive.ObjectID   `bson:"_id,omitempty"`
	Code            string               `bson:"code"`
	DiscountType    string               `bson:"discount_type"`
	DiscountAmount  primitive.Decimal128 `bson:"discount_amount"`
	MinimumPurchase primitive.Decimal128 `bson:"minimum_purchase"`
	StartDate       time.Time            `bson:"start_date"`
	EndDate         time.Time            `bson:"end_date"`
	UsageLimit      *int                 `bson:"usage_limit"`
	UsedCount       int                  `bson:"used_count"`
	IsActive        bool                 `bson:"is_active"`
	CreatedAt       time.Time            `bson:"created_at"`
	UpdatedAt       time.Time            `bson:"updated_at"`
}

func toDocument(c *domain.Coupon) (*couponDocument, error) {
	amount, err := database.ToDecimal128(c.DiscountAmount)
	if err != nil {
		return nil, err
	}
	minimum, err := database.ToDecimal128(c.MinimumPurchase)
	if err != nil {
		return nil, err
	}

	return &couponDocument{
		Code:            c.Code,
		DiscountType:    string(c.DiscountType),
		DiscountAmount:  amount,
		MinimumPurchase: minimum,
		StartDate:       c.StartDate,
		EndDate:         c.EndDate,
		UsageLimit:      c.UsageLimit,
		UsedCount:       c.UsedCount,
		IsActive:        c.IsActive,
		CreatedAt:       c.CreatedAt,
		UpdatedAt:       c.UpdatedAt,
	}, nil
}

func (d *couponDocument) toDomain() (*domain.Coupon, error) {
	amount, err := database.FromDecimal128(d.DiscountAmount)
	if err != nil {
		return nil, err
	}
	minimum, err := database.FromDecimal128(d.MinimumPurchase)
	if err != nil {
		return nil, err
	}

	return &domain.Coupon{
		Code:            d.Code,
		DiscountType:    domain.DiscountType(d.DiscountType),
		DiscountAmount:  amount,
		MinimumPurchase: minimum,
		StartDate:       d.StartDate.UTC(),
		EndDate:         d.EndDate.UTC(),
		UsageLimit:      d.UsageLimit,
		UsedCount:       d.UsedCount,
		IsActive:        d.IsActive,
		CreatedAt:       d.CreatedAt.UTC(),
		UpdatedAt:       d.UpdatedAt.UTC(),
	}, nil
}

// MongoCouponRepository implements ports.CouponRepository on a MongoDB collection.
type MongoCouponRepository struct {
	coll *mongo.Collection
}

// NewMongoCouponRepository creates a repository over the given collection.
func NewMongoCouponRepository(coll *mongo.Collection) *MongoCouponRepository {
	return &MongoCouponRepository{coll: coll}
}

// EnsureIndexes creates the unique index on the coupon code.
func (r *MongoCouponRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "code", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("code_unique"),
	})
	if err != nil {
		return fmt.Errorf("failed to create coupon indexes: %w", err)
	}
	return nil
}

// FindByCode returns the coupon with the code, or nil if none exists.
func (r *MongoCouponRepository) FindByCode(ctx context.Context, code string) (*domain.Coupon, error) {
	var doc couponDocument
	err := r.coll.FindOne(ctx, bson.M{"code": code}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find coupon %s: %w", code, err)
	}
	return doc.toDomain()
}

// Create inserts a new coupon.
func (r *MongoCouponRepository) Create(ctx context.Context, coupon *domain.Coupon) error {
	doc, err := toDocument(coupon)
	if err != nil {
		return err
	}

	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return &domain.CouponError{Code: coupon.Code, Err: domain.ErrCouponExists}
		}
		return fmt.Errorf("failed to insert coupon %s: %w", coupon.Code, err)
	}
	return nil
}

// Update overwrites the editable fields of an existing coupon. The usage counter is not touched
// so that concurrent redemptions are never lost.
func (r *MongoCouponRepository) Update(ctx context.Context, coupon *domain.Coupon) error {
	doc, err := toDocument(coupon)
	if err != nil {
		return err
	}

	update := bson.M{"$set": bson.M{
		"discount_type":    doc.DiscountType,
		"discount_amount":  doc.DiscountAmount,
		"minimum_purchase": doc.MinimumPurchase,
		"start_date":       doc.StartDate,
		"end_date":         doc.EndDate,
		"usage_limit":      doc.UsageLimit,
		"is_active":        doc.IsActive,
		"updated_at":       doc.UpdatedAt,
	}}

	res, err := r.coll.UpdateOne(ctx, bson.M{"code": coupon.Code}, update)
	if err != nil {
		return fmt.Errorf("failed to update coupon %s: %w", coupon.Code, err)
	}
	if res.MatchedCount == 0 {
		return &domain.CouponError{Code: coupon.Code, Err: domain.ErrCouponNotFound}
	}
	return nil
}

// Delete removes a coupon.
func (r *MongoCouponRepository) Delete(ctx context.Context, code string) error {
	res, err := r.coll.DeleteOne(ctx, bson.M{"code": code})
	if err != nil {
		return fmt.Errorf("failed to delete coupon %s: %w", code, err)
	}
	if res.DeletedCount == 0 {
		return &domain.CouponError{Code: code, Err: domain.ErrCouponNotFound}
	}
	return nil
}

// List returns all coupons, newest first.
func (r *MongoCouponRepository) List(ctx context.Context) ([]domain.Coupon, error) {
	cursor, err := r.coll.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to list coupons: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []couponDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode coupons: %w", err)
	}

	coupons := make([]domain.Coupon, 0, len(docs))
	for i := range docs {
		c, err := docs[i].toDomain()
		if err != nil {
			return nil, err
		}
		coupons = append(coupons, *c)
	}
	return coupons, nil
}

// Redeem increments the usage counter in a single conditional update. The filter repeats the
// validity rule so two concurrent redemptions cannot push the counter past the limit.
func (r *MongoCouponRepository) Redeem(ctx context.Context, code string, now time.Time) error {
	filter := bson.M{
		"code":       code,
		"is_active":  true,
		"start_date": bson.M{"$lte": now},
		"end_date":   bson.M{"$gte": now},
		"$or": bson.A{
			bson.M{"usage_limit": nil},
			bson.M{"$expr": bson.M{"$lt": bson.A{"$used_count", "$usage_limit"}}},
		},
	}
	update := bson.M{
		"$inc": bson.M{"used_count": 1},
		"$set": bson.M{"updated_at": now},
	}

	res, err := r.coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to redeem coupon %s: %w", code, err)
	}
	if res.MatchedCount == 0 {
		return &domain.CouponError{Code: code, Err: domain.ErrCouponExpiredOrInactive}
	}
	return nil
}
