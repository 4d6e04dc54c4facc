package adapters

import (
	"context"
	"errors"
	"fmt"
	"time"

	"heroshop/internal/core/database"
	"heroshop/internal/core/pagination"
	"heroshop/internal/features/products/domain"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type productDocument struct {
	ID            string               `bson:"_id"`
	Name          string               `bson:"name"`
	Description   string               `bson:"description"`
	Category      string               `bson:"category"`
	Price         primitive.Decimal128 `bson:"price"`
	DiscountPrice primitive.Decimal128 `bson:"discount_price"`
	Stock         int                  `bson:"stock"`
	InStock       bool                 `bson:"in_stock"`
	Sizes         []string             `bson:"sizes"`
	Colors        []string             `bson:"colors"`
	CreatedAt     time.Time            `bson:"created_at"`
	UpdatedAt     time.Time            `bson:"updated_at"`
}

func toDocument(p *domain.Product) (*productDocument, error) {
	price, err := database.ToDecimal128(p.Price)
	if err != nil {
		return nil, err
	}
	discount, err := database.ToDecimal128(p.DiscountPrice)
	if err != nil {
		return nil, err
	}

	return &productDocument{
		ID:            p.ID,
		Name:          p.Name,
		Description:   p.Description,
		Category:      p.Category,
		Price:         price,
		DiscountPrice: discount,
		Stock:         p.Stock,
		InStock:       p.InStock,
		Sizes:         p.Sizes,
		Colors:        p.Colors,
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
	}, nil
}

func (d *productDocument) toDomain() (*domain.Product, error) {
	price, err := database.FromDecimal128(d.Price)
	if err != nil {
		return nil, err
	}
	discount, err := database.FromDecimal128(d.DiscountPrice)
	if err != nil {
		return nil, err
	}

	return &domain.Product{
		ID:            d.ID,
		Name:          d.Name,
		Description:   d.Description,
		Category:      d.Category,
		Price:         price,
		DiscountPrice: discount,
		Stock:         d.Stock,
		InStock:       d.InStock,
		Sizes:         d.Sizes,
		Colors:        d.Colors,
		CreatedAt:     d.CreatedAt.UTC(),
		UpdatedAt:     d.UpdatedAt.UTC(),
	}, nil
}

// MongoProductRepository implements ports.ProductRepository on a MongoDB collection.
type MongoProductRepository struct {
	coll *mongo.Collection
	now  func() time.Time
}

// NewMongoProductRepository creates a repository over the given collection.
func NewMongoProductRepository(coll *mongo.Collection) *MongoProductRepository {
	return &MongoProductRepository{
		coll: coll,
		now:  func() time.Time { return time.Now().UTC() },
	}
}

// FindByID returns the product, or nil if none exists.
func (r *MongoProductRepository) FindByID(ctx context.Context, id string) (*domain.Product, error) {
	var doc productDocument
	err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find product %s: %w", id, err)
	}
	return doc.toDomain()
}

// Create inserts a new product.
func (r *MongoProductRepository) Create(ctx context.Context, product *domain.Product) error {
	doc, err := toDocument(product)
	if err != nil {
		return err
	}
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("failed to insert product %s: %w", product.ID, err)
	}
	return nil
}

// Update replaces the stored product.
func (r *MongoProductRepository) Update(ctx context.Context, product *domain.Product) error {
	doc, err := toDocument(product)
	if err != nil {
		return err
	}

	res, err := r.coll.ReplaceOne(ctx, bson.M{"_id": product.ID}, doc)
	if err != nil {
		return fmt.Errorf("failed to update product %s: %w", product.ID, err)
	}
	if res.MatchedCount == 0 {
		return &domain.ProductNotFoundError{ProductID: product.ID}
	}
	return nil
}

// List returns one page of products, newest first, with the total count.
func (r *MongoProductRepository) List(ctx context.Context, page pagination.Page) ([]domain.Product, int64, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetSkip(int64(page.Offset)).
		SetLimit(int64(page.Limit))

	cursor, err := r.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list products: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []productDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, 0, fmt.Errorf("failed to decode products: %w", err)
	}

	total, err := r.coll.CountDocuments(ctx, bson.M{})
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count products: %w", err)
	}

	products := make([]domain.Product, 0, len(docs))
	for i := range docs {
		p, err := docs[i].toDomain()
		if err != nil {
			return nil, 0, err
		}
		products = append(products, *p)
	}
	return products, total, nil
}

// DecrementStock subtracts qty in one conditional update so concurrent orders cannot oversell.
// When the update matches nothing the product is re-read to tell a missing product from a short one.
func (r *MongoProductRepository) DecrementStock(ctx context.Context, id string, qty int) (*domain.Product, error) {
	filter := bson.M{"_id": id, "stock": bson.M{"$gte": qty}}
	update := mongo.Pipeline{
		{{Key: "$set", Value: bson.D{
			{Key: "stock", Value: bson.D{{Key: "$subtract", Value: bson.A{"$stock", qty}}}},
			{Key: "updated_at", Value: r.now()},
		}}},
		{{Key: "$set", Value: bson.D{
			{Key: "in_stock", Value: bson.D{{Key: "$gt", Value: bson.A{"$stock", 0}}}},
		}}},
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var doc productDocument
	err := r.coll.FindOneAndUpdate(ctx, filter, update, opts).Decode(&doc)
	if err == nil {
		return doc.toDomain()
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("failed to decrement stock for product %s: %w", id, err)
	}

	current, err := r.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if current == nil {
		return nil, &domain.ProductNotFoundError{ProductID: id}
	}
	return nil, &domain.OutOfStockError{ProductID: id, Requested: qty, Available: current.Stock}
}
