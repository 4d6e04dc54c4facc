package database

import (
	"context"
	"fmt"

	"heroshop/internal/core/config"
	"heroshop/internal/core/logger"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"
)

// Collection names used by the feature repositories.
const (
	CollectionCoupons  = "coupons"
	CollectionProducts = "products"
	CollectionOrders   = "orders"
)

// Mongo wraps the driver client and the shop database.
type Mongo struct {
	// Client is the underlying driver client, needed to start sessions.
	Client *mongo.Client
	// Database is the shop database handle.
	Database *mongo.Database
}

// Connect opens a client, verifies it against the primary and selects the configured database.
func Connect(ctx context.Context, cfg config.MongoConfig) (*Mongo, error) {
	ctx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()

	opts := options.Client().
		ApplyURI(cfg.URI).
		SetConnectTimeout(cfg.Timeout).
		SetServerSelectionTimeout(cfg.Timeout)

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongo: %w", err)
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongo ping failed: %w", err)
	}

	logger.Get().Info("Connected to MongoDB", zap.String("database", cfg.Database))

	return &Mongo{
		Client:   client,
		Database: client.Database(cfg.Database),
	}, nil
}

// Collection returns a handle to the named collection.
func (m *Mongo) Collection(name string) *mongo.Collection {
	return m.Database.Collection(name)
}

// Ping checks that the primary is reachable.
func (m *Mongo) Ping(ctx context.Context) error {
	if err := m.Client.Ping(ctx, readpref.Primary()); err != nil {
		return fmt.Errorf("mongo ping failed: %w", err)
	}
	return nil
}

// Close disconnects the client.
func (m *Mongo) Close(ctx context.Context) error {
	return m.Client.Disconnect(ctx)
}
