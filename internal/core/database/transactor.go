package database

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/mongo"
)

// MongoTransactor runs units of work inside a multi-document transaction.
// Requires a replica set or sharded cluster.
type MongoTransactor struct {
	client *mongo.Client
}

// NewTransactor creates a transactor bound to the given client.
func NewTransactor(client *mongo.Client) *MongoTransactor {
	return &MongoTransactor{client: client}
}

// WithinTransaction executes fn with a session-bound context. Repository calls made with that
// context join the transaction; any error returned by fn aborts it. Callbacks registered with
// AfterCommit run once the transaction has committed.
// The driver may re-run fn on transient transaction errors, so fn must only touch the database.
func (t *MongoTransactor) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	session, err := t.client.StartSession()
	if err != nil {
		return fmt.Errorf("failed to start session: %w", err)
	}
	defer session.EndSession(ctx)

	ctx, runHooks := WithCommitHooks(ctx)
	hooks := hooksFrom(ctx)

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		hooks.reset()
		return nil, fn(sc)
	})
	if err != nil {
		return err
	}
	runHooks()
	return nil
}
