package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"clickstream/internal/platform/config"
)

// Client wraps the mongo-driver client with the audit collection handle.
type Client struct {
	*mongo.Client
	collection *mongo.Collection
}

// New creates a new Mongo client from the provided configuration and verifies
// the connection before handing it out.
func New(ctx context.Context, cfg config.Mongo) (*Client, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("mongo ping failed: %w", err)
	}

	return &Client{
		Client:     client,
		collection: client.Database(cfg.Database).Collection(cfg.Collection),
	}, nil
}

// Collection returns the configured audit collection.
func (c *Client) Collection() *mongo.Collection {
	return c.collection
}

// Health checks if the Mongo connection is healthy.
func (c *Client) Health(ctx context.Context) error {
	return c.Ping(ctx, readpref.Primary())
}

// Close disconnects the Mongo client.
func (c *Client) Close(ctx context.Context) error {
	return c.Disconnect(ctx)
}
