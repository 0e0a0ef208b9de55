package mongo

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"prediction_relay/backend/go/internal/config"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

var (
	client  *mongo.Client
	once    sync.Once
	initErr error
)

// GetClient connects to MongoDB once per process and returns the shared client. A failed
// first attempt is remembered; later calls return the same error.
func GetClient(ctx context.Context, cfg *config.MongoConfig) (*mongo.Client, error) {
	once.Do(func() {
		if cfg.Address == "" {
			initErr = errors.New("mongodb address is not configured")
			return
		}
		clientOptions := options.Client().ApplyURI(cfg.Address)
		if cfg.Username != "" && cfg.Password != "" {
			clientOptions.SetAuth(options.Credential{
				Username: cfg.Username,
				Password: cfg.Password,
			})
		}

		c, err := mongo.Connect(ctx, clientOptions)
		if err != nil {
			initErr = fmt.Errorf("failed to connect to MongoDB: %w", err)
			return
		}
		if err = c.Ping(ctx, readpref.Primary()); err != nil {
			_ = c.Disconnect(context.Background())
			initErr = fmt.Errorf("failed to ping MongoDB: %w", err)
			return
		}
		client = c
	})

	return client, initErr
}

// Close disconnects the shared client.
func Close(ctx context.Context) error {
	if client != nil {
		return client.Disconnect(ctx)
	}
	return nil
}
