package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const defaultTimeout = 10 * time.Second

// Config holds the settings for the auth stores' MongoDB connection.
type Config struct {
	URI      string
	Database string
	// AppName is reported to the server so auth traffic is identifiable in
	// server logs and currentOp.
	AppName string
	Timeout time.Duration
}

func (c Config) validate() error {
	var errs []error
	if c.URI == "" {
		errs = append(errs, errors.New("uri is required"))
	}
	if c.Database == "" {
		errs = append(errs, errors.New("database is required"))
	}
	return errors.Join(errs...)
}

// Connect dials MongoDB, pings the primary and returns the client with the
// database holding auth_identities, profiles and auth_events.
func Connect(ctx context.Context, cfg Config) (*mongo.Client, *mongo.Database, error) {
	if err := cfg.validate(); err != nil {
		return nil, nil, fmt.Errorf("mongo config: %w", err)
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	connectCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	opts := options.Client().
		ApplyURI(cfg.URI).
		SetServerSelectionTimeout(timeout)
	if cfg.AppName != "" {
		opts.SetAppName(cfg.AppName)
	}

	client, err := mongo.Connect(connectCtx, opts)
	if err != nil {
		return nil, nil, fmt.Errorf("mongo connect: %w", err)
	}

	if err := client.Ping(connectCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, nil, fmt.Errorf("mongo ping: %w", err)
	}

	return client, client.Database(cfg.Database), nil
}

// Pinger returns a readiness check against the primary.
func Pinger(client *mongo.Client) func(context.Context) error {
	return func(ctx context.Context) error {
		if err := client.Ping(ctx, readpref.Primary()); err != nil {
			return fmt.Errorf("mongo ping: %w", err)
		}
		return nil
	}
}
