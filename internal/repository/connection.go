package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const appName = "orderdesk"

// MongoOptions selects the saved-cart database and sizes the driver's connection pool.
// Zero durations and sizes fall back to the driver defaults.
type MongoOptions struct {
	URI                    string
	Database               string
	MaxPoolSize            uint64
	MinPoolSize            uint64
	ConnectTimeout         time.Duration
	ServerSelectionTimeout time.Duration
}

func (o MongoOptions) clientOptions() *options.ClientOptions {
	opts := options.Client().ApplyURI(o.URI).SetAppName(appName)
	if o.MaxPoolSize > 0 {
		opts.SetMaxPoolSize(o.MaxPoolSize)
	}
	if o.MinPoolSize > 0 {
		opts.SetMinPoolSize(o.MinPoolSize)
	}
	if o.ConnectTimeout > 0 {
		opts.SetConnectTimeout(o.ConnectTimeout)
	}
	if o.ServerSelectionTimeout > 0 {
		opts.SetServerSelectionTimeout(o.ServerSelectionTimeout)
	}
	return opts
}

func (o MongoOptions) validate() error {
	switch {
	case o.URI == "":
		return errors.New("mongo uri is empty")
	case o.Database == "":
		return errors.New("mongo database name is empty")
	case o.MaxPoolSize > 0 && o.MinPoolSize > o.MaxPoolSize:
		return fmt.Errorf("mongo min pool size %d exceeds max %d", o.MinPoolSize, o.MaxPoolSize)
	}
	return nil
}

// ConnectMongoDB dials the server and pings it. The client is disconnected again if the ping fails.
func ConnectMongoDB(ctx context.Context, o MongoOptions) (*mongo.Database, error) {
	if err := o.validate(); err != nil {
		return nil, err
	}

	client, err := mongo.Connect(ctx, o.clientOptions())
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.WithoutCancel(ctx))
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	return client.Database(o.Database), nil
}
