// Package sensor reads equipment power telemetry from the document store.
package sensor

import (
	"context"
	"time"

	"github.com/plantops/kpihub/internal/config"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// NewClient connects to the configured MongoDB deployment.
func NewClient(cfg config.Config) (*mongo.Client, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	opts := options.Client().
		ApplyURI(cfg.MongoURI).
		SetConnectTimeout(10 * time.Second).
		SetServerSelectionTimeout(10 * time.Second)

	return mongo.Connect(ctx, opts)
}

// NewPowerCollection resolves the sensor power time-series collection.
func NewPowerCollection(cfg config.Config, client *mongo.Client) *mongo.Collection {
	return client.Database(cfg.MongoDatabase).Collection(cfg.MongoCollection)
}

func registerHooks(lc fx.Lifecycle, client *mongo.Client, log *zap.Logger) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if err := client.Ping(ctx, readpref.Primary()); err != nil {
				return err
			}
			log.Info("mongodb connected")
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return client.Disconnect(ctx)
		},
	})
}

// Module wires the document store client and the power reading repository.
var Module = fx.Module("sensor",
	fx.Provide(
		NewClient,
		NewPowerCollection,
		ProvideRepository,
	),
	fx.Invoke(registerHooks),
)
