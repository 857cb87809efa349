package database

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"findlost/internal/config"
	"findlost/internal/middleware"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Collection names, as mongoose pluralizes the Item, RecoveredItem and User
// models.
const (
	ItemsCollection          = "items"
	RecoveredItemsCollection = "recovereditems"
	UsersCollection          = "users"
)

func openMongo(ctx context.Context, uri, dbName string) (*Handle, error) {
	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().
		ApplyURI(uri).
		SetMaxPoolSize(25))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}
	if err := client.Ping(connectCtx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	db := client.Database(dbName)
	if err := EnsureMongoIndexes(connectCtx, db); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}

	middleware.Logger.Info("Database connected successfully",
		slog.String("driver", config.DriverMongo),
		slog.String("database", dbName),
	)
	return &Handle{Driver: config.DriverMongo, Mongo: db}, nil
}

// EnsureMongoIndexes creates the indexes the repositories rely on. The unique
// indexes back one user per email and one recovery per item.
func EnsureMongoIndexes(ctx context.Context, db *mongo.Database) error {
	indexes := map[string][]mongo.IndexModel{
		UsersCollection: {
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
		RecoveredItemsCollection: {
			{Keys: bson.D{{Key: "itemId", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "recoveryInfo.email", Value: 1}}},
		},
		ItemsCollection: {
			{Keys: bson.D{{Key: "status", Value: 1}, {Key: "createdAt", Value: -1}}},
			{Keys: bson.D{{Key: "contactInfo.email", Value: 1}}},
			{Keys: bson.D{{Key: "userId", Value: 1}}},
		},
	}

	for coll, models := range indexes {
		if _, err := db.Collection(coll).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("failed to create %s indexes: %w", coll, err)
		}
	}
	return nil
}
