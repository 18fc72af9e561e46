package database

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

const (
	CollUsers      = "users"
	CollFarmers    = "farmers"
	CollCategories = "categories"
	CollProducts   = "products"
	CollOrders     = "orders"
	CollOrderItems = "order_items"
	CollReviews    = "reviews"
)

func ascending(field string) bson.D {
	return bson.D{{Key: field, Value: 1}}
}

var collectionIndexes = map[string][]mongo.IndexModel{
	CollUsers: {
		{Keys: ascending("email"), Options: options.Index().SetName("email_unique").SetUnique(true)},
	},
	CollFarmers: {
		{Keys: ascending("userId"), Options: options.Index().SetName("userId_index")},
		{Keys: bson.D{{Key: "rating", Value: -1}, {Key: "_id", Value: 1}}, Options: options.Index().SetName("rating_index")},
	},
	CollProducts: {
		{Keys: ascending("farmerId"), Options: options.Index().SetName("farmerId_index")},
		{Keys: ascending("categoryId"), Options: options.Index().SetName("categoryId_index")},
		{Keys: bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: 1}}, Options: options.Index().SetName("createdAt_index")},
		{
			Keys: bson.D{{Key: "rating", Value: -1}, {Key: "_id", Value: 1}},
			Options: options.Index().
				SetName("featured_index").
				SetPartialFilterExpression(bson.M{"featured": true}),
		},
	},
	CollOrders: {
		{Keys: bson.D{{Key: "userId", Value: 1}, {Key: "createdAt", Value: -1}}, Options: options.Index().SetName("userId_index")},
	},
	CollOrderItems: {
		{Keys: ascending("orderId"), Options: options.Index().SetName("orderId_index")},
	},
	CollReviews: {
		{Keys: bson.D{{Key: "productId", Value: 1}, {Key: "createdAt", Value: -1}}, Options: options.Index().SetName("productId_index")},
		{Keys: bson.D{{Key: "farmerId", Value: 1}, {Key: "createdAt", Value: -1}}, Options: options.Index().SetName("farmerId_index")},
	},
}

// EnsureIndexes creates the indexes every query in mongostore relies on.
// Existing indexes with the same definition are left alone.
func EnsureIndexes(ctx context.Context, db *mongo.Database, log *zap.Logger) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	for collection, indexModels := range collectionIndexes {
		names, err := db.Collection(collection).Indexes().CreateMany(ctx, indexModels)
		if err != nil {
			log.Error("index creation failed", zap.String("collection", collection), zap.Error(err))
			return fmt.Errorf("ensure %s indexes: %w", collection, err)
		}
		log.Info("indexes ensured", zap.String("collection", collection), zap.Strings("indexes", names))
	}
	return nil
}
