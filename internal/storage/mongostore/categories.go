package mongostore

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"

	"farmdirect/internal/metrics"
	"farmdirect/internal/models"
	"farmdirect/internal/storage"
)

func (s *Store) GetCategories(ctx context.Context) ([]models.Category, error) {
	defer metrics.TrackDBOperation("categories.list")(time.Now())
	return findAll[models.Category](ctx, s.categories(), "list categories", bson.M{},
		options.Find().SetSort(bson.D{{Key: "name", Value: 1}, {Key: "_id", Value: 1}}),
	)
}

func (s *Store) CreateCategory(ctx context.Context, category models.Category) (*models.Category, error) {
	defer metrics.TrackDBOperation("categories.create")(time.Now())

	storage.PrepareCategory(&category)
	if err := insert(ctx, s.categories(), "create category", category); err != nil {
		return nil, err
	}
	return &category, nil
}
