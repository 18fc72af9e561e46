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

func (s *Store) CreateReview(ctx context.Context, review models.Review) (*models.Review, error) {
	defer metrics.TrackDBOperation("reviews.create")(time.Now())

	storage.PrepareReview(&review)
	if err := insert(ctx, s.reviews(), "create review", review); err != nil {
		return nil, err
	}
	return &review, nil
}

func (s *Store) GetProductReviews(ctx context.Context, productID string) ([]models.Review, error) {
	defer metrics.TrackDBOperation("reviews.by_product")(time.Now())
	return findAll[models.Review](ctx, s.reviews(), "product reviews",
		bson.M{"productId": productID},
		options.Find().SetSort(newestFirst),
	)
}

func (s *Store) GetFarmerReviews(ctx context.Context, farmerID string) ([]models.Review, error) {
	defer metrics.TrackDBOperation("reviews.by_farmer")(time.Now())
	return findAll[models.Review](ctx, s.reviews(), "farmer reviews",
		bson.M{"farmerId": farmerID},
		options.Find().SetSort(newestFirst),
	)
}
