package sqlstore

import (
	"context"
	"fmt"
	"time"

	"farmdirect/internal/metrics"
	"farmdirect/internal/models"
	"farmdirect/internal/storage"
)

// CreateReview stores the review as given. Rating bounds and the product and
// farmer aggregates are not touched here.
func (s *Store) CreateReview(ctx context.Context, review models.Review) (*models.Review, error) {
	defer metrics.TrackDBOperation("reviews.create")(time.Now())

	storage.PrepareReview(&review)
	if err := s.db.WithContext(ctx).Create(&review).Error; err != nil {
		return nil, fmt.Errorf("create review: %w", err)
	}
	return &review, nil
}

func (s *Store) GetProductReviews(ctx context.Context, productID string) ([]models.Review, error) {
	return s.reviewsWhere(ctx, "reviews.by_product", "product_id = ?", productID)
}

func (s *Store) GetFarmerReviews(ctx context.Context, farmerID string) ([]models.Review, error) {
	return s.reviewsWhere(ctx, "reviews.by_farmer", "farmer_id = ?", farmerID)
}

func (s *Store) reviewsWhere(ctx context.Context, op, cond, arg string) ([]models.Review, error) {
	defer metrics.TrackDBOperation(op)(time.Now())

	reviews := make([]models.Review, 0)
	if err := newestFirst(s.db.WithContext(ctx).Where(cond, arg)).Find(&reviews).Error; err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return reviews, nil
}
