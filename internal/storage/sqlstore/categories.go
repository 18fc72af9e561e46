package sqlstore

import (
	"context"
	"fmt"
	"time"

	"farmdirect/internal/metrics"
	"farmdirect/internal/models"
	"farmdirect/internal/storage"
)

func (s *Store) GetCategories(ctx context.Context) ([]models.Category, error) {
	defer metrics.TrackDBOperation("categories.list")(time.Now())

	categories := make([]models.Category, 0)
	if err := s.db.WithContext(ctx).Order("name ASC").Order("id ASC").Find(&categories).Error; err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return categories, nil
}

func (s *Store) CreateCategory(ctx context.Context, category models.Category) (*models.Category, error) {
	defer metrics.TrackDBOperation("categories.create")(time.Now())

	storage.PrepareCategory(&category)
	if err := s.db.WithContext(ctx).Create(&category).Error; err != nil {
		return nil, fmt.Errorf("create category: %w", err)
	}
	return &category, nil
}
