package sqlstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"farmdirect/internal/metrics"
	"farmdirect/internal/models"
	"farmdirect/internal/storage"
)

func (s *Store) GetFarmer(ctx context.Context, id string) (*models.Farmer, error) {
	defer metrics.TrackDBOperation("farmers.get")(time.Now())

	var farmer models.Farmer
	if err := s.db.WithContext(ctx).Where("id = ?", id).Take(&farmer).Error; err != nil {
		return nil, lookupError("get farmer", err)
	}
	return &farmer, nil
}

func (s *Store) GetFarmerByUserID(ctx context.Context, userID string) (*models.Farmer, error) {
	defer metrics.TrackDBOperation("farmers.get_by_user")(time.Now())

	var farmer models.Farmer
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at ASC").Order("id ASC").
		Take(&farmer).Error
	if err != nil {
		return nil, lookupError("get farmer by user", err)
	}
	return &farmer, nil
}

// GetFarmerWithProducts reports ErrNotFound only for the farmer row. A missing
// owner leaves User nil.
func (s *Store) GetFarmerWithProducts(ctx context.Context, id string) (*models.FarmerWithProducts, error) {
	defer metrics.TrackDBOperation("farmers.get_with_products")(time.Now())

	farmer, err := s.GetFarmer(ctx, id)
	if err != nil {
		return nil, err
	}

	var (
		user     *models.User
		products []models.Product
	)
	g, gctx := s.group(ctx)
	g.Go(func() error {
		u, err := s.GetUser(gctx, farmer.UserID)
		if errors.Is(err, storage.ErrNotFound) {
			return nil
		}
		user = u
		return err
	})
	g.Go(func() error {
		var err error
		products, err = s.GetProductsByFarmer(gctx, farmer.ID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &models.FarmerWithProducts{Farmer: *farmer, User: user, Products: products}, nil
}

func (s *Store) CreateFarmer(ctx context.Context, farmer models.Farmer) (*models.Farmer, error) {
	defer metrics.TrackDBOperation("farmers.create")(time.Now())

	storage.PrepareFarmer(&farmer)
	if err := s.db.WithContext(ctx).Create(&farmer).Error; err != nil {
		return nil, fmt.Errorf("create farmer: %w", err)
	}
	return &farmer, nil
}

// GetFeaturedFarmers returns the top rated farmers, ties broken by id, with
// owners and products fetched in one batch per relation.
func (s *Store) GetFeaturedFarmers(ctx context.Context) ([]models.FarmerWithProducts, error) {
	defer metrics.TrackDBOperation("farmers.featured")(time.Now())

	farmers := make([]models.Farmer, 0, storage.FeaturedFarmersLimit)
	err := s.db.WithContext(ctx).
		Order("rating DESC").Order("id ASC").
		Limit(storage.FeaturedFarmersLimit).
		Find(&farmers).Error
	if err != nil {
		return nil, fmt.Errorf("featured farmers: %w", err)
	}
	if len(farmers) == 0 {
		return []models.FarmerWithProducts{}, nil
	}

	farmerIDs := storage.Distinct(farmers, func(f models.Farmer) string { return f.ID })
	userIDs := storage.Distinct(farmers, func(f models.Farmer) string { return f.UserID })

	var (
		users    []models.User
		products []models.Product
	)
	g, gctx := s.group(ctx)
	g.Go(func() error {
		return s.findByIDs(gctx, &users, userIDs)
	})
	g.Go(func() error {
		return newestFirst(s.db.WithContext(gctx).Where("farmer_id IN ?", farmerIDs)).Find(&products).Error
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("featured farmers details: %w", err)
	}

	return storage.AssembleFarmers(farmers, users, products), nil
}
