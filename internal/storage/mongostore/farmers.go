package mongostore

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"

	"farmdirect/internal/metrics"
	"farmdirect/internal/models"
	"farmdirect/internal/storage"
)

func (s *Store) GetFarmer(ctx context.Context, id string) (*models.Farmer, error) {
	defer metrics.TrackDBOperation("farmers.get")(time.Now())
	return findOne[models.Farmer](ctx, s.farmers(), "get farmer", bson.M{"_id": id})
}

func (s *Store) GetFarmerByUserID(ctx context.Context, userID string) (*models.Farmer, error) {
	defer metrics.TrackDBOperation("farmers.get_by_user")(time.Now())
	return findOne[models.Farmer](ctx, s.farmers(), "get farmer by user",
		bson.M{"userId": userID},
		options.FindOne().SetSort(oldestFirst),
	)
}

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
	if err := insert(ctx, s.farmers(), "create farmer", farmer); err != nil {
		return nil, err
	}
	return &farmer, nil
}

func (s *Store) GetFeaturedFarmers(ctx context.Context) ([]models.FarmerWithProducts, error) {
	defer metrics.TrackDBOperation("farmers.featured")(time.Now())

	farmers, err := findAll[models.Farmer](ctx, s.farmers(), "featured farmers", bson.M{},
		options.Find().SetSort(topRated).SetLimit(storage.FeaturedFarmersLimit),
	)
	if err != nil {
		return nil, err
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
		var err error
		users, err = findByIDs[models.User](gctx, s.users(), "featured farmer users", userIDs)
		return err
	})
	g.Go(func() error {
		var err error
		products, err = findAll[models.Product](gctx, s.products(), "featured farmer products",
			bson.M{"farmerId": bson.M{"$in": farmerIDs}},
			options.Find().SetSort(newestFirst),
		)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return storage.AssembleFarmers(farmers, users, products), nil
}
