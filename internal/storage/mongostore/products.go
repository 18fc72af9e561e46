package mongostore

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"farmdirect/internal/metrics"
	"farmdirect/internal/models"
	"farmdirect/internal/storage"
)

func (s *Store) hydrate(ctx context.Context, products []models.Product) ([]models.ProductWithFarmer, error) {
	if len(products) == 0 {
		return []models.ProductWithFarmer{}, nil
	}

	farmerIDs := storage.Distinct(products, func(p models.Product) string { return p.FarmerID })
	categoryIDs := storage.Distinct(products, func(p models.Product) string { return p.CategoryID })

	var (
		farmers    []models.Farmer
		categories []models.Category
	)
	g, gctx := s.group(ctx)
	g.Go(func() error {
		var err error
		farmers, err = findByIDs[models.Farmer](gctx, s.farmers(), "product farmers", farmerIDs)
		return err
	})
	g.Go(func() error {
		var err error
		categories, err = findByIDs[models.Category](gctx, s.categories(), "product categories", categoryIDs)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return storage.AssembleProducts(products, farmers, categories), nil
}

func (s *Store) scanProducts(ctx context.Context, op string, filter bson.M, page storage.Page) ([]models.ProductWithFarmer, error) {
	defer metrics.TrackDBOperation(op)(time.Now())

	products, err := findAll[models.Product](ctx, s.products(), op, filter,
		paged(options.Find().SetSort(newestFirst), page),
	)
	if err != nil {
		return nil, err
	}
	return s.hydrate(ctx, products)
}

func (s *Store) GetProducts(ctx context.Context, page storage.Page) ([]models.ProductWithFarmer, error) {
	return s.scanProducts(ctx, "products.list", bson.M{}, page)
}

func (s *Store) GetProduct(ctx context.Context, id string) (*models.ProductWithFarmer, error) {
	defer metrics.TrackDBOperation("products.get")(time.Now())

	product, err := findOne[models.Product](ctx, s.products(), "get product", bson.M{"_id": id})
	if err != nil {
		return nil, err
	}
	hydrated, err := s.hydrate(ctx, []models.Product{*product})
	if err != nil {
		return nil, err
	}
	return &hydrated[0], nil
}

func (s *Store) GetProductsByCategory(ctx context.Context, categoryID string, page storage.Page) ([]models.ProductWithFarmer, error) {
	return s.scanProducts(ctx, "products.by_category", bson.M{"categoryId": categoryID}, page)
}

func (s *Store) GetProductsByFarmer(ctx context.Context, farmerID string) ([]models.Product, error) {
	defer metrics.TrackDBOperation("products.by_farmer")(time.Now())
	return findAll[models.Product](ctx, s.products(), "products by farmer",
		bson.M{"farmerId": farmerID},
		options.Find().SetSort(newestFirst),
	)
}

func (s *Store) GetFeaturedProducts(ctx context.Context) ([]models.ProductWithFarmer, error) {
	defer metrics.TrackDBOperation("products.featured")(time.Now())

	products, err := findAll[models.Product](ctx, s.products(), "featured products",
		bson.M{"featured": true},
		options.Find().SetSort(topRated).SetLimit(storage.FeaturedProductsLimit),
	)
	if err != nil {
		return nil, err
	}
	return s.hydrate(ctx, products)
}

func (s *Store) CreateProduct(ctx context.Context, product models.Product) (*models.Product, error) {
	defer metrics.TrackDBOperation("products.create")(time.Now())

	storage.PrepareProduct(&product)
	if err := insert(ctx, s.products(), "create product", product); err != nil {
		return nil, err
	}
	return &product, nil
}

// productSet renders the non-nil fields of an update as a $set document.
func productSet(update models.ProductUpdate) bson.M {
	set := bson.M{}
	if update.Name != nil {
		set["name"] = *update.Name
	}
	if update.Description != nil {
		set["description"] = *update.Description
	}
	if update.CategoryID != nil {
		set["categoryId"] = *update.CategoryID
	}
	if update.Price != nil {
		set["price"] = *update.Price
	}
	if update.Unit != nil {
		set["unit"] = *update.Unit
	}
	if update.ImageURL != nil {
		set["imageUrl"] = *update.ImageURL
	}
	if update.InStock != nil {
		set["inStock"] = *update.InStock
	}
	if update.Featured != nil {
		set["featured"] = *update.Featured
	}
	return set
}

func (s *Store) UpdateProduct(ctx context.Context, id string, update models.ProductUpdate) (*models.Product, error) {
	defer metrics.TrackDBOperation("products.update")(time.Now())

	if update.IsEmpty() {
		return findOne[models.Product](ctx, s.products(), "get product", bson.M{"_id": id})
	}

	var product models.Product
	err := s.products().FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{"$set": productSet(update)},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&product)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("update product: %w", err)
	}
	return &product, nil
}

// searchFilter matches query literally and case-insensitively in the name or
// description.
func searchFilter(query string) bson.M {
	pattern := primitive.Regex{Pattern: regexp.QuoteMeta(query), Options: "i"}
	return bson.M{"$or": bson.A{
		bson.M{"name": pattern},
		bson.M{"description": pattern},
	}}
}

func (s *Store) SearchProducts(ctx context.Context, query string, page storage.Page) ([]models.ProductWithFarmer, error) {
	return s.scanProducts(ctx, "products.search", searchFilter(query), page)
}
