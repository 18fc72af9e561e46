package sqlstore

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"farmdirect/internal/metrics"
	"farmdirect/internal/models"
	"farmdirect/internal/storage"
)

// hydrate joins products to farmers and categories with one IN query per relation.
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
	g.Go(func() error { return s.findByIDs(gctx, &farmers, farmerIDs) })
	g.Go(func() error { return s.findByIDs(gctx, &categories, categoryIDs) })
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("hydrate products: %w", err)
	}

	return storage.AssembleProducts(products, farmers, categories), nil
}

func (s *Store) scanProducts(ctx context.Context, op string, page storage.Page, filter func(*gorm.DB) *gorm.DB) ([]models.ProductWithFarmer, error) {
	defer metrics.TrackDBOperation(op)(time.Now())

	products := make([]models.Product, 0)
	q := filter(s.db.WithContext(ctx).Model(&models.Product{}))
	if err := paged(newestFirst(q), page).Find(&products).Error; err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return s.hydrate(ctx, products)
}

func (s *Store) GetProducts(ctx context.Context, page storage.Page) ([]models.ProductWithFarmer, error) {
	return s.scanProducts(ctx, "products.list", page, func(q *gorm.DB) *gorm.DB { return q })
}

func (s *Store) GetProduct(ctx context.Context, id string) (*models.ProductWithFarmer, error) {
	defer metrics.TrackDBOperation("products.get")(time.Now())

	var product models.Product
	if err := s.db.WithContext(ctx).Where("id = ?", id).Take(&product).Error; err != nil {
		return nil, lookupError("get product", err)
	}

	hydrated, err := s.hydrate(ctx, []models.Product{product})
	if err != nil {
		return nil, err
	}
	return &hydrated[0], nil
}

func (s *Store) GetProductsByCategory(ctx context.Context, categoryID string, page storage.Page) ([]models.ProductWithFarmer, error) {
	return s.scanProducts(ctx, "products.by_category", page, func(q *gorm.DB) *gorm.DB {
		return q.Where("category_id = ?", categoryID)
	})
}

func (s *Store) GetProductsByFarmer(ctx context.Context, farmerID string) ([]models.Product, error) {
	defer metrics.TrackDBOperation("products.by_farmer")(time.Now())

	products := make([]models.Product, 0)
	if err := newestFirst(s.db.WithContext(ctx).Where("farmer_id = ?", farmerID)).Find(&products).Error; err != nil {
		return nil, fmt.Errorf("products by farmer: %w", err)
	}
	return products, nil
}

func (s *Store) GetFeaturedProducts(ctx context.Context) ([]models.ProductWithFarmer, error) {
	defer metrics.TrackDBOperation("products.featured")(time.Now())

	products := make([]models.Product, 0, storage.FeaturedProductsLimit)
	err := s.db.WithContext(ctx).
		Where("featured = ?", true).
		Order("rating DESC").Order("id ASC").
		Limit(storage.FeaturedProductsLimit).
		Find(&products).Error
	if err != nil {
		return nil, fmt.Errorf("featured products: %w", err)
	}
	return s.hydrate(ctx, products)
}

func (s *Store) CreateProduct(ctx context.Context, product models.Product) (*models.Product, error) {
	defer metrics.TrackDBOperation("products.create")(time.Now())

	storage.PrepareProduct(&product)
	if err := s.db.WithContext(ctx).Create(&product).Error; err != nil {
		return nil, fmt.Errorf("create product: %w", err)
	}
	return &product, nil
}

func (s *Store) UpdateProduct(ctx context.Context, id string, update models.ProductUpdate) (*models.Product, error) {
	defer metrics.TrackDBOperation("products.update")(time.Now())

	var product models.Product
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ?", id).Take(&product).Error; err != nil {
			return err
		}
		if update.IsEmpty() {
			return nil
		}
		update.Apply(&product)
		return tx.Save(&product).Error
	})
	if err != nil {
		return nil, lookupError("update product", err)
	}
	return &product, nil
}

// SearchProducts matches query as a case-insensitive literal substring of the
// name or description. The empty query matches every product.
func (s *Store) SearchProducts(ctx context.Context, query string, page storage.Page) ([]models.ProductWithFarmer, error) {
	pattern := containsPattern(query)
	return s.scanProducts(ctx, "products.search", page, func(q *gorm.DB) *gorm.DB {
		return q.Where(`LOWER(name) LIKE ? ESCAPE '\' OR LOWER(description) LIKE ? ESCAPE '\'`, pattern, pattern)
	})
}
