// Package storage defines the persistence contract of the marketplace.
//
// Every operation maps to one access pattern. Point lookups report absence
// with ErrNotFound; scans return an empty slice. Driver failures are returned
// wrapped and are never retried.
package storage

import (
	"context"
	"errors"

	"farmdirect/internal/models"
)

var ErrNotFound = errors.New("not found")

const (
	FeaturedFarmersLimit  = 3
	FeaturedProductsLimit = 4
)

// Page bounds a scan. The zero value returns every row.
type Page struct {
	Limit  int
	Offset int
}

func (p Page) Unbounded() bool {
	return p.Limit <= 0
}

// Start is the offset with negative values treated as zero.
func (p Page) Start() int {
	if p.Offset < 0 {
		return 0
	}
	return p.Offset
}

// Window applies p to an already materialised slice.
func Window[T any](items []T, p Page) []T {
	if p.Unbounded() {
		return items
	}
	p.Offset = p.Start()
	if p.Offset >= len(items) {
		return []T{}
	}
	end := p.Offset + p.Limit
	if end > len(items) {
		end = len(items)
	}
	return items[p.Offset:end]
}

type Storage interface {
	Ping(ctx context.Context) error

	GetUser(ctx context.Context, id string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	CreateUser(ctx context.Context, user models.User) (*models.User, error)

	GetFarmer(ctx context.Context, id string) (*models.Farmer, error)
	// GetFarmerByUserID returns the oldest farmer owned by the user when
	// several exist.
	GetFarmerByUserID(ctx context.Context, userID string) (*models.Farmer, error)
	GetFarmerWithProducts(ctx context.Context, id string) (*models.FarmerWithProducts, error)
	CreateFarmer(ctx context.Context, farmer models.Farmer) (*models.Farmer, error)
	GetFeaturedFarmers(ctx context.Context) ([]models.FarmerWithProducts, error)

	GetCategories(ctx context.Context) ([]models.Category, error)
	CreateCategory(ctx context.Context, category models.Category) (*models.Category, error)

	GetProducts(ctx context.Context, page Page) ([]models.ProductWithFarmer, error)
	GetProduct(ctx context.Context, id string) (*models.ProductWithFarmer, error)
	GetProductsByCategory(ctx context.Context, categoryID string, page Page) ([]models.ProductWithFarmer, error)
	GetProductsByFarmer(ctx context.Context, farmerID string) ([]models.Product, error)
	GetFeaturedProducts(ctx context.Context) ([]models.ProductWithFarmer, error)
	CreateProduct(ctx context.Context, product models.Product) (*models.Product, error)
	UpdateProduct(ctx context.Context, id string, update models.ProductUpdate) (*models.Product, error)
	SearchProducts(ctx context.Context, query string, page Page) ([]models.ProductWithFarmer, error)

	GetOrder(ctx context.Context, id string) (*models.OrderWithItems, error)
	GetOrdersByUser(ctx context.Context, userID string) ([]models.OrderWithItems, error)
	CreateOrder(ctx context.Context, order models.Order) (*models.Order, error)
	AddOrderItem(ctx context.Context, item models.OrderItem) (*models.OrderItem, error)
	// PlaceOrder writes the order and all of its items atomically.
	PlaceOrder(ctx context.Context, order models.Order, items []models.OrderItem) (*models.OrderWithItems, error)
	// UpdateOrderStatus is a blind write: a missing order is not an error.
	UpdateOrderStatus(ctx context.Context, orderID string, status models.OrderStatus) error

	CreateReview(ctx context.Context, review models.Review) (*models.Review, error)
	GetProductReviews(ctx context.Context, productID string) ([]models.Review, error)
	GetFarmerReviews(ctx context.Context, farmerID string) ([]models.Review, error)
}
