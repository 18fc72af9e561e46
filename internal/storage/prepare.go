package storage

import (
	"sort"
	"time"

	"github.com/google/uuid"

	"farmdirect/internal/models"
)

// Now is the clock used for generated timestamps. Truncated to milliseconds,
// the coarsest precision among the supported backends.
var Now = func() time.Time {
	return time.Now().UTC().Truncate(time.Millisecond)
}

func NewID() string {
	return uuid.NewString()
}

func stamp(id *string, createdAt *time.Time) {
	if *id == "" {
		*id = NewID()
	}
	if createdAt != nil {
		if createdAt.IsZero() {
			*createdAt = Now()
		} else {
			*createdAt = createdAt.UTC().Truncate(time.Millisecond)
		}
	}
}

// The Prepare helpers fill generated fields before an insert. Callers may
// supply their own id or timestamp.

func PrepareUser(u *models.User)         { stamp(&u.ID, &u.CreatedAt) }
func PrepareFarmer(f *models.Farmer)     { stamp(&f.ID, &f.CreatedAt) }
func PrepareCategory(c *models.Category) { stamp(&c.ID, nil) }
func PrepareProduct(p *models.Product)   { stamp(&p.ID, &p.CreatedAt) }
func PrepareReview(r *models.Review)     { stamp(&r.ID, &r.CreatedAt) }
func PrepareOrderItem(i *models.OrderItem) {
	stamp(&i.ID, nil)
}

func PrepareOrder(o *models.Order) {
	stamp(&o.ID, &o.CreatedAt)
	if o.Status == "" {
		o.Status = models.OrderStatusPending
	}
}

// Index helpers used to group batch-fetched children in memory.

func UsersByID(users []models.User) map[string]*models.User {
	out := make(map[string]*models.User, len(users))
	for i := range users {
		out[users[i].ID] = &users[i]
	}
	return out
}

func FarmersByID(farmers []models.Farmer) map[string]*models.Farmer {
	out := make(map[string]*models.Farmer, len(farmers))
	for i := range farmers {
		out[farmers[i].ID] = &farmers[i]
	}
	return out
}

func CategoriesByID(categories []models.Category) map[string]*models.Category {
	out := make(map[string]*models.Category, len(categories))
	for i := range categories {
		out[categories[i].ID] = &categories[i]
	}
	return out
}

func ProductsByID(products []models.Product) map[string]*models.Product {
	out := make(map[string]*models.Product, len(products))
	for i := range products {
		out[products[i].ID] = &products[i]
	}
	return out
}

// Distinct returns the unique non-empty keys in first-seen order.
func Distinct[T any](items []T, key func(T) string) []string {
	seen := make(map[string]struct{}, len(items))
	out := make([]string, 0, len(items))
	for _, item := range items {
		k := key(item)
		if k == "" {
			continue
		}
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}
	return out
}

// AssembleProducts joins products to their farmers and categories.
func AssembleProducts(products []models.Product, farmers []models.Farmer, categories []models.Category) []models.ProductWithFarmer {
	farmerByID := FarmersByID(farmers)
	categoryByID := CategoriesByID(categories)

	out := make([]models.ProductWithFarmer, 0, len(products))
	for _, p := range products {
		out = append(out, models.ProductWithFarmer{
			Product:  p,
			Farmer:   farmerByID[p.FarmerID],
			Category: categoryByID[p.CategoryID],
		})
	}
	return out
}

// AssembleFarmers attaches owners and products to each farmer. Products keep
// the order they were fetched in.
func AssembleFarmers(farmers []models.Farmer, users []models.User, products []models.Product) []models.FarmerWithProducts {
	userByID := UsersByID(users)
	productsByFarmer := make(map[string][]models.Product, len(farmers))
	for _, p := range products {
		productsByFarmer[p.FarmerID] = append(productsByFarmer[p.FarmerID], p)
	}

	out := make([]models.FarmerWithProducts, 0, len(farmers))
	for _, f := range farmers {
		owned := productsByFarmer[f.ID]
		if owned == nil {
			owned = []models.Product{}
		}
		out = append(out, models.FarmerWithProducts{
			Farmer:   f,
			User:     userByID[f.UserID],
			Products: owned,
		})
	}
	return out
}

// AssembleOrders groups items under their orders and embeds each item's product.
// Items are ordered by id within an order.
func AssembleOrders(orders []models.Order, items []models.OrderItem, products []models.Product) []models.OrderWithItems {
	productByID := ProductsByID(products)
	itemsByOrder := make(map[string][]models.OrderItemWithProduct, len(orders))
	for _, item := range items {
		itemsByOrder[item.OrderID] = append(itemsByOrder[item.OrderID], models.OrderItemWithProduct{
			OrderItem: item,
			Product:   productByID[item.ProductID],
		})
	}

	out := make([]models.OrderWithItems, 0, len(orders))
	for _, o := range orders {
		lines := itemsByOrder[o.ID]
		if lines == nil {
			lines = []models.OrderItemWithProduct{}
		}
		sort.Slice(lines, func(i, j int) bool { return lines[i].ID < lines[j].ID })
		out = append(out, models.OrderWithItems{Order: o, Items: lines})
	}
	return out
}
