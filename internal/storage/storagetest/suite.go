// Package storagetest holds behavioural tests shared by every
// storage.Storage implementation.
package storagetest

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"farmdirect/internal/models"
	"farmdirect/internal/storage"
)

// Factory returns an empty store private to the calling test.
type Factory func(t *testing.T) storage.Storage

func Run(t *testing.T, newStore Factory) {
	tests := []struct {
		name string
		fn   func(t *testing.T, s storage.Storage)
	}{
		{"Users", testUsers},
		{"FarmerByUserReturnsOldest", testFarmerByUser},
		{"FarmerWithProducts", testFarmerWithProducts},
		{"FeaturedFarmers", testFeaturedFarmers},
		{"Categories", testCategories},
		{"GetProductHydrates", testGetProduct},
		{"GetProductDanglingReferences", testDanglingReferences},
		{"ProductsNewestFirst", testProductsOrdering},
		{"ProductsPagination", testProductsPagination},
		{"ProductsByCategory", testProductsByCategory},
		{"FeaturedProducts", testFeaturedProducts},
		{"UpdateProduct", testUpdateProduct},
		{"SearchProducts", testSearch},
		{"SearchFoldsNonASCII", testSearchNonASCII},
		{"OrderItemsKeepPrice", testOrderItems},
		{"PlaceOrder", testPlaceOrder},
		{"PlaceOrderRollsBack", testPlaceOrderRollsBack},
		{"OrdersByUser", testOrdersByUser},
		{"UpdateOrderStatus", testUpdateOrderStatus},
		{"Reviews", testReviews},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.fn(t, newStore(t))
		})
	}
}

var base = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func at(minutes int) time.Time {
	return base.Add(time.Duration(minutes) * time.Minute)
}

func ctx(t *testing.T) context.Context {
	c, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	t.Cleanup(cancel)
	return c
}

func strPtr(s string) *string { return &s }

// fixture seeds user u1, category c1 and farmer f1.
func fixture(t *testing.T, s storage.Storage) {
	c := ctx(t)
	_, err := s.CreateUser(c, models.User{ID: "u1", Email: "u1@example.com", Name: "Ada", CreatedAt: at(0)})
	require.NoError(t, err)
	_, err = s.CreateCategory(c, models.Category{ID: "c1", Name: "Vegetables", Icon: "carrot"})
	require.NoError(t, err)
	_, err = s.CreateFarmer(c, models.Farmer{ID: "f1", UserID: "u1", FarmName: "Green Acres", Location: "Vermont", Rating: 4.5, CreatedAt: at(0)})
	require.NoError(t, err)
}

func addProduct(t *testing.T, s storage.Storage, p models.Product) *models.Product {
	if p.FarmerID == "" {
		p.FarmerID = "f1"
	}
	if p.CategoryID == "" {
		p.CategoryID = "c1"
	}
	if p.Unit == "" {
		p.Unit = "lb"
	}
	if p.Price.IsZero() {
		p.Price = models.MustPrice("1.00")
	}
	created, err := s.CreateProduct(ctx(t), p)
	require.NoError(t, err)
	return created
}

func ids[T any](items []T, id func(T) string) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		out = append(out, id(item))
	}
	return out
}

func productIDs(items []models.ProductWithFarmer) []string {
	return ids(items, func(p models.ProductWithFarmer) string { return p.ID })
}

func testUsers(t *testing.T, s storage.Storage) {
	c := ctx(t)
	created, err := s.CreateUser(c, models.User{Email: "new@example.com", Name: "New"})
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.False(t, created.CreatedAt.IsZero())

	got, err := s.GetUser(c, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "new@example.com", got.Email)

	byEmail, err := s.GetUserByEmail(c, "new@example.com")
	require.NoError(t, err)
	assert.Equal(t, created.ID, byEmail.ID)

	_, err = s.CreateUser(c, models.User{Email: "new@example.com", Name: "Twin"})
	require.Error(t, err)
	assert.NotErrorIs(t, err, storage.ErrNotFound)

	_, err = s.GetUser(c, "missing")
	assert.ErrorIs(t, err, storage.ErrNotFound)
	_, err = s.GetUserByEmail(c, "missing@example.com")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func testFarmerByUser(t *testing.T, s storage.Storage) {
	fixture(t, s)
	c := ctx(t)
	_, err := s.CreateFarmer(c, models.Farmer{ID: "f0", UserID: "u1", FarmName: "Newer", CreatedAt: at(10)})
	require.NoError(t, err)

	got, err := s.GetFarmerByUserID(c, "u1")
	require.NoError(t, err)
	assert.Equal(t, "f1", got.ID)

	_, err = s.GetFarmerByUserID(c, "nobody")
	assert.ErrorIs(t, err, storage.ErrNotFound)
	_, err = s.GetFarmer(c, "missing")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func testFarmerWithProducts(t *testing.T, s storage.Storage) {
	fixture(t, s)
	addProduct(t, s, models.Product{ID: "p1", Name: "Kale", CreatedAt: at(1)})
	addProduct(t, s, models.Product{ID: "p2", Name: "Leeks", CreatedAt: at(2)})
	c := ctx(t)

	got, err := s.GetFarmerWithProducts(c, "f1")
	require.NoError(t, err)
	require.NotNil(t, got.User)
	assert.Equal(t, "Ada", got.User.Name)
	assert.Equal(t, []string{"p2", "p1"}, ids(got.Products, func(p models.Product) string { return p.ID }))

	_, err = s.CreateFarmer(c, models.Farmer{ID: "orphan", UserID: "ghost", FarmName: "Orphan", CreatedAt: at(0)})
	require.NoError(t, err)
	orphan, err := s.GetFarmerWithProducts(c, "orphan")
	require.NoError(t, err)
	assert.Nil(t, orphan.User)
	assert.NotNil(t, orphan.Products)
	assert.Empty(t, orphan.Products)

	_, err = s.GetFarmerWithProducts(c, "missing")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func testFeaturedFarmers(t *testing.T, s storage.Storage) {
	c := ctx(t)
	empty, err := s.GetFeaturedFarmers(c)
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)

	fixture(t, s)
	for _, f := range []models.Farmer{
		{ID: "fb", UserID: "u1", FarmName: "B", Rating: 4.9},
		{ID: "fa", UserID: "u1", FarmName: "A", Rating: 4.9},
		{ID: "fc", UserID: "u1", FarmName: "C", Rating: 3.0},
		{ID: "fd", UserID: "u1", FarmName: "D", Rating: 1.0},
	} {
		_, err := s.CreateFarmer(c, f)
		require.NoError(t, err)
	}
	addProduct(t, s, models.Product{ID: "p1", FarmerID: "fa", Name: "Apples", CreatedAt: at(1)})

	got, err := s.GetFeaturedFarmers(c)
	require.NoError(t, err)
	require.Len(t, got, storage.FeaturedFarmersLimit)
	assert.Equal(t, []string{"fa", "fb", "f1"}, ids(got, func(f models.FarmerWithProducts) string { return f.ID }))
	require.Len(t, got[0].Products, 1)
	assert.Equal(t, "p1", got[0].Products[0].ID)
	assert.NotNil(t, got[1].Products)
	require.NotNil(t, got[2].User)
	assert.Equal(t, "u1", got[2].User.ID)
}

func testCategories(t *testing.T, s storage.Storage) {
	c := ctx(t)
	for _, name := range []string{"Fruit", "Dairy", "Bakery"} {
		created, err := s.CreateCategory(c, models.Category{Name: name})
		require.NoError(t, err)
		assert.NotEmpty(t, created.ID)
	}
	got, err := s.GetCategories(c)
	require.NoError(t, err)
	assert.Equal(t, []string{"Bakery", "Dairy", "Fruit"}, ids(got, func(c models.Category) string { return c.Name }))
}

func testGetProduct(t *testing.T, s storage.Storage) {
	fixture(t, s)
	addProduct(t, s, models.Product{
		ID: "p1", Name: "Carrots", Description: "Sweet heirloom carrots",
		Price: models.MustPrice("3.50"), Unit: "lb", InStock: true, CreatedAt: at(1),
	})

	got, err := s.GetProduct(ctx(t), "p1")
	require.NoError(t, err)
	assert.Equal(t, "Carrots", got.Name)
	assert.Equal(t, "3.50", got.Price.String())
	assert.Equal(t, "lb", got.Unit)
	assert.True(t, got.InStock)
	assert.False(t, got.Featured)
	require.NotNil(t, got.Farmer)
	assert.Equal(t, "Green Acres", got.Farmer.FarmName)
	require.NotNil(t, got.Category)
	assert.Equal(t, "Vegetables", got.Category.Name)

	_, err = s.GetProduct(ctx(t), "missing")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func testDanglingReferences(t *testing.T, s storage.Storage) {
	addProduct(t, s, models.Product{ID: "p1", FarmerID: "gone", CategoryID: "gone", Name: "Stray"})

	got, err := s.GetProduct(ctx(t), "p1")
	require.NoError(t, err)
	assert.Nil(t, got.Farmer)
	assert.Nil(t, got.Category)
}

func testProductsOrdering(t *testing.T, s storage.Storage) {
	fixture(t, s)
	addProduct(t, s, models.Product{ID: "p-old", Name: "Old", CreatedAt: at(1)})
	addProduct(t, s, models.Product{ID: "p-b", Name: "Tie B", CreatedAt: at(5)})
	addProduct(t, s, models.Product{ID: "p-a", Name: "Tie A", CreatedAt: at(5)})
	addProduct(t, s, models.Product{ID: "p-new", Name: "New", CreatedAt: at(9)})

	got, err := s.GetProducts(ctx(t), storage.Page{})
	require.NoError(t, err)
	assert.Equal(t, []string{"p-new", "p-a", "p-b", "p-old"}, productIDs(got))
}

func testProductsPagination(t *testing.T, s storage.Storage) {
	fixture(t, s)
	for i := 0; i < 5; i++ {
		addProduct(t, s, models.Product{ID: fmt.Sprintf("p%d", i), Name: "Item", CreatedAt: at(i)})
	}
	c := ctx(t)

	first, err := s.GetProducts(c, storage.Page{Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, []string{"p4", "p3"}, productIDs(first))

	last, err := s.GetProducts(c, storage.Page{Limit: 2, Offset: 4})
	require.NoError(t, err)
	assert.Equal(t, []string{"p0"}, productIDs(last))

	past, err := s.GetProducts(c, storage.Page{Limit: 2, Offset: 10})
	require.NoError(t, err)
	assert.Empty(t, past)
}

func testProductsByCategory(t *testing.T, s storage.Storage) {
	fixture(t, s)
	c := ctx(t)
	_, err := s.CreateCategory(c, models.Category{ID: "c2", Name: "Fruit"})
	require.NoError(t, err)
	addProduct(t, s, models.Product{ID: "p1", Name: "Kale", CreatedAt: at(1)})
	addProduct(t, s, models.Product{ID: "p2", CategoryID: "c2", Name: "Pears", CreatedAt: at(2)})
	addProduct(t, s, models.Product{ID: "p3", Name: "Leeks", CreatedAt: at(3)})

	got, err := s.GetProductsByCategory(c, "c1", storage.Page{})
	require.NoError(t, err)
	assert.Equal(t, []string{"p3", "p1"}, productIDs(got))

	none, err := s.GetProductsByCategory(c, "nothing", storage.Page{})
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)

	byFarmer, err := s.GetProductsByFarmer(c, "f1")
	require.NoError(t, err)
	assert.Len(t, byFarmer, 3)
}

func testFeaturedProducts(t *testing.T, s storage.Storage) {
	fixture(t, s)
	for i, rating := range []float64{4.0, 5.0, 3.0, 5.0, 2.0, 4.5} {
		addProduct(t, s, models.Product{
			ID: fmt.Sprintf("p%d", i), Name: "Featured", Featured: true, Rating: rating, CreatedAt: at(i),
		})
	}
	addProduct(t, s, models.Product{ID: "plain", Name: "Plain", Rating: 5.0})

	got, err := s.GetFeaturedProducts(ctx(t))
	require.NoError(t, err)
	require.Len(t, got, storage.FeaturedProductsLimit)
	for _, p := range got {
		assert.True(t, p.Featured)
		assert.NotNil(t, p.Farmer)
	}
	assert.Equal(t, []string{"p1", "p3", "p5", "p0"}, productIDs(got))
}

func testUpdateProduct(t *testing.T, s storage.Storage) {
	fixture(t, s)
	addProduct(t, s, models.Product{ID: "p1", Name: "Kale", Price: models.MustPrice("2.00"), InStock: true})
	c := ctx(t)

	price := models.MustPrice("2.75")
	inStock := false
	updated, err := s.UpdateProduct(c, "p1", models.ProductUpdate{Price: &price, InStock: &inStock})
	require.NoError(t, err)
	assert.Equal(t, "2.75", updated.Price.String())
	assert.False(t, updated.InStock)
	assert.Equal(t, "Kale", updated.Name)

	reread, err := s.GetProduct(c, "p1")
	require.NoError(t, err)
	assert.Equal(t, "2.75", reread.Price.String())
	assert.False(t, reread.InStock)

	unchanged, err := s.UpdateProduct(c, "p1", models.ProductUpdate{})
	require.NoError(t, err)
	assert.Equal(t, "2.75", unchanged.Price.String())

	_, err = s.UpdateProduct(c, "missing", models.ProductUpdate{Price: &price})
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func testSearch(t *testing.T, s storage.Storage) {
	fixture(t, s)
	addProduct(t, s, models.Product{ID: "p1", Name: "Heirloom Tomatoes", Description: "Vine ripened", CreatedAt: at(1)})
	addProduct(t, s, models.Product{ID: "p2", Name: "Basil", Description: "Pairs with TOMATO salads", CreatedAt: at(2)})
	addProduct(t, s, models.Product{ID: "p3", Name: "Raw Honey", Description: "100% wildflower", CreatedAt: at(3)})
	addProduct(t, s, models.Product{ID: "p4", Name: "Eggs", Description: "Free_range dozen", CreatedAt: at(4)})
	c := ctx(t)

	got, err := s.SearchProducts(c, "tomato", storage.Page{})
	require.NoError(t, err)
	assert.Equal(t, []string{"p2", "p1"}, productIDs(got))

	percent, err := s.SearchProducts(c, "100%", storage.Page{})
	require.NoError(t, err)
	assert.Equal(t, []string{"p3"}, productIDs(percent))

	underscore, err := s.SearchProducts(c, "s_w", storage.Page{})
	require.NoError(t, err)
	assert.Empty(t, underscore)

	regexish, err := s.SearchProducts(c, "free_range", storage.Page{})
	require.NoError(t, err)
	assert.Equal(t, []string{"p4"}, productIDs(regexish))

	none, err := s.SearchProducts(c, "durian", storage.Page{})
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)

	all, err := s.SearchProducts(c, "", storage.Page{})
	require.NoError(t, err)
	everything, err := s.GetProducts(c, storage.Page{})
	require.NoError(t, err)
	assert.Equal(t, productIDs(everything), productIDs(all))

	paged, err := s.SearchProducts(c, "", storage.Page{Limit: 1, Offset: 1})
	require.NoError(t, err)
	assert.Equal(t, []string{"p3"}, productIDs(paged))
}

func testSearchNonASCII(t *testing.T, s storage.Storage) {
	fixture(t, s)
	addProduct(t, s, models.Product{ID: "p1", Name: "ÄPFEL", Description: "Aus dem Alten Land", CreatedAt: at(1)})
	addProduct(t, s, models.Product{ID: "p2", Name: "Birnen", Description: "Süße ÖKO Ernte", CreatedAt: at(2)})
	c := ctx(t)

	for _, query := range []string{"äpfel", "ÄPFEL", "Äpf", "öko", "SÜßE"} {
		got, err := s.SearchProducts(c, query, storage.Page{})
		require.NoError(t, err)
		assert.Len(t, got, 1, query)
	}

	got, err := s.SearchProducts(c, "äpfel", storage.Page{})
	require.NoError(t, err)
	assert.Equal(t, []string{"p1"}, productIDs(got))
}

func testOrderItems(t *testing.T, s storage.Storage) {
	fixture(t, s)
	addProduct(t, s, models.Product{ID: "p1", Name: "Carrots", Price: models.MustPrice("3.50")})
	addProduct(t, s, models.Product{ID: "p2", Name: "Kale", Price: models.MustPrice("2.00")})
	c := ctx(t)

	order, err := s.CreateOrder(c, models.Order{UserID: "u1", Total: models.MustPrice("9.00")})
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusPending, order.Status)

	_, err = s.AddOrderItem(c, models.OrderItem{ID: "i1", OrderID: order.ID, ProductID: "p1", Quantity: 2, Price: models.MustPrice("3.50")})
	require.NoError(t, err)
	_, err = s.AddOrderItem(c, models.OrderItem{ID: "i2", OrderID: order.ID, ProductID: "p2", Quantity: 1, Price: models.MustPrice("2.00")})
	require.NoError(t, err)

	price := models.MustPrice("9.99")
	_, err = s.UpdateProduct(c, "p1", models.ProductUpdate{Price: &price})
	require.NoError(t, err)

	got, err := s.GetOrder(c, order.ID)
	require.NoError(t, err)
	assert.Equal(t, "9.00", got.Total.String())
	require.Len(t, got.Items, 2)
	assert.Equal(t, "i1", got.Items[0].ID)
	assert.Equal(t, "3.50", got.Items[0].Price.String())
	require.NotNil(t, got.Items[0].Product)
	assert.Equal(t, "9.99", got.Items[0].Product.Price.String())
	assert.Equal(t, 2, got.Items[0].Quantity)

	_, err = s.GetOrder(c, "missing")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func testPlaceOrder(t *testing.T, s storage.Storage) {
	fixture(t, s)
	addProduct(t, s, models.Product{ID: "p1", Name: "Carrots", Price: models.MustPrice("3.50")})
	c := ctx(t)

	placed, err := s.PlaceOrder(c,
		models.Order{UserID: "u1", Total: models.MustPrice("10.50")},
		[]models.OrderItem{{ProductID: "p1", Quantity: 3, Price: models.MustPrice("3.50")}},
	)
	require.NoError(t, err)
	assert.NotEmpty(t, placed.ID)
	assert.Equal(t, models.OrderStatusPending, placed.Status)
	require.Len(t, placed.Items, 1)
	assert.Equal(t, placed.ID, placed.Items[0].OrderID)
	require.NotNil(t, placed.Items[0].Product)
	assert.Equal(t, "Carrots", placed.Items[0].Product.Name)

	empty, err := s.PlaceOrder(c, models.Order{UserID: "u1"}, nil)
	require.NoError(t, err)
	assert.NotNil(t, empty.Items)
	assert.Empty(t, empty.Items)
}

func testPlaceOrderRollsBack(t *testing.T, s storage.Storage) {
	fixture(t, s)
	addProduct(t, s, models.Product{ID: "p1", Name: "Carrots", Price: models.MustPrice("3.50")})
	c := ctx(t)

	_, err := s.PlaceOrder(c,
		models.Order{ID: "o-partial", UserID: "u1", Total: models.MustPrice("7.00")},
		[]models.OrderItem{
			{ID: "dup", ProductID: "p1", Quantity: 1, Price: models.MustPrice("3.50")},
			{ID: "dup", ProductID: "p1", Quantity: 1, Price: models.MustPrice("3.50")},
		},
	)
	require.Error(t, err)

	_, err = s.GetOrder(c, "o-partial")
	assert.ErrorIs(t, err, storage.ErrNotFound)
	orders, err := s.GetOrdersByUser(c, "u1")
	require.NoError(t, err)
	assert.Empty(t, orders)
}

func testOrdersByUser(t *testing.T, s storage.Storage) {
	fixture(t, s)
	c := ctx(t)
	for i, id := range []string{"o1", "o2", "o3"} {
		_, err := s.CreateOrder(c, models.Order{ID: id, UserID: "u1", CreatedAt: at(i)})
		require.NoError(t, err)
	}
	_, err := s.CreateOrder(c, models.Order{ID: "other", UserID: "u2", CreatedAt: at(10)})
	require.NoError(t, err)

	got, err := s.GetOrdersByUser(c, "u1")
	require.NoError(t, err)
	assert.Equal(t, []string{"o3", "o2", "o1"}, ids(got, func(o models.OrderWithItems) string { return o.ID }))
	for _, o := range got {
		assert.NotNil(t, o.Items)
	}

	none, err := s.GetOrdersByUser(c, "nobody")
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)
}

func testUpdateOrderStatus(t *testing.T, s storage.Storage) {
	c := ctx(t)
	order, err := s.CreateOrder(c, models.Order{UserID: "u1"})
	require.NoError(t, err)

	require.NoError(t, s.UpdateOrderStatus(c, order.ID, models.OrderStatusConfirmed))
	got, err := s.GetOrder(c, order.ID)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusConfirmed, got.Status)

	assert.NoError(t, s.UpdateOrderStatus(c, "missing", models.OrderStatusCancelled))
	_, err = s.GetOrder(c, "missing")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func testReviews(t *testing.T, s storage.Storage) {
	fixture(t, s)
	addProduct(t, s, models.Product{ID: "p1", Name: "Carrots", Rating: 4.0, ReviewCount: 2})
	c := ctx(t)

	for i, comment := range []string{"first", "second"} {
		_, err := s.CreateReview(c, models.Review{
			UserID: "u1", ProductID: strPtr("p1"), Rating: 5, Comment: comment, CreatedAt: at(i),
		})
		require.NoError(t, err)
	}
	_, err := s.CreateReview(c, models.Review{UserID: "u1", FarmerID: strPtr("f1"), Rating: 3, Comment: "farm"})
	require.NoError(t, err)

	productReviews, err := s.GetProductReviews(c, "p1")
	require.NoError(t, err)
	assert.Equal(t, []string{"second", "first"}, ids(productReviews, func(r models.Review) string { return r.Comment }))

	farmerReviews, err := s.GetFarmerReviews(c, "f1")
	require.NoError(t, err)
	require.Len(t, farmerReviews, 1)
	assert.Equal(t, 3, farmerReviews[0].Rating)

	none, err := s.GetProductReviews(c, "nothing")
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)

	product, err := s.GetProduct(c, "p1")
	require.NoError(t, err)
	assert.Equal(t, 4.0, product.Rating)
	assert.Equal(t, 2, product.ReviewCount)

	farmer, err := s.GetFarmer(c, "f1")
	require.NoError(t, err)
	assert.Equal(t, 4.5, farmer.Rating)
	assert.Equal(t, 0, farmer.ReviewCount)
}
