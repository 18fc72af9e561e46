package storage

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"farmdirect/internal/models"
)

func TestPrepareOrderDefaults(t *testing.T) {
	var o models.Order
	PrepareOrder(&o)

	assert.NotEmpty(t, o.ID)
	assert.Equal(t, models.OrderStatusPending, o.Status)
	assert.False(t, o.CreatedAt.IsZero())
	assert.Equal(t, time.UTC, o.CreatedAt.Location())
}

func TestPrepareKeepsCallerValues(t *testing.T) {
	local := time.Date(2024, 1, 2, 3, 4, 5, 678901234, time.FixedZone("X", 3600))
	p := models.Product{ID: "p1", CreatedAt: local}
	PrepareProduct(&p)

	assert.Equal(t, "p1", p.ID)
	assert.True(t, p.CreatedAt.Equal(local.Truncate(time.Millisecond)))
	assert.Equal(t, time.UTC, p.CreatedAt.Location())

	o := models.Order{Status: models.OrderStatusConfirmed}
	PrepareOrder(&o)
	assert.Equal(t, models.OrderStatusConfirmed, o.Status)
}

func TestDistinct(t *testing.T) {
	got := Distinct([]string{"b", "a", "", "b", "c", "a"}, func(s string) string { return s })
	assert.Equal(t, []string{"b", "a", "c"}, got)
	assert.Empty(t, Distinct([]string{}, func(s string) string { return s }))
}

func TestWindow(t *testing.T) {
	items := []int{1, 2, 3, 4, 5}
	assert.Equal(t, items, Window(items, Page{}))
	assert.Equal(t, []int{3, 4}, Window(items, Page{Limit: 2, Offset: 2}))
	assert.Equal(t, []int{5}, Window(items, Page{Limit: 2, Offset: 4}))
	assert.Empty(t, Window(items, Page{Limit: 2, Offset: 9}))
	assert.Equal(t, []int{1, 2}, Window(items, Page{Limit: 2, Offset: -8446744073709551616}))
	assert.Equal(t, 0, Page{Offset: -1}.Start())
}

func TestAssembleProductsLeavesDanglingReferencesNil(t *testing.T) {
	products := []models.Product{
		{ID: "p1", FarmerID: "f1", CategoryID: "c1"},
		{ID: "p2", FarmerID: "gone", CategoryID: "c1"},
	}
	farmers := []models.Farmer{{ID: "f1", FarmName: "Green Acres"}}
	categories := []models.Category{{ID: "c1", Name: "Vegetables"}}

	got := AssembleProducts(products, farmers, categories)
	require.Len(t, got, 2)
	require.NotNil(t, got[0].Farmer)
	assert.Equal(t, "Green Acres", got[0].Farmer.FarmName)
	assert.Nil(t, got[1].Farmer)
	require.NotNil(t, got[1].Category)
	assert.Equal(t, "Vegetables", got[1].Category.Name)
}

func TestAssembleOrdersGroupsAndSortsItems(t *testing.T) {
	orders := []models.Order{{ID: "o1"}, {ID: "o2"}}
	items := []models.OrderItem{
		{ID: "i3", OrderID: "o1", ProductID: "p1"},
		{ID: "i1", OrderID: "o1", ProductID: "missing"},
	}
	products := []models.Product{{ID: "p1", Name: "Kale"}}

	got := AssembleOrders(orders, items, products)
	require.Len(t, got, 2)
	require.Len(t, got[0].Items, 2)
	assert.Equal(t, "i1", got[0].Items[0].ID)
	assert.Nil(t, got[0].Items[0].Product)
	require.NotNil(t, got[0].Items[1].Product)
	assert.Equal(t, "Kale", got[0].Items[1].Product.Name)
	assert.NotNil(t, got[1].Items)
	assert.Empty(t, got[1].Items)
}

func TestAssembleFarmersAttachesOwners(t *testing.T) {
	farmers := []models.Farmer{{ID: "f1", UserID: "u1"}, {ID: "f2", UserID: "ghost"}}
	users := []models.User{{ID: "u1", Name: "Ada"}}
	products := []models.Product{{ID: "p1", FarmerID: "f1"}, {ID: "p2", FarmerID: "f1"}}

	got := AssembleFarmers(farmers, users, products)
	require.Len(t, got, 2)
	require.NotNil(t, got[0].User)
	assert.Len(t, got[0].Products, 2)
	assert.Nil(t, got[1].User)
	assert.NotNil(t, got[1].Products)
}
