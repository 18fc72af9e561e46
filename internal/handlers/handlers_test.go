package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"golang.org/x/crypto/bcrypt"

	"farmdirect/internal/auth"
	"farmdirect/internal/database"
	"farmdirect/internal/models"
	"farmdirect/internal/orders"
	"farmdirect/internal/payments"
	"farmdirect/internal/storage"
	"farmdirect/internal/storage/sqlstore"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type testEnv struct {
	router    *gin.Engine
	store     storage.Storage
	issuer    *auth.HMAC
	processor *payments.MockProcessor
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db, err := database.OpenSQLite(fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString()), database.SQLOptions{})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})

	hash, err := bcrypt.GenerateFromPassword([]byte("hunter2"), bcrypt.MinCost)
	require.NoError(t, err)

	store := sqlstore.New(db)
	issuer := auth.NewHMAC("test-secret")
	processor := payments.NewMockProcessor(gomock.NewController(t))

	router := NewRouter(Dependencies{
		Store:          store,
		Orders:         orders.NewService(store, nil, 2),
		Verifier:       issuer,
		Issuer:         issuer,
		Admin:          auth.AdminCredentials{Email: "ops@farmdirect.test", PasswordHash: string(hash)},
		Payments:       processor,
		Currency:       "usd",
		AccessTokenTTL: time.Minute,
		RequestTimeout: 5 * time.Second,
	})
	return &testEnv{router: router, store: store, issuer: issuer, processor: processor}
}

func (e *testEnv) token(t *testing.T, userID, role string) string {
	t.Helper()
	raw, err := e.issuer.Issue(auth.Identity{UserID: userID, Email: userID + "@example.com", Role: role}, time.Minute)
	require.NoError(t, err)
	return raw
}

func (e *testEnv) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

// seedCatalogue creates farmer f1 (owned by grower) in category c1 with three
// products, p1 and p3 in c1 and p2 in c2.
func seedCatalogue(t *testing.T, s storage.Storage) {
	t.Helper()
	ctx := context.Background()
	base := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)

	for _, c := range []models.Category{{ID: "c1", Name: "Vegetables"}, {ID: "c2", Name: "Fruit"}} {
		_, err := s.CreateCategory(ctx, c)
		require.NoError(t, err)
	}
	_, err := s.CreateFarmer(ctx, models.Farmer{ID: "f1", UserID: "grower", FarmName: "Green Acres", Location: "Vermont", Rating: 4.8})
	require.NoError(t, err)

	for i, p := range []models.Product{
		{ID: "p1", CategoryID: "c1", Name: "Heirloom Tomatoes", Price: models.MustPrice("3.50"), Featured: true},
		{ID: "p2", CategoryID: "c2", Name: "Tomato Jam", Price: models.MustPrice("6.00")},
		{ID: "p3", CategoryID: "c1", Name: "Kale", Price: models.MustPrice("2.25")},
	} {
		p.FarmerID = "f1"
		p.Unit = "lb"
		p.InStock = true
		p.CreatedAt = base.Add(time.Duration(i) * time.Hour)
		_, err := s.CreateProduct(ctx, p)
		require.NoError(t, err)
	}
}

func productIDs(items []models.ProductWithFarmer) []string {
	out := make([]string, 0, len(items))
	for _, p := range items {
		out = append(out, p.ID)
	}
	return out
}

func TestGetProducts(t *testing.T) {
	env := newTestEnv(t)
	seedCatalogue(t, env.store)

	tests := []struct {
		query string
		want  []string
	}{
		{"", []string{"p3", "p2", "p1"}},
		{"?featured=true", []string{"p1"}},
		{"?category=c1", []string{"p3", "p1"}},
		{"?search=tomato", []string{"p2", "p1"}},
		{"?search=tomato&category=c1", []string{"p1"}},
		{"?page=2&limit=2", []string{"p1"}},
		{"?limit=1", []string{"p3", "p2", "p1"}},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			w := env.do(t, http.MethodGet, "/api/products"+tt.query, "", nil)
			require.Equal(t, http.StatusOK, w.Code)
			assert.Equal(t, tt.want, productIDs(decode[[]models.ProductWithFarmer](t, w)))
		})
	}

	w := env.do(t, http.MethodGet, "/api/products?page=0&limit=2", "", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(t, http.MethodGet, "/api/products?featured=true&page=100000000000000000&limit=100", "", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetProduct(t *testing.T) {
	env := newTestEnv(t)
	seedCatalogue(t, env.store)

	w := env.do(t, http.MethodGet, "/api/products/p1", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := decode[map[string]interface{}](t, w)
	assert.Equal(t, "3.50", body["price"])
	assert.Equal(t, "lb", body["unit"])
	farmer, ok := body["farmer"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "Green Acres", farmer["farmName"])

	w = env.do(t, http.MethodGet, "/api/products/missing", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"error":"product not found"}`, w.Body.String())
}

func TestFarmerOnboarding(t *testing.T) {
	env := newTestEnv(t)
	token := env.token(t, "u-new", auth.RoleUser)
	req := gin.H{"farmName": "Hilltop", "location": "Maine"}

	w := env.do(t, http.MethodPost, "/api/farmers", token, req)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := decode[models.Farmer](t, w)
	assert.Equal(t, "u-new", created.UserID)

	w = env.do(t, http.MethodPost, "/api/farmers", token, req)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = env.do(t, http.MethodPost, "/api/farmers", token, gin.H{"farmName": "No location"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(t, http.MethodGet, "/api/farmers/"+created.ID, "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	got := decode[models.FarmerWithProducts](t, w)
	assert.Nil(t, got.User)
	assert.Empty(t, got.Products)

	w = env.do(t, http.MethodGet, "/api/farmers", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]models.FarmerWithProducts](t, w), 1)
}

func TestFarmerProducts(t *testing.T) {
	env := newTestEnv(t)
	seedCatalogue(t, env.store)
	grower := env.token(t, "grower", auth.RoleUser)
	stranger := env.token(t, "stranger", auth.RoleUser)

	create := gin.H{"name": "Leeks", "categoryId": "c1", "price": "1.75", "unit": "bunch"}
	w := env.do(t, http.MethodPost, "/api/products", stranger, create)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = env.do(t, http.MethodPost, "/api/products", grower, gin.H{"name": "Leeks", "categoryId": "c1", "price": "-1", "unit": "bunch"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(t, http.MethodPost, "/api/products", grower, create)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	product := decode[models.Product](t, w)
	assert.Equal(t, "f1", product.FarmerID)
	assert.True(t, product.InStock)
	assert.Equal(t, "1.75", product.Price.String())

	w = env.do(t, http.MethodPatch, "/api/products/"+product.ID, stranger, gin.H{"price": "9.99"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = env.do(t, http.MethodPatch, "/api/products/"+product.ID, grower, gin.H{"featured": true})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = env.do(t, http.MethodPatch, "/api/products/"+product.ID, grower, gin.H{"price": "2.00", "inStock": false})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	updated := decode[models.Product](t, w)
	assert.Equal(t, "2.00", updated.Price.String())
	assert.False(t, updated.InStock)

	admin := env.token(t, "ops", auth.RoleAdmin)
	w = env.do(t, http.MethodPatch, "/api/products/"+product.ID, admin, gin.H{"featured": true})
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, decode[models.Product](t, w).Featured)

	w = env.do(t, http.MethodPatch, "/api/products/missing", admin, gin.H{"featured": true})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestReviews(t *testing.T) {
	env := newTestEnv(t)
	seedCatalogue(t, env.store)
	token := env.token(t, "u1", auth.RoleUser)

	w := env.do(t, http.MethodPost, "/api/products/p1/reviews", "", gin.H{"rating": 5})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = env.do(t, http.MethodPost, "/api/products/p1/reviews", token, gin.H{"rating": 6})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(t, http.MethodPost, "/api/products/p1/reviews", token, gin.H{"comment": "no rating"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(t, http.MethodPost, "/api/products/p1/reviews", token, gin.H{"rating": 0, "comment": " bruised "})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	review := decode[models.Review](t, w)
	assert.Equal(t, "bruised", review.Comment)
	assert.Equal(t, "u1", review.UserID)

	w = env.do(t, http.MethodPost, "/api/products/missing/reviews", token, gin.H{"rating": 4})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = env.do(t, http.MethodPost, "/api/farmers/f1/reviews", token, gin.H{"rating": 4})
	require.Equal(t, http.StatusCreated, w.Code)

	w = env.do(t, http.MethodGet, "/api/products/p1/reviews", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]models.Review](t, w), 1)

	w = env.do(t, http.MethodGet, "/api/farmers/f1/reviews", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]models.Review](t, w), 1)

	w = env.do(t, http.MethodGet, "/api/farmers/nobody/reviews", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())
}

func TestUserSync(t *testing.T) {
	env := newTestEnv(t)
	token := env.token(t, "firebase-uid", auth.RoleUser)

	w := env.do(t, http.MethodGet, "/api/users/me", token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = env.do(t, http.MethodPost, "/api/users/me", token, gin.H{"name": "Ada"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	user := decode[models.User](t, w)
	assert.Equal(t, "firebase-uid", user.ID)
	assert.Equal(t, "firebase-uid@example.com", user.Email)
	assert.Equal(t, "Ada", user.Name)

	w = env.do(t, http.MethodPost, "/api/users/me", token, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = env.do(t, http.MethodGet, "/api/users/me", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Ada", decode[models.User](t, w).Name)
}

func TestOrderLifecycle(t *testing.T) {
	env := newTestEnv(t)
	seedCatalogue(t, env.store)
	buyer := env.token(t, "buyer", auth.RoleUser)
	other := env.token(t, "other", auth.RoleUser)
	admin := env.token(t, "ops", auth.RoleAdmin)

	w := env.do(t, http.MethodPost, "/api/orders", buyer, gin.H{"items": []gin.H{}})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(t, http.MethodPost, "/api/orders", buyer, gin.H{"items": []gin.H{{"productId": "missing", "quantity": 1}}})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "missing")

	w = env.do(t, http.MethodPost, "/api/orders", buyer, gin.H{"items": []gin.H{
		{"productId": "p1", "quantity": 2},
		{"productId": "p3", "quantity": 1},
	}})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	order := decode[models.OrderWithItems](t, w)
	assert.Equal(t, "9.25", order.Total.String())
	assert.Equal(t, models.OrderStatusPending, order.Status)
	assert.Len(t, order.Items, 2)

	w = env.do(t, http.MethodGet, "/api/orders", buyer, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]models.OrderWithItems](t, w), 1)

	w = env.do(t, http.MethodGet, "/api/orders/"+order.ID, other, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	w = env.do(t, http.MethodGet, "/api/orders/"+order.ID, admin, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	status := "/api/admin/orders/" + order.ID + "/status"
	w = env.do(t, http.MethodPatch, status, buyer, gin.H{"status": "confirmed"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = env.do(t, http.MethodPatch, status, admin, gin.H{"status": "delivered"})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = env.do(t, http.MethodPatch, status, admin, gin.H{"status": "confirmed"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, models.OrderStatusConfirmed, decode[models.OrderWithItems](t, w).Status)

	w = env.do(t, http.MethodPost, "/api/orders/"+order.ID+"/cancel", other, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = env.do(t, http.MethodPost, "/api/orders/"+order.ID+"/cancel", buyer, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, models.OrderStatusCancelled, decode[models.OrderWithItems](t, w).Status)

	w = env.do(t, http.MethodPost, "/api/orders/"+order.ID+"/cancel", buyer, nil)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = env.do(t, http.MethodPatch, "/api/admin/orders/missing/status", admin, gin.H{"status": "confirmed"})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCategories(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodPost, "/api/categories", env.token(t, "u1", auth.RoleUser), gin.H{"name": "Dairy"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = env.do(t, http.MethodPost, "/api/categories", env.token(t, "ops", auth.RoleAdmin), gin.H{"name": "Dairy", "icon": "milk"})
	require.Equal(t, http.StatusCreated, w.Code)

	w = env.do(t, http.MethodGet, "/api/categories", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	categories := decode[[]models.Category](t, w)
	require.Len(t, categories, 1)
	assert.Equal(t, "milk", categories[0].Icon)
}

func TestAdminLogin(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodPost, "/api/admin/login", "", gin.H{"email": "ops@farmdirect.test", "password": "nope"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = env.do(t, http.MethodPost, "/api/admin/login", "", gin.H{"email": "ops@farmdirect.test"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(t, http.MethodPost, "/api/admin/login", "", gin.H{"email": "ops@farmdirect.test", "password": "hunter2"})
	require.Equal(t, http.StatusOK, w.Code)
	body := decode[map[string]interface{}](t, w)
	token, _ := body["token"].(string)
	require.NotEmpty(t, token)

	id, err := env.issuer.Verify(context.Background(), token)
	require.NoError(t, err)
	assert.True(t, id.IsAdmin())
}

func TestCreatePaymentIntent(t *testing.T) {
	env := newTestEnv(t)

	env.processor.EXPECT().
		CreatePaymentIntent(gomock.Any(), payments.IntentRequest{Amount: 1149, Currency: "usd"}).
		Return(&payments.Intent{ID: "pi_1", ClientSecret: "pi_1_secret"}, nil)
	w := env.do(t, http.MethodPost, "/api/create-payment-intent", "", gin.H{"amount": 1149})
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"clientSecret":"pi_1_secret"}`, w.Body.String())

	env.processor.EXPECT().
		CreatePaymentIntent(gomock.Any(), gomock.Any()).
		Return(nil, errors.New("card network down"))
	w = env.do(t, http.MethodPost, "/api/create-payment-intent", "", gin.H{"amount": 500, "currency": "eur"})
	assert.Equal(t, http.StatusBadGateway, w.Code)

	env.processor.EXPECT().
		CreatePaymentIntent(gomock.Any(), gomock.Any()).
		Return(nil, payments.ErrNotConfigured)
	w = env.do(t, http.MethodPost, "/api/create-payment-intent", "", gin.H{"amount": 500})
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	w = env.do(t, http.MethodPost, "/api/create-payment-intent", "", gin.H{"amount": 0})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCreatePaymentIntentForOrder(t *testing.T) {
	env := newTestEnv(t)
	seedCatalogue(t, env.store)
	buyer := env.token(t, "buyer", auth.RoleUser)

	w := env.do(t, http.MethodPost, "/api/orders", buyer, gin.H{"items": []gin.H{{"productId": "p1", "quantity": 2}}})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	order := decode[models.OrderWithItems](t, w)

	env.processor.EXPECT().
		CreatePaymentIntent(gomock.Any(), payments.IntentRequest{
			Amount:   700,
			Currency: "usd",
			Metadata: map[string]string{"order_id": order.ID},
		}).
		Return(&payments.Intent{ID: "pi_2", ClientSecret: "pi_2_secret"}, nil)
	w = env.do(t, http.MethodPost, "/api/create-payment-intent", "", gin.H{"orderId": order.ID})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.JSONEq(t, `{"clientSecret":"pi_2_secret"}`, w.Body.String())

	w = env.do(t, http.MethodPost, "/api/create-payment-intent", "", gin.H{"orderId": order.ID, "amount": 1})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(t, http.MethodPost, "/api/create-payment-intent", "", gin.H{"orderId": "missing"})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = env.do(t, http.MethodPost, "/api/orders/"+order.ID+"/cancel", buyer, nil)
	require.Equal(t, http.StatusOK, w.Code)
	w = env.do(t, http.MethodPost, "/api/create-payment-intent", "", gin.H{"orderId": order.ID})
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t)
	w := env.do(t, http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestParsePaginationParams(t *testing.T) {
	tests := []struct {
		page, limit string
		want        storage.Page
		wantErr     bool
	}{
		{"", "", storage.Page{}, false},
		{"2", "", storage.Page{}, false},
		{"1", "10", storage.Page{Limit: 10}, false},
		{"3", "10", storage.Page{Limit: 10, Offset: 20}, false},
		{"1", "1000", storage.Page{Limit: maxPageLimit}, false},
		{"0", "10", storage.Page{}, true},
		{"x", "10", storage.Page{}, true},
		{"1", "-3", storage.Page{}, true},
		{"100000000000000000", "100", storage.Page{}, true},
		{"99999999999999999999", "10", storage.Page{}, true},
	}
	for _, tt := range tests {
		got, err := parsePaginationParams(tt.page, tt.limit)
		if tt.wantErr {
			assert.Error(t, err, "%q/%q", tt.page, tt.limit)
			continue
		}
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
	}
}
