package handlers

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"farmdirect/internal/auth"
	"farmdirect/internal/middleware"
	"farmdirect/internal/orders"
	"farmdirect/internal/payments"
	"farmdirect/internal/storage"
)

type Dependencies struct {
	Store          storage.Storage
	Orders         *orders.Service
	Verifier       auth.Verifier
	Issuer         *auth.HMAC
	Admin          auth.AdminCredentials
	Payments       payments.Processor
	Currency       string
	AccessTokenTTL time.Duration
	RequestTimeout time.Duration
	Logger         *zap.Logger
}

func NewRouter(deps Dependencies) *gin.Engine {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if deps.Payments == nil {
		deps.Payments = payments.Disabled{}
	}

	r := gin.New()
	r.Use(
		gin.Recovery(),
		middleware.RequestID(deps.Logger),
		middleware.Metrics(),
		middleware.RequestLogger(),
		middleware.Deadline(deps.RequestTimeout),
	)

	r.GET("/healthz", Health(deps.Store))
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	userAuth := middleware.UserAuth(deps.Verifier)
	adminAuth := middleware.AdminAuth(deps.Verifier)

	api := r.Group("/api")
	{
		api.GET("/categories", GetCategories(deps.Store))
		api.POST("/categories", adminAuth, CreateCategory(deps.Store))

		api.GET("/products", GetProducts(deps.Store))
		api.POST("/products", userAuth, CreateProduct(deps.Store))
		api.GET("/products/:id", GetProduct(deps.Store))
		api.PATCH("/products/:id", userAuth, UpdateProduct(deps.Store))
		api.GET("/products/:id/reviews", GetProductReviews(deps.Store))
		api.POST("/products/:id/reviews", userAuth, CreateProductReview(deps.Store))

		api.GET("/farmers", GetFeaturedFarmers(deps.Store))
		api.POST("/farmers", userAuth, CreateFarmer(deps.Store))
		api.GET("/farmers/:id", GetFarmer(deps.Store))
		api.GET("/farmers/:id/reviews", GetFarmerReviews(deps.Store))
		api.POST("/farmers/:id/reviews", userAuth, CreateFarmerReview(deps.Store))

		api.GET("/users/me", userAuth, GetMe(deps.Store))
		api.POST("/users/me", userAuth, SyncMe(deps.Store))

		api.GET("/orders", userAuth, GetOrders(deps.Orders))
		api.POST("/orders", userAuth, CreateOrder(deps.Orders))
		api.GET("/orders/:id", userAuth, GetOrder(deps.Orders))
		api.POST("/orders/:id/cancel", userAuth, CancelOrder(deps.Orders))

		api.POST("/admin/login", AdminLogin(deps.Admin, deps.Issuer, deps.AccessTokenTTL))
		api.POST("/create-payment-intent", CreatePaymentIntent(deps.Orders, deps.Payments, deps.Currency))
	}

	admin := api.Group("/admin")
	admin.Use(adminAuth)
	{
		admin.PATCH("/orders/:id/status", UpdateOrderStatus(deps.Orders))
	}

	return r
}
