package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"farmdirect/internal/logger"
	"farmdirect/internal/models"
	"farmdirect/internal/storage"
)

/*
GET /api/products
- featured=true wins over every other filter
- search and category may be combined
- pagination applies only when both page and limit are given
*/
func GetProducts(store storage.Storage) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /api/products"
		defer handlePanic(c, route)

		search := strings.TrimSpace(c.Query("search"))
		category := strings.TrimSpace(c.Query("category"))
		featured := c.Query("featured") == "true"

		page, err := parsePaginationParams(c.Query("page"), c.Query("limit"))
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, err.Error())
			return
		}

		ctx := c.Request.Context()
		var products []models.ProductWithFarmer
		switch {
		case featured:
			products, err = store.GetFeaturedProducts(ctx)
			products = storage.Window(products, page)
		case search != "" && category != "":
			var matches []models.ProductWithFarmer
			matches, err = store.SearchProducts(ctx, search, storage.Page{})
			products = storage.Window(inCategory(matches, category), page)
		case search != "":
			products, err = store.SearchProducts(ctx, search, page)
		case category != "":
			products, err = store.GetProductsByCategory(ctx, category, page)
		default:
			products, err = store.GetProducts(ctx, page)
		}
		if err != nil {
			respondStoreError(c, route, err, "products not found")
			return
		}

		logger.FromContext(c).Debug("returning products",
			zap.String("route", route),
			zap.String("search", search),
			zap.String("category", category),
			zap.Bool("featured", featured),
			zap.Int("count", len(products)),
		)
		c.JSON(http.StatusOK, products)
	}
}

func inCategory(products []models.ProductWithFarmer, categoryID string) []models.ProductWithFarmer {
	out := make([]models.ProductWithFarmer, 0, len(products))
	for _, p := range products {
		if p.CategoryID == categoryID {
			out = append(out, p)
		}
	}
	return out
}

func GetProduct(store storage.Storage) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /api/products/:id"
		defer handlePanic(c, route)

		product, err := store.GetProduct(c.Request.Context(), c.Param("id"))
		if err != nil {
			respondStoreError(c, route, err, "product not found")
			return
		}
		c.JSON(http.StatusOK, product)
	}
}
