// Command seed loads reference categories and a demo farm into the configured
// store. Running it twice creates a second copy of the products.
package main

import (
	"context"
	"errors"
	"log"
	"time"

	"go.uber.org/zap"

	"farmdirect/internal/app"
	"farmdirect/internal/config"
	"farmdirect/internal/logger"
	"farmdirect/internal/models"
	"farmdirect/internal/storage"
)

const demoUserID = "demo-farmer"

var categories = []models.Category{
	{ID: "vegetables", Name: "Vegetables", Icon: "carrot"},
	{ID: "fruits", Name: "Fruits", Icon: "apple"},
	{ID: "dairy", Name: "Dairy", Icon: "milk"},
	{ID: "bakery", Name: "Bakery", Icon: "bread"},
	{ID: "honey", Name: "Honey & Preserves", Icon: "jar"},
}

var products = []models.Product{
	{CategoryID: "vegetables", Name: "Heirloom Carrots", Description: "Sweet rainbow carrots, harvested weekly.", Price: models.MustPrice("3.50"), Unit: "lb", InStock: true, Featured: true, Rating: 4.8, ReviewCount: 24},
	{CategoryID: "vegetables", Name: "Lacinato Kale", Description: "Tender dinosaur kale bunches.", Price: models.MustPrice("2.75"), Unit: "bunch", InStock: true, Rating: 4.6, ReviewCount: 12},
	{CategoryID: "fruits", Name: "Honeycrisp Apples", Description: "Crisp orchard apples.", Price: models.MustPrice("4.25"), Unit: "lb", InStock: true, Featured: true, Rating: 4.9, ReviewCount: 31},
	{CategoryID: "dairy", Name: "Pasture Eggs", Description: "A dozen free range eggs.", Price: models.MustPrice("6.00"), Unit: "dozen", InStock: true, Featured: true, Rating: 4.7, ReviewCount: 40},
	{CategoryID: "honey", Name: "Raw Wildflower Honey", Description: "Unfiltered spring honey.", Price: models.MustPrice("12.00"), Unit: "jar", InStock: false, Rating: 5.0, ReviewCount: 8},
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}
	zlog, err := logger.New(cfg.IsDevelopment())
	if err != nil {
		log.Fatal(err)
	}
	defer zlog.Sync()

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	store, closeStore, err := app.OpenStore(ctx, cfg, zlog)
	if err != nil {
		zlog.Fatal("storage unavailable", zap.Error(err))
	}
	defer closeStore(context.Background())

	if err := seed(ctx, store, zlog); err != nil {
		zlog.Fatal("seed failed", zap.Error(err))
	}
	zlog.Info("seed complete")
}

func seed(ctx context.Context, store storage.Storage, log *zap.Logger) error {
	existing, err := store.GetCategories(ctx)
	if err != nil {
		return err
	}
	known := make(map[string]bool, len(existing))
	for _, c := range existing {
		known[c.ID] = true
	}
	for _, c := range categories {
		if known[c.ID] {
			continue
		}
		if _, err := store.CreateCategory(ctx, c); err != nil {
			return err
		}
		log.Info("category created", zap.String("category_id", c.ID))
	}

	if _, err := store.GetUser(ctx, demoUserID); errors.Is(err, storage.ErrNotFound) {
		if _, err := store.CreateUser(ctx, models.User{ID: demoUserID, Email: "demo@farmdirect.test", Name: "Demo Farmer"}); err != nil {
			return err
		}
	} else if err != nil {
		return err
	}

	farmer, err := store.GetFarmerByUserID(ctx, demoUserID)
	if errors.Is(err, storage.ErrNotFound) {
		farmer, err = store.CreateFarmer(ctx, models.Farmer{
			UserID:      demoUserID,
			FarmName:    "Green Valley Farm",
			Bio:         "Family farm growing organic produce since 1987.",
			Location:    "Hudson Valley, NY",
			Rating:      4.8,
			ReviewCount: 115,
		})
	}
	if err != nil {
		return err
	}

	for _, p := range products {
		p.FarmerID = farmer.ID
		created, err := store.CreateProduct(ctx, p)
		if err != nil {
			return err
		}
		log.Info("product created", zap.String("product_id", created.ID), zap.String("name", created.Name))
	}
	return nil
}
