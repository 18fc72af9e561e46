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

// withItems loads the items of orders and their products, one query each.
func (s *Store) withItems(ctx context.Context, orders []models.Order) ([]models.OrderWithItems, error) {
	if len(orders) == 0 {
		return []models.OrderWithItems{}, nil
	}

	orderIDs := storage.Distinct(orders, func(o models.Order) string { return o.ID })
	var items []models.OrderItem
	if err := s.db.WithContext(ctx).Where("order_id IN ?", orderIDs).Order("id ASC").Find(&items).Error; err != nil {
		return nil, fmt.Errorf("order items: %w", err)
	}

	var products []models.Product
	productIDs := storage.Distinct(items, func(i models.OrderItem) string { return i.ProductID })
	if err := s.findByIDs(ctx, &products, productIDs); err != nil {
		return nil, fmt.Errorf("order item products: %w", err)
	}

	return storage.AssembleOrders(orders, items, products), nil
}

func (s *Store) GetOrder(ctx context.Context, id string) (*models.OrderWithItems, error) {
	defer metrics.TrackDBOperation("orders.get")(time.Now())

	var order models.Order
	if err := s.db.WithContext(ctx).Where("id = ?", id).Take(&order).Error; err != nil {
		return nil, lookupError("get order", err)
	}

	hydrated, err := s.withItems(ctx, []models.Order{order})
	if err != nil {
		return nil, err
	}
	return &hydrated[0], nil
}

func (s *Store) GetOrdersByUser(ctx context.Context, userID string) ([]models.OrderWithItems, error) {
	defer metrics.TrackDBOperation("orders.by_user")(time.Now())

	orders := make([]models.Order, 0)
	if err := newestFirst(s.db.WithContext(ctx).Where("user_id = ?", userID)).Find(&orders).Error; err != nil {
		return nil, fmt.Errorf("orders by user: %w", err)
	}
	return s.withItems(ctx, orders)
}

// CreateOrder writes the header only and does not check Total against items.
func (s *Store) CreateOrder(ctx context.Context, order models.Order) (*models.Order, error) {
	defer metrics.TrackDBOperation("orders.create")(time.Now())

	storage.PrepareOrder(&order)
	if err := s.db.WithContext(ctx).Create(&order).Error; err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}
	return &order, nil
}

func (s *Store) AddOrderItem(ctx context.Context, item models.OrderItem) (*models.OrderItem, error) {
	defer metrics.TrackDBOperation("orders.add_item")(time.Now())

	storage.PrepareOrderItem(&item)
	if err := s.db.WithContext(ctx).Create(&item).Error; err != nil {
		return nil, fmt.Errorf("add order item: %w", err)
	}
	return &item, nil
}

func (s *Store) PlaceOrder(ctx context.Context, order models.Order, items []models.OrderItem) (*models.OrderWithItems, error) {
	defer metrics.TrackDBOperation("orders.place")(time.Now())

	storage.PrepareOrder(&order)
	for i := range items {
		items[i].OrderID = order.ID
		storage.PrepareOrderItem(&items[i])
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&order).Error; err != nil {
			return err
		}
		if len(items) == 0 {
			return nil
		}
		return tx.Create(&items).Error
	})
	if err != nil {
		return nil, fmt.Errorf("place order: %w", err)
	}

	return s.GetOrder(ctx, order.ID)
}

func (s *Store) UpdateOrderStatus(ctx context.Context, orderID string, status models.OrderStatus) error {
	defer metrics.TrackDBOperation("orders.update_status")(time.Now())

	err := s.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ?", orderID).
		Update("status", status).Error
	if err != nil {
		return fmt.Errorf("update order status: %w", err)
	}
	return nil
}
