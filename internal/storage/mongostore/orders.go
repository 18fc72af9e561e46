package mongostore

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"farmdirect/internal/metrics"
	"farmdirect/internal/models"
	"farmdirect/internal/storage"
)

func (s *Store) withItems(ctx context.Context, orders []models.Order) ([]models.OrderWithItems, error) {
	if len(orders) == 0 {
		return []models.OrderWithItems{}, nil
	}

	orderIDs := storage.Distinct(orders, func(o models.Order) string { return o.ID })
	items, err := findAll[models.OrderItem](ctx, s.orderItems(), "order items",
		bson.M{"orderId": bson.M{"$in": orderIDs}},
		options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}),
	)
	if err != nil {
		return nil, err
	}

	productIDs := storage.Distinct(items, func(i models.OrderItem) string { return i.ProductID })
	products, err := findByIDs[models.Product](ctx, s.products(), "order item products", productIDs)
	if err != nil {
		return nil, err
	}

	return storage.AssembleOrders(orders, items, products), nil
}

func (s *Store) GetOrder(ctx context.Context, id string) (*models.OrderWithItems, error) {
	defer metrics.TrackDBOperation("orders.get")(time.Now())

	order, err := findOne[models.Order](ctx, s.orders(), "get order", bson.M{"_id": id})
	if err != nil {
		return nil, err
	}
	hydrated, err := s.withItems(ctx, []models.Order{*order})
	if err != nil {
		return nil, err
	}
	return &hydrated[0], nil
}

func (s *Store) GetOrdersByUser(ctx context.Context, userID string) ([]models.OrderWithItems, error) {
	defer metrics.TrackDBOperation("orders.by_user")(time.Now())

	orders, err := findAll[models.Order](ctx, s.orders(), "orders by user",
		bson.M{"userId": userID},
		options.Find().SetSort(newestFirst),
	)
	if err != nil {
		return nil, err
	}
	return s.withItems(ctx, orders)
}

func (s *Store) CreateOrder(ctx context.Context, order models.Order) (*models.Order, error) {
	defer metrics.TrackDBOperation("orders.create")(time.Now())

	storage.PrepareOrder(&order)
	if err := insert(ctx, s.orders(), "create order", order); err != nil {
		return nil, err
	}
	return &order, nil
}

func (s *Store) AddOrderItem(ctx context.Context, item models.OrderItem) (*models.OrderItem, error) {
	defer metrics.TrackDBOperation("orders.add_item")(time.Now())

	storage.PrepareOrderItem(&item)
	if err := insert(ctx, s.orderItems(), "add order item", item); err != nil {
		return nil, err
	}
	return &item, nil
}

// PlaceOrder needs a replica set or sharded cluster: the order and its items
// are written in one multi-document transaction.
func (s *Store) PlaceOrder(ctx context.Context, order models.Order, items []models.OrderItem) (*models.OrderWithItems, error) {
	defer metrics.TrackDBOperation("orders.place")(time.Now())

	storage.PrepareOrder(&order)
	docs := make([]interface{}, 0, len(items))
	for i := range items {
		items[i].OrderID = order.ID
		storage.PrepareOrderItem(&items[i])
		docs = append(docs, items[i])
	}

	session, err := s.client.StartSession()
	if err != nil {
		return nil, fmt.Errorf("place order session: %w", err)
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sessCtx mongo.SessionContext) (interface{}, error) {
		if _, err := s.orders().InsertOne(sessCtx, order); err != nil {
			return nil, err
		}
		if len(docs) == 0 {
			return nil, nil
		}
		_, err := s.orderItems().InsertMany(sessCtx, docs)
		return nil, err
	})
	if err != nil {
		return nil, fmt.Errorf("place order: %w", err)
	}

	return s.GetOrder(ctx, order.ID)
}

func (s *Store) UpdateOrderStatus(ctx context.Context, orderID string, status models.OrderStatus) error {
	defer metrics.TrackDBOperation("orders.update_status")(time.Now())

	_, err := s.orders().UpdateOne(ctx,
		bson.M{"_id": orderID},
		bson.M{"$set": bson.M{"status": status}},
	)
	if err != nil {
		return fmt.Errorf("update order status: %w", err)
	}
	return nil
}
