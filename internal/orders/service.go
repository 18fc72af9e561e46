// Package orders implements checkout and the order lifecycle on top of a
// storage.Storage.
package orders

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"farmdirect/internal/metrics"
	"farmdirect/internal/models"
	"farmdirect/internal/storage"
)

const defaultLookupConcurrency = 4

// Line is one requested cart entry.
type Line struct {
	ProductID string `json:"productId" binding:"required"`
	Quantity  int    `json:"quantity" binding:"required,gt=0"`
}

type Service struct {
	store       storage.Storage
	log         *zap.Logger
	concurrency int
}

func NewService(store storage.Storage, log *zap.Logger, concurrency int) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	if concurrency <= 0 {
		concurrency = defaultLookupConcurrency
	}
	return &Service{store: store, log: log, concurrency: concurrency}
}

// Place prices every line from the current catalogue and persists the order
// with its items in one write. Duplicate product lines stay separate items.
func (s *Service) Place(ctx context.Context, userID string, lines []Line) (*models.OrderWithItems, error) {
	if userID == "" {
		return nil, &ValidationError{Reason: "missing user"}
	}
	if len(lines) == 0 {
		return nil, &ValidationError{Reason: "cart is empty"}
	}
	for _, line := range lines {
		if line.ProductID == "" {
			return nil, &ValidationError{Reason: "missing product id"}
		}
		if line.Quantity <= 0 {
			return nil, &ValidationError{Reason: fmt.Sprintf("quantity for %s must be positive", line.ProductID)}
		}
	}

	products, err := s.resolve(ctx, lines)
	if err != nil {
		return nil, err
	}

	items := make([]models.OrderItem, 0, len(lines))
	var total models.Price
	for i, line := range lines {
		product := products[i]
		items = append(items, models.OrderItem{
			ProductID: product.ID,
			Quantity:  line.Quantity,
			Price:     product.Price,
		})
		total = total.Add(product.Price.Mul(line.Quantity))
	}

	placed, err := s.store.PlaceOrder(ctx, models.Order{
		UserID: userID,
		Status: models.OrderStatusPending,
		Total:  total,
	}, items)
	if err != nil {
		return nil, err
	}

	metrics.OrdersPlaced.Inc()
	s.log.Info("order placed",
		zap.String("order_id", placed.ID),
		zap.String("user_id", userID),
		zap.Int("items", len(items)),
		zap.String("total", total.String()),
	)
	return placed, nil
}

// resolve loads the product of every line, in line order.
func (s *Service) resolve(ctx context.Context, lines []Line) ([]models.Product, error) {
	products := make([]models.Product, len(lines))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for i, line := range lines {
		g.Go(func() error {
			p, err := s.store.GetProduct(gctx, line.ProductID)
			if errors.Is(err, storage.ErrNotFound) {
				return &ProductNotFoundError{ProductID: line.ProductID}
			}
			if err != nil {
				return err
			}
			if !p.InStock {
				return &OutOfStockError{ProductID: p.ID, Name: p.Name}
			}
			products[i] = p.Product
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return products, nil
}

func (s *Service) Get(ctx context.Context, orderID string) (*models.OrderWithItems, error) {
	return s.store.GetOrder(ctx, orderID)
}

func (s *Service) ListForUser(ctx context.Context, userID string) ([]models.OrderWithItems, error) {
	return s.store.GetOrdersByUser(ctx, userID)
}

// Transition moves an order along its lifecycle. The status check and the
// write are separate calls, so concurrent transitions of one order race; the
// last write wins.
func (s *Service) Transition(ctx context.Context, orderID string, to models.OrderStatus) (*models.OrderWithItems, error) {
	order, err := s.store.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	return s.apply(ctx, order, to)
}

// Cancel lets the owner of an order cancel it. Orders of other users are
// reported as absent.
func (s *Service) Cancel(ctx context.Context, orderID, userID string) (*models.OrderWithItems, error) {
	order, err := s.store.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.UserID != userID {
		return nil, storage.ErrNotFound
	}
	return s.apply(ctx, order, models.OrderStatusCancelled)
}

func (s *Service) apply(ctx context.Context, order *models.OrderWithItems, to models.OrderStatus) (*models.OrderWithItems, error) {
	if !to.Valid() || !order.Status.CanTransitionTo(to) {
		return nil, &TransitionError{OrderID: order.ID, From: order.Status, To: to}
	}
	if err := s.store.UpdateOrderStatus(ctx, order.ID, to); err != nil {
		return nil, err
	}

	s.log.Info("order status changed",
		zap.String("order_id", order.ID),
		zap.String("from", string(order.Status)),
		zap.String("to", string(to)),
	)
	order.Status = to
	return order, nil
}
