package orders

import (
	"fmt"

	"farmdirect/internal/models"
)

type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return "invalid order: " + e.Reason
}

type ProductNotFoundError struct {
	ProductID string
}

func (e *ProductNotFoundError) Error() string {
	return fmt.Sprintf("product not found: %s", e.ProductID)
}

type OutOfStockError struct {
	ProductID string
	Name      string
}

func (e *OutOfStockError) Error() string {
	return fmt.Sprintf("product out of stock: %s", e.ProductID)
}

// TransitionError reports a status change the lifecycle does not allow.
type TransitionError struct {
	OrderID string
	From    models.OrderStatus
	To      models.OrderStatus
}

func (e *TransitionError) Error() string {
	if !e.To.Valid() {
		return fmt.Sprintf("unknown order status %q", e.To)
	}
	return fmt.Sprintf("order %s cannot move from %s to %s", e.OrderID, e.From, e.To)
}
