package models

import "time"

// OrderStatus is the lifecycle state of an order.
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusConfirmed OrderStatus = "confirmed"
	OrderStatusDelivered OrderStatus = "delivered"
	OrderStatusCancelled OrderStatus = "cancelled"
)

// orderTransitions lists the legal next states. Statuses missing from the map
// are terminal.
var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderStatusPending:   {OrderStatusConfirmed, OrderStatusCancelled},
	OrderStatusConfirmed: {OrderStatusDelivered, OrderStatusCancelled},
}

func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusPending, OrderStatusConfirmed, OrderStatusDelivered, OrderStatusCancelled:
		return true
	}
	return false
}

func (s OrderStatus) Terminal() bool {
	_, ok := orderTransitions[s]
	return s.Valid() && !ok
}

func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	for _, allowed := range orderTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Order is the persisted order header. Items live in their own table.
type Order struct {
	ID        string      `gorm:"primaryKey;size:128" bson:"_id" json:"id"`
	UserID    string      `gorm:"index;size:128;not null" bson:"userId" json:"userId"`
	Status    OrderStatus `gorm:"size:32;not null" bson:"status" json:"status"`
	Total     Price       `gorm:"not null" bson:"total" json:"total"`
	CreatedAt time.Time   `gorm:"not null;index" bson:"createdAt" json:"createdAt"`
}

// OrderItem is one line of an order. Price is captured when the line is
// written and never follows later product price changes.
type OrderItem struct {
	ID        string `gorm:"primaryKey;size:128" bson:"_id" json:"id"`
	OrderID   string `gorm:"index;size:128;not null" bson:"orderId" json:"orderId"`
	ProductID string `gorm:"index;size:128;not null" bson:"productId" json:"productId"`
	Quantity  int    `gorm:"not null" bson:"quantity" json:"quantity"`
	Price     Price  `gorm:"not null" bson:"price" json:"price"`
}
