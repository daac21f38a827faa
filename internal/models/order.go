package models

import (
	"fmt"
	"time"
)

// OrderType represents the type of an order.
type OrderType string

const (
	DineIn   OrderType = "dine_in"
	Takeaway OrderType = "takeaway"
	Delivery OrderType = "delivery"
)

// OrderStatus represents the status of an order.
type OrderStatus string

const (
	OrderPending   OrderStatus = "pending"
	OrderConfirmed OrderStatus = "confirmed"
	OrderServed    OrderStatus = "served"
	OrderBilled    OrderStatus = "billed"
	OrderPaid      OrderStatus = "paid"
	OrderCancelled OrderStatus = "cancelled"
	OrderCompleted OrderStatus = "completed"
)

// PaymentProgress represents how much of an order has been settled.
type PaymentProgress string

const (
	PaymentPending   PaymentProgress = "pending"
	PaymentPartial   PaymentProgress = "partial"
	PaymentCompleted PaymentProgress = "completed"
)

// ItemStatus represents the status of one order item.
type ItemStatus string

const (
	ItemPending       ItemStatus = "pending"
	ItemSentToKitchen ItemStatus = "sent_to_kitchen"
	ItemPreparing     ItemStatus = "preparing"
	ItemReady         ItemStatus = "ready"
	ItemServed        ItemStatus = "served"
	ItemCancelled     ItemStatus = "cancelled"
)

// Addon is one extra applied to an order item, stored as jsonb.
type Addon struct {
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	Quantity int     `json:"quantity"`
}

// Order is one billable unit of items.
type Order struct {
	ID            int             `json:"id"`
	Number        string          `json:"order_number"`
	Type          OrderType       `json:"order_type"`
	TableID       *int            `json:"table_id,omitempty"`
	SessionID     *int            `json:"session_id,omitempty"`
	GuestCount    int             `json:"guest_count"`
	GuestName     *string         `json:"guest_name,omitempty"`
	GuestPhone    *string         `json:"guest_phone,omitempty"`
	Status        OrderStatus     `json:"status"`
	PaymentStatus PaymentProgress `json:"payment_status"`
	Subtotal      float64         `json:"subtotal"`
	TaxAmount     float64         `json:"tax_amount"`
	TotalAmount   float64         `json:"total_amount"`
	CreatedBy     int             `json:"created_by"`
	CancelReason  *string         `json:"cancel_reason,omitempty"`
	Items         []OrderItem     `json:"items,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// OrderItem is one menu line on an order. Name, price and station are
// snapshots taken at add time so later catalog edits never change an
// open order.
type OrderItem struct {
	ID           int        `json:"id"`
	OrderID      int        `json:"order_id"`
	MenuItemID   int        `json:"menu_item_id"`
	Name         string     `json:"name"`
	VariantName  *string    `json:"variant_name,omitempty"`
	Station      string     `json:"station"`
	StationClass string     `json:"station_class"`
	Quantity     int        `json:"quantity"`
	UnitPrice    float64    `json:"unit_price"`
	TaxAmount    float64    `json:"tax_amount"`
	TotalPrice   float64    `json:"total_price"`
	Addons       []Addon    `json:"addons"`
	Instructions *string    `json:"instructions,omitempty"`
	Status       ItemStatus `json:"status"`
	KotTicketID  *int       `json:"kot_ticket_id,omitempty"`
	CancelReason *string    `json:"cancel_reason,omitempty"`
	CancelledBy  *int       `json:"cancelled_by,omitempty"`
	CancelledAt  *time.Time `json:"cancelled_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
}

// CreateOrderRequest is the payload for POST /orders.
type CreateOrderRequest struct {
	OrderType  string             `json:"order_type"`
	TableID    *int               `json:"table_id,omitempty"`
	GuestCount int                `json:"guest_count"`
	GuestName  *string            `json:"guest_name,omitempty"`
	GuestPhone *string            `json:"guest_phone,omitempty"`
	Items      []OrderItemRequest `json:"items,omitempty"`
}

// OrderItemRequest is one requested line when creating an order or
// adding items to it.
type OrderItemRequest struct {
	MenuItemID   int     `json:"menu_item_id"`
	VariantID    *int    `json:"variant_id,omitempty"`
	Quantity     int     `json:"quantity"`
	Addons       []Addon `json:"addons,omitempty"`
	Instructions *string `json:"instructions,omitempty"`
}

// AddItemsRequest is the payload for POST /orders/{id}/items.
type AddItemsRequest struct {
	Items []OrderItemRequest `json:"items"`
}

// CancelRequest is the shared payload for item/order/ticket/invoice
// cancellation.
type CancelRequest struct {
	Reason string `json:"reason"`
}

// Validate checks the create-order payload.
func (r *CreateOrderRequest) Validate() error {
	switch OrderType(r.OrderType) {
	case DineIn:
		if r.TableID == nil {
			return fmt.Errorf("table_id is required for dine_in orders")
		}
	case Takeaway, Delivery:
		if r.TableID != nil {
			return fmt.Errorf("table_id must not be present for %s orders", r.OrderType)
		}
	default:
		return fmt.Errorf("order_type must be one of: dine_in, takeaway, delivery")
	}
	if r.GuestCount < 0 || r.GuestCount > 50 {
		return fmt.Errorf("guest_count must be between 0 and 50")
	}
	return validateItemRequests(r.Items, true)
}

// Validate checks the add-items payload.
func (r *AddItemsRequest) Validate() error {
	return validateItemRequests(r.Items, false)
}

// Validate checks a cancellation payload.
func (r *CancelRequest) Validate() error {
	if r.Reason == "" {
		return fmt.Errorf("reason is required")
	}
	if len(r.Reason) > 100 {
		return fmt.Errorf("reason must not exceed 100 characters")
	}
	return nil
}

func validateItemRequests(items []OrderItemRequest, allowEmpty bool) error {
	if len(items) == 0 {
		if allowEmpty {
			return nil
		}
		return fmt.Errorf("items array cannot be empty")
	}
	if len(items) > 50 {
		return fmt.Errorf("items array cannot contain more than 50 items")
	}
	for i, item := range items {
		prefix := fmt.Sprintf("items[%d]", i)
		if item.MenuItemID < 1 {
			return fmt.Errorf("%s.menu_item_id is required", prefix)
		}
		if item.Quantity < 1 || item.Quantity > 20 {
			return fmt.Errorf("%s.quantity must be between 1 and 20", prefix)
		}
		for j, addon := range item.Addons {
			if addon.Name == "" {
				return fmt.Errorf("%s.addons[%d].name is required", prefix, j)
			}
			if addon.Quantity < 1 {
				return fmt.Errorf("%s.addons[%d].quantity must be at least 1", prefix, j)
			}
			if addon.Price < 0 {
				return fmt.Errorf("%s.addons[%d].price must not be negative", prefix, j)
			}
		}
	}
	return nil
}

// AddonsTotal returns the per-unit addon cost of one requested line.
func (r *OrderItemRequest) AddonsTotal() float64 {
	var total float64
	for _, a := range r.Addons {
		total += a.Price * float64(a.Quantity)
	}
	return total
}
