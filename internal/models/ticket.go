package models

import "time"

// TicketStatus represents the status of a kitchen/bar ticket.
type TicketStatus string

const (
	TicketPending   TicketStatus = "pending"
	TicketAccepted  TicketStatus = "accepted"
	TicketPreparing TicketStatus = "preparing"
	TicketReady     TicketStatus = "ready"
	TicketServed    TicketStatus = "served"
	TicketCancelled TicketStatus = "cancelled"
)

// StationClass groups stations into the two dispatch families.
type StationClass string

const (
	StationKitchen StationClass = "kitchen"
	StationBar     StationClass = "bar"
)

// KotTicket is one dispatch unit of order items to one preparation
// station. Item composition is immutable after creation; items added to
// the order later go on a new ticket.
type KotTicket struct {
	ID           int          `json:"id"`
	Number       string       `json:"ticket_number"`
	OrderID      int          `json:"order_id"`
	Station      string       `json:"station"`
	StationClass StationClass `json:"station_class"`
	Status       TicketStatus `json:"status"`
	Priority     int          `json:"priority"`
	AcceptedBy   *int         `json:"accepted_by,omitempty"`
	AcceptedAt   *time.Time   `json:"accepted_at,omitempty"`
	PreparingBy  *int         `json:"preparing_by,omitempty"`
	PreparingAt  *time.Time   `json:"preparing_at,omitempty"`
	ReadyBy      *int         `json:"ready_by,omitempty"`
	ReadyAt      *time.Time   `json:"ready_at,omitempty"`
	ServedBy     *int         `json:"served_by,omitempty"`
	ServedAt     *time.Time   `json:"served_at,omitempty"`
	CancelledBy  *int         `json:"cancelled_by,omitempty"`
	CancelReason *string      `json:"cancel_reason,omitempty"`
	CancelledAt  *time.Time   `json:"cancelled_at,omitempty"`
	ReprintCount int          `json:"reprint_count"`
	Items        []KotItem    `json:"items,omitempty"`
	CreatedAt    time.Time    `json:"created_at"`
}

// KotItem is a snapshot of one order item as dispatched on a ticket.
// Its status is tracked independently so part of a ticket can be ready
// while siblings are still preparing.
type KotItem struct {
	ID           int        `json:"id"`
	TicketID     int        `json:"ticket_id"`
	OrderItemID  int        `json:"order_item_id"`
	Name         string     `json:"name"`
	VariantName  *string    `json:"variant_name,omitempty"`
	Quantity     int        `json:"quantity"`
	Addons       []Addon    `json:"addons"`
	Instructions *string    `json:"instructions,omitempty"`
	Status       ItemStatus `json:"status"`
	ReadyAt      *time.Time `json:"ready_at,omitempty"`
	CancelledAt  *time.Time `json:"cancelled_at,omitempty"`
}
