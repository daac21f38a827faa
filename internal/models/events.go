package models

import "time"

// EventType names one entry of the real-time event taxonomy consumed by
// kitchen displays, captain devices, and cashiers.
type EventType string

const (
	EventKotCreated       EventType = "kot:created"
	EventKotAccepted      EventType = "kot:accepted"
	EventKotPreparing     EventType = "kot:preparing"
	EventKotItemReady     EventType = "kot:item_ready"
	EventKotReady         EventType = "kot:ready"
	EventKotServed        EventType = "kot:served"
	EventKotCancelled     EventType = "kot:cancelled"
	EventKotItemCancelled EventType = "kot:item_cancelled"
	EventKotReprinted     EventType = "kot:reprinted"
	EventOrderBilled      EventType = "order:billed"
	EventPaymentReceived  EventType = "order:payment_received"
	EventTableUpdated     EventType = "table:updated"
)

// EventItem is the per-item detail carried on ticket events so a display
// never needs a follow-up fetch.
type EventItem struct {
	Name         string  `json:"name"`
	VariantName  *string `json:"variant_name,omitempty"`
	Quantity     int     `json:"quantity"`
	Addons       []Addon `json:"addons,omitempty"`
	Instructions *string `json:"instructions,omitempty"`
	Status       string  `json:"status,omitempty"`
}

// Event is the envelope published to the notifications fanout.
type Event struct {
	Type         EventType   `json:"type"`
	Station      string      `json:"station,omitempty"`
	TableNumber  string      `json:"table_number,omitempty"`
	TableStatus  string      `json:"table_status,omitempty"`
	OrderNumber  string      `json:"order_number,omitempty"`
	TicketNumber string      `json:"ticket_number,omitempty"`
	Items        []EventItem `json:"items,omitempty"`
	Amount       float64     `json:"amount,omitempty"`
	Actor        int         `json:"actor,omitempty"`
	Timestamp    time.Time   `json:"timestamp"`
}
