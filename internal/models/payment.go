package models

import (
	"fmt"
	"time"
)

// PaymentMode is the settlement instrument.
type PaymentMode string

const (
	ModeCash  PaymentMode = "cash"
	ModeCard  PaymentMode = "card"
	ModeUPI   PaymentMode = "upi"
	ModeSplit PaymentMode = "split"
)

// PaymentStatus represents one transaction's state.
type PaymentStatus string

const (
	PaymentDone     PaymentStatus = "completed"
	PaymentFailed   PaymentStatus = "failed"
	PaymentRefunded PaymentStatus = "refunded"
)

// Payment is one settlement transaction against an invoice.
type Payment struct {
	ID               int            `json:"id"`
	Number           string         `json:"payment_number"`
	InvoiceID        int            `json:"invoice_id"`
	OrderID          int            `json:"order_id"`
	Mode             PaymentMode    `json:"mode"`
	Amount           float64        `json:"amount"`
	TipAmount        float64        `json:"tip_amount"`
	TotalAmount      float64        `json:"total_amount"`
	Status           PaymentStatus  `json:"status"`
	CardLastFour     *string        `json:"card_last_four,omitempty"`
	UPITransactionID *string        `json:"upi_transaction_id,omitempty"`
	ReceivedBy       int            `json:"received_by"`
	Splits           []SplitPayment `json:"splits,omitempty"`
	CreatedAt        time.Time      `json:"created_at"`
}

// SplitPayment is one sub-mode row of a split payment. The amounts of
// all rows must sum to the parent payment's amount.
type SplitPayment struct {
	ID               int         `json:"id"`
	PaymentID        int         `json:"payment_id"`
	Position         int         `json:"position"`
	Mode             PaymentMode `json:"mode"`
	Amount           float64     `json:"amount"`
	CardLastFour     *string     `json:"card_last_four,omitempty"`
	UPITransactionID *string     `json:"upi_transaction_id,omitempty"`
}

// PaymentRequest is the payload for POST /orders/payment.
type PaymentRequest struct {
	OrderID          int     `json:"order_id"`
	InvoiceID        int     `json:"invoice_id"`
	Mode             string  `json:"mode"`
	Amount           float64 `json:"amount"`
	TipAmount        float64 `json:"tip_amount"`
	CardLastFour     *string `json:"card_last_four,omitempty"`
	UPITransactionID *string `json:"upi_transaction_id,omitempty"`
}

// SplitEntry is one requested sub-payment.
type SplitEntry struct {
	Mode             string  `json:"mode"`
	Amount           float64 `json:"amount"`
	CardLastFour     *string `json:"card_last_four,omitempty"`
	UPITransactionID *string `json:"upi_transaction_id,omitempty"`
}

// SplitPaymentRequest is the payload for POST /orders/payment/split.
type SplitPaymentRequest struct {
	OrderID   int          `json:"order_id"`
	InvoiceID int          `json:"invoice_id"`
	TipAmount float64      `json:"tip_amount"`
	Splits    []SplitEntry `json:"splits"`
}

// Validate checks a single-mode payment payload.
func (r *PaymentRequest) Validate() error {
	if r.OrderID < 1 {
		return fmt.Errorf("order_id is required")
	}
	if r.InvoiceID < 1 {
		return fmt.Errorf("invoice_id is required")
	}
	if err := validateMode(r.Mode); err != nil {
		return err
	}
	if r.Amount <= 0 {
		return fmt.Errorf("amount must be positive")
	}
	if r.TipAmount < 0 {
		return fmt.Errorf("tip_amount must not be negative")
	}
	return nil
}

// Validate checks a split payment payload.
func (r *SplitPaymentRequest) Validate() error {
	if r.OrderID < 1 {
		return fmt.Errorf("order_id is required")
	}
	if r.InvoiceID < 1 {
		return fmt.Errorf("invoice_id is required")
	}
	if len(r.Splits) < 2 {
		return fmt.Errorf("splits must contain at least 2 entries")
	}
	if r.TipAmount < 0 {
		return fmt.Errorf("tip_amount must not be negative")
	}
	for i, s := range r.Splits {
		if err := validateMode(s.Mode); err != nil {
			return fmt.Errorf("splits[%d]: %w", i, err)
		}
		if s.Amount <= 0 {
			return fmt.Errorf("splits[%d].amount must be positive", i)
		}
	}
	return nil
}

func validateMode(mode string) error {
	switch PaymentMode(mode) {
	case ModeCash, ModeCard, ModeUPI:
		return nil
	default:
		return fmt.Errorf("mode must be one of: cash, card, upi")
	}
}
