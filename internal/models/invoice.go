package models

import (
	"fmt"
	"time"
)

// InvoiceStatus distinguishes a live invoice from an explicitly
// cancelled one; cancellation frees the order for re-billing.
type InvoiceStatus string

const (
	InvoiceActive    InvoiceStatus = "active"
	InvoiceCancelled InvoiceStatus = "cancelled"
)

// InvoicePaymentStatus tracks settlement progress on an invoice.
type InvoicePaymentStatus string

const (
	InvoiceUnpaid        InvoicePaymentStatus = "pending"
	InvoicePartiallyPaid InvoicePaymentStatus = "partial"
	InvoicePaid          InvoicePaymentStatus = "paid"
)

// TaxComponent names one statutory tax line on an invoice.
type TaxComponent string

const (
	TaxCGST TaxComponent = "cgst"
	TaxSGST TaxComponent = "sgst"
	TaxIGST TaxComponent = "igst"
	TaxVAT  TaxComponent = "vat"
	TaxCESS TaxComponent = "cess"
)

// Invoice is a frozen billing snapshot of an order.
type Invoice struct {
	ID             int                  `json:"id"`
	Number         string               `json:"invoice_number"`
	OrderID        int                  `json:"order_id"`
	Status         InvoiceStatus        `json:"status"`
	Subtotal       float64              `json:"subtotal"`
	DiscountAmount float64              `json:"discount_amount"`
	TaxableAmount  float64              `json:"taxable_amount"`
	CGSTAmount     float64              `json:"cgst_amount"`
	SGSTAmount     float64              `json:"sgst_amount"`
	IGSTAmount     float64              `json:"igst_amount"`
	VATAmount      float64              `json:"vat_amount"`
	CessAmount     float64              `json:"cess_amount"`
	TotalTax       float64              `json:"total_tax"`
	ServiceCharge  float64              `json:"service_charge"`
	RoundOff       float64              `json:"round_off"`
	GrandTotal     float64              `json:"grand_total"`
	PaymentStatus  InvoicePaymentStatus `json:"payment_status"`
	CustomerName   *string              `json:"customer_name,omitempty"`
	CustomerPhone  *string              `json:"customer_phone,omitempty"`
	GeneratedBy    int                  `json:"generated_by"`
	DuplicateCount int                  `json:"duplicate_count"`
	CancelReason   *string              `json:"cancel_reason,omitempty"`
	CancelledAt    *time.Time           `json:"cancelled_at,omitempty"`
	Items          []InvoiceItem        `json:"items,omitempty"`
	Discounts      []InvoiceDiscount    `json:"discounts,omitempty"`
	CreatedAt      time.Time            `json:"created_at"`
}

// InvoiceItem is a billed line frozen at generation time.
type InvoiceItem struct {
	ID          int     `json:"id"`
	InvoiceID   int     `json:"invoice_id"`
	Name        string  `json:"name"`
	VariantName *string `json:"variant_name,omitempty"`
	Quantity    int     `json:"quantity"`
	UnitPrice   float64 `json:"unit_price"`
	TaxAmount   float64 `json:"tax_amount"`
	TotalPrice  float64 `json:"total_price"`
}

// InvoiceDiscount is one applied discount with its computed amount.
type InvoiceDiscount struct {
	ID        int     `json:"id"`
	InvoiceID int     `json:"invoice_id"`
	Label     string  `json:"label"`
	Kind      string  `json:"kind"`
	Value     float64 `json:"value"`
	PreTax    bool    `json:"pre_tax"`
	Amount    float64 `json:"amount"`
}

// DiscountSpec is one requested order-level discount.
type DiscountSpec struct {
	Label  string  `json:"label"`
	Kind   string  `json:"kind"` // flat | percent
	Value  float64 `json:"value"`
	PreTax bool    `json:"pre_tax"`
}

// GenerateBillRequest is the payload for POST /orders/{id}/bill.
type GenerateBillRequest struct {
	CustomerName       *string        `json:"customer_name,omitempty"`
	CustomerPhone      *string        `json:"customer_phone,omitempty"`
	ApplyServiceCharge bool           `json:"apply_service_charge"`
	Discounts          []DiscountSpec `json:"discounts,omitempty"`
}

// Validate checks the generate-bill payload.
func (r *GenerateBillRequest) Validate() error {
	for i, d := range r.Discounts {
		prefix := fmt.Sprintf("discounts[%d]", i)
		if d.Label == "" {
			return fmt.Errorf("%s.label is required", prefix)
		}
		switch d.Kind {
		case "flat":
			if d.Value <= 0 {
				return fmt.Errorf("%s.value must be positive", prefix)
			}
		case "percent":
			if d.Value <= 0 || d.Value > 100 {
				return fmt.Errorf("%s.value must be between 0 and 100", prefix)
			}
		default:
			return fmt.Errorf("%s.kind must be flat or percent", prefix)
		}
	}
	return nil
}
