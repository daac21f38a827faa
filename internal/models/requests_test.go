package models

import (
	"strings"
	"testing"
)

func intPtr(v int) *int { return &v }

func strPtr(v string) *string { return &v }

func TestCreateOrderRequestValidate(t *testing.T) {
	tests := []struct {
		name    string
		req     *CreateOrderRequest
		wantErr bool
	}{
		{
			name: "valid dine_in order",
			req: &CreateOrderRequest{
				OrderType:  "dine_in",
				TableID:    intPtr(4),
				GuestCount: 2,
				Items: []OrderItemRequest{
					{MenuItemID: 1, Quantity: 2},
				},
			},
			wantErr: false,
		},
		{
			name: "valid takeaway order without items",
			req: &CreateOrderRequest{
				OrderType:  "takeaway",
				GuestCount: 0,
			},
			wantErr: false,
		},
		{
			name: "dine_in without table_id",
			req: &CreateOrderRequest{
				OrderType:  "dine_in",
				GuestCount: 2,
			},
			wantErr: true,
		},
		{
			name: "takeaway with table_id",
			req: &CreateOrderRequest{
				OrderType: "takeaway",
				TableID:   intPtr(4),
			},
			wantErr: true,
		},
		{
			name: "delivery with table_id",
			req: &CreateOrderRequest{
				OrderType: "delivery",
				TableID:   intPtr(4),
			},
			wantErr: true,
		},
		{
			name: "unknown order type",
			req: &CreateOrderRequest{
				OrderType: "drive_through",
			},
			wantErr: true,
		},
		{
			name: "guest count over limit",
			req: &CreateOrderRequest{
				OrderType:  "dine_in",
				TableID:    intPtr(4),
				GuestCount: 51,
			},
			wantErr: true,
		},
		{
			name: "negative guest count",
			req: &CreateOrderRequest{
				OrderType:  "dine_in",
				TableID:    intPtr(4),
				GuestCount: -1,
			},
			wantErr: true,
		},
		{
			name: "item quantity zero",
			req: &CreateOrderRequest{
				OrderType: "takeaway",
				Items: []OrderItemRequest{
					{MenuItemID: 1, Quantity: 0},
				},
			},
			wantErr: true,
		},
		{
			name: "item quantity over limit",
			req: &CreateOrderRequest{
				OrderType: "takeaway",
				Items: []OrderItemRequest{
					{MenuItemID: 1, Quantity: 21},
				},
			},
			wantErr: true,
		},
		{
			name: "item missing menu_item_id",
			req: &CreateOrderRequest{
				OrderType: "takeaway",
				Items: []OrderItemRequest{
					{Quantity: 1},
				},
			},
			wantErr: true,
		},
		{
			name: "addon without name",
			req: &CreateOrderRequest{
				OrderType: "takeaway",
				Items: []OrderItemRequest{
					{MenuItemID: 1, Quantity: 1, Addons: []Addon{{Price: 20, Quantity: 1}}},
				},
			},
			wantErr: true,
		},
		{
			name: "addon with negative price",
			req: &CreateOrderRequest{
				OrderType: "takeaway",
				Items: []OrderItemRequest{
					{MenuItemID: 1, Quantity: 1, Addons: []Addon{{Name: "Extra Cheese", Price: -5, Quantity: 1}}},
				},
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestAddItemsRequestValidate(t *testing.T) {
	tests := []struct {
		name    string
		req     *AddItemsRequest
		wantErr bool
	}{
		{
			name: "valid items",
			req: &AddItemsRequest{Items: []OrderItemRequest{
				{MenuItemID: 3, Quantity: 1},
				{MenuItemID: 7, Quantity: 2, VariantID: intPtr(2)},
			}},
			wantErr: false,
		},
		{
			name:    "empty items",
			req:     &AddItemsRequest{},
			wantErr: true,
		},
		{
			name: "too many items",
			req: &AddItemsRequest{Items: func() []OrderItemRequest {
				items := make([]OrderItemRequest, 51)
				for i := range items {
					items[i] = OrderItemRequest{MenuItemID: i + 1, Quantity: 1}
				}
				return items
			}()},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestCancelRequestValidate(t *testing.T) {
	tests := []struct {
		name    string
		req     *CancelRequest
		wantErr bool
	}{
		{name: "valid reason", req: &CancelRequest{Reason: "customer_changed_mind"}, wantErr: false},
		{name: "empty reason", req: &CancelRequest{}, wantErr: true},
		{name: "reason too long", req: &CancelRequest{Reason: strings.Repeat("x", 101)}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestStartSessionRequestValidate(t *testing.T) {
	tests := []struct {
		name    string
		req     *StartSessionRequest
		wantErr bool
	}{
		{name: "valid", req: &StartSessionRequest{GuestCount: 4}, wantErr: false},
		{name: "zero guests", req: &StartSessionRequest{GuestCount: 0}, wantErr: true},
		{name: "too many guests", req: &StartSessionRequest{GuestCount: 51}, wantErr: true},
		{
			name:    "guest name too long",
			req:     &StartSessionRequest{GuestCount: 2, GuestName: strPtr(strings.Repeat("a", 101))},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestMergeTablesRequestValidate(t *testing.T) {
	tests := []struct {
		name    string
		req     *MergeTablesRequest
		wantErr bool
	}{
		{name: "valid", req: &MergeTablesRequest{MemberTableIDs: []int{2, 3}}, wantErr: false},
		{name: "empty", req: &MergeTablesRequest{}, wantErr: true},
		{name: "duplicate member", req: &MergeTablesRequest{MemberTableIDs: []int{2, 2}}, wantErr: true},
		{name: "invalid table id", req: &MergeTablesRequest{MemberTableIDs: []int{0}}, wantErr: true},
		{
			name:    "too many members",
			req:     &MergeTablesRequest{MemberTableIDs: []int{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11}},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestPaymentRequestValidate(t *testing.T) {
	tests := []struct {
		name    string
		req     *PaymentRequest
		wantErr bool
	}{
		{
			name:    "valid cash payment",
			req:     &PaymentRequest{OrderID: 1, InvoiceID: 1, Mode: "cash", Amount: 500},
			wantErr: false,
		},
		{
			name:    "valid upi payment with tip",
			req:     &PaymentRequest{OrderID: 1, InvoiceID: 1, Mode: "upi", Amount: 500, TipAmount: 50},
			wantErr: false,
		},
		{
			name:    "missing order_id",
			req:     &PaymentRequest{InvoiceID: 1, Mode: "cash", Amount: 500},
			wantErr: true,
		},
		{
			name:    "missing invoice_id",
			req:     &PaymentRequest{OrderID: 1, Mode: "cash", Amount: 500},
			wantErr: true,
		},
		{
			name:    "unknown mode",
			req:     &PaymentRequest{OrderID: 1, InvoiceID: 1, Mode: "cheque", Amount: 500},
			wantErr: true,
		},
		{
			name:    "zero amount",
			req:     &PaymentRequest{OrderID: 1, InvoiceID: 1, Mode: "cash", Amount: 0},
			wantErr: true,
		},
		{
			name:    "negative tip",
			req:     &PaymentRequest{OrderID: 1, InvoiceID: 1, Mode: "cash", Amount: 500, TipAmount: -10},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestSplitPaymentRequestValidate(t *testing.T) {
	tests := []struct {
		name    string
		req     *SplitPaymentRequest
		wantErr bool
	}{
		{
			name: "valid two-way split",
			req: &SplitPaymentRequest{OrderID: 1, InvoiceID: 1, Splits: []SplitEntry{
				{Mode: "cash", Amount: 500},
				{Mode: "card", Amount: 500},
			}},
			wantErr: false,
		},
		{
			name: "single split rejected",
			req: &SplitPaymentRequest{OrderID: 1, InvoiceID: 1, Splits: []SplitEntry{
				{Mode: "cash", Amount: 1000},
			}},
			wantErr: true,
		},
		{
			name: "split with bad mode",
			req: &SplitPaymentRequest{OrderID: 1, InvoiceID: 1, Splits: []SplitEntry{
				{Mode: "cash", Amount: 500},
				{Mode: "barter", Amount: 500},
			}},
			wantErr: true,
		},
		{
			name: "split with zero amount",
			req: &SplitPaymentRequest{OrderID: 1, InvoiceID: 1, Splits: []SplitEntry{
				{Mode: "cash", Amount: 500},
				{Mode: "card", Amount: 0},
			}},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestGenerateBillRequestValidate(t *testing.T) {
	tests := []struct {
		name    string
		req     *GenerateBillRequest
		wantErr bool
	}{
		{name: "no discounts", req: &GenerateBillRequest{}, wantErr: false},
		{
			name: "valid flat and percent discounts",
			req: &GenerateBillRequest{Discounts: []DiscountSpec{
				{Label: "Festival Offer", Kind: "percent", Value: 10, PreTax: true},
				{Label: "Loyalty", Kind: "flat", Value: 50},
			}},
			wantErr: false,
		},
		{
			name:    "discount without label",
			req:     &GenerateBillRequest{Discounts: []DiscountSpec{{Kind: "flat", Value: 50}}},
			wantErr: true,
		},
		{
			name:    "percent over 100",
			req:     &GenerateBillRequest{Discounts: []DiscountSpec{{Label: "Bad", Kind: "percent", Value: 120}}},
			wantErr: true,
		},
		{
			name:    "unknown kind",
			req:     &GenerateBillRequest{Discounts: []DiscountSpec{{Label: "Bad", Kind: "bogo", Value: 1}}},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
