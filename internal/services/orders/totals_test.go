package orders

import (
	"testing"

	"restaurant-pos/internal/models"
)

func TestLineAmount(t *testing.T) {
	tests := []struct {
		name      string
		unitPrice float64
		quantity  int
		addons    []models.Addon
		want      float64
	}{
		{"plain line", 350, 2, nil, 700},
		{"single unit", 250, 1, nil, 250},
		{"with addons", 200, 2, []models.Addon{{Name: "extra cheese", Price: 50, Quantity: 1}}, 450},
		{"multiple addons", 100, 1, []models.Addon{
			{Name: "cheese", Price: 50, Quantity: 2},
			{Name: "olives", Price: 30, Quantity: 1},
		}, 230},
	}

	for _, tt := range tests {
		if got := LineAmount(tt.unitPrice, tt.quantity, tt.addons); got != tt.want {
			t.Errorf("%s: LineAmount = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestLineTax(t *testing.T) {
	if got := LineTax(700, 5); got != 35 {
		t.Errorf("LineTax(700, 5) = %v, want 35", got)
	}
	if got := LineTax(333, 2.5); got != 8.33 {
		t.Errorf("LineTax(333, 2.5) = %v, want 8.33", got)
	}
	if got := LineTax(100, 0); got != 0 {
		t.Errorf("LineTax(100, 0) = %v, want 0", got)
	}
}

func TestRecomputeTotals(t *testing.T) {
	// Dine-in order with 2x item priced 350 and 4x item priced 250
	// under a 5% flat tax group.
	items := []models.OrderItem{
		{Quantity: 2, UnitPrice: 350, TotalPrice: 700, TaxAmount: 35, Status: models.ItemPending},
		{Quantity: 4, UnitPrice: 250, TotalPrice: 1000, TaxAmount: 50, Status: models.ItemPending},
	}

	subtotal, tax, total := RecomputeTotals(items)
	if subtotal != 1700 {
		t.Errorf("subtotal = %v, want 1700", subtotal)
	}
	if tax != 85 {
		t.Errorf("tax = %v, want 85", tax)
	}
	if total != 1785 {
		t.Errorf("total = %v, want 1785", total)
	}
}

func TestRecomputeTotalsSkipsCancelled(t *testing.T) {
	items := []models.OrderItem{
		{TotalPrice: 700, TaxAmount: 35, Status: models.ItemSentToKitchen},
		{TotalPrice: 1000, TaxAmount: 50, Status: models.ItemCancelled},
	}

	subtotal, tax, total := RecomputeTotals(items)
	if subtotal != 700 || tax != 35 || total != 735 {
		t.Errorf("totals = (%v, %v, %v), want (700, 35, 735)", subtotal, tax, total)
	}
}

func TestRecomputeTotalsEmpty(t *testing.T) {
	subtotal, tax, total := RecomputeTotals(nil)
	if subtotal != 0 || tax != 0 || total != 0 {
		t.Errorf("totals = (%v, %v, %v), want zeros", subtotal, tax, total)
	}
}
