package billing

import (
	"testing"

	"restaurant-pos/internal/models"
)

func gstLine(name string, quantity int, unitPrice float64) BillLine {
	total := unitPrice * float64(quantity)
	return BillLine{
		Item: models.OrderItem{
			Name:       name,
			Quantity:   quantity,
			UnitPrice:  unitPrice,
			TotalPrice: total,
			Status:     models.ItemServed,
		},
		Components: []TaxLine{
			{Component: models.TaxCGST, Rate: 2.5},
			{Component: models.TaxSGST, Rate: 2.5},
		},
	}
}

func TestComputeBill_GSTSplit(t *testing.T) {
	// 2 x 350 + 4 x 250 = 1700, GST 5% split evenly across CGST/SGST.
	lines := []BillLine{
		gstLine("Paneer Tikka", 2, 350),
		gstLine("Butter Naan", 4, 250),
	}

	c := ComputeBill(lines, nil, 0, false)

	if c.Subtotal != 1700 {
		t.Errorf("Subtotal = %v, want 1700", c.Subtotal)
	}
	if c.TaxableAmount != 1700 {
		t.Errorf("TaxableAmount = %v, want 1700", c.TaxableAmount)
	}
	if c.TaxAmounts[models.TaxCGST] != 42.5 {
		t.Errorf("CGST = %v, want 42.5", c.TaxAmounts[models.TaxCGST])
	}
	if c.TaxAmounts[models.TaxSGST] != 42.5 {
		t.Errorf("SGST = %v, want 42.5", c.TaxAmounts[models.TaxSGST])
	}
	if c.TotalTax != 85 {
		t.Errorf("TotalTax = %v, want 85", c.TotalTax)
	}
	if c.GrandTotal != 1785 {
		t.Errorf("GrandTotal = %v, want 1785", c.GrandTotal)
	}
	if c.RoundOff != 0 {
		t.Errorf("RoundOff = %v, want 0", c.RoundOff)
	}
}

func TestComputeBill_HalfPaisaRoundsUp(t *testing.T) {
	// 333 at 2.5% per component is 8.325, which sits on the half-paisa
	// boundary and must round up to 8.33 despite binary float putting
	// the product just below .5.
	lines := []BillLine{gstLine("Masala Chaas", 1, 333)}

	c := ComputeBill(lines, nil, 0, false)

	if c.TaxAmounts[models.TaxCGST] != 8.33 {
		t.Errorf("CGST = %v, want 8.33", c.TaxAmounts[models.TaxCGST])
	}
	if c.TaxAmounts[models.TaxSGST] != 8.33 {
		t.Errorf("SGST = %v, want 8.33", c.TaxAmounts[models.TaxSGST])
	}
	if c.TotalTax != 16.66 {
		t.Errorf("TotalTax = %v, want 16.66", c.TotalTax)
	}
}

func TestComputeBill_SkipsCancelledItems(t *testing.T) {
	cancelled := gstLine("Returned Dish", 1, 500)
	cancelled.Item.Status = models.ItemCancelled

	c := ComputeBill([]BillLine{gstLine("Dal", 1, 200), cancelled}, nil, 0, false)

	if c.Subtotal != 200 {
		t.Errorf("Subtotal = %v, want 200", c.Subtotal)
	}
	if c.GrandTotal != 210 {
		t.Errorf("GrandTotal = %v, want 210", c.GrandTotal)
	}
}

func TestComputeBill_PreTaxDiscountShrinksTaxBase(t *testing.T) {
	lines := []BillLine{gstLine("Thali", 1, 1000)}
	discounts := []models.DiscountSpec{
		{Label: "Loyalty", Kind: "percent", Value: 10, PreTax: true},
	}

	c := ComputeBill(lines, discounts, 0, false)

	if c.DiscountAmount != 100 {
		t.Errorf("DiscountAmount = %v, want 100", c.DiscountAmount)
	}
	if c.TaxableAmount != 900 {
		t.Errorf("TaxableAmount = %v, want 900", c.TaxableAmount)
	}
	// 5% of 900 split as 22.5 + 22.5.
	if c.TotalTax != 45 {
		t.Errorf("TotalTax = %v, want 45", c.TotalTax)
	}
	if c.GrandTotal != 945 {
		t.Errorf("GrandTotal = %v, want 945", c.GrandTotal)
	}
}

func TestComputeBill_PostTaxFlatDiscount(t *testing.T) {
	lines := []BillLine{gstLine("Thali", 1, 1000)}
	discounts := []models.DiscountSpec{
		{Label: "Voucher", Kind: "flat", Value: 50, PreTax: false},
	}

	c := ComputeBill(lines, discounts, 0, false)

	if c.TaxableAmount != 1000 {
		t.Errorf("TaxableAmount = %v, want 1000", c.TaxableAmount)
	}
	if c.TotalTax != 50 {
		t.Errorf("TotalTax = %v, want 50", c.TotalTax)
	}
	if c.GrandTotal != 1000 {
		t.Errorf("GrandTotal = %v, want 1000", c.GrandTotal)
	}
}

func TestComputeBill_ServiceChargeOnTaxableBase(t *testing.T) {
	lines := []BillLine{gstLine("Thali", 1, 1000)}

	c := ComputeBill(lines, nil, 5, false)

	if c.ServiceCharge != 50 {
		t.Errorf("ServiceCharge = %v, want 50", c.ServiceCharge)
	}
	if c.GrandTotal != 1100 {
		t.Errorf("GrandTotal = %v, want 1100", c.GrandTotal)
	}
}

func TestComputeBill_RoundingRecordsSignedDelta(t *testing.T) {
	tests := []struct {
		name      string
		unitPrice float64
		wantTotal float64
		wantRound float64
	}{
		// 99.30 + 2.48 + 2.48 tax = 104.26 -> 104
		{"rounds down", 99.30, 104, -0.26},
		// 99.80 + 2.50 + 2.50 tax = 104.80 -> 105
		{"rounds up", 99.80, 105, 0.20},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := ComputeBill([]BillLine{gstLine("Item", 1, tt.unitPrice)}, nil, 0, true)
			if c.GrandTotal != tt.wantTotal {
				t.Errorf("GrandTotal = %v, want %v", c.GrandTotal, tt.wantTotal)
			}
			if c.RoundOff != tt.wantRound {
				t.Errorf("RoundOff = %v, want %v", c.RoundOff, tt.wantRound)
			}
		})
	}
}

func TestComputeBill_DiscountNeverExceedsBase(t *testing.T) {
	lines := []BillLine{gstLine("Chai", 1, 20)}
	discounts := []models.DiscountSpec{
		{Label: "Comp", Kind: "flat", Value: 500, PreTax: true},
	}

	c := ComputeBill(lines, discounts, 0, false)

	if c.TaxableAmount != 0 {
		t.Errorf("TaxableAmount = %v, want 0", c.TaxableAmount)
	}
	if c.GrandTotal != 0 {
		t.Errorf("GrandTotal = %v, want 0", c.GrandTotal)
	}
	if c.DiscountAmount != 20 {
		t.Errorf("DiscountAmount = %v, want 20 (capped at subtotal)", c.DiscountAmount)
	}
}

func TestComputeBill_Empty(t *testing.T) {
	c := ComputeBill(nil, nil, 5, true)
	if c.Subtotal != 0 || c.TotalTax != 0 || c.GrandTotal != 0 {
		t.Errorf("empty bill = %+v, want all zeros", c)
	}
}
