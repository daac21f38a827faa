package billing

import (
	"math"

	"restaurant-pos/internal/models"
)

// round2 keeps currency amounts at two decimal places. The epsilon
// catches half-paisa values that land just under the .5 boundary in
// binary float.
func round2(v float64) float64 {
	return math.Round(v*100+1e-9) / 100
}

// TaxLine is one statutory component rate that applies to a line.
type TaxLine struct {
	Component models.TaxComponent
	Rate      float64
}

// BillLine pairs an order item with its tax component rates.
type BillLine struct {
	Item       models.OrderItem
	Components []TaxLine
}

// Computation is the full result of a bill calculation, ready to freeze
// into an invoice.
type Computation struct {
	Subtotal       float64
	DiscountAmount float64
	TaxableAmount  float64
	TaxAmounts     map[models.TaxComponent]float64
	TotalTax       float64
	ServiceCharge  float64
	RoundOff       float64
	GrandTotal     float64
	Discounts      []models.InvoiceDiscount
}

// ComputeBill derives an invoice from order lines. It is a pure
// function: same lines, discounts, and settings always produce the same
// numbers.
//
// Pre-tax discounts reduce the taxable base sequentially, each percent
// applying to the running amount. Per-component tax is computed on each
// line's share of the discounted base. Post-tax discounts then reduce
// the gross, the service charge applies on the taxable base, and with
// rounding enabled the grand total snaps to the nearest whole unit with
// the signed difference recorded as round-off.
func ComputeBill(lines []BillLine, discounts []models.DiscountSpec, serviceChargePercent float64, roundTotals bool) Computation {
	c := Computation{TaxAmounts: make(map[models.TaxComponent]float64)}

	live := make([]BillLine, 0, len(lines))
	for _, l := range lines {
		if l.Item.Status == models.ItemCancelled {
			continue
		}
		live = append(live, l)
		c.Subtotal += l.Item.TotalPrice
	}
	c.Subtotal = round2(c.Subtotal)

	taxable := c.Subtotal
	for _, d := range discounts {
		if !d.PreTax {
			continue
		}
		amount := discountAmount(d, taxable)
		taxable -= amount
		c.DiscountAmount += amount
		c.Discounts = append(c.Discounts, appliedDiscount(d, amount))
	}
	if taxable < 0 {
		taxable = 0
	}
	c.TaxableAmount = round2(taxable)

	// Each line is taxed on its share of the discounted base.
	factor := 0.0
	if c.Subtotal > 0 {
		factor = c.TaxableAmount / c.Subtotal
	}
	for _, l := range live {
		base := l.Item.TotalPrice * factor
		for _, t := range l.Components {
			c.TaxAmounts[t.Component] += base * t.Rate / 100
		}
	}
	for component, amount := range c.TaxAmounts {
		c.TaxAmounts[component] = round2(amount)
		c.TotalTax += c.TaxAmounts[component]
	}
	c.TotalTax = round2(c.TotalTax)

	if serviceChargePercent > 0 {
		c.ServiceCharge = round2(c.TaxableAmount * serviceChargePercent / 100)
	}

	gross := c.TaxableAmount + c.TotalTax + c.ServiceCharge
	for _, d := range discounts {
		if d.PreTax {
			continue
		}
		amount := discountAmount(d, gross)
		gross -= amount
		c.DiscountAmount += amount
		c.Discounts = append(c.Discounts, appliedDiscount(d, amount))
	}
	if gross < 0 {
		gross = 0
	}
	gross = round2(gross)
	c.DiscountAmount = round2(c.DiscountAmount)

	if roundTotals {
		c.GrandTotal = math.Round(gross)
		c.RoundOff = round2(c.GrandTotal - gross)
	} else {
		c.GrandTotal = gross
	}
	return c
}

// discountAmount resolves one discount against its running base.
func discountAmount(d models.DiscountSpec, base float64) float64 {
	var amount float64
	switch d.Kind {
	case "percent":
		amount = base * d.Value / 100
	default:
		amount = d.Value
	}
	if amount > base {
		amount = base
	}
	return round2(amount)
}

func appliedDiscount(d models.DiscountSpec, amount float64) models.InvoiceDiscount {
	return models.InvoiceDiscount{
		Label:  d.Label,
		Kind:   d.Kind,
		Value:  d.Value,
		PreTax: d.PreTax,
		Amount: amount,
	}
}
