package printer

import (
	"fmt"
	"strings"

	"restaurant-pos/internal/models"
)

const slipWidth = 32

func center(s string) string {
	if len(s) >= slipWidth {
		return s
	}
	pad := (slipWidth - len(s)) / 2
	return strings.Repeat(" ", pad) + s
}

func rule() string {
	return strings.Repeat("-", slipWidth)
}

// RenderTicket produces the text body of a KOT/BOT slip. Reprints get a
// REPRINT marker but are otherwise identical.
func RenderTicket(t *models.KotTicket, tableNumber, orderNumber string, reprint bool) string {
	var b strings.Builder
	if reprint {
		b.WriteString(center("** REPRINT **") + "\n")
	}
	b.WriteString(center(strings.ToUpper(t.Station)) + "\n")
	b.WriteString(center(t.Number) + "\n")
	b.WriteString(rule() + "\n")
	fmt.Fprintf(&b, "Order: %s\n", orderNumber)
	if tableNumber != "" {
		fmt.Fprintf(&b, "Table: %s\n", tableNumber)
	}
	b.WriteString(rule() + "\n")
	for _, item := range t.Items {
		if item.Status == models.ItemCancelled {
			continue
		}
		name := item.Name
		if item.VariantName != nil {
			name = fmt.Sprintf("%s (%s)", name, *item.VariantName)
		}
		fmt.Fprintf(&b, "%2d x %s\n", item.Quantity, name)
		for _, addon := range item.Addons {
			fmt.Fprintf(&b, "     + %s x%d\n", addon.Name, addon.Quantity)
		}
		if item.Instructions != nil && *item.Instructions != "" {
			fmt.Fprintf(&b, "     ! %s\n", *item.Instructions)
		}
	}
	b.WriteString(rule() + "\n")
	return b.String()
}

// RenderInvoice produces the text body of a bill. Duplicates carry a
// counter tag.
func RenderInvoice(inv *models.Invoice, orderNumber, tableNumber string, duplicate int) string {
	var b strings.Builder
	if duplicate > 0 {
		b.WriteString(center(fmt.Sprintf("** DUPLICATE #%d **", duplicate)) + "\n")
	}
	b.WriteString(center("TAX INVOICE") + "\n")
	b.WriteString(center(inv.Number) + "\n")
	b.WriteString(rule() + "\n")
	fmt.Fprintf(&b, "Order: %s\n", orderNumber)
	if tableNumber != "" {
		fmt.Fprintf(&b, "Table: %s\n", tableNumber)
	}
	b.WriteString(rule() + "\n")
	for _, item := range inv.Items {
		name := item.Name
		if item.VariantName != nil {
			name = fmt.Sprintf("%s (%s)", name, *item.VariantName)
		}
		fmt.Fprintf(&b, "%2d x %-18s %8.2f\n", item.Quantity, name, item.TotalPrice)
	}
	b.WriteString(rule() + "\n")
	fmt.Fprintf(&b, "%-22s %8.2f\n", "Subtotal", inv.Subtotal)
	if inv.DiscountAmount > 0 {
		fmt.Fprintf(&b, "%-22s %8.2f\n", "Discount", -inv.DiscountAmount)
	}
	writeTaxLine(&b, "CGST", inv.CGSTAmount)
	writeTaxLine(&b, "SGST", inv.SGSTAmount)
	writeTaxLine(&b, "IGST", inv.IGSTAmount)
	writeTaxLine(&b, "VAT", inv.VATAmount)
	writeTaxLine(&b, "CESS", inv.CessAmount)
	if inv.ServiceCharge > 0 {
		fmt.Fprintf(&b, "%-22s %8.2f\n", "Service charge", inv.ServiceCharge)
	}
	if inv.RoundOff != 0 {
		fmt.Fprintf(&b, "%-22s %8.2f\n", "Round off", inv.RoundOff)
	}
	b.WriteString(rule() + "\n")
	fmt.Fprintf(&b, "%-22s %8.2f\n", "GRAND TOTAL", inv.GrandTotal)
	b.WriteString(rule() + "\n")
	return b.String()
}

func writeTaxLine(b *strings.Builder, label string, amount float64) {
	if amount > 0 {
		fmt.Fprintf(b, "%-22s %8.2f\n", label, amount)
	}
}

// RenderCancelSlip produces the slip that tells a station to halt
// preparation of cancelled items.
func RenderCancelSlip(station, referenceNo string, items []models.EventItem, reason string) string {
	var b strings.Builder
	b.WriteString(center("** CANCELLED **") + "\n")
	b.WriteString(center(strings.ToUpper(station)) + "\n")
	b.WriteString(center(referenceNo) + "\n")
	b.WriteString(rule() + "\n")
	for _, item := range items {
		name := item.Name
		if item.VariantName != nil {
			name = fmt.Sprintf("%s (%s)", name, *item.VariantName)
		}
		fmt.Fprintf(&b, "%2d x %s\n", item.Quantity, name)
	}
	fmt.Fprintf(&b, "Reason: %s\n", reason)
	b.WriteString(rule() + "\n")
	return b.String()
}
