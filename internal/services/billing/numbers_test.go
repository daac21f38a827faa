package billing

import (
	"testing"
	"time"
)

func TestFinancialYearLabel(t *testing.T) {
	tests := []struct {
		date string
		want string
	}{
		{"2026-04-01", "2026-27"},
		{"2026-08-26", "2026-27"},
		{"2027-03-31", "2026-27"},
		{"2027-04-01", "2027-28"},
		{"2026-01-15", "2025-26"},
		{"2099-12-31", "2099-00"},
	}

	for _, tt := range tests {
		t.Run(tt.date, func(t *testing.T) {
			d, err := time.Parse("2006-01-02", tt.date)
			if err != nil {
				t.Fatalf("bad date %s: %v", tt.date, err)
			}
			if got := FinancialYearLabel(d); got != tt.want {
				t.Errorf("FinancialYearLabel(%s) = %s, want %s", tt.date, got, tt.want)
			}
		})
	}
}

func TestInvoicePrefix(t *testing.T) {
	d, _ := time.Parse("2006-01-02", "2026-08-26")
	if got := InvoicePrefix(d); got != "INV/2026-27/" {
		t.Errorf("InvoicePrefix = %s, want INV/2026-27/", got)
	}
}
