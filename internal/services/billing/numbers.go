package billing

import (
	"fmt"
	"time"
)

// FinancialYearLabel returns the April–March financial year a moment
// falls in, e.g. 2026-27 for any date from April 2026 through March
// 2027. Invoice sequences reset at each financial year boundary.
func FinancialYearLabel(t time.Time) string {
	t = t.UTC()
	start := t.Year()
	if t.Month() < time.April {
		start--
	}
	return fmt.Sprintf("%d-%02d", start, (start+1)%100)
}

// InvoicePrefix is the financial-year-scoped number prefix, e.g.
// INV/2026-27/.
func InvoicePrefix(t time.Time) string {
	return fmt.Sprintf("INV/%s/", FinancialYearLabel(t))
}
