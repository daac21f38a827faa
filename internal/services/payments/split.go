package payments

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

// SplitsTotal sums the requested sub-payments.
func SplitsTotal(splits []models.SplitEntry) float64 {
	var total float64
	for _, s := range splits {
		total += s.Amount
	}
	return round2(total)
}

// SplitsConserve reports whether the sub-payments sum exactly to the
// expected amount. Split rows that gain or lose a paisa against the
// parent never reach the store.
func SplitsConserve(splits []models.SplitEntry, amount float64) bool {
	return SplitsTotal(splits) == round2(amount)
}
