package payments

import (
	"testing"

	"restaurant-pos/internal/models"
)

func TestSplitsConserve(t *testing.T) {
	tests := []struct {
		name   string
		splits []models.SplitEntry
		amount float64
		want   bool
	}{
		{
			name: "even halves",
			splits: []models.SplitEntry{
				{Mode: "cash", Amount: 500},
				{Mode: "upi", Amount: 500},
			},
			amount: 1000,
			want:   true,
		},
		{
			name: "uneven but exact",
			splits: []models.SplitEntry{
				{Mode: "card", Amount: 733.40},
				{Mode: "cash", Amount: 266.60},
			},
			amount: 1000,
			want:   true,
		},
		{
			name: "short by a paisa",
			splits: []models.SplitEntry{
				{Mode: "cash", Amount: 499.99},
				{Mode: "upi", Amount: 500},
			},
			amount: 1000,
			want:   false,
		},
		{
			name: "over",
			splits: []models.SplitEntry{
				{Mode: "cash", Amount: 600},
				{Mode: "upi", Amount: 500},
			},
			amount: 1000,
			want:   false,
		},
		{
			name: "float accumulation stays exact after rounding",
			splits: []models.SplitEntry{
				{Mode: "cash", Amount: 0.1},
				{Mode: "upi", Amount: 0.2},
			},
			amount: 0.3,
			want:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SplitsConserve(tt.splits, tt.amount); got != tt.want {
				t.Errorf("SplitsConserve() = %v, want %v", got, tt.want)
			}
		})
	}
}
