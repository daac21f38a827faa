package tickets

import (
	"testing"

	"restaurant-pos/internal/models"
)

func TestValidTransition(t *testing.T) {
	tests := []struct {
		from, to models.TicketStatus
		want     bool
	}{
		{models.TicketPending, models.TicketAccepted, true},
		{models.TicketAccepted, models.TicketPreparing, true},
		{models.TicketPreparing, models.TicketReady, true},
		{models.TicketReady, models.TicketServed, true},
		{models.TicketPending, models.TicketCancelled, true},
		{models.TicketAccepted, models.TicketCancelled, true},
		{models.TicketPreparing, models.TicketCancelled, true},
		{models.TicketReady, models.TicketCancelled, true},
		{models.TicketPending, models.TicketServed, false},
		{models.TicketPending, models.TicketReady, false},
		{models.TicketAccepted, models.TicketServed, false},
		{models.TicketReady, models.TicketAccepted, false},
		{models.TicketServed, models.TicketCancelled, false},
		{models.TicketServed, models.TicketReady, false},
		{models.TicketCancelled, models.TicketAccepted, false},
	}

	for _, tt := range tests {
		if got := ValidTransition(tt.from, tt.to); got != tt.want {
			t.Errorf("ValidTransition(%q, %q) = %v, want %v", tt.from, tt.to, got, tt.want)
		}
	}
}

func TestTerminal(t *testing.T) {
	if !Terminal(models.TicketServed) {
		t.Errorf("served should be terminal")
	}
	if !Terminal(models.TicketCancelled) {
		t.Errorf("cancelled should be terminal")
	}
	if Terminal(models.TicketPreparing) {
		t.Errorf("preparing should not be terminal")
	}
}

func TestItemReadyAllowed(t *testing.T) {
	tests := []struct {
		status models.TicketStatus
		want   bool
	}{
		{models.TicketPending, false},
		{models.TicketAccepted, false},
		{models.TicketPreparing, true},
		{models.TicketReady, false},
		{models.TicketServed, false},
		{models.TicketCancelled, false},
	}

	for _, tt := range tests {
		if got := ItemReadyAllowed(tt.status); got != tt.want {
			t.Errorf("ItemReadyAllowed(%q) = %v, want %v", tt.status, got, tt.want)
		}
	}

	// A ticket that accepts item-level readiness can always advance to
	// ready itself once its last item turns ready.
	for _, tt := range tests {
		if tt.want && !ValidTransition(tt.status, models.TicketReady) {
			t.Errorf("ticket in %q accepts ready items but cannot reach ready", tt.status)
		}
	}
}

func TestAllItemsReady(t *testing.T) {
	tests := []struct {
		name  string
		items []models.KotItem
		want  bool
	}{
		{
			"all ready",
			[]models.KotItem{{Status: models.ItemReady}, {Status: models.ItemReady}},
			true,
		},
		{
			"one still preparing",
			[]models.KotItem{{Status: models.ItemReady}, {Status: models.ItemPreparing}},
			false,
		},
		{
			"cancelled items ignored",
			[]models.KotItem{{Status: models.ItemReady}, {Status: models.ItemCancelled}},
			true,
		},
		{
			"all cancelled is not ready",
			[]models.KotItem{{Status: models.ItemCancelled}},
			false,
		},
		{
			"served counts as ready",
			[]models.KotItem{{Status: models.ItemServed}, {Status: models.ItemReady}},
			true,
		},
	}

	for _, tt := range tests {
		if got := AllItemsReady(tt.items); got != tt.want {
			t.Errorf("%s: AllItemsReady = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestLiveItemCount(t *testing.T) {
	items := []models.KotItem{
		{Status: models.ItemPending},
		{Status: models.ItemCancelled},
		{Status: models.ItemReady},
	}
	if got := LiveItemCount(items); got != 2 {
		t.Errorf("LiveItemCount = %d, want 2", got)
	}
}
