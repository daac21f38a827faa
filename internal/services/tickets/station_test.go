package tickets

import (
	"testing"

	"restaurant-pos/internal/models"
)

func TestStationFor(t *testing.T) {
	tests := []struct {
		name        string
		item        models.OrderItem
		wantStation string
		wantClass   models.StationClass
	}{
		{"configured kitchen", models.OrderItem{Station: "kitchen", StationClass: "kitchen"}, "kitchen", models.StationKitchen},
		{"configured bar", models.OrderItem{Station: "bar", StationClass: "bar"}, "bar", models.StationBar},
		{"mocktail counter", models.OrderItem{Station: "mocktail", StationClass: "bar"}, "mocktail", models.StationBar},
		{"dessert is kitchen class", models.OrderItem{Station: "dessert", StationClass: "kitchen"}, "dessert", models.StationKitchen},
		{"unconfigured defaults to kitchen", models.OrderItem{}, "kitchen", models.StationKitchen},
	}

	for _, tt := range tests {
		station, class := StationFor(tt.item)
		if station != tt.wantStation || class != tt.wantClass {
			t.Errorf("%s: StationFor = (%q, %q), want (%q, %q)", tt.name, station, class, tt.wantStation, tt.wantClass)
		}
	}
}

func TestGroupByStation(t *testing.T) {
	items := []models.OrderItem{
		{ID: 1, Name: "Paneer Tikka", Station: "kitchen", StationClass: "kitchen"},
		{ID: 2, Name: "Mojito", Station: "bar", StationClass: "bar"},
		{ID: 3, Name: "Dal Makhani", Station: "kitchen", StationClass: "kitchen"},
	}

	groups := GroupByStation(items)
	if len(groups) != 2 {
		t.Fatalf("expected 2 groups, got %d", len(groups))
	}

	// Deterministic order: bar before kitchen.
	if groups[0].Station != "bar" || len(groups[0].Items) != 1 {
		t.Errorf("groups[0] = %s with %d items, want bar with 1", groups[0].Station, len(groups[0].Items))
	}
	if groups[1].Station != "kitchen" || len(groups[1].Items) != 2 {
		t.Errorf("groups[1] = %s with %d items, want kitchen with 2", groups[1].Station, len(groups[1].Items))
	}

	if TicketPrefix(groups[0].Class) != "BOT" {
		t.Errorf("bar group prefix = %s, want BOT", TicketPrefix(groups[0].Class))
	}
	if TicketPrefix(groups[1].Class) != "KOT" {
		t.Errorf("kitchen group prefix = %s, want KOT", TicketPrefix(groups[1].Class))
	}
}

func TestGroupByStationEmpty(t *testing.T) {
	if groups := GroupByStation(nil); len(groups) != 0 {
		t.Errorf("expected no groups for no items, got %d", len(groups))
	}
}

func TestSnapshotItem(t *testing.T) {
	notes := "extra spicy"
	oi := models.OrderItem{
		ID:           42,
		Name:         "Paneer Tikka",
		Quantity:     2,
		Addons:       []models.Addon{{Name: "Extra Cheese", Price: 30, Quantity: 1}},
		Instructions: &notes,
		Status:       models.ItemSentToKitchen,
	}

	ki := snapshotItem(7, oi)

	if ki.TicketID != 7 || ki.OrderItemID != 42 {
		t.Errorf("snapshot linked to ticket %d item %d, want 7/42", ki.TicketID, ki.OrderItemID)
	}
	if ki.Name != "Paneer Tikka" || ki.Quantity != 2 {
		t.Errorf("snapshot = %s x%d, want Paneer Tikka x2", ki.Name, ki.Quantity)
	}
	// The ticket copy starts its own lifecycle at pending regardless of
	// the order line's status.
	if ki.Status != models.ItemPending {
		t.Errorf("snapshot status = %s, want %s", ki.Status, models.ItemPending)
	}
}
