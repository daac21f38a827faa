package tables

import (
	"testing"

	"restaurant-pos/internal/models"
)

func TestCombinedCapacity(t *testing.T) {
	primary := models.Table{ID: 1, Capacity: 4}
	members := []models.Table{
		{ID: 2, Capacity: 6},
		{ID: 3, Capacity: 2},
	}

	if got := CombinedCapacity(primary, members); got != 12 {
		t.Errorf("CombinedCapacity = %d, want 12", got)
	}
	if got := CombinedCapacity(primary, nil); got != 4 {
		t.Errorf("CombinedCapacity with no members = %d, want 4", got)
	}
}

func TestOriginalCapacitiesRoundTrip(t *testing.T) {
	// Merging A (capacity 4) with B (capacity 6) must record both
	// originals so an unmerge restores A=4, B=6 exactly.
	a := models.Table{ID: 1, Capacity: 4}
	b := models.Table{ID: 2, Capacity: 6}

	caps := OriginalCapacities(a, []models.Table{b})

	if len(caps) != 2 {
		t.Fatalf("expected 2 recorded capacities, got %d", len(caps))
	}
	if caps[1] != 4 {
		t.Errorf("primary capacity = %d, want 4", caps[1])
	}
	if caps[2] != 6 {
		t.Errorf("member capacity = %d, want 6", caps[2])
	}

	if got := CombinedCapacity(a, []models.Table{b}); got != 10 {
		t.Errorf("merged capacity = %d, want 10", got)
	}
}

func TestMergeableMember(t *testing.T) {
	primaryID := 9

	tests := []struct {
		name  string
		table models.Table
		want  bool
	}{
		{"available", models.Table{Status: models.TableAvailable}, true},
		{"occupied", models.Table{Status: models.TableOccupied}, false},
		{"blocked", models.Table{Status: models.TableBlocked}, false},
		{"already merged", models.Table{Status: models.TableMerged, MergedInto: &primaryID}, false},
		{"billing", models.Table{Status: models.TableBilling}, false},
	}

	for _, tt := range tests {
		if got := MergeableMember(tt.table); got != tt.want {
			t.Errorf("%s: MergeableMember = %v, want %v", tt.name, got, tt.want)
		}
	}
}
