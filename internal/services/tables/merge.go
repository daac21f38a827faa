package tables

import "restaurant-pos/internal/models"

// CombinedCapacity is the capacity a merge primary takes on: the sum of
// its own and every member's capacity.
func CombinedCapacity(primary models.Table, members []models.Table) int {
	total := primary.Capacity
	for _, m := range members {
		total += m.Capacity
	}
	return total
}

// MergeableMember reports whether a table can join a merge group.
// Only free-standing available tables qualify.
func MergeableMember(t models.Table) bool {
	return t.Status == models.TableAvailable && t.MergedInto == nil
}

// OriginalCapacities records the pre-merge capacity of the primary and
// every member, keyed by table id, so an unmerge restores them exactly.
func OriginalCapacities(primary models.Table, members []models.Table) map[int]int {
	caps := make(map[int]int, len(members)+1)
	caps[primary.ID] = primary.Capacity
	for _, m := range members {
		caps[m.ID] = m.Capacity
	}
	return caps
}
