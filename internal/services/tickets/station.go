package tickets

import (
	"sort"

	"restaurant-pos/internal/models"
)

// StationGroup is one dispatch unit: the pending items bound for one
// preparation station.
type StationGroup struct {
	Station string
	Class   models.StationClass
	Items   []models.OrderItem
}

// StationFor resolves the preparation station of one item. Items carry
// the station snapshotted from the catalog at add time; anything
// unconfigured falls back to the kitchen.
func StationFor(item models.OrderItem) (string, models.StationClass) {
	station := item.Station
	if station == "" {
		station = "kitchen"
	}
	class := models.StationClass(item.StationClass)
	if class != models.StationBar {
		class = models.StationKitchen
	}
	return station, class
}

// GroupByStation splits items into per-station dispatch groups. It is a
// pure function of its input: group order is deterministic (stations
// sorted by name) regardless of item order.
func GroupByStation(items []models.OrderItem) []StationGroup {
	byStation := make(map[string]*StationGroup)
	for _, item := range items {
		station, class := StationFor(item)
		g, ok := byStation[station]
		if !ok {
			g = &StationGroup{Station: station, Class: class}
			byStation[station] = g
		}
		g.Items = append(g.Items, item)
	}

	names := make([]string, 0, len(byStation))
	for name := range byStation {
		names = append(names, name)
	}
	sort.Strings(names)

	groups := make([]StationGroup, 0, len(names))
	for _, name := range names {
		groups = append(groups, *byStation[name])
	}
	return groups
}

// TicketPrefix is the station-class sequence prefix: KOT for
// kitchen-type stations, BOT for bar-type ones.
func TicketPrefix(class models.StationClass) string {
	if class == models.StationBar {
		return "BOT"
	}
	return "KOT"
}
