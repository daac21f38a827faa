package tickets

import "restaurant-pos/internal/models"

// ticketTransitions is the ticket state machine:
// pending → accepted → preparing → ready → served, with cancelled
// reachable from any non-terminal state.
var ticketTransitions = map[models.TicketStatus][]models.TicketStatus{
	models.TicketPending:   {models.TicketAccepted, models.TicketCancelled},
	models.TicketAccepted:  {models.TicketPreparing, models.TicketCancelled},
	models.TicketPreparing: {models.TicketReady, models.TicketCancelled},
	models.TicketReady:     {models.TicketServed, models.TicketCancelled},
	models.TicketServed:    {},
	models.TicketCancelled: {},
}

// ValidTransition reports whether a ticket may move from one status to
// another.
func ValidTransition(from, to models.TicketStatus) bool {
	for _, next := range ticketTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Terminal reports whether a ticket status admits no further
// transitions.
func Terminal(status models.TicketStatus) bool {
	return len(ticketTransitions[status]) == 0
}

// ItemReadyAllowed reports whether individual items on a ticket may be
// marked ready. Only a preparing ticket accepts item-level readiness;
// from there the last ready item can always advance the ticket itself.
func ItemReadyAllowed(status models.TicketStatus) bool {
	return status == models.TicketPreparing
}

// AllItemsReady reports whether every non-cancelled item on a ticket
// has reached ready (or beyond). A ticket only reaches ready when this
// holds.
func AllItemsReady(items []models.KotItem) bool {
	live := 0
	for _, item := range items {
		if item.Status == models.ItemCancelled {
			continue
		}
		live++
		if item.Status != models.ItemReady && item.Status != models.ItemServed {
			return false
		}
	}
	return live > 0
}

// LiveItemCount counts the non-cancelled items of a ticket.
func LiveItemCount(items []models.KotItem) int {
	count := 0
	for _, item := range items {
		if item.Status != models.ItemCancelled {
			count++
		}
	}
	return count
}
