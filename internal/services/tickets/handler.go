package tickets

import (
	"context"
	"net/http"

	"restaurant-pos/internal/api"
	"restaurant-pos/internal/logger"
	"restaurant-pos/internal/models"
)

// Handler handles HTTP requests for kitchen/bar tickets.
type Handler struct {
	service *Service
	logger  *logger.Logger
}

// NewHandler creates a new ticket handler.
func NewHandler(service *Service, log *logger.Logger) *Handler {
	return &Handler{service: service, logger: log}
}

// Register wires the ticket routes onto the mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /orders/{id}/kot", h.SendTickets)
	mux.HandleFunc("GET /orders/kot/{id}", h.GetTicket)
	mux.HandleFunc("POST /orders/kot/{id}/accept", h.transition((*Service).Accept, "accepted"))
	mux.HandleFunc("POST /orders/kot/{id}/preparing", h.transition((*Service).StartPreparing, "preparing"))
	mux.HandleFunc("POST /orders/kot/{id}/ready", h.transition((*Service).MarkReady, "ready"))
	mux.HandleFunc("POST /orders/kot/{id}/served", h.transition((*Service).MarkServed, "served"))
	mux.HandleFunc("POST /orders/kot/{id}/cancel", h.CancelTicket)
	mux.HandleFunc("POST /orders/kot/{id}/reprint", h.Reprint)
	mux.HandleFunc("POST /orders/kot/items/{id}/ready", h.MarkItemReady)
}

// SendTickets handles POST /orders/{id}/kot.
func (h *Handler) SendTickets(w http.ResponseWriter, r *http.Request) {
	requestID := logger.GenerateRequestID()

	actor, err := api.ActorFrom(r)
	if err != nil {
		api.WriteError(w, requestID, err)
		return
	}
	orderID, err := api.PathID(r, "id")
	if err != nil {
		api.WriteError(w, requestID, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), api.RequestTimeout)
	defer cancel()

	tickets, err := h.service.SendTickets(ctx, orderID, actor, requestID)
	if err != nil {
		h.logger.Error("ticket_dispatch_failed", "Failed to dispatch tickets", requestID, err, map[string]interface{}{
			"order_id": orderID,
		})
		api.WriteError(w, requestID, err)
		return
	}

	if len(tickets) == 0 {
		api.WriteJSON(w, http.StatusOK, map[string]interface{}{
			"status":  "nothing_to_send",
			"tickets": []models.KotTicket{},
		})
		return
	}
	api.WriteJSON(w, http.StatusCreated, map[string]interface{}{
		"status":  "dispatched",
		"tickets": tickets,
	})
}

// GetTicket handles GET /orders/kot/{id}.
func (h *Handler) GetTicket(w http.ResponseWriter, r *http.Request) {
	requestID := logger.GenerateRequestID()

	ticketID, err := api.PathID(r, "id")
	if err != nil {
		api.WriteError(w, requestID, err)
		return
	}

	ticket, err := h.service.GetTicket(r.Context(), ticketID)
	if err != nil {
		api.WriteError(w, requestID, err)
		return
	}
	api.WriteJSON(w, http.StatusOK, ticket)
}

// transition builds the shared handler for the four forward
// state-machine steps.
func (h *Handler) transition(step func(*Service, context.Context, int, models.Actor, string) (*models.KotTicket, error), name string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		requestID := logger.GenerateRequestID()

		actor, err := api.ActorFrom(r)
		if err != nil {
			api.WriteError(w, requestID, err)
			return
		}
		ticketID, err := api.PathID(r, "id")
		if err != nil {
			api.WriteError(w, requestID, err)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), api.RequestTimeout)
		defer cancel()

		ticket, err := step(h.service, ctx, ticketID, actor, requestID)
		if err != nil {
			h.logger.Error("ticket_transition_failed", "Failed to move ticket to "+name, requestID, err, map[string]interface{}{
				"ticket_id": ticketID,
			})
			api.WriteError(w, requestID, err)
			return
		}
		api.WriteJSON(w, http.StatusOK, ticket)
	}
}

// CancelTicket handles POST /orders/kot/{id}/cancel.
func (h *Handler) CancelTicket(w http.ResponseWriter, r *http.Request) {
	requestID := logger.GenerateRequestID()

	actor, err := api.ActorFrom(r)
	if err != nil {
		api.WriteError(w, requestID, err)
		return
	}
	ticketID, err := api.PathID(r, "id")
	if err != nil {
		api.WriteError(w, requestID, err)
		return
	}

	var req models.CancelRequest
	if err := api.DecodeJSON(r, &req); err != nil {
		api.WriteError(w, requestID, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), api.RequestTimeout)
	defer cancel()

	if err := h.service.Cancel(ctx, ticketID, actor, &req, requestID); err != nil {
		h.logger.Error("ticket_cancel_failed", "Failed to cancel ticket", requestID, err, map[string]interface{}{
			"ticket_id": ticketID,
		})
		api.WriteError(w, requestID, err)
		return
	}
	api.WriteJSON(w, http.StatusOK, map[string]string{"status": "ticket_cancelled"})
}

// Reprint handles POST /orders/kot/{id}/reprint.
func (h *Handler) Reprint(w http.ResponseWriter, r *http.Request) {
	requestID := logger.GenerateRequestID()

	actor, err := api.ActorFrom(r)
	if err != nil {
		api.WriteError(w, requestID, err)
		return
	}
	ticketID, err := api.PathID(r, "id")
	if err != nil {
		api.WriteError(w, requestID, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), api.RequestTimeout)
	defer cancel()

	count, err := h.service.Reprint(ctx, ticketID, actor, requestID)
	if err != nil {
		api.WriteError(w, requestID, err)
		return
	}
	api.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"status":        "reprinted",
		"reprint_count": count,
	})
}

// MarkItemReady handles POST /orders/kot/items/{id}/ready.
func (h *Handler) MarkItemReady(w http.ResponseWriter, r *http.Request) {
	requestID := logger.GenerateRequestID()

	actor, err := api.ActorFrom(r)
	if err != nil {
		api.WriteError(w, requestID, err)
		return
	}
	itemID, err := api.PathID(r, "id")
	if err != nil {
		api.WriteError(w, requestID, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), api.RequestTimeout)
	defer cancel()

	if err := h.service.MarkItemReady(ctx, itemID, actor, requestID); err != nil {
		h.logger.Error("item_ready_failed", "Failed to mark item ready", requestID, err, map[string]interface{}{
			"kot_item_id": itemID,
		})
		api.WriteError(w, requestID, err)
		return
	}
	api.WriteJSON(w, http.StatusOK, map[string]string{"status": "item_ready"})
}
