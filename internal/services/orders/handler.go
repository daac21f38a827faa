package orders

import (
	"context"
	"net/http"

	"restaurant-pos/internal/api"
	"restaurant-pos/internal/logger"
	"restaurant-pos/internal/models"
)

// Handler handles HTTP requests for orders.
type Handler struct {
	service *Service
	logger  *logger.Logger
}

// NewHandler creates a new order handler.
func NewHandler(service *Service, log *logger.Logger) *Handler {
	return &Handler{service: service, logger: log}
}

// Register wires the order routes onto the mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /orders", h.CreateOrder)
	mux.HandleFunc("GET /orders/{id}", h.GetOrder)
	mux.HandleFunc("POST /orders/{id}/items", h.AddItems)
	mux.HandleFunc("POST /orders/items/{id}/cancel", h.CancelItem)
	mux.HandleFunc("POST /orders/{id}/cancel", h.CancelOrder)
}

// CreateOrder handles POST /orders.
func (h *Handler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	requestID := logger.GenerateRequestID()

	actor, err := api.ActorFrom(r)
	if err != nil {
		api.WriteError(w, requestID, err)
		return
	}

	var req models.CreateOrderRequest
	if err := api.DecodeJSON(r, &req); err != nil {
		api.WriteError(w, requestID, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), api.RequestTimeout)
	defer cancel()

	order, err := h.service.CreateOrder(ctx, actor, &req, requestID)
	if err != nil {
		h.logger.Error("order_create_failed", "Failed to create order", requestID, err, map[string]interface{}{
			"order_type": req.OrderType,
		})
		api.WriteError(w, requestID, err)
		return
	}
	api.WriteJSON(w, http.StatusCreated, order)
}

// GetOrder handles GET /orders/{id}.
func (h *Handler) GetOrder(w http.ResponseWriter, r *http.Request) {
	requestID := logger.GenerateRequestID()

	orderID, err := api.PathID(r, "id")
	if err != nil {
		api.WriteError(w, requestID, err)
		return
	}

	order, err := h.service.GetOrder(r.Context(), orderID)
	if err != nil {
		api.WriteError(w, requestID, err)
		return
	}
	api.WriteJSON(w, http.StatusOK, order)
}

// AddItems handles POST /orders/{id}/items.
func (h *Handler) AddItems(w http.ResponseWriter, r *http.Request) {
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

	var req models.AddItemsRequest
	if err := api.DecodeJSON(r, &req); err != nil {
		api.WriteError(w, requestID, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), api.RequestTimeout)
	defer cancel()

	order, err := h.service.AddItems(ctx, orderID, actor, &req, requestID)
	if err != nil {
		h.logger.Error("items_add_failed", "Failed to add items", requestID, err, map[string]interface{}{
			"order_id": orderID,
		})
		api.WriteError(w, requestID, err)
		return
	}
	api.WriteJSON(w, http.StatusOK, order)
}

// CancelItem handles POST /orders/items/{id}/cancel.
func (h *Handler) CancelItem(w http.ResponseWriter, r *http.Request) {
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

	var req models.CancelRequest
	if err := api.DecodeJSON(r, &req); err != nil {
		api.WriteError(w, requestID, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), api.RequestTimeout)
	defer cancel()

	order, err := h.service.CancelItem(ctx, itemID, actor, &req, requestID)
	if err != nil {
		h.logger.Error("item_cancel_failed", "Failed to cancel item", requestID, err, map[string]interface{}{
			"item_id": itemID,
		})
		api.WriteError(w, requestID, err)
		return
	}
	api.WriteJSON(w, http.StatusOK, order)
}

// CancelOrder handles POST /orders/{id}/cancel.
func (h *Handler) CancelOrder(w http.ResponseWriter, r *http.Request) {
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

	var req models.CancelRequest
	if err := api.DecodeJSON(r, &req); err != nil {
		api.WriteError(w, requestID, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), api.RequestTimeout)
	defer cancel()

	if err := h.service.CancelOrder(ctx, orderID, actor, &req, requestID); err != nil {
		h.logger.Error("order_cancel_failed", "Failed to cancel order", requestID, err, map[string]interface{}{
			"order_id": orderID,
		})
		api.WriteError(w, requestID, err)
		return
	}
	api.WriteJSON(w, http.StatusOK, map[string]string{"status": "order_cancelled"})
}
