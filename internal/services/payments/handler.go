package payments

import (
	"context"
	"net/http"

	"restaurant-pos/internal/api"
	"restaurant-pos/internal/logger"
	"restaurant-pos/internal/models"
)

// Handler handles HTTP requests for payments.
type Handler struct {
	service *Service
	logger  *logger.Logger
}

// NewHandler creates a new payment handler.
func NewHandler(service *Service, log *logger.Logger) *Handler {
	return &Handler{service: service, logger: log}
}

// Register wires the payment routes onto the mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /orders/payment", h.Pay)
	mux.HandleFunc("POST /orders/payment/split", h.PaySplit)
}

// Pay handles POST /orders/payment.
func (h *Handler) Pay(w http.ResponseWriter, r *http.Request) {
	requestID := logger.GenerateRequestID()

	actor, err := api.ActorFrom(r)
	if err != nil {
		api.WriteError(w, requestID, err)
		return
	}

	var req models.PaymentRequest
	if err := api.DecodeJSON(r, &req); err != nil {
		api.WriteError(w, requestID, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), api.RequestTimeout)
	defer cancel()

	payment, err := h.service.Pay(ctx, actor, &req, requestID)
	if err != nil {
		h.logger.Error("payment_failed", "Failed to record payment", requestID, err, map[string]interface{}{
			"invoice_id": req.InvoiceID,
			"order_id":   req.OrderID,
		})
		api.WriteError(w, requestID, err)
		return
	}
	api.WriteJSON(w, http.StatusCreated, payment)
}

// PaySplit handles POST /orders/payment/split.
func (h *Handler) PaySplit(w http.ResponseWriter, r *http.Request) {
	requestID := logger.GenerateRequestID()

	actor, err := api.ActorFrom(r)
	if err != nil {
		api.WriteError(w, requestID, err)
		return
	}

	var req models.SplitPaymentRequest
	if err := api.DecodeJSON(r, &req); err != nil {
		api.WriteError(w, requestID, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), api.RequestTimeout)
	defer cancel()

	payment, err := h.service.PaySplit(ctx, actor, &req, requestID)
	if err != nil {
		h.logger.Error("split_payment_failed", "Failed to record split payment", requestID, err, map[string]interface{}{
			"invoice_id": req.InvoiceID,
			"order_id":   req.OrderID,
		})
		api.WriteError(w, requestID, err)
		return
	}
	api.WriteJSON(w, http.StatusCreated, payment)
}
