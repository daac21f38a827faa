package billing

import (
	"context"
	"net/http"

	"restaurant-pos/internal/api"
	"restaurant-pos/internal/logger"
	"restaurant-pos/internal/models"
)

// Handler handles HTTP requests for invoices.
type Handler struct {
	service *Service
	logger  *logger.Logger
}

// NewHandler creates a new billing handler.
func NewHandler(service *Service, log *logger.Logger) *Handler {
	return &Handler{service: service, logger: log}
}

// Register wires the billing routes onto the mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /orders/{id}/bill", h.GenerateBill)
	mux.HandleFunc("GET /orders/invoice/{id}", h.GetInvoice)
	mux.HandleFunc("POST /orders/invoice/{id}/cancel", h.CancelInvoice)
	mux.HandleFunc("POST /orders/invoice/{id}/duplicate", h.DuplicateInvoice)
	mux.HandleFunc("POST /orders/invoice/{id}/print", h.PrintInvoice)
}

// GenerateBill handles POST /orders/{id}/bill.
func (h *Handler) GenerateBill(w http.ResponseWriter, r *http.Request) {
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

	var req models.GenerateBillRequest
	if err := api.DecodeJSON(r, &req); err != nil {
		api.WriteError(w, requestID, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), api.RequestTimeout)
	defer cancel()

	invoice, err := h.service.GenerateBill(ctx, orderID, actor, &req, requestID)
	if err != nil {
		h.logger.Error("bill_generate_failed", "Failed to generate bill", requestID, err, map[string]interface{}{
			"order_id": orderID,
		})
		api.WriteError(w, requestID, err)
		return
	}
	api.WriteJSON(w, http.StatusCreated, invoice)
}

// GetInvoice handles GET /orders/invoice/{id}.
func (h *Handler) GetInvoice(w http.ResponseWriter, r *http.Request) {
	requestID := logger.GenerateRequestID()

	invoiceID, err := api.PathID(r, "id")
	if err != nil {
		api.WriteError(w, requestID, err)
		return
	}

	invoice, err := h.service.GetInvoice(r.Context(), invoiceID)
	if err != nil {
		api.WriteError(w, requestID, err)
		return
	}
	api.WriteJSON(w, http.StatusOK, invoice)
}

// CancelInvoice handles POST /orders/invoice/{id}/cancel.
func (h *Handler) CancelInvoice(w http.ResponseWriter, r *http.Request) {
	requestID := logger.GenerateRequestID()

	actor, err := api.ActorFrom(r)
	if err != nil {
		api.WriteError(w, requestID, err)
		return
	}
	invoiceID, err := api.PathID(r, "id")
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

	if err := h.service.CancelInvoice(ctx, invoiceID, actor, &req, requestID); err != nil {
		h.logger.Error("invoice_cancel_failed", "Failed to cancel invoice", requestID, err, map[string]interface{}{
			"invoice_id": invoiceID,
		})
		api.WriteError(w, requestID, err)
		return
	}
	api.WriteJSON(w, http.StatusOK, map[string]string{"status": "invoice_cancelled"})
}

// DuplicateInvoice handles POST /orders/invoice/{id}/duplicate.
func (h *Handler) DuplicateInvoice(w http.ResponseWriter, r *http.Request) {
	requestID := logger.GenerateRequestID()

	actor, err := api.ActorFrom(r)
	if err != nil {
		api.WriteError(w, requestID, err)
		return
	}
	invoiceID, err := api.PathID(r, "id")
	if err != nil {
		api.WriteError(w, requestID, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), api.RequestTimeout)
	defer cancel()

	count, err := h.service.DuplicateInvoice(ctx, invoiceID, actor, requestID)
	if err != nil {
		api.WriteError(w, requestID, err)
		return
	}
	api.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"status":          "duplicate_queued",
		"duplicate_count": count,
	})
}

// PrintInvoice handles POST /orders/invoice/{id}/print.
func (h *Handler) PrintInvoice(w http.ResponseWriter, r *http.Request) {
	requestID := logger.GenerateRequestID()

	actor, err := api.ActorFrom(r)
	if err != nil {
		api.WriteError(w, requestID, err)
		return
	}
	invoiceID, err := api.PathID(r, "id")
	if err != nil {
		api.WriteError(w, requestID, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), api.RequestTimeout)
	defer cancel()

	if err := h.service.PrintInvoice(ctx, invoiceID, actor, requestID); err != nil {
		api.WriteError(w, requestID, err)
		return
	}
	api.WriteJSON(w, http.StatusOK, map[string]string{"status": "print_queued"})
}
