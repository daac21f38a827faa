package tables

import (
	"context"
	"net/http"

	"restaurant-pos/internal/api"
	"restaurant-pos/internal/logger"
	"restaurant-pos/internal/models"
)

// Handler handles HTTP requests for tables and sessions.
type Handler struct {
	service *Service
	logger  *logger.Logger
}

// NewHandler creates a new table handler.
func NewHandler(service *Service, log *logger.Logger) *Handler {
	return &Handler{service: service, logger: log}
}

// Register wires the table routes onto the mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /tables", h.ListTables)
	mux.HandleFunc("POST /tables/{id}/session", h.StartSession)
	mux.HandleFunc("DELETE /tables/{id}/session", h.EndSession)
	mux.HandleFunc("POST /tables/{id}/session/transfer", h.TransferOwnership)
	mux.HandleFunc("POST /tables/{id}/merge", h.MergeTables)
	mux.HandleFunc("DELETE /tables/{id}/merge", h.UnmergeTables)
}

// ListTables handles GET /tables.
func (h *Handler) ListTables(w http.ResponseWriter, r *http.Request) {
	requestID := logger.GenerateRequestID()

	tables, err := h.service.ListTables(r.Context())
	if err != nil {
		api.WriteError(w, requestID, err)
		return
	}
	api.WriteJSON(w, http.StatusOK, map[string]interface{}{"tables": tables})
}

// StartSession handles POST /tables/{id}/session.
func (h *Handler) StartSession(w http.ResponseWriter, r *http.Request) {
	requestID := logger.GenerateRequestID()

	actor, err := api.ActorFrom(r)
	if err != nil {
		api.WriteError(w, requestID, err)
		return
	}
	tableID, err := api.PathID(r, "id")
	if err != nil {
		api.WriteError(w, requestID, err)
		return
	}

	var req models.StartSessionRequest
	if err := api.DecodeJSON(r, &req); err != nil {
		api.WriteError(w, requestID, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), api.RequestTimeout)
	defer cancel()

	session, err := h.service.StartSession(ctx, tableID, actor, &req, requestID)
	if err != nil {
		h.logger.Error("session_start_failed", "Failed to start session", requestID, err, map[string]interface{}{
			"table_id": tableID,
		})
		api.WriteError(w, requestID, err)
		return
	}
	api.WriteJSON(w, http.StatusCreated, session)
}

// EndSession handles DELETE /tables/{id}/session.
func (h *Handler) EndSession(w http.ResponseWriter, r *http.Request) {
	requestID := logger.GenerateRequestID()

	actor, err := api.ActorFrom(r)
	if err != nil {
		api.WriteError(w, requestID, err)
		return
	}
	tableID, err := api.PathID(r, "id")
	if err != nil {
		api.WriteError(w, requestID, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), api.RequestTimeout)
	defer cancel()

	if err := h.service.EndSession(ctx, tableID, actor, requestID); err != nil {
		h.logger.Error("session_end_failed", "Failed to end session", requestID, err, map[string]interface{}{
			"table_id": tableID,
		})
		api.WriteError(w, requestID, err)
		return
	}
	api.WriteJSON(w, http.StatusOK, map[string]string{"status": "session_ended"})
}

// TransferOwnership handles POST /tables/{id}/session/transfer.
func (h *Handler) TransferOwnership(w http.ResponseWriter, r *http.Request) {
	requestID := logger.GenerateRequestID()

	actor, err := api.ActorFrom(r)
	if err != nil {
		api.WriteError(w, requestID, err)
		return
	}
	tableID, err := api.PathID(r, "id")
	if err != nil {
		api.WriteError(w, requestID, err)
		return
	}

	var req models.TransferOwnershipRequest
	if err := api.DecodeJSON(r, &req); err != nil {
		api.WriteError(w, requestID, err)
		return
	}
	if err := req.Validate(); err != nil {
		api.WriteError(w, requestID, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), api.RequestTimeout)
	defer cancel()

	if err := h.service.TransferOwnership(ctx, tableID, actor, req.NewStaffID, requestID); err != nil {
		api.WriteError(w, requestID, err)
		return
	}
	api.WriteJSON(w, http.StatusOK, map[string]string{"status": "ownership_transferred"})
}

// MergeTables handles POST /tables/{id}/merge.
func (h *Handler) MergeTables(w http.ResponseWriter, r *http.Request) {
	requestID := logger.GenerateRequestID()

	actor, err := api.ActorFrom(r)
	if err != nil {
		api.WriteError(w, requestID, err)
		return
	}
	tableID, err := api.PathID(r, "id")
	if err != nil {
		api.WriteError(w, requestID, err)
		return
	}

	var req models.MergeTablesRequest
	if err := api.DecodeJSON(r, &req); err != nil {
		api.WriteError(w, requestID, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), api.RequestTimeout)
	defer cancel()

	group, err := h.service.MergeTables(ctx, tableID, actor, &req, requestID)
	if err != nil {
		h.logger.Error("merge_failed", "Failed to merge tables", requestID, err, map[string]interface{}{
			"primary_table_id": tableID,
		})
		api.WriteError(w, requestID, err)
		return
	}
	api.WriteJSON(w, http.StatusCreated, group)
}

// UnmergeTables handles DELETE /tables/{id}/merge.
func (h *Handler) UnmergeTables(w http.ResponseWriter, r *http.Request) {
	requestID := logger.GenerateRequestID()

	actor, err := api.ActorFrom(r)
	if err != nil {
		api.WriteError(w, requestID, err)
		return
	}
	tableID, err := api.PathID(r, "id")
	if err != nil {
		api.WriteError(w, requestID, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), api.RequestTimeout)
	defer cancel()

	unmerged, err := h.service.UnmergeTables(ctx, tableID, actor, requestID)
	if err != nil {
		api.WriteError(w, requestID, err)
		return
	}

	status := "unmerged"
	if !unmerged {
		status = "nothing_to_unmerge"
	}
	api.WriteJSON(w, http.StatusOK, map[string]string{"status": status})
}
