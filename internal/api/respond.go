// Package api is the single serialization boundary: every handler
// decodes requests, extracts the acting staff member, and encodes
// success and error responses through it, so external field naming is
// one deliberate transform.
package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"restaurant-pos/internal/apperrors"
	"restaurant-pos/internal/models"
)

// WriteJSON encodes a success payload.
func WriteJSON(w http.ResponseWriter, statusCode int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(v)
}

// WriteError encodes an error with its stable machine-readable kind.
func WriteError(w http.ResponseWriter, requestID string, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(apperrors.HTTPStatus(err))

	json.NewEncoder(w).Encode(map[string]interface{}{
		"error": map[string]string{
			"kind":    string(apperrors.KindOf(err)),
			"message": apperrors.MessageOf(err),
		},
		"request_id": requestID,
		"timestamp":  time.Now().UTC().Format(time.RFC3339),
	})
}

// DecodeJSON parses a request body, rejecting unknown fields.
func DecodeJSON(r *http.Request, v interface{}) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(v); err != nil {
		return apperrors.Validation("invalid JSON payload: %v", err)
	}
	return nil
}

// ActorFrom extracts the acting staff member from the trusted gateway
// headers.
func ActorFrom(r *http.Request) (models.Actor, error) {
	staffID, _ := strconv.Atoi(r.Header.Get("X-Staff-Id"))
	actor := models.Actor{
		StaffID: staffID,
		Role:    r.Header.Get("X-Staff-Role"),
	}
	if err := actor.Validate(); err != nil {
		return models.Actor{}, apperrors.Validation("%s", err.Error())
	}
	return actor, nil
}

// PathID parses a numeric path parameter.
func PathID(r *http.Request, name string) (int, error) {
	raw := r.PathValue(name)
	id, err := strconv.Atoi(raw)
	if err != nil || id < 1 {
		return 0, apperrors.Validation("invalid %s: %s", name, raw)
	}
	return id, nil
}

// RequestTimeout bounds one handler's downstream work.
const RequestTimeout = 30 * time.Second
