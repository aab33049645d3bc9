// Package handlers provides the JSON API handlers.
package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/platewise/v1/internal/infrastructure/http/middleware"
	"github.com/platewise/v1/pkg/errors"
)

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

// writeError maps any error to the structured error payload. Non-App
// errors become internal errors.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	appErr := errors.Wrap(err, "request failed")
	resp := errors.ToErrorResponse(appErr, middleware.GetRequestID(r.Context()))
	writeJSON(w, appErr.StatusCode(), resp)
}

func writeBadRequest(w http.ResponseWriter, r *http.Request, message string) {
	writeError(w, r, errors.NewBadRequestError(message))
}
