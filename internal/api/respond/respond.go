// Package respond writes the JSON bodies shared by handlers and middleware.
package respond

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/glowupgrow/terrarium-api/internal/apperr"
	"github.com/glowupgrow/terrarium-api/internal/logging"
)

// ErrorBody is the shape of every failed response.
type ErrorBody struct {
	Message string `json:"Message"`
	Success bool   `json:"Success"`
}

func JSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

// Error translates err to its status and public message. Server-side
// failures are logged with their full context; the caller sees only the
// generic message.
func Error(w http.ResponseWriter, r *http.Request, err error) {
	status, message := apperr.Status(err)

	if status >= http.StatusInternalServerError {
		logging.LogError(r.Context(), slog.Default(), "request failed", err)
	} else {
		slog.DebugContext(r.Context(), "request rejected",
			"status", status,
			"code", apperr.Code(err),
			"error", err.Error())
	}

	JSON(w, status, ErrorBody{Message: message, Success: false})
}
