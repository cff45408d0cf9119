package httpapi

import (
	"context"
	"errors"
	"net/http"

	json "github.com/goccy/go-json"

	"mlserved/internal/manager"
	"mlserved/internal/mllib"
	"mlserved/pkg/types"
)

// HTTPError allows services to provide an HTTP status code for an error.
type HTTPError interface {
	error
	StatusCode() int
}

// StatusFor maps manager and backend errors to HTTP status codes. The batch
// front-ends report the same codes.
func StatusFor(err error) int {
	var he HTTPError
	switch {
	case manager.IsNotFound(err):
		return http.StatusNotFound
	case manager.IsServiceExists(err), manager.IsTrainingBusy(err):
		return http.StatusConflict
	case manager.IsTooBusy(err):
		return http.StatusTooManyRequests
	case manager.IsDependencyUnavailable(err):
		return http.StatusServiceUnavailable
	case mllib.IsBadParam(err):
		return http.StatusBadRequest
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.As(err, &he):
		return he.StatusCode()
	}
	return http.StatusInternalServerError
}

// writeError maps err and writes it as a JSON error payload.
func writeError(w http.ResponseWriter, err error) {
	status := StatusFor(err)
	switch {
	case manager.IsTooBusy(err):
		IncrementBackpressure("queue")
	case manager.IsTrainingBusy(err):
		IncrementBackpressure("training")
	}
	writeJSONError(w, status, err.Error())
}

// writeJSONError writes a consistent JSON error payload.
func writeJSONError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(types.ErrorResponse{Error: msg, Code: status})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	b, err := json.Marshal(v)
	if err != nil {
		writeJSONError(w, http.StatusInternalServerError, "failed to encode response")
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(append(b, '\n'))
}
