package rest

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gridstats/nfl-efficiency-hub/internal/domain/shared"
)

// errorResponse is the JSON body of every non-2xx answer.
type errorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// writeError maps domain error kinds onto HTTP status codes.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	kind := ""

	switch {
	case errors.Is(err, shared.ErrInvalidInput),
		errors.Is(err, shared.ErrInvalidFormat),
		errors.Is(err, shared.ErrValueOutOfRange):
		status = http.StatusBadRequest
		kind = "invalid_request"
	case errors.Is(err, shared.ErrNotFound):
		status = http.StatusNotFound
		kind = "not_found"
	case errors.Is(err, shared.ErrEmptyDataset):
		status = http.StatusNotFound
		kind = "no_data"
	case errors.Is(err, shared.ErrExternalService):
		status = http.StatusBadGateway
		kind = "upstream_unavailable"
	}

	writeJSON(w, status, errorResponse{Error: err.Error(), Kind: kind})
}
