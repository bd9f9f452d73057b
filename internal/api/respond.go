package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	apperr "github.com/julianstephens/finlit/internal/errors"
	"github.com/julianstephens/finlit/internal/logger"
)

type errorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind"`
}

func respondWithJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logger.Warn("Failed to encode response", "error", err)
	}
}

func statusFor(kind apperr.Kind) int {
	switch kind {
	case apperr.KindValidation:
		return http.StatusBadRequest
	case apperr.KindNotFound:
		return http.StatusNotFound
	case apperr.KindDatabase:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func respondWithError(w http.ResponseWriter, err error) {
	kind := apperr.KindOf(err)
	status := statusFor(kind)
	if status >= http.StatusInternalServerError {
		logger.Error("Request failed", "kind", kind.String(), "error", err)
	}
	respondWithJSON(w, status, errorResponse{Error: err.Error(), Kind: kind.String()})
}

// decode reads a JSON body into dst. An empty body leaves dst untouched.
func decode(r *http.Request, dst interface{}) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		if apperr.IsValidation(err) {
			return err
		}
		return apperr.Validation("api.decode", "invalid request body: %s", err)
	}
	if dec.More() {
		return apperr.Validation("api.decode", "invalid request body: %s", fmt.Errorf("trailing data"))
	}
	return nil
}

// optionalPositive maps an omitted field to zero, which services read as
// "use the default". An explicit value must be at least 1.
func optionalPositive(op, field string, v *int) (int, error) {
	if v == nil {
		return 0, nil
	}
	if *v < 1 {
		return 0, apperr.Validation(op, "%s must be at least 1, got %d", field, *v)
	}
	return *v, nil
}
