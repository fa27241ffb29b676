package v1

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/arnaudGHB/glconfig/internal/errs"
)

// toJSON writes v as a JSON response with the given status code.
func toJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// errorResponse is the standard error payload for the API.
type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

func writeErr(w http.ResponseWriter, status int, msg, code string) {
	toJSON(w, status, errorResponse{Error: msg, Code: code})
}

func badRequest(w http.ResponseWriter, msg string) { writeErr(w, http.StatusBadRequest, msg, "") }
func notFound(w http.ResponseWriter)               { writeErr(w, http.StatusNotFound, "not_found", "not_found") }
func conflict(w http.ResponseWriter, msg, code string) {
	writeErr(w, http.StatusConflict, msg, code)
}

// writeServiceError maps engine sentinels to HTTP statuses.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, errs.ErrNoAccountTypeRoot):
		conflict(w, "no operational or ordinary account configured", "no_account_type_root")
	case errors.Is(err, errs.ErrRootAccountMissing):
		conflict(w, "root account position is not configured", "root_account_missing")
	case errors.Is(err, errs.ErrInvalid):
		badRequest(w, err.Error())
	case errors.Is(err, errs.ErrNotFound):
		notFound(w)
	default:
		writeErr(w, http.StatusInternalServerError, "configuration failed: "+err.Error(), "internal_error")
	}
}
