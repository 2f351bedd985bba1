// Package web exposes the HTTP API: auth, customers, and the visit
// lifecycle endpoints.
package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// errorBody is the envelope every non-2xx response carries.
type errorBody struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

func apiJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(v); err != nil {
		// Headers are gone; nothing left to do but log.
		slog.Error("encoding response", "error", err)
	}
}

func apiError(w http.ResponseWriter, status int, code, message string) {
	apiJSON(w, status, errorBody{Code: code, Message: message})
}

func apiErrorDetails(w http.ResponseWriter, status int, code, message string, details interface{}) {
	apiJSON(w, status, errorBody{Code: code, Message: message, Details: details})
}

// decodeBody parses and validates a JSON request body into dst.
func decodeBody(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	return decode(w, r, dst, false)
}

// decodeOptionalBody is decodeBody for endpoints where an empty body is a
// valid request, like starting a visit with no explicit location.
func decodeOptionalBody(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	return decode(w, r, dst, true)
}

func decode(w http.ResponseWriter, r *http.Request, dst interface{}, allowEmpty bool) bool {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		if allowEmpty && errors.Is(err, io.EOF) {
			return true
		}
		apiError(w, http.StatusBadRequest, "bad_request", "invalid JSON body: "+err.Error())
		return false
	}
	if err := validate.Struct(dst); err != nil {
		var fields validator.ValidationErrors
		if errors.As(err, &fields) && len(fields) > 0 {
			f := fields[0]
			apiError(w, http.StatusBadRequest, "validation_failed",
				fmt.Sprintf("field %s failed on %s", f.Field(), f.Tag()))
			return false
		}
		apiError(w, http.StatusBadRequest, "validation_failed", err.Error())
		return false
	}
	return true
}
