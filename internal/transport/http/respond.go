package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/habitforge/mfa-service/internal/identity"
	"github.com/habitforge/mfa-service/internal/mfa"
)

type envelope struct {
	Data  any          `json:"data,omitempty"`
	Error *errorDetail `json:"error,omitempty"`
}

type errorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, body envelope) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeData(w http.ResponseWriter, data any) {
	writeJSON(w, http.StatusOK, envelope{Data: data})
}

func writeErrorCode(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, envelope{Error: &errorDetail{Code: code, Message: message}})
}

var errorMapping = []struct {
	sentinel error
	status   int
	code     string
}{
	{identity.ErrUnauthorized, http.StatusUnauthorized, "unauthorized"},
	{mfa.ErrNotEnrolled, http.StatusConflict, "not_enrolled"},
	{mfa.ErrInvalidCredential, http.StatusForbidden, "invalid_credential"},
	{mfa.ErrRateLimited, http.StatusTooManyRequests, "rate_limited"},
	{mfa.ErrDeliveryFailed, http.StatusBadGateway, "delivery_failed"},
	{mfa.ErrNoEmailAddress, http.StatusUnprocessableEntity, "no_email_address"},
	{mfa.ErrDeviceNotFound, http.StatusNotFound, "device_not_found"},
}

// writeError maps domain errors onto stable (status, code) pairs. Only
// the sentinel's text goes to the client; wrapped causes stay inside the
// process.
func writeError(w http.ResponseWriter, err error) {
	for _, m := range errorMapping {
		if errors.Is(err, m.sentinel) {
			writeErrorCode(w, m.status, m.code, m.sentinel.Error())
			return
		}
	}
	writeErrorCode(w, http.StatusInternalServerError, "internal_error",
		http.StatusText(http.StatusInternalServerError))
}
