package httpserver

import (
	"log/slog"
	"net/http"
)

// HealthCheckHandler serves liveness and readiness probes. With no
// dependency checks it always answers 200 "ALIVE"; with checks supplied
// it answers 200 "READY" when all pass and 500 "NOT_READY" otherwise.
func HealthCheckHandler(log *slog.Logger, checks ...func(*http.Request) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if len(checks) == 0 {
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte("ALIVE"))
			return
		}
		for _, check := range checks {
			if err := check(r); err != nil {
				if log != nil {
					log.ErrorContext(r.Context(), "healthcheck failed", "error", err)
				}
				w.WriteHeader(http.StatusInternalServerError)
				_, _ = w.Write([]byte("NOT_READY"))
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("READY"))
	}
}
