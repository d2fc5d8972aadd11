package middleware

import (
	"net/http"
	"time"

	"github.com/taskpad/taskpad/internal/metrics"
)

// Metrics returns a middleware that records request durations on the
// given recorder. It should wrap the router after logging so that
// timings cover handler work only.
func Metrics(recorder metrics.Recorder) func(http.Handler) http.Handler {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			next.ServeHTTP(w, r)

			recorder.ObserveRequestDuration(time.Since(start))
		})
	}
}
