package api

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/okian/voicepartner/pkg/logger"
	"github.com/okian/voicepartner/pkg/metrics"
)

var errHandlerPanic = errors.New("handler panic")

// MetricsMiddleware records request counts, latency and error kinds for
// endpoint, logs failed requests and turns a handler panic into a 500.
func MetricsMiddleware(next http.HandlerFunc, endpoint string) http.HandlerFunc {
	log := logger.Named("http")
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		defer func() {
			if p := recover(); p != nil {
				log.Error(r.Context(), "handler panicked",
					logger.String("endpoint", endpoint),
					logger.Any("panic", p),
				)
				if !rec.wrote {
					writeError(rec, http.StatusInternalServerError, "internal_error", fmt.Errorf("%w: %s", errHandlerPanic, endpoint))
				}
			}

			durationMs := float64(time.Since(start).Microseconds()) / 1000
			code := strconv.Itoa(rec.status)
			metrics.RecordHTTPRequest(endpoint, r.Method, code)
			metrics.RecordHTTPRequestDuration(endpoint, r.Method, code, durationMs)
			if rec.status < http.StatusBadRequest {
				return
			}
			kind := errorKind(rec.status)
			metrics.RecordErrorByComponent("http", kind)
			fields := []logger.Field{
				logger.String("endpoint", endpoint),
				logger.String("method", r.Method),
				logger.Int("status", rec.status),
				logger.String("kind", kind),
				logger.Float64("duration_ms", durationMs),
			}
			if rec.status >= http.StatusInternalServerError {
				log.Error(r.Context(), "request failed", fields...)
			} else {
				log.Debug(r.Context(), "request rejected", fields...)
			}
		}()

		next.ServeHTTP(rec, r)
	}
}

// errorKind buckets an error status for the errors_total metric.
func errorKind(status int) string {
	switch {
	case status == http.StatusServiceUnavailable:
		return "unavailable"
	case status >= http.StatusInternalServerError:
		return "server_error"
	case status == http.StatusTooManyRequests:
		return "backpressure"
	case status == http.StatusNotFound:
		return "not_found"
	default:
		return "client_error"
	}
}

// statusRecorder remembers the status code written through it.
type statusRecorder struct {
	http.ResponseWriter
	status int
	wrote  bool
}

func (s *statusRecorder) WriteHeader(code int) {
	if s.wrote {
		return
	}
	s.status = code
	s.wrote = true
	s.ResponseWriter.WriteHeader(code)
}

func (s *statusRecorder) Write(b []byte) (int, error) {
	s.wrote = true
	n, err := s.ResponseWriter.Write(b)
	if err != nil {
		return n, fmt.Errorf("write response: %w", err)
	}
	return n, nil
}
