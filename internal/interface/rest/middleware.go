package rest

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/gridstats/nfl-efficiency-hub/pkg/logger"
)

const requestIDHeader = "X-Request-ID"

// statusRecorder captures the status code written by a handler.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// withRequestContext tags every request with an ID, logs its outcome and
// converts panics into 500 responses.
func withRequestContext(next http.Handler, log *logger.Logger) http.Handler {
	if log == nil {
		log = logger.Default()
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(requestIDHeader)
		if id == "" {
			id = uuid.New().String()
		}
		w.Header().Set(requestIDHeader, id)

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		started := time.Now()

		defer func() {
			if rv := recover(); rv != nil {
				log.Error("handler panic",
					logger.String("request_id", id),
					logger.String("path", r.URL.Path),
					logger.String("panic", toString(rv)),
				)
				http.Error(rec, `{"error":"internal server error"}`, http.StatusInternalServerError)
			}

			log.Info("request",
				logger.String("request_id", id),
				logger.String("method", r.Method),
				logger.String("path", r.URL.Path),
				logger.Int("status", rec.status),
				logger.Latency(time.Since(started)),
			)
		}()

		next.ServeHTTP(rec, r)
	})
}

func toString(rv any) string {
	if err, ok := rv.(error); ok {
		return err.Error()
	}
	if s, ok := rv.(string); ok {
		return s
	}
	return "unknown panic"
}
