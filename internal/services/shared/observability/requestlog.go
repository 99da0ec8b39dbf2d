// Package observability provides HTTP middleware shared by the service
// surfaces: per-request log lines and request id propagation.
package observability

import (
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/veilspire/gridlink/internal/platform/id"
	"github.com/veilspire/gridlink/internal/platform/requestctx"
)

// RequestIDHeader carries the caller-supplied request id. When absent a new
// id is generated so every log line is correlatable.
const RequestIDHeader = "X-Request-Id"

// statusRecorder captures the status code and body size written by a handler.
type statusRecorder struct {
	http.ResponseWriter
	status int
	bytes  int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (r *statusRecorder) Write(p []byte) (int, error) {
	if r.status == 0 {
		r.status = http.StatusOK
	}
	n, err := r.ResponseWriter.Write(p)
	r.bytes += n
	return n, err
}

// RequestLogger emits one structured line per request and threads a request
// id through the context and the response headers.
func RequestLogger(logger *log.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requestID := strings.TrimSpace(r.Header.Get(RequestIDHeader))
			if requestID == "" {
				generated, err := id.NewID()
				if err == nil {
					requestID = generated
				}
			}

			ctx := requestctx.WithRequestID(r.Context(), requestID)
			w.Header().Set(RequestIDHeader, requestID)

			recorder := &statusRecorder{ResponseWriter: w}
			start := time.Now()
			next.ServeHTTP(recorder, r.WithContext(ctx))

			if recorder.status == 0 {
				recorder.status = http.StatusOK
			}
			if logger != nil {
				logger.Printf("method=%s path=%s status=%d bytes=%d latency=%s request_id=%s",
					r.Method, r.URL.Path, recorder.status, recorder.bytes,
					time.Since(start).Round(time.Millisecond), requestID)
			}
		})
	}
}
