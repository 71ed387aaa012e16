package middleware

import (
	"bytes"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

// responseWriter wraps http.ResponseWriter to capture status code, size and optionally the body
type responseWriter struct {
	http.ResponseWriter
	statusCode   int
	written      bool
	bytesWritten int
	body         *bytes.Buffer
}

func newResponseWriter(w http.ResponseWriter) *responseWriter {
	if rw, ok := w.(*responseWriter); ok {
		return rw
	}
	return &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
}

func (rw *responseWriter) WriteHeader(statusCode int) {
	if !rw.written {
		rw.statusCode = statusCode
		rw.written = true
		rw.ResponseWriter.WriteHeader(statusCode)
	}
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	if !rw.written {
		rw.WriteHeader(http.StatusOK)
	}
	if rw.body != nil {
		rw.body.Write(b)
	}
	n, err := rw.ResponseWriter.Write(b)
	rw.bytesWritten += n
	return n, err
}

func (rw *responseWriter) Unwrap() http.ResponseWriter {
	return rw.ResponseWriter
}

// Logging logs all HTTP requests with level-based detail
//
// Log levels:
//   - INFO: every completed request
//   - DEBUG: additionally request and response bodies and query parameters
//   - WARN: requests answered with 4xx
//   - ERROR: requests answered with 5xx
func Logging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		debug := slog.Default().Enabled(r.Context(), slog.LevelDebug)

		var requestBody []byte
		if debug && r.Body != nil {
			requestBody, _ = io.ReadAll(r.Body)
			r.Body = io.NopCloser(bytes.NewBuffer(requestBody))
		}

		wrapped := newResponseWriter(w)
		if debug {
			wrapped.body = &bytes.Buffer{}
		}

		next.ServeHTTP(wrapped, r)

		var level slog.Level
		var message string
		switch {
		case wrapped.statusCode >= 500:
			level, message = slog.LevelError, "Request failed with error"
		case wrapped.statusCode >= 400:
			level, message = slog.LevelWarn, "Request failed"
		default:
			level, message = slog.LevelInfo, "Request completed"
		}

		attrs := []any{
			"request_id", GetRequestID(r.Context()),
			"remote_ip", ClientIP(r),
			"user_agent", r.UserAgent(),
			"method", r.Method,
			"path", r.URL.Path,
			"status", wrapped.statusCode,
			"duration_ms", time.Since(start).Milliseconds(),
		}
		if debug {
			if len(r.URL.Query()) > 0 {
				attrs = append(attrs, "query_params", r.URL.Query())
			}
			if len(requestBody) > 0 {
				attrs = append(attrs, "request_body", redactBody(r.URL.Path, requestBody))
			}
			if wrapped.body.Len() > 0 {
				attrs = append(attrs, "response_body", redactBody(r.URL.Path, wrapped.body.Bytes()))
			}
		}

		slog.Log(r.Context(), level, message, attrs...)
	})
}

// redactBody hides bodies of the account endpoints, which carry passwords and tokens
func redactBody(path string, body []byte) string {
	if strings.HasPrefix(path, "/users/") {
		return "[redacted]"
	}
	return string(body)
}
