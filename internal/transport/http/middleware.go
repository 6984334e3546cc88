package http

import (
	"bytes"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
)

// LoggingMiddleware logs requests and responses
type LoggingMiddleware struct {
	logger  zerolog.Logger
	verbose bool
}

// NewLoggingMiddleware creates a new logging middleware
func NewLoggingMiddleware(logger zerolog.Logger, verbose bool) *LoggingMiddleware {
	return &LoggingMiddleware{
		logger:  logger,
		verbose: verbose,
	}
}

// loggingResponseWriter wraps http.ResponseWriter to capture response details
type loggingResponseWriter struct {
	http.ResponseWriter
	statusCode int
	body       *bytes.Buffer
}

func (lrw *loggingResponseWriter) WriteHeader(code int) {
	lrw.statusCode = code
	lrw.ResponseWriter.WriteHeader(code)
}

func (lrw *loggingResponseWriter) Write(b []byte) (int, error) {
	if lrw.body != nil {
		lrw.body.Write(b)
	}
	return lrw.ResponseWriter.Write(b)
}

// Middleware returns the HTTP logging middleware function
func (l *LoggingMiddleware) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// The websocket upgrade needs the raw writer
		if r.URL.Path == "/ws" {
			next.ServeHTTP(w, r)
			return
		}

		start := time.Now()
		logger := l.logger.With().
			Str("request_id", middleware.GetReqID(r.Context())).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Logger()

		if l.verbose && r.Body != nil && (r.Method == http.MethodPost || r.Method == http.MethodPut) {
			bodyBytes, err := io.ReadAll(r.Body)
			if err != nil {
				logger.Error().Err(err).Msg("failed to read request body")
			} else {
				r.Body = io.NopCloser(bytes.NewBuffer(bodyBytes))
				if len(bodyBytes) > 0 {
					logger.Debug().Bytes("body", bodyBytes).Msg("request body")
				}
			}
		}

		var responseBody *bytes.Buffer
		if l.verbose {
			responseBody = &bytes.Buffer{}
		}

		lrw := &loggingResponseWriter{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
			body:           responseBody,
		}

		next.ServeHTTP(lrw, r)

		logger.Info().
			Int("status", lrw.statusCode).
			Dur("duration", time.Since(start)).
			Msg("request handled")

		if responseBody != nil && responseBody.Len() > 0 && lrw.statusCode >= 400 {
			logger.Debug().Str("body", responseBody.String()).Msg("error response")
		}
	})
}
