package http

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"log"
	"net"
	"net/http"
	"time"
)

// LoggingMiddleware creates HTTP middleware for logging requests and responses
type LoggingMiddleware struct {
	verbose bool
}

// NewLoggingMiddleware creates a new logging middleware
func NewLoggingMiddleware(verbose bool) *LoggingMiddleware {
	return &LoggingMiddleware{
		verbose: verbose,
	}
}

// loggingResponseWriter wraps http.ResponseWriter to capture response details.
// It forwards Hijack so the game WebSocket endpoint can take over the
// connection; a hijacked response is not logged beyond the request line.
type loggingResponseWriter struct {
	http.ResponseWriter
	statusCode int
	body       *bytes.Buffer
	hijacked   bool
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

func (lrw *loggingResponseWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hijacker, ok := lrw.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, fmt.Errorf("underlying ResponseWriter does not support hijacking")
	}
	lrw.hijacked = true
	return hijacker.Hijack()
}

// Middleware returns the HTTP logging middleware function
func (l *LoggingMiddleware) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !l.verbose {
			next.ServeHTTP(w, r)
			return
		}

		start := time.Now()

		// Log request
		log.Printf("[HTTP REQUEST] %s %s from %s", r.Method, r.URL.Path, r.RemoteAddr)

		// Log request body for POST requests
		if r.Method == http.MethodPost && r.Body != nil {
			bodyBytes, err := io.ReadAll(r.Body)
			if err != nil {
				log.Printf("[HTTP REQUEST] Error reading request body: %v", err)
			} else {
				// Create a new reader for the handler
				r.Body = io.NopCloser(bytes.NewBuffer(bodyBytes))
				if len(bodyBytes) > 0 {
					log.Printf("[HTTP REQUEST] Body: %s", string(bodyBytes))
				}
			}
		}

		// Wrap the response writer to capture response details
		responseBody := &bytes.Buffer{}
		lrw := &loggingResponseWriter{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
			body:           responseBody,
		}

		// Process the request
		next.ServeHTTP(lrw, r)

		duration := time.Since(start)

		if lrw.hijacked {
			log.Printf("[HTTP RESPONSE] %s %s -> websocket session ended after %v", r.Method, r.URL.Path, duration)
			return
		}

		// Log response
		log.Printf("[HTTP RESPONSE] %s %s -> %d in %v", r.Method, r.URL.Path, lrw.statusCode, duration)

		if responseBody.Len() > 0 && lrw.statusCode >= 400 {
			log.Printf("[HTTP RESPONSE] Error body: %s", responseBody.String())
		}
	})
}
