package api

import (
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/handlers"
	"github.com/rs/cors"
	"github.com/sirupsen/logrus"
)

const requestIDHeader = "X-Request-ID"

// Options configures the middleware stack around the routes.
type Options struct {
	// AllowedOrigins may call the API from a browser, with credentials.
	// Empty disables cross-origin access.
	AllowedOrigins []string
}

var corsMethods = []string{"GET", "HEAD", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}

// Router returns the routes wrapped in request ID, access log and CORS
// handling, outermost first.
func (h *Handler) Router(opts Options) http.Handler {
	var next http.Handler = h.SetupRoutes()
	if len(opts.AllowedOrigins) > 0 {
		// any request header is allowed; preflights get the requested ones echoed back
		next = cors.New(cors.Options{
			AllowedOrigins:       opts.AllowedOrigins,
			AllowedMethods:       corsMethods,
			AllowedHeaders:       []string{"*"},
			ExposedHeaders:       []string{requestIDHeader},
			AllowCredentials:     true,
			OptionsSuccessStatus: http.StatusOK,
		}).Handler(next)
	}
	next = handlers.CustomLoggingHandler(io.Discard, next, h.accessLog)
	return requestID(next)
}

// requestID keeps a caller supplied X-Request-ID or assigns a new one, and
// echoes it on the response.
func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
			r.Header.Set(requestIDHeader, id)
		}
		w.Header().Set(requestIDHeader, id)
		next.ServeHTTP(w, r)
	})
}

func (h *Handler) accessLog(_ io.Writer, p handlers.LogFormatterParams) {
	entry := h.log.WithFields(logrus.Fields{
		"request_id": p.Request.Header.Get(requestIDHeader),
		"method":     p.Request.Method,
		"path":       p.URL.Path,
		"status":     p.StatusCode,
		"bytes":      p.Size,
		"duration":   time.Since(p.TimeStamp).String(),
	})
	if p.StatusCode >= http.StatusInternalServerError {
		entry.Warn("request")
		return
	}
	entry.Info("request")
}
