package router

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/ovaphlow/pitchfork/service-seizure-risk-go/internal/auth"
	"github.com/ovaphlow/pitchfork/service-seizure-risk-go/internal/config"
	"github.com/ovaphlow/pitchfork/service-seizure-risk-go/internal/metrics"
	"github.com/ovaphlow/pitchfork/service-seizure-risk-go/internal/respond"
	"github.com/ovaphlow/pitchfork/service-seizure-risk-go/internal/risk"
	"github.com/ovaphlow/pitchfork/service-seizure-risk-go/pkg/utilities"
)

type ctxKey string

const requestIDKey ctxKey = "request_id"

// RequestIDFromContext returns the ID assigned by RequestIDMiddleware.
func RequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}

// loggingResponseWriter wraps http.ResponseWriter to capture status and size.
type loggingResponseWriter struct {
	http.ResponseWriter
	status int
	size   int
}

func (lrw *loggingResponseWriter) WriteHeader(code int) {
	lrw.status = code
	lrw.ResponseWriter.WriteHeader(code)
}

func (lrw *loggingResponseWriter) Write(b []byte) (int, error) {
	if lrw.status == 0 {
		lrw.status = http.StatusOK
	}
	n, err := lrw.ResponseWriter.Write(b)
	lrw.size += n
	return n, err
}

// LoggingMiddleware logs every request and records its latency under the
// matched route pattern. It must wrap the ServeMux directly so the pattern
// set by the mux is visible here.
func LoggingMiddleware(logger *zap.SugaredLogger, m *metrics.Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			lrw := &loggingResponseWriter{ResponseWriter: w}
			next.ServeHTTP(lrw, r)
			dur := time.Since(start)
			status := lrw.status
			if status == 0 {
				status = http.StatusOK
			}
			route := r.Pattern
			if route == "" {
				route = "unmatched"
			}
			m.Request(r.Method, route, status, dur)
			logger.Debugw("http request",
				"request_id", RequestIDFromContext(r.Context()),
				"method", r.Method,
				"path", r.URL.Path,
				"remote", r.RemoteAddr,
				"status", status,
				"duration_ms", float64(dur.Microseconds())/1000.0,
				"size", lrw.size,
			)
		})
	}
}

// RequestIDMiddleware keeps an incoming X-Request-ID or assigns a KSUID.
func RequestIDMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := r.Header.Get("X-Request-ID")
			if id == "" || len(id) > 128 {
				id = utilities.NewKSUID()
			}
			w.Header().Set("X-Request-ID", id)
			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), requestIDKey, id)))
		})
	}
}

// RecoverMiddleware turns a handler panic into a 500 response.
func RecoverMiddleware(logger *zap.SugaredLogger, debug bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					if rec == http.ErrAbortHandler {
						panic(rec)
					}
					logger.Errorw("panic in handler", "path", r.URL.Path, "panic", rec)
					respond.Error(w, logger, debug, fmt.Errorf("panic: %v", rec))
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// SecurityHeadersMiddleware returns a middleware that sets common HTTP security headers.
func SecurityHeadersMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-Content-Type-Options", "nosniff")
			w.Header().Set("X-Frame-Options", "DENY")
			w.Header().Set("Referrer-Policy", "no-referrer-when-downgrade")
			w.Header().Set("Permissions-Policy", "camera=(), microphone=(), geolocation=()")
			if w.Header().Get("Content-Security-Policy") == "" {
				w.Header().Set("Content-Security-Policy", "default-src 'self'; object-src 'none'; base-uri 'self';")
			}
			// HSTS only makes sense over TLS.
			if r.TLS != nil {
				w.Header().Set("Strict-Transport-Security", "max-age=2592000; includeSubDomains")
			}
			next.ServeHTTP(w, r)
		})
	}
}

// CORSMiddleware allows the configured origins. "*" allows any origin.
func CORSMiddleware(origins []string) func(http.Handler) http.Handler {
	return cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	})
}

// Deps are the components the routes are wired to.
type Deps struct {
	Config  *config.Config
	Logger  *zap.SugaredLogger
	Auth    *auth.Service
	Scorer  *risk.Scorer
	Metrics *metrics.Metrics
}

// RegisterRoutes mounts HTTP handlers using the standard library's http.ServeMux.
func RegisterRoutes(d Deps) http.Handler {
	cfg, logger := d.Config, d.Logger
	mux := http.NewServeMux()

	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		respond.JSON(w, http.StatusOK, map[string]any{
			"service":        cfg.AppName,
			"version":        cfg.AppVersion,
			"status":         "online",
			"authentication": "JWT Bearer Token required",
			"endpoints": map[string]string{
				"login":   "POST /auth/login",
				"health":  "GET /health",
				"predict": "POST /api/predict (protected)",
				"metrics": "GET /metrics",
			},
		})
	})

	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		respond.JSON(w, http.StatusOK, map[string]any{
			"status":        "healthy",
			"version":       cfg.AppVersion,
			"authenticated": false,
			"timestamp":     time.Now().UTC(),
		})
	})
	mux.Handle("GET /metrics", d.Metrics.Handler())

	authHandler := auth.NewHandler(d.Auth, logger, d.Metrics, cfg.Debug)
	mux.HandleFunc("POST /auth/login", authHandler.Login)
	mux.HandleFunc("GET /generate-password-hash", authHandler.GeneratePasswordHash)

	protected := auth.RequireBearer(d.Auth, logger, d.Metrics)
	riskHandler := risk.NewHandler(d.Scorer, logger, d.Metrics, cfg.Debug)
	mux.Handle("GET /api/me", protected(http.HandlerFunc(authHandler.Me)))
	mux.Handle("POST /api/predict", protected(http.HandlerFunc(riskHandler.Predict)))
	mux.Handle("GET /api/test", protected(http.HandlerFunc(riskHandler.Test)))

	if fi, err := os.Stat(cfg.StaticDir); err == nil && fi.IsDir() {
		mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServer(http.Dir(cfg.StaticDir))))
	} else {
		logger.Warnw("static directory not found, /static disabled", "dir", cfg.StaticDir)
	}

	handler := LoggingMiddleware(logger, d.Metrics)(mux)
	handler = SecurityHeadersMiddleware()(handler)
	handler = CORSMiddleware(cfg.CORSOrigins)(handler)
	handler = RequestIDMiddleware()(handler)
	handler = RecoverMiddleware(logger, cfg.Debug)(handler)
	return handler
}
