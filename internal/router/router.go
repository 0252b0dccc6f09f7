package router

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/ovaphlow/taskboard/service-board-go-stdlib/internal/auth"
	"github.com/ovaphlow/taskboard/service-board-go-stdlib/internal/category"
	"github.com/ovaphlow/taskboard/service-board-go-stdlib/internal/task"
	"github.com/ovaphlow/taskboard/service-board-go-stdlib/internal/user"
	"github.com/ovaphlow/taskboard/service-board-go-stdlib/pkg/utilities"
)

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

type requestIDKey struct{}

// RequestIDMiddleware stamps every request with a snowflake ID, exposed
// via the X-Request-Id response header and the request context.
func RequestIDMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := utilities.NewSnowflakeID()
			w.Header().Set("X-Request-Id", id)
			ctx := context.WithValue(r.Context(), requestIDKey{}, id)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// LoggingMiddleware returns a middleware that logs requests at debug level using the provided sugared logger.
func LoggingMiddleware(logger *zap.SugaredLogger) func(http.Handler) http.Handler {
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
			reqID, _ := r.Context().Value(requestIDKey{}).(string)
			logger.Debugw("http request",
				"request_id", reqID,
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

// SecurityHeadersMiddleware returns a middleware that sets common HTTP security headers.
// It is intentionally simple and conservative so it works with most setups.
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
			if r.TLS != nil {
				w.Header().Set("Strict-Transport-Security", "max-age=2592000; includeSubDomains")
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RegisterRoutes mounts HTTP handlers using the standard library's
// http.ServeMux. Login and the health check are open; everything else
// requires a bearer token, and user management additionally requires
// the admin role. Category operations are open to any authenticated
// user.
func RegisterRoutes(
	logger *zap.SugaredLogger,
	authMW *auth.Middleware,
	userHandler *user.Handler,
	taskHandler *task.Handler,
	categoryHandler *category.Handler,
) http.Handler {
	mux := http.NewServeMux()

	protected := func(h http.HandlerFunc) http.Handler {
		return authMW.Authenticate(h)
	}
	adminOnly := func(h http.HandlerFunc) http.Handler {
		return authMW.Authenticate(authMW.RequireAdmin(h))
	}

	// health
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"healthy"}`))
	})

	// auth + user management
	mux.HandleFunc("POST /api/auth/token", userHandler.Login)
	mux.Handle("GET /api/auth/me", protected(userHandler.Me))
	mux.Handle("POST /api/auth/change-password", protected(userHandler.ChangePassword))
	mux.Handle("POST /api/auth/register", adminOnly(userHandler.Register))
	mux.Handle("GET /api/auth/users", adminOnly(userHandler.ListUsers))
	mux.Handle("DELETE /api/auth/users/{username}", adminOnly(userHandler.DeleteUser))

	// tasks
	mux.Handle("GET /api/tasks", protected(taskHandler.List))
	mux.Handle("POST /api/tasks", protected(taskHandler.Create))
	mux.Handle("GET /api/tasks/board", protected(taskHandler.Board))
	mux.Handle("GET /api/tasks/columns", protected(taskHandler.Columns))
	mux.Handle("GET /api/tasks/priorities", protected(taskHandler.Priorities))
	mux.Handle("GET /api/tasks/{id}", protected(taskHandler.Get))
	mux.Handle("PUT /api/tasks/{id}", protected(taskHandler.Update))
	mux.Handle("PATCH /api/tasks/{id}/move", protected(taskHandler.Move))
	mux.Handle("DELETE /api/tasks/{id}", protected(taskHandler.Delete))

	// categories
	mux.Handle("GET /api/tasks/categories", protected(categoryHandler.List))
	mux.Handle("POST /api/tasks/categories", protected(categoryHandler.Create))
	mux.Handle("DELETE /api/tasks/categories/{name}", protected(categoryHandler.Delete))

	// wrap with security headers middleware then logging, outermost request id
	handler := SecurityHeadersMiddleware()(mux)
	handler = LoggingMiddleware(logger)(handler)
	handler = RequestIDMiddleware()(handler)
	return handler
}
