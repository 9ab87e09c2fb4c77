package middleware

import (
	"context"
	"crypto/subtle"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"

	apierrors "trendpulse/internal/errors"
)

// APIKeyHeader carries the client API key
const APIKeyHeader = "X-API-Key"

const apiClientKey contextKey = "api_client"

// APIKeyAuth requires one of validKeys (key -> client name) in the X-API-Key
// header. An empty map disables the check.
func APIKeyAuth(logger *slog.Logger, validKeys map[string]string) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if len(validKeys) == 0 {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			apiKey := r.Header.Get(APIKeyHeader)
			if apiKey == "" {
				logger.WarnContext(ctx, "missing API key",
					slog.String("method", r.Method),
					slog.String("path", r.URL.Path),
					slog.String("remote_addr", r.RemoteAddr),
				)
				writeProblem(w, r, apierrors.NewProblemDetails(
					http.StatusUnauthorized,
					apierrors.TypeUnauthorized,
					"Unauthorized",
					"API key required",
					r.URL.Path,
				))
				return
			}

			clientName, ok := matchAPIKey(validKeys, apiKey)
			if !ok {
				logger.WarnContext(ctx, "invalid API key",
					slog.String("method", r.Method),
					slog.String("path", r.URL.Path),
					slog.String("remote_addr", r.RemoteAddr),
				)
				writeProblem(w, r, apierrors.NewProblemDetails(
					http.StatusUnauthorized,
					apierrors.TypeUnauthorized,
					"Unauthorized",
					"Invalid API key",
					r.URL.Path,
				))
				return
			}

			ctx = context.WithValue(ctx, apiClientKey, clientName)
			logger.DebugContext(ctx, "API key accepted",
				slog.String("client", clientName),
				slog.String("path", r.URL.Path),
			)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// matchAPIKey compares against every key so timing does not depend on which
// one matched.
func matchAPIKey(validKeys map[string]string, candidate string) (string, bool) {
	var (
		client string
		found  bool
	)
	for key, name := range validKeys {
		if subtle.ConstantTimeCompare([]byte(key), []byte(candidate)) == 1 {
			client, found = name, true
		}
	}
	return client, found
}

// APIClient returns the client name set by APIKeyAuth
func APIClient(ctx context.Context) string {
	client, _ := ctx.Value(apiClientKey).(string)
	return client
}

// AuditLog writes one audit record per request for mutating endpoints
func AuditLog(logger *slog.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			client := APIClient(r.Context())
			if client == "" {
				client = "anonymous"
			}

			logger.InfoContext(r.Context(), "audit log",
				slog.String("event_type", "api_mutation"),
				slog.String("client", client),
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.String("remote_addr", GetRealIP(r)),
				slog.Int("status", status),
				slog.Duration("duration", time.Since(start)),
			)
		})
	}
}
