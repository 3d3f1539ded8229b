package middleware

import (
	"net/http"

	"github.com/rs/zerolog"
)

// Logger binds a request-scoped logger into the context. Handlers and
// services below retrieve it with zerolog.Ctx, so every line they emit
// carries the request's method and path.
func Logger(logger *zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			reqLogger := logger.With().
				Str("method", req.Method).
				Str("path", req.URL.Path).
				Str("remote_addr", req.RemoteAddr).
				Str("user_agent", req.UserAgent()).
				Logger()

			req = req.WithContext(reqLogger.WithContext(req.Context()))
			next.ServeHTTP(w, req)
		})
	}
}
