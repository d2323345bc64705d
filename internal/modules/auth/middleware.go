package auth

import (
	"context"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/georgemunganga/supplyhub/internal/platform/httpx"
	"github.com/georgemunganga/supplyhub/internal/platform/logger"
)

type contextKey int

const claimsKey contextKey = iota

// FromContext returns the claims of the authenticated operator.
func FromContext(ctx context.Context) (*Claims, bool) {
	c, ok := ctx.Value(claimsKey).(*Claims)
	return c, ok
}

// Middleware rejects requests without a valid bearer token and tags the
// request logger with the operator id.
func Middleware(s Service) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
			if !ok || raw == "" {
				httpx.Error(w, r, ErrInvalidToken)
				return
			}
			claims, err := s.Verify(raw)
			if err != nil {
				httpx.Error(w, r, err)
				return
			}

			ctx := context.WithValue(r.Context(), claimsKey, claims)
			ctx = logger.WithContext(ctx, logger.FromContext(ctx).With(zap.String("operator_id", claims.Subject)))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
