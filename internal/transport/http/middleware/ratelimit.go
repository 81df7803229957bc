package middleware

import (
	"context"
	"net"
	"net/http"

	"github.com/linkboard/linkboard/internal/constants"
	"github.com/linkboard/linkboard/internal/infrastructure/logger"
	"github.com/linkboard/linkboard/pkg/httputils"
	"go.uber.org/zap"
)

// RateCounter counts requests per key within the current window.
type RateCounter interface {
	Incr(ctx context.Context, key string) (int64, error)
}

// RateLimitMiddleware applies a fixed-window limit keyed by the
// authenticated user when present, the client address otherwise. Failures
// talking to the counter fail open so that Redis downtime does not take
// the API down with it.
func RateLimitMiddleware(counter RateCounter, limit int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if counter == nil || limit <= 0 {
				next.ServeHTTP(w, r)
				return
			}

			key := rateKey(r)
			count, err := counter.Incr(r.Context(), key)
			if err != nil {
				logger.Warn("rate limiter unavailable, failing open",
					zap.String("key", key),
					zap.Error(err))
				next.ServeHTTP(w, r)
				return
			}

			if count > limit {
				httputils.WriteAPIError(w, r, constants.ErrRateLimited)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func rateKey(r *http.Request) string {
	if identity, ok := IdentityFromContext(r.Context()); ok {
		return "user:" + identity.UserID
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil || host == "" {
		return "ip:" + r.RemoteAddr
	}
	return "ip:" + host
}
