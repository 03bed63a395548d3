package ratelimit

import (
	"log/slog"
	"net"
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"cosurvival/pkg/platform/httputil"
)

var rejectedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "cosurvival_ratelimit_rejected_total",
	Help: "Requests rejected by the rate limiter, by path",
}, []string{"path"})

// KeyFunc picks the bucket a request is counted against.
type KeyFunc func(*http.Request) string

// ClientIP keys by the remote host. Put chi's RealIP middleware in front when
// running behind a proxy.
func ClientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// Middleware rejects requests over the window limit with 429.
type Middleware struct {
	window *Window
	key    KeyFunc
	logger *slog.Logger
}

func NewMiddleware(window *Window, key KeyFunc, logger *slog.Logger) *Middleware {
	if key == nil {
		key = ClientIP
	}
	return &Middleware{window: window, key: key, logger: logger}
}

// Handler wraps next. A nil Middleware passes everything through.
func (m *Middleware) Handler(next http.Handler) http.Handler {
	if m == nil || m.window == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := m.key(r)
		result := m.window.Allow(key)

		w.Header().Set("X-RateLimit-Limit", strconv.Itoa(result.Limit))
		w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(result.Remaining))
		w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(result.ResetAt.Unix(), 10))

		if !result.Allowed {
			rejectedTotal.WithLabelValues(r.URL.Path).Inc()
			if m.logger != nil {
				m.logger.WarnContext(r.Context(), "rate limit exceeded",
					"path", r.URL.Path,
					"retry_after", result.RetryAfter,
				)
			}
			w.Header().Set("Retry-After", strconv.Itoa(result.RetryAfter))
			httputil.WriteJSON(w, http.StatusTooManyRequests, map[string]any{
				"error":       "rate_limit_exceeded",
				"message":     "Too many requests. Please try again later.",
				"retry_after": result.RetryAfter,
			})
			return
		}
		next.ServeHTTP(w, r)
	})
}
