// Package requestid tags every request with an ID for log correlation.
package requestid

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"cosurvival/pkg/requestcontext"
)

// Header carries the request ID in both directions.
const Header = "X-Request-ID"

const maxIncomingLength = 128

// Middleware reuses a caller-supplied request ID or generates one, stores it
// together with the request start time in the context, and echoes the ID in
// the response.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(Header)
		if id == "" || len(id) > maxIncomingLength {
			id = uuid.NewString()
		}
		ctx := requestcontext.WithRequestID(r.Context(), id)
		ctx = requestcontext.WithReceivedAt(ctx, time.Now())
		w.Header().Set(Header, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
