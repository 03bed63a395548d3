// Package requestcontext carries per-request values from the HTTP edge into
// services without importing net/http.
package requestcontext

import (
	"context"
	"time"
)

type key int

const (
	requestIDKey key = iota
	receivedAtKey
)

// RequestID returns the ID set by WithRequestID, or "".
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}

func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey, id)
}

// ReceivedAt reports when the request entered the server. ok is false for
// work that did not start from a request, such as CLI commands and
// background refreshes.
func ReceivedAt(ctx context.Context) (t time.Time, ok bool) {
	t, ok = ctx.Value(receivedAtKey).(time.Time)
	return t, ok
}

func WithReceivedAt(ctx context.Context, t time.Time) context.Context {
	return context.WithValue(ctx, receivedAtKey, t)
}
