package testutil

import (
	"net/http"

	"cosurvival/pkg/requestcontext"
)

// WithRequestID attaches id the way the requestid middleware does.
func WithRequestID(req *http.Request, id string) *http.Request {
	return req.WithContext(requestcontext.WithRequestID(req.Context(), id))
}
