package sentinel

import "errors"

// Sentinel errors for infrastructure facts. Snapshot backends, the query cache
// and the remote client return these (optionally wrapped) so services can
// decide whether to degrade or surface them.
//
//   - ErrNotFound: no value stored under the requested key
//   - ErrUnavailable: backing service unreachable or not configured
//   - ErrClosed: component already shut down
var (
	ErrNotFound    = errors.New("not found")
	ErrUnavailable = errors.New("unavailable")
	ErrClosed      = errors.New("closed")
)
