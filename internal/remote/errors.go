package remote

import (
	"errors"
	"fmt"
	"net/http"

	dErrors "cosurvival/pkg/domain-errors"
)

// NetworkError means no usable response arrived: connection failure,
// timeout, or cancellation.
type NetworkError struct {
	Resource string
	Err      error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s: network error: %v", e.Resource, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

func (e *NetworkError) ErrorCode() dErrors.Code {
	return dErrors.CodeNetwork
}

// Timeout reports whether the failure was a deadline rather than a refused connection.
func (e *NetworkError) Timeout() bool {
	var t interface{ Timeout() bool }
	return errors.As(e.Err, &t) && t.Timeout()
}

// ServerError is a non-2xx response, or a 2xx response whose body could not
// be decoded (Status is then the original status and BadData is set).
type ServerError struct {
	Resource string
	Status   int
	Message  string
	BadData  bool
}

func (e *ServerError) Error() string {
	if e.BadData {
		return fmt.Sprintf("%s: malformed response (status %d): %s", e.Resource, e.Status, e.Message)
	}
	return fmt.Sprintf("%s: server returned %d: %s", e.Resource, e.Status, e.Message)
}

func (e *ServerError) ErrorCode() dErrors.Code {
	return dErrors.CodeServer
}

// IsRetryable reports whether a failure is worth retrying: network errors,
// 5xx and 429. Client errors and malformed bodies are not.
func IsRetryable(err error) bool {
	var ne *NetworkError
	if errors.As(err, &ne) {
		return true
	}
	var se *ServerError
	if errors.As(err, &se) {
		if se.BadData {
			return false
		}
		return se.Status >= http.StatusInternalServerError || se.Status == http.StatusTooManyRequests
	}
	return false
}

// outcome labels a result for metrics.
func outcome(err error) string {
	if err == nil {
		return "success"
	}
	switch dErrors.CodeOf(err) {
	case dErrors.CodeNetwork:
		return "network_error"
	case dErrors.CodeServer:
		return "server_error"
	case dErrors.CodeInvalidArgument:
		return "invalid_argument"
	default:
		return "error"
	}
}
