package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"syscall"
)

// ErrMaxRetries is returned once every allowed attempt has failed.
var ErrMaxRetries = errors.New("max retries exceeded")

// Kind categorizes a failed attempt.
type Kind string

const (
	KindTimeout    Kind = "timeout"
	KindConnection Kind = "connection"
	KindRequest    Kind = "request"
	KindHTTPStatus Kind = "http_status"

	// KindInvalidRequest marks a request that cannot be sent as built.
	KindInvalidRequest Kind = "invalid_request"
)

// AttemptError describes why a single attempt failed.
type AttemptError struct {
	Kind       Kind
	StatusCode int
	Err        error
}

func (e *AttemptError) Error() string {
	return fmt.Sprintf("%s: %v", e.Reason(), e.Err)
}

func (e *AttemptError) Unwrap() error { return e.Err }

// Reason is the human-readable label for the failure. Status-specific labels
// are informational only and do not change retry behavior.
func (e *AttemptError) Reason() string {
	switch e.Kind {
	case KindTimeout:
		return "request timed out"
	case KindConnection:
		return "connection error"
	case KindHTTPStatus:
		switch e.StatusCode {
		case 404:
			return "page not found"
		case 500:
			return "server error"
		default:
			return "http error"
		}
	default:
		return "error during request"
	}
}

// IsRetryable reports whether another attempt may succeed. Transport and
// HTTP status failures are retried; an invalid request is not.
func (e *AttemptError) IsRetryable() bool {
	switch e.Kind {
	case KindTimeout, KindConnection, KindRequest, KindHTTPStatus:
		return true
	default:
		return false
	}
}

func classify(err error) *AttemptError {
	var (
		netErr net.Error
		opErr  *net.OpError
		dnsErr *net.DNSError
	)
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return &AttemptError{Kind: KindTimeout, Err: err}
	case errors.As(err, &netErr) && netErr.Timeout():
		return &AttemptError{Kind: KindTimeout, Err: err}
	case errors.As(err, &dnsErr), errors.As(err, &opErr),
		errors.Is(err, syscall.ECONNREFUSED), errors.Is(err, syscall.ECONNRESET),
		errors.Is(err, io.ErrUnexpectedEOF), errors.Is(err, io.EOF):
		return &AttemptError{Kind: KindConnection, Err: err}
	default:
		return &AttemptError{Kind: KindRequest, Err: err}
	}
}
