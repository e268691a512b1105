package payment

import (
	"errors"
	"fmt"
)

// UpstreamError carries the processor's message without leaking secrets or
// raw payloads to callers.
type UpstreamError struct {
	Op      string
	Message string
	Err     error
}

func (e *UpstreamError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("payment processor error (%s): %s", e.Op, e.Message)
	}
	return fmt.Sprintf("payment processor error (%s)", e.Op)
}

func (e *UpstreamError) Unwrap() error { return e.Err }

// IsUpstream reports whether err wraps an UpstreamError.
func IsUpstream(err error) (*UpstreamError, bool) {
	var ue *UpstreamError
	if errors.As(err, &ue) {
		return ue, true
	}
	return nil, false
}

var ErrInvalidSignature = errors.New("webhook signature verification failed")
