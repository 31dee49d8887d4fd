package domain

import (
	"context"
	"errors"
	"net"
)

// ClassifyTransportError wraps an error returned by an HTTP round trip.
func ClassifyTransportError(target string, err error) *PeerError {
	kind := PeerUnreachable
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		kind = PeerTimeout
	}
	return &PeerError{Kind: kind, Target: target, Err: err}
}
