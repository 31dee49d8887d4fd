package domain

import (
	"errors"
	"fmt"
)

// PeerErrorKind classifies why a call to another mesh process failed.
type PeerErrorKind string

const (
	PeerUnreachable PeerErrorKind = "unreachable"
	PeerTimeout     PeerErrorKind = "timeout"
	PeerStatus      PeerErrorKind = "status"
	PeerMalformed   PeerErrorKind = "malformed"
)

// PeerError is returned by the mesh HTTP adapters. Policies treat every kind
// as "skip this peer", tests can tell them apart.
type PeerError struct {
	Kind       PeerErrorKind
	Target     string
	StatusCode int
	Err        error
}

func (e *PeerError) Error() string {
	switch e.Kind {
	case PeerStatus:
		return fmt.Sprintf("%s: %s returned status %d", e.Kind, e.Target, e.StatusCode)
	default:
		if e.Err != nil {
			return fmt.Sprintf("%s: %s: %v", e.Kind, e.Target, e.Err)
		}
		return fmt.Sprintf("%s: %s", e.Kind, e.Target)
	}
}

func (e *PeerError) Unwrap() error { return e.Err }

// PeerErrorKindOf extracts the kind from err, or "" when err is not a PeerError.
func PeerErrorKindOf(err error) PeerErrorKind {
	var pe *PeerError
	if errors.As(err, &pe) {
		return pe.Kind
	}
	return ""
}
