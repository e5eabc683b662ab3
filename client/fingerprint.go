package client

import "context"

// Fingerprinter computes the stable device-characteristic value presented to
// the session registry. Implementations must be deterministic for the same
// device so that a session established at login keeps resolving.
type Fingerprinter interface {
	Fingerprint(ctx context.Context) (string, error)
}

// Static is a [Fingerprinter] that always returns a fixed value.
type Static string

func (s Static) Fingerprint(context.Context) (string, error) {
	return string(s), nil
}
