package session

// Session is the server-side record for one authenticated browser session.
//
// The fingerprint binding is fixed at creation: a session resolves only for
// the device hash it was established with. Rebinding requires a new session.
type Session struct {
	SessionID       string
	UserID          string
	FingerprintHash [32]byte

	CreatedAt int64
	ExpiresAt int64
}
