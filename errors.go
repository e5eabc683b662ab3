package routegate

import "errors"

var (
	// ErrMissingCredentials is an exported constant or variable used by the navigation gate.
	ErrMissingCredentials = errors.New("missing navigation credentials")
	// ErrSessionInvalid is an exported constant or variable used by the navigation gate.
	ErrSessionInvalid = errors.New("session invalid")
	// ErrCSRFInvalid is an exported constant or variable used by the navigation gate.
	ErrCSRFInvalid = errors.New("csrf token invalid")
	// ErrBackendUnavailable is an exported constant or variable used by the navigation gate.
	ErrBackendUnavailable = errors.New("registry backend unavailable")
	// ErrClientStorage is an exported constant or variable used by the navigation gate.
	ErrClientStorage = errors.New("client storage failure")
	// ErrEnrollmentInvalid is an exported constant or variable used by the navigation gate.
	ErrEnrollmentInvalid = errors.New("invalid enrollment request")
	// ErrGateNotReady is an exported constant or variable used by the navigation gate.
	ErrGateNotReady = errors.New("gate not initialized")
)
