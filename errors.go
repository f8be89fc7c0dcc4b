package davgate

import "errors"

var (
	// ErrUnauthorized is returned when credential extraction or tenant
	// resolution fails for a request inside the gateway's scope.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrOutOfScope is returned when a request path falls outside the
	// configured scope.
	ErrOutOfScope = errors.New("out of scope")
)
