package davgate

import "context"

// TenantResolver maps authenticated credentials to the path segment that
// isolates a tenant's files under the scope path. Returning an empty
// segment serves the scope root directly.
//
// The real user-to-tenant mapping lives in an identity store the gateway
// does not talk to yet; implementations plug in here once it does.
type TenantResolver interface {
	Resolve(ctx context.Context, creds Credentials) (string, error)
}

// StaticResolver resolves every credential to the same fixed segment.
// It is the shipped placeholder until a real identity store is wired in,
// and the zero value (empty segment) is single-home mode.
type StaticResolver struct {
	Segment string
}

// Resolve returns the configured segment regardless of credentials.
func (s StaticResolver) Resolve(_ context.Context, _ Credentials) (string, error) {
	return s.Segment, nil
}
