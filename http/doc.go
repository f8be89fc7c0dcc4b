// Package http composes the davgate building blocks into the WebDAV
// request-interception filter.
//
// Per request the gateway walks a small state machine with three terminal
// states:
//
//   - PassedThrough: the path is outside the configured scope; the next
//     handler in the host pipeline gets the request untouched.
//   - Rejected: credentials are absent or the path escapes the tenant's
//     scope; the client gets a 401 Basic challenge, and a PUT caught
//     between the two phases of an upload has its zero-byte orphan removed.
//   - Dispatched: the protocol engine handled the request; a completed
//     content-bearing PUT additionally triggers the stale-sibling reaper.
//
// Faults escaping a step are recovered at the filter boundary and logged,
// with one narrow, deliberate exception (see isKnownBenignFault). Nothing
// propagates past the filter to the host.
//
// The package also carries the ambient middleware the gateway ships with:
// request-ID tagging, per-client rate limiting, and optional CORS, composed
// onto a chi router by Gateway.Router.
package http
