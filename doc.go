// Package davgate provides the interception layer of a WebDAV gateway:
// the decision logic that runs on every inbound request before, and
// immediately after, delegation to the protocol engine.
//
// The gateway adds three things to a plain WebDAV file server:
//
//   - scope enforcement, so a client can only reach its designated home
//     path (optionally narrowed by a per-tenant segment);
//   - HTTP Basic credential extraction and gating, since the protocol
//     engine exposes no pre-dispatch authentication hook;
//   - post-upload housekeeping, pruning stale sibling files after the
//     content-bearing second PUT of a two-phase upload.
//
// This package holds the pure building blocks: credential parsing, path
// scope matching, and the tenant-segment resolver seam. The http package
// composes them into the request filter, the dispatch package adapts the
// golang.org/x/net/webdav engine, and the reaper package implements the
// stale-file sweep.
//
// # Example Usage
//
//	engine := dispatch.NewEngine("/files", "/srv/dav", 0, nil)
//	gw := davhttp.NewGateway(davhttp.GatewayConfig{ScopePath: "/files"},
//		davgate.StaticResolver{}, engine, reaper.New(0))
//	http.ListenAndServe(":8080", gw.Handler(http.NotFoundHandler()))
//
// See cmd/davgate for the full server wiring.
package davgate
