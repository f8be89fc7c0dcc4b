// Package dispatch adapts the WebDAV protocol engine for the gateway.
//
// The engine (golang.org/x/net/webdav) is treated as opaque: the gateway
// hands it a request and lets it write whatever response it sees fit. The
// adapter's own responsibilities are the request-body cap, which must be in
// place before the engine's blocking LOCK/PROPPATCH body reads, and the
// resolution of the on-disk path an operation targets.
package dispatch

import (
	"net/http"
	"path"
	"path/filepath"
	"strings"

	"golang.org/x/net/webdav"
)

// DefaultMaxBodyBytes caps request bodies when no explicit limit is
// configured (500 MiB).
const DefaultMaxBodyBytes int64 = 524_288_000

// Dispatcher hands a request to the protocol engine and resolves the
// on-disk path an operation targets. ResolveFullPath returns "" for a
// request that does not map to a path under the dispatcher's root.
type Dispatcher interface {
	Dispatch(w http.ResponseWriter, r *http.Request)
	ResolveFullPath(r *http.Request) string
}

// Engine is the golang.org/x/net/webdav-backed Dispatcher. It serves a
// single on-disk root mounted under a URL prefix.
type Engine struct {
	prefix  string
	root    string
	maxBody int64
	handler *webdav.Handler
}

// NewEngine builds the engine adapter. prefix is the URL scope path the
// handler answers under, root the on-disk directory it serves, and maxBody
// the request body cap in bytes (0 selects DefaultMaxBodyBytes, negative
// disables the cap). logger receives engine-level faults and may be nil.
func NewEngine(prefix, root string, maxBody int64, logger func(*http.Request, error)) *Engine {
	prefix = strings.TrimSuffix(prefix, "/")
	if maxBody == 0 {
		maxBody = DefaultMaxBodyBytes
	}

	return &Engine{
		prefix:  prefix,
		root:    root,
		maxBody: maxBody,
		handler: &webdav.Handler{
			Prefix:     prefix,
			FileSystem: webdav.Dir(root),
			LockSystem: webdav.NewMemLS(),
			Logger:     logger,
		},
	}
}

// Dispatch delegates the request to the protocol engine. The body cap is
// installed first: the engine reads LOCK and PROPPATCH bodies synchronously
// and must never see an unbounded reader.
func (e *Engine) Dispatch(w http.ResponseWriter, r *http.Request) {
	if e.maxBody > 0 && r.Body != nil {
		r.Body = http.MaxBytesReader(w, r.Body, e.maxBody)
	}
	e.handler.ServeHTTP(w, r)
}

// ResolveFullPath maps a request to the absolute on-disk path its operation
// targets: the decoded URL path, resolved and stripped of the mount prefix,
// converted to platform separators and joined with the root. Dot and
// dot-dot segments are resolved before the prefix check, matching the
// confinement webdav.Dir applies internally, so the result is always under
// the root. A path outside the mount prefix resolves to "".
func (e *Engine) ResolveFullPath(r *http.Request) string {
	p := path.Clean("/" + r.URL.Path)

	rel, found := strings.CutPrefix(p, e.prefix)
	if !found || (rel != "" && rel[0] != '/') {
		return ""
	}

	rel = strings.TrimPrefix(rel, "/")
	return filepath.Join(e.root, filepath.FromSlash(rel))
}
