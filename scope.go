package davgate

import (
	"path"
	"strings"
)

// UnderScope reports whether requestPath is the scope path itself or a
// path-segment-aligned descendant of it. Matching is segment-aligned, not
// raw-prefix: "/files2/x" does not fall under scope "/files". The request
// path is resolved first, so "/files/../x" compares as "/x" and falls
// outside the scope. A request failing this check is not the gateway's to
// answer.
func UnderScope(requestPath, scopePath string) bool {
	return segmentPrefix(cleanRequest(requestPath), scopePath)
}

// InScope reports whether an authenticated request may be dispatched.
// The request path must be exactly the scope path, or a segment-aligned
// descendant of the scope path joined with the tenant segment. An empty
// segment serves the whole scope (single-home mode). Dot and dot-dot
// segments in the request path are resolved before matching.
func InScope(requestPath, scopePath, segment string) bool {
	requestPath = cleanRequest(requestPath)
	if trimPath(requestPath) == trimPath(scopePath) {
		return true
	}

	target := scopePath
	if segment != "" {
		target = trimPath(scopePath) + "/" + strings.Trim(segment, "/")
	}

	return segmentPrefix(requestPath, target)
}

// cleanRequest normalizes a request path before matching: rooted, with dot
// and dot-dot segments resolved.
func cleanRequest(p string) string {
	return path.Clean("/" + p)
}

// trimPath drops a trailing separator so "/files/" and "/files" compare
// equal. The root path stays as-is.
func trimPath(p string) string {
	if p == "/" {
		return p
	}
	return strings.TrimSuffix(p, "/")
}

// segmentPrefix reports whether prefix is a path-segment-aligned prefix of
// p: either the whole of p, or followed in p by a separator.
func segmentPrefix(p, prefix string) bool {
	p = trimPath(p)
	prefix = trimPath(prefix)

	if prefix == "" || prefix == "/" {
		return true
	}
	if !strings.HasPrefix(p, prefix) {
		return false
	}

	rest := p[len(prefix):]
	return rest == "" || rest[0] == '/'
}
