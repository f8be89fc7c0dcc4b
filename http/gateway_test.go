package http_test

import (
	"context"
	"encoding/base64"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avendal/davgate"
	"github.com/avendal/davgate/dispatch"
	davhttp "github.com/avendal/davgate/http"
	"github.com/avendal/davgate/reaper"
)

func basicAuth(name, password string) string {
	return "Basic " + base64.StdEncoding.EncodeToString([]byte(name+":"+password))
}

// newGateway wires a gateway over a real engine serving root under /files.
func newGateway(t *testing.T, root string, resolver davgate.TenantResolver) *davhttp.Gateway {
	t.Helper()
	engine := dispatch.NewEngine("/files", root, 0, nil)
	return davhttp.NewGateway(
		davhttp.GatewayConfig{ScopePath: "/files"},
		resolver,
		engine,
		reaper.New(24*time.Hour),
	)
}

func backdate(t *testing.T, path string, age time.Duration) {
	t.Helper()
	old := time.Now().Add(-age)
	require.NoError(t, os.Chtimes(path, old, old))
}

func TestGateway_OutOfScopePassesThrough(t *testing.T) {
	gw := newGateway(t, t.TempDir(), davgate.StaticResolver{})

	nextCalled := false
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		nextCalled = true
		w.WriteHeader(http.StatusTeapot)
	})

	// No Authorization header on purpose: out-of-scope requests must reach
	// the next handler without any authentication check.
	req := httptest.NewRequest(http.MethodGet, "/other/doc.txt", nil)
	rec := httptest.NewRecorder()
	gw.Handler(next).ServeHTTP(rec, req)

	assert.True(t, nextCalled)
	assert.Equal(t, http.StatusTeapot, rec.Code)
	assert.Empty(t, rec.Header().Get("WWW-Authenticate"))
}

func TestGateway_SegmentAlignedScope(t *testing.T) {
	gw := newGateway(t, t.TempDir(), davgate.StaticResolver{})

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	// "/filesystem" shares a raw prefix with "/files" but is a different
	// path segment; it belongs to the next handler.
	req := httptest.NewRequest(http.MethodGet, "/filesystem/doc.txt", nil)
	rec := httptest.NewRecorder()
	gw.Handler(next).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusTeapot, rec.Code)
}

func TestGateway_MissingAuthRejected(t *testing.T) {
	gw := newGateway(t, t.TempDir(), davgate.StaticResolver{})

	req := httptest.NewRequest(http.MethodGet, "/files/doc.txt", nil)
	rec := httptest.NewRecorder()
	gw.Handler(http.NotFoundHandler()).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Basic", rec.Header().Get("WWW-Authenticate"))
}

func TestGateway_MalformedAuthRejected(t *testing.T) {
	gw := newGateway(t, t.TempDir(), davgate.StaticResolver{})

	headers := []string{
		"basic " + base64.StdEncoding.EncodeToString([]byte("a:b")), // lowercase scheme
		"Basic not-base64!!!",
		"Basic " + base64.StdEncoding.EncodeToString([]byte("nocolon")),
		"Bearer sometoken",
	}

	for _, h := range headers {
		req := httptest.NewRequest(http.MethodGet, "/files/doc.txt", nil)
		req.Header.Set("Authorization", h)
		rec := httptest.NewRecorder()
		gw.Handler(http.NotFoundHandler()).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code, "header %q", h)
		assert.Equal(t, "Basic", rec.Header().Get("WWW-Authenticate"))
	}
}

func TestGateway_UnauthorizedPutRemovesOrphan(t *testing.T) {
	root := t.TempDir()
	gw := newGateway(t, root, davgate.StaticResolver{})

	// Phase one of a two-phase upload left a zero-byte file behind.
	orphan := filepath.Join(root, "doc.txt")
	require.NoError(t, os.WriteFile(orphan, nil, 0o644))

	req := httptest.NewRequest(http.MethodPut, "/files/doc.txt", strings.NewReader("late"))
	rec := httptest.NewRecorder()
	gw.Handler(http.NotFoundHandler()).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.NoFileExists(t, orphan)
}

func TestGateway_DotDotPutNeverEscapesRoot(t *testing.T) {
	base := t.TempDir()
	root := filepath.Join(base, "root")
	require.NoError(t, os.Mkdir(root, 0o755))

	// A file outside the served root. Nothing the gateway does, including
	// the orphan cleanup on an unauthorized PUT, may touch it.
	victim := filepath.Join(base, "victim.txt")
	require.NoError(t, os.WriteFile(victim, []byte("keep"), 0o644))

	gw := newGateway(t, root, davgate.StaticResolver{})
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	// Raw and percent-encoded dot-dot both decode to a path that resolves
	// outside the scope; such requests are not the gateway's to answer.
	for _, target := range []string{"/files/../victim.txt", "/files/%2e%2e/victim.txt"} {
		req := httptest.NewRequest(http.MethodPut, target, strings.NewReader("x"))
		rec := httptest.NewRecorder()
		gw.Handler(next).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusTeapot, rec.Code, "target %q", target)
		assert.FileExists(t, victim, "target %q", target)

		// Same path with valid credentials still resolves outside the scope.
		req = httptest.NewRequest(http.MethodPut, target, strings.NewReader("x"))
		req.Header.Set("Authorization", basicAuth("alice", "secret"))
		rec = httptest.NewRecorder()
		gw.Handler(next).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusTeapot, rec.Code, "target %q", target)
		assert.FileExists(t, victim, "target %q", target)
	}
}

func TestGateway_AuthorizedPutDispatchesAndReaps(t *testing.T) {
	root := t.TempDir()
	gw := newGateway(t, root, davgate.StaticResolver{})

	stale := filepath.Join(root, "stale.bin")
	require.NoError(t, os.WriteFile(stale, []byte("old"), 0o644))
	backdate(t, stale, 48*time.Hour)

	fresh := filepath.Join(root, "fresh.bin")
	require.NoError(t, os.WriteFile(fresh, []byte("new"), 0o644))
	backdate(t, fresh, time.Hour)

	req := httptest.NewRequest(http.MethodPut, "/files/upload.bin", strings.NewReader("content"))
	req.Header.Set("Authorization", basicAuth("alice", "secret"))
	rec := httptest.NewRecorder()
	gw.Handler(http.NotFoundHandler()).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusCreated, rec.Code)

	data, err := os.ReadFile(filepath.Join(root, "upload.bin"))
	require.NoError(t, err)
	assert.Equal(t, []byte("content"), data)

	assert.NoFileExists(t, stale)
	assert.FileExists(t, fresh)
}

func TestGateway_ZeroLengthPutSkipsReaping(t *testing.T) {
	root := t.TempDir()
	gw := newGateway(t, root, davgate.StaticResolver{})

	stale := filepath.Join(root, "stale.bin")
	require.NoError(t, os.WriteFile(stale, []byte("old"), 0o644))
	backdate(t, stale, 48*time.Hour)

	// First phase: empty PUT creates the file, triggers nothing.
	req := httptest.NewRequest(http.MethodPut, "/files/upload.bin", strings.NewReader(""))
	req.Header.Set("Authorization", basicAuth("alice", "secret"))
	rec := httptest.NewRecorder()
	gw.Handler(http.NotFoundHandler()).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.FileExists(t, filepath.Join(root, "upload.bin"))
	assert.FileExists(t, stale)
}

func TestGateway_TenantSegmentScoping(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(root, "sub"), 0o755))
	gw := newGateway(t, root, davgate.StaticResolver{Segment: "sub"})

	// Inside the tenant segment: dispatched (engine answers, here 201).
	req := httptest.NewRequest(http.MethodPut, "/files/sub/doc.txt", strings.NewReader("hi"))
	req.Header.Set("Authorization", basicAuth("alice", "secret"))
	rec := httptest.NewRecorder()
	gw.Handler(http.NotFoundHandler()).ServeHTTP(rec, req)
	assert.Equal(t, http.StatusCreated, rec.Code)

	// The home path itself is in scope even with a segment configured.
	req = httptest.NewRequest("PROPFIND", "/files", nil)
	req.Header.Set("Authorization", basicAuth("alice", "secret"))
	req.Header.Set("Depth", "0")
	rec = httptest.NewRecorder()
	gw.Handler(http.NotFoundHandler()).ServeHTTP(rec, req)
	assert.Equal(t, http.StatusMultiStatus, rec.Code)

	// Under the home but outside the tenant segment: authenticated scope
	// check fails, terminal 401.
	req = httptest.NewRequest(http.MethodGet, "/files/other/doc.txt", nil)
	req.Header.Set("Authorization", basicAuth("alice", "secret"))
	rec = httptest.NewRecorder()
	gw.Handler(http.NotFoundHandler()).ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Basic", rec.Header().Get("WWW-Authenticate"))
}

type errResolver struct{}

func (errResolver) Resolve(_ context.Context, _ davgate.Credentials) (string, error) {
	return "", errors.New("identity store unavailable")
}

func TestGateway_ResolverFailureRejected(t *testing.T) {
	root := t.TempDir()
	engine := dispatch.NewEngine("/files", root, 0, nil)
	gw := davhttp.NewGateway(
		davhttp.GatewayConfig{ScopePath: "/files"},
		errResolver{},
		engine,
		nil,
	)

	req := httptest.NewRequest(http.MethodGet, "/files/doc.txt", nil)
	req.Header.Set("Authorization", basicAuth("alice", "secret"))
	rec := httptest.NewRecorder()
	gw.Handler(http.NotFoundHandler()).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

type panicDispatcher struct {
	err error
}

func (p panicDispatcher) Dispatch(http.ResponseWriter, *http.Request) {
	panic(p.err)
}

func (panicDispatcher) ResolveFullPath(*http.Request) string {
	return os.DevNull
}

func TestGateway_DispatchFaultIsContained(t *testing.T) {
	gw := davhttp.NewGateway(
		davhttp.GatewayConfig{ScopePath: "/files"},
		davgate.StaticResolver{},
		panicDispatcher{err: errors.New("engine exploded")},
		nil,
	)

	req := httptest.NewRequest(http.MethodGet, "/files/doc.txt", nil)
	req.Header.Set("Authorization", basicAuth("alice", "secret"))
	rec := httptest.NewRecorder()

	// Must not panic past the filter boundary; whatever the engine wrote
	// (nothing, here) is what the client gets.
	assert.NotPanics(t, func() {
		gw.Handler(http.NotFoundHandler()).ServeHTTP(rec, req)
	})
}

func TestGateway_BenignFaultIsContained(t *testing.T) {
	gw := davhttp.NewGateway(
		davhttp.GatewayConfig{ScopePath: "/files"},
		davgate.StaticResolver{},
		panicDispatcher{err: errors.New("write tcp 10.0.0.1:443: broken pipe")},
		nil,
	)

	req := httptest.NewRequest(http.MethodGet, "/files/doc.txt", nil)
	req.Header.Set("Authorization", basicAuth("alice", "secret"))
	rec := httptest.NewRecorder()

	assert.NotPanics(t, func() {
		gw.Handler(http.NotFoundHandler()).ServeHTTP(rec, req)
	})
}

func TestGateway_RouterHealthAndFallthrough(t *testing.T) {
	gw := newGateway(t, t.TempDir(), davgate.StaticResolver{})
	router := gw.Router(davhttp.RouterConfig{})

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	// Outside the gateway scope: falls through to the router's 404 stand-in.
	req = httptest.NewRequest(http.MethodGet, "/other/doc.txt", nil)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	// Inside the scope without credentials: the gateway answers.
	req = httptest.NewRequest(http.MethodGet, "/files/doc.txt", nil)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestGateway_RouterRoutesWebDAVMethods(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "a.txt"), []byte("a"), 0o644))
	gw := newGateway(t, root, davgate.StaticResolver{})
	router := gw.Router(davhttp.RouterConfig{})

	req := httptest.NewRequest("PROPFIND", "/files", nil)
	req.Header.Set("Authorization", basicAuth("alice", "secret"))
	req.Header.Set("Depth", "1")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusMultiStatus, rec.Code)
	assert.Contains(t, rec.Body.String(), "a.txt")
}
