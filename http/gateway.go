package http

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/avendal/davgate"
	"github.com/avendal/davgate/dispatch"
	"github.com/avendal/davgate/reaper"
)

// GatewayConfig holds the per-gateway scoping policy. It is loaded once at
// startup and immutable afterwards.
type GatewayConfig struct {
	// ScopePath is the URL prefix the gateway answers for. Requests outside
	// it pass through to the next handler in the host pipeline.
	ScopePath string
}

// Gateway is the interception filter wrapped around the protocol engine.
// One instance serves one scope; the tenant resolver decides whether it
// behaves as a single fixed home or a home plus per-tenant segment.
type Gateway struct {
	cfg        GatewayConfig
	resolver   davgate.TenantResolver
	dispatcher dispatch.Dispatcher
	reaper     *reaper.Reaper
}

// NewGateway builds a gateway. resolver may not be nil; rp may be nil to
// disable post-upload housekeeping.
func NewGateway(cfg GatewayConfig, resolver davgate.TenantResolver, d dispatch.Dispatcher, rp *reaper.Reaper) *Gateway {
	return &Gateway{cfg: cfg, resolver: resolver, dispatcher: d, reaper: rp}
}

// Handler returns the gateway as middleware: requests outside the scope
// path fall through to next, everything else terminates here.
func (g *Gateway) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !davgate.UnderScope(r.URL.Path, g.cfg.ScopePath) {
			next.ServeHTTP(w, r)
			return
		}
		g.serve(w, r)
	})
}

func (g *Gateway) serve(w http.ResponseWriter, r *http.Request) {
	// The filter boundary: nothing thrown below here reaches the host.
	defer func() {
		if v := recover(); v != nil {
			err, ok := v.(error)
			if !ok {
				err = fmt.Errorf("%v", v)
			}
			if isKnownBenignFault(err) {
				return
			}
			slog.Error("gateway: request failed", "method", r.Method, "path", r.URL.Path, "err", err)
		}
	}()

	creds, ok := davgate.ParseBasicAuth(r.Header.Get("Authorization"))
	if !ok {
		slog.Debug("gateway: rejecting request", "path", r.URL.Path, "reason", davgate.ErrUnauthorized)
		g.rejectUnauthorized(w, r)
		return
	}

	segment, err := g.resolver.Resolve(r.Context(), creds)
	if err != nil {
		slog.Warn("gateway: tenant resolution failed", "name", creds.Name, "err", err)
		g.rejectUnauthorized(w, r)
		return
	}
	if !davgate.InScope(r.URL.Path, g.cfg.ScopePath, segment) {
		slog.Debug("gateway: rejecting request", "path", r.URL.Path, "segment", segment, "reason", davgate.ErrOutOfScope)
		g.rejectUnauthorized(w, r)
		return
	}

	g.dispatcher.Dispatch(w, r)

	if r.Method == http.MethodPut && g.reaper != nil {
		// The reaper re-reads the file length itself: a zero-length result
		// is the first phase of a two-phase upload and stays untouched. A
		// missing file means the PUT never landed; nothing to do either way.
		if full := g.dispatcher.ResolveFullPath(r); full != "" {
			if err := g.reaper.AfterUpload(full); err != nil && !errors.Is(err, os.ErrNotExist) {
				slog.Warn("gateway: post-upload cleanup", "path", r.URL.Path, "err", err)
			}
		}
	}
}

// rejectUnauthorized is terminal: it challenges the client and, for a PUT
// caught between the two phases of an upload, removes the partially created
// target the first phase left behind.
func (g *Gateway) rejectUnauthorized(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodPut {
		if orphan := g.dispatcher.ResolveFullPath(r); orphan != "" {
			if err := os.Remove(orphan); err != nil && !os.IsNotExist(err) {
				slog.Warn("gateway: remove orphaned upload", "path", orphan, "err", err)
			}
		}
	}

	w.Header().Set("WWW-Authenticate", "Basic")
	w.WriteHeader(http.StatusUnauthorized)
}
