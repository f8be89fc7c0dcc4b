package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
)

// chi only routes methods it knows about; teach it the WebDAV verbs once.
func init() {
	for _, m := range []string{"PROPFIND", "PROPPATCH", "MKCOL", "COPY", "MOVE", "LOCK", "UNLOCK"} {
		chi.RegisterMethod(m)
	}
}

// CORSConfig mirrors the go-chi/cors options the gateway exposes.
type CORSConfig struct {
	Enabled          bool     `mapstructure:"enabled"`
	AllowedOrigins   []string `mapstructure:"allowed_origins"`
	AllowedMethods   []string `mapstructure:"allowed_methods"`
	AllowedHeaders   []string `mapstructure:"allowed_headers"`
	ExposedHeaders   []string `mapstructure:"exposed_headers"`
	AllowCredentials bool     `mapstructure:"allow_credentials"`
	MaxAge           int      `mapstructure:"max_age"`
}

// RouterConfig holds the ambient middleware settings for Router.
type RouterConfig struct {
	CORS      CORSConfig
	RateLimit RateLimitConfig
}

// Router mounts the gateway on a chi router together with the ambient
// middleware and a health endpoint. Paths outside the gateway's scope fall
// through to a plain 404, standing in for whatever the host pipeline would
// mount next.
func (g *Gateway) Router(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	if cfg.CORS.Enabled {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   cfg.CORS.AllowedOrigins,
			AllowedMethods:   cfg.CORS.AllowedMethods,
			AllowedHeaders:   cfg.CORS.AllowedHeaders,
			ExposedHeaders:   cfg.CORS.ExposedHeaders,
			AllowCredentials: cfg.CORS.AllowCredentials,
			MaxAge:           cfg.CORS.MaxAge,
		}))
	}
	r.Use(RequestIDMiddleware)
	r.Use(RateLimitMiddleware(cfg.RateLimit))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Handle("/*", g.Handler(http.NotFoundHandler()))

	return r
}

// EngineLogger returns the error callback wired into the protocol engine.
// Engine faults are logged rather than surfaced, since the engine has
// already written whatever status it could. Benign disconnects are dropped.
func EngineLogger() func(*http.Request, error) {
	return func(r *http.Request, err error) {
		if err == nil || isKnownBenignFault(err) {
			return
		}
		slog.Error("webdav engine", "method", r.Method, "path", r.URL.Path, "err", err)
	}
}
