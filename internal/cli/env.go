package cli

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/reputel/repgraph/internal/config"
	"github.com/reputel/repgraph/internal/engine"
	"github.com/reputel/repgraph/internal/metrics"
	"github.com/reputel/repgraph/internal/rebuild"
	"github.com/reputel/repgraph/internal/router"
	"github.com/reputel/repgraph/internal/store"
)

// env bundles the wired components a command operates on.
type env struct {
	cfg     config.Config
	engine  *engine.Memory
	router  *router.Router
	store   *store.Store
	metrics *http.Server
}

func (e *env) close() {
	if e.metrics != nil {
		_ = e.metrics.Close()
	}
	if e.store != nil {
		_ = e.store.Close()
	}
}

// loadConfig resolves configuration from --config and --db. The --db
// flag wins over the config file; both fall back to defaults.
func loadConfig(opts *RootOptions) (config.Config, error) {
	cfg := config.Default()
	if opts.ConfigPath != "" {
		loaded, err := config.Load(opts.ConfigPath)
		if err != nil {
			return config.Config{}, err
		}
		cfg = loaded
	}
	if opts.Database != "" {
		cfg.Database = opts.Database
	}
	return cfg, nil
}

// openEnv opens the store with a router bound to a fresh in-process
// engine. The graph starts empty; commands that read graph position
// call populate first.
func openEnv(opts *RootOptions) (*env, error) {
	cfg, err := loadConfig(opts)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to load config", err)
	}

	mem := engine.NewMemory(engine.WithDamping(cfg.Damping))
	rt := router.New(mem)

	st, err := store.Open(cfg.Database, rt)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to open database", err)
	}

	e := &env{cfg: cfg, engine: mem, router: rt, store: st}
	if cfg.MetricsAddr != "" {
		e.metrics = serveMetrics(cfg.MetricsAddr)
	}
	return e, nil
}

// serveMetrics exposes the Prometheus registry at /metrics for the
// lifetime of the command. Scrape-worthy mostly for long-running
// rebuilds; short commands are gone before a scrape interval passes.
func serveMetrics(addr string) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())
	srv := &http.Server{Addr: addr, Handler: mux}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Warn("metrics listener stopped", "addr", addr, "error", err)
		}
	}()
	return srv
}

// populate rebuilds the in-process graph from the relational rows.
func (e *env) populate(ctx context.Context) error {
	c := rebuild.New(e.store, e.router)
	if _, err := c.Rebuild(ctx); err != nil {
		return WrapExitError(ExitFailure, "failed to build graph from source rows", err)
	}
	return nil
}
