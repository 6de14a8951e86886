// Package metrics exposes relay metrics in the Prometheus text format on a
// dedicated listener.
package metrics

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/flemzord/relaybot/internal/core"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gopkg.in/yaml.v3"
)

// RegistryService is the service key of the *prometheus.Registry.
const RegistryService = "metrics.registry"

func init() {
	core.RegisterModule(&Module{})
}

// Config holds the metrics exporter configuration.
type Config struct {
	Bind            string        `yaml:"bind"`
	Path            string        `yaml:"path"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

func (c *Config) defaults() {
	if c.Bind == "" {
		c.Bind = "127.0.0.1:9464"
	}
	if c.Path == "" {
		c.Path = "/metrics"
	}
	if c.ShutdownTimeout <= 0 {
		c.ShutdownTimeout = 5 * time.Second
	}
}

// Module serves a Prometheus registry over HTTP.
type Module struct {
	config   Config
	logger   *slog.Logger
	registry *prometheus.Registry
	server   *http.Server
	addr     net.Addr
}

// Compile-time interface guards.
var (
	_ core.Configurable = (*Module)(nil)
	_ core.Provisioner  = (*Module)(nil)
	_ core.Validator    = (*Module)(nil)
	_ core.Starter      = (*Module)(nil)
	_ core.Stopper      = (*Module)(nil)
)

// ModuleInfo implements core.Module.
func (m *Module) ModuleInfo() core.ModuleInfo {
	return core.ModuleInfo{
		ID:  "metrics.prometheus",
		New: func() core.Module { return &Module{} },
	}
}

// Configure implements core.Configurable.
func (m *Module) Configure(node *yaml.Node) error {
	if err := node.Decode(&m.config); err != nil {
		return err
	}
	m.config.defaults()
	return nil
}

// Provision implements core.Provisioner. It creates the registry with the Go
// runtime and process collectors and publishes it under RegistryService.
func (m *Module) Provision(ctx *core.AppContext) error {
	m.config.defaults()
	m.logger = ctx.Logger

	m.registry = prometheus.NewRegistry()
	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	ctx.RegisterService(RegistryService, m.registry)
	return nil
}

// Validate implements core.Validator.
func (m *Module) Validate() error {
	if _, err := net.ResolveTCPAddr("tcp", m.config.Bind); err != nil {
		return errors.New("metrics: invalid bind address: " + m.config.Bind)
	}
	return nil
}

// Start implements core.Starter.
func (m *Module) Start() error {
	r := chi.NewRouter()
	r.Handle(m.config.Path, promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry}))

	m.server = &http.Server{
		Addr:              m.config.Bind,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}

	var lc net.ListenConfig
	ln, err := lc.Listen(context.Background(), "tcp", m.config.Bind)
	if err != nil {
		return errors.New("metrics: listen failed: " + err.Error())
	}
	m.addr = ln.Addr()

	go func() {
		m.logger.Info("metrics listening", "addr", m.addr.String(), "path", m.config.Path)
		if err := m.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			m.logger.Error("metrics serve error", "error", err)
		}
	}()
	return nil
}

// Stop implements core.Stopper.
func (m *Module) Stop(ctx context.Context) error {
	if m.server == nil {
		return nil
	}
	shutdownCtx, cancel := context.WithTimeout(ctx, m.config.ShutdownTimeout)
	defer cancel()
	return m.server.Shutdown(shutdownCtx)
}

// Registry returns the module's registry.
func (m *Module) Registry() *prometheus.Registry {
	return m.registry
}
