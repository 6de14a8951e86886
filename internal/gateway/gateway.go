// Package gateway serves the plain-text relay status page.
package gateway

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"

	"github.com/flemzord/relaybot/internal/core"
	"github.com/flemzord/relaybot/internal/relay"
	"gopkg.in/yaml.v3"
)

// SettingsService is the service key under which the relay settings are
// registered.
const SettingsService = "relay.settings"

// ErrInvalidPort is returned by Validate for ports outside 1-65535.
var ErrInvalidPort = errors.New("gateway: invalid port")

func init() {
	core.RegisterModule(&Gateway{})
}

// Gateway is the HTTP status module. It is a leaf module: nothing imports it.
type Gateway struct {
	config   Config
	appCtx   *core.AppContext
	logger   *slog.Logger
	server   *http.Server
	settings relay.Settings
}

// ModuleInfo implements core.Module.
func (g *Gateway) ModuleInfo() core.ModuleInfo {
	return core.ModuleInfo{
		ID:  "gateway.http",
		New: func() core.Module { return &Gateway{} },
	}
}

// Configure implements core.Configurable.
func (g *Gateway) Configure(node *yaml.Node) error {
	if err := node.Decode(&g.config); err != nil {
		return err
	}
	g.config.defaults()
	return nil
}

// Provision implements core.Provisioner.
func (g *Gateway) Provision(ctx *core.AppContext) error {
	g.config.defaults()
	g.appCtx = ctx
	g.logger = ctx.Logger
	return nil
}

// Validate implements core.Validator.
func (g *Gateway) Validate() error {
	if g.config.Port < 1 || g.config.Port > 65535 {
		return fmt.Errorf("%w: %d", ErrInvalidPort, g.config.Port)
	}
	if _, err := net.ResolveTCPAddr("tcp", g.config.Addr()); err != nil {
		return errors.New("gateway: invalid listen address: " + g.config.Addr())
	}
	return nil
}

// Start implements core.Starter. It resolves the relay settings from the
// service registry and starts the HTTP server.
func (g *Gateway) Start() error {
	if svc, ok := g.appCtx.Service(SettingsService); ok {
		if s, ok := svc.(relay.Settings); ok {
			g.settings = s
		}
	} else {
		g.logger.Warn("gateway: relay settings not registered, status page will be empty")
	}

	addr := g.config.Addr()
	g.server = &http.Server{
		Addr:         addr,
		Handler:      g.buildRouter(),
		ReadTimeout:  g.config.ReadTimeout,
		WriteTimeout: g.config.WriteTimeout,
	}

	var lc net.ListenConfig
	ln, err := lc.Listen(context.Background(), "tcp", addr)
	if err != nil {
		return errors.New("gateway: listen failed: " + err.Error())
	}

	go func() {
		g.logger.Info("gateway listening", "addr", addr)
		if err := g.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			g.logger.Error("gateway serve error", "error", err)
		}
	}()

	return nil
}

// Stop implements core.Stopper. Graceful shutdown with configured timeout.
func (g *Gateway) Stop(ctx context.Context) error {
	if g.server == nil {
		return nil
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, g.config.ShutdownTimeout)
	defer cancel()

	g.logger.Info("gateway shutting down")
	return g.server.Shutdown(shutdownCtx)
}
