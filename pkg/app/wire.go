package app

import (
	"fmt"
	"log/slog"

	"github.com/flemzord/relaybot/internal/config"
	"github.com/flemzord/relaybot/internal/core"
	"github.com/flemzord/relaybot/internal/gateway"
	"github.com/flemzord/relaybot/internal/journal"
	"github.com/flemzord/relaybot/internal/metrics"
	"github.com/flemzord/relaybot/internal/relay"
	"github.com/flemzord/relaybot/internal/transport"
	"github.com/prometheus/client_golang/prometheus"
)

// ingressID is the lifecycle ID of the relay ingress.
const ingressID core.ModuleID = "relay.ingress"

// wireRelay builds the Dispatcher, Directory, Engine and Ingress, points
// every loaded transport at the ingress, and appends the ingress to the app
// lifecycle. Must be called after LoadModules and before Start.
func wireRelay(
	app *core.App,
	appCtx *core.AppContext,
	ids []string,
	rc config.RelayConfig,
	logger *slog.Logger,
) (*relay.Engine, error) {
	dispatcher := transport.NewDispatcher()
	var transports []transport.Transport

	for _, id := range ids {
		mod, ok := app.Module(id)
		if !ok {
			continue
		}
		t, ok := mod.(transport.Transport)
		if !ok {
			continue
		}
		// Registered under the full module ID, which is what transports
		// set as Chat.Transport on their events.
		if err := dispatcher.Register(id, t); err != nil {
			return nil, fmt.Errorf("registering transport %s: %w", id, err)
		}
		transports = append(transports, t)
		logger.Info("relay: registered transport", "transport", id)
	}
	if len(transports) == 0 {
		return nil, fmt.Errorf("relay: at least one transport module is required")
	}

	settings := relay.Settings{
		Group:     rc.Group,
		Responder: rc.Responder,
		Trigger:   rc.Trigger,
	}

	var m *relay.Metrics
	if svc, ok := appCtx.Service(metrics.RegistryService); ok {
		if reg, ok := svc.(prometheus.Registerer); ok {
			m = relay.NewMetrics(reg)
		}
	}

	var rec journal.Recorder
	if svc, ok := appCtx.Service(journal.ServiceName); ok {
		if r, ok := svc.(journal.Recorder); ok {
			rec = r
		}
	}

	relayLogger := logger.With("component", "relay")
	engine, err := relay.NewEngine(relay.EngineConfig{
		Settings:  settings,
		Directory: transport.NewDirectory(dispatcher),
		Sender:    dispatcher,
		Logger:    relayLogger,
		Metrics:   m,
		Journal:   rec,
	})
	if err != nil {
		return nil, err
	}

	ingress := relay.NewIngress(engine, relay.IngressConfig{Logger: relayLogger})
	for _, t := range transports {
		t.SetInbox(ingress.Submit)
	}

	// The ingress is appended last so it starts after the transports and
	// stops before them.
	app.AppendModule(ingressID, ingress)
	appCtx.RegisterService(gateway.SettingsService, settings)

	logger.Info("relay: wired",
		"group", settings.Group,
		"responder", settings.Responder,
		"trigger", settings.Trigger,
		"transports", dispatcher.Transports(),
	)
	return engine, nil
}
