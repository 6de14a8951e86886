// Package sqlite implements the relay journal on SQLite using
// modernc.org/sqlite (pure Go, no CGO) in WAL mode, with a cron job
// enforcing retention.
package sqlite

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/flemzord/relaybot/internal/core"
	"github.com/flemzord/relaybot/internal/cron"
	"github.com/flemzord/relaybot/internal/journal"
	"gopkg.in/yaml.v3"
)

// ServiceName is the service key of the journal store.
const ServiceName = journal.ServiceName

func init() {
	core.RegisterModule(&Module{})
}

// Compile-time interface guards.
var (
	_ core.Configurable = (*Module)(nil)
	_ core.Provisioner  = (*Module)(nil)
	_ core.Validator    = (*Module)(nil)
	_ core.Starter      = (*Module)(nil)
	_ core.Stopper      = (*Module)(nil)
)

// Module is the SQLite journal module.
type Module struct {
	config    Config
	logger    *slog.Logger
	store     *Store
	scheduler *cron.Scheduler
}

// ModuleInfo implements core.Module.
func (m *Module) ModuleInfo() core.ModuleInfo {
	return core.ModuleInfo{
		ID:  "journal.sqlite",
		New: func() core.Module { return &Module{} },
	}
}

// Configure implements core.Configurable.
func (m *Module) Configure(node *yaml.Node) error {
	if err := node.Decode(&m.config); err != nil {
		return fmt.Errorf("sqlite: decode config: %w", err)
	}
	m.config.defaults()
	return nil
}

// Provision implements core.Provisioner. It opens the database and
// registers the store under ServiceName.
func (m *Module) Provision(ctx *core.AppContext) error {
	m.config.defaults()
	m.logger = ctx.Logger

	if m.config.Path == "" {
		m.config.Path = filepath.Join(ctx.DataDir, defaultDBFile)
	} else if !filepath.IsAbs(m.config.Path) && ctx.DataDir != "" {
		m.config.Path = filepath.Join(ctx.DataDir, m.config.Path)
	}

	db, err := openDB(context.Background(), m.config.Path, m.config.walEnabled(), m.config.BusyTimeout)
	if err != nil {
		return err
	}
	m.store = &Store{db: db}

	m.scheduler = cron.NewScheduler(m.logger)
	if m.config.Retention > 0 {
		if err := m.scheduler.RegisterJob(&cron.JournalPruneJob{
			Store:        m.store,
			Retention:    m.config.Retention,
			Logger:       m.logger,
			ScheduleExpr: m.config.PruneSchedule,
		}); err != nil {
			_ = db.Close()
			return err
		}
	}

	ctx.RegisterService(ServiceName, m.store)

	m.logger.Info("sqlite journal provisioned",
		"path", m.config.Path,
		"wal", m.config.walEnabled(),
		"retention", m.config.Retention,
	)
	return nil
}

// Validate implements core.Validator.
func (m *Module) Validate() error {
	if err := m.config.validate(); err != nil {
		return err
	}
	if err := m.store.db.PingContext(context.Background()); err != nil {
		return fmt.Errorf("sqlite: ping failed: %w", err)
	}
	return nil
}

// Start implements core.Starter. It starts the retention scheduler.
func (m *Module) Start() error {
	return m.scheduler.Start()
}

// Stop implements core.Stopper.
func (m *Module) Stop(ctx context.Context) error {
	if m.logger != nil {
		m.logger.Info("sqlite journal stopping")
	}
	if m.scheduler != nil {
		_ = m.scheduler.Stop(ctx)
	}
	if m.store != nil {
		return m.store.Close()
	}
	return nil
}

// Store returns the journal store.
func (m *Module) Store() *Store {
	return m.store
}
