package sqlite

import (
	"fmt"
	"time"

	"github.com/flemzord/relaybot/internal/cron"
)

const (
	defaultBusyTimeout = 5000
	defaultDBFile      = "relay.db"
	defaultRetention   = 30 * 24 * time.Hour
)

// Config holds the SQLite journal module configuration.
type Config struct {
	// Path is the database file path. Defaults to {DataDir}/relay.db.
	Path string `yaml:"path"`

	// WAL enables WAL journal mode. Defaults to true.
	WAL *bool `yaml:"wal"`

	// BusyTimeout is the milliseconds to wait on a busy lock. Defaults to 5000.
	BusyTimeout int `yaml:"busy_timeout"`

	// Retention is how long entries are kept. Defaults to 720h; a negative
	// value keeps entries forever.
	Retention time.Duration `yaml:"retention"`

	// PruneSchedule is the cron expression of the retention job.
	PruneSchedule string `yaml:"prune_schedule"`
}

func (c *Config) defaults() {
	if c.WAL == nil {
		t := true
		c.WAL = &t
	}
	if c.BusyTimeout == 0 {
		c.BusyTimeout = defaultBusyTimeout
	}
	if c.Retention == 0 {
		c.Retention = defaultRetention
	}
	if c.PruneSchedule == "" {
		c.PruneSchedule = cron.DefaultPruneSchedule
	}
}

func (c *Config) walEnabled() bool {
	return c.WAL == nil || *c.WAL
}

func (c *Config) validate() error {
	if c.BusyTimeout < 0 {
		return fmt.Errorf("sqlite: busy_timeout must be non-negative, got %d", c.BusyTimeout)
	}
	return cron.ValidateSchedule(c.PruneSchedule)
}
