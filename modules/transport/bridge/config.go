package bridge

import (
	"fmt"
	"net/url"
	"time"
)

// Config holds the bridge transport configuration.
type Config struct {
	// URL is the bridge WebSocket endpoint (ws:// or wss://).
	URL            string        `yaml:"url"`
	Token          string        `yaml:"token"`
	ReconnectDelay time.Duration `yaml:"reconnect_delay"`
	PingInterval   time.Duration `yaml:"ping_interval"`
	RequestTimeout time.Duration `yaml:"request_timeout"`
	// EventBuffer bounds the events read from the bridge but not yet handed
	// to the inbox.
	EventBuffer int `yaml:"event_buffer"`
}

// defaults applies default values to unset fields.
func (c *Config) defaults() {
	if c.ReconnectDelay <= 0 {
		c.ReconnectDelay = 5 * time.Second
	}
	if c.PingInterval <= 0 {
		c.PingInterval = 30 * time.Second
	}
	if c.RequestTimeout <= 0 {
		c.RequestTimeout = 30 * time.Second
	}
	if c.EventBuffer <= 0 {
		c.EventBuffer = 256
	}
}

func (c *Config) validate() error {
	if c.URL == "" {
		return fmt.Errorf("bridge: url is required")
	}
	u, err := url.Parse(c.URL)
	if err != nil || (u.Scheme != "ws" && u.Scheme != "wss") || u.Host == "" {
		return fmt.Errorf("bridge: url must be a valid ws/wss URL, got %q", c.URL)
	}
	return nil
}
