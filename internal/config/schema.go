// Package config handles YAML configuration loading, environment variable
// expansion, and structural validation for relaybot.
package config

import "gopkg.in/yaml.v3"

// Config is the top-level configuration structure.
type Config struct {
	// Version is the config format version. Currently only "1" is supported.
	Version string `yaml:"version"`

	// Relay names the monitored group, the responder and the trigger token.
	Relay RelayConfig `yaml:"relay"`

	// Telemetry configures OTLP trace export. Optional.
	Telemetry TelemetryConfig `yaml:"telemetry,omitempty"`

	// Modules maps module IDs to their raw YAML configuration.
	// Keys must match registered module IDs (e.g. "transport.bridge").
	Modules map[string]yaml.Node `yaml:"modules"`
}

// RelayConfig holds the relay options. They are fixed for the lifetime of
// the process.
type RelayConfig struct {
	// Group is the display name of the monitored group chat.
	Group string `yaml:"group"`

	// Responder is the display name of the contact that answers queries.
	Responder string `yaml:"responder"`

	// Trigger is the substring that marks a group message as a query.
	Trigger string `yaml:"trigger"`
}

// TelemetryConfig configures tracing.
type TelemetryConfig struct {
	// OTLPEndpoint is the host:port of an OTLP/HTTP collector.
	// Empty disables trace export.
	OTLPEndpoint string `yaml:"otlp_endpoint,omitempty"`
	ServiceName  string `yaml:"service_name,omitempty"`
	Insecure     bool   `yaml:"insecure,omitempty"`
}
