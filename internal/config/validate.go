package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/flemzord/relaybot/internal/core"
)

// TransportNamespace is the module namespace chat transports register under.
const TransportNamespace = "transport"

// Validate checks the structural validity of a Config: the version field,
// the relay options, and that every referenced module ID exists in the
// registry. At least one transport module must be configured.
func Validate(cfg *Config) error {
	var errs []error

	if cfg.Version == "" {
		errs = append(errs, errors.New("config: version field is required"))
	} else if cfg.Version != "1" {
		errs = append(errs, fmt.Errorf("config: unsupported version %q (supported: \"1\")", cfg.Version))
	}

	errs = append(errs, validateRelay(cfg.Relay)...)

	if len(cfg.Modules) == 0 {
		errs = append(errs, errors.New("config: at least one module must be configured"))
	}

	hasTransport := false
	for id := range cfg.Modules {
		if _, ok := core.GetModule(id); !ok {
			errs = append(errs, fmt.Errorf("config: unknown module %q", id))
			continue
		}
		if core.ModuleID(id).Namespace() == TransportNamespace {
			hasTransport = true
		}
	}
	if len(cfg.Modules) > 0 && !hasTransport {
		errs = append(errs, errors.New("config: at least one transport module must be configured"))
	}

	return errors.Join(errs...)
}

func validateRelay(r RelayConfig) []error {
	var errs []error
	if strings.TrimSpace(r.Group) == "" {
		errs = append(errs, errors.New("config: relay.group is required"))
	}
	if strings.TrimSpace(r.Responder) == "" {
		errs = append(errs, errors.New("config: relay.responder is required"))
	}
	// An empty trigger would match every message of the group.
	if r.Trigger == "" {
		errs = append(errs, errors.New("config: relay.trigger is required"))
	}
	return errs
}
