package main

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/charmbracelet/huh"
	"github.com/flemzord/relaybot/internal/config"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

const defaultConfigFile = "relaybot.yaml"

// wizardAnswers holds what `relaybot init` asks for.
type wizardAnswers struct {
	Group     string
	Responder string
	Trigger   string
	Port      string
	BridgeURL string
	Metrics   bool
	Journal   bool
}

func defaultAnswers() wizardAnswers {
	return wizardAnswers{
		Group:     "Perplexity AI",
		Responder: "Perplexity",
		Trigger:   "@bot",
		Port:      "5512",
		BridgeURL: "ws://127.0.0.1:3000/ws",
		Metrics:   true,
		Journal:   true,
	}
}

// configFile is the YAML layout written by the wizard.
type configFile struct {
	Version string                    `yaml:"version"`
	Relay   config.RelayConfig        `yaml:"relay"`
	Modules map[string]map[string]any `yaml:"modules"`
}

// render turns the answers into a configuration file.
func (a wizardAnswers) render() ([]byte, error) {
	port, err := strconv.Atoi(a.Port)
	if err != nil {
		return nil, fmt.Errorf("invalid port %q: %w", a.Port, err)
	}

	f := configFile{
		Version: "1",
		Relay: config.RelayConfig{
			Group:     a.Group,
			Responder: a.Responder,
			Trigger:   a.Trigger,
		},
		Modules: map[string]map[string]any{
			"gateway.http": {"port": port},
			"transport.bridge": {
				"url":   a.BridgeURL,
				"token": "${BRIDGE_TOKEN:-}",
			},
		},
	}
	if a.Metrics {
		f.Modules["metrics.prometheus"] = map[string]any{"bind": "127.0.0.1:9464"}
	}
	if a.Journal {
		f.Modules["journal.sqlite"] = map[string]any{
			"path":      "relay.db",
			"retention": "720h",
		}
	}
	return yaml.Marshal(f)
}

func validatePort(s string) error {
	port, err := strconv.Atoi(s)
	if err != nil || port < 1 || port > 65535 {
		return errors.New("port must be a number between 1 and 65535")
	}
	return nil
}

func initCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init [path]",
		Short: "Create a configuration file interactively",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := defaultConfigFile
			if len(args) == 1 {
				path = args[0]
			}

			if _, err := os.Stat(path); err == nil {
				overwrite := false
				confirm := huh.NewConfirm().
					Title(fmt.Sprintf("%s already exists. Overwrite it?", path)).
					Value(&overwrite)
				if err := confirm.Run(); err != nil {
					return err
				}
				if !overwrite {
					return nil
				}
			}

			a := defaultAnswers()
			form := huh.NewForm(
				huh.NewGroup(
					huh.NewInput().
						Title("Monitored group").
						Description("Display name of the group chat to watch.").
						Value(&a.Group).
						Validate(huh.ValidateNotEmpty()),
					huh.NewInput().
						Title("Responder").
						Description("Contact that answers the relayed queries.").
						Value(&a.Responder).
						Validate(huh.ValidateNotEmpty()),
					huh.NewInput().
						Title("Trigger").
						Description("Text that marks a group message as a query.").
						Value(&a.Trigger).
						Validate(huh.ValidateNotEmpty()),
				),
				huh.NewGroup(
					huh.NewInput().
						Title("Status port").
						Value(&a.Port).
						Validate(validatePort),
					huh.NewInput().
						Title("Bridge WebSocket URL").
						Value(&a.BridgeURL).
						Validate(huh.ValidateNotEmpty()),
					huh.NewConfirm().
						Title("Expose Prometheus metrics?").
						Value(&a.Metrics),
					huh.NewConfirm().
						Title("Keep a relay journal?").
						Value(&a.Journal),
				),
			)
			if err := form.Run(); err != nil {
				if errors.Is(err, huh.ErrUserAborted) {
					return nil
				}
				return err
			}

			data, err := a.render()
			if err != nil {
				return err
			}
			if err := os.WriteFile(path, data, 0o600); err != nil {
				return fmt.Errorf("writing %s: %w", path, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Configuration written to %s\nCheck it with: relaybot config check %s\n", path, path)
			return nil
		},
	}
}
