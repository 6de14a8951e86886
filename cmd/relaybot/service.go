package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/flemzord/relaybot/pkg/app"
	"github.com/kardianos/service"
	"github.com/spf13/cobra"
)

// program adapts app.RunContext to the service manager.
type program struct {
	params app.RunParams
	cancel context.CancelFunc
	done   chan error
}

func (p *program) Start(s service.Service) error {
	ctx, cancel := context.WithCancel(context.Background())
	p.cancel = cancel
	p.done = make(chan error, 1)

	go func() {
		err := app.RunContext(ctx, p.params)
		if err != nil && ctx.Err() == nil {
			// The relay failed on its own: let the service manager restart us.
			if logger, lerr := s.Logger(nil); lerr == nil {
				_ = logger.Error(err)
			}
			os.Exit(1)
		}
		p.done <- err
	}()
	return nil
}

func (p *program) Stop(_ service.Service) error {
	if p.cancel == nil {
		return nil
	}
	p.cancel()
	return <-p.done
}

func serviceConfig(args []string) *service.Config {
	return &service.Config{
		Name:        "relaybot",
		DisplayName: "Relay Bot",
		Description: "Relays group mentions to a responder and its answers back.",
		Arguments:   append([]string{"service", "run"}, args...),
	}
}

// serviceArgs returns the flags forwarded to `service run`. The config path
// is made absolute since services do not start in the caller's directory.
func serviceArgs(cmd *cobra.Command) ([]string, error) {
	var args []string
	if cfgPath, _ := cmd.Flags().GetString("config"); cfgPath != "" {
		abs, err := filepath.Abs(cfgPath)
		if err != nil {
			return nil, err
		}
		args = append(args, "--config", abs)
	}
	if level, _ := cmd.Flags().GetString("log-level"); level != "" {
		args = append(args, "--log-level", level)
	}
	if dataDir, _ := cmd.Flags().GetString("data-dir"); dataDir != "" {
		abs, err := filepath.Abs(dataDir)
		if err != nil {
			return nil, err
		}
		args = append(args, "--data-dir", abs)
	}
	return args, nil
}

func newService(cmd *cobra.Command) (service.Service, error) {
	params, err := runParams(cmd)
	if err != nil {
		return nil, err
	}
	args, err := serviceArgs(cmd)
	if err != nil {
		return nil, err
	}
	return service.New(&program{params: params}, serviceConfig(args))
}

func serviceCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "service",
		Short: "Manage relaybot as an OS service",
	}

	for _, action := range []string{"install", "uninstall", "start", "stop", "restart"} {
		sub := &cobra.Command{
			Use:   action,
			Short: fmt.Sprintf("%s the relaybot service", action),
			RunE: func(cmd *cobra.Command, _ []string) error {
				s, err := newService(cmd)
				if err != nil {
					return err
				}
				if err := service.Control(s, action); err != nil {
					return fmt.Errorf("service %s: %w", action, err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "service %s: ok\n", action)
				return nil
			},
		}
		addRunFlags(sub)
		cmd.AddCommand(sub)
	}

	status := &cobra.Command{
		Use:   "status",
		Short: "Show the relaybot service status",
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := newService(cmd)
			if err != nil {
				return err
			}
			st, err := s.Status()
			if err != nil && !errors.Is(err, service.ErrNotInstalled) {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), statusText(st, err))
			return nil
		},
	}
	addRunFlags(status)

	run := &cobra.Command{
		Use:    "run",
		Short:  "Run under the service manager",
		Hidden: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := newService(cmd)
			if err != nil {
				return err
			}
			return s.Run()
		},
	}
	addRunFlags(run)

	cmd.AddCommand(status, run)
	return cmd
}

func statusText(st service.Status, err error) string {
	if errors.Is(err, service.ErrNotInstalled) {
		return "not installed"
	}
	switch st {
	case service.StatusRunning:
		return "running"
	case service.StatusStopped:
		return "stopped"
	default:
		return "unknown"
	}
}
