package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/danmuck/edgerealm/internal/config"
	"github.com/danmuck/edgerealm/internal/lobby"
	"github.com/danmuck/edgerealm/internal/logging"
	"github.com/danmuck/edgerealm/internal/observability"
	"github.com/danmuck/edgerealm/internal/realm"
	"github.com/danmuck/edgerealm/internal/repository"
	"github.com/danmuck/edgerealm/internal/status"
	"github.com/rs/zerolog/log"
	"github.com/spf13/pflag"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "realmctl: %v\n", err)
		os.Exit(1)
	}
}

func parseFlags(args []string) (settings, error) {
	flags := pflag.NewFlagSet("realmctl", pflag.ContinueOnError)
	settingsPath := flags.String("settings", "", "realmctl settings file (TOML)")
	descriptor := flags.StringP("config", "c", "", "realm descriptor (.json, .yaml, .xml or .toml)")
	statusAddr := flags.String("status-addr", "", "status HTTP listen address, empty to disable")
	logLevel := flags.String("log-level", "", "log level (trace, debug, info, warn, error)")
	if err := flags.Parse(args); err != nil {
		return settings{}, err
	}

	cfg := defaultSettings()
	if *settingsPath != "" {
		loaded, err := loadSettings(*settingsPath)
		if err != nil {
			return settings{}, err
		}
		cfg = loaded
	}
	if flags.Changed("config") {
		cfg.Descriptor = *descriptor
	}
	if flags.Changed("status-addr") {
		cfg.StatusAddr = *statusAddr
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = *logLevel
	}
	return cfg, nil
}

func run(ctx context.Context, args []string) error {
	cfg, err := parseFlags(args)
	if err != nil {
		return err
	}

	logging.ConfigureRuntime()
	observability.InitLogger("realmctl")
	if cfg.LogLevel != "" && !logging.SetLevel(cfg.LogLevel) {
		return fmt.Errorf("unknown log level %q", cfg.LogLevel)
	}

	desc, err := config.LoadDescriptor(cfg.Descriptor)
	if err != nil {
		return err
	}

	h, join := realm.Start(desc, repository.NewFactory(), lobby.New())
	select {
	case <-join.Done():
		return join.Err()
	default:
	}
	log.Info().Str("realm", desc.Name).Str("addr", h.Addr().String()).Msg("realm running")

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	statusErr := make(chan error, 1)
	statusRunning := cfg.StatusAddr != ""
	if statusRunning {
		srv := status.New(desc.Name, cfg.StatusAddr, func() bool {
			select {
			case <-join.Done():
				return false
			default:
				return true
			}
		})
		go func() {
			statusErr <- srv.Serve(ctx)
		}()
	}

	var result error
	select {
	case <-ctx.Done():
		log.Info().Str("realm", desc.Name).Msg("shutdown requested")
		h.Stop()
		result = join.Err()
	case <-join.Done():
		result = join.Err()
	case err := <-statusErr:
		statusRunning = false
		h.Stop()
		result = errors.Join(err, join.Err())
	}

	cancel()
	if statusRunning {
		result = errors.Join(result, <-statusErr)
	}
	return result
}
