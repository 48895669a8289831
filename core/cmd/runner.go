// Package cmd hosts the shared startup sequence of the bot binaries: load
// configuration, initialize logging, build the runtime and run it until a
// shutdown signal arrives.
package cmd

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/m3rciful/moovbot/core/bot"
	coreconfig "github.com/m3rciful/moovbot/core/config"
	"github.com/m3rciful/moovbot/core/logger"
	coretelegram "github.com/m3rciful/moovbot/core/telegram"
)

// Options describe how to locate configuration and assemble the bot runtime.
type Options struct {
	ConfigEnvVar      string
	DefaultConfigPath string

	// Build assembles the run options from loaded configuration. The
	// Config field of the result is filled in by Run.
	Build func(cfg *coreconfig.Config) (coretelegram.RunOptions, error)
}

// Run loads configuration, initializes logging and runs the bot until the
// process receives an interrupt or termination signal.
func Run(opts Options) error {
	if opts.Build == nil {
		return fmt.Errorf("cmd: Build is required")
	}

	env := opts.ConfigEnvVar
	if env == "" {
		env = "CONFIG_PATH"
	}
	cfgPath := os.Getenv(env)
	if cfgPath == "" {
		cfgPath = opts.DefaultConfigPath
	}
	if cfgPath == "" {
		return fmt.Errorf("cmd: config path not provided via %s or DefaultConfigPath", env)
	}

	log.Printf("loading config: %s", cfgPath)
	cfg, err := coreconfig.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("cmd: failed to load config: %w", err)
	}

	if err := logger.InitLogger(cfg); err != nil {
		return fmt.Errorf("cmd: logger init failed: %w", err)
	}
	defer func() {
		if err := logger.Shutdown(); err != nil {
			log.Printf("logger shutdown error: %v", err)
		}
	}()

	runOpts, err := opts.Build(cfg)
	if err != nil {
		return fmt.Errorf("cmd: build failed: %w", err)
	}
	runOpts.Config = cfg

	startedAt := time.Now()
	prevStart := runOpts.OnStart
	runOpts.OnStart = func(ctx context.Context, tr bot.Transport) error {
		if prevStart != nil {
			if err := prevStart(ctx, tr); err != nil {
				return err
			}
		}
		logger.L.With("component", "app").Info("app ready",
			slog.String("event", "ready"),
			slog.Duration("startup_duration", logger.RoundMS(time.Since(startedAt))),
		)
		return nil
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	err = coretelegram.Run(ctx, runOpts)

	logger.L.With("component", "app").Info("shutting down...",
		slog.String("event", "shutdown"),
	)
	return err
}
