// Copyright 2026 The Wicket Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/wicketlabs/wicket/approval"
	"github.com/wicketlabs/wicket/lib/clock"
	"github.com/wicketlabs/wicket/lib/config"
	"github.com/wicketlabs/wicket/lib/ctl"
	"github.com/wicketlabs/wicket/lib/runner"
	"github.com/wicketlabs/wicket/lib/version"
	"github.com/wicketlabs/wicket/telegram"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var (
		configPath  string
		showVersion bool
	)

	flag.StringVar(&configPath, "config", "", "path to YAML config file (default: $WICKET_CONFIG)")
	flag.BoolVar(&showVersion, "version", false, "print version information and exit")
	flag.Parse()

	if showVersion {
		fmt.Printf("wicketd %s\n", version.Info())
		return nil
	}

	if configPath == "" {
		configPath = os.Getenv("WICKET_CONFIG")
	}
	cfg, err := config.LoadFile(configPath)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	clk := clock.Real()

	store, err := approval.Open(cfg.StateFile, logger, clk)
	if err != nil {
		return err
	}

	client, err := telegram.NewClient(telegram.ClientConfig{
		Token:   cfg.Token,
		BaseURL: cfg.APIBaseURL,
		Logger:  logger,
	})
	if err != nil {
		return err
	}
	defer client.CloseIdleConnections()

	// Validate the token before settling in.
	me, err := client.GetMe(ctx)
	if err != nil {
		return fmt.Errorf("validating bot token: %w", err)
	}
	logger.Info("gateway session valid",
		"identity", me.ID,
		"handle", me.Username,
	)

	service := &Service{
		api:       client,
		store:     store,
		config:    cfg,
		clock:     clk,
		logger:    logger,
		startedAt: clk.Now(),
	}
	service.run = runner.New(runner.Config{
		BaseBackoff: cfg.BackoffBase.Std(),
		MaxBackoff:  cfg.BackoffMax.Std(),
		Classify:    classifyFault,
		OnFault: func(fault runner.Fault, err error, backoff time.Duration) {
			if fault == runner.FaultConflict {
				service.alert(ctx, fmt.Sprintf(
					"wicket: another getUpdates consumer is active, retrying in %s", backoff))
			}
		},
		Clock:  clk,
		Logger: logger,
	})

	// Control socket, if configured.
	var socketDone chan error
	if cfg.SocketPath != "" {
		socketServer := ctl.NewSocketServer(cfg.SocketPath, logger)
		service.registerActions(socketServer)
		socketDone = make(chan error, 1)
		go func() {
			socketDone <- socketServer.Serve(ctx)
		}()
	}

	logger.Info("gatekeeper running",
		"state_file", cfg.StateFile,
		"admins", len(cfg.AdminIDs),
	)

	err = service.run.Run(ctx, service.listen)
	if err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("listener: %w", err)
	}
	logger.Info("shutting down")

	if socketDone != nil {
		if err := <-socketDone; err != nil {
			logger.Error("socket server error", "error", err)
		}
	}
	return nil
}
