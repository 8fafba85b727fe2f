package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/urmzd/jarvis-node/pkg/api"
	"github.com/urmzd/jarvis-node/pkg/api/schema"
	"github.com/urmzd/jarvis-node/pkg/node"
)

const (
	// drainDelay lets the companion app observe PROVISIONED before the
	// server goes away.
	drainDelay      = 5 * time.Second
	shutdownTimeout = 10 * time.Second
)

func run(ctx context.Context, cfg config) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.Force {
		log.Warn().Msg("Forced provisioning mode, skipping startup detection")
	} else if node.Detector(cfg.Node).IsProvisioned(ctx, cfg.StartupRetries, cfg.StartupDelay) {
		log.Info().Msg("Node is provisioned and the command center is reachable, nothing to do")
		return nil
	}

	n, err := node.New(ctx, cfg.Node)
	if err != nil {
		return err
	}
	defer func() {
		if err := n.Close(context.Background()); err != nil {
			log.Error().Err(err).Msg("Failed to close node")
		}
	}()

	addr, err := n.ListenAddress(ctx, cfg.Node.Port)
	if err != nil {
		return err
	}

	log.Info().
		Str("node_id", n.Info.NodeID).
		Str("hardware", n.Info.HardwareClass).
		Str("mac", n.Info.MACAddress).
		Str("wifi_backend", string(n.Backend)).
		Str("secret_dir", n.Paths.Dir).
		Msg("Entering provisioning mode")

	if !n.StartAccessPoint(ctx) {
		log.Warn().Msg("Control API is only reachable on existing networks")
	}

	router := api.NewRouter(n.Service, schema.NewValidator(), string(n.Backend))
	server := &http.Server{
		Addr:              addr,
		Handler:           router.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info().Str("address", addr).Msg("Starting API server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	runErr := wait(ctx, n.Provisioned(), serveErr, cfg.AutoShutdown)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Failed to shut down API server")
	}
	return runErr
}

// wait blocks until a signal, a server failure, or (with autoShutdown)
// completion of provisioning plus the drain delay.
func wait(ctx context.Context, provisioned <-chan struct{}, serveErr <-chan error, autoShutdown bool) error {
	if !autoShutdown {
		provisioned = nil
	}

	select {
	case <-ctx.Done():
		log.Info().Msg("Shutting down...")
		return nil
	case err := <-serveErr:
		return fmt.Errorf("server failed: %w", err)
	case <-provisioned:
	}

	log.Info().Dur("drain", drainDelay).Msg("Provisioning complete, shutting down")
	select {
	case <-time.After(drainDelay):
	case <-ctx.Done():
	}
	return nil
}
