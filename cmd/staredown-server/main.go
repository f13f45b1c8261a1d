package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"staredown/internal/config"
	"staredown/internal/lobby"
	"staredown/internal/logging"
	"staredown/internal/ports/httpapi"
	"staredown/internal/session"
	"staredown/internal/sweep"
)

const shutdownGrace = 10 * time.Second

func main() {
	path := flag.String("config", "", "path to a YAML config file")
	flag.Parse()

	if err := run(*path); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(path string) error {
	cfg, err := config.Load(path)
	if err != nil {
		return err
	}
	log, err := logging.New(cfg.Log)
	if err != nil {
		return err
	}
	defer log.Close()

	hub, err := httpapi.NewHub(cfg.Push.PoolSize, cfg.Push.WriteTimeout, log.Logger)
	if err != nil {
		return err
	}
	defer hub.Close()

	reg := lobby.NewRegistry(
		lobby.WithLogger(log.Logger),
		lobby.WithPolicy(lobby.PolicyFrom(cfg.Expiry)),
		lobby.WithSessions(session.NewRegistry()),
		lobby.WithNotifier(hub),
	)
	hub.Attach(reg)

	sweeper := sweep.New(cfg.Expiry.SweepInterval, func() { hub.Prune(reg.ExpireIdle()) }, log.Logger)

	opts := []httpapi.Option{
		httpapi.WithHub(hub),
		httpapi.WithLogger(log.Logger),
		httpapi.WithAllowedOrigins(cfg.Server.AllowedOrigins),
	}
	if cfg.Session.Secret != "" {
		opts = append(opts, httpapi.WithIssuer(session.NewIssuer(cfg.Session.Secret, cfg.Session.Issuer, cfg.Session.TokenTTL)))
	} else {
		log.Warn("session.secret not set, signed session tokens disabled")
	}
	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           httpapi.NewServer(reg, opts...).Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	eg, ctx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		log.Info("server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	eg.Go(func() error {
		sweeper.Start()
		<-ctx.Done()
		sweeper.Stop()
		return nil
	})
	eg.Go(func() error {
		<-ctx.Done()
		log.Info("shutting down")
		sctx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancel()
		return srv.Shutdown(sctx)
	})

	err = eg.Wait()
	stats := reg.Stats()
	log.Info("server stopped", zap.Int("rooms", stats.Rooms), zap.Int("players", stats.Players), zap.Error(err))
	return err
}
