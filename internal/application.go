package application

import (
	"context"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"
	"time"

	"github.com/rocketscienceinc/tris-server/internal/config"
	"github.com/rocketscienceinc/tris-server/internal/lobby"
	"github.com/rocketscienceinc/tris-server/internal/match"
	"github.com/rocketscienceinc/tris-server/internal/repository/storage"
	"github.com/rocketscienceinc/tris-server/internal/transport/redis"
	"github.com/rocketscienceinc/tris-server/transport/rest"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 5 * time.Second

// RunApp - runs the game lobby and the status server until SIGINT or SIGTERM.
func RunApp(logger *slog.Logger, conf *config.Config) error {
	log := logger.With("component", "app")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	observer, closeObserver, err := newObserver(ctx, logger, conf)
	if err != nil {
		return err
	}
	defer closeObserver()

	listener, err := lobby.Listen(conf.GetTCPAddr())
	if err != nil {
		return fmt.Errorf("could not start game server: %w", err)
	}

	gameLobby := lobby.New(logger, listener, observer)
	httpServer := rest.New(conf.HTTPPort, rest.NewHandlers(logger, gameLobby))

	group, ctx := errgroup.WithContext(ctx)

	group.Go(func() error {
		log.Info("Starting game server", "port", conf.TCPPort)
		if err := gameLobby.AcceptLoop(ctx); err != nil {
			return fmt.Errorf("game server error: %w", err)
		}

		return nil
	})

	group.Go(func() error {
		log.Info("Starting HTTP server", "port", conf.HTTPPort)
		if err := httpServer.Start(); err != nil {
			return fmt.Errorf("HTTP server error: %w", err)
		}

		return nil
	})

	group.Go(func() error {
		<-ctx.Done()
		log.Info("Shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()

		if err := gameLobby.Stop(); err != nil {
			log.Error("could not stop game server", "error", err)
		}

		return httpServer.Shutdown(shutdownCtx)
	})

	err = group.Wait()

	log.Info("Waiting for running matches", "active", gameLobby.ActiveMatches())
	gameLobby.Wait()

	return err
}

// newObserver - the Redis publisher when a Redis host is configured, otherwise nil.
func newObserver(ctx context.Context, logger *slog.Logger, conf *config.Config) (match.Observer, func(), error) {
	log := logger.With("component", "app")

	addr := conf.Redis.GetRedisAddr()
	if addr == "" {
		log.Info("Redis host not set, match events are not published")
		return nil, func() {}, nil
	}

	client, err := storage.New(ctx, addr)
	if err != nil {
		return nil, nil, fmt.Errorf("could not connect to redis: %w", err)
	}

	closeClient := func() {
		if err := client.Close(); err != nil {
			log.Error("could not close redis client", "error", err)
		}
	}

	return redis.New(logger, client, conf.Redis.Channel), closeClient, nil
}
