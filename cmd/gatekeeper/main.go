// Command gatekeeper runs the token-gated membership reconciliation engine:
// a periodic loop that enforces balance-based access to a Telegram group and
// a pub/sub fan-out that turns sentiment analysis batches into chat alerts.
package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"github.com/degen8ball/tokengate/internal/app"
	"github.com/degen8ball/tokengate/internal/httpserver"
	"github.com/degen8ball/tokengate/internal/platform/config"
	"github.com/degen8ball/tokengate/internal/platform/logging"
	"github.com/degen8ball/tokengate/internal/redis"
	"github.com/degen8ball/tokengate/internal/telegram"
)

func setupConfig() *config.Config {
	cfg, err := config.Load()
	if err != nil {
		// Use log before slog is initialized
		log.Fatalf("Failed to load config: %v", err)
	}
	return cfg
}

func setupRedis(ctx context.Context, cfg *config.Config) *redis.Connections {
	conns, err := redis.NewConnections(ctx, cfg.RedisURL)
	if err != nil {
		slog.Error("Failed to connect to Redis", "error", err)
		os.Exit(1)
	}
	return conns
}

func runGracefulShutdown(srv *httpserver.Server, reconciler *app.Reconciler, fanout *app.Fanout, conns *redis.Connections, cancel context.CancelFunc) <-chan struct{} {
	done := make(chan struct{})
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		slog.Info("Shutdown signal received, cleaning up...")

		// Order matters: stop producing work, then tear down the
		// subscription, then the HTTP surface, and close the connections
		// last so in-flight tick work can still finish or fail naturally.
		reconciler.Stop()
		fanout.Stop()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("Server shutdown error", "error", err)
		}

		cancel()

		if err := conns.Close(); err != nil {
			slog.Error("Failed to close Redis connections", "error", err)
		}

		close(done)
	}()

	return done
}

func main() {
	clock := clockwork.NewRealClock()
	instanceID := uuid.NewString()

	cfg := setupConfig()
	logging.InitLogger(cfg.LogLevel, cfg.LogFormat)
	slog.Info("Gatekeeper starting", "env", cfg.AppEnv, "instance", instanceID)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	conns := setupRedis(ctx, cfg)

	permissionStore := redis.NewPermissionStore(conns)
	balanceQueue := redis.NewBalanceQueue(conns)
	subscriber := redis.NewBatchSubscriber(conns)
	chat := telegram.NewClient(cfg.TelegramBotToken)

	reconciler := app.NewReconciler(permissionStore, balanceQueue, chat, cfg.GroupChatID, clock)
	go reconciler.Start(ctx)

	fanout := app.NewFanout(subscriber, chat, cfg.AlertChatID)
	if err := fanout.Start(ctx); err != nil {
		slog.Error("Failed to start sentiment fan-out", "error", err)
		os.Exit(1)
	}

	srv := httpserver.NewServer(cfg.Port, instanceID, []httpserver.HealthCheck{
		{Name: "redis", Check: conns.Ping},
	})

	done := runGracefulShutdown(srv, reconciler, fanout, conns, cancel)

	slog.Info("Ops server starting", "port", cfg.Port)
	if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("Server error", "error", err)
		os.Exit(1)
	}

	<-done
}
