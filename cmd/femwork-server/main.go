package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"femwork/internal/api"
	"femwork/internal/app"
	"femwork/internal/config"
	"femwork/internal/telegram"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/sync/errgroup"
)

const (
	shutdownTimeout = 10 * time.Second
	cleanupInterval = time.Hour
	metricsKeepDays = 90
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "femwork-server: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// 1. Load Configuration
	cfg, err := config.NewFromEnv()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	zc := zap.NewProductionConfig()
	if cfg.Debug {
		zc.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	logger, err := zc.Build()
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 2. Initialize database, model clients and the App
	rt, err := app.FromConfig(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer rt.Close()

	sessions := telegram.NewSessionRepository(rt.DB.SQL)
	mux := http.NewServeMux()

	// 3. Mount the JSON API and the Telegram webhook
	apiServer := api.NewServer(rt.App, cfg.APISecret, logger)
	if cfg.APISecret != "" {
		apiServer.Register(mux)
	} else {
		logger.Warn("FEMWORK_API_SECRET not set, JSON API disabled")
		mux.HandleFunc("GET /health", func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte("OK"))
		})
	}

	var bot *telegram.Bot
	if cfg.TelegramBotToken != "" {
		bot, err = telegram.NewBot(cfg, rt.App, sessions, rt.Metrics, rt.DB.Dir(), logger)
		if err != nil {
			return fmt.Errorf("failed to initialize telegram bot: %w", err)
		}
		bot.Register(mux)
	} else if cfg.APISecret == "" {
		return errors.New("nothing to serve: set FEMWORK_API_SECRET and/or TELEGRAM_BOT_TOKEN")
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// 4. Serve until a signal arrives, then shut down gracefully
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("server listening", zap.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		err := srv.Shutdown(shutdownCtx)
		if bot != nil {
			bot.Wait()
		}
		return err
	})
	g.Go(func() error {
		ticker := time.NewTicker(cleanupInterval)
		defer ticker.Stop()
		for {
			select {
			case <-gctx.Done():
				return nil
			case <-ticker.C:
				cleanup(gctx, rt, sessions, logger)
			}
		}
	})

	if err := g.Wait(); err != nil {
		return err
	}
	logger.Info("server exiting")
	return nil
}

func cleanup(ctx context.Context, rt *app.Runtime, sessions *telegram.SessionRepository, logger *zap.Logger) {
	n, err := sessions.CleanupExpired(ctx)
	if err != nil {
		logger.Warn("session cleanup failed", zap.Error(err))
	} else if n > 0 {
		logger.Debug("expired sessions removed", zap.Int64("count", n))
	}

	n, err = rt.Metrics.Cleanup(ctx, metricsKeepDays)
	if err != nil {
		logger.Warn("metrics cleanup failed", zap.Error(err))
	} else if n > 0 {
		logger.Debug("old metrics removed", zap.Int64("count", n))
	}
}
