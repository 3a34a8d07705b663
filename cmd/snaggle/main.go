// Package main запускает HTTP-сервер сервиса snaggle.
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

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/snaggle-market/snaggle/internal/config"
	"github.com/snaggle-market/snaggle/internal/handler"
	"github.com/snaggle-market/snaggle/internal/money"
	"github.com/snaggle-market/snaggle/internal/notify"
	"github.com/snaggle-market/snaggle/internal/pricing"
	"github.com/snaggle-market/snaggle/internal/repository"
	"github.com/snaggle-market/snaggle/internal/service"
)

func main() {
	cfg, err := config.Parse()
	if err != nil {
		fmt.Fprintf(os.Stderr, "configuration error: %v\n", err)
		os.Exit(1)
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	sugar := logger.Sugar()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	repo, err := newRepository(ctx, cfg, sugar)
	if err != nil {
		sugar.Fatalw("storage initialization error", "error", err.Error())
	}

	notifier, closeNotifier, err := newNotifier(ctx, cfg, logger)
	if err != nil {
		sugar.Fatalw("notifier initialization error", "error", err.Error())
	}
	defer closeNotifier()

	calc := pricing.New(money.FromCents(cfg.CreditValueCents))

	svc := service.NewService(repo, notifier, calc, logger)
	defer svc.Close()

	h := handler.NewHandler(svc, logger)

	server := &http.Server{
		Addr:              cfg.RunAddress,
		Handler:           h.SetupRouter(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)

	// Фоновое закрытие аукционов с истёкшим временем
	g.Go(func() error {
		svc.RunAuctionCloser(ctx, cfg.CloserInterval)
		sugar.Info("auction closer stopped")
		return nil
	})

	g.Go(func() error {
		sugar.Infow("starting snaggle server",
			"addr", cfg.RunAddress,
			"credit_value", calc.CreditValue().String(),
		)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	// Graceful shutdown при отмене контекста (сигнал или ошибка в другой горутине)
	g.Go(func() error {
		<-ctx.Done()
		sugar.Info("shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown error: %w", err)
		}
		sugar.Info("server stopped gracefully")
		return nil
	})

	if err := g.Wait(); err != nil {
		sugar.Fatalw("application terminated with error", "error", err)
	}
}

func newLogger(level string) (*zap.Logger, error) {
	lvl, err := zap.ParseAtomicLevel(level)
	if err != nil {
		return nil, err
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = lvl
	return cfg.Build()
}

// newRepository выбирает Postgres при заданном DATABASE_URI, иначе хранилище в памяти.
// Обе реализации заполняются встроенной витриной.
func newRepository(ctx context.Context, cfg *config.Config, sugar *zap.SugaredLogger) (service.Repository, error) {
	seed, err := repository.DefaultSeed(time.Now())
	if err != nil {
		return nil, err
	}

	if cfg.DatabaseURI == "" {
		sugar.Info("DATABASE_URI is empty, using in-memory store")
		return repository.NewMemoryRepository(seed), nil
	}

	repo, err := repository.NewPostgresRepository(cfg.DatabaseURI)
	if err != nil {
		return nil, err
	}

	seeded, err := repo.SeedIfEmpty(ctx, seed)
	if err != nil {
		repo.Close()
		return nil, err
	}
	if seeded {
		sugar.Info("database seeded with default catalog")
	}
	return repo, nil
}

// newNotifier собирает получателей событий о завершении аукционов из конфигурации.
func newNotifier(ctx context.Context, cfg *config.Config, logger *zap.Logger) (notify.Notifier, func(), error) {
	notifiers := notify.Multi{notify.NewLogNotifier(logger)}
	cleanup := func() {}

	if cfg.WebhookURL != "" {
		notifiers = append(notifiers, notify.NewWebhookClient(cfg.WebhookURL))
	}

	if len(cfg.KafkaBrokers) > 0 {
		client, err := notify.NewKafkaClient(cfg.KafkaBrokers, "snaggle")
		if err != nil {
			return nil, cleanup, fmt.Errorf("create kafka client: %w", err)
		}

		ensureCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()
		if err := notify.EnsureTopic(ensureCtx, client, cfg.KafkaTopic, 3, 1); err != nil {
			client.Close()
			return nil, cleanup, err
		}

		notifiers = append(notifiers, notify.NewKafkaPublisher(client, cfg.KafkaTopic))
		cleanup = client.Close
	}

	return notifiers, cleanup, nil
}
