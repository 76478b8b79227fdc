package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"outlay/internal/backend"
	"outlay/internal/bus"
	"outlay/internal/chart"
	"outlay/internal/cli"
	apphttp "outlay/internal/http"
	"outlay/internal/log"
	"outlay/internal/store"
	"outlay/internal/watch"
)

func main() {
	cli.LoadEnvFile()
	slogger := cli.SetupLogger()
	cfg := cli.LoadAndValidateConfig(slogger)

	logger := log.New(log.DefaultConfig()).WithComponent(log.ComponentApp)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Storage backend
	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid backend configuration", log.FieldError, err)
		os.Exit(1)
	}
	factory := backend.NewFactory(slogger)
	result, err := factory.CreateBackend(ctx, backendCfg)
	if err != nil {
		logger.Error("Failed to initialize storage backend", log.FieldError, err,
			"backend", cfg.StorageBackend)
		os.Exit(1)
	}
	if result.Cleanup != nil {
		defer func() {
			if err := result.Cleanup(); err != nil {
				logger.Error("Storage cleanup error", log.FieldError, err)
			}
		}()
	}

	st := store.New(result.Storage, cfg.StorageKey, logger.WithComponent(log.ComponentStore))
	items := st.Load(ctx)
	logger.Info("Loaded expense collection",
		log.FieldStorageKey, cfg.StorageKey, "count", len(items))

	// Each instance gets an origin id so it can skip its own change
	// announcements.
	origin := uuid.NewString()

	// Change-notification bus (optional)
	var busClient *bus.Client
	if cfg.AMQPURL != "" {
		busClient, err = bus.NewClient(cfg.AMQPURL, cfg.AMQPExchange)
		if err != nil {
			logger.Warn("Failed to connect change-notification bus, falling back to storage polling",
				log.FieldError, err)
			busClient = nil
		} else {
			defer busClient.Close()
			logger.Info("Connected change-notification bus",
				"exchange", cfg.AMQPExchange, log.FieldOrigin, origin)
		}
	}

	if busClient != nil {
		st.OnPersist(func(ctx context.Context, version int64) {
			if err := busClient.PublishLedgerChanged(ctx, cfg.StorageKey, origin, version); err != nil {
				logger.WarnContext(ctx, "Failed to announce ledger change",
					log.FieldError, err, log.FieldVersion, version)
			}
		})
	}

	var renderer *chart.Renderer
	if cfg.ChartEnabled {
		renderer = chart.NewRenderer(cfg.ChartSize)
	}

	srv := apphttp.NewServer(":"+cfg.Port, st, apphttp.Options{
		Renderer: renderer,
		Logger:   logger.WithComponent(log.ComponentHTTP),
	})
	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = 10 * time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16 // 64KB

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("Starting outlay server",
			"port", cfg.Port, "backend", cfg.StorageBackend, "chart_enabled", cfg.ChartEnabled)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", log.FieldError, err)
		}
		return nil
	})

	if busClient != nil {
		g.Go(func() error {
			err := busClient.ConsumeLedgerChanges(gctx, func(msg *bus.LedgerChangedMessage) error {
				if msg.Origin == origin || msg.Key != cfg.StorageKey {
					return nil
				}
				srv.HandleLedgerChange(gctx)
				return nil
			})
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		})
	} else {
		poller := watch.NewPoller(result.Storage, cfg.StorageKey, cfg.PollInterval,
			st.Version,
			func(ctx context.Context, version int64) {
				srv.HandleLedgerChange(ctx)
			},
			logger.WithComponent(log.ComponentWatch))
		g.Go(func() error {
			if err := poller.Run(gctx); !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		logger.Error("Server error", log.FieldError, err)
		os.Exit(1)
	}
	logger.Info("Server stopped gracefully")
}
