package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/Shivanand-hulikatti/rent-reservations/internal/config"
	"github.com/Shivanand-hulikatti/rent-reservations/internal/database"
	"github.com/Shivanand-hulikatti/rent-reservations/internal/handler"
	"github.com/Shivanand-hulikatti/rent-reservations/internal/logger"
	"github.com/Shivanand-hulikatti/rent-reservations/internal/model"
	"github.com/Shivanand-hulikatti/rent-reservations/internal/observability"
	"github.com/Shivanand-hulikatti/rent-reservations/internal/repository"
	"github.com/Shivanand-hulikatti/rent-reservations/internal/repository/memory"
	"github.com/Shivanand-hulikatti/rent-reservations/internal/service"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

func newServeCmd() *cobra.Command {
	var runMigrations, demo bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the reservation HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return serve(ctx, cfg, runMigrations, demo)
		},
	}
	cmd.Flags().BoolVar(&runMigrations, "migrate", false, "apply database migrations before serving")
	cmd.Flags().BoolVar(&demo, "demo", false, "seed an owner, a tenant and a property (STORE=memory only)")
	return cmd
}

// backend is the storage the engine runs on.
type backend struct {
	store      repository.ReservationStore
	properties service.PropertyDirectory
	users      service.UserDirectory
	ping       func(context.Context) error
	count      func() int
	close      func()
}

func serve(ctx context.Context, cfg *config.Config, runMigrations, demo bool) error {
	log := logger.New(cfg.LogLevel)

	// ── 1. Observability ─────────────────────────────────────────────────
	shutdownTracer, err := observability.InitTracer(ctx, cfg.ServiceName, cfg.OTELEndpoint)
	if err != nil {
		return fmt.Errorf("init tracing: %w", err)
	}
	defer func() {
		if err := shutdownTracer(context.Background()); err != nil {
			log.Warn("tracer shutdown failed", "error", err)
		}
	}()

	metricsHandler, shutdownMetrics, err := observability.InitMetrics()
	if err != nil {
		return fmt.Errorf("init metrics: %w", err)
	}
	defer func() {
		if err := shutdownMetrics(context.Background()); err != nil {
			log.Warn("metrics shutdown failed", "error", err)
		}
	}()

	// ── 2. Storage ────────────────────────────────────────────────────────
	b, err := openBackend(ctx, cfg, log, runMigrations, demo)
	if err != nil {
		return err
	}
	defer b.close()

	if b.count != nil {
		_, err = otel.Meter(cfg.ServiceName).Int64ObservableGauge("reservations.stored",
			metric.WithDescription("Reservations held by the in-memory store"),
			metric.WithInt64Callback(func(_ context.Context, obs metric.Int64Observer) error {
				obs.Observe(int64(b.count()))
				return nil
			}),
		)
		if err != nil {
			log.Warn("failed to register store gauge", "error", err)
		}
	}

	// ── 3. Wire up layers ────────────────────────────────────────────────
	svc := service.NewBookingService(b.store, b.properties, b.users, service.Options{
		IgnoreClosedStatuses: cfg.OverlapIgnoreClosed,
		Logger:               log,
	})
	router := handler.NewRouter(handler.NewReservationHandler(svc, log), handler.RouterConfig{
		Logger:         log,
		Metrics:        metricsHandler,
		Ping:           b.ping,
		RateLimitRPS:   cfg.RateLimitRPS,
		RateLimitBurst: cfg.RateLimitBurst,
	})

	// ── 4. Start server with graceful shutdown ────────────────────────────
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("server listening", "addr", srv.Addr, "store", cfg.Store)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	}

	log.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	log.Info("server stopped")
	return nil
}

func openBackend(ctx context.Context, cfg *config.Config, log *slog.Logger, runMigrations, demo bool) (*backend, error) {
	if cfg.Store == config.StoreMemory {
		store := memory.NewReservationStore()
		dir := memory.NewDirectory()
		if demo {
			seedDemo(dir, log)
		}
		return &backend{
			store:      store,
			properties: dir,
			users:      dir,
			count:      store.Len,
			close:      func() {},
		}, nil
	}

	if demo {
		return nil, errors.New("--demo requires STORE=memory")
	}
	if runMigrations {
		log.Info("running database migrations")
		if err := database.Migrate(cfg.Database); err != nil {
			return nil, err
		}
	}

	pool, err := database.NewPool(ctx, cfg.Database, log)
	if err != nil {
		return nil, fmt.Errorf("database: %w", err)
	}
	log.Info("connected to PostgreSQL", "host", cfg.Database.Host, "db", cfg.Database.DBName)

	return &backend{
		store:      repository.NewReservationRepository(pool),
		properties: repository.NewPropertyRepository(pool),
		users:      repository.NewUserRepository(pool),
		ping:       pool.Ping,
		close:      pool.Close,
	}, nil
}

func seedDemo(dir *memory.Directory, log *slog.Logger) {
	owner := dir.AddUser(model.User{FullName: "Demo Owner"})
	tenant := dir.AddUser(model.User{FullName: "Demo Tenant"})
	property := dir.AddProperty(model.Property{OwnerID: owner.ID, Address: "1 Demo Street", City: "Demo City"})
	log.Info("seeded demo directory",
		"owner_id", owner.ID,
		"tenant_id", tenant.ID,
		"property_id", property.ID,
	)
}
