package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/ignajaliff/sheen-schedule-clean/internal/calendar"
	"github.com/ignajaliff/sheen-schedule-clean/internal/config"
	"github.com/ignajaliff/sheen-schedule-clean/internal/domain"
	"github.com/ignajaliff/sheen-schedule-clean/internal/events"
	"github.com/ignajaliff/sheen-schedule-clean/internal/metrics"
	"github.com/ignajaliff/sheen-schedule-clean/internal/seed"
	"github.com/ignajaliff/sheen-schedule-clean/internal/service/accounting"
	"github.com/ignajaliff/sheen-schedule-clean/internal/service/appointments"
	"github.com/ignajaliff/sheen-schedule-clean/internal/service/catalog"
	"github.com/ignajaliff/sheen-schedule-clean/internal/service/clients"
	"github.com/ignajaliff/sheen-schedule-clean/internal/store"
	"github.com/ignajaliff/sheen-schedule-clean/internal/store/memory"
	"github.com/ignajaliff/sheen-schedule-clean/internal/store/redislock"
	"github.com/ignajaliff/sheen-schedule-clean/internal/store/sqlstore"
	"github.com/ignajaliff/sheen-schedule-clean/internal/telemetry"
	"github.com/ignajaliff/sheen-schedule-clean/internal/transport/httpapi"
)

const serviceName = "sheen-server"

type stores struct {
	appointments store.AppointmentRepository
	catalog      store.ServiceCatalog
	clients      store.ClientRepository
	health       func(ctx context.Context) error
	close        func() error
}

func main() {
	log := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})).With(
		slog.String("service", serviceName),
	)
	slog.SetDefault(log)

	cfg, err := config.Load()
	if err != nil {
		log.Error("config load failed", slog.Any("err", err))
		os.Exit(1)
	}

	log = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: parseLogLevel(cfg.LogLevel)})).With(
		slog.String("service", serviceName),
	)
	slog.SetDefault(log)

	log.Info(
		"starting",
		slog.String("http_addr", cfg.HTTPAddr),
		slog.String("database_driver", cfg.DatabaseDriver),
		slog.String("slot_guard", cfg.SlotGuard),
		slog.String("log_level", cfg.LogLevel),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := telemetry.Setup(ctx, telemetry.Config{
		Enabled:      cfg.OTelEnabled,
		ServiceName:  serviceName,
		OTLPEndpoint: cfg.OTelEndpoint,
		SampleRatio:  cfg.OTelSampleRatio,
	})
	if err != nil {
		log.Error("telemetry setup failed", slog.Any("err", err))
		os.Exit(1)
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := shutdownTracing(flushCtx); err != nil {
			log.Warn("telemetry shutdown failed", slog.Any("err", err))
		}
	}()

	st, err := openStores(ctx, cfg, log)
	if err != nil {
		log.Error("store setup failed", slog.Any("err", err))
		os.Exit(1)
	}
	defer func() {
		if err := st.close(); err != nil {
			log.Warn("store close failed", slog.Any("err", err))
		}
	}()

	if cfg.SeedPath != "" {
		f, err := seed.Load(cfg.SeedPath)
		if err == nil {
			err = seed.Apply(ctx, f, seed.Targets{
				Catalog:      st.catalog,
				Clients:      st.clients,
				Appointments: st.appointments,
				MaxPerSlot:   cfg.MaxPerSlot,
			}, log)
		}
		if err != nil {
			log.Error("seed failed", slog.Any("err", err), slog.String("seed_path", cfg.SeedPath))
			os.Exit(1)
		}
	}

	metrics.Register()
	bus := events.NewBus(log)
	metrics.Subscribe(bus)

	forwarderDone := make(chan struct{})
	forwarderCtx, stopForwarder := context.WithCancel(context.Background())
	if writer := events.NewKafkaWriter(cfg.KafkaBrokers); writer != nil {
		fwd := events.NewForwarder(writer, events.ForwarderConfig{Brokers: cfg.KafkaBrokers, Topic: cfg.KafkaTopic}, log)
		bus.SubscribeAll(fwd.Handle)
		go func() {
			defer close(forwarderDone)
			fwd.Run(forwarderCtx)
		}()
		log.Info("kafka forwarding enabled", slog.String("topic", cfg.KafkaTopic))
	} else {
		close(forwarderDone)
	}
	defer func() {
		stopForwarder()
		<-forwarderDone
	}()

	opts := []appointments.Option{appointments.WithPublisher(bus), appointments.WithLogger(log)}
	if cfg.SlotGuard == config.GuardRedis {
		lockCfg := redislock.Config{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
			TTL:      cfg.RedisLockTTL,
			Wait:     cfg.RedisLockWait,
		}
		client := redislock.NewClient(lockCfg)
		defer client.Close()
		if err := client.Ping(ctx).Err(); err != nil {
			log.Warn("redis unreachable; bookings will fail until it recovers", slog.Any("err", err), slog.String("redis_addr", cfg.RedisAddr))
		}
		opts = append(opts, appointments.WithSlotGuard(redislock.NewSlotLocker(client, lockCfg)))
	}

	apptSvc := appointments.NewService(st.appointments, st.catalog, cfg.MaxPerSlot, opts...)
	feed := calendar.NewFeed(st.appointments, log, calendar.WithMaxAge(cfg.CalendarFeedTTL))
	feed.Subscribe(bus)

	model, err := calendar.NewModel(cfg.Breakpoints, cfg.StackStyle)
	if err != nil {
		log.Error("calendar setup failed", slog.Any("err", err))
		os.Exit(1)
	}

	api := httpapi.NewServer(httpapi.Deps{
		Appointments: apptSvc,
		Catalog:      catalog.NewService(st.catalog, bus, log),
		Clients:      clients.NewService(st.clients),
		Accounting:   accounting.NewService(st.appointments),
		Feed:         feed,
		Calendar:     model,
		Health:       st.health,
	}, httpapi.Options{
		RequestTimeout: cfg.HTTPRequestTimeout,
		StaticDir:      cfg.StaticDir,
		RateLimitRPS:   cfg.RateLimitRPS,
		RateLimitBurst: cfg.RateLimitBurst,
		Today:          func() domain.Date { return domain.DateOf(time.Now()) },
	}, log)

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           api.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	log.Info("http server started", slog.String("http_addr", cfg.HTTPAddr))

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received")
		shutdown(log, srv, cfg.ShutdownTimeout)
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("http server stopped with error", slog.Any("err", err))
			os.Exit(1)
		}
	}
}

func openStores(ctx context.Context, cfg config.Config, log *slog.Logger) (stores, error) {
	if cfg.DatabaseDriver == config.DriverMemory {
		log.Warn("using in-memory store; data is lost on restart")
		mem := memory.New()
		return stores{
			appointments: mem,
			catalog:      mem,
			clients:      mem,
			close:        func() error { return nil },
		}, nil
	}

	log.Info("connecting to database", databaseLogArgs(cfg.DatabaseURL)...)
	db, err := sqlstore.Open(cfg.DatabaseDriver, cfg.DatabaseURL, sqlstore.PoolConfig{
		MaxOpenConns:    cfg.DBMaxOpenConns,
		MaxIdleConns:    cfg.DBMaxIdleConns,
		ConnMaxLifetime: cfg.DBConnMaxLifetime,
		ConnMaxIdleTime: cfg.DBConnMaxIdleTime,
	})
	if err != nil {
		args := append([]any{slog.Any("err", err)}, databaseLogArgs(cfg.DatabaseURL)...)
		log.Error("database connection failed", args...)
		return stores{}, err
	}

	// Postgres is migrated with goose ahead of deploys; the embedded database
	// creates its tables on start.
	if cfg.DatabaseDriver == config.DriverSQLite {
		if err := sqlstore.CreateSchema(ctx, db); err != nil {
			_ = sqlstore.Close(db)
			return stores{}, err
		}
	}

	return stores{
		appointments: sqlstore.NewAppointmentRepo(db),
		catalog:      sqlstore.NewCatalogRepo(db),
		clients:      sqlstore.NewClientRepo(db),
		health:       func(ctx context.Context) error { return sqlstore.Ping(ctx, db) },
		close:        func() error { return sqlstore.Close(db) },
	}, nil
}

func shutdown(log *slog.Logger, srv *http.Server, timeout time.Duration) {
	log.Info("shutting down http server", slog.Duration("timeout", timeout))

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Warn("http graceful shutdown timed out; forcing close", slog.Any("err", err))
		_ = srv.Close()
		return
	}
	log.Info("http server stopped")
}

func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// databaseLogArgs describes the target database without credentials.
func databaseLogArgs(databaseURL string) []any {
	u, err := url.Parse(databaseURL)
	if err != nil {
		return []any{slog.String("db_url", "invalid")}
	}
	if u.Scheme == "file" || u.Scheme == "" {
		name := u.Opaque
		if name == "" {
			name = u.Path
		}
		return []any{slog.String("db_file", name)}
	}
	name := strings.TrimPrefix(u.Path, "/")
	host := u.Hostname()
	port := u.Port()
	if port == "" {
		port = "default"
	}
	if host == "" {
		host = "unknown"
	}
	if name == "" {
		name = "unknown"
	}
	return []any{
		slog.String("db_host", host),
		slog.String("db_port", port),
		slog.String("db_name", name),
	}
}
