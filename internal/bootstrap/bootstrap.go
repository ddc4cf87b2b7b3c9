// Package bootstrap holds the startup sequence shared by the api, the cron
// worker and the outbox publisher: environment, config, logger, database,
// optional dev migrations and a metrics registry.
package bootstrap

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/multierr"

	"github.com/bikurim/procurement-backend/pkg/config"
	"github.com/bikurim/procurement-backend/pkg/db"
	"github.com/bikurim/procurement-backend/pkg/logger"
	"github.com/bikurim/procurement-backend/pkg/migrate"
	"github.com/bikurim/procurement-backend/pkg/redis"
)

type closer struct {
	name string
	fn   func() error
}

// Runtime is what every binary has once startup succeeded.
type Runtime struct {
	Service  string
	Config   *config.Config
	Logger   *logger.Logger
	DB       *db.Client
	Registry *prometheus.Registry

	closers []closer
}

// Start loads .env and the config, then connects the database. Whatever was
// opened before a failure is closed again.
func Start(ctx context.Context, service string) (*Runtime, error) {
	boot := logger.Bootstrap(service)
	if err := godotenv.Load(); err != nil {
		boot.Warn(ctx, ".env not loaded, using process environment")
	}

	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	cfg.Service.Kind = service

	rt := &Runtime{
		Service: service,
		Config:  cfg,
		Logger: logger.New(logger.Options{
			ServiceName: service,
			Level:       logger.ParseLevel(cfg.App.LogLevel),
			Format:      cfg.App.LogFormat,
			WarnStack:   cfg.App.LogWarnStack,
		}),
		Registry: prometheus.NewRegistry(),
	}
	rt.Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	dbClient, err := db.New(ctx, cfg.DB, rt.Logger)
	if err != nil {
		return nil, err
	}
	rt.DB = dbClient
	rt.OnClose("database", dbClient.Close)

	if err := migrate.MaybeRunDev(ctx, cfg, rt.Logger, dbClient); err != nil {
		_ = rt.Close()
		return nil, err
	}
	return rt, nil
}

// Redis connects when redis is configured. Without configuration it returns
// nil, or an error when required is set.
func (r *Runtime) Redis(ctx context.Context, required bool) (*redis.Client, error) {
	if !r.Config.Redis.Enabled() {
		if required {
			return nil, errors.New("redis is required: set BIKURIM_REDIS_URL or BIKURIM_REDIS_ADDR")
		}
		r.Logger.Warn(ctx, "redis not configured")
		return nil, nil
	}
	client, err := redis.New(ctx, r.Config.Redis, r.Logger)
	if err != nil {
		return nil, err
	}
	r.OnClose("redis", client.Close)
	return client, nil
}

// OnClose registers fn to run on Close. Closers run in reverse order.
func (r *Runtime) OnClose(name string, fn func() error) {
	r.closers = append(r.closers, closer{name: name, fn: fn})
}

func (r *Runtime) Close() error {
	var errs error
	for i := len(r.closers) - 1; i >= 0; i-- {
		c := r.closers[i]
		if err := c.fn(); err != nil {
			r.Logger.Error(r.Logger.WithField(context.Background(), "resource", c.name), "close failed", err)
			errs = multierr.Append(errs, err)
		}
	}
	r.closers = nil
	return errs
}

// SignalContext is cancelled on SIGINT or SIGTERM and carries the env and
// service as log fields.
func (r *Runtime) SignalContext() (context.Context, context.CancelFunc) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	return r.Logger.WithFields(ctx, map[string]any{
		"env":          r.Config.App.Env,
		"service_kind": r.Service,
	}), stop
}

// ServeMetrics exposes the registry on BIKURIM_METRICS_ADDR until ctx ends.
// It is a no-op when the address is empty.
func (r *Runtime) ServeMetrics(ctx context.Context) {
	addr := r.Config.Service.MetricsAddr
	if addr == "" {
		return
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(r.Registry, promhttp.HandlerOpts{Registry: r.Registry}))
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()
	go func() {
		r.Logger.Info(r.Logger.WithField(ctx, "addr", addr), "metrics.listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			r.Logger.Error(ctx, "metrics server stopped", err)
		}
	}()
}

// Fail logs err, closes what was opened and exits with status 1.
func (r *Runtime) Fail(ctx context.Context, msg string, err error) {
	r.Logger.Error(ctx, msg, err)
	_ = r.Close()
	os.Exit(1)
}

// Exit reports a failure that happened before a Runtime existed.
func Exit(service, msg string, err error) {
	logger.Bootstrap(service).Error(context.Background(), msg, err)
	os.Exit(1)
}
