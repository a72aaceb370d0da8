package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"clickstream/internal/aggregate"
	"clickstream/internal/dashboard"
	"clickstream/internal/platform/config"
	"clickstream/internal/platform/httpserver"
	"clickstream/internal/platform/logger"
	platformredis "clickstream/internal/platform/redis"
)

// main wires the read-side dashboard API over the expiring aggregates.
func main() {
	log := logger.New()
	if err := run(log); err != nil {
		log.Error("dashboard exited", "error", err)
		os.Exit(1)
	}
}

func run(log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dashCfg := config.DashboardFromEnv()
	redisCfg := config.RedisFromEnv()

	rdb, err := platformredis.New(ctx, redisCfg)
	if err != nil {
		return err
	}
	defer rdb.Close()

	store := aggregate.NewRedisStore(rdb.Client)
	service := dashboard.NewService(store, dashCfg.ActiveUsersBuckets, dashCfg.PageViewsBuckets, log)
	handler := dashboard.NewHandler(service, dashCfg.TopPagesLimit, log)

	r := chi.NewRouter()
	handler.Register(r)
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/healthz", func(w http.ResponseWriter, req *http.Request) {
		if err := rdb.Health(req.Context()); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	})

	srv := httpserver.New(dashCfg.Addr, r)

	log.Info("starting dashboard", "addr", dashCfg.Addr)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
