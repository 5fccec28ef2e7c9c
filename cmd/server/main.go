// @title Image Job Service API
// @version 1.0
// @description Asynchronous image generation jobs: submit, poll, history.
// @BasePath /
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

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	_ "image-job-service/docs"
	"image-job-service/internal/config"
	"image-job-service/internal/logger"
	"image-job-service/internal/provider"
	"image-job-service/internal/service"
	"image-job-service/internal/store"
	httptransport "image-job-service/internal/transport/http"
	"image-job-service/internal/worker"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	log := logger.New(cfg.AppEnv, cfg.LogLevel)

	if err := run(ctx, cfg, log); err != nil {
		log.Fatal().Err(err).Msg("server stopped with error")
	}
	log.Info().Msg("server stopped")
}

func run(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	st := store.New(cfg.HistoryLimit)

	queue, closeQueue, err := newQueue(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeQueue()

	gen := newGenerator(cfg, log)

	processor := worker.NewProcessor(st, gen, cfg.ProviderTimeout, log)
	pool := worker.NewPool(queue, processor, cfg.Workers, log, worker.WithClaimTimeout(cfg.WorkerClaimTimeout))
	janitor := worker.NewJanitor(st, cfg.JobTTL, cfg.JanitorInterval, log)

	jobSvc := service.NewJobService(st, queue, log)
	h := httptransport.NewHandler(jobSvc, log, httptransport.Options{
		MaxUploadBytes:  cfg.MaxUploadBytes,
		RateLimitPerMin: cfg.RateLimitPerMin,
	})

	srv := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      httptransport.Routes(h),
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
		IdleTimeout:  cfg.HTTPIdleTimeout,
	}

	log.Info().
		Str("addr", cfg.HTTPAddr).
		Int("workers", cfg.Workers).
		Str("queue", cfg.QueueBackend).
		Str("instance_id", cfg.RedisInstanceID).
		Int("queue_capacity", cfg.QueueCapacity).
		Str("provider", cfg.ResolvedProvider()).
		Int("history_limit", cfg.HistoryLimit).
		Msg("server starting")

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("http shutdown: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		pool.Run(gctx)
		return nil
	})

	g.Go(func() error {
		janitor.Run(gctx)
		return nil
	})

	return g.Wait()
}

func newQueue(ctx context.Context, cfg *config.Config) (service.Queue, func(), error) {
	if cfg.QueueBackend != config.QueueRedis {
		return service.NewMemoryQueue(cfg.QueueCapacity), func() {}, nil
	}

	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, nil, fmt.Errorf("redis: %w", err)
	}
	q := service.NewRedisQueue(rdb,
		service.ScopedKey(cfg.RedisQueueKey, cfg.RedisInstanceID),
		service.ScopedKey(cfg.RedisProcessingKey, cfg.RedisInstanceID),
		cfg.QueueCapacity,
	)
	return q, func() { _ = rdb.Close() }, nil
}

func newGenerator(cfg *config.Config, log zerolog.Logger) provider.Generator {
	if cfg.ResolvedProvider() == config.ProviderGemini {
		return provider.NewGemini(provider.GeminiOptions{
			APIKey:  cfg.GeminiAPIKey,
			BaseURL: cfg.GeminiBaseURL,
			Model:   cfg.GeminiModel,
			Logger:  log,
		})
	}
	log.Warn().Msg("no GEMINI_API_KEY configured, using the synthetic provider")
	return provider.NewSynthetic(cfg.SyntheticDelay)
}
