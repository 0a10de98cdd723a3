package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/kailas-cloud/docgate/internal/config"
	"github.com/kailas-cloud/docgate/internal/db"
	dbRedis "github.com/kailas-cloud/docgate/internal/db/redis"
	logpkg "github.com/kailas-cloud/docgate/internal/logger"
	"github.com/kailas-cloud/docgate/internal/metrics"
	documentrepo "github.com/kailas-cloud/docgate/internal/repository/document"
	"github.com/kailas-cloud/docgate/internal/repository/rescache"
	chiTransport "github.com/kailas-cloud/docgate/internal/transport/chi"
	documentuc "github.com/kailas-cloud/docgate/internal/usecase/document"
	healthuc "github.com/kailas-cloud/docgate/internal/usecase/health"
	searchuc "github.com/kailas-cloud/docgate/internal/usecase/search"
	"github.com/kailas-cloud/docgate/internal/version"
)

func main() {
	// Load configuration based on ENV
	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting docgate API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("branch", version.Branch),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.Strings("index_addrs", cfg.Index.Addrs),
		zap.Strings("cache_addrs", cfg.Cache.Addrs),
	)

	ctx := context.Background()

	// Full-text index store
	indexStore := mustStore(ctx, logger, "index", dbRedis.Config{
		Addrs:    cfg.Index.Addrs,
		Username: cfg.Index.Username,
		Password: cfg.Index.Password,
		DB:       cfg.Index.DB,
	}, cfg.Index.ReadinessAttempts, time.Duration(cfg.Index.ReadinessDelaySec)*time.Second)
	defer indexStore.Close()

	// Result cache store (may point to the same instance, different DB)
	cacheStore := mustStore(ctx, logger, "cache", dbRedis.Config{
		Addrs:    cfg.Cache.Addrs,
		Username: cfg.Cache.Username,
		Password: cfg.Cache.Password,
		DB:       cfg.Cache.DB,
	}, cfg.Cache.ReadinessAttempts, time.Duration(cfg.Cache.ReadinessDelaySec)*time.Second)
	defer cacheStore.Close()

	// Register cache metrics explicitly (no init())
	metrics.RegisterCacheMetrics()

	// Repositories
	docRepo := documentrepo.New(indexStore).WithFacetLimit(cfg.Search.FacetLimit)
	if err := docRepo.EnsureIndex(ctx); err != nil {
		logger.Fatal("Failed to create documents index", zap.Error(err))
	}

	resultCache := rescache.New(
		cacheStore,
		time.Duration(cfg.Cache.TTLSec)*time.Second,
		metrics.CacheLookupsTotal,
		logger,
	).WithInvalidationCounter(metrics.CacheInvalidationsTotal)

	// Use case services
	docSvc := documentuc.New(docRepo, resultCache)
	searchSvc := searchuc.New(docRepo, resultCache).
		WithPagination(cfg.Search.DefaultPageSize, cfg.Search.MaxPageSize)
	healthSvc := healthuc.New(indexStore, resultCache)

	// HTTP server
	server := chiTransport.NewServer(docSvc, searchSvc, healthSvc, logger)
	searchLimiter := chiTransport.NewRateLimiter(cfg.RateLimit.SearchPerMinute, time.Minute)
	defer searchLimiter.Stop()

	r := chi.NewRouter()
	r.Use(jsonRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(logger))
	r.Use(chiTransport.BearerAuthMiddleware(cfg.Auth.APIKeys))
	r.Use(metrics.Middleware())
	server.Register(r, searchLimiter.Middleware())

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("Received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
}

// mustStore connects to a Redis store and blocks until it answers, retrying
// up to the configured attempt count; exhaustion is fatal to process start.
func mustStore(
	ctx context.Context, logger *zap.Logger, name string,
	cfg dbRedis.Config, attempts int, delay time.Duration,
) db.Store {
	store, err := dbRedis.NewStore(cfg)
	if err != nil {
		logger.Fatal("Failed to create store", zap.String("store", name), zap.Error(err))
	}

	if err := store.WaitForReady(ctx, attempts, delay); err != nil {
		logger.Fatal("Store not ready", zap.String("store", name), zap.Error(err))
	}

	logger.Info("Connected to store", zap.String("store", name))
	return store
}

// jsonRecoverer is a recovery middleware that returns JSON instead of a plain text stacktrace.
func jsonRecoverer(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rvr := recover(); rvr != nil {
					logger.Error("panic recovered",
						zap.Any("panic", rvr),
						zap.Stack("stacktrace"),
					)
					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					_ = json.NewEncoder(w).Encode(map[string]string{
						"message": "internal error",
					})
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// wideEventMiddleware emits a canonical log line per request and propagates X-Request-ID.
func wideEventMiddleware(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			// chi.middleware.RequestID already placed request_id in context
			requestID := chiMiddleware.GetReqID(r.Context())

			// Set X-Request-ID in response header
			if requestID != "" {
				w.Header().Set("X-Request-ID", requestID)
			}

			// Per-request logger with request_id
			reqLogger := logger.With(zap.String("request_id", requestID))
			ctx := logpkg.ContextWithLogger(r.Context(), reqLogger)

			ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(ctx))

			// Canonical log line, one per request
			reqLogger.Info("http_request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("latency", time.Since(start)),
				zap.String("ip", r.RemoteAddr),
				zap.Int64("content_length", r.ContentLength),
				zap.String("user_agent", r.UserAgent()),
				zap.Int("response_bytes", ww.BytesWritten()),
			)
		})
	}
}
