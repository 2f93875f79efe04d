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

	"github.com/esbind-io/esbind/internal/config"
	"github.com/esbind-io/esbind/internal/domain"
	"github.com/esbind-io/esbind/internal/es/elastic"
	kvredis "github.com/esbind-io/esbind/internal/kv/redis"
	logpkg "github.com/esbind-io/esbind/internal/logger"
	"github.com/esbind-io/esbind/internal/metrics"
	"github.com/esbind-io/esbind/internal/registry"
	documentrepo "github.com/esbind-io/esbind/internal/repository/document"
	"github.com/esbind-io/esbind/internal/repository/embcache"
	indexrepo "github.com/esbind-io/esbind/internal/repository/index"
	searchrepo "github.com/esbind-io/esbind/internal/repository/search"
	chiTransport "github.com/esbind-io/esbind/internal/transport/chi"
	openaiEmb "github.com/esbind-io/esbind/internal/transport/openai"
	documentuc "github.com/esbind-io/esbind/internal/usecase/document"
	healthuc "github.com/esbind-io/esbind/internal/usecase/health"
	indexuc "github.com/esbind-io/esbind/internal/usecase/index"
	searchuc "github.com/esbind-io/esbind/internal/usecase/search"
	"github.com/esbind-io/esbind/internal/version"
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

	logger.Info("Starting esbind API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.Strings("es_addrs", cfg.Elasticsearch.Addresses),
	)

	store, err := elastic.NewStore(elastic.Config{
		Addresses:     cfg.Elasticsearch.Addresses,
		Username:      cfg.Elasticsearch.Username,
		Password:      cfg.Elasticsearch.Password,
		APIKey:        cfg.Elasticsearch.APIKey,
		TLSSkipVerify: cfg.Elasticsearch.TLSSkipVerify,
	})
	if err != nil {
		logger.Fatal("Failed to create engine store", zap.Error(err))
	}
	defer store.Close()

	// Wait for the cluster to accept connections
	ctx := context.Background()
	readiness := time.Duration(cfg.Elasticsearch.ReadinessTimeout) * time.Second
	if err := store.WaitForReady(ctx, readiness); err != nil {
		logger.Fatal("Engine not ready", zap.Error(err))
	}
	logger.Info("Connected to Elasticsearch")

	// Register embedding metrics explicitly (no init())
	metrics.RegisterEmbeddingMetrics()

	// Build the embedder chain when a provider is configured.
	// Interface vars stay nil when unconfigured; a typed nil pointer
	// wrapped in an interface would not compare equal to nil downstream.
	var embedder domain.Embedder
	var cachePinger healthuc.CachePinger
	var embChecker healthuc.EmbeddingChecker
	if cfg.Embedding.APIKey != "" {
		base := openaiEmb.NewEmbedder(&openaiEmb.Config{
			APIKey:     cfg.Embedding.APIKey,
			BaseURL:    cfg.Embedding.BaseURL,
			Model:      cfg.Embedding.Model,
			Dimensions: cfg.Embedding.Dimensions,
			Provider:   cfg.Embedding.Provider,
			Logger:     logger,
		})
		embedder = base
		embChecker = base

		if len(cfg.Cache.Addrs) > 0 {
			cache, err := kvredis.NewStore(kvredis.Config{
				Addrs:    cfg.Cache.Addrs,
				Username: cfg.Cache.Username,
				Password: cfg.Cache.Password,
				DB:       cfg.Cache.DB,
			})
			if err != nil {
				logger.Fatal("Failed to create embedding cache", zap.Error(err))
			}
			defer cache.Close()
			cachePinger = cache

			cached := embcache.New(base, cache, metrics.EmbeddingCacheTotal, logger)
			if cfg.Cache.TTLSec > 0 {
				cached = cached.WithTTL(time.Duration(cfg.Cache.TTLSec) * time.Second)
			}
			embedder = cached
		}

		logger.Info("Embedder created",
			zap.String("provider", cfg.Embedding.Provider),
			zap.String("model", cfg.Embedding.Model),
			zap.Int("dimensions", cfg.Embedding.Dimensions),
			zap.Bool("cached", len(cfg.Cache.Addrs) > 0),
		)
	}

	// Mappings registered over HTTP live in the catalog for the
	// lifetime of the process.
	catalog := registry.New()

	idxRepo := indexrepo.New(store).WithSettings(indexrepo.Settings{
		Shards:   cfg.Index.Shards,
		Replicas: cfg.Index.Replicas,
	})
	docRepo := documentrepo.New(store).WithRefresh(cfg.Index.RefreshOnWrite)
	searchRepo := searchrepo.New(store)

	indexSvc := indexuc.New(idxRepo, catalog)
	docSvc := documentuc.New(docRepo, catalog, embedder)
	searchSvc := searchuc.New(searchRepo, catalog, embedder)
	healthSvc := healthuc.New(store, cachePinger, embChecker)

	server := chiTransport.NewServer(indexSvc, docSvc, searchSvc, healthSvc, logger)

	r := chi.NewRouter()
	r.Use(jsonRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(logger))
	r.Use(chiTransport.BearerAuthMiddleware(cfg.Auth.APIKeys))
	r.Use(metrics.Middleware())
	server.Register(r)

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
						"code":    "internal_error",
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

			// Canonical log line — one line per request
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
