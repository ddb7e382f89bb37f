package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/Sternrassler/quote-fetcher/internal/config"
	"github.com/Sternrassler/quote-fetcher/pkg/archive"
	"github.com/Sternrassler/quote-fetcher/pkg/client"
	"github.com/Sternrassler/quote-fetcher/pkg/fetcher"
	"github.com/Sternrassler/quote-fetcher/pkg/logging"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const (
	maxRequestBody     = 1 << 20
	defaultRecentLimit = 10
)

// batchStore is the archive surface the handlers need.
type batchStore interface {
	Save(ctx context.Context, rec archive.Record) error
	Recent(ctx context.Context, limit int) ([]archive.Record, error)
	Ping(ctx context.Context) error
}

type quotesRequest struct {
	URLs []string `json:"urls"`
}

func main() {
	configPath := flag.String("config", "", "path to JSON config (default: ./config.json if present)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load config")
	}

	logging.Setup(logging.Config{
		Level:  logging.LogLevel(cfg.Log.Level),
		Pretty: cfg.Log.Pretty,
		Output: os.Stderr,
	})
	logger := logging.NewLogger("quote-proxy")

	httpClient, err := client.New(client.Config{
		UserAgent: cfg.Fetch.UserAgent,
		Timeout:   cfg.HTTPTimeout(),
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to create HTTP client")
	}
	quoteFetcher := fetcher.New(httpClient, logging.NewSink(logging.NewLogger("quote-fetcher")))

	var store batchStore
	if cfg.Redis.ArchiveEnabled {
		redisClient := redis.NewClient(cfg.RedisOptions())
		defer redisClient.Close()

		if err := redisClient.Ping(context.Background()).Err(); err != nil {
			logger.Fatal().Err(err).Str("addr", cfg.Redis.Addr).Msg("Failed to connect to Redis")
		}
		logger.Info().Str("addr", cfg.Redis.Addr).Msg("Connected to Redis")
		store = archive.New(redisClient, cfg.Redis.ArchiveMaxBatches)
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           newMux(quoteFetcher, store, logger),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Info().
			Str("addr", srv.Addr).
			Str("user_agent", cfg.Fetch.UserAgent).
			Bool("archive", store != nil).
			Msg("Starting quote proxy server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("Server failed")
		}
	}()

	<-ctx.Done()
	logger.Info().Msg("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("Graceful shutdown failed")
	}
}

func newMux(f *fetcher.Fetcher, store batchStore, logger zerolog.Logger) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", healthHandler)
	mux.HandleFunc("GET /ready", readyHandler(store))
	mux.Handle("GET /metrics", promhttp.Handler())
	mux.HandleFunc("POST /quotes", quotesHandler(f, store, logger))
	mux.HandleFunc("GET /quotes/recent", recentHandler(store, logger))
	return mux
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	fmt.Fprintf(w, "OK")
}

func readyHandler(store batchStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if store != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			if err := store.Ping(ctx); err != nil {
				http.Error(w, fmt.Sprintf("redis unavailable: %v", err), http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, "OK")
	}
}

func quotesHandler(f *fetcher.Fetcher, store batchStore, logger zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req quotesRequest
		dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBody))
		if err := dec.Decode(&req); err != nil {
			http.Error(w, fmt.Sprintf("invalid request body: %v", err), http.StatusBadRequest)
			return
		}
		if req.URLs == nil {
			req.URLs = []string{}
		}

		batch := f.FetchAll(r.Context(), req.URLs)

		if store != nil {
			rec := archive.NewRecord(req.URLs, batch)
			if err := store.Save(r.Context(), rec); err != nil {
				logger.Warn().Err(err).Str("batch_id", rec.ID).Msg("Failed to archive batch")
			}
		}

		writeJSON(w, http.StatusOK, batch, logger)
	}
}

func recentHandler(store batchStore, logger zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if store == nil {
			http.Error(w, "archive disabled", http.StatusNotFound)
			return
		}

		limit := defaultRecentLimit
		if v := r.URL.Query().Get("limit"); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil || n <= 0 {
				http.Error(w, "limit must be a positive integer", http.StatusBadRequest)
				return
			}
			limit = n
		}

		records, err := store.Recent(r.Context(), limit)
		if err != nil {
			http.Error(w, fmt.Sprintf("archive read failed: %v", err), http.StatusBadGateway)
			return
		}
		writeJSON(w, http.StatusOK, records, logger)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any, logger zerolog.Logger) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error().Err(err).Msg("Failed to write response")
	}
}
