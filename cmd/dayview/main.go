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

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"salondesk/internal/availability"
	"salondesk/internal/config"
	"salondesk/internal/dayview"
	"salondesk/internal/events"
	"salondesk/internal/export"
	"salondesk/internal/grid"
	"salondesk/internal/metrics"
	"salondesk/internal/rulesapi"
	"salondesk/internal/schedule"
	"salondesk/internal/store"
)

func main() {
	// Initialize logger
	output := zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
	logger := zerolog.New(output).With().Timestamp().Logger()

	cfg, err := config.Load(os.Getenv("SALONDESK_CONFIG_PATH"))
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load config")
	}

	bus := events.NewBus()

	db, err := store.New(cfg.Database.Path, bus)
	if err != nil {
		logger.Fatal().Err(err).Msg("open db error")
	}
	defer db.Close()

	var rdb *redis.Client
	if cfg.Redis.Address != "" {
		rdb = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Address,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
	}

	var rules schedule.Rules = schedule.NewStandardRules()
	if cfg.RulesAPI.Enabled && cfg.RulesAPI.BaseURL != "" {
		client := rulesapi.NewClient(cfg.RulesAPI.BaseURL, cfg.RulesAPI.APIKey)
		if rdb != nil && cfg.RulesAPI.CacheTTLSeconds > 0 {
			client.UseRedisCache(rdb, time.Duration(cfg.RulesAPI.CacheTTLSeconds)*time.Second)
		}
		rules = rulesapi.NewRemoteRules(client, db, &logger)
	}

	cache := availability.NewCache(rules, grid.Slots())
	service := dayview.NewService(db, db, rules, cache, db, db, bus, &logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.Backup.Enabled {
		backup := store.NewBackup(cfg.Database.Path, store.BackupOptions{
			Dir:           cfg.Backup.Dir,
			Interval:      time.Duration(cfg.Backup.IntervalHours) * time.Hour,
			RetentionDays: cfg.Backup.RetentionDays,
		}, &logger)
		go backup.Start(ctx)
	}

	if cfg.Monitoring.HealthCheckPort == 0 {
		cfg.Monitoring.HealthCheckPort = 8090
	}
	go startAPIServer(ctx, cfg.Monitoring.HealthCheckPort, service, db, rdb, &logger)

	if cfg.Monitoring.PrometheusEnabled {
		if cfg.Monitoring.PrometheusPort == 0 {
			cfg.Monitoring.PrometheusPort = 9090
		}
		metrics.Register()
		go startMetricsServer(ctx, cfg.Monitoring.PrometheusPort, &logger)
	}

	logger.Info().Msg("day-view service started")
	<-ctx.Done()
	logger.Info().Msg("shutting down")
}

// startAPIServer serves health checks plus a thin read-only view of the
// scheduling engine for the UI layer.
func startAPIServer(ctx context.Context, port int, service *dayview.Service, db *store.Store, rdb *redis.Client, logger *zerolog.Logger) {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	mux.HandleFunc("/readyz", func(w http.ResponseWriter, _ *http.Request) {
		ctxPing, cancel := context.WithTimeout(ctx, time.Second)
		defer cancel()
		if err := db.PingContext(ctxPing); err != nil {
			http.Error(w, "db not ready", http.StatusServiceUnavailable)
			return
		}
		if rdb != nil {
			if err := rdb.Ping(ctxPing).Err(); err != nil {
				http.Error(w, "redis not ready", http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})

	mux.HandleFunc("/api/v1/dayview", func(w http.ResponseWriter, r *http.Request) {
		date, err := requestDate(r)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		opts := dayview.Options{
			Search:  r.URL.Query().Get("search"),
			Compact: r.URL.Query().Get("compact") == "true",
		}
		snap, err := service.ComputeSnapshot(r.Context(), date, opts)
		if err != nil {
			logger.Error().Err(err).Msg("snapshot failed")
			http.Error(w, "snapshot failed", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(snap.Render())
	})

	mux.HandleFunc("/api/v1/dayview/export", func(w http.ResponseWriter, r *http.Request) {
		date, err := requestDate(r)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		snap, err := service.ComputeSnapshot(r.Context(), date, dayview.Options{})
		if err != nil {
			http.Error(w, "snapshot failed", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		w.Header().Set("Content-Disposition",
			fmt.Sprintf("attachment; filename=daysheet-%s.xlsx", date.Format("2006-01-02")))
		if err := export.DaySheet(snap, w); err != nil {
			logger.Error().Err(err).Msg("day sheet export failed")
		}
	})

	srv := &http.Server{Addr: fmt.Sprintf(":%d", port), Handler: mux}
	go func() {
		<-ctx.Done()
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctxShutdown)
	}()
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error().Err(err).Msg("api server error")
	}
}

func startMetricsServer(ctx context.Context, port int, logger *zerolog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{Addr: fmt.Sprintf(":%d", port), Handler: mux}
	go func() {
		<-ctx.Done()
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctxShutdown)
	}()
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error().Err(err).Msg("metrics server error")
	}
}

func requestDate(r *http.Request) (time.Time, error) {
	text := r.URL.Query().Get("date")
	if text == "" {
		now := time.Now()
		return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC), nil
	}
	date, err := time.Parse("2006-01-02", text)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, want YYYY-MM-DD", text)
	}
	return date, nil
}
