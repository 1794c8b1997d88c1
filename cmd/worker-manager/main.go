// cmd/worker-manager/main.go
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
	"go.uber.org/zap"

	"agency-workers/internal/agencyapi"
	"agency-workers/internal/common/accounting"
	"agency-workers/internal/common/auth"
	"agency-workers/internal/common/aws"
	"agency-workers/internal/common/camunda"
	"agency-workers/internal/common/config"
	"agency-workers/internal/common/database"
	commonhttp "agency-workers/internal/common/http"
	"agency-workers/internal/common/logger"
	"agency-workers/internal/common/observability"
	"agency-workers/internal/directory"
	"agency-workers/internal/documents"
	"agency-workers/internal/reconciliation"
)

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName),
				zap.Error(err),
				zap.Int("attempt", i+1),
				zap.Int("maxRetries", maxRetries),
				zap.Duration("nextRetryIn", delay),
			)
			time.Sleep(delay)
			delay *= 2
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		boot := logger.New("info", "console")
		boot.Fatal("config load failed", zap.Error(err))
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.Output)
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting worker manager...",
		zap.String("app", cfg.App.Name),
		zap.String("version", cfg.App.Version),
		zap.String("environment", cfg.App.Environment),
	)

	obs, err := observability.New(cfg.App.Name)
	if err != nil {
		zapLog.Warn("observability disabled", zap.Error(err))
		obs = observability.NewNoop()
	}
	defer obs.Shutdown()

	ctx := context.Background()

	// --- Zeebe ---
	var zeebe *camunda.Client
	err = retryWithBackoff(func() error {
		var err error
		zeebe, err = camunda.NewClientWithConfig(camunda.ConfigFrom(cfg.Camunda))
		return err
	}, 10, 2*time.Second, zapLog, "Zeebe client initialization")
	if err != nil {
		zapLog.Fatal("zeebe client failed after retries", zap.Error(err))
	}
	defer zeebe.Close()
	zapLog.Info("Zeebe client connected successfully")

	// --- PostgreSQL (totals audit) ---
	var pg *database.PostgresClient
	err = retryWithBackoff(func() error {
		var err error
		pg, err = database.NewPostgres(cfg.Database.Postgres)
		if err != nil {
			return err
		}
		return pg.Ping(ctx)
	}, 15, 2*time.Second, zapLog, "PostgreSQL connection")
	if err != nil {
		zapLog.Fatal("postgres failed after retries", zap.Error(err))
	}
	defer pg.Close()
	if err := pg.Migrate(ctx); err != nil {
		zapLog.Fatal("postgres migration failed", zap.Error(err))
	}
	zapLog.Info("PostgreSQL connected successfully")

	// --- Elasticsearch (student directory) ---
	var esClient *database.ElasticsearchClient
	err = retryWithBackoff(func() error {
		var err error
		esClient, err = database.NewElasticsearch(cfg.Database.Elasticsearch)
		if err != nil {
			return err
		}
		return esClient.Ping(ctx)
	}, 15, 2*time.Second, zapLog, "Elasticsearch connection")
	if err != nil {
		zapLog.Fatal("elasticsearch failed after retries", zap.Error(err))
	}
	zapLog.Info("Elasticsearch connected successfully")

	// --- Redis (reference cache, upload lock) ---
	var rdb *database.RedisClient
	err = retryWithBackoff(func() error {
		var err error
		rdb, err = database.NewRedis(cfg.Database.Redis)
		if err != nil {
			return err
		}
		return rdb.Ping(ctx)
	}, 10, 2*time.Second, zapLog, "Redis connection")
	if err != nil {
		zapLog.Fatal("redis failed after retries", zap.Error(err))
	}
	defer rdb.Close()
	zapLog.Info("Redis connected successfully")

	// --- Agency API ---
	var tokens auth.TokenSource = auth.StaticToken(cfg.AgencyAPI.StaticToken)
	if kc := cfg.Auth.Keycloak; kc.URL != "" && kc.ClientID != "" {
		tokens = auth.NewKeycloakClient(kc.URL, kc.Realm, kc.ClientID, kc.ClientSecret)
		zapLog.Info("Using Keycloak client credentials for the agency API")
	}
	api := agencyapi.New(agencyapi.Options{
		BaseURL:       cfg.AgencyAPI.BaseURL,
		Timeout:       config.GetDuration(cfg.AgencyAPI.Timeout),
		PageLimit:     cfg.AgencyAPI.PageLimit,
		Tokens:        tokens,
		Observability: obs,
		Logger:        log.WithFields(map[string]interface{}{"component": "agencyapi"}),
	})

	deps := &dependencies{
		api:        api,
		cache:      agencyapi.NewCache(rdb.Client, time.Duration(cfg.AgencyAPI.CacheTTL)*time.Second, log),
		directory:  directory.New(esClient.Client, cfg.Database.Elasticsearch.StudentIndex, api, log),
		audit:      reconciliation.NewStore(pg.DB, log),
		accounting: accounting.NewClient(cfg.Accounting.URL, cfg.Accounting.CompanyToken, config.GetDuration(cfg.Accounting.Timeout)),
		events:     aws.NopPublisher{},
		locker:     rdb,
		logos:      documents.NewLogoLoader(commonhttp.NewClient(10*time.Second), cfg.Documents.LogoPath, log),
		obs:        obs,
		log:        log,
	}

	awsCfg := cfg.Integrations.AWS
	if awsCfg.SES.Enabled {
		ses, err := aws.NewSESClient(ctx, awsCfg.Region, awsCfg.SES.FromEmail)
		if err != nil {
			zapLog.Fatal("ses client failed", zap.Error(err))
		}
		deps.mailer = ses
	}
	if awsCfg.SNS.Enabled {
		sns, err := aws.NewEventPublisher(ctx, awsCfg.Region, awsCfg.SNS.TopicARN)
		if err != nil {
			zapLog.Fatal("sns publisher failed", zap.Error(err))
		}
		deps.events = sns
	}

	workers := camunda.NewWorkers(zeebe.GetClient(), log)
	registerWorkers(workers, cfg, deps)
	zapLog.Info("Workers registered", zap.Strings("taskTypes", workers.TaskTypes()))

	// --- Health & Metrics Server ---
	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		writeStatus(w, http.StatusOK, map[string]interface{}{"status": "healthy"})
	})
	mux.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
		defer cancel()
		checks := map[string]error{
			"zeebe":    zeebe.HealthCheck(ctx),
			"postgres": pg.Ping(ctx),
			"redis":    rdb.Ping(ctx),
		}
		status := http.StatusOK
		body := map[string]interface{}{"status": "ready", "workers": workers.TaskTypes()}
		for name, err := range checks {
			if err != nil {
				status = http.StatusServiceUnavailable
				body["status"] = "not ready"
				body[name] = err.Error()
			}
		}
		writeStatus(w, status, body)
	})
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{Addr: cfg.App.HTTPAddress, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		zapLog.Info("Health/Metrics server listening", zap.String("address", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLog.Error("Health/Metrics server failed", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	zapLog.Info("Shutdown signal received, stopping workers...")
	workers.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("Error stopping health server", zap.Error(err))
	}

	zapLog.Info("Worker manager stopped")
}

func writeStatus(w http.ResponseWriter, status int, body map[string]interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
