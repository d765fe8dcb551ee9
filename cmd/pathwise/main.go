package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/kailas-cloud/pathwise/internal/config"
	dbRedis "github.com/kailas-cloud/pathwise/internal/db/redis"
	domrl "github.com/kailas-cloud/pathwise/internal/domain/ratelimit"
	logpkg "github.com/kailas-cloud/pathwise/internal/logger"
	"github.com/kailas-cloud/pathwise/internal/metrics"
	budgetrepo "github.com/kailas-cloud/pathwise/internal/repository/budget"
	"github.com/kailas-cloud/pathwise/internal/repository/ratewindow"
	chiTransport "github.com/kailas-cloud/pathwise/internal/transport/chi"
	openaiCompl "github.com/kailas-cloud/pathwise/internal/transport/openai"
	completionuc "github.com/kailas-cloud/pathwise/internal/usecase/completion"
	healthuc "github.com/kailas-cloud/pathwise/internal/usecase/health"
	ratelimituc "github.com/kailas-cloud/pathwise/internal/usecase/ratelimit"
	searchuc "github.com/kailas-cloud/pathwise/internal/usecase/search"
	usageuc "github.com/kailas-cloud/pathwise/internal/usecase/usage"
	"github.com/kailas-cloud/pathwise/internal/version"
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

	logger.Info("Starting pathwise API server",
		zap.String("build", version.String()),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.String("db_driver", cfg.Database.Driver),
		zap.Strings("db_addrs", cfg.Database.Addrs),
	)

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	// Shared store is optional: without it windows and budgets stay in process.
	var store *dbRedis.Store
	if cfg.Database.Driver == config.DriverRedis {
		store, err = dbRedis.NewStore(dbRedis.Config{
			Addrs:          cfg.Database.Addrs,
			Username:       cfg.Database.Username,
			Password:       cfg.Database.Password,
			DB:             cfg.Database.DB,
			CommandTimeout: cfg.Database.CommandTimeout(),
		})
		if err != nil {
			logger.Fatal("Failed to create database store", zap.Error(err))
		}
		defer store.Close()

		if err := store.WaitForReady(ctx, time.Duration(cfg.Database.ReadinessTimeout)*time.Second); err != nil {
			logger.Fatal("Database not ready", zap.Error(err))
		}
		logger.Info("Connected to database")
	}

	// Register completion metrics explicitly (no init())
	metrics.RegisterCompletionMetrics()

	// Rate limiter
	policy := domrl.Policy{Limit: cfg.RateLimit.Limit, Window: cfg.RateLimit.Window()}
	var windows ratelimituc.WindowStore
	if store != nil {
		windows = ratewindow.NewRedisStore(store)
	} else {
		mem := ratewindow.NewMemoryStore()
		go sweepWindows(ctx, mem, policy, time.Duration(cfg.RateLimit.SweepSec)*time.Second, logger)
		windows = mem
	}
	limiter, err := ratelimituc.New(windows, policy, logger)
	if err != nil {
		logger.Fatal("Invalid rate limit policy", zap.Error(err))
	}

	// Single BudgetTracker shared by the completer and the usage service.
	compCfg := cfg.Completion
	var budget *completionuc.BudgetTracker
	if compCfg.Budget.DailyTokenLimit > 0 || compCfg.Budget.MonthlyTokenLimit > 0 {
		action := completionuc.BudgetActionWarn
		if compCfg.Budget.Action == "reject" {
			action = completionuc.BudgetActionReject
		}
		budget = completionuc.NewBudgetTracker(
			compCfg.Provider, compCfg.Budget.DailyTokenLimit, compCfg.Budget.MonthlyTokenLimit, action, logger,
		)
		if store != nil {
			// Connect persistence store, loads current counters from DB.
			budget.WithStore(ctx, budgetrepo.New(store, budgetrepo.DefaultDailyTTL, budgetrepo.DefaultMonthlyTTL))
		}
	}

	// Pass nil interface (not typed nil pointer!) if budget is not configured.
	// Go gotcha: (*BudgetTracker)(nil) wrapped in BudgetChecker != nil.
	var budgetChecker completionuc.BudgetChecker
	var budgetReader usageuc.BudgetReader
	if budget != nil {
		budgetChecker = budget
		budgetReader = budget
	}

	// Completer chain: OpenAI -> Instrumented (budget + logs)
	base := openaiCompl.NewCompleter(&openaiCompl.Config{
		APIKey:        compCfg.APIKey,
		BaseURL:       compCfg.BaseURL,
		StandardModel: compCfg.StandardModel,
		LightModel:    compCfg.LightModel,
		Timeout:       compCfg.Timeout(),
		Provider:      compCfg.Provider,
		Logger:        logger,
	})
	if compCfg.APIKey == "" {
		logger.Warn("Completion api_key is not set, search requests will fail")
	}
	completer := completionuc.NewInstrumentedCompleter(base, compCfg.Provider, budgetChecker, logger)

	// Use case services
	searchSvc := searchuc.New(limiter, completer, logger)
	usageSvc := usageuc.New(budgetReader)

	var pinger healthuc.DBPinger
	if store != nil {
		pinger = store
	}
	healthSvc := healthuc.New(pinger, base)

	// Create chi server
	server := chiTransport.NewServer(searchSvc, usageSvc, healthSvc, logger)

	r := chi.NewRouter()
	r.Use(jsonRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(wideEventMiddleware(logger))
	r.Use(chiTransport.BearerAuthMiddleware(cfg.Auth.APIKeys))
	r.Use(metrics.Middleware(chiTransport.HeaderCompletionTokens))
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
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("Received shutdown signal")
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
}

// sweepWindows evicts expired in-memory rate windows until ctx is done.
func sweepWindows(
	ctx context.Context, mem *ratewindow.MemoryStore, policy domrl.Policy,
	every time.Duration, logger *zap.Logger,
) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			if n := mem.Prune(policy, now); n > 0 {
				logger.Debug("Pruned rate windows", zap.Int("evicted", n), zap.Int("remaining", mem.Len()))
			}
		}
	}
}

// jsonRecoverer is a recovery middleware that returns JSON instead of a plain text stacktrace.
func jsonRecoverer(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rvr := recover(); rvr != nil {
					if rvr == http.ErrAbortHandler {
						panic(rvr)
					}
					logger.Error("panic recovered",
						zap.Any("panic", rvr),
						zap.Stack("stacktrace"),
					)
					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					_ = json.NewEncoder(w).Encode(map[string]string{
						"error": "internal error",
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
				zap.String("completion_tokens", ww.Header().Get(chiTransport.HeaderCompletionTokens)),
			)
		})
	}
}
