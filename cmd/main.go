package main

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"github.com/mbhbank/account-service/internal/command"
	"github.com/mbhbank/account-service/internal/config"
	"github.com/mbhbank/account-service/internal/handler"
	"github.com/mbhbank/account-service/internal/metrics"
	"github.com/mbhbank/account-service/internal/query"
	"github.com/mbhbank/account-service/internal/screening"
	"github.com/mbhbank/account-service/internal/tracing"
	"github.com/mbhbank/account-service/shared/accountnumber"
	"github.com/mbhbank/account-service/shared/middleware"
)

const serviceName = "account-service"

// set with -ldflags "-X main.version=..."
var version = "dev"

const shutdownTimeout = 15 * time.Second

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil)).With("service", serviceName)
	slog.SetDefault(logger)

	if err := run(logger); err != nil {
		logger.Error("account service stopped", "error", err)
		os.Exit(1)
	}
}

func run(logger *slog.Logger) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	generator, err := accountnumber.NewGenerator(cfg.AccountPrefix)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.TraceStdout {
		shutdownTracing, err := tracing.Init(ctx, serviceName, version, os.Stderr)
		if err != nil {
			return err
		}
		defer func() { _ = shutdownTracing(context.Background()) }()
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(reg)

	st, err := openStack(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer st.close()

	// Bind first: the callback URL carries the port we actually got.
	ln, err := net.Listen("tcp", ":"+cfg.Port)
	if err != nil {
		return err
	}
	baseURL, err := screening.ResolveBaseURL(cfg.PublicBaseURL, cfg.AdvertiseHost, cfg.ContextPath, ln.Addr())
	if err != nil {
		_ = ln.Close()
		return err
	}

	pool := screening.NewPool(cfg.Screener.Workers, cfg.Screener.QueueSize, logger)

	// --- CQRS wiring ---
	screeningStatus := query.NewScreeningQueryService(st.screening)
	screeningCmd := command.NewScreeningCommandService(
		st.screening,
		pool,
		screening.NewClient(cfg.Screener.URL, cfg.Screener.Timeout),
		screening.NewCallbackURLs(baseURL),
		st.publisher,
		m,
		logger,
	)
	accountCmd := command.NewAccountCommandService(st.accounts, st.accountViews, generator, screeningCmd, st.publisher, m, logger)
	transactionCmd := command.NewTransactionCommandService(st.transactions, st.transactionViews, st.liveAccounts, screeningStatus, st.publisher, m, logger)

	accountHandler := handler.NewAccountHandler(accountCmd, query.NewAccountQueryService(st.accountReader, st.liveAccounts, st.accountTransaction))
	transactionHandler := handler.NewTransactionHandler(transactionCmd, query.NewTransactionQueryService(st.transactionReader))
	screeningHandler := handler.NewScreeningHandler(screeningCmd)

	// Setup router
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery(), middleware.LoggingMiddleware())

	api := router.Group(cfg.ContextPath)
	api.GET("/health", func(c *gin.Context) {
		if err := st.health(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	api.GET("/metrics", gin.WrapH(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))
	accountHandler.Register(api)
	transactionHandler.Register(api)
	screeningHandler.Register(api)

	srv := &http.Server{
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("account service starting",
			"addr", ln.Addr().String(),
			"callback_base_url", baseURL,
			"storage", cfg.Storage,
			"screening_workers", cfg.Screener.Workers,
			"version", version,
		)
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	if st.subscriber != nil {
		g.Go(func() error {
			return st.subscriber.Start(gctx)
		})
	}
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		err := srv.Shutdown(shutdownCtx)
		if perr := pool.Close(shutdownCtx); perr != nil {
			logger.Warn("screening pool did not drain", "error", perr)
		}
		return err
	})
	return g.Wait()
}
