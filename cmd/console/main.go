package main

import (
	"context"
	"net"
	"net/http"
	"os"

	"github.com/go-redis/redis/v8"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/sync/errgroup"

	"github.com/lumenhq/console/pkg/api"
	"github.com/lumenhq/console/pkg/claims"
	"github.com/lumenhq/console/pkg/config"
	"github.com/lumenhq/console/pkg/directory"
	"github.com/lumenhq/console/pkg/middleware"
	"github.com/lumenhq/console/pkg/observability"
	"github.com/lumenhq/console/pkg/rbac"
	"github.com/lumenhq/console/pkg/session"
)

func main() {
	// Bootstrap logger for everything before config is loaded
	bootLog := logrus.New()
	bootLog.SetFormatter(&logrus.JSONFormatter{})

	cfg, err := config.LoadConfig()
	if err != nil {
		bootLog.WithError(err).Fatal("failed to load configuration")
	}

	logger := observability.NewLogger(cfg.Observability.LogLevel, os.Stdout)
	metrics := observability.NewMetrics(nil)

	ctx := context.Background()

	// Tracing
	var otelProviders *observability.OTelProviders
	if cfg.Observability.OTelEnabled {
		otelProviders, err = observability.InitOTel(ctx, observability.OTelConfig{
			Enabled:        true,
			Endpoint:       cfg.Observability.OTelEndpoint,
			ServiceName:    cfg.Observability.OTelServiceName,
			ServiceVersion: cfg.Observability.OTelServiceVersion,
			Insecure:       cfg.Observability.OTelInsecure,
		}, logger)
		if err != nil {
			logger.WithError(err).Warn("tracing disabled")
		}
	}

	// RBAC core
	rbacCfg := cfg.RBAC.Build()
	registry := rbac.NewRegistry(rbacCfg.Roles)
	extractor := rbac.NewExtractor(rbacCfg, registry, logger)
	evaluator := rbac.NewEvaluator(rbacCfg, registry)

	// Optional route rule overrides, hot-reloaded on file change
	var rulesWatcher *config.RouteRulesWatcher
	if cfg.RBAC.RouteRulesFile != "" {
		rules, err := config.LoadRouteRules(cfg.RBAC.RouteRulesFile)
		if err != nil {
			bootLog.WithError(err).Fatal("failed to load route rules file")
		}
		evaluator.SetRules(rules)

		rulesWatcher, err = config.WatchRouteRules(cfg.RBAC.RouteRulesFile, logger, evaluator.SetRules)
		if err != nil {
			logger.WithError(err).Warn("route rules file watching disabled")
		}
	}

	// Token claim cache
	tokenCache, err := claims.NewCache(claims.CacheConfig{
		Namespace:     cfg.RBAC.ClaimsNamespace,
		TTL:           cfg.RBAC.TokenCacheTTL,
		MaxEntries:    cfg.RBAC.TokenCacheSize,
		SweepInterval: cfg.RBAC.SweepInterval,
	}, extractor, logger, metrics)
	if err != nil {
		bootLog.WithError(err).Fatal("failed to create token cache")
	}
	if err := tokenCache.StartSweep(); err != nil {
		logger.WithError(err).Warn("token cache sweep disabled")
	}

	builder := rbac.NewContextBuilder(registry, extractor, tokenCache, logger)
	builder.SetMetrics(metrics)

	// User directory
	dirStore, err := directory.NewStore(ctx, cfg.Directory.Driver, cfg.Directory.DSN)
	if err != nil {
		bootLog.WithError(err).Fatal("failed to open user directory")
	}
	if cfg.Directory.Seed {
		if err := dirStore.Seed(ctx); err != nil {
			bootLog.WithError(err).Fatal("failed to seed user directory")
		}
	}

	// Session store
	var sessionStore session.Store
	var redisClient *redis.Client
	if cfg.Session.RedisURL != "" {
		redisStore, err := session.NewRedisStore(ctx, cfg.Session.RedisURL, logger)
		if err != nil {
			bootLog.WithError(err).Fatal("failed to connect to session store")
		}
		sessionStore = redisStore
		redisClient = redisStore.Client()
		logger.Info("using redis session store")
	} else {
		sessionStore = session.NewMemoryStore(cfg.Session.SweepInterval, logger, metrics)
		logger.Info("using in-memory session store")
	}

	// Identity provider
	provider, err := session.NewProvider(ctx, cfg.OIDC)
	if err != nil {
		bootLog.WithError(err).Fatal("failed to configure identity provider")
	}

	// HTTP surface
	authHandlers := session.NewHandlers(provider, sessionStore, builder, evaluator, cfg.Session, logger, metrics)
	apiServer := api.NewServer(registry, evaluator, dirStore, logger, metrics)

	authMW := middleware.NewAuthMiddleware(sessionStore, builder, cfg.Session.CookieName, true, logger)
	guard := middleware.NewRouteGuard(evaluator, logger, metrics)

	rateLimit := middleware.NewRateLimitMiddleware()
	limiterCtx, stopLimiterCleanup := context.WithCancel(ctx)
	rateLimit.StartCleanup(limiterCtx)

	router := mux.NewRouter()
	authHandlers.RegisterRoutes(router)
	apiServer.RegisterRoutes(router)

	// Auth must resolve before rate limiting so authenticated traffic is
	// keyed per user rather than per client IP.
	router.Use(
		middleware.RequestID,
		middleware.Recovery(logger),
		middleware.Logging(logger, metrics),
		authMW.Handler,
		rateLimit.Handler,
		guard.Handler,
	)

	var appHandler http.Handler = router
	if otelProviders != nil {
		appHandler = otelhttp.NewHandler(router, "console")
	}

	server := &http.Server{
		Addr:         net.JoinHostPort(cfg.Server.Host, cfg.Server.Port),
		Handler:      appHandler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Health and metrics on a separate port for probes and scraping
	healthMux := http.NewServeMux()
	checker := observability.NewHealthChecker(dirStore.DB(), redisClient)
	observability.RegisterHealthRoutes(healthMux, checker)
	if cfg.Observability.MetricsEnabled {
		healthMux.Handle("/metrics", metrics.Handler())
	}
	healthServer := &http.Server{
		Addr:    net.JoinHostPort(cfg.Server.Host, cfg.Server.HealthPort),
		Handler: healthMux,
	}

	var g errgroup.Group
	g.Go(func() error {
		logger.WithField("addr", server.Addr).Info("console server listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})
	g.Go(func() error {
		logger.WithField("addr", healthServer.Addr).Info("health server listening")
		if err := healthServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})

	shutdown := observability.NewShutdownManager(logger, server, cfg.Server.ShutdownTimeout)
	shutdown.RegisterShutdownFunc("health-server", func(sctx context.Context) error {
		return healthServer.Shutdown(sctx)
	})
	shutdown.RegisterShutdownFunc("token-cache", func(context.Context) error {
		tokenCache.Stop()
		return nil
	})
	shutdown.RegisterShutdownFunc("session-store", func(context.Context) error {
		return sessionStore.Close()
	})
	shutdown.RegisterShutdownFunc("directory-store", func(context.Context) error {
		return dirStore.Close()
	})
	shutdown.RegisterShutdownFunc("rate-limiter", func(context.Context) error {
		stopLimiterCleanup()
		return nil
	})
	if rulesWatcher != nil {
		shutdown.RegisterShutdownFunc("route-rules-watcher", func(context.Context) error {
			return rulesWatcher.Close()
		})
	}
	if otelProviders != nil {
		shutdown.RegisterShutdownFunc("otel", func(sctx context.Context) error {
			return observability.ShutdownOTel(sctx, otelProviders, logger)
		})
	}

	if err := shutdown.WaitForShutdown(); err != nil {
		logger.WithError(err).Error("shutdown finished with errors")
		os.Exit(1)
	}

	if err := g.Wait(); err != nil {
		logger.WithError(err).Error("server exited with error")
		os.Exit(1)
	}
}
