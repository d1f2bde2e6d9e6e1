package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/packtally/packtally-backend/api/routes"
	"github.com/packtally/packtally-backend/internal/categories"
	"github.com/packtally/packtally-backend/internal/couriers"
	"github.com/packtally/packtally-backend/internal/dashboard"
	"github.com/packtally/packtally-backend/internal/growth"
	"github.com/packtally/packtally-backend/internal/ledger"
	"github.com/packtally/packtally-backend/internal/rollupcache"
	"github.com/packtally/packtally-backend/internal/shops"
	"github.com/packtally/packtally-backend/pkg/config"
	"github.com/packtally/packtally-backend/pkg/dates"
	"github.com/packtally/packtally-backend/pkg/db"
	"github.com/packtally/packtally-backend/pkg/logger"
	"github.com/packtally/packtally-backend/pkg/metrics"
	"github.com/packtally/packtally-backend/pkg/migrate"
	"github.com/packtally/packtally-backend/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	clock, err := dates.NewClock(cfg.App.Timezone)
	if err != nil {
		logg.Error(context.Background(), "failed to load timezone", err)
		os.Exit(1)
	}

	// Redis is best effort: without it the dashboard falls back to the
	// in-process cache and each instance memoizes on its own.
	var rollupCache rollupcache.Cache
	var redisPinger redis.Pinger
	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Warn(context.Background(), "redis unavailable, using in-memory rollup cache")
		rollupCache = rollupcache.NewMemoryCache()
	} else {
		defer func() {
			if err := redisClient.Close(); err != nil {
				logg.Error(context.Background(), "error closing redis", err)
			}
		}()
		redisPinger = redisClient
		rollupCache, err = rollupcache.NewRedisCache(redisClient)
		if err != nil {
			logg.Error(context.Background(), "failed to create rollup cache", err)
			os.Exit(1)
		}
	}

	promReg := prometheus.NewRegistry()
	promReg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	httpMetrics := metrics.NewHTTPMetrics(promReg)
	cacheMetrics := metrics.NewCacheMetrics(promReg)

	ledgerRepo := ledger.NewRepository(dbClient.DB())
	shopRepo := shops.NewRepository(dbClient.DB())
	courierRepo := couriers.NewRepository(dbClient.DB())
	categoryRepo := categories.NewRepository(dbClient.DB())

	ledgerService, err := ledger.NewService(ledgerRepo, dbClient)
	if err != nil {
		logg.Error(context.Background(), "failed to create ledger service", err)
		os.Exit(1)
	}

	calc, err := growth.NewCalculator(ledgerRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create growth calculator", err)
		os.Exit(1)
	}

	dashboardService, err := dashboard.NewService(
		ledgerRepo,
		shopRepo,
		courierRepo,
		categoryRepo,
		calc,
		rollupCache,
		clock,
		cfg.Dashboard,
		logg,
		cacheMetrics,
	)
	if err != nil {
		logg.Error(context.Background(), "failed to create dashboard service", err)
		os.Exit(1)
	}

	shopService, err := shops.NewService(shopRepo, dbClient)
	if err != nil {
		logg.Error(context.Background(), "failed to create shop service", err)
		os.Exit(1)
	}

	courierService, err := couriers.NewService(courierRepo, dbClient)
	if err != nil {
		logg.Error(context.Background(), "failed to create courier service", err)
		os.Exit(1)
	}

	categoryService, err := categories.NewService(categoryRepo, dbClient)
	if err != nil {
		logg.Error(context.Background(), "failed to create category service", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":      cfg.App.Env,
		"addr":     addr,
		"timezone": cfg.App.Timezone,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(
			cfg,
			logg,
			dbClient,
			redisPinger,
			promReg,
			httpMetrics,
			ledgerService,
			dashboardService,
			shopService,
			courierService,
			categoryService,
		),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
