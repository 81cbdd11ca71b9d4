package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"geozone-backend/config"
	"geozone-backend/internal/delivery/http/middleware"
	v1 "geozone-backend/internal/delivery/http/v1"
	"geozone-backend/internal/domain"
	"geozone-backend/internal/infrastructure/cache"
	"geozone-backend/internal/infrastructure/events"
	"geozone-backend/internal/infrastructure/metrics"
	"geozone-backend/internal/repository/memory"
	"geozone-backend/internal/repository/pgxrepo"
	"geozone-backend/internal/usecase"
	"geozone-backend/pkg/logger"
	"geozone-backend/pkg/storage"
	"geozone-backend/pkg/utils"

	"github.com/NYTimes/gziphandler"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/time/rate"
)

const (
	serviceName    = "geozone-backend"
	serviceVersion = "1.0.0"
)

func main() {
	cfg := config.LoadConfig()
	utils.SetSecret(cfg.JWTSecret)

	logger.Init(cfg.Env, cfg.LogLevel)
	log := logger.Get()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Repositories
	var (
		zoneRepo    domain.ZoneRepository
		variantRepo domain.VariantRepository
		txManager   domain.TransactionManager
		dbStatus    = "memory"
	)
	switch cfg.StorageDriver {
	case config.StorageDriverMemory:
		zoneRepo = memory.NewZoneRepository()
		variantRepo = memory.NewVariantRepository()
		txManager = memory.NewTransactionManager()
		log.Warn().Msg("Using in-memory storage; zones are lost on restart")
	default:
		pool, err := pgxrepo.NewPgxPool(ctx, cfg)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to connect to database")
		}
		defer pool.Close()
		log.Info().Msg("Successfully connected to PostgreSQL via pgx")

		zoneRepo = pgxrepo.NewZoneRepository(pool)
		variantRepo = pgxrepo.NewVariantRepository(pool)
		txManager = pgxrepo.NewTransactionManager(pool, cfg.ZoneLockKey)
		dbStatus = "connected"
	}

	// Cache: the zone TTL is short, cleanup every 5 minutes.
	memCache := cache.NewMemoryCache(cfg.CacheZoneTTL, 5*time.Minute)

	// Metrics
	var collector *metrics.Collector
	if cfg.MetricsEnabled {
		reg := prometheus.NewRegistry()
		reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		c, err := metrics.NewCollector(reg)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to register metrics")
		}
		collector = c
	}

	// Zone events
	var publisher domain.ZoneEventPublisher = events.NewNoopPublisher()
	if cfg.NATSUrl != "" {
		natsPub, err := events.NewNATSPublisher(cfg.NATSUrl, cfg.NATSSubjectPrefix)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to connect to NATS")
		}
		defer natsPub.Close()
		publisher = natsPub
	}

	// Zone map publishing (R2)
	var objectStorage usecase.ObjectStorage
	if cfg.R2Enabled() {
		r2, err := storage.NewR2Storage(
			ctx,
			cfg.R2AccountID,
			cfg.R2AccessKeyID,
			cfg.R2AccessKeySecret,
			cfg.R2BucketName,
			cfg.R2PublicURL,
			cfg.R2UploadTimeout,
		)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to initialize R2 Storage")
		}
		objectStorage = r2
	}

	// --- Modules ---
	zoneVersion := usecase.NewZoneVersion()
	resolver := usecase.NewSpatialResolver(zoneRepo, memCache, collector, zoneVersion, cfg)
	zoneUC := usecase.NewZoneUsecase(zoneRepo, txManager, memCache, publisher, collector, objectStorage, zoneVersion, cfg)
	variantUC := usecase.NewVariantUsecase(resolver, variantRepo, cfg)

	adminZoneHandler := v1.NewAdminZoneHandler(zoneUC, resolver)
	zoneHandler := v1.NewZoneHandler(resolver, zoneUC)
	variantHandler := v1.NewVariantHandler(variantUC)

	mux := http.NewServeMux()
	admin := func(h http.HandlerFunc) http.Handler {
		return middleware.AdminOnly(h)
	}

	// Admin Zones
	mux.Handle("POST /api/v1/admin/zones", admin(adminZoneHandler.CreateZone))
	mux.Handle("GET /api/v1/admin/zones", admin(adminZoneHandler.ListZones))
	mux.Handle("GET /api/v1/admin/zones/lookup", admin(adminZoneHandler.LookupZones))
	mux.Handle("GET /api/v1/admin/zones/polygons", admin(adminZoneHandler.ListZonePolygons))
	mux.Handle("POST /api/v1/admin/zones/map/publish", admin(adminZoneHandler.PublishZoneMap))
	mux.Handle("GET /api/v1/admin/zones/{id}", admin(adminZoneHandler.GetZone))
	mux.Handle("PATCH /api/v1/admin/zones/{id}", admin(adminZoneHandler.UpdateZone))
	mux.Handle("PUT /api/v1/admin/zones/{id}", admin(adminZoneHandler.UpdateZone))
	mux.Handle("DELETE /api/v1/admin/zones/{id}", admin(adminZoneHandler.DeleteZone))

	// Zones (Public)
	mux.HandleFunc("GET /api/v1/zones/resolve", zoneHandler.Resolve)
	mux.HandleFunc("GET /api/v1/zones/map.geojson", zoneHandler.ZoneMap)

	// Variants (Protected)
	mux.Handle("GET /api/v1/variants", middleware.AuthMiddleware(http.HandlerFunc(variantHandler.ListVariants)))

	// Health Check
	healthHandler := func(w http.ResponseWriter, r *http.Request) {
		utils.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok", "db": dbStatus})
	}
	mux.HandleFunc("GET /api/v1/health", healthHandler)
	mux.HandleFunc("GET /health", healthHandler) // Support root health check for Load Balancers

	if collector != nil {
		mux.Handle("GET /metrics", collector.Handler())
	}

	rateLimiter := middleware.NewRateLimiter(
		ctx,
		rate.Limit(cfg.RateLimitRPS),
		cfg.RateLimitBurst,
		time.Minute,   // cleanup period
		3*time.Minute, // client TTL
	)

	// Metrics sits directly on the mux so the matched pattern is visible.
	var handler http.Handler = mux
	if collector != nil {
		handler = middleware.Metrics(collector)(handler)
	}
	handler = middleware.NewCORSMiddleware(cfg)(handler)
	handler = middleware.RequestLogger(handler)
	handler = rateLimiter.Middleware()(handler)
	handler = gziphandler.GzipHandler(handler)

	addr := fmt.Sprintf(":%s", cfg.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed to start")
		}
	}()
	logger.ServiceStart(serviceName, serviceVersion, cfg.Port)

	<-ctx.Done()
	log.Info().Msg("Server shutting down...")

	rateLimiter.Shutdown()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	logger.ServiceStop(serviceName)
}
