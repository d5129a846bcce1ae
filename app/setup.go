package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2/log"
	"github.com/sahilchouksey/pdf-extractor-api/api"
	"github.com/sahilchouksey/pdf-extractor-api/config"
	"github.com/sahilchouksey/pdf-extractor-api/database"
	"github.com/sahilchouksey/pdf-extractor-api/handlers"
	"github.com/sahilchouksey/pdf-extractor-api/router"
	"github.com/sahilchouksey/pdf-extractor-api/services"
	"github.com/sahilchouksey/pdf-extractor-api/services/cron"
	"github.com/sahilchouksey/pdf-extractor-api/utils/cache"
	"github.com/sahilchouksey/pdf-extractor-api/utils/pdfvalidation"
	"gorm.io/gorm"
)

func SetupAndRunServer() error {

	// Load ENV
	if err := config.LoadENV(); err != nil {
		return err
	}

	getEnv, err := config.Get()
	if err != nil {
		return err
	}

	log.SetLevel(logLevel(getEnv.LOG_LEVEL))

	service := services.NewExtractionService(
		services.NewPDFExtractor(),
		services.NewTableExtractor(),
		ServiceOptions(getEnv),
	)
	health := map[string]handlers.Pinger{}

	// Optional Redis result cache
	var redisCache *cache.RedisCache
	if getEnv.CacheEnabled() {
		redisCache, err = cache.NewRedisCache(getEnv.REDIS_URL, "pdfx:")
		if err != nil {
			log.Warnf("Failed to connect to Redis: %v. Result caching will be disabled.", err)
		} else {
			service.WithCache(services.NewResultCache(redisCache, getEnv.CACHE_TTL))
			health["cache"] = redisCache
		}
	}

	// Optional PostgreSQL audit log
	var store *database.GORMStore
	var db *gorm.DB
	if getEnv.DatabaseEnabled() {
		store, err = database.StartGORM(getEnv)
		if err == nil {
			err = store.Init()
		}
		if err != nil {
			log.Warnf("Extraction audit log disabled: %v", err)
			if store != nil {
				store.Close()
				store = nil
			}
		} else {
			db = store.DB()
			service.WithRecorder(services.NewExtractionLogService(db))
			health["database"] = handlers.PingFunc(func(ctx context.Context) error {
				return store.HealthCheck()
			})
		}
	}

	// Initialize Cron Manager (only if enabled via environment variable)
	var cronManager *cron.CronManager
	if getEnv.CRON_ENABLED {
		cronManager = cron.NewCronManager(db, cron.Config{
			ScratchRoot:   getEnv.SCRATCH_DIR,
			ScratchMaxAge: getEnv.JANITOR_MAX_AGE,
			LogRetention:  getEnv.LOG_RETENTION,
		})
		if err := cronManager.Start(); err != nil {
			// Don't fail the app, just log the warning
			log.Warnf("Failed to start cron jobs: %v", err)
			cronManager = nil
		}
	}

	// Defer closing connections and stopping cron jobs
	defer func() {
		if cronManager != nil {
			cronManager.Stop()
		}
		if store != nil {
			store.Close()
		}
		if redisCache != nil {
			redisCache.Close()
		}
	}()

	// Init API
	server := api.NewAPIServer(fmt.Sprintf(":%d", getEnv.PORT), bodyLimit(getEnv.MAX_UPLOAD_MB))

	// Setup Routes
	router.SetupRoutes(server.GetEngine(), router.Dependencies{
		Service:        service,
		Limits:         pdfvalidation.PDFLimits{MaxFileSizeMB: getEnv.MAX_UPLOAD_MB},
		AllowedOrigins: getEnv.ALLOWED_ORIGINS,
		Health:         health,
	})

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
		<-quit
		log.Info("Shutting down server...")
		if err := server.Shutdown(); err != nil {
			log.Errorf("Server shutdown failed: %v", err)
		}
	}()

	return server.Run()
}

// ServiceOptions maps the environment onto the extraction service configuration
func ServiceOptions(env *config.Environment) services.ServiceOptions {
	return services.ServiceOptions{
		ScratchDir:       env.SCRATCH_DIR,
		DefaultPageLimit: env.DEFAULT_PAGE_LIMIT,
		MaxPages:         env.MAX_PAGES,
		Timeout:          env.PROCESSING_TIMEOUT,
		HeaderKeywords:   env.HEADER_KEYWORDS,
		MetadataKeywords: env.METADATA_KEYWORDS,
		Strategy:         env.MERGE_STRATEGY,
		JoinWrappedRows:  env.JOIN_WRAPPED_ROWS,
	}
}

// bodyLimit leaves 1MB for multipart framing and the other form fields
func bodyLimit(maxUploadMB int) int {
	return (maxUploadMB + 1) * 1024 * 1024
}

func logLevel(level string) log.Level {
	switch level {
	case "trace":
		return log.LevelTrace
	case "debug":
		return log.LevelDebug
	case "warn":
		return log.LevelWarn
	case "error":
		return log.LevelError
	default:
		return log.LevelInfo
	}
}
