package main

import (
	"GrestAPI/internal/config"
	"GrestAPI/internal/db"
	"GrestAPI/internal/logger"
	"GrestAPI/internal/resource"
	"GrestAPI/internal/router"
	"flag"
	"fmt"
	"net/http"
	"os"
)

func main() {
	debugFlag := flag.Bool("d", false, "enable debug logging")
	flag.Parse()

	cfg := config.LoadConfig()
	if err := logger.Init("."); err != nil {
		fmt.Fprintf(os.Stderr, "log init failed: %v\n", err)
		os.Exit(1)
	}
	logger.SetDebug(*debugFlag)

	// PostgreSQL
	if err := db.InitPostgres(cfg.PostgresDSN); err != nil {
		logger.Error("postgres_init_failed", map[string]any{"error": err.Error()})
		os.Exit(1)
	}
	logger.Info("postgres_connected", nil)

	// Redis is optional: without it every gateway degrades to pass-through
	if cfg.RedisAddr != "" {
		db.InitRedis(cfg.RedisAddr)
		if err := db.PingRedis(); err != nil {
			logger.Error("redis_init_failed", map[string]any{"error": err.Error()})
			os.Exit(1)
		}
		logger.Info("redis_connected", nil)
	} else {
		logger.Warn("cache_disabled", map[string]any{"reason": "REDIS_ADDR not set"})
	}

	// Load resource declarations
	if err := resource.InitRegistry(cfg.ResourcesDir); err != nil {
		logger.Error("registry_init_failed", map[string]any{"error": err.Error()})
		os.Exit(1)
	}
	logger.Info("resources_initialized", map[string]any{"count": len(resource.Registry)})

	// Mount routes
	if err := router.InitRoutes(cfg, nil); err != nil {
		logger.Error("router_init_failed", map[string]any{"error": err.Error()})
		os.Exit(1)
	}

	// Start HTTP server
	logger.Info("server_start", map[string]any{"port": cfg.Port})
	if err := http.ListenAndServe(":"+cfg.Port, nil); err != nil {
		logger.Error("server_error", map[string]any{"error": err.Error()})
		os.Exit(1)
	}
}
