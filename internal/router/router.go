package router

import (
	"net/http"
	"time"

	"GrestAPI/internal/cache"
	"GrestAPI/internal/config"
	"GrestAPI/internal/db"
	"GrestAPI/internal/handler"
	"GrestAPI/internal/logger"
	"GrestAPI/internal/resource"
	"GrestAPI/internal/storage"

	"github.com/google/uuid"
)

// InitRoutes mounts every registered resource under /api/<name> on mux
// (the default ServeMux when nil). Resources without a cache key prefix get
// a pass-through gateway; without a Redis address nothing is cached at all.
func InitRoutes(cfg *config.Config, mux *http.ServeMux) error {
	if mux == nil {
		mux = http.DefaultServeMux
	}

	var store cache.Store
	if db.RDB != nil {
		store = cache.NewRedisStore(db.RDB)
	}

	for name, res := range resource.Registry {
		col := storage.NewPostgresCollection(db.Pool, res)
		RegisterResource(mux, cfg, name, res, col, store)
	}
	return nil
}

// RegisterResource wires one resource's controller and middleware chain.
// Split out so tests can mount memory-backed collections the same way.
func RegisterResource(mux *http.ServeMux, cfg *config.Config, name string, res *resource.Resource, col resource.Collection, store cache.Store) {
	gw := cache.NewGateway(store, res.Cache.KeyPrefix, cacheTTL(cfg, res))
	ctrl := resource.NewController(res, col, gw)

	basePath := "/api/" + name
	h := withCORS(cfg.CORS.AllowOrigin, cfg.CORS.AllowCredentials, withLogging(handler.Resource(basePath, ctrl)))
	mux.HandleFunc(basePath, h)
	mux.HandleFunc(basePath+"/", h)

	logger.Info("resource_mounted", map[string]any{
		"resource": name,
		"path":     basePath,
		"cached":   res.Cache.KeyPrefix != "",
	})
}

// cacheTTL resolves a resource's entry lifetime: the declared ttl, or the
// server-wide default when the declaration leaves it out.
func cacheTTL(cfg *config.Config, res *resource.Resource) time.Duration {
	if ttl := res.CacheTTL(); ttl > 0 {
		return ttl
	}
	return cfg.Cache.DefaultTTL
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func withLogging(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		requestID := uuid.NewString()
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next(sw, r)

		fields := map[string]any{
			"request_id": requestID,
			"method":     r.Method,
			"path":       r.URL.Path,
			"status":     sw.status,
		}
		switch {
		case sw.status >= 500:
			logger.Error("response", fields)
		case sw.status >= 400:
			logger.Warn("response", fields)
		default:
			logger.Info("response", fields)
		}
	}
}
