package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"github.com/yofomoose/okdesk-bot/internal/adapters/http/handler"
	"github.com/yofomoose/okdesk-bot/internal/adapters/http/middleware"
	"github.com/yofomoose/okdesk-bot/internal/core/sync"
	"github.com/yofomoose/okdesk-bot/platform/config"
	"github.com/yofomoose/okdesk-bot/platform/db"
	"github.com/yofomoose/okdesk-bot/platform/logger"
)

// SetupRoutes builds the HTTP surface: the helpdesk webhook endpoint
// and a health check. There is no public API beyond these two.
func SetupRoutes(cfg *config.Config, log *logger.Logger, database *db.DB, engine *sync.Engine) http.Handler {
	r := chi.NewRouter()

	setupMiddlewares(r, log)

	webhookHandler := handler.NewWebhookHandler(cfg, engine, log)
	healthHandler := handler.NewHealthHandler(database)

	r.Post(cfg.WebhookPath, webhookHandler.Handle)
	r.Get("/health", healthHandler.Handle)

	return r
}

func setupMiddlewares(r *chi.Mux, log *logger.Logger) {
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					log.ErrorWithFields("Panic recovered", map[string]interface{}{
						"error":  err,
						"path":   req.URL.Path,
						"method": req.Method,
					})
					w.WriteHeader(http.StatusInternalServerError)
				}
			}()
			next.ServeHTTP(w, req)
		})
	})

	r.Use(middleware.RequestID)
	r.Use(middleware.HTTPLogger(log))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"*"},
		MaxAge:         300,
	}))
}
