package router

import (
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/kiwari-pos/stockroom/internal/config"
	"github.com/kiwari-pos/stockroom/internal/handler"
	mw "github.com/kiwari-pos/stockroom/internal/middleware"
	"github.com/kiwari-pos/stockroom/internal/service"
	"github.com/kiwari-pos/stockroom/internal/store"
	"github.com/kiwari-pos/stockroom/internal/ws"
)

// New creates a Chi router with all development API routes wired up.
// Every route except health, metrics, login, refresh and the websocket
// requires a bearer token.
func New(cfg *config.ServerConfig, st *store.Store, hub *ws.Hub, metrics *mw.Metrics) chi.Router {
	r := chi.NewRouter()

	// Standard middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(metrics.Instrument)

	// CORS configuration
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{
			"http://localhost:3000",
			"http://localhost:5173",
		},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300, // 5 minutes
	}))

	// Public routes
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok","version":"1.0.0"}`))
	})
	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	// Auth routes (public)
	authHandler := handler.NewAuthHandler(st, cfg.JWTSecret)
	authHandler.RegisterRoutes(r)

	// WebSocket route (handles auth internally via query param)
	r.Get("/ws/orders", func(w http.ResponseWriter, r *http.Request) {
		ws.ServeWS(hub, cfg.JWTSecret, w, r)
	})

	// Protected routes (require authentication)
	r.Group(func(r chi.Router) {
		r.Use(mw.Authenticate(cfg.JWTSecret))

		authHandler.RegisterProtectedRoutes(r)

		// Orders
		orderService := service.NewOrderService(st)
		orderHandler := handler.NewOrderHandler(orderService, st, hub, time.Local)
		r.Route("/orders", orderHandler.RegisterRoutes)

		// Categories, items and stock
		inventoryHandler := handler.NewInventoryHandler(st)
		inventoryHandler.RegisterRoutes(r)

		// Labels, fees and export
		settingsHandler := handler.NewSettingsHandler(st)
		settingsHandler.RegisterRoutes(r)
	})

	log.Println("Router initialized with all handlers")
	return r
}
