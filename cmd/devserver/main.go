package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/kiwari-pos/stockroom/internal/config"
	mw "github.com/kiwari-pos/stockroom/internal/middleware"
	"github.com/kiwari-pos/stockroom/internal/router"
	"github.com/kiwari-pos/stockroom/internal/store"
	"github.com/kiwari-pos/stockroom/internal/ws"
)

// seedCompanyID owns everything created at startup.
const seedCompanyID = 1

func main() {
	_ = godotenv.Load()
	cfg := config.LoadServer()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	st := store.New()
	if cfg.SeedPassword == "password123" {
		log.Println("WARNING: Using default password 'password123'. Set SEED_PASSWORD outside local development!")
	}
	owner, err := store.Seed(ctx, st, store.SeedOptions{
		CompanyID: seedCompanyID,
		Email:     cfg.SeedEmail,
		Password:  cfg.SeedPassword,
		Name:      cfg.SeedName,
	})
	if err != nil {
		log.Fatalf("Failed to seed store: %v", err)
	}
	log.Printf("Seed completed (owner ID: %d)", owner.ID)

	hub := ws.NewHub()
	go hub.Run(ctx)

	r := router.New(cfg, st, hub, mw.NewMetrics())

	server := &http.Server{
		Addr: ":" + cfg.Port,
		Handler: otelhttp.NewHandler(r, "stockroom-devserver",
			otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
				return r.Method + " " + r.URL.Path
			}),
		),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	go func() {
		log.Printf("Starting server on :%s", cfg.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("ERROR: server: %v", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	log.Println("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("Shutdown error: %v", err)
	}
}
