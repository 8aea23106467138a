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

	"bookseed/internal/platform/config"
	"bookseed/internal/platform/otel"
	"bookseed/internal/store"
)

type appConfig struct {
	Store          store.Config
	ServerAddress  string  `env:"APP_ADDR" envDefault:":8080"`
	InternalSecret string  `env:"INTERNAL_SECRET"`
	SeedRPS        float64 `env:"SEED_RATE_LIMIT_RPS" envDefault:"0.2"`
	SeedBurst      int     `env:"SEED_RATE_LIMIT_BURST" envDefault:"1"`
	OTelEndpoint   string  `env:"OTEL_EXPORTER_ENDPOINT"`
}

func main() {
	config.LoadEnvFiles()

	var cfg appConfig
	if err := config.ParseEnv(&cfg); err != nil {
		log.Fatalf("config error: %v", err)
	}
	if cfg.InternalSecret == "" {
		log.Println("INTERNAL_SECRET is empty, seed endpoint is unauthenticated")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := otel.Setup(ctx, "bookseed-api", cfg.OTelEndpoint)
	if err != nil {
		log.Printf("otel setup error: %v", err)
	}

	st, closeStore, err := store.Open(ctx, cfg.Store)
	if err != nil {
		log.Fatalf("open store: %v", err)
	}
	defer closeStore()

	httpServer := &http.Server{
		Addr: cfg.ServerAddress,
		Handler: newRouter(ctx, routerDeps{
			Store:          st,
			InternalSecret: cfg.InternalSecret,
			SeedRPS:        cfg.SeedRPS,
			SeedBurst:      cfg.SeedBurst,
		}),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: cfg.Store.Timeout + 10*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Starting server on %s", cfg.ServerAddress)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("server error: %v", err)
			stop()
		}
	}()

	<-ctx.Done()
	log.Println("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("server shutdown error: %v", err)
	}
	if err := shutdownTracing(shutdownCtx); err != nil {
		log.Printf("otel shutdown error: %v", err)
	}
}
