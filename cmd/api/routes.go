package main

import (
	"context"
	"net/http"
	"time"

	"bookseed/internal/httpx"
	"bookseed/internal/seed"
	"bookseed/internal/store"
)

type routerDeps struct {
	Store          store.Store
	InternalSecret string
	SeedRPS        float64
	SeedBurst      int
}

// newRouter builds the handler tree. Background work it starts stops when
// ctx is done.
func newRouter(ctx context.Context, deps routerDeps) http.Handler {
	seedHandler := seed.NewHTTPHandler(seed.NewLoader(deps.Store))
	seedLimiter := httpx.NewRateLimitMiddleware(ctx, deps.SeedRPS, deps.SeedBurst)

	router := http.NewServeMux()

	router.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	router.HandleFunc("/readyz", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 500*time.Millisecond)
		defer cancel()
		if err := deps.Store.Ping(ctx); err != nil {
			http.Error(w, "store not ready", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})

	router.Handle("/internal/jobs/seed", httpx.Chain(
		http.HandlerFunc(seedHandler.Seed),
		httpx.InternalSecretMiddleware(deps.InternalSecret),
		seedLimiter.Middleware,
	))

	return httpx.Chain(router,
		httpx.RequestIDMiddleware,
		httpx.AccessLogMiddleware,
		httpx.RecoveryMiddleware,
	)
}
