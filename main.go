package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/julienschmidt/httprouter"
	"github.com/redis/go-redis/v9"
	"github.com/rs/cors"

	"wayfare/config"
	"wayfare/datewin"
	"wayfare/db"
	"wayfare/history"
	"wayfare/itinerary"
	"wayfare/middleware"
	"wayfare/mq"
	"wayfare/prices"
	"wayfare/pricing"
	"wayfare/ratelim"
	"wayfare/rdx"
	"wayfare/routes"
)

// securityHeaders applies a set of recommended HTTP security headers.
func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Content-Security-Policy", "frame-ancestors 'none'")
		// HSTS (must be on HTTPS)
		w.Header().Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains; preload")
		w.Header().Set("Referrer-Policy", "no-referrer")
		w.Header().Set("Cache-Control", "no-store, no-cache, must-revalidate, private")
		next.ServeHTTP(w, r)
	})
}

// loggingMiddleware logs each request method, path, remote address, and duration.
func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		log.Printf("%s %s from %s – %v", r.Method, r.RequestURI, r.RemoteAddr, time.Since(start))
	})
}

// Index is a simple health check handler.
func Index(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	fmt.Fprint(w, "200")
}

// handlerTimeout bounds one optimize request; maxTimeBudget caps its soft
// budget below that.
const (
	handlerTimeout = 40 * time.Second
	maxTimeBudget  = 35 * time.Second
)

// backends holds the optional stores; nil fields mean the service runs without them.
type backends struct {
	redis   *redis.Client
	history *history.Store
}

// connectBackends dials MongoDB and Redis. Either may be down: prices then
// come from memory, caching and history are skipped.
func connectBackends(ctx context.Context, cfg config.Config) (pricing.PriceProvider, backends) {
	var (
		provider pricing.PriceProvider
		b        backends
	)

	if !cfg.MemoryPrices {
		if _, err := db.Connect(ctx, cfg.MongoURI, cfg.MongoDB); err != nil {
			log.Printf("⚠️ MongoDB unavailable, serving in-memory prices: %v", err)
		} else {
			mp := prices.NewMongoProvider(db.HotelsCollection, db.PriceHistoryCollection, cfg.Prices)
			if err := mp.EnsureIndexes(ctx); err != nil {
				log.Printf("⚠️ Price indexes: %v", err)
			}
			provider = mp

			b.history = history.NewStore(db.HistoryCollection)
			if err := b.history.InitIndexes(ctx); err != nil {
				log.Printf("⚠️ History indexes: %v", err)
			}
		}
	}
	if provider == nil {
		provider = prices.NewMemoryProvider(cfg.Prices)
	}

	rdb, err := rdx.Connect(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		log.Printf("⚠️ Redis unavailable, caching disabled: %v", err)
	} else {
		b.redis = rdb
	}
	return provider, b
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("❌ Config error: %v", err)
	}

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	provider, b := connectBackends(ctx, cfg)
	provider = prices.NewThrottled(provider, cfg.PriceRPS, cfg.PriceBurst)

	var (
		cache  itinerary.Cache
		sink   itinerary.HistorySink
		lister itinerary.HistoryLister
	)
	if b.redis != nil {
		c := rdx.NewCache(b.redis)
		provider = prices.NewCached(provider, c, cfg.PriceCacheTTL)
		cache = c
	}
	if b.history != nil {
		lister = b.history
		sink = b.history
		if b.redis != nil {
			sink = mq.NewEmitter(b.redis)
			go func() {
				if err := mq.StartHistoryWorker(ctx, b.redis, b.history); err != nil {
					log.Printf("❌ History worker: %v", err)
				}
			}()
		}
	}

	optimizer := itinerary.NewOptimizer(
		datewin.New(),
		pricing.NewService(provider, cfg.OptimizerWorkers),
		cache,
		sink,
		itinerary.Options{
			Workers:         cfg.OptimizerWorkers,
			MaxCombinations: cfg.MaxCombinations,
			CacheTTL:        cfg.CacheTTL,
			MaxTimeBudget:   maxTimeBudget,
		},
	)
	handler := itinerary.NewHandler(optimizer, provider, lister, handlerTimeout)

	// initialize rate limiter
	rateLimiter := ratelim.NewRateLimiter(120, 20, 10*time.Minute)
	sweepStop := make(chan struct{})
	go rateLimiter.RunSweeper(time.Minute, sweepStop)

	if len(cfg.JWTSecret) == 0 {
		log.Println("⚠️ JWT_SECRET not set; all requests are anonymous")
	}
	auth := middleware.NewAuth(cfg.JWTSecret)

	router := httprouter.New()
	router.GET("/health", Index)
	routes.AddItineraryRoutes(router, handler, auth, rateLimiter)
	routes.AddDestinationRoutes(router, handler, rateLimiter)

	// apply middleware: CORS → security headers → logging → router
	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"}, // lock down in production
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
	}).Handler(router)

	server := &http.Server{
		Addr:              cfg.Port,
		Handler:           loggingMiddleware(securityHeaders(corsHandler)),
		ReadTimeout:       7 * time.Second,
		WriteTimeout:      45 * time.Second,
		IdleTimeout:       120 * time.Second,
		ReadHeaderTimeout: 2 * time.Second,
	}

	server.RegisterOnShutdown(func() {
		log.Println("🛑 Stopping background workers...")
		stop()
		close(sweepStop)
	})

	go func() {
		log.Printf("🚀 Server listening on %s", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("❌ ListenAndServe error: %v", err)
		}
	}()

	// wait for interrupt or SIGTERM
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	log.Println("🛑 Shutdown signal received; shutting down gracefully...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("❌ Graceful shutdown failed: %v", err)
	}
	db.Disconnect(shutdownCtx)
	if b.redis != nil {
		if err := b.redis.Close(); err != nil {
			log.Printf("⚠️ Redis close: %v", err)
		}
	}

	log.Println("✅ Server stopped cleanly")
}
