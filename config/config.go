// Package config loads the service configuration from the environment.
package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"wayfare/prices"
)

type Config struct {
	Port          string
	MongoURI      string
	MongoDB       string
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	JWTSecret     []byte

	OptimizerWorkers int
	MaxCombinations  int
	CacheTTL         time.Duration
	PriceCacheTTL    time.Duration
	PriceRPS         float64
	PriceBurst       int

	// MemoryPrices serves prices from an in-memory seed instead of MongoDB.
	MemoryPrices bool

	Prices prices.Config
}

// Load reads .env when present, then the process environment.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found; using system environment")
	}
	return FromEnv(os.Getenv)
}

// FromEnv builds a Config from a lookup function.
func FromEnv(getenv func(string) string) (Config, error) {
	e := env{get: getenv}
	def := prices.DefaultConfig()
	cfg := Config{
		Port:             e.str("PORT", ":8080"),
		MongoURI:         e.str("MONGO_URI", "mongodb://localhost:27017"),
		MongoDB:          e.str("MONGO_DB", "wayfare"),
		RedisAddr:        e.str("REDIS_ADDR", "localhost:6379"),
		RedisPassword:    e.str("REDIS_PASSWORD", ""),
		RedisDB:          e.integer("REDIS_DB", 0),
		JWTSecret:        []byte(e.str("JWT_SECRET", "")),
		OptimizerWorkers: e.integer("OPTIMIZER_WORKERS", 8),
		MaxCombinations:  e.integer("MAX_COMBINATIONS", 1000),
		CacheTTL:         time.Duration(e.integer("CACHE_TTL_SECONDS", 3600)) * time.Second,
		PriceCacheTTL:    time.Duration(e.integer("PRICE_CACHE_TTL_SECONDS", 600)) * time.Second,
		PriceRPS:         e.number("PRICE_RPS", 50),
		PriceBurst:       e.integer("PRICE_BURST", 10),
		MemoryPrices:     e.flag("MEMORY_PRICES", false),
		Prices: prices.Config{
			MinStars:        e.number("HOTEL_MIN_STARS", def.MinStars),
			MinGuestRating:  e.number("HOTEL_MIN_GUEST_RATING", def.MinGuestRating),
			MaxHotels:       e.integer("HOTEL_MAX_PER_DESTINATION", def.MaxHotels),
			PageSize:        e.integer("HOTEL_PAGE_SIZE", def.PageSize),
			MaxPages:        e.integer("HOTEL_MAX_PAGES", def.MaxPages),
			DefaultAdults:   e.integer("DEFAULT_ADULTS", def.DefaultAdults),
			DefaultChildren: e.integer("DEFAULT_CHILDREN", def.DefaultChildren),
			DefaultCurrency: e.str("DEFAULT_CURRENCY", def.DefaultCurrency),
		},
	}
	if e.err != nil {
		return Config{}, e.err
	}
	if cfg.Port[0] != ':' {
		cfg.Port = ":" + cfg.Port
	}
	if cfg.OptimizerWorkers < 1 {
		return Config{}, fmt.Errorf("OPTIMIZER_WORKERS must be positive, got %d", cfg.OptimizerWorkers)
	}
	if cfg.MaxCombinations < 1 {
		return Config{}, fmt.Errorf("MAX_COMBINATIONS must be positive, got %d", cfg.MaxCombinations)
	}
	return cfg, nil
}

// env collects the first parse error so FromEnv can read every key in one pass.
type env struct {
	get func(string) string
	err error
}

func (e *env) str(key, def string) string {
	if v := e.get(key); v != "" {
		return v
	}
	return def
}

func (e *env) integer(key string, def int) int {
	v := e.get(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil && e.err == nil {
		e.err = fmt.Errorf("%s: %w", key, err)
	}
	return n
}

func (e *env) number(key string, def float64) float64 {
	v := e.get(key)
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil && e.err == nil {
		e.err = fmt.Errorf("%s: %w", key, err)
	}
	return f
}

func (e *env) flag(key string, def bool) bool {
	v := e.get(key)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil && e.err == nil {
		e.err = fmt.Errorf("%s: %w", key, err)
	}
	return b
}
