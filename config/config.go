// Package config provides type-safe environment variable loading with
// per-type caching, plus parsing of the YAML pipeline definition consumed
// once at startup to build the middleware chain.
//
// Environment structs are parsed with caarlos0/env; .env files are loaded
// once on first use via godotenv.
package config

import (
	"fmt"
	"reflect"
	"sync"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

var (
	dotenvOnce sync.Once
	cache      sync.Map // reflect.Type -> loaded config value
)

// Load parses environment variables into cfg. Each configuration type is
// loaded once per process; later calls return the cached value.
func Load[T any](cfg *T) error {
	dotenvOnce.Do(func() {
		// Missing .env files are fine; the environment is authoritative.
		_ = godotenv.Load()
	})

	typ := reflect.TypeOf(*cfg)
	if cached, ok := cache.Load(typ); ok {
		*cfg = cached.(T)
		return nil
	}

	if err := env.Parse(cfg); err != nil {
		return fmt.Errorf("config: parse %s: %w", typ, err)
	}

	cached, _ := cache.LoadOrStore(typ, *cfg)
	*cfg = cached.(T)
	return nil
}

// MustLoad is Load panicking on failure, for use at startup.
func MustLoad[T any](cfg *T) {
	if err := Load(cfg); err != nil {
		panic(err)
	}
}
