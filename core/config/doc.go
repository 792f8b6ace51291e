// Package config provides type-safe environment variable loading with
// caching using Go generics. Each configuration type is loaded once and
// cached for subsequent calls.
//
// The package automatically loads .env files on first use and parses
// environment variables into struct fields via caarlos0/env.
//
//	type StoreConfig struct {
//	    BaseURL string `env:"TOKENSTORE_BASE_URL,required"`
//	    TTLDays int    `env:"TOKENSTORE_TTL_DAYS" envDefault:"7"`
//	}
//
//	var cfg StoreConfig
//	if err := config.Load(&cfg); err != nil {
//	    log.Fatal(err)
//	}
//
//	// Or panic on failure (useful at startup)
//	config.MustLoad(&cfg)
package config
