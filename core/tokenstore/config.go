package tokenstore

import "net/http"

// Config provides environment-based configuration for the token store.
type Config struct {
	BaseURL          string        `env:"TOKENSTORE_BASE_URL,required"`
	MainDomain       string        `env:"TOKENSTORE_MAIN_DOMAIN" envDefault:"localhost:3000"`
	ProductionDomain string        `env:"TOKENSTORE_PRODUCTION_DOMAIN" envDefault:""`
	TTLDays          int           `env:"TOKENSTORE_TTL_DAYS" envDefault:"7"`
	SameSite         http.SameSite `env:"TOKENSTORE_SAME_SITE" envDefault:"2"` // SameSiteLaxMode
}

// NewFromConfig creates a Store from configuration. Explicit options are
// applied after config values and take precedence.
func NewFromConfig(cfg Config, opts ...Option) (*Store, error) {
	configOpts := make([]Option, 0, len(opts)+4)

	if cfg.MainDomain != "" {
		configOpts = append(configOpts, WithMainDomain(cfg.MainDomain))
	}
	if cfg.ProductionDomain != "" {
		configOpts = append(configOpts, WithProductionDomain(cfg.ProductionDomain))
	}
	if cfg.TTLDays > 0 {
		configOpts = append(configOpts, WithTTLDays(cfg.TTLDays))
	}
	if cfg.SameSite != 0 {
		configOpts = append(configOpts, WithSameSite(cfg.SameSite))
	}

	configOpts = append(configOpts, opts...)

	return New(cfg.BaseURL, configOpts...)
}
