package authapi

// Config provides environment-based configuration for the auth API client.
type Config struct {
	BaseURL string `env:"AUTHAPI_BASE_URL,required"`
}

// NewFromConfig creates a Client from configuration.
func NewFromConfig(cfg Config, opts ...Option) (*Client, error) {
	return New(cfg.BaseURL, opts...)
}
