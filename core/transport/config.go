package transport

import "github.com/tenantkit/tenantkit/core/session"

// Config provides environment-based configuration for the request pipeline.
type Config struct {
	LoginURL          string `env:"TRANSPORT_LOGIN_URL" envDefault:""`
	AuthPathPrefix    string `env:"TRANSPORT_AUTH_PATH_PREFIX" envDefault:"/auth"`
	MaxNetworkRetries int    `env:"TRANSPORT_MAX_NETWORK_RETRIES" envDefault:"3"`
}

// NewFromConfig creates a Pipeline from configuration. Explicit options are
// applied after config values and take precedence.
func NewFromConfig(cfg Config, sess *session.Manager, refresher Refresher, opts ...Option) *Pipeline {
	configOpts := make([]Option, 0, len(opts)+3)

	if cfg.LoginURL != "" {
		configOpts = append(configOpts, WithLoginURL(cfg.LoginURL))
	}
	if cfg.AuthPathPrefix != "" {
		configOpts = append(configOpts, WithAuthPathPrefix(cfg.AuthPathPrefix))
	}
	if cfg.MaxNetworkRetries >= 0 {
		configOpts = append(configOpts, WithMaxNetworkRetries(cfg.MaxNetworkRetries))
	}

	configOpts = append(configOpts, opts...)

	return New(sess, refresher, configOpts...)
}
