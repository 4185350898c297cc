package config

import "context"

type ctxKey struct{}

// WithConfig attaches cfg to the context.
func WithConfig(ctx context.Context, cfg *Config) context.Context {
	return context.WithValue(ctx, ctxKey{}, cfg)
}

// FromContext returns the attached config, or the defaults if none is set.
func FromContext(ctx context.Context) *Config {
	if cfg, ok := ctx.Value(ctxKey{}).(*Config); ok && cfg != nil {
		return cfg
	}
	cfg := Default()
	return &cfg
}
