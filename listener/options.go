package listener

import "time"

// Option defines a function type for configuring an HTTP listener.
type Option func(*Config)

// WithAddress sets the address for the HTTP listener.
func WithAddress(addr string) Option {
	return func(cfg *Config) {
		cfg.Address = addr
	}
}

// WithTimeouts sets the read, write and idle timeouts. Zero keeps the default.
func WithTimeouts(read, write, idle time.Duration) Option {
	return func(cfg *Config) {
		cfg.ReadTimeout = read
		cfg.WriteTimeout = write
		cfg.IdleTimeout = idle
	}
}
