// Package listener runs the HTTP surfaces of configdb as Fx lifecycle-managed servers.
package listener

import (
	"errors"
	"time"
)

// Defaults applied by Config.SetDefaults.
const (
	DefaultAddress      = ":8080"
	DefaultReadTimeout  = 30 * time.Second
	DefaultWriteTimeout = 30 * time.Second
	DefaultIdleTimeout  = 2 * time.Minute
)

// ErrEmptyAddress is returned when the address is empty.
var ErrEmptyAddress = errors.New("address must not be empty")

// ErrNegativeTimeout is returned when a timeout is below zero.
var ErrNegativeTimeout = errors.New("timeout must not be negative")

// ErrListenFailed is returned when the server fails to listen on the configured address.
var ErrListenFailed = errors.New("failed to listen")

// ErrShutdownFailed is returned when the server fails to shut down gracefully.
var ErrShutdownFailed = errors.New("shutdown failed")

// ErrEmptyName is returned when the listener name is empty.
var ErrEmptyName = errors.New("listener name must not be empty")

// ErrNilHandler is returned when a nil http.Handler is provided.
var ErrNilHandler = errors.New("handler must not be nil")

// Config holds the configuration for an HTTP listener.
type Config struct {
	Address      string        `yaml:"address"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
	IdleTimeout  time.Duration `yaml:"idle_timeout"`
}

// SetDefaults fills zero fields.
func (c *Config) SetDefaults() {
	if c.Address == "" {
		c.Address = DefaultAddress
	}

	if c.ReadTimeout == 0 {
		c.ReadTimeout = DefaultReadTimeout
	}

	if c.WriteTimeout == 0 {
		c.WriteTimeout = DefaultWriteTimeout
	}

	if c.IdleTimeout == 0 {
		c.IdleTimeout = DefaultIdleTimeout
	}
}

// Validate validates the Config.
func (c *Config) Validate() error {
	if c.Address == "" {
		return ErrEmptyAddress
	}

	if c.ReadTimeout < 0 || c.WriteTimeout < 0 || c.IdleTimeout < 0 {
		return ErrNegativeTimeout
	}

	return nil
}
