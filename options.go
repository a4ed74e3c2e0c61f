package configdb

import (
	"io"

	"github.com/0xalexb/hjarta-configdb/httpapi"
	"github.com/0xalexb/hjarta-configdb/listener"
	"github.com/0xalexb/hjarta-configdb/repository"
	"github.com/0xalexb/hjarta-configdb/settings"

	"go.uber.org/fx"
)

// Options holds configuration settings for the application.
type Options struct {
	Modules   []fx.Option
	LogLevel  string
	LogFormat string
	LogOutput io.Writer
	Loader    repository.Loader
	Settings  *settings.Settings
}

// Option defines a function type for applying configuration options.
type Option func(*Options)

// WithModules adds Fx modules to the application.
func WithModules(modules ...fx.Option) Option {
	return func(opts *Options) {
		opts.Modules = append(opts.Modules, modules...)
	}
}

// WithLogLevel sets the log level for the application.
// Valid levels are: "debug", "info", "warn", "error".
// If not set or invalid, defaults to "info".
func WithLogLevel(level string) Option {
	return func(opts *Options) {
		opts.LogLevel = level
	}
}

// WithLogFormat selects "json" (default) or "text" log output.
func WithLogFormat(format string) Option {
	return func(opts *Options) {
		opts.LogFormat = format
	}
}

// WithLogOutput redirects logs, os.Stderr by default.
func WithLogOutput(w io.Writer) Option {
	return func(opts *Options) {
		opts.LogOutput = w
	}
}

// WithLoader provides loader to the container together with a *repository.Repository.
func WithLoader(loader repository.Loader) Option {
	return func(opts *Options) {
		opts.Loader = loader
	}
}

// WithSettings builds the loader from the settings loader section when the app starts
// and takes the log level and format from the settings unless already set.
// The settings are also supplied to the container.
func WithSettings(s *settings.Settings) Option {
	return func(opts *Options) {
		opts.Settings = s

		if opts.LogLevel == "" {
			opts.LogLevel = s.Log.Level
		}

		if opts.LogFormat == "" {
			opts.LogFormat = s.Log.Format
		}

		opts.Modules = append(opts.Modules, fx.Supply(s))
	}
}

// WithAPIListener serves the repository HTTP API on a listener named name.
// Call multiple times with different names to expose the API on several addresses.
func WithAPIListener(name string, opts ...listener.Option) Option {
	return func(o *Options) {
		o.Modules = append(o.Modules, httpapi.NewModule(name), listener.NewModule(name, opts...))
	}
}
