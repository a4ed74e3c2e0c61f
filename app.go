// Package configdb assembles the configuration repository, its loader and its HTTP API
// into an Fx application.
package configdb

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/0xalexb/hjarta-configdb/logging"
	"github.com/0xalexb/hjarta-configdb/repository"

	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
)

var errAppNotInitialized = errors.New("app not initialized")

// App is a configured configdb application.
type App struct {
	app *fx.App
}

// NewApp creates a new instance of App with Fx configured.
func NewApp(opts ...Option) *App {
	var options Options

	for _, apply := range opts {
		apply(&options)
	}

	return &App{
		app: configure(&options),
	}
}

func configure(options *Options) *fx.App {
	var output io.Writer = os.Stderr
	if options.LogOutput != nil {
		output = options.LogOutput
	}

	loggerConfig := logging.LoggerConfig{Level: options.LogLevel, Format: options.LogFormat}
	logger := logging.NewLogger(loggerConfig, output)
	slog.SetDefault(logger)

	return fx.New(
		fx.WithLogger(func() fxevent.Logger {
			return &fxevent.SlogLogger{Logger: logger}
		}),
		fx.Supply(loggerConfig),
		fx.Supply(logger),
		repositoryModule(options),
		fx.Options(options.Modules...),
	)
}

// repositoryModule wires the Loader and the Repository when one of them is configured.
// An explicit Loader wins over the settings loader section.
//
//nolint:ireturn // fx.Option is the standard return type for Fx modules
func repositoryModule(options *Options) fx.Option {
	switch {
	case options.Loader != nil:
		return fx.Options(
			fx.Supply(fx.Annotate(options.Loader, fx.As(new(repository.Loader)))),
			repository.NewModule(),
		)
	case options.Settings != nil:
		loaderSettings := options.Settings.Loader

		return fx.Options(
			fx.Provide(func(lifecycle fx.Lifecycle) (repository.Loader, error) {
				loader, closeLoader, err := NewLoader(context.Background(), loaderSettings)
				if err != nil {
					return nil, err
				}

				lifecycle.Append(fx.StopHook(closeLoader))

				return loader, nil
			}),
			repository.NewModule(),
		)
	default:
		return fx.Options()
	}
}

// Start starts the Fx application.
func (app *App) Start() error {
	if app != nil && app.app != nil {
		err := app.app.Start(context.Background())
		if err != nil {
			return fmt.Errorf("failed to start app: %w", err)
		}

		return nil
	}

	return errAppNotInitialized
}

// Run starts the application and blocks until an OS signal is received, then shuts down gracefully.
func (app *App) Run() {
	if app == nil || app.app == nil {
		slog.Error("attempted to run an uninitialized app")

		return
	}

	app.app.Run()
}

// Stop stops the Fx application gracefully.
func (app *App) Stop() error {
	if app != nil && app.app != nil {
		err := app.app.Stop(context.Background())
		if err != nil {
			return fmt.Errorf("failed to stop app: %w", err)
		}

		return nil
	}

	return errAppNotInitialized
}
