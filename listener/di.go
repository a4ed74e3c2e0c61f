package listener

import (
	"fmt"
	"log/slog"
	"net/http"

	"go.uber.org/fx"
)

// NewModule creates an Fx module for a named HTTP listener.
// The name is the module name and the DI name tag for the http.Handler and Config it
// consumes and the *Server it provides. With options the module supplies Config itself,
// otherwise Config must be provided externally. A *slog.Logger is used when present.
//
//nolint:ireturn // fx.Option is the standard return type for Fx modules
func NewModule(name string, opts ...Option) fx.Option {
	if name == "" {
		return fx.Error(ErrEmptyName)
	}

	tag := fmt.Sprintf(`name:"%s"`, name)

	var moduleOpts []fx.Option

	if len(opts) > 0 {
		var cfg Config

		for _, apply := range opts {
			apply(&cfg)
		}

		moduleOpts = append(moduleOpts, fx.Supply(fx.Annotate(cfg, fx.ResultTags(tag))))
	}

	moduleOpts = append(moduleOpts,
		fx.Provide(fx.Annotate(
			func(
				lifecycle fx.Lifecycle,
				shutdowner fx.Shutdowner,
				handler http.Handler,
				cfg Config,
				logger *slog.Logger,
			) (*Server, error) {
				srv, err := NewServer(name, handler, cfg, logger, func() {
					shutdownErr := shutdowner.Shutdown()
					if shutdownErr != nil {
						slog.Error("failed to trigger shutdown", "listener", name, "error", shutdownErr)
					}
				})
				if err != nil {
					return nil, err
				}

				lifecycle.Append(fx.Hook{
					OnStart: srv.Start,
					OnStop:  srv.Stop,
				})

				return srv, nil
			},
			fx.ParamTags("", "", tag, tag, `optional:"true"`),
			fx.ResultTags(tag),
		)),
		fx.Invoke(fx.Annotate(func(*Server) {}, fx.ParamTags(tag))),
	)

	return fx.Module(name, moduleOpts...)
}
