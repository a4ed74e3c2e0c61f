package repository

import "go.uber.org/fx"

// NewModule creates an Fx module that provides a *Repository.
// A Loader must be provided to the container, for example with fx.Annotate and fx.As.
//
//nolint:ireturn // fx.Option is the standard return type for Fx modules
func NewModule() fx.Option {
	return fx.Module("repository", fx.Provide(New))
}
