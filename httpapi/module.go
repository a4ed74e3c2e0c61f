package httpapi

import (
	"fmt"

	"go.uber.org/fx"
)

// NewModule provides the API handler as an http.Handler named name, ready for a
// listener module of the same name.
//
//nolint:ireturn // fx.Option is the standard return type for Fx modules
func NewModule(name string) fx.Option {
	return fx.Module("httpapi",
		fx.Provide(fx.Annotate(
			NewHandler,
			fx.ParamTags("", `optional:"true"`),
			fx.ResultTags(fmt.Sprintf(`name:"%s"`, name)),
		)),
	)
}
