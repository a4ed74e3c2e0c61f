package configdb

import (
	"context"
	"fmt"
	"sort"

	"github.com/0xalexb/hjarta-configdb/loader/filesystem"
	"github.com/0xalexb/hjarta-configdb/loader/memory"
	"github.com/0xalexb/hjarta-configdb/loader/sqlite"
	"github.com/0xalexb/hjarta-configdb/repository"
	"github.com/0xalexb/hjarta-configdb/settings"
)

// NewLoader builds the Loader selected by cfg.Driver and registers cfg.Namespaces on it.
// The returned close function releases the loader resources and is never nil.
//
//nolint:ireturn // the driver decides the concrete loader
func NewLoader(ctx context.Context, cfg settings.Loader) (repository.Loader, func() error, error) {
	var (
		loader      repository.Loader
		closeLoader = func() error { return nil }
	)

	switch cfg.Driver {
	case settings.DriverFile:
		loader = filesystem.New(cfg.Path, filesystem.WithEnvironment(cfg.Environment))
	case settings.DriverMemory:
		loader = memory.New()
	case settings.DriverSQLite:
		var opts []sqlite.Option
		if cfg.Table != "" {
			opts = append(opts, sqlite.WithTable(cfg.Table))
		}

		sqlLoader, err := sqlite.Open(ctx, cfg.DSN, opts...)
		if err != nil {
			return nil, nil, fmt.Errorf("open sqlite loader: %w", err)
		}

		loader = sqlLoader
		closeLoader = sqlLoader.Close
	default:
		return nil, nil, fmt.Errorf("%w: %q", settings.ErrUnknownDriver, cfg.Driver)
	}

	names := make([]string, 0, len(cfg.Namespaces))
	for name := range cfg.Namespaces {
		names = append(names, name)
	}

	sort.Strings(names)

	for _, name := range names {
		loader.AddNamespace(name, cfg.Namespaces[name])
	}

	return loader, closeLoader, nil
}
