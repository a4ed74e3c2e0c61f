package repository

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/0xalexb/hjarta-configdb/key"
	"github.com/0xalexb/hjarta-configdb/value"

	"golang.org/x/sync/singleflight"
)

// ErrNilLoader is returned when a nil Loader is given to New or SetLoader.
var ErrNilLoader = errors.New("loader must not be nil")

// Repository is the configuration accessor. It is safe for concurrent use.
type Repository struct {
	resolver *key.Resolver

	mu     sync.RWMutex
	loader Loader
	items  map[string]value.Value

	loads singleflight.Group
}

// New creates a Repository backed by loader.
func New(loader Loader) (*Repository, error) {
	if loader == nil {
		return nil, ErrNilLoader
	}

	return &Repository{
		resolver: key.NewResolver(),
		mu:       sync.RWMutex{},
		loader:   loader,
		items:    make(map[string]value.Value),
		loads:    singleflight.Group{},
	}, nil
}

// Get returns the value stored under raw, or def when the key does not resolve.
//
// Loader failures are returned unchanged. Invalid keys return key.ErrInvalidKey.
func (r *Repository) Get(ctx context.Context, raw string, def value.Value) (value.Value, error) {
	found, ok, err := r.lookup(ctx, raw)
	if err != nil {
		return value.Null(), err
	}

	if !ok {
		return def, nil
	}

	return found, nil
}

// Has reports whether raw resolves to a value, a present null included.
func (r *Repository) Has(ctx context.Context, raw string) (bool, error) {
	_, ok, err := r.lookup(ctx, raw)

	return ok, err
}

// Lookup returns the value stored under raw and whether it was found.
func (r *Repository) Lookup(ctx context.Context, raw string) (value.Value, bool, error) {
	return r.lookup(ctx, raw)
}

// HasGroup asks the Loader whether the group of raw exists. The cache is not consulted.
func (r *Repository) HasGroup(ctx context.Context, raw string) (bool, error) {
	parsed, err := r.resolver.Parse(raw)
	if err != nil {
		return false, err //nolint:wrapcheck // key errors carry the raw key already
	}

	return r.Loader().Exists(ctx, parsed.Group, parsed.Namespace) //nolint:wrapcheck // loader errors surface unchanged
}

// Set is an alias of Save.
func (r *Repository) Set(ctx context.Context, raw string, content value.Value) (bool, error) {
	return r.Save(ctx, raw, content)
}

// Save hands content to the Loader as the new content of the group of raw.
// The namespace and item of raw are ignored and the cache is left untouched.
func (r *Repository) Save(ctx context.Context, raw string, content value.Value) (bool, error) {
	parsed, err := r.resolver.Parse(raw)
	if err != nil {
		return false, err //nolint:wrapcheck // key errors carry the raw key already
	}

	return r.Loader().Save(ctx, parsed.Group, content) //nolint:wrapcheck // loader errors surface unchanged
}

// AddNamespace registers a namespace with the Loader.
func (r *Repository) AddNamespace(namespace, hint string) {
	r.Loader().AddNamespace(namespace, hint)
}

// Namespaces returns the namespaces registered with the Loader.
func (r *Repository) Namespaces() []string {
	return r.Loader().Namespaces()
}

// Loader returns the current Loader.
func (r *Repository) Loader() Loader { //nolint:ireturn // the loader is an external collaborator
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.loader
}

// SetLoader replaces the Loader. Cached groups stay cached.
func (r *Repository) SetLoader(loader Loader) error {
	if loader == nil {
		return ErrNilLoader
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.loader = loader

	return nil
}

// SetParsedKey overrides how raw is split into namespace, group and item.
// An override with an empty group is rejected with key.ErrInvalidKey.
func (r *Repository) SetParsedKey(raw string, parsed key.Key) error {
	return r.resolver.SetParsed(raw, parsed) //nolint:wrapcheck // key errors carry the raw key already
}

func (r *Repository) lookup(ctx context.Context, raw string) (value.Value, bool, error) {
	parsed, err := r.resolver.Parse(raw)
	if err != nil {
		return value.Null(), false, err //nolint:wrapcheck // key errors carry the raw key already
	}

	group, err := r.ensureLoaded(ctx, parsed.Group, parsed.Namespace, parsed.Collection())
	if err != nil {
		return value.Null(), false, err
	}

	switch {
	case group.IsContainer():
		found, ok := group.Lookup(parsed.Item)

		return found, ok, nil
	case !group.IsNull() && parsed.Item == "":
		return group, true, nil
	default:
		return value.Null(), false, nil
	}
}

// ensureLoaded returns the cached content of collection, loading it first if needed.
// Concurrent first reads of the same collection share a single Load call. The shared
// call is not cancelled with any one caller; each caller stops waiting when its own
// ctx is done.
func (r *Repository) ensureLoaded(ctx context.Context, group, namespace, collection string) (value.Value, error) {
	if cached, ok := r.cached(collection); ok {
		return cached, nil
	}

	loadCtx := context.WithoutCancel(ctx)

	results := r.loads.DoChan(collection, func() (any, error) {
		if cached, ok := r.cached(collection); ok {
			return cached, nil
		}

		content, err := r.Loader().Load(loadCtx, group, namespace)
		if err != nil {
			return nil, err
		}

		r.mu.Lock()
		r.items[collection] = content
		r.mu.Unlock()

		slog.Debug("configuration group loaded",
			slog.String("collection", collection),
			slog.String("kind", content.Kind().String()),
		)

		return content, nil
	})

	select {
	case <-ctx.Done():
		return value.Null(), ctx.Err() //nolint:wrapcheck // the caller's own cancellation
	case result := <-results:
		if result.Err != nil {
			return value.Null(), result.Err //nolint:wrapcheck // loader errors surface unchanged
		}

		content, _ := result.Val.(value.Value)

		return content, nil
	}
}

func (r *Repository) cached(collection string) (value.Value, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	content, ok := r.items[collection]

	return content, ok
}

// Cached reports whether the group named by raw has been loaded.
func (r *Repository) Cached(raw string) bool {
	parsed, err := r.resolver.Parse(raw)
	if err != nil {
		return false
	}

	_, ok := r.cached(parsed.Collection())

	return ok
}
