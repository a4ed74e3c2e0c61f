package repository_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/0xalexb/hjarta-configdb/key"
	"github.com/0xalexb/hjarta-configdb/repository"
	"github.com/0xalexb/hjarta-configdb/value"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type loadCall struct {
	group     string
	namespace string
}

type saveCall struct {
	group   string
	content value.Value
}

type mockLoader struct {
	mu sync.Mutex

	loadFunc   func(group, namespace string) (value.Value, error)
	saveFunc   func(group string, content value.Value) (bool, error)
	existsFunc func(group, namespace string) (bool, error)

	loads      []loadCall
	saves      []saveCall
	exists     []loadCall
	namespaces map[string]string
}

func (m *mockLoader) Load(_ context.Context, group, namespace string) (value.Value, error) {
	m.mu.Lock()
	m.loads = append(m.loads, loadCall{group: group, namespace: namespace})
	m.mu.Unlock()

	if m.loadFunc == nil {
		return value.Null(), nil
	}

	return m.loadFunc(group, namespace)
}

func (m *mockLoader) Save(_ context.Context, group string, content value.Value) (bool, error) {
	m.mu.Lock()
	m.saves = append(m.saves, saveCall{group: group, content: content})
	m.mu.Unlock()

	if m.saveFunc == nil {
		return true, nil
	}

	return m.saveFunc(group, content)
}

func (m *mockLoader) Exists(_ context.Context, group, namespace string) (bool, error) {
	m.mu.Lock()
	m.exists = append(m.exists, loadCall{group: group, namespace: namespace})
	m.mu.Unlock()

	if m.existsFunc == nil {
		return false, nil
	}

	return m.existsFunc(group, namespace)
}

func (m *mockLoader) AddNamespace(namespace, hint string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.namespaces == nil {
		m.namespaces = make(map[string]string)
	}

	m.namespaces[namespace] = hint
}

func (m *mockLoader) Namespaces() []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	names := make([]string, 0, len(m.namespaces))
	for name := range m.namespaces {
		names = append(names, name)
	}

	return names
}

func (m *mockLoader) loadCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	return len(m.loads)
}

func appLoader() *mockLoader {
	return &mockLoader{
		loadFunc: func(group, namespace string) (value.Value, error) {
			if group == "app" && namespace == "" {
				return value.FromAny(map[string]any{
					"debug": true,
					"db":    map[string]any{"host": "localhost"},
				}), nil
			}

			return value.Null(), nil
		},
	}
}

func newRepository(t *testing.T, loader repository.Loader) *repository.Repository {
	t.Helper()

	repo, err := repository.New(loader)
	require.NoError(t, err)

	return repo
}

func TestNew_NilLoader(t *testing.T) {
	t.Parallel()

	repo, err := repository.New(nil)
	require.ErrorIs(t, err, repository.ErrNilLoader)
	assert.Nil(t, repo)
}

func TestRepository_Get(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := newRepository(t, appLoader())

	host, err := repo.Get(ctx, "app.db.host", value.Null())
	require.NoError(t, err)
	assert.Equal(t, "localhost", host.Interface())

	missing, err := repo.Get(ctx, "app.missing", value.Scalar("X"))
	require.NoError(t, err)
	assert.Equal(t, "X", missing.Interface())

	whole, err := repo.Get(ctx, "app", value.Null())
	require.NoError(t, err)
	assert.Equal(t, map[string]any{
		"debug": true,
		"db":    map[string]any{"host": "localhost"},
	}, whole.Interface())

	has, err := repo.Has(ctx, "app.debug")
	require.NoError(t, err)
	assert.True(t, has)
}

func TestRepository_Get_GroupShapes(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name     string
		content  value.Value
		key      string
		expected any
		has      bool
	}{
		{name: "scalar without item", content: value.Scalar("on"), key: "flag", expected: "on", has: true},
		{name: "scalar with item", content: value.Scalar("on"), key: "flag.sub", expected: "default", has: false},
		{name: "null group", content: value.Null(), key: "flag", expected: "default", has: false},
		{name: "null group with item", content: value.Null(), key: "flag.sub", expected: "default", has: false},
		{
			name:     "list by index",
			content:  value.FromAny([]any{"a", "b"}),
			key:      "flag.1",
			expected: "b",
			has:      true,
		},
		{
			name:     "empty map group",
			content:  value.Map(nil),
			key:      "flag",
			expected: map[string]any{},
			has:      true,
		},
		{
			name:     "present null item",
			content:  value.FromAny(map[string]any{"off": nil}),
			key:      "flag.off",
			expected: nil,
			has:      true,
		},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			ctx := context.Background()
			repo := newRepository(t, &mockLoader{
				loadFunc: func(_, _ string) (value.Value, error) {
					return testCase.content, nil
				},
			})

			got, err := repo.Get(ctx, testCase.key, value.Scalar("default"))
			require.NoError(t, err)
			assert.Equal(t, testCase.expected, got.Interface())

			has, err := repo.Has(ctx, testCase.key)
			require.NoError(t, err)
			assert.Equal(t, testCase.has, has)
		})
	}
}

func TestRepository_Has_DefaultNeverCollides(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := newRepository(t, &mockLoader{
		loadFunc: func(_, _ string) (value.Value, error) {
			return value.FromAny(map[string]any{"stamp": "sentinel"}), nil
		},
	})

	stored, err := repo.Get(ctx, "app.stamp", value.Scalar("sentinel"))
	require.NoError(t, err)
	assert.Equal(t, "sentinel", stored.Interface())

	has, err := repo.Has(ctx, "app.stamp")
	require.NoError(t, err)
	assert.True(t, has, "a stored value equal to a caller default is still present")

	has, err = repo.Has(ctx, "app.other")
	require.NoError(t, err)
	assert.False(t, has)
}

func TestRepository_Get_LoadsEachCollectionOnce(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	loader := appLoader()
	repo := newRepository(t, loader)

	for _, raw := range []string{"app.debug", "app.db.host", "app", "app.missing"} {
		_, err := repo.Get(ctx, raw, value.Null())
		require.NoError(t, err)
	}

	_, err := repo.Has(ctx, "app.debug")
	require.NoError(t, err)

	assert.Equal(t, 1, loader.loadCount())
	assert.Equal(t, []loadCall{{group: "app", namespace: ""}}, loader.loads)
	assert.True(t, repo.Cached("app.anything"))
	assert.False(t, repo.Cached("other"))
}

func TestRepository_Get_NamespacesAreSeparateCollections(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	loader := &mockLoader{
		loadFunc: func(_, namespace string) (value.Value, error) {
			return value.FromAny(map[string]any{"origin": namespace}), nil
		},
	}
	repo := newRepository(t, loader)

	plain, err := repo.Get(ctx, "app.origin", value.Null())
	require.NoError(t, err)
	assert.Equal(t, "", plain.Interface())

	namespaced, err := repo.Get(ctx, "pkg::app.origin", value.Null())
	require.NoError(t, err)
	assert.Equal(t, "pkg", namespaced.Interface())

	assert.Equal(t, []loadCall{
		{group: "app", namespace: ""},
		{group: "app", namespace: "pkg"},
	}, loader.loads)
}

func TestRepository_Get_CachesNullGroups(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	loader := &mockLoader{}
	repo := newRepository(t, loader)

	for range 3 {
		got, err := repo.Get(ctx, "absent.item", value.Scalar(1))
		require.NoError(t, err)
		assert.Equal(t, int64(1), got.Interface())
	}

	assert.Equal(t, 1, loader.loadCount())
}

func TestRepository_Get_LoaderErrorPropagatesUnchanged(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	loadErr := errors.New("disk on fire")

	var fail atomic.Bool

	fail.Store(true)

	loader := &mockLoader{
		loadFunc: func(_, _ string) (value.Value, error) {
			if fail.Load() {
				return value.Null(), loadErr
			}

			return value.Scalar("recovered"), nil
		},
	}
	repo := newRepository(t, loader)

	_, err := repo.Get(ctx, "app", value.Null())
	require.Error(t, err)
	assert.Same(t, loadErr, err, "loader errors must not be wrapped")

	_, err = repo.Has(ctx, "app")
	assert.Same(t, loadErr, err)

	fail.Store(false)

	got, err := repo.Get(ctx, "app", value.Null())
	require.NoError(t, err)
	assert.Equal(t, "recovered", got.Interface(), "failed loads are not cached")
	assert.Equal(t, 3, loader.loadCount())
}

func TestRepository_InvalidKey(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	loader := appLoader()
	repo := newRepository(t, loader)

	_, err := repo.Get(ctx, "::app", value.Null())
	require.ErrorIs(t, err, key.ErrInvalidKey)

	_, err = repo.Has(ctx, ".debug")
	require.ErrorIs(t, err, key.ErrInvalidKey)

	_, err = repo.HasGroup(ctx, "")
	require.ErrorIs(t, err, key.ErrInvalidKey)

	_, err = repo.Save(ctx, "ns::", value.Null())
	require.ErrorIs(t, err, key.ErrInvalidKey)

	assert.Zero(t, loader.loadCount())
	assert.Empty(t, loader.saves)
	assert.Empty(t, loader.exists)
}

func TestRepository_HasGroup(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	loader := &mockLoader{
		existsFunc: func(group, namespace string) (bool, error) {
			return group == "group" && namespace == "ns", nil
		},
	}
	repo := newRepository(t, loader)

	exists, err := repo.HasGroup(ctx, "ns::group")
	require.NoError(t, err)
	assert.True(t, exists)

	_, err = repo.Get(ctx, "ns::group.item", value.Null())
	require.NoError(t, err)

	exists, err = repo.HasGroup(ctx, "ns::group.item")
	require.NoError(t, err)
	assert.True(t, exists, "cache state does not matter")

	exists, err = repo.HasGroup(ctx, "group")
	require.NoError(t, err)
	assert.False(t, exists)

	assert.Equal(t, []loadCall{
		{group: "group", namespace: "ns"},
		{group: "group", namespace: "ns"},
		{group: "group", namespace: ""},
	}, loader.exists)
}

func TestRepository_HasGroup_LoaderError(t *testing.T) {
	t.Parallel()

	existsErr := errors.New("unreachable")
	repo := newRepository(t, &mockLoader{
		existsFunc: func(_, _ string) (bool, error) {
			return false, existsErr
		},
	})

	_, err := repo.HasGroup(context.Background(), "app")
	assert.Same(t, existsErr, err)
}

func TestRepository_Save(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name   string
		result bool
	}{
		{name: "loader accepts", result: true},
		{name: "loader refuses", result: false},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			loader := &mockLoader{
				saveFunc: func(_ string, _ value.Value) (bool, error) {
					return testCase.result, nil
				},
			}
			repo := newRepository(t, loader)

			saved, err := repo.Save(context.Background(), "pkg::app.db.host", value.Scalar("db.local"))
			require.NoError(t, err)
			assert.Equal(t, testCase.result, saved)

			saved, err = repo.Set(context.Background(), "app", value.Scalar(false))
			require.NoError(t, err)
			assert.Equal(t, testCase.result, saved)

			require.Len(t, loader.saves, 2)
			assert.Equal(t, "app", loader.saves[0].group, "namespace and item are dropped")
			assert.Equal(t, "db.local", loader.saves[0].content.Interface())
			assert.Equal(t, "app", loader.saves[1].group)
			assert.Equal(t, false, loader.saves[1].content.Interface())
		})
	}
}

func TestRepository_Save_LoaderError(t *testing.T) {
	t.Parallel()

	saveErr := errors.New("read only")
	repo := newRepository(t, &mockLoader{
		saveFunc: func(_ string, _ value.Value) (bool, error) {
			return false, saveErr
		},
	})

	saved, err := repo.Save(context.Background(), "app", value.Null())
	assert.False(t, saved)
	assert.Same(t, saveErr, err)
}

func TestRepository_Save_LeavesCacheStale(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	loader := appLoader()
	repo := newRepository(t, loader)

	before, err := repo.Get(ctx, "app.debug", value.Null())
	require.NoError(t, err)
	assert.Equal(t, true, before.Interface())

	saved, err := repo.Save(ctx, "app.debug", value.Scalar(false))
	require.NoError(t, err)
	assert.True(t, saved)

	after, err := repo.Get(ctx, "app.debug", value.Null())
	require.NoError(t, err)
	assert.Equal(t, true, after.Interface(), "cached snapshot is kept after save")
	assert.Equal(t, 1, loader.loadCount())
}

func TestRepository_SetLoader_KeepsCache(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	first := appLoader()
	repo := newRepository(t, first)

	_, err := repo.Get(ctx, "app.debug", value.Null())
	require.NoError(t, err)

	second := &mockLoader{
		loadFunc: func(_, _ string) (value.Value, error) {
			return value.FromAny(map[string]any{"debug": false, "fresh": true}), nil
		},
	}

	require.NoError(t, repo.SetLoader(second))
	assert.Same(t, second, repo.Loader())

	stale, err := repo.Get(ctx, "app.debug", value.Null())
	require.NoError(t, err)
	assert.Equal(t, true, stale.Interface(), "entries from the previous loader remain visible")

	fresh, err := repo.Get(ctx, "other.fresh", value.Null())
	require.NoError(t, err)
	assert.Equal(t, true, fresh.Interface())

	assert.Equal(t, 1, first.loadCount())
	assert.Equal(t, 1, second.loadCount())

	require.ErrorIs(t, repo.SetLoader(nil), repository.ErrNilLoader)
	assert.Same(t, second, repo.Loader())
}

func TestRepository_Namespaces(t *testing.T) {
	t.Parallel()

	loader := &mockLoader{}
	repo := newRepository(t, loader)

	repo.AddNamespace("pkg", "/path/hint")

	assert.Equal(t, map[string]string{"pkg": "/path/hint"}, loader.namespaces)
	assert.Equal(t, []string{"pkg"}, repo.Namespaces())
}

func TestRepository_SetParsedKey(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	loader := &mockLoader{
		loadFunc: func(group, namespace string) (value.Value, error) {
			return value.FromAny(map[string]any{"from": namespace + "/" + group}), nil
		},
	}
	repo := newRepository(t, loader)

	require.NoError(t, repo.SetParsedKey("shortcut", key.Key{Namespace: "vendor", Group: "settings", Item: "from"}))

	got, err := repo.Get(ctx, "shortcut", value.Null())
	require.NoError(t, err)
	assert.Equal(t, "vendor/settings", got.Interface())
}

func TestRepository_SetParsedKey_EmptyGroup(t *testing.T) {
	t.Parallel()

	loader := &mockLoader{}
	repo := newRepository(t, loader)

	err := repo.SetParsedKey("shortcut", key.Key{Namespace: "vendor"})
	require.ErrorIs(t, err, key.ErrInvalidKey)

	_, err = repo.Get(context.Background(), "shortcut", value.Null())
	require.NoError(t, err)
	assert.Equal(t, []loadCall{{group: "shortcut", namespace: ""}}, loader.loads)
}

// contextLoader blocks Load until release is closed or the load context is done.
type contextLoader struct {
	*mockLoader

	started chan struct{}
	release chan struct{}
	once    sync.Once
}

func (l *contextLoader) Load(ctx context.Context, group, namespace string) (value.Value, error) {
	l.once.Do(func() { close(l.started) })

	select {
	case <-ctx.Done():
		return value.Null(), ctx.Err()
	case <-l.release:
		return l.mockLoader.Load(ctx, group, namespace)
	}
}

func TestRepository_CancelledCallerDoesNotFailSharedLoad(t *testing.T) {
	t.Parallel()

	loader := &contextLoader{
		mockLoader: &mockLoader{
			loadFunc: func(_, _ string) (value.Value, error) {
				return value.FromAny(map[string]any{"debug": true}), nil
			},
		},
		started: make(chan struct{}),
		release: make(chan struct{}),
	}
	repo := newRepository(t, loader)

	cancelCtx, cancel := context.WithCancel(context.Background())

	firstErr := make(chan error, 1)

	go func() {
		_, err := repo.Get(cancelCtx, "app.debug", value.Null())
		firstErr <- err
	}()

	<-loader.started

	type result struct {
		got value.Value
		err error
	}

	second := make(chan result, 1)

	go func() {
		got, err := repo.Get(context.Background(), "app.debug", value.Null())
		second <- result{got: got, err: err}
	}()

	cancel()
	require.ErrorIs(t, <-firstErr, context.Canceled)

	close(loader.release)

	res := <-second
	require.NoError(t, res.err)
	assert.Equal(t, true, res.got.Interface())
	assert.Equal(t, 1, loader.loadCount())
	assert.True(t, repo.Cached("app"))
}

func TestRepository_CancelledContextBeforeLoad(t *testing.T) {
	t.Parallel()

	loader := &contextLoader{
		mockLoader: &mockLoader{},
		started:    make(chan struct{}),
		release:    make(chan struct{}),
	}
	repo := newRepository(t, loader)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := repo.Get(ctx, "app.debug", value.Null())
	require.ErrorIs(t, err, context.Canceled)

	close(loader.release)
}

func TestRepository_ConcurrentFirstAccessLoadsOnce(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	release := make(chan struct{})
	loader := &mockLoader{
		loadFunc: func(_, _ string) (value.Value, error) {
			<-release

			return value.FromAny(map[string]any{"debug": true}), nil
		},
	}
	repo := newRepository(t, loader)

	const readers = 16

	var wg sync.WaitGroup

	results := make(chan value.Value, readers)

	for range readers {
		wg.Add(1)

		go func() {
			defer wg.Done()

			got, err := repo.Get(ctx, "app.debug", value.Null())
			if err == nil {
				results <- got
			}
		}()
	}

	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()
	close(results)

	count := 0

	for got := range results {
		assert.Equal(t, true, got.Interface())

		count++
	}

	assert.Equal(t, readers, count)
	assert.Equal(t, 1, loader.loadCount())
}
