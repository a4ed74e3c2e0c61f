package filesystem

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"

	yamlcodec "github.com/0xalexb/hjarta-configdb/codec/yaml"
	filefetcher "github.com/0xalexb/hjarta-configdb/fetcher/file"
	"github.com/0xalexb/hjarta-configdb/value"
)

const (
	dirPermissions  = 0o750
	filePermissions = 0o600
)

var (
	// ErrInvalidGroup is returned when a group name would escape its directory.
	ErrInvalidGroup = errors.New("invalid group name")

	// ErrEnvironmentSave is returned by Save on a Loader with an environment overlay.
	ErrEnvironmentSave = errors.New("save is not supported with an environment overlay")
)

//nolint:gochecknoglobals // lookup order of group files.
var extensions = []string{".yaml", ".yml", ".json"}

// Option configures a Loader.
type Option func(*Loader)

// WithEnvironment overlays <dir>/<environment>/<group> files on top of the base files.
func WithEnvironment(environment string) Option {
	return func(l *Loader) {
		l.environment = environment
	}
}

// Loader loads configuration groups from YAML files. It is safe for concurrent use.
type Loader struct {
	dir         string
	environment string
	codec       *yamlcodec.Parser

	mu    sync.RWMutex
	hints map[string]string
}

// New creates a Loader rooted at dir.
func New(dir string, opts ...Option) *Loader {
	loader := &Loader{
		dir:         filepath.Clean(dir),
		environment: "",
		codec:       yamlcodec.NewParser(),
		mu:          sync.RWMutex{},
		hints:       make(map[string]string),
	}

	for _, apply := range opts {
		apply(loader)
	}

	return loader
}

// Dir returns the directory of the default namespace.
func (l *Loader) Dir() string {
	return l.dir
}

// Load reads and decodes the file of group, merging the environment overlay if any.
func (l *Loader) Load(_ context.Context, group, namespace string) (value.Value, error) {
	dir, ok := l.directory(namespace)
	if !ok {
		return value.Null(), nil
	}

	content, err := l.read(dir, group)
	if err != nil {
		return value.Null(), err
	}

	if l.environment == "" {
		return content, nil
	}

	overlay, err := l.read(filepath.Join(dir, l.environment), group)
	if err != nil {
		return value.Null(), err
	}

	return value.Merge(content, overlay), nil
}

// Save writes content as the YAML file of group in the default directory.
// A Loader with an environment overlay refuses to save with ErrEnvironmentSave, since
// the overlay would be merged over the written content on the next load.
func (l *Loader) Save(_ context.Context, group string, content value.Value) (bool, error) {
	if l.environment != "" {
		return false, fmt.Errorf("%w: group %q, environment %q", ErrEnvironmentSave, group, l.environment)
	}

	err := validateGroup(group)
	if err != nil {
		return false, err
	}

	data, err := l.codec.Encode(content)
	if err != nil {
		return false, fmt.Errorf("saving group %q: %w", group, err)
	}

	err = os.MkdirAll(l.dir, dirPermissions)
	if err != nil {
		return false, fmt.Errorf("creating directory %q: %w", l.dir, err)
	}

	target := filepath.Join(l.dir, group+extensions[0])

	err = writeAtomic(target, data)
	if err != nil {
		return false, err
	}

	slog.Debug("configuration group saved", slog.String("group", group), slog.String("path", target))

	return true, nil
}

// Exists reports whether a file for group exists in the directory of namespace.
func (l *Loader) Exists(_ context.Context, group, namespace string) (bool, error) {
	dir, ok := l.directory(namespace)
	if !ok {
		return false, nil
	}

	err := validateGroup(group)
	if err != nil {
		return false, err
	}

	for _, ext := range extensions {
		stat, statErr := os.Stat(filepath.Join(dir, group+ext))
		if statErr == nil && !stat.IsDir() {
			return true, nil
		}

		if statErr != nil && !filefetcher.IsNotExist(statErr) {
			return false, fmt.Errorf("checking group %q: %w", group, statErr)
		}
	}

	return false, nil
}

// AddNamespace registers hint as the directory of namespace.
func (l *Loader) AddNamespace(namespace, hint string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.hints[namespace] = filepath.Clean(hint)
}

// Namespaces returns the registered namespaces in sorted order.
func (l *Loader) Namespaces() []string {
	l.mu.RLock()
	defer l.mu.RUnlock()

	names := make([]string, 0, len(l.hints))
	for name := range l.hints {
		names = append(names, name)
	}

	sort.Strings(names)

	return names
}

func (l *Loader) directory(namespace string) (string, bool) {
	if namespace == "" {
		return l.dir, true
	}

	l.mu.RLock()
	defer l.mu.RUnlock()

	dir, ok := l.hints[namespace]

	return dir, ok
}

// read decodes the first existing file of group in dir. No file yields Null.
func (l *Loader) read(dir, group string) (value.Value, error) {
	err := validateGroup(group)
	if err != nil {
		return value.Null(), err
	}

	for _, ext := range extensions {
		fetcher, err := filefetcher.NewFetcher(filepath.Join(dir, group+ext))()
		if filefetcher.IsNotExist(err) {
			continue
		}

		if err != nil {
			return value.Null(), fmt.Errorf("loading group %q: %w", group, err)
		}

		data, err := fetcher.Fetch()
		if err != nil {
			return value.Null(), fmt.Errorf("loading group %q: %w", group, err)
		}

		content, err := l.codec.Decode(data)
		if err != nil {
			return value.Null(), fmt.Errorf("loading group %q from %s: %w", group, fetcher.Path(), err)
		}

		return content, nil
	}

	return value.Null(), nil
}

func validateGroup(group string) error {
	if group == "" || group == "." || group == ".." || filepath.Base(group) != group {
		return fmt.Errorf("%w: %q", ErrInvalidGroup, group)
	}

	return nil
}

func writeAtomic(target string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(target), "."+filepath.Base(target)+".*")
	if err != nil {
		return fmt.Errorf("creating temporary file for %q: %w", target, err)
	}

	tmpName := tmp.Name()

	_, err = tmp.Write(data)
	if err == nil {
		err = tmp.Chmod(filePermissions)
	}

	closeErr := tmp.Close()
	if err == nil {
		err = closeErr
	}

	if err != nil {
		_ = os.Remove(tmpName)

		return fmt.Errorf("writing %q: %w", target, err)
	}

	err = os.Rename(tmpName, target)
	if err != nil {
		_ = os.Remove(tmpName)

		return fmt.Errorf("replacing %q: %w", target, err)
	}

	return nil
}
