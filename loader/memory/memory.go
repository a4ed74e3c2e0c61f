// Package memory provides an in-process repository.Loader.
//
// Groups live in a map keyed by namespace and group name. It is meant for tests,
// for embedding defaults in a binary, and as the "memory" driver of the CLI.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/0xalexb/hjarta-configdb/value"
)

// Option configures a Loader.
type Option func(*Loader)

// WithGroup seeds the content of group in namespace. An empty namespace is the default one.
func WithGroup(namespace, group string, content value.Value) Option {
	return func(l *Loader) {
		l.put(namespace, group, content)
	}
}

// Loader keeps configuration groups in memory. It is safe for concurrent use.
type Loader struct {
	mu     sync.RWMutex
	groups map[string]map[string]value.Value
	hints  map[string]string
}

// New creates a Loader seeded by opts.
func New(opts ...Option) *Loader {
	loader := &Loader{
		mu:     sync.RWMutex{},
		groups: make(map[string]map[string]value.Value),
		hints:  make(map[string]string),
	}

	for _, apply := range opts {
		apply(loader)
	}

	return loader
}

// Load returns the content of group, or Null when nothing was stored.
func (l *Loader) Load(_ context.Context, group, namespace string) (value.Value, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	return l.groups[namespace][group], nil
}

// Save replaces the content of group in the default namespace.
func (l *Loader) Save(_ context.Context, group string, content value.Value) (bool, error) {
	l.put("", group, content)

	return true, nil
}

// Exists reports whether group holds content in namespace.
func (l *Loader) Exists(_ context.Context, group, namespace string) (bool, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	_, ok := l.groups[namespace][group]

	return ok, nil
}

// AddNamespace records namespace and its hint.
func (l *Loader) AddNamespace(namespace, hint string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.hints[namespace] = hint
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

// Hint returns the hint registered for namespace.
func (l *Loader) Hint(namespace string) (string, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	hint, ok := l.hints[namespace]

	return hint, ok
}

func (l *Loader) put(namespace, group string, content value.Value) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.groups[namespace] == nil {
		l.groups[namespace] = make(map[string]value.Value)
	}

	l.groups[namespace][group] = content
}
