package key

import (
	"errors"
	"fmt"
	"strings"
	"sync"
)

const (
	// NamespaceSeparator separates the namespace from the rest of the key.
	NamespaceSeparator = "::"

	// ItemSeparator separates the group from the item and the item's segments.
	ItemSeparator = "."

	// Wildcard is the collection namespace used when a key carries no namespace.
	Wildcard = "*"
)

// ErrInvalidKey is returned when a key has an empty group or an empty namespace.
var ErrInvalidKey = errors.New("invalid key")

// Key is a parsed configuration key.
type Key struct {
	Namespace string
	Group     string
	Item      string
}

// Collection returns the cache identifier of the key's group: "{namespace|*}::{group}".
func (k Key) Collection() string {
	return Collection(k.Group, k.Namespace)
}

// String reassembles the key in its canonical raw form.
func (k Key) String() string {
	var builder strings.Builder

	if k.Namespace != "" {
		builder.WriteString(k.Namespace)
		builder.WriteString(NamespaceSeparator)
	}

	builder.WriteString(k.Group)

	if k.Item != "" {
		builder.WriteString(ItemSeparator)
		builder.WriteString(k.Item)
	}

	return builder.String()
}

// Collection builds the cache identifier for a group within a namespace.
// An empty namespace maps to the Wildcard.
func Collection(group, namespace string) string {
	if namespace == "" {
		namespace = Wildcard
	}

	return namespace + NamespaceSeparator + group
}

// Parse splits a raw key into namespace, group and item.
func Parse(raw string) (Key, error) {
	var parsed Key

	remainder := raw

	if namespace, rest, found := strings.Cut(raw, NamespaceSeparator); found {
		if namespace == "" {
			return Key{}, fmt.Errorf("%w: empty namespace in %q", ErrInvalidKey, raw)
		}

		parsed.Namespace = namespace
		remainder = rest
	}

	parsed.Group, parsed.Item, _ = strings.Cut(remainder, ItemSeparator)

	if parsed.Group == "" {
		return Key{}, fmt.Errorf("%w: empty group in %q", ErrInvalidKey, raw)
	}

	return parsed, nil
}

// Resolver parses keys, honouring per-key overrides registered with SetParsed.
// Only overrides are stored. It is safe for concurrent use. The zero value is ready to use.
type Resolver struct {
	mu        sync.RWMutex
	overrides map[string]Key
}

// NewResolver creates a Resolver without overrides.
func NewResolver() *Resolver {
	return &Resolver{
		mu:        sync.RWMutex{},
		overrides: make(map[string]Key),
	}
}

// Parse returns the override registered for raw, or the result of Parse.
func (r *Resolver) Parse(raw string) (Key, error) {
	r.mu.RLock()
	override, ok := r.overrides[raw]
	r.mu.RUnlock()

	if ok {
		return override, nil
	}

	return Parse(raw)
}

// SetParsed registers parsed as the result for raw. An empty group is rejected.
func (r *Resolver) SetParsed(raw string, parsed Key) error {
	if parsed.Group == "" {
		return fmt.Errorf("%w: empty group in override of %q", ErrInvalidKey, raw)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.overrides == nil {
		r.overrides = make(map[string]Key)
	}

	r.overrides[raw] = parsed

	return nil
}
