package repository

import (
	"context"

	"github.com/0xalexb/hjarta-configdb/value"
)

// Loader loads and persists configuration groups.
//
// An empty namespace means the key carried no namespace. Load may return a Null
// Value for a group that has no content.
type Loader interface {
	Load(ctx context.Context, group, namespace string) (value.Value, error)
	Save(ctx context.Context, group string, content value.Value) (bool, error)
	Exists(ctx context.Context, group, namespace string) (bool, error)
	AddNamespace(namespace, hint string)
	Namespaces() []string
}
