// Package repository resolves namespaced configuration keys against a pluggable Loader.
//
// A Repository parses keys of the form "namespace::group.item", loads each group
// through its Loader the first time any key of the group is read, and serves later
// reads from an in-memory cache keyed by collection ("{namespace|*}::{group}").
//
//	repo, err := repository.New(filesystem.New("/etc/app/config"))
//	host, err := repo.Get(ctx, "app.db.host", value.Scalar("localhost"))
//
// # Known limitations
//
// The cache is unbounded and never invalidated. Neither Save nor SetLoader touch it:
// a read of an already cached group keeps returning the snapshot taken at first load,
// even after a successful Save or after switching loaders.
package repository
