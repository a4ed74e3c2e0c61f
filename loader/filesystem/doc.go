// Package filesystem provides a repository.Loader over YAML files on disk.
//
// Each group is one file. Groups of the default namespace live in the loader's
// directory; a namespace is registered with AddNamespace, its hint being the
// directory that holds its groups:
//
//	loader := filesystem.New("/etc/app/config", filesystem.WithEnvironment("production"))
//	loader.AddNamespace("billing", "/opt/billing/config")
//
//	// "app.db.host"          -> /etc/app/config/app.yaml
//	// "billing::rates.eur"   -> /opt/billing/config/rates.yaml
//
// The extensions .yaml, .yml and .json are tried in that order. With an environment
// set, <dir>/<environment>/<group>.yaml is merged over the base file.
//
// Missing files and unknown namespaces load as Null. Save only writes to the default
// directory, through a temporary file renamed into place. A Loader with an environment
// is read-only: Save returns ErrEnvironmentSave.
package filesystem
