// Package sqlite provides a repository.Loader that stores configuration groups in a
// SQLite database, using the pure Go modernc.org/sqlite driver.
//
// Every group is one row of the groups table, its content encoded as JSON:
//
//	CREATE TABLE config_groups (
//	    namespace  TEXT NOT NULL,
//	    name       TEXT NOT NULL,
//	    content    TEXT NOT NULL,
//	    updated_at TEXT NOT NULL,
//	    PRIMARY KEY (namespace, name)
//	);
//
// The default namespace is stored as "*". AddNamespace maps a namespace to the value
// stored in the namespace column (the hint), so several key namespaces may share rows.
// Rows of unregistered namespaces are never read.
package sqlite
