package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"sort"
	"sync"
	"time"

	"github.com/0xalexb/hjarta-configdb/key"
	"github.com/0xalexb/hjarta-configdb/value"

	"github.com/goccy/go-json"

	_ "modernc.org/sqlite" // registers the "sqlite" database/sql driver
)

// DriverName is the database/sql driver name registered by modernc.org/sqlite.
const DriverName = "sqlite"

// DefaultTable is the table used when WithTable is not given.
const DefaultTable = "config_groups"

var (
	// ErrInvalidTable is returned when the table name is not a plain identifier.
	ErrInvalidTable = errors.New("invalid table name")

	// ErrNilDB is returned when New is called with a nil database handle.
	ErrNilDB = errors.New("database must not be nil")
)

//nolint:gochecknoglobals // compiled once.
var identifierPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Option configures a Loader.
type Option func(*Loader)

// WithTable overrides the name of the groups table.
func WithTable(table string) Option {
	return func(l *Loader) {
		l.table = table
	}
}

// WithClock overrides the clock used for updated_at.
func WithClock(now func() time.Time) Option {
	return func(l *Loader) {
		l.now = now
	}
}

// Loader loads configuration groups from SQLite. It is safe for concurrent use.
type Loader struct {
	db    *sql.DB
	owned bool
	table string
	now   func() time.Time

	mu    sync.RWMutex
	hints map[string]string
}

// Open opens the database at dsn and prepares the groups table.
// The returned Loader owns the database and closes it on Close.
func Open(ctx context.Context, dsn string, opts ...Option) (*Loader, error) {
	db, err := sql.Open(DriverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// ":memory:" databases are private to a connection.
	db.SetMaxOpenConns(1)

	loader, err := New(ctx, db, opts...)
	if err != nil {
		_ = db.Close()

		return nil, err
	}

	loader.owned = true

	return loader, nil
}

// New prepares the groups table in db. The caller keeps ownership of db.
func New(ctx context.Context, db *sql.DB, opts ...Option) (*Loader, error) {
	if db == nil {
		return nil, ErrNilDB
	}

	loader := &Loader{
		db:    db,
		owned: false,
		table: DefaultTable,
		now:   time.Now,
		mu:    sync.RWMutex{},
		hints: make(map[string]string),
	}

	for _, apply := range opts {
		apply(loader)
	}

	if !identifierPattern.MatchString(loader.table) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidTable, loader.table)
	}

	err := loader.migrate(ctx)
	if err != nil {
		return nil, err
	}

	return loader, nil
}

func (l *Loader) migrate(ctx context.Context) error {
	//nolint:gosec // table name is validated against identifierPattern
	schema := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
	namespace  TEXT NOT NULL,
	name       TEXT NOT NULL,
	content    TEXT NOT NULL,
	updated_at TEXT NOT NULL,
	PRIMARY KEY (namespace, name)
)`, l.table)

	_, err := l.db.ExecContext(ctx, schema)
	if err != nil {
		return fmt.Errorf("creating table %s: %w", l.table, err)
	}

	return nil
}

// Load returns the content of group, or Null when no row exists.
func (l *Loader) Load(ctx context.Context, group, namespace string) (value.Value, error) {
	stored, ok := l.storedNamespace(namespace)
	if !ok {
		return value.Null(), nil
	}

	var content string

	//nolint:gosec // table name is validated against identifierPattern
	query := fmt.Sprintf("SELECT content FROM %s WHERE namespace = ? AND name = ?", l.table)

	err := l.db.QueryRowContext(ctx, query, stored, group).Scan(&content)
	if errors.Is(err, sql.ErrNoRows) {
		return value.Null(), nil
	}

	if err != nil {
		return value.Null(), fmt.Errorf("loading group %q: %w", group, err)
	}

	var decoded value.Value

	err = json.Unmarshal([]byte(content), &decoded)
	if err != nil {
		return value.Null(), fmt.Errorf("decoding group %q: %w", group, err)
	}

	return decoded, nil
}

// Save upserts content as the group in the default namespace.
func (l *Loader) Save(ctx context.Context, group string, content value.Value) (bool, error) {
	encoded, err := json.Marshal(content)
	if err != nil {
		return false, fmt.Errorf("encoding group %q: %w", group, err)
	}

	//nolint:gosec // table name is validated against identifierPattern
	statement := fmt.Sprintf(`INSERT INTO %s (namespace, name, content, updated_at) VALUES (?, ?, ?, ?)
ON CONFLICT (namespace, name) DO UPDATE SET content = excluded.content, updated_at = excluded.updated_at`, l.table)

	result, err := l.db.ExecContext(ctx, statement,
		key.Wildcard, group, string(encoded), l.now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		return false, fmt.Errorf("saving group %q: %w", group, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("saving group %q: %w", group, err)
	}

	slog.Debug("configuration group saved", slog.String("group", group), slog.String("table", l.table))

	return affected > 0, nil
}

// Exists reports whether a row for group exists in namespace.
func (l *Loader) Exists(ctx context.Context, group, namespace string) (bool, error) {
	stored, ok := l.storedNamespace(namespace)
	if !ok {
		return false, nil
	}

	var exists bool

	//nolint:gosec // table name is validated against identifierPattern
	query := fmt.Sprintf("SELECT EXISTS (SELECT 1 FROM %s WHERE namespace = ? AND name = ?)", l.table)

	err := l.db.QueryRowContext(ctx, query, stored, group).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("checking group %q: %w", group, err)
	}

	return exists, nil
}

// AddNamespace maps namespace to the stored namespace hint. An empty hint maps it to itself.
func (l *Loader) AddNamespace(namespace, hint string) {
	if hint == "" {
		hint = namespace
	}

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

// Close closes the database if the Loader opened it.
func (l *Loader) Close() error {
	if !l.owned {
		return nil
	}

	err := l.db.Close()
	if err != nil {
		return fmt.Errorf("closing database: %w", err)
	}

	return nil
}

func (l *Loader) storedNamespace(namespace string) (string, bool) {
	if namespace == "" {
		return key.Wildcard, true
	}

	l.mu.RLock()
	defer l.mu.RUnlock()

	stored, ok := l.hints[namespace]

	return stored, ok
}
