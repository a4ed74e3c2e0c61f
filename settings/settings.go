package settings

import (
	"errors"
	"fmt"
	"strings"

	"github.com/0xalexb/hjarta-configdb/listener"
)

// Loader drivers.
const (
	DriverFile   = "file"
	DriverSQLite = "sqlite"
	DriverMemory = "memory"
)

// Defaults applied by Settings.SetDefaults.
const (
	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"
	DefaultDriver    = DriverFile
	DefaultPath      = "./config"
	DefaultAddress   = listener.DefaultAddress
)

var (
	// ErrUnknownDriver is returned for a loader driver other than file, sqlite or memory.
	ErrUnknownDriver = errors.New("unknown loader driver")

	// ErrMissingDSN is returned when the sqlite driver is selected without a DSN.
	ErrMissingDSN = errors.New("sqlite driver requires a dsn")

	// ErrUnknownLogFormat is returned for a log format other than json or text.
	ErrUnknownLogFormat = errors.New("unknown log format")
)

// Settings is the top-level service settings document.
type Settings struct {
	Log      Log             `yaml:"log"`
	Loader   Loader          `yaml:"loader"`
	Listener listener.Config `yaml:"listener"`
}

// Log configures logging.
type Log struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Loader selects and configures the repository loader.
type Loader struct {
	Driver      string `yaml:"driver"`
	Path        string `yaml:"path"`
	DSN         string `yaml:"dsn"`
	Table       string `yaml:"table"`
	Environment string `yaml:"environment"`
	// Namespaces maps namespace names to loader hints (directories for the file driver,
	// stored namespaces for the sqlite driver).
	Namespaces map[string]string `yaml:"namespaces"`
}

// SetDefaults fills unset fields.
func (s *Settings) SetDefaults() bool {
	changed := false

	set := func(field *string, fallback string) {
		if *field == "" {
			*field = fallback
			changed = true
		}
	}

	set(&s.Log.Level, DefaultLogLevel)
	set(&s.Log.Format, DefaultLogFormat)
	set(&s.Loader.Driver, DefaultDriver)

	before := s.Listener
	s.Listener.SetDefaults()

	if before != s.Listener {
		changed = true
	}

	if s.Loader.Driver == DriverFile {
		set(&s.Loader.Path, DefaultPath)
	}

	return changed
}

// Validate checks the driver and its required fields.
func (s *Settings) Validate() error {
	switch s.Loader.Driver {
	case DriverFile, DriverMemory:
	case DriverSQLite:
		if s.Loader.DSN == "" {
			return ErrMissingDSN
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnknownDriver, s.Loader.Driver)
	}

	switch strings.ToLower(s.Log.Format) {
	case "json", "text":
	default:
		return fmt.Errorf("%w: %q", ErrUnknownLogFormat, s.Log.Format)
	}

	err := s.Listener.Validate()
	if err != nil {
		return fmt.Errorf("listener: %w", err)
	}

	return nil
}
