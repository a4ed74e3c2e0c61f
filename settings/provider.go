package settings

import (
	"fmt"
	"log/slog"
)

// Parser defines an interface for parsing settings data into a target structure.
//
// The path parameter specifies a navigation path within the data using colon (:) as
// the separator for nested keys. An empty path means the entire document.
type Parser interface {
	Parse(data []byte, target any, path string) error
}

// DataFetcher defines an interface for reading settings data.
type DataFetcher interface {
	Fetch() ([]byte, error)
}

// Validator defines an interface for validating settings structures.
type Validator interface {
	Validate() error
}

// Defaulter defines an interface for setting default values in settings structures.
type Defaulter interface {
	SetDefaults() (changed bool)
}

// Provider returns a function that reads, parses, sets defaults, and validates settings data.
func Provider[T any](target *T, path string) func(Parser, DataFetcher) (*T, error) {
	return func(parser Parser, fetcher DataFetcher) (*T, error) {
		data, err := fetcher.Fetch()
		if err != nil {
			return nil, fmt.Errorf("reading data error: %w", err)
		}

		err = parser.Parse(data, target, path)
		if err != nil {
			return nil, fmt.Errorf("parsing error: %w", err)
		}

		return Finalize(target, path)
	}
}

// Finalize applies defaults and validation to an already populated target.
func Finalize[T any](target *T, path string) (*T, error) {
	if defaulter, ok := any(target).(Defaulter); ok {
		if defaulter.SetDefaults() {
			slog.Debug("defaults applied", slog.String("path", path))
		}
	}

	if validator, ok := any(target).(Validator); ok {
		err := validator.Validate()
		if err != nil {
			return nil, fmt.Errorf("validating error: %w", err)
		}
	}

	return target, nil
}
