package yaml

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/0xalexb/hjarta-configdb/value"

	"github.com/goccy/go-yaml"
)

// ErrEmptyData is returned by Parse when the input data is empty.
var ErrEmptyData = errors.New("empty data")

// ErrPathNotFound is returned when the specified path is not found in the YAML document.
var ErrPathNotFound = errors.New("path not found")

// Parser implements settings.Parser and the group codec used by the loaders.
type Parser struct {
	indent int
}

// NewParser creates a new YAML parser instance.
func NewParser() *Parser {
	return &Parser{indent: 2}
}

// Parse parses YAML data and unmarshals it into the target.
// The path parameter specifies a navigation path using colon (:) as separator.
// Empty path parses the entire document.
func (p *Parser) Parse(data []byte, target any, path string) error {
	if len(bytes.TrimSpace(data)) == 0 {
		return ErrEmptyData
	}

	if path == "" {
		err := yaml.Unmarshal(data, target)
		if err != nil {
			return fmt.Errorf("unmarshal error: %w", err)
		}

		return nil
	}

	pathObj, err := yaml.PathString(convertToYAMLPath(path))
	if err != nil {
		return fmt.Errorf("invalid path %q: %w", path, err)
	}

	err = pathObj.Read(bytes.NewReader(data), target)
	if err != nil {
		if yaml.IsNotFoundNodeError(err) {
			return fmt.Errorf("%w: %s", ErrPathNotFound, path)
		}

		return fmt.Errorf("reading path %q: %w", path, err)
	}

	return nil
}

// Decode converts a whole group document into a Value.
// Empty documents, and documents holding only comments, decode to Null.
func (p *Parser) Decode(data []byte) (value.Value, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return value.Null(), nil
	}

	var raw any

	err := yaml.Unmarshal(data, &raw)
	if err != nil {
		return value.Null(), fmt.Errorf("decode group: %w", err)
	}

	return value.FromAny(raw), nil
}

// Encode renders a Value as a YAML document. Map keys are written in sorted order.
func (p *Parser) Encode(group value.Value) ([]byte, error) {
	data, err := yaml.MarshalWithOptions(group.Interface(), yaml.Indent(p.indent))
	if err != nil {
		return nil, fmt.Errorf("encode group: %w", err)
	}

	return data, nil
}

// convertToYAMLPath converts a colon-separated path to goccy/go-yaml PathString format.
// Examples:
//   - "key" -> "$.key"
//   - "configdb:loader" -> "$.configdb.loader"
func convertToYAMLPath(path string) string {
	return "$." + strings.Join(strings.Split(path, ":"), ".")
}
