// Package yaml reads and writes configuration documents in YAML.
//
// This package uses github.com/goccy/go-yaml. It serves two callers:
//
//   - settings.Provider, through Parse, which unmarshals a document (or the section
//     selected by a colon-separated path such as "configdb:loader") into a struct.
//   - the loaders, through Decode and Encode, which convert whole group documents to
//     and from value.Value.
//
// Usage:
//
//	parser := yaml.NewParser()
//	group, err := parser.Decode(data)
//	out, err := parser.Encode(group)
//
// Path Conversion:
//   - Empty path "" -> unmarshal entire document
//   - Single key "key" -> "$.key"
//   - Nested path "configdb:loader" -> "$.configdb.loader"
//
// JSON documents are valid YAML, so Decode also accepts .json group files.
package yaml
