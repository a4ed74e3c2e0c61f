// Package settings loads the service's own settings: which loader backs the
// repository, where its data lives, how to log and where to listen.
//
// The package keeps an interface-based design with four extension points:
//   - Parser: deserializes raw data into a settings struct, with path navigation support
//   - DataFetcher: retrieves raw settings data (file, static bytes, etc.)
//   - Validator: validates settings after parsing
//   - Defaulter: applies default values before validation
//
// # Path Navigation
//
// Provider accepts a path selecting a section of the document, with colon (:) as the
// separator, so the settings can share a file with other components:
//
//	"configdb"          -> document["configdb"]
//	"services:configdb" -> document["services"]["configdb"]
//	""                  -> entire document
//
// # Example
//
//	provider := settings.Provider(&settings.Settings{}, "configdb")
//	s, err := provider(yamlcodec.NewParser(), fetcher)
package settings
