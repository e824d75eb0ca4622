package types

import "errors"

// Config holds backend selection and parameters for opening a store.
type Config struct {
	Backend string `json:"backend" yaml:"backend"`
	DataDir string `json:"data_dir" yaml:"data_dir"`
	Format  string `json:"format,omitempty" yaml:"format,omitempty"`
}

// Supported backend names.
const (
	BackendFiles  = "files"
	BackendJSONL  = "jsonl"
	BackendSQLite = "sqlite"
)

// Supported record formats.
const (
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// Config validation errors.
var (
	ErrBackendEmpty   = errors.New("backend must not be empty")
	ErrBackendUnknown = errors.New("unknown backend")
	ErrFormatUnknown  = errors.New("unknown record format")
	ErrFormatMismatch = errors.New("backend does not support record format")
)

// knownBackends lists the backends that Validate accepts.
var knownBackends = map[string]bool{
	BackendFiles:  true,
	BackendJSONL:  true,
	BackendSQLite: true,
}

var knownFormats = map[string]bool{
	FormatJSON: true,
	FormatYAML: true,
}

// RecordFormat returns Format, defaulting to json.
func (c Config) RecordFormat() string {
	if c.Format == "" {
		return FormatJSON
	}
	return c.Format
}

// Validate checks that the Config is well-formed. It returns a sentinel error
// from this package on failure.
func (c Config) Validate() error {
	if c.Backend == "" {
		return ErrBackendEmpty
	}
	if !knownBackends[c.Backend] {
		return ErrBackendUnknown
	}
	if !knownFormats[c.RecordFormat()] {
		return ErrFormatUnknown
	}
	// JSONL lines embed the record verbatim, so they must be JSON.
	if c.Backend == BackendJSONL && c.RecordFormat() != FormatJSON {
		return ErrFormatMismatch
	}
	return nil
}
