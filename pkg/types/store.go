package types

// Store persists opaque record bodies grouped by collection and keyed by
// identifier. Implementations live in internal/filestore and internal/sqlite;
// repositories sit on top and own encoding and validation.
type Store interface {
	// Read returns the stored body for id in collection.
	// Returns ErrNotFound if no record exists.
	Read(collection, id string) ([]byte, error)

	// Write stores body under id, replacing any previous body.
	Write(collection, id string, body []byte) error

	// Remove deletes the record for id.
	// Returns ErrNotFound if no record exists.
	Remove(collection, id string) error

	// Keys lists the identifiers stored in collection in ascending order.
	// A collection that was never written is empty, not an error.
	Keys(collection string) ([]string, error)

	// Close releases backend resources. Idempotent.
	Close() error
}

// Codec turns a field map into record bytes and back.
type Codec interface {
	// Name is the format name used in Config.Format ("json", "yaml").
	Name() string

	// Ext is the file extension for one-file-per-record stores, with the dot.
	Ext() string

	Marshal(values map[string]any) ([]byte, error)
	Unmarshal(data []byte) (map[string]any, error)
}
