package config

// Default paths and tunables
const (
	// DefaultDatabasePath is the default path for the main application database
	DefaultDatabasePath = "./inkwell.db"

	// DefaultImportBatchSize is the number of legacy projects committed per
	// batch during the legacy import. Identity caches are cleared at every
	// batch boundary, so this constant bounds the import's memory use.
	DefaultImportBatchSize = 5
)
