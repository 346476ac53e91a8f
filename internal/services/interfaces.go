package services

import "github.com/mrlokans/inkwell/internal/importer"

// FlagStore persists the legacy import flag and run outcomes.
// Use this interface when you need the import bookkeeping, not the full
// settings store.
type FlagStore interface {
	GetLegacyImportCompleted() bool
	SetLegacyImportCompleted(completed bool) error
	SetLegacyImportOutcome(status, report string) error
}

// ImportEnvironment supplies the collaborators an import run needs. The
// factories are invoked once per run so each run gets a fresh store handle
// and a fresh transaction context.
type ImportEnvironment struct {
	OpenStore  func() (importer.LegacyStore, error)
	OpenTarget func() (importer.TargetContext, error)
	Discover   func() bool
	BatchSize  int
}
