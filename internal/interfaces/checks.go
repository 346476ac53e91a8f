package interfaces

// This file contains compile-time interface implementation checks.
// These ensure that concrete types satisfy their interfaces at compile time,
// catching missing methods before runtime.
//
// To verify all checks pass: go build ./internal/interfaces/...

import (
	"github.com/mrlokans/inkwell/internal/database"
	"github.com/mrlokans/inkwell/internal/importer"
	"github.com/mrlokans/inkwell/internal/legacystore"
	"github.com/mrlokans/inkwell/internal/services"
	"github.com/mrlokans/inkwell/internal/settingsstore"
)

// =============================================================================
// Import Pipeline
// =============================================================================

// LegacyStore implementations
var _ importer.LegacyStore = (*legacystore.Reader)(nil)

// TargetContext implementations
var _ importer.TargetContext = (*database.TransactionContext)(nil)

// =============================================================================
// Import Service Collaborators
// =============================================================================

// FlagStore implementations
var _ services.FlagStore = (*settingsstore.SettingsStore)(nil)
