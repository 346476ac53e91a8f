// Package interfaces documents the core abstractions used throughout the application.
//
// This package consolidates interface documentation to help code agents understand
// extension points and how to implement new functionality.
//
// # Interface Categories
//
// ## Import Pipeline Interfaces
//
//   - LegacyStore: Read access to a predecessor (Quill) store
//     (internal/importer/store.go)
//   - TargetContext: Transactional insert surface over the Inkwell database
//     (internal/importer/store.go)
//
// ## Import Service Interfaces
//
//   - FlagStore: Persistence of the already-imported flag and run outcomes
//     (internal/services/interfaces.go)
//
// # Adding a New Legacy Source
//
// To import from another predecessor application:
//
//  1. Implement LegacyStore in a new internal/<source>store/ package. The
//     reader connects to the source, validates its schema, and returns
//     flattened snapshots (see internal/legacystore for the Quill reader).
//
//     var _ importer.LegacyStore = (*Reader)(nil)
//
//  2. Wire it through services.ImportEnvironment.OpenStore. The orchestrator,
//     mapper, diagnostics, and progress tracking are source-agnostic and need
//     no changes.
//
// # Compile-Time Interface Checks
//
// All implementations should include compile-time checks to ensure they satisfy
// their interfaces. This catches missing methods at compile time rather than runtime:
//
//	var _ SomeInterface = (*MyImplementation)(nil)
//
// This pattern is used throughout the codebase. See checks.go for examples.
package interfaces
