// Package importer implements the one-time migration of a Quill legacy
// store into Inkwell's data model: entity mapping, diagnostics, progress
// tracking, and the orchestrator that drives the run.
package importer

import (
	"context"

	"github.com/mrlokans/inkwell/internal/legacystore"
	"github.com/mrlokans/inkwell/internal/richtext"
)

// LegacyStore is the read surface of the predecessor application's store.
// All fetch methods return flattened snapshots; the orchestrator never holds
// a live store reference past a single call.
type LegacyStore interface {
	Connect(ctx context.Context) error
	Close() error
	FetchProjects(ctx context.Context) ([]legacystore.LegacyProject, error)
	FetchTexts(ctx context.Context, project legacystore.LegacyProject) ([]legacystore.LegacyText, error)
	// FetchVersions returns versions sorted ascending by date.
	FetchVersions(ctx context.Context, text legacystore.LegacyText) ([]legacystore.LegacyVersion, error)
	FetchBody(ctx context.Context, version legacystore.LegacyVersion) (*richtext.Document, error)
	FetchCollections(ctx context.Context, project legacystore.LegacyProject) ([]legacystore.LegacyCollection, error)
	FetchScenes(ctx context.Context, project legacystore.LegacyProject) ([]legacystore.LegacyScene, error)
	FetchCharacters(ctx context.Context, project legacystore.LegacyProject) ([]legacystore.LegacyCharacter, error)
	FetchLocations(ctx context.Context, project legacystore.LegacyProject) ([]legacystore.LegacyLocation, error)
}

// TargetContext is the persistence context receiving mapped entities.
// Inserted entities become durable at the next Save; Rollback discards only
// work not yet saved.
type TargetContext interface {
	Insert(entity any) error
	ProjectExists(name string) (bool, error)
	Save() error
	Rollback() error
}
