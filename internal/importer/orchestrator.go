package importer

import (
	"context"
	"fmt"
	"log"

	"github.com/google/uuid"

	"github.com/mrlokans/inkwell/internal/config"
	"github.com/mrlokans/inkwell/internal/entities"
	"github.com/mrlokans/inkwell/internal/legacystore"
	"github.com/mrlokans/inkwell/internal/richtext"
)

// Orchestrator drives a full legacy import run: connect, enumerate, map and
// insert per project, commit in fixed-size batches, final commit. The run is
// strictly sequential; at most one run per Orchestrator may be in flight.
type Orchestrator struct {
	store       LegacyStore
	target      TargetContext
	diagnostics *Diagnostics
	progress    *Progress
	mapper      *Mapper
	batchSize   int

	// Per-run identity caches for relationship stitching without
	// re-querying. Cleared at every batch boundary to bound memory; a
	// cleared entry must never be read across a commit.
	projectsByLegacyPK  map[int64]*entities.Project
	textFilesByLegacyPK map[int64]*entities.TextFile
}

func NewOrchestrator(store LegacyStore, target TargetContext, batchSize int) *Orchestrator {
	if batchSize <= 0 {
		batchSize = config.DefaultImportBatchSize
	}
	diagnostics := NewDiagnostics()
	return &Orchestrator{
		store:       store,
		target:      target,
		diagnostics: diagnostics,
		progress:    NewProgress(),
		mapper:      NewMapper(diagnostics),
		batchSize:   batchSize,
	}
}

func (o *Orchestrator) Diagnostics() *Diagnostics {
	return o.diagnostics
}

func (o *Orchestrator) Progress() *Progress {
	return o.progress
}

// Run executes the import. The returned error is non-nil only for run-fatal
// failures (connect, project enumeration, commit); per-project and per-item
// failures are absorbed into diagnostics and the loop continues.
func (o *Orchestrator) Run(ctx context.Context) error {
	o.diagnostics.Reset()
	o.progress.Reset()
	o.resetCaches()

	o.progress.SetPhase(PhaseConnecting)
	if err := o.store.Connect(ctx); err != nil {
		o.diagnostics.Errorf("connecting to legacy store: %v", err)
		o.progress.SetPhase(PhaseFailed)
		return fmt.Errorf("failed to connect to legacy store: %w", err)
	}
	defer o.store.Close()

	o.progress.SetPhase(PhaseFetchingProjects)
	projects, err := o.store.FetchProjects(ctx)
	if err != nil {
		o.diagnostics.Errorf("enumerating legacy projects: %v", err)
		o.progress.SetPhase(PhaseFailed)
		return fmt.Errorf("failed to enumerate legacy projects: %w", err)
	}
	// Zero projects is a valid empty outcome.
	o.progress.SetTotal(len(projects))

	o.progress.SetPhase(PhaseImportingProjects)
	inBatch := 0
	for _, legacy := range projects {
		name := ProjectName(legacy.Name)
		o.progress.ItemStarted(name)

		if err := o.importProject(ctx, legacy, name); err != nil {
			o.diagnostics.Errorf("project %q: %v", name, err)
		}
		o.progress.ItemCompleted()

		inBatch++
		if inBatch >= o.batchSize {
			if err := o.commit("batch commit"); err != nil {
				return err
			}
			inBatch = 0
		}
	}

	o.progress.SetPhase(PhaseFinalCommit)
	if err := o.commit("final commit"); err != nil {
		return err
	}

	o.progress.SetPhase(PhaseCompleted)
	return nil
}

// commit flushes accumulated work and clears the identity caches. A commit
// failure is the single fatal-and-rollback path: not-yet-committed work is
// discarded, earlier committed batches stay committed.
func (o *Orchestrator) commit(stage string) error {
	if err := o.target.Save(); err != nil {
		o.diagnostics.Errorf("%s: %v", stage, err)
		if rbErr := o.diagnostics.RollbackUncommitted(o.target); rbErr != nil {
			log.Printf("Rollback after failed %s also failed: %v", stage, rbErr)
		}
		o.progress.SetPhase(PhaseFailed)
		return fmt.Errorf("%s failed: %w", stage, err)
	}
	o.resetCaches()
	return nil
}

func (o *Orchestrator) resetCaches() {
	o.projectsByLegacyPK = make(map[int64]*entities.Project)
	o.textFilesByLegacyPK = make(map[int64]*entities.TextFile)
}

// importProject maps and inserts one legacy project with its folder
// taxonomy, texts, versions, collections, and story development records.
// Per-item failures inside the project degrade to warnings; a returned
// error means the project itself could not be created.
func (o *Orchestrator) importProject(ctx context.Context, legacy legacystore.LegacyProject, name string) error {
	exists, err := o.target.ProjectExists(name)
	if err != nil {
		return fmt.Errorf("idempotency check: %w", err)
	}
	if exists {
		// Idempotency gate: re-runs skip already imported projects silently.
		log.Printf("Skipping already imported project %q", name)
		return nil
	}

	project := o.mapper.MapProject(legacy)
	if err := o.target.Insert(project); err != nil {
		return fmt.Errorf("inserting project: %w", err)
	}
	o.projectsByLegacyPK[legacy.PK] = project

	folders, err := o.ensureFolders(project)
	if err != nil {
		return fmt.Errorf("creating folder taxonomy: %w", err)
	}

	texts, err := o.store.FetchTexts(ctx, legacy)
	if err != nil {
		return fmt.Errorf("fetching texts: %w", err)
	}
	for _, text := range texts {
		if err := o.importText(ctx, text, folders); err != nil {
			o.diagnostics.Warnf("project %q: text %q skipped: %v", name, text.Name, err)
		}
	}

	o.importCollections(ctx, legacy, name)
	o.importStoryRecords(ctx, legacy, folders, name)
	return nil
}

// ensureFolders creates the standard folder taxonomy under a freshly
// imported project and returns the folders keyed by name.
func (o *Orchestrator) ensureFolders(project *entities.Project) (map[string]*entities.Folder, error) {
	folders := make(map[string]*entities.Folder, len(entities.StandardFolderNames))
	for _, name := range entities.StandardFolderNames {
		folder := &entities.Folder{
			UUID:      uuid.NewString(),
			Name:      name,
			ProjectID: project.ID,
		}
		if err := o.target.Insert(folder); err != nil {
			return nil, fmt.Errorf("folder %q: %w", name, err)
		}
		folders[name] = folder
	}
	return folders, nil
}

// importText maps one legacy text and all its versions. Version numbers are
// assigned by ascending date order starting at 1.
func (o *Orchestrator) importText(ctx context.Context, legacy legacystore.LegacyText, folders map[string]*entities.Folder) error {
	folderName := o.resolveFolderName(legacy)
	file, err := o.mapper.MapTextFile(legacy, folders[folderName])
	if err != nil {
		return err
	}
	if err := o.target.Insert(file); err != nil {
		return fmt.Errorf("inserting text file: %w", err)
	}
	o.textFilesByLegacyPK[legacy.PK] = file

	versions, err := o.store.FetchVersions(ctx, legacy)
	if err != nil {
		return fmt.Errorf("fetching versions: %w", err)
	}
	for i, legacyVersion := range versions {
		var body *richtext.Document
		if legacyVersion.HasBody {
			// A fetch failure leaves body nil; the mapper substitutes
			// the placeholder and records the warning.
			body, _ = o.store.FetchBody(ctx, legacyVersion)
		}
		version := o.mapper.MapVersion(legacyVersion, file, i+1, body)
		if err := o.target.Insert(version); err != nil {
			o.diagnostics.Warnf("text %q: version %d skipped: %v", legacy.Name, i+1, err)
		}
	}
	return nil
}

// resolveFolderName maps the legacy group label onto the taxonomy, warning
// when an unknown label falls back to Draft.
func (o *Orchestrator) resolveFolderName(legacy legacystore.LegacyText) string {
	name, known := folderNameFor(legacy.GroupName)
	if !known && legacy.GroupName != "" {
		o.diagnostics.Warnf("text %q: unknown group %q, filed under %s", legacy.Name, legacy.GroupName, name)
	}
	return name
}

// importCollections maps legacy collections onto collection submissions.
// Collection membership links are not carried over; each one is reported.
func (o *Orchestrator) importCollections(ctx context.Context, legacy legacystore.LegacyProject, name string) {
	project, ok := o.projectsByLegacyPK[legacy.PK]
	if !ok {
		o.diagnostics.Warnf("project %q: collections skipped: project missing from identity cache", name)
		return
	}
	collections, err := o.store.FetchCollections(ctx, legacy)
	if err != nil {
		o.diagnostics.Warnf("project %q: collections skipped: %v", name, err)
		return
	}
	for _, collection := range collections {
		submission := o.mapper.MapCollection(collection, project)
		if err := o.target.Insert(submission); err != nil {
			o.diagnostics.Warnf("project %q: collection %q skipped: %v", name, collection.Name, err)
			continue
		}
		o.diagnostics.Warnf("project %q: collection %q imported without its membership links", name, collection.Name)
	}
}

// importStoryRecords maps scenes, characters, and locations into text files:
// scenes into Draft, characters and locations into Research.
func (o *Orchestrator) importStoryRecords(ctx context.Context, legacy legacystore.LegacyProject, folders map[string]*entities.Folder, name string) {
	scenes, err := o.store.FetchScenes(ctx, legacy)
	if err != nil {
		o.diagnostics.Warnf("project %q: scenes skipped: %v", name, err)
	} else {
		for _, scene := range scenes {
			file, err := o.mapper.MapScene(scene, folders[entities.FolderDraft])
			if err == nil {
				err = o.target.Insert(file)
			}
			if err != nil {
				o.diagnostics.Warnf("project %q: scene %q skipped: %v", name, scene.Name, err)
			}
		}
	}

	characters, err := o.store.FetchCharacters(ctx, legacy)
	if err != nil {
		o.diagnostics.Warnf("project %q: characters skipped: %v", name, err)
	} else {
		for _, character := range characters {
			file, err := o.mapper.MapCharacter(character, folders[entities.FolderResearch])
			if err == nil {
				err = o.target.Insert(file)
			}
			if err != nil {
				o.diagnostics.Warnf("project %q: character %q skipped: %v", name, character.Name, err)
			}
		}
	}

	locations, err := o.store.FetchLocations(ctx, legacy)
	if err != nil {
		o.diagnostics.Warnf("project %q: locations skipped: %v", name, err)
	} else {
		for _, location := range locations {
			file, err := o.mapper.MapLocation(location, folders[entities.FolderResearch])
			if err == nil {
				err = o.target.Insert(file)
			}
			if err != nil {
				o.diagnostics.Warnf("project %q: location %q skipped: %v", name, location.Name, err)
			}
		}
	}
}
