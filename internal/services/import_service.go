package services

import (
	"context"
	"log"
	"sync"

	"github.com/mrlokans/inkwell/internal/database"
	"github.com/mrlokans/inkwell/internal/importer"
	"github.com/mrlokans/inkwell/internal/legacystore"
)

// ImportService owns the legacy import lifecycle: deciding whether an
// import should run, executing it, and reporting the outcome. It is the
// only writer of the "already imported" flag, which is set strictly after
// a fully successful run so a failed run is retried on next launch.
type ImportService struct {
	flags FlagStore
	env   ImportEnvironment

	mu      sync.Mutex
	running bool
	current *importer.Orchestrator

	lastErrMu     sync.Mutex
	lastErrReport string
}

// NewImportService creates a new ImportService.
func NewImportService(flags FlagStore, env ImportEnvironment) *ImportService {
	return &ImportService{flags: flags, env: env}
}

// NewImportEnvironment wires the real collaborators: the Quill store reader
// at the given path (or the platform default when empty) and a transaction
// context on the application database.
func NewImportEnvironment(db *database.Database, storePath string, batchSize int) ImportEnvironment {
	return ImportEnvironment{
		OpenStore: func() (importer.LegacyStore, error) {
			return legacystore.NewReader(storePath)
		},
		OpenTarget: func() (importer.TargetContext, error) {
			return database.NewTransactionContext(db.DB)
		},
		Discover: func() bool {
			return legacystore.Discoverable(storePath)
		},
		BatchSize: batchSize,
	}
}

// ShouldImport reports whether an import should run: the already-imported
// flag is unset and a legacy store is discoverable.
func (s *ImportService) ShouldImport() bool {
	if s.flags.GetLegacyImportCompleted() {
		return false
	}
	return s.env.Discover()
}

// Running reports whether an import is currently in flight.
func (s *ImportService) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// Progress returns the progress snapshot of the current (or most recent)
// run, or a zero snapshot when no run has started.
func (s *ImportService) Progress() importer.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return importer.Snapshot{Phase: importer.PhaseNotStarted}
	}
	return s.current.Progress().Snapshot()
}

// ExecuteImport runs the full import. Non-throwing at this boundary:
// failures are captured internally, reported through GetErrorReport, and
// reflected in the returned success flag. At most one import runs at a
// time; a concurrent call returns false without doing work.
func (s *ImportService) ExecuteImport(ctx context.Context) bool {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		log.Printf("Legacy import already in flight, ignoring trigger")
		return false
	}

	store, err := s.env.OpenStore()
	if err != nil {
		s.mu.Unlock()
		s.recordFailure("opening legacy store: " + err.Error())
		return false
	}
	target, err := s.env.OpenTarget()
	if err != nil {
		s.mu.Unlock()
		s.recordFailure("opening target context: " + err.Error())
		return false
	}

	orchestrator := importer.NewOrchestrator(store, target, s.env.BatchSize)
	s.current = orchestrator
	s.running = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.running = false
		s.mu.Unlock()
	}()

	runErr := orchestrator.Run(ctx)

	snapshot := orchestrator.Progress().Snapshot()
	report := orchestrator.Diagnostics().Report(snapshot.ProcessedItems, snapshot.TotalItems)
	summary := report.Summary()

	if runErr != nil {
		log.Printf("Legacy import failed: %v", runErr)
		s.recordFailure(summary)
		return false
	}

	// Errors inside a completed run mean projects were lost; the run is
	// reported as failed and the flag stays unset so a retry can pick
	// up the missing projects through the idempotency gate.
	if orchestrator.Diagnostics().Fatal() {
		log.Printf("Legacy import finished with errors:\n%s", summary)
		s.recordFailure(summary)
		return false
	}

	if err := s.flags.SetLegacyImportCompleted(true); err != nil {
		log.Printf("Failed to persist import flag: %v", err)
		s.recordFailure("persisting import flag: " + err.Error())
		return false
	}
	if err := s.flags.SetLegacyImportOutcome("success", summary); err != nil {
		log.Printf("Failed to record import outcome: %v", err)
	}

	s.lastErrMu.Lock()
	s.lastErrReport = ""
	s.lastErrMu.Unlock()

	log.Printf("Legacy import completed:\n%s", summary)
	return true
}

// GetErrorReport returns the report of the last failed run, or "" when the
// last run succeeded or none has run.
func (s *ImportService) GetErrorReport() string {
	s.lastErrMu.Lock()
	defer s.lastErrMu.Unlock()
	return s.lastErrReport
}

func (s *ImportService) recordFailure(report string) {
	s.lastErrMu.Lock()
	s.lastErrReport = report
	s.lastErrMu.Unlock()

	if err := s.flags.SetLegacyImportOutcome("failed", report); err != nil {
		log.Printf("Failed to record import outcome: %v", err)
	}
}
