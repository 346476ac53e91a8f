package tasks

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/mikestefanello/backlite"

	"github.com/mrlokans/inkwell/internal/services"
)

// LegacyImportTask runs the one-time Quill store import in the background.
type LegacyImportTask struct {
	// Trigger records what started the run: "startup", "scheduled" or "manual".
	Trigger string `json:"trigger"`
}

// Config returns the queue configuration for legacy import tasks.
// MaxAttempts is 1: the import keeps its own retry semantics through the
// completed flag and the per-project idempotency gate, so a failed run is
// retried by the next trigger rather than by the queue.
func (t LegacyImportTask) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        "legacy_import",
		MaxAttempts: 1,
		Backoff:     time.Minute,
		Timeout:     30 * time.Minute,
		Retention: &backlite.Retention{
			Duration:   24 * time.Hour,
			OnlyFailed: false,
			Data:       &backlite.RetainData{OnlyFailed: true},
		},
	}
}

// LegacyImportProcessor creates a processor function for LegacyImportTask.
func LegacyImportProcessor(service *services.ImportService) backlite.QueueProcessor[LegacyImportTask] {
	return func(ctx context.Context, task LegacyImportTask) error {
		if service == nil {
			return fmt.Errorf("import service not configured")
		}

		if !service.ShouldImport() {
			log.Printf("[TASK] Legacy import (%s): nothing to import", task.Trigger)
			return nil
		}

		if !service.ExecuteImport(ctx) {
			return fmt.Errorf("legacy import (%s) failed: %s", task.Trigger, service.GetErrorReport())
		}

		log.Printf("[TASK] Legacy import (%s) completed", task.Trigger)
		return nil
	}
}

// NewLegacyImportQueue creates a backlite queue for legacy import tasks.
func NewLegacyImportQueue(service *services.ImportService) backlite.Queue {
	return backlite.NewQueue(LegacyImportProcessor(service))
}
