package http

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/inkwell/internal/importer"
	"github.com/mrlokans/inkwell/internal/services"
	"github.com/mrlokans/inkwell/internal/settingsstore"
	"github.com/mrlokans/inkwell/internal/tasks"
)

// LegacyImportController exposes the Quill import over the API: a status
// endpoint the UI polls and a trigger endpoint for manual imports.
type LegacyImportController struct {
	importService *services.ImportService
	settingsStore *settingsstore.SettingsStore
	taskClient    *tasks.Client
}

func NewLegacyImportController(importService *services.ImportService, settingsStore *settingsstore.SettingsStore, taskClient *tasks.Client) *LegacyImportController {
	return &LegacyImportController{
		importService: importService,
		settingsStore: settingsStore,
		taskClient:    taskClient,
	}
}

type LegacyImportStatusResponse struct {
	ShouldImport bool                             `json:"should_import"`
	Running      bool                             `json:"running"`
	Progress     importer.Snapshot                `json:"progress"`
	LastRun      settingsstore.LegacyImportStatus `json:"last_run"`
	NextCheckAt  *time.Time                       `json:"next_check_at,omitempty"`
}

// Status reports discovery state, live progress, and the last run outcome.
func (ctrl *LegacyImportController) Status(c *gin.Context) {
	response := LegacyImportStatusResponse{
		ShouldImport: ctrl.importService.ShouldImport(),
		Running:      ctrl.importService.Running(),
		Progress:     ctrl.importService.Progress(),
		LastRun:      ctrl.settingsStore.GetLegacyImportStatus(),
	}
	if next, err := settingsstore.GetNextRunTime(ctrl.settingsStore.GetLegacyCheckSchedule()); err == nil {
		response.NextCheckAt = next
	}
	c.IndentedJSON(http.StatusOK, response)
}

// Trigger starts a manual import. The work runs in the background; poll
// Status for progress.
func (ctrl *LegacyImportController) Trigger(c *gin.Context) {
	if ctrl.importService.Running() {
		c.JSON(http.StatusConflict, gin.H{"error": "an import is already running"})
		return
	}
	if ctrl.settingsStore.GetLegacyImportCompleted() {
		c.JSON(http.StatusConflict, gin.H{"error": "legacy import already completed"})
		return
	}
	if !ctrl.importService.ShouldImport() {
		c.JSON(http.StatusNotFound, gin.H{"error": "no legacy store discoverable"})
		return
	}

	if ctrl.taskClient != nil {
		ids, err := ctrl.taskClient.Add(tasks.LegacyImportTask{Trigger: "manual"}).Save()
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to enqueue import: " + err.Error()})
			return
		}
		c.JSON(http.StatusAccepted, gin.H{"status": "queued", "task_id": ids[0]})
		return
	}

	// Detached from the request context: the import outlives the response.
	go ctrl.importService.ExecuteImport(context.Background())
	c.JSON(http.StatusAccepted, gin.H{"status": "started"})
}
