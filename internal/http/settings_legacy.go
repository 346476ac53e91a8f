package http

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/inkwell/internal/scheduler"
	"github.com/mrlokans/inkwell/internal/settingsstore"
)

// LegacySettingsController manages the legacy import settings: store path,
// auto-import switch, and the discovery check schedule.
type LegacySettingsController struct {
	settingsStore  *settingsstore.SettingsStore
	checkScheduler *scheduler.LegacyCheckScheduler
}

func NewLegacySettingsController(settingsStore *settingsstore.SettingsStore, checkScheduler *scheduler.LegacyCheckScheduler) *LegacySettingsController {
	return &LegacySettingsController{
		settingsStore:  settingsStore,
		checkScheduler: checkScheduler,
	}
}

// GetSettings returns the effective configuration with per-field sources.
func (ctrl *LegacySettingsController) GetSettings(c *gin.Context) {
	c.IndentedJSON(http.StatusOK, gin.H{
		"config": ctrl.settingsStore.GetLegacyImportConfigInfo(),
		"status": ctrl.settingsStore.GetLegacyImportStatus(),
	})
}

type UpdateLegacySettingsRequest struct {
	AutoImport *bool   `json:"auto_import"`
	StorePath  *string `json:"store_path"`
	Schedule   *string `json:"schedule"`
}

// UpdateSettings saves database overrides for the provided fields and
// reschedules the discovery check.
func (ctrl *LegacySettingsController) UpdateSettings(c *gin.Context) {
	var req UpdateLegacySettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return
	}

	if req.Schedule != nil {
		if err := settingsstore.ValidateCronSchedule(*req.Schedule); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid schedule: " + err.Error()})
			return
		}
	}

	if req.AutoImport != nil {
		if err := ctrl.settingsStore.SetLegacyAutoImport(*req.AutoImport); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
	}
	if req.StorePath != nil {
		if err := ctrl.settingsStore.SetLegacyStorePath(*req.StorePath); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
	}
	if req.Schedule != nil {
		if err := ctrl.settingsStore.SetLegacyCheckSchedule(*req.Schedule); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
	}

	ctrl.reschedule()
	c.IndentedJSON(http.StatusOK, gin.H{"config": ctrl.settingsStore.GetLegacyImportConfigInfo()})
}

// ResetSettings clears database overrides, reverting to env/default.
func (ctrl *LegacySettingsController) ResetSettings(c *gin.Context) {
	if err := ctrl.settingsStore.ClearLegacyImportSettings(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	ctrl.reschedule()
	c.IndentedJSON(http.StatusOK, gin.H{"config": ctrl.settingsStore.GetLegacyImportConfigInfo()})
}

func (ctrl *LegacySettingsController) reschedule() {
	if ctrl.checkScheduler == nil {
		return
	}
	if err := ctrl.checkScheduler.Reschedule(); err != nil {
		// Settings are saved either way; the scheduler picks them up
		// on next restart.
		log.Printf("Failed to reschedule legacy check: %v", err)
	}
}
