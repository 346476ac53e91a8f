package http

import (
	"github.com/gin-gonic/gin"
)

// NewRouter creates and configures the HTTP router with all endpoints.
// Uses RouterConfig to receive all dependencies, improving testability
// and reducing parameter count.
func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())

	// Health endpoints
	health := NewHealthController(cfg.Database, cfg.Version)
	router.GET("/health", health.Status)
	router.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"message": "pong",
		})
	})

	// Project tree endpoints
	if cfg.Projects != nil {
		projectsController := NewProjectsController(cfg.Projects)
		router.GET("/api/projects", projectsController.GetAllProjects)
		router.GET("/api/projects/stats", projectsController.GetStats)
		router.GET("/api/projects/:id", projectsController.GetProject)
		router.GET("/api/files/:id/versions", projectsController.GetVersions)
	}

	// Legacy import endpoints
	if cfg.ImportService != nil && cfg.SettingsStore != nil {
		importController := NewLegacyImportController(cfg.ImportService, cfg.SettingsStore, cfg.TaskClient)
		router.GET("/api/import/legacy/status", importController.Status)
		router.POST("/api/import/legacy", importController.Trigger)

		settingsController := NewLegacySettingsController(cfg.SettingsStore, cfg.CheckScheduler)
		router.GET("/api/settings/legacy", settingsController.GetSettings)
		router.POST("/api/settings/legacy", settingsController.UpdateSettings)
		router.POST("/api/settings/legacy/reset", settingsController.ResetSettings)
	}

	return router
}
