package http

import (
	"github.com/mrlokans/inkwell/internal/database"
	"github.com/mrlokans/inkwell/internal/database/projects"
	"github.com/mrlokans/inkwell/internal/scheduler"
	"github.com/mrlokans/inkwell/internal/services"
	"github.com/mrlokans/inkwell/internal/settingsstore"
	"github.com/mrlokans/inkwell/internal/tasks"
)

// RouterConfig contains all dependencies and configuration needed
// to create the HTTP router. This replaces a long parameter list
// in NewRouter for better maintainability.
type RouterConfig struct {
	// Core dependencies
	Database      *database.Database
	Projects      *projects.Repository
	SettingsStore *settingsstore.SettingsStore
	ImportService *services.ImportService

	// Background infrastructure (optional)
	TaskClient     *tasks.Client
	CheckScheduler *scheduler.LegacyCheckScheduler

	// Application info
	Version string
}
