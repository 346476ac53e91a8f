// Package database provides the data access layer for the application.
//
// # Architecture
//
// The database layer is organized into domain-specific sub-packages:
//
//	database/
//	├── database.go      # Connection setup, migrations, settings helpers
//	├── transaction.go   # TransactionContext for the legacy import engine
//	├── projects/        # Project, folder, text file and version queries
//	└── settings/        # Application settings
//
// # Using Sub-packages
//
// Each sub-package provides a Repository type with domain-specific operations:
//
//	// Initialize database connection
//	db, err := database.NewDatabase("./inkwell.db")
//
//	// Create domain-specific repositories
//	projectsRepo := projects.NewRepository(db.DB)
//	settingsRepo := settings.NewRepository(db.DB)
//
//	// Use repositories
//	project, err := projectsRepo.GetProjectByName("Moby-Dick")
//
// # The import transaction context
//
// TransactionContext implements the importer's TargetContext: inserts land in
// an open transaction, Save commits a batch and begins the next transaction,
// Rollback discards only uncommitted work. Earlier batch commits stay
// committed; the legacy import is deliberately committed-so-far rather than
// atomic over its whole duration.
package database
