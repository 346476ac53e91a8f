package cli

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mrlokans/inkwell/internal/config"
	"github.com/mrlokans/inkwell/internal/database"
	"github.com/mrlokans/inkwell/internal/importer"
	"github.com/mrlokans/inkwell/internal/legacystore"
	"github.com/mrlokans/inkwell/internal/richtext"
	"github.com/mrlokans/inkwell/internal/settingsstore"
)

// LegacyImportCommand imports a Quill legacy store from the command line.
type LegacyImportCommand struct {
	StorePath    string
	DatabasePath string
	BatchSize    int
	Force        bool
	Verbose      bool
	DryRun       bool
}

// NewLegacyImportCommand creates a new LegacyImportCommand
func NewLegacyImportCommand() *LegacyImportCommand {
	return &LegacyImportCommand{}
}

// ParseFlags parses command line flags
func (cmd *LegacyImportCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("legacy-import", flag.ExitOnError)

	fs.StringVar(&cmd.StorePath, "store", "", "Path to the Quill store (auto-detected if not specified)")
	fs.StringVar(&cmd.DatabasePath, "db", config.DefaultDatabasePath, "Path to the Inkwell database file")
	fs.IntVar(&cmd.BatchSize, "batch-size", config.DefaultImportBatchSize, "Number of projects per commit batch")
	fs.BoolVar(&cmd.Force, "force", false, "Run even if the import flag is already set")
	fs.BoolVar(&cmd.Verbose, "verbose", false, "Print the full warning and error lists")
	fs.BoolVar(&cmd.DryRun, "dry-run", false, "Read and verify the store without writing anything")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s legacy-import [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Import projects from a Quill store into the Inkwell database.\n\n")
		fmt.Fprintf(os.Stderr, "Already imported projects (matched by name) are skipped, so the\n")
		fmt.Fprintf(os.Stderr, "command is safe to re-run after a partial failure.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  # Import from the default platform location:\n")
		fmt.Fprintf(os.Stderr, "  %s legacy-import\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  # Import from an explicit store copy:\n")
		fmt.Fprintf(os.Stderr, "  %s legacy-import -store ~/Backups/Quill.sqlite\n", os.Args[0])
	}

	return fs.Parse(args)
}

// Run executes the import command
func (cmd *LegacyImportCommand) Run() error {
	storePath := cmd.StorePath
	if storePath == "" {
		var err error
		storePath, err = legacystore.DefaultStorePath()
		if err != nil {
			return fmt.Errorf("failed to locate default store path: %w", err)
		}
	}

	fmt.Println("Quill Legacy Import")
	fmt.Println("===================")
	fmt.Printf("Store:    %s\n", storePath)

	if !legacystore.Discoverable(storePath) {
		return fmt.Errorf("no Quill store found at %s", storePath)
	}

	if cmd.DryRun {
		return cmd.runDry(storePath)
	}

	absDBPath, err := filepath.Abs(cmd.DatabasePath)
	if err != nil {
		return fmt.Errorf("failed to get absolute path for database: %w", err)
	}
	fmt.Printf("Database: %s\n\n", absDBPath)

	db, err := database.NewDatabase(absDBPath)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer db.Close()

	settingsStore := settingsstore.New(db)
	if settingsStore.GetLegacyImportCompleted() && !cmd.Force {
		fmt.Println("Import already completed. Use -force to re-run (existing projects are skipped).")
		return nil
	}

	target, err := database.NewTransactionContext(db.DB)
	if err != nil {
		return fmt.Errorf("failed to open transaction: %w", err)
	}

	reader, err := legacystore.NewReader(storePath)
	if err != nil {
		return err
	}

	orchestrator := importer.NewOrchestrator(reader, target, cmd.BatchSize)
	runErr := orchestrator.Run(context.Background())

	snapshot := orchestrator.Progress().Snapshot()
	report := orchestrator.Diagnostics().Report(snapshot.ProcessedItems, snapshot.TotalItems)
	fmt.Println(report.Summary())

	if cmd.Verbose {
		for _, w := range orchestrator.Diagnostics().Warnings() {
			fmt.Printf("  warning: %s\n", w)
		}
		for _, e := range orchestrator.Diagnostics().Errors() {
			fmt.Printf("  error: %s\n", e)
		}
	}

	if runErr != nil {
		_ = settingsStore.SetLegacyImportOutcome("failed", report.Summary())
		return fmt.Errorf("import failed: %w", runErr)
	}
	if orchestrator.Diagnostics().Fatal() {
		_ = settingsStore.SetLegacyImportOutcome("failed", report.Summary())
		return fmt.Errorf("import finished with %d errors; flag left unset for retry", report.ErrorCount)
	}

	if err := settingsStore.SetLegacyImportCompleted(true); err != nil {
		return fmt.Errorf("failed to persist import flag: %w", err)
	}
	_ = settingsStore.SetLegacyImportOutcome("success", report.Summary())

	fmt.Println("\nImport complete.")
	return nil
}

// runDry walks the store read-only: every project, text, and version is
// fetched, bodies are transcoded, and the formatted output is round-trip
// verified. Nothing is written.
func (cmd *LegacyImportCommand) runDry(storePath string) error {
	fmt.Println("Dry run: nothing will be written.")

	reader, err := legacystore.NewReader(storePath)
	if err != nil {
		return err
	}

	ctx := context.Background()
	if err := reader.Connect(ctx); err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}
	defer reader.Close()

	projects, err := reader.FetchProjects(ctx)
	if err != nil {
		return fmt.Errorf("failed to enumerate projects: %w", err)
	}

	var totalTexts, totalVersions, unreadable, unverified int
	for _, project := range projects {
		name := importer.ProjectName(project.Name)
		texts, err := reader.FetchTexts(ctx, project)
		if err != nil {
			fmt.Printf("⚠️  %s: text files unreadable: %v\n", name, err)
			continue
		}
		totalTexts += len(texts)

		for _, text := range texts {
			versions, err := reader.FetchVersions(ctx, text)
			if err != nil {
				fmt.Printf("⚠️  %s / %s: versions unreadable: %v\n", name, text.Name, err)
				continue
			}
			totalVersions += len(versions)

			for _, version := range versions {
				if !version.HasBody {
					continue
				}
				body, err := reader.FetchBody(ctx, version)
				if err != nil || body == nil {
					unreadable++
					if cmd.Verbose {
						fmt.Printf("⚠️  %s / %s: body unreadable, import would substitute a placeholder\n", name, text.Name)
					}
					continue
				}
				if _, formatted := richtext.Convert(*body, true); formatted != nil && !richtext.Verify(formatted) {
					unverified++
					if cmd.Verbose {
						fmt.Printf("⚠️  %s / %s: formatted content fails round-trip verification\n", name, text.Name)
					}
				}
			}
		}
		fmt.Printf("   - %s (%d text files)\n", name, len(texts))
	}

	fmt.Printf("\n%d project(s), %d text file(s), %d version(s)\n", len(projects), totalTexts, totalVersions)
	fmt.Printf("unreadable bodies: %d, verification failures: %d\n", unreadable, unverified)
	return nil
}
