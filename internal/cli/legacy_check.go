package cli

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/mrlokans/inkwell/internal/config"
	"github.com/mrlokans/inkwell/internal/database"
	"github.com/mrlokans/inkwell/internal/importer"
	"github.com/mrlokans/inkwell/internal/legacystore"
	"github.com/mrlokans/inkwell/internal/settingsstore"
)

// LegacyCheckCommand inspects a Quill store without importing anything.
type LegacyCheckCommand struct {
	StorePath    string
	DatabasePath string
	Timeout      time.Duration
}

// NewLegacyCheckCommand creates a new LegacyCheckCommand
func NewLegacyCheckCommand() *LegacyCheckCommand {
	return &LegacyCheckCommand{}
}

// ParseFlags parses command line flags
func (cmd *LegacyCheckCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("legacy-check", flag.ExitOnError)

	fs.StringVar(&cmd.StorePath, "store", "", "Path to the Quill store (auto-detected if not specified)")
	fs.StringVar(&cmd.DatabasePath, "db", config.DefaultDatabasePath, "Path to the Inkwell database file")
	fs.DurationVar(&cmd.Timeout, "timeout", 10*time.Second, "Connection timeout")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s legacy-check [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Check whether a Quill store is present and readable, and report\n")
		fmt.Fprintf(os.Stderr, "what an import would pick up. Nothing is written.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
	}

	return fs.Parse(args)
}

// Run executes the check command
func (cmd *LegacyCheckCommand) Run() error {
	storePath := cmd.StorePath
	if storePath == "" {
		var err error
		storePath, err = legacystore.DefaultStorePath()
		if err != nil {
			return fmt.Errorf("failed to locate default store path: %w", err)
		}
	}

	fmt.Println("Quill Store Check")
	fmt.Println("=================")
	fmt.Printf("Store: %s\n\n", storePath)

	// Flag state first: a completed import means discovery is moot.
	if db, err := database.NewDatabase(cmd.DatabasePath); err == nil {
		if settingsstore.New(db).GetLegacyImportCompleted() {
			fmt.Println("✅ Import already completed")
		} else {
			fmt.Println("ℹ️  Import not yet performed")
		}
		db.Close()
	} else {
		fmt.Printf("⚠️  Could not read flag state: %v\n", err)
	}

	if !legacystore.Discoverable(storePath) {
		fmt.Println("❌ No store file found")
		return fmt.Errorf("no Quill store found at %s", storePath)
	}
	fmt.Println("✅ Store file found")

	reader, err := legacystore.NewReader(storePath)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), cmd.Timeout)
	defer cancel()

	if err := reader.Connect(ctx); err != nil {
		fmt.Printf("❌ Connection failed: %v\n", err)
		return err
	}
	defer reader.Close()
	fmt.Println("✅ Store opened, schema validated")

	projects, err := reader.FetchProjects(ctx)
	if err != nil {
		fmt.Printf("❌ Failed to enumerate projects: %v\n", err)
		return err
	}

	fmt.Printf("✅ %d project(s) would be imported:\n", len(projects))
	for _, project := range projects {
		name := importer.ProjectName(project.Name)
		texts, err := reader.FetchTexts(ctx, project)
		if err != nil {
			fmt.Printf("   - %s (⚠️  text files unreadable: %v)\n", name, err)
			continue
		}
		fmt.Printf("   - %s (%d text files)\n", name, len(texts))
	}

	return nil
}
