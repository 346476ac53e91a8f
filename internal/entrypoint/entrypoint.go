package entrypoint

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/inkwell/internal/config"
	"github.com/mrlokans/inkwell/internal/database"
	"github.com/mrlokans/inkwell/internal/database/projects"
	http_controllers "github.com/mrlokans/inkwell/internal/http"
	"github.com/mrlokans/inkwell/internal/scheduler"
	"github.com/mrlokans/inkwell/internal/services"
	"github.com/mrlokans/inkwell/internal/settingsstore"
	"github.com/mrlokans/inkwell/internal/tasks"
)

// ShutdownFunc is called during graceful shutdown to clean up resources.
type ShutdownFunc func(ctx context.Context)

func Serve(router *gin.Engine, cfg *config.Config, onShutdown ShutdownFunc) {
	timeout := time.Duration(cfg.Global.ShutdownTimeoutInSeconds) * time.Second

	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port),
		Handler: router,
	}

	go func() {
		fmt.Printf("Starting server at %s:%d\n", cfg.HTTP.Host, cfg.HTTP.Port)
		// service connections
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	// Graceful shutdown on SIGINT/SIGTERM
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Printf("Shutdown Server, waiting %v before killing\n", timeout)

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	// Call shutdown callback first (e.g., to stop task queue)
	if onShutdown != nil {
		onShutdown(ctx)
	}

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server Shutdown:", err)
	}

	log.Println("Server exiting")
}

func Run(cfg *config.Config, version string) {
	log.Printf("Starting Inkwell v%s", version)

	// Initialize database
	db, err := database.NewDatabase(cfg.Database.Path)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Printf("Error closing database: %v", err)
		}
	}()

	settingsStore := settingsstore.New(db)
	projectsRepo := projects.NewRepository(db.DB)

	// Effective store path: database/env override, else the platform
	// default probed inside the import environment.
	storePath := settingsStore.GetLegacyStorePath()
	if storePath == "" {
		storePath = cfg.Legacy.StorePath
	}

	importService := services.NewImportService(
		settingsStore,
		services.NewImportEnvironment(db, storePath, cfg.Legacy.BatchSize),
	)

	// Initialize task queue if enabled
	var taskClient *tasks.Client
	var taskCtxCancel context.CancelFunc
	if cfg.Tasks.Enabled {
		taskCfg := tasks.Config{
			Workers:           cfg.Tasks.Workers,
			MaxRetries:        cfg.Tasks.MaxRetries,
			RetryDelay:        cfg.Tasks.RetryDelay,
			TaskTimeout:       cfg.Tasks.TaskTimeout,
			ReleaseAfter:      cfg.Tasks.ReleaseAfter,
			CleanupInterval:   cfg.Tasks.CleanupInterval,
			RetentionDuration: cfg.Tasks.RetentionDuration,
		}

		taskClient, err = tasks.NewClient(cfg.Database.Path, taskCfg)
		if err != nil {
			log.Fatalf("Failed to initialize task queue: %v", err)
		}
		defer func() {
			if err := taskClient.Close(); err != nil {
				log.Printf("Error closing task client: %v", err)
			}
		}()

		taskClient.Register(
			tasks.NewLegacyImportQueue(importService),
		)

		var taskCtx context.Context
		taskCtx, taskCtxCancel = context.WithCancel(context.Background())
		go taskClient.Start(taskCtx)
	}

	// Periodic legacy store discovery, until the import has completed
	checkScheduler := scheduler.NewLegacyCheckScheduler(settingsStore, importService, taskClient)
	if err := checkScheduler.Start(context.Background()); err != nil {
		log.Printf("WARNING: legacy check scheduler not started: %v", err)
	}

	// One startup probe so a discoverable store is imported (or at least
	// surfaced) without waiting for the first cron tick.
	if importService.ShouldImport() {
		if cfg.Legacy.AutoImport || settingsStore.GetLegacyAutoImport() {
			if taskClient != nil {
				if _, err := taskClient.Add(tasks.LegacyImportTask{Trigger: "startup"}).Save(); err != nil {
					log.Printf("Failed to enqueue startup import: %v", err)
				}
			} else {
				go importService.ExecuteImport(context.Background())
			}
		} else {
			log.Printf("Quill legacy store discovered; trigger the import via POST /api/import/legacy")
		}
	}

	routerCfg := http_controllers.RouterConfig{
		Database:       db,
		Projects:       projectsRepo,
		SettingsStore:  settingsStore,
		ImportService:  importService,
		TaskClient:     taskClient,
		CheckScheduler: checkScheduler,
		Version:        version,
	}

	router := http_controllers.NewRouter(routerCfg)

	// Shutdown callback for graceful cleanup
	onShutdown := func(ctx context.Context) {
		checkScheduler.Stop()
		if taskClient != nil && taskCtxCancel != nil {
			taskClient.Stop(ctx)
			taskCtxCancel()
		}
	}

	Serve(router, cfg, onShutdown)
}
