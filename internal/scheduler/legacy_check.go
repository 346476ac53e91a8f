// Package scheduler runs periodic background checks on cron schedules.
package scheduler

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/mrlokans/inkwell/internal/services"
	"github.com/mrlokans/inkwell/internal/settingsstore"
	"github.com/mrlokans/inkwell/internal/tasks"
)

// LegacyCheckScheduler periodically probes for a Quill legacy store. When
// one is discoverable and no import has completed yet, it either enqueues
// an import task (auto-import on) or just logs the finding for the user.
type LegacyCheckScheduler struct {
	settingsStore *settingsstore.SettingsStore
	importService *services.ImportService
	taskClient    *tasks.Client

	cron       *cron.Cron
	entryID    cron.EntryID
	mu         sync.RWMutex
	isRunning  bool
	cancelFunc context.CancelFunc
}

// NewLegacyCheckScheduler creates a new scheduler instance. taskClient may
// be nil; discovery then runs the import inline instead of enqueueing it.
func NewLegacyCheckScheduler(settingsStore *settingsstore.SettingsStore, importService *services.ImportService, taskClient *tasks.Client) *LegacyCheckScheduler {
	return &LegacyCheckScheduler{
		settingsStore: settingsStore,
		importService: importService,
		taskClient:    taskClient,
		cron:          cron.New(cron.WithParser(cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow))),
	}
}

// Start begins the scheduler unless the import has already completed.
func (s *LegacyCheckScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return nil
	}

	if s.settingsStore.GetLegacyImportCompleted() {
		log.Printf("Legacy check scheduler: import already completed, not scheduling")
		return nil
	}

	schedule := s.settingsStore.GetLegacyCheckSchedule()
	if err := settingsstore.ValidateCronSchedule(schedule); err != nil {
		return fmt.Errorf("invalid cron schedule '%s': %w", schedule, err)
	}

	entryID, err := s.cron.AddFunc(schedule, func() {
		s.runCheck(context.Background())
	})
	if err != nil {
		return fmt.Errorf("failed to schedule legacy check: %w", err)
	}
	s.entryID = entryID

	var cancelCtx context.Context
	cancelCtx, s.cancelFunc = context.WithCancel(ctx)

	s.cron.Start()
	s.isRunning = true

	nextRun, _ := settingsstore.GetNextRunTime(schedule)
	log.Printf("Legacy check scheduler: started with schedule '%s'. Next run: %v", schedule, nextRun)

	go func() {
		<-cancelCtx.Done()
		s.Stop()
	}()

	return nil
}

// Stop gracefully stops the scheduler
func (s *LegacyCheckScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return
	}

	// Stop accepting new jobs and wait for running jobs to complete
	ctx := s.cron.Stop()
	<-ctx.Done()

	s.isRunning = false
	s.cancelFunc = nil

	log.Printf("Legacy check scheduler: stopped")
}

// Reschedule updates the schedule (call after settings change)
func (s *LegacyCheckScheduler) Reschedule() error {
	s.mu.Lock()
	wasRunning := s.isRunning
	s.mu.Unlock()

	if wasRunning {
		s.Stop()
	}

	return s.Start(context.Background())
}

// RunNow triggers an immediate discovery check
func (s *LegacyCheckScheduler) RunNow() {
	go s.runCheck(context.Background())
}

// IsRunning returns whether the scheduler is active
func (s *LegacyCheckScheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// GetNextRunTime returns when the next check will occur
func (s *LegacyCheckScheduler) GetNextRunTime() *time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.isRunning {
		return nil
	}

	for _, entry := range s.cron.Entries() {
		if entry.ID == s.entryID {
			t := entry.Next
			return &t
		}
	}
	return nil
}

// runCheck performs one discovery probe.
func (s *LegacyCheckScheduler) runCheck(ctx context.Context) {
	if !s.importService.ShouldImport() {
		if s.settingsStore.GetLegacyImportCompleted() {
			// Nothing left to discover; the schedule can wind down. Stop
			// from outside the job, cron.Stop waits for this job to return.
			go s.Stop()
		}
		return
	}

	log.Printf("Legacy check: Quill store discovered, import pending")

	if !s.settingsStore.GetLegacyAutoImport() {
		log.Printf("Legacy check: auto-import disabled, waiting for manual trigger")
		return
	}

	if s.taskClient != nil {
		if _, err := s.taskClient.Add(tasks.LegacyImportTask{Trigger: "scheduled"}).Save(); err != nil {
			log.Printf("Legacy check: failed to enqueue import task: %v", err)
		}
		return
	}

	if !s.importService.ExecuteImport(ctx) {
		log.Printf("Legacy check: import failed: %s", s.importService.GetErrorReport())
	}
}
