package importer

import (
	"sync"
	"time"
)

// Phase names the stage an import run is currently in.
type Phase string

const (
	PhaseNotStarted        Phase = "not_started"
	PhaseConnecting        Phase = "connecting"
	PhaseFetchingProjects  Phase = "fetching_projects"
	PhaseImportingProjects Phase = "importing_projects"
	PhaseFinalCommit       Phase = "final_commit"
	PhaseCompleted         Phase = "completed"
	PhaseFailed            Phase = "failed"
)

// Progress tracks the observable state of an import run. It is written by
// the orchestrator goroutine and read concurrently by HTTP status handlers.
type Progress struct {
	mu          sync.RWMutex
	phase       Phase
	totalItems  int
	processed   int
	currentItem string
	startedAt   time.Time
}

func NewProgress() *Progress {
	return &Progress{phase: PhaseNotStarted}
}

// Reset returns the tracker to its initial state and restarts the clock.
func (p *Progress) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.phase = PhaseNotStarted
	p.totalItems = 0
	p.processed = 0
	p.currentItem = ""
	p.startedAt = time.Now()
}

func (p *Progress) SetPhase(phase Phase) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.phase = phase
	if phase == PhaseCompleted || phase == PhaseFailed {
		p.currentItem = ""
	}
}

func (p *Progress) SetTotal(total int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.totalItems = total
}

// ItemStarted records the item currently being processed.
func (p *Progress) ItemStarted(name string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.currentItem = name
}

// ItemCompleted bumps the processed counter. Items that fail still count as
// processed: progress measures work attempted, diagnostics measure outcome.
func (p *Progress) ItemCompleted() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.processed++
}

// Snapshot is a point-in-time copy of the run state with derived figures.
type Snapshot struct {
	Phase          Phase         `json:"phase"`
	TotalItems     int           `json:"total_items"`
	ProcessedItems int           `json:"processed_items"`
	CurrentItem    string        `json:"current_item,omitempty"`
	Completed      bool          `json:"completed"`
	Failed         bool          `json:"failed"`
	Percent        float64       `json:"percent"`
	Elapsed        time.Duration `json:"elapsed"`
	ItemsPerSecond float64       `json:"items_per_second"`
	// ETA is zero until at least one item completed; extrapolating from
	// nothing produces garbage.
	ETA time.Duration `json:"eta"`
}

func (p *Progress) Snapshot() Snapshot {
	p.mu.RLock()
	defer p.mu.RUnlock()

	s := Snapshot{
		Phase:          p.phase,
		TotalItems:     p.totalItems,
		ProcessedItems: p.processed,
		CurrentItem:    p.currentItem,
		Completed:      p.phase == PhaseCompleted,
		Failed:         p.phase == PhaseFailed,
	}
	if !p.startedAt.IsZero() {
		s.Elapsed = time.Since(p.startedAt)
	}
	if p.totalItems > 0 {
		s.Percent = float64(p.processed) / float64(p.totalItems) * 100
	}
	if p.processed > 0 && s.Elapsed > 0 {
		s.ItemsPerSecond = float64(p.processed) / s.Elapsed.Seconds()
		remaining := p.totalItems - p.processed
		if remaining > 0 {
			perItem := s.Elapsed / time.Duration(p.processed)
			s.ETA = perItem * time.Duration(remaining)
		}
	}
	return s
}
