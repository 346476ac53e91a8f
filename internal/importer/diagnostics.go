package importer

import (
	"fmt"
	"strings"
	"sync"
	"time"
)

// maxReportPreview caps how many warning/error messages a report quotes
// verbatim; the full lists stay available through Warnings and Errors.
const maxReportPreview = 5

// Diagnostics accumulates warnings and errors across an import run.
// Warnings record recoverable degradations (lossy formatting, minted
// identifiers, skipped items); errors record failures that lost data.
// Safe for concurrent use.
type Diagnostics struct {
	mu        sync.Mutex
	warnings  []string
	errors    []string
	startedAt time.Time
}

func NewDiagnostics() *Diagnostics {
	return &Diagnostics{startedAt: time.Now()}
}

// Reset clears collected messages and restarts the run clock.
func (d *Diagnostics) Reset() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.warnings = nil
	d.errors = nil
	d.startedAt = time.Now()
}

func (d *Diagnostics) Warnf(format string, args ...any) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.warnings = append(d.warnings, fmt.Sprintf(format, args...))
}

func (d *Diagnostics) Errorf(format string, args ...any) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.errors = append(d.errors, fmt.Sprintf(format, args...))
}

// Warnings returns a copy of the collected warnings.
func (d *Diagnostics) Warnings() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]string, len(d.warnings))
	copy(out, d.warnings)
	return out
}

// Errors returns a copy of the collected errors.
func (d *Diagnostics) Errors() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]string, len(d.errors))
	copy(out, d.errors)
	return out
}

// Fatal reports whether at least one error was recorded.
func (d *Diagnostics) Fatal() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.errors) > 0
}

// RollbackUncommitted discards work not yet saved on the target context,
// recording the attempt in the run log.
func (d *Diagnostics) RollbackUncommitted(target TargetContext) error {
	if err := target.Rollback(); err != nil {
		d.Warnf("rollback of uncommitted work failed: %v", err)
		return err
	}
	return nil
}

// Report summarizes a finished (or failed) run.
type Report struct {
	ProjectsProcessed int
	ProjectsTotal     int
	WarningCount      int
	ErrorCount        int
	Duration          time.Duration
	SuccessRate       float64 // processed projects without errors / total
	Throughput        float64 // projects per second
	WarningPreview    []string
	ErrorPreview      []string
}

// Report derives run statistics from the collected diagnostics and the
// processed/total counts supplied by the caller.
func (d *Diagnostics) Report(processed, total int) Report {
	d.mu.Lock()
	defer d.mu.Unlock()

	r := Report{
		ProjectsProcessed: processed,
		ProjectsTotal:     total,
		WarningCount:      len(d.warnings),
		ErrorCount:        len(d.errors),
		Duration:          time.Since(d.startedAt),
		WarningPreview:    preview(d.warnings),
		ErrorPreview:      preview(d.errors),
	}
	if total > 0 {
		succeeded := processed - len(d.errors)
		if succeeded < 0 {
			succeeded = 0
		}
		r.SuccessRate = float64(succeeded) / float64(total)
	}
	if seconds := r.Duration.Seconds(); seconds > 0 {
		r.Throughput = float64(processed) / seconds
	}
	return r
}

// Summary renders the report as a human-readable block for logs and the
// stored import outcome.
func (r Report) Summary() string {
	var b strings.Builder
	fmt.Fprintf(&b, "imported %d/%d projects in %s (%.1f%% success, %.2f projects/s)\n",
		r.ProjectsProcessed, r.ProjectsTotal, r.Duration.Round(time.Millisecond),
		r.SuccessRate*100, r.Throughput)
	fmt.Fprintf(&b, "warnings: %d, errors: %d", r.WarningCount, r.ErrorCount)
	for _, w := range r.WarningPreview {
		fmt.Fprintf(&b, "\n  warning: %s", w)
	}
	for _, e := range r.ErrorPreview {
		fmt.Fprintf(&b, "\n  error: %s", e)
	}
	if extra := r.WarningCount - len(r.WarningPreview); extra > 0 {
		fmt.Fprintf(&b, "\n  ... and %d more warnings", extra)
	}
	if extra := r.ErrorCount - len(r.ErrorPreview); extra > 0 {
		fmt.Fprintf(&b, "\n  ... and %d more errors", extra)
	}
	return b.String()
}

func preview(messages []string) []string {
	n := len(messages)
	if n > maxReportPreview {
		n = maxReportPreview
	}
	out := make([]string, n)
	copy(out, messages[:n])
	return out
}
