package importer

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiagnostics_FatalOnlyOnErrors(t *testing.T) {
	diagnostics := NewDiagnostics()

	diagnostics.Warnf("lossy formatting on %q", "Chapter 3")
	assert.False(t, diagnostics.Fatal(), "warnings alone never mark a run fatal")

	diagnostics.Errorf("project %q lost", "Mardi")
	assert.True(t, diagnostics.Fatal())
}

func TestDiagnostics_ReportPreviewsFirstFive(t *testing.T) {
	diagnostics := NewDiagnostics()
	for i := 0; i < 7; i++ {
		diagnostics.Warnf("warning %d", i)
	}
	diagnostics.Errorf("one error")

	report := diagnostics.Report(10, 10)

	assert.Equal(t, 7, report.WarningCount)
	assert.Equal(t, 1, report.ErrorCount)
	require.Len(t, report.WarningPreview, 5)
	assert.Equal(t, "warning 0", report.WarningPreview[0])
	assert.Equal(t, "warning 4", report.WarningPreview[4])

	summary := report.Summary()
	assert.Contains(t, summary, "warnings: 7, errors: 1")
	assert.Contains(t, summary, "... and 2 more warnings")
}

func TestDiagnostics_ReportSuccessRate(t *testing.T) {
	diagnostics := NewDiagnostics()
	diagnostics.Errorf("project A failed")
	diagnostics.Errorf("project B failed")

	report := diagnostics.Report(10, 10)
	assert.InDelta(t, 0.8, report.SuccessRate, 0.001)

	empty := NewDiagnostics().Report(0, 0)
	assert.Zero(t, empty.SuccessRate, "no projects means no rate, not a division by zero")
}

func TestDiagnostics_ResetClearsEverything(t *testing.T) {
	diagnostics := NewDiagnostics()
	diagnostics.Warnf("stale")
	diagnostics.Errorf("stale")

	diagnostics.Reset()

	assert.Empty(t, diagnostics.Warnings())
	assert.Empty(t, diagnostics.Errors())
	assert.False(t, diagnostics.Fatal())
}

func TestDiagnostics_RollbackUncommitted(t *testing.T) {
	diagnostics := NewDiagnostics()
	target := &fakeTarget{}

	require.NoError(t, diagnostics.RollbackUncommitted(target))
	assert.Equal(t, 1, target.rollbacks)
}

func TestDiagnostics_RollbackFailureIsRecorded(t *testing.T) {
	diagnostics := NewDiagnostics()
	target := &failingRollbackTarget{err: errors.New("connection gone")}

	err := diagnostics.RollbackUncommitted(target)
	require.Error(t, err)
	require.Len(t, diagnostics.Warnings(), 1)
	assert.Contains(t, diagnostics.Warnings()[0], "rollback")
}

type failingRollbackTarget struct {
	fakeTarget
	err error
}

func (t *failingRollbackTarget) Rollback() error { return t.err }

func TestDiagnostics_ConcurrentAppends(t *testing.T) {
	diagnostics := NewDiagnostics()
	done := make(chan struct{})
	for i := 0; i < 4; i++ {
		go func(n int) {
			defer func() { done <- struct{}{} }()
			for j := 0; j < 50; j++ {
				diagnostics.Warnf("goroutine %d message %d", n, j)
			}
		}(i)
	}
	for i := 0; i < 4; i++ {
		<-done
	}
	assert.Len(t, diagnostics.Warnings(), 200)
}

func TestReport_SummaryShape(t *testing.T) {
	diagnostics := NewDiagnostics()
	diagnostics.Warnf("minted identifier for %q", "Chapter 1")

	summary := diagnostics.Report(3, 4).Summary()
	assert.Contains(t, summary, "imported 3/4 projects")
	assert.Contains(t, summary, fmt.Sprintf("warning: minted identifier for %q", "Chapter 1"))
}
