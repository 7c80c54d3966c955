package service

import (
	"fmt"
	"strings"

	"github.com/TWRT/wmx-migrator/internal/models"
	"github.com/TWRT/wmx-migrator/internal/repository"
)

// Step names as they appear in reports and the run ledger.
const (
	StepDiagrams           = "diagrams"
	StepJobTemplates       = "job_templates"
	StepEmailNotifications = "email_notifications"
	StepLookups            = "lookups"
)

type ItemOutcome struct {
	Step     string
	Type     models.ObjectType
	Name     string
	SourceID string
	DestID   string
	Status   repository.ItemStatus
	Err      error
}

// Report is the per-item outcome of one run. One failed item never hides the
// outcome of its siblings.
type Report struct {
	RunID string
	Items []ItemOutcome
}

func newReport(runID string) *Report {
	return &Report{RunID: runID}
}

func (r *Report) add(item ItemOutcome) {
	r.Items = append(r.Items, item)
}

func (r *Report) Succeeded() int { return r.count(repository.ItemStatusSucceeded) }
func (r *Report) Skipped() int   { return r.count(repository.ItemStatusSkipped) }
func (r *Report) Failed() int    { return r.count(repository.ItemStatusFailed) }

func (r *Report) count(status repository.ItemStatus) int {
	n := 0
	for _, item := range r.Items {
		if item.Status == status {
			n++
		}
	}
	return n
}

func (r *Report) Status() string {
	if r.Failed() > 0 {
		return "completed_with_errors"
	}
	return "completed"
}

// Summary renders the report for the command line.
func (r *Report) Summary() string {
	var b strings.Builder
	fmt.Fprintf(&b, "run %s: %d succeeded, %d skipped, %d failed\n",
		r.RunID, r.Succeeded(), r.Skipped(), r.Failed())
	for _, item := range r.Items {
		if item.Status != repository.ItemStatusFailed {
			continue
		}
		fmt.Fprintf(&b, "  failed [%s] %s %s: %v\n", item.Step, item.Type, item.Name, item.Err)
	}
	return b.String()
}

// recorder persists item outcomes into the run ledger as they happen.
type recorder struct {
	report *Report
	items  *repository.ItemResultRepository
}

func (rec *recorder) record(item ItemOutcome) {
	rec.report.add(item)
	if rec.items == nil {
		return
	}
	result := &repository.ItemResult{
		RunID:      rec.report.RunID,
		Step:       item.Step,
		ObjectType: string(item.Type),
		ObjectName: item.Name,
		SourceID:   item.SourceID,
		DestID:     item.DestID,
		Status:     item.Status,
	}
	if item.Err != nil {
		result.ErrorMessage = item.Err.Error()
	}
	// A ledger write failure must not disturb the migration itself.
	_ = rec.items.Create(result)
}
