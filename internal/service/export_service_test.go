package service

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/TWRT/wmx-migrator/internal/archive"
	"github.com/TWRT/wmx-migrator/internal/models"
	"github.com/TWRT/wmx-migrator/internal/repository"
)

func sourceWithTwoDiagrams() *fakeWorkflow {
	f := newFakeWorkflow()
	f.diagrams = []models.Diagram{
		{
			ID: "d-1", Name: "Data Edits", Version: 2,
			Steps:       json.RawMessage(`[{"id":"s1"}]`),
			DisplayGrid: true, InitialStepID: "s1", InitialStepName: "Review",
		},
		{
			ID: "d-2", Name: "QA Review", Version: 1,
			Steps: json.RawMessage(`[{"id":"s2"}]`),
		},
	}
	f.templates = []models.JobTemplate{
		{ID: "jt-1", Name: "Parcel Update", Priority: "High", DiagramID: "d-1", DiagramName: "Data Edits"},
	}
	f.settings = []json.RawMessage{json.RawMessage(`{"smtpServer":"mail.example.com"}`)}
	f.emails = []models.EmailTemplate{
		{TemplateID: "e-1", TemplateName: "Job Assigned", TemplateDetails: json.RawMessage(`{"subject":"hi"}`)},
	}
	f.lookups = models.LookupTable{Lookups: []models.Lookup{{"lookupName": "In Progress", "value": float64(2)}}}
	return f
}

func TestExportWritesOneFilePerObject(t *testing.T) {
	dir := t.TempDir()
	arc, err := archive.Open(dir)
	require.NoError(t, err)

	source := sourceWithTwoDiagrams()
	svc := NewExportService(source, arc, "item-src", nil, nil, zap.NewNop())

	report, err := svc.Run()
	require.NoError(t, err)
	assert.Equal(t, 6, report.Succeeded())
	assert.Zero(t, report.Failed())

	for _, name := range []string{
		"Diagram___d-1.json",
		"Diagram___d-2.json",
		"Template___jt-1.json",
		"settings___EmailNotifications.json",
		"EmailTemplate___ALL.json",
		"lookups___status.json",
		"manifest.json",
	} {
		_, err := os.Stat(filepath.Join(dir, name))
		assert.NoError(t, err, name)
	}

	// Diagram files round-trip to the exported field set, with active
	// forced on the way out.
	got, err := arc.ReadDiagram("Diagram___d-1.json")
	require.NoError(t, err)
	assert.Equal(t, "Data Edits", got.Name)
	assert.Equal(t, 2, got.Version)
	assert.True(t, got.Active)
	assert.JSONEq(t, `[{"id":"s1"}]`, string(got.Steps))
}

func TestExportManifestListsEveryObject(t *testing.T) {
	arc, err := archive.Open(t.TempDir())
	require.NoError(t, err)

	source := sourceWithTwoDiagrams()
	svc := NewExportService(source, arc, "item-src", nil, nil, zap.NewNop())
	_, err = svc.Run()
	require.NoError(t, err)

	manifest, err := arc.ReadManifest()
	require.NoError(t, err)
	assert.Equal(t, "item-src", manifest.SourceItemID)
	require.Len(t, manifest.Entries, 6)

	var diagramEntries int
	for _, e := range manifest.Entries {
		if e.Type == models.ObjectTypeDiagram {
			diagramEntries++
			assert.NotEmpty(t, e.ID)
			assert.NotEmpty(t, e.Name)
		}
	}
	assert.Equal(t, 2, diagramEntries)
}

func TestExportContinuesPastOneFailingDiagram(t *testing.T) {
	arc, err := archive.Open(t.TempDir())
	require.NoError(t, err)

	source := sourceWithTwoDiagrams()
	source.failDiagramGet["d-1"] = errors.New("connection reset")

	svc := NewExportService(source, arc, "item-src", nil, nil, zap.NewNop())
	report, err := svc.Run()
	require.NoError(t, err)

	// d-1 failed, d-2 and the remaining steps still exported.
	assert.Equal(t, 1, report.Failed())
	assert.Equal(t, 5, report.Succeeded())

	var remoteErr *RemoteError
	for _, item := range report.Items {
		if item.Status == repository.ItemStatusFailed {
			require.ErrorAs(t, item.Err, &remoteErr)
		}
	}

	_, err = arc.ReadDiagram("Diagram___d-2.json")
	assert.NoError(t, err)
}
