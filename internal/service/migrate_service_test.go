package service

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/TWRT/wmx-migrator/internal/models"
)

func newMigrate(source, dest *fakeWorkflow) *MigrateService {
	return NewMigrateService(source, dest, "item-src", "item-dest", nil, nil, zap.NewNop())
}

func TestMigrateDeduplicatesByID(t *testing.T) {
	source := newFakeWorkflow()
	source.diagrams = []models.Diagram{
		{ID: "d-1", Name: "Data Edits", Version: 1, Steps: json.RawMessage(`[]`)},
		{ID: "d-2", Name: "QA Review", Version: 0, Steps: json.RawMessage(`[]`)},
	}

	dest := newFakeWorkflow()
	// d-1 already migrated earlier, under a different name even.
	dest.diagrams = []models.Diagram{{ID: "d-1", Name: "Data Edits (renamed)"}}

	report, err := newMigrate(source, dest).Run()
	require.NoError(t, err)

	require.Len(t, dest.createdDiagrams, 1)
	assert.Equal(t, "QA Review", dest.createdDiagrams[0].Name)
	assert.Equal(t, 1, report.Skipped())
	assert.Equal(t, 1, report.Succeeded())
}

func TestMigrateDerivesActiveFromVersion(t *testing.T) {
	source := newFakeWorkflow()
	source.diagrams = []models.Diagram{
		{ID: "d-1", Name: "Published", Version: 3, Active: false, Steps: json.RawMessage(`[]`)},
		{ID: "d-2", Name: "Draft", Version: -1, Active: true, Steps: json.RawMessage(`[]`)},
	}

	dest := newFakeWorkflow()
	_, err := newMigrate(source, dest).Run()
	require.NoError(t, err)

	require.Len(t, dest.createdDiagrams, 2)
	byName := map[string]bool{}
	for _, d := range dest.createdDiagrams {
		byName[d.Name] = d.Active
	}
	assert.True(t, byName["Published"])
	assert.False(t, byName["Draft"])
}

func TestMigrateRemapsTemplateDiagramReference(t *testing.T) {
	source := newFakeWorkflow()
	source.diagrams = []models.Diagram{
		{ID: "d-1", Name: "Data Edits", Version: 1, Steps: json.RawMessage(`[]`)},
	}
	source.templates = []models.JobTemplate{
		{ID: "jt-1", Name: "Parcel Update", DiagramID: "d-1", DiagramName: "Data Edits"},
		{ID: "jt-2", Name: "Orphan", DiagramID: "d-gone", DiagramName: "Removed"},
	}

	dest := newFakeWorkflow()
	report, err := newMigrate(source, dest).Run()
	require.NoError(t, err)
	assert.Equal(t, 3, report.Succeeded())

	require.Len(t, dest.createdTemplates, 2)
	assert.Equal(t, "new-diagram-1", dest.createdTemplates[0].template.DiagramID)
	// An unmapped diagram reference is cleared, not carried over dangling.
	assert.Empty(t, dest.createdTemplates[1].template.DiagramID)
	assert.Empty(t, dest.createdTemplates[1].template.DiagramName)

	// The direct path always sends the table definitions field.
	for _, created := range dest.createdTemplates {
		assert.True(t, created.includeTables)
	}
}

func TestMigrateContinuesPastFailingDiagram(t *testing.T) {
	source := newFakeWorkflow()
	source.diagrams = []models.Diagram{
		{ID: "d-1", Name: "Data Edits", Version: 1, Steps: json.RawMessage(`[]`)},
		{ID: "d-2", Name: "QA Review", Version: 1, Steps: json.RawMessage(`[]`)},
	}
	source.failDiagramGet["d-1"] = assert.AnError

	dest := newFakeWorkflow()
	report, err := newMigrate(source, dest).Run()
	require.NoError(t, err)

	assert.Equal(t, 1, report.Failed())
	assert.Equal(t, 1, report.Succeeded())
	require.Len(t, dest.createdDiagrams, 1)
	assert.Equal(t, "QA Review", dest.createdDiagrams[0].Name)
}
