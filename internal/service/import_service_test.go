package service

import (
	"encoding/json"
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

func openArchive(t *testing.T) *archive.Archive {
	t.Helper()
	arc, err := archive.Open(t.TempDir())
	require.NoError(t, err)
	return arc
}

func newImport(t *testing.T, dest *fakeWorkflow, arc *archive.Archive) *ImportService {
	t.Helper()
	return NewImportService(dest, arc, "item-dest", nil, nil, zap.NewNop())
}

func TestImportCreatesMissingDiagram(t *testing.T) {
	arc := openArchive(t)
	_, err := arc.WriteDiagram(models.Diagram{
		ID: "old-1", Name: "Data Edits", Steps: json.RawMessage(`[]`), Active: true,
	})
	require.NoError(t, err)

	dest := newFakeWorkflow()
	report, err := newImport(t, dest, arc).Run()
	require.NoError(t, err)

	require.Len(t, dest.createdDiagrams, 1)
	assert.Equal(t, "Data Edits", dest.createdDiagrams[0].Name)
	assert.Equal(t, 1, report.Succeeded())

	idMap, err := arc.ReadDiagramIDMap()
	require.NoError(t, err)
	assert.Equal(t, "new-diagram-1", idMap.Mappings["old-1"])
}

func TestImportSkipsExistingDiagramButMapsItsID(t *testing.T) {
	arc := openArchive(t)
	_, err := arc.WriteDiagram(models.Diagram{
		ID: "old-1", Name: "Data Edits", Steps: json.RawMessage(`[]`),
	})
	require.NoError(t, err)

	dest := newFakeWorkflow()
	dest.diagrams = []models.Diagram{{ID: "dest-7", Name: "Data Edits"}}

	report, err := newImport(t, dest, arc).Run()
	require.NoError(t, err)

	// No creation call, but the id map still carries the remapping.
	assert.Empty(t, dest.createdDiagrams)
	assert.Equal(t, 1, report.Skipped())

	idMap, err := arc.ReadDiagramIDMap()
	require.NoError(t, err)
	assert.Equal(t, "dest-7", idMap.Mappings["old-1"])
}

func TestImportRemapsJobTemplateDiagramID(t *testing.T) {
	arc := openArchive(t)
	_, err := arc.WriteDiagram(models.Diagram{
		ID: "old-1", Name: "Data Edits", Steps: json.RawMessage(`[]`),
	})
	require.NoError(t, err)
	_, err = arc.WriteJobTemplate(models.JobTemplate{
		ID: "jt-1", Name: "Parcel Update", DiagramID: "old-1", DiagramName: "Data Edits",
	})
	require.NoError(t, err)

	dest := newFakeWorkflow()
	_, err = newImport(t, dest, arc).Run()
	require.NoError(t, err)

	require.Len(t, dest.createdTemplates, 1)
	assert.Equal(t, "new-diagram-1", dest.createdTemplates[0].template.DiagramID)
}

func TestEmptyDefsAndAllExistingDefsTakeTheSameShape(t *testing.T) {
	arc := openArchive(t)
	_, err := arc.WriteJobTemplate(models.JobTemplate{
		ID: "jt-1", Name: "No Tables",
	})
	require.NoError(t, err)
	_, err = arc.WriteJobTemplate(models.JobTemplate{
		ID: "jt-2", Name: "Known Tables",
		ExtendedPropertyTableDefinitions: []models.TableDefinition{{"tableName": "parcel_props"}},
	})
	require.NoError(t, err)

	dest := newFakeWorkflow()
	dest.tables = []string{"parcel_props"}

	_, err = newImport(t, dest, arc).Run()
	require.NoError(t, err)

	require.Len(t, dest.createdTemplates, 2)
	for _, created := range dest.createdTemplates {
		assert.False(t, created.includeTables,
			"%s should omit the table definitions field", created.template.Name)
	}
}

func TestNovelTablesSurviveExistingOnesAreDropped(t *testing.T) {
	arc := openArchive(t)
	_, err := arc.WriteJobTemplate(models.JobTemplate{
		ID: "jt-1", Name: "Mixed Tables",
		ExtendedPropertyTableDefinitions: []models.TableDefinition{
			{"tableName": "parcel_props"},
			{"tableName": "inspection_props"},
		},
	})
	require.NoError(t, err)

	dest := newFakeWorkflow()
	dest.tables = []string{"parcel_props"}

	_, err = newImport(t, dest, arc).Run()
	require.NoError(t, err)

	require.Len(t, dest.createdTemplates, 1)
	created := dest.createdTemplates[0]
	assert.True(t, created.includeTables)
	require.Len(t, created.template.ExtendedPropertyTableDefinitions, 1)
	assert.Equal(t, "inspection_props", created.template.ExtendedPropertyTableDefinitions[0].TableName())
}

func TestLegacyBranchKeysOffFirstTableOnly(t *testing.T) {
	arc := openArchive(t)
	_, err := arc.WriteJobTemplate(models.JobTemplate{
		ID: "jt-1", Name: "Mixed Tables",
		ExtendedPropertyTableDefinitions: []models.TableDefinition{
			{"tableName": "parcel_props"},     // exists at the destination
			{"tableName": "inspection_props"}, // novel, but never consulted
		},
	})
	require.NoError(t, err)

	dest := newFakeWorkflow()
	dest.tables = []string{"parcel_props"}

	svc := newImport(t, dest, arc)
	svc.LegacyTableBranch = true
	_, err = svc.Run()
	require.NoError(t, err)

	require.Len(t, dest.createdTemplates, 1)
	assert.False(t, dest.createdTemplates[0].includeTables)
}

func TestLegacyBranchSendsEmptyDefsOnTheWire(t *testing.T) {
	arc := openArchive(t)
	_, err := arc.WriteJobTemplate(models.JobTemplate{
		ID: "jt-1", Name: "No Tables",
		ExtendedPropertyTableDefinitions: []models.TableDefinition{},
	})
	require.NoError(t, err)

	dest := newFakeWorkflow()
	svc := newImport(t, dest, arc)
	svc.LegacyTableBranch = true
	_, err = svc.Run()
	require.NoError(t, err)

	require.Len(t, dest.createdTemplates, 1)
	assert.True(t, dest.createdTemplates[0].includeTables)
}

func TestImportSkipsExistingJobTemplateByName(t *testing.T) {
	arc := openArchive(t)
	_, err := arc.WriteJobTemplate(models.JobTemplate{ID: "jt-1", Name: "Parcel Update"})
	require.NoError(t, err)

	dest := newFakeWorkflow()
	dest.templates = []models.JobTemplate{{ID: "dest-jt", Name: "Parcel Update"}}

	report, err := newImport(t, dest, arc).Run()
	require.NoError(t, err)
	assert.Empty(t, dest.createdTemplates)
	assert.Equal(t, 1, report.Skipped())
}

func TestBadFileDoesNotBlockSiblings(t *testing.T) {
	arc := openArchive(t)
	_, err := arc.WriteDiagram(models.Diagram{
		ID: "old-1", Name: "Data Edits", Steps: json.RawMessage(`[]`),
	})
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(
		filepath.Join(arc.Dir(), "Diagram___broken.json"), []byte("{not json"), 0o644))

	dest := newFakeWorkflow()
	report, err := newImport(t, dest, arc).Run()
	require.NoError(t, err)

	require.Len(t, dest.createdDiagrams, 1)
	assert.Equal(t, 1, report.Failed())
	assert.Equal(t, 1, report.Succeeded())

	var archiveErr *ArchiveError
	for _, item := range report.Items {
		if item.Status == repository.ItemStatusFailed {
			require.ErrorAs(t, item.Err, &archiveErr)
			assert.Equal(t, "Diagram___broken.json", archiveErr.File)
		}
	}
}

func TestEmailSettingsOnlyImportedWhenDestinationHasNone(t *testing.T) {
	arc := openArchive(t)
	_, err := arc.WriteEmailSettings(models.EmailSettings{
		Settings: []json.RawMessage{json.RawMessage(`{"smtpServer":"mail.example.com"}`)},
	})
	require.NoError(t, err)
	_, err = arc.WriteEmailTemplates([]models.EmailTemplate{
		{TemplateName: "Job Assigned", TemplateDetails: json.RawMessage(`{"subject":"hi"}`)},
		{TemplateName: "Job Closed", TemplateDetails: json.RawMessage(`{"subject":"bye"}`)},
	})
	require.NoError(t, err)

	dest := newFakeWorkflow()
	dest.settings = []json.RawMessage{json.RawMessage(`{"smtpServer":"existing"}`)}
	dest.emails = []models.EmailTemplate{{TemplateID: "e-1", TemplateName: "Job Assigned"}}

	report, err := newImport(t, dest, arc).Run()
	require.NoError(t, err)

	// Existing settings stay untouched; only the missing template lands.
	assert.Empty(t, dest.settingsUpdates)
	require.Len(t, dest.createdEmails, 1)
	assert.Equal(t, "Job Closed", dest.createdEmails[0].TemplateName)
	assert.Equal(t, 2, report.Skipped())
}

func TestEmailSettingsImportedWhenDestinationEmpty(t *testing.T) {
	arc := openArchive(t)
	_, err := arc.WriteEmailSettings(models.EmailSettings{
		Settings: []json.RawMessage{json.RawMessage(`{"smtpServer":"mail.example.com"}`)},
	})
	require.NoError(t, err)

	dest := newFakeWorkflow()
	_, err = newImport(t, dest, arc).Run()
	require.NoError(t, err)

	require.Len(t, dest.settingsUpdates, 1)
}

func TestLookupImportIsIdempotent(t *testing.T) {
	arc := openArchive(t)
	imported := models.LookupTable{Lookups: []models.Lookup{
		{"lookupName": "In Progress", "value": float64(2)},
		{"lookupName": "Closed", "value": float64(5)},
	}}
	_, err := arc.WriteLookups(imported)
	require.NoError(t, err)

	dest := newFakeWorkflow()

	first, err := newImport(t, dest, arc).Run()
	require.NoError(t, err)
	assert.Equal(t, 1, first.Succeeded())

	second, err := newImport(t, dest, arc).Run()
	require.NoError(t, err)
	assert.Equal(t, 1, second.Succeeded())

	// Replaced both times, with identical content: the destination set is
	// unchanged after the second run.
	require.Len(t, dest.lookupPuts, 2)
	assert.Equal(t, dest.lookupPuts[0], dest.lookupPuts[1])
	require.Len(t, dest.lookups.Lookups, 2)
	assert.Equal(t, "In Progress", dest.lookups.Lookups[0].LookupName())
}
