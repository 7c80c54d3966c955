package service

import (
	"encoding/json"
	"fmt"

	"github.com/TWRT/wmx-migrator/internal/models"
)

// fakeWorkflow is an in-memory stand-in for one workflow instance. It
// records every creation call so tests can assert on the exact shapes the
// services chose.
type fakeWorkflow struct {
	diagrams  []models.Diagram
	templates []models.JobTemplate
	tables    []string
	settings  []json.RawMessage
	emails    []models.EmailTemplate
	lookups   models.LookupTable

	createdDiagrams  []models.Diagram
	createdTemplates []templateCreate
	createdEmails    []models.EmailTemplate
	settingsUpdates  []models.EmailSettings
	lookupPuts       [][]models.Lookup

	failDiagramGet map[string]error
	nextID         int
}

type templateCreate struct {
	template      models.JobTemplate
	includeTables bool
}

func newFakeWorkflow() *fakeWorkflow {
	return &fakeWorkflow{failDiagramGet: map[string]error{}}
}

func (f *fakeWorkflow) newID(prefix string) string {
	f.nextID++
	return fmt.Sprintf("%s-%d", prefix, f.nextID)
}

func (f *fakeWorkflow) Diagrams() ([]models.DiagramSummary, error) {
	summaries := make([]models.DiagramSummary, len(f.diagrams))
	for i, d := range f.diagrams {
		summaries[i] = models.DiagramSummary{ID: d.ID, Name: d.Name}
	}
	return summaries, nil
}

func (f *fakeWorkflow) Diagram(id string) (*models.Diagram, error) {
	if err := f.failDiagramGet[id]; err != nil {
		return nil, err
	}
	for i := range f.diagrams {
		if f.diagrams[i].ID == id {
			d := f.diagrams[i]
			return &d, nil
		}
	}
	return nil, fmt.Errorf("diagram %s not found", id)
}

func (f *fakeWorkflow) CreateDiagram(d models.Diagram) (string, error) {
	d.ID = f.newID("new-diagram")
	f.createdDiagrams = append(f.createdDiagrams, d)
	f.diagrams = append(f.diagrams, d)
	return d.ID, nil
}

func (f *fakeWorkflow) JobTemplates() ([]models.JobTemplateSummary, error) {
	summaries := make([]models.JobTemplateSummary, len(f.templates))
	for i, t := range f.templates {
		summaries[i] = models.JobTemplateSummary{ID: t.ID, Name: t.Name}
	}
	return summaries, nil
}

func (f *fakeWorkflow) JobTemplate(id string) (*models.JobTemplate, error) {
	for i := range f.templates {
		if f.templates[i].ID == id {
			t := f.templates[i]
			return &t, nil
		}
	}
	return nil, fmt.Errorf("job template %s not found", id)
}

func (f *fakeWorkflow) CreateJobTemplate(t models.JobTemplate, includeTables bool) (string, error) {
	f.createdTemplates = append(f.createdTemplates, templateCreate{template: t, includeTables: includeTables})
	newID := f.newID("new-template")
	created := t
	created.ID = newID
	f.templates = append(f.templates, created)
	return newID, nil
}

func (f *fakeWorkflow) TableDefinitions() ([]string, error) {
	return f.tables, nil
}

func (f *fakeWorkflow) Settings() ([]json.RawMessage, error) {
	return f.settings, nil
}

func (f *fakeWorkflow) UpdateSettings(s models.EmailSettings) error {
	f.settingsUpdates = append(f.settingsUpdates, s)
	f.settings = s.Settings
	return nil
}

func (f *fakeWorkflow) EmailTemplates() ([]models.EmailTemplate, error) {
	return f.emails, nil
}

func (f *fakeWorkflow) CreateEmailTemplate(t models.EmailTemplate) (string, error) {
	t.TemplateID = f.newID("new-email")
	f.createdEmails = append(f.createdEmails, t)
	f.emails = append(f.emails, t)
	return t.TemplateID, nil
}

func (f *fakeWorkflow) Lookups(table string) (models.LookupTable, error) {
	return f.lookups, nil
}

func (f *fakeWorkflow) CreateLookup(table string, lookups []models.Lookup) error {
	f.lookupPuts = append(f.lookupPuts, lookups)
	f.lookups = models.LookupTable{Lookups: lookups}
	return nil
}
