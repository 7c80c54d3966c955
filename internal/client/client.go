package client

import (
	"encoding/json"

	"github.com/TWRT/wmx-migrator/internal/models"
)

type DiagramClient interface {
	Diagrams() ([]models.DiagramSummary, error)
	Diagram(id string) (*models.Diagram, error)
	CreateDiagram(d models.Diagram) (string, error)
}

type JobTemplateClient interface {
	JobTemplates() ([]models.JobTemplateSummary, error)
	JobTemplate(id string) (*models.JobTemplate, error)
	// CreateJobTemplate issues the creation call. The extended-property
	// table definitions are included in the payload only when includeTables
	// is set; the service treats a present-but-empty list differently from
	// an absent one.
	CreateJobTemplate(t models.JobTemplate, includeTables bool) (string, error)
	TableDefinitions() ([]string, error)
}

type NotificationClient interface {
	Settings() ([]json.RawMessage, error)
	UpdateSettings(s models.EmailSettings) error
	EmailTemplates() ([]models.EmailTemplate, error)
	CreateEmailTemplate(t models.EmailTemplate) (string, error)
}

type LookupClient interface {
	Lookups(table string) (models.LookupTable, error)
	CreateLookup(table string, lookups []models.Lookup) error
}

type WorkflowClient interface {
	DiagramClient
	JobTemplateClient
	NotificationClient
	LookupClient
}
