package models

import "time"

type ObjectType string

const (
	ObjectTypeDiagram        ObjectType = "diagram"
	ObjectTypeJobTemplate    ObjectType = "job_template"
	ObjectTypeEmailSettings  ObjectType = "email_settings"
	ObjectTypeEmailTemplates ObjectType = "email_templates"
	ObjectTypeLookups        ObjectType = "lookups"
)

type ManifestEntry struct {
	Type ObjectType `json:"type"`
	ID   string     `json:"id,omitempty"`
	Name string     `json:"name,omitempty"`
	File string     `json:"file"`
}

// Manifest records what an export wrote, so a later import does not have to
// re-derive object type and id from filename conventions.
type Manifest struct {
	ExportedAt   time.Time       `json:"exported_at"`
	SourceItemID string          `json:"source_item_id"`
	Entries      []ManifestEntry `json:"entries"`
}

// DiagramIDMap is the diagram_id_map.json artifact written by diagram import
// and read by job-template import. Keys are source diagram ids, values the
// ids of the matching destination diagrams.
type DiagramIDMap struct {
	Mappings map[string]string `json:"mappings"`
}
