package models

type JobTemplateSummary struct {
	ID   string
	Name string
}

// TableDefinition is one extended-property table definition. Only the
// tableName key matters to the import logic; everything else is carried
// through as-is.
type TableDefinition map[string]any

func (t TableDefinition) TableName() string {
	name, _ := t["tableName"].(string)
	return name
}

type JobTemplate struct {
	ID                               string            `json:"id"`
	Name                             string            `json:"name"`
	Priority                         string            `json:"priority"`
	AssignedTo                       string            `json:"assigned_to"`
	AssignedType                     string            `json:"assigned_type"`
	DiagramID                        string            `json:"diagram_id"`
	DiagramName                      string            `json:"diagram_name"`
	Description                      string            `json:"description"`
	State                            string            `json:"state"`
	ExtendedPropertyTableDefinitions []TableDefinition `json:"extended_property_table_definitions"`
}
