package wfm

import "encoding/json"

// Wire shapes of the Workflow Manager REST API. The service speaks
// camelCase; the snake_case file format lives in internal/models.

type wfmDetailError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type wfmError struct {
	Error wfmDetailError `json:"error"`
}

type diagramSummary struct {
	DiagramID   string `json:"diagramId"`
	DiagramName string `json:"diagramName"`
}

type diagramsResponse struct {
	Diagrams []diagramSummary `json:"diagrams"`
}

type diagramResponse struct {
	DiagramID       string          `json:"diagramId"`
	DiagramName     string          `json:"diagramName"`
	DiagramVersion  int             `json:"diagramVersion"`
	Steps           json.RawMessage `json:"steps"`
	DisplayGrid     bool            `json:"displayGrid"`
	Description     string          `json:"description"`
	Active          bool            `json:"active"`
	Annotations     json.RawMessage `json:"annotations,omitempty"`
	DataSources     json.RawMessage `json:"dataSources,omitempty"`
	InitialStepID   string          `json:"initialStepId"`
	InitialStepName string          `json:"initialStepName"`
}

type createDiagramRequest struct {
	DiagramName string          `json:"diagramName"`
	Steps       json.RawMessage `json:"steps"`
	DisplayGrid bool            `json:"displayGrid"`
	Description string          `json:"description"`
	Active      bool            `json:"active"`
	Annotations json.RawMessage `json:"annotations,omitempty"`
	DataSources json.RawMessage `json:"dataSources,omitempty"`
}

type createDiagramResponse struct {
	DiagramID string `json:"diagramId"`
}

type jobTemplateSummary struct {
	JobTemplateID   string `json:"jobTemplateId"`
	JobTemplateName string `json:"jobTemplateName"`
}

type jobTemplatesResponse struct {
	JobTemplates []jobTemplateSummary `json:"jobTemplates"`
}

type jobTemplateResponse struct {
	JobTemplateID                    string           `json:"jobTemplateId"`
	JobTemplateName                  string           `json:"jobTemplateName"`
	DefaultPriorityName              string           `json:"defaultPriorityName"`
	DefaultAssignedTo                string           `json:"defaultAssignedTo"`
	DefaultAssignedType              string           `json:"defaultAssignedType"`
	DiagramID                        string           `json:"diagramId"`
	DiagramName                      string           `json:"diagramName"`
	Description                      string           `json:"description"`
	State                            string           `json:"state"`
	ExtendedPropertyTableDefinitions []map[string]any `json:"extendedPropertyTableDefinitions"`
}

type createJobTemplateRequest struct {
	JobTemplateID       string `json:"jobTemplateId,omitempty"`
	JobTemplateName     string `json:"jobTemplateName"`
	DefaultPriorityName string `json:"defaultPriorityName"`
	DefaultAssignedTo   string `json:"defaultAssignedTo,omitempty"`
	DefaultAssignedType string `json:"defaultAssignedType,omitempty"`
	DiagramID           string `json:"diagramId,omitempty"`
	DiagramName         string `json:"diagramName,omitempty"`
	Description         string `json:"description"`
	State               string `json:"state"`
	// Pointer so an empty list still reaches the wire; the service treats
	// present-but-empty differently from absent.
	ExtendedPropertyTableDefinitions *[]map[string]any `json:"extendedPropertyTableDefinitions,omitempty"`
}

type createJobTemplateResponse struct {
	JobTemplateID string `json:"jobTemplateId"`
}

type tableDefinition struct {
	TableName string `json:"tableName"`
}

type tableDefinitionsResponse struct {
	TableDefinitions []tableDefinition `json:"tableDefinitions"`
}

type settingsResponse struct {
	Settings []json.RawMessage `json:"settings"`
}

type updateSettingsRequest struct {
	Settings []json.RawMessage `json:"settings"`
}

type emailTemplate struct {
	TemplateID      string          `json:"templateId,omitempty"`
	TemplateName    string          `json:"templateName"`
	TemplateDetails json.RawMessage `json:"templateDetails"`
}

type emailTemplatesResponse struct {
	Templates []emailTemplate `json:"templates"`
}

type createEmailTemplateResponse struct {
	TemplateID string `json:"templateId"`
}

type lookupsResponse struct {
	Lookups []map[string]any `json:"lookups"`
}

type putLookupsRequest struct {
	Lookups []map[string]any `json:"lookups"`
}

type statusResponse struct {
	Success bool `json:"success"`
}

type generateTokenResponse struct {
	Token string `json:"token"`
}
