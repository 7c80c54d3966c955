package models

import "encoding/json"

// EmailSettings is the settings___EmailNotifications.json payload. The
// settings entries are opaque blobs owned by the service. The exported file
// carries placeholder credentials; the email password has to be re-entered
// on the destination after import.
type EmailSettings struct {
	Settings []json.RawMessage `json:"settings"`
}

// EmailTemplate is one entry of the EmailTemplate___ALL.json aggregate file.
type EmailTemplate struct {
	TemplateID      string          `json:"templateId,omitempty"`
	TemplateName    string          `json:"templateName"`
	TemplateDetails json.RawMessage `json:"templateDetails"`
}
