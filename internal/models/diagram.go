package models

import "encoding/json"

// DiagramSummary is the listing shape returned by the service; the full
// diagram has to be fetched per id.
type DiagramSummary struct {
	ID   string
	Name string
}

// Diagram mirrors the fields the export writes to disk. Steps, annotations
// and data sources are opaque to this tool and round-trip untouched.
type Diagram struct {
	ID              string          `json:"diagram_id"`
	Name            string          `json:"diagram_name"`
	Version         int             `json:"diagram_version"`
	Steps           json.RawMessage `json:"steps"`
	DisplayGrid     bool            `json:"display_grid"`
	Description     string          `json:"description"`
	Active          bool            `json:"active"`
	Annotations     json.RawMessage `json:"annotations"`
	DataSources     json.RawMessage `json:"data_sources"`
	InitialStepID   string          `json:"initial_step_id"`
	InitialStepName string          `json:"initial_step_name"`
}
