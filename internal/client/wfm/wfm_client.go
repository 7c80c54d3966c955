package wfm

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/TWRT/wmx-migrator/internal/models"
)

// Client is a typed client for one workflow item of a Workflow Manager
// instance. The session token travels in the Authorization header on every
// call, including the email template endpoints.
type Client struct {
	baseUrl    string
	itemID     string
	token      string
	httpClient *http.Client
}

func NewClient(baseUrl, itemID, token string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseUrl:    baseUrl,
		itemID:     itemID,
		token:      token,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// GenerateToken exchanges portal credentials for a session token.
func GenerateToken(portalUrl, username, password string, timeout time.Duration) (string, error) {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	form := url.Values{}
	form.Set("username", username)
	form.Set("password", password)
	form.Set("f", "json")

	httpClient := &http.Client{Timeout: timeout}
	resp, err := httpClient.PostForm(portalUrl+"/sharing/rest/generateToken", form)
	if err != nil {
		return "", fmt.Errorf("generate token (wfm): %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read token response (wfm): %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", decodeError(resp.StatusCode, body)
	}

	var tokenResp generateTokenResponse
	if err := json.Unmarshal(body, &tokenResp); err != nil {
		return "", fmt.Errorf("parse token response (wfm): %w", err)
	}
	if tokenResp.Token == "" {
		return "", decodeError(resp.StatusCode, body)
	}
	return tokenResp.Token, nil
}

func (c *Client) itemUrl(path string) string {
	return c.baseUrl + "/" + c.itemID + path
}

func decodeError(status int, body []byte) error {
	var wfmErr wfmError
	if err := json.Unmarshal(body, &wfmErr); err == nil && wfmErr.Error.Message != "" {
		return fmt.Errorf("workflow manager error: %s", wfmErr.Error.Message)
	}
	return fmt.Errorf("API error status: %d", status)
}

func (c *Client) do(method, path string, reqBody, respBody any) error {
	var payload io.Reader
	if reqBody != nil {
		b, err := json.Marshal(reqBody)
		if err != nil {
			return fmt.Errorf("marshal request (wfm): %w", err)
		}
		payload = bytes.NewBuffer(b)
	}

	req, err := http.NewRequest(method, c.itemUrl(path), payload)
	if err != nil {
		return fmt.Errorf("build request (wfm): %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/json")
	if reqBody != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s (wfm): %w", method, path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response body (wfm): %w", err)
	}
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return decodeError(resp.StatusCode, body)
	}

	if respBody != nil {
		if err := json.Unmarshal(body, respBody); err != nil {
			return fmt.Errorf("parse response for %s %s (wfm): %w", method, path, err)
		}
	}
	return nil
}

func (c *Client) Diagrams() ([]models.DiagramSummary, error) {
	var resp diagramsResponse
	if err := c.do(http.MethodGet, "/diagrams", nil, &resp); err != nil {
		return nil, err
	}
	summaries := make([]models.DiagramSummary, len(resp.Diagrams))
	for i, d := range resp.Diagrams {
		summaries[i] = models.DiagramSummary{ID: d.DiagramID, Name: d.DiagramName}
	}
	return summaries, nil
}

func (c *Client) Diagram(id string) (*models.Diagram, error) {
	var resp diagramResponse
	if err := c.do(http.MethodGet, "/diagrams/"+id, nil, &resp); err != nil {
		return nil, err
	}
	return &models.Diagram{
		ID:              resp.DiagramID,
		Name:            resp.DiagramName,
		Version:         resp.DiagramVersion,
		Steps:           resp.Steps,
		DisplayGrid:     resp.DisplayGrid,
		Description:     resp.Description,
		Active:          resp.Active,
		Annotations:     resp.Annotations,
		DataSources:     resp.DataSources,
		InitialStepID:   resp.InitialStepID,
		InitialStepName: resp.InitialStepName,
	}, nil
}

func (c *Client) CreateDiagram(d models.Diagram) (string, error) {
	reqBody := createDiagramRequest{
		DiagramName: d.Name,
		Steps:       d.Steps,
		DisplayGrid: d.DisplayGrid,
		Description: d.Description,
		Active:      d.Active,
		Annotations: d.Annotations,
		DataSources: d.DataSources,
	}
	var resp createDiagramResponse
	if err := c.do(http.MethodPost, "/diagrams", reqBody, &resp); err != nil {
		return "", err
	}
	return resp.DiagramID, nil
}

func (c *Client) JobTemplates() ([]models.JobTemplateSummary, error) {
	var resp jobTemplatesResponse
	if err := c.do(http.MethodGet, "/jobTemplates", nil, &resp); err != nil {
		return nil, err
	}
	summaries := make([]models.JobTemplateSummary, len(resp.JobTemplates))
	for i, t := range resp.JobTemplates {
		summaries[i] = models.JobTemplateSummary{ID: t.JobTemplateID, Name: t.JobTemplateName}
	}
	return summaries, nil
}

func (c *Client) JobTemplate(id string) (*models.JobTemplate, error) {
	var resp jobTemplateResponse
	if err := c.do(http.MethodGet, "/jobTemplates/"+id, nil, &resp); err != nil {
		return nil, err
	}
	defs := make([]models.TableDefinition, len(resp.ExtendedPropertyTableDefinitions))
	for i, d := range resp.ExtendedPropertyTableDefinitions {
		defs[i] = models.TableDefinition(d)
	}
	return &models.JobTemplate{
		ID:                               resp.JobTemplateID,
		Name:                             resp.JobTemplateName,
		Priority:                         resp.DefaultPriorityName,
		AssignedTo:                       resp.DefaultAssignedTo,
		AssignedType:                     resp.DefaultAssignedType,
		DiagramID:                        resp.DiagramID,
		DiagramName:                      resp.DiagramName,
		Description:                      resp.Description,
		State:                            resp.State,
		ExtendedPropertyTableDefinitions: defs,
	}, nil
}

func (c *Client) CreateJobTemplate(t models.JobTemplate, includeTables bool) (string, error) {
	reqBody := createJobTemplateRequest{
		JobTemplateID:       t.ID,
		JobTemplateName:     t.Name,
		DefaultPriorityName: t.Priority,
		DefaultAssignedTo:   t.AssignedTo,
		DefaultAssignedType: t.AssignedType,
		DiagramID:           t.DiagramID,
		DiagramName:         t.DiagramName,
		Description:         t.Description,
		State:               t.State,
	}
	if includeTables {
		defs := make([]map[string]any, len(t.ExtendedPropertyTableDefinitions))
		for i, d := range t.ExtendedPropertyTableDefinitions {
			defs[i] = map[string]any(d)
		}
		reqBody.ExtendedPropertyTableDefinitions = &defs
	}

	var resp createJobTemplateResponse
	if err := c.do(http.MethodPost, "/jobTemplates", reqBody, &resp); err != nil {
		return "", err
	}
	return resp.JobTemplateID, nil
}

func (c *Client) TableDefinitions() ([]string, error) {
	var resp tableDefinitionsResponse
	if err := c.do(http.MethodGet, "/tableDefinitions", nil, &resp); err != nil {
		return nil, err
	}
	names := make([]string, len(resp.TableDefinitions))
	for i, d := range resp.TableDefinitions {
		names[i] = d.TableName
	}
	return names, nil
}

func (c *Client) Settings() ([]json.RawMessage, error) {
	var resp settingsResponse
	if err := c.do(http.MethodGet, "/settings", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Settings, nil
}

func (c *Client) UpdateSettings(s models.EmailSettings) error {
	return c.do(http.MethodPost, "/settings", updateSettingsRequest{Settings: s.Settings}, nil)
}

func (c *Client) EmailTemplates() ([]models.EmailTemplate, error) {
	var resp emailTemplatesResponse
	if err := c.do(http.MethodGet, "/templates/email", nil, &resp); err != nil {
		return nil, err
	}
	templates := make([]models.EmailTemplate, len(resp.Templates))
	for i, t := range resp.Templates {
		templates[i] = models.EmailTemplate{
			TemplateID:      t.TemplateID,
			TemplateName:    t.TemplateName,
			TemplateDetails: t.TemplateDetails,
		}
	}
	return templates, nil
}

func (c *Client) CreateEmailTemplate(t models.EmailTemplate) (string, error) {
	reqBody := emailTemplate{
		TemplateName:    t.TemplateName,
		TemplateDetails: t.TemplateDetails,
	}
	var resp createEmailTemplateResponse
	if err := c.do(http.MethodPost, "/templates/email", reqBody, &resp); err != nil {
		return "", err
	}
	return resp.TemplateID, nil
}

func (c *Client) Lookups(table string) (models.LookupTable, error) {
	var resp lookupsResponse
	if err := c.do(http.MethodGet, "/lookups/"+table, nil, &resp); err != nil {
		return models.LookupTable{}, err
	}
	lookups := make([]models.Lookup, len(resp.Lookups))
	for i, l := range resp.Lookups {
		lookups[i] = models.Lookup(l)
	}
	return models.LookupTable{Lookups: lookups}, nil
}

func (c *Client) CreateLookup(table string, lookups []models.Lookup) error {
	rows := make([]map[string]any, len(lookups))
	for i, l := range lookups {
		rows[i] = map[string]any(l)
	}
	return c.do(http.MethodPut, "/lookups/"+table, putLookupsRequest{Lookups: rows}, nil)
}
