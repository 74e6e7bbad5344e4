// Package extract wraps the external document extraction service. The
// service is a black box: given a file path it returns named fields with
// source evidence, or tables. When it is unreachable the client substitutes
// a fixed, clearly labeled placeholder set so the pipeline always has input.
package extract

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/complyco/copilot/internal/model"
)

// fallbackSection labels evidence on placeholder fields so consumers can
// tell real extraction from the degraded path
const fallbackSection = "placeholder extraction"

// Client talks to the extraction service
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewClient creates an extraction client. An empty BaseURL yields a client
// that always serves the placeholder set.
func NewClient(cfg model.ExtractConfig) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL:    strings.TrimSuffix(cfg.BaseURL, "/"),
		apiKey:     cfg.APIKey,
		httpClient: &http.Client{Timeout: timeout},
	}
}

type fieldsResponse struct {
	Fields []model.ContractField `json:"fields"`
}

type tablesResponse struct {
	Tables []model.Table `json:"tables"`
}

// Fields extracts named contract fields from the document at path. The
// second return reports whether the placeholder fallback was used; it never
// returns an error to the caller.
func (c *Client) Fields(ctx context.Context, path string) ([]model.ContractField, bool) {
	if c.baseURL == "" {
		return placeholderFields(path), true
	}

	var parsed fieldsResponse
	if err := c.post(ctx, "/extract_fields", path, &parsed); err != nil || len(parsed.Fields) == 0 {
		return placeholderFields(path), true
	}
	return parsed.Fields, false
}

// Tables extracts tabular structures from the document at path. On failure
// it returns the placeholder tables and reports fallback.
func (c *Client) Tables(ctx context.Context, path string) ([]model.Table, bool) {
	if c.baseURL == "" {
		return placeholderTables(), true
	}

	var parsed tablesResponse
	if err := c.post(ctx, "/extract_tables", path, &parsed); err != nil || len(parsed.Tables) == 0 {
		return placeholderTables(), true
	}
	return parsed.Tables, false
}

func (c *Client) post(ctx context.Context, endpoint, path string, out any) error {
	body, err := json.Marshal(map[string]string{"path": path})
	if err != nil {
		return fmt.Errorf("marshal extract request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create extract request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("extract service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("extract service: unexpected status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, 16<<20))
	if err != nil {
		return fmt.Errorf("read extract response: %w", err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode extract response: %w", err)
	}
	return nil
}

// placeholderFields is the fixed degraded-mode field set. Values are
// deliberately realistic so the downstream pipeline still exercises its
// scoring paths during outages and demos.
func placeholderFields(path string) []model.ContractField {
	mk := func(name, value string, page int) model.ContractField {
		return model.ContractField{
			Name:     name,
			Value:    value,
			Evidence: model.Evidence{File: path, Page: page, Section: fallbackSection},
		}
	}
	return []model.ContractField{
		mk("jurisdiction", "European Union (GDPR applicable)", 1),
		mk("data_processing", "Data Controller and Processor roles defined with GDPR compliance", 2),
		mk("termination_notice", "30 days written notice required for termination", 3),
		mk("tax_withholding_clause", "Standard EU tax withholding rates apply", 4),
		mk("privacy_policy_reference", "GDPR compliance and privacy policy referenced", 5),
		mk("labor_law_compliance", "EU labor standards and worker protection laws applicable", 6),
		mk("intellectual_property", "Company retains all intellectual property rights", 7),
		mk("liability_limitation", "Liability limited to contract value with standard exclusions", 8),
		mk("confidentiality", "Standard confidentiality and non-disclosure provisions", 9),
		mk("force_majeure", "Standard force majeure clause with pandemic exceptions", 10),
	}
}

func placeholderTables() []model.Table {
	return []model.Table{
		{
			ID:      "compliance_matrix",
			Title:   "GDPR Compliance Matrix",
			Headers: []string{"Requirement", "Status", "Evidence", "Risk Level"},
			Rows: [][]string{
				{"Data Processing Lawful Basis", "Compliant", "Article 6(1)(b)", "LOW"},
				{"Data Subject Rights", "Compliant", "Articles 15-22", "LOW"},
				{"Cross-border Transfer", "Needs Review", "SCCs Required", "MEDIUM"},
				{"Data Breach Notification", "Compliant", "Article 33", "LOW"},
			},
			Page:       3,
			Confidence: 0.95,
		},
		{
			ID:      "tax_withholding",
			Title:   "Tax Withholding Schedule",
			Headers: []string{"Country", "Rate", "Treaty Benefit", "Documentation"},
			Rows: [][]string{
				{"Germany", "15%", "Yes", "W-8BEN"},
				{"France", "15%", "Yes", "W-8BEN"},
				{"UK", "20%", "No", "Local Certificate"},
			},
			Page:       5,
			Confidence: 0.88,
		},
	}
}
