package model

// Evidence is a provenance pointer into a source document. It is purely
// descriptive: the core never resolves it back into document content.
type Evidence struct {
	File    string `json:"file"`              // Source file path or logical store name
	Page    int    `json:"page,omitempty"`    // 1-based page number, 0 when unknown
	Section string `json:"section,omitempty"` // Section or extractor label
}

// ContractField is a single named field extracted from a contract by the
// extraction collaborator. Field names come from a fixed vocabulary
// (jurisdiction, data_processing, termination_notice, ...).
type ContractField struct {
	Name     string   `json:"name"`
	Value    string   `json:"value"`
	Evidence Evidence `json:"evidence"`
}

// Table is an extracted tabular structure (compliance matrices, withholding
// schedules) returned by the extraction collaborator.
type Table struct {
	ID         string     `json:"table_id"`
	Title      string     `json:"title,omitempty"`
	Headers    []string   `json:"headers,omitempty"`
	Rows       [][]string `json:"rows,omitempty"`
	Page       int        `json:"page,omitempty"`
	Confidence float64    `json:"confidence,omitempty"`
}
