package document

import (
	"time"

	"github.com/financeai/docledger/constants"
)

// Summary is the model-assisted semantic characterization of a document.
// Every field is best-effort; a nil Summary is a valid outcome.
type Summary struct {
	DocumentType string   `json:"document_type"`
	DateRange    string   `json:"date_range"`
	AccountInfo  string   `json:"account_info"`
	Currency     string   `json:"currency"`
	Entities     []string `json:"entities"`
}

// ExtractionRecord is the output of the extraction stage: one per uploaded
// artifact. Raw content is always present; the summary may be nil. The record
// is immutable once built and consumed exactly once by the organization stage.
type ExtractionRecord struct {
	SourceName string                `json:"source_name"`
	Kind       constants.ContentKind `json:"kind"`
	SessionID  string                `json:"session_id"`
	CreatedAt  time.Time             `json:"created_at"`

	// Tabular raw form.
	Rows    []*Record `json:"rows,omitempty"`
	Columns []string  `json:"columns,omitempty"`

	// Document/text raw form.
	Text    string `json:"text,omitempty"`
	TextLen int    `json:"text_len,omitempty"`

	Summary *Summary `json:"summary,omitempty"`
}

// Tabular reports whether the raw form is row-shaped.
func (er *ExtractionRecord) Tabular() bool {
	return er.Kind == constants.KindTabular
}

// RecordSet is a validated list of same-shaped records for one entity name.
// The entity name doubles as the destination table name.
type RecordSet struct {
	Entity      string    `json:"entity"`
	Records     []*Record `json:"records"`
	SourceName  string    `json:"source_name"`
	RecordCount int       `json:"record_count"`
	ExtractedAt time.Time `json:"extracted_at"`
}
