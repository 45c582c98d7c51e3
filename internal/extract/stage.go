// Package extract implements the first pipeline stage: building the raw
// extraction record for an uploaded artifact and asking the model oracle for
// a best-effort semantic summary. The raw content is never dropped; only the
// summary is best-effort.
package extract

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/financeai/docledger/constants"
	"github.com/financeai/docledger/internal/common"
	"github.com/financeai/docledger/internal/document"
	"github.com/financeai/docledger/internal/oracle"
)

// Config holds thresholds and model selection for the summary call.
type Config struct {
	Model          string  // summary/extraction model
	Temperature    float64 // deterministic-leaning, default 0.1
	MaxTokens      int     // default 512
	SampleRows     int     // tabular sample size, default 5
	MaxPromptChars int     // text prefix bound, default 3000
}

// Input is the decoded raw content handed in by the ingest collaborators:
// rows+columns for tabular sources, text for everything else.
type Input struct {
	Rows    []*document.Record
	Columns []string
	Text    string
}

type Stage struct {
	logger *slog.Logger
	oracle *oracle.Oracle
	cfg    Config
}

func NewStage(logger *slog.Logger, orc *oracle.Oracle, cfg Config) *Stage {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Temperature <= 0 {
		cfg.Temperature = 0.1
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = 512
	}
	if cfg.SampleRows <= 0 {
		cfg.SampleRows = 5
	}
	if cfg.MaxPromptChars <= 0 {
		cfg.MaxPromptChars = 3000
	}
	return &Stage{logger: logger, oracle: orc, cfg: cfg}
}

// Extract builds the extraction record for one artifact. A failed or unusable
// summary call degrades to a nil summary; only genuinely malformed invocations
// (tabular kind without rows and without text) are errors.
func (s *Stage) Extract(ctx context.Context, in Input, kind constants.ContentKind, sourceName, sessionID string) (*document.ExtractionRecord, error) {
	start := time.Now()

	rec := &document.ExtractionRecord{
		SourceName: sourceName,
		Kind:       kind,
		SessionID:  sessionID,
		CreatedAt:  time.Now().UTC(),
	}

	switch kind {
	case constants.KindTabular:
		if len(in.Rows) == 0 && in.Text == "" {
			return nil, common.NewAppError("EXTRACT_ERROR", "tabular input has no rows", common.ErrInvalidInput)
		}
		rec.Rows = in.Rows
		rec.Columns = in.Columns
	case constants.KindDocument, constants.KindText:
		rec.Text = in.Text
		rec.TextLen = len(in.Text)
	default:
		return nil, common.NewAppError("EXTRACT_ERROR", fmt.Sprintf("unknown content kind %q", kind), common.ErrInvalidInput)
	}

	rec.Summary = s.summarize(ctx, rec)

	s.logger.Info("extract.done",
		"session_id", sessionID,
		"source", sourceName,
		"kind", kind,
		"rows", len(rec.Rows),
		"text_len", rec.TextLen,
		"has_summary", rec.Summary != nil,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return rec, nil
}

// summarize runs the semantic-summary oracle call. Every failure mode ends in
// a nil summary: backend down, unusable JSON, shape mismatch.
func (s *Stage) summarize(ctx context.Context, rec *document.ExtractionRecord) *document.Summary {
	var contextBlock string
	if rec.Tabular() {
		sample := make([]json.RawMessage, 0, s.cfg.SampleRows)
		for i, r := range rec.Rows {
			if i >= s.cfg.SampleRows {
				break
			}
			b, err := json.Marshal(r)
			if err != nil {
				continue
			}
			sample = append(sample, b)
		}
		contextBlock = TabularSample(rec.Columns, sample, s.cfg.SampleRows)
	} else {
		contextBlock = TruncateText(rec.Text, s.cfg.MaxPromptChars)
	}

	prompt := BuildSummaryPrompt(contextBlock)
	raw, err := s.oracle.CompleteJSON(ctx, prompt, oracle.GenerateOptions{
		Model:       s.cfg.Model,
		MaxTokens:   s.cfg.MaxTokens,
		Temperature: s.cfg.Temperature,
	})
	if err != nil {
		// Backend unavailable: the raw form still goes downstream (the
		// organizer falls back without a summary).
		s.logger.Error("extract.summary.backend_error",
			"session_id", rec.SessionID, "source", rec.SourceName, "error", err)
		return nil
	}
	if raw == nil {
		s.logger.Warn("extract.summary.unusable",
			"session_id", rec.SessionID, "source", rec.SourceName)
		return nil
	}
	if err := oracle.ValidateAgainstSchema(BuildSummarySchema(), raw); err != nil {
		s.logger.Warn("extract.summary.schema_mismatch",
			"session_id", rec.SessionID, "source", rec.SourceName, "error", err)
		return nil
	}

	var sum document.Summary
	if err := json.Unmarshal(raw, &sum); err != nil {
		s.logger.Warn("extract.summary.decode_error",
			"session_id", rec.SessionID, "error", err)
		return nil
	}
	for i, e := range sum.Entities {
		sum.Entities[i] = strings.ToLower(strings.TrimSpace(e))
	}
	return &sum
}
