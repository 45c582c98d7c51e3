package organize

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/financeai/docledger/constants"
	"github.com/financeai/docledger/internal/document"
	"github.com/financeai/docledger/internal/oracle"
)

// Config holds model selection and prompt bounds for per-entity extraction.
type Config struct {
	Model          string
	Temperature    float64
	MaxTokens      int
	MaxPromptChars int
}

type Stage struct {
	logger *slog.Logger
	oracle *oracle.Oracle
	reg    *Registry
	cfg    Config
}

func NewStage(logger *slog.Logger, orc *oracle.Oracle, reg *Registry, cfg Config) *Stage {
	if logger == nil {
		logger = slog.Default()
	}
	if reg == nil {
		reg = DefaultRegistry()
	}
	if cfg.Temperature <= 0 {
		cfg.Temperature = 0.1
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = 1024
	}
	if cfg.MaxPromptChars <= 0 {
		cfg.MaxPromptChars = 3000
	}
	return &Stage{logger: logger, oracle: orc, reg: reg, cfg: cfg}
}

// Organize turns one extraction record into zero or more record sets. It
// never fails for "found nothing": candidates that produce no usable records
// after the model attempt and the fallback are silently dropped.
func (s *Stage) Organize(ctx context.Context, er *document.ExtractionRecord) ([]*document.RecordSet, error) {
	start := time.Now()
	candidates := s.candidates(er)

	var sets []*document.RecordSet
	for _, entity := range candidates {
		ext := s.reg.Lookup(entity)

		records := s.modelExtract(ctx, ext, er)
		if len(records) == 0 {
			records = s.fallback(ext, er)
		}
		if len(records) == 0 {
			s.logger.Info("organize.entity.empty",
				"session_id", er.SessionID, "entity", entity)
			continue
		}

		sets = append(sets, &document.RecordSet{
			Entity:      entity,
			Records:     records,
			SourceName:  er.SourceName,
			RecordCount: len(records),
			ExtractedAt: time.Now().UTC(),
		})
	}

	s.logger.Info("organize.done",
		"session_id", er.SessionID,
		"candidates", candidates,
		"record_sets", len(sets),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return sets, nil
}

// candidates picks entity names from the summary when present, defaulting to
// transactions so the pipeline always attempts at least one extraction.
// Names that cannot serve as table names are skipped.
func (s *Stage) candidates(er *document.ExtractionRecord) []string {
	var names []string
	if er.Summary != nil {
		for _, e := range er.Summary.Entities {
			if !ValidEntityName(e) {
				s.logger.Warn("organize.entity.invalid_name",
					"session_id", er.SessionID, "entity", e)
				continue
			}
			names = append(names, e)
		}
	}
	if len(names) == 0 {
		names = []string{constants.EntityTransactions}
	}
	// dedupe, keep first occurrence order
	seen := make(map[string]struct{}, len(names))
	out := names[:0]
	for _, n := range names {
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	return out
}

// modelExtract runs the per-entity oracle call and validates every candidate
// record. Backend failures and unusable output both come back as nil; the
// caller falls back.
func (s *Stage) modelExtract(ctx context.Context, ext EntityExtractor, er *document.ExtractionRecord) []*document.Record {
	prompt := ext.ExtractPrompt(s.contextBlock(er))
	raw, err := s.oracle.CompleteJSON(ctx, prompt, oracle.GenerateOptions{
		Model:       s.cfg.Model,
		MaxTokens:   s.cfg.MaxTokens,
		Temperature: s.cfg.Temperature,
	})
	if err != nil {
		s.logger.Error("organize.extract.backend_error",
			"session_id", er.SessionID, "entity", ext.Entity(), "error", err)
		return nil
	}
	if raw == nil {
		return nil
	}

	candidates := decodeCandidates(raw)
	var valid []*document.Record
	dropped := 0
	for _, rec := range candidates {
		out, ok := ext.Validate(rec)
		if !ok {
			dropped++
			continue
		}
		valid = append(valid, out)
	}
	if dropped > 0 {
		s.logger.Warn("organize.validate.dropped",
			"session_id", er.SessionID,
			"entity", ext.Entity(),
			"dropped", dropped,
			"kept", len(valid),
		)
	}
	return valid
}

// decodeCandidates accepts either a JSON array of objects or an object
// wrapping one (models often answer {"transactions": [...]}).
func decodeCandidates(raw json.RawMessage) []*document.Record {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return nil
	}
	if trimmed[0] == '[' {
		recs, err := document.DecodeRecordArray(trimmed)
		if err != nil {
			return nil
		}
		return recs
	}
	// lenient: take the first array-valued field of a wrapping object
	var m map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &m); err != nil {
		return nil
	}
	for _, v := range m {
		inner := bytes.TrimSpace(v)
		if len(inner) > 0 && inner[0] == '[' {
			recs, err := document.DecodeRecordArray(inner)
			if err == nil && len(recs) > 0 {
				return recs
			}
		}
	}
	return nil
}

// fallback is the non-model rung of the ladder: already-parsed rows for
// tabular sources, structural pattern extraction for text.
func (s *Stage) fallback(ext EntityExtractor, er *document.ExtractionRecord) []*document.Record {
	if er.Tabular() {
		if !ext.TabularFallback() {
			return nil
		}
		s.logger.Info("organize.fallback.tabular",
			"session_id", er.SessionID, "entity", ext.Entity(), "rows", len(er.Rows))
		return er.Rows
	}
	records := ext.StructuralFallback(er.Text)
	if len(records) > 0 {
		s.logger.Info("organize.fallback.structural",
			"session_id", er.SessionID, "entity", ext.Entity(), "records", len(records))
	}
	return records
}

// contextBlock renders the extraction record's raw form for prompting,
// bounded to the configured prompt budget.
func (s *Stage) contextBlock(er *document.ExtractionRecord) string {
	if !er.Tabular() {
		if len(er.Text) > s.cfg.MaxPromptChars {
			return er.Text[:s.cfg.MaxPromptChars] + "\n…(truncated)"
		}
		return er.Text
	}
	var b bytes.Buffer
	b.WriteString("Columns: ")
	for i, c := range er.Columns {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(c)
	}
	b.WriteString("\nRows:\n")
	for _, r := range er.Rows {
		enc, err := json.Marshal(r)
		if err != nil {
			continue
		}
		if b.Len()+len(enc) > s.cfg.MaxPromptChars {
			b.WriteString("…(truncated)")
			break
		}
		b.Write(enc)
		b.WriteByte('\n')
	}
	return b.String()
}
