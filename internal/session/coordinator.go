// Package session orchestrates the three pipeline stages for one uploaded
// artifact under a unique session identifier. Sessions run sequentially:
// states Extracting -> Organizing -> Writing -> CleaningUp -> Done, with
// Failed reachable from any of them. Cleanup runs on every exit path.
package session

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/financeai/docledger/constants"
	"github.com/financeai/docledger/internal/extract"
	"github.com/financeai/docledger/internal/ingest"
	"github.com/financeai/docledger/internal/organize"
	"github.com/financeai/docledger/internal/store"
)

// Result is the outcome reported to the UI/CLI layer.
type Result struct {
	Success        bool     `json:"success"`
	SessionID      string   `json:"session_id"`
	RecordsWritten int      `json:"records_written"`
	FailedEntities []string `json:"failed_entities,omitempty"`
	Error          string   `json:"error,omitempty"`
}

// Coordinator wires the stages and owns each session's temp artifacts.
type Coordinator struct {
	logger   *slog.Logger
	extract  *extract.Stage
	organize *organize.Stage
	store    *store.Store
	reader   *ingest.Reader
	workDir  string
}

func NewCoordinator(logger *slog.Logger, ex *extract.Stage, org *organize.Stage, st *store.Store, reader *ingest.Reader, workDir string) *Coordinator {
	if logger == nil {
		logger = slog.Default()
	}
	if reader == nil {
		reader = ingest.NewReader(logger)
	}
	if workDir == "" {
		workDir = "./tmp"
	}
	return &Coordinator{
		logger:   logger,
		extract:  ex,
		organize: org,
		store:    st,
		reader:   reader,
		workDir:  workDir,
	}
}

// ProcessArtifact runs one artifact through the full pipeline. The returned
// Result is never nil; a non-nil error accompanies Result.Success == false
// with the session-level cause. A write failure for one record set does not
// abort its siblings: partial success reports the total written plus the
// entity names that failed.
func (c *Coordinator) ProcessArtifact(ctx context.Context, content []byte, kind constants.ContentKind, sourceName string) (*Result, error) {
	sessionID := NewSessionID()
	start := time.Now()
	res := &Result{SessionID: sessionID}

	arts := newArtifacts(c.workDir, sessionID, sourceName, content)
	defer func() {
		c.setState(sessionID, constants.StateCleaningUp)
		if failed := arts.cleanup(); len(failed) > 0 {
			// never escalated: a stuck temp file is a warning, not a failure
			c.logger.Warn("session.cleanup.incomplete",
				"session_id", sessionID, "paths", failed)
		}
		state := constants.StateDone
		if !res.Success {
			state = constants.StateFailed
		}
		c.logger.Info("session.finished",
			"session_id", sessionID,
			"source", sourceName,
			"state", string(state),
			"records_written", res.RecordsWritten,
			"failed_entities", res.FailedEntities,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
	}()

	fail := func(err error) (*Result, error) {
		res.Error = err.Error()
		return res, err
	}

	// Extracting
	c.setState(sessionID, constants.StateExtracting)
	in, err := c.decode(ctx, content, kind, sourceName)
	if err != nil {
		return fail(fmt.Errorf("decode %s content: %w", kind, err))
	}
	er, err := c.extract.Extract(ctx, in, kind, sourceName, sessionID)
	if err != nil {
		return fail(fmt.Errorf("extraction failed: %w", err))
	}
	if _, err := arts.write("extraction", er); err != nil {
		c.logger.Warn("session.artifact.write_failed",
			"session_id", sessionID, "stage", "extraction", "error", err)
	}

	// Organizing
	c.setState(sessionID, constants.StateOrganizing)
	sets, err := c.organize.Organize(ctx, er)
	if err != nil {
		return fail(fmt.Errorf("organization failed: %w", err))
	}
	for _, rs := range sets {
		if _, err := arts.write("recordset_"+rs.Entity, rs); err != nil {
			c.logger.Warn("session.artifact.write_failed",
				"session_id", sessionID, "stage", "recordset_"+rs.Entity, "error", err)
		}
	}

	// Writing
	c.setState(sessionID, constants.StateWriting)
	if _, err := c.store.RegisterDocument(ctx, sourceName); err != nil {
		c.logger.Warn("session.document_registry_failed",
			"session_id", sessionID, "error", err)
	}
	for _, rs := range sets {
		n, err := c.store.Write(ctx, rs)
		if err != nil {
			c.logger.Error("session.write.entity_failed",
				"session_id", sessionID, "entity", rs.Entity, "error", err)
			res.FailedEntities = append(res.FailedEntities, rs.Entity)
			continue
		}
		res.RecordsWritten += n
	}
	if len(sets) > 0 && len(res.FailedEntities) == len(sets) {
		err := fmt.Errorf("all record sets failed to persist: %v", res.FailedEntities)
		return fail(err)
	}

	res.Success = true
	return res, nil
}

// decode turns raw bytes into the extraction stage's input using the
// excluded collaborators: tabular reader for row sources, document text
// extractor otherwise. An empty text extraction is valid input (the
// organizer's structural fallback may still find nothing, which is success).
func (c *Coordinator) decode(ctx context.Context, content []byte, kind constants.ContentKind, sourceName string) (extract.Input, error) {
	switch kind {
	case constants.KindTabular:
		rows, cols, err := c.reader.ReadTabular(sourceName, content)
		if err != nil {
			return extract.Input{}, err
		}
		return extract.Input{Rows: rows, Columns: cols}, nil
	case constants.KindDocument:
		text, err := c.reader.ExtractText(ctx, sourceName, content)
		if err != nil {
			c.logger.Warn("session.text_extraction_failed",
				"source", sourceName, "error", err)
			text = ""
		}
		return extract.Input{Text: text}, nil
	default:
		return extract.Input{Text: string(content)}, nil
	}
}

func (c *Coordinator) setState(sessionID string, state constants.SessionState) {
	c.logger.Info("session.state", "session_id", sessionID, "state", string(state))
}
