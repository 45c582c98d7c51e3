package oracle

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"
)

// Oracle is the model-call surface used by the pipeline stages. It owns the
// process-wide backend handle, checks backend readiness lazily (success is
// cached, failure is retried on the next call), and serializes generation
// calls: the underlying backend holds a single model slot and concurrent
// generations against it are not safe.
type Oracle struct {
	backend Backend
	logger  *slog.Logger

	genMu sync.Mutex // single generation slot

	readyMu sync.Mutex
	ready   bool
}

func New(backend Backend, logger *slog.Logger) *Oracle {
	if logger == nil {
		logger = slog.Default()
	}
	return &Oracle{backend: backend, logger: logger}
}

// ensureReady runs the backend readiness check lazily, caching success for
// the process lifetime (for local backends the first probe covers the lazy
// model load). A failed probe is not cached: long-running watch mode must
// pick the backend up again once it comes back.
func (o *Oracle) ensureReady(ctx context.Context) error {
	o.readyMu.Lock()
	defer o.readyMu.Unlock()
	if o.ready {
		return nil
	}
	start := time.Now()
	if err := o.backend.Ping(ctx); err != nil {
		o.logger.Error("oracle.ready.failed",
			"error", err,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return err
	}
	o.ready = true
	o.logger.Info("oracle.ready", "elapsed_ms", time.Since(start).Milliseconds())
	return nil
}

// Complete produces a bounded-length text completion for a prompt.
// The only error it returns is a hard backend failure.
func (o *Oracle) Complete(ctx context.Context, prompt string, opts GenerateOptions) (string, error) {
	if err := o.ensureReady(ctx); err != nil {
		return "", err
	}
	o.genMu.Lock()
	defer o.genMu.Unlock()
	return o.backend.Generate(ctx, prompt, opts)
}

// CompleteJSON produces a best-effort parsed JSON value for a prompt.
// Unusable model output (empty, non-JSON, no embedded JSON) yields a nil
// result with a nil error; callers handle that via their fallback ladder.
// A non-nil error always means the backend itself failed.
func (o *Oracle) CompleteJSON(ctx context.Context, prompt string, opts GenerateOptions) (json.RawMessage, error) {
	opts.JSONMode = true
	text, err := o.Complete(ctx, prompt, opts)
	if err != nil {
		return nil, err
	}
	raw := ExtractJSON(text)
	if raw == nil {
		o.logger.Warn("oracle.complete_json.unusable",
			"model", opts.Model,
			"response_len", len(text),
		)
	}
	return raw, nil
}

// Ping exposes the readiness probe for preflight checks.
func (o *Oracle) Ping(ctx context.Context) error {
	return o.backend.Ping(ctx)
}
