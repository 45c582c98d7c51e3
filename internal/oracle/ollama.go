package oracle

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
)

// OllamaConfig configures the Ollama REST backend.
type OllamaConfig struct {
	URL     string        // default http://localhost:11434
	Timeout time.Duration // http client timeout; generation can take many seconds
}

// OllamaBackend talks to a local Ollama server over its REST API.
type OllamaBackend struct {
	cfg    OllamaConfig
	http   *http.Client
	logger *slog.Logger
}

func NewOllamaBackend(cfg OllamaConfig, logger *slog.Logger) *OllamaBackend {
	if cfg.URL == "" {
		cfg.URL = "http://localhost:11434"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 45 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &OllamaBackend{
		cfg:    cfg,
		http:   &http.Client{Timeout: cfg.Timeout},
		logger: logger,
	}
}

// Ping checks that the server answers /api/tags. A refused connection yields
// ErrBackendUnavailable with a start-the-server hint.
func (b *OllamaBackend) Ping(ctx context.Context) error {
	url := strings.TrimRight(b.cfg.URL, "/") + "/api/tags"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	resp, err := b.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: cannot reach %s (%v); start it with `ollama serve`", ErrBackendUnavailable, b.cfg.URL, err)
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			b.logger.Warn("oracle.ping.body_close_error", "error", cerr)
		}
	}()
	if resp.StatusCode/100 != 2 {
		return fmt.Errorf("%w: %s returned status %d", ErrBackendUnavailable, url, resp.StatusCode)
	}
	return nil
}

// Generate runs one completion. A missing model (404) and transport failures
// map to ErrBackendUnavailable; anything the model actually said comes back
// verbatim for the caller to judge.
func (b *OllamaBackend) Generate(ctx context.Context, prompt string, opts GenerateOptions) (string, error) {
	rid := uuid.New().String()
	start := time.Now()

	payload := map[string]any{
		"model":  opts.Model,
		"prompt": prompt,
		"stream": false,
		"options": map[string]any{
			"num_predict": opts.MaxTokens,
			"temperature": opts.Temperature,
			"top_p":       0.9,
		},
	}
	if opts.JSONMode {
		payload["format"] = "json"
	}

	bs, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("encode request: %w", err)
	}

	url := strings.TrimRight(b.cfg.URL, "/") + "/api/generate"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(bs))
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	b.logger.Info("oracle.generate.request",
		"req_id", rid,
		"model", opts.Model,
		"prompt_len", len(prompt),
		"json_mode", opts.JSONMode,
	)

	resp, err := b.http.Do(req)
	if err != nil {
		b.logger.Error("oracle.generate.send_error",
			"req_id", rid, "error", err,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return "", fmt.Errorf("%w: cannot reach %s (%v); start it with `ollama serve`", ErrBackendUnavailable, b.cfg.URL, err)
	}
	defer func(body io.ReadCloser) {
		if cerr := body.Close(); cerr != nil {
			b.logger.Warn("oracle.generate.body_close_error", "req_id", rid, "error", cerr)
		}
	}(resp.Body)

	raw, _ := io.ReadAll(resp.Body)

	b.logger.Info("oracle.generate.response",
		"req_id", rid,
		"status", resp.StatusCode,
		"bytes", len(raw),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)

	if resp.StatusCode == http.StatusNotFound {
		return "", fmt.Errorf("%w: model %q not found; fetch it with `ollama pull %s`", ErrBackendUnavailable, opts.Model, opts.Model)
	}
	if resp.StatusCode/100 != 2 {
		return "", fmt.Errorf("%w: %s returned status %d: %s", ErrBackendUnavailable, url, resp.StatusCode, truncate(string(raw), 512))
	}

	var out struct {
		Response string `json:"response"`
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	return strings.TrimSpace(out.Response), nil
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "...(truncated)"
}
