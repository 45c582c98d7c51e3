// Package oracle wraps the local generative-language backend. The backend is
// an untrusted, best-effort collaborator: a completion that cannot be parsed
// is a nil result, not an error. Only an unreachable backend or a missing
// model is an error, and it is always surfaced with a remediation hint.
package oracle

import (
	"context"
	"errors"
)

// ErrBackendUnavailable marks hard backend failures: the server is not
// running, or the requested model is not present. Callers distinguish this
// from unusable output with errors.Is.
var ErrBackendUnavailable = errors.New("model backend unavailable")

// GenerateOptions control a single completion call.
type GenerateOptions struct {
	Model       string
	MaxTokens   int
	Temperature float64
	JSONMode    bool // ask the backend to constrain output to JSON
}

// Backend is the raw generation transport. Implementations are not required
// to be safe for concurrent calls; the Oracle serializes access.
type Backend interface {
	Generate(ctx context.Context, prompt string, opts GenerateOptions) (string, error)
	// Ping verifies the backend is reachable and ready to serve.
	Ping(ctx context.Context) error
}
