package session

import (
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

// NewSessionID returns a collision-resistant timestamp-derived token. The
// timestamp keeps artifacts sortable on disk; the uuid fragment makes
// same-second sessions distinct.
func NewSessionID() string {
	return time.Now().UTC().Format("20060102T150405") + "-" + uuid.New().String()[:8]
}

var reUnsafe = regexp.MustCompile(`[^A-Za-z0-9._-]`)

// safeName sanitizes a source filename for use inside temp artifact names,
// hash-suffixed so distinct sources never collide.
func safeName(sourceName string, content []byte) string {
	base := filepath.Base(sourceName)
	ext := filepath.Ext(base)
	base = strings.TrimSuffix(base, ext)
	base = reUnsafe.ReplaceAllString(base, "_")
	if len(base) > 40 {
		base = base[:40]
	}
	sum := sha1.Sum(content)
	return base + "_" + hex.EncodeToString(sum[:])[:12]
}

// artifacts tracks the temp files one session owns. Every path embeds the
// session id, so no other session can claim them.
type artifacts struct {
	workDir   string
	sessionID string
	base      string
	paths     []string
}

func newArtifacts(workDir, sessionID, sourceName string, content []byte) *artifacts {
	return &artifacts{
		workDir:   workDir,
		sessionID: sessionID,
		base:      safeName(sourceName, content),
	}
}

// write persists one intermediate artifact as JSON. Failures are returned,
// not fatal: the pipeline hands values forward in memory regardless.
func (a *artifacts) write(stage string, v any) (string, error) {
	if err := os.MkdirAll(a.workDir, 0o755); err != nil {
		return "", fmt.Errorf("create work dir: %w", err)
	}
	name := fmt.Sprintf("%s_%s_%s.json", a.sessionID, a.base, stage)
	path := filepath.Join(a.workDir, name)
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode %s artifact: %w", stage, err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return "", fmt.Errorf("write %s artifact: %w", stage, err)
	}
	a.paths = append(a.paths, path)
	return path, nil
}

// cleanup removes every artifact the session created, plus any stragglers in
// the work dir carrying the session id (crash leftovers from a prior write).
// Returns the paths it could not remove.
func (a *artifacts) cleanup() []string {
	var failed []string
	seen := make(map[string]struct{}, len(a.paths))
	for _, p := range a.paths {
		seen[p] = struct{}{}
		if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
			failed = append(failed, p)
		}
	}
	matches, _ := filepath.Glob(filepath.Join(a.workDir, a.sessionID+"_*"))
	for _, p := range matches {
		if _, ok := seen[p]; ok {
			continue
		}
		if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
			failed = append(failed, p)
		}
	}
	return failed
}
