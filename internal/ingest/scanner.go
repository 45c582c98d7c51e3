package ingest

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/financeai/docledger/constants"
)

// Scanner finds unprocessed files in a watch directory. It keeps a persisted
// ledger of content hashes so re-dropped or renamed duplicates are skipped.
type Scanner struct {
	logger     *slog.Logger
	watchDir   string
	ledgerPath string
	processed  map[string]struct{}
}

type ledgerFile struct {
	ProcessedHashes []string `json:"processed_hashes"`
	LastUpdated     string   `json:"last_updated"`
}

func NewScanner(logger *slog.Logger, watchDir, ledgerPath string) (*Scanner, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := os.MkdirAll(watchDir, 0o755); err != nil {
		return nil, fmt.Errorf("create watch dir: %w", err)
	}
	s := &Scanner{
		logger:     logger,
		watchDir:   watchDir,
		ledgerPath: ledgerPath,
		processed:  make(map[string]struct{}),
	}
	s.loadLedger()
	return s, nil
}

func (s *Scanner) loadLedger() {
	b, err := os.ReadFile(s.ledgerPath)
	if err != nil {
		if !os.IsNotExist(err) {
			s.logger.Warn("scanner.ledger.load_failed", "path", s.ledgerPath, "error", err)
		}
		return
	}
	var lf ledgerFile
	if err := json.Unmarshal(b, &lf); err != nil {
		s.logger.Warn("scanner.ledger.parse_failed", "path", s.ledgerPath, "error", err)
		return
	}
	for _, h := range lf.ProcessedHashes {
		s.processed[h] = struct{}{}
	}
}

func (s *Scanner) saveLedger() {
	lf := ledgerFile{
		ProcessedHashes: make([]string, 0, len(s.processed)),
		LastUpdated:     time.Now().UTC().Format(time.RFC3339),
	}
	for h := range s.processed {
		lf.ProcessedHashes = append(lf.ProcessedHashes, h)
	}
	b, err := json.MarshalIndent(lf, "", "  ")
	if err != nil {
		s.logger.Warn("scanner.ledger.encode_failed", "error", err)
		return
	}
	if dir := filepath.Dir(s.ledgerPath); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			s.logger.Warn("scanner.ledger.mkdir_failed", "error", err)
			return
		}
	}
	if err := os.WriteFile(s.ledgerPath, b, 0o644); err != nil {
		s.logger.Warn("scanner.ledger.save_failed", "path", s.ledgerPath, "error", err)
	}
}

// NewFile is an unprocessed file found by a scan.
type NewFile struct {
	Path string
	Hash string
}

// ScanNew lists supported files in the watch directory whose content hash is
// not yet in the ledger.
func (s *Scanner) ScanNew() ([]NewFile, error) {
	entries, err := os.ReadDir(s.watchDir)
	if err != nil {
		return nil, fmt.Errorf("read watch dir: %w", err)
	}

	var out []NewFile
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		ext := constants.NormalizeExt(filepath.Ext(e.Name()))
		if _, ok := constants.AllowedExtensions[ext]; !ok {
			continue
		}
		path := filepath.Join(s.watchDir, e.Name())
		hash, err := HashFile(path)
		if err != nil {
			s.logger.Warn("scanner.hash_failed", "path", path, "error", err)
			continue
		}
		if _, done := s.processed[hash]; done {
			continue
		}
		out = append(out, NewFile{Path: path, Hash: hash})
	}
	return out, nil
}

// IsProcessed reports whether a content hash is already in the ledger.
func (s *Scanner) IsProcessed(hash string) bool {
	_, done := s.processed[hash]
	return done
}

// MarkProcessed records a file hash and persists the ledger.
func (s *Scanner) MarkProcessed(hash string) {
	s.processed[hash] = struct{}{}
	s.saveLedger()
}

// Stats reports ledger size for the check command.
func (s *Scanner) Stats() (total int, dir, ledger string) {
	return len(s.processed), s.watchDir, s.ledgerPath
}

// HashFile returns the hex SHA-256 of a file's content.
func HashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer func() {
		_ = f.Close()
	}()
	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
