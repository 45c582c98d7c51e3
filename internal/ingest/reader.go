// Package ingest holds the excluded collaborators the pipeline consumes as
// plain function calls: tabular readers (CSV, XLSX), the document text
// extractor (pdftotext), directory scanning with a processed-file ledger,
// and a filesystem watcher.
package ingest

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/financeai/docledger/constants"
	"github.com/financeai/docledger/internal/document"
)

// Reader decodes raw artifact bytes into the shapes the pipeline consumes.
type Reader struct {
	logger    *slog.Logger
	runner    Runner
	pdftotext string // binary name or absolute path
}

func NewReader(logger *slog.Logger) *Reader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Reader{
		logger:    logger,
		runner:    execRunner{},
		pdftotext: "pdftotext",
	}
}

// ReadTabular parses CSV or XLSX bytes into ordered rows plus the column
// list. Cell values are sniffed: integers and reals become numeric values,
// empty cells null, everything else text.
func (r *Reader) ReadTabular(name string, data []byte) ([]*document.Record, []string, error) {
	switch constants.NormalizeExt(filepath.Ext(name)) {
	case "xlsx":
		return r.readXLSX(data)
	default:
		return r.readCSV(data)
	}
}

func (r *Reader) readCSV(data []byte) ([]*document.Record, []string, error) {
	cr := csv.NewReader(bytes.NewReader(data))
	cr.FieldsPerRecord = -1 // ragged exports happen; pad short rows with nulls
	cr.TrimLeadingSpace = true

	all, err := cr.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("parse csv: %w", err)
	}
	if len(all) == 0 {
		return nil, nil, fmt.Errorf("parse csv: no rows")
	}

	columns := make([]string, len(all[0]))
	for i, h := range all[0] {
		columns[i] = strings.TrimSpace(h)
	}

	var rows []*document.Record
	for _, raw := range all[1:] {
		rec := document.NewRecord()
		for i, col := range columns {
			if col == "" {
				continue
			}
			if i < len(raw) {
				rec.Set(col, SniffValue(raw[i]))
			} else {
				rec.Set(col, document.Null())
			}
		}
		if rec.Len() > 0 {
			rows = append(rows, rec)
		}
	}
	return rows, columns, nil
}

func (r *Reader) readXLSX(data []byte) ([]*document.Record, []string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, nil, fmt.Errorf("open xlsx: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil {
			r.logger.Warn("ingest.xlsx.close_error", "error", cerr)
		}
	}()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, nil, fmt.Errorf("xlsx has no sheets")
	}
	all, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, nil, fmt.Errorf("read sheet %q: %w", sheets[0], err)
	}
	if len(all) == 0 {
		return nil, nil, fmt.Errorf("sheet %q is empty", sheets[0])
	}

	columns := make([]string, len(all[0]))
	for i, h := range all[0] {
		columns[i] = strings.TrimSpace(h)
	}

	var rows []*document.Record
	for _, raw := range all[1:] {
		rec := document.NewRecord()
		for i, col := range columns {
			if col == "" {
				continue
			}
			if i < len(raw) {
				rec.Set(col, SniffValue(raw[i]))
			} else {
				rec.Set(col, document.Null())
			}
		}
		if rec.Len() > 0 {
			rows = append(rows, rec)
		}
	}
	return rows, columns, nil
}

// ExtractText returns best-effort text for document bytes. PDFs go through
// pdftotext; empty output is a valid result for scanned/unreadable input.
func (r *Reader) ExtractText(ctx context.Context, name string, data []byte) (string, error) {
	if constants.NormalizeExt(filepath.Ext(name)) != "pdf" {
		return string(data), nil
	}

	tmp, err := os.CreateTemp("", "docledger-*.pdf")
	if err != nil {
		return "", fmt.Errorf("temp pdf: %w", err)
	}
	defer func() {
		if rerr := os.Remove(tmp.Name()); rerr != nil {
			r.logger.Warn("ingest.pdf.temp_remove_error", "path", tmp.Name(), "error", rerr)
		}
	}()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return "", fmt.Errorf("write temp pdf: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("close temp pdf: %w", err)
	}

	// pdftotext -layout -enc UTF-8 -eol unix <path> -
	out, errb, err := r.runner.Run(ctx, r.pdftotext, "-layout", "-enc", "UTF-8", "-eol", "unix", tmp.Name(), "-")
	if err != nil {
		return "", fmt.Errorf("pdftotext: %w (%s)", err, truncate(string(errb), 512))
	}
	return string(out), nil
}

// SniffValue converts a raw cell string into a typed value.
func SniffValue(s string) document.Value {
	t := strings.TrimSpace(s)
	if t == "" {
		return document.Null()
	}
	if i, err := strconv.ParseInt(t, 10, 64); err == nil {
		return document.Int(i)
	}
	if f, err := strconv.ParseFloat(t, 64); err == nil {
		return document.Real(f)
	}
	return document.Text(t)
}
