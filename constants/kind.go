package constants

import "strings"

// ContentKind is the declared shape of an uploaded artifact's raw content.
type ContentKind string

// Stable values (embedded in session artifacts, do not rename).
const (
	KindTabular  ContentKind = "tabular"  // CSV/XLSX exports: ordered field->value rows
	KindDocument ContentKind = "document" // PDFs and other extracted-text documents
	KindText     ContentKind = "text"     // plain text blobs
)

// AllowedExtensions holds the file extensions the ingest layer will pick up.
var AllowedExtensions = map[string]struct{}{
	"csv":  {},
	"xlsx": {},
	"pdf":  {},
	"txt":  {},
	"text": {},
}

// NormalizeExt lowercases and trims the dot from a file extension.
func NormalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

// KindForExt maps a file extension to the declared content kind.
func KindForExt(ext string) ContentKind {
	switch NormalizeExt(ext) {
	case "csv", "xlsx":
		return KindTabular
	case "pdf":
		return KindDocument
	default:
		return KindText
	}
}
