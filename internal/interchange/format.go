// Package interchange exports record sets as backup documents and text
// reports, and validates and merges imported documents.
package interchange

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"expensebook/internal/core"
)

// Format is an interchange encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	// FormatText is the human-readable report. It cannot be imported.
	FormatText Format = "text"
)

// ParseFormat resolves a format name.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	case "text", "txt":
		return FormatText, nil
	default:
		return "", fmt.Errorf("%w: unknown format %q", core.ErrInvalidFormat, s)
	}
}

// FormatFromPath picks the import format from a file extension. Only
// backup documents are accepted.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("%w: %s is not a .json or .yaml backup", core.ErrInvalidFormat, filepath.Base(path))
	}
}

func (f Format) extension() string {
	switch f {
	case FormatYAML:
		return "yaml"
	case FormatText:
		return "txt"
	default:
		return "json"
	}
}

// FileName is the suggested file name for an export of p made at now,
// e.g. "Alice-backup-2024-03-15.json" or "Alice-report-2024-03-15.txt".
func FileName(p core.Profile, f Format, now time.Time) string {
	kind := "backup"
	if f == FormatText {
		kind = "report"
	}
	name := strings.Map(func(r rune) rune {
		if r == '/' || r == '\\' || r == filepath.Separator {
			return '_'
		}
		return r
	}, p.Name)
	return fmt.Sprintf("%s-%s-%s.%s", name, kind, now.UTC().Format(core.DateFormat), f.extension())
}
