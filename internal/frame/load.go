package frame

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
)

// Load reads a tabular file into a frame, dispatching on extension.
// Supported: .csv, .tsv, .xlsx.
func Load(ctx context.Context, path string) (*Frame, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return LoadCSV(ctx, path, CSVOptions{TrimSpace: true})
	case ".tsv":
		return LoadCSV(ctx, path, CSVOptions{Delimiter: '\t', TrimSpace: true})
	case ".xlsx":
		return LoadXLSX(path, XLSXOptions{})
	default:
		return nil, eris.Errorf("frame: unsupported file type %q", filepath.Ext(path))
	}
}
