// Package frame provides a column-oriented, immutable view over tabular
// records loaded from CSV or XLSX sources. The matching engine only ever
// needs named-column projection and a unique row identifier, so a frame is
// deliberately just string columns of equal length.
package frame

import (
	"github.com/rotisserie/eris"
)

// Frame holds tabular data column-major. All columns have equal length.
type Frame struct {
	names []string
	index map[string]int
	cols  [][]string
}

// New builds a frame from a header and row-major records. Short rows are
// padded with empty strings; long rows are an error.
func New(header []string, rows [][]string) (*Frame, error) {
	if len(header) == 0 {
		return nil, eris.New("frame: empty header")
	}

	index := make(map[string]int, len(header))
	for i, name := range header {
		if name == "" {
			return nil, eris.Errorf("frame: empty column name at position %d", i)
		}
		if _, dup := index[name]; dup {
			return nil, eris.Errorf("frame: duplicate column %q", name)
		}
		index[name] = i
	}

	cols := make([][]string, len(header))
	for i := range cols {
		cols[i] = make([]string, len(rows))
	}

	for r, row := range rows {
		if len(row) > len(header) {
			return nil, eris.Errorf("frame: row %d has %d fields, header has %d", r, len(row), len(header))
		}
		for c, v := range row {
			cols[c][r] = v
		}
	}

	names := make([]string, len(header))
	copy(names, header)

	return &Frame{names: names, index: index, cols: cols}, nil
}

// Len returns the number of rows.
func (f *Frame) Len() int {
	if len(f.cols) == 0 {
		return 0
	}
	return len(f.cols[0])
}

// Columns returns the column names in order.
func (f *Frame) Columns() []string {
	out := make([]string, len(f.names))
	copy(out, f.names)
	return out
}

// Has reports whether the frame contains the named column.
func (f *Frame) Has(name string) bool {
	_, ok := f.index[name]
	return ok
}

// Column returns the named column. The returned slice is shared with the
// frame and must not be mutated.
func (f *Frame) Column(name string) ([]string, error) {
	i, ok := f.index[name]
	if !ok {
		return nil, eris.Errorf("frame: unknown column %q", name)
	}
	return f.cols[i], nil
}

// Value returns a single cell.
func (f *Frame) Value(name string, row int) (string, error) {
	col, err := f.Column(name)
	if err != nil {
		return "", err
	}
	if row < 0 || row >= len(col) {
		return "", eris.Errorf("frame: row %d out of range", row)
	}
	return col[row], nil
}

// Renamed returns a copy of the frame with columns renamed per mapping.
// Columns absent from the mapping keep their names. Used to map the
// to-match side's column names onto the comparison pool's names before the
// two sides are stacked.
func (f *Frame) Renamed(mapping map[string]string) (*Frame, error) {
	names := make([]string, len(f.names))
	for i, name := range f.names {
		if to, ok := mapping[name]; ok {
			names[i] = to
		} else {
			names[i] = name
		}
	}

	index := make(map[string]int, len(names))
	for i, name := range names {
		if _, dup := index[name]; dup {
			return nil, eris.Errorf("frame: rename collides on column %q", name)
		}
		index[name] = i
	}

	return &Frame{names: names, index: index, cols: f.cols}, nil
}
