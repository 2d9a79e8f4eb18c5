package resolve

import (
	"math"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"golang.org/x/text/unicode/norm"

	"github.com/sells-group/fuzzymatch/internal/frame"
)

// keyDelim separates exact-field values inside a block key. A unit
// separator is not expected to occur in tabular data.
const keyDelim = "\x1f"

// fuzzyColumn holds one fuzzy field's values across all records. Exactly
// one of str or num is populated, matching the field's declared kind.
type fuzzyColumn struct {
	str  []string  // String kind; "" means missing
	num  []float64 // Number kind
	miss []bool    // Number kind; true means missing
}

// compFrame is the flat, immutable comparison view the engine scores over.
// All values are normalized once at build time; workers only read.
type compFrame struct {
	ids    []string
	anchor []bool // nil in single-set mode

	exactKey []string // "" means excluded from blocking

	nm        [][]string // normalized no-mismatch columns
	nmWeights []float64  // parallel to nm

	fuzzy []fuzzyColumn // parallel to resolvedSpec.fuzzy
}

// source pairs an input frame with its anchor role for frame stacking.
type source struct {
	f      *frame.Frame
	anchor bool
}

// buildCompFrame stacks one or two input frames into a comparison frame.
// With two sources the anchor mask is populated; with one it stays nil.
// Structural problems (missing columns, non-numeric values in a declared
// numeric field) are errors; they surface before any worker starts.
func buildCompFrame(rs *resolvedSpec, sources ...*source) (*compFrame, error) {
	total := 0
	for _, src := range sources {
		total += src.f.Len()
	}

	cf := &compFrame{
		ids:       make([]string, 0, total),
		exactKey:  make([]string, 0, total),
		nm:        make([][]string, len(rs.noMismatch)),
		nmWeights: make([]float64, len(rs.noMismatch)),
		fuzzy:     make([]fuzzyColumn, len(rs.fuzzy)),
	}
	if len(sources) > 1 {
		cf.anchor = make([]bool, 0, total)
	}

	for k, name := range rs.noMismatch {
		cf.nm[k] = make([]string, 0, total)
		cf.nmWeights[k] = rs.nmWeight[name]
	}
	for k, ff := range rs.fuzzy {
		if ff.kind == Number {
			cf.fuzzy[k].num = make([]float64, 0, total)
			cf.fuzzy[k].miss = make([]bool, 0, total)
		} else {
			cf.fuzzy[k].str = make([]string, 0, total)
		}
	}

	for _, src := range sources {
		if err := cf.appendSource(rs, src); err != nil {
			return nil, err
		}
	}

	return cf, nil
}

func (cf *compFrame) appendSource(rs *resolvedSpec, src *source) error {
	f := src.f

	ids, err := f.Column(rs.idField)
	if err != nil {
		return err
	}

	exact := make([][]string, len(rs.exact))
	for k, name := range rs.exact {
		if exact[k], err = f.Column(name); err != nil {
			return err
		}
	}

	nm := make([][]string, len(rs.noMismatch))
	for k, name := range rs.noMismatch {
		if nm[k], err = f.Column(name); err != nil {
			return err
		}
	}

	fuzzy := make([][]string, len(rs.fuzzy))
	for k, ff := range rs.fuzzy {
		if fuzzy[k], err = f.Column(ff.name); err != nil {
			return err
		}
	}

	var key strings.Builder
	for row := 0; row < f.Len(); row++ {
		cf.ids = append(cf.ids, strings.TrimSpace(ids[row]))
		if cf.anchor != nil {
			cf.anchor = append(cf.anchor, src.anchor)
		}

		// Any empty exact field excludes the row from blocking.
		key.Reset()
		excluded := false
		for k := range exact {
			v := strings.TrimSpace(exact[k][row])
			if v == "" {
				excluded = true
				break
			}
			if k > 0 {
				key.WriteString(keyDelim)
			}
			key.WriteString(v)
		}
		if excluded {
			cf.exactKey = append(cf.exactKey, "")
		} else {
			cf.exactKey = append(cf.exactKey, key.String())
		}

		for k := range nm {
			cf.nm[k] = append(cf.nm[k], fold(nm[k][row]))
		}

		for k, ff := range rs.fuzzy {
			raw := strings.TrimSpace(fuzzy[k][row])
			if ff.kind == Number {
				if raw == "" {
					cf.fuzzy[k].num = append(cf.fuzzy[k].num, math.NaN())
					cf.fuzzy[k].miss = append(cf.fuzzy[k].miss, true)
					continue
				}
				v, perr := strconv.ParseFloat(raw, 64)
				if perr != nil {
					return eris.Errorf("resolve: field %q row %d: %q is not numeric", ff.name, row, raw)
				}
				cf.fuzzy[k].num = append(cf.fuzzy[k].num, v)
				cf.fuzzy[k].miss = append(cf.fuzzy[k].miss, false)
			} else {
				cf.fuzzy[k].str = append(cf.fuzzy[k].str, fold(raw))
			}
		}
	}

	return nil
}

func (cf *compFrame) len() int { return len(cf.ids) }

// fold normalizes a comparison value: Unicode NFKC, trimmed, lowercased.
// Equality on folded values gives the case/whitespace-insensitive compare
// the no-mismatch phase requires.
func fold(s string) string {
	return strings.ToLower(strings.TrimSpace(norm.NFKC.String(s)))
}
