// Package resolve implements the entity-resolution engine: records are
// partitioned into exact-match blocks, scored pairwise inside each block
// with tolerant and fuzzy field comparisons, and either grouped into
// duplicate clusters (single-set mode) or linked to their best candidates
// in a comparison pool (two-set mode). Block processing is spread across
// workers with a memory guard and live progress reporting.
package resolve

import (
	"runtime"
	"time"

	"github.com/rotisserie/eris"
)

// Kind declares how a fuzzy field is compared. Fields are typed at
// configuration time, not per cell.
type Kind int

const (
	// String fields are compared with Jaro-Winkler similarity against a
	// threshold in [0,1].
	String Kind = iota
	// Number fields are compared by absolute difference against a
	// threshold.
	Number
)

// Default thresholds and weight applied when a spec leaves them zero.
const (
	DefaultStrThreshold = 0.9
	DefaultNumThreshold = 1
	DefaultWeight       = 1
	DefaultMemoryPct    = 98
)

// FuzzyField names one fuzzy comparison column and its declared kind.
type FuzzyField struct {
	Name string `yaml:"name"`
	Kind Kind   `yaml:"-"`
	// Type is the YAML-facing kind: "string" (default) or "number".
	Type string `yaml:"type,omitempty"`
}

// Spec describes one comparison run. Thresholds and weights may be given
// as a single scalar (applied to every relevant field) or per field; the
// engine broadcasts scalars into per-field mappings before scoring. A
// per-field mapping, when supplied, must cover every field it applies to.
type Spec struct {
	// IDField uniquely identifies each row.
	IDField string `yaml:"id_field"`

	// Exact fields must match verbatim for two rows to share a block.
	// Rows with any empty exact field are never compared.
	Exact []string `yaml:"exact"`

	// NoMismatch fields must agree when both sides are non-empty; an
	// empty value on either side is a wildcard.
	NoMismatch []string `yaml:"no_mismatch,omitempty"`

	// Fuzzy fields are compared by similarity or numeric closeness.
	Fuzzy []FuzzyField `yaml:"fuzzy,omitempty"`

	// StrThreshold is the scalar Jaro-Winkler floor for fuzzy string
	// fields; StrThresholds overrides it per field.
	StrThreshold  float64            `yaml:"str_threshold,omitempty"`
	StrThresholds map[string]float64 `yaml:"str_thresholds,omitempty"`

	// NumThreshold is the scalar maximum absolute difference for fuzzy
	// numeric fields; NumThresholds overrides it per field.
	NumThreshold  float64            `yaml:"num_threshold,omitempty"`
	NumThresholds map[string]float64 `yaml:"num_thresholds,omitempty"`

	// Weight is the scalar score weight for no-mismatch and fuzzy
	// fields; Weights overrides it per field.
	Weight  float64            `yaml:"weight,omitempty"`
	Weights map[string]float64 `yaml:"weights,omitempty"`

	// AllowMissing skips (rather than rejects) fuzzy comparisons where
	// either side is missing.
	AllowMissing bool `yaml:"allow_missing,omitempty"`

	// TopN caps the number of candidates returned per anchor; 0 returns
	// all positive-score candidates.
	TopN int `yaml:"top_n,omitempty"`

	// Workers is the number of parallel workers; 0 uses all CPUs.
	Workers int `yaml:"workers,omitempty"`

	// MemoryPct aborts the run when system memory usage exceeds this
	// percentage; 0 uses DefaultMemoryPct, negative disables the guard.
	MemoryPct float64 `yaml:"memory_pct,omitempty"`

	// ProgressEvery is the interval between progress events; 0 disables
	// progress reporting.
	ProgressEvery time.Duration `yaml:"progress_every,omitempty"`
}

// fuzzyField is a fuzzy column with its threshold and weight resolved.
type fuzzyField struct {
	name      string
	kind      Kind
	threshold float64
	weight    float64
}

// resolvedSpec is a Spec with scalars broadcast into per-field values and
// defaults applied. Built once, before any worker starts.
type resolvedSpec struct {
	idField    string
	exact      []string
	noMismatch []string
	nmWeight   map[string]float64
	fuzzy      []fuzzyField

	allowMissing  bool
	topN          int
	workers       int
	memoryPct     float64
	progressEvery time.Duration
}

// resolve validates the spec and broadcasts scalar thresholds and weights.
// All configuration errors surface here, before any data is touched.
func (s Spec) resolve() (resolvedSpec, error) {
	var rs resolvedSpec

	if s.IDField == "" {
		return rs, eris.New("spec: id_field is required")
	}
	if len(s.Exact) == 0 {
		return rs, eris.New("spec: at least one exact field is required")
	}
	if len(s.NoMismatch) == 0 && len(s.Fuzzy) == 0 {
		return rs, eris.New("spec: at least one no-mismatch or fuzzy field is required")
	}
	if s.TopN < 0 {
		return rs, eris.Errorf("spec: top_n must be non-negative, got %d", s.TopN)
	}

	seen := make(map[string]string, len(s.Exact)+len(s.NoMismatch)+len(s.Fuzzy))
	addRole := func(name, role string) error {
		if name == "" {
			return eris.Errorf("spec: empty %s field name", role)
		}
		if prev, ok := seen[name]; ok {
			return eris.Errorf("spec: field %q listed as both %s and %s", name, prev, role)
		}
		seen[name] = role
		return nil
	}

	for _, name := range s.Exact {
		if err := addRole(name, "exact"); err != nil {
			return rs, err
		}
	}
	for _, name := range s.NoMismatch {
		if err := addRole(name, "no-mismatch"); err != nil {
			return rs, err
		}
	}

	weight := s.Weight
	if weight == 0 {
		weight = DefaultWeight
	}
	strThreshold := s.StrThreshold
	if strThreshold == 0 {
		strThreshold = DefaultStrThreshold
	}
	numThreshold := s.NumThreshold
	if numThreshold == 0 {
		numThreshold = DefaultNumThreshold
	}

	rs.nmWeight = make(map[string]float64, len(s.NoMismatch))
	for _, name := range s.NoMismatch {
		w, err := lookup(s.Weights, name, weight, "weights")
		if err != nil {
			return rs, err
		}
		rs.nmWeight[name] = w
	}

	rs.fuzzy = make([]fuzzyField, 0, len(s.Fuzzy))
	for _, ff := range s.Fuzzy {
		if err := addRole(ff.Name, "fuzzy"); err != nil {
			return rs, err
		}

		kind, err := ff.resolveKind()
		if err != nil {
			return rs, err
		}

		var threshold float64
		switch kind {
		case String:
			threshold, err = lookup(s.StrThresholds, ff.Name, strThreshold, "str_thresholds")
		case Number:
			threshold, err = lookup(s.NumThresholds, ff.Name, numThreshold, "num_thresholds")
		}
		if err != nil {
			return rs, err
		}

		w, err := lookup(s.Weights, ff.Name, weight, "weights")
		if err != nil {
			return rs, err
		}

		rs.fuzzy = append(rs.fuzzy, fuzzyField{
			name:      ff.Name,
			kind:      kind,
			threshold: threshold,
			weight:    w,
		})
	}

	rs.idField = s.IDField
	rs.exact = s.Exact
	rs.noMismatch = s.NoMismatch
	rs.allowMissing = s.AllowMissing
	rs.topN = s.TopN

	rs.workers = s.Workers
	if rs.workers <= 0 {
		rs.workers = runtime.NumCPU()
	}

	rs.memoryPct = s.MemoryPct
	if rs.memoryPct == 0 {
		rs.memoryPct = DefaultMemoryPct
	}

	rs.progressEvery = s.ProgressEvery

	return rs, nil
}

// resolveKind reconciles the YAML-facing Type with the programmatic Kind.
func (f FuzzyField) resolveKind() (Kind, error) {
	switch f.Type {
	case "":
		return f.Kind, nil
	case "string":
		return String, nil
	case "number", "numeric":
		return Number, nil
	default:
		return String, eris.Errorf("spec: fuzzy field %q has unknown type %q", f.Name, f.Type)
	}
}

// lookup resolves a per-field mapping entry, falling back to the scalar
// when no mapping was supplied at all. A supplied mapping missing the field
// is a configuration error, never silently defaulted.
func lookup(m map[string]float64, name string, scalar float64, what string) (float64, error) {
	if m == nil {
		return scalar, nil
	}
	v, ok := m[name]
	if !ok {
		return 0, eris.Errorf("spec: %s is missing an entry for field %q", what, name)
	}
	return v, nil
}
