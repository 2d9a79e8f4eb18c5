package main

import (
	"os"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/fuzzymatch/internal/config"
	"github.com/sells-group/fuzzymatch/internal/resolve"
)

// loadSpec reads a match spec from a YAML file and fills unset knobs from
// the application config.
func loadSpec(path string, cfg *config.Config) (resolve.Spec, error) {
	var spec resolve.Spec

	raw, err := os.ReadFile(path)
	if err != nil {
		return spec, eris.Wrap(err, "read spec file")
	}
	if err := yaml.Unmarshal(raw, &spec); err != nil {
		return spec, eris.Wrap(err, "parse spec file")
	}

	if spec.Workers == 0 {
		spec.Workers = cfg.Match.Workers
	}
	if spec.MemoryPct == 0 {
		spec.MemoryPct = cfg.Match.MemoryPct
	}
	if spec.StrThreshold == 0 {
		spec.StrThreshold = cfg.Match.StrThreshold
	}
	if spec.NumThreshold == 0 {
		spec.NumThreshold = cfg.Match.NumThreshold
	}
	if spec.Weight == 0 {
		spec.Weight = cfg.Match.Weight
	}
	if spec.ProgressEvery == 0 && cfg.Match.ProgressSecs > 0 {
		spec.ProgressEvery = time.Duration(cfg.Match.ProgressSecs) * time.Second
	}

	return spec, nil
}

// joinIDs renders a candidate set as one output cell.
func joinIDs(ids []string) string {
	return strings.Join(ids, ";")
}
