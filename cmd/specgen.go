package main

import (
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/fuzzymatch/internal/resolve"
)

var specgenOutPath string

var specgenCmd = &cobra.Command{
	Use:   "specgen",
	Short: "Write a starter match spec",
	Long:  "Writes an example match spec YAML to edit: field roles, thresholds, weights, and engine knobs.",
	RunE: func(cmd *cobra.Command, args []string) error {
		spec := resolve.Spec{
			IDField:    "id",
			Exact:      []string{"zip"},
			NoMismatch: []string{"last_name", "middle_initial"},
			Fuzzy: []resolve.FuzzyField{
				{Name: "first_name", Type: "string"},
				{Name: "birth_year", Type: "number"},
			},
			StrThreshold: resolve.DefaultStrThreshold,
			NumThreshold: resolve.DefaultNumThreshold,
			Weight:       resolve.DefaultWeight,
		}

		raw, err := yaml.Marshal(spec)
		if err != nil {
			return eris.Wrap(err, "marshal spec")
		}

		if specgenOutPath == "" {
			_, err = os.Stdout.Write(raw)
			return eris.Wrap(err, "write spec")
		}
		return eris.Wrap(os.WriteFile(specgenOutPath, raw, 0o644), "write spec file")
	},
}

func init() {
	specgenCmd.Flags().StringVarP(&specgenOutPath, "out", "o", "", "output path (default stdout)")
	rootCmd.AddCommand(specgenCmd)
}
