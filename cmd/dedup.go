package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/fuzzymatch/internal/frame"
	"github.com/sells-group/fuzzymatch/internal/resolve"
)

var (
	dedupSpecPath string
	dedupOutPath  string
	dedupQuiet    bool
)

var dedupCmd = &cobra.Command{
	Use:   "dedup <records-file>",
	Short: "Group duplicate rows within one record set",
	Long:  "Loads a tabular file and groups rows representing the same entity per the match spec. Every input row appears exactly once in the output with its full duplicate group, or alone if nothing matched.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		spec, err := loadSpec(dedupSpecPath, cfg)
		if err != nil {
			return err
		}

		records, err := frame.Load(ctx, args[0])
		if err != nil {
			return err
		}
		zap.L().Info("loaded input", zap.Int("rows", records.Len()))

		var opts []resolve.Option
		events, done := startProgress(&spec, dedupQuiet)
		if events != nil {
			opts = append(opts, resolve.WithProgress(events))
		}
		rows, err := resolve.Dedup(ctx, records, spec, opts...)
		stopProgress(events, done)
		if err != nil {
			return err
		}

		return writeDedupCSV(dedupOutPath, rows)
	},
}

func writeDedupCSV(path string, rows []resolve.DedupRow) error {
	out := os.Stdout
	if path != "" {
		f, err := os.Create(path)
		if err != nil {
			return eris.Wrap(err, "create output file")
		}
		defer f.Close()
		out = f
	}

	records := make([][]string, len(rows))
	for i, row := range rows {
		records[i] = []string{row.ID, joinIDs(row.Duplicates)}
	}
	return frame.WriteCSV(out, []string{"id", "duplicates"}, records)
}

func init() {
	dedupCmd.Flags().StringVar(&dedupSpecPath, "spec", "match.yaml", "match spec YAML file")
	dedupCmd.Flags().StringVarP(&dedupOutPath, "out", "o", "", "output CSV path (default stdout)")
	dedupCmd.Flags().BoolVarP(&dedupQuiet, "quiet", "q", false, "disable progress output")
	rootCmd.AddCommand(dedupCmd)
}
