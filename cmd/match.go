package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/fuzzymatch/internal/frame"
	"github.com/sells-group/fuzzymatch/internal/resolve"
)

var (
	matchSpecPath string
	matchOutPath  string
	matchColMap   map[string]string
	matchQuiet    bool
)

var matchCmd = &cobra.Command{
	Use:   "match <tomatch-file> <pool-file>",
	Short: "Link rows in one record set to candidates in another",
	Long:  "Loads two tabular files, links every row of the first to its accepted candidates in the second per the match spec, and writes the crosswalk as CSV. Every to-match row appears exactly once in the output.",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		spec, err := loadSpec(matchSpecPath, cfg)
		if err != nil {
			return err
		}

		var toMatch, pool *frame.Frame
		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			var err error
			toMatch, err = frame.Load(gctx, args[0])
			return err
		})
		g.Go(func() error {
			var err error
			pool, err = frame.Load(gctx, args[1])
			return err
		})
		if err := g.Wait(); err != nil {
			return err
		}

		zap.L().Info("loaded inputs",
			zap.Int("tomatch_rows", toMatch.Len()),
			zap.Int("pool_rows", pool.Len()),
		)

		opts := []resolve.Option{}
		if len(matchColMap) > 0 {
			opts = append(opts, resolve.WithColumnMap(matchColMap))
		}

		events, done := startProgress(&spec, matchQuiet)
		if events != nil {
			opts = append(opts, resolve.WithProgress(events))
		}
		rows, err := resolve.Match(ctx, toMatch, pool, spec, opts...)
		stopProgress(events, done)
		if err != nil {
			return err
		}

		return writeMatchCSV(matchOutPath, rows)
	},
}

// startProgress wires a progress channel and renderer unless disabled.
func startProgress(spec *resolve.Spec, quiet bool) (chan resolve.Snapshot, chan struct{}) {
	if quiet || spec.ProgressEvery <= 0 {
		spec.ProgressEvery = 0
		return nil, nil
	}

	events := make(chan resolve.Snapshot, 1)
	done := make(chan struct{})
	go func() {
		defer close(done)
		renderProgress(events)
	}()
	return events, done
}

func stopProgress(events chan resolve.Snapshot, done chan struct{}) {
	if events == nil {
		return
	}
	close(events)
	<-done
}

func writeMatchCSV(path string, rows []resolve.MatchRow) error {
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
		records[i] = []string{row.ID, joinIDs(row.Matches)}
	}
	return frame.WriteCSV(out, []string{"id", "matches"}, records)
}

func init() {
	matchCmd.Flags().StringVar(&matchSpecPath, "spec", "match.yaml", "match spec YAML file")
	matchCmd.Flags().StringVarP(&matchOutPath, "out", "o", "", "output CSV path (default stdout)")
	matchCmd.Flags().StringToStringVar(&matchColMap, "colmap", nil, "rename to-match columns onto pool names, e.g. fname=first_name")
	matchCmd.Flags().BoolVarP(&matchQuiet, "quiet", "q", false, "disable progress output")
	rootCmd.AddCommand(matchCmd)
}
