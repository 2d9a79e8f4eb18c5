package main

import (
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/fuzzymatch/internal/frame"
	"github.com/sells-group/fuzzymatch/internal/nearest"
)

var (
	nearestIDField  string
	nearestLatField string
	nearestLonField string
	nearestK        int
	nearestChunk    int
	nearestWorkers  int
	nearestOutPath  string
)

var nearestCmd = &cobra.Command{
	Use:   "nearest <from-file> <to-file>",
	Short: "Crosswalk each point in one coordinate set to its closest points in another",
	Long:  "Loads two point sets (CSV/TSV/XLSX with lat/lon columns, or point shapefiles) and writes, for every from-point, the ids of its k nearest to-points, nearest first.",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		from, err := loadPoints(cmd, args[0])
		if err != nil {
			return err
		}
		to, err := loadPoints(cmd, args[1])
		if err != nil {
			return err
		}
		zap.L().Info("loaded points", zap.Int("from", len(from)), zap.Int("to", len(to)))

		k := nearestK
		if k == 0 {
			k = cfg.Nearest.Matches
		}
		chunk := nearestChunk
		if chunk == 0 {
			chunk = cfg.Nearest.ChunkSize
		}
		workers := nearestWorkers
		if workers == 0 {
			workers = cfg.Nearest.Workers
		}

		rows, err := nearest.Crosswalk(ctx, from, to, nearest.Options{
			K:         k,
			ChunkSize: chunk,
			Workers:   workers,
		})
		if err != nil {
			return err
		}

		return writeNearestCSV(nearestOutPath, rows)
	},
}

func loadPoints(cmd *cobra.Command, path string) ([]nearest.Point, error) {
	if strings.EqualFold(filepath.Ext(path), ".shp") {
		return nearest.FromShapefile(path, nearestIDField)
	}

	f, err := frame.Load(cmd.Context(), path)
	if err != nil {
		return nil, err
	}
	return nearest.FromFrame(f, nearestIDField, nearestLatField, nearestLonField)
}

func writeNearestCSV(path string, rows []nearest.Row) error {
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
		records[i] = []string{row.ID, joinIDs(row.Nearest)}
	}
	return frame.WriteCSV(out, []string{"id", "nearest"}, records)
}

func init() {
	nearestCmd.Flags().StringVar(&nearestIDField, "id", "id", "id column or shapefile attribute")
	nearestCmd.Flags().StringVar(&nearestLatField, "lat", "lat", "latitude column")
	nearestCmd.Flags().StringVar(&nearestLonField, "lon", "lon", "longitude column")
	nearestCmd.Flags().IntVarP(&nearestK, "matches", "k", 0, "number of nearest points per row (default from config)")
	nearestCmd.Flags().IntVar(&nearestChunk, "chunk-size", 0, "from-points per parallel task (default from config)")
	nearestCmd.Flags().IntVar(&nearestWorkers, "workers", 0, "max concurrent tasks (default unbounded)")
	nearestCmd.Flags().StringVarP(&nearestOutPath, "out", "o", "", "output CSV path (default stdout)")
	rootCmd.AddCommand(nearestCmd)
}
