// Package nearest builds a crosswalk from each point in one coordinate
// set to its k closest points in another, by chunked brute force. Distance
// is planar Euclidean over raw (lat, lon) pairs; for the short ranges this
// is used at, ordering by planar distance and by great-circle distance
// agree closely enough.
package nearest

import (
	"context"
	"sort"

	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/xy"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// DefaultChunkSize bounds how many from-points one task handles; the full
// chunk-by-candidates distance slab is what drives memory use.
const DefaultChunkSize = 1000

// Point is one identified coordinate.
type Point struct {
	ID  string
	Lat float64
	Lon float64
}

// Row is one crosswalk row: a from-point id and the ids of its closest
// to-points, nearest first.
type Row struct {
	ID      string
	Nearest []string
}

// Options configures a crosswalk run.
type Options struct {
	// K is the number of nearest points to return per from-point;
	// 0 means 10, matching the historical default.
	K int
	// ChunkSize is the number of from-points per parallel task.
	ChunkSize int
	// Workers bounds concurrent chunk tasks; 0 lets errgroup run
	// unbounded.
	Workers int
}

// Crosswalk returns, for every point in from, the ids of its K nearest
// points in to, ordered nearest first. Chunks of from are processed in
// parallel; output order follows the input.
func Crosswalk(ctx context.Context, from, to []Point, opts Options) ([]Row, error) {
	if len(to) == 0 {
		return nil, eris.New("nearest: empty comparison set")
	}

	k := opts.K
	if k <= 0 {
		k = 10
	}
	if k > len(to) {
		k = len(to)
	}

	chunk := opts.ChunkSize
	if chunk <= 0 {
		chunk = DefaultChunkSize
	}

	log := zap.L().With(zap.String("component", "nearest"))
	log.Info("building nearest crosswalk",
		zap.Int("from", len(from)),
		zap.Int("to", len(to)),
		zap.Int("k", k),
		zap.Int("chunk_size", chunk),
	)

	coords := make([]geom.Coord, len(to))
	for i, p := range to {
		coords[i] = geom.Coord{p.Lat, p.Lon}
	}

	rows := make([]Row, len(from))

	g, gctx := errgroup.WithContext(ctx)
	if opts.Workers > 0 {
		g.SetLimit(opts.Workers)
	}

	for start := 0; start < len(from); start += chunk {
		end := start + chunk
		if end > len(from) {
			end = len(from)
		}

		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return eris.Wrap(err, "nearest: chunk cancelled")
			}
			for i := start; i < end; i++ {
				rows[i] = Row{ID: from[i].ID, Nearest: closest(from[i], to, coords, k)}
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return rows, nil
}

// closest returns the ids of the k points nearest to p, nearest first.
// A quickselect partition isolates the k smallest distances before the
// final sort, so cost stays linear in len(to).
func closest(p Point, to []Point, coords []geom.Coord, k int) []string {
	c := geom.Coord{p.Lat, p.Lon}

	dists := make([]candidate, len(to))
	for i := range to {
		dists[i] = candidate{idx: i, dist: xy.Distance(c, coords[i])}
	}

	selectSmallest(dists, k)
	kept := dists[:k]
	sort.Slice(kept, func(a, b int) bool {
		if kept[a].dist != kept[b].dist {
			return kept[a].dist < kept[b].dist
		}
		return kept[a].idx < kept[b].idx
	})

	ids := make([]string, k)
	for i, cand := range kept {
		ids[i] = to[cand.idx].ID
	}
	return ids
}

type candidate struct {
	idx  int
	dist float64
}

// selectSmallest partitions cands so the k smallest distances occupy
// cands[:k], in no particular order.
func selectSmallest(cands []candidate, k int) {
	lo, hi := 0, len(cands)-1
	for lo < hi {
		p := partition(cands, lo, hi)
		switch {
		case p == k-1:
			return
		case p < k-1:
			lo = p + 1
		default:
			hi = p - 1
		}
	}
}

func partition(cands []candidate, lo, hi int) int {
	pivot := cands[hi].dist
	i := lo
	for j := lo; j < hi; j++ {
		if cands[j].dist < pivot {
			cands[i], cands[j] = cands[j], cands[i]
			i++
		}
	}
	cands[i], cands[hi] = cands[hi], cands[i]
	return i
}
