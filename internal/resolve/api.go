package resolve

import (
	"context"

	"github.com/sells-group/fuzzymatch/internal/frame"
)

// Option adjusts a matching run.
type Option func(*options)

type options struct {
	events chan<- Snapshot
	colMap map[string]string
}

// WithProgress delivers periodic progress snapshots on events for the
// duration of the run. Snapshots are dropped when the channel is full; the
// engine never blocks on a display sink. Only active when the spec sets a
// progress interval.
func WithProgress(events chan<- Snapshot) Option {
	return func(o *options) { o.events = events }
}

// WithColumnMap renames to-match columns onto the pool's column names
// before the two sides are stacked (two-set mode only). Field names in the
// spec refer to the pool's names.
func WithColumnMap(m map[string]string) Option {
	return func(o *options) { o.colMap = m }
}

// Dedup identifies duplicate rows within one record set. Every input
// record appears exactly once in the result, carrying its full duplicate
// group (transitively closed within its exact-match block) or itself alone.
func Dedup(ctx context.Context, records *frame.Frame, spec Spec, opts ...Option) ([]DedupRow, error) {
	rs, err := spec.resolve()
	if err != nil {
		return nil, err
	}

	var o options
	for _, opt := range opts {
		opt(&o)
	}

	cf, err := buildCompFrame(&rs, &source{f: records})
	if err != nil {
		return nil, err
	}

	merged, err := run(ctx, cf, &rs, o.events)
	if err != nil {
		return nil, err
	}

	return assembleDedup(cf, merged), nil
}

// Match links every row of toMatch to its accepted candidates in pool.
// toMatch rows are anchors: each gets exactly one output row. Pool rows
// are compared against but never searched themselves.
func Match(ctx context.Context, toMatch, pool *frame.Frame, spec Spec, opts ...Option) ([]MatchRow, error) {
	rs, err := spec.resolve()
	if err != nil {
		return nil, err
	}

	var o options
	for _, opt := range opts {
		opt(&o)
	}

	if o.colMap != nil {
		if toMatch, err = toMatch.Renamed(o.colMap); err != nil {
			return nil, err
		}
	}

	cf, err := buildCompFrame(&rs, &source{f: toMatch, anchor: true}, &source{f: pool})
	if err != nil {
		return nil, err
	}

	merged, err := run(ctx, cf, &rs, o.events)
	if err != nil {
		return nil, err
	}

	return assembleMatch(cf, merged), nil
}
