package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/sells-group/fuzzymatch/internal/resolve"
)

const barWidth = 40

// renderProgress consumes engine snapshots and paints per-worker bars with
// ETA to stderr. Runs until the channel closes.
func renderProgress(events <-chan resolve.Snapshot) {
	for snap := range events {
		var b strings.Builder

		for _, w := range snap.Workers {
			frac := 0.0
			if w.Total > 0 {
				frac = float64(w.Processed) / float64(w.Total)
			}
			filled := int(frac * barWidth)

			eta := "--"
			if w.Remaining >= 0 {
				eta = w.Remaining.Round(displayRound(w.Remaining)).String()
			}

			fmt.Fprintf(&b, "worker %-2d [%s%s] %5.1f%%  eta %s\n",
				w.Worker,
				strings.Repeat("=", filled),
				strings.Repeat(" ", barWidth-filled),
				frac*100,
				eta,
			)
		}

		fmt.Fprintf(&b, "matched %d of %d processed, elapsed %s\n",
			snap.Matched, snap.Processed, snap.Elapsed.Round(displayRound(snap.Elapsed)))

		fmt.Fprint(os.Stderr, "\n"+b.String())
	}
}

// displayRound picks a display granularity appropriate to the magnitude.
func displayRound(d time.Duration) time.Duration {
	switch {
	case d >= time.Hour:
		return time.Minute
	case d >= time.Minute:
		return time.Second
	default:
		return time.Second / 10
	}
}
