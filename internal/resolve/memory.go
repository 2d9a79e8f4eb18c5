package resolve

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/shirou/gopsutil/v4/mem"
	"go.uber.org/zap"
)

// memPollInterval is how often the guard samples system memory.
const memPollInterval = 100 * time.Millisecond

// readMemPercent reports system memory usage. Swapped out in tests.
var readMemPercent = func(ctx context.Context) (float64, error) {
	vm, err := mem.VirtualMemoryWithContext(ctx)
	if err != nil {
		return 0, err
	}
	return vm.UsedPercent, nil
}

// memoryGuard polls system memory usage and, when it crosses limitPct,
// sets the abort flag and cancels the run context so every worker stops.
// The coordinator turns the flag into a fatal ErrMemoryLimit; once the
// flag is set the run can only fail, never return partial output. The
// first sample is taken immediately, then every poll interval.
func memoryGuard(ctx context.Context, limitPct float64, aborted *atomic.Bool, cancel context.CancelFunc) {
	log := zap.L().With(zap.String("component", "memory_guard"))

	ticker := time.NewTicker(memPollInterval)
	defer ticker.Stop()

	for {
		used, err := readMemPercent(ctx)
		if err != nil {
			log.Warn("memory sample failed", zap.Error(err))
		} else if used > limitPct {
			log.Error("memory usage over limit, aborting run",
				zap.Float64("used_pct", used),
				zap.Float64("limit_pct", limitPct),
			)
			aborted.Store(true)
			cancel()
			return
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
