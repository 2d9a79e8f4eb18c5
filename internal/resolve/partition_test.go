package resolve

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPartitionBlocksRebalancesTail(t *testing.T) {
	// Seven blocks over three workers: round-robin leaves 3/2/2, the
	// rebalance pass moves the first bucket's tail block to the last.
	buckets := partitionBlocks([]int{0, 1, 2, 3, 4, 5, 6}, 3)

	require.Len(t, buckets, 3)
	assert.Equal(t, []int{0, 3}, buckets[0])
	assert.Equal(t, []int{1, 4}, buckets[1])
	assert.Equal(t, []int{2, 5, 6}, buckets[2])
}

func TestPartitionBlocksAlreadyBalanced(t *testing.T) {
	buckets := partitionBlocks([]int{0, 1, 2, 3, 4, 5}, 3)

	require.Len(t, buckets, 3)
	assert.Equal(t, []int{0, 3}, buckets[0])
	assert.Equal(t, []int{1, 4}, buckets[1])
	assert.Equal(t, []int{2, 5}, buckets[2])
}

func TestPartitionBlocksSingleWorker(t *testing.T) {
	buckets := partitionBlocks([]int{3, 1, 2}, 1)

	require.Len(t, buckets, 1)
	assert.Equal(t, []int{3, 1, 2}, buckets[0])
}

func TestPartitionBlocksZeroWorkersClampsToOne(t *testing.T) {
	buckets := partitionBlocks([]int{0, 1}, 0)
	require.Len(t, buckets, 1)
	assert.Equal(t, []int{0, 1}, buckets[0])
}

func TestPartitionBlocksEveryBlockAssignedOnce(t *testing.T) {
	for workers := 1; workers <= 8; workers++ {
		for n := 0; n <= 20; n++ {
			ordered := make([]int, n)
			for i := range ordered {
				ordered[i] = i
			}

			buckets := partitionBlocks(ordered, workers)
			require.Len(t, buckets, workers)

			var all []int
			for _, b := range buckets {
				all = append(all, b...)
			}
			sort.Ints(all)
			assert.Equal(t, ordered, append([]int{}, all...),
				"workers=%d n=%d", workers, n)
		}
	}
}
