package nearest

import (
	"context"
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/fuzzymatch/internal/frame"
)

func TestCrosswalkOrdersNearestFirst(t *testing.T) {
	from := []Point{{ID: "origin", Lat: 0, Lon: 0}}
	to := []Point{
		{ID: "far", Lat: 3, Lon: 4},
		{ID: "near", Lat: 0, Lon: 1},
		{ID: "mid", Lat: 0, Lon: 2},
	}

	rows, err := Crosswalk(context.Background(), from, to, Options{K: 3})
	require.NoError(t, err)

	require.Len(t, rows, 1)
	assert.Equal(t, "origin", rows[0].ID)
	assert.Equal(t, []string{"near", "mid", "far"}, rows[0].Nearest)
}

func TestCrosswalkClampsKToComparisonSet(t *testing.T) {
	from := []Point{{ID: "a"}}
	to := []Point{{ID: "x", Lat: 1}, {ID: "y", Lat: 2}}

	rows, err := Crosswalk(context.Background(), from, to, Options{K: 10})
	require.NoError(t, err)

	assert.Equal(t, []string{"x", "y"}, rows[0].Nearest)
}

func TestCrosswalkEmptyComparisonSet(t *testing.T) {
	_, err := Crosswalk(context.Background(), []Point{{ID: "a"}}, nil, Options{})
	assert.Error(t, err)
}

func TestCrosswalkChunkedMatchesSequential(t *testing.T) {
	// Small chunks with bounded workers must give the same answer, in the
	// same input order, as one big chunk.
	var from, to []Point
	for i := 0; i < 57; i++ {
		from = append(from, Point{
			ID:  fmt.Sprintf("f%02d", i),
			Lat: math.Sin(float64(i)) * 10,
			Lon: math.Cos(float64(i)) * 10,
		})
	}
	for i := 0; i < 23; i++ {
		to = append(to, Point{
			ID:  fmt.Sprintf("t%02d", i),
			Lat: math.Sin(float64(i)*1.7) * 10,
			Lon: math.Cos(float64(i)*1.7) * 10,
		})
	}

	sequential, err := Crosswalk(context.Background(), from, to, Options{K: 5, ChunkSize: len(from)})
	require.NoError(t, err)

	chunked, err := Crosswalk(context.Background(), from, to, Options{K: 5, ChunkSize: 7, Workers: 3})
	require.NoError(t, err)

	assert.Equal(t, sequential, chunked)
}

func TestCrosswalkDefaultK(t *testing.T) {
	var to []Point
	for i := 0; i < 20; i++ {
		to = append(to, Point{ID: fmt.Sprintf("t%02d", i), Lat: float64(i)})
	}

	rows, err := Crosswalk(context.Background(), []Point{{ID: "a"}}, to, Options{})
	require.NoError(t, err)

	assert.Len(t, rows[0].Nearest, 10)
	assert.Equal(t, "t00", rows[0].Nearest[0])
}

func TestFromFrameSkipsBadCoordinates(t *testing.T) {
	f, err := frame.New([]string{"id", "lat", "lon"}, [][]string{
		{"a", "40.1", "-111.6"},
		{"b", "", "-111.6"},
		{"c", "40.2", "not-a-number"},
		{"d", " 40.3 ", " -111.7 "},
	})
	require.NoError(t, err)

	points, err := FromFrame(f, "id", "lat", "lon")
	require.NoError(t, err)

	require.Len(t, points, 2)
	assert.Equal(t, Point{ID: "a", Lat: 40.1, Lon: -111.6}, points[0])
	assert.Equal(t, Point{ID: "d", Lat: 40.3, Lon: -111.7}, points[1])
}

func TestFromFrameUnknownColumn(t *testing.T) {
	f, err := frame.New([]string{"id"}, nil)
	require.NoError(t, err)

	_, err = FromFrame(f, "id", "lat", "lon")
	assert.Error(t, err)
}
