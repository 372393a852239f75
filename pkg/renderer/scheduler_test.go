package renderer

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// drain pulls tiles until Done and returns them in order
func drain(t *testing.T, s *TileScheduler) []RenderTile {
	t.Helper()
	var tiles []RenderTile
	for {
		tile := s.NextTile()
		if tile.Done {
			return tiles
		}
		tiles = append(tiles, tile)
		if len(tiles) > 100000 {
			require.FailNow(t, "scheduler never reported done")
		}
	}
}

func TestTileScheduler_Partition(t *testing.T) {
	tests := []struct {
		name    string
		height  int
		width   int
		threads int
	}{
		{"SingleThread", 100, 10, 1},
		{"FourThreads", 100, 10, 4},
		{"MoreThreadsThanRows", 3, 5, 8},
		{"OddHeight", 267, 400, 6},
		{"OneRow", 1, 7, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewTileScheduler(tt.height, tt.width, tt.threads)
			tiles := drain(t, s)

			next := 0
			for _, tile := range tiles {
				require.Equal(t, next, tile.RowStart, "bands must be contiguous")
				require.GreaterOrEqual(t, tile.Rows(), 1, "empty band %+v", tile)
				assert.Equal(t, 0, tile.ColStart)
				assert.Equal(t, tt.width, tile.ColEnd)
				next = tile.RowEnd
			}
			assert.Equal(t, tt.height, next)
			assert.Equal(t, len(tiles), s.Claimed())
			assert.Zero(t, s.RowsRemaining())
		})
	}
}

func TestTileScheduler_BandSizes(t *testing.T) {
	// 10 rows over 4 threads: 10/4=2, 8/4=2, 6/4=1, then single rows
	s := NewTileScheduler(10, 3, 4)
	expected := []int{2, 2, 1, 1, 1, 1, 1, 1}

	tiles := drain(t, s)
	require.Len(t, tiles, len(expected))
	for i, tile := range tiles {
		assert.Equal(t, expected[i], tile.Rows(), "band %d", i)
	}
}

func TestTileScheduler_ThreadsClampedToOne(t *testing.T) {
	s := NewTileScheduler(5, 2, 0)
	tile := s.NextTile()

	assert.False(t, tile.Done)
	assert.Equal(t, 0, tile.RowStart)
	assert.Equal(t, 5, tile.RowEnd)
	assert.True(t, s.NextTile().Done)
}

func TestTileScheduler_DoneStaysDone(t *testing.T) {
	s := NewTileScheduler(2, 2, 1)
	drain(t, s)

	for i := 0; i < 3; i++ {
		require.True(t, s.NextTile().Done, "call %d after exhaustion", i)
	}

	empty := NewTileScheduler(0, 10, 4)
	assert.True(t, empty.NextTile().Done, "zero height is done immediately")
}

func TestTileScheduler_ConcurrentDisjoint(t *testing.T) {
	const height = 1000
	const callers = 16
	s := NewTileScheduler(height, 4, callers)

	var mu sync.Mutex
	covered := make([]int, height)
	var wg sync.WaitGroup
	for c := 0; c < callers; c++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				tile := s.NextTile()
				if tile.Done {
					return
				}
				mu.Lock()
				for row := tile.RowStart; row < tile.RowEnd; row++ {
					covered[row]++
				}
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	for row, count := range covered {
		require.Equal(t, 1, count, "row %d handed out %d times", row, count)
	}
}

func TestTileScheduler_CoversEveryHeightAndThreadCount(t *testing.T) {
	for height := 0; height <= 300; height++ {
		for threads := 1; threads <= 17; threads++ {
			s := NewTileScheduler(height, 3, threads)
			next := 0
			for _, tile := range drain(t, s) {
				require.Equal(t, next, tile.RowStart, "height %d threads %d", height, threads)
				require.Greater(t, tile.RowEnd, tile.RowStart, "height %d threads %d", height, threads)
				next = tile.RowEnd
			}
			require.Equal(t, height, next, "height %d threads %d", height, threads)
		}
	}
}
