package renderer

import (
	"sync"
)

// RenderTile is a band of image rows handed to one worker.
// Row and column ranges are half-open. Done means no work remains.
type RenderTile struct {
	RowStart, RowEnd int
	ColStart, ColEnd int
	Done             bool
}

// Rows returns the number of rows in the band
func (t RenderTile) Rows() int {
	return t.RowEnd - t.RowStart
}

// Pixels returns the number of pixels covered by the band
func (t RenderTile) Pixels() int {
	return t.Rows() * (t.ColEnd - t.ColStart)
}

// TileScheduler hands out row bands on demand. Each call sizes the next band as
// the remaining rows divided by the thread count, so bands shrink toward the end
// of a pass and drop to single rows once fewer rows than threads remain.
type TileScheduler struct {
	mu            sync.Mutex
	nextRow       int
	rowsRemaining int
	width         int
	threads       int
	claimed       int
}

// NewTileScheduler creates a scheduler over rows [0, height) and columns [0, width)
func NewTileScheduler(height, width, threads int) *TileScheduler {
	return &TileScheduler{
		rowsRemaining: max(0, height),
		width:         max(0, width),
		threads:       max(1, threads),
	}
}

// NextTile claims the next band of rows, or returns a Done tile once every row has been handed out
func (s *TileScheduler) NextTile() RenderTile {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.rowsRemaining <= 0 {
		return RenderTile{Done: true}
	}

	// Never hand out an empty band while rows remain
	band := max(1, s.rowsRemaining/s.threads)

	tile := RenderTile{
		RowStart: s.nextRow,
		RowEnd:   s.nextRow + band,
		ColStart: 0,
		ColEnd:   s.width,
	}

	s.nextRow += band
	s.rowsRemaining -= band
	s.claimed++

	return tile
}

// Claimed returns the number of non-terminal tiles handed out so far
func (s *TileScheduler) Claimed() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.claimed
}

// RowsRemaining returns the number of rows not yet handed out
func (s *TileScheduler) RowsRemaining() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rowsRemaining
}
