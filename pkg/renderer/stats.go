package renderer

import (
	"image"
	"time"

	"github.com/df07/go-tile-raytracer/pkg/core"
)

// WorkerStats contains the work done by a single worker during a pass
type WorkerStats struct {
	ID      int // Worker index
	Tiles   int // Bands rendered
	Rows    int // Rows rendered
	Pixels  int // Pixels written
	Samples int // Camera rays traced
}

// add folds the result of one tile into the worker totals
func (w *WorkerStats) add(tile TileStats) {
	w.Tiles++
	w.Rows += tile.Rows
	w.Pixels += tile.Pixels
	w.Samples += tile.Samples
}

// TileStats contains statistics about a single rendered tile
type TileStats struct {
	Rows    int
	Pixels  int
	Samples int
}

// RenderStats contains statistics about the rendering process
type RenderStats struct {
	Workers      int           // Number of workers in the pass
	TotalTiles   int           // Tiles handed out by the scheduler
	TotalPixels  int           // Total number of pixels rendered
	TotalSamples int           // Total number of samples taken
	Elapsed      time.Duration // Wall time of the pass
	PerWorker    []WorkerStats // Breakdown by worker, indexed by worker ID
	Cancelled    bool          // Set when the pass stopped before every row was rendered
}

// AverageSamples returns the mean number of samples per rendered pixel
func (s RenderStats) AverageSamples() float64 {
	if s.TotalPixels == 0 {
		return 0
	}
	return float64(s.TotalSamples) / float64(s.TotalPixels)
}

// PixelStats accumulates the samples taken for a single pixel
type PixelStats struct {
	ColorAccum  core.Vec3 // RGB accumulator for final result
	SampleCount int       // Number of samples taken
}

// AddSample adds a new color sample to the pixel statistics
func (ps *PixelStats) AddSample(color core.Vec3) {
	ps.ColorAccum = ps.ColorAccum.Add(color)
	ps.SampleCount++
}

// GetColor returns the current average color for this pixel
func (ps *PixelStats) GetColor() core.Vec3 {
	if ps.SampleCount == 0 {
		return core.Vec3{X: 0, Y: 0, Z: 0}
	}
	return ps.ColorAccum.Multiply(1.0 / float64(ps.SampleCount))
}

// CalculateAverageLuminance returns the mean Rec. 709 luminance of an 8-bit image in [0, 1]
func CalculateAverageLuminance(img *image.RGBA) float64 {
	bounds := img.Bounds()
	pixels := bounds.Dx() * bounds.Dy()
	if pixels == 0 {
		return 0
	}

	total := 0.0
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			c := img.RGBAAt(x, y)
			total += core.NewVec3(float64(c.R), float64(c.G), float64(c.B)).Multiply(1.0 / 255).Luminance()
		}
	}
	return total / float64(pixels)
}
