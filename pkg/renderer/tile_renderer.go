package renderer

import (
	"github.com/df07/go-tile-raytracer/pkg/core"
	"github.com/df07/go-tile-raytracer/pkg/integrator"
	"github.com/df07/go-tile-raytracer/pkg/scene"
)

// TileRenderer handles the actual rendering of individual tiles using an integrator
type TileRenderer struct {
	scene           *scene.Scene
	integrator      integrator.Integrator
	framebuffer     *Framebuffer
	samplesPerPixel int
}

// NewTileRenderer creates a tile renderer that writes into framebuffer
func NewTileRenderer(sc *scene.Scene, integratorInst integrator.Integrator, framebuffer *Framebuffer, samplesPerPixel int) *TileRenderer {
	return &TileRenderer{
		scene:           sc,
		integrator:      integratorInst,
		framebuffer:     framebuffer,
		samplesPerPixel: max(1, samplesPerPixel),
	}
}

// PixelColor returns the accumulated samples for pixel (i, j), where j counts rows from the bottom
func (tr *TileRenderer) PixelColor(i, j int, sampler core.Sampler) PixelStats {
	width := tr.framebuffer.Width()
	height := tr.framebuffer.Height()
	uScale := float64(max(1, width-1))
	vScale := float64(max(1, height-1))

	var ps PixelStats
	for s := 0; s < tr.samplesPerPixel; s++ {
		u := (float64(i) + sampler.Get1D()) / uScale
		v := (float64(j) + sampler.Get1D()) / vScale
		ray := tr.scene.Camera.GetRay(u, v, sampler)
		ps.AddSample(tr.integrator.RayColor(ray, tr.scene.World, sampler))
	}
	return ps
}

// RenderTile renders every pixel in tile and writes it to the framebuffer.
// Tile rows count from the bottom of the image; the framebuffer row is flipped.
func (tr *TileRenderer) RenderTile(tile RenderTile, sampler core.Sampler) TileStats {
	height := tr.framebuffer.Height()
	stats := TileStats{Rows: tile.Rows()}

	for j := tile.RowStart; j < tile.RowEnd; j++ {
		for i := tile.ColStart; i < tile.ColEnd; i++ {
			ps := tr.PixelColor(i, j, sampler)
			tr.framebuffer.SetPixel(i, height-1-j, ToRGBA(ps.ColorAccum, ps.SampleCount))
			stats.Pixels++
			stats.Samples += ps.SampleCount
		}
	}

	return stats
}
