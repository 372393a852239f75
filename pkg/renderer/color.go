package renderer

import (
	"image/color"

	"github.com/df07/go-tile-raytracer/pkg/core"
)

// ToRGBA converts an accumulated sample sum into an 8-bit pixel:
// average over samples, square-root gamma, clamp to [0, 0.999], scale by 256
func ToRGBA(sum core.Vec3, samples int) color.RGBA {
	c := sum
	if samples > 0 {
		c = sum.Multiply(1.0 / float64(samples))
	}
	c = c.Sqrt().Clamp(0, 0.999)

	return color.RGBA{
		R: uint8(256 * c.X),
		G: uint8(256 * c.Y),
		B: uint8(256 * c.Z),
		A: 255,
	}
}
