package material

import (
	"math"

	"github.com/df07/go-tile-raytracer/pkg/core"
)

// ColorSource provides spatially-varying colors for materials
type ColorSource interface {
	// Evaluate returns color at the given 3D point
	Evaluate(point core.Vec3) core.Vec3
}

// SolidColor provides uniform color
type SolidColor struct {
	Color core.Vec3
}

// NewSolidColor creates a new solid color source
func NewSolidColor(color core.Vec3) *SolidColor {
	return &SolidColor{Color: color}
}

// Evaluate returns the solid color regardless of position
func (s *SolidColor) Evaluate(point core.Vec3) core.Vec3 {
	return s.Color
}

// CheckerTexture alternates between two colors in a 3D sine checker pattern
type CheckerTexture struct {
	Even  ColorSource
	Odd   ColorSource
	Scale float64 // frequency of the checks, 10 gives checks roughly 0.3 units wide
}

// NewCheckerTexture creates a checker pattern from two solid colors
func NewCheckerTexture(even, odd core.Vec3) *CheckerTexture {
	return &CheckerTexture{
		Even:  NewSolidColor(even),
		Odd:   NewSolidColor(odd),
		Scale: 10,
	}
}

// Evaluate picks the even or odd color from the sign of the sine product
func (c *CheckerTexture) Evaluate(point core.Vec3) core.Vec3 {
	sines := math.Sin(c.Scale*point.X) * math.Sin(c.Scale*point.Y) * math.Sin(c.Scale*point.Z)
	if sines < 0 {
		return c.Odd.Evaluate(point)
	}
	return c.Even.Evaluate(point)
}
