package integrator

import (
	"math"

	"github.com/df07/go-tile-raytracer/pkg/core"
	"github.com/df07/go-tile-raytracer/pkg/geometry"
)

// HitEpsilon is the minimum ray parameter accepted as a hit, avoiding shadow acne after a bounce
const HitEpsilon = 0.001

var (
	// White is the horizon end of the sky gradient
	White = core.NewVec3(1.0, 1.0, 1.0)
	// SkyBlue is the zenith end of the sky gradient
	SkyBlue = core.NewVec3(0.5, 0.7, 1.0)
)

// PathTracingIntegrator implements recursive unidirectional path tracing
type PathTracingIntegrator struct {
	maxDepth int
}

// NewPathTracingIntegrator creates a path tracer that follows at most maxDepth bounces
func NewPathTracingIntegrator(maxDepth int) *PathTracingIntegrator {
	return &PathTracingIntegrator{maxDepth: maxDepth}
}

// MaxDepth returns the recursion budget given to each camera ray
func (pt *PathTracingIntegrator) MaxDepth() int {
	return pt.maxDepth
}

// RayColor traces ray with the integrator's full depth budget
func (pt *PathTracingIntegrator) RayColor(ray core.Ray, world geometry.Shape, sampler core.Sampler) core.Vec3 {
	return pt.Trace(ray, world, sampler, pt.maxDepth)
}

// Trace computes the color for a single ray with depth bounces remaining
func (pt *PathTracingIntegrator) Trace(ray core.Ray, world geometry.Shape, sampler core.Sampler, depth int) core.Vec3 {
	// If we've exceeded the ray bounce limit, no more light is gathered
	if depth <= 0 {
		return core.Vec3{}
	}

	hit, isHit := world.Hit(ray, HitEpsilon, math.Inf(1))
	if !isHit {
		return BackgroundColor(ray)
	}

	scatter, didScatter := hit.Material.Scatter(ray, *hit, sampler)
	if !didScatter {
		return core.Vec3{}
	}

	return scatter.Attenuation.MultiplyVec(pt.Trace(scatter.Scattered, world, sampler, depth-1))
}

// BackgroundColor blends white to sky blue by the ray's normalized vertical component
func BackgroundColor(ray core.Ray) core.Vec3 {
	unitDirection := ray.Direction.Normalize()
	t := 0.5 * (unitDirection.Y + 1.0)
	return White.Multiply(1.0 - t).Add(SkyBlue.Multiply(t))
}
