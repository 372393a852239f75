package integrator

import (
	"github.com/df07/go-tile-raytracer/pkg/core"
	"github.com/df07/go-tile-raytracer/pkg/geometry"
)

// Integrator defines the interface for light transport algorithms
type Integrator interface {
	// RayColor computes the radiance carried back along ray from world
	RayColor(ray core.Ray, world geometry.Shape, sampler core.Sampler) core.Vec3
}
