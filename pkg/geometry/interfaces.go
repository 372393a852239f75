package geometry

import (
	"github.com/df07/go-tile-raytracer/pkg/core"
	"github.com/df07/go-tile-raytracer/pkg/material"
)

// Shape interface for objects that can be hit by rays
type Shape interface {
	// Hit returns the intersection with the smallest t in [tMin, tMax], if any
	Hit(ray core.Ray, tMin, tMax float64) (*material.HitRecord, bool)
}
