package geometry

import (
	"github.com/df07/go-tile-raytracer/pkg/core"
	"github.com/df07/go-tile-raytracer/pkg/material"
)

// MovingSphere is a sphere whose center travels linearly between two points over a time window
type MovingSphere struct {
	Center0, Center1 core.Vec3
	Time0, Time1     float64
	Radius           float64
	Material         material.Material
}

// NewMovingSphere creates a sphere at center0 at time0 and center1 at time1
func NewMovingSphere(center0, center1 core.Vec3, time0, time1, radius float64, mat material.Material) *MovingSphere {
	return &MovingSphere{
		Center0:  center0,
		Center1:  center1,
		Time0:    time0,
		Time1:    time1,
		Radius:   radius,
		Material: mat,
	}
}

// CenterAt returns the interpolated center at the given time
func (m *MovingSphere) CenterAt(time float64) core.Vec3 {
	if m.Time1 == m.Time0 {
		return m.Center0
	}
	fraction := (time - m.Time0) / (m.Time1 - m.Time0)
	return m.Center0.Add(m.Center1.Subtract(m.Center0).Multiply(fraction))
}

// Hit tests the ray against the sphere at its position for the ray's time
func (m *MovingSphere) Hit(ray core.Ray, tMin, tMax float64) (*material.HitRecord, bool) {
	return hitSphere(m.CenterAt(ray.Time), m.Radius, m.Material, ray, tMin, tMax)
}
