package geometry

import (
	"math"
	"testing"

	"github.com/df07/go-tile-raytracer/pkg/core"
	"github.com/df07/go-tile-raytracer/pkg/material"
)

func TestSphere_Hit_Miss(t *testing.T) {
	sphere := NewSphere(core.NewVec3(0, 0, 0), 1.0, nil)
	ray := core.NewRay(core.NewVec3(2, 0, 0), core.NewVec3(0, 1, 0))

	hit, isHit := sphere.Hit(ray, 0.001, math.Inf(1))
	if isHit {
		t.Errorf("Expected miss, but got hit at t=%f", hit.T)
	}
}

func TestSphere_Hit_PerpendicularOffsetBeyondRadius(t *testing.T) {
	sphere := NewSphere(core.NewVec3(0, 0, -5), 1.0, nil)

	// Parallel to the axis through the center but offset by 1.5 > radius
	ray := core.NewRay(core.NewVec3(1.5, 0, 0), core.NewVec3(0, 0, -1))
	if _, isHit := sphere.Hit(ray, 0.001, math.Inf(1)); isHit {
		t.Error("Expected miss for ray offset beyond the radius")
	}
}

func TestSphere_Hit_TowardCenter(t *testing.T) {
	tests := []struct {
		name   string
		center core.Vec3
		radius float64
		origin core.Vec3
	}{
		{"unit sphere along z", core.NewVec3(0, 0, -5), 1.0, core.NewVec3(0, 0, 0)},
		{"large sphere diagonal", core.NewVec3(3, 4, 12), 2.5, core.NewVec3(0, 0, 0)},
		{"offset origin", core.NewVec3(-2, 1, 0), 0.5, core.NewVec3(7, -3, 2)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mat := material.NewLambertian(core.NewVec3(0.5, 0.5, 0.5))
			sphere := NewSphere(tt.center, tt.radius, mat)

			toCenter := tt.center.Subtract(tt.origin)
			ray := core.NewRay(tt.origin, toCenter.Normalize())

			hit, isHit := sphere.Hit(ray, 0.001, math.Inf(1))
			if !isHit {
				t.Fatal("Expected hit, but got miss")
			}

			expectedT := toCenter.Length() - tt.radius
			if math.Abs(hit.T-expectedT) > 1e-9 {
				t.Errorf("Expected t=%f, got t=%f", expectedT, hit.T)
			}
			if !hit.FrontFace {
				t.Error("Expected front face hit from outside")
			}
			if hit.Material != mat {
				t.Error("Hit record should carry the sphere's material")
			}
		})
	}
}

func TestSphere_Hit_FrontAndBackFace(t *testing.T) {
	sphere := NewSphere(core.NewVec3(0, 0, 0), 1.0, nil)

	tests := []struct {
		name           string
		rayOrigin      core.Vec3
		rayDirection   core.Vec3
		expectedT      float64
		expectedFront  bool
		expectedNormal core.Vec3
	}{
		{
			name:           "front face hit",
			rayOrigin:      core.NewVec3(0, 0, 2),
			rayDirection:   core.NewVec3(0, 0, -1),
			expectedT:      1.0,
			expectedFront:  true,
			expectedNormal: core.NewVec3(0, 0, 1),
		},
		{
			name:           "back face hit",
			rayOrigin:      core.NewVec3(0, 0, 0),
			rayDirection:   core.NewVec3(0, 0, 1),
			expectedT:      1.0,
			expectedFront:  false,
			expectedNormal: core.NewVec3(0, 0, -1),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ray := core.NewRay(tt.rayOrigin, tt.rayDirection)
			hit, isHit := sphere.Hit(ray, 0.001, 1000.0)

			if !isHit {
				t.Fatal("Expected hit, but got miss")
			}

			if math.Abs(hit.T-tt.expectedT) > 1e-9 {
				t.Errorf("Expected t=%f, got t=%f", tt.expectedT, hit.T)
			}

			if hit.FrontFace != tt.expectedFront {
				t.Errorf("Expected front face %t, got %t", tt.expectedFront, hit.FrontFace)
			}

			if hit.Normal.Subtract(tt.expectedNormal).Length() > 1e-9 {
				t.Errorf("Expected normal %v, got %v", tt.expectedNormal, hit.Normal)
			}
		})
	}
}

func TestSphere_Hit_RespectsTRange(t *testing.T) {
	sphere := NewSphere(core.NewVec3(0, 0, -5), 1.0, nil)
	ray := core.NewRay(core.NewVec3(0, 0, 0), core.NewVec3(0, 0, -1))

	// Near root at t=4 excluded, far root at t=6 accepted
	hit, isHit := sphere.Hit(ray, 4.5, 100)
	if !isHit || math.Abs(hit.T-6) > 1e-9 {
		t.Fatalf("Expected far root t=6, got hit=%t", isHit)
	}

	// Both roots outside the interval
	if _, isHit := sphere.Hit(ray, 0.001, 3.9); isHit {
		t.Error("Expected miss when both roots exceed tMax")
	}
}

func TestSphere_Hit_SelfIntersectionTolerance(t *testing.T) {
	sphere := NewSphere(core.NewVec3(0, 0, 0), 1.0, nil)

	// Ray leaving the surface outward must not re-hit its own origin
	ray := core.NewRay(core.NewVec3(0, 0, 1), core.NewVec3(0, 0, 1))
	if _, isHit := sphere.Hit(ray, 0.001, math.Inf(1)); isHit {
		t.Error("Outgoing ray should not hit the surface it starts on")
	}
}
