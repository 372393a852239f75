package material

import (
	"math"
	"testing"

	"github.com/df07/go-tile-raytracer/pkg/core"
)

func TestDielectricBasicBehavior(t *testing.T) {
	glass := NewDielectric(1.5)

	rayDirection := core.NewVec3(1, -1, 0).Normalize() // 45-degree angle
	ray := core.NewRay(core.NewVec3(0, 1, 0), rayDirection)

	hit := HitRecord{
		Point:     core.NewVec3(0, 0, 0),
		Normal:    core.NewVec3(0, 1, 0),
		T:         1.0,
		FrontFace: true,
		Material:  glass,
	}

	result, scattered := glass.Scatter(ray, hit, core.NewSeededSampler(42))
	if !scattered {
		t.Error("Dielectric should always scatter")
	}

	expectedAttenuation := core.NewVec3(1.0, 1.0, 1.0)
	if result.Attenuation != expectedAttenuation {
		t.Errorf("Expected attenuation %v, got %v", expectedAttenuation, result.Attenuation)
	}

	hasRefraction := false
	for seed := int64(0); seed < 1000 && !hasRefraction; seed++ {
		result, _ := glass.Scatter(ray, hit, core.NewSeededSampler(seed))
		// Refraction bends toward the normal, so the ray gets steeper
		if result.Scattered.Direction.Normalize().Y < -0.75 {
			hasRefraction = true
		}
	}

	if !hasRefraction {
		t.Error("Expected to see refraction in at least some cases")
	}
}

func TestDielectricTotalInternalReflection(t *testing.T) {
	glass := NewDielectric(1.5)

	// Exiting glass at a grazing angle: sin(theta) * 1.5 > 1
	direction := core.NewVec3(1, 0.2, 0).Normalize()
	ray := core.NewRay(core.NewVec3(0, -1, 0), direction)
	hit := HitRecord{
		Point:     core.NewVec3(0, 0, 0),
		Normal:    core.NewVec3(0, -1, 0), // facing the ray
		FrontFace: false,
	}

	// Sampler always says "refract" so only TIR can produce a reflection
	sampler := &sequenceSampler{values: []float64{0.999}}
	result, _ := glass.Scatter(ray, hit, sampler)

	expected := core.NewVec3(1, -0.2, 0).Normalize()
	if result.Scattered.Direction.Subtract(expected).Length() > 1e-9 {
		t.Errorf("Expected total internal reflection %v, got %v", expected, result.Scattered.Direction)
	}
}

func TestDielectricIndexOneDoesNotBend(t *testing.T) {
	air := NewDielectric(1.0)

	tests := []struct {
		name      string
		direction core.Vec3
		normal    core.Vec3
		frontFace bool
	}{
		{"entering at 45 degrees", core.NewVec3(1, -1, 0), core.NewVec3(0, 1, 0), true},
		{"exiting at grazing angle", core.NewVec3(3, 0.1, 0), core.NewVec3(0, -1, 0), false},
		{"head on", core.NewVec3(0, -2, 0), core.NewVec3(0, 1, 0), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ray := core.NewRayAtTime(core.NewVec3(0, 1, 0), tt.direction, 0.5)
			hit := HitRecord{Point: core.NewVec3(0, 0, 0), Normal: tt.normal, FrontFace: tt.frontFace}

			for seed := int64(0); seed < 50; seed++ {
				result, scattered := air.Scatter(ray, hit, core.NewSeededSampler(seed))
				if !scattered {
					t.Fatal("Dielectric should always scatter")
				}
				if !result.Scattered.Direction.Equals(tt.direction) {
					t.Fatalf("Expected direction %v unchanged, got %v", tt.direction, result.Scattered.Direction)
				}
				if !result.Attenuation.Equals(core.NewVec3(1, 1, 1)) {
					t.Fatalf("Expected white attenuation, got %v", result.Attenuation)
				}
			}
		})
	}
}

func TestReflectance(t *testing.T) {
	// Normal incidence from air into glass: ((1-1.5)/(1+1.5))^2 = 0.04
	if r := Reflectance(1.0, 1.0/1.5); math.Abs(r-0.04) > 1e-12 {
		t.Errorf("Expected reflectance 0.04 at normal incidence, got %f", r)
	}

	// Grazing incidence approaches full reflection
	if r := Reflectance(0.0, 1.0/1.5); math.Abs(r-1.0) > 1e-12 {
		t.Errorf("Expected reflectance 1 at grazing incidence, got %f", r)
	}
}
