package scene

import (
	"math/rand"

	"github.com/df07/go-tile-raytracer/pkg/core"
	"github.com/df07/go-tile-raytracer/pkg/geometry"
	"github.com/df07/go-tile-raytracer/pkg/material"
)

// NewRandomScene creates the checkered field of small random spheres around three large ones
func NewRandomScene(random *rand.Rand) *Scene {
	world := geometry.NewList()

	checker := material.NewCheckerTexture(core.NewVec3(0.2, 0.3, 0.1), core.NewVec3(0.9, 0.9, 0.9))
	world.Add(geometry.NewSphere(core.NewVec3(0, -1000, 0), 1000, material.NewTexturedLambertian(checker)))

	randomColor := func(lo, hi float64) core.Vec3 {
		return core.NewVec3(
			lo+(hi-lo)*random.Float64(),
			lo+(hi-lo)*random.Float64(),
			lo+(hi-lo)*random.Float64(),
		)
	}

	for a := -11; a < 11; a++ {
		for b := -11; b < 11; b++ {
			chooseMat := random.Float64()
			center := core.NewVec3(float64(a)+0.9*random.Float64(), 0.2, float64(b)+0.9*random.Float64())

			// Keep the area around the big metal sphere clear
			if center.Subtract(core.NewVec3(4, 0.2, 0)).Length() <= 0.9 {
				continue
			}

			switch {
			case chooseMat < 0.8:
				// diffuse, bouncing upward during the shutter interval
				albedo := randomColor(0, 1).MultiplyVec(randomColor(0, 1))
				center1 := center.Add(core.NewVec3(0, 0.5*random.Float64(), 0))
				world.Add(geometry.NewMovingSphere(center, center1, 0.0, 1.0, 0.2, material.NewLambertian(albedo)))
			case chooseMat < 0.95:
				// metal
				albedo := randomColor(0.5, 1)
				fuzz := 0.5 * random.Float64()
				world.Add(geometry.NewSphere(center, 0.2, material.NewMetal(albedo, fuzz)))
			default:
				// glass
				world.Add(geometry.NewSphere(center, 0.2, material.NewDielectric(1.5)))
			}
		}
	}

	world.Add(geometry.NewSphere(core.NewVec3(0, 1, 0), 1.0, material.NewDielectric(1.5)))
	world.Add(geometry.NewSphere(core.NewVec3(-4, 1, 0), 1.0, material.NewLambertian(core.NewVec3(0.4, 0.2, 0.1))))
	world.Add(geometry.NewSphere(core.NewVec3(4, 1, 0), 1.0, material.NewMetal(core.NewVec3(0.7, 0.6, 0.5), 0.0)))

	return newScene(IDRandom, "random", world, defaultCameraConfig(0.1))
}
