package scene

import (
	"math/rand"

	"github.com/df07/go-tile-raytracer/pkg/core"
	"github.com/df07/go-tile-raytracer/pkg/geometry"
	"github.com/df07/go-tile-raytracer/pkg/material"
)

// NewTwoPerlinSpheres creates a marble ground and a marble sphere sharing one noise texture
func NewTwoPerlinSpheres(random *rand.Rand) *Scene {
	marble := material.NewTexturedLambertian(material.NewNoiseTexture(4, random))

	world := geometry.NewList(
		geometry.NewSphere(core.NewVec3(0, -1000, 0), 1000, marble),
		geometry.NewSphere(core.NewVec3(0, 2, 0), 2, marble),
	)

	return newScene(IDPerlin, "perlin", world, defaultCameraConfig(0.0))
}
