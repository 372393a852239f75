package scene

import (
	"math/rand"

	"github.com/df07/go-tile-raytracer/pkg/core"
	"github.com/df07/go-tile-raytracer/pkg/geometry"
	"github.com/df07/go-tile-raytracer/pkg/material"
)

// NewSimpleScene creates a row of three large spheres (glass, brown metal, bronze metal) on grey ground
func NewSimpleScene(_ *rand.Rand) *Scene {
	ground := material.NewLambertian(core.NewVec3(0.5, 0.5, 0.5))
	glass := material.NewDielectric(1.5)
	brownMetal := material.NewMetal(core.NewVec3(0.4, 0.2, 0.1), 0.0)
	bronzeMetal := material.NewMetal(core.NewVec3(0.7, 0.6, 0.5), 0.0)

	world := geometry.NewList(
		geometry.NewSphere(core.NewVec3(0, -1000, 0), 1000, ground),
		geometry.NewSphere(core.NewVec3(5, 1, 3), 1.0, glass),
		geometry.NewSphere(core.NewVec3(5, 1, 1), 1.0, brownMetal),
		geometry.NewSphere(core.NewVec3(5, 1, -1.1), 1.0, bronzeMetal),
	)

	return newScene(IDSimple, "simple", world, defaultCameraConfig(0.1))
}

// NewDiffuseScene creates a grey ground sphere with a single lambertian sphere resting on it
func NewDiffuseScene(_ *rand.Rand) *Scene {
	world := geometry.NewList(
		geometry.NewSphere(core.NewVec3(0, -1000, 0), 1000, material.NewLambertian(core.NewVec3(0.5, 0.5, 0.5))),
		geometry.NewSphere(core.NewVec3(0, 1, 0), 1.0, material.NewLambertian(core.NewVec3(0.7, 0.3, 0.3))),
	)

	return newScene(IDDiffuse, "diffuse", world, defaultCameraConfig(0.0))
}
