package scene

import (
	"github.com/df07/go-tile-raytracer/pkg/core"
	"github.com/df07/go-tile-raytracer/pkg/geometry"
)

// AspectRatio is the fixed width/height ratio of every scene's camera
const AspectRatio = 3.0 / 2.0

// Scene contains all the elements needed for rendering.
// A scene is immutable once built and is shared read-only by all render workers.
type Scene struct {
	ID           int
	Name         string
	World        *geometry.List // Objects in the scene
	Camera       *geometry.Camera
	CameraConfig geometry.CameraConfig
}

// newScene wraps a world with a camera built from config
func newScene(id int, name string, world *geometry.List, config geometry.CameraConfig) *Scene {
	return &Scene{
		ID:           id,
		Name:         name,
		World:        world,
		Camera:       geometry.NewCamera(config),
		CameraConfig: config,
	}
}

// GetPrimitiveCount returns the total number of primitive objects in the scene
func (s *Scene) GetPrimitiveCount() int {
	return s.World.Len()
}

// defaultCameraConfig looks from (13,2,3) at the origin, focused 10 units away, shutter open over [0,1]
func defaultCameraConfig(aperture float64) geometry.CameraConfig {
	return geometry.CameraConfig{
		LookFrom:    core.NewVec3(13, 2, 3),
		LookAt:      core.NewVec3(0, 0, 0),
		Up:          core.NewVec3(0, 1, 0),
		VFov:        20.0,
		AspectRatio: AspectRatio,
		Aperture:    aperture,
		FocusDist:   10.0,
		Time0:       0.0,
		Time1:       1.0,
	}
}
