package scene

import (
	"math/rand"
)

// Built-in scene identifiers
const (
	IDRandom  = 1
	IDSimple  = 2
	IDPerlin  = 3
	IDDiffuse = 4
)

// Builder constructs a scene; all randomness is drawn from random
type Builder func(random *rand.Rand) *Scene

// SceneInfo represents a built-in scene with its metadata
type SceneInfo struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

type registeredScene struct {
	info  SceneInfo
	build Builder
}

var builtInScenes = []registeredScene{
	{SceneInfo{IDRandom, "random", "Checkered ground with hundreds of small random spheres, some in motion"}, NewRandomScene},
	{SceneInfo{IDSimple, "simple", "Glass and two metal spheres on grey ground"}, NewSimpleScene},
	{SceneInfo{IDPerlin, "perlin", "Two marble spheres textured with Perlin turbulence"}, NewTwoPerlinSpheres},
	{SceneInfo{IDDiffuse, "diffuse", "Single lambertian sphere on grey ground"}, NewDiffuseScene},
}

// ListScenes returns the built-in scenes in id order
func ListScenes() []SceneInfo {
	infos := make([]SceneInfo, 0, len(builtInScenes))
	for _, s := range builtInScenes {
		infos = append(infos, s.info)
	}
	return infos
}

// New builds the scene registered under id. Unknown ids fall back to the
// Perlin scene, in which case known is false.
func New(id int, random *rand.Rand) (s *Scene, known bool) {
	for _, registered := range builtInScenes {
		if registered.info.ID == id {
			return registered.build(random), true
		}
	}
	return NewTwoPerlinSpheres(random), false
}
