package renderer

import (
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/df07/go-tile-raytracer/pkg/core"
)

func TestToRGBA(t *testing.T) {
	tests := []struct {
		name     string
		sum      core.Vec3
		samples  int
		expected color.RGBA
	}{
		{"Black", core.NewVec3(0, 0, 0), 1, color.RGBA{0, 0, 0, 255}},
		{"WhiteClamped", core.NewVec3(1, 1, 1), 1, color.RGBA{255, 255, 255, 255}},
		{"OverExposed", core.NewVec3(8, 8, 8), 2, color.RGBA{255, 255, 255, 255}},
		{"GammaQuarter", core.NewVec3(0.25, 0.25, 0.25), 1, color.RGBA{128, 128, 128, 255}},
		{"Averaged", core.NewVec3(1, 0, 0), 4, color.RGBA{128, 0, 0, 255}},
		{"NegativeClamped", core.NewVec3(-1, 0, 0), 1, color.RGBA{0, 0, 0, 255}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ToRGBA(tt.sum, tt.samples))
		})
	}
}
