package server

import (
	"fmt"
	"math"
	"net/http"
	"strconv"

	"github.com/df07/go-tile-raytracer/pkg/core"
	"github.com/df07/go-tile-raytracer/pkg/geometry"
	"github.com/df07/go-tile-raytracer/pkg/integrator"
	"github.com/df07/go-tile-raytracer/pkg/material"
	"github.com/df07/go-tile-raytracer/pkg/scene"
)

// InspectResponse represents the JSON response for object inspection
type InspectResponse struct {
	Hit          bool                   `json:"hit"`
	MaterialType string                 `json:"materialType"`
	GeometryType string                 `json:"geometryType"`
	Point        [3]float64             `json:"point"`
	Normal       [3]float64             `json:"normal"`
	Distance     float64                `json:"distance"`
	FrontFace    bool                   `json:"frontFace"`
	Properties   map[string]interface{} `json:"properties"`
}

// InspectResult contains information about the object hit by an inspection ray
type InspectResult struct {
	Hit       bool
	HitRecord *material.HitRecord
	Shape     geometry.Shape // Nil when no single shape reproduces the hit
}

// centerSampler always picks the middle of the sampled range
type centerSampler struct{}

func (centerSampler) Get1D() float64 { return 0.5 }

func hexColor(c core.Vec3) string {
	c = c.Clamp(0, 1)
	return fmt.Sprintf("#%02x%02x%02x", int(c.X*255), int(c.Y*255), int(c.Z*255))
}

func vec(v core.Vec3) [3]float64 {
	return [3]float64{v.X, v.Y, v.Z}
}

// extractColorSourceInfo describes a lambertian albedo
func extractColorSourceInfo(source material.ColorSource) (string, map[string]interface{}) {
	properties := make(map[string]interface{})

	switch src := source.(type) {
	case *material.SolidColor:
		properties["albedo"] = vec(src.Color)
		properties["color"] = hexColor(src.Color)
		return "solid", properties

	case *material.CheckerTexture:
		_, even := extractColorSourceInfo(src.Even)
		_, odd := extractColorSourceInfo(src.Odd)
		properties["even"] = even
		properties["odd"] = odd
		properties["scale"] = src.Scale
		return "checker", properties

	case *material.NoiseTexture:
		properties["scale"] = src.Scale
		return "noise", properties

	default:
		return "unknown", properties
	}
}

// extractMaterialInfo extracts detailed material information with type assertions
func extractMaterialInfo(mat material.Material) (string, map[string]interface{}) {
	properties := make(map[string]interface{})

	switch m := mat.(type) {
	case *material.Lambertian:
		textureType, textureProps := extractColorSourceInfo(m.Albedo)
		properties["texture"] = textureType
		for k, v := range textureProps {
			properties[k] = v
		}
		return "lambertian", properties

	case *material.Metal:
		properties["albedo"] = vec(m.Albedo)
		properties["color"] = hexColor(m.Albedo)
		properties["fuzz"] = m.Fuzz
		return "metal", properties

	case *material.Dielectric:
		properties["refractiveIndex"] = m.RefractiveIndex
		properties["color"] = "#ffffff" // Clear glass
		return "dielectric", properties

	default:
		return "unknown", properties
	}
}

// extractGeometryInfo extracts detailed geometry information
func extractGeometryInfo(shape geometry.Shape) (string, map[string]interface{}) {
	properties := make(map[string]interface{})

	switch geom := shape.(type) {
	case *geometry.Sphere:
		properties["center"] = vec(geom.Center)
		properties["radius"] = geom.Radius
		return "sphere", properties

	case *geometry.MovingSphere:
		properties["center0"] = vec(geom.Center0)
		properties["center1"] = vec(geom.Center1)
		properties["time0"] = geom.Time0
		properties["time1"] = geom.Time1
		properties["radius"] = geom.Radius
		return "moving_sphere", properties

	default:
		return "unknown", properties
	}
}

// inspectPixel casts a ray through the centre of pixel (x, y), y counted from the top of the image
func inspectPixel(sc *scene.Scene, width, height, x, y int) InspectResult {
	u := (float64(x) + 0.5) / float64(max(1, width-1))
	v := (float64(height-1-y) + 0.5) / float64(max(1, height-1))
	ray := sc.Camera.GetRay(u, v, centerSampler{})

	hit, isHit := sc.World.Hit(ray, integrator.HitEpsilon, math.Inf(1))
	if !isHit {
		return InspectResult{Hit: false}
	}

	// The list only reports the hit record, so find the shape that produced it
	for _, shape := range sc.World.Shapes {
		if shapeHit, ok := shape.Hit(ray, integrator.HitEpsilon, hit.T+integrator.HitEpsilon); ok && shapeHit.T == hit.T {
			return InspectResult{Hit: true, HitRecord: hit, Shape: shape}
		}
	}

	return InspectResult{Hit: true, HitRecord: hit}
}

// handleInspect reports what the pixel at ?x=&y= sees
func (s *Server) handleInspect(w http.ResponseWriter, r *http.Request) {
	pixelX, err := strconv.Atoi(r.URL.Query().Get("x"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid x coordinate"})
		return
	}

	pixelY, err := strconv.Atoi(r.URL.Query().Get("y"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid y coordinate"})
		return
	}

	if pixelX < 0 || pixelX >= s.width || pixelY < 0 || pixelY >= s.height {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Pixel coordinates out of bounds"})
		return
	}

	result := inspectPixel(s.scene, s.width, s.height, pixelX, pixelY)
	if !result.Hit {
		writeJSON(w, http.StatusOK, InspectResponse{Hit: false})
		return
	}

	materialType, materialProps := extractMaterialInfo(result.HitRecord.Material)
	geometryType, geometryProps := extractGeometryInfo(result.Shape)

	writeJSON(w, http.StatusOK, InspectResponse{
		Hit:          true,
		MaterialType: materialType,
		GeometryType: geometryType,
		Point:        vec(result.HitRecord.Point),
		Normal:       vec(result.HitRecord.Normal),
		Distance:     result.HitRecord.T,
		FrontFace:    result.HitRecord.FrontFace,
		Properties: map[string]interface{}{
			"material": materialProps,
			"geometry": geometryProps,
		},
	})
}
