package server

import (
	"fmt"
	"math"
	"net/http"
	"strconv"

	"github.com/df07/go-pathtracer/pkg/core"
	"github.com/df07/go-pathtracer/pkg/geometry"
	"github.com/df07/go-pathtracer/pkg/material"
	"github.com/df07/go-pathtracer/pkg/scene"
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
	HitRecord material.HitRecord
	Shape     geometry.Shape // Top-level scene shape, nil if it could not be identified
}

// centerSampler always returns the middle of the unit square, so camera rays
// go through pixel centers and the middle of the lens.
type centerSampler struct{}

func (centerSampler) Get1D() float64   { return 0.5 }
func (centerSampler) Get2D() core.Vec2 { return core.Vec2{X: 0.5, Y: 0.5} }
func (centerSampler) Get3D() core.Vec3 { return core.NewVec3(0.5, 0.5, 0.5) }

// inspectPixel casts a ray through the center of pixel (x, y) of a preprocessed scene
func inspectPixel(sc *scene.Scene, pixelX, pixelY int) InspectResult {
	ray := sc.Camera.GetRay(pixelX, pixelY, centerSampler{})

	var rec material.HitRecord
	if !sc.BVH.Hit(ray, 0.001, math.Inf(1), &rec, centerSampler{}) {
		return InspectResult{Hit: false}
	}

	// The BVH only reports the hit record, so find the shape that produced it
	var shapeRec material.HitRecord
	for _, shape := range sc.Shapes {
		if shape.Hit(ray, 0.001, rec.T+0.001, &shapeRec, centerSampler{}) && shapeRec.T == rec.T {
			return InspectResult{Hit: true, HitRecord: rec, Shape: shape}
		}
	}

	return InspectResult{Hit: true, HitRecord: rec}
}

// extractMaterialInfo describes a material for the inspector
func (s *Server) extractMaterialInfo(mat *material.Material, rec *material.HitRecord) (string, map[string]interface{}) {
	properties := make(map[string]interface{})
	if mat == nil {
		return "none", properties
	}

	color := mat.DisplayColor(rec.UV, rec.Point)
	properties["color"] = hexColor(color)

	switch mat.Kind {
	case material.KindLambertian, material.KindIsotropic:
		properties["albedo"] = vecArray(color)
		if mat.Texture != nil {
			properties["texture"] = mat.Texture.Kind.String()
		}
	case material.KindMetal:
		properties["albedo"] = vecArray(color)
		properties["fuzz"] = mat.Fuzz
	case material.KindDielectric:
		properties["refractiveIndex"] = mat.RefractiveIndex
		properties["tint"] = vecArray(mat.Color)
	case material.KindSpecular:
		properties["albedo"] = vecArray(color)
		properties["specColor"] = vecArray(mat.SpecColor)
		properties["smoothness"] = mat.Smoothness
		properties["specProb"] = mat.SpecProb
	}
	if mat.IsEmissive() {
		properties["emission"] = vecArray(mat.Emitted(rec.UV, rec.Point))
		properties["strength"] = mat.Strength
	}

	return mat.Kind.String(), properties
}

// extractGeometryInfo describes a top-level shape for the inspector
func (s *Server) extractGeometryInfo(shape geometry.Shape) (string, map[string]interface{}) {
	properties := make(map[string]interface{})

	switch geom := shape.(type) {
	case *geometry.Sphere:
		properties["center"] = vecArray(geom.Center)
		properties["radius"] = geom.Radius
		return "sphere", properties

	case *geometry.Quad:
		properties["corner"] = vecArray(geom.Corner)
		properties["u"] = vecArray(geom.U)
		properties["v"] = vecArray(geom.V)
		properties["normal"] = vecArray(geom.Normal)
		return "quad", properties

	case *geometry.Triangle:
		properties["vertices"] = [3][3]float64{vecArray(geom.V0), vecArray(geom.V1), vecArray(geom.V2)}
		properties["normal"] = vecArray(geom.GetNormal())
		return "triangle", properties

	case *geometry.Box:
		properties["min"] = vecArray(geom.Min)
		properties["max"] = vecArray(geom.Max)
		return "box", properties

	case *geometry.Translate:
		innerType, innerProps := s.extractGeometryInfo(geom.Object)
		properties["offset"] = vecArray(geom.Offset)
		properties["object"] = map[string]interface{}{"type": innerType, "properties": innerProps}
		return "translate", properties

	case *geometry.RotateY:
		innerType, innerProps := s.extractGeometryInfo(geom.Object)
		properties["degrees"] = geom.Degrees
		properties["object"] = map[string]interface{}{"type": innerType, "properties": innerProps}
		return "rotate_y", properties

	case *geometry.ConstantMedium:
		innerType, innerProps := s.extractGeometryInfo(geom.Boundary)
		properties["density"] = geom.Density
		properties["boundary"] = map[string]interface{}{"type": innerType, "properties": innerProps}
		return "constant_medium", properties

	case *geometry.TriangleMesh:
		properties["triangleCount"] = geom.GetTriangleCount()
		bbox := geom.BoundingBox()
		properties["boundingBox"] = map[string]interface{}{
			"min": vecArray(bbox.Min),
			"max": vecArray(bbox.Max),
		}
		return "triangle_mesh", properties

	default:
		return "unknown", properties
	}
}

// handleInspect handles ray casting inspection requests
func (s *Server) handleInspect(w http.ResponseWriter, r *http.Request) {
	inspectReq := &RenderRequest{MaxDepth: -1}

	if err := s.parseCommonSceneParams(r, inspectReq); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid scene parameters: " + err.Error()})
		return
	}

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

	sc, err := s.createScene(inspectReq, core.NopLogger{})
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	if pixelX < 0 || pixelX >= sc.Camera.Width() || pixelY < 0 || pixelY >= sc.Camera.Height() {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Pixel coordinates out of bounds"})
		return
	}

	result := inspectPixel(sc, pixelX, pixelY)
	if !result.Hit {
		writeJSON(w, http.StatusOK, InspectResponse{Hit: false})
		return
	}

	rec := result.HitRecord
	materialType, materialProps := s.extractMaterialInfo(rec.Material, &rec)
	geometryType, geometryProps := s.extractGeometryInfo(result.Shape)

	writeJSON(w, http.StatusOK, InspectResponse{
		Hit:          true,
		MaterialType: materialType,
		GeometryType: geometryType,
		Point:        vecArray(rec.Point),
		Normal:       vecArray(rec.Normal),
		Distance:     rec.T,
		FrontFace:    rec.FrontFace,
		Properties: map[string]interface{}{
			"material": materialProps,
			"geometry": geometryProps,
		},
	})
}

func vecArray(v core.Vec3) [3]float64 {
	return [3]float64{v.X, v.Y, v.Z}
}

func hexColor(c core.Vec3) string {
	clamp := func(x float64) int {
		return int(255 * math.Max(0, math.Min(1, x)))
	}
	return fmt.Sprintf("#%02x%02x%02x", clamp(c.X), clamp(c.Y), clamp(c.Z))
}
