package scene

import (
	"fmt"
	"math/rand"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/df07/go-pathtracer/pkg/core"
	"github.com/df07/go-pathtracer/pkg/geometry"
	"github.com/df07/go-pathtracer/pkg/loaders"
	"github.com/df07/go-pathtracer/pkg/material"
)

// perlinSeed fixes the noise lattice so scene files render identically between runs
const perlinSeed = 42

// Description is a scene as written in a TOML scene file
type Description struct {
	// Sampling
	SamplesPerPixel int `toml:"samples_per_pixel"`
	SamplesStepSize int `toml:"samples_step_size"`
	MaxBounces      int `toml:"max_bounces"`

	// Camera
	FOV           float64    `toml:"fov"`
	ImageWidth    int        `toml:"image_width"`
	AspectRatio   float64    `toml:"aspect_ratio"`
	From          [3]float64 `toml:"from"`
	At            [3]float64 `toml:"at"`
	VUp           [3]float64 `toml:"v_up"`
	Aperture      float64    `toml:"aperture"`
	FocusDistance float64    `toml:"focus_distance"`

	// Primitives
	AsPoints    bool                    `toml:"as_points"`
	PointRadius float64                 `toml:"point_radius"`
	Materials   map[string]MaterialSpec `toml:"materials"`
	Meshes      []MeshSpec              `toml:"meshes"`
	Objects     []ObjectSpec            `toml:"objects"`

	// Background
	Background         *ColorSpec    `toml:"bg"`
	BackgroundGradient *GradientSpec `toml:"bg_gradient"`
}

// ColorSpec is a color written either as [r, g, b] or as a single grey level
type ColorSpec core.Vec3

// UnmarshalTOML implements toml.Unmarshaler
func (c *ColorSpec) UnmarshalTOML(data interface{}) error {
	switch v := data.(type) {
	case []interface{}:
		if len(v) != 3 {
			return fmt.Errorf("color needs 3 components, got %d", len(v))
		}
		var rgb [3]float64
		for i, component := range v {
			f, ok := tomlNumber(component)
			if !ok {
				return fmt.Errorf("color component %v is not a number", component)
			}
			rgb[i] = f
		}
		*c = ColorSpec(core.NewVec3(rgb[0], rgb[1], rgb[2]))
		return nil
	default:
		f, ok := tomlNumber(data)
		if !ok {
			return fmt.Errorf("color must be a number or [r, g, b], got %T", data)
		}
		*c = ColorSpec(core.NewVec3(f, f, f))
		return nil
	}
}

// Vec3 returns the color as a vector
func (c *ColorSpec) Vec3() core.Vec3 {
	if c == nil {
		return core.Vec3{}
	}
	return core.Vec3(*c)
}

func tomlNumber(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case int64:
		return float64(n), true
	case float64:
		return n, true
	default:
		return 0, false
	}
}

// GradientSpec is a vertical sky gradient background
type GradientSpec struct {
	Bottom ColorSpec `toml:"bottom"`
	Top    ColorSpec `toml:"top"`
}

// MaterialSpec describes a named material. Which fields apply depends on Kind.
type MaterialSpec struct {
	Kind       string     `toml:"kind"`
	Color      *ColorSpec `toml:"color"`
	SpecColor  *ColorSpec `toml:"spec_color"`
	Smoothness float64    `toml:"smoothness"`
	SpecProb   float64    `toml:"spec_prob"`
	Scale      float64    `toml:"scale"`
	Odd        *ColorSpec `toml:"odd"`
	Even       *ColorSpec `toml:"even"`
	Fuzz       float64    `toml:"fuzz"`
	RefIndex   float64    `toml:"ref_index"`
	Path       string     `toml:"path"`
	Strength   *float64   `toml:"strength"`
}

// Placement holds the optional instance transform and participating medium of a mesh or object.
// Rotation about +Y is applied before translation.
type Placement struct {
	Rotate    *float64    `toml:"rotate"`
	Translate *[3]float64 `toml:"translate"`
	Density   *float64    `toml:"density"`
}

// MeshSpec places a mesh file in the scene
type MeshSpec struct {
	Path     string  `toml:"path"`
	Material string  `toml:"material"`
	Scale    float64 `toml:"scale"`
	Placement
}

// ObjectSpec is an analytic primitive. Which fields apply depends on Kind.
type ObjectSpec struct {
	Kind     string     `toml:"kind"`
	Material string     `toml:"material"`
	Center   [3]float64 `toml:"center"`
	R        float64    `toml:"r"`
	Vert1    [3]float64 `toml:"vert1"`
	Vert2    [3]float64 `toml:"vert2"`
	Q        [3]float64 `toml:"q"`
	U        [3]float64 `toml:"u"`
	V        [3]float64 `toml:"v"`
	A        [3]float64 `toml:"a"`
	B        [3]float64 `toml:"b"`
	C        [3]float64 `toml:"c"`
	Placement
}

// DefaultDescription returns the values used for keys a scene file omits
func DefaultDescription() Description {
	sampling := DefaultSamplingConfig()
	return Description{
		SamplesPerPixel: sampling.SamplesPerPixel,
		MaxBounces:      sampling.MaxDepth,
		FOV:             40,
		ImageWidth:      400,
		AspectRatio:     1.0,
		From:            [3]float64{1.2, 0.2, -0.85},
		At:              [3]float64{0, 0, 0},
		VUp:             [3]float64{0, 1, 0},
		PointRadius:     0.001,
	}
}

// LoadDescription reads a TOML scene file. Unknown keys are rejected.
func LoadDescription(filename string) (*Description, error) {
	desc := DefaultDescription()
	meta, err := toml.DecodeFile(filename, &desc)
	if err != nil {
		return nil, fmt.Errorf("failed to parse scene file %s: %w", filename, err)
	}
	if err := checkUndecoded(meta); err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}
	return &desc, nil
}

// ParseDescription decodes a TOML scene from a string
func ParseDescription(data string) (*Description, error) {
	desc := DefaultDescription()
	meta, err := toml.Decode(data, &desc)
	if err != nil {
		return nil, fmt.Errorf("failed to parse scene: %w", err)
	}
	if err := checkUndecoded(meta); err != nil {
		return nil, err
	}
	return &desc, nil
}

func checkUndecoded(meta toml.MetaData) error {
	undecoded := meta.Undecoded()
	if len(undecoded) == 0 {
		return nil
	}
	keys := make([]string, len(undecoded))
	for i, key := range undecoded {
		keys[i] = key.String()
	}
	return fmt.Errorf("unknown keys %s: %w", strings.Join(keys, ", "), core.ErrInvalidScene)
}

// LoadScene reads a scene file and builds it. The returned scene still needs Preprocess.
func LoadScene(filename string, logger core.Logger) (*Scene, error) {
	desc, err := LoadDescription(filename)
	if err != nil {
		return nil, err
	}
	return desc.Build(logger)
}

// Build resolves materials, loads meshes and assembles the scene
func (d *Description) Build(logger core.Logger) (*Scene, error) {
	if logger == nil {
		logger = core.NopLogger{}
	}

	background, err := d.background()
	if err != nil {
		return nil, err
	}

	cameraConfig := geometry.CameraConfig{
		Center:        vec3(d.From),
		LookAt:        vec3(d.At),
		Up:            vec3(d.VUp),
		Width:         d.ImageWidth,
		AspectRatio:   d.AspectRatio,
		VFov:          d.FOV,
		Aperture:      d.Aperture,
		FocusDistance: d.FocusDistance,
	}

	sampling := SamplingConfig{
		SamplesPerPixel: d.SamplesPerPixel,
		SamplesStepSize: d.SamplesStepSize,
		MaxDepth:        d.MaxBounces,
		AsPoints:        d.AsPoints,
		PointRadius:     d.PointRadius,
	}

	s := New(cameraConfig, background, sampling)

	// Sorted so that the shared noise lattice is consumed in a stable order
	names := make([]string, 0, len(d.Materials))
	for name := range d.Materials {
		names = append(names, name)
	}
	sort.Strings(names)

	perlin := material.NewPerlin(rand.New(rand.NewSource(perlinSeed)))
	for _, name := range names {
		mat, err := d.Materials[name].build(perlin)
		if err != nil {
			return nil, fmt.Errorf("material %q: %w", name, err)
		}
		s.AddMaterial(name, mat)
	}

	for i, mesh := range d.Meshes {
		shape, err := d.buildMesh(s, mesh, logger)
		if err != nil {
			return nil, fmt.Errorf("mesh %d (%s): %w", i, mesh.Path, err)
		}
		s.Add(shape)
	}

	for i, obj := range d.Objects {
		shape, err := d.buildObject(s, obj)
		if err != nil {
			return nil, fmt.Errorf("object %d (%s): %w", i, obj.Kind, err)
		}
		s.Add(shape)
	}

	return s, nil
}

func (d *Description) background() (Background, error) {
	switch {
	case d.Background != nil && d.BackgroundGradient != nil:
		return Background{}, fmt.Errorf("bg and bg_gradient are mutually exclusive: %w", core.ErrInvalidScene)
	case d.BackgroundGradient != nil:
		return NewGradientBackground(d.BackgroundGradient.Bottom.Vec3(), d.BackgroundGradient.Top.Vec3()), nil
	case d.Background != nil:
		return NewConstantBackground(d.Background.Vec3()), nil
	default:
		return NewConstantBackground(core.NewVec3(0.7, 0.8, 1.0)), nil
	}
}

// build creates the material described by m
func (m MaterialSpec) build(perlin *material.Perlin) (*material.Material, error) {
	switch m.Kind {
	case "solid":
		return material.NewLambertian(m.Color.Vec3()), nil
	case "specular":
		return material.NewSpecular(m.Color.Vec3(), m.SpecColor.Vec3(), m.Smoothness, m.SpecProb), nil
	case "checker":
		checker, err := m.checker()
		if err != nil {
			return nil, err
		}
		return material.NewTexturedLambertian(checker), nil
	case "metal":
		return material.NewMetal(m.Color.Vec3(), m.Fuzz), nil
	case "dielectric":
		if m.RefIndex <= 0 {
			return nil, fmt.Errorf("ref_index must be positive, got %g: %w", m.RefIndex, core.ErrInvalidScene)
		}
		if m.Color != nil {
			return material.NewTintedDielectric(m.RefIndex, m.Color.Vec3()), nil
		}
		return material.NewDielectric(m.RefIndex), nil
	case "isotropic":
		return material.NewIsotropic(m.Color.Vec3()), nil
	case "light":
		strength, err := m.strength()
		if err != nil {
			return nil, err
		}
		return material.NewLightWithStrength(m.Color.Vec3(), strength), nil
	case "emissive":
		strength, err := m.strength()
		if err != nil {
			return nil, err
		}
		emission := material.NewSolidTexture(m.Color.Vec3())
		if m.Odd != nil || m.Even != nil {
			if emission, err = m.checker(); err != nil {
				return nil, err
			}
		}
		return material.NewEmissive(emission, strength), nil
	case "noise":
		return material.NewTexturedLambertian(material.NewNoiseTexture(m.Scale, perlin)), nil
	case "image":
		img, err := loaders.LoadImage(m.Path)
		if err != nil {
			return nil, fmt.Errorf("bad texture reference: %w: %w", err, core.ErrInvalidScene)
		}
		return material.NewTexturedLambertian(material.NewImageTexture(img)), nil
	default:
		return nil, fmt.Errorf("unknown material kind %q: %w", m.Kind, core.ErrInvalidScene)
	}
}

// checker builds the odd/even lattice of a checker or patterned emissive material
func (m MaterialSpec) checker() (*material.Texture, error) {
	if m.Scale <= 0 {
		return nil, fmt.Errorf("%s scale must be positive, got %g: %w", m.Kind, m.Scale, core.ErrInvalidScene)
	}
	return material.NewCheckerColors(m.Scale, m.Even.Vec3(), m.Odd.Vec3()), nil
}

// strength returns the emission multiplier, 1 when unset
func (m MaterialSpec) strength() (float64, error) {
	if m.Strength == nil {
		return 1, nil
	}
	if *m.Strength <= 0 {
		return 0, fmt.Errorf("strength must be positive, got %g: %w", *m.Strength, core.ErrInvalidScene)
	}
	return *m.Strength, nil
}

// mediumColor is the albedo given to a constant medium bounded by a shape of this material
func (m MaterialSpec) mediumColor() (core.Vec3, error) {
	switch m.Kind {
	case "solid", "metal", "isotropic", "light", "specular":
		return m.Color.Vec3(), nil
	default:
		return core.Vec3{}, fmt.Errorf("material kind %q has no color for a medium: %w", m.Kind, core.ErrInvalidScene)
	}
}

func (d *Description) buildMesh(s *Scene, entry MeshSpec, logger core.Logger) (geometry.Shape, error) {
	mat, err := s.Material(entry.Material)
	if err != nil {
		return nil, err
	}

	data, err := loaders.LoadMesh(entry.Path)
	if err != nil {
		return nil, err
	}

	options := &geometry.TriangleMeshOptions{
		Scale:       entry.Scale,
		AsPoints:    d.AsPoints,
		PointRadius: d.PointRadius,
	}
	if entry.Rotate != nil {
		options.RotateY = *entry.Rotate
	}
	if entry.Translate != nil {
		options.Translate = vec3(*entry.Translate)
	}

	mesh, err := geometry.NewTriangleMesh(data.Vertices, data.Faces, mat, options)
	if err != nil {
		return nil, err
	}

	stats := mesh.Stats()
	logger.Printf("Loaded mesh %s: %d vertices, %d triangles, %d shapes (%d degenerate), BVH depth %d\n",
		entry.Path, len(data.Vertices), data.TriangleCount(), len(mesh.GetShapes()), mesh.DegenerateCount(), stats.MaxDepth)

	if entry.Density == nil {
		return mesh, nil
	}
	return d.withMedium(mesh, entry.Material, *entry.Density)
}

func (d *Description) buildObject(s *Scene, entry ObjectSpec) (geometry.Shape, error) {
	mat, err := s.Material(entry.Material)
	if err != nil {
		return nil, err
	}

	var shape geometry.Shape
	switch entry.Kind {
	case "sphere":
		shape = geometry.NewSphere(vec3(entry.Center), entry.R, mat)
	case "box":
		shape = geometry.NewBox(vec3(entry.Vert1), vec3(entry.Vert2), mat)
	case "quad":
		shape = geometry.NewQuad(vec3(entry.Q), vec3(entry.U), vec3(entry.V), mat)
	case "triangle":
		shape = geometry.NewTriangle(vec3(entry.A), vec3(entry.B), vec3(entry.C), mat)
	default:
		return nil, fmt.Errorf("unknown object kind %q: %w", entry.Kind, core.ErrInvalidScene)
	}

	if entry.Rotate != nil {
		shape = geometry.NewRotateY(shape, *entry.Rotate)
	}
	if entry.Translate != nil {
		shape = geometry.NewTranslate(shape, vec3(*entry.Translate))
	}

	if entry.Density == nil {
		return shape, nil
	}
	return d.withMedium(shape, entry.Material, *entry.Density)
}

// withMedium fills boundary with a constant medium colored like its material
func (d *Description) withMedium(boundary geometry.Shape, materialName string, density float64) (geometry.Shape, error) {
	if density <= 0 {
		return nil, fmt.Errorf("density must be positive, got %g: %w", density, core.ErrInvalidScene)
	}
	color, err := d.Materials[materialName].mediumColor()
	if err != nil {
		return nil, err
	}
	return geometry.NewConstantMedium(boundary, density, color), nil
}

func vec3(v [3]float64) core.Vec3 {
	return core.NewVec3(v[0], v[1], v[2])
}
