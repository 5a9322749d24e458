package core

import (
	"math"
	"math/rand"
)

// Sampler is the source of uniform draws in [0, 1) for every stochastic
// decision a render makes: pixel jitter, lens position, scatter direction,
// Russian roulette and medium distances.
type Sampler interface {
	Get1D() float64
	Get2D() Vec2
	Get3D() Vec3
}

// RandomSampler draws from a math/rand generator.
// It is not safe for concurrent use; each worker owns its own.
type RandomSampler struct {
	random *rand.Rand
}

// NewRandomSampler wraps an existing generator
func NewRandomSampler(random *rand.Rand) *RandomSampler {
	return &RandomSampler{random: random}
}

// NewSeededSampler returns a sampler whose stream depends only on seed
func NewSeededSampler(seed int64) *RandomSampler {
	return NewRandomSampler(rand.New(rand.NewSource(seed)))
}

func (r *RandomSampler) Get1D() float64 {
	return r.random.Float64()
}

func (r *RandomSampler) Get2D() Vec2 {
	u := r.random.Float64()
	return NewVec2(u, r.random.Float64())
}

func (r *RandomSampler) Get3D() Vec3 {
	u := r.random.Float64()
	v := r.random.Float64()
	return NewVec3(u, v, r.random.Float64())
}

// OrthonormalBasis returns two unit vectors that together with the unit
// vector n form a right-handed frame. It has no branch on a threshold, so
// the frame varies continuously except where n.Z crosses zero.
func OrthonormalBasis(n Vec3) (tangent, bitangent Vec3) {
	sign := math.Copysign(1, n.Z)
	a := -1 / (sign + n.Z)
	b := n.X * n.Y * a
	tangent = NewVec3(1+sign*n.X*n.X*a, sign*b, -sign*n.X)
	bitangent = NewVec3(b, sign+n.Y*n.Y*a, -n.Y)
	return tangent, bitangent
}

// SampleCosineHemisphere maps sample to a direction about the unit normal
// with density cos(theta)/pi: a uniform disk point lifted onto the hemisphere.
func SampleCosineHemisphere(normal Vec3, sample Vec2) Vec3 {
	disk := SamplePointInUnitDisk(sample)
	lift := math.Sqrt(math.Max(0, 1-disk.X*disk.X-disk.Y*disk.Y))

	tangent, bitangent := OrthonormalBasis(normal)
	return tangent.Multiply(disk.X).
		Add(bitangent.Multiply(disk.Y)).
		Add(normal.Multiply(lift))
}

// SampleOnUnitSphere maps sample to a uniform direction on the unit sphere
func SampleOnUnitSphere(sample Vec2) Vec3 {
	cosTheta := 1 - 2*sample.X
	sinTheta := math.Sqrt(math.Max(0, 1-cosTheta*cosTheta))
	sinPhi, cosPhi := math.Sincos(2 * math.Pi * sample.Y)
	return NewVec3(sinTheta*cosPhi, sinTheta*sinPhi, cosTheta)
}

// SamplePointInUnitDisk maps the unit square onto the unit disk in the z = 0
// plane with the concentric mapping, which keeps strata adjacent.
func SamplePointInUnitDisk(sample Vec2) Vec3 {
	sx := 2*sample.X - 1
	sy := 2*sample.Y - 1
	if sx == 0 && sy == 0 {
		return Vec3{}
	}

	radius, angle := sy, math.Pi/2-math.Pi/4*(sx/sy)
	if math.Abs(sx) > math.Abs(sy) {
		radius, angle = sx, math.Pi/4*(sy/sx)
	}
	sin, cos := math.Sincos(angle)
	return NewVec3(radius*cos, radius*sin, 0)
}
