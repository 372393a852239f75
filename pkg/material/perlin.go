package material

import (
	"math"
	"math/rand"

	"github.com/df07/go-tile-raytracer/pkg/core"
)

const perlinPointCount = 256

// Perlin is a gradient noise generator over random unit vectors on a 256-entry lattice
type Perlin struct {
	randVec [perlinPointCount]core.Vec3
	permX   [perlinPointCount]int
	permY   [perlinPointCount]int
	permZ   [perlinPointCount]int
}

// NewPerlin builds the lattice from random; the result is read-only afterwards
func NewPerlin(random *rand.Rand) *Perlin {
	p := &Perlin{}
	for i := range p.randVec {
		p.randVec[i] = core.NewVec3(
			-1+2*random.Float64(),
			-1+2*random.Float64(),
			-1+2*random.Float64(),
		).Normalize()
	}
	perlinPermute(&p.permX, random)
	perlinPermute(&p.permY, random)
	perlinPermute(&p.permZ, random)
	return p
}

func perlinPermute(perm *[perlinPointCount]int, random *rand.Rand) {
	for i := range perm {
		perm[i] = i
	}
	for i := perlinPointCount - 1; i > 0; i-- {
		target := random.Intn(i + 1)
		perm[i], perm[target] = perm[target], perm[i]
	}
}

// Noise returns smoothed gradient noise in roughly [-1, 1]
func (p *Perlin) Noise(point core.Vec3) float64 {
	u := point.X - math.Floor(point.X)
	v := point.Y - math.Floor(point.Y)
	w := point.Z - math.Floor(point.Z)

	i := int(math.Floor(point.X))
	j := int(math.Floor(point.Y))
	k := int(math.Floor(point.Z))

	var c [2][2][2]core.Vec3
	for di := 0; di < 2; di++ {
		for dj := 0; dj < 2; dj++ {
			for dk := 0; dk < 2; dk++ {
				c[di][dj][dk] = p.randVec[p.permX[(i+di)&255]^p.permY[(j+dj)&255]^p.permZ[(k+dk)&255]]
			}
		}
	}

	return perlinInterp(c, u, v, w)
}

// Turbulence sums depth octaves of noise with halving weight
func (p *Perlin) Turbulence(point core.Vec3, depth int) float64 {
	accum := 0.0
	temp := point
	weight := 1.0

	for i := 0; i < depth; i++ {
		accum += weight * p.Noise(temp)
		weight *= 0.5
		temp = temp.Multiply(2)
	}

	return math.Abs(accum)
}

// perlinInterp blends the corner gradients with a Hermite-smoothed trilinear weight
func perlinInterp(c [2][2][2]core.Vec3, u, v, w float64) float64 {
	uu := u * u * (3 - 2*u)
	vv := v * v * (3 - 2*v)
	ww := w * w * (3 - 2*w)
	accum := 0.0

	for i := 0; i < 2; i++ {
		for j := 0; j < 2; j++ {
			for k := 0; k < 2; k++ {
				fi, fj, fk := float64(i), float64(j), float64(k)
				weight := core.NewVec3(u-fi, v-fj, w-fk)
				accum += (fi*uu + (1-fi)*(1-uu)) *
					(fj*vv + (1-fj)*(1-vv)) *
					(fk*ww + (1-fk)*(1-ww)) *
					c[i][j][k].Dot(weight)
			}
		}
	}

	return accum
}

// NoiseTexture is a marble-like procedural texture driven by Perlin turbulence
type NoiseTexture struct {
	Noise *Perlin
	Scale float64
}

// NewNoiseTexture creates a marble texture; random seeds the noise lattice
func NewNoiseTexture(scale float64, random *rand.Rand) *NoiseTexture {
	return &NoiseTexture{Noise: NewPerlin(random), Scale: scale}
}

// Evaluate returns a grey level phase-shifted along z by turbulence
func (n *NoiseTexture) Evaluate(point core.Vec3) core.Vec3 {
	level := 0.5 * (1 + math.Sin(n.Scale*point.Z+10*n.Noise.Turbulence(point, 7)))
	return core.NewVec3(level, level, level)
}
