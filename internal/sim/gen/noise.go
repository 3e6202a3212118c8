package gen

import "voxelkeep.io/internal/sim/mathx"

// Value noise built on the avalanche hashes in mathx. Lattice values are
// derived per (seed, cell) and interpolated with smoothstep, so evaluation
// is a pure function of (seed, coordinate).

func latticeValue2(seed int64, xi, zi int) float64 {
	// [0, 1) -> [-1, 1)
	return float64(mathx.Hash2(seed, xi, zi)>>11)/float64(1<<53)*2 - 1
}

func latticeValue3(seed int64, xi, yi, zi int) float64 {
	return float64(mathx.Hash3(seed, xi, yi, zi)>>11)/float64(1<<53)*2 - 1
}

func smoothstep(t float64) float64 {
	return t * t * (3 - 2*t)
}

func lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}

func floorInt(v float64) (int, float64) {
	i := int(v)
	if v < 0 && v != float64(i) {
		i--
	}
	return i, v - float64(i)
}

// noise2 evaluates smooth value noise at (x, z), range [-1, 1].
func noise2(seed int64, x, z float64) float64 {
	xi, xf := floorInt(x)
	zi, zf := floorInt(z)
	tx := smoothstep(xf)
	tz := smoothstep(zf)

	v00 := latticeValue2(seed, xi, zi)
	v10 := latticeValue2(seed, xi+1, zi)
	v01 := latticeValue2(seed, xi, zi+1)
	v11 := latticeValue2(seed, xi+1, zi+1)

	return lerp(lerp(v00, v10, tx), lerp(v01, v11, tx), tz)
}

// noise3 evaluates smooth value noise at (x, y, z), range [-1, 1].
func noise3(seed int64, x, y, z float64) float64 {
	xi, xf := floorInt(x)
	yi, yf := floorInt(y)
	zi, zf := floorInt(z)
	tx := smoothstep(xf)
	ty := smoothstep(yf)
	tz := smoothstep(zf)

	var c [2][2][2]float64
	for dz := 0; dz < 2; dz++ {
		for dy := 0; dy < 2; dy++ {
			for dx := 0; dx < 2; dx++ {
				c[dx][dy][dz] = latticeValue3(seed, xi+dx, yi+dy, zi+dz)
			}
		}
	}

	x0 := lerp(lerp(c[0][0][0], c[1][0][0], tx), lerp(c[0][1][0], c[1][1][0], tx), ty)
	x1 := lerp(lerp(c[0][0][1], c[1][0][1], tx), lerp(c[0][1][1], c[1][1][1], tx), ty)
	return lerp(x0, x1, tz)
}

// OctaveNoise sums doubling-frequency layers of value noise, normalized
// back to [-1, 1].
type OctaveNoise struct {
	Seed        int64
	Octaves     int
	Persistence float64
}

func (o OctaveNoise) Eval2(x, z float64) float64 {
	sum := 0.0
	amp := 1.0
	freq := 1.0
	norm := 0.0
	for i := 0; i < o.Octaves; i++ {
		sum += noise2(o.Seed+int64(i)*7919, x*freq, z*freq) * amp
		norm += amp
		amp *= o.Persistence
		freq *= 2
	}
	return sum / norm
}

// CombinedNoise domain-warps one octave field with another:
// a(x + b(x, z), z). The warp produces the varied, non-repeating terrain
// the plain octave sum lacks.
type CombinedNoise struct {
	A OctaveNoise
	B OctaveNoise
}

func (c CombinedNoise) Eval2(x, z float64) float64 {
	return c.A.Eval2(x+c.B.Eval2(x, z)*2, z)
}
