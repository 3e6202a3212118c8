package gen

import (
	"voxelkeep.io/internal/sim/mathx"
	"voxelkeep.io/internal/sim/world"
)

// Config holds the tunable generation parameters.
type Config struct {
	SeaLevel          int
	HeightAmplitude   float64
	TerrainOctaves    int
	SelectorOctaves   int
	DirtDepth         int
	MountainThreshold int
	BeachDepth        int

	CaveThreshold     float64
	CaveFreq          float64
	CaveMinY          int
	CaveSurfaceMargin int

	TreeDensity  float64
	TreeMinTrunk int
	TreeMaxTrunk int
	// Trees keep this many blocks from the chunk edge so canopies never
	// cross into a neighbouring chunk.
	TreeEdgeMargin int

	FlowerPermille int
}

func DefaultConfig() Config {
	return Config{
		SeaLevel:          64,
		HeightAmplitude:   260,
		TerrainOctaves:    8,
		SelectorOctaves:   6,
		DirtDepth:         4,
		MountainThreshold: 85,
		BeachDepth:        2,

		CaveThreshold:     0.55,
		CaveFreq:          0.04,
		CaveMinY:          5,
		CaveSurfaceMargin: 4,

		TreeDensity:    0.02,
		TreeMinTrunk:   4,
		TreeMaxTrunk:   6,
		TreeEdgeMargin: 3,

		FlowerPermille: 8,
	}
}

type oreSpec struct {
	block    byte
	minY     int
	maxY     int
	veinSize int
	attempts int
}

var ores = []oreSpec{
	{world.BlockCoalOre, 5, 80, 10, 20},
	{world.BlockIronOre, 5, 64, 6, 12},
	{world.BlockGoldOre, 5, 32, 5, 4},
	{world.BlockDiamondOre, 5, 16, 3, 2},
}

// Context carries the seed, the derived noise fields, and the config.
// Immutable after construction; safe to share across goroutines.
type Context struct {
	seed int64
	cfg  Config

	terrainLow  CombinedNoise
	terrainHigh CombinedNoise
	selector    OctaveNoise
	erosion     OctaveNoise
	forest      OctaveNoise
}

func NewContext(seed int64, cfg Config) *Context {
	oct := func(off int64, n int) OctaveNoise {
		return OctaveNoise{Seed: seed + off, Octaves: n, Persistence: 0.5}
	}
	return &Context{
		seed: seed,
		cfg:  cfg,
		terrainLow: CombinedNoise{
			A: oct(0, cfg.TerrainOctaves),
			B: oct(100, cfg.TerrainOctaves),
		},
		terrainHigh: CombinedNoise{
			A: oct(200, cfg.TerrainOctaves),
			B: oct(300, cfg.TerrainOctaves),
		},
		selector: oct(400, cfg.SelectorOctaves),
		erosion:  oct(6000, 8),
		forest:   oct(4500, 4),
	}
}

func (ctx *Context) Seed() int64    { return ctx.seed }
func (ctx *Context) Config() Config { return ctx.cfg }

// TerrainHeight computes the surface height at a world column. Two
// domain-warped height layers, a selector field choosing between them,
// negatives dampened so ocean floors stay reachable.
func (ctx *Context) TerrainHeight(wx, wz int) int {
	sx := float64(wx) * 0.013
	sz := float64(wz) * 0.013

	raw1 := ctx.terrainLow.Eval2(sx, sz) * ctx.cfg.HeightAmplitude
	raw2 := ctx.terrainHigh.Eval2(sx, sz) * ctx.cfg.HeightAmplitude

	heightLow := raw1/6 - 4
	heightHigh := raw2/5 + 6

	sel := ctx.selector.Eval2(float64(wx)*0.005, float64(wz)*0.005)

	h := heightLow
	if sel <= 0 && heightHigh > h {
		h = heightHigh
	}
	h /= 2
	if h < 0 {
		h *= 0.8
	}

	return mathx.ClampInt(ctx.cfg.SeaLevel+int(h), 1, world.WorldHeight-2)
}

// dirtDepth varies the soil layer per column via the erosion field.
func (ctx *Context) dirtDepth(wx, wz int) int {
	d := ctx.cfg.DirtDepth + int(ctx.erosion.Eval2(float64(wx)*0.03, float64(wz)*0.03)*2)
	if d < 1 {
		d = 1
	}
	return d
}

// chunkRNG derives a deterministic RNG for a chunk position.
func (ctx *Context) chunkRNG(pos world.ChunkPos) *rng {
	return newRNG(int64(mathx.Hash2(ctx.seed, pos.X, pos.Z)))
}

// Pass mutates a chunk in place. Passes must touch only the chunk they
// are handed, so generation stays embarrassingly parallel.
type Pass interface {
	Apply(c *world.Chunk, ctx *Context)
}

// Pipeline runs the pass list in order. Same seed and chunk position
// always produce bit-identical output.
type Pipeline struct {
	ctx    *Context
	passes []Pass
}

func NewPipeline(ctx *Context, passes ...Pass) *Pipeline {
	return &Pipeline{ctx: ctx, passes: passes}
}

// Default builds the standard pipeline:
// base terrain → surface paint → caves → fluids → ores → trees → flowers.
func Default(seed int64) *Pipeline {
	ctx := NewContext(seed, DefaultConfig())
	return NewPipeline(ctx,
		baseTerrainPass{},
		surfacePaintPass{},
		carveCavesPass{},
		fillFluidsPass{},
		oreVeinsPass{},
		treesPass{},
		flowersPass{},
	)
}

func (p *Pipeline) Context() *Context { return p.ctx }

func (p *Pipeline) Generate(c *world.Chunk) {
	for _, pass := range p.passes {
		pass.Apply(c, p.ctx)
	}
}
