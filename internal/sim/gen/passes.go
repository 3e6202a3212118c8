package gen

import "voxelkeep.io/internal/sim/world"

// baseTerrainPass fills each column with bedrock and stone up to the
// noise height.
type baseTerrainPass struct{}

func (baseTerrainPass) Apply(c *world.Chunk, ctx *Context) {
	base := baseWorldXZ(c)
	for z := 0; z < world.ChunkSize; z++ {
		for x := 0; x < world.ChunkSize; x++ {
			h := ctx.TerrainHeight(base.x+x, base.z+z)
			c.SetBlock(x, 0, z, world.BlockBedrock)
			for y := 1; y < h; y++ {
				c.SetBlock(x, y, z, world.BlockStone)
			}
		}
	}
}

// surfacePaintPass replaces the top stone layers with soil: grass over
// dirt on land, sand at beaches and under shallow water, bare stone above
// the mountain threshold.
type surfacePaintPass struct{}

func (surfacePaintPass) Apply(c *world.Chunk, ctx *Context) {
	cfg := ctx.Config()
	base := baseWorldXZ(c)
	for z := 0; z < world.ChunkSize; z++ {
		for x := 0; x < world.ChunkSize; x++ {
			wx, wz := base.x+x, base.z+z
			h := ctx.TerrainHeight(wx, wz)
			top := h - 1

			if h >= cfg.MountainThreshold {
				continue // exposed stone
			}

			depth := ctx.dirtDepth(wx, wz)
			if h <= cfg.SeaLevel+cfg.BeachDepth {
				for y := top; y > top-depth && y > 0; y-- {
					c.SetBlock(x, y, z, world.BlockSand)
				}
				continue
			}

			c.SetBlock(x, top, z, world.BlockGrass)
			for y := top - 1; y > top-depth && y > 0; y-- {
				c.SetBlock(x, y, z, world.BlockDirt)
			}
		}
	}
}

// carveCavesPass clears cells where two 3D noise fields agree, the
// classic spaghetti-cave intersection trick. A margin below the surface
// keeps caves from breaching daylight.
type carveCavesPass struct{}

func (carveCavesPass) Apply(c *world.Chunk, ctx *Context) {
	cfg := ctx.Config()
	base := baseWorldXZ(c)
	seed := ctx.Seed()
	for z := 0; z < world.ChunkSize; z++ {
		for x := 0; x < world.ChunkSize; x++ {
			wx, wz := base.x+x, base.z+z
			h := ctx.TerrainHeight(wx, wz)
			maxY := h - cfg.CaveSurfaceMargin
			for y := cfg.CaveMinY; y < maxY; y++ {
				fx := float64(wx) * cfg.CaveFreq
				fy := float64(y) * cfg.CaveFreq * 2
				fz := float64(wz) * cfg.CaveFreq
				n1 := noise3(seed+2000, fx, fy, fz)
				n2 := noise3(seed+3000, fx, fy, fz)
				if n1 > cfg.CaveThreshold && n2 > cfg.CaveThreshold-0.1 {
					c.SetBlock(x, y, z, world.BlockAir)
				}
			}
		}
	}
}

// fillFluidsPass floods ocean columns up to sea level.
type fillFluidsPass struct{}

func (fillFluidsPass) Apply(c *world.Chunk, ctx *Context) {
	cfg := ctx.Config()
	base := baseWorldXZ(c)
	for z := 0; z < world.ChunkSize; z++ {
		for x := 0; x < world.ChunkSize; x++ {
			h := ctx.TerrainHeight(base.x+x, base.z+z)
			for y := h; y <= cfg.SeaLevel; y++ {
				if c.Block(x, y, z) == world.BlockAir {
					c.SetBlock(x, y, z, world.BlockWater)
				}
			}
		}
	}
}

// oreVeinsPass scatters ore veins as short random walks through stone,
// driven by the chunk RNG so veins are stable per chunk.
type oreVeinsPass struct{}

func (oreVeinsPass) Apply(c *world.Chunk, ctx *Context) {
	r := ctx.chunkRNG(c.Pos())
	for _, ore := range ores {
		for i := 0; i < ore.attempts; i++ {
			x := r.intn(world.ChunkSize)
			z := r.intn(world.ChunkSize)
			y := r.rangeInt(ore.minY, ore.maxY)
			for v := 0; v < ore.veinSize; v++ {
				if c.Block(x, y, z) == world.BlockStone {
					c.SetBlock(x, y, z, ore.block)
				}
				x += r.intn(3) - 1
				y += r.intn(3) - 1
				z += r.intn(3) - 1
				if x < 0 || x >= world.ChunkSize || z < 0 || z >= world.ChunkSize || y < 1 || y >= world.WorldHeight {
					break
				}
			}
		}
	}
}

// treesPass plants trunks with a leaf blob on grass, density shaped by
// the forest noise field.
type treesPass struct{}

func (treesPass) Apply(c *world.Chunk, ctx *Context) {
	cfg := ctx.Config()
	base := baseWorldXZ(c)
	r := ctx.chunkRNG(c.Pos())
	// Separate stream from ores: skip ahead so tree layout does not shift
	// when ore parameters change.
	r.state ^= 0xa5a5a5a5a5a5a5a5

	m := cfg.TreeEdgeMargin
	for z := m; z < world.ChunkSize-m; z++ {
		for x := m; x < world.ChunkSize-m; x++ {
			wx, wz := base.x+x, base.z+z
			density := cfg.TreeDensity * (ctx.forest.Eval2(float64(wx)*0.01, float64(wz)*0.01) + 1)
			if r.float() >= density {
				continue
			}
			h := ctx.TerrainHeight(wx, wz)
			if c.Block(x, h-1, z) != world.BlockGrass {
				continue
			}
			trunk := r.rangeInt(cfg.TreeMinTrunk, cfg.TreeMaxTrunk)
			if h+trunk+2 >= world.WorldHeight {
				continue
			}
			for y := h; y < h+trunk; y++ {
				c.SetBlock(x, y, z, world.BlockLog)
			}
			// Canopy: 3×3 cap around the top two trunk blocks plus a crown.
			for dy := trunk - 2; dy <= trunk; dy++ {
				for dz := -1; dz <= 1; dz++ {
					for dx := -1; dx <= 1; dx++ {
						if dx == 0 && dz == 0 && dy < trunk {
							continue
						}
						if c.Block(x+dx, h+dy, z+dz) == world.BlockAir {
							c.SetBlock(x+dx, h+dy, z+dz, world.BlockLeaves)
						}
					}
				}
			}
			c.SetBlock(x, h+trunk, z, world.BlockLeaves)
		}
	}
}

// flowersPass sprinkles flowers on remaining grass.
type flowersPass struct{}

func (flowersPass) Apply(c *world.Chunk, ctx *Context) {
	cfg := ctx.Config()
	r := ctx.chunkRNG(c.Pos())
	r.state ^= 0x5a5a5a5a5a5a5a5a
	for z := 0; z < world.ChunkSize; z++ {
		for x := 0; x < world.ChunkSize; x++ {
			if r.intn(1000) >= cfg.FlowerPermille {
				continue
			}
			h := ctx.TerrainHeight(baseWorldXZ(c).x+x, baseWorldXZ(c).z+z)
			if c.Block(x, h-1, z) == world.BlockGrass && c.Block(x, h, z) == world.BlockAir {
				c.SetBlock(x, h, z, world.BlockFlower)
			}
		}
	}
}

type worldXZ struct{ x, z int }

func baseWorldXZ(c *world.Chunk) worldXZ {
	return worldXZ{x: c.Pos().X * world.ChunkSize, z: c.Pos().Z * world.ChunkSize}
}
