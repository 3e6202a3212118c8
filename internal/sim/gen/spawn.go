package gen

// FindSpawn walks an outward spiral from the origin looking for a dry
// column: surface above sea level and below the mountain line. Returns
// world coordinates with y set to the first air block. Falls back to the
// origin column if nothing qualifies within the search radius.
func FindSpawn(ctx *Context) (x, y, z int) {
	cfg := ctx.Config()
	const step = 8
	const maxRing = 64

	check := func(wx, wz int) (int, bool) {
		h := ctx.TerrainHeight(wx, wz)
		if h > cfg.SeaLevel+1 && h < cfg.MountainThreshold {
			return h, true
		}
		return 0, false
	}

	if h, ok := check(0, 0); ok {
		return 0, h, 0
	}
	for ring := 1; ring <= maxRing; ring++ {
		d := ring * step
		for i := -ring; i <= ring; i++ {
			candidates := [][2]int{
				{i * step, -d}, {i * step, d}, {-d, i * step}, {d, i * step},
			}
			for _, cand := range candidates {
				if h, ok := check(cand[0], cand[1]); ok {
					return cand[0], h, cand[1]
				}
			}
		}
	}
	return 0, ctx.TerrainHeight(0, 0), 0
}
