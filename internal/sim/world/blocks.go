package world

// Block ids used by the terrain generator and spawn finder. The store
// itself never interprets ids; chunks persist them as opaque bytes.
const (
	BlockAir        byte = 0
	BlockBedrock    byte = 1
	BlockStone      byte = 2
	BlockDirt       byte = 3
	BlockGrass      byte = 4
	BlockSand       byte = 5
	BlockGravel     byte = 6
	BlockWater      byte = 7
	BlockLog        byte = 8
	BlockLeaves     byte = 9
	BlockFlower     byte = 10
	BlockCoalOre    byte = 11
	BlockIronOre    byte = 12
	BlockGoldOre    byte = 13
	BlockDiamondOre byte = 14
)

// IsSolid reports whether a block supports standing on it.
func IsSolid(id byte) bool {
	switch id {
	case BlockAir, BlockWater, BlockFlower:
		return false
	}
	return true
}
