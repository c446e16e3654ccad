package hexboard

// StandardNodeCount and StandardEdgeCount are the graph sizes of the
// 19-hex base board.
const (
	StandardNodeCount = 54
	StandardEdgeCount = 72
)

// StandardLayout returns the 19-hex base board with the fixed beginner
// resource and number assignment. All land is one land area.
func StandardLayout() *HexLayout {
	return NewHexLayout(standardHexes())
}

func standardHexes() []HexTile {
	return []HexTile{
		// Row r=-2
		{Q: 0, R: -2, Resource: Ore, Number: 10, Area: 1},
		{Q: 1, R: -2, Resource: Sheep, Number: 2, Area: 1},
		{Q: 2, R: -2, Resource: Wood, Number: 9, Area: 1},
		// Row r=-1
		{Q: -1, R: -1, Resource: Wheat, Number: 12, Area: 1},
		{Q: 0, R: -1, Resource: Clay, Number: 6, Area: 1},
		{Q: 1, R: -1, Resource: Sheep, Number: 4, Area: 1},
		{Q: 2, R: -1, Resource: Clay, Number: 10, Area: 1},
		// Row r=0
		{Q: -2, R: 0, Resource: Wheat, Number: 9, Area: 1},
		{Q: -1, R: 0, Resource: Wood, Number: 11, Area: 1},
		{Q: 0, R: 0, Resource: NoResource, Number: 0, Area: 1}, // desert
		{Q: 1, R: 0, Resource: Wood, Number: 3, Area: 1},
		{Q: 2, R: 0, Resource: Ore, Number: 8, Area: 1},
		// Row r=1
		{Q: -2, R: 1, Resource: Wood, Number: 8, Area: 1},
		{Q: -1, R: 1, Resource: Ore, Number: 3, Area: 1},
		{Q: 0, R: 1, Resource: Wheat, Number: 4, Area: 1},
		{Q: 1, R: 1, Resource: Sheep, Number: 5, Area: 1},
		// Row r=2
		{Q: -2, R: 2, Resource: Clay, Number: 5, Area: 1},
		{Q: -1, R: 2, Resource: Wheat, Number: 6, Area: 1},
		{Q: 0, R: 2, Resource: Sheep, Number: 11, Area: 1},
	}
}
