package features

// Per-node feature offsets.
const (
	FeatNodeOnBoard         = 0
	FeatOwnSettlement       = 1
	FeatOwnCity             = 2
	FeatOppSettlement       = 3
	FeatOppCity             = 4
	FeatFortress            = 5
	FeatVillage             = 6
	FeatLegalSettlement     = 7
	FeatPotentialSettlement = 8
	FeatPotentialCity       = 9
	FeatPips                = 10 // total production weight of adjacent hexes
	FeatResourcePips        = 11 // [11:16] production weight per resource
)

// NumNodeFeatures is the number of features per node.
const NumNodeFeatures = 16

// Per-edge feature offsets.
const (
	FeatRoadEdge      = 0
	FeatShipEdge      = 1
	FeatOwnRoad       = 2
	FeatOwnShip       = 3
	FeatOppRoad       = 4
	FeatOppShip       = 5
	FeatPotentialRoad = 6
	FeatPotentialShip = 7
)

// NumEdgeFeatures is the number of features per edge.
const NumEdgeFeatures = 8

// Global feature offsets.
const (
	FeatVictoryPoints = 0
	FeatRemaining     = 1  // [1:5] roads, settlements, cities, ships left / supply
	FeatLongestRoute  = 5
	FeatResources     = 6  // [6:11] holdings per resource
	FeatPhase         = 11 // [11:14] initial_first, initial_second, play
)

// NumGlobalFeatures is the length of the per-player global vector.
const NumGlobalFeatures = 14

// Normalizers.
const (
	maxVictoryPoints = 10
	maxRouteLength   = 15
	maxResourceCount = 10
)
