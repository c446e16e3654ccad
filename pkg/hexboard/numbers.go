package hexboard

import (
	"maps"
	"slices"
)

// NumberResource is one production unit: a dice number and the resource it yields.
type NumberResource struct {
	Number   int
	Resource Resource
}

// DiceIndex records which dice rolls yield which resources for one player.
// Every structure is a multiset: a settlement adds one unit per adjacent
// producing hex and a city adds two, so units can be removed one at a time.
type DiceIndex struct {
	numbersForResource map[Resource]map[int]int
	resourcesForNumber map[int]map[Resource]int
	pairsForHex        map[HexID]map[NumberResource]int
}

// NewDiceIndex returns an empty index.
func NewDiceIndex() *DiceIndex {
	return &DiceIndex{
		numbersForResource: make(map[Resource]map[int]int),
		resourcesForNumber: make(map[int]map[Resource]int),
		pairsForHex:        make(map[HexID]map[NumberResource]int),
	}
}

// OnBuildingPlaced adds one unit (two for a city) for every producing hex
// around node. A nil topology is a no-op.
func (d *DiceIndex) OnBuildingPlaced(topo Topology, node NodeID, isCity bool) {
	d.eachProducingHex(topo, node, func(h HexID, nr NumberResource) {
		d.AddUnit(h, nr)
		if isCity {
			d.AddUnit(h, nr)
		}
	})
}

// OnBuildingRemoved is the inverse of OnBuildingPlaced.
func (d *DiceIndex) OnBuildingRemoved(topo Topology, node NodeID, isCity bool) {
	d.eachProducingHex(topo, node, func(h HexID, nr NumberResource) {
		d.RemoveUnit(h, nr)
		if isCity {
			d.RemoveUnit(h, nr)
		}
	})
}

func (d *DiceIndex) eachProducingHex(topo Topology, node NodeID, fn func(HexID, NumberResource)) {
	if !validNode(topo, node) {
		return
	}
	for _, h := range topo.NodeHexes(node) {
		nr := NumberResource{Number: topo.DiceNumber(h), Resource: topo.ResourceType(h)}
		if nr.Number <= 0 || nr.Resource == NoResource {
			continue
		}
		fn(h, nr)
	}
}

// AddUnit adds a single production unit from hex h.
func (d *DiceIndex) AddUnit(h HexID, nr NumberResource) {
	inc(d.numbersForResource, nr.Resource, nr.Number)
	inc(d.resourcesForNumber, nr.Number, nr.Resource)
	inc(d.pairsForHex, h, nr)
}

// RemoveUnit removes a single production unit from hex h, if present.
func (d *DiceIndex) RemoveUnit(h HexID, nr NumberResource) {
	if d.pairsForHex[h][nr] == 0 {
		return
	}
	dec(d.numbersForResource, nr.Resource, nr.Number)
	dec(d.resourcesForNumber, nr.Number, nr.Resource)
	dec(d.pairsForHex, h, nr)
}

func inc[K, V comparable](m map[K]map[V]int, k K, v V) {
	inner := m[k]
	if inner == nil {
		inner = make(map[V]int)
		m[k] = inner
	}
	inner[v]++
}

func dec[K, V comparable](m map[K]map[V]int, k K, v V) {
	inner := m[k]
	if inner[v] <= 1 {
		delete(inner, v)
		if len(inner) == 0 {
			delete(m, k)
		}
		return
	}
	inner[v]--
}

// ResourcesForNumber returns the resources a roll of number yields, one
// card per unit, ignoring the hex under the robber (NoHex for none).
func (d *DiceIndex) ResourcesForNumber(number int, robber HexID) ResourceSet {
	var rs ResourceSet
	if robber == NoHex {
		for r, n := range d.resourcesForNumber[number] {
			rs.Add(r, n)
		}
		return rs
	}
	for h, pairs := range d.pairsForHex {
		if h == robber {
			continue
		}
		for nr, n := range pairs {
			if nr.Number == number {
				rs.Add(nr.Resource, n)
			}
		}
	}
	return rs
}

// NumbersForResource returns the distinct dice numbers that yield r, in
// ascending order, ignoring the hex under the robber.
func (d *DiceIndex) NumbersForResource(r Resource, robber HexID) []int {
	if robber == NoHex {
		return slices.Sorted(maps.Keys(d.numbersForResource[r]))
	}
	seen := make(map[int]bool)
	for h, pairs := range d.pairsForHex {
		if h == robber {
			continue
		}
		for nr := range pairs {
			if nr.Resource == r {
				seen[nr.Number] = true
			}
		}
	}
	return slices.Sorted(maps.Keys(seen))
}

// HexContributesNothing reports whether hex h yields this player nothing.
func (d *DiceIndex) HexContributesNothing(h HexID) bool {
	return len(d.pairsForHex[h]) == 0
}

// HasNumber reports whether any roll of number yields this player something.
func (d *DiceIndex) HasNumber(number int) bool {
	return len(d.resourcesForNumber[number]) > 0
}

// Units returns the number of units hex h contributes as nr.
func (d *DiceIndex) Units(h HexID, nr NumberResource) int {
	return d.pairsForHex[h][nr]
}

// TotalUnits returns the number of production units across all hexes.
func (d *DiceIndex) TotalUnits() int {
	total := 0
	for _, pairs := range d.pairsForHex {
		for _, n := range pairs {
			total += n
		}
	}
	return total
}

// Equal reports whether d and o hold the same units.
func (d *DiceIndex) Equal(o *DiceIndex) bool {
	return nestedEqual(d.numbersForResource, o.numbersForResource) &&
		nestedEqual(d.resourcesForNumber, o.resourcesForNumber) &&
		nestedEqual(d.pairsForHex, o.pairsForHex)
}

func nestedEqual[K, V comparable](a, b map[K]map[V]int) bool {
	return maps.EqualFunc(a, b, func(x, y map[V]int) bool { return maps.Equal(x, y) })
}

// Clone returns a deep copy of d.
func (d *DiceIndex) Clone() *DiceIndex {
	return &DiceIndex{
		numbersForResource: nestedClone(d.numbersForResource),
		resourcesForNumber: nestedClone(d.resourcesForNumber),
		pairsForHex:        nestedClone(d.pairsForHex),
	}
}

func nestedClone[K, V comparable](m map[K]map[V]int) map[K]map[V]int {
	out := make(map[K]map[V]int, len(m))
	for k, inner := range m {
		out[k] = maps.Clone(inner)
	}
	return out
}
