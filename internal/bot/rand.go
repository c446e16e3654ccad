package bot

import "math/rand/v2"

// botRng is the random source shared by all strategies. When nil the
// helpers below use the global source. SeedBotRng makes runs reproducible.
var botRng *rand.Rand

// SeedBotRng sets a deterministic random source.
func SeedBotRng(seed uint64) {
	botRng = rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// ResetBotRng reverts to the global random source.
func ResetBotRng() {
	botRng = nil
}

func botIntN(n int) int {
	if botRng != nil {
		return botRng.IntN(n)
	}
	return rand.IntN(n)
}

func botFloat64() float64 {
	if botRng != nil {
		return botRng.Float64()
	}
	return rand.Float64()
}
