package bot

import (
	"math/rand"
	"sync"
)

// botRng is the package-level random source used by the random strategy.
// When nil, the functions below delegate to the global
// math/rand default. Use SeedBotRng to set a deterministic source for
// reproducible matches.
var (
	botRngMu sync.Mutex
	botRng   *rand.Rand
)

// SeedBotRng sets a deterministic random source for reproducible bot behavior.
func SeedBotRng(seed int64) {
	botRngMu.Lock()
	defer botRngMu.Unlock()
	botRng = rand.New(rand.NewSource(seed))
}

// ResetBotRng reverts to the default (non-deterministic) global random source.
func ResetBotRng() {
	botRngMu.Lock()
	defer botRngMu.Unlock()
	botRng = nil
}

func botFloat64() float64 {
	botRngMu.Lock()
	defer botRngMu.Unlock()
	if botRng != nil {
		return botRng.Float64()
	}
	return rand.Float64()
}
