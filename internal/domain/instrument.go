package domain

// Universe is the fixed set of tradable instruments plus the reserved cash
// symbol. Order matters: trade orders are generated in universe order, so
// cycles are deterministic.
type Universe struct {
	Symbols []string // tradable pairs, e.g. "PAXG_USDT"
	Cash    string   // quote currency held as cash, e.g. "USDT"
}

// DefaultUniverse is the tokenized-RWA set traded on Gate.io spot.
func DefaultUniverse() Universe {
	return Universe{
		Symbols: []string{
			"PAXG_USDT",  // Gold
			"SLVON_USDT", // Silver (iShares Silver Trust, Ondo tokenized)
			"SPYON_USDT", // S&P 500
			"QQQON_USDT", // NASDAQ 100
			"TSLAX_USDT", // Tesla
			"NVDAX_USDT", // NVIDIA
			"MSTRX_USDT", // MicroStrategy
			"ONDO_USDT",  // Ondo Finance
		},
		Cash: "USDT",
	}
}

// All returns the tradable symbols followed by the cash symbol.
func (u Universe) All() []string {
	out := make([]string, 0, len(u.Symbols)+1)
	out = append(out, u.Symbols...)
	return append(out, u.Cash)
}

// Contains reports whether symbol is part of the universe (cash included).
func (u Universe) Contains(symbol string) bool {
	if symbol == u.Cash {
		return true
	}
	for _, s := range u.Symbols {
		if s == symbol {
			return true
		}
	}
	return false
}
