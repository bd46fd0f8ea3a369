package venue

import "github.com/uhyunpark/marketline/pkg/wire"

// NetBook tracks signed net interest per commodity: cumulative buys minus
// cumulative sells. There is no order-level state; interest is fungible
// within a commodity, so a trade fires on every crossing transition of the
// counter through zero.
//
// NetBook is not safe for concurrent use. The Engine is its only caller.
type NetBook struct {
	net map[wire.Commodity]int64
}

func NewNetBook() *NetBook {
	return &NetBook{net: make(map[wire.Commodity]int64)}
}

// Buy records one unit of buy interest. Reports whether the buy crossed
// an existing net-sell backlog, i.e. the counter after increment is <= 0.
func (b *NetBook) Buy(c wire.Commodity) bool {
	b.net[c]++
	return b.net[c] <= 0
}

// Sell records one unit of sell interest. Reports whether the sell crossed
// an existing net-buy backlog, i.e. the counter after decrement is >= 0.
func (b *NetBook) Sell(c wire.Commodity) bool {
	b.net[c]--
	return b.net[c] >= 0
}

// Apply routes an intent to Buy or Sell and reports whether it traded.
func (b *NetBook) Apply(in wire.Intent) bool {
	if in.Op == wire.Buy {
		return b.Buy(in.Commodity)
	}
	return b.Sell(in.Commodity)
}

// Net returns the current counter for a commodity (zero if untouched).
func (b *NetBook) Net(c wire.Commodity) int64 { return b.net[c] }

// Positions returns a copy of all non-zero counters.
func (b *NetBook) Positions() map[wire.Commodity]int64 {
	out := make(map[wire.Commodity]int64, len(b.net))
	for c, n := range b.net {
		if n != 0 {
			out[c] = n
		}
	}
	return out
}
