package venue

import (
	"testing"

	"github.com/uhyunpark/marketline/pkg/wire"
)

func TestNetBook_CrossingRule(t *testing.T) {
	tests := []struct {
		name   string
		start  int64
		op     wire.Operation
		net    int64
		traded bool
	}{
		{"buy from flat", 0, wire.Buy, 1, false},
		{"buy into buy backlog", 2, wire.Buy, 3, false},
		{"buy clears one sell", -1, wire.Buy, 0, true},
		{"buy into deep sell backlog", -3, wire.Buy, -2, true},
		{"sell from flat", 0, wire.Sell, -1, false},
		{"sell into sell backlog", -2, wire.Sell, -3, false},
		{"sell clears one buy", 1, wire.Sell, 0, true},
		{"sell into deep buy backlog", 3, wire.Sell, 2, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := NewNetBook()
			c := wire.Apple
			// Seed the counter without firing trades we care about.
			for i := int64(0); i < tt.start; i++ {
				b.Buy(c)
			}
			for i := int64(0); i > tt.start; i-- {
				b.Sell(c)
			}

			traded := b.Apply(wire.Intent{Op: tt.op, Commodity: c})
			if traded != tt.traded {
				t.Errorf("traded = %v, want %v", traded, tt.traded)
			}
			if got := b.Net(c); got != tt.net {
				t.Errorf("net = %d, want %d", got, tt.net)
			}
		})
	}
}

// Two buys then a sell: the sell crosses immediately (counter 2 -> 1, >= 0).
func TestNetBook_ScenarioBuyBuySell(t *testing.T) {
	b := NewNetBook()

	if b.Buy(wire.Apple) {
		t.Error("first buy should not trade")
	}
	if b.Buy(wire.Apple) {
		t.Error("second buy should not trade")
	}
	if !b.Sell(wire.Apple) {
		t.Error("sell into net-buy backlog should trade")
	}
	if got := b.Net(wire.Apple); got != 1 {
		t.Errorf("net = %d, want 1", got)
	}
}

// A sell then a buy: the buy clears the sell (counter -1 -> 0, <= 0).
func TestNetBook_ScenarioSellThenBuy(t *testing.T) {
	b := NewNetBook()

	if b.Sell(wire.Onion) {
		t.Error("sell from flat should not trade")
	}
	if !b.Buy(wire.Onion) {
		t.Error("buy clearing the sell should trade")
	}
	if got := b.Net(wire.Onion); got != 0 {
		t.Errorf("net = %d, want 0", got)
	}
}

func TestNetBook_CommoditiesIndependent(t *testing.T) {
	b := NewNetBook()
	b.Buy(wire.Apple)
	b.Buy(wire.Apple)

	// Pear has no backlog; Apple's counter must not leak into it.
	if b.Sell(wire.Pear) {
		t.Error("sell on untouched commodity should not trade")
	}
	if got := b.Net(wire.Apple); got != 2 {
		t.Errorf("apple net = %d, want 2", got)
	}

	pos := b.Positions()
	if pos[wire.Apple] != 2 || pos[wire.Pear] != -1 {
		t.Errorf("positions = %v", pos)
	}
	if _, ok := pos[wire.Onion]; ok {
		t.Error("zero counters should be omitted from positions")
	}
}
