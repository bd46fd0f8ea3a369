package venue

import (
	"sync"
	"sync/atomic"

	"github.com/uhyunpark/marketline/pkg/metrics"
	"github.com/uhyunpark/marketline/pkg/wire"
)

// TradeHub fans trade events out to every live subscription. Delivery is
// lossy: each subscription buffers up to its capacity, and when a slow
// subscriber's buffer is full the oldest unread event is dropped and the
// loss is counted. The publisher never blocks and late subscribers see
// only future events.
type TradeHub struct {
	mu     sync.Mutex
	subs   map[*Subscription]struct{}
	cap    int
	closed bool
}

func NewTradeHub(subCap int) *TradeHub {
	if subCap <= 0 {
		subCap = 16
	}
	return &TradeHub{
		subs: make(map[*Subscription]struct{}),
		cap:  subCap,
	}
}

// Subscription is one subscriber's view of the trade stream.
type Subscription struct {
	ch      chan wire.Commodity
	dropped atomic.Uint64
}

// Events yields trade events in publish order. The channel is closed when
// the subscription is removed or the hub shuts down.
func (s *Subscription) Events() <-chan wire.Commodity { return s.ch }

// Lagged returns and resets the number of events dropped since the last
// call, so the subscriber can report the loss.
func (s *Subscription) Lagged() uint64 { return s.dropped.Swap(0) }

// Subscribe registers a new subscriber. On a closed hub the returned
// subscription's event channel is already closed.
func (h *TradeHub) Subscribe() *Subscription {
	s := &Subscription{ch: make(chan wire.Commodity, h.cap)}
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		close(s.ch)
		return s
	}
	h.subs[s] = struct{}{}
	return s
}

// Unsubscribe removes a subscriber and closes its event channel. Safe to
// call for an already-removed subscription.
func (h *TradeHub) Unsubscribe(s *Subscription) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.subs[s]; !ok {
		return
	}
	delete(h.subs, s)
	close(s.ch)
}

// Publish delivers a trade event to every subscription without blocking.
// A full subscription loses its oldest unread event to make room.
func (h *TradeHub) Publish(c wire.Commodity) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	for s := range h.subs {
		select {
		case s.ch <- c:
		default:
			// Buffer full. Evict the oldest event; if the subscriber
			// drained one in the meantime nothing was actually lost.
			select {
			case <-s.ch:
				s.dropped.Add(1)
				metrics.BroadcastDroppedTotal.Inc()
			default:
			}
			// The hub is the only sender, so the freed slot is still
			// free and this send cannot block.
			s.ch <- c
		}
	}
}

// Close shuts the hub down and closes every subscription.
func (h *TradeHub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.closed = true
	for s := range h.subs {
		delete(h.subs, s)
		close(s.ch)
	}
}

// Len returns the number of live subscriptions (for tests/metrics).
func (h *TradeHub) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}
