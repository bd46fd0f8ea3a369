package venue

import (
	"context"

	"go.uber.org/zap"

	"github.com/uhyunpark/marketline/pkg/metrics"
	"github.com/uhyunpark/marketline/pkg/wire"
)

// Engine is the single owner of the venue's net-interest state. Intents
// arrive through a bounded mailbox shared by all connections and are
// applied strictly one at a time in arrival order; the mailbox filling up
// is the only backpressure toward clients. Trades are published to the
// hub fire-and-forget, so a slow subscriber never stalls matching.
type Engine struct {
	book      *NetBook
	mailbox   chan wire.Intent
	snapshots chan chan map[wire.Commodity]int64
	hub       *TradeHub
	log       *zap.SugaredLogger
}

func NewEngine(hub *TradeHub, mailboxCap int, log *zap.SugaredLogger) *Engine {
	if mailboxCap <= 0 {
		mailboxCap = 16
	}
	return &Engine{
		book:      NewNetBook(),
		mailbox:   make(chan wire.Intent, mailboxCap),
		snapshots: make(chan chan map[wire.Commodity]int64),
		hub:       hub,
		log:       log,
	}
}

// Submit enqueues one intent. Blocks while the mailbox is full; returns
// the context error if the caller is cancelled first.
func (e *Engine) Submit(ctx context.Context, in wire.Intent) error {
	select {
	case e.mailbox <- in:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Positions returns a point-in-time copy of all non-zero counters. The
// request is serviced inside the engine loop, so state is never read
// concurrently with a mutation.
func (e *Engine) Positions(ctx context.Context) (map[wire.Commodity]int64, error) {
	reply := make(chan map[wire.Commodity]int64, 1)
	select {
	case e.snapshots <- reply:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	select {
	case pos := <-reply:
		return pos, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Run processes the mailbox until ctx is cancelled.
func (e *Engine) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case in := <-e.mailbox:
			metrics.IntentsTotal.WithLabelValues(in.Op.String()).Inc()
			if e.book.Apply(in) {
				e.log.Infow("trade", "commodity", in.Commodity.String())
				metrics.TradesTotal.WithLabelValues(in.Commodity.String()).Inc()
				e.hub.Publish(in.Commodity)
			}
		case reply := <-e.snapshots:
			reply <- e.book.Positions()
		}
	}
}
