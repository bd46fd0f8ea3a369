package venue

import (
	"bufio"
	"context"
	"io"
	"net"

	"go.uber.org/zap"

	"github.com/uhyunpark/marketline/pkg/metrics"
	"github.com/uhyunpark/marketline/pkg/wire"
)

// serveConn runs one client session: a reader goroutine feeds request
// lines into a channel, and the main loop multiplexes those lines against
// the connection's trade subscription. Every socket write happens on the
// main loop, so no write lock is needed.
//
// The session ends when the inbound stream ends (EOF, reset, or any read
// error), when the subscription closes, or when ctx is cancelled. Write
// errors are swallowed: delivery is best-effort and a dead peer is
// detected by the next read.
func serveConn(ctx context.Context, conn net.Conn, engine *Engine, hub *TradeHub, log *zap.SugaredLogger) {
	peer := conn.RemoteAddr().String()
	log.Infow("connected", "peer", peer)
	metrics.ActiveConnections.Inc()

	sub := hub.Subscribe()
	done := make(chan struct{})
	defer func() {
		close(done)
		hub.Unsubscribe(sub)
		conn.Close()
		metrics.ActiveConnections.Dec()
		log.Infow("disconnected", "peer", peer)
	}()

	lines := make(chan string)
	go func() {
		defer close(lines)
		sc := bufio.NewScanner(conn)
		for sc.Scan() {
			select {
			case lines <- sc.Text():
			case <-done:
				return
			}
		}
		// EOF, reset, and any other read error all end the session the
		// same way; no further distinction is needed.
	}()

	writeLine := func(s string) {
		_, _ = io.WriteString(conn, s+"\n")
	}

	for {
		select {
		case line, ok := <-lines:
			if !ok {
				return
			}
			in, err := wire.ParseIntent(line)
			if err != nil {
				metrics.ParseErrorsTotal.WithLabelValues(err.Error()).Inc()
				writeLine(err.Error())
				continue
			}
			log.Infow("new_order", "peer", peer, "op", in.Op.String(), "commodity", in.Commodity.String())
			if err := engine.Submit(ctx, in); err != nil {
				return
			}
			writeLine(wire.AckLine(in.Commodity))

		case c, ok := <-sub.Events():
			if !ok {
				return
			}
			if n := sub.Lagged(); n > 0 {
				log.Warnw("subscriber_lagged", "peer", peer, "dropped", n)
			}
			writeLine(wire.TradeLine(c))

		case <-ctx.Done():
			return
		}
	}
}
