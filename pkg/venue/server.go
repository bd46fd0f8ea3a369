// Package venue implements the matching venue: a line-protocol TCP server
// feeding a single sequential matching engine, with trade events fanned
// out to every connected client through a lossy broadcast hub.
package venue

import (
	"context"
	"errors"
	"fmt"
	"net"

	"go.uber.org/zap"
)

// Server accepts client connections and runs one handler per client,
// each wired to the shared engine mailbox and a fresh hub subscription.
type Server struct {
	engine *Engine
	hub    *TradeHub
	log    *zap.SugaredLogger
	ln     net.Listener
}

func NewServer(engine *Engine, hub *TradeHub, log *zap.SugaredLogger) *Server {
	return &Server{engine: engine, hub: hub, log: log}
}

// Listen binds the configured address. If that bind fails the server
// falls back to an ephemeral port on loopback and reports the resolved
// address, so a busy port never prevents startup.
func (s *Server) Listen(addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		fallback, ferr := net.Listen("tcp", "127.0.0.1:0")
		if ferr != nil {
			return fmt.Errorf("listen %s: %w", addr, err)
		}
		s.log.Warnw("bind_fallback", "requested", addr, "resolved", fallback.Addr().String())
		ln = fallback
	}
	s.ln = ln
	s.log.Infow("listening", "addr", ln.Addr().String())
	return nil
}

// Addr returns the bound address, or nil before Listen.
func (s *Server) Addr() net.Addr {
	if s.ln == nil {
		return nil
	}
	return s.ln.Addr()
}

// Serve accepts connections until ctx is cancelled or the listener
// fails. A listener failure is fatal to the whole server; per-connection
// failures never are.
func (s *Server) Serve(ctx context.Context) error {
	if s.ln == nil {
		return errors.New("venue: Serve before Listen")
	}
	go func() {
		<-ctx.Done()
		s.ln.Close()
	}()

	for {
		conn, err := s.ln.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("accept: %w", err)
		}
		go serveConn(ctx, conn, s.engine, s.hub, s.log)
	}
}
