package venue

import (
	"bufio"
	"context"
	"net"
	"testing"
	"time"

	"go.uber.org/zap"
)

type testClient struct {
	t    *testing.T
	conn net.Conn
	r    *bufio.Reader
}

func startVenue(t *testing.T) string {
	t.Helper()
	log := zap.NewNop().Sugar()
	hub := NewTradeHub(16)
	engine := NewEngine(hub, 16, log)
	srv := NewServer(engine, hub, log)
	if err := srv.Listen("127.0.0.1:0"); err != nil {
		t.Fatalf("listen: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go engine.Run(ctx)
	go func() {
		if err := srv.Serve(ctx); err != nil {
			t.Errorf("serve: %v", err)
		}
	}()
	return srv.Addr().String()
}

func dialVenue(t *testing.T, addr string) *testClient {
	t.Helper()
	conn, err := net.Dial("tcp", addr)
	if err != nil {
		t.Fatalf("dial %s: %v", addr, err)
	}
	t.Cleanup(func() { conn.Close() })
	return &testClient{t: t, conn: conn, r: bufio.NewReader(conn)}
}

func (c *testClient) send(line string) {
	c.t.Helper()
	if _, err := c.conn.Write([]byte(line + "\n")); err != nil {
		c.t.Fatalf("write %q: %v", line, err)
	}
}

func (c *testClient) expect(want string) {
	c.t.Helper()
	c.conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	line, err := c.r.ReadString('\n')
	if err != nil {
		c.t.Fatalf("read (want %q): %v", want, err)
	}
	if got := line[:len(line)-1]; got != want {
		c.t.Fatalf("got %q, want %q", got, want)
	}
}

func (c *testClient) expectSilence(d time.Duration) {
	c.t.Helper()
	c.conn.SetReadDeadline(time.Now().Add(d))
	if line, err := c.r.ReadString('\n'); err == nil {
		c.t.Fatalf("unexpected line %q", line)
	}
}

func TestServer_AckAndTradeScenarios(t *testing.T) {
	addr := startVenue(t)
	c := dialVenue(t, addr)

	// Two buys stack interest; the first sell crosses it.
	c.send("BUY:APPLE")
	c.expect("ACK:APPLE")
	c.send("BUY:APPLE")
	c.expect("ACK:APPLE")
	c.send("SELL:APPLE")
	c.expect("ACK:APPLE")
	c.expect("TRADE:APPLE")

	// A lone sell waits; the matching buy crosses it.
	c.send("SELL:ONION")
	c.expect("ACK:ONION")
	c.send("BUY:ONION")
	c.expect("ACK:ONION")
	c.expect("TRADE:ONION")
}

func TestServer_ProtocolErrors(t *testing.T) {
	addr := startVenue(t)
	c := dialVenue(t, addr)

	c.send("garbage")
	c.expect("Invalid order command.")
	c.send("BUY:APPLE:EXTRA")
	c.expect("Invalid order command.")
	c.send("HOLD:APPLE")
	c.expect("Operation not supported.")
	c.send("BUY:MANGO")
	c.expect("Commodity not supported.")

	// The connection survives every protocol error.
	c.send("BUY:PEAR")
	c.expect("ACK:PEAR")
}

func TestServer_TradeFanOutIncludesTrigger(t *testing.T) {
	addr := startVenue(t)
	active := dialVenue(t, addr)
	passive := dialVenue(t, addr)

	// Ensure the passive client is fully registered before trading.
	passive.send("BUY:TOMATO")
	passive.expect("ACK:TOMATO")

	active.send("SELL:TOMATO")
	active.expect("ACK:TOMATO")
	active.expect("TRADE:TOMATO")
	passive.expect("TRADE:TOMATO")
}

func TestServer_MalformedInputIsolated(t *testing.T) {
	addr := startVenue(t)
	bad := dialVenue(t, addr)
	good := dialVenue(t, addr)

	bad.send("NOISE")
	bad.expect("Invalid order command.")

	// The other connection's counters and acks are untouched: a fresh
	// buy/sell pair still produces exactly one trade.
	good.send("BUY:POTATO")
	good.expect("ACK:POTATO")
	good.send("SELL:POTATO")
	good.expect("ACK:POTATO")
	good.expect("TRADE:POTATO")
	good.expectSilence(50 * time.Millisecond)
}

func TestServer_DisconnectDoesNotAffectOthers(t *testing.T) {
	addr := startVenue(t)
	leaver := dialVenue(t, addr)
	stayer := dialVenue(t, addr)

	leaver.send("BUY:PEAR")
	leaver.expect("ACK:PEAR")
	leaver.conn.Close()

	// Give the server a moment to tear the session down, then verify
	// the engine still serves the remaining connection. The leaver's
	// interest survives it: the stayer's sell crosses it.
	time.Sleep(50 * time.Millisecond)
	stayer.send("SELL:PEAR")
	stayer.expect("ACK:PEAR")
	stayer.expect("TRADE:PEAR")
}

func TestServer_ListenFallback(t *testing.T) {
	// Occupy a port, then ask the venue to bind it: it must fall back
	// to a loopback ephemeral port and still serve.
	blocker, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("blocker listen: %v", err)
	}
	defer blocker.Close()

	log := zap.NewNop().Sugar()
	hub := NewTradeHub(16)
	engine := NewEngine(hub, 16, log)
	srv := NewServer(engine, hub, log)
	if err := srv.Listen(blocker.Addr().String()); err != nil {
		t.Fatalf("listen with fallback: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go engine.Run(ctx)
	go srv.Serve(ctx)

	if srv.Addr().String() == blocker.Addr().String() {
		t.Fatal("expected a fallback address, got the occupied one")
	}
	c := dialVenue(t, srv.Addr().String())
	c.send("BUY:APPLE")
	c.expect("ACK:APPLE")
}
