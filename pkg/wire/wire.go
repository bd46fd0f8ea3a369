// Package wire defines the line protocol spoken between venue and clients.
//
// Requests are single lines of the form OPERATION:COMMODITY. Responses are
// ACK:<COMMODITY> for accepted orders, TRADE:<COMMODITY> broadcast on a
// crossing, or one of the protocol error lines below for malformed input.
package wire

import (
	"errors"
	"strings"
)

// Protocol errors. Their Error() strings are the exact lines written back
// to the client, so they double as wire format.
var (
	ErrInvalidCommand       = errors.New("Invalid order command.")
	ErrUnsupportedOperation = errors.New("Operation not supported.")
	ErrUnsupportedCommodity = errors.New("Commodity not supported.")
)

// Commodity is one of the fixed tradable symbols. Compared by value.
type Commodity uint8

const (
	Apple Commodity = iota
	Pear
	Tomato
	Potato
	Onion
)

// Commodities lists every tradable symbol in wire order.
var Commodities = []Commodity{Apple, Pear, Tomato, Potato, Onion}

func (c Commodity) String() string {
	switch c {
	case Apple:
		return "APPLE"
	case Pear:
		return "PEAR"
	case Tomato:
		return "TOMATO"
	case Potato:
		return "POTATO"
	case Onion:
		return "ONION"
	}
	return "UNKNOWN"
}

// ParseCommodity matches a wire token against the commodity set.
// Matching is exact and case-sensitive.
func ParseCommodity(s string) (Commodity, error) {
	switch s {
	case "APPLE":
		return Apple, nil
	case "PEAR":
		return Pear, nil
	case "TOMATO":
		return Tomato, nil
	case "POTATO":
		return Potato, nil
	case "ONION":
		return Onion, nil
	}
	return 0, ErrUnsupportedCommodity
}

// Operation is the side of an intent.
type Operation uint8

const (
	Buy Operation = iota
	Sell
)

func (o Operation) String() string {
	if o == Buy {
		return "buy"
	}
	return "sell"
}

// ParseOperation matches a wire token against the operation set.
// Matching is exact and case-sensitive.
func ParseOperation(s string) (Operation, error) {
	switch s {
	case "BUY":
		return Buy, nil
	case "SELL":
		return Sell, nil
	}
	return 0, ErrUnsupportedOperation
}

// Intent is one validated client request: an operation on a commodity.
type Intent struct {
	Op        Operation
	Commodity Commodity
}

// ParseIntent decodes one request line. Validation order is fixed:
// structural shape first (exactly two non-empty colon-separated fields),
// then the operation token, then the commodity token. The first failing
// check wins.
func ParseIntent(line string) (Intent, error) {
	op, cm, ok := strings.Cut(line, ":")
	if !ok || op == "" || cm == "" || strings.Contains(cm, ":") {
		return Intent{}, ErrInvalidCommand
	}
	o, err := ParseOperation(op)
	if err != nil {
		return Intent{}, err
	}
	c, err := ParseCommodity(cm)
	if err != nil {
		return Intent{}, err
	}
	return Intent{Op: o, Commodity: c}, nil
}

// AckLine formats the acknowledgement for an accepted intent.
func AckLine(c Commodity) string { return "ACK:" + c.String() }

// TradeLine formats the broadcast notification for a crossing.
func TradeLine(c Commodity) string { return "TRADE:" + c.String() }
