package params

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Venue struct {
	// ListenAddr is the TCP address clients connect to. A failed bind
	// falls back to an ephemeral loopback port at startup.
	ListenAddr string
	// MailboxCap bounds the engine mailbox; a full mailbox is the only
	// backpressure from clients toward the engine.
	MailboxCap int
	// BroadcastCap bounds each subscriber's trade-event buffer. Overflow
	// drops the oldest unread events.
	BroadcastCap int
}

type API struct {
	Addr string
}

type Config struct {
	Venue    Venue
	API      API
	LogFile  string
	LogLevel string
}

func Default() Config {
	return Config{
		Venue: Venue{
			ListenAddr:   "127.0.0.1:8888",
			MailboxCap:   16,
			BroadcastCap: 16,
		},
		API:      API{Addr: ":8080"},
		LogFile:  "",
		LogLevel: "info",
	}
}

// LoadFromEnv loads configuration from a .env file (if present) and
// environment variables. Priority: ENV > .env file > defaults.
func LoadFromEnv(envPath string) Config {
	cfg := Default()

	if envPath != "" {
		_ = godotenv.Load(envPath)
	} else {
		_ = godotenv.Load()
	}

	if addr := os.Getenv("LISTEN_ADDR"); addr != "" {
		cfg.Venue.ListenAddr = addr
	}
	if addr := os.Getenv("API_ADDR"); addr != "" {
		cfg.API.Addr = addr
	}
	if path := os.Getenv("LOG_FILE"); path != "" {
		cfg.LogFile = path
	}
	if lvl := os.Getenv("LOG_LEVEL"); lvl != "" {
		cfg.LogLevel = lvl
	}
	if v := os.Getenv("VENUE_MAILBOX_CAP"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.Venue.MailboxCap = n
		}
	}
	if v := os.Getenv("VENUE_BROADCAST_CAP"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.Venue.BroadcastCap = n
		}
	}

	return cfg
}
