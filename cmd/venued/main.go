package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/uhyunpark/marketline/params"
	"github.com/uhyunpark/marketline/pkg/api"
	"github.com/uhyunpark/marketline/pkg/util"
	"github.com/uhyunpark/marketline/pkg/venue"
)

func main() {
	// Load config from .env file and environment variables
	cfg := params.LoadFromEnv("")

	var logger *zap.Logger
	var err error
	if cfg.LogFile != "" {
		logger, err = util.NewLoggerWithFile(cfg.LogFile, cfg.LogLevel)
	} else {
		logger, err = util.NewLogger(cfg.LogLevel)
	}
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer logger.Sync()
	sugar := logger.Sugar()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ---- Matching core ----
	hub := venue.NewTradeHub(cfg.Venue.BroadcastCap)
	engine := venue.NewEngine(hub, cfg.Venue.MailboxCap, sugar)
	go engine.Run(ctx)

	// ---- Read-only REST/WS sidecar ----
	apiServer := api.NewServer(engine, hub, sugar)
	go func() {
		if err := apiServer.Start(ctx, cfg.API.Addr); err != nil && ctx.Err() == nil {
			sugar.Fatalw("api_server_failed", "err", err)
		}
	}()

	// ---- TCP venue ----
	srv := venue.NewServer(engine, hub, sugar)
	if err := srv.Listen(cfg.Venue.ListenAddr); err != nil {
		sugar.Fatalw("listen_failed", "err", err)
	}

	sugar.Infow("venue_starting",
		"listen_addr", srv.Addr().String(),
		"api_addr", cfg.API.Addr,
		"mailbox_cap", cfg.Venue.MailboxCap,
		"broadcast_cap", cfg.Venue.BroadcastCap)

	if err := srv.Serve(ctx); err != nil {
		sugar.Fatalw("venue_failed", "err", err)
	}
	hub.Close()
	sugar.Info("venue_stopped")
}
