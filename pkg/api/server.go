// Package api serves the read-only REST/WebSocket sidecar: engine
// position snapshots, prometheus metrics, and a websocket mirror of the
// trade broadcast. All order flow goes through the TCP line protocol;
// nothing here mutates venue state.
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"sort"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	"go.uber.org/zap"

	"github.com/uhyunpark/marketline/pkg/venue"
	"github.com/uhyunpark/marketline/pkg/wire"
)

// Server handles REST API and WebSocket connections.
type Server struct {
	engine *venue.Engine
	trades *venue.TradeHub
	router *mux.Router
	hub    *Hub
	log    *zap.SugaredLogger
}

func NewServer(engine *venue.Engine, trades *venue.TradeHub, log *zap.SugaredLogger) *Server {
	s := &Server{
		engine: engine,
		trades: trades,
		router: mux.NewRouter(),
		hub:    NewHub(log),
		log:    log,
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	api := s.router.PathPrefix("/api/v1").Subrouter()
	api.HandleFunc("/commodities", s.handleGetCommodities).Methods("GET")
	api.HandleFunc("/positions", s.handleGetPositions).Methods("GET")

	s.router.HandleFunc("/ws", s.handleWebSocket)
	s.router.Handle("/metrics", promhttp.Handler()).Methods("GET")
	s.router.HandleFunc("/health", s.handleHealth).Methods("GET")
}

// Start runs the websocket hub, the trade pump, and the HTTP listener.
// Blocks until the listener fails.
func (s *Server) Start(ctx context.Context, addr string) error {
	go s.hub.Run(ctx)
	go s.pumpTrades(ctx)

	c := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type"},
	})

	s.log.Infow("api_server_starting", "addr", addr)
	return http.ListenAndServe(addr, c.Handler(s.router))
}

// pumpTrades mirrors the venue's trade broadcast onto websocket clients.
// The subscription is lossy like any other subscriber's; drops are
// logged and never stall the engine.
func (s *Server) pumpTrades(ctx context.Context) {
	sub := s.trades.Subscribe()
	defer s.trades.Unsubscribe(sub)

	for {
		select {
		case <-ctx.Done():
			return
		case c, ok := <-sub.Events():
			if !ok {
				return
			}
			if n := sub.Lagged(); n > 0 {
				s.log.Warnw("ws_feed_lagged", "dropped", n)
			}
			s.hub.Broadcast(TradeMessage{
				Channel:   "trades",
				Commodity: c.String(),
				Timestamp: time.Now().UnixMilli(),
			})
		}
	}
}

// ==============================
// REST Handlers
// ==============================

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Status:      "ok",
		Connections: s.hub.Len(),
	})
}

func (s *Server) handleGetCommodities(w http.ResponseWriter, r *http.Request) {
	out := make([]string, 0, len(wire.Commodities))
	for _, c := range wire.Commodities {
		out = append(out, c.String())
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleGetPositions(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	pos, err := s.engine.Positions(ctx)
	if err != nil {
		http.Error(w, "engine unavailable", http.StatusServiceUnavailable)
		return
	}

	out := make([]PositionInfo, 0, len(pos))
	for c, n := range pos {
		out = append(out, PositionInfo{Commodity: c.String(), Net: n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Commodity < out[j].Commodity })
	writeJSON(w, http.StatusOK, out)
}

func writeJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
