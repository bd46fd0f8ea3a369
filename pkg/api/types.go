package api

// HealthResponse reports process liveness.
type HealthResponse struct {
	Status      string `json:"status"`
	Connections int    `json:"connections"`
}

// PositionInfo is one commodity's net interest: cumulative buys minus
// cumulative sells still unmatched.
type PositionInfo struct {
	Commodity string `json:"commodity"`
	Net       int64  `json:"net"`
}

// TradeMessage is pushed to websocket clients on every crossing.
type TradeMessage struct {
	Channel   string `json:"channel"`
	Commodity string `json:"commodity"`
	Timestamp int64  `json:"ts"`
}
