package domain

// Event is one push notification to connected clients. Data is
// marshalled to JSON by the transport adapter.
type Event struct {
	Command string `json:"command"`
	Data    any    `json:"data"`
}

// Broadcaster pushes game updates to connected clients. Group
// membership (who watches which game) is owned by the gateway.
type Broadcaster interface {
	// BroadcastGame sends an event to everyone watching a game.
	BroadcastGame(gameID string, event Event)

	// SendToUser sends an event to one connected user.
	SendToUser(userID int64, event Event)
}
