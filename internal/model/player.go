package model

// Conn is the part of a WebSocket connection a game writes to.
// *websocket.Conn from gofiber/websocket satisfies it.
type Conn interface {
	WriteJSON(v interface{}) error
	WriteMessage(messageType int, data []byte) error
	Close() error
}

type Player struct {
	ID string
}

type ClientPlayer struct {
	ID       string `json:"name"`
	Color    Color  `json:"color"`
	TimeLeft int64  `json:"timeLeft"` // milliseconds, 0 when untimed
}
