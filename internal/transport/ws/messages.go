package ws

import "time"

// MessageType represents the type of WebSocket message
type MessageType string

// Client → Server message types
const (
	MsgJoinRoom       MessageType = "join-room"
	MsgSubmitSentence MessageType = "submit-sentence"
	MsgEndGame        MessageType = "end-game"
	MsgPing           MessageType = "ping"
)

// Server → Client message types. Room events (player-joined, new-sentence,
// game-ended) are broadcast as domain.RoomEvent; these cover the
// per-connection replies.
const (
	MsgConnected MessageType = "connected"
	MsgJoined    MessageType = "joined"
	MsgError     MessageType = "error"
	MsgPong      MessageType = "pong"
)

// ClientMessage represents a message from client to server. Every room
// action names its room; the connection itself is not bound to a room until
// join-room is accepted.
type ClientMessage struct {
	Type    MessageType `json:"type"`
	Payload interface{} `json:"payload,omitempty"`
}

// ServerMessage represents a direct reply from server to one client
type ServerMessage struct {
	Type      MessageType `json:"type"`
	Payload   interface{} `json:"payload,omitempty"`
	Timestamp string      `json:"timestamp"`
}

// NewServerMessage creates a new server message with current timestamp
func NewServerMessage(msgType MessageType, payload interface{}) *ServerMessage {
	return &ServerMessage{
		Type:      msgType,
		Payload:   payload,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
}

// Client message payloads

// JoinRoomPayload is the payload for join-room
type JoinRoomPayload struct {
	RoomCode   string `json:"roomCode"`
	PlayerName string `json:"playerName"`
}

// SubmitSentencePayload is the payload for submit-sentence
type SubmitSentencePayload struct {
	RoomCode   string `json:"roomCode"`
	Sentence   string `json:"sentence"`
	PlayerName string `json:"playerName"`
}

// EndGamePayload is the payload for end-game
type EndGamePayload struct {
	RoomCode string `json:"roomCode"`
}

// Server message payloads

// ConnectedPayload is sent once after the websocket upgrade
type ConnectedPayload struct {
	ConnID string `json:"connId"`
}

// JoinedPayload confirms a join-room to the acting connection only; the
// rest of the room gets the player-joined broadcast instead.
type JoinedPayload struct {
	RoomCode string         `json:"roomCode"`
	Players  []string       `json:"players"`
	Scores   map[string]int `json:"scores"`
}

// ErrorPayload is the payload for error messages
type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error codes
const (
	ErrCodeInvalidMessage = "INVALID_MESSAGE"
	ErrCodeRoomNotFound   = "ROOM_NOT_FOUND"
	ErrCodeRoomInactive   = "ROOM_INACTIVE"
	ErrCodeNotYourTurn    = "NOT_YOUR_TURN"
	ErrCodeEmptySentence  = "EMPTY_SENTENCE"
	ErrCodeInternalError  = "INTERNAL_ERROR"
)
