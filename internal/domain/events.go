package domain

import "time"

// EventType represents the type of room event
type EventType string

const (
	EventPlayerJoined EventType = "player-joined"
	EventNewSentence  EventType = "new-sentence"
	EventGameEnded    EventType = "game-ended"
	EventError        EventType = "error"
)

// RoomEvent is a state change announced to a room's subscribers. Events are
// queued in the order their actions were accepted, so every subscriber of a
// room observes the same sequence.
type RoomEvent struct {
	Type      EventType   `json:"type"`
	RoomCode  string      `json:"roomCode"`
	Payload   interface{} `json:"payload,omitempty"`
	Timestamp time.Time   `json:"timestamp"`

	// ExcludeConnID names a connection the event must not be delivered to.
	// Used for player-joined, which goes to everyone but the joiner.
	ExcludeConnID string `json:"-"`
}

// NewEvent creates a room event delivered to every subscriber.
func NewEvent(eventType EventType, roomCode string, payload interface{}) *RoomEvent {
	return &RoomEvent{
		Type:      eventType,
		RoomCode:  roomCode,
		Payload:   payload,
		Timestamp: time.Now(),
	}
}

// NewEventExcluding creates a room event delivered to every subscriber
// except the named connection.
func NewEventExcluding(eventType EventType, roomCode, excludeConnID string, payload interface{}) *RoomEvent {
	event := NewEvent(eventType, roomCode, payload)
	event.ExcludeConnID = excludeConnID
	return event
}

// Payload types for the outbound events

// PlayerJoinedPayload is sent to the rest of the room when a player joins.
type PlayerJoinedPayload struct {
	PlayerName string `json:"playerName"`
}

// NewSentencePayload is sent to the whole room after a sentence is accepted
// and persisted. Scores carries the full updated cumulative mapping.
type NewSentencePayload struct {
	Sentence   string         `json:"sentence"`
	PlayerName string         `json:"playerName"`
	Score      int            `json:"score"`
	Scores     map[string]int `json:"scores"`
}

// GameEndedPayload is sent to the whole room when the game ends.
type GameEndedPayload struct {
	Story  []StoryEntry   `json:"story"`
	Scores map[string]int `json:"scores"`
}

// ErrorPayload reports a failed action back to the acting connection only.
type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
