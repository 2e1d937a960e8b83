package domain

import (
	"strings"
	"time"

	"github.com/samber/lo"
)

// StoryEntry is one accepted sentence. Immutable once appended.
type StoryEntry struct {
	Text       string `json:"text"`
	PlayerName string `json:"playerName"`
	Score      int    `json:"score"`
}

// Room represents one story session. Players are kept in join order, which
// is also the turn order. Story is append-only; Scores accumulates per
// contributor and is created lazily on first contribution.
//
// Room itself does no locking. All mutation goes through the owning
// session's serialization point.
type Room struct {
	Code      string         `json:"code"`
	Players   []string       `json:"players"`
	Story     []StoryEntry   `json:"story"`
	Scores    map[string]int `json:"scores"`
	TurnIndex int            `json:"turnIndex"`
	IsActive  bool           `json:"isActive"`
	CreatedAt time.Time      `json:"createdAt"`
}

// NewRoom creates a room with its creator as the first player.
func NewRoom(code, creatorName string) *Room {
	return &Room{
		Code:      code,
		Players:   []string{creatorName},
		Story:     make([]StoryEntry, 0),
		Scores:    make(map[string]int),
		TurnIndex: 0,
		IsActive:  true,
		CreatedAt: time.Now(),
	}
}

// Join adds a player to the room. Joining with a name already present is a
// no-op (idempotent repeat join); the bool reports whether the player was
// actually added.
func (r *Room) Join(playerName string) (bool, error) {
	if !r.IsActive {
		return false, ErrRoomInactive
	}

	playerName = strings.TrimSpace(playerName)
	if playerName == "" {
		return false, ErrEmptyPlayerName
	}

	if lo.Contains(r.Players, playerName) {
		return false, nil
	}

	r.Players = append(r.Players, playerName)
	return true, nil
}

// CurrentPlayer returns the name of the player whose turn it is.
func (r *Room) CurrentPlayer() string {
	if len(r.Players) == 0 {
		return ""
	}
	return r.Players[r.TurnIndex]
}

// RecordSentence appends an already-scored sentence to the story, adds the
// score to the contributor's total, and advances the turn.
func (r *Room) RecordSentence(playerName, text string, score int) (StoryEntry, error) {
	if !r.IsActive {
		return StoryEntry{}, ErrRoomInactive
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return StoryEntry{}, ErrEmptySentence
	}

	entry := StoryEntry{
		Text:       text,
		PlayerName: playerName,
		Score:      score,
	}

	r.Story = append(r.Story, entry)
	r.Scores[playerName] += score
	r.TurnIndex = (r.TurnIndex + 1) % len(r.Players)

	return entry, nil
}

// End transitions the room to its terminal state. Ending an already ended
// room fails; the terminal state is monotonic.
func (r *Room) End() error {
	if !r.IsActive {
		return ErrRoomInactive
	}
	r.IsActive = false
	return nil
}

// Snapshot returns a deep copy of the room. Used for persistence and for
// rolling a mutation back when its persistence write fails.
func (r *Room) Snapshot() *Room {
	clone := *r
	clone.Players = append([]string(nil), r.Players...)
	clone.Story = append([]StoryEntry(nil), r.Story...)
	clone.Scores = make(map[string]int, len(r.Scores))
	for name, score := range r.Scores {
		clone.Scores[name] = score
	}
	return &clone
}

// Restore overwrites the room with a previously taken snapshot.
func (r *Room) Restore(snapshot *Room) {
	*r = *snapshot.Snapshot()
}

// ScoresSnapshot returns a copy of the cumulative scores mapping.
func (r *Room) ScoresSnapshot() map[string]int {
	scores := make(map[string]int, len(r.Scores))
	for name, score := range r.Scores {
		scores[name] = score
	}
	return scores
}

// StorySnapshot returns a copy of the story sequence.
func (r *Room) StorySnapshot() []StoryEntry {
	return append([]StoryEntry(nil), r.Story...)
}
