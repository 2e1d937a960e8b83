package app

import (
	"context"
	"crypto/rand"
	"fmt"
	"log/slog"
	"sync"

	"storyweave/internal/domain"
	"storyweave/internal/scoring"
	"storyweave/internal/storage"
)

const (
	// DefaultRoomCodeLength is the default length for room codes
	DefaultRoomCodeLength = 6

	// maxCodeAttempts bounds room-code generation. Collisions are
	// vanishingly rare at 6 characters, but an unlucky streak must fail
	// instead of hanging.
	maxCodeAttempts = 10
)

// RoomCodeChars are characters used for room codes (no ambiguous chars)
const RoomCodeChars = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// RoomHub is the process-wide room registry: it owns creation and lookup of
// room sessions. It is injected into the transport handlers, never ambient.
// Ended rooms stay registered so their transcripts remain retrievable.
type RoomHub struct {
	sessions       map[string]*RoomSession
	mu             sync.RWMutex
	roomCodeLength int

	scorer scoring.Scorer
	store  storage.RoomStore
	opts   SessionOptions
	logger *slog.Logger
}

// NewRoomHub creates a new room hub.
func NewRoomHub(scorer scoring.Scorer, store storage.RoomStore, opts SessionOptions, codeLength int, logger *slog.Logger) *RoomHub {
	if codeLength <= 0 {
		codeLength = DefaultRoomCodeLength
	}

	return &RoomHub{
		sessions:       make(map[string]*RoomSession),
		roomCodeLength: codeLength,
		scorer:         scorer,
		store:          store,
		opts:           opts,
		logger:         logger,
	}
}

// CreateRoom allocates a fresh room code, creates the room with its creator
// as the first player, and persists it before the code is handed out.
func (h *RoomHub) CreateRoom(ctx context.Context, creatorName string) (*RoomSession, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	roomCode, err := h.allocateRoomCode()
	if err != nil {
		return nil, err
	}

	room := domain.NewRoom(roomCode, creatorName)

	if err := h.store.Save(ctx, room.Snapshot()); err != nil {
		return nil, fmt.Errorf("persisting new room: %w", err)
	}

	session := NewRoomSession(room, h.scorer, h.store, h.opts, h.logger)
	h.sessions[roomCode] = session

	h.logger.Info("room created", "roomCode", roomCode, "creator", creatorName)

	return session, nil
}

// GetSession returns a room session by code.
func (h *RoomHub) GetSession(roomCode string) (*RoomSession, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	session, ok := h.sessions[roomCode]
	if !ok {
		return nil, domain.ErrRoomNotFound
	}

	return session, nil
}

// Transcript returns the story and scores for a room, falling back to the
// durable store for rooms that predate the current process.
func (h *RoomHub) Transcript(ctx context.Context, roomCode string) (*domain.Room, error) {
	session, err := h.GetSession(roomCode)
	if err == nil {
		return session.RoomSnapshot(), nil
	}

	return h.store.Get(ctx, roomCode)
}

// GetSessionCount returns the number of registered rooms.
func (h *RoomHub) GetSessionCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.sessions)
}

// GetTotalPlayerCount returns the total number of players across all rooms.
func (h *RoomHub) GetTotalPlayerCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	total := 0
	for _, session := range h.sessions {
		total += session.GetPlayerCount()
	}
	return total
}

// Close shuts down the hub and all sessions.
func (h *RoomHub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, session := range h.sessions {
		session.Close()
	}
	h.sessions = make(map[string]*RoomSession)
}

// allocateRoomCode generates a random code, retrying a bounded number of
// times on collision. Caller holds the hub lock.
func (h *RoomHub) allocateRoomCode() (string, error) {
	for attempts := 0; attempts < maxCodeAttempts; attempts++ {
		roomCode := h.generateRoomCode()
		if _, exists := h.sessions[roomCode]; !exists {
			return roomCode, nil
		}
	}

	return "", domain.ErrGenerationExhausted
}

// generateRoomCode generates a random room code
func (h *RoomHub) generateRoomCode() string {
	b := make([]byte, h.roomCodeLength)
	rand.Read(b)

	code := make([]byte, h.roomCodeLength)
	for i := range code {
		code[i] = RoomCodeChars[int(b[i])%len(RoomCodeChars)]
	}

	return string(code)
}
