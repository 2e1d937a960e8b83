package app

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"storyweave/internal/domain"
	"storyweave/internal/scoring"
	"storyweave/internal/storage"
)

// ClientConnection represents a connected client subscribed to a room.
type ClientConnection interface {
	Send(message interface{}) error
	GetConnID() string
	Close() error
}

// SessionOptions are the per-room policy knobs.
type SessionOptions struct {
	// EnforceTurnOrder rejects submissions from anyone but the current
	// player. Off by default: the game historically lets any player
	// submit and only the turn marker advances.
	EnforceTurnOrder bool

	// ScoringTimeout bounds the grammar check call. On timeout the
	// fallback score is used and the turn proceeds.
	ScoringTimeout time.Duration
}

// RoomSession owns one room's state and serializes every mutation through a
// single mutex, held across the scoring call and the persistence write so
// two submissions can never interleave. State changes are persisted before
// they are queued for broadcast, and the queue preserves acceptance order
// for every subscriber.
type RoomSession struct {
	room *domain.Room
	mu   sync.Mutex

	clients   map[string]ClientConnection // connID -> client
	clientsMu sync.RWMutex

	scorer scoring.Scorer
	store  storage.RoomStore
	opts   SessionOptions
	logger *slog.Logger

	events chan *domain.RoomEvent
	done   chan struct{}
}

// NewRoomSession creates a session around an existing room and starts its
// broadcast loop.
func NewRoomSession(room *domain.Room, scorer scoring.Scorer, store storage.RoomStore, opts SessionOptions, logger *slog.Logger) *RoomSession {
	session := &RoomSession{
		room:    room,
		clients: make(map[string]ClientConnection),
		scorer:  scorer,
		store:   store,
		opts:    opts,
		logger:  logger,
		events:  make(chan *domain.RoomEvent, 100),
		done:    make(chan struct{}),
	}

	go session.eventLoop()

	return session
}

// GetRoomCode returns the room code.
func (s *RoomSession) GetRoomCode() string {
	return s.room.Code
}

// GetCreatedAt returns when the room was created.
func (s *RoomSession) GetCreatedAt() time.Time {
	return s.room.CreatedAt
}

// GetPlayerCount returns the number of players in the room.
func (s *RoomSession) GetPlayerCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.room.Players)
}

// IsActive reports whether the room still accepts submissions.
func (s *RoomSession) IsActive() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.room.IsActive
}

// RoomSnapshot returns a consistent copy of the room state.
func (s *RoomSession) RoomSnapshot() *domain.Room {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.room.Snapshot()
}

// RegisterClient subscribes a connection to this room's events.
func (s *RoomSession) RegisterClient(client ClientConnection) {
	s.clientsMu.Lock()
	defer s.clientsMu.Unlock()
	s.clients[client.GetConnID()] = client
}

// UnregisterClient removes a connection.
func (s *RoomSession) UnregisterClient(connID string) {
	s.clientsMu.Lock()
	defer s.clientsMu.Unlock()
	delete(s.clients, connID)
}

// Join adds a player to the room. Joining with a name already present is a
// no-op. excludeConnID names the joiner's own connection so the
// player-joined announcement reaches everyone else; pass "" when the join
// arrives over REST with no live connection.
func (s *RoomSession) Join(ctx context.Context, playerName, excludeConnID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	before := s.room.Snapshot()

	joined, err := s.room.Join(playerName)
	if err != nil {
		return err
	}
	if !joined {
		// Repeat join by the same name: nothing changed, nothing to
		// persist or announce.
		return nil
	}

	if err := s.store.Save(ctx, s.room.Snapshot()); err != nil {
		s.room.Restore(before)
		return fmt.Errorf("persisting join: %w", err)
	}

	s.queueEvent(domain.NewEventExcluding(domain.EventPlayerJoined, s.room.Code, excludeConnID, &domain.PlayerJoinedPayload{
		PlayerName: playerName,
	}))

	s.logger.Info("player joined", "roomCode", s.room.Code, "playerName", playerName)

	return nil
}

// SubmitSentence grades and records one sentence. The session mutex stays
// held through the scoring call and the persistence write: at most one
// mutating action per room at a time, the rest queue on the lock.
func (s *RoomSession) SubmitSentence(ctx context.Context, playerName, sentence string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.room.IsActive {
		return domain.ErrRoomInactive
	}
	if s.opts.EnforceTurnOrder && s.room.CurrentPlayer() != playerName {
		return domain.ErrNotYourTurn
	}

	score := s.scoreSentence(ctx, sentence)

	before := s.room.Snapshot()

	entry, err := s.room.RecordSentence(playerName, sentence, score)
	if err != nil {
		return err
	}

	if err := s.store.Save(ctx, s.room.Snapshot()); err != nil {
		s.room.Restore(before)
		return fmt.Errorf("persisting sentence: %w", err)
	}

	s.queueEvent(domain.NewEvent(domain.EventNewSentence, s.room.Code, &domain.NewSentencePayload{
		Sentence:   entry.Text,
		PlayerName: entry.PlayerName,
		Score:      entry.Score,
		Scores:     s.room.ScoresSnapshot(),
	}))

	s.logger.Info("sentence accepted",
		"roomCode", s.room.Code,
		"playerName", playerName,
		"score", score,
		"storyLen", len(s.room.Story),
	)

	return nil
}

// scoreSentence calls the grammar checker with a bounded timeout. Scoring
// failures never abort the turn; the neutral fallback score is substituted.
func (s *RoomSession) scoreSentence(ctx context.Context, sentence string) int {
	scoreCtx, cancel := context.WithTimeout(ctx, s.opts.ScoringTimeout)
	defer cancel()

	score, err := s.scorer.Score(scoreCtx, sentence)
	if err != nil {
		s.logger.Warn("grammar check failed, using fallback score",
			"roomCode", s.room.Code,
			"error", err,
		)
		return scoring.FallbackScore
	}

	return score
}

// EndGame transitions the room to its terminal state. No submission is
// accepted afterward.
func (s *RoomSession) EndGame(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	before := s.room.Snapshot()

	if err := s.room.End(); err != nil {
		return err
	}

	if err := s.store.Save(ctx, s.room.Snapshot()); err != nil {
		s.room.Restore(before)
		return fmt.Errorf("persisting end of game: %w", err)
	}

	s.queueEvent(domain.NewEvent(domain.EventGameEnded, s.room.Code, &domain.GameEndedPayload{
		Story:  s.room.StorySnapshot(),
		Scores: s.room.ScoresSnapshot(),
	}))

	s.logger.Info("game ended", "roomCode", s.room.Code, "storyLen", len(s.room.Story))

	return nil
}

// queueEvent adds an event to the broadcast queue. Callers hold the session
// mutex, so queue order matches acceptance order.
func (s *RoomSession) queueEvent(event *domain.RoomEvent) {
	select {
	case s.events <- event:
	default:
		s.logger.Warn("event queue full, dropping event", "type", event.Type, "roomCode", s.room.Code)
	}
}

// eventLoop drains the queue and fans events out to subscribers.
func (s *RoomSession) eventLoop() {
	for {
		select {
		case <-s.done:
			return
		case event := <-s.events:
			s.broadcastEvent(event)
		}
	}
}

// broadcastEvent delivers an event to every subscriber, minus the excluded
// connection if any. Delivery is best-effort: a slow client drops messages
// rather than holding up the rest of the room.
func (s *RoomSession) broadcastEvent(event *domain.RoomEvent) {
	s.clientsMu.RLock()
	defer s.clientsMu.RUnlock()

	for connID, client := range s.clients {
		if event.ExcludeConnID != "" && connID == event.ExcludeConnID {
			continue
		}
		if err := client.Send(event); err != nil {
			s.logger.Debug("failed to send to client", "connID", connID, "error", err)
		}
	}
}

// Close shuts down the session and its client connections.
func (s *RoomSession) Close() {
	select {
	case <-s.done:
		return // Already closed
	default:
		close(s.done)
	}

	s.clientsMu.Lock()
	for _, client := range s.clients {
		client.Close()
	}
	s.clients = make(map[string]ClientConnection)
	s.clientsMu.Unlock()
}
