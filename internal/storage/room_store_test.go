package storage

import (
	"context"
	"log/slog"
	"testing"

	"github.com/dgraph-io/badger/v4"
	"github.com/stretchr/testify/require"

	"storyweave/internal/domain"
)

// setupTestDB initializes a temporary Badger instance for testing
func setupTestDB(t *testing.T) *badger.DB {
	t.Helper()
	opts := badger.DefaultOptions("").WithInMemory(true).WithLogger(nil)
	db, err := badger.Open(opts)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(discard{}, &slog.HandlerOptions{Level: slog.LevelError}))
}

type discard struct{}

func (discard) Write(p []byte) (int, error) { return len(p), nil }

func TestBadgerRoomStore_SaveAndGet(t *testing.T) {
	req := require.New(t)
	store := NewBadgerRoomStore(setupTestDB(t), testLogger())

	room := domain.NewRoom("ABC123", "Alice")
	room.Join("Bob")
	room.RecordSentence("Bob", "The cat sat.", 100)

	req.NoError(store.Save(context.Background(), room))

	loaded, err := store.Get(context.Background(), "ABC123")
	req.NoError(err)
	req.Equal(room.Code, loaded.Code)
	req.Equal(room.Players, loaded.Players)
	req.Equal(room.Story, loaded.Story)
	req.Equal(room.Scores, loaded.Scores)
	req.Equal(room.TurnIndex, loaded.TurnIndex)
	req.True(loaded.IsActive)
}

func TestBadgerRoomStore_GetUnknownRoom(t *testing.T) {
	req := require.New(t)
	store := NewBadgerRoomStore(setupTestDB(t), testLogger())

	_, err := store.Get(context.Background(), "NOPE42")
	req.ErrorIs(err, domain.ErrRoomNotFound)
}

func TestBadgerRoomStore_LatestWriteWins(t *testing.T) {
	req := require.New(t)
	store := NewBadgerRoomStore(setupTestDB(t), testLogger())

	room := domain.NewRoom("ABC123", "Alice")
	req.NoError(store.Save(context.Background(), room))

	room.RecordSentence("Alice", "The dog ran.", 70)
	room.End()
	req.NoError(store.Save(context.Background(), room))

	loaded, err := store.Get(context.Background(), "ABC123")
	req.NoError(err)
	req.Len(loaded.Story, 1)
	req.False(loaded.IsActive)
}

func TestBadgerRoomStore_CancelledContext(t *testing.T) {
	req := require.New(t)
	store := NewBadgerRoomStore(setupTestDB(t), testLogger())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	req.Error(store.Save(ctx, domain.NewRoom("ABC123", "Alice")))
	_, err := store.Get(ctx, "ABC123")
	req.Error(err)
}
