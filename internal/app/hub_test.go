package app

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"storyweave/internal/domain"
)

func newTestHub(t *testing.T, store *fakeStore) *RoomHub {
	t.Helper()
	hub := NewRoomHub(&fakeScorer{}, store, SessionOptions{ScoringTimeout: time.Second}, DefaultRoomCodeLength, testLogger())
	t.Cleanup(hub.Close)
	return hub
}

func TestHub_CreateRoom(t *testing.T) {
	req := require.New(t)
	store := newFakeStore()
	hub := newTestHub(t, store)

	session, err := hub.CreateRoom(context.Background(), "Alice")
	req.NoError(err)

	// The code is short, shareable and drawn from the unambiguous charset
	code := session.GetRoomCode()
	req.Len(code, DefaultRoomCodeLength)
	for _, c := range code {
		req.Contains(RoomCodeChars, string(c))
	}

	// The creator is the first player and the room is live
	snapshot := session.RoomSnapshot()
	req.Equal([]string{"Alice"}, snapshot.Players)
	req.Zero(snapshot.TurnIndex)
	req.True(snapshot.IsActive)

	// The room was persisted before the code was handed out
	req.NotNil(store.saved(code))
}

func TestHub_CreateRoom_CodesAreUnique(t *testing.T) {
	req := require.New(t)
	hub := newTestHub(t, newFakeStore())

	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		session, err := hub.CreateRoom(context.Background(), "Alice")
		req.NoError(err)
		req.False(seen[session.GetRoomCode()])
		seen[session.GetRoomCode()] = true
	}
}

func TestHub_CreateRoom_PersistFailure(t *testing.T) {
	req := require.New(t)
	store := newFakeStore()
	hub := newTestHub(t, store)

	store.setFail(true)

	_, err := hub.CreateRoom(context.Background(), "Alice")
	req.Error(err)
	req.Zero(hub.GetSessionCount())
}

func TestHub_GetSession(t *testing.T) {
	req := require.New(t)
	hub := newTestHub(t, newFakeStore())

	session, err := hub.CreateRoom(context.Background(), "Alice")
	req.NoError(err)

	found, err := hub.GetSession(session.GetRoomCode())
	req.NoError(err)
	req.Same(session, found)

	_, err = hub.GetSession("NOPE42")
	req.ErrorIs(err, domain.ErrRoomNotFound)
}

func TestHub_EndedRoomsStayRegistered(t *testing.T) {
	req := require.New(t)
	hub := newTestHub(t, newFakeStore())

	session, err := hub.CreateRoom(context.Background(), "Alice")
	req.NoError(err)
	req.NoError(session.EndGame(context.Background()))

	// Ended rooms remain retrievable for their transcript
	found, err := hub.GetSession(session.GetRoomCode())
	req.NoError(err)
	req.False(found.IsActive())
	req.Equal(1, hub.GetSessionCount())
}

func TestHub_Transcript_FallsBackToStore(t *testing.T) {
	req := require.New(t)
	store := newFakeStore()
	hub := newTestHub(t, store)

	// A room persisted by an earlier process is not in the registry
	old := domain.NewRoom("OLD123", "Alice")
	old.RecordSentence("Alice", "From before the restart.", 70)
	old.End()
	req.NoError(store.Save(context.Background(), old))

	room, err := hub.Transcript(context.Background(), "OLD123")
	req.NoError(err)
	req.Len(room.Story, 1)
	req.Equal(map[string]int{"Alice": 70}, room.Scores)

	_, err = hub.Transcript(context.Background(), "NOPE42")
	req.ErrorIs(err, domain.ErrRoomNotFound)
}

func TestHub_Counts(t *testing.T) {
	req := require.New(t)
	hub := newTestHub(t, newFakeStore())

	one, err := hub.CreateRoom(context.Background(), "Alice")
	req.NoError(err)
	_, err = hub.CreateRoom(context.Background(), "Carol")
	req.NoError(err)

	req.NoError(one.Join(context.Background(), "Bob", ""))

	req.Equal(2, hub.GetSessionCount())
	req.Equal(3, hub.GetTotalPlayerCount())
}
