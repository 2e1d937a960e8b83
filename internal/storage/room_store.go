package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/dgraph-io/badger/v4"

	"storyweave/internal/domain"
)

// RoomStore is the durable mirror of room state. Save must complete before
// the corresponding event is broadcast.
type RoomStore interface {
	Save(ctx context.Context, room *domain.Room) error
	Get(ctx context.Context, code string) (*domain.Room, error)
}

// BadgerRoomStore persists room snapshots in BadgerDB as JSON under
// room:<code> keys.
type BadgerRoomStore struct {
	db     *badger.DB
	logger *slog.Logger
}

// NewBadgerRoomStore creates a store on an open Badger instance.
func NewBadgerRoomStore(db *badger.DB, logger *slog.Logger) *BadgerRoomStore {
	return &BadgerRoomStore{
		db:     db,
		logger: logger,
	}
}

func roomKey(code string) []byte {
	return []byte("room:" + code)
}

// Save writes the full room snapshot. The latest write wins; the caller
// serializes writes per room.
func (s *BadgerRoomStore) Save(ctx context.Context, room *domain.Room) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := json.Marshal(room)
	if err != nil {
		return fmt.Errorf("encoding room %s: %w", room.Code, err)
	}

	err = s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(roomKey(room.Code), data)
	})
	if err != nil {
		return fmt.Errorf("persisting room %s: %w", room.Code, err)
	}

	s.logger.Debug("room persisted", "roomCode", room.Code, "storyLen", len(room.Story))
	return nil
}

// Get loads a room snapshot by code.
func (s *BadgerRoomStore) Get(ctx context.Context, code string) (*domain.Room, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var room domain.Room
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(roomKey(code))
		if err != nil {
			return err
		}
		return item.Value(func(v []byte) error {
			return json.Unmarshal(v, &room)
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, domain.ErrRoomNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("loading room %s: %w", code, err)
	}

	return &room, nil
}
