package domain

import "errors"

// Domain errors
var (
	ErrRoomNotFound        = errors.New("room not found")
	ErrRoomInactive        = errors.New("room is no longer active")
	ErrGenerationExhausted = errors.New("could not allocate a free room code")
	ErrEmptySentence       = errors.New("sentence cannot be empty")
	ErrEmptyPlayerName     = errors.New("player name cannot be empty")
	ErrNotYourTurn         = errors.New("not your turn to submit")
)
