package session

import "errors"

var (
	// ErrNoSpawn means every spawn candidate refused the new player.
	ErrNoSpawn = errors.New("no free spawn point")

	// ErrKicked ends a session that was idle for too long.
	ErrKicked = errors.New("kicked for inactivity")

	ErrInvalidName  = errors.New("invalid name")
	ErrTooManyTries = errors.New("too many tries")
)
