package game

import "errors"

var (
	ErrPlayerNotFound = errors.New("player not found")
	ErrMapNotFound    = errors.New("map not found")
	ErrEntityNotFound = errors.New("entity not found")
)
