package model

import "errors"

// Common errors used across the application
var (
	// Room errors
	ErrRoomNotFound  = errors.New("room not found")
	ErrRoomFull      = errors.New("room is full")
	ErrRoomStarted   = errors.New("room has already started")
	ErrNotInRoom     = errors.New("player is not in a room")
	ErrAlreadyInRoom = errors.New("player is already in a room")

	// Game errors
	ErrNoActiveGame   = errors.New("no active game")
	ErrLengthMismatch = errors.New("guess and secret lengths differ")

	// Dictionary errors
	ErrNoWords = errors.New("no words available")

	// Records errors
	ErrStatsNotFound = errors.New("player stats not found")

	// Protocol errors
	ErrInvalidPayload   = errors.New("invalid payload")
	ErrUnknownMessage   = errors.New("unknown message type")
	ErrServerFull       = errors.New("server is at capacity")
	ErrConnectionClosed = errors.New("connection closed")
)
