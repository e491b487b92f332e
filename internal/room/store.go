package room

import (
	"context"
	"errors"
)

// ErrNotFound is returned when an operation addresses a room with no
// active record.
var ErrNotFound = errors.New("room not found")

// ErrExists is returned when create-room addresses an identity that
// already has a live room.
var ErrExists = errors.New("room already exists")

// ErrRetired is returned when an operation reaches a coordinator the
// hub has already evicted. The caller must fetch a fresh coordinator
// for the room identity and retry.
var ErrRetired = errors.New("room coordinator retired")

// Store is the persistence adapter the coordinator snapshots through.
// All three operations are best-effort from the coordinator's point of
// view: errors are logged and swallowed because the in-memory copy
// stays authoritative for the life of the process.
//
// LoadRoom returns (nil, nil) when no snapshot exists.
type Store interface {
	SaveRoom(ctx context.Context, r *Room) error
	LoadRoom(ctx context.Context, id string) (*Room, error)
	DeleteRoom(ctx context.Context, id string) error
}
