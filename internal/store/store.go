package store

import (
	"context"
	"errors"
	"time"
)

// Sentinel errors returned by Store implementations.
var (
	ErrRoomNotFound = errors.New("room not found")
	ErrRoomExists   = errors.New("room already exists")
	ErrUserNotFound = errors.New("user not found")
	ErrUserExists   = errors.New("user already exists")
)

// User represents a registered account.
type User struct {
	ID           int64
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}

// Room represents a chat room. Names are stored lowercased and are unique
// case-insensitively.
type Room struct {
	ID        string
	Name      string
	CreatedAt time.Time
}

// Message represents a persisted chat message. Messages are immutable once
// written and are only removed as part of deleting their room.
type Message struct {
	ID        int64
	RoomID    string
	Sender    string
	Body      string
	CreatedAt time.Time
}

// UserStore handles account persistence.
type UserStore interface {
	// CreateUser creates a new user. Returns ErrUserExists when the email
	// is already registered.
	CreateUser(ctx context.Context, email, passwordHash string) (*User, error)

	// GetUserByEmail retrieves a user by email. Returns ErrUserNotFound
	// when no such user exists.
	GetUserByEmail(ctx context.Context, email string) (*User, error)
}

// RoomStore handles room persistence.
type RoomStore interface {
	// CreateRoom creates a new room with a fresh id. Returns ErrRoomExists
	// when a room with the same name already exists (case-insensitive).
	CreateRoom(ctx context.Context, name string) (*Room, error)

	// GetRoomByID retrieves a room by id. Returns ErrRoomNotFound when no
	// such room exists.
	GetRoomByID(ctx context.Context, id string) (*Room, error)

	// ListRooms lists all rooms.
	ListRooms(ctx context.Context) ([]*Room, error)

	// DeleteRoom deletes a room record. Returns ErrRoomNotFound when no
	// such room exists. Does not touch the room's messages; callers delete
	// those first via DeleteRoomMessages.
	DeleteRoom(ctx context.Context, id string) error
}

// MessageStore handles message persistence.
type MessageStore interface {
	// SaveMessage persists a message and sets its ID on success.
	SaveMessage(ctx context.Context, msg *Message) error

	// ListMessages returns the `limit` most recent messages of a room in
	// ascending timestamp order.
	ListMessages(ctx context.Context, roomID string, limit int) ([]*Message, error)

	// DeleteRoomMessages removes every message of a room.
	DeleteRoomMessages(ctx context.Context, roomID string) error
}

// Store aggregates all storage interfaces.
type Store interface {
	UserStore
	RoomStore
	MessageStore

	// Close closes the underlying database connection.
	Close() error
}
