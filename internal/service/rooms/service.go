// Package rooms implements the room directory: the authoritative set of chat
// rooms, with directory changes announced to every connected client.
package rooms

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/launchstack/chatroom-server/internal/store"
)

var (
	// ErrInvalidName is returned for empty or oversized room names.
	ErrInvalidName = errors.New("invalid room name")
	// ErrDuplicate is returned when a room with the same normalized name exists.
	ErrDuplicate = errors.New("room already exists")
	// ErrNotFound is returned when a room id does not exist.
	ErrNotFound = errors.New("room not found")
)

const maxNameLength = 64

// Broadcaster announces directory changes to connected clients. Deletion
// implies evicting any current members of the room. Implemented by core.Hub.
type Broadcaster interface {
	RoomCreated(room *store.Room)
	RoomDeleted(roomID string)
}

// Service provides room directory operations. Any authenticated identity may
// perform any of them; rooms have no owner.
type Service struct {
	store  store.Store
	notify Broadcaster
	log    *zerolog.Logger
}

// NewService creates a room directory service.
func NewService(st store.Store, notify Broadcaster, logger *zerolog.Logger) *Service {
	return &Service{
		store:  st,
		notify: notify,
		log:    logger,
	}
}

// Create persists a new room under the lowercased name and announces it to
// all connected clients. Names are unique case-insensitively.
func (s *Service) Create(ctx context.Context, name string) (*store.Room, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" || len(name) > maxNameLength {
		return nil, ErrInvalidName
	}

	room, err := s.store.CreateRoom(ctx, name)
	if err != nil {
		if errors.Is(err, store.ErrRoomExists) {
			return nil, ErrDuplicate
		}
		return nil, fmt.Errorf("create room: %w", err)
	}

	s.notify.RoomCreated(room)

	s.log.Info().Str("room_id", room.ID).Str("room_name", room.Name).Msg("room created")
	return room, nil
}

// List returns all rooms. Callers must not rely on the order.
func (s *Service) List(ctx context.Context) ([]*store.Room, error) {
	rooms, err := s.store.ListRooms(ctx)
	if err != nil {
		return nil, fmt.Errorf("list rooms: %w", err)
	}
	return rooms, nil
}

// Delete removes a room and all of its persisted messages, then announces
// the deletion to all connected clients and evicts any current members.
func (s *Service) Delete(ctx context.Context, id string) error {
	if _, err := s.store.GetRoomByID(ctx, id); err != nil {
		if errors.Is(err, store.ErrRoomNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("look up room: %w", err)
	}

	// Messages go first so a crash in between leaves no orphaned history.
	if err := s.store.DeleteRoomMessages(ctx, id); err != nil {
		return fmt.Errorf("delete room messages: %w", err)
	}
	if err := s.store.DeleteRoom(ctx, id); err != nil {
		if errors.Is(err, store.ErrRoomNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("delete room: %w", err)
	}

	s.notify.RoomDeleted(id)

	s.log.Info().Str("room_id", id).Msg("room deleted")
	return nil
}
