package core

import "time"

// EventKind is a notification the core emits to clients.
type EventKind int

const (
	// EventChatMessage notifies room members about a persisted chat message.
	EventChatMessage EventKind = iota
	// EventSystemNotice notifies room members about a membership change.
	// Notices are transient and never persisted.
	EventSystemNotice
	// EventRoomJoined confirms a join to the joining client alone.
	EventRoomJoined
	// EventHistory delivers message history to a single client.
	EventHistory
	// EventRoomCreated notifies every connected client about a new room.
	EventRoomCreated
	// EventRoomDeleted notifies every connected client that a room is gone.
	EventRoomDeleted
	// EventError notifies a client about a domain error.
	EventError
)

// RoomInfo describes a room in directory-change events.
type RoomInfo struct {
	ID        string
	Name      string
	CreatedAt time.Time
}

// Event is sent to clients to describe what happened in the system.
type Event struct {
	Kind     EventKind
	Room     string
	Content  string // system notice text
	Message  Message
	Messages []Message // for EventHistory
	RoomInfo *RoomInfo // for EventRoomCreated
	Error    *CoreError
}

func systemNotice(room, content string) *Event {
	return &Event{Kind: EventSystemNotice, Room: room, Content: content}
}
