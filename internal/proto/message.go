package proto

import "encoding/json"

// Inbound is the envelope for messages coming from the client.
type Inbound struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

const (
	InboundTypeJoin    = "join"
	InboundTypeLeave   = "leave"
	InboundTypeMsg     = "msg"
	InboundTypeHistory = "history"

	OutboundTypeEvent = "event"
	OutboundTypeError = "error"

	// Message kinds inside the "message" event payload.
	MessageKindChat   = "chat"
	MessageKindSystem = "system"
)

// JoinData requests to join a specific room. The same shape serves leave and
// history requests.
type JoinData struct {
	Room string `json:"room"`
}

// MsgData is a chat message from the client.
type MsgData struct {
	Room string `json:"room"`
	Text string `json:"text"`
}

// Outbound is the envelope for messages sent to the client.
type Outbound struct {
	Type  string `json:"type"`
	Event string `json:"event,omitempty"`
	Data  any    `json:"data,omitempty"`
	Error *Error `json:"error,omitempty"`
}

// EventMessage carries both chat messages and transient system notices;
// Kind distinguishes them. System notices have no sender and no id.
type EventMessage struct {
	Kind    string `json:"kind"`
	ID      int64  `json:"id,omitempty"`
	Room    string `json:"room"`
	Sender  string `json:"sender,omitempty"`
	Content string `json:"content"`
	TS      int64  `json:"ts,omitempty"`
}

// EventRoomJoined confirms a join to the joining client.
type EventRoomJoined struct {
	Room string `json:"room"`
}

// EventHistory delivers persisted messages, oldest first.
type EventHistory struct {
	Room     string         `json:"room"`
	Messages []EventMessage `json:"messages"`
}

// EventRoomCreated announces a new room to all clients.
type EventRoomCreated struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	CreatedAt string `json:"created_at"`
}

// EventRoomDeleted announces a deleted room to all clients.
type EventRoomDeleted struct {
	ID string `json:"id"`
}

// Error describes a protocol-level error response.
type Error struct {
	Code string `json:"code"`
	Msg  string `json:"msg"`
}
