package core

// CommandKind describes what the client wants to do.
type CommandKind int

const (
	// CommandJoinRoom subscribes the client to a room, leaving its current one.
	CommandJoinRoom CommandKind = iota
	// CommandLeaveRoom unsubscribes the client from a room.
	CommandLeaveRoom
	// CommandSendMessage delivers a chat message to room participants.
	CommandSendMessage
	// CommandHistory requests the persisted history of a room.
	CommandHistory
)

// Command represents an action requested by a client.
type Command struct {
	Kind CommandKind
	Room string
	Text string
}
