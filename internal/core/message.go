package core

import "time"

// Message is the domain model for a chat message.
type Message struct {
	ID        int64
	Room      string
	Sender    string
	Text      string
	CreatedAt time.Time
}
