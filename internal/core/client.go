package core

// Client is a connected, authenticated chat participant as seen by the core
// layer. Room membership is tracked by the Hub, never on the client itself.
type Client struct {
	ID     string
	Email  string
	Events chan *Event
}

// NewClient constructs a client with a buffered event channel.
func NewClient(id, email string) *Client {
	return &Client{
		ID:     id,
		Email:  email,
		Events: make(chan *Event, 32),
	}
}
