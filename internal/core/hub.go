package core

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/launchstack/chatroom-server/internal/store"
)

// defaultHistoryLimit caps the number of messages replayed on join.
const defaultHistoryLimit = 100

// Hub owns the connection registry and the room membership index. A client
// occupies at most one room; joining another room leaves the current one
// first. All index mutations happen under a single mutex with O(1) critical
// sections; store I/O always runs outside the lock so persistence latency
// never stalls membership changes, and fan-out works on member snapshots.
type Hub struct {
	mu      sync.Mutex
	clients map[string]*Client
	rooms   map[string]*room
	current map[*Client]string

	store        store.Store
	historyLimit int
	log          *zerolog.Logger
}

// NewHub creates a new chat hub instance.
func NewHub(st store.Store, historyLimit int, logger *zerolog.Logger) *Hub {
	if historyLimit <= 0 {
		historyLimit = defaultHistoryLimit
	}
	return &Hub{
		clients:      make(map[string]*Client),
		rooms:        make(map[string]*room),
		current:      make(map[*Client]string),
		store:        st,
		historyLimit: historyLimit,
		log:          logger,
	}
}

// RegisterClient adds an authenticated client to the registry.
func (h *Hub) RegisterClient(c *Client) {
	h.mu.Lock()
	h.clients[c.ID] = c
	h.mu.Unlock()
}

// UnregisterClient removes a client, leaving its current room with the usual
// departure notice.
func (h *Hub) UnregisterClient(c *Client) {
	h.mu.Lock()
	roomID := h.current[c]
	var remaining []*Client
	if roomID != "" {
		remaining = h.removeLocked(c, roomID)
	}
	delete(h.clients, c.ID)
	h.mu.Unlock()

	if roomID != "" {
		h.deliver(remaining, systemNotice(roomID, c.Email+" left "+roomID))
	}
}

// Dispatch executes a client command and reports any failure back to that
// client alone.
func (h *Hub) Dispatch(ctx context.Context, c *Client, cmd *Command) {
	var cerr *CoreError
	switch cmd.Kind {
	case CommandJoinRoom:
		cerr = h.Join(ctx, c, cmd.Room)
	case CommandLeaveRoom:
		cerr = h.Leave(c, cmd.Room)
	case CommandSendMessage:
		cerr = h.Send(ctx, c, cmd.Room, cmd.Text)
	case CommandHistory:
		cerr = h.History(ctx, c, cmd.Room)
	default:
		cerr = coreError(ErrCodeBadRequest, "unknown command")
	}

	if cerr != nil {
		h.send(c, &Event{Kind: EventError, Room: cmd.Room, Error: cerr})
	}
}

// Join subscribes the client to a room, implicitly leaving its current one.
// The joiner gets a confirmation and the room's recent history; every member
// of the target room, joiner included, gets a system notice. Re-joining the
// current room re-emits confirmation and history without a notice.
func (h *Hub) Join(ctx context.Context, c *Client, roomID string) *CoreError {
	if cerr := h.roomExists(ctx, roomID); cerr != nil {
		return cerr
	}

	h.mu.Lock()
	prev := h.current[c]
	rejoin := prev == roomID
	var prevRemaining []*Client
	switched := prev != "" && prev != roomID
	if switched {
		prevRemaining = h.removeLocked(c, prev)
	}
	rm := h.rooms[roomID]
	if rm == nil {
		rm = newRoom(roomID)
		h.rooms[roomID] = rm
	}
	rm.add(c)
	h.current[c] = roomID
	members := rm.snapshot()
	h.mu.Unlock()

	if switched {
		h.deliver(prevRemaining, systemNotice(prev, c.Email+" left "+prev))
	}

	// A concurrent room delete may have raced the insert above. Re-check and
	// back out so a deleted room never keeps live members.
	if cerr := h.roomExists(ctx, roomID); cerr != nil {
		h.mu.Lock()
		h.removeLocked(c, roomID)
		h.mu.Unlock()
		return cerr
	}

	h.send(c, &Event{Kind: EventRoomJoined, Room: roomID})

	history, err := h.history(ctx, roomID)
	if err != nil {
		h.log.Error().Err(err).Str("room", roomID).Msg("load history")
		return coreError(ErrCodePersistence, "failed to load history")
	}
	h.send(c, &Event{Kind: EventHistory, Room: roomID, Messages: history})

	// A re-join of the current room re-emits the confirmation and history but
	// announces nothing; the client never actually entered.
	if !rejoin {
		h.deliver(members, systemNotice(roomID, c.Email+" joined "+roomID))
	}

	h.log.Debug().Str("client_id", c.ID).Str("room", roomID).Msg("client joined room")
	return nil
}

// Leave unsubscribes the client from a room. Leaving a room the client is not
// in is a no-op, not an error.
func (h *Hub) Leave(c *Client, roomID string) *CoreError {
	h.mu.Lock()
	if h.current[c] != roomID {
		h.mu.Unlock()
		return nil
	}
	remaining := h.removeLocked(c, roomID)
	h.mu.Unlock()

	h.deliver(remaining, systemNotice(roomID, c.Email+" left "+roomID))

	h.log.Debug().Str("client_id", c.ID).Str("room", roomID).Msg("client left room")
	return nil
}

// Send persists a chat message and broadcasts it to the room, sender
// included. Persist first, then broadcast: any message a client sees is
// guaranteed retrievable in history. On a store failure nothing is broadcast
// and only the sender learns about it.
func (h *Hub) Send(ctx context.Context, c *Client, roomID, text string) *CoreError {
	h.mu.Lock()
	member := h.current[c] == roomID
	h.mu.Unlock()
	if !member {
		return coreError(ErrCodeNotAMember, "join the room before sending messages")
	}

	rec := &store.Message{
		RoomID:    roomID,
		Sender:    c.Email,
		Body:      text,
		CreatedAt: time.Now().UTC(),
	}
	if err := h.store.SaveMessage(ctx, rec); err != nil {
		h.log.Error().Err(err).Str("room", roomID).Msg("persist message")
		return coreError(ErrCodePersistence, "failed to persist message")
	}

	h.mu.Lock()
	var members []*Client
	if rm := h.rooms[roomID]; rm != nil {
		members = rm.snapshot()
	}
	h.mu.Unlock()

	h.deliver(members, &Event{
		Kind: EventChatMessage,
		Room: roomID,
		Message: Message{
			ID:        rec.ID,
			Room:      rec.RoomID,
			Sender:    rec.Sender,
			Text:      rec.Body,
			CreatedAt: rec.CreatedAt,
		},
	})
	return nil
}

// History replies to the requesting client alone with the room's recent
// messages, oldest first.
func (h *Hub) History(ctx context.Context, c *Client, roomID string) *CoreError {
	if cerr := h.roomExists(ctx, roomID); cerr != nil {
		return cerr
	}

	history, err := h.history(ctx, roomID)
	if err != nil {
		h.log.Error().Err(err).Str("room", roomID).Msg("load history")
		return coreError(ErrCodePersistence, "failed to load history")
	}

	h.send(c, &Event{Kind: EventHistory, Room: roomID, Messages: history})
	return nil
}

// RoomCreated announces a new room to every connected client.
func (h *Hub) RoomCreated(rm *store.Room) {
	h.deliver(h.allClients(), &Event{
		Kind: EventRoomCreated,
		Room: rm.ID,
		RoomInfo: &RoomInfo{
			ID:        rm.ID,
			Name:      rm.Name,
			CreatedAt: rm.CreatedAt,
		},
	})
}

// RoomDeleted evicts any current members of the room and announces the
// deletion to every connected client. Evicted members get no separate leave
// notice; the deletion event is the eviction.
func (h *Hub) RoomDeleted(roomID string) {
	h.mu.Lock()
	if rm := h.rooms[roomID]; rm != nil {
		for c := range rm.members {
			delete(h.current, c)
		}
		delete(h.rooms, roomID)
	}
	all := h.allClientsLocked()
	h.mu.Unlock()

	h.deliver(all, &Event{Kind: EventRoomDeleted, Room: roomID})
}

// removeLocked detaches the client from a room and returns the remaining
// members. Callers must hold h.mu.
func (h *Hub) removeLocked(c *Client, roomID string) []*Client {
	if h.current[c] == roomID {
		delete(h.current, c)
	}
	rm := h.rooms[roomID]
	if rm == nil {
		return nil
	}
	rm.remove(c)
	if rm.empty() {
		delete(h.rooms, roomID)
		return nil
	}
	return rm.snapshot()
}

func (h *Hub) roomExists(ctx context.Context, roomID string) *CoreError {
	if _, err := h.store.GetRoomByID(ctx, roomID); err != nil {
		if errors.Is(err, store.ErrRoomNotFound) {
			return coreError(ErrCodeRoomNotFound, "room not found")
		}
		h.log.Error().Err(err).Str("room", roomID).Msg("look up room")
		return coreError(ErrCodePersistence, "failed to look up room")
	}
	return nil
}

func (h *Hub) history(ctx context.Context, roomID string) ([]Message, error) {
	records, err := h.store.ListMessages(ctx, roomID, h.historyLimit)
	if err != nil {
		return nil, err
	}

	messages := make([]Message, 0, len(records))
	for _, rec := range records {
		messages = append(messages, Message{
			ID:        rec.ID,
			Room:      rec.RoomID,
			Sender:    rec.Sender,
			Text:      rec.Body,
			CreatedAt: rec.CreatedAt,
		})
	}
	return messages, nil
}

func (h *Hub) allClients() []*Client {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.allClientsLocked()
}

func (h *Hub) allClientsLocked() []*Client {
	all := make([]*Client, 0, len(h.clients))
	for _, c := range h.clients {
		all = append(all, c)
	}
	return all
}

func (h *Hub) deliver(clients []*Client, ev *Event) {
	for _, c := range clients {
		h.send(c, ev)
	}
}

func (h *Hub) send(c *Client, ev *Event) {
	select {
	case c.Events <- ev:
	default:
		// A slow consumer drops events rather than stalling the room.
		h.log.Warn().Str("client_id", c.ID).Msg("event dropped for slow consumer")
	}
}
