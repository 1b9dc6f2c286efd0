package core

import (
	"context"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/launchstack/chatroom-server/internal/store"
)

func TestHubJoinBroadcastAndLeave(t *testing.T) {
	ctx := context.Background()
	hub, st := newTestHub(t, 0)
	room := createTestRoom(t, st, "general")

	alice := NewClient("a", "alice@example.com")
	bob := NewClient("b", "bob@example.com")
	hub.RegisterClient(alice)
	hub.RegisterClient(bob)

	if cerr := hub.Join(ctx, alice, room.ID); cerr != nil {
		t.Fatalf("alice join: %v", cerr)
	}
	if cerr := hub.Join(ctx, bob, room.ID); cerr != nil {
		t.Fatalf("bob join: %v", cerr)
	}

	// The joiner sees confirmation, history and its own join notice.
	joined := mustEvent(t, bob.Events, EventRoomJoined)
	if joined.Room != room.ID {
		t.Fatalf("unexpected room_joined event: %+v", joined)
	}
	hist := mustEvent(t, bob.Events, EventHistory)
	if len(hist.Messages) != 0 {
		t.Fatalf("expected empty history, got %d messages", len(hist.Messages))
	}
	notice := mustEvent(t, bob.Events, EventSystemNotice)
	if !strings.Contains(notice.Content, "bob@example.com joined") {
		t.Fatalf("unexpected join notice: %q", notice.Content)
	}

	if cerr := hub.Send(ctx, alice, room.ID, "hi"); cerr != nil {
		t.Fatalf("alice send: %v", cerr)
	}

	msgEv := mustEvent(t, bob.Events, EventChatMessage)
	if msgEv.Message.Text != "hi" || msgEv.Message.Room != room.ID || msgEv.Message.Sender != "alice@example.com" {
		t.Fatalf("unexpected message event: %+v", msgEv)
	}

	if cerr := hub.Leave(alice, room.ID); cerr != nil {
		t.Fatalf("alice leave: %v", cerr)
	}
	leftEv := mustEvent(t, bob.Events, EventSystemNotice)
	if !strings.Contains(leftEv.Content, "alice@example.com left") {
		t.Fatalf("unexpected leave notice: %q", leftEv.Content)
	}
}

func TestHubJoinUnknownRoom(t *testing.T) {
	hub, _ := newTestHub(t, 0)

	alice := NewClient("a", "alice@example.com")
	hub.RegisterClient(alice)

	hub.Dispatch(context.Background(), alice, &Command{Kind: CommandJoinRoom, Room: "ghost"})

	ev := mustEvent(t, alice.Events, EventError)
	if ev.Error == nil || ev.Error.Code != ErrCodeRoomNotFound {
		t.Fatalf("expected room_not_found error, got %+v", ev)
	}
}

func TestHubSendWithoutJoin(t *testing.T) {
	ctx := context.Background()
	hub, st := newTestHub(t, 0)
	room := createTestRoom(t, st, "general")

	alice := NewClient("a", "alice@example.com")
	hub.RegisterClient(alice)

	hub.Dispatch(ctx, alice, &Command{Kind: CommandSendMessage, Room: room.ID, Text: "hi"})

	ev := mustEvent(t, alice.Events, EventError)
	if ev.Error == nil || ev.Error.Code != ErrCodeNotAMember {
		t.Fatalf("expected not_a_member error, got %+v", ev)
	}

	// Nothing may reach the store on a rejected send.
	msgs, err := st.ListMessages(ctx, room.ID, 10)
	if err != nil {
		t.Fatalf("list messages: %v", err)
	}
	if len(msgs) != 0 {
		t.Fatalf("expected no persisted messages, got %d", len(msgs))
	}
}

func TestHubJoinSwitchesRooms(t *testing.T) {
	ctx := context.Background()
	hub, st := newTestHub(t, 0)
	roomA := createTestRoom(t, st, "alpha")
	roomB := createTestRoom(t, st, "beta")

	mover := NewClient("m", "mover@example.com")
	watcher := NewClient("w", "watcher@example.com")
	hub.RegisterClient(mover)
	hub.RegisterClient(watcher)

	if cerr := hub.Join(ctx, watcher, roomA.ID); cerr != nil {
		t.Fatalf("watcher join: %v", cerr)
	}
	drainEvents(watcher.Events)
	if cerr := hub.Join(ctx, mover, roomA.ID); cerr != nil {
		t.Fatalf("mover join a: %v", cerr)
	}
	mustEvent(t, watcher.Events, EventSystemNotice) // mover joined alpha

	if cerr := hub.Join(ctx, mover, roomB.ID); cerr != nil {
		t.Fatalf("mover join b: %v", cerr)
	}

	// Exactly one leave notice reaches the remaining member of the old room.
	leftEv := mustEvent(t, watcher.Events, EventSystemNotice)
	if !strings.Contains(leftEv.Content, "mover@example.com left "+roomA.ID) {
		t.Fatalf("unexpected notice: %q", leftEv.Content)
	}
	for _, ev := range drainEvents(watcher.Events) {
		if ev.Kind == EventSystemNotice {
			t.Fatalf("unexpected extra notice: %q", ev.Content)
		}
	}

	// The mover is gone from the old room: sends to it must fail.
	if cerr := hub.Send(ctx, mover, roomA.ID, "hi"); cerr == nil || cerr.Code != ErrCodeNotAMember {
		t.Fatalf("expected not_a_member, got %+v", cerr)
	}
	if cerr := hub.Send(ctx, mover, roomB.ID, "hi"); cerr != nil {
		t.Fatalf("send to new room: %v", cerr)
	}
}

func TestHubLeaveNotAMemberIsNoop(t *testing.T) {
	hub, st := newTestHub(t, 0)
	room := createTestRoom(t, st, "general")

	alice := NewClient("a", "alice@example.com")
	hub.RegisterClient(alice)

	if cerr := hub.Leave(alice, room.ID); cerr != nil {
		t.Fatalf("expected no-op leave, got %+v", cerr)
	}
	if events := drainEvents(alice.Events); len(events) != 0 {
		t.Fatalf("expected no events, got %d", len(events))
	}
}

func TestHubSendRoundTrip(t *testing.T) {
	ctx := context.Background()
	hub, st := newTestHub(t, 0)
	room := createTestRoom(t, st, "general")

	alice := NewClient("a", "a@x.com")
	hub.RegisterClient(alice)
	if cerr := hub.Join(ctx, alice, room.ID); cerr != nil {
		t.Fatalf("join: %v", cerr)
	}
	drainEvents(alice.Events)

	if cerr := hub.Send(ctx, alice, room.ID, "hi"); cerr != nil {
		t.Fatalf("send: %v", cerr)
	}

	// Persist happens before broadcast: the message must already be in
	// history when any client sees it.
	mustEvent(t, alice.Events, EventChatMessage)
	if cerr := hub.History(ctx, alice, room.ID); cerr != nil {
		t.Fatalf("history: %v", cerr)
	}
	hist := mustEvent(t, alice.Events, EventHistory)
	if len(hist.Messages) == 0 {
		t.Fatal("expected history to contain the sent message")
	}
	last := hist.Messages[len(hist.Messages)-1]
	if last.Text != "hi" || last.Sender != "a@x.com" {
		t.Fatalf("unexpected last history entry: %+v", last)
	}
}

func TestHubHistoryLimit(t *testing.T) {
	ctx := context.Background()
	hub, st := newTestHub(t, 5)
	room := createTestRoom(t, st, "busy")

	base := time.Now().UTC().Add(-time.Hour).Truncate(time.Second)
	for i := 0; i < 8; i++ {
		msg := &store.Message{
			RoomID:    room.ID,
			Sender:    "a@x.com",
			Body:      "m" + strconv.Itoa(i),
			CreatedAt: base.Add(time.Duration(i) * time.Second),
		}
		if err := st.SaveMessage(ctx, msg); err != nil {
			t.Fatalf("save message %d: %v", i, err)
		}
	}

	alice := NewClient("a", "a@x.com")
	hub.RegisterClient(alice)
	if cerr := hub.History(ctx, alice, room.ID); cerr != nil {
		t.Fatalf("history: %v", cerr)
	}

	hist := mustEvent(t, alice.Events, EventHistory)
	if len(hist.Messages) != 5 {
		t.Fatalf("expected 5 messages, got %d", len(hist.Messages))
	}
	// The 5 most recent, oldest first.
	for i, msg := range hist.Messages {
		if want := "m" + strconv.Itoa(i+3); msg.Text != want {
			t.Fatalf("message %d: got %q, want %q", i, msg.Text, want)
		}
	}
}

func TestHubRoomDeletedEvictsMembers(t *testing.T) {
	ctx := context.Background()
	hub, st := newTestHub(t, 0)
	room := createTestRoom(t, st, "doomed")

	c1 := NewClient("1", "one@x.com")
	c2 := NewClient("2", "two@x.com")
	hub.RegisterClient(c1)
	hub.RegisterClient(c2)
	for _, c := range []*Client{c1, c2} {
		if cerr := hub.Join(ctx, c, room.ID); cerr != nil {
			t.Fatalf("join: %v", cerr)
		}
	}

	if err := st.DeleteRoomMessages(ctx, room.ID); err != nil {
		t.Fatalf("delete messages: %v", err)
	}
	if err := st.DeleteRoom(ctx, room.ID); err != nil {
		t.Fatalf("delete room: %v", err)
	}
	hub.RoomDeleted(room.ID)

	for _, c := range []*Client{c1, c2} {
		ev := mustEvent(t, c.Events, EventRoomDeleted)
		if ev.Room != room.ID {
			t.Fatalf("unexpected room_deleted event: %+v", ev)
		}
	}

	// Evicted members can never send into the deleted room.
	if cerr := hub.Send(ctx, c1, room.ID, "hi"); cerr == nil || cerr.Code != ErrCodeNotAMember {
		t.Fatalf("expected not_a_member, got %+v", cerr)
	}
}

func TestHubDisconnectLeavesRoom(t *testing.T) {
	ctx := context.Background()
	hub, st := newTestHub(t, 0)
	room := createTestRoom(t, st, "general")

	alice := NewClient("a", "alice@example.com")
	bob := NewClient("b", "bob@example.com")
	hub.RegisterClient(alice)
	hub.RegisterClient(bob)
	for _, c := range []*Client{alice, bob} {
		if cerr := hub.Join(ctx, c, room.ID); cerr != nil {
			t.Fatalf("join: %v", cerr)
		}
	}
	drainEvents(bob.Events)

	hub.UnregisterClient(alice)

	leftEv := mustEvent(t, bob.Events, EventSystemNotice)
	if !strings.Contains(leftEv.Content, "alice@example.com left") {
		t.Fatalf("unexpected notice: %q", leftEv.Content)
	}
}

func TestHubConcurrentJoinsSingleDelivery(t *testing.T) {
	ctx := context.Background()
	hub, st := newTestHub(t, 0)
	room := createTestRoom(t, st, "crowd")

	const n = 8
	clients := make([]*Client, 0, n)
	for i := 0; i < n; i++ {
		c := NewClient("c"+strconv.Itoa(i), "user"+strconv.Itoa(i)+"@x.com")
		hub.RegisterClient(c)
		clients = append(clients, c)
	}

	var wg sync.WaitGroup
	for _, c := range clients {
		wg.Add(1)
		go func(cl *Client) {
			defer wg.Done()
			if cerr := hub.Join(ctx, cl, room.ID); cerr != nil {
				t.Errorf("join: %v", cerr)
			}
		}(c)
	}
	wg.Wait()

	if cerr := hub.Send(ctx, clients[0], room.ID, "fan-out"); cerr != nil {
		t.Fatalf("send: %v", cerr)
	}

	// Every member receives exactly one copy.
	for i, c := range clients {
		mustEvent(t, c.Events, EventChatMessage)
		for _, ev := range drainEvents(c.Events) {
			if ev.Kind == EventChatMessage {
				t.Fatalf("client %d received a duplicate chat message", i)
			}
		}
	}
}

func TestHubRejoinSameRoomKeepsQuiet(t *testing.T) {
	ctx := context.Background()
	hub, st := newTestHub(t, 0)
	room := createTestRoom(t, st, "general")

	alice := NewClient("a", "alice@example.com")
	bob := NewClient("b", "bob@example.com")
	hub.RegisterClient(alice)
	hub.RegisterClient(bob)

	if cerr := hub.Join(ctx, alice, room.ID); cerr != nil {
		t.Fatalf("alice join: %v", cerr)
	}
	if cerr := hub.Join(ctx, bob, room.ID); cerr != nil {
		t.Fatalf("bob join: %v", cerr)
	}
	drainEvents(alice.Events)
	drainEvents(bob.Events)

	if cerr := hub.Join(ctx, alice, room.ID); cerr != nil {
		t.Fatalf("alice re-join: %v", cerr)
	}

	// The re-joiner gets confirmation and history again, nothing more.
	mustEvent(t, alice.Events, EventRoomJoined)
	mustEvent(t, alice.Events, EventHistory)
	for _, ev := range drainEvents(alice.Events) {
		if ev.Kind == EventSystemNotice {
			t.Fatalf("re-join produced a notice for the joiner: %q", ev.Content)
		}
	}

	// Other members hear nothing about it.
	if events := drainEvents(bob.Events); len(events) != 0 {
		t.Fatalf("re-join leaked %d events to other members, first: %+v", len(events), events[0])
	}

	// Membership is intact: a message still reaches both clients.
	if cerr := hub.Send(ctx, alice, room.ID, "still here"); cerr != nil {
		t.Fatalf("send after re-join: %v", cerr)
	}
	mustEvent(t, alice.Events, EventChatMessage)
	mustEvent(t, bob.Events, EventChatMessage)
}
