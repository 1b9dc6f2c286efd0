package core

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/launchstack/chatroom-server/internal/store"
	"github.com/launchstack/chatroom-server/internal/store/sqlite"
)

func newTestHub(t *testing.T, historyLimit int) (*Hub, store.Store) {
	t.Helper()

	st, err := sqlite.New(":memory:")
	if err != nil {
		t.Fatalf("failed to create test store: %v", err)
	}
	t.Cleanup(func() { st.Close() })

	logger := zerolog.Nop()
	return NewHub(st, historyLimit, &logger), st
}

func createTestRoom(t *testing.T, st store.Store, name string) *store.Room {
	t.Helper()

	room, err := st.CreateRoom(context.Background(), name)
	if err != nil {
		t.Fatalf("failed to create room %q: %v", name, err)
	}
	return room
}

func mustEvent(t *testing.T, ch <-chan *Event, kind EventKind) *Event {
	t.Helper()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		select {
		case ev := <-ch:
			if ev == nil {
				continue
			}
			if ev.Kind == kind {
				return ev
			}
		default:
			time.Sleep(10 * time.Millisecond)
		}
	}
	t.Fatalf("expected event kind %v not received", kind)
	return nil
}

// drainEvents collects everything currently buffered on the channel.
func drainEvents(ch <-chan *Event) []*Event {
	var events []*Event
	for {
		select {
		case ev := <-ch:
			events = append(events, ev)
		default:
			return events
		}
	}
}
