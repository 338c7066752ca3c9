package room

import (
	"context"
	"testing"
	"time"

	"github.com/TriNguyen5204/collab-sphere-signaling/pkg/protocol"
)

type channelEmitter struct {
	ch chan string
}

func (c *channelEmitter) Emit(event string, data any) error {
	c.ch <- event
	return nil
}

func TestNotifierPingsLobbyListenerOnJoin(t *testing.T) {
	s := newTestService()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	listener := &channelEmitter{ch: make(chan string, 16)}
	s.notifier.Listen("lobby-1", listener)
	go s.notifier.OnUpdateRooms(ctx, func(e Emitter) {
		e.Emit(protocol.EventUpdateRooms, nil)
	})

	member, _ := connect(t, s)
	s.JoinRoom(member, protocol.JoinRoomPayload{RoomID: "R1"})

	select {
	case event := <-listener.ch:
		if event != protocol.EventUpdateRooms {
			t.Fatalf("unexpected lobby event %q", event)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("lobby listener never notified")
	}
}

func TestNotifierStopRemovesListener(t *testing.T) {
	notifier := NewRoomNotifier()
	listener := &channelEmitter{ch: make(chan string, 1)}

	notifier.Listen("lobby-1", listener)
	notifier.Stop("lobby-1")

	if got := notifier.getListeners(); len(got) != 0 {
		t.Fatalf("expected no listeners, got %d", len(got))
	}
}

func TestNotifierDispatchNeverBlocks(t *testing.T) {
	notifier := NewRoomNotifier()

	// No consumer is running; repeated dispatches must coalesce.
	for i := 0; i < 10; i++ {
		notifier.DispatchUpdateRooms()
	}
}
