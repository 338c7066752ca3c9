package room

import (
	"context"
	"sync"

	"github.com/TriNguyen5204/collab-sphere-signaling/pkg/executils"
)

// RoomNotifier fans a room-list-changed ping out to lobby listeners.
type RoomNotifier struct {
	mu        sync.Mutex
	listeners map[string]Emitter
	updateCh  chan struct{}
}

func (n *RoomNotifier) Listen(id string, e Emitter) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.listeners[id] = e
}

func (n *RoomNotifier) Stop(id string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	delete(n.listeners, id)
}

// DispatchUpdateRooms coalesces bursts into one pending notification and
// never blocks an event handler.
func (n *RoomNotifier) DispatchUpdateRooms() {
	select {
	case n.updateCh <- struct{}{}:
	default:
	}
}

func (n *RoomNotifier) getListeners() (result []Emitter) {
	n.mu.Lock()
	defer n.mu.Unlock()
	for _, listener := range n.listeners {
		result = append(result, listener)
	}
	return
}

func (n *RoomNotifier) OnUpdateRooms(ctx context.Context, fn func(Emitter)) {
	var threshold uint64 = 1000000
	var step uint64 = 2
	for {
		select {
		case <-ctx.Done():
			return
		case <-n.updateCh:
			executils.ParallelExec(n.getListeners(), threshold, step, fn)
		}
	}
}

func NewRoomNotifier() *RoomNotifier {
	return &RoomNotifier{
		listeners: make(map[string]Emitter),
		updateCh:  make(chan struct{}, 1),
	}
}
