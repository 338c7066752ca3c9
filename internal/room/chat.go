package room

import (
	"time"

	"github.com/TriNguyen5204/collab-sphere-signaling/pkg/protocol"
)

// chatHistoryLimit caps each room's log; the oldest entries are trimmed
// first.
const chatHistoryLimit = 100

// ChatMessage appends a server-timestamped entry and broadcasts it to the
// whole room, sender included. There is no local echo; the sender relies
// on the broadcast.
func (s *RoomService) ChatMessage(c *Connection, payload protocol.ChatMessagePayload) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sender := payload.Sender
	if sender == "" {
		sender = c.name
	}
	entry := protocol.ChatEntry{
		Sender:    sender,
		Message:   payload.Message,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		AuthorID:  c.ID,
	}

	log := append(s.chat[payload.RoomID], entry)
	if len(log) > chatHistoryLimit {
		log = log[len(log)-chatHistoryLimit:]
	}
	s.chat[payload.RoomID] = log

	s.broadcastRoom(payload.RoomID, protocol.EventChatMessage, entry)
}

// RequestChatHistory replies to the requester only with a point-in-time
// snapshot of the room's log.
func (s *RoomService) RequestChatHistory(c *Connection, roomID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	history := make([]protocol.ChatEntry, len(s.chat[roomID]))
	copy(history, s.chat[roomID])
	s.emit(c, protocol.EventChatHistory, history)
}
