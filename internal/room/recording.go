package room

import "github.com/TriNguyen5204/collab-sphere-signaling/pkg/protocol"

// The lock holder's identity is not disclosed to a rejected caller.
const recordBusyMessage = "Someone is already recording."

// StartRecord is an atomic check-and-set on the per-room recorder lock.
// The lock is non-reentrant and non-queued: a second requester is
// rejected outright, even when it is the current holder.
func (s *RoomService) StartRecord(c *Connection, roomID string) protocol.RecordStartAck {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, held := s.recorders[roomID]; held {
		return protocol.RecordStartAck{Success: false, Message: recordBusyMessage}
	}
	s.recorders[roomID] = c.ID
	s.broadcastRoom(roomID, protocol.EventRecordStarted, protocol.RecordStatusPayload{UserID: c.ID})
	return protocol.RecordStartAck{Success: true}
}

// StopRecord releases the lock. Calls from any connection but the holder
// are silently ignored.
func (s *RoomService) StopRecord(c *Connection, roomID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.recorders[roomID] != c.ID {
		return
	}
	delete(s.recorders, roomID)
	s.broadcastRoom(roomID, protocol.EventRecordStopped, protocol.RecordStatusPayload{UserID: c.ID})
}
