package room

import (
	"log/slog"
	"time"

	"github.com/TriNguyen5204/collab-sphere-signaling/pkg/protocol"
)

// RequestToJoin queues a guest admission request. Requests are
// deduplicated by connection id, not by name. The request goes to the
// room's live host; a stale host entry is evicted and the request
// degrades to a room-wide broadcast, as does a room with no host at all.
func (s *RoomService) RequestToJoin(c *Connection, payload protocol.RequestToJoinPayload) {
	s.mu.Lock()
	defer s.mu.Unlock()

	roomID := payload.RoomID
	socketID := payload.GuestSocketID
	if socketID == "" {
		socketID = c.ID
	}

	for _, guest := range s.waiting[roomID] {
		if guest.SocketID == socketID {
			return
		}
	}
	s.waiting[roomID] = append(s.waiting[roomID], &WaitingGuest{
		GuestID:     payload.GuestID,
		GuestName:   payload.GuestName,
		SocketID:    socketID,
		RequestedAt: time.Now(),
	})

	request := protocol.JoinRequestPayload{
		RoomID:        roomID,
		GuestID:       payload.GuestID,
		GuestName:     payload.GuestName,
		GuestSocketID: socketID,
	}

	if host, ok := s.liveHost(roomID); ok {
		s.emit(host, protocol.EventJoinRequest, request)
		return
	}
	s.broadcastRoom(roomID, protocol.EventJoinRequest, request)
}

// ApproveGuest removes the waiting entry unconditionally and tells the
// guest who approved it.
func (s *RoomService) ApproveGuest(c *Connection, payload protocol.GuestDecisionPayload) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.admissionAllowed(c, payload.RoomID) {
		return
	}
	s.removeWaitingEntry(payload.RoomID, payload.GuestSocketID)
	if guest, ok := s.connections[payload.GuestSocketID]; ok {
		s.emit(guest, protocol.EventJoinApproved, protocol.JoinApprovedPayload{
			RoomID:     payload.RoomID,
			ApprovedBy: c.ID,
		})
	}
}

// RejectGuest is symmetric to ApproveGuest.
func (s *RoomService) RejectGuest(c *Connection, payload protocol.GuestDecisionPayload) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.admissionAllowed(c, payload.RoomID) {
		return
	}
	s.removeWaitingEntry(payload.RoomID, payload.GuestSocketID)
	if guest, ok := s.connections[payload.GuestSocketID]; ok {
		s.emit(guest, protocol.EventJoinRejected, protocol.JoinRejectedPayload{
			RoomID:     payload.RoomID,
			RejectedBy: c.ID,
		})
	}
}

// CancelJoinRequest withdraws a pending request and tells the live host,
// or the whole room when no host is registered.
func (s *RoomService) CancelJoinRequest(c *Connection, payload protocol.CancelJoinRequestPayload) {
	s.mu.Lock()
	defer s.mu.Unlock()

	socketID := payload.GuestSocketID
	if socketID == "" {
		socketID = c.ID
	}
	s.removeWaitingEntry(payload.RoomID, socketID)

	cancelled := protocol.RequestCancelledPayload{
		RoomID:        payload.RoomID,
		GuestSocketID: socketID,
	}
	if host, ok := s.liveHost(payload.RoomID); ok {
		s.emit(host, protocol.EventRequestCancelled, cancelled)
		return
	}
	s.broadcastRoom(payload.RoomID, protocol.EventRequestCancelled, cancelled)
}

// admissionAllowed gates approve/reject. Default mode trusts the caller.
// Strict mode ignores decisions from anyone but the live registered host;
// with no live host any member may decide (degraded broadcast mode).
func (s *RoomService) admissionAllowed(c *Connection, roomID string) bool {
	if !s.strictAdmission {
		return true
	}
	host, ok := s.liveHost(roomID)
	if !ok {
		return true
	}
	if host.ID == c.ID {
		return true
	}
	s.logger.Warn("admission decision from non-host ignored",
		slog.String("room", roomID),
		slog.String("peer", c.ID))
	return false
}
