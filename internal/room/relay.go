package room

import "github.com/TriNguyen5204/collab-sphere-signaling/pkg/protocol"

// Signal forwards an opaque handshake payload to the target connection,
// annotated with the sender's id. SDP/ICE contents are never inspected.
// A missing target drops the message; the sender gets no failure notice.
func (s *RoomService) Signal(c *Connection, payload protocol.SignalPayload) {
	s.mu.Lock()
	defer s.mu.Unlock()

	target, ok := s.connections[payload.TargetID]
	if !ok {
		return
	}
	s.emit(target, protocol.EventSignal, protocol.SignalForwardPayload{
		From:   c.ID,
		Signal: payload.Signal,
	})
}

// RequestScreenTrack relays a "please start sharing" request to the
// target. No state is kept.
func (s *RoomService) RequestScreenTrack(c *Connection, payload protocol.RequestScreenTrackPayload) {
	s.mu.Lock()
	defer s.mu.Unlock()

	target, ok := s.connections[payload.TargetID]
	if !ok {
		return
	}
	s.emit(target, protocol.EventRequestScreenTrack, protocol.ScreenTrackRequestPayload{From: c.ID})
}

// ScreenShareStatus records the caller's sharing flag and rebroadcasts it
// to the whole room, sender included.
func (s *RoomService) ScreenShareStatus(c *Connection, payload protocol.ScreenShareStatusPayload) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c.sharing = payload.IsSharing
	s.broadcastRoom(payload.RoomID, protocol.EventPeerScreenShareStatus, protocol.PeerScreenShareStatusPayload{
		UserID:    c.ID,
		IsSharing: payload.IsSharing,
	})
}
