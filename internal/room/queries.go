package room

import (
	"time"

	"github.com/TriNguyen5204/collab-sphere-signaling/pkg/protocol"
)

// CheckTeamAccess compares the caller's team id against the room's
// stored one. A room without metadata stays open for callers predating
// team scoping.
func (s *RoomService) CheckTeamAccess(payload protocol.CheckTeamAccessPayload) protocol.TeamAccessAck {
	s.mu.Lock()
	defer s.mu.Unlock()

	meta, ok := s.metadata[payload.RoomID]
	if !ok || !meta.TeamID.Valid {
		return protocol.TeamAccessAck{HasDirectAccess: true, Reason: protocol.ReasonNoMetadata}
	}
	if payload.UserTeamID.Valid && payload.UserTeamID.Value == meta.TeamID.Value {
		return protocol.TeamAccessAck{
			HasDirectAccess: true,
			RoomTeamID:      meta.TeamID,
			Reason:          protocol.ReasonSameTeam,
		}
	}
	return protocol.TeamAccessAck{
		HasDirectAccess: false,
		RoomTeamID:      meta.TeamID,
		Reason:          protocol.ReasonDifferentTeam,
	}
}

// GetRoomMetadata returns the stored metadata verbatim.
func (s *RoomService) GetRoomMetadata(roomID string) protocol.RoomMetadataAck {
	s.mu.Lock()
	defer s.mu.Unlock()

	meta, ok := s.metadata[roomID]
	if !ok {
		return protocol.RoomMetadataAck{Success: false, Error: ErrMetadataNotExist.Error()}
	}
	return protocol.RoomMetadataAck{
		Success:      true,
		TeamID:       meta.TeamID,
		HostSocketID: meta.HostSocketID,
		CreatedAt:    meta.CreatedAt.UTC().Format(time.RFC3339),
	}
}

// CheckRoomExists reports membership and host liveness. A stale host
// entry is evicted as a side effect of the liveness check.
func (s *RoomService) CheckRoomExists(roomID string) protocol.RoomExistsAck {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, hasHost := s.liveHost(roomID)
	count := len(s.members[roomID])
	return protocol.RoomExistsAck{
		Exists:    count > 0,
		HasHost:   hasHost,
		UserCount: count,
	}
}
