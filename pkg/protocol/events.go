package protocol

import (
	"bytes"
	"encoding/json"
	"strconv"
)

// Client -> server events.
const (
	EventJoinRoom           = "joinRoom"
	EventLeaveRoom          = "leaveRoom"
	EventChatMessage        = "chatMessage"
	EventRequestChatHistory = "requestChatHistory"
	EventRequestToJoin      = "request-to-join"
	EventApproveGuest       = "approve-guest"
	EventRejectGuest        = "reject-guest"
	EventCancelJoinRequest  = "cancel-join-request"
	EventSignal             = "signal"
	EventRequestScreenTrack = "requestScreenTrack"
	EventScreenShareStatus  = "screenShareStatus"
	EventRequestStartRecord = "requestStartRecord"
	EventRequestStopRecord  = "requestStopRecord"
	EventCheckTeamAccess    = "check-team-access"
	EventGetRoomMetadata    = "get-room-metadata"
	EventCheckRoomExists    = "check-room-exists"
)

// Server -> client events. Relay events (signal, requestScreenTrack,
// chatMessage) reuse the client-side names.
const (
	EventMe                       = "me"
	EventAllUsers                 = "allUsers"
	EventUserJoined               = "userJoined"
	EventUserLeft                 = "userLeft"
	EventRoomClosed               = "room-closed"
	EventWaitingGuestDisconnected = "waiting-guest-disconnected"
	EventJoinRequest              = "join-request"
	EventJoinApproved             = "join-approved"
	EventJoinRejected             = "join-rejected"
	EventRequestCancelled         = "request-cancelled"
	EventChatHistory              = "chatHistory"
	EventPeerScreenShareStatus    = "peerScreenShareStatus"
	EventRecordStarted            = "recordStarted"
	EventRecordStopped            = "recordStopped"
	EventUpdateRooms              = "update-rooms"
	EventError                    = "error"
)

// Team access reasons reported by check-team-access.
const (
	ReasonNoMetadata    = "no_metadata"
	ReasonSameTeam      = "same_team"
	ReasonDifferentTeam = "different_team"
)

// Message is the wire envelope. Request frames may carry an AckID; the
// reply frame reuses the request's event name and echoes the AckID back.
type Message struct {
	Event string          `json:"event"`
	AckID string          `json:"ackId,omitempty"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// TeamID accepts a JSON number, a numeric string or null. Team ids compare
// numerically after coercion regardless of how the client encoded them.
type TeamID struct {
	Value int64
	Valid bool
}

func (t *TeamID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*t = TeamID{}
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		if s == "" {
			*t = TeamID{}
			return nil
		}
		value, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return err
		}
		*t = TeamID{Value: value, Valid: true}
		return nil
	}
	var value int64
	if err := json.Unmarshal(b, &value); err != nil {
		return err
	}
	*t = TeamID{Value: value, Valid: true}
	return nil
}

func (t TeamID) MarshalJSON() ([]byte, error) {
	if !t.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(t.Value)
}

type JoinRoomPayload struct {
	RoomID string `json:"roomId"`
	Name   string `json:"name,omitempty"`
	IsHost bool   `json:"isHost,omitempty"`
	TeamID TeamID `json:"teamId,omitempty"`
}

type ChatMessagePayload struct {
	RoomID  string `json:"roomId"`
	Sender  string `json:"sender"`
	Message string `json:"message"`
}

// RoomIDPayload accepts either a bare JSON string or an object with a
// roomId field. The reference client sends both forms depending on the
// event.
type RoomIDPayload struct {
	RoomID string `json:"roomId"`
}

func (p *RoomIDPayload) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		return json.Unmarshal(b, &p.RoomID)
	}
	type alias RoomIDPayload
	return json.Unmarshal(b, (*alias)(p))
}

type RequestToJoinPayload struct {
	RoomID        string `json:"roomId"`
	GuestID       string `json:"guestId"`
	GuestName     string `json:"guestName"`
	GuestSocketID string `json:"guestSocketId"`
}

type GuestDecisionPayload struct {
	RoomID        string `json:"roomId"`
	GuestSocketID string `json:"guestSocketId"`
	GuestID       string `json:"guestId,omitempty"`
	GuestName     string `json:"guestName,omitempty"`
}

type CancelJoinRequestPayload struct {
	RoomID        string `json:"roomId"`
	GuestSocketID string `json:"guestSocketId"`
}

type SignalPayload struct {
	TargetID string          `json:"targetId"`
	Signal   json.RawMessage `json:"signal"`
}

type RequestScreenTrackPayload struct {
	TargetID string `json:"targetId"`
}

type ScreenShareStatusPayload struct {
	RoomID    string `json:"roomId"`
	IsSharing bool   `json:"isSharing"`
}

type CheckTeamAccessPayload struct {
	RoomID     string `json:"roomId"`
	UserTeamID TeamID `json:"userTeamId"`
}

type MePayload struct {
	ID string `json:"id"`
}

type PeerInfo struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type AllUsersPayload struct {
	Users        []PeerInfo `json:"users"`
	SharingPeers []string   `json:"sharingPeers"`
}

type UserJoinedPayload struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type UserLeftPayload struct {
	ID string `json:"id"`
}

type RoomClosedPayload struct {
	Reason string `json:"reason"`
}

type WaitingGuestDisconnectedPayload struct {
	GuestSocketID string `json:"guestSocketId"`
}

type JoinRequestPayload struct {
	RoomID        string `json:"roomId"`
	GuestID       string `json:"guestId"`
	GuestName     string `json:"guestName"`
	GuestSocketID string `json:"guestSocketId"`
}

type JoinApprovedPayload struct {
	RoomID     string `json:"roomId"`
	ApprovedBy string `json:"approvedBy"`
}

type JoinRejectedPayload struct {
	RoomID     string `json:"roomId"`
	RejectedBy string `json:"rejectedBy"`
}

type RequestCancelledPayload struct {
	RoomID        string `json:"roomId"`
	GuestSocketID string `json:"guestSocketId"`
}

type ChatEntry struct {
	Sender    string `json:"sender"`
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
	AuthorID  string `json:"authorId"`
}

type SignalForwardPayload struct {
	From   string          `json:"from"`
	Signal json.RawMessage `json:"signal"`
}

type ScreenTrackRequestPayload struct {
	From string `json:"from"`
}

type PeerScreenShareStatusPayload struct {
	UserID    string `json:"userId"`
	IsSharing bool   `json:"isSharing"`
}

type RecordStatusPayload struct {
	UserID string `json:"userId"`
}

type RecordStartAck struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

type TeamAccessAck struct {
	HasDirectAccess bool   `json:"hasDirectAccess"`
	RoomTeamID      TeamID `json:"roomTeamId,omitempty"`
	Reason          string `json:"reason"`
}

type RoomMetadataAck struct {
	Success      bool   `json:"success"`
	TeamID       TeamID `json:"teamId,omitempty"`
	HostSocketID string `json:"hostSocketId,omitempty"`
	CreatedAt    string `json:"createdAt,omitempty"`
	Error        string `json:"error,omitempty"`
}

type RoomExistsAck struct {
	Exists    bool `json:"exists"`
	HasHost   bool `json:"hasHost"`
	UserCount int  `json:"userCount"`
}

type RoomInfo struct {
	RoomID    string `json:"roomId"`
	UserCount int    `json:"userCount"`
	HasHost   bool   `json:"hasHost"`
}

type RoomListResponse struct {
	Rooms []RoomInfo `json:"rooms"`
}

type ErrorPayload struct {
	Message string `json:"message"`
}
