package room

import (
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/fx"

	"github.com/TriNguyen5204/collab-sphere-signaling/pkg/protocol"
	"github.com/TriNguyen5204/collab-sphere-signaling/pkg/variables"
)

const (
	defaultDisplayName = "Anonymous"
	hostLeftReason     = "Host has left the room"
)

// Emitter delivers one server event to a single connection.
type Emitter interface {
	Emit(event string, data any) error
}

// Connection is one client's live duplex channel with the coordinator.
// The id is assigned on connect and never reused.
type Connection struct {
	ID string

	name    string
	roomID  string
	sharing bool
	emitter Emitter
}

type RoomMetadata struct {
	TeamID       protocol.TeamID
	HostSocketID string
	CreatedAt    time.Time
}

type WaitingGuest struct {
	GuestID     string
	GuestName   string
	SocketID    string
	RequestedAt time.Time
}

// RoomService is the room coordinator. A single mutex serializes every
// event handler, so each event is atomic with respect to all tables and
// ordering is event-arrival order. Rooms have no record of their own:
// a room exists while any of these tables holds an entry for its id.
type RoomService struct {
	mu sync.Mutex

	logger          *slog.Logger
	notifier        *RoomNotifier
	strictAdmission bool

	connections map[string]*Connection
	members     map[string]map[string]*Connection
	hosts       map[string]string
	metadata    map[string]*RoomMetadata
	waiting     map[string][]*WaitingGuest
	chat        map[string][]protocol.ChatEntry
	recorders   map[string]string
}

// Connect registers a new connection and tells it its own id. The client
// has no other way to learn it.
func (s *RoomService) Connect(emitter Emitter) *Connection {
	s.mu.Lock()
	defer s.mu.Unlock()

	conn := &Connection{
		ID:      uuid.NewString(),
		name:    defaultDisplayName,
		emitter: emitter,
	}
	s.connections[conn.ID] = conn

	s.emit(conn, protocol.EventMe, protocol.MePayload{ID: conn.ID})
	s.logger.Info("peer connected", slog.String("peer", conn.ID))
	return conn
}

// Disconnect runs the full cleanup cascade for a departed connection.
func (s *RoomService) Disconnect(c *Connection) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.leaveCurrentRoom(c)
	s.dropWaitingEverywhere(c.ID)
	delete(s.connections, c.ID)

	s.logger.Info("peer disconnected", slog.String("peer", c.ID))
	s.notifier.DispatchUpdateRooms()
}

// JoinRoom adds the connection to a room, implicitly creating it. A later
// join with isHost set silently overwrites the previous host entry.
func (s *RoomService) JoinRoom(c *Connection, payload protocol.JoinRoomPayload) {
	s.mu.Lock()
	defer s.mu.Unlock()

	roomID := payload.RoomID
	if c.roomID != "" && c.roomID != roomID {
		s.leaveCurrentRoom(c)
	}

	name := payload.Name
	if name == "" {
		name = defaultDisplayName
	}

	members := s.members[roomID]
	if members == nil {
		members = make(map[string]*Connection)
		s.members[roomID] = members
	}

	c.name = name
	c.roomID = roomID
	members[c.ID] = c

	if payload.IsHost {
		s.hosts[roomID] = c.ID
		s.metadata[roomID] = &RoomMetadata{
			TeamID:       payload.TeamID,
			HostSocketID: c.ID,
			CreatedAt:    time.Now(),
		}
	}

	snapshot := protocol.AllUsersPayload{
		Users:        []protocol.PeerInfo{},
		SharingPeers: []string{},
	}
	for id, member := range members {
		if id == c.ID {
			continue
		}
		snapshot.Users = append(snapshot.Users, protocol.PeerInfo{ID: id, Name: member.name})
		if member.sharing {
			snapshot.SharingPeers = append(snapshot.SharingPeers, id)
		}
	}
	s.emit(c, protocol.EventAllUsers, snapshot)
	s.broadcastRoom(roomID, protocol.EventUserJoined, protocol.UserJoinedPayload{ID: c.ID, Name: c.name}, c.ID)

	s.logger.Info("peer joined room",
		slog.String("room", roomID),
		slog.String("peer", c.ID),
		slog.Bool("host", payload.IsHost))
	s.notifier.DispatchUpdateRooms()
}

// LeaveRoom removes the connection from its current room.
func (s *RoomService) LeaveRoom(c *Connection) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.leaveCurrentRoom(c)
	s.notifier.DispatchUpdateRooms()
}

// ListRooms reports every room with live membership.
func (s *RoomService) ListRooms() []protocol.RoomInfo {
	s.mu.Lock()
	defer s.mu.Unlock()

	result := make([]protocol.RoomInfo, 0, len(s.members))
	for roomID, members := range s.members {
		hostID, registered := s.hosts[roomID]
		_, live := s.connections[hostID]
		result = append(result, protocol.RoomInfo{
			RoomID:    roomID,
			UserCount: len(members),
			HasHost:   registered && live,
		})
	}
	return result
}

// leaveCurrentRoom runs the room-scoped part of the departure cascade:
// user-left broadcast, host close, empty-room GC, recorder release,
// sharing flag reset. Callers hold s.mu.
func (s *RoomService) leaveCurrentRoom(c *Connection) {
	roomID := c.roomID
	if roomID == "" {
		c.sharing = false
		return
	}

	if members := s.members[roomID]; members != nil {
		delete(members, c.ID)
	}

	s.broadcastRoom(roomID, protocol.EventUserLeft, protocol.UserLeftPayload{ID: c.ID})

	if s.hosts[roomID] == c.ID {
		// Remaining members are expected to leave client-side on receipt.
		s.broadcastRoom(roomID, protocol.EventRoomClosed, protocol.RoomClosedPayload{Reason: hostLeftReason})
		delete(s.hosts, roomID)
		delete(s.metadata, roomID)
		s.logger.Info("room closed by host departure", slog.String("room", roomID))
	}

	s.cleanupRoomIfEmpty(roomID)
	s.releaseRecorderLocks(c.ID)

	c.sharing = false
	c.roomID = ""
}

// cleanupRoomIfEmpty garbage-collects every table for a drained room.
// Metadata goes with the rest; the host-departure path already removed it
// when the host was the one leaving.
func (s *RoomService) cleanupRoomIfEmpty(roomID string) {
	if len(s.members[roomID]) > 0 {
		return
	}
	delete(s.members, roomID)
	delete(s.chat, roomID)
	delete(s.waiting, roomID)
	delete(s.hosts, roomID)
	delete(s.metadata, roomID)
}

func (s *RoomService) releaseRecorderLocks(connID string) {
	for roomID, holder := range s.recorders {
		if holder != connID {
			continue
		}
		delete(s.recorders, roomID)
		s.broadcastRoom(roomID, protocol.EventRecordStopped, protocol.RecordStatusPayload{UserID: connID})
	}
}

// dropWaitingEverywhere removes the connection's pending admission
// requests in every room and tells each room's live host, if any.
func (s *RoomService) dropWaitingEverywhere(socketID string) {
	for roomID := range s.waiting {
		if !s.removeWaitingEntry(roomID, socketID) {
			continue
		}
		if hostID, registered := s.hosts[roomID]; registered {
			if host, live := s.connections[hostID]; live {
				s.emit(host, protocol.EventWaitingGuestDisconnected,
					protocol.WaitingGuestDisconnectedPayload{GuestSocketID: socketID})
			}
		}
	}
}

func (s *RoomService) removeWaitingEntry(roomID, socketID string) bool {
	queue := s.waiting[roomID]
	for i, guest := range queue {
		if guest.SocketID != socketID {
			continue
		}
		queue = append(queue[:i], queue[i+1:]...)
		if len(queue) == 0 {
			delete(s.waiting, roomID)
		} else {
			s.waiting[roomID] = queue
		}
		return true
	}
	return false
}

// liveHost resolves the registered host connection, evicting a stale
// entry as a side effect.
func (s *RoomService) liveHost(roomID string) (*Connection, bool) {
	hostID, registered := s.hosts[roomID]
	if !registered {
		return nil, false
	}
	host, live := s.connections[hostID]
	if !live {
		delete(s.hosts, roomID)
		return nil, false
	}
	return host, true
}

func (s *RoomService) broadcastRoom(roomID, event string, data any, except ...string) {
	for id, member := range s.members[roomID] {
		if slices.Contains(except, id) {
			continue
		}
		s.emit(member, event, data)
	}
}

func (s *RoomService) emit(c *Connection, event string, data any) {
	if err := c.emitter.Emit(event, data); err != nil {
		s.logger.Error("emit failed",
			slog.String("event", event),
			slog.String("peer", c.ID),
			slog.String("err", err.Error()))
	}
}

type NewRoomServiceParams struct {
	fx.In

	Logger   *slog.Logger
	Notifier *RoomNotifier
}

func NewRoomService(params NewRoomServiceParams) *RoomService {
	return &RoomService{
		logger:   params.Logger,
		notifier: params.Notifier,
		strictAdmission: variables.ParseBool(
			variables.Env(variables.ADMISSION_STRICT_NAME, variables.ADMISSION_STRICT_DEFAULT)),
		connections: make(map[string]*Connection),
		members:     make(map[string]map[string]*Connection),
		hosts:       make(map[string]string),
		metadata:    make(map[string]*RoomMetadata),
		waiting:     make(map[string][]*WaitingGuest),
		chat:        make(map[string][]protocol.ChatEntry),
		recorders:   make(map[string]string),
	}
}
