package room

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	echo "github.com/labstack/echo/v4"

	"github.com/TriNguyen5204/collab-sphere-signaling/pkg/protocol"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	service := newTestService()
	service.logger = logger

	ctrl := &roomController{
		logger:   logger,
		service:  service,
		notifier: service.notifier,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}

	router := echo.New()
	if err := ctrl.Resolve(router); err != nil {
		t.Fatal(err)
	}

	server := httptest.NewServer(router)
	t.Cleanup(server.Close)
	return server
}

func dialSocket(t *testing.T, server *httptest.Server, path string) *websocket.Conn {
	t.Helper()

	url := "ws" + strings.TrimPrefix(server.URL, "http") + path
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial %s: %v", url, err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readFrame(t *testing.T, conn *websocket.Conn) protocol.Message {
	t.Helper()

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var message protocol.Message
	if err := conn.ReadJSON(&message); err != nil {
		t.Fatalf("read frame: %v", err)
	}
	return message
}

func writeFrame(t *testing.T, conn *websocket.Conn, event, ackID string, payload any) {
	t.Helper()

	var raw json.RawMessage
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			t.Fatal(err)
		}
		raw = encoded
	}
	if err := conn.WriteJSON(protocol.Message{Event: event, AckID: ackID, Data: raw}); err != nil {
		t.Fatalf("write frame: %v", err)
	}
}

func TestSignalingSocketHandshakeAndAck(t *testing.T) {
	server := newTestServer(t)
	conn := dialSocket(t, server, "/ws")

	me := readFrame(t, conn)
	if me.Event != protocol.EventMe {
		t.Fatalf("first frame must be me, got %q", me.Event)
	}
	var identity protocol.MePayload
	if err := json.Unmarshal(me.Data, &identity); err != nil || identity.ID == "" {
		t.Fatalf("malformed me payload %s: %v", me.Data, err)
	}

	writeFrame(t, conn, protocol.EventJoinRoom, "", protocol.JoinRoomPayload{RoomID: "R1", Name: "Alice", IsHost: true, TeamID: teamID(7)})

	snapshot := readFrame(t, conn)
	if snapshot.Event != protocol.EventAllUsers {
		t.Fatalf("expected allUsers after join, got %q", snapshot.Event)
	}

	writeFrame(t, conn, protocol.EventCheckRoomExists, "ack-1", protocol.RoomIDPayload{RoomID: "R1"})

	reply := readFrame(t, conn)
	if reply.Event != protocol.EventCheckRoomExists || reply.AckID != "ack-1" {
		t.Fatalf("expected ack reply, got %+v", reply)
	}
	var exists protocol.RoomExistsAck
	if err := json.Unmarshal(reply.Data, &exists); err != nil {
		t.Fatal(err)
	}
	if !exists.Exists || !exists.HasHost || exists.UserCount != 1 {
		t.Fatalf("unexpected ack payload %+v", exists)
	}
}

func TestSignalingSocketRecordAckRoundTrip(t *testing.T) {
	server := newTestServer(t)
	conn := dialSocket(t, server, "/ws")
	readFrame(t, conn) // me

	writeFrame(t, conn, protocol.EventJoinRoom, "", protocol.JoinRoomPayload{RoomID: "R1"})
	readFrame(t, conn) // allUsers

	writeFrame(t, conn, protocol.EventRequestStartRecord, "ack-7", protocol.RoomIDPayload{RoomID: "R1"})

	var ack protocol.RecordStartAck
	for {
		frame := readFrame(t, conn)
		if frame.Event != protocol.EventRequestStartRecord || frame.AckID != "ack-7" {
			// recordStarted broadcast may interleave with the ack.
			continue
		}
		if err := json.Unmarshal(frame.Data, &ack); err != nil {
			t.Fatal(err)
		}
		break
	}
	if !ack.Success {
		t.Fatalf("expected successful ack, got %+v", ack)
	}
}

func TestSignalingSocketRejectsUnknownEvent(t *testing.T) {
	server := newTestServer(t)
	conn := dialSocket(t, server, "/ws")
	readFrame(t, conn) // me

	writeFrame(t, conn, "no-such-event", "", nil)

	reply := readFrame(t, conn)
	if reply.Event != protocol.EventError {
		t.Fatalf("expected error frame, got %+v", reply)
	}
}

func TestRoomListRoute(t *testing.T) {
	server := newTestServer(t)
	conn := dialSocket(t, server, "/ws")
	readFrame(t, conn) // me

	writeFrame(t, conn, protocol.EventJoinRoom, "", protocol.JoinRoomPayload{RoomID: "R1", IsHost: true})
	readFrame(t, conn) // allUsers

	resp, err := http.Get(server.URL + "/rooms")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	var list protocol.RoomListResponse
	if err := json.NewDecoder(resp.Body).Decode(&list); err != nil {
		t.Fatal(err)
	}
	if len(list.Rooms) != 1 || list.Rooms[0].RoomID != "R1" || !list.Rooms[0].HasHost {
		t.Fatalf("unexpected room list %+v", list)
	}
}

func TestLobbySocketReceivesUpdateRooms(t *testing.T) {
	server := newTestServer(t)

	lobby := dialSocket(t, server, "/rooms/notifier")
	// The handler registers the listener just after the upgrade completes.
	time.Sleep(200 * time.Millisecond)

	peer := dialSocket(t, server, "/ws")
	readFrame(t, peer) // me

	writeFrame(t, peer, protocol.EventJoinRoom, "", protocol.JoinRoomPayload{RoomID: "R1"})

	update := readFrame(t, lobby)
	if update.Event != protocol.EventUpdateRooms {
		t.Fatalf("expected update-rooms ping, got %+v", update)
	}
}
