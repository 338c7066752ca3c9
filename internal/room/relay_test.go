package room

import (
	"encoding/json"
	"testing"

	"github.com/TriNguyen5204/collab-sphere-signaling/pkg/protocol"
)

func TestSignalRelayedToTarget(t *testing.T) {
	s := newTestService()
	sender, senderEmitter := connect(t, s)
	target, targetEmitter := connect(t, s)

	offer := json.RawMessage(`{"type":"offer","sdp":"v=0..."}`)
	s.Signal(sender, protocol.SignalPayload{TargetID: target.ID, Signal: offer})

	forwarded := targetEmitter.last(t, protocol.EventSignal).Data.(protocol.SignalForwardPayload)
	if forwarded.From != sender.ID {
		t.Fatalf("forwarded signal must carry the sender id, got %+v", forwarded)
	}
	if string(forwarded.Signal) != string(offer) {
		t.Fatalf("payload must pass through untouched, got %s", forwarded.Signal)
	}
	if senderEmitter.count(protocol.EventSignal) != 0 {
		t.Fatal("the sender must not receive its own signal")
	}
}

func TestSignalMissingTargetSilentlyDropped(t *testing.T) {
	s := newTestService()
	sender, senderEmitter := connect(t, s)

	before := len(senderEmitter.events)
	s.Signal(sender, protocol.SignalPayload{TargetID: "gone", Signal: json.RawMessage(`{}`)})

	if len(senderEmitter.events) != before {
		t.Fatal("a missed relay must produce no delivery failure notice")
	}
}

func TestRequestScreenTrackRelay(t *testing.T) {
	s := newTestService()
	requester, _ := connect(t, s)
	target, targetEmitter := connect(t, s)

	s.RequestScreenTrack(requester, protocol.RequestScreenTrackPayload{TargetID: target.ID})

	request := targetEmitter.last(t, protocol.EventRequestScreenTrack).Data.(protocol.ScreenTrackRequestPayload)
	if request.From != requester.ID {
		t.Fatalf("unexpected screen track request %+v", request)
	}
}

func TestScreenShareStatusBroadcastIncludesSender(t *testing.T) {
	s := newTestService()
	sharer, sharerEmitter := connect(t, s)
	peer, peerEmitter := connect(t, s)

	s.JoinRoom(sharer, protocol.JoinRoomPayload{RoomID: "R1"})
	s.JoinRoom(peer, protocol.JoinRoomPayload{RoomID: "R1"})

	s.ScreenShareStatus(sharer, protocol.ScreenShareStatusPayload{RoomID: "R1", IsSharing: true})

	for name, emitter := range map[string]*fakeEmitter{"sharer": sharerEmitter, "peer": peerEmitter} {
		status := emitter.last(t, protocol.EventPeerScreenShareStatus).Data.(protocol.PeerScreenShareStatusPayload)
		if status.UserID != sharer.ID || !status.IsSharing {
			t.Fatalf("%s: unexpected status %+v", name, status)
		}
	}
}

func TestSharingFlagClearedOnDisconnect(t *testing.T) {
	s := newTestService()
	sharer, _ := connect(t, s)
	peer, _ := connect(t, s)

	s.JoinRoom(sharer, protocol.JoinRoomPayload{RoomID: "R1"})
	s.ScreenShareStatus(sharer, protocol.ScreenShareStatusPayload{RoomID: "R1", IsSharing: true})

	s.Disconnect(sharer)

	s.JoinRoom(peer, protocol.JoinRoomPayload{RoomID: "R1"})
	emitter := &fakeEmitter{}
	late := s.Connect(emitter)
	s.JoinRoom(late, protocol.JoinRoomPayload{RoomID: "R1"})

	snapshot := emitter.last(t, protocol.EventAllUsers).Data.(protocol.AllUsersPayload)
	if len(snapshot.SharingPeers) != 0 {
		t.Fatalf("no peer may be reported sharing after the sharer left, got %+v", snapshot.SharingPeers)
	}
}
