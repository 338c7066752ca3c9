package room

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	echo "github.com/labstack/echo/v4"
	"go.uber.org/fx"

	"github.com/TriNguyen5204/collab-sphere-signaling/pkg/protocol"
	"github.com/TriNguyen5204/collab-sphere-signaling/pkg/wsutils"
)

type roomController struct {
	logger   *slog.Logger
	service  *RoomService
	notifier *RoomNotifier
	upgrader websocket.Upgrader
}

func (ctrl *roomController) wsError(w *wsutils.ThreadSafeWriter, err error) {
	ctrl.logger.Error(fmt.Sprintf("%s | Err: %s", w.Conn.RemoteAddr(), err))
	w.Emit(protocol.EventError, protocol.ErrorPayload{Message: "wrong data format"})
}

// SignalingSocket is the long-lived duplex event channel of one client.
func (ctrl *roomController) SignalingSocket(ctx echo.Context) error {
	conn, err := ctrl.upgrader.Upgrade(ctx.Response().Writer, ctx.Request(), nil)
	if err != nil {
		ctrl.logger.Error(fmt.Sprintf("Unable upgrade request %+v", ctx.Request()))
		return err
	}

	w := wsutils.NewThreadSafeWriter(conn)
	defer w.Close()

	peer := ctrl.service.Connect(w)
	defer ctrl.service.Disconnect(peer)

	message := &protocol.Message{}
	for {
		if err := w.ReadJSON(message); err != nil {
			if websocket.IsUnexpectedCloseError(err,
				websocket.CloseNormalClosure,
				websocket.CloseGoingAway,
				websocket.CloseAbnormalClosure) {
				ctrl.logger.Error(fmt.Sprintf("%s | Err: %s", w.Conn.RemoteAddr(), err))
			}
			return nil
		}

		if err := ctrl.dispatch(w, peer, message); err != nil {
			ctrl.wsError(w, err)
		}
	}
}

// dispatch validates the payload at the transport boundary and invokes
// the matching coordinator operation. Ack-bearing requests answer with a
// frame of the same event name echoing the ackId.
func (ctrl *roomController) dispatch(w *wsutils.ThreadSafeWriter, peer *Connection, message *protocol.Message) error {
	switch message.Event {
	case protocol.EventJoinRoom:
		var payload protocol.JoinRoomPayload
		if err := json.Unmarshal(message.Data, &payload); err != nil {
			return err
		}
		ctrl.service.JoinRoom(peer, payload)

	case protocol.EventLeaveRoom:
		ctrl.service.LeaveRoom(peer)

	case protocol.EventChatMessage:
		var payload protocol.ChatMessagePayload
		if err := json.Unmarshal(message.Data, &payload); err != nil {
			return err
		}
		ctrl.service.ChatMessage(peer, payload)

	case protocol.EventRequestChatHistory:
		var payload protocol.RoomIDPayload
		if err := json.Unmarshal(message.Data, &payload); err != nil {
			return err
		}
		ctrl.service.RequestChatHistory(peer, payload.RoomID)

	case protocol.EventRequestToJoin:
		var payload protocol.RequestToJoinPayload
		if err := json.Unmarshal(message.Data, &payload); err != nil {
			return err
		}
		ctrl.service.RequestToJoin(peer, payload)

	case protocol.EventApproveGuest:
		var payload protocol.GuestDecisionPayload
		if err := json.Unmarshal(message.Data, &payload); err != nil {
			return err
		}
		ctrl.service.ApproveGuest(peer, payload)

	case protocol.EventRejectGuest:
		var payload protocol.GuestDecisionPayload
		if err := json.Unmarshal(message.Data, &payload); err != nil {
			return err
		}
		ctrl.service.RejectGuest(peer, payload)

	case protocol.EventCancelJoinRequest:
		var payload protocol.CancelJoinRequestPayload
		if err := json.Unmarshal(message.Data, &payload); err != nil {
			return err
		}
		ctrl.service.CancelJoinRequest(peer, payload)

	case protocol.EventSignal:
		var payload protocol.SignalPayload
		if err := json.Unmarshal(message.Data, &payload); err != nil {
			return err
		}
		ctrl.service.Signal(peer, payload)

	case protocol.EventRequestScreenTrack:
		var payload protocol.RequestScreenTrackPayload
		if err := json.Unmarshal(message.Data, &payload); err != nil {
			return err
		}
		ctrl.service.RequestScreenTrack(peer, payload)

	case protocol.EventScreenShareStatus:
		var payload protocol.ScreenShareStatusPayload
		if err := json.Unmarshal(message.Data, &payload); err != nil {
			return err
		}
		ctrl.service.ScreenShareStatus(peer, payload)

	case protocol.EventRequestStartRecord:
		var payload protocol.RoomIDPayload
		if err := json.Unmarshal(message.Data, &payload); err != nil {
			return err
		}
		ack := ctrl.service.StartRecord(peer, payload.RoomID)
		return w.EmitAck(protocol.EventRequestStartRecord, message.AckID, ack)

	case protocol.EventRequestStopRecord:
		var payload protocol.RoomIDPayload
		if err := json.Unmarshal(message.Data, &payload); err != nil {
			return err
		}
		ctrl.service.StopRecord(peer, payload.RoomID)

	case protocol.EventCheckTeamAccess:
		var payload protocol.CheckTeamAccessPayload
		if err := json.Unmarshal(message.Data, &payload); err != nil {
			return err
		}
		ack := ctrl.service.CheckTeamAccess(payload)
		return w.EmitAck(protocol.EventCheckTeamAccess, message.AckID, ack)

	case protocol.EventGetRoomMetadata:
		var payload protocol.RoomIDPayload
		if err := json.Unmarshal(message.Data, &payload); err != nil {
			return err
		}
		ack := ctrl.service.GetRoomMetadata(payload.RoomID)
		return w.EmitAck(protocol.EventGetRoomMetadata, message.AckID, ack)

	case protocol.EventCheckRoomExists:
		var payload protocol.RoomIDPayload
		if err := json.Unmarshal(message.Data, &payload); err != nil {
			return err
		}
		ack := ctrl.service.CheckRoomExists(payload.RoomID)
		return w.EmitAck(protocol.EventCheckRoomExists, message.AckID, ack)

	default:
		return fmt.Errorf("%w: %q", ErrUnknownEvent, message.Event)
	}
	return nil
}

// LobbySocket registers a lobby listener that gets an update-rooms ping
// whenever membership changes anywhere.
func (ctrl *roomController) LobbySocket(ctx echo.Context) error {
	conn, err := ctrl.upgrader.Upgrade(ctx.Response().Writer, ctx.Request(), nil)
	if err != nil {
		ctrl.logger.Error(fmt.Sprintf("Unable upgrade request %+v", ctx.Request()))
		return err
	}

	w := wsutils.NewThreadSafeWriter(conn)
	defer w.Close()

	id := uuid.NewString()
	ctrl.notifier.Listen(id, w)
	defer ctrl.notifier.Stop(id)

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return nil
		}
	}
}

func (ctrl *roomController) RoomList(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, protocol.RoomListResponse{
		Rooms: ctrl.service.ListRooms(),
	})
}

func (ctrl *roomController) Resolve(router protocol.HttpRouter) error {
	go ctrl.notifier.OnUpdateRooms(context.Background(), func(listener Emitter) {
		listener.Emit(protocol.EventUpdateRooms, nil)
	})

	router.GET("/ws", ctrl.SignalingSocket)
	router.GET("/rooms", ctrl.RoomList)
	router.GET("/rooms/notifier", ctrl.LobbySocket)
	return nil
}

var _ protocol.HttpResolvable = (*roomController)(nil)

type newRoomController_Params struct {
	fx.In

	RoomService *RoomService
	Notifier    *RoomNotifier
	Logger      *slog.Logger
}

func NewRoomController(params newRoomController_Params) *roomController {
	return &roomController{
		logger:   params.Logger,
		service:  params.RoomService,
		notifier: params.Notifier,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}
