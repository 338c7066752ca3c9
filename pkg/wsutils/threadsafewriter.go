package wsutils

import (
	"encoding/json"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/TriNguyen5204/collab-sphere-signaling/pkg/protocol"
)

// ThreadSafeWriter serializes writes to a websocket connection. gorilla
// permits a single concurrent writer per connection.
type ThreadSafeWriter struct {
	*websocket.Conn
	sync.Mutex
}

func (t *ThreadSafeWriter) WriteJSON(val interface{}) error {
	t.Lock()
	defer t.Unlock()

	return t.Conn.WriteJSON(val)
}

// Emit writes an envelope frame with the given event name and payload.
func (t *ThreadSafeWriter) Emit(event string, data any) error {
	return t.EmitAck(event, "", data)
}

// EmitAck writes a reply frame echoing a request's ackId.
func (t *ThreadSafeWriter) EmitAck(event, ackID string, data any) error {
	var raw json.RawMessage
	if data != nil {
		encoded, err := json.Marshal(data)
		if err != nil {
			return err
		}
		raw = encoded
	}
	return t.WriteJSON(&protocol.Message{Event: event, AckID: ackID, Data: raw})
}

func (t *ThreadSafeWriter) Close() error {
	return t.Conn.Close()
}

func (t *ThreadSafeWriter) ReadJSON(val any) error {
	return t.Conn.ReadJSON(val)
}

func NewThreadSafeWriter(conn *websocket.Conn) *ThreadSafeWriter {
	return &ThreadSafeWriter{
		Conn: conn,
	}
}
