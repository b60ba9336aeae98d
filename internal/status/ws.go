package status

import (
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// wsWriteTimeout bounds each frame write so a stalled socket cannot block a
// tool run.
const wsWriteTimeout = 5 * time.Second

// statusFrame is the wire shape the host UI expects for status events.
type statusFrame struct {
	Type string          `json:"type"`
	Data statusFrameData `json:"data"`
}

type statusFrameData struct {
	Status      string `json:"status"`
	Level       string `json:"level"`
	Description string `json:"description"`
	Done        bool   `json:"done"`
}

// WebSocketEmitter streams status events to the host UI over a websocket.
// Send failures are logged and swallowed; the connection is not retried.
type WebSocketEmitter struct {
	mu   sync.Mutex
	conn *websocket.Conn
	dead bool
}

// DialWebSocket connects to the host's event socket at url (ws:// or wss://).
func DialWebSocket(url string) (*WebSocketEmitter, error) {
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		return nil, err
	}
	return &WebSocketEmitter{conn: conn}, nil
}

// Emit implements Emitter.
func (w *WebSocketEmitter) Emit(u Update) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.dead {
		return
	}

	state := "in_progress"
	if u.Done {
		state = "complete"
	}
	frame := statusFrame{
		Type: "status",
		Data: statusFrameData{
			Status:      state,
			Level:       u.Level,
			Description: u.Description,
			Done:        u.Done,
		},
	}

	_ = w.conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
	if err := w.conn.WriteJSON(frame); err != nil {
		slog.Warn("status: websocket write failed, muting emitter", "err", err)
		w.dead = true
		_ = w.conn.Close()
	}
}

// Close shuts down the underlying connection.
func (w *WebSocketEmitter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.dead {
		return nil
	}
	w.dead = true
	return w.conn.Close()
}
