package midjourney

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

// fakeGateway is a websocket server that records the frames a client sends
// and lets the test push dispatch frames back.
type fakeGateway struct {
	srv    *httptest.Server
	frames chan map[string]any

	mu    sync.Mutex
	conn  *websocket.Conn
	ready chan struct{}
}

func newFakeGateway(t *testing.T) *fakeGateway {
	t.Helper()
	g := &fakeGateway{
		frames: make(chan map[string]any, 64),
		ready:  make(chan struct{}),
	}
	upgrader := websocket.Upgrader{}
	g.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		g.mu.Lock()
		g.conn = conn
		g.mu.Unlock()
		close(g.ready)

		for {
			_, data, err := conn.ReadMessage()
			if err != nil {
				return
			}
			var f map[string]any
			if err := json.Unmarshal(data, &f); err != nil {
				continue
			}
			select {
			case g.frames <- f:
			default:
			}
		}
	}))
	t.Cleanup(g.srv.Close)
	return g
}

func (g *fakeGateway) URL() string {
	return "ws" + strings.TrimPrefix(g.srv.URL, "http")
}

// next returns the next frame sent by the client.
func (g *fakeGateway) next(t *testing.T) map[string]any {
	t.Helper()
	select {
	case f := <-g.frames:
		return f
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for client frame")
		return nil
	}
}

// push sends one raw frame to the client. Write errors are ignored: scripts
// may still be pushing after the client under test has gone away.
func (g *fakeGateway) push(t *testing.T, raw string) {
	t.Helper()
	<-g.ready
	g.mu.Lock()
	defer g.mu.Unlock()
	_ = g.conn.WriteMessage(websocket.TextMessage, []byte(raw))
}

// drop closes the server side of the connection.
func (g *fakeGateway) drop() {
	<-g.ready
	g.mu.Lock()
	defer g.mu.Unlock()
	g.conn.Close()
}

// dispatch builds a message dispatch frame.
func dispatch(kind, id, nonce, content, attachmentURL string) string {
	d := map[string]any{
		"id":         id,
		"channel_id": "chan",
		"author":     map[string]any{"id": "bot", "bot": true},
		"content":    content,
		"embeds":     []any{},
		"flags":      0,
	}
	if nonce != "" {
		d["nonce"] = nonce
	}
	if attachmentURL != "" {
		d["attachments"] = []any{map[string]any{"id": "a", "filename": "img.png", "url": attachmentURL}}
	}
	b, _ := json.Marshal(map[string]any{"op": OpDispatch, "t": kind, "s": 1, "d": d})
	return string(b)
}
