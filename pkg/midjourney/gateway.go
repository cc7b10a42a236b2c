package midjourney

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
)

// State is the gateway session state.
type State int32

const (
	StateDisconnected State = iota
	StateConnecting
	StateAuthenticating
	StateLive
)

// String returns the string representation of the state.
func (s State) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateAuthenticating:
		return "authenticating"
	case StateLive:
		return "live"
	default:
		return "disconnected"
	}
}

// StateObserver is notified on every state change. err is set when the
// change was caused by a failure.
type StateObserver func(state State, err error)

const writeTimeout = 10 * time.Second

// identifyProperties describe the connecting client.
type identifyProperties struct {
	OS      string `json:"os"`
	Browser string `json:"browser"`
	Device  string `json:"device"`
}

type identifyData struct {
	Token      string             `json:"token"`
	Properties identifyProperties `json:"properties"`
	Compress   bool               `json:"compress"`
}

type outboundFrame struct {
	Op   int `json:"op"`
	Data any `json:"d"`
}

// gateway owns the websocket connection: it authenticates, keeps the
// connection alive and feeds every inbound frame through the registry.
// A gateway connects once; after it disconnects it stays disconnected.
type gateway struct {
	url               string
	token             string
	dialer            websocket.Dialer
	heartbeatInterval time.Duration
	registry          *registry
	logger            *slog.Logger

	conn    *websocket.Conn
	writeMu sync.Mutex

	state     atomic.Int32
	started   atomic.Bool
	heartbeat atomic.Int64

	obsMu     sync.Mutex
	observers []StateObserver

	closeCh   chan struct{}
	closeOnce sync.Once
	done      chan struct{}
}

func newGateway(url, token string, cfg *clientConfig, reg *registry) *gateway {
	return &gateway{
		url:   url,
		token: token,
		dialer: websocket.Dialer{
			HandshakeTimeout: cfg.handshakeTimeout,
		},
		heartbeatInterval: cfg.heartbeatInterval,
		registry:          reg,
		logger:            cfg.logger,
		closeCh:           make(chan struct{}),
		done:              make(chan struct{}),
	}
}

// State returns the current state.
func (g *gateway) State() State {
	return State(g.state.Load())
}

// observe adds a state observer.
func (g *gateway) observe(fn StateObserver) {
	g.obsMu.Lock()
	defer g.obsMu.Unlock()
	g.observers = append(g.observers, fn)
}

func (g *gateway) setState(s State, err error) {
	prev := State(g.state.Swap(int32(s)))
	if prev == s && err == nil {
		return
	}
	g.logger.Debug("midjourney: gateway state", "from", prev, "to", s, "error", err)

	g.obsMu.Lock()
	observers := append([]StateObserver(nil), g.observers...)
	g.obsMu.Unlock()
	for _, fn := range observers {
		fn(s, err)
	}
}

// connect dials, sends identify and starts the heartbeat and dispatch
// loops. It returns once the session is live.
func (g *gateway) connect(ctx context.Context) error {
	if !g.started.CompareAndSwap(false, true) {
		return errors.New("midjourney: gateway already started")
	}

	g.setState(StateConnecting, nil)
	conn, resp, err := g.dialer.DialContext(ctx, g.url, nil)
	if err != nil {
		terr := &TransportError{Op: "dial gateway", Err: err}
		if resp != nil {
			terr.Err = fmt.Errorf("%w (http_status=%d)", err, resp.StatusCode)
		}
		close(g.done)
		g.setState(StateDisconnected, terr)
		return terr
	}
	g.conn = conn

	g.setState(StateAuthenticating, nil)
	if err := g.send(OpIdentify, identifyData{
		Token: g.token,
		Properties: identifyProperties{
			OS:      runtime.GOOS,
			Browser: "midjourney-go",
			Device:  "midjourney-go",
		},
	}); err != nil {
		conn.Close()
		g.conn = nil
		close(g.done)
		g.setState(StateDisconnected, err)
		return err
	}

	g.setState(StateLive, nil)
	go g.readLoop()
	go g.heartbeatLoop()
	return nil
}

// send writes one outbound frame. Writes are serialized.
func (g *gateway) send(op int, data any) error {
	payload, err := json.Marshal(outboundFrame{Op: op, Data: data})
	if err != nil {
		return fmt.Errorf("midjourney: marshal frame: %w", err)
	}

	g.writeMu.Lock()
	defer g.writeMu.Unlock()
	if op != OpIdentify {
		g.logger.Debug("midjourney: sending frame", "content", truncate(string(payload), 500))
	}
	g.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	if err := g.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
		return &TransportError{Op: "write gateway", Err: err}
	}
	return nil
}

// heartbeatLoop sends an incrementing counter every interval. It never
// waits on the dispatch loop.
func (g *gateway) heartbeatLoop() {
	ticker := time.NewTicker(g.heartbeatInterval)
	defer ticker.Stop()

	for {
		select {
		case <-g.closeCh:
			return
		case <-g.done:
			return
		case <-ticker.C:
			n := g.heartbeat.Add(1)
			if err := g.send(OpHeartbeat, n); err != nil {
				g.logger.Warn("midjourney: heartbeat failed", "error", err)
				return
			}
		}
	}
}

// readLoop processes inbound frames in arrival order.
func (g *gateway) readLoop() {
	defer close(g.done)

	for {
		_, data, err := g.conn.ReadMessage()
		if err != nil {
			select {
			case <-g.closeCh:
				g.setState(StateDisconnected, nil)
			default:
				terr := &TransportError{Op: "read gateway", Err: err}
				g.logger.Error("midjourney: gateway connection lost", "error", err)
				g.setState(StateDisconnected, terr)
			}
			return
		}
		g.handleFrame(data)
	}
}

// handleFrame decodes one frame and routes it to its waiter. Decode
// failures and unmatched events are dropped.
func (g *gateway) handleFrame(data []byte) {
	if g.logger.Enabled(context.Background(), slog.LevelDebug) {
		g.logger.Debug("midjourney: received frame", "len", len(data), "content", truncate(string(data), 1000))
	}

	ev, err := DecodeEvent(data)
	if err != nil {
		g.logger.Warn("midjourney: dropping frame", "error", err)
		return
	}
	token, st, ok := g.registry.resolve(ev)
	if !ok {
		return
	}
	if !g.registry.dispatch(token, signal{stage: st, event: ev}) {
		g.logger.Debug("midjourney: no waiter for event", "token", token, "stage", st)
	}
}

// close shuts the connection down and waits for the dispatch loop to exit.
func (g *gateway) close() error {
	var err error
	g.closeOnce.Do(func() {
		close(g.closeCh)
		if g.conn == nil {
			return
		}
		g.writeMu.Lock()
		_ = g.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(time.Second))
		g.writeMu.Unlock()
		err = g.conn.Close()
		if g.started.Load() {
			<-g.done
		}
	})
	return err
}
