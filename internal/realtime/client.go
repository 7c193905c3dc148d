package realtime

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// ConnState is the client's connection lifecycle state.
type ConnState int32

// Connection states.
const (
	StateClosed ConnState = iota
	StateConnecting
	StateOpen
	StateClosing
)

// String returns the state's lowercase name.
func (s ConnState) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateOpen:
		return "open"
	case StateClosing:
		return "closing"
	default:
		return "closed"
	}
}

// Logger is the logging surface the client needs.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// Options configures a realtime Client.
type Options struct {
	// URL is the full ws:// or wss:// endpoint.
	URL string

	// PingInterval is the application-level heartbeat period.
	PingInterval time.Duration

	// ReconnectBaseDelay seeds the exponential backoff: attempt n waits
	// base * 2^n before redialling.
	ReconnectBaseDelay time.Duration

	// MaxReconnectAttempts bounds consecutive failed reconnects before
	// the client gives up with ErrReconnectExhausted.
	MaxReconnectAttempts int

	// MaxMessageSize caps inbound frames in bytes. Zero means no limit.
	MaxMessageSize int64

	Logger     Logger
	Dispatcher *Dispatcher

	// OnConnect runs after every successful (re)connect, before any
	// message is dispatched. Sessions use it to resynchronise their
	// mirror from the REST API.
	OnConnect func(ctx context.Context)
}

// Client maintains one websocket session against the backend's realtime
// endpoint: it dials, heartbeats, dispatches inbound messages and
// reconnects with exponential backoff when the session drops for any
// reason other than a deliberate close.
type Client struct {
	opts   Options
	dialer *websocket.Dialer

	mu      sync.Mutex
	state   ConnState
	conn    *websocket.Conn
	closing bool

	// closeCh unblocks a backoff sleep when Close is called while the
	// client is disconnected.
	closeCh chan struct{}
}

// NewClient returns an unconnected client; Run starts the session.
func NewClient(opts Options) *Client {
	return &Client{
		opts: opts,
		dialer: &websocket.Dialer{
			HandshakeTimeout: 10 * time.Second,
		},
		closeCh: make(chan struct{}),
	}
}

// State returns the current connection state.
func (c *Client) State() ConnState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Run drives the session until the context is cancelled, Close is called,
// or the reconnection budget is exhausted. A successful connect resets the
// attempt counter; a deliberate close (normal closure, code 1000) ends the
// loop without reconnecting.
func (c *Client) Run(ctx context.Context) error {
	attempts := 0

	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		if c.wasClosing() {
			c.setState(StateClosed)
			return nil
		}

		c.setState(StateConnecting)
		conn, err := c.dial(ctx)
		if err != nil {
			c.setState(StateClosed)
			if ctx.Err() != nil {
				return ctx.Err()
			}
			c.opts.Logger.Warn("realtime connect failed", "url", c.opts.URL, "error", err)
			if err := c.backoff(ctx, &attempts); err != nil {
				return err
			}
			continue
		}

		attempts = 0
		c.setConn(conn)
		c.setState(StateOpen)
		c.opts.Logger.Info("realtime session established", "url", c.opts.URL)

		if c.opts.OnConnect != nil {
			c.opts.OnConnect(ctx)
		}

		deliberate := c.serve(ctx, conn)
		c.setConn(nil)
		c.setState(StateClosed)

		if ctx.Err() != nil {
			return ctx.Err()
		}
		if deliberate {
			c.opts.Logger.Info("realtime session closed deliberately")
			return nil
		}

		c.opts.Logger.Warn("realtime session lost, reconnecting")
		if err := c.backoff(ctx, &attempts); err != nil {
			return err
		}
	}
}

// Close performs a deliberate shutdown: the close frame carries the normal
// closure code so the read loop (and any peer mirroring the protocol)
// knows not to reconnect. Called while disconnected, it stops the
// reconnect loop, interrupting any backoff wait in progress.
func (c *Client) Close() error {
	c.mu.Lock()
	if !c.closing {
		c.closing = true
		close(c.closeCh)
	}
	conn := c.conn
	if conn != nil {
		c.state = StateClosing
	}
	c.mu.Unlock()

	if conn == nil {
		return nil
	}
	msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "shutdown")
	if err := conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second)); err != nil {
		return conn.Close()
	}
	return nil
}

func (c *Client) dial(ctx context.Context) (*websocket.Conn, error) {
	conn, resp, err := c.dialer.DialContext(ctx, c.opts.URL, nil)
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}
	return conn, err
}

// serve runs the read loop and heartbeat for one connection. It returns
// true when the session ended deliberately.
func (c *Client) serve(ctx context.Context, conn *websocket.Conn) bool {
	if c.opts.MaxMessageSize > 0 {
		conn.SetReadLimit(c.opts.MaxMessageSize)
	}

	done := make(chan struct{})
	defer close(done)
	go c.heartbeat(ctx, conn, done)

	// Drop the connection when the context dies so ReadMessage unblocks.
	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-done:
		}
	}()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			conn.Close()
			if c.wasClosing() || websocket.IsCloseError(err, websocket.CloseNormalClosure) {
				return true
			}
			c.opts.Logger.Debug("realtime read ended", "error", err)
			return false
		}

		var env Envelope
		if err := json.Unmarshal(data, &env); err != nil {
			c.opts.Logger.Warn("malformed realtime message dropped", "error", err)
			continue
		}
		env.Raw = data
		c.opts.Dispatcher.Dispatch(env)
	}
}

// heartbeat sends the application-level ping every PingInterval. The
// backend answers with a pong message, which the dispatcher absorbs.
func (c *Client) heartbeat(ctx context.Context, conn *websocket.Conn, done <-chan struct{}) {
	ticker := time.NewTicker(c.opts.PingInterval)
	defer ticker.Stop()

	ping, _ := json.Marshal(Envelope{Type: TypePing})
	for {
		select {
		case <-ticker.C:
			if err := conn.WriteMessage(websocket.TextMessage, ping); err != nil {
				return
			}
		case <-ctx.Done():
			return
		case <-done:
			return
		}
	}
}

// backoff sleeps base * 2^attempts, then advances the counter. It returns
// ErrReconnectExhausted once the budget is spent.
func (c *Client) backoff(ctx context.Context, attempts *int) error {
	if *attempts >= c.opts.MaxReconnectAttempts {
		c.opts.Logger.Error("realtime reconnect budget exhausted", "attempts", *attempts)
		return ErrReconnectExhausted
	}

	delay := backoffDelay(c.opts.ReconnectBaseDelay, *attempts)
	*attempts++
	c.opts.Logger.Info("realtime reconnect scheduled",
		"delay", delay, "attempt", *attempts, "max_attempts", c.opts.MaxReconnectAttempts)

	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-c.closeCh:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// backoffDelay is the wait before reconnect attempt n: base * 2^n.
func backoffDelay(base time.Duration, attempt int) time.Duration {
	return base << attempt
}

func (c *Client) setState(s ConnState) {
	c.mu.Lock()
	c.state = s
	c.mu.Unlock()
}

func (c *Client) setConn(conn *websocket.Conn) {
	c.mu.Lock()
	c.conn = conn
	c.mu.Unlock()
}

func (c *Client) wasClosing() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closing
}
