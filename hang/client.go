package hang

import (
	"context"
	"errors"
	"io"
	"sync"
	"time"

	"github.com/qiuethan/Hang/hang/internal"

	"github.com/coder/websocket"
	"github.com/google/uuid"
)

// Channel names the two logical connections a session holds.
type Channel string

const (
	ChannelChat   Channel = "chat"
	ChannelNotify Channel = "notify"
)

// Client owns the lifecycle of one persistent socket: dial, authenticate,
// keepalive, reconnect. Exactly one Client exists per channel per session;
// dependents receive it by injection rather than through shared globals.
//
// Each physical connection carries a generation tag. Frames read by a
// superseded connection are discarded, so a reconnect can never deliver
// stale traffic to the active session.
type Client struct {
	cfg        Config
	channel    Channel
	url        string
	logger     Logger
	dispatcher Dispatcher
	writeCh    chan Envelope

	mu            sync.Mutex
	state         ConnectionState
	authenticated bool
	gen           string
	conn          *internal.Conn
	cancel        context.CancelFunc
	closed        bool
	reconnecting  bool
	attempts      int
	keepalive     *Keepalive
	stateFns      []func(StateEvent)
}

// NewChatClient constructs the chat-channel client. A config without a
// logged-in identity yields a no-op client: Connect succeeds without
// dialing and sends fail silently, since logged-out is a normal state.
func NewChatClient(cfg Config) *Client {
	return newClient(cfg, ChannelChat, cfg.endpoint(cfg.ChatURL))
}

// NewNotifyClient constructs the notification-channel client.
func NewNotifyClient(cfg Config) *Client {
	return newClient(cfg, ChannelNotify, cfg.endpoint(cfg.NotifyURL))
}

func newClient(cfg Config, channel Channel, url string) *Client {
	return &Client{
		cfg:     cfg,
		channel: channel,
		url:     url,
		logger:  noopLogger{},
		writeCh: make(chan Envelope, 16),
	}
}

// SetLogger overrides the logger (optional).
func (c *Client) SetLogger(l Logger) {
	if l == nil {
		return
	}
	c.logger = l
}

// OnState registers a listener for connection state transitions. Listeners
// run synchronously, in registration order.
func (c *Client) OnState(fn func(StateEvent)) {
	if fn == nil {
		return
	}
	c.mu.Lock()
	c.stateFns = append(c.stateFns, fn)
	c.mu.Unlock()
}

// OnStatus registers a callback for status acknowledgements.
func (c *Client) OnStatus(fn func(StatusPayload)) { c.dispatcher.SetOnStatus(fn) }

// OnHistory registers a callback for load_message response pages.
func (c *Client) OnHistory(fn func([]Message)) { c.dispatcher.SetOnHistory(fn) }

// OnBroadcast registers a callback for send_message broadcasts.
func (c *Client) OnBroadcast(fn func(Message)) { c.dispatcher.SetOnBroadcast(fn) }

// OnUpdate registers a callback for update envelopes (notification channel).
func (c *Client) OnUpdate(fn func(UpdateKind)) { c.dispatcher.SetOnUpdate(fn) }

// OnError registers a callback for dropped frames and transport errors.
func (c *Client) OnError(fn func(error)) { c.dispatcher.SetOnError(fn) }

// State returns the current connection state.
func (c *Client) State() ConnectionState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Authenticated reports whether the last status handshake succeeded. The
// flag is last-event-wins: whichever status envelope arrived most recently
// decides it.
func (c *Client) Authenticated() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.authenticated
}

// Generation returns the tag of the current physical connection, or ""
// when disconnected.
func (c *Client) Generation() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.gen
}

// Connect dials the server and starts the authenticate handshake. The
// handshake is fire-and-forget: success is observable through OnState
// (transition to StateOpen) rather than the return value. Connecting a
// client that has no identity is a silent no-op.
func (c *Client) Connect(ctx context.Context) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return NewError(ErrorInvalidConfig, "client is closed")
	}
	if c.state == StateConnecting || c.state == StateAuthenticating || c.state == StateOpen {
		c.mu.Unlock()
		return errors.New("already connected")
	}
	c.mu.Unlock()

	if c.url == "" {
		c.logger.Debug("no logged-in user, skipping connect", map[string]any{"channel": string(c.channel)})
		return nil
	}
	return c.dial(ctx)
}

func (c *Client) dial(ctx context.Context) error {
	c.setState(StateConnecting, nil)

	dialCtx := ctx
	if c.cfg.HandshakeTimeout > 0 {
		var cancel context.CancelFunc
		dialCtx, cancel = context.WithTimeout(ctx, c.cfg.HandshakeTimeout)
		defer cancel()
	}

	ws, _, err := websocket.Dial(dialCtx, c.url, nil)
	if err != nil {
		c.setState(StateDisconnected, err)
		return WrapError(ErrorConnection, "dial "+string(c.channel)+" channel", err)
	}

	conn := internal.NewConn(ws, c.cfg.ReadTimeout, c.cfg.WriteTimeout)
	gen := uuid.NewString()
	runCtx, cancel := context.WithCancel(context.Background())

	c.mu.Lock()
	if c.cancel != nil {
		c.cancel()
	}
	c.conn = conn
	c.gen = gen
	c.cancel = cancel
	c.mu.Unlock()

	c.setState(StateAuthenticating, nil)

	auth, err := NewEnvelope(KindAuthenticate, AuthenticatePayload{Token: c.cfg.Token})
	if err == nil {
		err = conn.Write(ctx, auth)
	}
	if err != nil {
		_ = conn.Close(websocket.StatusInternalError, "handshake error")
		c.setState(StateDisconnected, err)
		return WrapError(ErrorConnection, "send authenticate", err)
	}

	go c.readLoop(runCtx, conn, gen)
	go c.writeLoop(runCtx, conn, gen)
	return nil
}

// Send queues an envelope for the write loop. Sends against a connection
// that is not open return ErrorNotConnected; callers on the UI path are
// expected to log and drop rather than surface it.
func (c *Client) Send(ctx context.Context, env Envelope) error {
	c.mu.Lock()
	open := c.state == StateOpen
	c.mu.Unlock()
	if !open {
		c.logger.Debug("send dropped, connection not open", map[string]any{
			"channel": string(c.channel), "kind": string(env.Kind),
		})
		return NewError(ErrorNotConnected, "connection is not open")
	}

	select {
	case c.writeCh <- env:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Ping writes a ping envelope synchronously so the keepalive scheduler
// sees send failures instead of queueing into a dead connection.
func (c *Client) Ping(ctx context.Context) error {
	c.mu.Lock()
	conn := c.conn
	open := c.state == StateOpen
	c.mu.Unlock()
	if !open || conn == nil {
		return NewError(ErrorNotConnected, "connection is not open")
	}

	env, err := NewEnvelope(KindPing, struct{}{})
	if err != nil {
		return err
	}
	if err := conn.Write(ctx, env); err != nil {
		return WrapError(ErrorConnection, "ping failed", err)
	}
	return nil
}

// Close shuts the client down permanently. A closed client never
// reconnects; construct a new one to come back.
func (c *Client) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	c.authenticated = false
	if c.cancel != nil {
		c.cancel()
	}
	if c.keepalive != nil {
		c.keepalive.Stop()
		c.keepalive = nil
	}
	conn := c.conn
	c.conn = nil
	c.gen = ""
	old := c.state
	c.state = StateClosed
	fns := append([]func(StateEvent){}, c.stateFns...)
	c.mu.Unlock()

	for _, fn := range fns {
		fn(StateEvent{OldState: old, NewState: StateClosed})
	}
	if conn != nil {
		return conn.Close(websocket.StatusNormalClosure, "client close")
	}
	return nil
}

func (c *Client) readLoop(ctx context.Context, conn *internal.Conn, gen string) {
	for {
		data, err := conn.Read(ctx)
		if err != nil {
			if isExpectedDisconnect(ctx, err) || !c.isCurrent(gen) {
				return
			}
			c.logger.Warn("read loop exit", map[string]any{
				"channel": string(c.channel), "error": err.Error(),
			})
			c.dispatcher.fireError(WrapError(ErrorDisconnected, "connection lost", err))
			c.handleDisconnect(gen, err)
			return
		}
		if !c.isCurrent(gen) {
			// A newer connection exists; this frame belongs to a dead one.
			return
		}

		env, derr := DecodeEnvelope(data)
		if derr != nil {
			c.logger.Warn("dropping undecodable frame", map[string]any{
				"channel": string(c.channel), "error": derr.Error(),
			})
			c.dispatcher.fireError(derr)
			continue
		}
		if env.Kind == KindStatus {
			if p, perr := env.Status(); perr == nil {
				c.handleStatus(p)
			}
		}
		c.dispatcher.Dispatch(env)
	}
}

func (c *Client) writeLoop(ctx context.Context, conn *internal.Conn, gen string) {
	for {
		select {
		case env := <-c.writeCh:
			if !c.isCurrent(gen) {
				return
			}
			if err := conn.Write(ctx, env); err != nil {
				c.logger.Warn("write loop exit", map[string]any{
					"channel": string(c.channel), "error": err.Error(),
				})
				c.dispatcher.fireError(WrapError(ErrorConnection, "write failed", err))
				return
			}
		case <-ctx.Done():
			return
		}
	}
}

// handleStatus applies the authentication handshake result. Only the
// Authenticating state is gated on it; later statuses just update the
// authenticated flag and surface failures to the error callback.
func (c *Client) handleStatus(p StatusPayload) {
	success := p.Message == StatusSuccess

	c.mu.Lock()
	authenticating := c.state == StateAuthenticating
	c.authenticated = success
	if success {
		c.attempts = 0
	}
	c.mu.Unlock()

	if authenticating && success {
		c.setState(StateOpen, nil)
		c.startKeepalive()
		return
	}
	if !success {
		c.logger.Warn("status not success", map[string]any{
			"channel": string(c.channel), "message": p.Message,
		})
		if authenticating {
			c.dispatcher.fireError(NewError(ErrorAuthFailed, p.Message))
		}
	}
}

// handleDisconnect tears down the failed connection and arms the backoff
// reconnect loop.
func (c *Client) handleDisconnect(gen string, err error) {
	c.mu.Lock()
	if c.closed || gen != c.gen {
		c.mu.Unlock()
		return
	}
	c.authenticated = false
	if c.keepalive != nil {
		c.keepalive.Stop()
		c.keepalive = nil
	}
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	c.conn = nil
	c.gen = ""
	spawn := !c.reconnecting
	if spawn {
		c.reconnecting = true
	}
	c.mu.Unlock()

	c.setState(StateDisconnected, err)
	if spawn {
		go c.reconnectLoop()
	}
}

func (c *Client) reconnectLoop() {
	for {
		c.mu.Lock()
		if c.closed {
			c.reconnecting = false
			c.mu.Unlock()
			return
		}
		attempt := c.attempts
		c.attempts++
		c.mu.Unlock()

		if c.cfg.MaxReconnectAttempts > 0 && attempt >= c.cfg.MaxReconnectAttempts {
			c.logger.Error("giving up reconnecting", map[string]any{
				"channel": string(c.channel), "attempts": attempt,
			})
			c.mu.Lock()
			c.reconnecting = false
			c.mu.Unlock()
			return
		}

		delay := backoffDelay(c.cfg.ReconnectMinDelay, c.cfg.ReconnectMaxDelay, attempt)
		c.logger.Info("reconnecting", map[string]any{
			"channel": string(c.channel), "attempt": attempt + 1, "delay": delay.String(),
		})
		time.Sleep(delay)

		c.mu.Lock()
		closed := c.closed
		c.mu.Unlock()
		if closed {
			c.mu.Lock()
			c.reconnecting = false
			c.mu.Unlock()
			return
		}

		if err := c.dial(context.Background()); err != nil {
			c.logger.Warn("reconnect attempt failed", map[string]any{
				"channel": string(c.channel), "error": err.Error(),
			})
			continue
		}

		c.mu.Lock()
		c.reconnecting = false
		c.mu.Unlock()
		return
	}
}

func (c *Client) startKeepalive() {
	c.mu.Lock()
	if c.keepalive != nil {
		c.keepalive.Stop()
	}
	c.keepalive = StartKeepalive(c, c.cfg.PingInterval)
	c.mu.Unlock()
}

// markUnauthenticated is the keepalive scheduler's failure signal: the
// connection stopped accepting pings, so drop it and let the reconnect
// loop establish a fresh one.
func (c *Client) markUnauthenticated() {
	c.mu.Lock()
	c.authenticated = false
	gen := c.gen
	c.mu.Unlock()
	if gen == "" {
		return
	}
	c.handleDisconnect(gen, NewError(ErrorTimeout, "keepalive ping failed"))
}

func (c *Client) isCurrent(gen string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return !c.closed && c.gen == gen
}

func (c *Client) setState(s ConnectionState, err error) {
	c.mu.Lock()
	if c.closed || c.state == s {
		c.mu.Unlock()
		return
	}
	old := c.state
	c.state = s
	fns := append([]func(StateEvent){}, c.stateFns...)
	c.mu.Unlock()

	ev := StateEvent{OldState: old, NewState: s, Error: err}
	for _, fn := range fns {
		fn(ev)
	}
}

func backoffDelay(min, max time.Duration, attempt int) time.Duration {
	if min <= 0 {
		min = time.Second
	}
	if max < min {
		max = min
	}
	d := min
	for i := 0; i < attempt; i++ {
		d *= 2
		if d >= max {
			return max
		}
	}
	return d
}

func isExpectedDisconnect(ctx context.Context, err error) bool {
	if err == nil {
		return false
	}
	if ctx != nil && ctx.Err() != nil {
		return true
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, io.EOF) {
		return true
	}
	switch websocket.CloseStatus(err) {
	case websocket.StatusNormalClosure, websocket.StatusGoingAway:
		return true
	default:
		return false
	}
}
