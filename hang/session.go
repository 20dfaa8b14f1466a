package hang

import (
	"context"
	"strings"
	"sync"
	"time"
)

// SessionState is the per-active-room loading state.
type SessionState int

const (
	// SessionIdle means no room is selected and the list is empty.
	SessionIdle SessionState = iota

	// SessionLoading means the newest page has been requested and nothing
	// has arrived yet.
	SessionLoading

	// SessionLoaded means the list holds at least the newest page.
	SessionLoaded

	// SessionPaginating means an older page is in flight.
	SessionPaginating
)

// String returns the string representation of a SessionState.
func (s SessionState) String() string {
	switch s {
	case SessionIdle:
		return "idle"
	case SessionLoading:
		return "loading"
	case SessionLoaded:
		return "loaded"
	case SessionPaginating:
		return "paginating"
	default:
		return "unknown"
	}
}

// pendingLoad tags one in-flight load_message request with the room it was
// issued for. Responses carry no room id on the wire; they are matched to
// requests in FIFO order, which holds because both travel one socket.
type pendingLoad struct {
	room  int64
	seq   uint64
	timer *time.Timer
}

// Session maintains the ordered message list for the currently active
// room. Lists are newest-first: live broadcasts prepend at the head,
// history pages append at the tail. Messages are unique by id.
//
// A response whose originating request was issued for a room that is no
// longer active is discarded, so switching rooms mid-flight can never leak
// another room's messages into the list.
type Session struct {
	client *Client
	logger Logger

	mu       sync.Mutex
	active   bool
	room     int64
	state    SessionState
	messages []Message
	seen     map[int64]struct{}
	seq      uint64
	pending  []pendingLoad

	onMessages     func(room int64, messages []Message)
	onRoomActivity func(room int64)
}

// NewSession wires a session onto the chat-channel client. It takes over
// the client's history, broadcast and state callbacks.
func NewSession(client *Client) *Session {
	s := &Session{
		client: client,
		logger: client.logger,
		seen:   make(map[int64]struct{}),
	}
	client.OnHistory(s.handleHistory)
	client.OnBroadcast(s.handleBroadcast)
	client.OnState(s.handleState)
	return s
}

// SetLogger overrides the logger (optional).
func (s *Session) SetLogger(l Logger) {
	if l == nil {
		return
	}
	s.logger = l
}

// OnMessages registers a callback invoked with a copy of the full list
// whenever the active room's messages change.
func (s *Session) OnMessages(fn func(room int64, messages []Message)) {
	s.mu.Lock()
	s.onMessages = fn
	s.mu.Unlock()
}

// OnRoomActivity registers a callback invoked for every broadcast,
// including ones for rooms that are not active. Consumers use it to
// refresh room-list metadata; it never touches the message list.
func (s *Session) OnRoomActivity(fn func(room int64)) {
	s.mu.Lock()
	s.onRoomActivity = fn
	s.mu.Unlock()
}

// State returns the current loading state.
func (s *Session) State() SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Room returns the active room id and whether one is selected.
func (s *Session) Room() (int64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.room, s.active
}

// Messages returns a copy of the active room's list, newest first.
func (s *Session) Messages() []Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Message, len(s.messages))
	copy(out, s.messages)
	return out
}

// Select makes room the active one and requests its newest page. The list
// is cleared first so nothing from the previous room can leak through;
// selecting the already-active room reloads it from scratch.
func (s *Session) Select(ctx context.Context, room int64) {
	s.mu.Lock()
	s.active = true
	s.room = room
	s.resetListLocked()
	s.state = SessionLoading
	s.mu.Unlock()

	s.requestPage(ctx, room, nil)
	s.notifyMessages()
}

// Deselect clears the active room and returns to idle.
func (s *Session) Deselect() {
	s.mu.Lock()
	s.active = false
	s.room = 0
	s.resetListLocked()
	s.state = SessionIdle
	s.mu.Unlock()
	s.notifyMessages()
}

// LoadOlder requests the page before the oldest loaded message. It is a
// no-op unless the session is Loaded with at least one message, so the
// scroll handler can call it freely.
func (s *Session) LoadOlder(ctx context.Context) {
	s.mu.Lock()
	if !s.active || s.state != SessionLoaded || len(s.messages) == 0 {
		s.mu.Unlock()
		return
	}
	room := s.room
	cursor := s.messages[len(s.messages)-1].ID - 1
	s.state = SessionPaginating
	s.mu.Unlock()

	s.requestPage(ctx, room, &cursor)
}

// Send publishes text to the active room. Blank text (after trimming) is
// dropped. The local list is not touched here: the message appears when
// its broadcast echo arrives, so every participant sees the server's
// ordering.
func (s *Session) Send(ctx context.Context, text string) {
	if strings.TrimSpace(text) == "" {
		return
	}
	s.mu.Lock()
	if !s.active {
		s.mu.Unlock()
		return
	}
	room := s.room
	s.mu.Unlock()

	env, err := NewEnvelope(KindSendMessage, SendMessagePayload{
		MessageChannel: room,
		Content:        text,
	})
	if err != nil {
		s.logger.Error("encode send_message", map[string]any{"error": err.Error()})
		return
	}
	if err := s.client.Send(ctx, env); err != nil {
		s.logger.Warn("send_message dropped", map[string]any{
			"room": room, "error": err.Error(),
		})
	}
}

// requestPage sends one load_message request and enqueues its tag.
func (s *Session) requestPage(ctx context.Context, room int64, cursor *int64) {
	s.mu.Lock()
	s.seq++
	p := pendingLoad{room: room, seq: s.seq}
	if timeout := s.client.cfg.LoadTimeout; timeout > 0 {
		seq := p.seq
		p.timer = time.AfterFunc(timeout, func() { s.expirePage(seq) })
	}
	s.pending = append(s.pending, p)
	s.mu.Unlock()

	env, err := NewEnvelope(KindLoadMessage, LoadMessagePayload{
		MessageChannel: room,
		MessageID:      cursor,
	})
	if err != nil {
		s.logger.Error("encode load_message", map[string]any{"error": err.Error()})
		s.mu.Lock()
		s.removePendingLocked(p.seq)
		s.mu.Unlock()
		return
	}
	if err := s.client.Send(ctx, env); err != nil {
		s.logger.Warn("load_message dropped", map[string]any{
			"room": room, "error": err.Error(),
		})
		// Leave the timer running: the request expires and becomes
		// retryable instead of wedging the state machine.
	}
}

// expirePage abandons a load request that never got an answer. An initial
// page that expires is re-requested, so Loading always has a request in
// flight; a pagination timeout falls back to Loaded and the next LoadOlder
// retries. Expired requests for a no-longer-active room just drain.
func (s *Session) expirePage(seq uint64) {
	s.mu.Lock()
	p, ok := s.removePendingLocked(seq)
	if !ok {
		s.mu.Unlock()
		return
	}
	sameRoom := s.active && p.room == s.room
	retry := sameRoom && len(s.messages) == 0
	if sameRoom && !retry {
		s.state = SessionLoaded
	}
	s.mu.Unlock()

	s.logger.Warn("load_message timed out", map[string]any{"room": p.room})
	if retry {
		s.requestPage(context.Background(), p.room, nil)
	}
}

// removePendingLocked drops one queue entry by sequence and stops its timer.
func (s *Session) removePendingLocked(seq uint64) (pendingLoad, bool) {
	for i, p := range s.pending {
		if p.seq == seq {
			if p.timer != nil {
				p.timer.Stop()
			}
			s.pending = append(s.pending[:i], s.pending[i+1:]...)
			return p, true
		}
	}
	return pendingLoad{}, false
}

// handleHistory merges one load_message response page. The response is
// matched to the oldest outstanding request; if that request was issued
// for a room that is no longer active, the page is discarded. Messages
// also name their channel, and entries for another room are dropped even
// when the queue match points at the active one: a timeout can consume a
// request's queue entry and leave its late answer matched against the
// wrong head. Pages arrive newest-first and are appended after the
// existing entries; ids already present are skipped, which covers the
// overlapping boundary message on pagination.
func (s *Session) handleHistory(page []Message) {
	s.mu.Lock()
	if len(s.pending) == 0 {
		// Response after timeout or reset; nothing to attribute it to.
		s.mu.Unlock()
		return
	}
	p := s.pending[0]
	s.pending = s.pending[1:]
	if p.timer != nil {
		p.timer.Stop()
	}
	if !s.active || p.room != s.room {
		room := s.room
		s.mu.Unlock()
		s.logger.Debug("discarding stale history page", map[string]any{
			"issued_for": p.room, "active": room,
		})
		return
	}
	room := s.room
	foreign := 0
	for _, m := range page {
		if m.MessageChannel != room {
			foreign++
			continue
		}
		if _, dup := s.seen[m.ID]; dup {
			continue
		}
		s.seen[m.ID] = struct{}{}
		s.messages = append(s.messages, m)
	}
	// A page filtered down to nothing means the matched entry answered a
	// different room's request; the active room's page is still owed.
	retry := foreign > 0 && len(s.messages) == 0
	if retry {
		s.state = SessionLoading
	} else {
		s.state = SessionLoaded
	}
	s.mu.Unlock()

	if foreign > 0 {
		s.logger.Debug("dropped messages from another room", map[string]any{
			"room": room, "dropped": foreign,
		})
	}
	if retry {
		s.requestPage(context.Background(), room, nil)
		return
	}
	s.notifyMessages()
}

// handleBroadcast applies one live send_message echo. Broadcasts for other
// rooms only raise the room-activity hook; duplicates by id are dropped.
func (s *Session) handleBroadcast(m Message) {
	s.mu.Lock()
	activityFn := s.onRoomActivity
	insert := s.active && m.MessageChannel == s.room
	if insert {
		if _, dup := s.seen[m.ID]; dup {
			insert = false
		} else {
			s.seen[m.ID] = struct{}{}
			s.messages = append([]Message{m}, s.messages...)
			if s.state == SessionLoading {
				s.state = SessionLoaded
			}
		}
	}
	s.mu.Unlock()

	if activityFn != nil {
		activityFn(m.MessageChannel)
	}
	if insert {
		s.notifyMessages()
	}
}

// handleState reloads the active room after a reconnect. A fresh
// connection means the server no longer knows about in-flight requests,
// and the list may have missed broadcasts while down.
func (s *Session) handleState(ev StateEvent) {
	if ev.NewState != StateOpen {
		return
	}
	s.mu.Lock()
	active := s.active
	room := s.room
	s.mu.Unlock()
	if !active {
		return
	}
	s.Select(context.Background(), room)
}

// resetListLocked clears the message list but leaves the pending queue
// alone: requests already issued for the previous room will still be
// answered by the server, and their entries must stay in the queue so the
// FIFO match attributes those answers to the old room and discards them.
func (s *Session) resetListLocked() {
	s.messages = nil
	s.seen = make(map[int64]struct{})
}

func (s *Session) notifyMessages() {
	s.mu.Lock()
	fn := s.onMessages
	room := s.room
	out := make([]Message, len(s.messages))
	copy(out, s.messages)
	s.mu.Unlock()
	if fn != nil {
		fn(room, out)
	}
}
