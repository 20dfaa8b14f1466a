package hang

import (
	"sync"

	"github.com/qiuethan/Hang/hang/rest"
)

// Store holds the derived social state the notification channel keeps
// fresh: friends, requests, blocked users, hang events, unread count and
// room lists. It carries no messaging state; that lives in Session.
type Store struct {
	mu       sync.RWMutex
	friends  []rest.User
	received []rest.FriendRequest
	sent     []rest.FriendRequest
	blocked  []rest.User
	events   []rest.HangEvent
	rooms    []rest.Room
	groups   []rest.GroupChat
	unread   []rest.Notification
	onChange func()
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{}
}

// OnChange registers a callback invoked after every mutation. UI layers
// re-render from it.
func (s *Store) OnChange(fn func()) {
	s.mu.Lock()
	s.onChange = fn
	s.mu.Unlock()
}

func (s *Store) Friends() []rest.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]rest.User(nil), s.friends...)
}

func (s *Store) ReceivedRequests() []rest.FriendRequest {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]rest.FriendRequest(nil), s.received...)
}

func (s *Store) SentRequests() []rest.FriendRequest {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]rest.FriendRequest(nil), s.sent...)
}

func (s *Store) BlockedUsers() []rest.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]rest.User(nil), s.blocked...)
}

func (s *Store) HangEvents() []rest.HangEvent {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]rest.HangEvent(nil), s.events...)
}

func (s *Store) Rooms() []rest.Room {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]rest.Room(nil), s.rooms...)
}

func (s *Store) Groups() []rest.GroupChat {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]rest.GroupChat(nil), s.groups...)
}

func (s *Store) UnreadNotifications() []rest.Notification {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]rest.Notification(nil), s.unread...)
}

func (s *Store) setFriends(v []rest.User)           { s.set(func() { s.friends = v }) }
func (s *Store) setReceived(v []rest.FriendRequest) { s.set(func() { s.received = v }) }
func (s *Store) setSent(v []rest.FriendRequest)     { s.set(func() { s.sent = v }) }
func (s *Store) setBlocked(v []rest.User)           { s.set(func() { s.blocked = v }) }
func (s *Store) setHangEvents(v []rest.HangEvent)   { s.set(func() { s.events = v }) }
func (s *Store) setRooms(v []rest.Room)             { s.set(func() { s.rooms = v }) }
func (s *Store) setGroups(v []rest.GroupChat)       { s.set(func() { s.groups = v }) }
func (s *Store) setUnread(v []rest.Notification)    { s.set(func() { s.unread = v }) }

func (s *Store) set(apply func()) {
	s.mu.Lock()
	apply()
	fn := s.onChange
	s.mu.Unlock()
	if fn != nil {
		fn()
	}
}
