package hang

import (
	"context"

	"github.com/qiuethan/Hang/hang/rest"
)

// RESTRefresher implements Refresher against the Hang REST API, writing
// results into a Store. It also covers the room-list and unread refreshes
// that sit outside the update fan-out.
type RESTRefresher struct {
	api   *rest.Client
	store *Store
}

// NewRESTRefresher wires a refresher to an API client and a store.
func NewRESTRefresher(api *rest.Client, store *Store) *RESTRefresher {
	return &RESTRefresher{api: api, store: store}
}

func (r *RESTRefresher) RefreshFriends(ctx context.Context) error {
	friends, err := r.api.ListFriends(ctx)
	if err != nil {
		return err
	}
	r.store.setFriends(friends)
	return nil
}

func (r *RESTRefresher) RefreshReceivedRequests(ctx context.Context) error {
	reqs, err := r.api.ListReceivedFriendRequests(ctx)
	if err != nil {
		return err
	}
	r.store.setReceived(reqs)
	return nil
}

func (r *RESTRefresher) RefreshSentRequests(ctx context.Context) error {
	reqs, err := r.api.ListSentFriendRequests(ctx)
	if err != nil {
		return err
	}
	r.store.setSent(reqs)
	return nil
}

func (r *RESTRefresher) RefreshBlockedUsers(ctx context.Context) error {
	users, err := r.api.ListBlockedUsers(ctx)
	if err != nil {
		return err
	}
	r.store.setBlocked(users)
	return nil
}

func (r *RESTRefresher) RefreshHangEvents(ctx context.Context) error {
	events, err := r.api.ListHangEvents(ctx)
	if err != nil {
		return err
	}
	r.store.setHangEvents(events)
	return nil
}

// RefreshRooms re-fetches both room lists. The chat session's
// room-activity hook points here so incoming traffic updates room
// metadata without touching message lists.
func (r *RESTRefresher) RefreshRooms(ctx context.Context) error {
	rooms, err := r.api.ListDirectMessages(ctx)
	if err != nil {
		return err
	}
	groups, err := r.api.ListGroupChats(ctx)
	if err != nil {
		return err
	}
	r.store.setRooms(rooms)
	r.store.setGroups(groups)
	return nil
}

// RefreshUnreadNotifications re-fetches the unread notification list.
func (r *RESTRefresher) RefreshUnreadNotifications(ctx context.Context) error {
	unread, err := r.api.GetUnreadNotifications(ctx)
	if err != nil {
		return err
	}
	r.store.setUnread(unread)
	return nil
}
