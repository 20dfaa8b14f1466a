package hang

import "context"

// Refresher is the REST collaborator boundary. Update envelopes are
// invalidation signals only; the refreshed data flows back through the
// collaborator's own store, never through this package's state.
type Refresher interface {
	RefreshFriends(ctx context.Context) error
	RefreshReceivedRequests(ctx context.Context) error
	RefreshSentRequests(ctx context.Context) error
	RefreshBlockedUsers(ctx context.Context) error
	RefreshHangEvents(ctx context.Context) error
}

// Notifier interprets update envelopes on the notification channel and
// fans out the matching refreshes. Refreshes are fire-and-forget: failures
// are logged and the session just misses an update until the next one.
type Notifier struct {
	refresher Refresher
	logger    Logger
	onUpdate  func(UpdateKind)
}

// NewNotifier wires a notifier onto the notification-channel client.
func NewNotifier(client *Client, r Refresher) *Notifier {
	n := &Notifier{refresher: r, logger: client.logger}
	client.OnUpdate(n.Handle)
	return n
}

// SetLogger overrides the logger (optional).
func (n *Notifier) SetLogger(l Logger) {
	if l == nil {
		return
	}
	n.logger = l
}

// OnUpdate registers an observer invoked for every update envelope,
// recognized or not, before any refresh runs. Callers that want the
// original behavior of re-fetching unread notification counts on every
// update hook it here.
func (n *Notifier) OnUpdate(fn func(UpdateKind)) {
	n.onUpdate = fn
}

// Handle maps one update kind to its refreshes. A friend_request update
// touches all four friend-related lists, since a single request mutation
// can affect any of them; friends and profile updates fan out the same
// way. Unrecognized kinds are no-ops.
func (n *Notifier) Handle(kind UpdateKind) {
	if n.onUpdate != nil {
		n.onUpdate(kind)
	}

	ctx := context.Background()
	switch kind {
	case UpdateHangEvent:
		n.refresh(ctx, "hang_events", n.refresher.RefreshHangEvents)
	case UpdateFriendRequest, UpdateFriends, UpdateProfile:
		n.refresh(ctx, "friends", n.refresher.RefreshFriends)
		n.refresh(ctx, "received_requests", n.refresher.RefreshReceivedRequests)
		n.refresh(ctx, "sent_requests", n.refresher.RefreshSentRequests)
		n.refresh(ctx, "blocked_users", n.refresher.RefreshBlockedUsers)
	default:
		n.logger.Debug("ignoring update", map[string]any{"kind": string(kind)})
	}
}

func (n *Notifier) refresh(ctx context.Context, name string, fn func(context.Context) error) {
	if err := fn(ctx); err != nil {
		n.logger.Warn("refresh failed", map[string]any{"target": name, "error": err.Error()})
	}
}
