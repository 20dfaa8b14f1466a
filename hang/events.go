package hang

import "time"

// Message is one chat message as delivered by the server. IDs are
// monotonic and server-assigned; they double as the pagination cursor.
type Message struct {
	ID             int64     `json:"id"`
	MessageChannel int64     `json:"message_channel"`
	User           *int64    `json:"user"` // nil for system messages
	Content        string    `json:"content"`
	Reply          *int64    `json:"reply,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

// UpdateKind names what changed in an update broadcast on the notification
// channel. The envelope is an invalidation signal only; the changed data is
// re-fetched over REST.
type UpdateKind string

const (
	UpdateHangEvent     UpdateKind = "hang_event"
	UpdateFriendRequest UpdateKind = "friend_request"
	UpdateFriends       UpdateKind = "friends"
	UpdateProfile       UpdateKind = "profile"
	UpdateChat          UpdateKind = "chat"
	UpdateNotification  UpdateKind = "notification"
)

// StatusSuccess is the acknowledgement value for an accepted action; any
// other status message is an error string.
const StatusSuccess = "success"
