package rest

import "time"

// Authentication types

// RegisterRequest is the request body for account registration.
type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginRequest is the request body for login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResponse is returned by login and register: the identity plus the
// bearer token the websocket handshake uses.
type AuthResponse struct {
	User  User   `json:"user"`
	Token string `json:"token"`
}

// SendEmailRequest asks the server to send a verification email.
type SendEmailRequest struct {
	Email string `json:"email"`
}

// User is an account as the API returns it.
type User struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// Room types

// Room is a direct-message channel: exactly two member user ids.
type Room struct {
	ID              int64     `json:"id"`
	ChannelType     string    `json:"channel_type"`
	Users           []int64   `json:"users"`
	CreatedAt       time.Time `json:"created_at"`
	MessageLastSent time.Time `json:"message_last_sent"`
	HasRead         bool      `json:"has_read"`
}

// GroupChat is a named channel with N members.
type GroupChat struct {
	ID              int64     `json:"id"`
	ChannelType     string    `json:"channel_type"`
	Name            string    `json:"name"`
	Owner           int64     `json:"owner"`
	Users           []int64   `json:"users"`
	CreatedAt       time.Time `json:"created_at"`
	MessageLastSent time.Time `json:"message_last_sent"`
	HasRead         bool      `json:"has_read"`
}

// CreateDirectMessageRequest opens (or returns) a DM between the current
// user and one other user.
type CreateDirectMessageRequest struct {
	Users []int64 `json:"users"`
}

// CreateGroupChatRequest creates a named group channel.
type CreateGroupChatRequest struct {
	Name  string  `json:"name"`
	Users []int64 `json:"users"`
}

// Friend types

// FriendRequest is a pending request between two users.
type FriendRequest struct {
	ID       int64 `json:"id"`
	FromUser User  `json:"from_user"`
	ToUser   User  `json:"to_user"`
}

// SendFriendRequestBody addresses the recipient by email.
type SendFriendRequestBody struct {
	ToUser UserRef `json:"to_user"`
}

// UserRef references a user by email in request bodies.
type UserRef struct {
	Email string `json:"email"`
}

// BlockUserRequest blocks a user by id.
type BlockUserRequest struct {
	ID int64 `json:"id"`
}

// Hang event types

// HangEvent is a scheduled meetup.
type HangEvent struct {
	ID                 int64      `json:"id"`
	Name               string     `json:"name"`
	Owner              int64      `json:"owner"`
	Picture            string     `json:"picture,omitempty"`
	Description        string     `json:"description"`
	ScheduledTimeStart time.Time  `json:"scheduled_time_start"`
	ScheduledTimeEnd   time.Time  `json:"scheduled_time_end"`
	Longitude          *float64   `json:"longitude,omitempty"`
	Latitude           *float64   `json:"latitude,omitempty"`
	Address            string     `json:"address,omitempty"`
	Budget             *float64   `json:"budget,omitempty"`
	Attendees          []int64    `json:"attendees"`
	InvitationCode     string     `json:"invitation_code,omitempty"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          *time.Time `json:"updated_at,omitempty"`
}

// CreateHangEventRequest creates a new event.
type CreateHangEventRequest struct {
	Name               string    `json:"name"`
	Description        string    `json:"description"`
	ScheduledTimeStart time.Time `json:"scheduled_time_start"`
	ScheduledTimeEnd   time.Time `json:"scheduled_time_end"`
	Address            string    `json:"address,omitempty"`
	Longitude          *float64  `json:"longitude,omitempty"`
	Latitude           *float64  `json:"latitude,omitempty"`
	Budget             *float64  `json:"budget,omitempty"`
	Attendees          []int64   `json:"attendees,omitempty"`
}

// Notification types

// Notification is one user notification. The unread count, not the body,
// is what the real-time channel invalidates.
type Notification struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Timestamp   time.Time `json:"timestamp"`
	Read        bool      `json:"read"`
}

// ErrorResponse represents an API error response.
type ErrorResponse struct {
	Detail string `json:"detail"`
}
