package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Client provides REST API access to the Hang backend. The messaging core
// only reaches it through the Refresher boundary; everything here is the
// external collaborator surface.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// NewClient creates a new REST API client. baseURL is the server root,
// e.g. "http://localhost:8000".
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// SetHTTPClient allows setting a custom HTTP client.
func (c *Client) SetHTTPClient(client *http.Client) {
	if client != nil {
		c.httpClient = client
	}
}

// SetToken sets the knox token for authenticated requests.
func (c *Client) SetToken(token string) {
	c.token = token
}

// Authentication endpoints

// Register creates a new account and returns the identity plus token.
func (c *Client) Register(ctx context.Context, req RegisterRequest) (*AuthResponse, error) {
	var resp AuthResponse
	if err := c.do(ctx, http.MethodPost, "/v1/accounts/register", req, &resp, false); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Login authenticates with existing credentials.
func (c *Client) Login(ctx context.Context, req LoginRequest) (*AuthResponse, error) {
	var resp AuthResponse
	if err := c.do(ctx, http.MethodPost, "/v1/accounts/login", req, &resp, false); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Logout invalidates the current token.
func (c *Client) Logout(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/v1/accounts/logout", nil, nil, true)
}

// SendVerificationEmail triggers the email-verification flow.
func (c *Client) SendVerificationEmail(ctx context.Context, req SendEmailRequest) error {
	return c.do(ctx, http.MethodPost, "/v1/accounts/send_email", req, nil, false)
}

// User endpoints

// GetUser looks up a user by id.
func (c *Client) GetUser(ctx context.Context, id int64) (*User, error) {
	var resp User
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/v1/accounts/user/%d", id), nil, &resp, true); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Room endpoints

// ListDirectMessages returns the user's DM channels.
func (c *Client) ListDirectMessages(ctx context.Context) ([]Room, error) {
	var resp []Room
	if err := c.do(ctx, http.MethodGet, "/v1/chats/direct_messages", nil, &resp, true); err != nil {
		return nil, err
	}
	return resp, nil
}

// ListGroupChats returns the user's group channels.
func (c *Client) ListGroupChats(ctx context.Context) ([]GroupChat, error) {
	var resp []GroupChat
	if err := c.do(ctx, http.MethodGet, "/v1/chats/group_chats", nil, &resp, true); err != nil {
		return nil, err
	}
	return resp, nil
}

// CreateDirectMessage opens a DM channel with another user. The server is
// idempotent about it: an existing DM with the same peer is an error the
// caller recovers from by listing.
func (c *Client) CreateDirectMessage(ctx context.Context, req CreateDirectMessageRequest) (*Room, error) {
	var resp Room
	if err := c.do(ctx, http.MethodPost, "/v1/chats/direct_messages", req, &resp, true); err != nil {
		return nil, err
	}
	return &resp, nil
}

// CreateGroupChat creates a named group channel.
func (c *Client) CreateGroupChat(ctx context.Context, req CreateGroupChatRequest) (*GroupChat, error) {
	var resp GroupChat
	if err := c.do(ctx, http.MethodPost, "/v1/chats/group_chats", req, &resp, true); err != nil {
		return nil, err
	}
	return &resp, nil
}

// MarkChannelRead marks a message channel as read.
func (c *Client) MarkChannelRead(ctx context.Context, channelID int64) error {
	return c.do(ctx, http.MethodPost, fmt.Sprintf("/v1/chats/message_channels/%d/read/", channelID), nil, nil, true)
}

// Friend endpoints

// ListFriends returns the friends list.
func (c *Client) ListFriends(ctx context.Context) ([]User, error) {
	var resp []User
	if err := c.do(ctx, http.MethodGet, "/v1/accounts/friends", nil, &resp, true); err != nil {
		return nil, err
	}
	return resp, nil
}

// RemoveFriend deletes a friend by user id.
func (c *Client) RemoveFriend(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/v1/accounts/friends/%d", id), nil, nil, true)
}

// ListBlockedUsers returns the blocked-users list.
func (c *Client) ListBlockedUsers(ctx context.Context) ([]User, error) {
	var resp []User
	if err := c.do(ctx, http.MethodGet, "/v1/accounts/blocked_users", nil, &resp, true); err != nil {
		return nil, err
	}
	return resp, nil
}

// BlockUser blocks a user by id.
func (c *Client) BlockUser(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodPost, "/v1/accounts/blocked_users", BlockUserRequest{ID: id}, nil, true)
}

// UnblockUser removes a user from the blocked list.
func (c *Client) UnblockUser(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/v1/accounts/blocked_users/%d", id), nil, nil, true)
}

// Friend request endpoints. Accepting a received request is a DELETE,
// declining is a PATCH; both remove it from the pending list.

// ListReceivedFriendRequests returns requests sent to the current user.
func (c *Client) ListReceivedFriendRequests(ctx context.Context) ([]FriendRequest, error) {
	var resp []FriendRequest
	if err := c.do(ctx, http.MethodGet, "/v1/accounts/received_friend_request", nil, &resp, true); err != nil {
		return nil, err
	}
	return resp, nil
}

// AcceptFriendRequest accepts a received request by id.
func (c *Client) AcceptFriendRequest(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/v1/accounts/received_friend_request/%d", id), nil, nil, true)
}

// DeclineFriendRequest declines a received request by id.
func (c *Client) DeclineFriendRequest(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodPatch, fmt.Sprintf("/v1/accounts/received_friend_request/%d", id), nil, nil, true)
}

// ListSentFriendRequests returns requests the current user has sent.
func (c *Client) ListSentFriendRequests(ctx context.Context) ([]FriendRequest, error) {
	var resp []FriendRequest
	if err := c.do(ctx, http.MethodGet, "/v1/accounts/sent_friend_request", nil, &resp, true); err != nil {
		return nil, err
	}
	return resp, nil
}

// SendFriendRequest sends a request to a user addressed by email.
func (c *Client) SendFriendRequest(ctx context.Context, email string) error {
	body := SendFriendRequestBody{ToUser: UserRef{Email: email}}
	return c.do(ctx, http.MethodPost, "/v1/accounts/sent_friend_request", body, nil, true)
}

// Hang event endpoints

// ListHangEvents returns the user's hang events.
func (c *Client) ListHangEvents(ctx context.Context) ([]HangEvent, error) {
	var resp []HangEvent
	if err := c.do(ctx, http.MethodGet, "/v1/hang_event/hang_event", nil, &resp, true); err != nil {
		return nil, err
	}
	return resp, nil
}

// CreateHangEvent creates an event.
func (c *Client) CreateHangEvent(ctx context.Context, req CreateHangEventRequest) (*HangEvent, error) {
	var resp HangEvent
	if err := c.do(ctx, http.MethodPost, "/v1/hang_event/hang_event", req, &resp, true); err != nil {
		return nil, err
	}
	return &resp, nil
}

// DeleteHangEvent deletes an event by id.
func (c *Client) DeleteHangEvent(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/v1/hang_event/hang_event/%d", id), nil, nil, true)
}

// Notification endpoints

// GetUnreadNotifications returns the unread notifications.
func (c *Client) GetUnreadNotifications(ctx context.Context) ([]Notification, error) {
	var resp []Notification
	if err := c.do(ctx, http.MethodGet, "/v1/notifications/notifications", nil, &resp, true); err != nil {
		return nil, err
	}
	return resp, nil
}

// Helper methods

func (c *Client) do(ctx context.Context, method, path string, body, dest any, requireAuth bool) error {
	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if requireAuth && c.token != "" {
		req.Header.Set("Authorization", "Token "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		var errResp ErrorResponse
		if err := json.Unmarshal(data, &errResp); err == nil && errResp.Detail != "" {
			return fmt.Errorf("api error (status %d): %s", resp.StatusCode, errResp.Detail)
		}
		return fmt.Errorf("http error: %s (status %d)", string(data), resp.StatusCode)
	}

	if dest != nil && len(data) > 0 {
		if err := json.Unmarshal(data, dest); err != nil {
			return fmt.Errorf("unmarshal response: %w", err)
		}
	}
	return nil
}
