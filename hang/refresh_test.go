package hang

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/qiuethan/Hang/hang/rest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRefreshServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/accounts/friends", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode([]rest.User{{ID: 1, Username: "alice"}, {ID: 2, Username: "bob"}})
	})
	mux.HandleFunc("/v1/accounts/received_friend_request", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode([]rest.FriendRequest{{ID: 10, FromUser: rest.User{ID: 3}}})
	})
	mux.HandleFunc("/v1/accounts/sent_friend_request", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode([]rest.FriendRequest{})
	})
	mux.HandleFunc("/v1/accounts/blocked_users", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode([]rest.User{{ID: 4, Username: "mallory"}})
	})
	mux.HandleFunc("/v1/hang_event/hang_event", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode([]rest.HangEvent{{ID: 77, Name: "picnic"}})
	})
	mux.HandleFunc("/v1/chats/direct_messages", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode([]rest.Room{{ID: 42, ChannelType: "DM", Users: []int64{1, 2}}})
	})
	mux.HandleFunc("/v1/chats/group_chats", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode([]rest.GroupChat{{ID: 43, Name: "trip"}})
	})
	mux.HandleFunc("/v1/notifications/notifications", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode([]rest.Notification{{ID: 5, Title: "hi"}})
	})
	return httptest.NewServer(mux)
}

func TestRESTRefresherUpdatesStore(t *testing.T) {
	srv := newRefreshServer(t)
	defer srv.Close()

	store := NewStore()
	var changes int
	store.OnChange(func() { changes++ })

	api := rest.NewClient(srv.URL)
	api.SetToken("t")
	r := NewRESTRefresher(api, store)
	ctx := context.Background()

	require.NoError(t, r.RefreshFriends(ctx))
	require.NoError(t, r.RefreshReceivedRequests(ctx))
	require.NoError(t, r.RefreshSentRequests(ctx))
	require.NoError(t, r.RefreshBlockedUsers(ctx))
	require.NoError(t, r.RefreshHangEvents(ctx))

	assert.Len(t, store.Friends(), 2)
	assert.Len(t, store.ReceivedRequests(), 1)
	assert.Empty(t, store.SentRequests())
	assert.Len(t, store.BlockedUsers(), 1)
	assert.Len(t, store.HangEvents(), 1)
	assert.Equal(t, 5, changes)
}

func TestRESTRefresherRooms(t *testing.T) {
	srv := newRefreshServer(t)
	defer srv.Close()

	store := NewStore()
	api := rest.NewClient(srv.URL)
	r := NewRESTRefresher(api, store)

	require.NoError(t, r.RefreshRooms(context.Background()))
	require.Len(t, store.Rooms(), 1)
	assert.Equal(t, int64(42), store.Rooms()[0].ID)
	require.Len(t, store.Groups(), 1)
	assert.Equal(t, "trip", store.Groups()[0].Name)
}

func TestRESTRefresherUnread(t *testing.T) {
	srv := newRefreshServer(t)
	defer srv.Close()

	store := NewStore()
	r := NewRESTRefresher(rest.NewClient(srv.URL), store)
	require.NoError(t, r.RefreshUnreadNotifications(context.Background()))
	require.Len(t, store.UnreadNotifications(), 1)
}

func TestRESTRefresherSurfacesAPIErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	store := NewStore()
	r := NewRESTRefresher(rest.NewClient(srv.URL), store)
	assert.Error(t, r.RefreshFriends(context.Background()))
	assert.Empty(t, store.Friends())
}

func TestNotifierWithRESTRefresher(t *testing.T) {
	srv := newRefreshServer(t)
	defer srv.Close()

	store := NewStore()
	r := NewRESTRefresher(rest.NewClient(srv.URL), store)

	cfg := DefaultConfig()
	cfg.Username = "alice"
	n := NewNotifier(NewNotifyClient(cfg), r)

	n.Handle(UpdateFriendRequest)
	assert.Len(t, store.Friends(), 2)
	assert.Len(t, store.BlockedUsers(), 1)

	n.Handle(UpdateHangEvent)
	assert.Len(t, store.HangEvents(), 1)
}
