package hang

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDispatcherBroadcast(t *testing.T) {
	var got Message
	var errCalled bool
	var d Dispatcher
	d.SetOnBroadcast(func(m Message) { got = m })
	d.SetOnError(func(err error) { errCalled = true })

	raw, _ := json.Marshal(msg(101, 42, "hi"))
	d.Dispatch(Envelope{Kind: KindSendMessage, Content: raw})

	assert.Equal(t, int64(101), got.ID)
	assert.Equal(t, "hi", got.Content)
	assert.False(t, errCalled)
}

func TestDispatcherHistory(t *testing.T) {
	var got []Message
	var d Dispatcher
	d.SetOnHistory(func(msgs []Message) { got = msgs })

	raw, _ := json.Marshal([]Message{msg(100, 42, "a"), msg(99, 42, "b")})
	d.Dispatch(Envelope{Kind: KindLoadMessage, Content: raw})
	require.Len(t, got, 2)
}

func TestDispatcherUpdate(t *testing.T) {
	var got UpdateKind
	var d Dispatcher
	d.SetOnUpdate(func(kind UpdateKind) { got = kind })

	d.Dispatch(Envelope{Kind: KindUpdate, Content: json.RawMessage(`"hang_event"`)})
	assert.Equal(t, UpdateHangEvent, got)
}

func TestDispatcherBadContentFiresError(t *testing.T) {
	var gotErr error
	var d Dispatcher
	d.SetOnBroadcast(func(Message) { t.Fatal("must not be called") })
	d.SetOnError(func(err error) { gotErr = err })

	d.Dispatch(Envelope{Kind: KindSendMessage, Content: json.RawMessage(`"not an object"`)})
	require.Error(t, gotErr)
	assert.True(t, IsDecodeError(gotErr))
}

func TestDispatcherUnknownKindDropped(t *testing.T) {
	var d Dispatcher
	d.SetOnError(func(err error) { t.Fatal("unknown kinds are not errors") })
	d.Dispatch(Envelope{Kind: Kind("reaction"), Content: json.RawMessage(`{}`)})
}

func TestDispatcherNoCallbacksIsSafe(t *testing.T) {
	var d Dispatcher
	d.Dispatch(Envelope{Kind: KindSendMessage, Content: json.RawMessage(`{}`)})
	d.Dispatch(Envelope{Kind: KindStatus, Content: json.RawMessage(`{"message":"success"}`)})
}
