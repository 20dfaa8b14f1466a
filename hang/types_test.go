package hang

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeActionEnvelope(t *testing.T) {
	raw := []byte(`{"action":"send_message","content":{"id":101,"message_channel":42,"user":1,"content":"hi"}}`)
	env, err := DecodeEnvelope(raw)
	require.NoError(t, err)
	assert.Equal(t, KindSendMessage, env.Kind)

	m, err := env.Message()
	require.NoError(t, err)
	assert.Equal(t, int64(101), m.ID)
	assert.Equal(t, int64(42), m.MessageChannel)
	require.NotNil(t, m.User)
	assert.Equal(t, int64(1), *m.User)
	assert.Equal(t, "hi", m.Content)
}

func TestDecodeTypeStatusEnvelope(t *testing.T) {
	// Older revision: discriminator is "type" and the payload sits at the
	// top level instead of under "content".
	raw := []byte(`{"type":"status","message":"success"}`)
	env, err := DecodeEnvelope(raw)
	require.NoError(t, err)
	assert.Equal(t, KindStatus, env.Kind)

	p, err := env.Status()
	require.NoError(t, err)
	assert.Equal(t, StatusSuccess, p.Message)
}

func TestDecodeStatusFailure(t *testing.T) {
	raw := []byte(`{"type":"status","message":"User is not authenticated."}`)
	env, err := DecodeEnvelope(raw)
	require.NoError(t, err)
	p, err := env.Status()
	require.NoError(t, err)
	assert.NotEqual(t, StatusSuccess, p.Message)
}

func TestDecodeUpdateEnvelope(t *testing.T) {
	raw := []byte(`{"type":"update","content":"friend_request"}`)
	env, err := DecodeEnvelope(raw)
	require.NoError(t, err)
	assert.Equal(t, KindUpdate, env.Kind)

	kind, err := env.Update()
	require.NoError(t, err)
	assert.Equal(t, UpdateFriendRequest, kind)
}

func TestDecodeHistoryEnvelope(t *testing.T) {
	raw := []byte(`{"action":"load_message","content":[{"id":100,"message_channel":42,"user":null,"content":"sys"},{"id":99,"message_channel":42,"user":2,"content":"b"}]}`)
	env, err := DecodeEnvelope(raw)
	require.NoError(t, err)

	msgs, err := env.Messages()
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Nil(t, msgs[0].User, "system messages have no sender")
	assert.Equal(t, int64(100), msgs[0].ID)
}

func TestDecodeMalformed(t *testing.T) {
	_, err := DecodeEnvelope([]byte(`{not json`))
	require.Error(t, err)
	assert.True(t, IsDecodeError(err))
}

func TestDecodeMissingDiscriminator(t *testing.T) {
	_, err := DecodeEnvelope([]byte(`{"content":{"token":"x"}}`))
	require.Error(t, err)
	assert.True(t, IsDecodeError(err))
}

func TestDecodeIgnoresUnknownFields(t *testing.T) {
	raw := []byte(`{"action":"status","content":{"message":"success"},"extra":true,"v":2}`)
	env, err := DecodeEnvelope(raw)
	require.NoError(t, err)
	p, err := env.Status()
	require.NoError(t, err)
	assert.Equal(t, StatusSuccess, p.Message)
}

func TestDecodeUnknownVerb(t *testing.T) {
	// Unknown verbs decode fine; routing drops them later.
	env, err := DecodeEnvelope([]byte(`{"action":"reaction","content":{"id":1}}`))
	require.NoError(t, err)
	assert.Equal(t, Kind("reaction"), env.Kind)
}

func TestEncodeAuthenticate(t *testing.T) {
	env, err := NewEnvelope(KindAuthenticate, AuthenticatePayload{Token: "secret"})
	require.NoError(t, err)

	raw, err := json.Marshal(env)
	require.NoError(t, err)
	assert.JSONEq(t, `{"action":"authenticate","content":{"token":"secret"}}`, string(raw))
}

func TestEncodeLoadMessageCursor(t *testing.T) {
	env, err := NewEnvelope(KindLoadMessage, LoadMessagePayload{MessageChannel: 42})
	require.NoError(t, err)
	raw, _ := json.Marshal(env)
	assert.JSONEq(t, `{"action":"load_message","content":{"message_channel":42}}`, string(raw))

	cursor := int64(97)
	env, err = NewEnvelope(KindLoadMessage, LoadMessagePayload{MessageChannel: 42, MessageID: &cursor})
	require.NoError(t, err)
	raw, _ = json.Marshal(env)
	assert.JSONEq(t, `{"action":"load_message","content":{"message_channel":42,"message_id":97}}`, string(raw))
}

func TestEncodeSendMessage(t *testing.T) {
	env, err := NewEnvelope(KindSendMessage, SendMessagePayload{MessageChannel: 42, Content: "hi"})
	require.NoError(t, err)
	raw, _ := json.Marshal(env)
	assert.JSONEq(t, `{"action":"send_message","content":{"message_channel":42,"content":"hi","reply":null}}`, string(raw))
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	env, err := NewEnvelope(KindPing, struct{}{})
	require.NoError(t, err)
	raw, err := json.Marshal(env)
	require.NoError(t, err)

	back, err := DecodeEnvelope(raw)
	require.NoError(t, err)
	assert.Equal(t, KindPing, back.Kind)
}
