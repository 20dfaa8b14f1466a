package hang

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorIsByCode(t *testing.T) {
	err := WrapError(ErrorNotConnected, "send dropped", nil)
	assert.True(t, errors.Is(err, NewError(ErrorNotConnected, "anything")))
	assert.False(t, errors.Is(err, NewError(ErrorDecode, "anything")))
}

func TestErrorUnwrap(t *testing.T) {
	inner := errors.New("eof")
	err := WrapError(ErrorDisconnected, "connection lost", inner)
	assert.True(t, errors.Is(err, inner))
	assert.Contains(t, err.Error(), "disconnected")
	assert.Contains(t, err.Error(), "eof")
}

func TestErrorClassifiers(t *testing.T) {
	assert.True(t, IsConnectionError(NewError(ErrorTimeout, "")))
	assert.True(t, IsConnectionError(NewError(ErrorDisconnected, "")))
	assert.False(t, IsConnectionError(NewError(ErrorDecode, "")))
	assert.False(t, IsConnectionError(nil))

	assert.True(t, IsAuthError(NewError(ErrorAuthFailed, "bad token")))
	assert.False(t, IsAuthError(NewError(ErrorConnection, "")))

	assert.True(t, IsDecodeError(NewError(ErrorDecode, "")))
	assert.False(t, IsDecodeError(errors.New("plain")))
}

func TestErrorClassifierThroughWrapping(t *testing.T) {
	err := fmt.Errorf("outer: %w", NewError(ErrorConnection, "dial failed"))
	assert.True(t, IsConnectionError(err))
}

func TestErrorCodeString(t *testing.T) {
	assert.Equal(t, "not_connected", ErrorNotConnected.String())
	assert.Equal(t, "auth_failed", ErrorAuthFailed.String())
	assert.Equal(t, "decode_error", ErrorDecode.String())
	assert.Equal(t, "unknown_code_99", ErrorCode(99).String())
}
