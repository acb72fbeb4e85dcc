package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorWrapper(t *testing.T) {
	t.Parallel()

	wrapper := NewWrapper("resolver", "list_festivals")

	t.Run("nil passes through", func(t *testing.T) {
		t.Parallel()
		assert.NoError(t, wrapper.Wrap(nil, "x"))
	})

	t.Run("wrap keeps cause and context", func(t *testing.T) {
		t.Parallel()
		base := errors.New("database is locked")
		err := wrapper.Wrap(base, "เกิดข้อผิดพลาดของระบบ")

		var wrapped *WrappedError
		require.ErrorAs(t, err, &wrapped)
		assert.Equal(t, "resolver", wrapped.Module)
		assert.Equal(t, "list_festivals", wrapped.Operation)
		assert.ErrorIs(t, err, base)
		assert.Contains(t, err.Error(), "[resolver:list_festivals]")
	})

	t.Run("user message survives sentinel causes", func(t *testing.T) {
		t.Parallel()
		err := wrapper.Wrap(ErrTimeout, "เกิดข้อผิดพลาดของระบบ")
		assert.Equal(t, "เกิดข้อผิดพลาดของระบบ", GetUserMessage(err))
		assert.ErrorIs(t, err, ErrTimeout)
	})
}

func TestGetUserMessage(t *testing.T) {
	t.Parallel()

	assert.Empty(t, GetUserMessage(nil))
	assert.Equal(t, "plain", GetUserMessage(errors.New("plain")))

	inner := NewWrapper("storage", "query").Wrap(errors.New("io"), "ข้อความ")
	outer := fmt.Errorf("handler: %w", inner)
	assert.Equal(t, "ข้อความ", GetUserMessage(outer), "found through fmt wrapping")
}

func TestUpstreamError(t *testing.T) {
	t.Parallel()

	err := NewUpstreamError("geocoder", 503, ErrTimeout)
	assert.Equal(t, "geocoder error (status=503): operation timed out", err.Error())
	assert.ErrorIs(t, err, ErrTimeout)

	noStatus := NewUpstreamError("image", 0, errors.New("dial"))
	assert.Equal(t, "image error: dial", noStatus.Error())
}
