package errors

import (
	stderrors "errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWrapKeepsCode(t *testing.T) {
	base := ConfigInvalid("PORT is invalid")
	wrapped := Wrap(base, "failed to load server configuration")

	assert.Equal(t, CodeConfigInvalid, GetCode(wrapped))
	assert.True(t, stderrors.Is(wrapped, base))
	assert.Equal(t, "failed to load server configuration: PORT is invalid", wrapped.Error())
}

func TestWrapPlainError(t *testing.T) {
	cause := stderrors.New("boom")
	wrapped := Wrapf(cause, "step %d", 2)

	assert.Equal(t, CodeInternalError, GetCode(wrapped))
	assert.True(t, stderrors.Is(wrapped, cause))
	assert.Nil(t, Wrap(nil, "ignored"))
}

func TestWithCode(t *testing.T) {
	cause := stderrors.New("connection refused")
	err := WithCode(CodeDatabaseError, Wrap(cause, "failed to query"))

	assert.Equal(t, CodeDatabaseError, GetCode(err))
	assert.True(t, stderrors.Is(err, cause))
	assert.True(t, IsAppError(err))
	assert.Equal(t, "UNKNOWN", GetCode(cause))
}

func TestRenderError(t *testing.T) {
	cause := stderrors.New("bad colour")
	err := RenderError(cause)
	assert.Equal(t, CodeRenderError, err.Code)
	assert.ErrorIs(t, err, cause)
}
