package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWrapKeepsCode(t *testing.T) {
	base := PredictionFailed("alchemy", stderrors.New("nan output"))
	wrapped := Wrap(base, "validate alchemy")

	assert.Equal(t, CodePredictionFailed, GetCode(wrapped))
	assert.Contains(t, wrapped.Error(), "nan output")
	assert.True(t, stderrors.Is(wrapped, base))
}

func TestWrapPlainErrorIsInternal(t *testing.T) {
	err := Wrap(stderrors.New("disk"), "load catalog")
	assert.Equal(t, CodeInternalError, GetCode(err))
	assert.Nil(t, Wrap(nil, "nothing"))
}

func TestGetCodeThroughFmtWrap(t *testing.T) {
	err := fmt.Errorf("outer: %w", NotInitialized())
	assert.True(t, HasCode(err, CodeNotInitialized))
	assert.True(t, IsAppError(err))
	assert.Equal(t, "UNKNOWN", GetCode(stderrors.New("plain")))
}

func TestWithCode(t *testing.T) {
	err := WithCode(CodeBackendUnavailable, stderrors.New("file missing"))
	assert.Equal(t, CodeBackendUnavailable, GetCode(err))
	assert.Contains(t, err.Error(), "file missing")
}
