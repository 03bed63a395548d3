package domainerrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

type codedErr struct{}

func (codedErr) Error() string { return "coded" }
func (codedErr) ErrorCode() Code { return CodeNetwork }

func TestWrapNil(t *testing.T) {
	assert.NoError(t, Wrap(nil, CodeInternal, "ignored"))
}

func TestCodeOf(t *testing.T) {
	t.Run("outermost coded error wins", func(t *testing.T) {
		inner := New(CodeNotFound, "missing")
		outer := Wrap(inner, CodeStorage, "load snapshot")
		assert.Equal(t, CodeStorage, CodeOf(outer))
	})

	t.Run("fmt wrapping is transparent", func(t *testing.T) {
		err := fmt.Errorf("context: %w", New(CodeInvalidArgument, "empty"))
		assert.Equal(t, CodeInvalidArgument, CodeOf(err))
	})

	t.Run("coder implementations are honoured", func(t *testing.T) {
		assert.Equal(t, CodeNetwork, CodeOf(fmt.Errorf("wrapped: %w", codedErr{})))
	})

	t.Run("plain errors are internal", func(t *testing.T) {
		assert.Equal(t, CodeInternal, CodeOf(errors.New("boom")))
	})
}

func TestHasCode(t *testing.T) {
	err := Wrap(New(CodeNotFound, "missing"), CodeStorage, "load snapshot")
	assert.True(t, HasCode(err, CodeStorage))
	assert.True(t, HasCode(err, CodeNotFound))
	assert.False(t, HasCode(err, CodeServer))
	assert.True(t, HasCode(codedErr{}, CodeNetwork))
}

func TestIsClientError(t *testing.T) {
	assert.True(t, IsClientError(New(CodeValidation, "summary too short")))
	assert.False(t, IsClientError(New(CodeServer, "upstream 500")))
}
