package fault

import (
	"errors"
	"fmt"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsMatchesByCode(t *testing.T) {
	err := New(CodeUnknownData, "move %q", "Splash Attack")
	assert.True(t, errors.Is(err, ErrUnknownData))
	assert.False(t, errors.Is(err, ErrInvalidState))
	assert.Equal(t, `UNKNOWN_DATA: move "Splash Attack"`, err.Error())
}

func TestWrapKeepsCause(t *testing.T) {
	err := fmt.Errorf("handle turn: %w", Wrap(CodeMissingEvent, io.ErrUnexpectedEOF, "charge turn"))
	assert.True(t, errors.Is(err, ErrMissingEvent))
	assert.True(t, errors.Is(err, io.ErrUnexpectedEOF))
	assert.Equal(t, CodeMissingEvent, CodeOf(err))
	assert.Contains(t, err.Error(), "MISSING_EVENT: charge turn: unexpected EOF")
}

func TestCodeOfPlainError(t *testing.T) {
	assert.Equal(t, Code(""), CodeOf(errors.New("plain")))
	assert.Equal(t, Code(""), CodeOf(nil))
}
